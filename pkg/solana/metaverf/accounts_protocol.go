package metaverf

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	ProtocolAccountSize = (8 + // discriminator
		32 + // admin
		32 + // mint
		8 + // annual_fee
		8 + // subscription_duration
		2 + // college_count
		32 + // treasury
		1) // bump
)

var ProtocolAccountDiscriminator = []byte{237, 127, 199, 197, 65, 180, 155, 189}

type ProtocolAccount struct {
	Admin                ed25519.PublicKey
	Mint                 ed25519.PublicKey
	AnnualFee            uint64
	SubscriptionDuration uint64
	CollegeCount         uint16
	Treasury             ed25519.PublicKey
	Bump                 uint8
}

func (obj *ProtocolAccount) Marshal() []byte {
	data := make([]byte, ProtocolAccountSize)

	var offset int

	putDiscriminator(data, ProtocolAccountDiscriminator, &offset)
	putKey(data, obj.Admin, &offset)
	putKey(data, obj.Mint, &offset)
	putUint64(data, obj.AnnualFee, &offset)
	putUint64(data, obj.SubscriptionDuration, &offset)
	putUint16(data, obj.CollegeCount, &offset)
	putKey(data, obj.Treasury, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *ProtocolAccount) Unmarshal(data []byte) error {
	if len(data) < ProtocolAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, ProtocolAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Admin, &offset)
	getKey(data, &obj.Mint, &offset)
	getUint64(data, &obj.AnnualFee, &offset)
	getUint64(data, &obj.SubscriptionDuration, &offset)
	getUint16(data, &obj.CollegeCount, &offset)
	getKey(data, &obj.Treasury, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

func (obj *ProtocolAccount) String() string {
	return fmt.Sprintf(
		"ProtocolAccount{admin=%s,mint=%s,annual_fee=%d,subscription_duration=%d,college_count=%d,treasury=%s,bump=%d}",
		base58.Encode(obj.Admin),
		base58.Encode(obj.Mint),
		obj.AnnualFee,
		obj.SubscriptionDuration,
		obj.CollegeCount,
		base58.Encode(obj.Treasury),
		obj.Bump,
	)
}
