package metaverf

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	// MaxCollectionsPerCollege bounds the collections a college may register
	MaxCollectionsPerCollege = 16
)

const (
	CollegeAccountSize = (8 + // discriminator
		2 + // id
		32 + // authority
		1 + // active
		8 + // expiry
		8 + // last_payment
		2 + // collection_count
		1) // bump
)

var CollegeAccountDiscriminator = []byte{136, 249, 244, 40, 141, 159, 58, 151}

type CollegeAccount struct {
	Id              uint16
	Authority       ed25519.PublicKey
	Active          bool
	Expiry          int64
	LastPayment     int64
	CollectionCount uint16
	Bump            uint8
}

func (obj *CollegeAccount) Marshal() []byte {
	data := make([]byte, CollegeAccountSize)

	var offset int

	putDiscriminator(data, CollegeAccountDiscriminator, &offset)
	putUint16(data, obj.Id, &offset)
	putKey(data, obj.Authority, &offset)
	putBool(data, obj.Active, &offset)
	putInt64(data, obj.Expiry, &offset)
	putInt64(data, obj.LastPayment, &offset)
	putUint16(data, obj.CollectionCount, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *CollegeAccount) Unmarshal(data []byte) error {
	if len(data) < CollegeAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, CollegeAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getUint16(data, &obj.Id, &offset)
	getKey(data, &obj.Authority, &offset)
	getBool(data, &obj.Active, &offset)
	getInt64(data, &obj.Expiry, &offset)
	getInt64(data, &obj.LastPayment, &offset)
	getUint16(data, &obj.CollectionCount, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

// IsSubscriptionLive reports whether the college may create collections and
// mint certificates at the provided unix time
func (obj *CollegeAccount) IsSubscriptionLive(now int64) bool {
	return obj.Active && obj.Expiry > now
}

func (obj *CollegeAccount) String() string {
	return fmt.Sprintf(
		"CollegeAccount{id=%d,authority=%s,active=%t,expiry=%d,last_payment=%d,collection_count=%d,bump=%d}",
		obj.Id,
		base58.Encode(obj.Authority),
		obj.Active,
		obj.Expiry,
		obj.LastPayment,
		obj.CollectionCount,
		obj.Bump,
	)
}
