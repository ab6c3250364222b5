package metaverf

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	CollectionRecordAccountSize = (8 + // discriminator
		2 + // college_id
		32 + // collection
		1) // bump
)

var CollectionRecordAccountDiscriminator = []byte{39, 209, 16, 70, 216, 160, 197, 29}

// CollectionRecordAccount proves a collection was created by, and belongs to,
// a college
type CollectionRecordAccount struct {
	CollegeId  uint16
	Collection ed25519.PublicKey
	Bump       uint8
}

func (obj *CollectionRecordAccount) Marshal() []byte {
	data := make([]byte, CollectionRecordAccountSize)

	var offset int

	putDiscriminator(data, CollectionRecordAccountDiscriminator, &offset)
	putUint16(data, obj.CollegeId, &offset)
	putKey(data, obj.Collection, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *CollectionRecordAccount) Unmarshal(data []byte) error {
	if len(data) < CollectionRecordAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, CollectionRecordAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getUint16(data, &obj.CollegeId, &offset)
	getKey(data, &obj.Collection, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

func (obj *CollectionRecordAccount) String() string {
	return fmt.Sprintf(
		"CollectionRecordAccount{college_id=%d,collection=%s,bump=%d}",
		obj.CollegeId,
		base58.Encode(obj.Collection),
		obj.Bump,
	)
}
