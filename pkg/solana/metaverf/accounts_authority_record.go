package metaverf

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	AuthorityRecordAccountSize = (8 + // discriminator
		32 + // authority
		2 + // college_id
		1) // bump
)

var AuthorityRecordAccountDiscriminator = []byte{66, 210, 103, 104, 178, 158, 166, 211}

// AuthorityRecordAccount binds a signing authority to the single college it
// was registered for
type AuthorityRecordAccount struct {
	Authority ed25519.PublicKey
	CollegeId uint16
	Bump      uint8
}

func (obj *AuthorityRecordAccount) Marshal() []byte {
	data := make([]byte, AuthorityRecordAccountSize)

	var offset int

	putDiscriminator(data, AuthorityRecordAccountDiscriminator, &offset)
	putKey(data, obj.Authority, &offset)
	putUint16(data, obj.CollegeId, &offset)
	putUint8(data, obj.Bump, &offset)

	return data
}

func (obj *AuthorityRecordAccount) Unmarshal(data []byte) error {
	if len(data) < AuthorityRecordAccountSize {
		return ErrInvalidAccountData
	}

	var offset int

	var discriminator []byte
	getDiscriminator(data, &discriminator, &offset)
	if !bytes.Equal(discriminator, AuthorityRecordAccountDiscriminator) {
		return ErrInvalidAccountData
	}

	getKey(data, &obj.Authority, &offset)
	getUint16(data, &obj.CollegeId, &offset)
	getUint8(data, &obj.Bump, &offset)

	return nil
}

func (obj *AuthorityRecordAccount) String() string {
	return fmt.Sprintf(
		"AuthorityRecordAccount{authority=%s,college_id=%d,bump=%d}",
		base58.Encode(obj.Authority),
		obj.CollegeId,
		obj.Bump,
	)
}
