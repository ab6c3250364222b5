package mplcore

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

type UpdateAuthorityType uint8

const (
	UpdateAuthorityNone UpdateAuthorityType = iota
	UpdateAuthorityAddress
	UpdateAuthorityCollection
)

// UpdateAuthority names who may update an asset. Assets minted into a
// collection defer to the collection's own update authority.
type UpdateAuthority struct {
	Type    UpdateAuthorityType
	Address ed25519.PublicKey
}

func (obj *UpdateAuthority) size() int {
	if obj.Type == UpdateAuthorityNone {
		return 1
	}
	return 1 + ed25519.PublicKeySize
}

func putUpdateAuthority(dst []byte, v *UpdateAuthority, offset *int) {
	putUint8(dst, uint8(v.Type), offset)
	if v.Type != UpdateAuthorityNone {
		copy(dst[*offset:], v.Address)
		*offset += ed25519.PublicKeySize
	}
}

func getUpdateAuthority(src []byte, dst *UpdateAuthority, offset *int) error {
	var value uint8
	if err := getUint8(src, &value, offset); err != nil {
		return err
	}

	dst.Type = UpdateAuthorityType(value)
	switch dst.Type {
	case UpdateAuthorityNone:
		return nil
	case UpdateAuthorityAddress, UpdateAuthorityCollection:
		return getKey(src, &dst.Address, offset)
	}
	return ErrInvalidAccountData
}

func (obj UpdateAuthority) String() string {
	switch obj.Type {
	case UpdateAuthorityAddress:
		return fmt.Sprintf("Address(%s)", base58.Encode(obj.Address))
	case UpdateAuthorityCollection:
		return fmt.Sprintf("Collection(%s)", base58.Encode(obj.Address))
	}
	return "None"
}

func getKey(src []byte, dst *ed25519.PublicKey, offset *int) error {
	if *offset+ed25519.PublicKeySize > len(src) {
		return ErrInvalidAccountData
	}
	*dst = make([]byte, ed25519.PublicKeySize)
	copy(*dst, src[*offset:])
	*offset += ed25519.PublicKeySize
	return nil
}

func putKey(dst []byte, v ed25519.PublicKey, offset *int) {
	copy(dst[*offset:], v)
	*offset += ed25519.PublicKeySize
}
