package mplcore

import (
	"github.com/mr-tron/base58"

	"github.com/metaverf/metaverf-ledger/pkg/solana/binary"
)

func putString(dst []byte, v string, offset *int) {
	binary.PutString(dst[*offset:], v, offset)
}
func getString(src []byte, dst *string, offset *int) error {
	if *offset > len(src) || !binary.GetString(src[*offset:], dst, offset) {
		return ErrInvalidAccountData
	}
	return nil
}

func putUint8(dst []byte, v uint8, offset *int) {
	binary.PutUint8(dst[*offset:], v, offset)
}
func getUint8(src []byte, dst *uint8, offset *int) error {
	if *offset+1 > len(src) {
		return ErrInvalidAccountData
	}
	binary.GetUint8(src[*offset:], dst, offset)
	return nil
}

func putBool(dst []byte, v bool, offset *int) {
	binary.PutBool(dst[*offset:], v, offset)
}
func getBool(src []byte, dst *bool, offset *int) error {
	if *offset+1 > len(src) {
		return ErrInvalidAccountData
	}
	binary.GetBool(src[*offset:], dst, offset)
	return nil
}

func putUint32(dst []byte, v uint32, offset *int) {
	binary.PutUint32(dst[*offset:], v, offset)
}
func getUint32(src []byte, dst *uint32, offset *int) error {
	if *offset+4 > len(src) {
		return ErrInvalidAccountData
	}
	binary.GetUint32(src[*offset:], dst, offset)
	return nil
}

func mustBase58Decode(value string) []byte {
	decoded, err := base58.Decode(value)
	if err != nil {
		panic(err)
	}
	return decoded
}
