package mplcore

import (
	"crypto/ed25519"
	"errors"
)

var (
	ErrInvalidProgram         = errors.New("invalid program id")
	ErrInvalidAccountData     = errors.New("unexpected account data")
	ErrInvalidInstructionData = errors.New("unexpected instruction data")
)

var (
	PROGRAM_ADDRESS = mustBase58Decode("CoREENxT6tW1HoK8ypY1SxRMZTcVPm7R94rH4PZNhX7d")
	PROGRAM_ID      = ed25519.PublicKey(PROGRAM_ADDRESS)
)

var (
	SYSTEM_PROGRAM_ID = ed25519.PublicKey(mustBase58Decode("11111111111111111111111111111111"))
)

// Key is the leading byte identifying every account owned by the program
type Key uint8

const (
	KeyUninitialized Key = iota
	KeyAssetV1
	KeyHashedAssetV1
	KeyPluginHeaderV1
	KeyPluginRegistryV1
	KeyCollectionV1
)

// DataState selects whether a new asset is stored in full or compressed
type DataState uint8

const (
	DataStateAccount DataState = iota
	DataStateLedger
)

// orPlaceholder substitutes the program id for an omitted optional account
func orPlaceholder(key ed25519.PublicKey) ed25519.PublicKey {
	if len(key) == 0 {
		return PROGRAM_ID
	}
	return key
}

// IsPlaceholder reports whether an optional account slot was left empty
func IsPlaceholder(key ed25519.PublicKey) bool {
	return len(key) == 0 || string(key) == string(PROGRAM_ID)
}
