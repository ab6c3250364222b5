package mplcore

import (
	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

type MplCoreError uint32

const (
	ErrInvalidSystemProgram MplCoreError = iota
	ErrDeserialization
	ErrSerialization
	ErrPluginsNotInitialized
	ErrPluginNotFound
	ErrNumericalOverflow
	ErrIncorrectAccount
	ErrIncorrectAssetHash
	ErrInvalidPlugin
	ErrInvalidAuthority
	ErrAssetIsFrozen
	ErrMissingCollection
	ErrInvalidCollection
	ErrAlreadyInitialized
)

var errorNames = map[MplCoreError]string{
	ErrInvalidSystemProgram:  "InvalidSystemProgram",
	ErrDeserialization:       "DeserializationError",
	ErrSerialization:         "SerializationError",
	ErrPluginsNotInitialized: "PluginsNotInitialized",
	ErrPluginNotFound:        "PluginNotFound",
	ErrNumericalOverflow:     "NumericalOverflow",
	ErrIncorrectAccount:      "IncorrectAccount",
	ErrIncorrectAssetHash:    "IncorrectAssetHash",
	ErrInvalidPlugin:         "InvalidPlugin",
	ErrInvalidAuthority:      "InvalidAuthority",
	ErrAssetIsFrozen:         "AssetIsFrozen",
	ErrMissingCollection:     "MissingCollection",
	ErrInvalidCollection:     "InvalidCollection",
	ErrAlreadyInitialized:    "AlreadyInitialized",
}

func (e MplCoreError) Error() string {
	if name, ok := errorNames[e]; ok {
		return name
	}
	return "Unknown"
}

func (e MplCoreError) Code() solana.CustomError {
	return solana.CustomError(e)
}
