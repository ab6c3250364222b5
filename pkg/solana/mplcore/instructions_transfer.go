package mplcore

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

const (
	TransferV1InstructionAccountsCount = 7
)

type TransferV1InstructionAccounts struct {
	Asset ed25519.PublicKey

	// Optional
	Collection ed25519.PublicKey

	Payer ed25519.PublicKey

	// Optional, defaults to the payer
	Authority ed25519.PublicKey

	NewOwner ed25519.PublicKey
}

func NewTransferV1Instruction(accounts *TransferV1InstructionAccounts) solana.Instruction {
	// Compression proof is always None for account backed assets
	data := []byte{uint8(InstructionTypeTransferV1), 0}

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Asset,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  orPlaceholder(accounts.Collection),
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  orPlaceholder(accounts.Authority),
				IsWritable: false,
				IsSigner:   len(accounts.Authority) > 0,
			},
			{
				PublicKey:  accounts.NewOwner,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  PROGRAM_ID, // log wrapper
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func ValidateTransferV1InstructionData(data []byte) error {
	if t, err := GetInstructionType(data); err != nil || t != InstructionTypeTransferV1 {
		return ErrInvalidInstructionData
	}
	if len(data) != 2 || data[1] != 0 {
		return ErrInvalidInstructionData
	}
	return nil
}
