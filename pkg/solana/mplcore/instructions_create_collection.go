package mplcore

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

const (
	CreateCollectionV1InstructionAccountsCount = 4
)

type CreateCollectionV1InstructionArgs struct {
	Name    string
	Uri     string
	Plugins []Plugin
}

type CreateCollectionV1InstructionAccounts struct {
	Collection ed25519.PublicKey

	// Optional, defaults to the payer
	UpdateAuthority ed25519.PublicKey

	Payer ed25519.PublicKey
}

func NewCreateCollectionV1Instruction(
	accounts *CreateCollectionV1InstructionAccounts,
	args *CreateCollectionV1InstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		1+
			4+len(args.Name)+
			4+len(args.Uri)+
			optionalPluginsSize(args.Plugins))

	putUint8(data, uint8(InstructionTypeCreateCollectionV1), &offset)
	putString(data, args.Name, &offset)
	putString(data, args.Uri, &offset)
	putOptionalPlugins(data, args.Plugins, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Collection,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  orPlaceholder(accounts.UpdateAuthority),
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func CreateCollectionV1InstructionArgsFromBinary(data []byte) (*CreateCollectionV1InstructionArgs, error) {
	if t, err := GetInstructionType(data); err != nil || t != InstructionTypeCreateCollectionV1 {
		return nil, ErrInvalidInstructionData
	}

	offset := 1

	var args CreateCollectionV1InstructionArgs
	if err := getString(data, &args.Name, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	if err := getString(data, &args.Uri, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	if err := getOptionalPlugins(data, &args.Plugins, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	if offset != len(data) {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}
