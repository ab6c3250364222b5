package mplcore

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

const (
	CreateV1InstructionAccountsCount = 8
)

type CreateV1InstructionArgs struct {
	DataState DataState
	Name      string
	Uri       string
	Plugins   []Plugin
}

type CreateV1InstructionAccounts struct {
	Asset ed25519.PublicKey

	// Optional
	Collection ed25519.PublicKey

	// Optional, must sign when minting into a collection
	Authority ed25519.PublicKey

	Payer ed25519.PublicKey

	// Optional, defaults to the payer
	Owner ed25519.PublicKey

	// Optional, ignored when minting into a collection
	UpdateAuthority ed25519.PublicKey
}

func NewCreateV1Instruction(
	accounts *CreateV1InstructionAccounts,
	args *CreateV1InstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		1+
			1+ // data_state
			4+len(args.Name)+
			4+len(args.Uri)+
			optionalPluginsSize(args.Plugins))

	putUint8(data, uint8(InstructionTypeCreateV1), &offset)
	putUint8(data, uint8(args.DataState), &offset)
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
				PublicKey:  accounts.Asset,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  orPlaceholder(accounts.Collection),
				IsWritable: len(accounts.Collection) > 0,
				IsSigner:   false,
			},
			{
				PublicKey:  orPlaceholder(accounts.Authority),
				IsWritable: false,
				IsSigner:   len(accounts.Authority) > 0,
			},
			{
				PublicKey:  accounts.Payer,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  orPlaceholder(accounts.Owner),
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  orPlaceholder(accounts.UpdateAuthority),
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

func CreateV1InstructionArgsFromBinary(data []byte) (*CreateV1InstructionArgs, error) {
	if t, err := GetInstructionType(data); err != nil || t != InstructionTypeCreateV1 {
		return nil, ErrInvalidInstructionData
	}

	offset := 1

	var args CreateV1InstructionArgs

	var dataState uint8
	if err := getUint8(data, &dataState, &offset); err != nil {
		return nil, ErrInvalidInstructionData
	}
	args.DataState = DataState(dataState)

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
