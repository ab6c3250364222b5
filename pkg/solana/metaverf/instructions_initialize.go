package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var initializeInstructionDiscriminator = []byte{
	175, 175, 109, 31, 13, 152, 155, 237,
}

const (
	InitializeInstructionArgsSize = (8 + // annual_fee
		8) // subscription_duration

	InitializeInstructionAccountsCount = 7
)

type InitializeInstructionArgs struct {
	AnnualFee            uint64
	SubscriptionDuration uint64
}

type InitializeInstructionAccounts struct {
	Admin    ed25519.PublicKey
	Protocol ed25519.PublicKey
	Mint     ed25519.PublicKey
	Treasury ed25519.PublicKey
}

func NewInitializeInstruction(
	accounts *InitializeInstructionAccounts,
	args *InitializeInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(initializeInstructionDiscriminator)+
			InitializeInstructionArgsSize)

	putDiscriminator(data, initializeInstructionDiscriminator, &offset)
	putUint64(data, args.AnnualFee, &offset)
	putUint64(data, args.SubscriptionDuration, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Admin,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Protocol,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Treasury,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SPL_ASSOCIATED_TOKEN_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func InitializeInstructionArgsFromBinary(data []byte) (*InitializeInstructionArgs, error) {
	var offset int

	if len(data) != len(initializeInstructionDiscriminator)+InitializeInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, initializeInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args InitializeInstructionArgs
	getUint64(data, &args.AnnualFee, &offset)
	getUint64(data, &args.SubscriptionDuration, &offset)

	return &args, nil
}
