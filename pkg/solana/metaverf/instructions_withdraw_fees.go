package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var withdrawFeesInstructionDiscriminator = []byte{
	198, 212, 171, 109, 144, 215, 174, 89,
}

const (
	WithdrawFeesInstructionArgsSize = 8 // amount

	WithdrawFeesInstructionAccountsCount = 8
)

type WithdrawFeesInstructionArgs struct {
	// Zero withdraws the full treasury balance
	Amount uint64
}

type WithdrawFeesInstructionAccounts struct {
	Admin             ed25519.PublicKey
	Protocol          ed25519.PublicKey
	Mint              ed25519.PublicKey
	Treasury          ed25519.PublicKey
	AdminTokenAccount ed25519.PublicKey
}

func NewWithdrawFeesInstruction(
	accounts *WithdrawFeesInstructionAccounts,
	args *WithdrawFeesInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(withdrawFeesInstructionDiscriminator)+
			WithdrawFeesInstructionArgsSize)

	putDiscriminator(data, withdrawFeesInstructionDiscriminator, &offset)
	putUint64(data, args.Amount, &offset)

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
				IsWritable: false,
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
				PublicKey:  accounts.AdminTokenAccount,
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

func WithdrawFeesInstructionArgsFromBinary(data []byte) (*WithdrawFeesInstructionArgs, error) {
	var offset int

	if len(data) != len(withdrawFeesInstructionDiscriminator)+WithdrawFeesInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, withdrawFeesInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args WithdrawFeesInstructionArgs
	getUint64(data, &args.Amount, &offset)

	return &args, nil
}
