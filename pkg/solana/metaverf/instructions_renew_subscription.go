package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var renewSubscriptionInstructionDiscriminator = []byte{
	45, 75, 154, 194, 160, 10, 111, 183,
}

const (
	RenewSubscriptionInstructionArgsSize = 2 // college_id

	RenewSubscriptionInstructionAccountsCount = 8
)

type RenewSubscriptionInstructionArgs struct {
	CollegeId uint16
}

type RenewSubscriptionInstructionAccounts struct {
	Admin                        ed25519.PublicKey
	CollegeAuthority             ed25519.PublicKey
	Protocol                     ed25519.PublicKey
	College                      ed25519.PublicKey
	Mint                         ed25519.PublicKey
	CollegeAuthorityTokenAccount ed25519.PublicKey
	Treasury                     ed25519.PublicKey
}

func NewRenewSubscriptionInstruction(
	accounts *RenewSubscriptionInstructionAccounts,
	args *RenewSubscriptionInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(renewSubscriptionInstructionDiscriminator)+
			RenewSubscriptionInstructionArgsSize)

	putDiscriminator(data, renewSubscriptionInstructionDiscriminator, &offset)
	putUint16(data, args.CollegeId, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
			{
				PublicKey:  accounts.Admin,
				IsWritable: false,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.CollegeAuthority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Protocol,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.College,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Mint,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollegeAuthorityTokenAccount,
				IsWritable: true,
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
		},
	}
}

func RenewSubscriptionInstructionArgsFromBinary(data []byte) (*RenewSubscriptionInstructionArgs, error) {
	var offset int

	if len(data) != len(renewSubscriptionInstructionDiscriminator)+RenewSubscriptionInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, renewSubscriptionInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args RenewSubscriptionInstructionArgs
	getUint16(data, &args.CollegeId, &offset)

	return &args, nil
}
