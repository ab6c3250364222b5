package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var registerCollegeInstructionDiscriminator = []byte{
	161, 150, 243, 82, 234, 235, 10, 200,
}

const (
	RegisterCollegeInstructionArgsSize = 2 // college_id

	RegisterCollegeInstructionAccountsCount = 10
)

type RegisterCollegeInstructionArgs struct {
	CollegeId uint16
}

type RegisterCollegeInstructionAccounts struct {
	Admin                        ed25519.PublicKey
	CollegeAuthority             ed25519.PublicKey
	Protocol                     ed25519.PublicKey
	College                      ed25519.PublicKey
	AuthorityRecord              ed25519.PublicKey
	Mint                         ed25519.PublicKey
	CollegeAuthorityTokenAccount ed25519.PublicKey
	Treasury                     ed25519.PublicKey
}

func NewRegisterCollegeInstruction(
	accounts *RegisterCollegeInstructionAccounts,
	args *RegisterCollegeInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(registerCollegeInstructionDiscriminator)+
			RegisterCollegeInstructionArgsSize)

	putDiscriminator(data, registerCollegeInstructionDiscriminator, &offset)
	putUint16(data, args.CollegeId, &offset)

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
				PublicKey:  accounts.CollegeAuthority,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Protocol,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.College,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.AuthorityRecord,
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
			{
				PublicKey:  SYSTEM_PROGRAM_ID,
				IsWritable: false,
				IsSigner:   false,
			},
		},
	}
}

func RegisterCollegeInstructionArgsFromBinary(data []byte) (*RegisterCollegeInstructionArgs, error) {
	var offset int

	if len(data) != len(registerCollegeInstructionDiscriminator)+RegisterCollegeInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, registerCollegeInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args RegisterCollegeInstructionArgs
	getUint16(data, &args.CollegeId, &offset)

	return &args, nil
}
