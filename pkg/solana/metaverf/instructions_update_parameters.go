package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var updateParametersInstructionDiscriminator = []byte{
	116, 107, 24, 207, 101, 49, 213, 77,
}

const (
	UpdateParametersInstructionArgsSize = (8 + // new_annual_fee
		8) // new_subscription_duration

	UpdateParametersInstructionAccountsCount = 2
)

type UpdateParametersInstructionArgs struct {
	NewAnnualFee            uint64
	NewSubscriptionDuration uint64
}

type UpdateParametersInstructionAccounts struct {
	Admin    ed25519.PublicKey
	Protocol ed25519.PublicKey
}

func NewUpdateParametersInstruction(
	accounts *UpdateParametersInstructionAccounts,
	args *UpdateParametersInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(updateParametersInstructionDiscriminator)+
			UpdateParametersInstructionArgsSize)

	putDiscriminator(data, updateParametersInstructionDiscriminator, &offset)
	putUint64(data, args.NewAnnualFee, &offset)
	putUint64(data, args.NewSubscriptionDuration, &offset)

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
				PublicKey:  accounts.Protocol,
				IsWritable: true,
				IsSigner:   false,
			},
		},
	}
}

func UpdateParametersInstructionArgsFromBinary(data []byte) (*UpdateParametersInstructionArgs, error) {
	var offset int

	if len(data) != len(updateParametersInstructionDiscriminator)+UpdateParametersInstructionArgsSize {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, updateParametersInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args UpdateParametersInstructionArgs
	getUint64(data, &args.NewAnnualFee, &offset)
	getUint64(data, &args.NewSubscriptionDuration, &offset)

	return &args, nil
}
