package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var addCollectionInstructionDiscriminator = []byte{
	79, 172, 225, 142, 219, 192, 171, 80,
}

const (
	AddCollectionInstructionAccountsCount = 7
)

type AddCollectionInstructionArgs struct {
	CollegeId uint16
	Metadata  CollectionMetadata
}

type AddCollectionInstructionAccounts struct {
	CollegeAuthority ed25519.PublicKey
	Protocol         ed25519.PublicKey
	College          ed25519.PublicKey
	Collection       ed25519.PublicKey
	CollectionRecord ed25519.PublicKey
}

func NewAddCollectionInstruction(
	accounts *AddCollectionInstructionAccounts,
	args *AddCollectionInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(addCollectionInstructionDiscriminator)+
			2+ // college_id
			args.Metadata.size())

	putDiscriminator(data, addCollectionInstructionDiscriminator, &offset)
	putUint16(data, args.CollegeId, &offset)
	putCollectionMetadata(data, &args.Metadata, &offset)

	return solana.Instruction{
		Program: PROGRAM_ADDRESS,

		// Instruction args
		Data: data,

		// Instruction accounts
		Accounts: []solana.AccountMeta{
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
				PublicKey:  accounts.Collection,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.CollectionRecord,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  MPL_CORE_PROGRAM_ID,
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

func AddCollectionInstructionArgsFromBinary(data []byte) (*AddCollectionInstructionArgs, error) {
	var offset int

	if len(data) < len(addCollectionInstructionDiscriminator)+2 {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, addCollectionInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args AddCollectionInstructionArgs
	getUint16(data, &args.CollegeId, &offset)
	if err := getCollectionMetadata(data, &args.Metadata, &offset); err != nil {
		return nil, err
	}
	if offset != len(data) {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}
