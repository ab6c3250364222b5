package metaverf

import (
	"crypto/ed25519"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

var mintCertificateInstructionDiscriminator = []byte{
	53, 2, 104, 84, 51, 197, 179, 10,
}

const (
	MintCertificateInstructionAccountsCount = 9
)

type MintCertificateInstructionArgs struct {
	CollegeId uint16
	Metadata  CertificateMetadata
}

type MintCertificateInstructionAccounts struct {
	CollegeAuthority ed25519.PublicKey
	Protocol         ed25519.PublicKey
	College          ed25519.PublicKey
	CollectionRecord ed25519.PublicKey
	Collection       ed25519.PublicKey
	Asset            ed25519.PublicKey
	Student          ed25519.PublicKey
}

func NewMintCertificateInstruction(
	accounts *MintCertificateInstructionAccounts,
	args *MintCertificateInstructionArgs,
) solana.Instruction {
	var offset int

	// Serialize instruction arguments
	data := make([]byte,
		len(mintCertificateInstructionDiscriminator)+
			2+ // college_id
			args.Metadata.size())

	putDiscriminator(data, mintCertificateInstructionDiscriminator, &offset)
	putUint16(data, args.CollegeId, &offset)
	putCertificateMetadata(data, &args.Metadata, &offset)

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
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.CollectionRecord,
				IsWritable: false,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Collection,
				IsWritable: true,
				IsSigner:   false,
			},
			{
				PublicKey:  accounts.Asset,
				IsWritable: true,
				IsSigner:   true,
			},
			{
				PublicKey:  accounts.Student,
				IsWritable: false,
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

func MintCertificateInstructionArgsFromBinary(data []byte) (*MintCertificateInstructionArgs, error) {
	var offset int

	if len(data) < len(mintCertificateInstructionDiscriminator)+2 {
		return nil, ErrInvalidInstructionData
	}
	if err := checkDiscriminator(data, mintCertificateInstructionDiscriminator, &offset); err != nil {
		return nil, err
	}

	var args MintCertificateInstructionArgs
	getUint16(data, &args.CollegeId, &offset)
	if err := getCertificateMetadata(data, &args.Metadata, &offset); err != nil {
		return nil, err
	}
	if offset != len(data) {
		return nil, ErrInvalidInstructionData
	}

	return &args, nil
}
