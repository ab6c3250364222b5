package metaverf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
)

func TestInitializeInstruction(t *testing.T) {
	accounts := &InitializeInstructionAccounts{
		Admin:    newKey(t),
		Protocol: newKey(t),
		Mint:     newKey(t),
		Treasury: newKey(t),
	}
	args := &InitializeInstructionArgs{
		AnnualFee:            1_000_000,
		SubscriptionDuration: 2_000_000,
	}

	ix := NewInitializeInstruction(accounts, args)
	assert.EqualValues(t, PROGRAM_ID, ix.Program)
	require.Len(t, ix.Accounts, InitializeInstructionAccountsCount)
	assertMeta(t, ix.Accounts[0], accounts.Admin, true, true)
	assertMeta(t, ix.Accounts[1], accounts.Protocol, false, true)
	assertMeta(t, ix.Accounts[3], accounts.Treasury, false, true)
	assert.Equal(t, InstructionTypeInitialize, GetInstructionType(ix.Data))

	decoded, err := InitializeInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)

	_, err = InitializeInstructionArgsFromBinary(ix.Data[:len(ix.Data)-1])
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestRegisterCollegeInstruction(t *testing.T) {
	accounts := &RegisterCollegeInstructionAccounts{
		Admin:                        newKey(t),
		CollegeAuthority:             newKey(t),
		Protocol:                     newKey(t),
		College:                      newKey(t),
		AuthorityRecord:              newKey(t),
		Mint:                         newKey(t),
		CollegeAuthorityTokenAccount: newKey(t),
		Treasury:                     newKey(t),
	}
	args := &RegisterCollegeInstructionArgs{CollegeId: 513}

	ix := NewRegisterCollegeInstruction(accounts, args)
	require.Len(t, ix.Accounts, RegisterCollegeInstructionAccountsCount)
	assertMeta(t, ix.Accounts[0], accounts.Admin, true, true)
	assertMeta(t, ix.Accounts[1], accounts.CollegeAuthority, true, true)
	assert.Equal(t, []byte{1, 2}, ix.Data[8:])
	assert.Equal(t, InstructionTypeRegisterCollege, GetInstructionType(ix.Data))

	decoded, err := RegisterCollegeInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)

	// Another instruction's payload is rejected by discriminator
	renew := NewRenewSubscriptionInstruction(&RenewSubscriptionInstructionAccounts{}, &RenewSubscriptionInstructionArgs{CollegeId: 513})
	_, err = RegisterCollegeInstructionArgsFromBinary(renew.Data)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestRenewSubscriptionInstruction(t *testing.T) {
	accounts := &RenewSubscriptionInstructionAccounts{
		Admin:                        newKey(t),
		CollegeAuthority:             newKey(t),
		Protocol:                     newKey(t),
		College:                      newKey(t),
		Mint:                         newKey(t),
		CollegeAuthorityTokenAccount: newKey(t),
		Treasury:                     newKey(t),
	}
	args := &RenewSubscriptionInstructionArgs{CollegeId: 1}

	ix := NewRenewSubscriptionInstruction(accounts, args)
	require.Len(t, ix.Accounts, RenewSubscriptionInstructionAccountsCount)
	assertMeta(t, ix.Accounts[0], accounts.Admin, true, false)
	assertMeta(t, ix.Accounts[1], accounts.CollegeAuthority, true, true)
	assertMeta(t, ix.Accounts[3], accounts.College, false, true)

	decoded, err := RenewSubscriptionInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)
}

func TestUpdateParametersInstruction(t *testing.T) {
	accounts := &UpdateParametersInstructionAccounts{
		Admin:    newKey(t),
		Protocol: newKey(t),
	}
	args := &UpdateParametersInstructionArgs{
		NewAnnualFee:            2_000_000,
		NewSubscriptionDuration: 500,
	}

	ix := NewUpdateParametersInstruction(accounts, args)
	require.Len(t, ix.Accounts, UpdateParametersInstructionAccountsCount)
	assertMeta(t, ix.Accounts[0], accounts.Admin, true, false)
	assertMeta(t, ix.Accounts[1], accounts.Protocol, false, true)

	decoded, err := UpdateParametersInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)
}

func TestAddCollectionInstruction(t *testing.T) {
	accounts := &AddCollectionInstructionAccounts{
		CollegeAuthority: newKey(t),
		Protocol:         newKey(t),
		College:          newKey(t),
		Collection:       newKey(t),
		CollectionRecord: newKey(t),
	}
	args := &AddCollectionInstructionArgs{
		CollegeId: 3,
		Metadata: CollectionMetadata{
			Name: "Computer Science 2024",
			Uri:  "https://example.com/collection.json",
		},
	}

	ix := NewAddCollectionInstruction(accounts, args)
	require.Len(t, ix.Accounts, AddCollectionInstructionAccountsCount)
	assertMeta(t, ix.Accounts[3], accounts.Collection, true, true)
	assert.EqualValues(t, MPL_CORE_PROGRAM_ID, ix.Accounts[5].PublicKey)

	decoded, err := AddCollectionInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)

	_, err = AddCollectionInstructionArgsFromBinary(ix.Data[:len(ix.Data)-1])
	assert.Equal(t, ErrInvalidInstructionData, err)

	_, err = AddCollectionInstructionArgsFromBinary(append(ix.Data, 0))
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestMintCertificateInstruction(t *testing.T) {
	accounts := &MintCertificateInstructionAccounts{
		CollegeAuthority: newKey(t),
		Protocol:         newKey(t),
		College:          newKey(t),
		CollectionRecord: newKey(t),
		Collection:       newKey(t),
		Asset:            newKey(t),
		Student:          newKey(t),
	}
	args := &MintCertificateInstructionArgs{
		CollegeId: 3,
		Metadata: CertificateMetadata{
			Name:           "Certificate of Completion",
			Uri:            "https://example.com/cert.json",
			StudentName:    "Jane Doe",
			CourseName:     "Distributed Systems",
			CompletionDate: "2024-05-30",
			Grade:          "A",
		},
	}

	ix := NewMintCertificateInstruction(accounts, args)
	require.Len(t, ix.Accounts, MintCertificateInstructionAccountsCount)
	assertMeta(t, ix.Accounts[0], accounts.CollegeAuthority, true, true)
	assertMeta(t, ix.Accounts[5], accounts.Asset, true, true)
	assertMeta(t, ix.Accounts[6], accounts.Student, false, false)
	assert.Equal(t, InstructionTypeMintCertificate, GetInstructionType(ix.Data))

	decoded, err := MintCertificateInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, args, decoded)

	// A length prefix pointing past the end of the payload is rejected
	corrupted := append([]byte{}, ix.Data...)
	corrupted[10] = 0xff
	_, err = MintCertificateInstructionArgsFromBinary(corrupted)
	assert.Equal(t, ErrInvalidInstructionData, err)
}

func TestWithdrawFeesInstruction(t *testing.T) {
	accounts := &WithdrawFeesInstructionAccounts{
		Admin:             newKey(t),
		Protocol:          newKey(t),
		Mint:              newKey(t),
		Treasury:          newKey(t),
		AdminTokenAccount: newKey(t),
	}

	ix := NewWithdrawFeesInstruction(accounts, &WithdrawFeesInstructionArgs{})
	require.Len(t, ix.Accounts, WithdrawFeesInstructionAccountsCount)
	assertMeta(t, ix.Accounts[4], accounts.AdminTokenAccount, false, true)

	decoded, err := WithdrawFeesInstructionArgsFromBinary(ix.Data)
	require.NoError(t, err)
	assert.EqualValues(t, 0, decoded.Amount)
}

func TestGetInstructionType(t *testing.T) {
	assert.Equal(t, InstructionTypeUnknown, GetInstructionType(nil))
	assert.Equal(t, InstructionTypeUnknown, GetInstructionType(make([]byte, 16)))

	for instructionType, discriminator := range instructionDiscriminators {
		assert.Equal(t, instructionType, GetInstructionType(discriminator))
		assert.NotEqual(t, "unknown", instructionType.String())
	}
}

func TestCertificateMetadata_Validate(t *testing.T) {
	valid := &CertificateMetadata{
		Name:        strings.Repeat("n", MaxNameLength),
		Uri:         strings.Repeat("u", MaxUriLength),
		StudentName: strings.Repeat("s", MaxAttributeLength),
	}
	require.NoError(t, valid.Validate())

	for _, mutate := range []func(m *CertificateMetadata){
		func(m *CertificateMetadata) { m.Name += "x" },
		func(m *CertificateMetadata) { m.Uri += "x" },
		func(m *CertificateMetadata) { m.StudentName += "x" },
		func(m *CertificateMetadata) { m.Grade = strings.Repeat("g", MaxAttributeLength+1) },
	} {
		invalid := *valid
		mutate(&invalid)
		assert.Equal(t, ErrMetadataTooLong, invalid.Validate())
	}

	collection := &CollectionMetadata{Name: strings.Repeat("n", MaxNameLength+1)}
	assert.Equal(t, ErrMetadataTooLong, collection.Validate())
}

func assertMeta(t *testing.T, meta solana.AccountMeta, key []byte, isSigner, isWritable bool) {
	assert.EqualValues(t, key, meta.PublicKey)
	assert.Equal(t, isSigner, meta.IsSigner)
	assert.Equal(t, isWritable, meta.IsWritable)
}
