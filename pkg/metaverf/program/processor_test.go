package program

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	memory_account_store "github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account/memory"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	registry_memory "github.com/metaverf/metaverf-ledger/pkg/metaverf/registry/memory"
	registry_mplcore "github.com/metaverf/metaverf-ledger/pkg/metaverf/registry/mplcore"
	metaverf_system "github.com/metaverf/metaverf-ledger/pkg/metaverf/system"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
	"github.com/metaverf/metaverf-ledger/pkg/solana/mplcore"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
	"github.com/metaverf/metaverf-ledger/pkg/solana/token"
	"github.com/metaverf/metaverf-ledger/pkg/testutil"
)

const (
	testDecimals  = 6
	testStartTime = 1_700_000_000

	testAnnualFee            = 1_000_000
	testSubscriptionDuration = 1_000_000
)

type testEnv struct {
	ctx      context.Context
	bank     *bank.Bank
	programs *bank.Programs
	now      int64

	admin         ed25519.PublicKey
	mint          ed25519.PublicKey
	mintAuthority ed25519.PublicKey
	protocol      ed25519.PublicKey
	treasury      ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	return setupWithRegistry(t, registry_mplcore.New())
}

func setupWithRegistry(t *testing.T, collections registry.CollectionRegistry) *testEnv {
	keys := testutil.GenerateSolanaKeys(t, 3)

	protocol, _, err := metaverf.GetProtocolAddress()
	require.NoError(t, err)

	treasury, err := metaverf.GetTreasuryAddress(&metaverf.GetTreasuryAddressArgs{
		Protocol: protocol,
		Mint:     keys[1],
	})
	require.NoError(t, err)

	env := &testEnv{
		ctx:      context.Background(),
		bank:     bank.New(memory_account_store.New(), 1),
		programs: bank.NewPrograms(),
		now:      testStartTime,

		admin:         keys[0],
		mint:          keys[1],
		mintAuthority: keys[2],
		protocol:      protocol,
		treasury:      treasury,
	}

	env.programs.Register(system.ProgramKey[:], metaverf_system.NewProcessor())
	env.programs.Register(token.ProgramKey, metaverf_token.NewProcessor())
	env.programs.Register(token.AssociatedTokenAccountProgramKey, metaverf_token.NewAssociatedProcessor())
	env.programs.Register(mplcore.PROGRAM_ID, registry_mplcore.NewProcessor())
	env.programs.Register(metaverf.PROGRAM_ID, NewProcessor(collections))

	env.fund(env.admin)

	require.NoError(t, env.execute(system.CreateAccount(env.admin, env.mint, token.ProgramKey, system.RentExemptBalance(token.MintSize), token.MintSize)))
	require.NoError(t, env.execute(token.InitializeMint(env.mint, env.mintAuthority, testDecimals)))

	return env
}

func (e *testEnv) fund(address ed25519.PublicKey) {
	acct := bank.NewEmptyAccount(address)
	acct.Lamports = 10_000_000_000
	e.bank.Set(acct)
}

func (e *testEnv) execute(ix solana.Instruction) error {
	processor, ok := e.programs.GetProcessor(ix.Program)
	if !ok {
		return bank.ErrUnsupportedProgramID
	}

	ic := bank.NewInstructionContext(e.bank, e.programs, ix, e.now, logrus.StandardLogger().WithField("type", "program/test"))
	return processor.Process(e.ctx, ic)
}

// newWallet returns a funded wallet holding tokens of the fee mint
func (e *testEnv) newWallet(t *testing.T, tokens uint64) ed25519.PublicKey {
	wallet := testutil.GenerateSolanaKeys(t, 1)[0]
	e.fund(wallet)

	ix, address, err := token.CreateAssociatedTokenAccount(e.admin, wallet, e.mint)
	require.NoError(t, err)
	require.NoError(t, e.execute(ix))

	if tokens > 0 {
		require.NoError(t, e.execute(token.MintTo(e.mint, address, e.mintAuthority, tokens)))
	}
	return wallet
}

func (e *testEnv) tokenAccount(t *testing.T, wallet ed25519.PublicKey) ed25519.PublicKey {
	address, err := token.GetAssociatedAccount(wallet, e.mint)
	require.NoError(t, err)
	return address
}

func (e *testEnv) lamports(t *testing.T, address ed25519.PublicKey) uint64 {
	acct, err := e.bank.Get(e.ctx, address)
	require.NoError(t, err)
	return acct.Lamports
}

func (e *testEnv) balance(t *testing.T, address ed25519.PublicKey) uint64 {
	acct, err := e.bank.Get(e.ctx, address)
	require.NoError(t, err)
	if acct.IsEmpty() {
		return 0
	}

	tokenAccount, err := metaverf_token.ParseAccount(acct)
	require.NoError(t, err)
	return tokenAccount.Amount
}

func (e *testEnv) getProtocol(t *testing.T) *metaverf.ProtocolAccount {
	acct, err := e.bank.Get(e.ctx, e.protocol)
	require.NoError(t, err)

	state, err := ParseProtocol(acct)
	require.NoError(t, err)
	return state
}

func (e *testEnv) getCollege(t *testing.T, collegeId uint16) *metaverf.CollegeAccount {
	acct, err := e.bank.Get(e.ctx, collegeAddress(t, collegeId))
	require.NoError(t, err)

	state, err := ParseCollege(acct)
	require.NoError(t, err)
	return state
}

func (e *testEnv) setCollege(t *testing.T, college *metaverf.CollegeAccount) {
	acct, err := e.bank.Get(e.ctx, collegeAddress(t, college.Id))
	require.NoError(t, err)

	acct.Data = college.Marshal()
	e.bank.Set(acct)
}

func collegeAddress(t *testing.T, collegeId uint16) ed25519.PublicKey {
	address, _, err := metaverf.GetCollegeAddress(&metaverf.GetCollegeAddressArgs{CollegeId: collegeId})
	require.NoError(t, err)
	return address
}

func (e *testEnv) initialize(fee, duration uint64) error {
	return e.execute(metaverf.NewInitializeInstruction(
		&metaverf.InitializeInstructionAccounts{
			Admin:    e.admin,
			Protocol: e.protocol,
			Mint:     e.mint,
			Treasury: e.treasury,
		},
		&metaverf.InitializeInstructionArgs{
			AnnualFee:            fee,
			SubscriptionDuration: duration,
		},
	))
}

func (e *testEnv) registerCollegeInstruction(t *testing.T, admin ed25519.PublicKey, collegeId uint16, authority ed25519.PublicKey) solana.Instruction {
	record, _, err := metaverf.GetAuthorityRecordAddress(&metaverf.GetAuthorityRecordAddressArgs{Authority: authority})
	require.NoError(t, err)

	return metaverf.NewRegisterCollegeInstruction(
		&metaverf.RegisterCollegeInstructionAccounts{
			Admin:                        admin,
			CollegeAuthority:             authority,
			Protocol:                     e.protocol,
			College:                      collegeAddress(t, collegeId),
			AuthorityRecord:              record,
			Mint:                         e.mint,
			CollegeAuthorityTokenAccount: e.tokenAccount(t, authority),
			Treasury:                     e.treasury,
		},
		&metaverf.RegisterCollegeInstructionArgs{CollegeId: collegeId},
	)
}

func (e *testEnv) registerCollege(t *testing.T, collegeId uint16, authority ed25519.PublicKey) error {
	return e.execute(e.registerCollegeInstruction(t, e.admin, collegeId, authority))
}

func (e *testEnv) renewSubscription(t *testing.T, collegeId uint16, authority ed25519.PublicKey) error {
	return e.renewSubscriptionWithAdmin(t, e.admin, collegeId, authority)
}

func (e *testEnv) renewSubscriptionWithAdmin(t *testing.T, admin ed25519.PublicKey, collegeId uint16, authority ed25519.PublicKey) error {
	return e.execute(metaverf.NewRenewSubscriptionInstruction(
		&metaverf.RenewSubscriptionInstructionAccounts{
			Admin:                        admin,
			CollegeAuthority:             authority,
			Protocol:                     e.protocol,
			College:                      collegeAddress(t, collegeId),
			Mint:                         e.mint,
			CollegeAuthorityTokenAccount: e.tokenAccount(t, authority),
			Treasury:                     e.treasury,
		},
		&metaverf.RenewSubscriptionInstructionArgs{CollegeId: collegeId},
	))
}

func (e *testEnv) updateParameters(admin ed25519.PublicKey, fee, duration uint64) error {
	return e.execute(metaverf.NewUpdateParametersInstruction(
		&metaverf.UpdateParametersInstructionAccounts{
			Admin:    admin,
			Protocol: e.protocol,
		},
		&metaverf.UpdateParametersInstructionArgs{
			NewAnnualFee:            fee,
			NewSubscriptionDuration: duration,
		},
	))
}

func (e *testEnv) addCollection(t *testing.T, collegeId uint16, authority, collection ed25519.PublicKey) error {
	record, _, err := metaverf.GetCollectionRecordAddress(&metaverf.GetCollectionRecordAddressArgs{
		CollegeId:  collegeId,
		Collection: collection,
	})
	require.NoError(t, err)

	return e.execute(metaverf.NewAddCollectionInstruction(
		&metaverf.AddCollectionInstructionAccounts{
			CollegeAuthority: authority,
			Protocol:         e.protocol,
			College:          collegeAddress(t, collegeId),
			Collection:       collection,
			CollectionRecord: record,
		},
		&metaverf.AddCollectionInstructionArgs{
			CollegeId: collegeId,
			Metadata: metaverf.CollectionMetadata{
				Name: "Class of 2024",
				Uri:  "https://example.edu/collections/2024.json",
			},
		},
	))
}

func testCertificate() metaverf.CertificateMetadata {
	return metaverf.CertificateMetadata{
		Name:           "BSc Computer Science",
		Uri:            "https://example.edu/certs/42.json",
		StudentName:    "Ada Lovelace",
		CourseName:     "Computer Science",
		CompletionDate: "2024-06-30",
		Grade:          "First",
	}
}

func (e *testEnv) mintCertificate(t *testing.T, collegeId uint16, authority, collection, asset, student ed25519.PublicKey, metadata metaverf.CertificateMetadata) error {
	record, _, err := metaverf.GetCollectionRecordAddress(&metaverf.GetCollectionRecordAddressArgs{
		CollegeId:  collegeId,
		Collection: collection,
	})
	require.NoError(t, err)

	return e.execute(metaverf.NewMintCertificateInstruction(
		&metaverf.MintCertificateInstructionAccounts{
			CollegeAuthority: authority,
			Protocol:         e.protocol,
			College:          collegeAddress(t, collegeId),
			CollectionRecord: record,
			Collection:       collection,
			Asset:            asset,
			Student:          student,
		},
		&metaverf.MintCertificateInstructionArgs{
			CollegeId: collegeId,
			Metadata:  metadata,
		},
	))
}

func (e *testEnv) withdrawFees(t *testing.T, admin ed25519.PublicKey, amount uint64) error {
	return e.execute(metaverf.NewWithdrawFeesInstruction(
		&metaverf.WithdrawFeesInstructionAccounts{
			Admin:             admin,
			Protocol:          e.protocol,
			Mint:              e.mint,
			Treasury:          e.treasury,
			AdminTokenAccount: e.tokenAccount(t, admin),
		},
		&metaverf.WithdrawFeesInstructionArgs{Amount: amount},
	))
}

func TestScenario_FeeLifecycle(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, 10*testAnnualFee)

	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	protocol := env.getProtocol(t)
	assert.EqualValues(t, env.admin, protocol.Admin)
	assert.EqualValues(t, env.mint, protocol.Mint)
	assert.EqualValues(t, env.treasury, protocol.Treasury)
	assert.EqualValues(t, 0, protocol.CollegeCount)
	assert.EqualValues(t, 0, env.balance(t, env.treasury))

	require.NoError(t, env.registerCollege(t, 1, authority))

	assert.EqualValues(t, 1, env.getProtocol(t).CollegeCount)
	assert.EqualValues(t, testAnnualFee, env.balance(t, env.treasury))
	assert.EqualValues(t, 9*testAnnualFee, env.balance(t, env.tokenAccount(t, authority)))

	college := env.getCollege(t, 1)
	assert.EqualValues(t, 1, college.Id)
	assert.EqualValues(t, authority, college.Authority)
	assert.True(t, college.Active)
	assert.EqualValues(t, testStartTime+testSubscriptionDuration, college.Expiry)
	assert.EqualValues(t, testStartTime, college.LastPayment)

	env.now += 10
	require.NoError(t, env.renewSubscription(t, 1, authority))

	renewed := env.getCollege(t, 1)
	assert.True(t, renewed.Active)
	assert.Equal(t, college.Expiry+testSubscriptionDuration, renewed.Expiry)
	assert.Equal(t, env.now, renewed.LastPayment)
	assert.EqualValues(t, 2*testAnnualFee, env.balance(t, env.treasury))

	require.NoError(t, env.updateParameters(env.admin, 2*testAnnualFee, testSubscriptionDuration))
	assert.EqualValues(t, 2*testAnnualFee, env.getProtocol(t).AnnualFee)
	assert.Equal(t, renewed.Expiry, env.getCollege(t, 1).Expiry)

	require.NoError(t, env.withdrawFees(t, env.admin, 0))
	assert.EqualValues(t, 0, env.balance(t, env.treasury))
	assert.EqualValues(t, 2*testAnnualFee, env.balance(t, env.tokenAccount(t, env.admin)))
}

func TestInitialize_Failures(t *testing.T) {
	env := setup(t)

	assert.Equal(t, metaverf.ErrInvalidAmount, env.initialize(0, testSubscriptionDuration))
	assert.Equal(t, metaverf.ErrInvalidAmount, env.initialize(testAnnualFee, 0))

	wrongProtocol := metaverf.NewInitializeInstruction(
		&metaverf.InitializeInstructionAccounts{
			Admin:    env.admin,
			Protocol: env.mintAuthority,
			Mint:     env.mint,
			Treasury: env.treasury,
		},
		&metaverf.InitializeInstructionArgs{AnnualFee: 1, SubscriptionDuration: 1},
	)
	assert.Equal(t, metaverf.ErrInvalidAccount, env.execute(wrongProtocol))

	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	assert.Equal(t, metaverf.ErrAlreadyInitialized, env.initialize(testAnnualFee, testSubscriptionDuration))

	acct, err := env.bank.Get(env.ctx, env.treasury)
	require.NoError(t, err)
	treasury, err := metaverf_token.ParseAccount(acct)
	require.NoError(t, err)
	assert.EqualValues(t, env.protocol, treasury.Owner)
	assert.EqualValues(t, env.mint, treasury.Mint)
}

func TestRegisterCollege_SequenceMismatch(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	assert.Equal(t, metaverf.ErrSequenceMismatch, env.registerCollege(t, 2, authority))
	assert.EqualValues(t, 0, env.getProtocol(t).CollegeCount)
	assert.EqualValues(t, 0, env.balance(t, env.treasury))

	acct, err := env.bank.Get(env.ctx, collegeAddress(t, 2))
	require.NoError(t, err)
	assert.True(t, acct.IsEmpty())

	require.NoError(t, env.registerCollege(t, 1, authority))
	assert.Equal(t, metaverf.ErrSequenceMismatch, env.registerCollege(t, 1, env.newWallet(t, testAnnualFee)))
}

func TestRegisterCollege_Sequential(t *testing.T) {
	env := setup(t)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	for i := uint16(1); i <= 3; i++ {
		before := env.getProtocol(t).CollegeCount
		require.NoError(t, env.registerCollege(t, i, env.newWallet(t, testAnnualFee)))

		after := env.getProtocol(t).CollegeCount
		assert.Equal(t, before+1, after)
		assert.Equal(t, i, after)
		assert.Equal(t, i, env.getCollege(t, i).Id)
	}
}

func TestRegisterCollege_AuthorityPaysRent(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	adminBefore := env.lamports(t, env.admin)
	authorityBefore := env.lamports(t, authority)

	require.NoError(t, env.registerCollege(t, 1, authority))

	college := env.lamports(t, collegeAddress(t, 1))
	record, _, err := metaverf.GetAuthorityRecordAddress(&metaverf.GetAuthorityRecordAddressArgs{Authority: authority})
	require.NoError(t, err)
	rent := college + env.lamports(t, record)

	assert.True(t, college > 0)
	assert.Equal(t, adminBefore, env.lamports(t, env.admin))
	assert.Equal(t, authorityBefore-rent, env.lamports(t, authority))
}

func TestRegisterCollege_DuplicateAuthority(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, 2*testAnnualFee)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	require.NoError(t, env.registerCollege(t, 1, authority))
	assert.Equal(t, metaverf.ErrDuplicateAuthority, env.registerCollege(t, 2, authority))
	assert.EqualValues(t, 1, env.getProtocol(t).CollegeCount)
}

func TestRegisterCollege_InsufficientFunds(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee-1)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	assert.Equal(t, metaverf.ErrInsufficientFunds, env.registerCollege(t, 1, authority))
	assert.EqualValues(t, 0, env.getProtocol(t).CollegeCount)
	assert.EqualValues(t, 0, env.balance(t, env.treasury))
	assert.EqualValues(t, testAnnualFee-1, env.balance(t, env.tokenAccount(t, authority)))
}

func TestRegisterCollege_Unauthorized(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	impostor := env.newWallet(t, 0)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	err := env.execute(env.registerCollegeInstruction(t, impostor, 1, authority))
	assert.Equal(t, metaverf.ErrUnauthorized, err)
	assert.EqualValues(t, 0, env.getProtocol(t).CollegeCount)

	unsigned := env.registerCollegeInstruction(t, env.admin, 1, authority)
	unsigned.Accounts[1].IsSigner = false
	assert.True(t, errors.Is(env.execute(unsigned), bank.ErrMissingRequiredSignature))
}

func TestRegisterCollege_Uninitialized(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)

	assert.Equal(t, metaverf.ErrAccountNotInitialized, env.registerCollege(t, 1, authority))
}

func TestRenewSubscription(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, 10*testAnnualFee)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, authority))

	registered := env.getCollege(t, 1)

	// Lapsed subscriptions restart from the renewal time
	env.now = registered.Expiry + 500
	registered.Active = false
	env.setCollege(t, registered)

	require.NoError(t, env.renewSubscription(t, 1, authority))

	renewed := env.getCollege(t, 1)
	assert.True(t, renewed.Active)
	assert.Equal(t, env.now+testSubscriptionDuration, renewed.Expiry)
	assert.Equal(t, env.now, renewed.LastPayment)

	// Live subscriptions extend from the current expiry
	env.now += 100
	require.NoError(t, env.renewSubscription(t, 1, authority))
	assert.Equal(t, renewed.Expiry+testSubscriptionDuration, env.getCollege(t, 1).Expiry)
	assert.EqualValues(t, 3*testAnnualFee, env.balance(t, env.treasury))
}

func TestRenewSubscription_Failures(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	impostor := env.newWallet(t, 10*testAnnualFee)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, authority))

	before := env.getCollege(t, 1)

	assert.Equal(t, metaverf.ErrUnauthorized, env.renewSubscription(t, 1, impostor))
	assert.Equal(t, metaverf.ErrInsufficientFunds, env.renewSubscription(t, 1, authority))
	assert.Equal(t, metaverf.ErrAccountNotInitialized, env.renewSubscription(t, 2, authority))

	// A funded college authority still needs the protocol admin to co-sign
	require.NoError(t, env.execute(token.MintTo(env.mint, env.tokenAccount(t, authority), env.mintAuthority, testAnnualFee)))
	assert.Equal(t, metaverf.ErrUnauthorized, env.renewSubscriptionWithAdmin(t, impostor, 1, authority))
	assert.EqualValues(t, testAnnualFee, env.balance(t, env.tokenAccount(t, authority)))

	assert.Equal(t, before, env.getCollege(t, 1))
	assert.EqualValues(t, testAnnualFee, env.balance(t, env.treasury))
}

func TestUpdateParameters(t *testing.T) {
	env := setup(t)
	impostor := env.newWallet(t, 0)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	assert.Equal(t, metaverf.ErrUnauthorized, env.updateParameters(impostor, 5, 5))
	assert.Equal(t, metaverf.ErrInvalidAmount, env.updateParameters(env.admin, 0, 5))
	assert.Equal(t, metaverf.ErrInvalidAmount, env.updateParameters(env.admin, 5, 0))

	protocol := env.getProtocol(t)
	assert.EqualValues(t, testAnnualFee, protocol.AnnualFee)
	assert.EqualValues(t, testSubscriptionDuration, protocol.SubscriptionDuration)

	require.NoError(t, env.updateParameters(env.admin, 5, 7))

	protocol = env.getProtocol(t)
	assert.EqualValues(t, 5, protocol.AnnualFee)
	assert.EqualValues(t, 7, protocol.SubscriptionDuration)

	authority := env.newWallet(t, 5)
	require.NoError(t, env.registerCollege(t, 1, authority))
	assert.EqualValues(t, testStartTime+7, env.getCollege(t, 1).Expiry)
	assert.EqualValues(t, 5, env.balance(t, env.treasury))
}

func TestAddCollection(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	collection := testutil.GenerateSolanaKeys(t, 1)[0]
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, authority))

	require.NoError(t, env.addCollection(t, 1, authority, collection))
	assert.EqualValues(t, 1, env.getCollege(t, 1).CollectionCount)

	acct, err := env.bank.Get(env.ctx, collection)
	require.NoError(t, err)
	state, err := registry_mplcore.ParseCollection(acct)
	require.NoError(t, err)
	assert.EqualValues(t, authority, state.UpdateAuthority)
	assert.Equal(t, "Class of 2024", state.Name)

	assert.Equal(t, metaverf.ErrAlreadyInitialized, env.addCollection(t, 1, authority, collection))
}

func TestAddCollection_Failures(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	impostor := env.newWallet(t, 0)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, authority))

	collection := testutil.GenerateSolanaKeys(t, 1)[0]

	assert.Equal(t, metaverf.ErrUnauthorized, env.addCollection(t, 1, impostor, collection))

	college := env.getCollege(t, 1)
	college.CollectionCount = metaverf.MaxCollectionsPerCollege
	env.setCollege(t, college)
	assert.Equal(t, metaverf.ErrCollectionLimitReached, env.addCollection(t, 1, authority, collection))

	college.CollectionCount = 0
	env.setCollege(t, college)
	env.now = college.Expiry
	assert.Equal(t, metaverf.ErrSubscriptionExpired, env.addCollection(t, 1, authority, collection))

	env.now = testStartTime
	college.Active = false
	env.setCollege(t, college)
	assert.Equal(t, metaverf.ErrSubscriptionExpired, env.addCollection(t, 1, authority, collection))

	acct, err := env.bank.Get(env.ctx, collection)
	require.NoError(t, err)
	assert.True(t, acct.IsEmpty())
}

func TestMintCertificate(t *testing.T) {
	env := setup(t)
	authority := env.newWallet(t, testAnnualFee)
	keys := testutil.GenerateSolanaKeys(t, 4)
	collection, asset, student, recipient := keys[0], keys[1], keys[2], keys[3]

	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, authority))
	require.NoError(t, env.addCollection(t, 1, authority, collection))

	require.NoError(t, env.mintCertificate(t, 1, authority, collection, asset, student, testCertificate()))

	acct, err := env.bank.Get(env.ctx, asset)
	require.NoError(t, err)
	state, err := registry_mplcore.ParseAsset(acct)
	require.NoError(t, err)

	assert.EqualValues(t, student, state.Owner)
	assert.Equal(t, "BSc Computer Science", state.Name)
	assert.True(t, state.IsFrozen())
	assert.Equal(t, []mplcore.Attribute{
		{Key: "student_name", Value: "Ada Lovelace"},
		{Key: "course_name", Value: "Computer Science"},
		{Key: "completion_date", Value: "2024-06-30"},
		{Key: "grade", Value: "First"},
	}, state.GetAttributes())

	// Certificates are bound to the student
	err = env.execute(mplcore.NewTransferV1Instruction(&mplcore.TransferV1InstructionAccounts{
		Asset:      asset,
		Collection: collection,
		Payer:      student,
		NewOwner:   recipient,
	}))
	assert.Equal(t, mplcore.ErrAssetIsFrozen, err)
}

func TestMintCertificate_Failures(t *testing.T) {
	env := setup(t)
	first := env.newWallet(t, testAnnualFee)
	second := env.newWallet(t, testAnnualFee)
	keys := testutil.GenerateSolanaKeys(t, 3)
	collection, asset, student := keys[0], keys[1], keys[2]

	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, first))
	require.NoError(t, env.registerCollege(t, 2, second))
	require.NoError(t, env.addCollection(t, 1, first, collection))

	// Another college cannot mint into the collection
	assert.Equal(t, metaverf.ErrCollectionNotFound, env.mintCertificate(t, 2, second, collection, asset, student, testCertificate()))
	assert.Equal(t, metaverf.ErrUnauthorized, env.mintCertificate(t, 1, second, collection, asset, student, testCertificate()))

	tooLong := testCertificate()
	tooLong.Grade = string(make([]byte, metaverf.MaxAttributeLength+1))
	assert.Equal(t, metaverf.ErrMetadataTooLong, env.mintCertificate(t, 1, first, collection, asset, student, tooLong))

	// The asset program's id would leave the certificate with the college
	assert.Equal(t, metaverf.ErrInvalidAccount, env.mintCertificate(t, 1, first, collection, asset, mplcore.PROGRAM_ID, testCertificate()))
	assert.Equal(t, metaverf.ErrInvalidAccount, env.mintCertificate(t, 1, first, collection, asset, collegeAddress(t, 1), testCertificate()))

	env.now = env.getCollege(t, 1).Expiry + 1
	assert.Equal(t, metaverf.ErrSubscriptionExpired, env.mintCertificate(t, 1, first, collection, asset, student, testCertificate()))

	acct, err := env.bank.Get(env.ctx, asset)
	require.NoError(t, err)
	assert.True(t, acct.IsEmpty())
}

func TestMintCertificate_MemoryRegistry(t *testing.T) {
	collections := registry_memory.New()
	env := setupWithRegistry(t, collections)
	authority := env.newWallet(t, testAnnualFee)
	keys := testutil.GenerateSolanaKeys(t, 4)
	collection, asset, student, recipient := keys[0], keys[1], keys[2], keys[3]

	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))
	require.NoError(t, env.registerCollege(t, 1, authority))
	require.NoError(t, env.addCollection(t, 1, authority, collection))
	require.NoError(t, env.mintCertificate(t, 1, authority, collection, asset, student, testCertificate()))

	created, ok := collections.GetCollection(collection)
	require.True(t, ok)
	assert.EqualValues(t, authority, created.UpdateAuthority)
	assert.EqualValues(t, 1, created.NumMinted)

	minted, ok := collections.GetAsset(asset)
	require.True(t, ok)
	assert.EqualValues(t, collection, minted.Collection)
	assert.EqualValues(t, student, minted.Owner)
	assert.True(t, minted.NonTransferable)
	assert.Equal(t, []registry.Attribute{
		{Key: "student_name", Value: "Ada Lovelace"},
		{Key: "course_name", Value: "Computer Science"},
		{Key: "completion_date", Value: "2024-06-30"},
		{Key: "grade", Value: "First"},
	}, minted.Attributes)

	assert.Equal(t, mplcore.ErrAssetIsFrozen, collections.Transfer(env.ctx, asset, student, recipient))
}

func TestWithdrawFees(t *testing.T) {
	env := setup(t)
	impostor := env.newWallet(t, 0)
	require.NoError(t, env.initialize(testAnnualFee, testSubscriptionDuration))

	assert.Equal(t, metaverf.ErrInvalidAmount, env.withdrawFees(t, env.admin, 0))

	require.NoError(t, env.registerCollege(t, 1, env.newWallet(t, testAnnualFee)))

	assert.Equal(t, metaverf.ErrInsufficientFunds, env.withdrawFees(t, env.admin, testAnnualFee+1))
	assert.EqualValues(t, testAnnualFee, env.balance(t, env.treasury))

	assert.Equal(t, metaverf.ErrUnauthorized, env.withdrawFees(t, impostor, 1))
	assert.EqualValues(t, testAnnualFee, env.balance(t, env.treasury))

	require.NoError(t, env.withdrawFees(t, env.admin, 400_000))
	assert.EqualValues(t, 600_000, env.balance(t, env.treasury))
	assert.EqualValues(t, 400_000, env.balance(t, env.tokenAccount(t, env.admin)))

	// The admin's token account already exists the second time round
	require.NoError(t, env.withdrawFees(t, env.admin, 0))
	assert.EqualValues(t, 0, env.balance(t, env.treasury))
	assert.EqualValues(t, testAnnualFee, env.balance(t, env.tokenAccount(t, env.admin)))

	assert.Equal(t, metaverf.ErrInvalidAmount, env.withdrawFees(t, env.admin, 0))
}

func TestUnknownInstruction(t *testing.T) {
	env := setup(t)

	err := env.execute(solana.NewInstruction(metaverf.PROGRAM_ID, []byte{1, 2, 3}))
	assert.True(t, errors.Is(err, bank.ErrInvalidInstructionData))
}
