package system

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
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	solana_system "github.com/metaverf/metaverf-ledger/pkg/solana/system"
	"github.com/metaverf/metaverf-ledger/pkg/testutil"
)

type testEnv struct {
	ctx       context.Context
	bank      *bank.Bank
	programs  *bank.Programs
	processor *Processor
}

func setup(t *testing.T) *testEnv {
	env := &testEnv{
		ctx:       context.Background(),
		bank:      bank.New(memory_account_store.New(), 1),
		programs:  bank.NewPrograms(),
		processor: NewProcessor(),
	}
	env.programs.Register(solana_system.ProgramKey[:], env.processor)
	return env
}

func (e *testEnv) execute(ix solana.Instruction) error {
	ic := bank.NewInstructionContext(e.bank, e.programs, ix, 0, logrus.StandardLogger().WithField("type", "system/test"))
	return e.processor.Process(e.ctx, ic)
}

func (e *testEnv) fund(address ed25519.PublicKey, lamports uint64) {
	acct := bank.NewEmptyAccount(address)
	acct.Lamports = lamports
	e.bank.Set(acct)
}

func (e *testEnv) get(t *testing.T, address ed25519.PublicKey) *bank.Account {
	acct, err := e.bank.Get(e.ctx, address)
	require.NoError(t, err)
	return acct
}

func TestCreateAccount(t *testing.T) {
	env := setup(t)

	keys := testutil.GenerateSolanaKeys(t, 3)
	funder, address, owner := keys[0], keys[1], keys[2]

	rent := solana_system.RentExemptBalance(100)
	env.fund(funder, rent+1)

	require.NoError(t, env.execute(solana_system.CreateAccount(funder, address, owner, rent, 100)))

	created := env.get(t, address)
	assert.EqualValues(t, owner, created.Owner)
	assert.Equal(t, rent, created.Lamports)
	assert.Equal(t, make([]byte, 100), created.Data)

	assert.EqualValues(t, 1, env.get(t, funder).Lamports)

	// The address is now in use

	env.fund(funder, 2*rent)
	err := env.execute(solana_system.CreateAccount(funder, address, owner, rent, 100))
	assert.Equal(t, solana_system.ErrorAccountAlreadyInUse, err)
}

func TestCreateAccount_Failures(t *testing.T) {
	env := setup(t)

	keys := testutil.GenerateSolanaKeys(t, 3)
	funder, address, owner := keys[0], keys[1], keys[2]

	env.fund(funder, 10)

	err := env.execute(solana_system.CreateAccount(funder, address, owner, 11, 0))
	assert.Equal(t, solana_system.ErrorResultWithNegativeLamports, err)

	err = env.execute(solana_system.CreateAccount(funder, address, owner, 1, solana_system.MaxPermittedDataLength+1))
	assert.Equal(t, solana_system.ErrorInvalidAccountDataLength, err)

	unsigned := solana_system.CreateAccount(funder, address, owner, 1, 0)
	unsigned.Accounts[1].IsSigner = false
	assert.Equal(t, bank.ErrMissingRequiredSignature, env.execute(unsigned))

	truncated := solana_system.CreateAccount(funder, address, owner, 1, 0)
	truncated.Data = truncated.Data[:10]
	assert.True(t, errors.Is(env.execute(truncated), bank.ErrInvalidInstructionData))

	assert.EqualValues(t, 10, env.get(t, funder).Lamports)
	assert.True(t, env.get(t, address).IsEmpty())
}

func TestTransfer(t *testing.T) {
	env := setup(t)

	keys := testutil.GenerateSolanaKeys(t, 2)
	from, to := keys[0], keys[1]

	env.fund(from, 100)

	require.NoError(t, env.execute(solana_system.Transfer(from, to, 40)))
	assert.EqualValues(t, 60, env.get(t, from).Lamports)
	assert.EqualValues(t, 40, env.get(t, to).Lamports)

	require.NoError(t, env.execute(solana_system.Transfer(from, from, 60)))
	assert.EqualValues(t, 60, env.get(t, from).Lamports)

	err := env.execute(solana_system.Transfer(from, to, 61))
	assert.Equal(t, solana_system.ErrorResultWithNegativeLamports, err)

	unsigned := solana_system.Transfer(from, to, 1)
	unsigned.Accounts[0].IsSigner = false
	assert.Equal(t, bank.ErrMissingRequiredSignature, env.execute(unsigned))

	// Accounts holding data cannot pay

	env.bank.Set(&bank.Account{Address: from, Owner: solana_system.ProgramKey[:], Lamports: 10, Data: []byte{1}})
	assert.True(t, errors.Is(env.execute(solana_system.Transfer(from, to, 1)), bank.ErrInvalidArgument))
}

func TestInvokeCreateAccount(t *testing.T) {
	env := setup(t)

	keys := testutil.GenerateSolanaKeys(t, 2)
	caller, funder := keys[0], keys[1]

	seeds := [][]byte{[]byte("state")}
	pda, err := solana.CreateProgramAddress(caller, seeds...)
	require.NoError(t, err)

	env.fund(funder, solana_system.RentExemptBalance(16))

	ic := bank.NewInstructionContext(env.bank, env.programs, solana.NewInstruction(
		caller,
		nil,
		solana.NewAccountMeta(funder, true),
		solana.NewAccountMeta(pda, false),
		solana.NewReadonlyAccountMeta(solana_system.ProgramKey[:], false),
	), 0, logrus.StandardLogger().WithField("type", "system/test"))

	err = InvokeCreateAccount(env.ctx, ic, funder, pda, caller, 16)
	assert.True(t, errors.Is(err, bank.ErrPrivilegeEscalation))

	require.NoError(t, InvokeCreateAccount(env.ctx, ic, funder, pda, caller, 16, seeds))

	created := env.get(t, pda)
	assert.EqualValues(t, caller, created.Owner)
	assert.Len(t, created.Data, 16)
	assert.EqualValues(t, 0, env.get(t, funder).Lamports)
}
