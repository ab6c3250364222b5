package bank

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	memory_account_store "github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account/memory"
	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
	"github.com/metaverf/metaverf-ledger/pkg/testutil"
)

type processorFunc func(ctx context.Context, ic *InstructionContext) error

func (f processorFunc) Process(ctx context.Context, ic *InstructionContext) error {
	return f(ctx, ic)
}

type testEnv struct {
	bank     *Bank
	programs *Programs
	caller   ed25519.PublicKey
	callee   ed25519.PublicKey
}

func setup(t *testing.T) *testEnv {
	keys := testutil.GenerateSolanaKeys(t, 2)
	return &testEnv{
		bank:     New(memory_account_store.New(), 1),
		programs: NewPrograms(),
		caller:   keys[0],
		callee:   keys[1],
	}
}

func (e *testEnv) newContext(accounts ...solana.AccountMeta) *InstructionContext {
	return NewInstructionContext(
		e.bank,
		e.programs,
		solana.NewInstruction(e.caller, nil, accounts...),
		1000,
		logrus.StandardLogger().WithField("type", "bank/test"),
	)
}

func TestInstructionContext_Store(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	keys := testutil.GenerateSolanaKeys(t, 3)
	owned, foreign, fresh := keys[0], keys[1], keys[2]

	env.bank.Set(&Account{Address: owned, Owner: env.caller, Lamports: 10, Data: []byte{1}})
	env.bank.Set(&Account{Address: foreign, Owner: env.callee, Lamports: 10, Data: []byte{1}})

	ic := env.newContext(
		solana.NewAccountMeta(owned, false),
		solana.NewAccountMeta(foreign, false),
		solana.NewReadonlyAccountMeta(owned, false),
		solana.NewAccountMeta(fresh, false),
	)
	assert.EqualValues(t, 1, ic.Depth())
	assert.NoError(t, ic.RequireAccounts(4))
	assert.True(t, errors.Is(ic.RequireAccounts(5), ErrNotEnoughAccountKeys))

	// Owned accounts may be freely modified

	acct, err := ic.Load(ctx, 0)
	require.NoError(t, err)
	acct.Lamports = 1
	acct.Data = []byte{2, 3}
	require.NoError(t, ic.Store(ctx, 0, acct))

	// Readonly accounts may only be stored unchanged

	acct, err = ic.Load(ctx, 2)
	require.NoError(t, err)
	require.NoError(t, ic.Store(ctx, 2, acct))
	acct.Lamports++
	assert.True(t, errors.Is(ic.Store(ctx, 2, acct), ErrReadonlyDataModified))

	// Foreign accounts may be credited, but nothing else

	acct, err = ic.Load(ctx, 1)
	require.NoError(t, err)
	acct.Lamports = 11
	require.NoError(t, ic.Store(ctx, 1, acct))

	acct.Lamports = 5
	assert.True(t, errors.Is(ic.Store(ctx, 1, acct), ErrExternalAccountLamportSpend))

	acct.Lamports = 11
	acct.Data = []byte{9}
	assert.True(t, errors.Is(ic.Store(ctx, 1, acct), ErrExternalAccountDataModified))

	acct.Data = []byte{1}
	acct.Owner = env.caller
	assert.True(t, errors.Is(ic.Store(ctx, 1, acct), ErrModifiedProgramID))

	// Ownership can be handed off only with zeroed data

	acct, err = ic.Load(ctx, 0)
	require.NoError(t, err)
	acct.Owner = env.callee
	assert.True(t, errors.Is(ic.Store(ctx, 0, acct), ErrModifiedProgramID))

	acct.Data = make([]byte, 4)
	require.NoError(t, ic.Store(ctx, 0, acct))

	// Index and address must agree

	acct, err = ic.Load(ctx, 3)
	require.NoError(t, err)
	assert.True(t, acct.IsEmpty())
	acct.Address = owned
	assert.True(t, errors.Is(ic.Store(ctx, 3, acct), ErrInvalidArgument))
}

func TestInstructionContext_Invoke(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	keys := testutil.GenerateSolanaKeys(t, 4)
	signer, writable, readonly, unknown := keys[0], keys[1], keys[2], keys[3]

	seeds := [][]byte{[]byte("vault")}
	pda, err := solana.CreateProgramAddress(env.caller, seeds...)
	require.NoError(t, err)

	var invoked []*InstructionContext
	env.programs.Register(env.callee, processorFunc(func(_ context.Context, ic *InstructionContext) error {
		invoked = append(invoked, ic)
		return nil
	}))

	ic := env.newContext(
		solana.NewAccountMeta(signer, true),
		solana.NewAccountMeta(writable, false),
		solana.NewReadonlyAccountMeta(readonly, false),
		solana.NewAccountMeta(pda, false),
		solana.NewReadonlyAccountMeta(env.callee, false),
	)

	require.NoError(t, ic.Invoke(ctx, solana.NewInstruction(
		env.callee,
		[]byte{1},
		solana.NewAccountMeta(signer, true),
		solana.NewAccountMeta(writable, false),
		solana.NewReadonlyAccountMeta(readonly, false),
		solana.NewReadonlyAccountMeta(system.RentSysVar, false),
	)))
	require.Len(t, invoked, 1)
	assert.EqualValues(t, env.callee, invoked[0].Program)
	assert.Equal(t, []byte{1}, invoked[0].Data)
	assert.Equal(t, 2, invoked[0].Depth())
	assert.EqualValues(t, 1000, invoked[0].Now)

	// PDA signing requires the right seeds

	pdaSigned := solana.NewInstruction(env.callee, nil, solana.NewAccountMeta(pda, true))
	assert.True(t, errors.Is(ic.Invoke(ctx, pdaSigned), ErrPrivilegeEscalation))
	assert.True(t, errors.Is(ic.Invoke(ctx, pdaSigned, [][]byte{[]byte("other")}), ErrPrivilegeEscalation))
	require.NoError(t, ic.Invoke(ctx, pdaSigned, seeds))

	for _, tc := range []struct {
		ix       solana.Instruction
		expected error
	}{
		{
			ix:       solana.NewInstruction(env.callee, nil, solana.NewAccountMeta(readonly, false)),
			expected: ErrPrivilegeEscalation,
		},
		{
			ix:       solana.NewInstruction(env.callee, nil, solana.NewAccountMeta(writable, true)),
			expected: ErrPrivilegeEscalation,
		},
		{
			ix:       solana.NewInstruction(env.callee, nil, solana.NewAccountMeta(system.RentSysVar, false)),
			expected: ErrPrivilegeEscalation,
		},
		{
			ix:       solana.NewInstruction(env.callee, nil, solana.NewReadonlyAccountMeta(unknown, false)),
			expected: ErrMissingAccount,
		},
		{
			ix:       solana.NewInstruction(env.caller, nil),
			expected: ErrMissingAccount,
		},
		{
			ix:       solana.NewInstruction(readonly, nil),
			expected: ErrUnsupportedProgramID,
		},
	} {
		assert.True(t, errors.Is(ic.Invoke(ctx, tc.ix), tc.expected), tc.expected.Error())
	}
	assert.Len(t, invoked, 2)
}

func TestInstructionContext_InvokeDepth(t *testing.T) {
	ctx := context.Background()
	env := setup(t)

	var maxDepth int
	env.programs.Register(env.callee, processorFunc(func(ctx context.Context, ic *InstructionContext) error {
		maxDepth = ic.Depth()
		return ic.Invoke(ctx, solana.NewInstruction(env.callee, nil, solana.NewReadonlyAccountMeta(env.callee, false)))
	}))

	ic := env.newContext(solana.NewReadonlyAccountMeta(env.callee, false))
	err := ic.Invoke(ctx, solana.NewInstruction(env.callee, nil, solana.NewReadonlyAccountMeta(env.callee, false)))
	assert.True(t, errors.Is(err, ErrCallDepth))
	assert.Equal(t, MaxInvokeDepth, maxDepth)
}
