package bank

import (
	"bytes"
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/solana"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
)

const (
	// MaxInvokeDepth bounds nested cross program invocations, with the top
	// level instruction at depth one
	MaxInvokeDepth = 4
)

// InstructionContext is everything a processor can observe and touch while
// executing a single instruction, including instructions it invokes.
type InstructionContext struct {
	Bank     *Bank
	Resolver Resolver

	Program  ed25519.PublicKey
	Accounts []solana.AccountMeta
	Data     []byte

	// Unix seconds
	Now int64

	depth int
	log   *logrus.Entry
}

// NewInstructionContext sets up the context for a top level instruction
func NewInstructionContext(b *Bank, resolver Resolver, ix solana.Instruction, now int64, log *logrus.Entry) *InstructionContext {
	return &InstructionContext{
		Bank:     b,
		Resolver: resolver,

		Program:  ix.Program,
		Accounts: ix.Accounts,
		Data:     ix.Data,

		Now: now,

		depth: 1,
		log:   log.WithField("program", base58.Encode(ix.Program)),
	}
}

func (ic *InstructionContext) Depth() int {
	return ic.depth
}

func (ic *InstructionContext) Log() *logrus.Entry {
	return ic.log
}

// RequireAccounts fails when fewer than n accounts were supplied
func (ic *InstructionContext) RequireAccounts(n int) error {
	if len(ic.Accounts) < n {
		return errors.Wrapf(ErrNotEnoughAccountKeys, "got %d accounts, need %d", len(ic.Accounts), n)
	}
	return nil
}

// Key returns the address of the account at index i. Callers must have
// checked the account count with RequireAccounts.
func (ic *InstructionContext) Key(i int) ed25519.PublicKey {
	return ic.Accounts[i].PublicKey
}

func (ic *InstructionContext) IsSigner(i int) bool {
	return i < len(ic.Accounts) && ic.Accounts[i].IsSigner
}

func (ic *InstructionContext) IsWritable(i int) bool {
	return i < len(ic.Accounts) && ic.Accounts[i].IsWritable
}

// Load returns a copy of the current state of the account at index i
func (ic *InstructionContext) Load(ctx context.Context, i int) (*Account, error) {
	if err := ic.RequireAccounts(i + 1); err != nil {
		return nil, err
	}
	return ic.Bank.Get(ctx, ic.Accounts[i].PublicKey)
}

// Store writes the account at index i, enforcing the runtime's ownership rules
// against the account's current state:
//
//   - unchanged accounts are always accepted
//   - only writable accounts may change
//   - only the owning program may modify data, reassign ownership or debit
//     lamports
//   - ownership may only be reassigned while the data is zero initialized
func (ic *InstructionContext) Store(ctx context.Context, i int, acct *Account) error {
	if err := ic.RequireAccounts(i + 1); err != nil {
		return err
	}

	meta := ic.Accounts[i]
	if !bytes.Equal(meta.PublicKey, acct.Address) {
		return errors.Wrapf(ErrInvalidArgument, "account %d is %s, not %s", i, base58.Encode(meta.PublicKey), base58.Encode(acct.Address))
	}

	current, err := ic.Bank.Get(ctx, meta.PublicKey)
	if err != nil {
		return err
	}

	if current.isEquivalent(acct) {
		return nil
	}

	if !meta.IsWritable {
		return errors.Wrapf(ErrReadonlyDataModified, "account %s", base58.Encode(meta.PublicKey))
	}

	isOwner := current.IsOwnedBy(ic.Program)

	if !bytes.Equal(current.Data, acct.Data) && !isOwner {
		return errors.Wrapf(ErrExternalAccountDataModified, "account %s", base58.Encode(meta.PublicKey))
	}

	if acct.Lamports < current.Lamports && !isOwner {
		return errors.Wrapf(ErrExternalAccountLamportSpend, "account %s", base58.Encode(meta.PublicKey))
	}

	if !bytes.Equal(current.Owner, acct.Owner) {
		if !isOwner || !isZeroed(acct.Data) {
			return errors.Wrapf(ErrModifiedProgramID, "account %s", base58.Encode(meta.PublicKey))
		}
	}

	ic.Bank.Set(acct)
	return nil
}

// Invoke executes ix as a cross program invocation. Every account ix touches
// must have been passed to the calling instruction, and privileges may only be
// carried through, never escalated. The exception is signing for program
// derived addresses of the calling program, one per set of signer seeds.
func (ic *InstructionContext) Invoke(ctx context.Context, ix solana.Instruction, signerSeeds ...[][]byte) error {
	if ic.depth >= MaxInvokeDepth {
		return errors.Wrapf(ErrCallDepth, "depth %d", ic.depth)
	}

	if _, _, ok := ic.privileges(ix.Program); !ok {
		return errors.Wrapf(ErrMissingAccount, "program %s", base58.Encode(ix.Program))
	}

	processor, ok := ic.Resolver.GetProcessor(ix.Program)
	if !ok {
		return errors.Wrapf(ErrUnsupportedProgramID, "program %s", base58.Encode(ix.Program))
	}

	pdaSigners := make([]ed25519.PublicKey, 0, len(signerSeeds))
	for _, seeds := range signerSeeds {
		address, err := solana.CreateProgramAddress(ic.Program, seeds...)
		if err != nil {
			return errors.Wrap(ErrInvalidSeeds, err.Error())
		}
		pdaSigners = append(pdaSigners, address)
	}

	for _, meta := range ix.Accounts {
		if isSysvar(meta.PublicKey) {
			if meta.IsWritable || meta.IsSigner {
				return errors.Wrapf(ErrPrivilegeEscalation, "sysvar %s", base58.Encode(meta.PublicKey))
			}
			continue
		}

		isSigner, isWritable, ok := ic.privileges(meta.PublicKey)
		if !ok {
			return errors.Wrapf(ErrMissingAccount, "account %s", base58.Encode(meta.PublicKey))
		}

		if meta.IsWritable && !isWritable {
			return errors.Wrapf(ErrPrivilegeEscalation, "writable %s", base58.Encode(meta.PublicKey))
		}

		if meta.IsSigner && !isSigner && !containsKey(pdaSigners, meta.PublicKey) {
			return errors.Wrapf(ErrPrivilegeEscalation, "signer %s", base58.Encode(meta.PublicKey))
		}
	}

	child := &InstructionContext{
		Bank:     ic.Bank,
		Resolver: ic.Resolver,

		Program:  ix.Program,
		Accounts: ix.Accounts,
		Data:     ix.Data,

		Now: ic.Now,

		depth: ic.depth + 1,
		log: ic.log.WithFields(logrus.Fields{
			"program": base58.Encode(ix.Program),
			"depth":   ic.depth + 1,
		}),
	}
	return processor.Process(ctx, child)
}

// privileges merges the permissions of every occurrence of key in the
// instruction's accounts
func (ic *InstructionContext) privileges(key ed25519.PublicKey) (isSigner, isWritable, found bool) {
	for _, meta := range ic.Accounts {
		if !bytes.Equal(meta.PublicKey, key) {
			continue
		}

		found = true
		isSigner = isSigner || meta.IsSigner
		isWritable = isWritable || meta.IsWritable
	}
	return isSigner, isWritable, found
}

func isSysvar(key ed25519.PublicKey) bool {
	return bytes.Equal(key, system.RentSysVar) ||
		bytes.Equal(key, system.ClockSysVar) ||
		bytes.Equal(key, system.RecentBlockhashesSysVar)
}

func isZeroed(data []byte) bool {
	for _, b := range data {
		if b != 0 {
			return false
		}
	}
	return true
}

func containsKey(keys []ed25519.PublicKey, key ed25519.PublicKey) bool {
	for _, candidate := range keys {
		if bytes.Equal(candidate, key) {
			return true
		}
	}
	return false
}
