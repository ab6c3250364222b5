package bank

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
)

// Bank is a transaction scoped overlay on top of the account store. Reads fall
// through to the store, writes stay in memory until Commit. A Bank is used by a
// single transaction and is not safe for concurrent use.
type Bank struct {
	store account.Store
	slot  uint64

	accounts map[string]*Account
	dirty    []string
	isDirty  map[string]struct{}
}

// New returns a Bank whose writes will be committed at the provided slot
func New(store account.Store, slot uint64) *Bank {
	return &Bank{
		store:    store,
		slot:     slot,
		accounts: make(map[string]*Account),
		isDirty:  make(map[string]struct{}),
	}
}

func (b *Bank) Slot() uint64 {
	return b.slot
}

// Get returns a copy of the account's current state. Addresses that were never
// written resolve to an empty system owned account.
func (b *Bank) Get(ctx context.Context, address ed25519.PublicKey) (*Account, error) {
	if len(address) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid address length: %d", len(address))
	}

	key := base58.Encode(address)
	if cached, ok := b.accounts[key]; ok {
		return cached.Clone(), nil
	}

	record, err := b.store.GetByAddress(ctx, key)
	switch err {
	case nil:
	case account.ErrAccountNotFound:
		empty := NewEmptyAccount(address)
		b.accounts[key] = empty
		return empty.Clone(), nil
	default:
		return nil, errors.Wrapf(err, "error loading account %s", key)
	}

	loaded, err := FromRecord(record)
	if err != nil {
		return nil, err
	}

	b.accounts[key] = loaded
	return loaded.Clone(), nil
}

// Set overwrites the account's in-flight state and marks it for commit
func (b *Bank) Set(acct *Account) {
	key := base58.Encode(acct.Address)

	b.accounts[key] = acct.Clone()
	if _, ok := b.isDirty[key]; !ok {
		b.isDirty[key] = struct{}{}
		b.dirty = append(b.dirty, key)
	}
}

// Dirty returns the accounts modified through this bank, in the order they
// were first written
func (b *Bank) Dirty() []*Account {
	res := make([]*Account, len(b.dirty))
	for i, key := range b.dirty {
		res[i] = b.accounts[key].Clone()
	}
	return res
}

// Commit persists every dirty account at the bank's slot. The store applies
// the batch atomically, so a failed commit leaves no partial writes behind.
func (b *Bank) Commit(ctx context.Context) error {
	if len(b.dirty) == 0 {
		return nil
	}

	records := make([]*account.Record, len(b.dirty))
	for i, key := range b.dirty {
		records[i] = b.accounts[key].toRecord(b.slot)
	}

	return b.store.SaveBatch(ctx, records...)
}
