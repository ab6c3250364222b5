package bank

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
	"github.com/metaverf/metaverf-ledger/pkg/solana/system"
)

// Account is the in-flight view of a ledger account within a transaction
type Account struct {
	Address  ed25519.PublicKey
	Owner    ed25519.PublicKey
	Lamports uint64
	Data     []byte
}

// NewEmptyAccount returns the state of an address nothing has written to:
// zero lamports, no data and owned by the system program
func NewEmptyAccount(address ed25519.PublicKey) *Account {
	owner := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(owner, system.ProgramKey[:])

	return &Account{
		Address: cloneKey(address),
		Owner:   owner,
	}
}

func (a *Account) Clone() *Account {
	return &Account{
		Address:  cloneKey(a.Address),
		Owner:    cloneKey(a.Owner),
		Lamports: a.Lamports,
		Data:     cloneBytes(a.Data),
	}
}

// IsEmpty reports whether the account has never been allocated
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.IsOwnedBy(system.ProgramKey[:])
}

func (a *Account) IsOwnedBy(program ed25519.PublicKey) bool {
	return bytes.Equal(a.Owner, program)
}

func (a *Account) isEquivalent(other *Account) bool {
	return bytes.Equal(a.Address, other.Address) &&
		bytes.Equal(a.Owner, other.Owner) &&
		a.Lamports == other.Lamports &&
		bytes.Equal(a.Data, other.Data)
}

func (a *Account) String() string {
	return fmt.Sprintf(
		"Account{address=%s,owner=%s,lamports=%d,data_len=%d}",
		base58.Encode(a.Address),
		base58.Encode(a.Owner),
		a.Lamports,
		len(a.Data),
	)
}

func (a *Account) toRecord(slot uint64) *account.Record {
	return &account.Record{
		Address:  base58.Encode(a.Address),
		Owner:    base58.Encode(a.Owner),
		Lamports: a.Lamports,
		Data:     cloneBytes(a.Data),
		Slot:     slot,
	}
}

// FromRecord decodes a persisted record into an account
func FromRecord(record *account.Record) (*Account, error) {
	address, err := base58.Decode(record.Address)
	if err != nil || len(address) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid stored address: %s", record.Address)
	}

	owner, err := base58.Decode(record.Owner)
	if err != nil || len(owner) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid stored owner for %s: %s", record.Address, record.Owner)
	}

	return &Account{
		Address:  address,
		Owner:    owner,
		Lamports: record.Lamports,
		Data:     cloneBytes(record.Data),
	}, nil
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	if key == nil {
		return nil
	}
	cloned := make(ed25519.PublicKey, len(key))
	copy(cloned, key)
	return cloned
}

func cloneBytes(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	cloned := make([]byte, len(data))
	copy(cloned, data)
	return cloned
}
