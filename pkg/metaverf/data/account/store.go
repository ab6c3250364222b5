package account

import (
	"context"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
)

type Store interface {
	// Save saves an account's state. ErrStaleAccountState is returned if the
	// stored state was written at the same or a later slot.
	Save(ctx context.Context, record *Record) error

	// SaveBatch is like Save, but for multiple accounts. Either every record is
	// saved, or none are.
	SaveBatch(ctx context.Context, records ...*Record) error

	// GetByAddress gets an account's state by its address
	GetByAddress(ctx context.Context, address string) (*Record, error)

	// GetAllByOwner gets all accounts owned by the provided program
	GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*Record, error)

	// CountByOwner gets the count of accounts owned by the provided program
	CountByOwner(ctx context.Context, owner string) (uint64, error)

	// GetLatestSlot gets the highest slot any account was written at, or zero
	// for an empty ledger
	GetLatestSlot(ctx context.Context) (uint64, error)
}
