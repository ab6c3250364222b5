package account

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrAccountNotFound   = errors.New("no records could be found")
	ErrInvalidAccount    = errors.New("invalid account")
	ErrStaleAccountState = errors.New("account state is stale")
)

// Record is the persisted state of a single ledger account at the slot that
// last wrote it
type Record struct {
	Id uint64

	Address string
	Owner   string

	Lamports uint64
	Data     []byte

	Slot uint64

	LastUpdatedAt time.Time
}

func (r *Record) Clone() *Record {
	return &Record{
		Id: r.Id,

		Address: r.Address,
		Owner:   r.Owner,

		Lamports: r.Lamports,
		Data:     cloneData(r.Data),

		Slot: r.Slot,

		LastUpdatedAt: r.LastUpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.Address = r.Address
	dst.Owner = r.Owner

	dst.Lamports = r.Lamports
	dst.Data = cloneData(r.Data)

	dst.Slot = r.Slot

	dst.LastUpdatedAt = r.LastUpdatedAt
}

func (r *Record) Validate() error {
	if r == nil {
		return errors.New("record is nil")
	}

	if len(r.Address) == 0 {
		return errors.New("address is required")
	}

	if len(r.Owner) == 0 {
		return errors.New("owner is required")
	}

	if r.Slot == 0 {
		return errors.New("slot is required")
	}

	return nil
}

// IsEquivalent reports whether two records describe the same account state,
// ignoring store managed fields
func (r *Record) IsEquivalent(other *Record) bool {
	return r.Address == other.Address &&
		r.Owner == other.Owner &&
		r.Lamports == other.Lamports &&
		bytes.Equal(r.Data, other.Data)
}

func cloneData(data []byte) []byte {
	if data == nil {
		return nil
	}

	cloned := make([]byte, len(data))
	copy(cloned, data)
	return cloned
}
