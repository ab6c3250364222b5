package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
)

type store struct {
	mu      sync.Mutex
	records []*account.Record
	last    uint64
}

type ById []*account.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns a new in memory account.Store
func New() account.Store {
	return &store{}
}

// Save implements account.Store.Save
func (s *store) Save(_ context.Context, data *account.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(data.Address); item != nil && data.Slot <= item.Slot {
		return account.ErrStaleAccountState
	}

	s.save(data)
	return nil
}

// SaveBatch implements account.Store.SaveBatch
func (s *store) SaveBatch(_ context.Context, records ...*account.Record) error {
	seen := make(map[string]struct{})
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}

		if _, ok := seen[record.Address]; ok {
			return account.ErrInvalidAccount
		}
		seen[record.Address] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		if item := s.find(record.Address); item != nil && record.Slot <= item.Slot {
			return account.ErrStaleAccountState
		}
	}

	for _, record := range records {
		s.save(record)
	}
	return nil
}

// GetByAddress implements account.Store.GetByAddress
func (s *store) GetByAddress(_ context.Context, address string) (*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(address); item != nil {
		return item.Clone(), nil
	}
	return nil, account.ErrAccountNotFound
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*account.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if items := s.findByOwner(owner); len(items) > 0 {
		res := s.filter(items, cursor, limit, direction)

		if len(res) == 0 {
			return nil, account.ErrAccountNotFound
		}

		return res, nil
	}

	return nil, account.ErrAccountNotFound
}

// CountByOwner implements account.Store.CountByOwner
func (s *store) CountByOwner(_ context.Context, owner string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uint64(len(s.findByOwner(owner))), nil
}

// GetLatestSlot implements account.Store.GetLatestSlot
func (s *store) GetLatestSlot(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest uint64
	for _, item := range s.records {
		if item.Slot > latest {
			latest = item.Slot
		}
	}
	return latest, nil
}

func (s *store) save(data *account.Record) {
	if item := s.find(data.Address); item != nil {
		item.Owner = data.Owner
		item.Lamports = data.Lamports
		item.Data = append([]byte(nil), data.Data...)
		item.Slot = data.Slot
		item.LastUpdatedAt = time.Now()

		item.CopyTo(data)
		return
	}

	s.last++
	data.Id = s.last
	data.LastUpdatedAt = time.Now()
	s.records = append(s.records, data.Clone())
}

func (s *store) find(address string) *account.Record {
	for _, item := range s.records {
		if item.Address == address {
			return item
		}
	}
	return nil
}

func (s *store) findByOwner(owner string) []*account.Record {
	res := make([]*account.Record, 0)
	for _, item := range s.records {
		if item.Owner == owner {
			res = append(res, item.Clone())
		}
	}
	return res
}

func (s *store) filter(items []*account.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*account.Record {
	var start uint64

	start = 0
	if direction == query.Descending {
		start = s.last + 1
	}
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*account.Record
	for _, item := range items {
		if item.Id > start && direction == query.Ascending {
			res = append(res, item)
		}
		if item.Id < start && direction == query.Descending {
			res = append(res, item)
		}
	}

	if direction == query.Descending {
		sort.Sort(sort.Reverse(ById(res)))
	}

	if len(res) >= int(limit) {
		return res[:limit]
	}

	return res
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.last = 0
}
