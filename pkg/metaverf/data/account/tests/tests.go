package tests

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
)

func RunTests(t *testing.T, s account.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s account.Store){
		testHappyPath,
		testSaveBatch,
		testGetAllByOwner,
		testCountByOwner,
		testGetLatestSlot,
	} {
		tf(t, s)
		teardown()
	}
}

func testHappyPath(t *testing.T, s account.Store) {
	t.Run("testHappyPath", func(t *testing.T) {
		start := time.Now()

		ctx := context.Background()

		expected := &account.Record{
			Address: "college",
			Owner:   "program",

			Lamports: 1_000_000,
			Data:     []byte{1, 2, 3, 4},

			Slot: 100,
		}
		cloned := expected.Clone()

		_, err := s.GetByAddress(ctx, expected.Address)
		assert.Equal(t, account.ErrAccountNotFound, err)

		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.Id > 0)
		assert.True(t, expected.LastUpdatedAt.After(start))

		actual, err := s.GetByAddress(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)

		initialSlot := expected.Slot
		previousLastUpdatedTs := expected.LastUpdatedAt

		expected.Lamports = 0
		expected.Data = []byte{5, 6}

		// Writes at the same or an older slot are rejected

		for _, slot := range []uint64{initialSlot - 1, initialSlot} {
			expected.Slot = slot
			time.Sleep(time.Millisecond)
			assert.Equal(t, account.ErrStaleAccountState, s.Save(ctx, expected))
			assert.Equal(t, previousLastUpdatedTs, expected.LastUpdatedAt)
		}

		actual, err = s.GetByAddress(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)

		expected.Slot = initialSlot + 1
		cloned = expected.Clone()
		time.Sleep(time.Millisecond)
		require.NoError(t, s.Save(ctx, expected))
		assert.True(t, expected.LastUpdatedAt.After(previousLastUpdatedTs))

		actual, err = s.GetByAddress(ctx, expected.Address)
		require.NoError(t, err)
		assertEquivalentRecords(t, cloned, actual)
	})
}

func testSaveBatch(t *testing.T, s account.Store) {
	t.Run("testSaveBatch", func(t *testing.T) {
		ctx := context.Background()

		var records []*account.Record
		for i := 0; i < 5; i++ {
			records = append(records, &account.Record{
				Address:  fmt.Sprintf("account%d", i),
				Owner:    "owner",
				Lamports: uint64(i),
				Data:     []byte{byte(i)},
				Slot:     10,
			})
		}
		require.NoError(t, s.SaveBatch(ctx, records...))

		for _, record := range records {
			assert.True(t, record.Id > 0)

			actual, err := s.GetByAddress(ctx, record.Address)
			require.NoError(t, err)
			assertEquivalentRecords(t, record, actual)
		}

		// A single stale record fails the entire batch

		updated := []*account.Record{
			{Address: "account0", Owner: "owner", Lamports: 100, Slot: 11},
			{Address: "account5", Owner: "owner", Lamports: 100, Slot: 11},
			{Address: "account1", Owner: "owner", Lamports: 100, Slot: 10},
		}
		assert.Equal(t, account.ErrStaleAccountState, s.SaveBatch(ctx, updated...))

		actual, err := s.GetByAddress(ctx, "account0")
		require.NoError(t, err)
		assertEquivalentRecords(t, records[0], actual)

		_, err = s.GetByAddress(ctx, "account5")
		assert.Equal(t, account.ErrAccountNotFound, err)

		// Duplicate addresses within a batch are rejected

		duplicated := []*account.Record{
			{Address: "account0", Owner: "owner", Slot: 12},
			{Address: "account0", Owner: "owner", Slot: 12},
		}
		assert.Equal(t, account.ErrInvalidAccount, s.SaveBatch(ctx, duplicated...))
	})
}

func testGetAllByOwner(t *testing.T, s account.Store) {
	t.Run("testGetAllByOwner", func(t *testing.T) {
		ctx := context.Background()

		var expected []*account.Record
		for i := 0; i < 50; i++ {
			record := &account.Record{
				Address: fmt.Sprintf("account%d", i),
				Owner:   "program",
				Slot:    uint64(i + 1),
			}
			require.NoError(t, s.Save(ctx, record))

			expected = append(expected, record.Clone())
		}
		require.NoError(t, s.Save(ctx, &account.Record{Address: "other", Owner: "system", Slot: 1}))

		_, err := s.GetAllByOwner(ctx, "unknown", query.EmptyCursor, 10, query.Ascending)
		assert.Equal(t, account.ErrAccountNotFound, err)

		var cursor query.Cursor
		var actual []*account.Record
		for {
			records, err := s.GetAllByOwner(ctx, "program", cursor, 10, query.Ascending)
			if err == account.ErrAccountNotFound {
				break
			}
			assert.Len(t, records, 10)

			actual = append(actual, records...)
			cursor = query.ToCursor(records[len(records)-1].Id)
		}

		require.Len(t, actual, 50)
		for i, record := range expected {
			assertEquivalentRecords(t, record, actual[i])
		}

		cursor = query.EmptyCursor
		actual = nil
		for {
			records, err := s.GetAllByOwner(ctx, "program", cursor, 10, query.Descending)
			if err == account.ErrAccountNotFound {
				break
			}
			assert.Len(t, records, 10)

			actual = append(actual, records...)
			cursor = query.ToCursor(records[len(records)-1].Id)
		}

		require.Len(t, actual, 50)
		for i, record := range expected {
			assertEquivalentRecords(t, record, actual[len(actual)-i-1])
		}
	})
}

func testCountByOwner(t *testing.T, s account.Store) {
	t.Run("testCountByOwner", func(t *testing.T) {
		ctx := context.Background()

		count, err := s.CountByOwner(ctx, "program")
		require.NoError(t, err)
		assert.EqualValues(t, 0, count)

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Save(ctx, &account.Record{
				Address: fmt.Sprintf("account%d", i),
				Owner:   "program",
				Slot:    1,
			}))

			count, err = s.CountByOwner(ctx, "program")
			require.NoError(t, err)
			assert.EqualValues(t, i+1, count)
		}

		// Owner changes move the account between counts

		require.NoError(t, s.Save(ctx, &account.Record{Address: "account0", Owner: "system", Slot: 2}))

		count, err = s.CountByOwner(ctx, "program")
		require.NoError(t, err)
		assert.EqualValues(t, 2, count)

		count, err = s.CountByOwner(ctx, "system")
		require.NoError(t, err)
		assert.EqualValues(t, 1, count)
	})
}

func testGetLatestSlot(t *testing.T, s account.Store) {
	t.Run("testGetLatestSlot", func(t *testing.T) {
		ctx := context.Background()

		slot, err := s.GetLatestSlot(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 0, slot)

		for _, slot := range []uint64{5, 42, 7} {
			require.NoError(t, s.Save(ctx, &account.Record{
				Address: fmt.Sprintf("account%d", slot),
				Owner:   "program",
				Slot:    slot,
			}))
		}

		slot, err = s.GetLatestSlot(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 42, slot)
	})
}

func assertEquivalentRecords(t *testing.T, obj1, obj2 *account.Record) {
	assert.Equal(t, obj1.Address, obj2.Address)
	assert.Equal(t, obj1.Owner, obj2.Owner)
	assert.Equal(t, obj1.Lamports, obj2.Lamports)
	assert.Equal(t, len(obj1.Data), len(obj2.Data))
	if len(obj1.Data) > 0 {
		assert.Equal(t, obj1.Data, obj2.Data)
	}
	assert.Equal(t, obj1.Slot, obj2.Slot)
}
