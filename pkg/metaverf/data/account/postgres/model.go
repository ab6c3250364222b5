package postgres

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	pgutil "github.com/metaverf/metaverf-ledger/pkg/database/postgres"
	q "github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
)

const (
	tableName = "metaverf__core_account"
)

type model struct {
	Id sql.NullInt64 `db:"id"`

	Address string `db:"address"`
	Owner   string `db:"owner"`

	Lamports uint64 `db:"lamports"`
	Data     []byte `db:"data"`

	Slot uint64 `db:"slot"`

	LastUpdatedAt time.Time `db:"last_updated_at"`
}

func toModel(obj *account.Record) (*model, error) {
	if err := obj.Validate(); err != nil {
		return nil, err
	}

	data := obj.Data
	if data == nil {
		data = []byte{}
	}

	return &model{
		Address: obj.Address,
		Owner:   obj.Owner,

		Lamports: obj.Lamports,
		Data:     data,

		Slot: obj.Slot,

		LastUpdatedAt: obj.LastUpdatedAt,
	}, nil
}

func fromModel(obj *model) *account.Record {
	return &account.Record{
		Id: uint64(obj.Id.Int64),

		Address: obj.Address,
		Owner:   obj.Owner,

		Lamports: obj.Lamports,
		Data:     obj.Data,

		Slot: obj.Slot,

		LastUpdatedAt: obj.LastUpdatedAt,
	}
}

func (m *model) dbSave(ctx context.Context, db *sqlx.DB) error {
	return pgutil.ExecuteInTx(ctx, db, sql.LevelDefault, func(tx *sqlx.Tx) error {
		query := `INSERT INTO ` + tableName + `
			(address, owner, lamports, data, slot, last_updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)

			ON CONFLICT (address)
			DO UPDATE
				SET owner = $2, lamports = $3, data = $4, slot = $5, last_updated_at = $6
				WHERE ` + tableName + `.address = $1 AND ` + tableName + `.slot < $5

			RETURNING
				id, address, owner, lamports, data, slot, last_updated_at`

		m.LastUpdatedAt = time.Now()

		err := tx.QueryRowxContext(
			ctx,
			query,

			m.Address,
			m.Owner,

			m.Lamports,
			m.Data,

			m.Slot,

			m.LastUpdatedAt.UTC(),
		).StructScan(m)

		return pgutil.CheckNoRows(err, account.ErrStaleAccountState)
	})
}

// dbSaveBatch upserts in address order so that concurrent batches over the
// same rows acquire row locks in the same order
func dbSaveBatch(ctx context.Context, db *sqlx.DB, models ...*model) error {
	sorted := make([]*model, len(models))
	copy(sorted, models)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Address < sorted[j].Address
	})

	return pgutil.ExecuteRetryable(ctx, func() error {
		return pgutil.ExecuteTxWithinCtx(ctx, db, sql.LevelDefault, func(ctx context.Context) error {
			for _, m := range sorted {
				if err := m.dbSave(ctx, db); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

func dbGetByAddress(ctx context.Context, db *sqlx.DB, address string) (*model, error) {
	res := &model{}

	query := `SELECT
		id, address, owner, lamports, data, slot, last_updated_at
		FROM ` + tableName + `
		WHERE address = $1
		LIMIT 1`

	err := db.GetContext(ctx, res, query, address)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}
	return res, nil
}

func dbGetAllByOwner(ctx context.Context, db *sqlx.DB, owner string, cursor q.Cursor, limit uint64, direction q.Ordering) ([]*model, error) {
	res := []*model{}

	query := `SELECT
		id, address, owner, lamports, data, slot, last_updated_at
		FROM ` + tableName + `
		WHERE (owner = $1)
	`

	opts := []interface{}{owner}
	query, opts = q.PaginateQuery(query, opts, cursor, limit, direction)

	err := db.SelectContext(ctx, &res, query, opts...)
	if err != nil {
		return nil, pgutil.CheckNoRows(err, account.ErrAccountNotFound)
	}

	if len(res) == 0 {
		return nil, account.ErrAccountNotFound
	}
	return res, nil
}

func dbCountByOwner(ctx context.Context, db *sqlx.DB, owner string) (uint64, error) {
	var res uint64

	query := `SELECT COUNT(*) FROM ` + tableName + ` WHERE owner = $1`
	err := db.GetContext(ctx, &res, query, owner)
	if err != nil {
		return 0, err
	}

	return res, nil
}

func dbGetLatestSlot(ctx context.Context, db *sqlx.DB) (uint64, error) {
	var res uint64

	query := `SELECT COALESCE(MAX(slot), 0) FROM ` + tableName
	err := db.GetContext(ctx, &res, query)
	if err != nil {
		return 0, err
	}

	return res, nil
}
