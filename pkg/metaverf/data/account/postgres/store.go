package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
)

type store struct {
	db *sqlx.DB
}

// New returns a new postgres-backed account.Store
func New(db *sql.DB) account.Store {
	return &store{
		db: sqlx.NewDb(db, "pgx"),
	}
}

// Save implements account.Store.Save
func (s *store) Save(ctx context.Context, record *account.Record) error {
	model, err := toModel(record)
	if err != nil {
		return err
	}

	if err := model.dbSave(ctx, s.db); err != nil {
		return err
	}

	res := fromModel(model)
	res.CopyTo(record)

	return nil
}

// SaveBatch implements account.Store.SaveBatch
func (s *store) SaveBatch(ctx context.Context, records ...*account.Record) error {
	seen := make(map[string]struct{})
	models := make([]*model, len(records))
	for i, record := range records {
		if _, ok := seen[record.Address]; ok {
			return account.ErrInvalidAccount
		}
		seen[record.Address] = struct{}{}

		model, err := toModel(record)
		if err != nil {
			return err
		}
		models[i] = model
	}

	if err := dbSaveBatch(ctx, s.db, models...); err != nil {
		return err
	}

	for i, model := range models {
		fromModel(model).CopyTo(records[i])
	}
	return nil
}

// GetByAddress implements account.Store.GetByAddress
func (s *store) GetByAddress(ctx context.Context, address string) (*account.Record, error) {
	model, err := dbGetByAddress(ctx, s.db, address)
	if err != nil {
		return nil, err
	}

	return fromModel(model), nil
}

// GetAllByOwner implements account.Store.GetAllByOwner
func (s *store) GetAllByOwner(ctx context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*account.Record, error) {
	models, err := dbGetAllByOwner(ctx, s.db, owner, cursor, limit, direction)
	if err != nil {
		return nil, err
	}

	res := make([]*account.Record, len(models))
	for i, model := range models {
		res[i] = fromModel(model)
	}
	return res, nil
}

// CountByOwner implements account.Store.CountByOwner
func (s *store) CountByOwner(ctx context.Context, owner string) (uint64, error) {
	return dbCountByOwner(ctx, s.db, owner)
}

// GetLatestSlot implements account.Store.GetLatestSlot
func (s *store) GetLatestSlot(ctx context.Context) (uint64, error) {
	return dbGetLatestSlot(ctx, s.db)
}
