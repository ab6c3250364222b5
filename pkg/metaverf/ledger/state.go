package ledger

import (
	"context"
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/bank"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/program"
	metaverf_token "github.com/metaverf/metaverf-ledger/pkg/metaverf/token"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

// GetAccount returns the committed state of an account. Addresses that were
// never written resolve to an empty system owned account.
func (l *Ledger) GetAccount(ctx context.Context, address ed25519.PublicKey) (*bank.Account, error) {
	return bank.New(l.store, 0).Get(ctx, address)
}

// GetTokenBalance returns the amount held by a token account
func (l *Ledger) GetTokenBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error) {
	acct, err := l.GetAccount(ctx, address)
	if err != nil {
		return 0, err
	}

	state, err := metaverf_token.ParseAccount(acct)
	if err != nil {
		return 0, errors.Wrapf(ErrNotTokenAccount, "address %s", base58.Encode(address))
	}
	return state.Amount, nil
}

func (l *Ledger) GetProtocolState(ctx context.Context) (*metaverf.ProtocolAccount, error) {
	address, _, err := metaverf.GetProtocolAddress()
	if err != nil {
		return nil, err
	}

	acct, err := l.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	return program.ParseProtocol(acct)
}

func (l *Ledger) GetCollege(ctx context.Context, collegeId uint16) (*metaverf.CollegeAccount, error) {
	address, _, err := metaverf.GetCollegeAddress(&metaverf.GetCollegeAddressArgs{CollegeId: collegeId})
	if err != nil {
		return nil, err
	}

	acct, err := l.GetAccount(ctx, address)
	if err != nil {
		return nil, err
	}
	return program.ParseCollege(acct)
}

// GetColleges pages through the college accounts owned by the Metaverf
// program. The returned cursor resumes after the last record scanned, and is
// nil once there are no more records.
func (l *Ledger) GetColleges(ctx context.Context, cursor query.Cursor, limit uint64) ([]*metaverf.CollegeAccount, query.Cursor, error) {
	records, err := l.store.GetAllByOwner(ctx, base58.Encode(metaverf.PROGRAM_ID), cursor, limit, query.Ascending)
	if err == account.ErrAccountNotFound {
		return nil, nil, nil
	} else if err != nil {
		return nil, nil, err
	}

	var colleges []*metaverf.CollegeAccount
	for _, record := range records {
		acct, err := bank.FromRecord(record)
		if err != nil {
			return nil, nil, err
		}

		// Protocol and record accounts share the owner
		college, err := program.ParseCollege(acct)
		if err != nil {
			continue
		}
		colleges = append(colleges, college)
	}

	var next query.Cursor
	if uint64(len(records)) == limit {
		next = query.ToCursor(records[len(records)-1].Id)
	}
	return colleges, next, nil
}
