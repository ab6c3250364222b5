package async_subscription

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/ledger"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
	"github.com/metaverf/metaverf-ledger/pkg/testutil"
)

type fakeLedger struct {
	protocol *metaverf.ProtocolAccount
	colleges []*metaverf.CollegeAccount
	balance  uint64

	pages int
}

func (f *fakeLedger) GetProtocolState(_ context.Context) (*metaverf.ProtocolAccount, error) {
	if f.protocol == nil {
		return nil, metaverf.ErrAccountNotInitialized
	}
	return f.protocol, nil
}

func (f *fakeLedger) GetColleges(_ context.Context, cursor query.Cursor, limit uint64) ([]*metaverf.CollegeAccount, query.Cursor, error) {
	f.pages++

	var start uint64
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	end := start + limit
	if end >= uint64(len(f.colleges)) {
		return f.colleges[start:], nil, nil
	}
	return f.colleges[start:end], query.ToCursor(end), nil
}

func (f *fakeLedger) GetTokenBalance(_ context.Context, _ ed25519.PublicKey) (uint64, error) {
	return f.balance, nil
}

func TestCollectGauge(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	keys := testutil.GenerateSolanaKeys(t, 2)

	l := &fakeLedger{
		protocol: &metaverf.ProtocolAccount{Treasury: keys[0]},
		balance:  3_000_000,
		colleges: []*metaverf.CollegeAccount{
			{Id: 1, Authority: keys[1], Active: true, Expiry: now.Unix() + 10},
			{Id: 2, Authority: keys[1], Active: true, Expiry: now.Unix()},
			{Id: 3, Authority: keys[1], Active: false, Expiry: now.Unix() + 10},
			{Id: 4, Authority: keys[1], Active: true, Expiry: now.Unix() + 1_000},
			{Id: 5, Authority: keys[1], Active: true, Expiry: now.Unix() - 1},
		},
	}

	p := New(l, ledger.NewManualClock(now), withManualTestOverrides(&testOverrides{batchSize: 2})).(*service)

	gauge, err := p.collectGauge(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 5, gauge.total)
	assert.EqualValues(t, 2, gauge.active)
	assert.EqualValues(t, 3, gauge.expired)
	assert.EqualValues(t, 2, gauge.lapsed)
	assert.EqualValues(t, 3_000_000, gauge.treasuryBalance)
	assert.Equal(t, 3, l.pages)

	require.NoError(t, p.checkSubscriptions(context.Background()))
}

func TestCollectGauge_Uninitialized(t *testing.T) {
	p := New(&fakeLedger{}, ledger.SystemClock(), withManualTestOverrides(&testOverrides{batchSize: 10})).(*service)

	_, err := p.collectGauge(context.Background())
	assert.Equal(t, metaverf.ErrAccountNotInitialized, err)
	assert.Equal(t, metaverf.ErrAccountNotInitialized, p.checkSubscriptions(context.Background()))
}

func TestStart_InvalidSchedule(t *testing.T) {
	p := New(&fakeLedger{}, ledger.SystemClock(), withManualTestOverrides(&testOverrides{
		cronSchedule: "every now and then",
		batchSize:    10,
	})).(*service)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.Error(t, p.Start(ctx, time.Second))
}

func TestStart_RunsOnSchedule(t *testing.T) {
	l := &fakeLedger{protocol: &metaverf.ProtocolAccount{}}
	p := New(l, ledger.SystemClock(), withManualTestOverrides(&testOverrides{batchSize: 10})).(*service)

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	assert.Equal(t, context.DeadlineExceeded, p.Start(ctx, time.Second))
	assert.True(t, l.pages >= 1)
}
