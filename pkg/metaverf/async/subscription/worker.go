package async_subscription

import (
	"context"
	"time"

	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/retry"
	"github.com/metaverf/metaverf-ledger/pkg/retry/backoff"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

type subscriptionGauge struct {
	total   uint64
	active  uint64
	expired uint64

	// Flagged active, but past expiry. These stop passing liveness checks
	// without any state change, so they are worth surfacing.
	lapsed uint64

	treasuryBalance uint64
}

func (p *service) checkSubscriptions(ctx context.Context) error {
	_, err := retry.Retry(
		func() error {
			gauge, err := p.collectGauge(ctx)
			if err != nil {
				return err
			}

			recordSubscriptionGaugeEvent(ctx, gauge)
			recordTreasuryGaugeEvent(ctx, gauge.treasuryBalance)
			return nil
		},
		retry.Context(ctx),
		retry.NonRetriableErrors(context.Canceled, metaverf.ErrAccountNotInitialized),
		retry.Limit(uint(p.conf.maxAttempts.Get(ctx))),
		retry.BackoffWithJitter(backoff.BinaryExponential(100*time.Millisecond), 5*time.Second, 0.1),
	)
	return err
}

func (p *service) collectGauge(ctx context.Context) (*subscriptionGauge, error) {
	protocol, err := p.ledger.GetProtocolState(ctx)
	if err != nil {
		return nil, err
	}

	gauge := &subscriptionGauge{}
	gauge.treasuryBalance, err = p.ledger.GetTokenBalance(ctx, protocol.Treasury)
	if err != nil {
		return nil, err
	}

	now := p.clock.Now().Unix()
	batchSize := p.conf.batchSize.Get(ctx)

	var cursor query.Cursor
	for {
		colleges, next, err := p.ledger.GetColleges(ctx, cursor, batchSize)
		if err != nil {
			return nil, err
		}

		for _, college := range colleges {
			gauge.total++

			switch {
			case college.IsSubscriptionLive(now):
				gauge.active++
			case college.Active:
				gauge.expired++
				gauge.lapsed++

				p.log.WithFields(logrus.Fields{
					"method":     "collectGauge",
					"college_id": college.Id,
					"authority":  base58.Encode(college.Authority),
					"expiry":     college.Expiry,
				}).Info("subscription lapsed")
			default:
				gauge.expired++
			}
		}

		if len(next) == 0 {
			return gauge, nil
		}
		cursor = next
	}
}
