package async_subscription

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/database/query"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/async"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/ledger"
	"github.com/metaverf/metaverf-ledger/pkg/solana/metaverf"
)

// Ledger is the read access the service needs to the ledger
type Ledger interface {
	GetProtocolState(ctx context.Context) (*metaverf.ProtocolAccount, error)
	GetColleges(ctx context.Context, cursor query.Cursor, limit uint64) ([]*metaverf.CollegeAccount, query.Cursor, error)
	GetTokenBalance(ctx context.Context, address ed25519.PublicKey) (uint64, error)
}

type service struct {
	log    *logrus.Entry
	conf   *conf
	ledger Ledger
	clock  ledger.Clock
}

// New returns a service that periodically reports on college subscriptions
// and the fee treasury
func New(l Ledger, clock ledger.Clock, configProvider ConfigProvider) async.Service {
	return &service{
		log:    logrus.StandardLogger().WithField("service", "subscription"),
		conf:   configProvider(),
		ledger: l,
		clock:  clock,
	}
}

func (p *service) Start(ctx context.Context, interval time.Duration) error {
	schedule := p.conf.cronSchedule.Get(ctx)
	if len(schedule) == 0 {
		schedule = fmt.Sprintf("@every %s", interval)
	}

	cronJob := cron.New(cron.WithLocation(time.UTC))
	_, err := cronJob.AddFunc(schedule, func() {
		if err := p.checkSubscriptions(ctx); err != nil && err != context.Canceled {
			p.log.WithError(err).Warn("failure checking subscriptions")
		}
	})
	if err != nil {
		return errors.Wrapf(err, "invalid schedule %q", schedule)
	}

	cronJob.Start()

	<-ctx.Done()
	<-cronJob.Stop().Done()
	return ctx.Err()
}
