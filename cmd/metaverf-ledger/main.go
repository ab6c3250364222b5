package main

import (
	"context"
	"crypto/ed25519"
	"database/sql"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/mr-tron/base58"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/metaverf/metaverf-ledger/pkg/app"
	pg "github.com/metaverf/metaverf-ledger/pkg/database/postgres"
	async_subscription "github.com/metaverf/metaverf-ledger/pkg/metaverf/async/subscription"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account"
	memory_account_store "github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account/memory"
	postgres_account_store "github.com/metaverf/metaverf-ledger/pkg/metaverf/data/account/postgres"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/ledger"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/registry"
	registry_memory "github.com/metaverf/metaverf-ledger/pkg/metaverf/registry/memory"
	registry_mplcore "github.com/metaverf/metaverf-ledger/pkg/metaverf/registry/mplcore"
	"github.com/metaverf/metaverf-ledger/pkg/metaverf/server/web"
	"github.com/metaverf/metaverf-ledger/pkg/metrics"
)

type ledgerApp struct {
	log *logrus.Entry

	ledger     *ledger.Ledger
	web        *web.Server
	db         *sql.DB
	shutdownCh chan struct{}

	workerCtx    context.Context
	cancelWorker context.CancelFunc
	workerWg     sync.WaitGroup
	stopOnce     sync.Once
}

func main() {
	log := logrus.StandardLogger().WithField("type", "metaverf-ledger")

	if err := app.Run(&ledgerApp{log: log}); err != nil {
		log.WithError(err).Fatal("error running service")
	}
}

// Init implements app.App.Init
func (a *ledgerApp) Init(rawConfig app.Config, metricsProvider *newrelic.Application) error {
	ctx := context.Background()

	config, err := decodeAppConfig(rawConfig)
	if err != nil {
		return err
	}

	store, err := a.newAccountStore(ctx, config)
	if err != nil {
		return errors.Wrap(err, "error initializing account store")
	}

	var collections registry.CollectionRegistry
	switch config.Registry {
	case memoryRegistryType:
		collections = registry_memory.New()
	default:
		collections = registry_mplcore.New()
	}

	clock := ledger.SystemClock()

	a.ledger, err = ledger.New(ctx, store, collections, clock, ledger.WithEnvConfigs())
	if err != nil {
		return errors.Wrap(err, "error initializing ledger")
	}

	if config.Genesis != nil {
		if err := applyGenesis(ctx, a.ledger, config.Genesis); err != nil {
			return errors.Wrap(err, "error applying genesis")
		}
	}

	a.web = web.NewServer(a.ledger, web.WithEnvConfigs())
	a.shutdownCh = make(chan struct{})

	a.workerCtx, a.cancelWorker = context.WithCancel(metrics.NewContext(context.Background(), metricsProvider))
	worker := async_subscription.New(a.ledger, clock, async_subscription.WithEnvConfigs())

	a.workerWg.Add(1)
	go func() {
		defer a.workerWg.Done()

		if err := worker.Start(a.workerCtx, config.SubscriptionWorkerInterval); err != nil && err != context.Canceled {
			a.log.WithError(err).Warn("subscription worker terminated unexpectedly")
		}
	}()

	a.log.WithFields(logrus.Fields{
		"store":    config.Store,
		"registry": config.Registry,
		"slot":     a.ledger.Slot(),
	}).Info("ledger initialized")

	return nil
}

// RegisterWithHTTP implements app.App.RegisterWithHTTP
func (a *ledgerApp) RegisterWithHTTP(mux *http.ServeMux) {
	for path, handler := range a.web.GetHandlers() {
		mux.HandleFunc(path, handler)
	}
}

// ShutdownChan implements app.App.ShutdownChan
func (a *ledgerApp) ShutdownChan() <-chan struct{} {
	return a.shutdownCh
}

// Stop implements app.App.Stop
func (a *ledgerApp) Stop() {
	a.stopOnce.Do(func() {
		if a.cancelWorker != nil {
			a.cancelWorker()
		}
		a.workerWg.Wait()

		if a.db != nil {
			if err := a.db.Close(); err != nil {
				a.log.WithError(err).Warn("failure closing database")
			}
		}

		close(a.shutdownCh)
	})
}

func (a *ledgerApp) newAccountStore(ctx context.Context, config *appConfig) (account.Store, error) {
	if config.Store == memoryStoreType {
		a.log.Warn("using in memory account store, state will not survive a restart")
		return memory_account_store.New(), nil
	}

	pgConfig := &pg.Config{
		User:               config.Postgres.User,
		Password:           config.Postgres.Password,
		Host:               config.Postgres.Host,
		Port:               config.Postgres.Port,
		DbName:             config.Postgres.DbName,
		MaxOpenConnections: config.Postgres.MaxOpenConnections,
		MaxIdleConnections: config.Postgres.MaxIdleConnections,
	}

	var db *sql.DB
	if config.Postgres.UseAwsIam {
		awsConfig, err := external.LoadDefaultAWSConfig()
		if err != nil {
			return nil, errors.Wrap(err, "error loading aws config")
		}

		db, err = pg.NewWithAwsIam(ctx, pgConfig, awsConfig)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		db, err = pg.NewWithUsernameAndPassword(ctx, pgConfig)
		if err != nil {
			return nil, err
		}
	}

	a.db = db
	return postgres_account_store.New(db), nil
}

func applyGenesis(ctx context.Context, l *ledger.Ledger, config *genesisConfig) error {
	mint, err := decodePublicKey(config.Mint)
	if err != nil {
		return errors.Wrap(err, "invalid genesis mint")
	}
	mintAuthority, err := decodePublicKey(config.MintAuthority)
	if err != nil {
		return errors.Wrap(err, "invalid genesis mint authority")
	}

	existing, err := l.GetAccount(ctx, mint)
	if err != nil {
		return err
	}
	if !existing.IsEmpty() {
		return nil
	}

	if err := l.CreateMint(ctx, mint, mintAuthority, config.Decimals); err != nil {
		return err
	}

	for _, airdrop := range config.Airdrops {
		address, err := decodePublicKey(airdrop.Address)
		if err != nil {
			return errors.Wrap(err, "invalid airdrop address")
		}
		if err := l.Airdrop(ctx, address, airdrop.Lamports); err != nil {
			return err
		}
	}

	for _, grant := range config.TokenGrants {
		owner, err := decodePublicKey(grant.Owner)
		if err != nil {
			return errors.Wrap(err, "invalid token grant owner")
		}

		tokenAccount, err := l.CreateAssociatedTokenAccount(ctx, owner, mint)
		if err != nil {
			return err
		}
		if err := l.MintTo(ctx, tokenAccount, grant.Amount); err != nil {
			return err
		}
	}

	return nil
}

func decodePublicKey(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, err
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("expected %d bytes, got %d", ed25519.PublicKeySize, len(decoded))
	}
	return decoded, nil
}
