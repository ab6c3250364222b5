package test

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	_ "github.com/jackc/pgx/v4/stdlib" //nolint:revive

	"github.com/metaverf/metaverf-ledger/pkg/retry"
	"github.com/metaverf/metaverf-ledger/pkg/retry/backoff"
)

const (
	imageRepository = "postgres"
	imageTag        = "14"

	// Docker kills the container after this long, even if the test binary
	// dies before purging it.
	containerExpiry = 2 * time.Minute
	startupTimeout  = time.Minute

	port     = 5432
	user     = "localtest"
	password = "localpassword"
	dbname   = "testdb"
)

// StartPostgresDB runs a disposable postgres container and returns a client
// connected to it. closeFunc closes the client and removes the container.
func StartPostgresDB(pool *dockertest.Pool) (db *sql.DB, closeFunc func(), err error) {
	log := logrus.StandardLogger().WithField("type", "database/postgres/test")
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: imageRepository,
		Tag:        imageTag,
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbname,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start postgres container")
	}

	// Expire never returns an error
	_ = resource.Expire(uint(containerExpiry.Seconds()))

	databaseUrl := fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		user, password, resource.GetHostPort(fmt.Sprintf("%d/tcp", port)), dbname,
	)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	attempts, err := retry.Retry(
		func() error {
			if db == nil {
				var openErr error
				db, openErr = sql.Open("pgx", databaseUrl)
				if openErr != nil {
					return openErr
				}
			}
			return db.PingContext(ctx)
		},
		retry.Context(ctx),
		retry.Backoff(backoff.Constant(500*time.Millisecond), time.Second),
	)

	purge := func() {
		if db != nil {
			db.Close()
		}
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failure purging postgres container")
		}
	}

	if err != nil {
		purge()
		return nil, closeFunc, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}

	log.WithField("attempts", attempts).Debug("postgres container is available")
	return db, purge, nil
}
