package pg

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/rdsutils"
	"github.com/pkg/errors"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

// Queries are traced through the New Relic instrumented pgx driver
const driverName = "nrpgx"

const (
	defaultConnMaxIdleTime = time.Hour
	defaultConnMaxLifetime = time.Hour
)

type Config struct {
	User     string
	Password string
	Host     string
	Port     int
	DbName   string

	MaxOpenConnections int
	MaxIdleConnections int
}

func (c *Config) validate() error {
	if len(c.Host) == 0 {
		return errors.New("host is required")
	}
	if len(c.User) == 0 {
		return errors.New("user is required")
	}
	if len(c.DbName) == 0 {
		return errors.New("db name is required")
	}
	if c.Port <= 0 {
		return errors.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// NewWithAwsIam opens a connection pool that authenticates with a short lived
// RDS IAM token in place of the configured password. This is only supported
// on provisioned Aurora clusters.
//
// https://docs.aws.amazon.com/AmazonRDS/latest/AuroraUserGuide/UsingWithRDS.IAMDBAuth.Connecting.Go.html
func NewWithAwsIam(ctx context.Context, config *Config, awsConfig aws.Config) (*sql.DB, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	rdsClient := rds.New(awsConfig)

	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)
	authToken, err := rdsutils.BuildAuthToken(endpoint, rdsClient.Region, config.User, rdsClient.Credentials)
	if err != nil {
		return nil, errors.Wrap(err, "error building rds auth token")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		config.Host, config.Port, config.User, authToken, config.DbName,
	)
	return connect(ctx, dsn, config)
}

// NewWithUsernameAndPassword opens a connection pool using password
// authentication. SSL is disabled.
func NewWithUsernameAndPassword(ctx context.Context, config *Config) (*sql.DB, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	dsn := (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config.User, config.Password),
		Host:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Path:     "/" + config.DbName,
		RawQuery: "sslmode=disable",
	}).String()
	return connect(ctx, dsn, config)
}

func connect(ctx context.Context, dsn string, config *Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if config.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(config.MaxOpenConnections)
	}
	if config.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(config.MaxIdleConnections)
	}
	db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error pinging database")
	}
	return db, nil
}
