package main

import (
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/metaverf/metaverf-ledger/pkg/app"
)

const (
	memoryStoreType   = "memory"
	postgresStoreType = "postgres"

	mplcoreRegistryType = "mplcore"
	memoryRegistryType  = "memory"
)

// appConfig is the service specific section of the base app config
type appConfig struct {
	Store    string `mapstructure:"store"`
	Registry string `mapstructure:"registry"`

	Postgres postgresConfig `mapstructure:"postgres"`

	SubscriptionWorkerInterval time.Duration `mapstructure:"subscription_worker_interval"`

	// Genesis optionally seeds a fresh ledger so a protocol can be initialized
	// against it. It is skipped once the mint exists.
	Genesis *genesisConfig `mapstructure:"genesis"`
}

type postgresConfig struct {
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	DbName             string `mapstructure:"db_name"`
	MaxOpenConnections int    `mapstructure:"max_open_connections"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections"`

	// UseAwsIam authenticates with an RDS IAM token instead of the password
	UseAwsIam bool `mapstructure:"use_aws_iam"`
}

type genesisConfig struct {
	Mint          string           `mapstructure:"mint"`
	MintAuthority string           `mapstructure:"mint_authority"`
	Decimals      uint8            `mapstructure:"decimals"`
	Airdrops      []airdropConfig  `mapstructure:"airdrops"`
	TokenGrants   []tokenGrantConf `mapstructure:"token_grants"`
}

type airdropConfig struct {
	Address  string `mapstructure:"address"`
	Lamports uint64 `mapstructure:"lamports"`
}

type tokenGrantConf struct {
	Owner  string `mapstructure:"owner"`
	Amount uint64 `mapstructure:"amount"`
}

var defaultAppConfig = appConfig{
	Store:    memoryStoreType,
	Registry: mplcoreRegistryType,

	Postgres: postgresConfig{
		Port: 5432,
	},

	SubscriptionWorkerInterval: time.Minute,
}

func decodeAppConfig(raw app.Config) (*appConfig, error) {
	config := defaultAppConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.StringToTimeDurationHookFunc(),
		Result:     &config,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, errors.Wrap(err, "invalid app config")
	}

	switch config.Store {
	case memoryStoreType, postgresStoreType:
	default:
		return nil, errors.Errorf("unsupported store type: %s", config.Store)
	}

	switch config.Registry {
	case mplcoreRegistryType, memoryRegistryType:
	default:
		return nil, errors.Errorf("unsupported registry type: %s", config.Registry)
	}

	if config.SubscriptionWorkerInterval <= 0 {
		return nil, errors.New("subscription worker interval must be positive")
	}

	return &config, nil
}
