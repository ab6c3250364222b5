package ledger

import (
	"github.com/metaverf/metaverf-ledger/pkg/config"
	"github.com/metaverf/metaverf-ledger/pkg/config/env"
	"github.com/metaverf/metaverf-ledger/pkg/config/memory"
	"github.com/metaverf/metaverf-ledger/pkg/config/wrapper"
)

const (
	envConfigPrefix = "LEDGER_"

	LockStripesConfigEnvName = envConfigPrefix + "LOCK_STRIPES"
	defaultLockStripes       = 1024

	MaxTransactionSizeConfigEnvName = envConfigPrefix + "MAX_TRANSACTION_SIZE"
	defaultMaxTransactionSize       = 1232

	ProcessedSignatureCacheSizeConfigEnvName = envConfigPrefix + "PROCESSED_SIGNATURE_CACHE_SIZE"
	defaultProcessedSignatureCacheSize       = 100_000
)

type conf struct {
	lockStripes                 config.Uint64
	maxTransactionSize          config.Uint64
	processedSignatureCacheSize config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			lockStripes:                 env.NewUint64Config(LockStripesConfigEnvName, defaultLockStripes),
			maxTransactionSize:          env.NewUint64Config(MaxTransactionSizeConfigEnvName, defaultMaxTransactionSize),
			processedSignatureCacheSize: env.NewUint64Config(ProcessedSignatureCacheSizeConfigEnvName, defaultProcessedSignatureCacheSize),
		}
	}
}

type testOverrides struct {
	lockStripes                 uint64
	maxTransactionSize          uint64
	processedSignatureCacheSize uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			lockStripes:                 wrapper.NewUint64Config(memory.NewConfig(overrides.lockStripes), defaultLockStripes),
			maxTransactionSize:          wrapper.NewUint64Config(memory.NewConfig(overrides.maxTransactionSize), defaultMaxTransactionSize),
			processedSignatureCacheSize: wrapper.NewUint64Config(memory.NewConfig(overrides.processedSignatureCacheSize), defaultProcessedSignatureCacheSize),
		}
	}
}
