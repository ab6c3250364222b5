package async_subscription

import (
	"github.com/metaverf/metaverf-ledger/pkg/config"
	"github.com/metaverf/metaverf-ledger/pkg/config/env"
	"github.com/metaverf/metaverf-ledger/pkg/config/memory"
	"github.com/metaverf/metaverf-ledger/pkg/config/wrapper"
)

const (
	envConfigPrefix = "SUBSCRIPTION_SERVICE_"

	// CronScheduleConfigEnvName overrides the worker interval with a cron
	// expression when set
	CronScheduleConfigEnvName = envConfigPrefix + "CRON_SCHEDULE"
	defaultCronSchedule       = ""

	BatchSizeConfigEnvName = envConfigPrefix + "WORKER_BATCH_SIZE"
	defaultBatchSize       = 100

	MaxAttemptsConfigEnvName = envConfigPrefix + "MAX_ATTEMPTS"
	defaultMaxAttempts       = 3
)

type conf struct {
	cronSchedule config.String
	batchSize    config.Uint64
	maxAttempts  config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			cronSchedule: env.NewStringConfig(CronScheduleConfigEnvName, defaultCronSchedule),
			batchSize:    env.NewUint64Config(BatchSizeConfigEnvName, defaultBatchSize),
			maxAttempts:  env.NewUint64Config(MaxAttemptsConfigEnvName, defaultMaxAttempts),
		}
	}
}

type testOverrides struct {
	cronSchedule string
	batchSize    uint64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			cronSchedule: wrapper.NewStringConfig(memory.NewConfig(overrides.cronSchedule), defaultCronSchedule),
			batchSize:    wrapper.NewUint64Config(memory.NewConfig(overrides.batchSize), defaultBatchSize),
			maxAttempts:  wrapper.NewUint64Config(memory.NewConfig(uint64(1)), defaultMaxAttempts),
		}
	}
}
