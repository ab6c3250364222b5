package web

import (
	"github.com/metaverf/metaverf-ledger/pkg/config"
	"github.com/metaverf/metaverf-ledger/pkg/config/env"
	"github.com/metaverf/metaverf-ledger/pkg/config/memory"
	"github.com/metaverf/metaverf-ledger/pkg/config/wrapper"
)

const (
	envConfigPrefix = "WEB_SERVICE_"

	// SubmitRateLimitConfigEnvName is the sustained transaction submissions
	// per second allowed from a single client IP
	SubmitRateLimitConfigEnvName = envConfigPrefix + "SUBMIT_RATE_LIMIT"
	defaultSubmitRateLimit       = 5.0

	MaxRequestBodySizeConfigEnvName = envConfigPrefix + "MAX_REQUEST_BODY_SIZE"
	defaultMaxRequestBodySize       = 16 * 1024
)

type conf struct {
	submitRateLimit    config.Float64
	maxRequestBodySize config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			submitRateLimit:    env.NewFloat64Config(SubmitRateLimitConfigEnvName, defaultSubmitRateLimit),
			maxRequestBodySize: env.NewUint64Config(MaxRequestBodySizeConfigEnvName, defaultMaxRequestBodySize),
		}
	}
}

type testOverrides struct {
	submitRateLimit float64
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			submitRateLimit:    wrapper.NewFloat64Config(memory.NewConfig(overrides.submitRateLimit), defaultSubmitRateLimit),
			maxRequestBodySize: wrapper.NewUint64Config(memory.NewConfig(uint64(defaultMaxRequestBodySize)), defaultMaxRequestBodySize),
		}
	}
}
