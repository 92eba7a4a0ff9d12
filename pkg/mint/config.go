package mint

import (
	"time"

	"github.com/code-payments/code-minter/pkg/config"
	"github.com/code-payments/code-minter/pkg/config/env"
	"github.com/code-payments/code-minter/pkg/config/memory"
	"github.com/code-payments/code-minter/pkg/config/wrapper"
)

const (
	envConfigPrefix = "MINT_PIPELINE_"

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "finalized"

	ConfirmTimeoutConfigEnvName = envConfigPrefix + "CONFIRM_TIMEOUT"
	defaultConfirmTimeout       = 5 * time.Minute
)

type conf struct {
	commitment     config.String
	confirmTimeout config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			commitment:     env.NewStringConfig(CommitmentConfigEnvName, defaultCommitment),
			confirmTimeout: env.NewDurationConfig(ConfirmTimeoutConfigEnvName, defaultConfirmTimeout),
		}
	}
}

type testOverrides struct {
	commitment     string
	confirmTimeout time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		commitment := defaultCommitment
		if len(overrides.commitment) > 0 {
			commitment = overrides.commitment
		}

		confirmTimeout := defaultConfirmTimeout
		if overrides.confirmTimeout > 0 {
			confirmTimeout = overrides.confirmTimeout
		}

		return &conf{
			commitment:     wrapper.NewStringConfig(memory.NewConfig(commitment), defaultCommitment),
			confirmTimeout: wrapper.NewDurationConfig(memory.NewConfig(confirmTimeout), defaultConfirmTimeout),
		}
	}
}
