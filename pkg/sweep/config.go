package sweep

import (
	"time"

	"github.com/code-payments/code-minter/pkg/config"
	"github.com/code-payments/code-minter/pkg/config/env"
	"github.com/code-payments/code-minter/pkg/config/memory"
	"github.com/code-payments/code-minter/pkg/config/wrapper"
)

const (
	envConfigPrefix = "SWEEP_WATCHER_"

	SettleDelayConfigEnvName = envConfigPrefix + "SETTLE_DELAY"
	defaultSettleDelay       = 5 * time.Second

	ReserveConfigEnvName = envConfigPrefix + "RESERVE"
	defaultReserve       = 0

	CommitmentConfigEnvName = envConfigPrefix + "COMMITMENT"
	defaultCommitment       = "confirmed"

	ReconnectDelayConfigEnvName = envConfigPrefix + "RECONNECT_DELAY"
	defaultReconnectDelay       = time.Second

	RecvTimeoutConfigEnvName = envConfigPrefix + "RECV_TIMEOUT"
	defaultRecvTimeout       = time.Minute
)

type conf struct {
	settleDelay    config.Duration
	reserve        config.Uint64
	commitment     config.String
	reconnectDelay config.Duration
	recvTimeout    config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			settleDelay:    env.NewDurationConfig(SettleDelayConfigEnvName, defaultSettleDelay),
			reserve:        env.NewUint64Config(ReserveConfigEnvName, defaultReserve),
			commitment:     env.NewStringConfig(CommitmentConfigEnvName, defaultCommitment),
			reconnectDelay: env.NewDurationConfig(ReconnectDelayConfigEnvName, defaultReconnectDelay),
			recvTimeout:    env.NewDurationConfig(RecvTimeoutConfigEnvName, defaultRecvTimeout),
		}
	}
}

// WithReserve overrides the reserve of the config produced by provider.
func WithReserve(provider ConfigProvider, lamports uint64) ConfigProvider {
	return func() *conf {
		c := provider()
		c.reserve = wrapper.NewUint64Config(memory.NewConfig(lamports), defaultReserve)
		return c
	}
}

type testOverrides struct {
	settleDelay    time.Duration
	reserve        uint64
	reconnectDelay time.Duration
	recvTimeout    time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			settleDelay:    wrapper.NewDurationConfig(memory.NewConfig(overrides.settleDelay), defaultSettleDelay),
			reserve:        wrapper.NewUint64Config(memory.NewConfig(overrides.reserve), defaultReserve),
			commitment:     wrapper.NewStringConfig(memory.NewConfig(defaultCommitment), defaultCommitment),
			reconnectDelay: wrapper.NewDurationConfig(memory.NewConfig(overrides.reconnectDelay), defaultReconnectDelay),
			recvTimeout:    wrapper.NewDurationConfig(memory.NewConfig(overrides.recvTimeout), defaultRecvTimeout),
		}
	}
}
