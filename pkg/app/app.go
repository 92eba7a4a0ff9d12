package app

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/code-payments/code-minter/pkg/metrics"
)

// Environment is the process wide state every command starts from.
type Environment struct {
	Config BaseConfig

	// MetricsProvider is nil unless a New Relic license key is configured.
	MetricsProvider *newrelic.Application
}

// Load reads the dotenv file, the optional config file at configPath and the
// process environment, then configures logging and metrics. Values already
// present in the environment take precedence over the dotenv file.
func Load(configPath string) (*Environment, error) {
	envFile := defaultConfig.EnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok {
		envFile = v
	}
	if len(envFile) > 0 {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "failed to load %s", envFile)
		}
	}

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set. That is,
	// if we explicitly set a config file, and it does not exist, viper will not
	// return a ConfigFileNotFoundError, so we do it ourselves.
	if len(configPath) > 0 {
		if _, err := os.Stat(configPath); err == nil {
			viper.SetConfigFile(configPath)
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "failed to check if config exists")
		}
	}

	err := viper.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return nil, errors.Wrap(err, "failed to load config")
	}

	config := defaultConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	var metricsProvider *newrelic.Application
	if len(config.NewRelicLicenseKey) > 0 {
		nr, err := newrelic.NewApplication(
			newrelic.ConfigFromEnvironment(),
			newrelic.ConfigAppName(config.AppName),
			newrelic.ConfigLicense(config.NewRelicLicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			return nil, errors.Wrap(err, "error connecting to new relic")
		}

		metricsProvider = nr
	}

	configureLogger(config, metricsProvider)

	return &Environment{
		Config:          config,
		MetricsProvider: metricsProvider,
	}, nil
}

// Context returns a context carrying the metrics provider that is cancelled
// on SIGINT or SIGTERM.
func (e *Environment) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx := metrics.NewContext(parent, e.MetricsProvider)
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
}

// Shutdown flushes buffered metrics.
func (e *Environment) Shutdown() {
	if e.MetricsProvider != nil {
		e.MetricsProvider.Shutdown(e.Config.ShutdownGracePeriod)
	}
}

func configureLogger(config BaseConfig, metricsProvider *newrelic.Application) {
	var formatter logrus.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if strings.EqualFold(config.LogFormat, "json") {
		formatter = &logrus.JSONFormatter{}
	}

	if metricsProvider != nil {
		logrus.SetFormatter(metrics.NewLogForwardingFormatter(metricsProvider, formatter))
	} else {
		logrus.SetFormatter(formatter)
	}

	level, err := logrus.ParseLevel(strings.ToLower(config.LogLevel))
	if err != nil {
		logrus.StandardLogger().WithField("log_level", config.LogLevel).Warn("unknown log level, ignoring")
	} else {
		logrus.SetLevel(level)
	}

	// Console output goes to stdout, logs go to stderr.
	logrus.SetOutput(os.Stderr)
}
