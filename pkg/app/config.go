package app

import (
	"time"

	"github.com/spf13/viper"
)

// BaseConfig contains the configuration shared by every command.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is either json or text.
	LogFormat string `mapstructure:"log_format"`

	AppName string `mapstructure:"app_name"`

	// EnvFile is an optional dotenv file loaded before anything else is read.
	EnvFile string `mapstructure:"env_file"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	// Metrics configuration across many providers
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`
}

var defaultConfig = BaseConfig{
	LogLevel:  "info",
	LogFormat: "text",
	AppName:   "code-minter",
	EnvFile:   ".env",

	ShutdownGracePeriod: 10 * time.Second,
}

func init() {
	_ = viper.BindEnv("log_level", "LOG_LEVEL")
	_ = viper.BindEnv("log_format", "LOG_FORMAT")

	_ = viper.BindEnv("app_name", "APP_NAME")

	_ = viper.BindEnv("env_file", "ENV_FILE")

	_ = viper.BindEnv("shutdown_grace_period", "SHUTDOWN_GRACE_PERIOD")

	_ = viper.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")
}
