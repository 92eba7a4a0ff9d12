package main

import (
	"context"
	"crypto/ed25519"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/code-minter/pkg/config"
	"github.com/code-payments/code-minter/pkg/netutil"
	"github.com/code-payments/code-minter/pkg/rate"
	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/storage"
	"github.com/code-payments/code-minter/pkg/storage/gcs"
	"github.com/code-payments/code-minter/pkg/storage/irys"
)

const (
	storageBackendIrys = "irys"
	storageBackendGCS  = "gcs"
)

// minterConfig is the configuration read by both commands.
type minterConfig struct {
	PrivateKey        string `mapstructure:"private_key"`
	RPCEndpoint       string `mapstructure:"rpc_endpoint"`
	WebsocketEndpoint string `mapstructure:"websocket_endpoint"`
	Network           string `mapstructure:"network"`

	// RPCRateLimit caps requests per second for each RPC method. Zero
	// disables client side limiting.
	RPCRateLimit float64 `mapstructure:"rpc_rate_limit"`

	StorageBackend     string        `mapstructure:"storage_backend"`
	IrysUploaderURL    string        `mapstructure:"irys_uploader_url"`
	IrysAPIKey         string        `mapstructure:"irys_api_key"`
	IrysTimeout        time.Duration `mapstructure:"irys_timeout"`
	GCSBucket          string        `mapstructure:"gcs_bucket"`
	GCSCredentialsFile string        `mapstructure:"gcs_credentials_file"`
	GCSPublicBaseURL   string        `mapstructure:"gcs_public_base_url"`

	SweepDestination string `mapstructure:"sweep_destination"`
}

var defaultMinterConfig = minterConfig{
	Network:        string(solana.NetworkMainnet),
	StorageBackend: storageBackendIrys,
	IrysTimeout:    irys.DefaultTimeout,
}

func init() {
	_ = viper.BindEnv("private_key", "PRIVATE_KEY")
	_ = viper.BindEnv("rpc_endpoint", "RPC_ENDPOINT")
	_ = viper.BindEnv("websocket_endpoint", "WEBSOCKET_ENDPOINT")
	_ = viper.BindEnv("network", "NETWORK")
	_ = viper.BindEnv("rpc_rate_limit", "RPC_RATE_LIMIT")

	_ = viper.BindEnv("storage_backend", "STORAGE_BACKEND")
	_ = viper.BindEnv("irys_uploader_url", "IRYS_UPLOADER_URL")
	_ = viper.BindEnv("irys_api_key", "IRYS_API_KEY")
	_ = viper.BindEnv("irys_timeout", "IRYS_TIMEOUT")
	_ = viper.BindEnv("gcs_bucket", "GCS_BUCKET")
	_ = viper.BindEnv("gcs_credentials_file", "GCS_CREDENTIALS_FILE")
	_ = viper.BindEnv("gcs_public_base_url", "GCS_PUBLIC_BASE_URL")

	_ = viper.BindEnv("sweep_destination", "SWEEP_DESTINATION")
}

func loadMinterConfig() (*minterConfig, error) {
	c := defaultMinterConfig
	if err := viper.Unmarshal(&c); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &c, nil
}

// secrets are the values without which neither command can do anything.
type secrets struct {
	wallet      ed25519.PrivateKey
	rpcEndpoint string
}

func (c *minterConfig) secrets() (*secrets, error) {
	if len(strings.TrimSpace(c.PrivateKey)) == 0 {
		return nil, errors.Wrap(config.ErrMissingSecret, "PRIVATE_KEY")
	}
	if len(strings.TrimSpace(c.RPCEndpoint)) == 0 {
		return nil, errors.Wrap(config.ErrMissingSecret, "RPC_ENDPOINT")
	}

	wallet, err := solana.ParsePrivateKey(strings.TrimSpace(c.PrivateKey))
	if err != nil {
		return nil, errors.Wrap(err, "PRIVATE_KEY")
	}

	return &secrets{
		wallet:      wallet,
		rpcEndpoint: strings.TrimSpace(c.RPCEndpoint),
	}, nil
}

func (c *minterConfig) solanaClient(rpcEndpoint string) solana.Client {
	if c.RPCRateLimit <= 0 {
		return solana.New(rpcEndpoint)
	}
	return solana.NewWithRateLimiter(rpcEndpoint, rate.NewLocalRateLimiter(xrate.Limit(c.RPCRateLimit)))
}

func (c *minterConfig) network(override string) (solana.Network, error) {
	if len(override) > 0 {
		return solana.ParseNetwork(override)
	}
	return solana.ParseNetwork(c.Network)
}

func (c *minterConfig) websocketEndpoint(rpcEndpoint string) (string, error) {
	if len(c.WebsocketEndpoint) > 0 {
		return c.WebsocketEndpoint, nil
	}
	return solana.WebsocketEndpoint(rpcEndpoint)
}

// publisher returns the configured metadata backend, and a func releasing
// any resources it holds.
func (c *minterConfig) publisher(ctx context.Context) (storage.Publisher, func(), error) {
	switch strings.ToLower(c.StorageBackend) {
	case storageBackendIrys:
		if len(c.IrysUploaderURL) == 0 {
			return nil, nil, errors.New("IRYS_UPLOADER_URL is required for the irys storage backend")
		}
		if err := netutil.ValidateHTTPURL(c.IrysUploaderURL, false); err != nil {
			return nil, nil, errors.Wrap(err, "IRYS_UPLOADER_URL")
		}
		return irys.NewPublisher(c.IrysUploaderURL, c.IrysAPIKey, c.IrysTimeout), func() {}, nil
	case storageBackendGCS:
		if len(c.GCSBucket) == 0 {
			return nil, nil, errors.New("GCS_BUCKET is required for the gcs storage backend")
		}

		client, err := gcs.NewClient(ctx, c.GCSCredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return gcs.NewPublisher(client, c.GCSBucket, c.GCSPublicBaseURL), func() { client.Close() }, nil
	}
	return nil, nil, errors.Errorf("unknown storage backend %q", c.StorageBackend)
}
