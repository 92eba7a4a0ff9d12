package solana

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

type Environment string

const (
	EnvironmentDev  Environment = "https://api.devnet.solana.com"
	EnvironmentTest Environment = "https://api.testnet.solana.com"
	EnvironmentProd Environment = "https://api.mainnet-beta.solana.com"
)

// Network is the operator-facing cluster name.
type Network string

const (
	NetworkMainnet Network = "mainnet"
	NetworkDevnet  Network = "devnet"
)

var ErrUnknownNetwork = errors.New("unknown network")

func ParseNetwork(s string) (Network, error) {
	switch Network(strings.ToLower(strings.TrimSpace(s))) {
	case NetworkMainnet, "mainnet-beta":
		return NetworkMainnet, nil
	case NetworkDevnet:
		return NetworkDevnet, nil
	}
	return "", errors.Wrapf(ErrUnknownNetwork, "%q", s)
}

// Environment returns the public RPC endpoint of the cluster.
func (n Network) Environment() Environment {
	if n == NetworkMainnet {
		return EnvironmentProd
	}
	return EnvironmentDev
}

// WebsocketEndpoint derives the pubsub endpoint from an RPC endpoint by
// swapping the scheme.
func WebsocketEndpoint(rpcEndpoint string) (string, error) {
	u, err := url.Parse(rpcEndpoint)
	if err != nil {
		return "", errors.Wrap(err, "invalid rpc endpoint")
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", errors.Errorf("unsupported rpc endpoint scheme: %q", u.Scheme)
	}

	return u.String(), nil
}
