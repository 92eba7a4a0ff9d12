package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"os"

	"github.com/pkg/errors"

	"github.com/code-payments/code-minter/pkg/app"
	"github.com/code-payments/code-minter/pkg/metrics"
	"github.com/code-payments/code-minter/pkg/mint"
	"github.com/code-payments/code-minter/pkg/solana"
)

func runMint(ctx context.Context, env *app.Environment, args []string) error {
	flags := flag.NewFlagSet("mint", flag.ContinueOnError)
	networkFlag := flags.String("network", "", "cluster the RPC endpoint belongs to: mainnet or devnet")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadMinterConfig()
	if err != nil {
		return err
	}
	secrets, err := cfg.secrets()
	if err != nil {
		return err
	}
	network, err := cfg.network(*networkFlag)
	if err != nil {
		return err
	}

	out := &console{out: os.Stdout, network: network}
	out.printf("Starting token creation process...\n\n")

	answers, err := newPrompter(os.Stdin, os.Stdout).collect(string(network))
	if err != nil {
		return err
	}
	params, err := answers.Parse()
	if err != nil {
		return err
	}

	out.printf("Current Network: %s\n", network)
	out.printf("Connecting to Solana cluster: %s\n", secrets.rpcEndpoint)
	out.printf("User wallet address: %s\n", solana.Address(secrets.wallet.Public().(ed25519.PublicKey)))
	out.parameters(params)

	publisher, closePublisher, err := cfg.publisher(ctx)
	if err != nil {
		return err
	}
	defer closePublisher()

	ctx, end := metrics.StartTransaction(ctx, "Mint")
	defer end()

	pipeline := mint.NewPipeline(cfg.solanaClient(secrets.rpcEndpoint), publisher, mint.WithEnvConfigs())
	pipeline.SetObserver(out)

	out.printf("Hold on tight, creating your token...\n")
	result, err := pipeline.Run(ctx, secrets.wallet, params)
	if result != nil {
		out.links(result)
	}
	if err != nil {
		if errors.Is(err, mint.ErrExpired) {
			out.printf("The transaction expired before it was confirmed. Check the explorer before minting again.\n")
		}
		return err
	}

	out.printf("Transaction finalized in slot %d.\n", result.Outcome.Slot)
	return nil
}
