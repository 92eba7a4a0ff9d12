package main

import (
	"context"
	"crypto/ed25519"
	"flag"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-minter/pkg/app"
	"github.com/code-payments/code-minter/pkg/solana"
	"github.com/code-payments/code-minter/pkg/solana/pubsub"
	"github.com/code-payments/code-minter/pkg/sweep"
)

func runSweep(ctx context.Context, _ *app.Environment, args []string) error {
	flags := flag.NewFlagSet("sweep", flag.ContinueOnError)
	destinationFlag := flags.String("destination", "", "address that receives the swept SOL")
	reserveFlag := flags.Uint64("reserve", 0, "lamports to leave in the wallet after each sweep")
	yesFlag := flags.Bool("yes", false, "skip the interactive destination confirmation")
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

	destinationString := strings.TrimSpace(*destinationFlag)
	if len(destinationString) == 0 {
		destinationString = strings.TrimSpace(cfg.SweepDestination)
	}
	if len(destinationString) == 0 {
		return errors.Wrap(sweep.ErrInvalidDestination, "--destination or SWEEP_DESTINATION is required")
	}
	destination, err := solana.ParseAddress(destinationString)
	if err != nil {
		return errors.Wrap(sweep.ErrInvalidDestination, err.Error())
	}

	wsEndpoint, err := cfg.websocketEndpoint(secrets.rpcEndpoint)
	if err != nil {
		return err
	}

	configProvider := sweep.WithEnvConfigs()
	flags.Visit(func(f *flag.Flag) {
		if f.Name == "reserve" {
			configProvider = sweep.WithReserve(configProvider, *reserveFlag)
		}
	})

	watcher, err := sweep.NewWatcher(
		cfg.solanaClient(secrets.rpcEndpoint),
		pubsub.NewWebsocketSubscriber(wsEndpoint),
		secrets.wallet,
		destination,
		configProvider,
	)
	if err != nil {
		return err
	}

	if !*yesFlag {
		if err := requireTerminal(); err != nil {
			return errors.Wrap(err, "confirm the destination interactively or pass --yes")
		}
		if err := newPrompter(os.Stdin, os.Stdout).confirmDestination(solana.Address(destination)); err != nil {
			return err
		}
	}

	logrus.StandardLogger().WithFields(logrus.Fields{
		"type":        "cmd/code-minter",
		"wallet":      solana.Address(secrets.wallet.Public().(ed25519.PublicKey)),
		"destination": solana.Address(destination),
		"websocket":   wsEndpoint,
	}).Info("sweeping until interrupted")

	return watcher.Run(ctx)
}
