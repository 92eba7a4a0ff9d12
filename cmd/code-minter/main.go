package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/code-payments/code-minter/pkg/app"
)

const usage = `usage: code-minter <command> [flags]

commands:
  mint    create a new SPL token with metadata
  sweep   transfer the wallet's SOL balance to a destination on every slot
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var run func(ctx context.Context, env *app.Environment, args []string) error
	switch os.Args[1] {
	case "mint":
		run = runMint
	case "sweep":
		run = runSweep
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	os.Exit(execute(run, os.Args[2:]))
}

func execute(run func(ctx context.Context, env *app.Environment, args []string) error, args []string) int {
	logger := logrus.StandardLogger().WithField("type", "cmd/code-minter")

	configPath, args := extractConfigPath(args)
	env, err := app.Load(configPath)
	if err != nil {
		logger.WithError(err).Error("failed to load configuration")
		return 1
	}
	defer env.Shutdown()

	ctx, cancel := env.Context(context.Background())
	defer cancel()

	if err := run(ctx, env, args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		logger.WithError(err).Error("command failed")
		return 1
	}
	return 0
}

// extractConfigPath pulls --config out of args so the config file is read
// before the command parses its own flags.
func extractConfigPath(args []string) (string, []string) {
	path := "config.yaml"
	remaining := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := strings.TrimPrefix(args[i], "-")
		switch {
		case arg == "config" || arg == "-config":
			if i+1 < len(args) {
				path = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "config="), strings.HasPrefix(arg, "-config="):
			path = arg[strings.Index(arg, "=")+1:]
		default:
			remaining = append(remaining, args[i])
		}
	}
	return path, remaining
}
