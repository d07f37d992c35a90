package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/urfave/cli/v3"

	"github.com/listenupapp/recipe-server/internal/config"
	"github.com/listenupapp/recipe-server/internal/di"
	"github.com/listenupapp/recipe-server/internal/logger"
)

const name = "recipectl"

// configFlags are forwarded to config.Load so the tool reads the same
// files and environment as the server.
var configFlags = []string{"config", "env-file", "data-path", "db-path"}

func rootCmd() *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: "Manage users, tokens and demo data for the recipe server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to YAML config file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Path to .env file",
			},
			&cli.StringFlag{
				Name:  "data-path",
				Usage: "Data directory (database, token key, media)",
			},
			&cli.StringFlag{
				Name:  "db-path",
				Usage: "SQLite database path (default {data-path}/recipes.db)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"o"},
				Value:   string(FormatJSON),
				Usage:   fmt.Sprintf("Output format (supported values: %s)", SupportedFormats()),
				Validator: func(s string) error {
					if Format(s).IsUnknown() {
						return fmt.Errorf("unknown output format: %q", s)
					}
					return nil
				},
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log at debug level to stderr",
			},
		},
		Commands: []*cli.Command{
			userCmd(),
			tokenCmd(),
			seedCmd(),
		},
	}
}

// openContainer builds the DI container from the root flags. Logs go to
// stderr so stdout only carries command output.
func openContainer(cmd *cli.Command) (*do.RootScope, error) {
	root := cmd.Root()

	var args []string
	for _, f := range configFlags {
		if v := root.String(f); v != "" {
			args = append(args, "--"+f, v)
		}
	}

	cfg, err := config.Load(args)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := "warn"
	if root.Bool("verbose") {
		level = "debug"
	}

	injector := di.NewContainer(cfg)
	do.OverrideValue(injector, logger.New(logger.Config{
		Writer:      os.Stderr,
		Level:       logger.ParseLevel(level),
		Environment: cfg.App.Environment,
	}))
	return injector, nil
}

// withContainer runs fn with a container that is shut down afterwards.
func withContainer(ctx context.Context, cmd *cli.Command, fn func(context.Context, do.Injector) error) error {
	injector, err := openContainer(cmd)
	if err != nil {
		return err
	}
	defer injector.Shutdown() //nolint:errcheck

	return fn(ctx, injector)
}
