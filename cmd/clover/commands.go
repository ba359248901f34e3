package main

import (
	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/clover/config"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	EnvFiles []string
}

func (o *RootOptions) load() (*config.Config, ectologger.Logger, error) {
	cfg, err := config.Load(o.EnvFiles...)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newRootCommand() *cobra.Command {
	opts := &RootOptions{}

	root := &cobra.Command{
		Use:           "clover",
		Short:         "Related products resolution service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&opts.EnvFiles, "env-file", nil, "dotenv files to load before reading the environment")

	serveCmd := newServeCommand(opts)
	root.AddCommand(serveCmd, newMigrateCommand(opts))
	// running the binary bare serves the API
	root.RunE = serveCmd.RunE

	return root
}

func newServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the related products HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}

			if !migrationsSupported(cfg.DatabaseDriver) {
				return errors.Errorf("no migrations ship for DB_DRIVER %q, only postgres is migrated", cfg.DatabaseDriver)
			}

			deps := newDependencies(cfg, logger, false)
			if err := deps.boot.Start(cmd.Context()); err != nil {
				return err
			}
			logger.Info("Migrations applied")
			return deps.boot.Stop(cmd.Context())
		},
	}
}
