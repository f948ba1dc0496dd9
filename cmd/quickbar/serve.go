package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/quickbar/internal/app"
)

func newServeCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the plugin host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			logger, closer, err := app.NewLogger(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, app.WithLogger(logger))
			if err != nil {
				return err
			}
			logger.Info("starting", "addr", cfg.Bridge.Addr, "install_dir", cfg.Paths.InstallDir)
			if err := a.Run(ctx, nil); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
