package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/quickbar/internal/config"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	addr       string
}

func newRootCommand(version, commit, date string) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "quickbar",
		Short: "Quickbar plugin host",
		Long: `Quickbar hosts launcher plugins: it discovers installed plugins,
attaches their views to the search bar window and answers the commands
their pages send over the local bridge.

Running quickbar without a subcommand starts the host.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flags.addr, "addr", "", "bridge listen address")

	serve := newServeCommand(flags)
	root.RunE = serve.RunE
	root.AddCommand(
		serve,
		newPluginsCommand(flags),
		newTriggerCommand(flags),
		newKeytestCommand(),
	)
	return root
}

// load reads the configuration and applies command-line overrides.
func (f *globalFlags) load() (*config.Config, error) {
	path := f.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.addr != "" {
		cfg.Bridge.Addr = f.addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
