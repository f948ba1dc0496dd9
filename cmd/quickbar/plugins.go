package main

import (
	"fmt"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/quickbar/internal/osapi"
	"github.com/dshills/quickbar/internal/plugin"
	"github.com/dshills/quickbar/internal/search"
)

func newPluginsCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect installed plugins",
	}
	cmd.AddCommand(newPluginsListCommand(flags), newPluginsSearchCommand(flags))
	return cmd
}

func loadCatalog(cmd *cobra.Command, flags *globalFlags) (*plugin.Catalog, error) {
	cfg, err := flags.load()
	if err != nil {
		return nil, err
	}
	c := plugin.NewCatalog(plugin.NewLoader(cfg.Paths.InstallDir))
	if err := c.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return c, nil
}

func newPluginsListCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed plugins and their features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(cmd, flags)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tVERSION\tTYPE\tFEATURES")
			for _, p := range c.List() {
				codes := make([]string, 0, len(p.Features))
				for _, f := range p.Features {
					codes = append(codes, f.Code.String())
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Version, p.PluginType, strings.Join(codes, ","))
			}
			return w.Flush()
		},
	}
}

func newPluginsSearchCommand(flags *globalFlags) *cobra.Command {
	var (
		limit   int
		apps    bool
		appDirs []string
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank plugin features and installed apps against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCatalog(cmd, flags)
			if err != nil {
				return err
			}
			ranker := search.NewRanker()
			if apps {
				found, err := osapi.NewAppFinder(runtime.GOOS, appDirs...).Find(cmd.Context())
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "app discovery: %v\n", err)
				}
				ranker.SetApps(found)
			}

			opts := ranker.Rank(c.List(), strings.Join(args, " "), limit)
			if len(opts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no matches")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SCORE\tSOURCE\tFEATURE\tLABEL")
			for _, o := range opts {
				code := "app"
				if o.App == nil {
					code = o.Feature.Code.String()
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", o.Score, o.Source(), code, o.Label())
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results")
	cmd.Flags().BoolVar(&apps, "apps", true, "include installed applications")
	cmd.Flags().StringSliceVar(&appDirs, "app-dir", nil, "application directories to scan instead of the platform defaults")
	return cmd
}
