package main

import (
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	dataDir    string
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "engine",
		Short:         "LeadHunt engine",
		Long:          `Finds websites for a search query, detects WordPress and collects contact emails.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	defaultDataDir := os.Getenv("LEADHUNT_DATA_DIR")
	if defaultDataDir == "" {
		defaultDataDir = "."
	}

	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", defaultDataDir, "directory holding config.yml, the database and logs")
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is <data-dir>/config.yml)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(opts),
		newCheckCmd(opts),
		newAddCmd(opts),
		newDiscoverCmd(opts),
		newLeadsCmd(opts),
	)
	return root
}
