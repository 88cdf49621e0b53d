package main

import (
	"github.com/spf13/cobra"
)

func validateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a configuration file",
		Long: `Load doclisten.json and check it for errors.

Every listener must name a known document event, a phase (mounted,
unmounted or both) and a built-in action (log, count or echo).

Examples:
  doclisten validate
  doclisten validate -c ./deploy/doclisten.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s is valid (%d listeners)", cfg.Path(), len(cfg.Listeners))
			return nil
		},
	}
}
