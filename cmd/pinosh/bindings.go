package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pinosh/internal/keybind"
	"pkt.systems/pinosh/internal/shell"
)

func newBindingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "List the key bindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			table, err := keybind.Defaults(cfg, keybind.ProcessRunner{})
			if err != nil {
				return err
			}
			shell.WriteBindings(cmd.OutOrStdout(), table.Entries())
			return nil
		},
	}
}
