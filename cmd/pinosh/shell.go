package main

import (
	"github.com/spf13/cobra"

	"pkt.systems/pinosh"
	"pkt.systems/pinosh/internal/appconfig"
	"pkt.systems/pslog"
)

func newShellCmd(status *int) *cobra.Command {
	var cfgPath string
	var noBanner bool
	cmd := &cobra.Command{
		Use:           "pinosh",
		Short:         "pinosh is a personal interactive shell",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			sh, err := pinosh.Compose(cmd.Context(), pinosh.Options{
				Config:   cfg,
				NoBanner: noBanner,
				Stdin:    cmd.InOrStdin(),
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			if err := sh.Run(cmd.Context()); err != nil {
				return err
			}
			*status = sh.LastStatus()
			logger.Debug("shell exit", "status", *status)
			return nil
		},
	}
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&noBanner, "no-banner", false, "disable startup banner")
	return cmd
}
