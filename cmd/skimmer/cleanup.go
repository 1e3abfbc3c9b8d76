package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/skimmer/internal/sweeper"
)

func cleanupCMD() *cobra.Command {
	var cfgPath string
	var cleanup = &cobra.Command{
		Use:   "cleanup",
		Short: "Delete records older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), cfgPath, validateStorage)
			if err != nil {
				return err
			}
			defer a.Close()

			sw, err := sweeper.New(a.store, a.cfg.Cache.Retention, "@hourly", a.logger.Named("sweeper"), a.metrics)
			if err != nil {
				return err
			}
			n, err := sw.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired records.\n", n)
			return nil
		},
	}
	cleanup.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cleanup
}
