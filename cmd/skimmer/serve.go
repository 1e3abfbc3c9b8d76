package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	srv "github.com/mohammad-safakhou/skimmer/internal/server"
	"github.com/mohammad-safakhou/skimmer/internal/sweeper"
)

func serveCMD() *cobra.Command {
	var serveAddr string
	var cfgPath string
	var autoMigrate bool
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := bootstrap(ctx, cfgPath, validateAll)
			if err != nil {
				return err
			}
			defer a.Close()

			if autoMigrate && strings.EqualFold(a.cfg.Storage.Driver, "postgres") {
				if err := srv.Migrate("file://migrations", a.cfg.Storage.Postgres.DSN(), "up", 0); err != nil {
					a.logger.Warn("auto migrate failed", zap.Error(err))
				}
			}

			orch, err := a.orchestrator(ctx)
			if err != nil {
				return err
			}

			if a.cfg.Cache.SweepCron != "" {
				sw, err := sweeper.New(a.store, a.cfg.Cache.Retention, a.cfg.Cache.SweepCron, a.logger.Named("sweeper"), a.metrics)
				if err != nil {
					return err
				}
				sw.Start()
				defer sw.Close()
			}

			if serveAddr != "" {
				a.cfg.Server.Address = serveAddr
			}
			server := srv.New(a.cfg.Server, orch, a.metrics, a.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- server.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				a.logger.Info("shutting down")
				return server.Shutdown(context.Background())
			}
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.address)")
	serve.Flags().BoolVar(&autoMigrate, "migrate", true, "apply postgres migrations on start")
	serve.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return serve
}
