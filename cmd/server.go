package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/example/slotbook/internal/application/scheduler"
	"github.com/example/slotbook/internal/application/usecases"
	"github.com/example/slotbook/internal/interfaces/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the booking API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, appOptions{migrate: migrateUp, useStore: true})
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.cfg.RequireSessionKeys(); err != nil {
				return err
			}

			forms := usecases.NewFormSessions(a.cfg.SessionTTL, func() *usecases.Form {
				return a.newForm("")
			})

			// background: cache warmer + session sweeper
			r := &scheduler.Refresher{
				Sessions: forms,
				Interval: a.cfg.SlotRefreshInterval,
				Logger:   a.log.Named("refresher"),
			}
			if a.cache != nil {
				r.Cache = a.cache
			}
			go func() {
				if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					a.log.Error("refresher stopped", zap.Error(err))
				}
			}()

			ws := &web.Server{
				Forms:             forms,
				Sessions:          web.NewSessionManager(a.cfg.SessionHashKey, a.cfg.SessionBlockKey, a.cfg.SessionTTL),
				Log:               a.bookLog,
				Logger:            a.log.Named("http"),
				AdminPasswordHash: a.cfg.AdminPasswordHash,
				Metrics:           promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}),
				SubmitLimiter:     web.NewRateLimiter(a.cfg.SubmitRatePerMinute),
			}
			return web.Start(ctx, a.cfg.ListenAddr, ws.Routes(), a.log)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
