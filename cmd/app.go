package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/example/slotbook/internal/application/usecases"
	"github.com/example/slotbook/internal/config"
	"github.com/example/slotbook/internal/domain/booking"
	"github.com/example/slotbook/internal/infrastructure/backend"
	"github.com/example/slotbook/internal/infrastructure/cache"
	"github.com/example/slotbook/internal/infrastructure/crypto"
	"github.com/example/slotbook/internal/infrastructure/metrics"
	"github.com/example/slotbook/internal/infrastructure/postgres"
	"github.com/example/slotbook/internal/logging"
)

// app is the wired dependency graph shared by the commands.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	client  *backend.Client
	source  booking.SlotSource
	cache   *cache.SlotCache
	pool    *pgxpool.Pool
	rdb     *redis.Client
	bookLog booking.BookingLog
	metrics *metrics.BookingMetrics
	reg     *prometheus.Registry
}

type appOptions struct {
	migrate  bool
	useStore bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	a := &app{cfg: cfg, log: log, reg: prometheus.NewRegistry()}
	a.reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	a.metrics = metrics.NewBookingMetrics(a.reg)

	a.client = backend.New(backend.Options{
		BaseURL: cfg.BookingAPIURL,
		Token:   cfg.BookingAPIToken,
		Timeout: cfg.BookingAPITimeout,
		Logger:  log.Named("backend"),
	})
	a.source = a.client

	if !opts.useStore {
		return a, nil
	}

	if cfg.RedisAddr != "" {
		a.rdb, err = cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			a.close()
			return nil, err
		}
		a.cache = cache.NewSlotCache(a.rdb, a.client, cfg.SlotCacheTTL, a.metrics, log.Named("cache"))
		a.source = a.cache
	}

	if cfg.DatabaseURL != "" {
		a.pool, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("db: %w", err)
		}
		if opts.migrate {
			if err := postgres.Migrate(ctx, a.pool); err != nil {
				a.close()
				return nil, fmt.Errorf("migrate: %w", err)
			}
		}
		bl := postgres.NewBookingLog(a.pool)
		if len(cfg.PIIEncKey) > 0 {
			sealer, err := crypto.NewSealer(cfg.PIIEncKey)
			if err != nil {
				a.close()
				return nil, fmt.Errorf("PII_ENC_KEY: %w", err)
			}
			bl = bl.WithSealer(sealer)
		}
		a.bookLog = bl
	}
	return a, nil
}

func (a *app) newForm(tz string) *usecases.Form {
	if tz == "" {
		tz = a.cfg.DefaultTimezone
	}
	deps := usecases.FormDeps{
		Fetcher: usecases.SlotFetcher{
			Source:    a.source,
			Attempts:  a.cfg.FetchRetryAttempts,
			BaseDelay: a.cfg.FetchRetryBaseDelay,
			Metrics:   a.metrics,
			Logger:    a.log,
		},
		Submitter: usecases.Submitter{
			Backend: a.client,
			Program: a.cfg.ProgramLabel,
			Log:     a.bookLog,
			Metrics: a.metrics,
			Logger:  a.log,
		},
		Metrics: a.metrics,
		Logger:  a.log,
	}
	if a.cache != nil {
		deps.OnBooked = func(ctx context.Context) {
			if err := a.cache.Invalidate(ctx); err != nil {
				a.log.Warn("slot cache invalidate failed", zap.Error(err))
			}
		}
	}
	return usecases.NewForm(tz, deps)
}

func (a *app) close() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	_ = a.log.Sync()
}
