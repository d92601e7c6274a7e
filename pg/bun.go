// Package pg provides the PostgreSQL connection used by the relational repositories.
//
// It opens a pgx pool behind a bun database with query hooks for logging, metrics
// and tracing, and inspects PostgreSQL errors for conflict mapping.
package pg

import (
	"context"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rcrowley/go-metrics"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/extra/bunotel"

	"github.com/rise-and-shine/entityrepo/observability/logger"
	"github.com/rise-and-shine/entityrepo/pg/hooks"
)

// NewBunDB creates a new Bun database connection with the provided configuration.
// The server is pinged until it answers or cfg.ConnectAttempts is exhausted.
func NewBunDB(ctx context.Context, cfg Config) (*bun.DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.connString())
	if err != nil {
		return nil, errx.Wrap(err)
	}
	poolCfg.MaxConns = cfg.Pool.MaxConns
	poolCfg.MinConns = cfg.Pool.MinConns
	poolCfg.MaxConnLifetime = cfg.Pool.MaxConnLifetime
	poolCfg.MaxConnIdleTime = cfg.Pool.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)

	log := logger.Named("pg")
	err = retry.Do(
		func() error {
			return sqldb.PingContext(ctx)
		},
		retry.Attempts(cfg.ConnectAttempts),
		retry.Delay(cfg.ConnectRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.With("attempt", n+1).With("error", err.Error()).Warn("postgres is not reachable yet")
		}),
		retry.Context(ctx),
	)
	if err != nil {
		pool.Close()
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"host": cfg.Host, "database": cfg.Database}))
	}

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	applyHooks(bunDB, cfg.Debug)

	return bunDB, nil
}

// applyHooks installs the query logging hook (active when debug=true),
// per-operation timers in the default go-metrics registry and the OpenTelemetry hook.
func applyHooks(db *bun.DB, debug bool) {
	db.AddQueryHook(
		hooks.NewDebugHook(
			hooks.WithEnabled(debug),
			hooks.WithLogger(logger.Named("pg")),
		),
	)

	db.AddQueryHook(hooks.NewMetricsHook(metrics.DefaultRegistry, "pg"))

	db.AddQueryHook(bunotel.NewQueryHook(bunotel.WithDBName("entityrepo")))
}
