// Package sqlitewr opens an embedded SQLite database behind bun.
// It backs local runs of repoctl and the relational repository tests.
package sqlitewr

import (
	"context"
	"database/sql"

	"github.com/code19m/errx"
	"github.com/rcrowley/go-metrics"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/extra/bundebug"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/rise-and-shine/entityrepo/observability/logger"
	"github.com/rise-and-shine/entityrepo/pg/hooks"
)

// Schema is the schema name SQLite gives the main database.
const Schema = "main"

// New opens the database described by cfg.
// A single connection is kept so in-memory databases are shared by every query.
func New(ctx context.Context, cfg Config) (*bun.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = "file::memory:"
	}

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"dsn": dsn}))
	}
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)

	if err = sqldb.PingContext(ctx); err != nil {
		_ = sqldb.Close()
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"dsn": dsn}))
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	db.AddQueryHook(hooks.NewDebugHook(
		hooks.WithEnabled(cfg.Debug),
		hooks.WithLogger(logger.Named("sqlite")),
	))
	db.AddQueryHook(hooks.NewMetricsHook(metrics.DefaultRegistry, "sqlite"))

	printer := []bundebug.Option{
		bundebug.WithEnabled(cfg.PrintQueries),
		bundebug.WithVerbose(cfg.PrintQueries),
		bundebug.FromEnv("BUNDEBUG"),
	}
	if cfg.Output != nil {
		printer = append(printer, bundebug.WithWriter(cfg.Output))
	}
	db.AddQueryHook(bundebug.NewQueryHook(printer...))

	return db, nil
}
