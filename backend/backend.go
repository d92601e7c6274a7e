// Package backend opens the configured store and wires every entity repository onto it.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/rise-and-shine/entityrepo/asyncwrite"
	"github.com/rise-and-shine/entityrepo/docstore"
	"github.com/rise-and-shine/entityrepo/entity/apikey"
	"github.com/rise-and-shine/entityrepo/entity/audit"
	"github.com/rise-and-shine/entityrepo/entity/event"
	"github.com/rise-and-shine/entityrepo/entity/monitoring"
	"github.com/rise-and-shine/entityrepo/entity/page"
	"github.com/rise-and-shine/entityrepo/entity/plan"
	"github.com/rise-and-shine/entityrepo/entity/subscription"
	"github.com/rise-and-shine/entityrepo/observability/logger"
	"github.com/rise-and-shine/entityrepo/pg"
	"github.com/rise-and-shine/entityrepo/rediswr"
	"github.com/rise-and-shine/entityrepo/repogen"
	"github.com/rise-and-shine/entityrepo/sqlitewr"
)

// CodeUnknownDriver is returned by Open for a driver it cannot open.
const CodeUnknownDriver = "UNKNOWN_STORE_DRIVER"

const tracerName = "github.com/rise-and-shine/entityrepo/backend"

// Set holds one repository per entity kind, all on the same store.
type Set struct {
	APIKeys       apikey.Repository
	Subscriptions subscription.Repository
	Plans         plan.Repository
	Events        event.Repository
	Pages         page.Repository
	Audits        audit.Repository
	Monitoring    monitoring.Repository

	// MonitoringWriter creates monitoring reports asynchronously. Close stops it.
	MonitoringWriter *asyncwrite.Writer[monitoring.Monitoring]

	log     logger.Logger
	tracer  trace.Tracer
	closers []func() error
}

// Option configures a Set.
type Option func(*options)

type options struct {
	log      logger.Logger
	tp       trace.TracerProvider
	auditOps []audit.Option
}

// WithLogger sets the logger. Defaults to the global logger named "backend".
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// WithTracerProvider sets the provider of the spans around bulk operations.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// WithAuditClock replaces time.Now in audit retention.
func WithAuditClock(now func() time.Time) Option {
	return func(o *options) {
		o.auditOps = append(o.auditOps, audit.WithClock(now))
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Named("backend")
	}
	if o.tp == nil {
		o.tp = otel.GetTracerProvider()
	}
	return o
}

// Open connects to the store selected by cfg.Driver. The returned Set owns the connection.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Set, error) {
	switch cfg.Driver {
	case DriverPostgres:
		if cfg.Postgres == nil {
			return nil, errx.New("postgres driver needs a postgres section", errx.WithType(errx.T_Validation))
		}
		db, err := pg.NewBunDB(ctx, *cfg.Postgres)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return attach(db.Close)(NewBun(db, cfg.MonitoringWriter, opts...))

	case DriverSQLite, "":
		db, err := sqlitewr.New(ctx, cfg.SQLite)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		if err = CreateTables(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return attach(db.Close)(NewBun(db, cfg.MonitoringWriter, opts...))

	case DriverRedis:
		if cfg.Redis == nil {
			return nil, errx.New("redis driver needs a redis section", errx.WithType(errx.T_Validation))
		}
		client, err := rediswr.Connect(ctx, *cfg.Redis)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		store := docstore.NewRedisStore(client, docstore.WithKeyPrefix(cfg.KeyPrefix))
		return attach(client.Close)(NewDoc(store, cfg.MonitoringWriter, opts...))

	case DriverMemory:
		return NewDoc(docstore.NewMemoryStore(), cfg.MonitoringWriter, opts...)

	default:
		return nil, errx.New(
			fmt.Sprintf("unknown store driver %q", cfg.Driver),
			errx.WithCode(CodeUnknownDriver),
			errx.WithType(errx.T_Validation),
		)
	}
}

// attach hands the store closer to a successfully built set, or runs it when building failed.
func attach(closer func() error) func(s *Set, err error) (*Set, error) {
	return func(s *Set, err error) (*Set, error) {
		if err != nil {
			_ = closer()
			return nil, err
		}
		s.closers = append(s.closers, closer)
		return s, nil
	}
}

// NewBun wires every repository onto a relational database.
func NewBun(idb bun.IDB, writer asyncwrite.Config, opts ...Option) (*Set, error) {
	o := buildOptions(opts)
	s := &Set{
		APIKeys:       apikey.NewBunRepository(idb),
		Subscriptions: subscription.NewBunRepository(idb),
		Plans:         plan.NewBunRepository(idb),
		Events:        event.NewBunRepository(idb),
		Pages:         page.NewBunRepository(idb),
		Audits:        audit.NewBunRepository(idb, o.auditOps...),
		Monitoring:    monitoring.NewBunRepository(idb),
		log:           o.log,
		tracer:        o.tp.Tracer(tracerName),
	}
	return s.startWriter(writer)
}

// NewDoc wires every repository onto a document store.
func NewDoc(store docstore.Store, writer asyncwrite.Config, opts ...Option) (*Set, error) {
	o := buildOptions(opts)
	s := &Set{
		APIKeys:       apikey.NewDocRepository(store),
		Subscriptions: subscription.NewDocRepository(store),
		Plans:         plan.NewDocRepository(store),
		Events:        event.NewDocRepository(store),
		Pages:         page.NewDocRepository(store),
		Audits:        audit.NewDocRepository(store, o.auditOps...),
		Monitoring:    monitoring.NewDocRepository(store),
		log:           o.log,
		tracer:        o.tp.Tracer(tracerName),
	}
	return s.startWriter(writer)
}

func (s *Set) startWriter(cfg asyncwrite.Config) (*Set, error) {
	w, err := monitoring.NewWriter(s.Monitoring, cfg, asyncwrite.WithLogger(s.log.Named("monitoring")))
	if err != nil {
		return nil, err
	}
	s.MonitoringWriter = w
	return s, nil
}

// CreateTables creates the table of every entity kind when it does not exist yet.
func CreateTables(ctx context.Context, idb bun.IDB) error {
	for _, create := range []func(context.Context, bun.IDB) error{
		repogen.CreateTable[apikey.APIKey],
		repogen.CreateTable[subscription.Subscription],
		repogen.CreateTable[plan.Plan],
		repogen.CreateTable[event.Event],
		repogen.CreateTable[page.Page],
		repogen.CreateTable[audit.Audit],
		repogen.CreateTable[monitoring.Monitoring],
	} {
		if err := create(ctx, idb); err != nil {
			return err
		}
	}
	return nil
}

// Close stops the monitoring writer, then releases the store.
func (s *Set) Close() error {
	var errs []error
	if s.MonitoringWriter != nil {
		errs = append(errs, s.MonitoringWriter.Close())
	}
	for _, closer := range s.closers {
		errs = append(errs, closer())
	}
	if err := errors.Join(errs...); err != nil {
		return errx.Wrap(err)
	}
	return nil
}
