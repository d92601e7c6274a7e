package main

import (
	"context"

	"github.com/code19m/errx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/rise-and-shine/entityrepo/backend"
	"github.com/rise-and-shine/entityrepo/cfgloader"
	"github.com/rise-and-shine/entityrepo/observability/logger"
	"github.com/rise-and-shine/entityrepo/observability/tracing"
)

const (
	serviceName = "repoctl"
	version     = "dev"
)

// Config is the repoctl configuration file.
type Config struct {
	Logger  logger.Config  `yaml:"logger"`
	Tracing tracing.Config `yaml:"tracing"`
	Store   backend.Config `yaml:"store"`
}

type app struct {
	configPath      string
	envFiles        []string
	setGlobalLogger bool

	cfg      Config
	log      logger.Logger
	shutdown func() error
}

// load reads the configuration and prepares logging and tracing. It runs before every command.
func (a *app) load() error {
	cfg, err := cfgloader.Load[Config](a.configPath, cfgloader.WithEnvFiles(a.envFiles...))
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.setGlobalLogger {
		logger.SetGlobal(cfg.Logger)
		a.log = logger.Named(serviceName)
	} else {
		l, err := logger.New(cfg.Logger)
		if err != nil {
			return errx.Wrap(err)
		}
		a.log = l.Named(serviceName)
	}
	a.log.Debug("loaded config\n" + cfgloader.Describe(cfg))

	a.shutdown, err = tracing.InitGlobalTracer(cfg.Tracing, serviceName, version)
	return err
}

// close flushes what load set up. It is safe to call when load failed.
func (a *app) close() {
	if a.shutdown != nil {
		if err := a.shutdown(); err != nil && a.log != nil {
			a.log.Warnx(err)
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// withStore opens the configured store for the duration of fn, inside a span named op.
func (a *app) withStore(ctx context.Context, op string, fn func(ctx context.Context, s *backend.Set) error) error {
	ctx, span := otel.Tracer(serviceName).Start(ctx, op)
	defer span.End()
	ctx = logger.ContextWith(ctx, "trace_id", tracing.TraceID(ctx), "operation", op)

	err := a.run(ctx, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.log.WithContext(ctx).Errorx(err)
	}
	return err
}

func (a *app) run(ctx context.Context, fn func(ctx context.Context, s *backend.Set) error) error {
	s, err := backend.Open(ctx, a.cfg.Store, backend.WithLogger(a.log.Named("backend")))
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			a.log.WithContext(ctx).Warnx(err)
		}
	}()
	return fn(ctx, s)
}
