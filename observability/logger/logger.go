package logger

import (
	"context"
	"errors"

	"github.com/code19m/errx"
	"go.uber.org/zap"
)

// Logger is the structured logger handed to stores, repositories and commands.
type Logger interface {
	Debug(msg any)
	Info(msg any)
	Warn(msg any)
	Error(msg any)

	// Warnx and Errorx log err with the code, type, trace, fields and details of an errx error.
	Warnx(err error)
	Errorx(err error)

	With(keysAndValues ...any) Logger
	// WithContext adds the fields attached to ctx by ContextWith.
	WithContext(ctx context.Context) Logger
	Named(name string) Logger

	Sync() error
}

type logger struct {
	sugar *zap.SugaredLogger
}

func newLogger(cfg Config) (Logger, error) {
	if cfg.Disable {
		return FromZap(zap.NewNop()), nil
	}

	zapConfig, err := cfg.getZapConfig()
	if err != nil {
		return nil, errx.Wrap(err)
	}

	zl, err := zapConfig.Build()
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return FromZap(zl), nil
}

// New builds a logger independent of the global one.
func New(cfg Config) (Logger, error) {
	return newLogger(cfg)
}

// FromZap wraps an existing zap logger. Tests use it to observe log output.
func FromZap(zl *zap.Logger) Logger {
	return &logger{sugar: zl.Sugar()}
}

func (l *logger) Debug(msg any) { l.sugar.Debug(msg) }
func (l *logger) Info(msg any)  { l.sugar.Info(msg) }
func (l *logger) Warn(msg any)  { l.sugar.Warn(msg) }
func (l *logger) Error(msg any) { l.sugar.Error(msg) }

func (l *logger) Warnx(err error) {
	l.errorFields(err).Warn(err.Error())
}

func (l *logger) Errorx(err error) {
	l.errorFields(err).Error(err.Error())
}

// errorFields returns the sugared logger carrying the errx attributes of err, if any.
func (l *logger) errorFields(err error) *zap.SugaredLogger {
	var e errx.ErrorX
	if !errors.As(err, &e) {
		return l.sugar
	}
	return l.sugar.With(
		"error_code", e.Code(),
		"error_type", e.Type().String(),
		"error_trace", e.Trace(),
		"error_fields", e.Fields(),
		"error_details", e.Details(),
	)
}

func (l *logger) With(keysAndValues ...any) Logger {
	return &logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *logger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	if fields := fieldsFromContext(ctx); len(fields) > 0 {
		return l.With(fields...)
	}
	return l
}

func (l *logger) Named(name string) Logger {
	return &logger{sugar: l.sugar.Named(name)}
}

func (l *logger) Sync() error {
	return l.sugar.Sync()
}
