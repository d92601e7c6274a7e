package asyncwrite

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/rise-and-shine/entityrepo/observability/logger"
)

var _ watermill.LoggerAdapter = (*loggerAdapter)(nil)

// loggerAdapter routes watermill logs to our logger. Trace goes to debug.
type loggerAdapter struct {
	base logger.Logger
}

func newLoggerAdapter(base logger.Logger) *loggerAdapter {
	return &loggerAdapter{base: base}
}

func (l *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	l.withFields(fields).With("error", err).Error(msg)
}

func (l *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	// watermill reports pub/sub lifecycle at info, which is noise for an in-process channel
	l.withFields(fields).Debug(msg)
}

func (l *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	l.withFields(fields).Debug(msg)
}

func (l *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	l.withFields(fields).Debug(msg)
}

func (l *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{base: l.withFields(fields)}
}

func (l *loggerAdapter) withFields(fields watermill.LogFields) logger.Logger {
	log := l.base
	for k, v := range fields {
		log = log.With(k, v)
	}
	return log
}
