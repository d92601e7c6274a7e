// Package hooks holds the bun query hooks shared by the PostgreSQL and SQLite databases.
package hooks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/entityrepo/observability/logger"
)

var _ bun.QueryHook = (*DebugHook)(nil)

const defaultSlowQuery = 100 * time.Millisecond

// DebugHook logs repository queries. Failed queries are logged at error level,
// slow ones and reads that found nothing at warn level, and, when verbose,
// everything else at debug level.
type DebugHook struct {
	enabled   bool
	verbose   bool
	slowQuery time.Duration
	log       logger.Logger
}

type DebugHookOption func(*DebugHook)

// NewDebugHook returns an enabled, verbose hook writing to the global "bun" logger.
func NewDebugHook(opts ...DebugHookOption) *DebugHook {
	h := &DebugHook{enabled: true, verbose: true, slowQuery: defaultSlowQuery}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Named("bun")
	}
	return h
}

func WithEnabled(enabled bool) DebugHookOption {
	return func(h *DebugHook) { h.enabled = enabled }
}

// WithVerbose controls whether successful queries are logged.
func WithVerbose(verbose bool) DebugHookOption {
	return func(h *DebugHook) { h.verbose = verbose }
}

// WithSlowQuery sets the duration from which a query is reported as slow. Zero disables the check.
func WithSlowQuery(d time.Duration) DebugHookOption {
	return func(h *DebugHook) { h.slowQuery = d }
}

func WithLogger(l logger.Logger) DebugHookOption {
	return func(h *DebugHook) { h.log = l }
}

func (h *DebugHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *DebugHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	if !h.enabled {
		return
	}

	took := time.Since(event.StartTime)
	outcome := h.classify(event.Err, took)
	if outcome == outcomeOK && !h.verbose {
		return
	}

	log := h.log.WithContext(ctx).
		With("query", strings.ReplaceAll(event.Query, `"`, "")).
		With("duration", took.Round(time.Microsecond))
	if event.Err != nil {
		log = log.With("error", event.Err.Error())
	}

	msg := "query " + strings.ToLower(event.Operation())
	switch outcome {
	case outcomeFailed:
		log.Error(msg)
	case outcomeSlow:
		log.Warn(msg + " is slow")
	case outcomeNoRows:
		log.Warn(msg + " found no rows")
	default:
		log.Debug(msg)
	}
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeNoRows
	outcomeSlow
	outcomeFailed
)

func (h *DebugHook) classify(err error, took time.Duration) outcome {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return outcomeNoRows
	case err != nil && !errors.Is(err, sql.ErrTxDone):
		return outcomeFailed
	case h.slowQuery > 0 && took >= h.slowQuery:
		return outcomeSlow
	}
	return outcomeOK
}
