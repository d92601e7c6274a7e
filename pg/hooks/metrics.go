package hooks

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rcrowley/go-metrics"
	"github.com/uptrace/bun"
)

var _ bun.QueryHook = (*MetricsHook)(nil)

// MetricsHook records a timer per query operation and counts failed queries.
// Metric names are "<prefix>.query.<operation>" and "<prefix>.query.errors".
type MetricsHook struct {
	registry metrics.Registry
	prefix   string
}

// NewMetricsHook creates a hook publishing into registry.
func NewMetricsHook(registry metrics.Registry, prefix string) *MetricsHook {
	return &MetricsHook{registry: registry, prefix: prefix}
}

func (h *MetricsHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *MetricsHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	op := strings.ToLower(event.Operation())
	if op == "" {
		op = "unknown"
	}

	metrics.GetOrRegisterTimer(h.prefix+".query."+op, h.registry).UpdateSince(event.StartTime)

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		metrics.GetOrRegisterCounter(h.prefix+".query.errors", h.registry).Inc(1)
	}
}
