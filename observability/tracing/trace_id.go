package tracing

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceID returns the id of the trace recorded in ctx. Without a valid span it returns
// a random id prefixed with "man-" so log entries of one run can still be correlated.
func TraceID(ctx context.Context) string {
	if id := trace.SpanFromContext(ctx).SpanContext().TraceID(); id.IsValid() {
		return id.String()
	}
	return "man-" + uuid.NewString()
}
