package tracing_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/rise-and-shine/entityrepo/observability/tracing"
)

func TestTraceID(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer func() { require.NoError(t, tp.Shutdown(t.Context())) }()

	ctx, span := tp.Tracer("test").Start(t.Context(), "op")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), tracing.TraceID(ctx))
}

func TestTraceIDWithoutSpan(t *testing.T) {
	first := tracing.TraceID(t.Context())
	assert.True(t, strings.HasPrefix(first, "man-"))
	assert.NotEqual(t, first, tracing.TraceID(t.Context()))
}

func TestInitDisabled(t *testing.T) {
	shutdown, err := tracing.InitGlobalTracer(tracing.Config{}, "repoctl", "test")
	require.NoError(t, err)
	require.NoError(t, shutdown())
}
