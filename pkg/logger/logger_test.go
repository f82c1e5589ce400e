package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitWithWriter("test-service", &buf)
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Logger = zerolog.Nop()
		zerolog.SetGlobalLevel(prev)
	})
	return &buf
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithContextAddsTraceIDs(t *testing.T) {
	buf := capture(t)
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	defer span.End()

	Info(ctx).Msg("hello")

	entry := decode(t, buf)
	assert.Equal(t, "test-service", entry["service"])
	assert.Equal(t, span.SpanContext().TraceID().String(), entry["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), entry["span_id"])
}

func TestWithContextWithoutSpan(t *testing.T) {
	buf := capture(t)

	Component(context.Background(), "resolver").Warn().Msg("miss")

	entry := decode(t, buf)
	assert.Equal(t, "resolver", entry["component"])
	assert.NotContains(t, entry, "trace_id")
}

func TestSetLevel(t *testing.T) {
	buf := capture(t)

	SetLevel("WARN")
	Info(context.Background()).Msg("dropped")
	assert.Zero(t, buf.Len())

	SetLevel("nonsense")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
