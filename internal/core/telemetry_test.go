// AngelaMos | 2026
// telemetry_test.go

package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/carterperez-dev/templates/movie-catalog/internal/config"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	return recorder
}

func TestNewTelemetry_Disabled(t *testing.T) {
	tel, err := NewTelemetry(context.Background(),
		config.OtelConfig{Enabled: false, Endpoint: "collector:4317"},
		config.AppConfig{Name: "test"},
	)
	require.NoError(t, err)

	_, span := tel.Tracer.Start(context.Background(), "ignored")
	assert.False(t, span.SpanContext().IsSampled())
	span.End()

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestSampler_ClampsRate(t *testing.T) {
	assert.Contains(t, sampler(0).Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, sampler(2).Description(), "TraceIDRatioBased{0.1}")
	assert.Contains(t, sampler(0.5).Description(), "TraceIDRatioBased{0.5}")
}

func TestSpanHelpers(t *testing.T) {
	recorder := recordSpans(t)

	ctx, span := StartSpan(context.Background(), "auth.login",
		attribute.String("auth.method", "password"))
	assert.NotEmpty(t, TraceIDFromContext(ctx))

	AddSpanEvent(ctx, "login.succeeded", attribute.Int64("user.id", 7))
	SetSpanError(ctx, errors.New("store down"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "auth.login", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "store down", ended[0].Status().Description)

	var names []string
	for _, ev := range ended[0].Events() {
		names = append(names, ev.Name)
	}
	assert.Contains(t, names, "login.succeeded")
}

func TestTraceIDFromContext_NoSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
