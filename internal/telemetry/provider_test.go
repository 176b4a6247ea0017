package telemetry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func resetProvider(t *testing.T) {
	t.Cleanup(func() {
		install(noop.NewTracerProvider(), nil)
		SetTracerProvider(nil)
	})
}

func TestInitProviderDisabled(t *testing.T) {
	resetProvider(t)

	shutdown, err := InitProvider(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, noop.TracerProvider{}, GetTracerProvider())
	assert.NoError(t, shutdown(context.Background()))
}

func TestInitProviderWithCollector(t *testing.T) {
	resetProvider(t)
	cfg := CollectorConfig("collector.example.com:4318")
	cfg.SampleRate = 0.5

	shutdown, err := InitProvider(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &sdktrace.TracerProvider{}, GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}

func TestShutdownWithoutProvider(t *testing.T) {
	resetProvider(t)
	install(noop.NewTracerProvider(), nil)
	assert.NoError(t, Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased{0.25}")
}

type flakyExporter struct {
	failures int32
	calls    atomic.Int32
}

func (f *flakyExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	if f.calls.Add(1) <= f.failures {
		return errors.New("collector unavailable")
	}
	return nil
}

func (f *flakyExporter) Shutdown(context.Context) error { return nil }

func TestResilientExporterRetries(t *testing.T) {
	inner := &flakyExporter{failures: 2}
	exp := newResilientExporter(inner)

	require.NoError(t, exp.ExportSpans(context.Background(), nil))
	assert.Equal(t, int32(3), inner.calls.Load())
}

func TestResilientExporterTripsBreaker(t *testing.T) {
	inner := &flakyExporter{failures: 1 << 20}
	exp := newResilientExporter(inner)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	exp.breaker.now = func() time.Time { return now }

	for i := 0; i < exp.breaker.threshold; i++ {
		assert.Error(t, exp.ExportSpans(context.Background(), nil))
	}
	calls := inner.calls.Load()

	assert.ErrorIs(t, exp.ExportSpans(context.Background(), nil), errBreakerOpen)
	assert.Equal(t, calls, inner.calls.Load(), "no export while suspended")

	now = now.Add(exp.breaker.cooldown)
	assert.Error(t, exp.ExportSpans(context.Background(), nil))
	assert.Greater(t, inner.calls.Load(), calls, "one attempt after cooldown")
}
