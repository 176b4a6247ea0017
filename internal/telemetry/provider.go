package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var current struct {
	sync.RWMutex
	provider trace.TracerProvider
	shutdown func(context.Context) error
}

// errBreakerOpen is returned while exports are suspended.
var errBreakerOpen = errors.New("telemetry: collector unreachable, export suspended")

// breaker suspends exporting for cooldown after threshold consecutive
// failures, then lets a single attempt through.
type breaker struct {
	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	trippedAt time.Time
	now       func() time.Time
}

func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures < b.threshold || b.now().Sub(b.trippedAt) >= b.cooldown
}

func (b *breaker) observe(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.trippedAt = b.now()
	}
}

// resilientExporter retries failed batches with backoff behind a breaker.
type resilientExporter struct {
	sdktrace.SpanExporter
	attempts uint
	breaker  *breaker
}

func newResilientExporter(next sdktrace.SpanExporter) *resilientExporter {
	return &resilientExporter{
		SpanExporter: next,
		attempts:     3,
		breaker:      &breaker{threshold: 3, cooldown: 30 * time.Second, now: time.Now},
	}
}

func (e *resilientExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if !e.breaker.allow() {
		return errBreakerOpen
	}
	err := retry.Do(
		func() error { return e.SpanExporter.ExportSpans(ctx, spans) },
		retry.Context(ctx),
		retry.Attempts(e.attempts),
		retry.Delay(100*time.Millisecond),
		retry.MaxDelay(2*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
	e.breaker.observe(err)
	if err != nil {
		return fmt.Errorf("telemetry: exporting %d spans: %w", len(spans), err)
	}
	return nil
}

func newResource(cfg Config) (*resource.Resource, error) {
	return resource.Merge(resource.Default(), resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("deployment.environment", cfg.Environment),
	))
}

func sampler(rate float64) sdktrace.Sampler {
	if rate >= 1 {
		return sdktrace.AlwaysSample()
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
}

// InitProvider installs the process-wide tracer provider described by cfg
// and returns its shutdown function. A disabled config installs a no-op
// provider. Without an endpoint spans are sampled but never exported.
func InitProvider(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if !cfg.Enabled {
		install(noop.NewTracerProvider(), func(context.Context) error { return nil })
		return Shutdown, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: building resource: %w", err)
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.SampleRate)),
	}

	if cfg.Endpoint != "" {
		clientOpts := []otlptracehttp.Option{
			otlptracehttp.WithEndpoint(cfg.Endpoint),
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
		}
		if cfg.Insecure {
			clientOpts = append(clientOpts, otlptracehttp.WithInsecure())
		}
		exp, err := otlptracehttp.New(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("telemetry: creating OTLP exporter: %w", err)
		}
		// Commands are short-lived; flush small batches every second.
		opts = append(opts, sdktrace.WithBatcher(newResilientExporter(exp),
			sdktrace.WithBatchTimeout(time.Second),
			sdktrace.WithMaxExportBatchSize(128),
		))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	install(tp, tp.Shutdown)
	return Shutdown, nil
}

func install(tp trace.TracerProvider, shutdown func(context.Context) error) {
	current.Lock()
	current.provider, current.shutdown = tp, shutdown
	current.Unlock()
	otel.SetTracerProvider(tp)
}

// SetTracerProvider replaces the provider used by the span helpers without
// touching the otel global. Passing nil restores the no-op default.
func SetTracerProvider(tp trace.TracerProvider) {
	current.Lock()
	defer current.Unlock()
	current.provider = tp
}

// Shutdown flushes and stops the installed provider. It is safe to call
// when nothing was installed.
func Shutdown(ctx context.Context) error {
	current.RLock()
	shutdown := current.shutdown
	current.RUnlock()
	if shutdown == nil {
		return nil
	}
	return shutdown(ctx)
}

// GetTracerProvider returns the provider the span helpers use.
func GetTracerProvider() trace.TracerProvider {
	current.RLock()
	defer current.RUnlock()
	if current.provider == nil {
		return noop.NewTracerProvider()
	}
	return current.provider
}
