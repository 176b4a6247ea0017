package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	scopeCLI = "github.com/gsms/gsms/cli"
	scopeAPI = "github.com/gsms/gsms/api"
	scopeNav = "github.com/gsms/gsms/nav"
)

func start(ctx context.Context, scope, name string, kind trace.SpanKind, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return GetTracerProvider().Tracer(scope).Start(ctx, name,
		trace.WithSpanKind(kind),
		trace.WithAttributes(attrs...),
	)
}

// StartCommandSpan opens the root span of one gsms invocation, named after
// the full command path ("gsms project list").
func StartCommandSpan(ctx context.Context, commandPath string) (context.Context, trace.Span) {
	return start(ctx, scopeCLI, commandPath, trace.SpanKindInternal,
		attribute.String("gsms.command", commandPath),
	)
}

// StartAPISpan opens a client span for a backend call. route is the path
// template, e.g. "/users/{id}/permissions".
func StartAPISpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return start(ctx, scopeAPI, method+" "+route, trace.SpanKindClient,
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
	)
}

// StartNavigationSpan opens a span around one guarded navigation.
func StartNavigationSpan(ctx context.Context, path string) (context.Context, trace.Span) {
	return start(ctx, scopeNav, "navigate", trace.SpanKindInternal,
		attribute.String("nav.path", path),
	)
}

// RecordSuccess attaches attrs and marks the span ok.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError marks the span failed. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// RecordDuration stores d in milliseconds under "<name>.duration_ms".
func RecordDuration(span trace.Span, name string, d time.Duration) {
	span.SetAttributes(attribute.Int64(name+".duration_ms", d.Milliseconds()))
}
