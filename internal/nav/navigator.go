package nav

import (
	"context"
	"fmt"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gsms/gsms/internal/log"
	"github.com/gsms/gsms/internal/telemetry"
)

// AppTitle is the document title suffix and the title of untitled screens.
const AppTitle = "GSMS"

// maxRedirects bounds route-level redirect chains.
const maxRedirects = 5

// DecisionObserver is notified of every navigation outcome.
type DecisionObserver interface {
	ObserveNavigation(route, decision string)
}

// Result is the outcome of Navigate.
type Result struct {
	Decision
	// Path is the requested path after route-level redirects.
	Path   string            `json:"path" yaml:"path"`
	Route  Route             `json:"route" yaml:"route"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
	Title  string            `json:"title" yaml:"title"`
}

// Navigator resolves paths against a route table and runs the guard.
type Navigator struct {
	table    *Table
	guard    *Guard
	observer DecisionObserver
	logger   *log.Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithDecisionObserver registers a metrics sink.
func WithDecisionObserver(o DecisionObserver) NavigatorOption {
	return func(n *Navigator) { n.observer = o }
}

// WithNavigatorLogger sets the logger.
func WithNavigatorLogger(l *log.Logger) NavigatorOption {
	return func(n *Navigator) {
		if l != nil {
			n.logger = l
		}
	}
}

// NewNavigator creates a navigator.
func NewNavigator(table *Table, guard *Guard, opts ...NavigatorOption) *Navigator {
	n := &Navigator{
		table:  table,
		guard:  guard,
		logger: log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = n.logger.With("component", "navigator")
	return n
}

// Table returns the route table.
func (n *Navigator) Table() *Table {
	return n.table
}

// Title formats the window title for a route.
func Title(r Route) string {
	if r.Title == "" {
		return AppTitle
	}
	return r.Title + " - " + AppTitle
}

// Navigate resolves path, follows route-level redirects and evaluates the
// guard on the final route.
func (n *Navigator) Navigate(ctx context.Context, path string) (Result, error) {
	ctx, span := telemetry.StartNavigationSpan(ctx, path)
	defer span.End()

	if path == "" {
		path = "/"
	}

	current := path
	var m Match
	for hops := 0; ; hops++ {
		u, err := url.Parse(current)
		if err != nil {
			err = fmt.Errorf("invalid path %q: %w", current, err)
			telemetry.RecordError(span, err)
			return Result{}, err
		}
		m = n.table.Match(u.Path)
		if m.Route.Redirect == "" {
			break
		}
		if hops == maxRedirects {
			err := fmt.Errorf("too many redirects navigating to %q", path)
			telemetry.RecordError(span, err)
			return Result{}, err
		}
		n.logger.DebugContext(ctx, "route redirect", "from", current, "to", m.Route.Redirect)
		current = m.Route.Redirect
	}

	decision := n.guard.Evaluate(m.Route, current)
	res := Result{
		Decision: decision,
		Path:     current,
		Route:    m.Route,
		Params:   m.Params,
		Title:    Title(m.Route),
	}

	if n.observer != nil {
		n.observer.ObserveNavigation(m.Route.Name, decision.Kind.String())
	}
	n.logger.DebugContext(ctx, "navigation",
		"path", current,
		"route", m.Route.Name,
		"decision", decision.Kind.String(),
		"location", decision.Location,
	)
	telemetry.RecordSuccess(span,
		attribute.String("nav.route", m.Route.Name),
		attribute.String("nav.decision", decision.Kind.String()),
	)
	return res, nil
}
