// Package health backs "gsms doctor": it runs diagnostics against the
// session storage, the backend and the stored token, and folds their
// results into a single report.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/iter"
)

// Status orders from best to worst.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string { return string(s) }

func (s Status) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Result is the outcome of one check.
type Result struct {
	Name    string         `json:"name" yaml:"name"`
	Status  Status         `json:"status" yaml:"status"`
	Message string         `json:"message" yaml:"message"`
	Details map[string]any `json:"details,omitempty" yaml:"details,omitempty"`
	Latency time.Duration  `json:"latency" yaml:"latency"`
}

// result builds a Result from alternating key/value detail pairs.
func result(status Status, message string, kv ...any) Result {
	r := Result{Status: status, Message: message}
	for i := 0; i+1 < len(kv); i += 2 {
		if r.Details == nil {
			r.Details = make(map[string]any, len(kv)/2)
		}
		r.Details[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return r
}

// Checker is one diagnostic.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// Report is the outcome of Run. Checks keep the order they were given in.
type Report struct {
	Status Status   `json:"status" yaml:"status"`
	Checks []Result `json:"checks" yaml:"checks"`
}

// Failed lists the unhealthy checks.
func (r Report) Failed() []string {
	var names []string
	for _, c := range r.Checks {
		if c.Status == StatusUnhealthy {
			names = append(names, c.Name)
		}
	}
	return names
}

// Run executes checkers concurrently, each bounded by timeout. The report
// status is the worst individual status.
func Run(ctx context.Context, timeout time.Duration, checkers ...Checker) Report {
	results := iter.Map(checkers, func(c *Checker) Result {
		checkCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := time.Now()
		r := safeCheck(checkCtx, *c)
		r.Name = (*c).Name()
		if r.Latency == 0 {
			r.Latency = time.Since(start)
		}
		return r
	})

	rep := Report{Status: StatusHealthy, Checks: results}
	for _, r := range results {
		if r.Status.rank() > rep.Status.rank() {
			rep.Status = r.Status
		}
	}
	return rep
}

func safeCheck(ctx context.Context, c Checker) (r Result) {
	defer func() {
		if p := recover(); p != nil {
			r = result(StatusUnhealthy, "check panicked", "panic", fmt.Sprint(p))
		}
	}()
	r = c.Check(ctx)
	if r.Status == "" {
		r = result(StatusUnhealthy, "check reported no status")
	}
	return r
}
