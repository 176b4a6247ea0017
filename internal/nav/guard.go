// Package nav gates screen transitions on authentication and permissions.
//
// A Guard evaluates one transition at a time and returns a tagged Decision;
// it holds no state of its own and never fetches permissions. The Navigator
// resolves paths against a route Table before asking the guard.
package nav

import (
	"fmt"
	"net/url"

	"github.com/gsms/gsms/internal/log"
)

// Kind is the outcome of a guard evaluation.
type Kind int

const (
	Allowed Kind = iota
	RedirectLogin
	RedirectForbidden
	RedirectDefault
)

var kindNames = map[Kind]string{
	Allowed:           "allowed",
	RedirectLogin:     "redirect_login",
	RedirectForbidden: "redirect_forbidden",
	RedirectDefault:   "redirect_default",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	for kind, name := range kindNames {
		if name == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown navigation decision %q", text)
}

// Decision is the guard's verdict on one transition.
type Decision struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Location is where navigation continues; empty when Allowed.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	// Required lists the any-of permissions that were not satisfied for
	// RedirectForbidden.
	Required []string `json:"required,omitempty" yaml:"required,omitempty"`
}

// Allowed reports whether the transition may proceed.
func (d Decision) Allowed() bool {
	return d.Kind == Allowed
}

// SessionState is the part of the session the guard consults.
type SessionState interface {
	IsAuthenticated() bool
	HasAnyPermission(codes ...string) bool
}

// Guard evaluates route transitions.
type Guard struct {
	session     SessionState
	loginPath   string
	defaultPath string
	logger      *log.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithDefaultPath sets the landing page used for RedirectDefault and
// RedirectForbidden.
func WithDefaultPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.defaultPath = path
		}
	}
}

// WithLoginPath sets the login page path.
func WithLoginPath(path string) GuardOption {
	return func(g *Guard) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithGuardLogger sets the logger used for denials.
func WithGuardLogger(l *log.Logger) GuardOption {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a guard over session.
func NewGuard(session SessionState, opts ...GuardOption) *Guard {
	g := &Guard{
		session:     session,
		loginPath:   LoginPath,
		defaultPath: DefaultLandingPath,
		logger:      log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "guard")
	return g
}

// DefaultPath returns the landing page.
func (g *Guard) DefaultPath() string {
	return g.defaultPath
}

// Evaluate decides whether navigation to target may proceed. fullPath is the
// requested path including any query string; it becomes the login return
// target.
//
// Rules, first match wins:
//  1. guest-only target with an authenticated session: RedirectDefault
//  2. target without auth requirement: Allowed
//  3. unauthenticated session: RedirectLogin with redirect=<fullPath>
//  4. declared permissions none of which are held: RedirectForbidden
//  5. otherwise Allowed
func (g *Guard) Evaluate(target Route, fullPath string) Decision {
	if target.GuestOnly && g.session.IsAuthenticated() {
		return Decision{Kind: RedirectDefault, Location: g.defaultPath}
	}

	if !target.RequiresAuth {
		return Decision{Kind: Allowed}
	}

	if !g.session.IsAuthenticated() {
		q := url.Values{"redirect": {fullPath}}
		return Decision{Kind: RedirectLogin, Location: g.loginPath + "?" + q.Encode()}
	}

	if len(target.Permissions) > 0 && !g.session.HasAnyPermission(target.Permissions...) {
		g.logger.Warn("access denied",
			"path", fullPath,
			"route", target.Name,
			"required", target.Permissions,
		)
		required := make([]string, len(target.Permissions))
		copy(required, target.Permissions)
		return Decision{Kind: RedirectForbidden, Location: g.defaultPath, Required: required}
	}

	return Decision{Kind: Allowed}
}

// ReturnTarget extracts the redirect query parameter from a login location
// so a successful login can resume the original navigation. fallback is
// returned when none is present.
func ReturnTarget(location, fallback string) string {
	u, err := url.Parse(location)
	if err != nil {
		return fallback
	}
	if target := u.Query().Get("redirect"); target != "" {
		return target
	}
	return fallback
}
