package nav

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/gsms/gsms/internal/authz"
)

// Route is one screen of the console together with its access metadata.
type Route struct {
	Name string `json:"name" yaml:"name"`
	// Path is a chi pattern, e.g. "/projects/{id}".
	Path  string `json:"path" yaml:"path"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	RequiresAuth bool `json:"requiresAuth" yaml:"requiresAuth"`
	// Permissions are any-of: holding one of them grants access.
	Permissions []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	// GuestOnly routes (login, register) send authenticated sessions to the
	// default landing page.
	GuestOnly bool `json:"guestOnly,omitempty" yaml:"guestOnly,omitempty"`
	// Redirect, when set, forwards navigation to another path before any
	// guard rule runs.
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`
}

// Route names.
const (
	RouteRoot          = "Root"
	RouteLogin         = "Login"
	RouteRegister      = "Register"
	RouteDashboard     = "Dashboard"
	RouteProjects      = "Projects"
	RouteProjectDetail = "ProjectDetail"
	RouteTasks         = "Tasks"
	RouteTaskDetail    = "TaskDetail"
	RouteIterations    = "Iterations"
	RouteWorkHours     = "WorkHours"
	RouteSystem        = "System"
	RouteUsers         = "Users"
	RouteRoles         = "Roles"
	RoutePermissions   = "Permissions"
	RouteNotFound      = "NotFound"
)

// Well-known paths.
const (
	LoginPath          = "/login"
	DefaultLandingPath = "/projects"
)

// DefaultRoutes returns the console route table.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteRoot, Path: "/", Redirect: LoginPath},
		{Name: RouteLogin, Path: LoginPath, Title: "Login", GuestOnly: true},
		{Name: RouteRegister, Path: "/register", Title: "Register", GuestOnly: true},
		{Name: RouteDashboard, Path: "/dashboard", Title: "Dashboard", RequiresAuth: true},
		{Name: RouteProjects, Path: "/projects", Title: "Projects", RequiresAuth: true},
		{Name: RouteProjectDetail, Path: "/projects/{id}", Title: "Project Detail", RequiresAuth: true},
		{Name: RouteTasks, Path: "/tasks", Title: "Tasks", RequiresAuth: true},
		{Name: RouteTaskDetail, Path: "/tasks/{id}", Title: "Task Detail", RequiresAuth: true},
		{Name: RouteIterations, Path: "/iterations", Title: "Iterations", RequiresAuth: true},
		{Name: RouteWorkHours, Path: "/workhours", Title: "Work Hours", RequiresAuth: true},
		{
			Name:         RouteSystem,
			Path:         "/system",
			Title:        "System",
			RequiresAuth: true,
			Permissions:  []string{authz.PermUserView, authz.PermRoleView, authz.PermPermissionView},
			Redirect:     "/users",
		},
		{Name: RouteUsers, Path: "/users", Title: "Users", RequiresAuth: true, Permissions: []string{authz.PermUserView}},
		{Name: RouteRoles, Path: "/roles", Title: "Roles", RequiresAuth: true, Permissions: []string{authz.PermRoleView}},
		{Name: RoutePermissions, Path: "/permissions", Title: "Permissions", RequiresAuth: true, Permissions: []string{authz.PermPermissionView}},
	}
}

// NotFoundRoute is the public catch-all for paths no route matches.
func NotFoundRoute() Route {
	return Route{Name: RouteNotFound, Path: "/*", Title: "404"}
}

// Table resolves paths to routes.
type Table struct {
	mux       *chi.Mux
	routes    []Route
	byPattern map[string]Route
	byName    map[string]Route
	notFound  Route
}

// Match is the result of resolving a path.
type Match struct {
	Route  Route
	Params map[string]string
}

// NewTable builds a table from routes. Names and paths must be unique and
// paths must be valid chi patterns.
func NewTable(routes []Route, notFound Route) (t *Table, err error) {
	t = &Table{
		mux:       chi.NewMux(),
		byPattern: make(map[string]Route, len(routes)),
		byName:    make(map[string]Route, len(routes)),
		notFound:  notFound,
	}

	// chi panics on malformed or conflicting patterns
	defer func() {
		if r := recover(); r != nil {
			t = nil
			err = fmt.Errorf("invalid route table: %v", r)
		}
	}()

	noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for _, r := range routes {
		if r.Name == "" {
			return nil, fmt.Errorf("route %q has no name", r.Path)
		}
		if !strings.HasPrefix(r.Path, "/") {
			return nil, fmt.Errorf("route %s: path %q must start with /", r.Name, r.Path)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("duplicate route name %s", r.Name)
		}
		if _, dup := t.byPattern[r.Path]; dup {
			return nil, fmt.Errorf("duplicate route path %s", r.Path)
		}
		t.mux.Handle(r.Path, noop)
		t.byPattern[r.Path] = r
		t.byName[r.Name] = r
		t.routes = append(t.routes, r)
	}
	return t, nil
}

// DefaultTable returns the console route table.
func DefaultTable() *Table {
	t, err := NewTable(DefaultRoutes(), NotFoundRoute())
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the routes in declaration order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

// ByName looks up a route by name.
func (t *Table) ByName(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Match resolves path (without query string) to a route. Unknown paths
// resolve to the NotFound route. A trailing slash is ignored.
func (t *Table) Match(path string) Match {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}

	rctx := chi.NewRouteContext()
	if !t.mux.Match(rctx, http.MethodGet, path) {
		return Match{Route: t.notFound}
	}
	route, ok := t.byPattern[rctx.RoutePattern()]
	if !ok {
		return Match{Route: t.notFound}
	}

	var params map[string]string
	for i, key := range rctx.URLParams.Keys {
		if key == "*" {
			continue
		}
		if params == nil {
			params = make(map[string]string)
		}
		params[key] = rctx.URLParams.Values[i]
	}
	return Match{Route: route, Params: params}
}
