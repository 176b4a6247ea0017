package nav

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsms/gsms/internal/authz"
	"github.com/gsms/gsms/internal/log"
	"github.com/gsms/gsms/internal/metrics"
)

func newTestNavigator(s SessionState, opts ...NavigatorOption) *Navigator {
	opts = append([]NavigatorOption{WithNavigatorLogger(log.Discard())}, opts...)
	return NewNavigator(DefaultTable(), newTestGuard(s), opts...)
}

func TestNavigateTitles(t *testing.T) {
	nav := newTestNavigator(loggedIn())

	res, err := nav.Navigate(context.Background(), "/projects/3")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, "Project Detail - GSMS", res.Title)
	assert.Equal(t, map[string]string{"id": "3"}, res.Params)

	assert.Equal(t, "GSMS", Title(Route{}))
}

func TestNavigateUnauthenticatedCarriesFullPath(t *testing.T) {
	res, err := newTestNavigator(anonymous()).Navigate(context.Background(), "/workhours?userId=4")
	require.NoError(t, err)

	assert.Equal(t, RedirectLogin, res.Kind)
	assert.Equal(t, "/workhours?userId=4", ReturnTarget(res.Location, ""))
	assert.Equal(t, "Work Hours - GSMS", res.Title)
}

func TestNavigateAnyOfPermissions(t *testing.T) {
	res, err := newTestNavigator(loggedIn(authz.PermUserView)).Navigate(context.Background(), "/users")
	require.NoError(t, err)
	assert.Equal(t, Allowed, res.Kind)
}

func TestNavigateEmptyPermissionsIsForbiddenNotLogin(t *testing.T) {
	res, err := newTestNavigator(loggedIn()).Navigate(context.Background(), "/users")
	require.NoError(t, err)
	assert.Equal(t, RedirectForbidden, res.Kind)
	assert.Equal(t, DefaultLandingPath, res.Location)
}

func TestNavigateFollowsRouteRedirects(t *testing.T) {
	res, err := newTestNavigator(loggedIn()).Navigate(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, LoginPath, res.Path)
	assert.Equal(t, RouteLogin, res.Route.Name)
	assert.Equal(t, RedirectDefault, res.Kind)

	res, err = newTestNavigator(anonymous()).Navigate(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, Allowed, res.Kind)
	assert.Equal(t, "Login - GSMS", res.Title)

	res, err = newTestNavigator(loggedIn(authz.PermRoleView)).Navigate(context.Background(), "/system")
	require.NoError(t, err)
	assert.Equal(t, "/users", res.Path)
	assert.Equal(t, RedirectForbidden, res.Kind, "the redirect target is guarded on its own permissions")
}

func TestNavigateUnknownPathIsPublic(t *testing.T) {
	res, err := newTestNavigator(anonymous()).Navigate(context.Background(), "/gantt/1")
	require.NoError(t, err)
	assert.Equal(t, RouteNotFound, res.Route.Name)
	assert.Equal(t, Allowed, res.Kind)
	assert.Equal(t, "404 - GSMS", res.Title)
}

func TestNavigateRedirectLoop(t *testing.T) {
	table, err := NewTable([]Route{
		{Name: "A", Path: "/a", Redirect: "/b"},
		{Name: "B", Path: "/b", Redirect: "/a"},
	}, NotFoundRoute())
	require.NoError(t, err)

	nav := NewNavigator(table, newTestGuard(anonymous()), WithNavigatorLogger(log.Discard()))
	_, err = nav.Navigate(context.Background(), "/a")
	assert.Error(t, err)
}

func TestNavigateInvalidPath(t *testing.T) {
	_, err := newTestNavigator(anonymous()).Navigate(context.Background(), "/%zz")
	assert.Error(t, err)
}

func TestNavigateRecordsMetrics(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	nav := newTestNavigator(anonymous(), WithDecisionObserver(m))

	for _, p := range []string{"/projects", "/tasks", "/login"} {
		_, err := nav.Navigate(context.Background(), p)
		require.NoError(t, err)
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NavigationDecisions.WithLabelValues(RouteProjects, "redirect_login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NavigationDecisions.WithLabelValues(RouteTasks, "redirect_login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NavigationDecisions.WithLabelValues(RouteLogin, "allowed")))
}
