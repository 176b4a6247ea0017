// Package app assembles the gsms runtime from configuration: logger,
// session storage, API client, session, metrics and navigator.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/gsms/gsms/internal/api"
	"github.com/gsms/gsms/internal/auth"
	"github.com/gsms/gsms/internal/config"
	gerrors "github.com/gsms/gsms/internal/errors"
	"github.com/gsms/gsms/internal/log"
	"github.com/gsms/gsms/internal/metrics"
	"github.com/gsms/gsms/internal/nav"
	"github.com/gsms/gsms/internal/telemetry"
	"github.com/gsms/gsms/internal/version"
)

// Session events recorded in metrics.
const (
	EventLogin        = "login"
	EventLogout       = "logout"
	EventRestore      = "restore"
	EventUnauthorized = "unauthorized"
)

// App is one wired gsms client.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Storage   auth.Storage
	Session   *auth.Session
	Client    *api.Client
	Navigator *nav.Navigator

	closers []func(context.Context) error
}

type options struct {
	fs         afero.Fs
	storage    auth.Storage
	logger     *log.Logger
	httpClient *http.Client
}

// Option overrides a dependency New would otherwise build from config.
type Option func(*options)

// WithFs sets the filesystem used by file session storage.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithStorage replaces the configured session storage backend.
func WithStorage(s auth.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithLogger replaces the configured logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds an App. The session is empty until Start restores it.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(o)
	}

	a := &App{Config: cfg}

	a.Logger = o.logger
	if a.Logger == nil {
		a.Logger = newLogger(cfg.Logging)
		a.closers = append(a.closers, func(context.Context) error { return a.Logger.Close() })
	}

	shutdown, err := telemetry.InitProvider(ctx, telemetry.Config{
		ServiceName:    "gsms",
		ServiceVersion: version.GetInfo().Short(),
		Environment:    "cli",
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		a.Logger.Warn("tracing disabled", "error", err.Error())
	} else {
		a.closers = append(a.closers, shutdown)
	}

	a.Registry, a.Metrics = metrics.NewRegistry()

	a.Storage = o.storage
	if a.Storage == nil {
		storage, closer, err := newStorage(cfg, o.fs)
		if err != nil {
			return nil, err
		}
		a.Storage = storage
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	clientOpts := []api.Option{
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetryAttempts(cfg.API.RetryAttempts),
		api.WithLogger(a.Logger),
		api.WithRequestObserver(a.Metrics),
		api.WithUserAgent("gsms/" + version.GetInfo().Short()),
		api.WithUnauthorizedHandler(a.handleUnauthorized),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, api.WithHTTPClient(o.httpClient))
	}
	a.Client = api.New(cfg.API.BaseURL, clientOpts...)

	sessionOpts := []auth.SessionOption{
		auth.WithFetcher(a.Client),
		auth.WithFetchObserver(a.Metrics),
		auth.WithLogger(a.Logger),
	}
	if cfg.Session.LenientTokens {
		sessionOpts = append(sessionOpts, auth.WithLenientTokens())
	}
	a.Session = auth.NewSession(a.Storage, sessionOpts...)

	// The client reads the bearer token from the session it feeds.
	api.WithTokenSource(a.Session)(a.Client)

	guard := nav.NewGuard(a.Session,
		nav.WithDefaultPath(cfg.Navigation.DefaultRoute),
		nav.WithGuardLogger(a.Logger),
	)
	a.Navigator = nav.NewNavigator(nav.DefaultTable(), guard,
		nav.WithDecisionObserver(a.Metrics),
		nav.WithNavigatorLogger(a.Logger),
	)

	return a, nil
}

func newLogger(cfg config.LoggingConfig) *log.Logger {
	lc := log.DefaultConfig()
	lc.Level = log.ParseLevel(cfg.Level)
	lc.Format = log.ParseFormat(cfg.Format)
	lc.ServiceVersion = version.GetInfo().Short()
	if cfg.EnableFile && cfg.LogDir != "" {
		lc.Output = log.RotatingFile(log.FileOptions{Dir: config.ExpandHome(cfg.LogDir)})
		lc.Format = log.FormatJSON
	}
	return log.New(lc)
}

func newStorage(cfg *config.Config, fs afero.Fs) (auth.Storage, func(context.Context) error, error) {
	switch cfg.Session.Backend {
	case config.BackendMemory:
		return auth.NewMemoryStorage(), nil, nil
	case config.BackendFile:
		return auth.NewFileStorage(fs, config.ExpandHome(cfg.Session.File)), nil, nil
	case config.BackendRedis:
		client := auth.NewRedisClient(cfg.Redis.Addrs, cfg.Redis.Password, cfg.Redis.DB)
		storage := auth.NewRedisStorage(client, cfg.Redis.Prefix)
		return storage, func(context.Context) error { return closeRedis(storage) }, nil
	default:
		return nil, nil, gerrors.New(gerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown session backend %q", cfg.Session.Backend))
	}
}

func closeRedis(s *auth.RedisStorage) error {
	if err := s.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}

// handleUnauthorized drops the session after the backend rejected its
// token.
func (a *App) handleUnauthorized(ctx context.Context) {
	if !a.Session.IsAuthenticated() {
		return
	}
	a.Logger.WarnContext(ctx, "backend rejected the session token, logging out")
	a.Metrics.RecordSessionEvent(EventUnauthorized)
	if err := a.Session.ClearAuth(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "failed to clear session", "error", err.Error())
	}
}

// Start restores a persisted session and, when one is found, loads its
// permissions and roles. Fetch failures leave the session authenticated
// with empty permissions and are only logged.
func (a *App) Start(ctx context.Context) error {
	if err := a.Session.RestoreAuth(ctx); err != nil {
		return err
	}
	if !a.Session.IsAuthenticated() {
		return nil
	}
	a.Metrics.RecordSessionEvent(EventRestore)
	if err := a.Session.RefreshAuth(ctx); err != nil {
		a.Logger.WarnContext(ctx, "failed to refresh permissions", "error", err.Error())
	}
	return nil
}

// Login authenticates against the backend, installs the token and loads
// permissions and roles.
func (a *App) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	resp, err := a.Client.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		a.Metrics.RecordError(string(gerrors.ErrCodeLoginFailed), "app")
		return nil, gerrors.NewLoginFailedError(username, err)
	}

	name := username
	if resp.UserInfo != nil && resp.UserInfo.Username != "" {
		name = resp.UserInfo.Username
	}
	if err := a.Session.SetAuth(ctx, resp.Token, name); err != nil {
		if auth.HasCode(err, auth.ErrTokenMalformed) {
			return nil, gerrors.NewTokenMalformedError(err)
		}
		return nil, err
	}
	a.Metrics.RecordSessionEvent(EventLogin)

	if err := a.Session.RefreshAuth(ctx); err != nil {
		a.Logger.WarnContext(ctx, "logged in without permissions", "error", err.Error())
	}
	return resp, nil
}

// Logout clears the session locally. The backend keeps no session state.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Session.ClearAuth(ctx); err != nil {
		return err
	}
	a.Metrics.RecordSessionEvent(EventLogout)
	return nil
}

// Open navigates to path and turns a redirect into an error, so commands
// backed by a screen fail the same way the screen would be refused.
func (a *App) Open(ctx context.Context, path string) (nav.Result, error) {
	res, err := a.Navigator.Navigate(ctx, path)
	if err != nil {
		return res, err
	}
	switch res.Kind {
	case nav.Allowed:
		return res, nil
	case nav.RedirectLogin:
		return res, gerrors.NewNavLoginRequiredError(res.Path)
	case nav.RedirectForbidden:
		return res, gerrors.NewNavForbiddenError(res.Path, res.Required)
	default:
		return res, gerrors.New(gerrors.ErrCodeNavUnknownRoute,
			fmt.Sprintf("%s is not available in this session, continue at %s", res.Path, res.Location))
	}
}

// Close releases storage connections, flushes traces and closes log files.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
