package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/gsms/gsms/internal/errors"
)

func envMap(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func newTestLoader(fs afero.Fs, env map[string]string) *Loader {
	return &Loader{FS: fs, LookupEnv: envMap(env), DotEnv: "/work/.env"}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := newTestLoader(afero.NewMemMapFs(), nil).Load("/home/u/.gsms/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte(`
api:
  base_url: https://gsms.example.com/api
  timeout: 30s
session:
  backend: redis
redis:
  addrs: [redis-a:6379, redis-b:6379]
  db: 2
navigation:
  default_route: /dashboard
`), 0o600))

	cfg, err := newTestLoader(fs, nil).Load("/cfg.yaml")
	require.NoError(t, err)

	assert.Equal(t, "https://gsms.example.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, uint(3), cfg.API.RetryAttempts, "unset keys keep defaults")
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, []string{"redis-a:6379", "redis-b:6379"}, cfg.Redis.Addrs)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "/dashboard", cfg.Navigation.DefaultRoute)
}

func TestLoadPrecedence(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("api:\n  base_url: http://from-file/api\nlogging:\n  level: info\n"), 0o600))
	require.NoError(t, afero.WriteFile(fs, "/work/.env", []byte("GSMS_API_URL=http://from-dotenv/api\nGSMS_LOG_LEVEL=debug\n"), 0o600))

	cfg, err := newTestLoader(fs, map[string]string{EnvAPIURL: "http://from-env/api"}).Load("/cfg.yaml")
	require.NoError(t, err)

	assert.Equal(t, "http://from-env/api", cfg.API.BaseURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadEnvironmentVariables(t *testing.T) {
	cfg, err := newTestLoader(afero.NewMemMapFs(), map[string]string{
		EnvAPITimeout:    "5s",
		EnvAPIRetries:    "1",
		EnvSessionStore:  "memory",
		EnvLenientTokens: "true",
		EnvRedisAddr:     " a:1 , b:2 ,",
		EnvRedisDB:       "4",
		EnvRedisPrefix:   "test:",
		EnvDefaultRoute:  "/tasks",
		EnvLogFormat:     "json",
		EnvLogDir:        "/var/log/gsms",
		EnvOTelEndpoint:  "collector:4318",
	}).Load("/missing.yaml")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, uint(1), cfg.API.RetryAttempts)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.True(t, cfg.Session.LenientTokens)
	assert.Equal(t, []string{"a:1", "b:2"}, cfg.Redis.Addrs)
	assert.Equal(t, 4, cfg.Redis.DB)
	assert.Equal(t, "test:", cfg.Redis.Prefix)
	assert.Equal(t, "/tasks", cfg.Navigation.DefaultRoute)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Logging.EnableFile)
	assert.Equal(t, "/var/log/gsms", cfg.Logging.LogDir)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "collector:4318", cfg.Telemetry.Endpoint)
}

func TestLoadRejectsBadEnvironment(t *testing.T) {
	tests := map[string]string{
		EnvAPITimeout:    "soon",
		EnvAPIRetries:    "-1",
		EnvRedisDB:       "zero",
		EnvLenientTokens: "maybe",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			_, err := newTestLoader(afero.NewMemMapFs(), map[string]string{key: value}).Load("/missing.yaml")
			require.Error(t, err)
			assert.Equal(t, gerrors.ErrCodeConfigInvalid, gerrors.CodeOf(err))
		})
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg.yaml", []byte("api: [unterminated"), 0o600))

	_, err := newTestLoader(fs, nil).Load("/cfg.yaml")
	require.Error(t, err)
	assert.Equal(t, gerrors.ErrCodeConfigUnmarshal, gerrors.CodeOf(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad url", func(c *Config) { c.API.BaseURL = "localhost:8080" }},
		{"zero timeout", func(c *Config) { c.API.Timeout = 0 }},
		{"unknown backend", func(c *Config) { c.Session.Backend = "sqlite" }},
		{"file backend without file", func(c *Config) { c.Session.File = "" }},
		{"redis without addrs", func(c *Config) { c.Session.Backend = BackendRedis; c.Redis.Addrs = nil }},
		{"relative default route", func(c *Config) { c.Navigation.DefaultRoute = "projects" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"bad output format", func(c *Config) { c.Defaults.Format = "csv" }},
		{"bad sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, gerrors.ErrCodeConfigInvalid, gerrors.CodeOf(err))
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.API.BaseURL = "https://gsms.internal/api"
	cfg.API.Timeout = 15 * time.Second

	require.NoError(t, Save(fs, "/home/u/.gsms/config.yaml", cfg))

	info, err := fs.Stat("/home/u/.gsms/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "-rw-------", info.Mode().Perm().String())

	loaded, err := newTestLoader(fs, nil).Load("/home/u/.gsms/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	assert.Equal(t, "/home/tester/.gsms/session.json", ExpandHome("~/.gsms/session.json"))
	assert.Equal(t, "/home/tester", ExpandHome("~"))
	assert.Equal(t, "/etc/gsms.yaml", ExpandHome("/etc/gsms.yaml"))
	assert.Equal(t, "~user/x", ExpandHome("~user/x"))
}
