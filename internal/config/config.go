// Package config loads gsms settings from ~/.gsms/config.yaml, an optional
// .env file and GSMS_* environment variables, in increasing precedence.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	gerrors "github.com/gsms/gsms/internal/errors"
)

// Session storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Config is the complete gsms configuration.
type Config struct {
	API        APIConfig        `yaml:"api" json:"api"`
	Session    SessionConfig    `yaml:"session" json:"session"`
	Redis      RedisConfig      `yaml:"redis" json:"redis"`
	Navigation NavigationConfig `yaml:"navigation" json:"navigation"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" json:"telemetry"`
	Defaults   CommandDefaults  `yaml:"defaults" json:"defaults"`
}

type APIConfig struct {
	BaseURL       string        `yaml:"base_url" json:"base_url"`
	Timeout       time.Duration `yaml:"timeout" json:"timeout"`
	RetryAttempts uint          `yaml:"retry_attempts" json:"retry_attempts"`
}

type SessionConfig struct {
	Backend string `yaml:"backend" json:"backend"` // memory, file or redis
	File    string `yaml:"file,omitempty" json:"file,omitempty"`
	// LenientTokens keeps tokens the codec cannot read instead of rejecting
	// them.
	LenientTokens bool `yaml:"lenient_tokens,omitempty" json:"lenient_tokens,omitempty"`
}

type RedisConfig struct {
	Addrs    []string `yaml:"addrs,omitempty" json:"addrs,omitempty"`
	Password string   `yaml:"password,omitempty" json:"-"`
	DB       int      `yaml:"db,omitempty" json:"db,omitempty"`
	Prefix   string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

type NavigationConfig struct {
	DefaultRoute string `yaml:"default_route" json:"default_route"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`   // debug, info, warn, error
	Format     string `yaml:"format" json:"format"` // text, json
	EnableFile bool   `yaml:"enable_file,omitempty" json:"enable_file,omitempty"`
	LogDir     string `yaml:"log_dir,omitempty" json:"log_dir,omitempty"`
}

type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Endpoint   string  `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Insecure   bool    `yaml:"insecure,omitempty" json:"insecure,omitempty"`
	SampleRate float64 `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"`
}

type CommandDefaults struct {
	Format  string `yaml:"format" json:"format"` // text, json, yaml
	NoColor bool   `yaml:"no_color,omitempty" json:"no_color,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8080/api",
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
		},
		Session: SessionConfig{
			Backend: BackendFile,
			File:    "~/.gsms/session.json",
		},
		Redis: RedisConfig{
			Addrs:  []string{"localhost:6379"},
			Prefix: "gsms:session:",
		},
		Navigation: NavigationConfig{
			DefaultRoute: "/projects",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			LogDir: "~/.gsms/logs",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
		Defaults: CommandDefaults{
			Format: "text",
		},
	}
}

// Dir returns ~/.gsms.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".gsms"), nil
}

// DefaultPath returns ~/.gsms/config.yaml.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Loader reads configuration through an afero filesystem.
type Loader struct {
	FS afero.Fs
	// LookupEnv reads process environment variables.
	LookupEnv func(key string) (string, bool)
	// DotEnv is the .env file consulted between the YAML file and the
	// process environment. Empty disables it.
	DotEnv string
}

// NewLoader reads the real filesystem and environment.
func NewLoader() *Loader {
	return &Loader{
		FS:        afero.NewOsFs(),
		LookupEnv: os.LookupEnv,
		DotEnv:    ".env",
	}
}

// Load reads path (missing file means defaults), overlays .env and the
// environment, and validates the result.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	data, err := afero.ReadFile(l.FS, path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, gerrors.NewConfigUnmarshalError(path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, gerrors.Wrap(gerrors.ErrCodeConfigInvalid, fmt.Sprintf("failed to read config: %s", path), err)
	}

	dotenv, err := l.readDotEnv()
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if l.LookupEnv != nil {
			if v, ok := l.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) readDotEnv() (map[string]string, error) {
	if l.DotEnv == "" {
		return nil, nil
	}
	data, err := afero.ReadFile(l.FS, l.DotEnv)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(gerrors.ErrCodeConfigInvalid, fmt.Sprintf("failed to read %s", l.DotEnv), err)
	}
	values, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, gerrors.NewConfigUnmarshalError(l.DotEnv, err)
	}
	return values, nil
}

// Environment variables recognised by applyEnv.
const (
	EnvAPIURL        = "GSMS_API_URL"
	EnvAPITimeout    = "GSMS_API_TIMEOUT"
	EnvAPIRetries    = "GSMS_API_RETRIES"
	EnvSessionStore  = "GSMS_SESSION_BACKEND"
	EnvSessionFile   = "GSMS_SESSION_FILE"
	EnvLenientTokens = "GSMS_LENIENT_TOKENS"
	EnvRedisAddr     = "GSMS_REDIS_ADDR"
	EnvRedisPassword = "GSMS_REDIS_PASSWORD"
	EnvRedisDB       = "GSMS_REDIS_DB"
	EnvRedisPrefix   = "GSMS_REDIS_PREFIX"
	EnvDefaultRoute  = "GSMS_DEFAULT_ROUTE"
	EnvLogLevel      = "GSMS_LOG_LEVEL"
	EnvLogFormat     = "GSMS_LOG_FORMAT"
	EnvLogDir        = "GSMS_LOG_DIR"
	EnvOTelEndpoint  = "GSMS_OTEL_ENDPOINT"
)

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var firstErr error
	fail := func(key, value string, err error) {
		if firstErr == nil {
			firstErr = gerrors.Wrap(gerrors.ErrCodeConfigInvalid, fmt.Sprintf("invalid %s=%q", key, value), err)
		}
	}

	str(EnvAPIURL, &cfg.API.BaseURL)
	if v, ok := lookup(EnvAPITimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			fail(EnvAPITimeout, v, err)
		}
		cfg.API.Timeout = d
	}
	if v, ok := lookup(EnvAPIRetries); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			fail(EnvAPIRetries, v, err)
		}
		cfg.API.RetryAttempts = uint(n)
	}

	str(EnvSessionStore, &cfg.Session.Backend)
	str(EnvSessionFile, &cfg.Session.File)
	if v, ok := lookup(EnvLenientTokens); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			fail(EnvLenientTokens, v, err)
		}
		cfg.Session.LenientTokens = b
	}

	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		cfg.Redis.Addrs = splitList(v)
	}
	str(EnvRedisPassword, &cfg.Redis.Password)
	if v, ok := lookup(EnvRedisDB); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(EnvRedisDB, v, err)
		}
		cfg.Redis.DB = n
	}
	str(EnvRedisPrefix, &cfg.Redis.Prefix)

	str(EnvDefaultRoute, &cfg.Navigation.DefaultRoute)

	str(EnvLogLevel, &cfg.Logging.Level)
	str(EnvLogFormat, &cfg.Logging.Format)
	if v, ok := lookup(EnvLogDir); ok && v != "" {
		cfg.Logging.LogDir = v
		cfg.Logging.EnableFile = true
	}

	if v, ok := lookup(EnvOTelEndpoint); ok && v != "" {
		cfg.Telemetry.Endpoint = v
		cfg.Telemetry.Enabled = true
	}

	return firstErr
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var problems []string

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, fmt.Sprintf("api.base_url %q must be an http(s) URL", c.API.BaseURL))
	}
	if c.API.Timeout <= 0 {
		problems = append(problems, "api.timeout must be positive")
	}

	switch c.Session.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Session.File == "" {
			problems = append(problems, "session.file is required for the file backend")
		}
	case BackendRedis:
		if len(c.Redis.Addrs) == 0 {
			problems = append(problems, "redis.addrs is required for the redis backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("session.backend %q must be memory, file or redis", c.Session.Backend))
	}

	if !strings.HasPrefix(c.Navigation.DefaultRoute, "/") {
		problems = append(problems, fmt.Sprintf("navigation.default_route %q must start with /", c.Navigation.DefaultRoute))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level %q must be debug, info, warn or error", c.Logging.Level))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q must be text or json", c.Logging.Format))
	}

	switch c.Defaults.Format {
	case "text", "json", "yaml":
	default:
		problems = append(problems, fmt.Sprintf("defaults.format %q must be text, json or yaml", c.Defaults.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		problems = append(problems, "telemetry.sample_rate must be between 0 and 1")
	}

	if len(problems) == 0 {
		return nil
	}
	return gerrors.New(gerrors.ErrCodeConfigInvalid, "invalid configuration").
		WithSuggestions(problems...)
}

// Save writes cfg to path with owner-only permissions.
func Save(fs afero.Fs, path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return gerrors.Wrap(gerrors.ErrCodeConfigWrite, "failed to marshal config", err)
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeConfigWrite, "failed to create config directory", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return gerrors.Wrap(gerrors.ErrCodeConfigWrite, fmt.Sprintf("failed to write config: %s", path), err)
	}
	return nil
}
