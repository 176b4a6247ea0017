package telemetry

// Config holds configuration for request and command tracing
type Config struct {
	// ServiceName is reported as service.name on every span
	ServiceName string

	// ServiceVersion is the gsms build version
	ServiceVersion string

	// Environment is the deployment environment of the backend being
	// talked to (dev, test, production)
	Environment string

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool

	// Endpoint is the OTLP/HTTP collector endpoint (host:port, optional)
	// If empty, spans are recorded but not exported
	Endpoint string

	// Insecure sends spans over plain HTTP
	Insecure bool

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64
}

// DefaultConfig returns the configuration used when nothing is set.
// Tracing is off for an interactive CLI.
func DefaultConfig() Config {
	return Config{
		ServiceName:    "gsms",
		ServiceVersion: "dev",
		Environment:    "development",
		Enabled:        false,
		SampleRate:     1.0,
	}
}

// CollectorConfig returns a configuration that exports every span to the
// collector at endpoint.
func CollectorConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = endpoint
	return cfg
}
