// Package config provides configuration management for the ChatIntel gateway.
// It covers the HTTP server, the completion provider, prompt processing,
// circuit breaking, rate limiting, metrics and logging.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete gateway configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Provider       ProviderConfig       `yaml:"provider"`
	Processing     ProcessingConfig     `yaml:"processing"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Logging        LoggingConfig        `yaml:"logging"`
}

// ServerConfig holds server-specific configuration for the HTTP server.
type ServerConfig struct {
	// Port specifies the HTTP server port (default: 5000)
	Port int `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body (default: 30s)
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// It must leave room for the provider round trip (default: 60s)
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing the request header's keys and values (default: 1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// ShutdownTimeout specifies how long to wait for in-flight requests
	// before forcing termination (default: 30s)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ProviderConfig describes the text-completion provider the gateway forwards to.
// Credentials are passed explicitly to the provider at construction time.
type ProviderConfig struct {
	// Name specifies the gollm provider (e.g., "openai", "anthropic", "ollama")
	Name string `yaml:"name"`

	// Model is the name of the model to use (e.g., "gpt-4o-mini")
	Model string `yaml:"model"`

	// APIKey is the authentication key for the provider's API.
	// Use environment variables (e.g., ${OPENAI_API_KEY}) instead of literals.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the provider endpoint. Only used by ollama.
	Endpoint string `yaml:"endpoint,omitempty"`

	// MaxTokens caps the completion length (default: 150)
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls sampling randomness (default: 0.7)
	Temperature float64 `yaml:"temperature"`

	// MaxRetries is handed to the provider client. The gateway itself never retries (default: 0)
	MaxRetries int `yaml:"max_retries"`
}

// CircuitBreakerConfig configures the breaker placed in front of the provider.
type CircuitBreakerConfig struct {
	// Enabled turns the breaker on (default: true)
	Enabled bool `yaml:"enabled"`

	// MaxRequests is maximum number of requests allowed to pass through when in half-open state
	MaxRequests uint32 `yaml:"max_requests"`

	// Interval is the cyclic period of the closed state after which failure counts reset
	Interval time.Duration `yaml:"interval"`

	// Timeout is the period of the open state until it becomes half-open
	Timeout time.Duration `yaml:"timeout"`

	// FailureThreshold is the number of consecutive failures needed to trip the circuit
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	// Enabled turns rate limiting on (default: false)
	Enabled bool `yaml:"enabled"`

	// RequestsPerMinute is the sustained rate allowed per client IP
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// Burst is the number of requests a client may issue at once
	Burst int `yaml:"burst"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	// Enabled exposes GET {Path} (default: true)
	Enabled bool `yaml:"enabled"`

	// Path is where the metrics handler is mounted (default: /metrics)
	Path string `yaml:"path"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	// Level sets logging verbosity: debug, info, warn, error
	Level string `yaml:"level"`

	// Format specifies log output format: json or text
	Format string `yaml:"format"`
}

// DefaultConfig returns a configuration that reproduces the gateway's documented
// behaviour: max_tokens 150, temperature 0.7, lenient provider errors.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            5000,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
		},

		Provider: ProviderConfig{
			Name:        "openai",
			Model:       "gpt-4o-mini",
			APIKey:      "",
			MaxTokens:   150,
			Temperature: 0.7,
			MaxRetries:  0,
		},

		Processing: ProcessingConfig{
			StrictProviderErrors: false,
			ResponseFormatting: ResponseFormattingConfig{
				TrimWhitespace: true,
				MaxLength:      0,
			},
		},

		CircuitBreaker: CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         60 * time.Second,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},

		RateLimit: RateLimitConfig{
			Enabled:           false,
			RequestsPerMinute: 60,
			Burst:             10,
		},

		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadFile loads configuration from a YAML file
func LoadFile(filename string) (*Config, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// expandEnvVars resolves ${VAR} and ${VAR:-default} references.
// An unset variable without a default expands to the empty string.
func expandEnvVars(s string) (string, error) {
	if strings.Count(s, "${") > strings.Count(s, "}") {
		return "", fmt.Errorf("unterminated variable reference")
	}

	result := os.Expand(s, func(key string) string {
		if i := strings.Index(key, ":-"); i >= 0 {
			if val := os.Getenv(key[:i]); val != "" {
				return val
			}
			return key[i+2:]
		}
		return os.Getenv(key)
	})

	return result, nil
}

// Load loads configuration from an io.Reader
func Load(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expandedData, err := expandEnvVars(string(data))
	if err != nil {
		return nil, fmt.Errorf("expand environment variables: %w", err)
	}

	// Start with defaults
	config := DefaultConfig()

	// Decode YAML on top of defaults. An empty document keeps the defaults.
	if strings.TrimSpace(expandedData) != "" {
		dec := yaml.NewDecoder(strings.NewReader(expandedData))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 {
		return fmt.Errorf("negative read timeout: %v", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout < 0 {
		return fmt.Errorf("negative write timeout: %v", c.Server.WriteTimeout)
	}
	if c.Server.MaxHeaderBytes < 0 {
		return fmt.Errorf("negative max header bytes: %d", c.Server.MaxHeaderBytes)
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("negative shutdown timeout: %v", c.Server.ShutdownTimeout)
	}

	// Provider validation
	if c.Provider.Name == "" {
		return fmt.Errorf("empty provider name")
	}
	if c.Provider.Model == "" {
		return fmt.Errorf("empty provider model")
	}
	if c.Provider.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive: %d", c.Provider.MaxTokens)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("temperature out of range [0, 2]: %v", c.Provider.Temperature)
	}
	if c.Provider.MaxRetries < 0 {
		return fmt.Errorf("negative max retries: %d", c.Provider.MaxRetries)
	}

	// Processing validation
	if c.Processing.ResponseFormatting.MaxLength < 0 {
		return fmt.Errorf("negative response max length: %d", c.Processing.ResponseFormatting.MaxLength)
	}

	// Circuit breaker validation
	if c.CircuitBreaker.Enabled {
		if c.CircuitBreaker.FailureThreshold == 0 {
			return fmt.Errorf("circuit breaker failure threshold must be positive")
		}
		if c.CircuitBreaker.Timeout < 0 {
			return fmt.Errorf("negative circuit breaker timeout: %v", c.CircuitBreaker.Timeout)
		}
		if c.CircuitBreaker.Interval < 0 {
			return fmt.Errorf("negative circuit breaker interval: %v", c.CircuitBreaker.Interval)
		}
	}

	// Rate limit validation
	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMinute <= 0 {
			return fmt.Errorf("rate limit requests per minute must be positive: %d", c.RateLimit.RequestsPerMinute)
		}
		if c.RateLimit.Burst <= 0 {
			return fmt.Errorf("rate limit burst must be positive: %d", c.RateLimit.Burst)
		}
	}

	// Metrics validation
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics path must start with '/': %q", c.Metrics.Path)
	}

	// Logging validation
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	return nil
}
