package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKAPI_DATABASE_URL.
const EnvPrefix = "TASKAPI"

// Deployment environments.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config holds the application configuration
type Config struct {
	// Database connection string (postgres:// or a SQLite path / file: URI)
	DatabaseURL string `mapstructure:"database_url"`

	// Server bind address (host:port)
	ServerAddr string `mapstructure:"server_addr"`

	// Maximum database connection pool size (PostgreSQL only)
	MaxDBConnections int `mapstructure:"max_db_connections"`

	// Enable debug logging
	Debug bool `mapstructure:"debug"`

	// Environment is one of development, test or production.
	Environment string `mapstructure:"environment"`

	// Origins allowed by the CORS policy
	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	Log           LogConfig           `mapstructure:"log"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig configures bearer token verification against the identity
// provider and the local Basic flow.
type AuthConfig struct {
	// Issuer is the expected "iss" claim (e.g. "https://tenant.eu.auth0.com/").
	Issuer string `mapstructure:"issuer"`

	// Algorithms is the allow-list of JWS algorithms. Tokens declaring any other
	// algorithm are rejected before a key is looked up.
	Algorithms []string `mapstructure:"algorithms"`

	// JWKSURI is the identity provider's key set endpoint.
	JWKSURI string `mapstructure:"jwks_uri"`

	// JWKSRequestsPerMinute caps upstream key set fetches.
	JWKSRequestsPerMinute int `mapstructure:"jwks_requests_per_minute"`

	// JWKSTimeout bounds a single key set fetch.
	JWKSTimeout time.Duration `mapstructure:"jwks_timeout"`

	// Cache enables the in-memory signing key cache.
	Cache     bool          `mapstructure:"cache"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
	CacheSize int           `mapstructure:"cache_size"`

	// Leeway is the clock skew tolerated on exp/nbf/iat. Zero by default.
	Leeway time.Duration `mapstructure:"leeway"`

	// TestMode trusts any bearer value as the subject. Refused in production.
	TestMode bool `mapstructure:"test_mode"`

	// LoginRequestsPerMinute throttles /api/auth/login per client IP. Zero disables it.
	LoginRequestsPerMinute int `mapstructure:"login_requests_per_minute"`
}

// BearerEnabled reports whether real bearer verification is configured.
func (a AuthConfig) BearerEnabled() bool {
	return a.Issuer != "" && a.JWKSURI != ""
}

// ObservabilityConfig configures OpenTelemetry export.
type ObservabilityConfig struct {
	// OTLPEndpoint (host:port) enables tracing when set.
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool   `mapstructure:"otlp_insecure"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "")
	v.SetDefault("server_addr", "localhost:8080")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)
	v.SetDefault("environment", EnvDevelopment)
	v.SetDefault("cors_allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.algorithms", []string{"RS256"})
	v.SetDefault("auth.jwks_uri", "")
	v.SetDefault("auth.jwks_requests_per_minute", 5)
	v.SetDefault("auth.jwks_timeout", 5*time.Second)
	v.SetDefault("auth.cache", true)
	v.SetDefault("auth.cache_ttl", 10*time.Minute)
	v.SetDefault("auth.cache_size", 32)
	v.SetDefault("auth.leeway", time.Duration(0))
	v.SetDefault("auth.test_mode", false)
	v.SetDefault("auth.login_requests_per_minute", 20)

	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.otlp_insecure", false)
	v.SetDefault("observability.service_name", "taskapi")
	v.SetDefault("observability.service_version", "dev")
}

// Load reads configuration from the global viper instance: defaults, then an
// optional config file already read by the caller, then TASKAPI_ environment
// variables (nested keys use underscores, e.g. TASKAPI_AUTH_JWKS_URI).
func Load() (*Config, error) {
	v := viper.GetViper()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Debug && cfg.Log.Level == "info" {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required fields and cross-field constraints.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required")
	}

	switch c.Environment {
	case EnvDevelopment, EnvTest, EnvProduction:
	default:
		return fmt.Errorf("environment must be one of %s, %s, %s (got %q)",
			EnvDevelopment, EnvTest, EnvProduction, c.Environment)
	}

	a := c.Auth
	if a.TestMode && c.Environment == EnvProduction {
		return fmt.Errorf("auth.test_mode cannot be enabled in the %s environment", EnvProduction)
	}

	if (a.Issuer == "") != (a.JWKSURI == "") {
		return fmt.Errorf("auth.issuer and auth.jwks_uri must be set together")
	}

	if len(a.Algorithms) == 0 {
		return fmt.Errorf("auth.algorithms must list at least one algorithm")
	}

	if a.JWKSRequestsPerMinute <= 0 {
		return fmt.Errorf("auth.jwks_requests_per_minute must be positive")
	}

	if a.Cache && a.CacheTTL <= 0 {
		return fmt.Errorf("auth.cache_ttl must be positive when auth.cache is enabled")
	}

	if a.Leeway < 0 {
		return fmt.Errorf("auth.leeway cannot be negative")
	}

	return nil
}
