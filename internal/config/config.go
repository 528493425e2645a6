// ABOUTME: Configuration loading and parsing for capability-hub
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Session backends
const (
	SessionBackendMemory = "memory"
	SessionBackendSQLite = "sqlite"
)

// Defaults applied when a field is left empty
const (
	DefaultHTTPAddr        = "0.0.0.0:8000"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultLoginPerMinute  = 30
	DefaultLoginBurst      = 10
	DefaultServiceName     = "capability-hub"
)

// Config represents the complete capability-hub configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Tailscale   TailscaleConfig   `yaml:"tailscale" toml:"tailscale"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials"`
	Catalog     CatalogConfig     `yaml:"catalog" toml:"catalog"`
	Sessions    SessionsConfig    `yaml:"sessions" toml:"sessions"`
	CORS        CORSConfig        `yaml:"cors" toml:"cors"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit" toml:"ratelimit"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" toml:"telemetry"`
}

// ServerConfig holds the HTTP listener configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr" toml:"http_addr"`
	ReadTimeout     time.Duration `yaml:"-" toml:"-"`
	WriteTimeout    time.Duration `yaml:"-" toml:"-"`
	ShutdownTimeout time.Duration `yaml:"-" toml:"-"`

	// Raw string values for unmarshaling
	ReadTimeoutRaw     string `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeoutRaw    string `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeoutRaw string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

// TailscaleConfig holds Tailscale tsnet configuration
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled" toml:"enabled"`
	Hostname  string `yaml:"hostname" toml:"hostname"`
	AuthKey   string `yaml:"auth_key" toml:"auth_key"`
	StateDir  string `yaml:"state_dir" toml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral" toml:"ephemeral"`
	HTTPS     bool   `yaml:"https" toml:"https"`   // serve :443 with tailnet certs
	Funnel    bool   `yaml:"funnel" toml:"funnel"` // public Funnel (implies HTTPS)
}

// CredentialsConfig points at the practice lead record file
type CredentialsConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// CatalogConfig optionally overrides the built-in capability seed
type CatalogConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// SessionsConfig selects the session backend and cookie attributes
type SessionsConfig struct {
	Backend        string `yaml:"backend" toml:"backend"`
	Path           string `yaml:"path" toml:"path"`
	CookieSecure   bool   `yaml:"cookie_secure" toml:"cookie_secure"`
	CookieSameSite string `yaml:"cookie_same_site" toml:"cookie_same_site"` // "", lax, strict, none
}

// CORSConfig holds cross-origin policy. A "*" entry allows any origin with credentials.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

// RateLimitConfig bounds login attempts per client IP
type RateLimitConfig struct {
	LoginPerMinute int `yaml:"login_per_minute" toml:"login_per_minute"`
	LoginBurst     int `yaml:"login_burst" toml:"login_burst"`

	// TrustForwardedFor keys clients on X-Forwarded-For. Only enable behind a proxy that sets it.
	TrustForwardedFor bool `yaml:"trust_forwarded_for" toml:"trust_forwarded_for"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// TelemetryConfig holds OpenTelemetry exporter configuration
type TelemetryConfig struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" toml:"otlp_endpoint"`
	Insecure     bool   `yaml:"insecure" toml:"insecure"`
	ServiceName  string `yaml:"service_name" toml:"service_name"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded before decoding.
// Relative credential, catalog and session paths are resolved against the config directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := Parse(path, data)
	if err != nil {
		return nil, err
	}

	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Parse decodes raw configuration bytes. The name is only used to pick the decoder.
func Parse(name string, data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if strings.EqualFold(filepath.Ext(name), ".toml") {
		if _, err := toml.Decode(expanded, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

func (c *Config) applyDefaults() {
	if c.Server.HTTPAddr == "" && !c.Tailscale.Enabled {
		c.Server.HTTPAddr = DefaultHTTPAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Sessions.Backend == "" {
		c.Sessions.Backend = SessionBackendMemory
	}
	// Cross-origin requests with credentials are open unless configured otherwise.
	if c.CORS.AllowedOrigins == nil {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if c.RateLimit.LoginPerMinute == 0 {
		c.RateLimit.LoginPerMinute = DefaultLoginPerMinute
	}
	if c.RateLimit.LoginBurst == 0 {
		c.RateLimit.LoginBurst = DefaultLoginBurst
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = DefaultServiceName
	}
}

func (c *Config) resolvePaths(baseDir string) {
	c.Credentials.Path = resolvePath(baseDir, c.Credentials.Path)
	c.Catalog.Path = resolvePath(baseDir, c.Catalog.Path)
	c.Sessions.Path = resolvePath(baseDir, c.Sessions.Path)
}

func resolvePath(baseDir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled && c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required (or enable tailscale)")
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Credentials.Path == "" {
		return fmt.Errorf("credentials.path is required")
	}

	switch c.Sessions.Backend {
	case SessionBackendMemory:
	case SessionBackendSQLite:
		if c.Sessions.Path == "" {
			return fmt.Errorf("sessions.path is required when sessions.backend is %q", SessionBackendSQLite)
		}
	default:
		return fmt.Errorf("sessions.backend must be %q or %q, got %q", SessionBackendMemory, SessionBackendSQLite, c.Sessions.Backend)
	}

	switch strings.ToLower(c.Sessions.CookieSameSite) {
	case "", "lax", "strict", "none":
	default:
		return fmt.Errorf("sessions.cookie_same_site must be one of lax, strict, none, got %q", c.Sessions.CookieSameSite)
	}

	if c.RateLimit.LoginPerMinute < 0 || c.RateLimit.LoginBurst < 0 {
		return fmt.Errorf("ratelimit values must not be negative")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"read_timeout", cfg.Server.ReadTimeoutRaw, &cfg.Server.ReadTimeout},
		{"write_timeout", cfg.Server.WriteTimeoutRaw, &cfg.Server.WriteTimeout},
		{"shutdown_timeout", cfg.Server.ShutdownTimeoutRaw, &cfg.Server.ShutdownTimeout},
	}

	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", f.name, f.raw, err)
		}
		*f.dst = d
	}

	return nil
}
