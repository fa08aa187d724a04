package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Services    ServicesConfig
	Gateway     GatewayConfig
	Judge0      Judge0Config
	Mail        MailConfig
	CORS        CORSConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
}

// ServicesConfig holds the base URLs of the downstream services
type ServicesConfig struct {
	ExecutionURL     string
	CommunicationURL string
	SnippetURL       string
	UserURL          string
}

// IdentityForwarding selects how the gateway hands a verified identity to
// services that trust the gateway instead of validating user tokens.
type IdentityForwarding string

const (
	IdentityForwardingRaw    IdentityForwarding = "raw"
	IdentityForwardingSigned IdentityForwarding = "signed"
)

// GatewayConfig holds gateway specific settings
type GatewayConfig struct {
	ProbeTimeout            time.Duration
	ProxyTimeout            time.Duration
	IdentityForwarding      IdentityForwarding
	IdentityAssertionSecret string
}

// Judge0Config holds code execution provider settings
type Judge0Config struct {
	URL     string
	Host    string
	APIKey  string
	Timeout time.Duration
}

// MailConfig holds outbound mail settings
type MailConfig struct {
	APIKey            string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	FromEmail         string
	ContactAdminEmail string
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowOrigins []string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// Default ports of the Kursor services.
const (
	GatewayPort       = "3000"
	ExecutionPort     = "3001"
	CommunicationPort = "3002"
	SnippetPort       = "3003"
	UserPort          = "3004"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:3001",
	"http://localhost:3002",
	"http://localhost:3003",
	"http://localhost:3004",
}

// placeholderMailKey marks the unconfigured value shipped in example env files.
const placeholderMailKey = "your_actual_resend_api_key_here"

// LoadConfig loads configuration from an optional .env file and environment
// variables. defaultPort is used when PORT is not set.
func LoadConfig(defaultPort string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load("../../.env")
	}
	return FromEnv(os.Getenv, defaultPort)
}

// FromEnv builds a Config from a lookup function, without touching .env files.
func FromEnv(getenv func(string) string, defaultPort string) (*Config, error) {
	env := lookup(getenv)

	probeTimeout, err := env.duration("HEALTH_PROBE_TIMEOUT", 3*time.Second)
	if err != nil {
		return nil, err
	}
	proxyTimeout, err := env.duration("PROXY_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	judgeTimeout, err := env.duration("JUDGE0_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	smtpPort, err := env.integer("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}

	config := &Config{
		Environment: env.first("development", "ENVIRONMENT", "NODE_ENV"),
		Server: ServerConfig{
			Port: env.first(defaultPort, "PORT", "SERVER_PORT"),
		},
		Database: DatabaseConfig{
			URL: env.str("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL: env.str("REDIS_URL", ""),
		},
		JWT: JWTConfig{
			Secret: env.str("JWT_SECRET", ""),
		},
		Services: ServicesConfig{
			ExecutionURL:     strings.TrimRight(env.str("EXECUTION_SERVICE_URL", "http://localhost:"+ExecutionPort), "/"),
			CommunicationURL: strings.TrimRight(env.str("COMMUNICATION_SERVICE_URL", "http://localhost:"+CommunicationPort), "/"),
			SnippetURL:       strings.TrimRight(env.str("SNIPPET_SERVICE_URL", "http://localhost:"+SnippetPort), "/"),
			UserURL:          strings.TrimRight(env.str("USER_SERVICE_URL", "http://localhost:"+UserPort), "/"),
		},
		Gateway: GatewayConfig{
			ProbeTimeout:            probeTimeout,
			ProxyTimeout:            proxyTimeout,
			IdentityForwarding:      IdentityForwarding(strings.ToLower(env.str("IDENTITY_FORWARDING", string(IdentityForwardingRaw)))),
			IdentityAssertionSecret: env.str("IDENTITY_ASSERTION_SECRET", ""),
		},
		Judge0: Judge0Config{
			URL:     strings.TrimRight(env.str("JUDGE0_URL", "https://judge0-ce.p.rapidapi.com"), "/"),
			Host:    env.str("JUDGE0_HOST", "judge0-ce.p.rapidapi.com"),
			APIKey:  env.str("RAPIDAPI_KEY", ""),
			Timeout: judgeTimeout,
		},
		Mail: MailConfig{
			APIKey:            env.str("RESEND_API_KEY", ""),
			SMTPHost:          env.str("SMTP_HOST", "smtp.resend.com"),
			SMTPPort:          smtpPort,
			SMTPUsername:      env.str("SMTP_USERNAME", "resend"),
			FromEmail:         env.str("MAIL_FROM", "onboarding@resend.dev"),
			ContactAdminEmail: env.str("CONTACT_ADMIN_EMAIL", ""),
		},
		CORS: CORSConfig{
			AllowOrigins: env.list("CORS_ORIGINS", defaultOrigins),
		},
		Log: LogConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", "json"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// RequireDatabase fails when DATABASE_URL is missing
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

// RequireJWT fails when JWT_SECRET is missing
func (c *Config) RequireJWT() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// MailEnabled reports whether a real mail provider key is configured.
// Without one the communication service runs in demo mode.
func (m MailConfig) MailEnabled() bool {
	return m.APIKey != "" && !strings.Contains(m.APIKey, placeholderMailKey)
}

// validateConfig validates cross-field constraints
func validateConfig(config *Config) error {
	switch config.Gateway.IdentityForwarding {
	case IdentityForwardingRaw:
	case IdentityForwardingSigned:
		if config.Gateway.IdentityAssertionSecret == "" {
			return errors.New("IDENTITY_ASSERTION_SECRET is required when IDENTITY_FORWARDING=signed")
		}
	default:
		return fmt.Errorf("invalid IDENTITY_FORWARDING %q", config.Gateway.IdentityForwarding)
	}

	if config.Gateway.ProbeTimeout <= 0 {
		return errors.New("HEALTH_PROBE_TIMEOUT must be positive")
	}

	return nil
}

type lookup func(string) string

func (l lookup) str(key, def string) string {
	if v := strings.TrimSpace(l(key)); v != "" {
		return v
	}
	return def
}

func (l lookup) first(def string, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(l(key)); v != "" {
			return v
		}
	}
	return def
}

func (l lookup) list(key string, def []string) []string {
	raw := l.str(key, "")
	if raw == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (l lookup) duration(key string, def time.Duration) (time.Duration, error) {
	raw := l.str(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (l lookup) integer(key string, def int) (int, error) {
	raw := l.str(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
