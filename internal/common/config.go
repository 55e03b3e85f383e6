// Package common provides shared utilities for the dashboard server
package common

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the dashboard server
type Config struct {
	Environment string        `toml:"environment"`
	BaseURL     string        `toml:"base_url"` // Public base URL used for auth and checkout redirects
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Auth        AuthConfig    `toml:"auth"`
	Quota       QuotaConfig   `toml:"quota"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig selects and configures the backing database.
type StorageConfig struct {
	Driver      string         `toml:"driver"` // "postgres" or "sqlite"
	AutoMigrate bool           `toml:"auto_migrate"`
	Seed        bool           `toml:"seed"` // Seed the demo ticker tape when the tape is empty
	Postgres    PostgresConfig `toml:"postgres"`
	SQLite      SQLiteConfig   `toml:"sqlite"`
}

// PostgresConfig holds Postgres connection settings. DSN wins over the discrete fields.
type PostgresConfig struct {
	DSN      string `toml:"dsn"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// ConnString returns the DSN, building a key/value one from the discrete fields when unset.
func (c *PostgresConfig) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// SQLiteConfig holds the SQLite database path. ":memory:" keeps everything in process.
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Polygon PolygonConfig `toml:"polygon"`
	Alpaca  AlpacaConfig  `toml:"alpaca"`
	Gemini  GeminiConfig  `toml:"gemini"`
	Stripe  StripeConfig  `toml:"stripe"`
}

// PolygonConfig holds reference-data vendor configuration
type PolygonConfig struct {
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *PolygonConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// AlpacaConfig holds market-data vendor configuration
type AlpacaConfig struct {
	KeyID     string `toml:"key_id"`
	SecretKey string `toml:"secret_key"`
	BaseURL   string `toml:"base_url"` // Empty uses the SDK default data endpoint
	Lookback  string `toml:"lookback"` // Series window, default "168h"
	BarLimit  int    `toml:"bar_limit"`
	Feed      string `toml:"feed"`
}

// GetLookback parses and returns the series lookback window
func (c *AlpacaConfig) GetLookback() time.Duration {
	return parseDuration(c.Lookback, 7*24*time.Hour)
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// StripeConfig holds payments processor configuration
type StripeConfig struct {
	SecretKey     string `toml:"secret_key"`
	PriceID       string `toml:"price_id"`
	WebhookSecret string `toml:"webhook_secret"`
}

// AuthConfig holds hosted auth service and session cookie configuration.
type AuthConfig struct {
	SupabaseURL  string `toml:"supabase_url"`
	AnonKey      string `toml:"anon_key"`
	JWTSecret    string `toml:"jwt_secret"` // When set, access tokens are verified locally
	CookieName   string `toml:"cookie_name"`
	CookieSecure bool   `toml:"cookie_secure"`
	RateLimit    int    `toml:"rate_limit"` // Requests per second to the auth service
	Timeout      string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *AuthConfig) GetTimeout() time.Duration {
	return parseDuration(c.Timeout, 10*time.Second)
}

// QuotaConfig holds the freemium and selection-pipeline settings.
type QuotaConfig struct {
	FreeMonthlyClicks int    `toml:"free_monthly_clicks"`
	DebounceWindow    string `toml:"debounce_window"`
	LookupTimeout     string `toml:"lookup_timeout"`
}

// GetDebounceWindow parses and returns the selection quiescence window
func (c *QuotaConfig) GetDebounceWindow() time.Duration {
	return parseDuration(c.DebounceWindow, 300*time.Millisecond)
}

// GetLookupTimeout parses and returns the per-call timeout for external lookups
func (c *QuotaConfig) GetLookupTimeout() time.Duration {
	return parseDuration(c.LookupTimeout, 10*time.Second)
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Driver:      "sqlite",
			AutoMigrate: true,
			Seed:        true,
			Postgres: PostgresConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Database: "dashboard",
				SSLMode:  "disable",
			},
			SQLite: SQLiteConfig{Path: "data/dashboard.db"},
		},
		Clients: ClientsConfig{
			Polygon: PolygonConfig{Timeout: "10s"},
			Alpaca: AlpacaConfig{
				Lookback: "168h",
				BarLimit: 168,
			},
			Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
		},
		Auth: AuthConfig{
			CookieName: "sb-access-token",
			RateLimit:  10,
			Timeout:    "10s",
		},
		Quota: QuotaConfig{
			FreeMonthlyClicks: 10,
			DebounceWindow:    "300ms",
			LookupTimeout:     "10s",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Outputs:    []string{"console"},
			FilePath:   "./logs/dashboard.log",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// firstEnv returns the first non-empty value among the named variables.
func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DASHBOARD_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("DASHBOARD_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("DASHBOARD_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("DASHBOARD_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := firstEnv("BASE_URL", "NEXT_PUBLIC_BASE_URL"); v != "" {
		config.BaseURL = v
	}

	// A database URL implies the Postgres driver
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Storage.Driver = "postgres"
		config.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("DASHBOARD_STORAGE_DRIVER"); v != "" {
		config.Storage.Driver = strings.ToLower(v)
	}

	// Client credentials
	if v := firstEnv("ALPACA_KEY_ID", "APCA_API_KEY_ID"); v != "" {
		config.Clients.Alpaca.KeyID = v
	}
	if v := firstEnv("ALPACA_SECRET_KEY", "APCA_API_SECRET_KEY"); v != "" {
		config.Clients.Alpaca.SecretKey = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		config.Clients.Polygon.APIKey = v
	}
	if v := firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		config.Clients.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_PRICE_ID"); v != "" {
		config.Clients.Stripe.PriceID = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		config.Clients.Stripe.WebhookSecret = v
	}

	// Auth overrides
	if v := firstEnv("SUPABASE_URL", "NEXT_PUBLIC_SUPABASE_URL"); v != "" {
		config.Auth.SupabaseURL = v
	}
	if v := firstEnv("SUPABASE_ANON_KEY", "NEXT_PUBLIC_SUPABASE_ANON_KEY"); v != "" {
		config.Auth.AnonKey = v
	}
	if v := os.Getenv("SUPABASE_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveBaseURL returns the configured base URL, or derives one from the
// request host: http for localhost, https otherwise.
func (c *Config) ResolveBaseURL(host string) string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	if host == "" {
		return fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	if hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1" {
		return "http://" + host
	}
	return "https://" + host
}

// ValidateRequired returns the names of settings the server needs in
// production but does not have.
func (c *Config) ValidateRequired() []string {
	var missing []string
	if c.Clients.Polygon.APIKey == "" {
		missing = append(missing, "clients.polygon.api_key")
	}
	if c.Clients.Alpaca.KeyID == "" || c.Clients.Alpaca.SecretKey == "" {
		missing = append(missing, "clients.alpaca")
	}
	if c.Clients.Gemini.APIKey == "" {
		missing = append(missing, "clients.gemini.api_key")
	}
	if c.Clients.Stripe.SecretKey == "" {
		missing = append(missing, "clients.stripe.secret_key")
	}
	if c.Clients.Stripe.PriceID == "" {
		missing = append(missing, "clients.stripe.price_id")
	}
	if c.Clients.Stripe.WebhookSecret == "" {
		missing = append(missing, "clients.stripe.webhook_secret")
	}
	if c.Auth.SupabaseURL == "" {
		missing = append(missing, "auth.supabase_url")
	}
	return missing
}
