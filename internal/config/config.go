package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Redis     RedisConfig     `yaml:"redis"`
	Session   SessionConfig   `yaml:"session"`
	Logging   LoggingConfig   `yaml:"logging"`
	Page      PageConfig      `yaml:"page"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// RedisConfig holds the connection used for the cross-request tracking store.
// An empty URL keeps pending tracking commands in process memory.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SessionConfig holds the visitor session cookie settings
type SessionConfig struct {
	CookieName      string `yaml:"cookie_name"`
	CookieMaxAge    int    `yaml:"cookie_max_age"`
	Secure          bool   `yaml:"secure"`
	FlashTTLSeconds int    `yaml:"flash_ttl_seconds"`
}

// FlashTTL returns how long pending tracking commands wait for the next request
func (c SessionConfig) FlashTTL() time.Duration {
	return time.Duration(c.FlashTTLSeconds) * time.Second
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// PageConfig holds the landing page layout. LayoutPath points to a Liquid
// template; the built-in layout is used when empty. CSP adds a nonce to the
// script block and a matching Content-Security-Policy header.
type PageConfig struct {
	Title      string `yaml:"title"`
	LayoutPath string `yaml:"layout_path"`
	CSP        bool   `yaml:"csp"`
}

// AnalyticsConfig selects the analytics provider and carries its options.
type AnalyticsConfig struct {
	Provider           string                 `yaml:"provider"` // "GoogleAnalytics" or "NoAnalytics"
	DisableScriptBlock bool                   `yaml:"disable_script_block"`
	Configurations     ProviderConfigurations `yaml:"configurations"`
}

// ProviderConfigurations holds the per provider option blocks
type ProviderConfigurations struct {
	GoogleAnalytics GoogleAnalyticsConfig `yaml:"GoogleAnalytics"`
}

// GoogleAnalyticsConfig holds the analytics.js tracker options
type GoogleAnalyticsConfig struct {
	TrackingID      string `yaml:"tracking_id"`     // UA-XXXXXXXX-1, required
	OptimizeID      string `yaml:"optimize_id"`     // GTM-XXXXXX
	TrackingDomain  string `yaml:"tracking_domain"` // defaults to "auto"
	TrackerName     string `yaml:"tracker_name"`    // defaults to "t0"
	DisplayFeatures bool   `yaml:"display_features"`
	AnonymizeIP     bool   `yaml:"anonymize_ip"`
	AutoTrack       bool   `yaml:"auto_track"`
	Debug           bool   `yaml:"debug"`
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8081
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "analytics:"
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "analytics_session"
	}
	if cfg.Session.CookieMaxAge == 0 {
		cfg.Session.CookieMaxAge = 30 * 24 * 3600
	}
	if cfg.Session.FlashTTLSeconds == 0 {
		cfg.Session.FlashTTLSeconds = 300
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Page.Title == "" {
		cfg.Page.Title = "Analytics"
	}
	if cfg.Analytics.Provider == "" {
		cfg.Analytics.Provider = "NoAnalytics"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so the tracking id can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Analytics overrides
	if v := os.Getenv("ANALYTICS_PROVIDER"); v != "" {
		cfg.Analytics.Provider = v
	}
	if v := os.Getenv("ANALYTICS_TRACKING_ID"); v != "" {
		cfg.Analytics.Configurations.GoogleAnalytics.TrackingID = v
	}
	if v := os.Getenv("ANALYTICS_OPTIMIZE_ID"); v != "" {
		cfg.Analytics.Configurations.GoogleAnalytics.OptimizeID = v
	}
	if v := os.Getenv("ANALYTICS_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Configurations.GoogleAnalytics.Debug = b
		}
	}
	if v := os.Getenv("ANALYTICS_DISABLE_SCRIPT_BLOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.DisableScriptBlock = b
		}
	}

	return cfg, nil
}
