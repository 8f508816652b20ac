package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is where the assistant API listens in local development
const DefaultAPIBaseURL = "http://localhost:8000/api"

type ServerConfig struct {
	Port            int    `toml:"port"`
	DataDir         string `toml:"data_dir"`
	LogLevel        string `toml:"log_level"`
	ReloadTemplates bool   `toml:"reload_templates"`
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"` // 0 leaves requests without a deadline
}

type SessionConfig struct {
	ExpirationHours int  `toml:"expiration_hours"`
	CookieSecure    bool `toml:"cookie_secure"`
}

type RateLimitConfig struct {
	Requests      int `toml:"requests"`
	WindowSeconds int `toml:"window_seconds"`
}

type StreamConfig struct {
	Secret           string `toml:"secret"` // signs WebSocket tickets
	TicketTTLMinutes int    `toml:"ticket_ttl_minutes"`
}

type AvatarConfig struct {
	AllowedHosts []string `toml:"allowed_hosts"`
	Size         uint     `toml:"size"`
	CacheHours   int      `toml:"cache_hours"`
}

type UploadConfig struct {
	MaxBytes int `toml:"max_bytes"`
}

type Config struct {
	Server    ServerConfig    `toml:"server"`
	API       APIConfig       `toml:"api"`
	Session   SessionConfig   `toml:"session"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	Stream    StreamConfig    `toml:"stream"`
	Avatars   AvatarConfig    `toml:"avatars"`
	Upload    UploadConfig    `toml:"upload"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	var config Config

	config.Server.Port = 3000
	config.Server.DataDir = "./data"
	config.Server.LogLevel = "info"

	config.API.BaseURL = DefaultAPIBaseURL

	config.Session.ExpirationHours = 24

	config.RateLimit.Requests = 100
	config.RateLimit.WindowSeconds = 60

	config.Stream.TicketTTLMinutes = 60

	config.Avatars.AllowedHosts = []string{"i.pravatar.cc"}
	config.Avatars.Size = 96
	config.Avatars.CacheHours = 24

	config.Upload.MaxBytes = 5 << 20

	return &config
}

// LoadConfig reads a TOML file over the defaults, then applies environment
// overrides (a .env file next to the binary is honored). A missing file is
// not an error.
func LoadConfig(filepath string) (*Config, error) {
	config := Default()

	if _, err := toml.DecodeFile(filepath, config); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath, err)
	}

	_ = godotenv.Load()
	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ZENBOX_API_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("ZENBOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ZENBOX_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("ZENBOX_STREAM_SECRET"); v != "" {
		c.Stream.Secret = v
	}
	if v := os.Getenv("ZENBOX_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	return nil
}

// Validate checks the values the server cannot start without
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit requests and window_seconds must be positive")
	}
	return nil
}

// APITimeout returns the per-request deadline for backend calls, zero for none
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) SessionExpiration() time.Duration {
	return time.Duration(c.Session.ExpirationHours) * time.Hour
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

func (c *Config) TicketTTL() time.Duration {
	return time.Duration(c.Stream.TicketTTLMinutes) * time.Minute
}

func (c *Config) AvatarCacheTTL() time.Duration {
	return time.Duration(c.Avatars.CacheHours) * time.Hour
}
