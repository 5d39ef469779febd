package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "POPCORN"

// Config holds all application configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Browse  BrowseConfig  `mapstructure:"browse"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CatalogConfig holds catalog API configuration.
type CatalogConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	ImageBaseURL string        `mapstructure:"image_base_url"`
	WebURL       string        `mapstructure:"web_url"` // movie pages opened with the o key
	APIKey       string        `mapstructure:"api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst        int           `mapstructure:"burst"`
}

// BrowseConfig holds infinite-scroll behaviour.
type BrowseConfig struct {
	DefaultCategory     string  `mapstructure:"default_category"`
	SentinelIndex       int     `mapstructure:"sentinel_index"`       // item within a page that triggers the next fetch
	VisibilityThreshold float64 `mapstructure:"visibility_threshold"` // 0..1
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Dir     string        `mapstructure:"dir"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// UIConfig holds UI configuration.
type UIConfig struct {
	GridColumns int      `mapstructure:"grid_columns"`
	OpenCommand string   `mapstructure:"open_command"` // empty uses the system default
	OpenArgs    []string `mapstructure:"open_args"`
}

// MetricsConfig holds the optional Prometheus listener.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the listener
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p",
			WebURL:       "https://www.themoviedb.org",
			Timeout:      15 * time.Second,
			RateLimit:    20,
			Burst:        5,
		},
		Browse: BrowseConfig{
			DefaultCategory:     "popular",
			SentinelIndex:       19,
			VisibilityThreshold: 0.5,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     defaultCachePath(),
			TTL:     6 * time.Hour,
		},
		UI: UIConfig{
			GridColumns: 4,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS.
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "popcorn", "popcorn.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "popcorn", "popcorn.log")
	}
}

// DefaultConfigDir returns the default config directory for the current OS.
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "popcorn")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "popcorn")
	}
}

// defaultCachePath returns the default cache directory path for the current OS.
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "popcorn", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "popcorn", "cache")
	}
}

// newViper returns a viper instance with defaults and env overrides bound.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("catalog.base_url", d.Catalog.BaseURL)
	v.SetDefault("catalog.image_base_url", d.Catalog.ImageBaseURL)
	v.SetDefault("catalog.web_url", d.Catalog.WebURL)
	v.SetDefault("catalog.api_key", d.Catalog.APIKey)
	v.SetDefault("catalog.timeout", d.Catalog.Timeout)
	v.SetDefault("catalog.rate_limit", d.Catalog.RateLimit)
	v.SetDefault("catalog.burst", d.Catalog.Burst)
	v.SetDefault("browse.default_category", d.Browse.DefaultCategory)
	v.SetDefault("browse.sentinel_index", d.Browse.SentinelIndex)
	v.SetDefault("browse.visibility_threshold", d.Browse.VisibilityThreshold)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("ui.grid_columns", d.UI.GridColumns)
	v.SetDefault("ui.open_command", d.UI.OpenCommand)
	v.SetDefault("ui.open_args", d.UI.OpenArgs)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)

	// POPCORN_CATALOG_API_KEY overrides catalog.api_key
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig loads configuration from file and environment.
// An empty path searches the default config dir and the working directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML. An empty path writes config.yaml in the
// default config dir.
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = filepath.Join(DefaultConfigDir(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("catalog.base_url", cfg.Catalog.BaseURL)
	v.Set("catalog.image_base_url", cfg.Catalog.ImageBaseURL)
	v.Set("catalog.web_url", cfg.Catalog.WebURL)
	v.Set("catalog.api_key", cfg.Catalog.APIKey)
	v.Set("catalog.timeout", cfg.Catalog.Timeout.String())
	v.Set("catalog.rate_limit", cfg.Catalog.RateLimit)
	v.Set("catalog.burst", cfg.Catalog.Burst)

	v.Set("browse.default_category", cfg.Browse.DefaultCategory)
	v.Set("browse.sentinel_index", cfg.Browse.SentinelIndex)
	v.Set("browse.visibility_threshold", cfg.Browse.VisibilityThreshold)

	v.Set("cache.enabled", cfg.Cache.Enabled)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.ttl", cfg.Cache.TTL.String())

	v.Set("ui.grid_columns", cfg.UI.GridColumns)
	v.Set("ui.open_command", cfg.UI.OpenCommand)
	v.Set("ui.open_args", cfg.UI.OpenArgs)
	v.Set("metrics.addr", cfg.Metrics.Addr)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// IsConfigured returns true if an API key is set.
func (c *Config) IsConfigured() bool {
	return c.Catalog.APIKey != ""
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	if c.Catalog.BaseURL == "" {
		return fmt.Errorf("catalog.base_url is required")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("invalid catalog.timeout: %s (must be positive)", c.Catalog.Timeout)
	}
	if c.Catalog.RateLimit < 0 {
		return fmt.Errorf("invalid catalog.rate_limit: %v (must not be negative)", c.Catalog.RateLimit)
	}
	if c.Browse.SentinelIndex < 0 {
		return fmt.Errorf("invalid browse.sentinel_index: %d (must not be negative)", c.Browse.SentinelIndex)
	}
	if c.Browse.VisibilityThreshold <= 0 || c.Browse.VisibilityThreshold > 1 {
		return fmt.Errorf("invalid browse.visibility_threshold: %v (must be in (0, 1])", c.Browse.VisibilityThreshold)
	}
	if c.UI.GridColumns < 1 {
		return fmt.Errorf("invalid ui.grid_columns: %d (must be at least 1)", c.UI.GridColumns)
	}
	return nil
}

// CachePath returns the cache directory, or "" when caching is disabled.
func (c *Config) CachePath() string {
	if !c.Cache.Enabled {
		return ""
	}
	return c.Cache.Dir
}
