// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	APIBaseURL       string        `mapstructure:"api_base_url"`
	APIToken         string        `mapstructure:"api_token"`
	DatabasePath     string        `mapstructure:"database_path"`
	ExportDir        string        `mapstructure:"export_dir"`
	ExportSchedule   string        `mapstructure:"export_schedule"`
	LogPath          string        `mapstructure:"log_path"`
	LogLevel         string        `mapstructure:"log_level"`
	TopEarnersLimit  int           `mapstructure:"top_earners_limit"`
	RefreshInterval  time.Duration `mapstructure:"-"`
	RequestTimeout   time.Duration `mapstructure:"-"`
	HistoryRetention time.Duration `mapstructure:"-"`

	// EnvFile is the .env file that was loaded, if any.
	EnvFile string `mapstructure:"-"`
}

// Default values
const (
	defaultRefreshInterval  = 30 * time.Second
	defaultRequestTimeout   = 15 * time.Second
	defaultHistoryRetention = 90 * 24 * time.Hour
	defaultTopEarnersLimit  = 50
	defaultLogLevel         = "info"

	minRefreshInterval = 5 * time.Second
)

// ErrMissingBaseURL is returned when API_BASE_URL is not set.
var ErrMissingBaseURL = errors.New("API_BASE_URL is required")

// envBindings maps config keys to their environment variables.
var envBindings = map[string]string{
	"api_base_url":      "API_BASE_URL",
	"api_token":         "API_TOKEN",
	"refresh_interval":  "REFRESH_INTERVAL",
	"request_timeout":   "REQUEST_TIMEOUT",
	"history_retention": "HISTORY_RETENTION",
	"database_path":     "DATABASE_PATH",
	"export_dir":        "EXPORT_DIR",
	"export_schedule":   "EXPORT_SCHEDULE",
	"top_earners_limit": "TOP_EARNERS_LIMIT",
	"log_path":          "LOG_PATH",
	"log_level":         "LOG_LEVEL",
}

// Load reads configuration from a .env file, an optional config.yaml and
// environment variables. When envFile is empty the first .env found on the
// search path is used.
func Load(envFile string) (*Config, error) {
	loaded, err := loadEnvFile(envFile, godotenv.Load)
	if err != nil {
		return nil, err
	}

	cfg, err := build(ConfigDir())
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = loaded
	return cfg, nil
}

// Reload re-reads envFile, overriding variables it previously set.
func Reload(envFile string) (*Config, error) {
	loaded, err := loadEnvFile(envFile, godotenv.Overload)
	if err != nil {
		return nil, err
	}

	cfg, err := build(ConfigDir())
	if err != nil {
		return nil, err
	}
	cfg.EnvFile = loaded
	return cfg, nil
}

func loadEnvFile(envFile string, load func(...string) error) (string, error) {
	if envFile != "" {
		if err := load(envFile); err != nil {
			return "", fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		return envFile, nil
	}

	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = load(path)
			return path, nil
		}
	}
	return "", nil
}

// build assembles the configuration from viper defaults, configDir/config.yaml
// and the environment.
func build(configDir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("refresh_interval", defaultRefreshInterval.String())
	v.SetDefault("request_timeout", defaultRequestTimeout.String())
	v.SetDefault("history_retention", defaultHistoryRetention.String())
	v.SetDefault("database_path", filepath.Join(configDir, "history.db"))
	v.SetDefault("export_dir", filepath.Join(configDir, "exports"))
	v.SetDefault("log_path", filepath.Join(configDir, "sgd.log"))
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("top_earners_limit", defaultTopEarnersLimit)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.RefreshInterval = parseDuration(v.GetString("refresh_interval"), defaultRefreshInterval)
	cfg.RequestTimeout = parseDuration(v.GetString("request_timeout"), defaultRequestTimeout)
	cfg.HistoryRetention = parseDuration(v.GetString("history_retention"), defaultHistoryRetention)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates required values and clamps out-of-range ones.
func (c *Config) normalize() error {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.APIBaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an http(s) URL", c.APIBaseURL)
	}

	c.RefreshInterval = max(c.RefreshInterval, minRefreshInterval)
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.TopEarnersLimit <= 0 {
		c.TopEarnersLimit = defaultTopEarnersLimit
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.ExportSchedule = strings.TrimSpace(c.ExportSchedule)
	return nil
}

// ConfigDir returns the directory holding the database, logs and exports.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "spicegold-tui")
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "spicegold-tui", ".env"),
			filepath.Join(home, ".spicegold", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// parseDuration accepts values like "30s", "1m", "500ms" or bare seconds.
func parseDuration(value string, defaultValue time.Duration) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	// Try parsing as seconds if no unit specified
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
