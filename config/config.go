// Package config provides configuration for all Handoff services.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	uploadsDir = "uploads"
	dbFileName = "handoff.db"
)

// EnvProvider abstracts environment variable access for testing
type EnvProvider interface {
	Getenv(key string) string
	UserHomeDir() (string, error)
}

// DefaultEnvProvider implements EnvProvider using real OS functions
type DefaultEnvProvider struct{}

func (p *DefaultEnvProvider) Getenv(key string) string {
	return os.Getenv(key)
}

func (p *DefaultEnvProvider) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// GetDefaultDataDir returns the default Handoff data directory following the
// XDG Base Directory specification
func GetDefaultDataDir() string {
	return getDefaultDataDirWithEnv(&DefaultEnvProvider{})
}

func getDefaultDataDirWithEnv(env EnvProvider) string {
	if xdgDataHome := env.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, "handoff")
	}

	homeDir, _ := env.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "handoff")
}

// Config holds configuration for all services
type Config struct {
	// Core paths
	DataDir      string `yaml:"data_dir"`
	DatabasePath string `yaml:"database_path"`
	UploadsDir   string `yaml:"uploads_dir"`

	// Logging
	LogLevel     string `yaml:"log_level"`
	ColorEnabled bool   `yaml:"color_enabled"`

	// HTTP server
	HTTPHost string `yaml:"http_host"`
	HTTPPort int    `yaml:"http_port"`

	// PublicBaseURL is the externally visible base URL used when building
	// durable file URLs for uploaded blobs
	PublicBaseURL string `yaml:"public_base_url"`

	// MaxUploadSize caps uploaded file size in bytes
	MaxUploadSize int64 `yaml:"max_upload_size"`

	// Encryption
	EncryptionKey string `yaml:"encryption_key"`

	// Realtime notifications
	NotificationsEnabled bool `yaml:"notifications_enabled"`

	env EnvProvider
}

// NewConfig creates a configuration from defaults and environment variables,
// with an optional data directory override (used by the CLI flag).
func NewConfig(cliDataDir string) (*Config, error) {
	return newConfigWithEnv(&DefaultEnvProvider{}, cliDataDir, "")
}

// NewConfigWithEnv creates a configuration with a custom environment provider (for testing)
func NewConfigWithEnv(env EnvProvider, cliDataDir string) (*Config, error) {
	return newConfigWithEnv(env, cliDataDir, "")
}

// NewConfigFromFile creates a configuration that additionally reads a YAML
// config file before applying environment overrides. An empty path falls back
// to config.yaml in the data directory if one exists.
func NewConfigFromFile(configPath string) (*Config, error) {
	return newConfigWithEnv(&DefaultEnvProvider{}, "", configPath)
}

func newConfigWithEnv(env EnvProvider, cliDataDir, configPath string) (*Config, error) {
	c := &Config{env: env}

	c.setDefaults()

	if configPath == "" {
		// Pick up a config file from the data dir when present
		candidate := filepath.Join(c.DataDir, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			configPath = candidate
		}
	}
	if configPath != "" {
		if err := c.loadFromFile(configPath); err != nil {
			return nil, err
		}
	}

	c.loadFromEnv()

	if cliDataDir != "" {
		c.DataDir = cliDataDir
	}

	c.derivePaths()

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}

// setDefaults sets sensible default values
func (c *Config) setDefaults() {
	c.DataDir = getDefaultDataDirWithEnv(c.env)
	c.LogLevel = "info"
	c.ColorEnabled = true
	c.HTTPHost = "127.0.0.1"
	c.HTTPPort = 8080
	c.PublicBaseURL = "http://127.0.0.1:8080"
	c.MaxUploadSize = 100 << 20 // 100 MiB
	c.NotificationsEnabled = true
	// Don't set a default encryption key - it must be provided explicitly
}

// loadFromFile merges values from a YAML config file
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables
func (c *Config) loadFromEnv() {
	if v := c.env.Getenv("HANDOFF_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := c.env.Getenv("HANDOFF_DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := c.env.Getenv("HANDOFF_UPLOADS_DIR"); v != "" {
		c.UploadsDir = v
	}
	if v := c.env.Getenv("HANDOFF_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := c.env.Getenv("HANDOFF_COLOR_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.ColorEnabled = enabled
		}
	}
	if v := c.env.Getenv("HANDOFF_HTTP_HOST"); v != "" {
		c.HTTPHost = v
	}
	if v := c.env.Getenv("HANDOFF_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTPPort = port
		}
	}
	if v := c.env.Getenv("HANDOFF_PUBLIC_BASE_URL"); v != "" {
		c.PublicBaseURL = v
	}
	if v := c.env.Getenv("HANDOFF_MAX_UPLOAD_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.MaxUploadSize = size
		}
	}
	if v := c.env.Getenv("HANDOFF_ENCRYPTION_KEY"); v != "" {
		c.EncryptionKey = v
	}
	if v := c.env.Getenv("HANDOFF_NOTIFICATIONS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.NotificationsEnabled = enabled
		}
	}
}

// derivePaths calculates dependent paths from the base DataDir
func (c *Config) derivePaths() {
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, dbFileName)
	}
	if c.UploadsDir == "" {
		c.UploadsDir = filepath.Join(c.DataDir, uploadsDir)
	}
}

// validate ensures configuration values are valid
func (c *Config) validate() error {
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warning": true, "error": true, "silent": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warning, error or silent)", c.LogLevel)
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d (must be 1-65535)", c.HTTPPort)
	}

	if c.PublicBaseURL == "" {
		return fmt.Errorf("public base URL cannot be empty")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("max upload size must be positive, got: %d", c.MaxUploadSize)
	}

	// Require the encryption key explicitly; client access tokens cannot be
	// stored without it
	if c.EncryptionKey == "" {
		return fmt.Errorf(
			"encryption key is required - set HANDOFF_ENCRYPTION_KEY or add encryption_key to config.yaml in the data directory (%s)",
			c.DataDir,
		)
	}

	return nil
}
