package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the HubSpot exporter
type Config struct {
	// HubSpot API credentials and endpoint
	HubSpot HubSpotConfig `yaml:"hubspot" json:"hubspot"`

	// Transport retry behavior
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Client-side request pacing
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Export pipeline settings
	Export ExportConfig `yaml:"export" json:"export"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HubSpotConfig holds HubSpot-specific configuration
type HubSpotConfig struct {
	AccessToken string `yaml:"access_token" json:"access_token"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	UserAgent   string `yaml:"user_agent" json:"user_agent"`
}

// RetryConfig holds transport retry configuration
type RetryConfig struct {
	MaxRetries     int           `yaml:"max_retries" json:"max_retries"`
	RetryDelay     time.Duration `yaml:"retry_delay" json:"retry_delay"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// RateLimitConfig holds request pacing configuration. A zero
// RequestsPerMinute disables client-side pacing.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// ExportConfig holds settings for the local store and snapshot output
type ExportConfig struct {
	DatabasePath  string `yaml:"database_path" json:"database_path"`
	CheckpointDir string `yaml:"checkpoint_dir" json:"checkpoint_dir"`
	SnapshotDir   string `yaml:"snapshot_dir" json:"snapshot_dir"`

	// Limit caps the number of records per data phase and the number of
	// processed ids per association phase. Zero means no limit. Limited
	// runs never mark a phase complete.
	Limit int `yaml:"limit" json:"limit"`

	// Resources restricts the run to a subset of resource types. Empty
	// means all of them.
	Resources []string `yaml:"resources" json:"resources"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HubSpot: HubSpotConfig{
			BaseURL:   "https://api.hubapi.com",
			UserAgent: "hubexport/1.0",
		},
		Retry: RetryConfig{
			MaxRetries:     5,
			RetryDelay:     5 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 0,
		},
		Export: ExportConfig{
			DatabasePath:  "hubspot_data.db",
			CheckpointDir: "checkpoints",
			SnapshotDir:   "snapshots",
			Limit:         0,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("HUBSPOT_ACCESS_TOKEN"); token != "" {
		c.HubSpot.AccessToken = token
	}
	if baseURL := os.Getenv("HUBEXPORT_BASE_URL"); baseURL != "" {
		c.HubSpot.BaseURL = baseURL
	}
	if dbPath := os.Getenv("HUBEXPORT_DB_PATH"); dbPath != "" {
		c.Export.DatabasePath = dbPath
	}
	if dir := os.Getenv("HUBEXPORT_CHECKPOINT_DIR"); dir != "" {
		c.Export.CheckpointDir = dir
	}
	if dir := os.Getenv("HUBEXPORT_SNAPSHOT_DIR"); dir != "" {
		c.Export.SnapshotDir = dir
	}
	if retries := os.Getenv("HUBEXPORT_MAX_RETRIES"); retries != "" {
		var val int
		fmt.Sscanf(retries, "%d", &val)
		if val > 0 {
			c.Retry.MaxRetries = val
		}
	}
	if rpm := os.Getenv("HUBEXPORT_REQUESTS_PER_MINUTE"); rpm != "" {
		var val int
		fmt.Sscanf(rpm, "%d", &val)
		if val > 0 {
			c.RateLimit.RequestsPerMinute = val
		}
	}
	if logLevel := os.Getenv("HUBEXPORT_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".hubexport.yaml",
		".hubexport.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "hubexport", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "hubexport", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".hubexport.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.HubSpot.AccessToken == "" {
		errs = append(errs, errors.New("HubSpot access token is required"))
	}
	if c.HubSpot.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	}

	if c.Retry.MaxRetries <= 0 {
		errs = append(errs, errors.New("max retries must be positive"))
	}
	if c.Retry.RetryDelay < 0 {
		errs = append(errs, errors.New("retry delay cannot be negative"))
	}
	if c.Retry.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}

	if c.Export.DatabasePath == "" {
		errs = append(errs, errors.New("database path is required"))
	}
	if c.Export.CheckpointDir == "" {
		errs = append(errs, errors.New("checkpoint directory is required"))
	}
	if c.Export.SnapshotDir == "" {
		errs = append(errs, errors.New("snapshot directory is required"))
	}
	if c.Export.Limit < 0 {
		errs = append(errs, errors.New("record limit cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["access-token"].(string); ok && token != "" {
		c.HubSpot.AccessToken = token
	}
	if dbPath, ok := flags["database"].(string); ok && dbPath != "" {
		c.Export.DatabasePath = dbPath
	}
	if dir, ok := flags["checkpoint-dir"].(string); ok && dir != "" {
		c.Export.CheckpointDir = dir
	}
	if dir, ok := flags["snapshot-dir"].(string); ok && dir != "" {
		c.Export.SnapshotDir = dir
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Export.Limit = limit
	}
	if retries, ok := flags["max-retries"].(int); ok && retries > 0 {
		c.Retry.MaxRetries = retries
	}
	if rpm, ok := flags["rate-limit"].(int); ok && rpm > 0 {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if resources, ok := flags["resources"].([]string); ok && len(resources) > 0 {
		c.Export.Resources = resources
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".hubexport.env"))

	// Start with defaults
	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
