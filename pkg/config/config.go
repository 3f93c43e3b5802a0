package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Persistence strategy names accepted in OutputConfig.Strategy
const (
	StrategyReplace = "replace"
	StrategyMerge   = "merge"
)

// Config holds all configuration options for the Bluesky scraper
type Config struct {
	// Bluesky credentials and endpoint
	Bluesky BlueskyConfig `yaml:"bluesky" json:"bluesky"`

	// Default search filters
	Search SearchConfig `yaml:"search" json:"search"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Post link validation
	Validation ValidationConfig `yaml:"validation" json:"validation"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BlueskyConfig holds Bluesky-specific configuration
type BlueskyConfig struct {
	Handle      string        `yaml:"handle" json:"handle"`
	AppPassword string        `yaml:"app_password" json:"app_password"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// SearchConfig holds defaults applied to every search
type SearchConfig struct {
	Sort string `yaml:"sort" json:"sort"`
	Lang string `yaml:"lang" json:"lang"`
	// Limit is the page size requested from the API (1-100)
	Limit int `yaml:"limit" json:"limit"`
	// MaxPages bounds pagination; 0 means follow the cursor until exhausted
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
	Strategy  string `yaml:"strategy" json:"strategy"`
	Notify    bool   `yaml:"notify" json:"notify"`
}

// ValidationConfig controls checking post links against the removed-post template
type ValidationConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled"`
	// TemplatePath overrides the built-in no-content page when set
	TemplatePath      string        `yaml:"template_path" json:"template_path"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Bluesky: BlueskyConfig{
			BaseURL: "https://bsky.social",
			Timeout: 10 * time.Second,
		},
		Search: SearchConfig{
			Limit:    25,
			MaxPages: 0,
		},
		Output: OutputConfig{
			Directory: "Scraped Posts",
			Strategy:  StrategyReplace,
		},
		Validation: ValidationConfig{
			Enabled:           false,
			Timeout:           10 * time.Second,
			RequestsPerMinute: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Credentials use the names the Bluesky tooling already documents
	if handle := os.Getenv("BLUESKY_HANDLE"); handle != "" {
		c.Bluesky.Handle = handle
	}
	if password := os.Getenv("BLUESKY_APP_PASSWORD"); password != "" {
		c.Bluesky.AppPassword = password
	}
	if baseURL := os.Getenv("BSKYSCRAPER_BASE_URL"); baseURL != "" {
		c.Bluesky.BaseURL = baseURL
	}
	if timeout := os.Getenv("BSKYSCRAPER_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid BSKYSCRAPER_TIMEOUT: %w", err)
		}
		c.Bluesky.Timeout = d
	}

	if limit := os.Getenv("BSKYSCRAPER_LIMIT"); limit != "" {
		val, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("invalid BSKYSCRAPER_LIMIT: %w", err)
		}
		c.Search.Limit = val
	}
	if maxPages := os.Getenv("BSKYSCRAPER_MAX_PAGES"); maxPages != "" {
		val, err := strconv.Atoi(maxPages)
		if err != nil {
			return fmt.Errorf("invalid BSKYSCRAPER_MAX_PAGES: %w", err)
		}
		c.Search.MaxPages = val
	}

	if outputDir := os.Getenv("BSKYSCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if strategy := os.Getenv("BSKYSCRAPER_STRATEGY"); strategy != "" {
		c.Output.Strategy = strings.ToLower(strategy)
	}
	if notify := os.Getenv("BSKYSCRAPER_NOTIFY"); notify != "" {
		c.Output.Notify = strings.ToLower(notify) == "true"
	}

	if validate := os.Getenv("BSKYSCRAPER_VALIDATE_LINKS"); validate != "" {
		c.Validation.Enabled = strings.ToLower(validate) == "true"
	}
	if template := os.Getenv("BSKYSCRAPER_TEMPLATE_PATH"); template != "" {
		c.Validation.TemplatePath = template
	}

	if logLevel := os.Getenv("BSKYSCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("BSKYSCRAPER_LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
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
	home := os.Getenv("HOME")
	locations := []string{
		".bskyscraper.yaml",
		".bskyscraper.yml",
		filepath.Join(home, ".config", "bskyscraper", "config.yaml"),
		filepath.Join(home, ".config", "bskyscraper", "config.yml"),
		filepath.Join(home, ".bskyscraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// Credentials are not required here since they may come from a credential store.
func (c *Config) Validate() error {
	var errs []error

	if c.Bluesky.BaseURL == "" {
		errs = append(errs, errors.New("bluesky base URL is required"))
	}
	if c.Bluesky.Timeout <= 0 {
		errs = append(errs, errors.New("bluesky timeout must be positive"))
	}

	if c.Search.Limit < 1 || c.Search.Limit > 100 {
		errs = append(errs, errors.New("search limit must be between 1 and 100"))
	}
	if c.Search.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	validSorts := map[string]bool{"": true, "top": true, "latest": true}
	if !validSorts[strings.ToLower(c.Search.Sort)] {
		errs = append(errs, errors.New("search sort must be top or latest"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	switch c.Output.Strategy {
	case StrategyReplace, StrategyMerge:
	default:
		errs = append(errs, fmt.Errorf("unknown output strategy %q", c.Output.Strategy))
	}

	if c.Validation.Timeout <= 0 {
		errs = append(errs, errors.New("validation timeout must be positive"))
	}
	if c.Validation.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("validation requests per minute cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("log format must be console or json"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasCredentials reports whether both handle and app password are set
func (c *Config) HasCredentials() bool {
	return c.Bluesky.Handle != "" && c.Bluesky.AppPassword != ""
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys match the cobra flag names; zero values are ignored.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if handle, ok := flags["handle"].(string); ok && handle != "" {
		c.Bluesky.Handle = handle
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if sort, ok := flags["sort"].(string); ok && sort != "" {
		c.Search.Sort = sort
	}
	if lang, ok := flags["lang"].(string); ok && lang != "" {
		c.Search.Lang = lang
	}
	if limit, ok := flags["limit"].(int); ok && limit > 0 {
		c.Search.Limit = limit
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages > 0 {
		c.Search.MaxPages = maxPages
	}
	if merge, ok := flags["merge"].(bool); ok && merge {
		c.Output.Strategy = StrategyMerge
	}
	if notify, ok := flags["notify"].(bool); ok && notify {
		c.Output.Notify = true
	}
	if validate, ok := flags["validate"].(bool); ok && validate {
		c.Validation.Enabled = true
	}
	if template, ok := flags["template"].(string); ok && template != "" {
		c.Validation.TemplatePath = template
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
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".bskyscraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
