// Package config loads, validates and persists the regdash configuration.
//
// Values are resolved in this order, later sources winning:
//   - built-in defaults (see New)
//   - the global file at $REGDASH_HOME/config.yaml (default ~/.regdash/config.yaml)
//   - a project overlay at ./.regdash/config.yaml (see NewWithProjectDir)
//   - REGDASH_* environment variables
//   - CLI flags, applied by the cli package
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rshade/regdash/internal/model"
)

// CurrentConfigVersion is written into new config files. Files with a newer
// major version are rejected by Validate.
const CurrentConfigVersion = "1.0.0"

// Defaults.
const (
	DefaultBaseURL        = "http://localhost:8000"
	DefaultTimeoutSeconds = 30
	DefaultRateLimit      = 5.0
	DefaultBurst          = 10
	DefaultCacheTTL       = 3600
	DefaultIndexYear      = 2024
	DefaultExploreYear    = 2024
	DefaultRecentYears    = 10
	DefaultOutputFormat   = "table"
	configFileName        = "config.yaml"
	outputTypeFile        = "file"
)

// Environment variables understood by the loader.
const (
	EnvHome       = "REGDASH_HOME"
	EnvAPIURL     = "REGDASH_API_URL"
	EnvCacheTTL   = "REGDASH_CACHE_TTL"
	EnvLogLevel   = "REGDASH_LOG_LEVEL"
	EnvLogFormat  = "REGDASH_LOG_FORMAT"
	EnvProjectDir = "REGDASH_PROJECT_DIR"
)

// Validation errors.
var (
	ErrInvalidBaseURL      = errors.New("api.base_url must be an absolute http(s) URL")
	ErrInvalidTimeout      = errors.New("api.timeout_seconds must be > 0")
	ErrInvalidRateLimit    = errors.New("api.rate_limit must be >= 0")
	ErrInvalidBurst        = errors.New("api.burst must be >= 1 when rate limiting is enabled")
	ErrInvalidCacheTTL     = errors.New("cache.ttl_seconds must be >= 0")
	ErrInvalidOutputFormat = errors.New("output.default_format must be one of table, json, ndjson")
	ErrInvalidYearSpan     = errors.New("year span start must not be after end")
	ErrUnsupportedVersion  = errors.New("config_version is newer than this binary supports")
	ErrUnknownKey          = errors.New("unknown configuration key")
)

// Config is the full regdash configuration.
type Config struct {
	ConfigVersion string          `yaml:"config_version"`
	API           APIConfig       `yaml:"api"`
	Cache         CacheConfig     `yaml:"cache"`
	Dashboard     DashboardConfig `yaml:"dashboard"`
	Output        OutputConfig    `yaml:"output"`
	Logging       LoggingConfig   `yaml:"logging"`

	configPath string
	loadErr    error
}

// APIConfig configures the statistics API client.
type APIConfig struct {
	BaseURL        string  `yaml:"base_url"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RateLimit      float64 `yaml:"rate_limit"` // requests per second, 0 disables limiting
	Burst          int     `yaml:"burst"`
	UserAgent      string  `yaml:"user_agent,omitempty"`
}

// CacheConfig configures the on-disk response cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
}

// YearSpan is an inclusive range of years.
type YearSpan struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// ToModel converts the span to the query type used by the API client.
func (s YearSpan) ToModel() model.YearSpan {
	return model.YearSpan{Start: s.Start, End: s.End}
}

// DashboardConfig holds the year ranges used by the aggregate views.
type DashboardConfig struct {
	IndexYear   int      `yaml:"index_year"`
	ExploreYear int      `yaml:"explore_year"`
	RecentYears int      `yaml:"recent_years"`
	NewRules    YearSpan `yaml:"new_rules"`
	RulesWindow YearSpan `yaml:"rules_window"`
	Timeline    YearSpan `yaml:"timeline"`
	RuleVolume  YearSpan `yaml:"rule_volume"`
}

// OutputConfig controls default rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// Default returns a Config populated only with built-in defaults.
func Default() *Config {
	return &Config{
		ConfigVersion: CurrentConfigVersion,
		API: APIConfig{
			BaseURL:        DefaultBaseURL,
			TimeoutSeconds: DefaultTimeoutSeconds,
			RateLimit:      DefaultRateLimit,
			Burst:          DefaultBurst,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: DefaultCacheTTL,
		},
		Dashboard: DashboardConfig{
			IndexYear:   DefaultIndexYear,
			ExploreYear: DefaultExploreYear,
			RecentYears: DefaultRecentYears,
			NewRules:    YearSpan{Start: 2012, End: 2025},
			RulesWindow: YearSpan{Start: 2012, End: 2025},
			Timeline:    YearSpan{Start: 1998, End: 2024},
			RuleVolume:  YearSpan{Start: 2003, End: 2023},
		},
		Output: OutputConfig{DefaultFormat: DefaultOutputFormat},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// New returns the defaults overlaid with the global config file and the
// environment. A missing file is not an error; a malformed one is recorded
// and reported by LoadError so `config validate` can surface it.
func New() *Config {
	cfg := Default()

	dir, err := GetConfigDir()
	if err != nil {
		cfg.loadErr = err
		cfg.applyEnv()
		return cfg
	}
	cfg.configPath = filepath.Join(dir, configFileName)

	if loadErr := cfg.loadFile(cfg.configPath); loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
		cfg.loadErr = loadErr
	}
	cfg.applyEnv()
	return cfg
}

// Load reads path on top of the defaults without consulting the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.configPath = path
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvCacheTTL); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLSeconds = ttl
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}

// ConfigPath returns the file this config was loaded from or will be saved to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the destination used by Save.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// LoadError returns the error encountered while reading the config file, if any.
func (c *Config) LoadError() error {
	return c.loadErr
}

// Save writes the config as YAML to ConfigPath, creating parent directories.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// CacheDirectory returns the configured cache directory or the default
// $REGDASH_HOME/cache.
func (c *Config) CacheDirectory() string {
	if c.Cache.Directory != "" {
		return c.Cache.Directory
	}
	dir, err := GetConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "regdash-cache")
	}
	return filepath.Join(dir, "cache")
}

// Validate checks the config for values the rest of the program cannot use.
func (c *Config) Validate() error {
	var errs []error

	if err := checkConfigVersion(c.ConfigVersion); err != nil {
		errs = append(errs, err)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.API.BaseURL))
	}
	if c.API.TimeoutSeconds <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, ErrInvalidRateLimit)
	}
	if c.API.RateLimit > 0 && c.API.Burst < 1 {
		errs = append(errs, ErrInvalidBurst)
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, ErrInvalidCacheTTL)
	}
	if !IsValidOutputFormat(c.Output.DefaultFormat) {
		errs = append(errs, fmt.Errorf("%w: got %q", ErrInvalidOutputFormat, c.Output.DefaultFormat))
	}
	if _, lvlErr := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); lvlErr != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", lvlErr))
	}

	spans := map[string]YearSpan{
		"dashboard.new_rules":    c.Dashboard.NewRules,
		"dashboard.rules_window": c.Dashboard.RulesWindow,
		"dashboard.timeline":     c.Dashboard.Timeline,
		"dashboard.rule_volume":  c.Dashboard.RuleVolume,
	}
	for _, name := range sortedKeys(spans) {
		if s := spans[name]; s.Start > s.End {
			errs = append(errs, fmt.Errorf("%s: %w (%d > %d)", name, ErrInvalidYearSpan, s.Start, s.End))
		}
	}

	return errors.Join(errs...)
}

// IsValidOutputFormat reports whether format is a supported output format.
func IsValidOutputFormat(format string) bool {
	switch format {
	case "table", "json", "ndjson":
		return true
	default:
		return false
	}
}

func checkConfigVersion(raw string) error {
	if raw == "" {
		return nil
	}
	v, err := semver.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("config_version %q: %w", raw, err)
	}
	current := semver.MustParse(CurrentConfigVersion)
	if v.Major() > current.Major() {
		return fmt.Errorf("%w: %s (supported: %d.x)", ErrUnsupportedVersion, raw, current.Major())
	}
	return nil
}
