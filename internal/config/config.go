// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for every tunable.
const (
	DefaultBaseURL          = "http://localhost:8000"
	DefaultTimeout          = 30 * time.Second
	DefaultPollInterval     = 5 * time.Second
	DefaultCompletionDelay  = 2 * time.Second
	DefaultReportRetries    = 3
	DefaultReportRetryDelay = 2 * time.Second
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
)

// Duration is a time.Duration that reads Go duration strings ("5s") or integer seconds
// from JSON and YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON writes d as a duration string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return d.parse(s)
	}
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\" or a number of seconds")
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var secs float64
	if node.Tag == "!!int" || node.Tag == "!!float" {
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Service
	BaseURL string   `json:"base_url,omitempty" yaml:"base_url,omitempty"` // Interview service base URL
	Timeout Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`   // Per-request timeout

	// Interview flow
	PollInterval     Duration `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty"`           // Status poll interval
	CompletionDelay  Duration `json:"completion_delay,omitempty" yaml:"completion_delay,omitempty"`     // Pause before showing the report
	ReportRetries    int      `json:"report_retries,omitempty" yaml:"report_retries,omitempty"`         // Automatic report fetch retries
	ReportRetryDelay Duration `json:"report_retry_delay,omitempty" yaml:"report_retry_delay,omitempty"` // Fixed delay between retries

	// Local state
	CredentialsPath string `json:"credentials_path,omitempty" yaml:"credentials_path,omitempty"` // Bearer token file

	// Observability
	LogLevel    string `json:"log_level,omitempty" yaml:"log_level,omitempty"`       // debug, info, warn, error
	LogFormat   string `json:"log_format,omitempty" yaml:"log_format,omitempty"`     // console or json
	MetricsAddr string `json:"metrics_addr,omitempty" yaml:"metrics_addr,omitempty"` // Prometheus listen address
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		Timeout:          Duration(DefaultTimeout),
		PollInterval:     Duration(DefaultPollInterval),
		CompletionDelay:  Duration(DefaultCompletionDelay),
		ReportRetries:    DefaultReportRetries,
		ReportRetryDelay: Duration(DefaultReportRetryDelay),
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
	}
}

// LoadConfig loads configuration from a JSON (.json) or YAML (.yaml, .yml) file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Zero values are allowed; they are filled by MergeWithDefaults.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("config error: 'base_url' must be an absolute http(s) URL, got %q", c.BaseURL)
		}
	}

	if c.Timeout < 0 {
		return fmt.Errorf("config error: 'timeout' must be non-negative")
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("config error: 'poll_interval' must be non-negative")
	}
	if c.CompletionDelay < 0 {
		return fmt.Errorf("config error: 'completion_delay' must be non-negative")
	}
	if c.ReportRetries < 0 {
		return fmt.Errorf("config error: 'report_retries' must be non-negative")
	}
	if c.ReportRetryDelay < 0 {
		return fmt.Errorf("config error: 'report_retry_delay' must be non-negative")
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: 'log_level' must be one of debug, info, warn, error")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "console", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be console or json")
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BaseURL == "" {
		result.BaseURL = defaults.BaseURL
	}
	if result.CredentialsPath == "" {
		result.CredentialsPath = defaults.CredentialsPath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.MetricsAddr == "" {
		result.MetricsAddr = defaults.MetricsAddr
	}

	// Durations: use default if zero
	if result.Timeout == 0 {
		result.Timeout = defaults.Timeout
	}
	if result.PollInterval == 0 {
		result.PollInterval = defaults.PollInterval
	}
	if result.CompletionDelay == 0 {
		result.CompletionDelay = defaults.CompletionDelay
	}
	if result.ReportRetryDelay == 0 {
		result.ReportRetryDelay = defaults.ReportRetryDelay
	}

	// Int fields: use default if zero
	if result.ReportRetries == 0 {
		result.ReportRetries = defaults.ReportRetries
	}

	return result
}
