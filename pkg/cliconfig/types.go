// Package cliconfig provides configuration types and loading for the lmsctl CLI.
package cliconfig

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/akiliapp/lms/pkg/logging"
	"github.com/akiliapp/lms/pkg/session"
)

// CLIConfig represents the complete configuration for the lmsctl CLI.
// Configuration values can come from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables
// 3. .env file in the current directory
// 4. Local config file (.lmsrc.yaml in current directory)
// 5. Global config file (~/.config/lms/config.yaml)
// 6. Default values (lowest priority)
type CLIConfig struct {
	// Backend settings
	BaseURL   string  `yaml:"baseUrl" json:"baseUrl"`
	PerPage   int     `yaml:"perPage" json:"perPage"`
	Timeout   int     `yaml:"timeout" json:"timeout"`
	RateLimit float64 `yaml:"rateLimit" json:"rateLimit"`

	// Session settings
	SessionFile string `yaml:"sessionFile,omitempty" json:"sessionFile,omitempty"`

	// Logging settings
	LogLevel  string `yaml:"logLevel" json:"logLevel"`
	LogFormat string `yaml:"logFormat" json:"logFormat"`
	LogFile   string `yaml:"logFile,omitempty" json:"logFile,omitempty"`

	// Output settings
	Verbose bool `yaml:"verbose" json:"verbose"`
	JSON    bool `yaml:"json" json:"json"`

	// Sources tracks where each value came from (for debugging)
	Sources map[string]string `yaml:"-" json:"-"`

	// SetFields records which keys were present in a loaded file, so that an
	// explicit false can override a true.
	SetFields map[string]bool `yaml:"-" json:"-"`
}

// ConfigSource identifies where a config value originated.
const (
	SourceDefault = "default"
	SourceEnv     = "env"
	SourceDotEnv  = "dotenv"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceFlag    = "flag"
)

// Keys lists the configuration keys in display order.
var Keys = []string{
	"baseUrl", "perPage", "timeout", "rateLimit",
	"sessionFile", "logLevel", "logFormat", "logFile", "verbose", "json",
}

// Value returns the display form of key.
func (c *CLIConfig) Value(key string) string {
	switch key {
	case "baseUrl":
		return c.BaseURL
	case "perPage":
		return fmt.Sprint(c.PerPage)
	case "timeout":
		return fmt.Sprint(c.Timeout)
	case "rateLimit":
		return fmt.Sprint(c.RateLimit)
	case "sessionFile":
		return c.SessionFile
	case "logLevel":
		return c.LogLevel
	case "logFormat":
		return c.LogFormat
	case "logFile":
		return c.LogFile
	case "verbose":
		return fmt.Sprint(c.Verbose)
	case "json":
		return fmt.Sprint(c.JSON)
	}
	return ""
}

// Validate checks the configuration for invalid values.
func (c *CLIConfig) Validate() error {
	if c.BaseURL == "" {
		return errors.New("baseUrl is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("baseUrl %q must be an http(s) URL", c.BaseURL)
	}
	if c.PerPage < 1 || c.PerPage > 500 {
		return fmt.Errorf("perPage %d is out of range (1-500)", c.PerPage)
	}
	if c.Timeout < 0 || c.Timeout > 3600 {
		return fmt.Errorf("timeout %d is out of range (0-3600)", c.Timeout)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rateLimit %v cannot be negative", c.RateLimit)
	}
	switch c.LogFormat {
	case "", string(logging.FormatText), string(logging.FormatJSON):
	default:
		return fmt.Errorf("logFormat %q must be text or json", c.LogFormat)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logLevel %q must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}

// TimeoutDuration returns the HTTP timeout. Zero disables it.
func (c *CLIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ResolveSessionFile returns the configured session file or the default path.
func (c *CLIConfig) ResolveSessionFile() (string, error) {
	if c.SessionFile != "" {
		return c.SessionFile, nil
	}
	return session.DefaultPath()
}

// LoggingConfig builds the logger configuration. Verbose forces debug.
func (c *CLIConfig) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(c.LogLevel)
	cfg.Format = logging.ParseFormat(c.LogFormat)
	if c.Verbose {
		cfg.Level = logging.LevelDebug
	}
	return cfg
}
