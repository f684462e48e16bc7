package cliconfig

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvBaseURL     = "LMS_BASE_URL"
	EnvPerPage     = "LMS_PER_PAGE"
	EnvTimeout     = "LMS_TIMEOUT"
	EnvRateLimit   = "LMS_RATE_LIMIT"
	EnvSessionFile = "LMS_SESSION_FILE"
	EnvLogLevel    = "LMS_LOG_LEVEL"
	EnvLogFormat   = "LMS_LOG_FORMAT"
	EnvLogFile     = "LMS_LOG_FILE"
	EnvVerbose     = "LMS_VERBOSE"
	EnvJSON        = "LMS_JSON"
)

// DotEnvFileName is the dotenv file read from the current directory.
const DotEnvFileName = ".env"

// LoadEnvConfig loads configuration from environment variables.
// It only sets values that are present in the environment.
func LoadEnvConfig(cfg *CLIConfig) {
	applyEnv(cfg, os.LookupEnv, SourceEnv)
}

// LoadDotEnv applies a dotenv file. Variables already set in the real
// environment are skipped, so the environment keeps precedence.
// A missing file is not an error.
func LoadDotEnv(cfg *CLIConfig, path string) error {
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ConfigError{Path: path, Message: err.Error()}
	}
	lookup := func(key string) (string, bool) {
		if _, inEnv := os.LookupEnv(key); inEnv {
			return "", false
		}
		v, ok := values[key]
		return v, ok
	}
	applyEnv(cfg, lookup, SourceDotEnv)
	return nil
}

func applyEnv(cfg *CLIConfig, lookup func(string) (string, bool), source string) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		cfg.BaseURL = v
		cfg.Sources["baseUrl"] = source
	}

	if v, ok := lookup(EnvPerPage); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.PerPage = n
			cfg.Sources["perPage"] = source
		}
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Timeout = n
			cfg.Sources["timeout"] = source
		}
	}

	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimit = f
			cfg.Sources["rateLimit"] = source
		}
	}

	if v, ok := lookup(EnvSessionFile); ok && v != "" {
		cfg.SessionFile = v
		cfg.Sources["sessionFile"] = source
	}

	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = source
	}

	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = source
	}

	if v, ok := lookup(EnvLogFile); ok && v != "" {
		cfg.LogFile = v
		cfg.Sources["logFile"] = source
	}

	if v, ok := lookup(EnvVerbose); ok && v != "" {
		cfg.Verbose = parseBool(v)
		cfg.Sources["verbose"] = source
	}

	if v, ok := lookup(EnvJSON); ok && v != "" {
		cfg.JSON = parseBool(v)
		cfg.Sources["json"] = source
	}
}

func parseBool(v string) bool {
	return v == "true" || v == "1" || v == "yes"
}
