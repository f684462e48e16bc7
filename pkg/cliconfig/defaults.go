package cliconfig

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "https://lms.akiliapp.co.tz/api"

// DefaultPerPage is the default page size.
const DefaultPerPage = 5

// DefaultTimeout is the default HTTP timeout in seconds.
const DefaultTimeout = 30

// DefaultLogLevel is the default log level.
const DefaultLogLevel = "info"

// DefaultLogFormat is the default log format.
const DefaultLogFormat = "text"

// NewDefault creates a new CLIConfig with default values.
func NewDefault() *CLIConfig {
	cfg := &CLIConfig{
		BaseURL:   DefaultBaseURL,
		PerPage:   DefaultPerPage,
		Timeout:   DefaultTimeout,
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Sources:   make(map[string]string),
	}

	// Mark all as default source
	for _, key := range Keys {
		cfg.Sources[key] = SourceDefault
	}

	return cfg
}
