package cliconfig

// MergeConfig merges source config into target, updating sources tracking.
// Only non-zero values from source are applied.
func MergeConfig(target, source *CLIConfig, sourceType string) {
	if source == nil {
		return
	}
	if target.Sources == nil {
		target.Sources = make(map[string]string)
	}

	if source.BaseURL != "" {
		target.BaseURL = source.BaseURL
		target.Sources["baseUrl"] = sourceType
	}
	if source.PerPage != 0 {
		target.PerPage = source.PerPage
		target.Sources["perPage"] = sourceType
	}
	if source.Timeout != 0 || isSet(source, "timeout") {
		target.Timeout = source.Timeout
		target.Sources["timeout"] = sourceType
	}
	if source.RateLimit != 0 || isSet(source, "rateLimit") {
		target.RateLimit = source.RateLimit
		target.Sources["rateLimit"] = sourceType
	}
	if source.SessionFile != "" {
		target.SessionFile = source.SessionFile
		target.Sources["sessionFile"] = sourceType
	}
	if source.LogLevel != "" {
		target.LogLevel = source.LogLevel
		target.Sources["logLevel"] = sourceType
	}
	if source.LogFormat != "" {
		target.LogFormat = source.LogFormat
		target.Sources["logFormat"] = sourceType
	}
	if source.LogFile != "" {
		target.LogFile = source.LogFile
		target.Sources["logFile"] = sourceType
	}
	// For booleans, checking `if source.X` cannot detect an explicit false.
	// SetFields (populated during file loading) tells whether the key was
	// present in the source. Without it, only true values are merged.
	if boolIsSet(source, "verbose") {
		target.Verbose = source.Verbose
		target.Sources["verbose"] = sourceType
	}
	if boolIsSet(source, "json") {
		target.JSON = source.JSON
		target.Sources["json"] = sourceType
	}
}

func isSet(cfg *CLIConfig, key string) bool {
	return cfg.SetFields != nil && cfg.SetFields[key]
}

// boolIsSet reports whether a boolean field identified by its YAML key was
// explicitly set in the source config.
func boolIsSet(cfg *CLIConfig, yamlKey string) bool {
	if cfg.SetFields != nil {
		return cfg.SetFields[yamlKey]
	}
	switch yamlKey {
	case "verbose":
		return cfg.Verbose
	case "json":
		return cfg.JSON
	}
	return false
}
