package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCLIConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(*CLIConfig) {},
			wantErr: "",
		},
		{
			name:    "local http backend",
			mutate:  func(c *CLIConfig) { c.BaseURL = "http://localhost:8000/api" },
			wantErr: "",
		},
		{
			name:    "missing base url",
			mutate:  func(c *CLIConfig) { c.BaseURL = "" },
			wantErr: "baseUrl is required",
		},
		{
			name:    "base url without scheme",
			mutate:  func(c *CLIConfig) { c.BaseURL = "lms.akiliapp.co.tz/api" },
			wantErr: "must be an http(s) URL",
		},
		{
			name:    "per page zero",
			mutate:  func(c *CLIConfig) { c.PerPage = 0 },
			wantErr: "perPage 0 is out of range",
		},
		{
			name:    "timeout too high",
			mutate:  func(c *CLIConfig) { c.Timeout = 9999 },
			wantErr: "timeout 9999 is out of range",
		},
		{
			name:    "negative rate limit",
			mutate:  func(c *CLIConfig) { c.RateLimit = -1 },
			wantErr: "rateLimit -1 cannot be negative",
		},
		{
			name:    "bad log format",
			mutate:  func(c *CLIConfig) { c.LogFormat = "yaml" },
			wantErr: `logFormat "yaml"`,
		},
		{
			name:    "bad log level",
			mutate:  func(c *CLIConfig) { c.LogLevel = "trace" },
			wantErr: `logLevel "trace"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.PerPage != 5 {
		t.Errorf("PerPage = %d, want 5", cfg.PerPage)
	}
	if cfg.TimeoutDuration().Seconds() != 30 {
		t.Errorf("TimeoutDuration = %v, want 30s", cfg.TimeoutDuration())
	}
	for _, key := range Keys {
		if cfg.Sources[key] != SourceDefault {
			t.Errorf("Sources[%s] = %q, want default", key, cfg.Sources[key])
		}
	}
}

func TestMergeConfig(t *testing.T) {
	t.Run("non-zero values override", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &CLIConfig{BaseURL: "http://a/api", PerPage: 20}, SourceGlobal)

		if target.BaseURL != "http://a/api" || target.Sources["baseUrl"] != SourceGlobal {
			t.Errorf("baseUrl = %q (%s)", target.BaseURL, target.Sources["baseUrl"])
		}
		if target.PerPage != 20 {
			t.Errorf("PerPage = %d, want 20", target.PerPage)
		}
		if target.Sources["timeout"] != SourceDefault {
			t.Errorf("timeout source = %q, want default", target.Sources["timeout"])
		}
	})

	t.Run("explicit false from file overrides true", func(t *testing.T) {
		target := NewDefault()
		target.JSON = true
		MergeConfig(target, &CLIConfig{SetFields: map[string]bool{"json": true}}, SourceLocal)

		if target.JSON {
			t.Error("JSON should be false after merging an explicit false")
		}
		if target.Sources["json"] != SourceLocal {
			t.Errorf("json source = %q, want local", target.Sources["json"])
		}
	})

	t.Run("explicit zero timeout from file", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, &CLIConfig{SetFields: map[string]bool{"timeout": true}}, SourceLocal)
		if target.Timeout != 0 {
			t.Errorf("Timeout = %d, want 0", target.Timeout)
		}
	})

	t.Run("nil source", func(t *testing.T) {
		target := NewDefault()
		MergeConfig(target, nil, SourceLocal)
		if target.BaseURL != DefaultBaseURL {
			t.Error("nil source should not change target")
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		writeFile(t, path, "baseUrl: http://localhost:9000/api\nperPage: 10\nverbose: false\n")

		cfg, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() error = %v", err)
		}
		if cfg.BaseURL != "http://localhost:9000/api" || cfg.PerPage != 10 {
			t.Errorf("unexpected config: %+v", cfg)
		}
		if !cfg.SetFields["verbose"] || cfg.SetFields["json"] {
			t.Errorf("SetFields = %v", cfg.SetFields)
		}
	})

	t.Run("syntax error carries line", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		writeFile(t, path, "baseUrl: x\nperPage: [1\n")

		_, err := LoadConfigFile(path)
		cerr, ok := err.(*ConfigError)
		if !ok {
			t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
		}
		if cerr.Line == 0 {
			t.Errorf("expected a line number, got %q", cerr.Error())
		}
		if !strings.HasPrefix(cerr.Error(), path) {
			t.Errorf("error should start with the path: %q", cerr.Error())
		}
	})

	t.Run("type error", func(t *testing.T) {
		path := filepath.Join(dir, "type.yaml")
		writeFile(t, path, "perPage: many\n")

		_, err := LoadConfigFile(path)
		if _, ok := err.(*ConfigError); !ok {
			t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
		}
	})
}

func TestLoadAll_Precedence(t *testing.T) {
	for _, key := range []string{
		EnvBaseURL, EnvPerPage, EnvTimeout, EnvRateLimit, EnvSessionFile,
		EnvLogLevel, EnvLogFormat, EnvLogFile, EnvVerbose, EnvJSON,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)
	t.Setenv("HOME", configHome)
	globalDir := filepath.Join(configHome, GlobalConfigDir)
	if err := os.MkdirAll(globalDir, 0o700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(globalDir, "config.yaml"),
		"baseUrl: http://global/api\nperPage: 7\ntimeout: 11\nlogLevel: warn\n")

	work := t.TempDir()
	t.Chdir(work)
	writeFile(t, filepath.Join(work, ".lmsrc.yaml"), "perPage: 8\ntimeout: 12\n")
	writeFile(t, filepath.Join(work, ".env"), "LMS_TIMEOUT=13\nLMS_LOG_FORMAT=json\nLMS_JSON=true\n")
	t.Setenv(EnvLogFormat, "text")

	cfg, err := LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	checks := []struct {
		key, value, source string
	}{
		{"baseUrl", "http://global/api", SourceGlobal},
		{"perPage", "8", SourceLocal},
		{"timeout", "13", SourceDotEnv},
		{"logLevel", "warn", SourceGlobal},
		{"logFormat", "text", SourceEnv},
		{"json", "true", SourceDotEnv},
		{"rateLimit", "0", SourceDefault},
	}
	for _, c := range checks {
		if got := cfg.Value(c.key); got != c.value {
			t.Errorf("%s = %q, want %q", c.key, got, c.value)
		}
		if got := cfg.Sources[c.key]; got != c.source {
			t.Errorf("%s source = %q, want %q", c.key, got, c.source)
		}
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	cfg := NewDefault()
	if err := LoadDotEnv(cfg, filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}
}

func TestLoggingConfig_VerboseForcesDebug(t *testing.T) {
	cfg := NewDefault()
	cfg.LogLevel = "error"
	cfg.Verbose = true
	if got := cfg.LoggingConfig().Level.String(); got != "DEBUG" {
		t.Errorf("Level = %s, want DEBUG", got)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}
