package cliconfig

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/akiliapp/lms/pkg/session"
)

// GlobalConfigDir is the directory for global config.
const GlobalConfigDir = session.ConfigDirName

// LocalConfigFileNames are the names to search for local config (in order).
var LocalConfigFileNames = []string{".lmsrc.yaml", ".lmsrc.yml"}

// GlobalConfigFileNames are the names to search for global config (in order).
var GlobalConfigFileNames = []string{"config.yaml", "config.yml"}

// FindLocalConfig searches for .lmsrc.yaml or .lmsrc.yml in the current directory.
func FindLocalConfig() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for _, name := range LocalConfigFileNames {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// FindGlobalConfig returns the path to the global config file.
// Returns empty string if not found.
func FindGlobalConfig() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		//nolint:nilerr // no config dir means no global config
		return "", nil
	}
	for _, name := range GlobalConfigFileNames {
		path := filepath.Join(configDir, GlobalConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// LoadConfigFile loads a CLIConfig from a YAML file.
func LoadConfigFile(path string) (*CLIConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, newConfigError(path, err)
	}

	var keys map[string]any
	if err := yaml.Unmarshal(data, &keys); err == nil {
		cfg.SetFields = make(map[string]bool, len(keys))
		for k := range keys {
			cfg.SetFields[k] = true
		}
	}

	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

var yamlLineRe = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

// newConfigError lifts the line number out of a yaml.v3 syntax error.
func newConfigError(path string, err error) *ConfigError {
	cerr := &ConfigError{Path: path, Message: err.Error()}
	var terr *yaml.TypeError
	if errors.As(err, &terr) {
		cerr.Message = strings.Join(terr.Errors, "; ")
		return cerr
	}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		cerr.Line, _ = strconv.Atoi(m[1])
		cerr.Message = m[2]
	}
	return cerr
}

// ConfigError represents a configuration file error with location info.
type ConfigError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *ConfigError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return e.Path + " (line " + strconv.Itoa(e.Line) + ", column " + strconv.Itoa(e.Column) + "): " + e.Message
	}
	if e.Line > 0 {
		return e.Path + " (line " + strconv.Itoa(e.Line) + "): " + e.Message
	}
	return e.Path + ": " + e.Message
}

// LoadAll loads configuration from all sources and merges them.
// Precedence: flags > env > .env > local config > global config > defaults.
// Flags are applied by the caller.
func LoadAll() (*CLIConfig, error) {
	cfg := NewDefault()

	if globalPath, err := FindGlobalConfig(); err == nil && globalPath != "" {
		globalCfg, err := LoadConfigFile(globalPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, globalCfg, SourceGlobal)
	}

	if localPath, err := FindLocalConfig(); err == nil && localPath != "" {
		localCfg, err := LoadConfigFile(localPath)
		if err != nil {
			return nil, err
		}
		MergeConfig(cfg, localCfg, SourceLocal)
	}

	if err := LoadDotEnv(cfg, DotEnvFileName); err != nil {
		return nil, err
	}

	LoadEnvConfig(cfg)

	return cfg, nil
}
