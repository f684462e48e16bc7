package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akiliapp/lms/pkg/api"
	"github.com/akiliapp/lms/pkg/cli/internal/output"
	"github.com/akiliapp/lms/pkg/cliconfig"
	"github.com/akiliapp/lms/pkg/dashboard"
	"github.com/akiliapp/lms/pkg/logging"
	"github.com/akiliapp/lms/pkg/session"
)

var (
	// Persistent flags available to all subcommands
	baseURLFlag string
	jsonOutput  bool
	verboseFlag bool
	perPageFlag int

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lmsctl",
	Short: "lmsctl is a command-line client for the Akili LMS",
	Long: `lmsctl talks to the Akili LMS backend: sign in, browse and manage modules,
learning materials, quizzes, certificates, assignments and users, and follow
your own progress.

Configuration can be provided via flags, environment variables (LMS_*), a .env
file, a .lmsrc.yaml in the current directory or ~/.config/lms/config.yaml.
Run 'lmsctl config' to see the effective values and where they came from.`,
	// No Run function here means 'lmsctl' with no args will print help text by default.
	SilenceUsage:      true,
	SilenceErrors:     true, // We handle errors in Execute()
	PersistentPreRunE: setup,
}

// app holds the collaborators built from the resolved configuration.
type app struct {
	cfg      *cliconfig.CLIConfig
	logger   *slog.Logger
	client   *api.Client
	sessions *session.Provider
	progress *session.ProgressCache
	dash     *dashboard.Service
}

// deps is populated by setup before any RunE executes.
var deps *app

// Execute runs the root command and returns the process exit code.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	defer closeLogFile()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(output.Stderr, formatError(err))
		return 1
	}
	return 0
}

func init() {
	// Define persistent flags that apply globally to all lmsctl commands
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "LMS API base URL (default: "+cliconfig.DefaultBaseURL+")")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().IntVar(&perPageFlag, "per-page", 0, "Rows per page for list commands")
}

// loadConfig resolves the configuration and applies command-line flags on top.
func loadConfig(cmd *cobra.Command) (*cliconfig.CLIConfig, error) {
	cfg, err := cliconfig.LoadAll()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURLFlag
		cfg.Sources["baseUrl"] = cliconfig.SourceFlag
	}
	if flags.Changed("per-page") {
		cfg.PerPage = perPageFlag
		cfg.Sources["perPage"] = cliconfig.SourceFlag
	}
	if flags.Changed("json") {
		cfg.JSON = jsonOutput
		cfg.Sources["json"] = cliconfig.SourceFlag
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verboseFlag
		cfg.Sources["verbose"] = cliconfig.SourceFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	jsonOutput = cfg.JSON
	return cfg, nil
}

var logFile *os.File

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// setup builds the shared collaborators for every subcommand.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logCfg := cfg.LoggingConfig()
	logCfg.Output = output.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		logCfg.File = f
	}
	logger := logging.New(logCfg)

	sessionPath, err := cfg.ResolveSessionFile()
	if err != nil {
		return fmt.Errorf("failed to resolve session file: %w", err)
	}
	progress := session.NewProgressCache(filepath.Dir(sessionPath))

	provider, err := session.NewProvider(session.NewFileStore(sessionPath), nil,
		session.WithLogger(logger),
		session.WithProgressCache(progress),
	)
	if err != nil {
		return err
	}

	client := api.New(cfg.BaseURL,
		api.WithTimeout(cfg.TimeoutDuration()),
		api.WithIdentity(provider),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.RateLimit),
		api.WithDefaultPerPage(cfg.PerPage),
	)
	provider.SetAuthenticator(client)

	deps = &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		sessions: provider,
		progress: progress,
		dash: dashboard.New(client,
			dashboard.WithProgressCache(progress),
			dashboard.WithLogger(logger),
		),
	}
	return nil
}

// requireSession returns the signed-in user, warning when the token has
// already expired.
func requireSession() (*session.Session, error) {
	s, err := deps.sessions.Require()
	if err != nil {
		return nil, err
	}
	if s.Expired(timeNow()) {
		output.Warn("your session token expired at %s; run 'lmsctl login' again", s.ExpiresAt().Format("2006-01-02 15:04"))
	}
	return s, nil
}

// requireAdmin returns the session when it has the Admin role.
func requireAdmin() (*session.Session, error) {
	s, err := requireSession()
	if err != nil {
		return nil, err
	}
	if !s.IsAdmin() {
		return nil, ErrAdminRequired
	}
	return s, nil
}
