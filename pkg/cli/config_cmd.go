package cli

import (
	"github.com/spf13/cobra"

	"github.com/akiliapp/lms/pkg/cli/internal/output"
	"github.com/akiliapp/lms/pkg/cliconfig"
)

// ConfigEntry is one resolved configuration value.
type ConfigEntry struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// ConfigOutput is the JSON form of 'lmsctl config'.
type ConfigOutput struct {
	Entries      []ConfigEntry `json:"entries"`
	SessionFile  string        `json:"sessionFile"`
	GlobalConfig string        `json:"globalConfig,omitempty"`
	LocalConfig  string        `json:"localConfig,omitempty"`
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where each value came from",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := deps.cfg
		out := ConfigOutput{Entries: make([]ConfigEntry, 0, len(cliconfig.Keys))}
		for _, key := range cliconfig.Keys {
			out.Entries = append(out.Entries, ConfigEntry{
				Key:    key,
				Value:  cfg.Value(key),
				Source: cfg.Sources[key],
			})
		}
		out.SessionFile, _ = cfg.ResolveSessionFile()
		out.GlobalConfig, _ = cliconfig.FindGlobalConfig()
		out.LocalConfig, _ = cliconfig.FindLocalConfig()

		return printResult(out, func() {
			w := output.Table()
			output.Header(w, []string{"key", "value", "source"})
			for _, e := range out.Entries {
				output.Row(w, e.Key, e.Value, e.Source)
			}
			_ = w.Flush()
			say("")
			say("Session file: %s", out.SessionFile)
			if out.GlobalConfig != "" {
				say("Global config: %s", out.GlobalConfig)
			}
			if out.LocalConfig != "" {
				say("Local config: %s", out.LocalConfig)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
