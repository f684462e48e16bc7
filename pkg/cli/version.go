package cli

import (
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// VersionOutput is the JSON form of 'lmsctl version'.
type VersionOutput struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Go      string `json:"go"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
}

// buildVersion combines the link-time values with the module build info.
func buildVersion() VersionOutput {
	out := VersionOutput{
		Version: Version,
		Commit:  Commit,
		Date:    BuildDate,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	if out.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	}
	dirty := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if out.Commit == "none" {
				out.Commit = s.Value
			}
		case "vcs.time":
			if out.Date == "unknown" {
				out.Date = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if dirty {
		out.Commit += "-dirty"
	}
	return out
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show lmsctl version information",
	Args:  cobra.NoArgs,
	// Version needs no configuration or session.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		out := buildVersion()
		return printResult(out, func() {
			v := out.Version
			if v != "" && v != "dev" && v[0] != 'v' {
				v = "v" + v
			}
			say("lmsctl %s (%s, %s)", v, out.Commit, out.Date)
			say("%s %s/%s", out.Go, out.OS, out.Arch)
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
