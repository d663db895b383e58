package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/plughost/internal/vst2"
)

const shortCommitLength = 12

// Set through -ldflags at release time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	versionRequested bool
	versionShort     bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the plughost version, build details and the host version reported
to plugins.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if versionShort {
			fmt.Fprintln(cmd.OutOrStdout(), version)

			return
		}

		readBuildInfo().write(cmd.OutOrStdout())
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().BoolVarP(&versionRequested, "version", "v", false, "Print version information")
}

// checkVersionFlag handles -v before any command runs.
func checkVersionFlag() {
	if !versionRequested {
		return
	}

	readBuildInfo().write(os.Stdout)
	os.Exit(0)
}

type buildInfo struct {
	Version  string
	Commit   string
	Date     string
	Go       string
	Platform string
	Module   string
	Modified bool
	// HostVersion is the packed vendor version plugins see, or 0 for
	// development builds that keep the built-in value.
	HostVersion int64
}

func readBuildInfo() buildInfo {
	info := buildInfo{
		Version:  version,
		Commit:   commit,
		Date:     date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}

	if _, err := semver.NewVersion(version); err == nil {
		info.HostVersion = vst2.VendorVersion()
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}

	info.Module = bi.Main.Path

	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" && s.Value != "" {
				info.Commit = s.Value[:min(shortCommitLength, len(s.Value))]
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}

	return info
}

func (b buildInfo) write(w io.Writer) {
	fmt.Fprintf(w, "plughost %s\n", b.Version)
	fmt.Fprintf(w, "  commit:    %s\n", b.Commit)
	fmt.Fprintf(w, "  built:     %s\n", b.Date)
	fmt.Fprintf(w, "  go:        %s\n", b.Go)
	fmt.Fprintf(w, "  os/arch:   %s\n", b.Platform)

	if b.Module != "" {
		fmt.Fprintf(w, "  module:    %s\n", b.Module)
	}

	if b.Modified {
		fmt.Fprintln(w, "  modified:  true")
	}

	if b.HostVersion != 0 {
		fmt.Fprintf(w, "  vst host:  %d (VST %d)\n", b.HostVersion, vst2.HostVersion)
	}
}
