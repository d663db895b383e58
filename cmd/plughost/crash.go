package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/plughost/internal/chain"
	"github.com/smykla-skalski/plughost/internal/crashdump"
	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/config"
)

const (
	unlimitedStr         = "unlimited"
	durationDisplayUnits = 2
)

// State captured for crash dumps. Set as soon as it is known so a panic at
// any point reports as much as possible.
var (
	crashConfig *config.Config
	crashChain  *chain.Chain
)

var dryRun bool

var crashCmd = &cobra.Command{
	Use:   "crash",
	Short: "Manage crash dumps",
	Long: `Manage the crash dumps plughost writes when it panics.

Subcommands:
  list   List crash dumps
  view   Show one crash dump
  clean  Remove dumps beyond the retention limits`,
}

var crashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List crash dumps",
	Args:  cobra.NoArgs,
	RunE:  runCrashList,
}

var crashViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a crash dump",
	Long: `Show a crash dump with its runtime details, chain, configuration and
stack trace.

Examples:
  plughost crash view crash-20260314T150926-1a2b3c4d`,
	Args: cobra.ExactArgs(1),
	RunE: runCrashView,
}

var crashCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old crash dumps",
	Long: `Remove crash dumps older than crash_dump.max_age, then the oldest dumps
beyond crash_dump.max_dumps.

Examples:
  plughost crash clean
  plughost crash clean --dry-run`,
	Args: cobra.NoArgs,
	RunE: runCrashClean,
}

func init() {
	crashCleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without deleting")

	crashCmd.AddCommand(crashListCmd, crashViewCmd, crashCleanCmd)
	rootCmd.AddCommand(crashCmd)
}

// crashDumpDir returns the configured dump directory or the state default.
func crashDumpDir(cfg *config.Config) string {
	if cfg != nil && cfg.CrashDump != nil && cfg.CrashDump.DumpDir != "" {
		return cfg.CrashDump.DumpDir
	}

	return xdg.CrashDumpDir()
}

// crashRunInfo describes the command and chain that were active.
func crashRunInfo() *crashdump.RunInfo {
	run := &crashdump.RunInfo{Command: "plughost"}

	if len(os.Args) > 1 {
		run.Args = append([]string(nil), os.Args[1:]...)
	}

	if crashConfig != nil && crashConfig.Plugins != nil {
		run.Chain = crashConfig.Plugins.Chain
	}

	if crashChain != nil {
		run.State = crashChain.State().String()

		for _, slot := range crashChain.Slots() {
			run.Slots = append(run.Slots, slot.Plugin.Name())
		}
	}

	return run
}

// handlePanic writes a crash dump for a recovered panic and reports it on
// stderr. Failures to write the dump are reported but never re-panic.
func handlePanic(recovered any) {
	fmt.Fprintf(os.Stderr, "panic: %v\n", recovered)

	if crashConfig != nil && !crashConfig.CrashDump.IsEnabled() {
		return
	}

	info := crashdump.NewCollector(version).Collect(recovered, crashRunInfo(), crashConfig)
	dumpDir := crashDumpDir(crashConfig)

	writer, err := crashdump.NewWriter(dumpDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create crash dump writer: %v\n", err)

		return
	}

	path, err := writer.Write(info)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write crash dump: %v\n", err)

		return
	}

	fmt.Fprintf(os.Stderr, "crash dump saved to: %s\n", path)

	if crashConfig == nil || crashConfig.GetCrashDump().MaxDumps <= 0 {
		return
	}

	retention := crashConfig.GetCrashDump()

	if store, err := crashdump.NewStore(dumpDir); err == nil {
		_, _ = store.Prune(retention.MaxDumps, retention.MaxAge.ToDuration())
	}
}

func openCrashStore(cmd *cobra.Command) (*config.Config, *crashdump.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	store, err := crashdump.NewStore(crashDumpDir(cfg))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open crash dump directory")
	}

	return cfg, store, nil
}

func runCrashList(cmd *cobra.Command, _ []string) error {
	_, store, err := openCrashStore(cmd)
	if err != nil {
		return err
	}

	summaries, err := store.List()
	if err != nil {
		return errors.Wrap(err, "failed to list crash dumps")
	}

	out := cmd.OutOrStdout()

	if len(summaries) == 0 {
		fmt.Fprintln(out, "No crash dumps found.")
		fmt.Fprintf(out, "Directory: %s\n", store.DumpDir())

		return nil
	}

	fmt.Fprintln(out, "Crash Dumps")
	fmt.Fprintln(out, "===========")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Directory: %s\n", store.DumpDir())
	fmt.Fprintf(out, "Total: %d\n", len(summaries))
	fmt.Fprintln(out)

	for i := range summaries {
		writeSummary(out, i+1, &summaries[i])
	}

	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  plughost crash view <id>   # Show full details")
	fmt.Fprintln(out, "  plughost crash clean       # Remove old dumps")

	return nil
}

func writeSummary(out io.Writer, index int, summary *crashdump.DumpSummary) {
	size := "unknown"
	if summary.Size >= 0 {
		size = humanize.Bytes(uint64(summary.Size))
	}

	fmt.Fprintf(out, "%d. %s\n", index, summary.ID)
	fmt.Fprintf(out, "   Time: %s (%s)\n",
		summary.Timestamp.Format("2006-01-02 15:04:05"), humanize.Time(summary.Timestamp))
	fmt.Fprintf(out, "   Panic: %s\n", summary.PanicValue)
	fmt.Fprintf(out, "   Size: %s\n", size)
	fmt.Fprintln(out)
}

func runCrashView(cmd *cobra.Command, args []string) error {
	_, store, err := openCrashStore(cmd)
	if err != nil {
		return err
	}

	info, err := store.Get(args[0])
	if err != nil {
		return errors.WithHint(err, "use 'plughost crash list' to see available dumps")
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Crash Dump")
	fmt.Fprintln(out, "==========")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "ID: %s\n", info.ID)
	fmt.Fprintf(out, "Timestamp: %s\n", info.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Panic: %s\n", info.PanicValue)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Runtime")
	fmt.Fprintln(out, "-------")
	fmt.Fprintf(out, "  Version: %s\n", info.Metadata.Version)
	fmt.Fprintf(out, "  Go: %s %s/%s\n", info.Runtime.GoVersion, info.Runtime.GOOS, info.Runtime.GOARCH)
	fmt.Fprintf(out, "  CPUs: %d, goroutines: %d\n", info.Runtime.NumCPU, info.Runtime.NumGoroutine)

	if info.Metadata.Hostname != "" {
		fmt.Fprintf(out, "  Host: %s\n", info.Metadata.Hostname)
	}

	if info.Metadata.WorkingDir != "" {
		fmt.Fprintf(out, "  Working dir: %s\n", info.Metadata.WorkingDir)
	}

	fmt.Fprintln(out)

	if info.Run != nil {
		writeRunInfo(out, info.Run)
	}

	if len(info.Config) > 0 {
		fmt.Fprintln(out, "Configuration")
		fmt.Fprintln(out, "-------------")

		if data, err := json.MarshalIndent(info.Config, "  ", "  "); err == nil {
			fmt.Fprintf(out, "  %s\n", data)
		}

		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Stack Trace")
	fmt.Fprintln(out, "-----------")

	for line := range strings.SplitSeq(info.StackTrace, "\n") {
		if line != "" {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}

	return nil
}

func writeRunInfo(out io.Writer, run *crashdump.RunInfo) {
	fmt.Fprintln(out, "Run")
	fmt.Fprintln(out, "---")
	fmt.Fprintf(out, "  Command: %s %s\n", run.Command, strings.Join(run.Args, " "))

	if run.Chain != "" {
		fmt.Fprintf(out, "  Chain: %s\n", run.Chain)
	}

	if len(run.Slots) > 0 {
		fmt.Fprintf(out, "  Slots: %s\n", strings.Join(run.Slots, ", "))
	}

	if run.State != "" {
		fmt.Fprintf(out, "  State: %s\n", run.State)
	}

	fmt.Fprintln(out)
}

func runCrashClean(cmd *cobra.Command, _ []string) error {
	cfg, store, err := openCrashStore(cmd)
	if err != nil {
		return err
	}

	maxDumps := cfg.GetCrashDump().MaxDumps
	maxAge := cfg.GetCrashDump().MaxAge.ToDuration()
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Directory: %s\n", store.DumpDir())
	fmt.Fprintf(out, "Retention: %d dumps, %s age\n", maxDumps, formatDuration(maxAge))

	if !dryRun {
		removed, err := store.Prune(maxDumps, maxAge)
		if err != nil {
			return errors.Wrap(err, "failed to prune crash dumps")
		}

		fmt.Fprintf(out, "Removed: %d dump(s)\n", removed)

		return nil
	}

	stale, err := store.Stale(maxDumps, maxAge)
	if err != nil {
		return errors.Wrap(err, "failed to list crash dumps")
	}

	if len(stale) == 0 {
		fmt.Fprintln(out, "No dumps would be removed.")

		return nil
	}

	fmt.Fprintf(out, "Would remove %d dump(s):\n", len(stale))

	now := time.Now()
	for _, summary := range stale {
		fmt.Fprintf(out, "  - %s (age: %s)\n", summary.ID, formatDuration(now.Sub(summary.Timestamp)))
	}

	return nil
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return unlimitedStr
	}

	return durafmt.Parse(d).LimitFirstN(durationDisplayUnits).String()
}
