// Package main provides the CLI entry point for plughost.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	internalconfig "github.com/smykla-skalski/plughost/internal/config"
	"github.com/smykla-skalski/plughost/internal/vst2"
	"github.com/smykla-skalski/plughost/internal/xdg"
	"github.com/smykla-skalski/plughost/pkg/config"
	"github.com/smykla-skalski/plughost/pkg/logger"
)

const (
	// ExitCodeCrash indicates an unexpected panic escaped a command.
	ExitCodeCrash = 3

	// defaultLogFile selects the log file under the XDG state directory.
	defaultLogFile = "default"
)

var (
	noColorFlag bool
	logLevel    string
	logFile     string
)

func main() {
	os.Exit(mainWithExitCode())
}

func mainWithExitCode() (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			handlePanic(r)

			exitCode = ExitCodeCrash
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		return 1
	}

	return 0
}

var rootCmd = &cobra.Command{
	Use:   "plughost",
	Short: "Audio plugin host",
	Long: `plughost loads VST2 audio plugins into a processing chain and runs audio and
MIDI through it, offline or paced to the wall clock.

Without a subcommand it behaves like "plughost run".`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		checkVersionFlag()
		vst2.SetHostVersion(version)
	},
	Args:              cobra.NoArgs,
	RunE:              runChain,
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(
		&noColorFlag,
		"no-color",
		false,
		"Disable colored output",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel,
		"log-level",
		internalconfig.DefaultLogLevel,
		"Log level (debug, info, warn, error)",
	)
	rootCmd.PersistentFlags().StringVar(
		&logFile,
		"log-file",
		"",
		"Append log lines to this file instead of stderr (\""+defaultLogFile+"\" uses the state directory)",
	)

	registerRunFlags(rootCmd)
}

// loadConfig loads the layered configuration. Only flags set on the command
// line override the files and the environment.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, _, err := loadConfigFiles(cmd)

	return cfg, err
}

// loadConfigFiles is loadConfig that also returns the files that were merged.
func loadConfigFiles(cmd *cobra.Command) (*config.Config, []string, error) {
	loader, err := internalconfig.NewKoanfLoader()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loader.Load(changedFlags(cmd.Flags()))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load configuration")
	}

	return cfg, loader.Files(), nil
}

func changedFlags(fs *pflag.FlagSet) map[string]any {
	flags := make(map[string]any)

	fs.Visit(func(f *pflag.Flag) {
		if f.Value.Type() == "bool" {
			if b, err := strconv.ParseBool(f.Value.String()); err == nil {
				flags[f.Name] = b

				return
			}
		}

		flags[f.Name] = f.Value.String()
	})

	return flags
}

// closeFunc releases a resource opened for a command.
type closeFunc func() error

// newLogger creates the logger described by the logging section.
func newLogger(cfg *config.Config) (logger.Logger, closeFunc, error) {
	level, err := logger.ParseLevel(cfg.GetLogging().Level)
	if err != nil {
		return nil, nil, err
	}

	path := cfg.GetLogging().File

	switch path {
	case "":
		// stderr stays open for the final error message.
		return logger.NewLogger(os.Stderr, level), noopClose, nil
	case defaultLogFile:
		if err := xdg.EnsureDir(xdg.StateDir()); err != nil {
			return nil, nil, err
		}

		path = xdg.LogFile()
	default:
		if path, err = xdg.ExpandPath(path); err != nil {
			return nil, nil, err
		}
	}

	log, err := logger.NewFileLogger(path, level)
	if err != nil {
		return nil, nil, err
	}

	return log, log.Close, nil
}

// setup loads the configuration and creates the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, logger.Logger, closeFunc, error) {
	cfg, files, err := loadConfigFiles(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	crashConfig = cfg

	log, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "failed to create logger")
	}

	log.Debug("configuration loaded", "files", strings.Join(files, string(os.PathListSeparator)))

	return cfg, log, closeLog, nil
}
