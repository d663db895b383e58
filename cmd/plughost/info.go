package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/smykla-skalski/plughost/internal/color"
	"github.com/smykla-skalski/plughost/internal/config/factory"
	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/preset"
	"github.com/smykla-skalski/plughost/internal/report"
)

var (
	infoFormat string
	savePreset string
)

var infoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show plugin information",
	Long: `Open a plugin and print its diagnostic dump: identity, channel counts,
parameters with their current values, programs and, for shell plugins, the
hosted sub-plugins.

NAME accepts the same name[:SUBID] form as a chain token.

Examples:
  plughost info mrs_gain
  plughost info reverb --output-format json
  plughost info reverb --save-preset reverb-default.fxp`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVar(&pluginRoot, "plugin-root", "", "Directory searched before the default plugin locations")
	infoCmd.Flags().StringVarP(
		&infoFormat,
		"output-format", "f",
		string(report.FormatTable),
		"Output format (table, json, yaml)",
	)
	infoCmd.Flags().StringVar(
		&savePreset,
		"save-preset",
		"",
		"Save the current parameters as an .fxp program file",
	)
}

func runInfo(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(infoFormat)
	if err != nil {
		return err
	}

	cfg, log, closeLog, err := setup(cmd)
	if err != nil {
		return err
	}

	defer func() { _ = closeLog() }()

	settings, err := cfg.GetAudio().Settings()
	if err != nil {
		return err
	}

	registry, _ := factory.NewPipelineFactory(log).Loaders(cfg, settings)
	defer func() { _ = registry.Close() }()

	p, err := registry.Load(args[0])
	if err != nil {
		return err
	}

	defer func() { _ = p.Close() }()

	if err := p.Open(cmd.Context()); err != nil {
		return err
	}

	p.DisplayInfo()

	if savePreset != "" {
		if err := saveProgram(p, savePreset); err != nil {
			return err
		}

		log.Info("saved preset", "path", savePreset)
	}

	out := cmd.OutOrStdout()
	desc := p.Describe()

	if format != report.FormatTable {
		return report.Encode(out, format, desc)
	}

	theme := color.NewTheme(color.Enabled(noColorFlag, out))
	fmt.Fprint(out, report.RenderDescription(desc, theme))

	return nil
}

func saveProgram(p plugin.Plugin, path string) error {
	src, ok := p.(preset.Source)
	if !ok {
		return errors.Wrapf(plugin.ErrUnsupportedFeature, "%s plugins cannot be saved as presets", p.Kind())
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	prog, err := preset.Capture(src, name)
	if err != nil {
		return err
	}

	return preset.Save(prog, path)
}
