package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smykla-skalski/plughost/internal/color"
	"github.com/smykla-skalski/plughost/internal/config/factory"
	"github.com/smykla-skalski/plughost/internal/plugin"
	"github.com/smykla-skalski/plughost/internal/report"
	"github.com/smykla-skalski/plughost/internal/vst2"
)

var listFormat string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available plugins",
	Long: `List the plugins found in every searched location.

Locations are searched in order: --plugin-root, then the platform's default
plugin directories. Internal plugins are always available.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&pluginRoot, "plugin-root", "", "Directory searched before the default plugin locations")
	listCmd.Flags().StringVarP(
		&listFormat,
		"output-format", "f",
		string(report.FormatTable),
		"Output format (table, json, yaml)",
	)
}

func runList(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(listFormat)
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

	registry, native := factory.NewPipelineFactory(log).Loaders(cfg, settings)
	defer func() { _ = registry.Close() }()

	listings := append([]vst2.LocationListing{{
		Location: plugin.InternalLocation,
		Plugins:  plugin.InternalNames(),
	}}, native.Locator().ListAvailable()...)

	for _, l := range listings {
		log.Debug("searched location", "location", l.Location, "plugins", len(l.Plugins), "marker", l.Marker)
	}

	out := cmd.OutOrStdout()

	if format != report.FormatTable {
		return report.Encode(out, format, listings)
	}

	theme := color.NewTheme(color.Enabled(noColorFlag, out))
	fmt.Fprint(out, report.RenderListing(listings, theme))

	return nil
}
