package main

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	internalconfig "github.com/smykla-skalski/plughost/internal/config"
	"github.com/smykla-skalski/plughost/internal/report"
	"github.com/smykla-skalski/plughost/internal/schema"
)

var (
	globalFlag    bool
	forceFlag     bool
	showFormat    string
	schemaOutput  string
	schemaCompact bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage plughost configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write a configuration file with the default values.

By default, creates a project configuration file (.plughost/config.toml).
Use --global or -g to create the global configuration file
($XDG_CONFIG_HOME/plughost/config.toml).

Use --force to overwrite an existing configuration file.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after merging defaults, the global and project
files, and PLUGHOST_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON Schema for configuration",
	Long: `Generate a JSON Schema (Draft 2020-12) for the plughost configuration format.

Examples:
  plughost config schema                           # Print to stdout
  plughost config schema --output schema.json      # Write to file
  plughost config schema --compact                 # Compact output`,
	Args: cobra.NoArgs,
	RunE: runConfigSchema,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configSchemaCmd)

	configInitCmd.Flags().BoolVarP(
		&globalFlag,
		"global",
		"g",
		false,
		"Initialize global configuration",
	)
	configInitCmd.Flags().BoolVar(
		&forceFlag,
		"force",
		false,
		"Overwrite existing configuration file",
	)

	configShowCmd.Flags().StringVarP(
		&showFormat,
		"output-format", "f",
		string(report.FormatYAML),
		"Output format (toml, json, yaml)",
	)

	configSchemaCmd.Flags().StringVarP(
		&schemaOutput,
		"output", "o",
		"",
		"Write schema to file instead of stdout",
	)
	configSchemaCmd.Flags().BoolVar(
		&schemaCompact,
		"compact",
		false,
		"Output compact JSON without indentation",
	)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	writer, err := internalconfig.NewWriter()
	if err != nil {
		return err
	}

	cfg := internalconfig.DefaultConfig()

	var path string

	if globalFlag {
		path, err = writer.WriteGlobal(cfg, forceFlag)
	} else {
		path, err = writer.WriteProject(cfg, forceFlag)
	}

	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)

	return nil
}

// formatTOML is accepted by config show only.
const formatTOML = "toml"

func runConfigShow(cmd *cobra.Command, _ []string) error {
	var (
		format report.Format
		err    error
	)

	if showFormat != formatTOML {
		format, err = report.ParseFormat(showFormat)
		if err != nil {
			return err
		}

		if format == report.FormatTable {
			return errors.Wrap(report.ErrUnknownFormat, "configuration is printed as toml, json or yaml")
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if showFormat != formatTOML {
		return report.Encode(cmd.OutOrStdout(), format, cfg)
	}

	data, err := internalconfig.Marshal(cfg)
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)

	return err
}

func runConfigSchema(cmd *cobra.Command, _ []string) error {
	if schemaOutput != "" {
		path, err := schema.WriteFile(schemaOutput, !schemaCompact)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Schema written to %s\n", path)

		return nil
	}

	data, err := schema.GenerateJSON(!schemaCompact)
	if err != nil {
		return errors.Wrap(err, "generating schema")
	}

	_, err = cmd.OutOrStdout().Write(data)

	return err
}
