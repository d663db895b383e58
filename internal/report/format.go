// Package report renders plugin descriptions, discovery listings and run
// summaries for the command line.
package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects how a report is written.
type Format string

const (
	// FormatTable renders tables for people.
	FormatTable Format = "table"

	// FormatJSON writes indented JSON.
	FormatJSON Format = "json"

	// FormatYAML writes YAML.
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names.
func Formats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML)}
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q (want one of %s)", s, strings.Join(Formats(), ", "))
	}
}

// Encode writes v as JSON or YAML. Tables are rendered by the Render functions.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return errors.Wrap(enc.Encode(v), "encoding JSON")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)

		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encoding YAML")
		}

		return errors.Wrap(enc.Close(), "encoding YAML")
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q cannot be encoded", format)
	}
}
