// Package schema generates JSON Schema from the plughost config types.
package schema

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"

	"github.com/smykla-skalski/plughost/pkg/config"
)

const (
	schemaURI = "https://json-schema.org/draft/2020-12/schema"
	title     = "plughost configuration"

	// PublishedURL is where the generated schema is published.
	PublishedURL = "https://raw.githubusercontent.com/smykla-skalski/plughost/main/schema/" + Filename

	// Filename is the name of the generated schema file.
	Filename = "plughost.schema.json"
)

// Generate produces a JSON Schema from the config.Config struct.
func Generate() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		ExpandedStruct: true,
	}

	s := r.Reflect(&config.Config{})
	s.Version = schemaURI
	s.Title = title

	return s
}

// GenerateJSON produces a JSON Schema as bytes.
// When indent is true, the output is pretty-printed.
func GenerateJSON(indent bool) ([]byte, error) {
	s := Generate()

	var (
		data []byte
		err  error
	)

	if indent {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = json.Marshal(s)
	}

	if err != nil {
		return nil, errors.Wrap(err, "marshaling schema to JSON")
	}

	// Append trailing newline for file output.
	return append(data, '\n'), nil
}

// WriteFile writes the schema to path. When path is an existing directory the
// schema is written inside it as Filename. The written path is returned.
func WriteFile(path string, indent bool) (string, error) {
	data, err := GenerateJSON(indent)
	if err != nil {
		return "", err
	}

	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		path = filepath.Join(path, Filename)
	}

	//nolint:gosec // the schema is a public document
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing schema to %s", path)
	}

	return path, nil
}

// SchemaDirective returns the Taplo comment that binds a TOML file to the schema.
func SchemaDirective() string {
	return "#:schema " + PublishedURL
}
