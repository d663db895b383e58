// Command schema-gen writes the config JSON Schema for publishing.
//
// Usage: schema-gen [DIR]
//
// DIR defaults to "schema".
package main

import (
	"fmt"
	"os"

	"github.com/smykla-skalski/plughost/internal/schema"
)

func main() {
	dir := "schema"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:gosec // published output
		fmt.Fprintf(os.Stderr, "schema-gen: %v\n", err)
		os.Exit(1)
	}

	path, err := schema.WriteFile(dir, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "schema-gen: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(path)
}
