package cli

import (
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// stdinPath selects standard input for file flags.
const stdinPath = "-"

// readJSON decodes the JSON document at path into dst. An empty path leaves
// dst untouched.
func readJSON(cmd *cobra.Command, path string, dst interface{}) error {
	if path == "" {
		return nil
	}

	var r io.Reader
	if path == stdinPath {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", displayName(path), err)
	}
	return nil
}

func displayName(path string) string {
	if path == stdinPath {
		return "stdin"
	}
	return path
}

// writeJSON writes v to the command's output as one JSON document.
func writeJSON(cmd *cobra.Command, v interface{}, pretty bool) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
