package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/couchcryptid/safestride-client/internal/export"
)

const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// tableMode maps the --format flag to a table mode. ok is false for json.
func tableMode() (mode export.Mode, ok bool, err error) {
	switch rootFlags.format {
	case formatTable:
		return export.ASCII, true, nil
	case formatMarkdown:
		return export.Markdown, true, nil
	case formatJSON:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("unknown format %q (want table, markdown or json)", rootFlags.format)
	}
}

// render writes v as JSON, or the table built by table in the other formats.
func render(w io.Writer, v any, table func(export.Mode) string) error {
	mode, isTable, err := tableMode()
	if err != nil {
		return err
	}
	if isTable {
		_, err := fmt.Fprintln(w, table(mode))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeFile writes a document produced by fn to path.
func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fn(f)
}
