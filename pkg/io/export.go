package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sbhasm/pkg/pipeline"
)

// WriteResult encodes res as indented JSON and writes it to w.
// The output can be re-imported with [ReadResult].
func WriteResult(res *pipeline.Result, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResult writes res to a JSON file at path.
// This is a convenience wrapper around [WriteResult] for file-based output.
func ExportResult(res *pipeline.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteResult(res, f)
}
