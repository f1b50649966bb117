// Package pipeline wraps the core OMTSF algorithms (internal/validation,
// internal/diffengine, internal/merge, internal/redaction, internal/graph)
// with the ambient concerns a CLI invocation needs: file I/O, component
// logging, batch fan-out, and the query cache. Core packages stay pure —
// only this package and cmd/omtsf reach into internal/logging.
package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	omtsferrors "github.com/BayFX/omtsf-sub000/internal/errors"
	"github.com/BayFX/omtsf-sub000/internal/omtsf"
)

// LoadFile reads and parses an OMTSF JSON document from path.
func LoadFile(path string) (*omtsf.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var file omtsf.File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, omtsferrors.Wrapf(err, omtsferrors.ErrorTypeParseFailed, omtsferrors.SeverityCritical,
			"parse %s", path)
	}
	return &file, nil
}

// LoadFiles reads and parses every path in order, stopping at the first
// failure.
func LoadFiles(paths []string) ([]*omtsf.File, error) {
	files := make([]*omtsf.File, 0, len(paths))
	for _, p := range paths {
		f, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

// SaveFile writes file as indented JSON to path, or to stdout when path
// is empty.
func SaveFile(file *omtsf.File, path string) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
