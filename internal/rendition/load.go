// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package rendition

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ladderFile is the on-disk layout of a rendition ladder.
type ladderFile struct {
	Renditions []Rendition `yaml:"renditions"`
}

// LoadFile reads a YAML ladder ("renditions: [...]"). Unknown keys are rejected
// so that a misspelled bitrate field cannot silently fall back to empty.
func LoadFile(path string) ([]Rendition, error) {
	// #nosec G304 -- ladder paths are provided by the operator via CLI/config
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read rendition file: %w", err)
	}
	return Decode(data)
}

// Decode parses a YAML ladder document and validates it.
func Decode(data []byte) ([]Rendition, error) {
	var doc ladderFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty rendition file", ErrInvalidRendition)
		}
		return nil, fmt.Errorf("parse rendition file: %w", err)
	}
	if err := Validate(doc.Renditions); err != nil {
		return nil, err
	}
	return doc.Renditions, nil
}

// Encode renders a ladder in the same layout LoadFile accepts.
func Encode(w io.Writer, list []Rendition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ladderFile{Renditions: list}); err != nil {
		return err
	}
	return enc.Close()
}
