// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package docmodel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/hubsync/habitude/lib/herrors"
)

// LoadFile reads a single configuration file and returns its
// normalized documents. The format is chosen by extension: ".yaml"
// and ".yml" are parsed as a YAML document stream (one or more
// `---`-separated documents); ".json" and ".jsonc" are parsed as a
// single JSONC document with comments and trailing commas stripped
// before decoding.
func LoadFile(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return loadYAML(path, data)
	case ".json", ".jsonc":
		return loadJSONC(path, data)
	default:
		return nil, fmt.Errorf("%s: unrecognized document extension %q", path, ext)
	}
}

func loadYAML(path string, data []byte) ([]Document, error) {
	return ParseYAMLStream(data, herrors.Origin{File: path})
}

// ParseYAMLStream decodes a `---`-separated YAML document stream and
// normalizes each document, attaching base to each with its own line
// number. Used both for on-disk YAML files and for the document
// sequence a rendered template body produces.
func ParseYAMLStream(data []byte, base herrors.Origin) ([]Document, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var docs []Document
	for {
		var node yaml.Node
		if err := decoder.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &herrors.DocumentParseError{
				Origin: base,
				Cause:  err,
			}
		}

		var raw any
		if err := node.Decode(&raw); err != nil {
			return nil, &herrors.DocumentParseError{
				Origin: herrors.Origin{File: base.File, Line: node.Line, Trace: base.Trace},
				Cause:  err,
			}
		}

		normalized, err := Normalize(raw, herrors.Origin{File: base.File, Line: node.Line, Trace: base.Trace})
		if err != nil {
			return nil, err
		}
		docs = append(docs, normalized...)
	}

	return docs, nil
}

func loadJSONC(path string, data []byte) ([]Document, error) {
	stripped := jsonc.ToJSON(data)

	// JSON is a subset of YAML; decoding through the YAML unmarshaler
	// gives map[string]any results consistent with Normalize's
	// expectations without a second decoding code path.
	var raw any
	if err := yaml.Unmarshal(stripped, &raw); err != nil {
		return nil, &herrors.DocumentParseError{
			Origin: herrors.Origin{File: path},
			Cause:  err,
		}
	}

	// A JSONC file may itself be a list of documents, or a single
	// document; treat both uniformly.
	var rawDocs []any
	if list, ok := raw.([]any); ok {
		rawDocs = list
	} else {
		rawDocs = []any{raw}
	}

	var docs []Document
	for _, entry := range rawDocs {
		normalized, err := Normalize(entry, herrors.Origin{File: path})
		if err != nil {
			return nil, err
		}
		docs = append(docs, normalized...)
	}

	return docs, nil
}

// LoadDir walks a directory recursively, loading every recognized
// document file beneath it in deterministic (sorted) path order.
func LoadDir(root string) ([]Document, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json", ".jsonc":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	var docs []Document
	for _, path := range paths {
		fileDocs, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}
