// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hubsync/habitude/lib/namespace"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing manifest: %v", err)
	}
	return path
}

func TestLoadDocumentsReadsASingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, "tags.yaml", "type: tag\nname: build\narches: [x86_64]\n")

	docs, err := loadDocuments([]string{path})
	if err != nil {
		t.Fatalf("loadDocuments: %v", err)
	}
	if len(docs) != 1 || docs[0].Type != "tag" || docs[0].Name != "build" {
		t.Fatalf("loadDocuments = %+v", docs)
	}
}

func TestLoadDocumentsWalksADirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", "type: tag\nname: a\n")
	writeManifest(t, dir, "b.yaml", "type: tag\nname: b\n")

	docs, err := loadDocuments([]string{dir})
	if err != nil {
		t.Fatalf("loadDocuments: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("loadDocuments returned %d documents, want 2", len(docs))
	}
}

func TestLoadDocumentsMissingPathErrors(t *testing.T) {
	t.Parallel()

	if _, err := loadDocuments([]string{"/no/such/manifest.yaml"}); err == nil {
		t.Fatalf("expected an error for a missing path")
	}
}

func TestBuildNamespaceIngestsAndExpands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeManifest(t, dir, "tags.yaml", "type: tag\nname: build\narches: [x86_64]\n")

	docs, err := loadDocuments([]string{path})
	if err != nil {
		t.Fatalf("loadDocuments: %v", err)
	}

	ns, err := buildNamespace(docs, namespace.RedefineError, 64)
	if err != nil {
		t.Fatalf("buildNamespace: %v", err)
	}
	if len(ns.Expanded()) != 1 {
		t.Fatalf("expanded namespace has %d entries, want 1", len(ns.Expanded()))
	}
}

func TestParseKeysParsesEachArgument(t *testing.T) {
	t.Parallel()

	keys, err := parseKeys([]string{"tag:build", "host:builder-1"})
	if err != nil {
		t.Fatalf("parseKeys: %v", err)
	}
	if len(keys) != 2 || keys[0].Kind != "tag" || keys[1].Name != "builder-1" {
		t.Fatalf("parseKeys = %+v", keys)
	}
}

func TestParseKeysRejectsMalformedArgument(t *testing.T) {
	t.Parallel()

	if _, err := parseKeys([]string{"not-a-key"}); err == nil {
		t.Fatalf("expected an error for a malformed key")
	}
}
