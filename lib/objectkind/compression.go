// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"
	"io"

	kgzip "github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
)

// compressionCodecs names the compression codecs an archive-type
// declaration may request. Each constructor is exercised once
// against an io.Discard sink at validation time, so a typo or an
// unsupported codec name fails the document load instead of the
// eventual remote apply.
var compressionCodecs = map[string]func(io.Writer) (io.Closer, error){
	"gzip": func(w io.Writer) (io.Closer, error) { return kgzip.NewWriterLevel(w, kgzip.BestSpeed) },
	"zstd": func(w io.Writer) (io.Closer, error) { return zstd.NewWriter(w) },
	"s2":   func(w io.Writer) (io.Closer, error) { return s2.NewWriter(w), nil },
}

func validateCompression(name string) error {
	if name == "" {
		return nil
	}
	constructor, ok := compressionCodecs[name]
	if !ok {
		return fmt.Errorf("unsupported compression %q (known: gzip, zstd, s2)", name)
	}
	writer, err := constructor(io.Discard)
	if err != nil {
		return err
	}
	return writer.Close()
}
