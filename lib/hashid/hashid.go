// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

// Package hashid derives short, stable identifiers from document and
// template content using domain-separated BLAKE3 keyed hashing. These
// identifiers are never sent to the remote hub. No other package in
// this module calls hashid.
package hashid

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ID is a 16-byte digest, printed as 32 hex characters in diagnostics.
type ID [16]byte

func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// domainKey is a 32-byte key for BLAKE3 keyed hashing. Domain
// separation ensures the same bytes hash differently depending on
// what kind of content they represent, so a trace-entry ID can never
// collide with a template-body ID even for identical input bytes.
type domainKey [32]byte

var (
	traceDomainKey = domainKey{
		'h', 'a', 'b', 'i', 't', 'u', 'd', 'e', '.', 't', 'r', 'a', 'c', 'e',
		0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	templateBodyDomainKey = domainKey{
		'h', 'a', 'b', 'i', 't', 'u', 'd', 'e', '.', 't', 'e', 'm', 'p', 'l', 'a', 't',
		'e', '.', 'b', 'o', 'd', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	documentDomainKey = domainKey{
		'h', 'a', 'b', 'i', 't', 'u', 'd', 'e', '.', 'd', 'o', 'c', 'u', 'm', 'e', 'n',
		't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// TraceID derives a deterministic identifier for an expansion trace's
// text.
func TraceID(traceText string) ID {
	return keyedHash(traceDomainKey, []byte(traceText))
}

// TemplateBodyID derives a deterministic identifier for a template's
// rendering body; identical bodies get identical IDs.
func TemplateBodyID(body []byte) ID {
	return keyedHash(templateBodyDomainKey, body)
}

// DocumentID derives a deterministic identifier for a raw document's
// serialized bytes.
func DocumentID(raw []byte) ID {
	return keyedHash(documentDomainKey, raw)
}

func keyedHash(key domainKey, data []byte) ID {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		// NewKeyed only fails on a key of the wrong length, which
		// domainKey's fixed array size makes impossible.
		panic("hashid: invalid domain key length")
	}
	hasher.Write(data)

	var full [32]byte
	hasher.Digest().Read(full[:])

	var id ID
	copy(id[:], full[:16])
	return id
}
