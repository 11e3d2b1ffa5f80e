// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"
	"regexp"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/remote"
)

var urlPattern = regexp.MustCompile(`^https?://`)

// ExternalRepo is the external-repo object kind: a single http(s) URL,
// with no outgoing dependencies.
type ExternalRepo struct {
	base
	unsupportedSplit

	URL string
}

func newExternalRepo(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	url, err := requiredStringField(fields, "url", origin)
	if err != nil {
		return nil, err
	}
	if !urlPattern.MatchString(url) {
		return nil, fieldError("url", origin, fmt.Errorf("url must start with http:// or https://"))
	}
	return &ExternalRepo{base: newBase("external-repo", name, origin), URL: url}, nil
}

// DependencyKeys implements Entity: external repos have no edges.
func (r *ExternalRepo) DependencyKeys() []DependencySlot { return nil }

// EnqueueRead implements change.Source.
func (r *ExternalRepo) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(r.key.Kind, r.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getExternalRepo", PositionalArgs: []any{r.key.Name}, NamedArgs: map[string]any{"strict": false}}),
	}
}

// Compare implements change.Source.
func (r *ExternalRepo) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: r.key.Kind, Name: r.key.Name, Cause: err}
	}

	name, url := r.key.Name, r.URL

	if result == nil {
		return []*change.Change{{
			Op:          "create-object",
			Parameters:  map[string]any{"url": url},
			Description: fmt.Sprintf("create external repo %q with url %q", name, url),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "createExternalRepo", PositionalArgs: []any{name, url}})
			},
		}}, nil
	}

	info, ok := result.(map[string]any)
	if !ok {
		return nil, &herrors.ChangeReadError{Kind: r.key.Kind, Name: r.key.Name, Cause: fmt.Errorf("getExternalRepo returned %T", result)}
	}

	if info["url"] == url {
		return nil, nil
	}

	return []*change.Change{{
		Op:          "set-field",
		Parameters:  map[string]any{"field": "url", "value": url},
		Description: fmt.Sprintf("set external repo %q url to %q", name, url),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "editExternalRepo", PositionalArgs: []any{name}, NamedArgs: map[string]any{"url": url}})
		},
	}}, nil
}

// Split implements Entity: ExternalRepo declares no deferrable slots.
func (e *ExternalRepo) Split(map[string]bool) (Entity, Entity) {
	e.splitPanic(e.key)
	return nil, nil
}
