// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"testing"

	"github.com/hubsync/habitude/lib/namespace"
	"github.com/hubsync/habitude/lib/remote/fake"
)

func TestSourceFlagsPolicy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		redefine string
		want     namespace.RedefinePolicy
		wantErr  bool
	}{
		{redefine: "error", want: namespace.RedefineError},
		{redefine: "replace", want: namespace.RedefineReplace},
		{redefine: "merge", wantErr: true},
	}

	for _, c := range cases {
		source := sourceFlags{redefine: c.redefine}
		got, err := source.policy()
		if c.wantErr {
			if err == nil {
				t.Errorf("policy() for %q: expected an error", c.redefine)
			}
			continue
		}
		if err != nil {
			t.Errorf("policy() for %q: %v", c.redefine, err)
			continue
		}
		if got != c.want {
			t.Errorf("policy() for %q = %v, want %v", c.redefine, got, c.want)
		}
	}
}

func TestHubFlagsSessionDefaultsToFake(t *testing.T) {
	t.Parallel()

	hub := hubFlags{}
	session, err := hub.session(slog.Default())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, ok := session.(*fake.Session); !ok {
		t.Errorf("expected a fake.Session when no hub URL is set, got %T", session)
	}
}

func TestHubFlagsSessionExplicitFake(t *testing.T) {
	t.Parallel()

	hub := hubFlags{fake: true, hubURL: "https://koji.example.com/kojihub"}
	session, err := hub.session(slog.Default())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, ok := session.(*fake.Session); !ok {
		t.Errorf("expected --fake to take precedence over a hub URL, got %T", session)
	}
}
