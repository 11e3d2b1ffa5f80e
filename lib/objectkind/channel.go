// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/remote"
)

// Channel is the build channel object kind: a host list and an
// exact-hosts policy. Note the declaration-level host↔channel edge is
// intentionally mutual with Host's channel↔host edge.
type Channel struct {
	base
	unsupportedSplit

	Hosts      []string
	ExactHosts bool
}

func newChannel(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	c := &Channel{base: newBase("channel", name, origin)}
	var err error
	if c.Hosts, err = stringListField(fields, "hosts", origin); err != nil {
		return nil, err
	}
	if c.ExactHosts, err = boolField(fields, "exact-hosts", origin, false); err != nil {
		return nil, err
	}
	return c, nil
}

// DependencyKeys implements Entity.
func (c *Channel) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(c.Hosts))
	for _, h := range c.Hosts {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "host", Name: h}, Slot: "host:" + h})
	}
	return slots
}

// EnqueueRead implements change.Source.
func (c *Channel) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(c.key.Kind, c.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getChannel", PositionalArgs: []any{c.key.Name}, NamedArgs: map[string]any{"strict": false}}),
		batch.Submit(remote.CallDescriptor{Method: "listHosts", NamedArgs: map[string]any{"channelID": c.key.Name}}),
	}
}

// Compare implements change.Source.
func (c *Channel) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	name := c.key.Name

	channelResult, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: c.key.Kind, Name: name, Cause: err}
	}

	var changes []*change.Change
	if channelResult == nil {
		changes = append(changes, &change.Change{
			Op:          "create-object",
			Description: fmt.Sprintf("create channel %q", name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "createChannel", PositionalArgs: []any{name, nil}})
			},
		})
		for _, h := range c.Hosts {
			changes = append(changes, c.addHostChange(h))
		}
		return changes, nil
	}

	hostsResult, err := reads[1].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: c.key.Kind, Name: name, Cause: err}
	}
	observedHosts := stringSet(asStringList(hostsResult))
	for _, h := range c.Hosts {
		if !observedHosts[h] {
			changes = append(changes, c.addHostChange(h))
		}
	}
	if c.ExactHosts {
		desired := stringSet(c.Hosts)
		for h := range observedHosts {
			if !desired[h] {
				changes = append(changes, c.removeHostChange(h))
			}
		}
	}
	return changes, nil
}

func (c *Channel) addHostChange(host string) *change.Change {
	name := c.key.Name
	return &change.Change{
		Op:          "add-member",
		Parameters:  map[string]any{"host": host},
		Description: fmt.Sprintf("add host %q to channel %q", host, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "addHostToChannel", PositionalArgs: []any{host, name}})
		},
	}
}

func (c *Channel) removeHostChange(host string) *change.Change {
	name := c.key.Name
	return &change.Change{
		Op:          "remove-member",
		Parameters:  map[string]any{"host": host},
		Description: fmt.Sprintf("remove host %q from channel %q", host, name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{Method: "removeHostFromChannel", PositionalArgs: []any{host, name}})
		},
	}
}

// Split implements Entity: Channel declares no deferrable slots.
func (c *Channel) Split(map[string]bool) (Entity, Entity) {
	c.splitPanic(c.key)
	return nil, nil
}
