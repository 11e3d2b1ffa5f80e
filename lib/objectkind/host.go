// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"
	"strings"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/remote"
)

// Host is the build host object kind: architectures, capacity, an
// enabled flag, channel membership, and an exact-channels policy.
type Host struct {
	base

	Arches        []string
	Capacity      float64
	Enabled       bool
	Channels      []string
	ExactChannels bool
}

func newHost(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	h := &Host{base: newBase("host", name, origin), Enabled: true}
	var err error
	if h.Arches, err = stringListField(fields, "arches", origin); err != nil {
		return nil, err
	}
	if raw, ok := fields["capacity"]; ok {
		switch v := raw.(type) {
		case float64:
			h.Capacity = v
		case int:
			h.Capacity = float64(v)
		default:
			return nil, fieldError("capacity", origin, fmt.Errorf("expected a number, got %T", raw))
		}
	}
	if h.Enabled, err = boolField(fields, "enabled", origin, true); err != nil {
		return nil, err
	}
	if h.Channels, err = stringListField(fields, "channels", origin); err != nil {
		return nil, err
	}
	if h.ExactChannels, err = boolField(fields, "exact-channels", origin, false); err != nil {
		return nil, err
	}
	return h, nil
}

func channelSlot(name string) string { return deferrable("channel:" + name) }

// DependencyKeys implements Entity.
func (h *Host) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(h.Channels))
	for _, c := range h.Channels {
		slots = append(slots, DependencySlot{Target: hubkey.Key{Kind: "channel", Name: c}, Slot: channelSlot(c)})
	}
	return slots
}

// CanDefer implements Entity.
func (h *Host) CanDefer(slot string) bool { return isDeferrable(slot) }

// Split implements Entity.
func (h *Host) Split(dropSlots map[string]bool) (Entity, Entity) {
	primary := &Host{base: h.base, Arches: h.Arches, Capacity: h.Capacity, Enabled: h.Enabled}
	deferred := &deferredHostChannels{base: newBase(DeferredPrefix+"host", h.key.Name, h.origin), primary: h.key}

	for _, c := range h.Channels {
		if dropSlots[channelSlot(c)] {
			deferred.addChannels = append(deferred.addChannels, c)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "channel", Name: c})
		} else {
			primary.Channels = append(primary.Channels, c)
		}
	}
	primary.ExactChannels = h.ExactChannels && len(primary.Channels) == len(h.Channels)

	deferred.deps = append(deferred.deps, primary.Key())
	return primary, deferred
}

// EnqueueRead implements change.Source.
func (h *Host) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(h.key.Kind, h.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getHost", PositionalArgs: []any{h.key.Name}}),
	}
}

// Compare implements change.Source. Per the original implementation,
// the host kind only ever creates: koji's editHost exists for manual
// tuning, but this tool does not reconcile an existing host's fields
// once it has been registered.
func (h *Host) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	result, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: h.key.Kind, Name: h.key.Name, Cause: err}
	}

	if result != nil {
		return nil, nil
	}

	name := h.key.Name
	arches := strings.Join(h.Arches, " ")
	return []*change.Change{{
		Op:          "create-object",
		Parameters:  map[string]any{"arches": h.Arches, "capacity": h.Capacity, "enabled": h.Enabled},
		Description: fmt.Sprintf("create host %q", name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{
				Method:         "addHost",
				PositionalArgs: []any{name, arches},
				NamedArgs:      map[string]any{"capacity": h.Capacity, "enabled": h.Enabled},
			})
		},
	}}, nil
}

// deferredHostChannels is the shadow produced when a host's channel
// membership must be deferred to break a cycle.
type deferredHostChannels struct {
	base
	unsupportedSplit

	primary     hubkey.Key
	deps        []hubkey.Key
	addChannels []string
}

func (d *deferredHostChannels) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(d.deps))
	for _, dep := range d.deps {
		slots = append(slots, DependencySlot{Target: dep, Slot: "shadow:" + dep.String()})
	}
	return slots
}

func (d *deferredHostChannels) Split(map[string]bool) (Entity, Entity) {
	d.splitPanic(d.key)
	return nil, nil
}

func (d *deferredHostChannels) EnqueueRead(remote.Batch) []*remote.Promise { return nil }

func (d *deferredHostChannels) Compare([]*remote.Promise) ([]*change.Change, error) {
	name := d.primary.Name
	changes := make([]*change.Change, 0, len(d.addChannels))
	for _, c := range d.addChannels {
		channel := c
		changes = append(changes, &change.Change{
			Op:          "add-member",
			Parameters:  map[string]any{"channel": channel},
			Description: fmt.Sprintf("add host %q to channel %q (deferred)", name, channel),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "addHostToChannel", PositionalArgs: []any{name, channel}})
			},
		})
	}
	return changes, nil
}
