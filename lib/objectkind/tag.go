// Copyright 2026 The Habitude Authors
// SPDX-License-Identifier: Apache-2.0

package objectkind

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hubsync/habitude/lib/change"
	"github.com/hubsync/habitude/lib/herrors"
	"github.com/hubsync/habitude/lib/hubkey"
	"github.com/hubsync/habitude/lib/remote"
)

// InheritLink is one entry in a tag's inheritance chain.
type InheritLink struct {
	Parent   string
	Priority int
}

// RepoLink is one entry in a tag's external-repo list.
type RepoLink struct {
	Repo     string
	Priority int
}

// Tag is the build-tag object kind: ordered inheritance and
// external-repo links, a group→package-list map, extras, and the
// locked/maven/permission flags.
type Tag struct {
	base

	Arches     []string
	Locked     bool
	Maven      bool
	Permission string
	Extras     map[string]any
	Groups     map[string][]string
	Inherit    []InheritLink
	Repos      []RepoLink
}

func newTag(name string, fields map[string]any, origin herrors.Origin) (Entity, error) {
	t := &Tag{base: newBase("tag", name, origin)}

	var err error
	if t.Arches, err = stringListField(fields, "arches", origin); err != nil {
		return nil, err
	}
	if t.Locked, err = boolField(fields, "locked", origin, false); err != nil {
		return nil, err
	}
	if t.Maven, err = boolField(fields, "maven", origin, false); err != nil {
		return nil, err
	}
	if t.Permission, err = stringField(fields, "permission", origin); err != nil {
		return nil, err
	}
	if t.Extras, err = stringMapField(fields, "extras", origin); err != nil {
		return nil, err
	}
	if t.Groups, err = stringPackageListMapField(fields, "groups", origin); err != nil {
		return nil, err
	}

	inheritRaw, ok := fields["inheritance"].([]any)
	if ok {
		for index, raw := range inheritRaw {
			link, err := parseInheritLink(raw, origin, index)
			if err != nil {
				return nil, err
			}
			t.Inherit = append(t.Inherit, link)
		}
	}
	if err := checkUniquePriorities("inheritance", t.Inherit, func(l InheritLink) int { return l.Priority }, origin); err != nil {
		return nil, err
	}

	repoRaw, ok := fields["external-repos"].([]any)
	if ok {
		for index, raw := range repoRaw {
			link, err := parseRepoLink(raw, origin, index)
			if err != nil {
				return nil, err
			}
			t.Repos = append(t.Repos, link)
		}
	}
	if err := checkUniquePriorities("external-repos", t.Repos, func(l RepoLink) int { return l.Priority }, origin); err != nil {
		return nil, err
	}

	return t, nil
}

func parseInheritLink(raw any, origin herrors.Origin, index int) (InheritLink, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return InheritLink{}, fieldError(fmt.Sprintf("inheritance[%d]", index), origin, fmt.Errorf("expected a mapping, got %T", raw))
	}
	parent, err := requiredStringField(m, "parent-name", origin)
	if err != nil {
		return InheritLink{}, err
	}
	priority, err := intField(m, "priority", origin, 0)
	if err != nil {
		return InheritLink{}, err
	}
	return InheritLink{Parent: parent, Priority: priority}, nil
}

func parseRepoLink(raw any, origin herrors.Origin, index int) (RepoLink, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return RepoLink{}, fieldError(fmt.Sprintf("external-repos[%d]", index), origin, fmt.Errorf("expected a mapping, got %T", raw))
	}
	repo, err := requiredStringField(m, "repo-name", origin)
	if err != nil {
		return RepoLink{}, err
	}
	priority, err := intField(m, "priority", origin, 0)
	if err != nil {
		return RepoLink{}, err
	}
	return RepoLink{Repo: repo, Priority: priority}, nil
}

func checkUniquePriorities[T any](field string, links []T, priorityOf func(T) int, origin herrors.Origin) error {
	seen := make(map[int]bool, len(links))
	for _, link := range links {
		p := priorityOf(link)
		if seen[p] {
			return fieldError(field, origin, fmt.Errorf("duplicate priority %d", p))
		}
		seen[p] = true
	}
	return nil
}

func inheritSlot(parent string) string { return deferrable("inherit:" + parent) }
func repoSlot(repo string) string      { return deferrable("repo:" + repo) }

// DependencyKeys implements Entity.
func (t *Tag) DependencyKeys() []DependencySlot {
	slots := make([]DependencySlot, 0, len(t.Inherit)+len(t.Repos)+1)
	for _, link := range t.Inherit {
		slots = append(slots, DependencySlot{
			Target: hubkey.Key{Kind: "tag", Name: link.Parent},
			Slot:   inheritSlot(link.Parent),
		})
	}
	for _, link := range t.Repos {
		slots = append(slots, DependencySlot{
			Target: hubkey.Key{Kind: "external-repo", Name: link.Repo},
			Slot:   repoSlot(link.Repo),
		})
	}
	if t.Permission != "" {
		slots = append(slots, DependencySlot{
			Target: hubkey.Key{Kind: "permission", Name: t.Permission},
			Slot:   "permission",
		})
	}
	return slots
}

// CanDefer implements Entity: inheritance and external-repo edges may
// be dropped to break a cycle; the permission reference may not.
func (t *Tag) CanDefer(slot string) bool { return isDeferrable(slot) }

// Split implements Entity.
func (t *Tag) Split(dropSlots map[string]bool) (Entity, Entity) {
	primary := &Tag{base: t.base, Arches: t.Arches, Locked: t.Locked, Maven: t.Maven,
		Permission: t.Permission, Extras: t.Extras, Groups: t.Groups}
	deferred := &deferredUpdate{base: newBase(DeferredPrefix+"tag", t.key.Name, t.origin), primary: t.key}

	for _, link := range t.Inherit {
		if dropSlots[inheritSlot(link.Parent)] {
			deferred.inherit = append(deferred.inherit, link)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "tag", Name: link.Parent})
		} else {
			primary.Inherit = append(primary.Inherit, link)
		}
	}
	for _, link := range t.Repos {
		if dropSlots[repoSlot(link.Repo)] {
			deferred.repos = append(deferred.repos, link)
			deferred.deps = append(deferred.deps, hubkey.Key{Kind: "external-repo", Name: link.Repo})
		} else {
			primary.Repos = append(primary.Repos, link)
		}
	}
	deferred.deps = append(deferred.deps, primary.Key())

	return primary, deferred
}

// EnqueueRead implements change.Source. One multicall carries the
// tag's existence probe plus every supporting read; a non-existent
// tag's supporting reads simply come back empty and are ignored by
// Compare, trading a few wasted calls against a real koji hub for the
// simplicity of a single read phase.
func (t *Tag) EnqueueRead(batch remote.Batch) []*remote.Promise {
	batch.Associate(t.key.Kind, t.key.Name)
	return []*remote.Promise{
		batch.Submit(remote.CallDescriptor{Method: "getTag", PositionalArgs: []any{t.key.Name}, NamedArgs: map[string]any{"strict": false}}),
		batch.Submit(remote.CallDescriptor{Method: "getTagGroups", PositionalArgs: []any{t.key.Name}}),
		batch.Submit(remote.CallDescriptor{Method: "getInheritanceData", PositionalArgs: []any{t.key.Name}}),
		batch.Submit(remote.CallDescriptor{Method: "getTagExternalRepos", PositionalArgs: []any{t.key.Name}}),
	}
}

// Compare implements change.Source.
func (t *Tag) Compare(reads []*remote.Promise) ([]*change.Change, error) {
	tagResult, err := reads[0].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: err}
	}

	var changes []*change.Change

	if tagResult == nil {
		changes = append(changes, t.createChange())
		// createTag sets the scalar fields; inheritance, external
		// repos, and groups are diffed against an empty observed
		// state so a brand new tag receives all of them.
		changes = append(changes, t.inheritanceChanges(nil)...)
		changes = append(changes, t.repoChanges(nil)...)
		changes = append(changes, t.groupChanges(nil)...)
		return changes, nil
	}

	observed, ok := tagResult.(map[string]any)
	if !ok {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: fmt.Errorf("getTag returned %T", tagResult)}
	}

	changes = append(changes, t.fieldChanges(observed)...)

	inheritResult, err := reads[2].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: err}
	}
	changes = append(changes, t.inheritanceChanges(asAnyList(inheritResult))...)

	repoResult, err := reads[3].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: err}
	}
	changes = append(changes, t.repoChanges(asAnyList(repoResult))...)

	groupResult, err := reads[1].Result()
	if err != nil {
		return nil, &herrors.ChangeReadError{Kind: t.key.Kind, Name: t.key.Name, Cause: err}
	}
	changes = append(changes, t.groupChanges(asAnyList(groupResult))...)

	return changes, nil
}

func asAnyList(v any) []any {
	items, _ := v.([]any)
	return items
}

func (t *Tag) createChange() *change.Change {
	name := t.key.Name
	params := map[string]any{
		"arches":     strings.Join(t.Arches, " "),
		"locked":     t.Locked,
		"maven":      t.Maven,
		"permission": t.Permission,
	}
	return &change.Change{
		Op:          "create-object",
		Parameters:  params,
		Description: fmt.Sprintf("create tag %q", name),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{
				Method:         "createTag",
				PositionalArgs: []any{name},
				NamedArgs:      params,
			})
		},
	}
}

func (t *Tag) fieldChanges(observed map[string]any) []*change.Change {
	var changes []*change.Change
	name := t.key.Name

	if observedLocked, _ := observed["locked"].(bool); observedLocked != t.Locked {
		locked := t.Locked
		changes = append(changes, &change.Change{
			Op:          "set-field",
			Parameters:  map[string]any{"field": "locked", "value": locked},
			Description: fmt.Sprintf("set tag %q locked=%v", name, locked),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "editTag2", PositionalArgs: []any{name}, NamedArgs: map[string]any{"locked": locked}})
			},
		})
	}

	observedPerm, _ := observed["perm"].(string)
	if observedPerm != t.Permission {
		perm := t.Permission
		changes = append(changes, &change.Change{
			Op:          "set-field",
			Parameters:  map[string]any{"field": "permission", "value": perm},
			Description: fmt.Sprintf("set tag %q permission=%q", name, perm),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "editTag2", PositionalArgs: []any{name}, NamedArgs: map[string]any{"perm": perm}})
			},
		})
	}

	observedArches, _ := observed["arches"].(string)
	desiredArches := strings.Join(t.Arches, " ")
	if observedArches != desiredArches {
		changes = append(changes, &change.Change{
			Op:          "set-field",
			Parameters:  map[string]any{"field": "arches", "value": desiredArches},
			Description: fmt.Sprintf("set tag %q arches=%q", name, desiredArches),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "editTag2", PositionalArgs: []any{name}, NamedArgs: map[string]any{"arches": desiredArches}})
			},
		})
	}

	observedMaven, _ := observed["maven_support"].(bool)
	if observedMaven != t.Maven {
		maven := t.Maven
		changes = append(changes, &change.Change{
			Op:          "set-field",
			Parameters:  map[string]any{"field": "maven", "value": maven},
			Description: fmt.Sprintf("set tag %q maven_support=%v", name, maven),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{Method: "editTag2", PositionalArgs: []any{name}, NamedArgs: map[string]any{"maven_support": maven}})
			},
		})
	}

	if len(t.Extras) > 0 {
		observedExtra, _ := observed["extra"].(map[string]any)
		if !mapsEqual(observedExtra, t.Extras) {
			extras := t.Extras
			changes = append(changes, &change.Change{
				Op:          "set-field",
				Parameters:  map[string]any{"field": "extras", "value": extras},
				Description: fmt.Sprintf("set tag %q extras", name),
				Submit: func(batch remote.Batch) *remote.Promise {
					return batch.Submit(remote.CallDescriptor{Method: "editTag2", PositionalArgs: []any{name}, NamedArgs: map[string]any{"extra": extras}})
				},
			})
		}
	}

	return changes
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if other, ok := b[k]; !ok || fmt.Sprint(other) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

// inheritanceChanges emits a single set-inheritance change carrying
// the full desired chain when it differs from observed, following the
// original implementation's setInheritanceData(name, full-list) call
// shape rather than per-link edits. A tag that declares no
// inheritance gets no change, whatever inheritance is observed.
func (t *Tag) inheritanceChanges(observed []any) []*change.Change {
	desired := make([]InheritLink, len(t.Inherit))
	copy(desired, t.Inherit)
	sort.Slice(desired, func(i, j int) bool { return desired[i].Priority < desired[j].Priority })

	if inheritanceMatches(desired, observed) {
		return nil
	}
	if len(desired) == 0 {
		return nil
	}

	name := t.key.Name
	entries := make([]map[string]any, len(desired))
	for i, link := range desired {
		entries[i] = map[string]any{
			"parent_name":  link.Parent,
			"priority":     link.Priority,
			"intransitive": false,
			"maxdepth":     nil,
			"noconfig":     false,
			"pkg_filter":   "",
		}
	}

	return []*change.Change{{
		Op:          "set-inheritance",
		Parameters:  map[string]any{"entries": entries},
		Description: fmt.Sprintf("set tag %q inheritance (%d link(s))", name, len(entries)),
		Submit: func(batch remote.Batch) *remote.Promise {
			return batch.Submit(remote.CallDescriptor{
				Method:         "setInheritanceData",
				PositionalArgs: []any{name, entries},
			})
		},
	}}
}

func inheritanceMatches(desired []InheritLink, observed []any) bool {
	if len(desired) != len(observed) {
		return false
	}
	for i, link := range desired {
		entry, ok := observed[i].(map[string]any)
		if !ok {
			return false
		}
		if entry["parent_name"] != link.Parent {
			return false
		}
		if p, ok := entry["priority"].(int); !ok || p != link.Priority {
			return false
		}
	}
	return true
}

func (t *Tag) repoChanges(observed []any) []*change.Change {
	observedRepos := make(map[string]bool, len(observed))
	for _, raw := range observed {
		if entry, ok := raw.(map[string]any); ok {
			if name, ok := entry["external_repo_name"].(string); ok {
				observedRepos[name] = true
			}
		}
	}

	var changes []*change.Change
	name := t.key.Name
	for _, link := range t.Repos {
		if observedRepos[link.Repo] {
			continue
		}
		repo, priority := link.Repo, link.Priority
		changes = append(changes, &change.Change{
			Op:          "add-member",
			Parameters:  map[string]any{"repo": repo, "priority": priority},
			Description: fmt.Sprintf("add external repo %q to tag %q", repo, name),
			Submit: func(batch remote.Batch) *remote.Promise {
				return batch.Submit(remote.CallDescriptor{
					Method:         "addExternalRepoToTag",
					PositionalArgs: []any{name, repo},
					NamedArgs:      map[string]any{"priority": priority, "merge_mode": "koji"},
				})
			},
		})
	}
	return changes
}

func (t *Tag) groupChanges(observed []any) []*change.Change {
	observedGroups := make(map[string]map[string]bool)
	for _, raw := range observed {
		entry, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		groupName, _ := entry["name"].(string)
		packages := make(map[string]bool)
		if pkgList, ok := entry["packagelist"].([]any); ok {
			for _, p := range pkgList {
				if pkg, ok := p.(map[string]any); ok {
					if pname, ok := pkg["package"].(string); ok {
						packages[pname] = true
					}
				}
			}
		}
		observedGroups[groupName] = packages
	}

	var changes []*change.Change
	name := t.key.Name
	for _, groupName := range sortedKeys(t.Groups) {
		packages := t.Groups[groupName]
		observedPackages, groupExists := observedGroups[groupName]
		if !groupExists {
			gn := groupName
			changes = append(changes, &change.Change{
				Op:          "add-member",
				Parameters:  map[string]any{"group": gn},
				Description: fmt.Sprintf("create group %q on tag %q", gn, name),
				Submit: func(batch remote.Batch) *remote.Promise {
					return batch.Submit(remote.CallDescriptor{
						Method:         "groupListAdd",
						PositionalArgs: []any{name, gn},
						NamedArgs:      map[string]any{"description": nil, "block": false, "force": true},
					})
				},
			})
			observedPackages = map[string]bool{}
		}

		for _, pkg := range packages {
			if observedPackages[pkg] {
				continue
			}
			gn, pn := groupName, pkg
			changes = append(changes, &change.Change{
				Op:          "add-member",
				Parameters:  map[string]any{"group": gn, "package": pn},
				Description: fmt.Sprintf("add package %q to group %q on tag %q", pn, gn, name),
				Submit: func(batch remote.Batch) *remote.Promise {
					return batch.Submit(remote.CallDescriptor{
						Method:         "groupPackageListAdd",
						PositionalArgs: []any{name, gn, pn},
						NamedArgs:      map[string]any{"block": false, "force": true},
					})
				},
			})
		}
	}
	return changes
}
