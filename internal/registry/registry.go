/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package registry

import (
	"fmt"
	"sort"
)

// NamedValueKind is the non-workspace NamedValue kind every IsPolicy kind
// depends on (spec.md §4.1 invariant), regardless of whether the policy
// kind itself is workspace-scoped.
const NamedValueKind Kind = "NamedValue"

// Registry is the immutable, process-lifetime catalogue of resource kinds.
// Build it once with New and share the pointer; nothing on it is mutated
// after construction.
type Registry struct {
	defs  map[Kind]Definition
	order []Kind // insertion order, for deterministic iteration
}

// New validates and wraps a set of Definitions into a Registry. It enforces
// the registry-wide invariants from spec.md §3: a kind is at most one of
// {IsChild, IsComposite}, and every IsPolicy kind depends (directly, via
// DependenciesOf) on NamedValueKind, which New checks is itself
// registered whenever any policy kind is present.
func New(defs []Definition) (*Registry, error) {
	r := &Registry{defs: make(map[Kind]Definition, len(defs))}
	sawPolicy := false
	for _, d := range defs {
		if _, exists := r.defs[d.Kind]; exists {
			return nil, fmt.Errorf("registry: duplicate kind %q", d.Kind)
		}
		if d.IsChild() && d.IsComposite() {
			return nil, fmt.Errorf("registry: kind %q is both IsChild and IsComposite", d.Kind)
		}
		if d.IsPolicy() {
			sawPolicy = true
		}
		r.defs[d.Kind] = d
		r.order = append(r.order, d.Kind)
	}
	if sawPolicy {
		if _, ok := r.defs[NamedValueKind]; !ok {
			return nil, fmt.Errorf("registry: a policy kind is registered but %q is not", NamedValueKind)
		}
	}
	for _, d := range defs {
		if d.IsChild() {
			if _, ok := r.defs[d.Child.Parent]; !ok {
				return nil, fmt.Errorf("registry: kind %q has unknown parent %q", d.Kind, d.Child.Parent)
			}
		}
		if d.IsComposite() {
			if _, ok := r.defs[d.Composite.Primary]; !ok {
				return nil, fmt.Errorf("registry: kind %q has unknown primary %q", d.Kind, d.Composite.Primary)
			}
			if _, ok := r.defs[d.Composite.Secondary]; !ok {
				return nil, fmt.Errorf("registry: kind %q has unknown secondary %q", d.Kind, d.Composite.Secondary)
			}
		}
		if d.HasReference() {
			for ref := range d.Reference.Mandatory {
				if _, ok := r.defs[ref]; !ok {
					return nil, fmt.Errorf("registry: kind %q references unknown kind %q", d.Kind, ref)
				}
			}
			for ref := range d.Reference.Optional {
				if _, ok := r.defs[ref]; !ok {
					return nil, fmt.Errorf("registry: kind %q references unknown kind %q", d.Kind, ref)
				}
			}
		}
	}
	return r, nil
}

// Get returns the Definition for kind and true, or the zero value and
// false if kind is not registered.
func (r *Registry) Get(kind Kind) (Definition, bool) {
	d, ok := r.defs[kind]
	return d, ok
}

// MustGet is Get but panics on an unknown kind; reserved for call sites
// that only ever pass compile-time-known kind constants.
func (r *Registry) MustGet(kind Kind) Definition {
	d, ok := r.defs[kind]
	if !ok {
		panic(fmt.Sprintf("registry: unknown kind %q", kind))
	}
	return d
}

// AllKinds returns every registered kind, in registration order.
func (r *Registry) AllKinds() []Kind {
	out := make([]Kind, len(r.order))
	copy(out, r.order)
	return out
}

// RootKinds returns the kinds with no traversal predecessor: neither
// IsChild nor IsComposite.
func (r *Registry) RootKinds() []Kind {
	var out []Kind
	for _, k := range r.order {
		if _, ok := r.PredecessorOf(k); !ok {
			out = append(out, k)
		}
	}
	return out
}

// PredecessorOf returns the traversal predecessor of kind: its parent for
// IsChild kinds, its primary for IsComposite kinds. ok is false for root
// kinds.
func (r *Registry) PredecessorOf(kind Kind) (Kind, bool) {
	d, ok := r.defs[kind]
	if !ok {
		return "", false
	}
	if d.IsChild() {
		return d.Child.Parent, true
	}
	if d.IsComposite() {
		return d.Composite.Primary, true
	}
	return "", false
}

// SuccessorsOf returns every kind whose traversal predecessor is kind, in
// registration order. This is the inverse of PredecessorOf, computed by
// scanning the catalogue rather than cached on the Definition so that the
// data model stays a plain forward-edge description.
func (r *Registry) SuccessorsOf(kind Kind) []Kind {
	var out []Kind
	for _, k := range r.order {
		if pred, ok := r.PredecessorOf(k); ok && pred == kind {
			out = append(out, k)
		}
	}
	return out
}

// DependenciesOf returns the publisher-ordering dependency edges for kind,
// per spec.md §3:
//   - IsChild: dependency on the parent
//   - IsComposite: dependencies on primary and secondary
//   - HasReference: dependencies on every kind named in the mandatory and
//     optional reference maps
//   - IsPolicy: dependency on NamedValueKind
//
// The result is de-duplicated and sorted for deterministic iteration.
func (r *Registry) DependenciesOf(kind Kind) []Kind {
	d, ok := r.defs[kind]
	if !ok {
		return nil
	}
	seen := map[Kind]struct{}{}
	add := func(k Kind) { seen[k] = struct{}{} }

	if d.IsChild() {
		add(d.Child.Parent)
	}
	if d.IsComposite() {
		add(d.Composite.Primary)
		add(d.Composite.Secondary)
	}
	if d.HasReference() {
		for ref := range d.Reference.Mandatory {
			add(ref)
		}
		for ref := range d.Reference.Optional {
			add(ref)
		}
	}
	if d.IsPolicy() {
		add(NamedValueKind)
	}

	out := make([]Kind, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CollectionDirName returns the on-disk collection directory name for
// kind. Link kinds override their configured CollectionDirName with
// "<secondary.singular>Links" per spec.md §3.
func (r *Registry) CollectionDirName(kind Kind) string {
	d := r.MustGet(kind)
	if d.IsLink() {
		sec := r.MustGet(d.Composite.Secondary)
		return sec.Singular + "Links"
	}
	return d.CollectionDirName
}

// CollectionURIPath returns the APIM REST collection path segment for
// kind, with the same Link override as CollectionDirName.
func (r *Registry) CollectionURIPath(kind Kind) string {
	d := r.MustGet(kind)
	if d.IsLink() {
		sec := r.MustGet(d.Composite.Secondary)
		return sec.Singular + "Links"
	}
	return d.CollectionURIPath
}

// TopologicalOrder returns all registered kinds ordered so that every
// kind's DependenciesOf entries precede it (Kahn's algorithm): dependencies
// come first, the kinds that depend on them later. Ties are broken by Kind
// string so the order is deterministic. File parsing does not use it:
// relationships.Builder classifies files by walking each kind's collection
// directories instead of trying kinds in this order.
func (r *Registry) TopologicalOrder() ([]Kind, error) {
	indeg := make(map[Kind]int, len(r.defs))
	dependents := make(map[Kind][]Kind, len(r.defs))
	for _, k := range r.order {
		indeg[k] = 0
	}
	for _, k := range r.order {
		for _, dep := range r.DependenciesOf(k) {
			indeg[k]++
			dependents[dep] = append(dependents[dep], k)
		}
	}

	var ready []Kind
	for _, k := range r.order {
		if indeg[k] == 0 {
			ready = append(ready, k)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })

	var out []Kind
	for len(ready) > 0 {
		sort.Slice(ready, func(i, j int) bool { return ready[i] < ready[j] })
		k := ready[0]
		ready = ready[1:]
		out = append(out, k)
		for _, dep := range dependents[k] {
			indeg[dep]--
			if indeg[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(out) != len(r.defs) {
		return nil, fmt.Errorf("registry: dependency cycle detected among resource kinds")
	}
	return out, nil
}
