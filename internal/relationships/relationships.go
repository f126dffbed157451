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

// Package relationships builds the publisher's dependency DAG (spec.md
// §4.7) by scanning a FileOperations tree, classifying each file against
// the registry's facets, and deriving predecessor/successor edges from
// Child, Composite and HasReference relationships.
package relationships

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/dto"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/fileops"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

// Relationships is the publisher's dependency DAG: predecessors[k] must be
// processed before k on put, successors[k] must be processed before k on
// delete (spec.md §4.8).
type Relationships struct {
	keys         map[string]resourcekey.Key
	predecessors map[string][]resourcekey.Key
	successors   map[string][]resourcekey.Key
}

// Keys returns every key registered in r.
func (r *Relationships) Keys() []resourcekey.Key {
	out := make([]resourcekey.Key, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k)
	}
	return out
}

// Predecessors returns k's predecessor keys (empty if none).
func (r *Relationships) Predecessors(k resourcekey.Key) []resourcekey.Key {
	return r.predecessors[k.MapKey()]
}

// Successors returns k's successor keys (empty if none).
func (r *Relationships) Successors(k resourcekey.Key) []resourcekey.Key {
	return r.successors[k.MapKey()]
}

// Has reports whether k was registered by Build (i.e. found on disk).
func (r *Relationships) Has(k resourcekey.Key) bool {
	_, ok := r.keys[k.MapKey()]
	return ok
}

// Builder constructs Relationships values by scanning a FileOperations
// tree against reg's facets.
type Builder struct {
	reg *registry.Registry
}

// NewBuilder builds a Builder over reg.
func NewBuilder(reg *registry.Registry) *Builder { return &Builder{reg: reg} }

type builderState struct {
	reg          *registry.Registry
	dirKeys      map[string]resourcekey.Key // relative directory path -> key
	keys         map[string]resourcekey.Key
	predecessors map[string][]resourcekey.Key
	successors   map[string][]resourcekey.Key
}

func newState(reg *registry.Registry) *builderState {
	return &builderState{
		reg:          reg,
		dirKeys:      make(map[string]resourcekey.Key),
		keys:         make(map[string]resourcekey.Key),
		predecessors: make(map[string][]resourcekey.Key),
		successors:   make(map[string][]resourcekey.Key),
	}
}

func (s *builderState) register(k resourcekey.Key) {
	mk := k.MapKey()
	if _, ok := s.keys[mk]; !ok {
		s.keys[mk] = k
		if _, ok := s.predecessors[mk]; !ok {
			s.predecessors[mk] = nil
		}
		if _, ok := s.successors[mk]; !ok {
			s.successors[mk] = nil
		}
	}
}

// edge records a ⇒ predecessor of b, i.e. a must be put before b.
func (s *builderState) edge(predecessor, successor resourcekey.Key) {
	s.register(predecessor)
	s.register(successor)
	pmk, smk := predecessor.MapKey(), successor.MapKey()
	s.predecessors[smk] = appendIfAbsent(s.predecessors[smk], predecessor)
	s.successors[pmk] = appendIfAbsent(s.successors[pmk], successor)
}

func appendIfAbsent(list []resourcekey.Key, k resourcekey.Key) []resourcekey.Key {
	for _, existing := range list {
		if existing.Equal(k) {
			return list
		}
	}
	return append(list, k)
}

// Build scans fo's tree and constructs the full Relationships value,
// running the three validators (spec.md §4.7) before returning.
func (b *Builder) Build(ctx context.Context, fo fileops.FileOperations) (*Relationships, error) {
	st := newState(b.reg)

	if err := st.discoverDirectories(ctx, fo); err != nil {
		return nil, err
	}
	if err := st.classifyFiles(ctx, fo); err != nil {
		return nil, err
	}
	if err := st.addRelationshipEdges(ctx, fo); err != nil {
		return nil, err
	}

	r := &Relationships{keys: st.keys, predecessors: st.predecessors, successors: st.successors}
	if err := validate(r); err != nil {
		return nil, err
	}
	return r, nil
}

// discoverDirectories walks every HasDirectory kind's collection tree
// top-down from the root, registering each instance directory's key.
func (s *builderState) discoverDirectories(ctx context.Context, fo fileops.FileOperations) error {
	var visit func(dir string, kind registry.Kind, name resourcekey.Name, parents resourcekey.ParentChain) error
	visit = func(dir string, kind registry.Kind, name resourcekey.Name, parents resourcekey.ParentChain) error {
		key := resourcekey.New(string(kind), name, parents)
		s.dirKeys[dir] = key
		s.register(key)

		childParents := parents.Append(string(kind), name)
		for _, childKind := range s.reg.SuccessorsOf(kind) {
			childDef := s.reg.MustGet(childKind)
			if !childDef.HasDirectory {
				continue
			}
			collDir := s.reg.CollectionDirName(childKind)
			names, err := fo.SubDirectories(ctx, path.Join(dir, collDir))
			if err != nil {
				return err
			}
			for _, n := range names {
				childName, err := resourcekey.NewName(n)
				if err != nil {
					return fmt.Errorf("relationships: %w", err)
				}
				if err := visit(path.Join(dir, collDir, n), childKind, childName, childParents); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for _, rootKind := range s.reg.RootKinds() {
		def := s.reg.MustGet(rootKind)
		if !def.HasDirectory {
			continue
		}
		collDir := s.reg.CollectionDirName(rootKind)
		names, err := fo.SubDirectories(ctx, collDir)
		if err != nil {
			return err
		}
		for _, n := range names {
			name, err := resourcekey.NewName(n)
			if err != nil {
				return fmt.Errorf("relationships: %w", err)
			}
			if err := visit(path.Join(collDir, n), rootKind, name, resourcekey.Empty()); err != nil {
				return err
			}
		}
	}
	return nil
}

// classifyFiles registers the non-directory-backed kinds: policies stored
// per-parent or at the service root. Fragment-style policy bodies and
// information files live inside directories already registered by
// discoverDirectories and add no new key.
func (s *builderState) classifyFiles(ctx context.Context, fo fileops.FileOperations) error {
	files, err := fo.EnumerateFiles(ctx, "")
	if err != nil {
		return err
	}
	for _, file := range files {
		dir := path.Dir(file)
		if dir == "." {
			dir = ""
		}
		base := path.Base(file)
		if !strings.HasSuffix(base, ".xml") {
			continue
		}
		name := strings.TrimSuffix(base, ".xml")

		if dirKey, ok := s.dirKeys[dir]; ok {
			def := s.reg.MustGet(registry.Kind(dirKey.Kind))
			if def.IsPolicy() && def.Policy.Style == registry.FragmentPolicyStyle && base == "policy.xml" {
				continue // the directory's own key already carries this body
			}
			matched := false
			for _, polKind := range s.reg.SuccessorsOf(registry.Kind(dirKey.Kind)) {
				pd := s.reg.MustGet(polKind)
				if !pd.IsPolicy() || pd.Policy.Style != registry.PerParentPolicyStyle {
					continue
				}
				polName, err := resourcekey.NewName(name)
				if err != nil {
					return fmt.Errorf("relationships: %w", err)
				}
				parents := dirKey.Parents.Append(dirKey.Kind, dirKey.Name)
				polKey := resourcekey.New(string(polKind), polName, parents)
				s.edge(dirKey, polKey)
				matched = true
			}
			if !matched {
				return fmt.Errorf("relationships: %w: %s under %s matches no policy kind", apimerrors.ErrAmbiguousFile, file, dirKey.String())
			}
			continue
		}

		if dir == "" {
			polName, err := resourcekey.NewName(name)
			if err != nil {
				return fmt.Errorf("relationships: %w", err)
			}
			s.register(resourcekey.New(string(registry.ServicePolicy), polName, resourcekey.Empty()))
			continue
		}

		return fmt.Errorf("relationships: %w: %s does not match any known policy location", apimerrors.ErrAmbiguousFile, file)
	}
	return nil
}

// addRelationshipEdges derives the Child/Composite/HasReference/Api-root
// predecessor edges for every directory-backed key (spec.md §4.7).
func (s *builderState) addRelationshipEdges(ctx context.Context, fo fileops.FileOperations) error {
	for dir, key := range s.dirKeys {
		kind := registry.Kind(key.Kind)
		def := s.reg.MustGet(kind)

		if def.IsChild() {
			parentSeg, ok := key.Parents.Last()
			if ok {
				parentKey := resourcekey.New(parentSeg.Kind, parentSeg.Name, key.Parents.Prefix(key.Parents.Len()-1))
				s.edge(parentKey, key)
			}
		}

		if def.IsComposite() {
			primarySeg, ok := key.Parents.Last()
			if ok {
				primaryKey := resourcekey.New(string(def.Composite.Primary), primarySeg.Name, key.Parents.Prefix(key.Parents.Len()-1))
				s.edge(primaryKey, key)
			}
			secondaryName := key.Name
			secondaryKey := resourcekey.New(string(def.Composite.Secondary), secondaryName, resourcekey.Empty())
			s.edge(secondaryKey, key)
		}

		if kind == registry.Api || kind == registry.WorkspaceApi {
			if !registry.IsRootName(key.Name) {
				rootKey := resourcekey.New(string(kind), registry.GetRootName(key.Name), key.Parents)
				s.edge(rootKey, key)
			}
		}

		if def.HasDto && def.HasReference() {
			if err := s.addReferenceEdges(ctx, fo, dir, key, def); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *builderState) addReferenceEdges(ctx context.Context, fo fileops.FileOperations, dir string, key resourcekey.Key, def registry.Definition) error {
	if def.FileName == "" {
		return nil
	}
	raw, err := fo.ReadFile(ctx, path.Join(dir, def.FileName))
	if err != nil {
		return nil // unreadable/missing information file: nothing to derive references from
	}
	refs := make(map[registry.Kind]string, len(def.Reference.Mandatory)+len(def.Reference.Optional))
	for k, v := range def.Reference.Mandatory {
		refs[k] = v
	}
	for k, v := range def.Reference.Optional {
		refs[k] = v
	}
	for refKind, propPath := range refs {
		id, ok := extractJSONString(raw, propPath)
		if !ok {
			continue
		}
		refParents := longestPredecessorPrefix(s.reg, key.Parents, refKind)
		refKey := resourcekey.New(string(refKind), resourcekey.MustName(dto.LastSegment(id)), refParents)
		s.edge(refKey, key)
	}
	return nil
}

// longestPredecessorPrefix returns the longest prefix of parents whose
// trailing segment's kind matches refKind's traversal-predecessor
// hierarchy, per spec.md §4.7. References to a root kind resolve to the
// empty chain.
func longestPredecessorPrefix(reg *registry.Registry, parents resourcekey.ParentChain, refKind registry.Kind) resourcekey.ParentChain {
	if _, hasPredecessor := reg.PredecessorOf(refKind); !hasPredecessor {
		return resourcekey.Empty()
	}
	segs := parents.Segments()
	for i := len(segs); i > 0; i-- {
		if segs[i-1].Kind == string(refKind) {
			return parents.Prefix(i - 1)
		}
	}
	return resourcekey.Empty()
}

// extractJSONString is a minimal dotted-path string lookup over raw JSON,
// used only to pull a reference id out of an information file without
// needing the full Envelope decode (the file may belong to a kind whose
// schema dto.Normalize does not specially recognize).
func extractJSONString(raw []byte, dottedPath string) (string, bool) {
	env, err := dto.DecodeGenericObject(raw)
	if err != nil {
		return "", false
	}
	cur := interface{}(env)
	for _, part := range strings.Split(dottedPath, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return "", false
		}
		v, ok := m[part]
		if !ok {
			return "", false
		}
		cur = v
	}
	s, ok := cur.(string)
	return s, ok
}

func validate(r *Relationships) error {
	var messages []string

	for mk, k := range r.keys {
		for _, succ := range r.successors[mk] {
			if !r.Has(succ) {
				messages = append(messages, fmt.Sprintf("successor %s of %s is not registered as a key", succ.String(), k.String()))
			}
		}
		for _, pred := range r.predecessors[mk] {
			if !r.Has(pred) {
				messages = append(messages, fmt.Sprintf("predecessor %s of %s is not registered as a key", pred.String(), k.String()))
			}
		}
	}

	for mk, k := range r.keys {
		for _, succ := range r.successors[mk] {
			if !containsKey(r.predecessors[succ.MapKey()], k) {
				messages = append(messages, fmt.Sprintf("edge %s -> %s is not mutual", k.String(), succ.String()))
			}
		}
	}

	if cyclePath, ok := findCycle(r); ok {
		messages = append(messages, fmt.Sprintf("cycle detected: %s", strings.Join(cyclePath, " -> ")))
	}

	if len(messages) > 0 {
		sort.Strings(messages)
		return &apimerrors.RelationshipValidationError{Messages: messages}
	}
	return nil
}

func containsKey(list []resourcekey.Key, k resourcekey.Key) bool {
	for _, existing := range list {
		if existing.Equal(k) {
			return true
		}
	}
	return false
}

type color int

const (
	white color = iota
	grey
	black
)

// findCycle runs a depth-first white/grey/black search over the successor
// graph, returning the cycle path on the first grey re-entry (spec.md
// §4.7 validator 3).
func findCycle(r *Relationships) ([]string, bool) {
	colors := make(map[string]color, len(r.keys))
	var path []string
	var stack []string

	var visit func(mk string) ([]string, bool)
	visit = func(mk string) ([]string, bool) {
		colors[mk] = grey
		stack = append(stack, mk)
		for _, succ := range r.successors[mk] {
			smk := succ.MapKey()
			switch colors[smk] {
			case grey:
				start := 0
				for i, s := range stack {
					if s == smk {
						start = i
						break
					}
				}
				cyclePath := append(append([]string{}, stack[start:]...), smk)
				return renderCycle(r, cyclePath), true
			case white:
				if p, found := visit(smk); found {
					return p, true
				}
			}
		}
		stack = stack[:len(stack)-1]
		colors[mk] = black
		return nil, false
	}

	mapKeys := make([]string, 0, len(r.keys))
	for mk := range r.keys {
		mapKeys = append(mapKeys, mk)
	}
	sort.Strings(mapKeys)

	for _, mk := range mapKeys {
		if colors[mk] == white {
			if p, found := visit(mk); found {
				path = p
				return path, true
			}
		}
	}
	return nil, false
}

func renderCycle(r *Relationships, mapKeyPath []string) []string {
	out := make([]string, len(mapKeyPath))
	for i, mk := range mapKeyPath {
		out[i] = r.keys[mk].String()
	}
	return out
}
