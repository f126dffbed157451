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

// Package apimconfig implements the hierarchical include/override
// configuration matcher (spec.md §4.5): a YAML tree of nested lists,
// keyed by the plural noun of each child kind, that the extractor
// consults to decide whether a resource should be extracted and the
// publisher consults to merge per-resource overrides into a DTO.
package apimconfig

import (
	"fmt"
	"strings"
	"sync"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
	"gopkg.in/yaml.v3"
)

// Loader fetches the raw configuration document (typically a single file
// read once per process run). It is invoked at most once per Matcher,
// however many concurrent lookups race to trigger it.
type Loader func() ([]byte, error)

// Matcher answers resourceIsInConfiguration and getConfigurationOverride
// queries against a lazily-loaded configuration document. It is safe for
// concurrent use: the document parse happens once (sync.Once), and each
// resolved section lookup is memoised in a concurrent map keyed by the
// full parent chain and kind. Shorter prefixes of a chain are not cached
// on their own: a lookup that misses the cache walks the document from
// the root.
type Matcher struct {
	reg     *registry.Registry
	load    Loader
	once    sync.Once
	root    map[string]interface{}
	loadErr error

	mu      sync.RWMutex
	section map[string]sectionEntry
}

type sectionEntry struct {
	array []interface{} // the resolved list at this path; nil if absent
	child map[string]interface{}
}

// NewMatcher builds a Matcher over reg that loads its document via load.
func NewMatcher(reg *registry.Registry, load Loader) *Matcher {
	return &Matcher{reg: reg, load: load, section: make(map[string]sectionEntry)}
}

func (m *Matcher) ensureLoaded() error {
	m.once.Do(func() {
		raw, err := m.load()
		if err != nil {
			m.loadErr = fmt.Errorf("apimconfig: load configuration: %w", err)
			return
		}
		var doc map[string]interface{}
		if len(strings.TrimSpace(string(raw))) == 0 {
			doc = map[string]interface{}{}
		} else if err := yaml.Unmarshal(raw, &doc); err != nil {
			m.loadErr = fmt.Errorf("apimconfig: parse configuration: %w", err)
			return
		}
		m.root = doc
	})
	return m.loadErr
}

// IsInConfiguration implements resourceIsInConfiguration. A nil result
// means None (no entry exists at the relevant parent scope; caller should
// extract by default); otherwise the pointed-to bool is the membership
// verdict.
func (m *Matcher) IsInConfiguration(key resourcekey.Key) (*bool, error) {
	if err := m.ensureLoaded(); err != nil {
		return nil, err
	}
	return m.isInConfiguration(key)
}

func (m *Matcher) isInConfiguration(key resourcekey.Key) (*bool, error) {
	section, found, err := m.sectionFor(key.Parents, registry.Kind(key.Kind))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	apiRootName := ""
	if registry.Kind(key.Kind) == registry.Api || registry.Kind(key.Kind) == registry.WorkspaceApi {
		apiRootName = registry.GetRootName(key.Name).String()
	}
	match := memberOf(section, key.Name.Key())
	if !match && apiRootName != "" {
		match = memberOf(section, strings.ToLower(apiRootName))
	}
	return &match, nil
}

// GetOverride implements getConfigurationOverride: the same path walk,
// returning the full JSON-shaped object configured for the matched name
// so a caller can merge it into a DTO. For Api/WorkspaceApi, the override
// never carries apiRevision/isCurrent, so publish never lets configuration
// rewrite revision identity.
func (m *Matcher) GetOverride(key resourcekey.Key) (map[string]interface{}, bool, error) {
	if err := m.ensureLoaded(); err != nil {
		return nil, false, err
	}
	section, found, err := m.sectionFor(key.Parents, registry.Kind(key.Kind))
	if err != nil || !found {
		return nil, false, err
	}

	apiRootName := ""
	if registry.Kind(key.Kind) == registry.Api || registry.Kind(key.Kind) == registry.WorkspaceApi {
		apiRootName = registry.GetRootName(key.Name).String()
	}

	item, ok := findMember(section, key.Name.Key())
	if !ok && apiRootName != "" {
		item, ok = findMember(section, strings.ToLower(apiRootName))
	}
	if !ok {
		return nil, false, nil
	}
	obj, ok := item.(map[string]interface{})
	if !ok {
		// A bare-name entry ("- x") carries no override payload.
		return map[string]interface{}{}, true, nil
	}
	out := cloneMap(obj)
	if registry.Kind(key.Kind) == registry.Api || registry.Kind(key.Kind) == registry.WorkspaceApi {
		if props, ok := out["properties"].(map[string]interface{}); ok {
			delete(props, "apiRevision")
			delete(props, "isCurrent")
		}
	}
	return out, true, nil
}

// sectionFor resolves the array at path
// <root>.<parents[0].plural>.find(name).<parents[1].plural>.find(name)....<kind.plural>,
// returning (nil, false) when any level of the path is absent.
func (m *Matcher) sectionFor(parents resourcekey.ParentChain, kind registry.Kind) ([]interface{}, bool, error) {
	cacheKey := sectionCacheKey(parents, kind)
	m.mu.RLock()
	if v, ok := m.section[cacheKey]; ok {
		m.mu.RUnlock()
		return v.array, v.array != nil, nil
	}
	m.mu.RUnlock()

	scope := m.root
	for _, seg := range parents.Segments() {
		segKind := registry.Kind(seg.Kind)
		def, ok := m.reg.Get(segKind)
		if !ok {
			return nil, false, fmt.Errorf("apimconfig: unknown kind %q in parent chain", seg.Kind)
		}
		arr, ok := listAt(scope, def.Plural)
		if !ok {
			m.store(cacheKey, nil)
			return nil, false, nil
		}
		name := seg.Name.Key()
		if segKind == registry.Api || segKind == registry.WorkspaceApi {
			name = strings.ToLower(registry.GetRootName(seg.Name).String())
		}
		item, ok := findMember(arr, name)
		if !ok {
			m.store(cacheKey, nil)
			return nil, false, nil
		}
		obj, ok := item.(map[string]interface{})
		if !ok {
			// Bare-name entry: no nested section can exist below it.
			m.store(cacheKey, nil)
			return nil, false, nil
		}
		scope = obj
	}

	def := m.reg.MustGet(kind)
	arr, ok := listAt(scope, def.Plural)
	if !ok {
		m.store(cacheKey, nil)
		return nil, false, nil
	}
	m.store(cacheKey, arr)
	return arr, true, nil
}

func (m *Matcher) store(key string, arr []interface{}) {
	m.mu.Lock()
	m.section[key] = sectionEntry{array: arr}
	m.mu.Unlock()
}

func sectionCacheKey(parents resourcekey.ParentChain, kind registry.Kind) string {
	var b strings.Builder
	for _, seg := range parents.Segments() {
		b.WriteString(strings.ToLower(seg.Kind))
		b.WriteByte('\x1f')
		b.WriteString(seg.Name.Key())
		b.WriteByte('\x1e')
	}
	b.WriteString(strings.ToLower(string(kind)))
	return b.String()
}

// listAt returns the []interface{} stored under key in scope, tolerating
// both []interface{} (the common case) and the empty/absent cases.
func listAt(scope map[string]interface{}, key string) ([]interface{}, bool) {
	if scope == nil {
		return nil, false
	}
	v, ok := scope[key]
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	return arr, ok
}

// memberOf reports whether name (already lower-cased) matches any item in
// arr: a bare string item matches by value, a mapping item matches by its
// single key.
func memberOf(arr []interface{}, name string) bool {
	_, ok := findMember(arr, name)
	return ok
}

// findMember returns the matching item (string or map) for name.
func findMember(arr []interface{}, name string) (interface{}, bool) {
	for _, item := range arr {
		switch v := item.(type) {
		case string:
			if strings.ToLower(v) == name {
				return v, true
			}
		case map[string]interface{}:
			for k := range v {
				if strings.ToLower(k) == name {
					return v[k], true
				}
			}
		}
	}
	return nil, false
}

func cloneMap(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = cloneMap(nested)
			continue
		}
		out[k] = v
	}
	return out
}
