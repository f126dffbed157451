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

// Package registry catalogues every APIM resource kind the sync engine
// knows about: its capability facets (HasDirectory, HasInformationFile,
// IsChild, IsComposite/IsLink, IsPolicy, HasReference), its naming, and the
// dependency/traversal relationships derived from those facets. The
// registry and every Definition in it are built once at process startup
// and never mutated afterward; concurrent readers need no locking.
package registry

import "github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"

// Kind identifies a resource kind, e.g. "Api" or "WorkspaceProductPolicy".
type Kind string

// PolicyFileStyle selects which of the three on-disk layouts an IsPolicy
// kind uses (spec.md §4.3).
type PolicyFileStyle int

const (
	// FragmentPolicyStyle stores the XML body at "<collection>/<name>/policy.xml",
	// alongside a sibling information file in the same per-instance directory.
	FragmentPolicyStyle PolicyFileStyle = iota + 1
	// PerParentPolicyStyle stores the XML body at
	// "<parentCollection>/<parentName>/<name>.xml" with no information file.
	PerParentPolicyStyle
	// ServicePolicyStyle stores the XML body at "<serviceDir>/<name>.xml".
	ServicePolicyStyle
)

// ChildFacet marks a kind that occurs only as a child within its parent
// kind's directory (IsChild).
type ChildFacet struct {
	Parent Kind
}

// LinkFacet refines CompositeFacet for IsLink kinds: a composite whose own
// JSON representation is the fixed shape {name, properties}, where
// properties carries the secondary resource's absolute id under
// LinkedIDProperty (a dotted JSON path, e.g. "properties.id").
type LinkFacet struct {
	LinkedIDProperty string
}

// CompositeFacet marks a kind whose identity is "the secondary under the
// primary" (IsComposite). Link is non-nil for the IsLink subtype.
type CompositeFacet struct {
	Primary   Kind
	Secondary Kind
	Link      *LinkFacet
}

// PolicyFacet marks a kind whose DTO is a policy envelope with the XML body
// side-stored on disk (IsPolicy).
type PolicyFacet struct {
	Style PolicyFileStyle
}

// ReferenceFacet marks a kind whose DTO carries absolute resource ids
// pointing at other resources (HasReference). Keys are the referenced
// kind; values are the DTO property path the id is stored under.
type ReferenceFacet struct {
	Mandatory map[Kind]string
	Optional  map[Kind]string
}

// Definition is one catalogued resource kind. Every field not backed by a
// non-nil facet pointer is simply unused for that kind; orchestrator code
// must dispatch on the facet pointers, never on Kind string comparisons,
// so that adding a kind only means adding a Definition.
type Definition struct {
	Kind Kind

	Singular string
	Plural   string

	// CollectionDirName/CollectionURIPath name the collection segment on
	// disk and in the service URI, respectively. Link kinds ignore these
	// in favor of "<secondary.singular>Links" (computed by the registry,
	// see Registry.CollectionDirName).
	CollectionDirName string
	CollectionURIPath string

	HasDirectory       bool
	HasInformationFile bool
	FileName           string
	HasDto             bool

	Child     *ChildFacet
	Composite *CompositeFacet
	Policy    *PolicyFacet
	Reference *ReferenceFacet

	// IsAPIRevisioned marks Api/WorkspaceApi: the name carries a revision
	// via the ";rev=<n>" suffix (see revision.go).
	IsAPIRevisioned bool

	// Reserved reports whether a given name is a service-reserved instance
	// of this kind that the tools never create or delete (the master
	// subscription, the three built-in groups). Nil means nothing is
	// reserved for this kind.
	Reserved func(resourcekey.Name) bool
}

// IsChild reports the ChildFacet's presence.
func (d Definition) IsChild() bool { return d.Child != nil }

// IsComposite reports the CompositeFacet's presence.
func (d Definition) IsComposite() bool { return d.Composite != nil }

// IsLink reports whether the CompositeFacet is the Link subtype.
func (d Definition) IsLink() bool { return d.Composite != nil && d.Composite.Link != nil }

// IsPolicy reports the PolicyFacet's presence.
func (d Definition) IsPolicy() bool { return d.Policy != nil }

// HasReference reports the ReferenceFacet's presence.
func (d Definition) HasReference() bool { return d.Reference != nil }
