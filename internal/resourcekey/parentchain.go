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

package resourcekey

// Segment is one (kind, name) step in a ParentChain. Kind is an opaque
// string key here (the kind identifier used by the registry) so that this
// package has no dependency on the registry package.
type Segment struct {
	Kind string
	Name Name
}

// ParentChain is an immutable, ordered sequence of ancestors, outermost
// first. The zero value is the empty chain (a root-level resource).
type ParentChain struct {
	segments []Segment
}

// Empty is the parent chain of a root-level resource.
func Empty() ParentChain { return ParentChain{} }

// NewParentChain builds a chain from a slice of segments, copying the slice
// so the chain stays immutable regardless of what the caller does with it
// afterward.
func NewParentChain(segments ...Segment) ParentChain {
	if len(segments) == 0 {
		return ParentChain{}
	}
	cp := make([]Segment, len(segments))
	copy(cp, segments)
	return ParentChain{segments: cp}
}

// Len returns the number of ancestors.
func (p ParentChain) Len() int { return len(p.segments) }

// IsEmpty reports whether p is the root-level chain.
func (p ParentChain) IsEmpty() bool { return len(p.segments) == 0 }

// Segments returns a defensive copy of the ordered segments.
func (p ParentChain) Segments() []Segment {
	cp := make([]Segment, len(p.segments))
	copy(cp, p.segments)
	return cp
}

// Last returns the innermost ancestor and true, or the zero Segment and
// false if p is empty.
func (p ParentChain) Last() (Segment, bool) {
	if len(p.segments) == 0 {
		return Segment{}, false
	}
	return p.segments[len(p.segments)-1], true
}

// Append returns a new chain with (kind, name) added as the new innermost
// ancestor.
func (p ParentChain) Append(kind string, name Name) ParentChain {
	cp := make([]Segment, len(p.segments)+1)
	copy(cp, p.segments)
	cp[len(p.segments)] = Segment{Kind: kind, Name: name}
	return ParentChain{segments: cp}
}

// Prepend returns a new chain with (kind, name) added as the new outermost
// ancestor.
func (p ParentChain) Prepend(kind string, name Name) ParentChain {
	cp := make([]Segment, len(p.segments)+1)
	cp[0] = Segment{Kind: kind, Name: name}
	copy(cp[1:], p.segments)
	return ParentChain{segments: cp}
}

// HasPrefix reports whether prefix is an elementwise, case-insensitive-name
// prefix of p.
func (p ParentChain) HasPrefix(prefix ParentChain) bool {
	if prefix.Len() > p.Len() {
		return false
	}
	for i, seg := range prefix.segments {
		if seg.Kind != p.segments[i].Kind || !seg.Name.Equal(p.segments[i].Name) {
			return false
		}
	}
	return true
}

// Prefix returns the first n ancestors of p. Panics if n is out of range,
// mirroring slice semantics.
func (p ParentChain) Prefix(n int) ParentChain {
	return NewParentChain(p.segments[:n]...)
}

// Equal reports elementwise equality with case-insensitive name comparison.
func (p ParentChain) Equal(other ParentChain) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		o := other.segments[i]
		if seg.Kind != o.Kind || !seg.Name.Equal(o.Name) {
			return false
		}
	}
	return true
}
