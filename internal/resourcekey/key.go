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

import "strings"

// Key addresses one resource instance: its kind, its name, and the chain of
// ancestors it is nested under. Key is not comparable with == (its
// ParentChain holds a slice): compare keys with Equal and use MapKey() as
// a Go map key, since Name/ParentChain equality is case-insensitive but Go
// map equality is not.
type Key struct {
	Kind    string
	Name    Name
	Parents ParentChain
}

// New builds a Key.
func New(kind string, name Name, parents ParentChain) Key {
	return Key{Kind: kind, Name: name, Parents: parents}
}

// MapKey returns a string suitable for use as a Go map key: it folds name
// casing so that two Keys which are Equal() also collide as map keys.
func (k Key) MapKey() string {
	var b strings.Builder
	for _, seg := range k.Parents.Segments() {
		b.WriteString(strings.ToLower(seg.Kind))
		b.WriteByte('\x1f')
		b.WriteString(seg.Name.Key())
		b.WriteByte('\x1e')
	}
	b.WriteString(strings.ToLower(k.Kind))
	b.WriteByte('\x1f')
	b.WriteString(k.Name.Key())
	return b.String()
}

// Equal reports whether two keys address the same resource.
func (k Key) Equal(other Key) bool {
	return k.Kind == other.Kind && k.Name.Equal(other.Name) && k.Parents.Equal(other.Parents)
}

// String renders a human-readable canonical form,
// "/parents.../kind/name", using raw kind identifiers as path segments.
// Callers that need the on-disk or URI form should go through the layout
// package, which knows each kind's collection path/directory; this form is
// for logs, errors and map debugging only.
func (k Key) String() string {
	var b strings.Builder
	for _, seg := range k.Parents.Segments() {
		b.WriteByte('/')
		b.WriteString(seg.Kind)
		b.WriteByte('/')
		b.WriteString(seg.Name.String())
	}
	b.WriteByte('/')
	b.WriteString(k.Kind)
	b.WriteByte('/')
	b.WriteString(k.Name.String())
	return b.String()
}

// WithParent returns a copy of k with an additional outermost ancestor.
func (k Key) WithParent(kind string, name Name) Key {
	return Key{Kind: k.Kind, Name: k.Name, Parents: k.Parents.Prepend(kind, name)}
}
