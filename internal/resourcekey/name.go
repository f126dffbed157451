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

// Package resourcekey holds the immutable value types used to address a
// resource in the API Management resource graph: names, parent chains and
// the (kind, name, parents) key derived from them.
package resourcekey

import (
	"fmt"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
)

// Name is a case-insensitive, non-empty resource name. Equality and hashing
// are case-insensitive; the original casing is preserved for display and for
// writing to disk or over the wire.
type Name struct {
	raw string
}

// NewName validates and wraps a raw resource name. It rejects empty or
// whitespace-only input, per the ResourceName invariant in the data model.
func NewName(raw string) (Name, error) {
	if strings.TrimSpace(raw) == "" {
		return Name{}, fmt.Errorf("resourcekey: %w: name must not be empty or whitespace", apimerrors.ErrInvalidName)
	}
	return Name{raw: raw}, nil
}

// MustName panics if raw is not a valid name. Reserved for call sites (tests,
// literal registry data) where the input is a compile-time constant.
func MustName(raw string) Name {
	n, err := NewName(raw)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the name's original casing.
func (n Name) String() string { return n.raw }

// Key returns the lower-cased form used for equality and map keys.
func (n Name) Key() string { return strings.ToLower(n.raw) }

// Equal reports whether two names are equal, case-insensitively.
func (n Name) Equal(other Name) bool { return n.Key() == other.Key() }

// IsZero reports whether n is the zero value (never constructed via NewName).
func (n Name) IsZero() bool { return n.raw == "" }
