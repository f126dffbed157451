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
	"strconv"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

// revisionSeparator is the literal infix an Api/WorkspaceApi name carries
// before its revision number, e.g. "echo-api;rev=3".
const revisionSeparator = ";rev="

// Revision is a parsed API revision name: Root is the API's root name
// (the name it carries when it is the current revision), Number is the
// parsed revision integer.
type Revision struct {
	Root   resourcekey.Name
	Number int
}

// IsRootName reports whether n carries no ";rev=<n>" suffix at all, i.e.
// names the current revision implicitly.
func IsRootName(n resourcekey.Name) bool {
	return !strings.Contains(n.String(), revisionSeparator)
}

// GetRootName strips the ";rev=<n>" suffix if present, returning n
// unchanged otherwise.
func GetRootName(n resourcekey.Name) resourcekey.Name {
	raw := n.String()
	idx := strings.Index(raw, revisionSeparator)
	if idx < 0 {
		return n
	}
	return resourcekey.MustName(raw[:idx])
}

// Parse splits n into its root name and revision number. ok is false when
// n has no revision suffix, or the suffix does not parse as a positive
// integer.
func Parse(n resourcekey.Name) (rev Revision, ok bool) {
	raw := n.String()
	idx := strings.Index(raw, revisionSeparator)
	if idx < 0 {
		return Revision{}, false
	}
	root := raw[:idx]
	suffix := raw[idx+len(revisionSeparator):]
	if root == "" {
		return Revision{}, false
	}
	num, err := strconv.Atoi(suffix)
	if err != nil || num < 1 {
		return Revision{}, false
	}
	rootName, err := resourcekey.NewName(root)
	if err != nil {
		return Revision{}, false
	}
	return Revision{Root: rootName, Number: num}, true
}

// Combine renders root;rev=k. k must be >= 1.
func Combine(root resourcekey.Name, k int) (resourcekey.Name, error) {
	if k < 1 {
		return resourcekey.Name{}, fmt.Errorf("registry: revision number must be >= 1, got %d", k)
	}
	return resourcekey.NewName(fmt.Sprintf("%s%s%d", root.String(), revisionSeparator, k))
}
