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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentChain_AppendPrependAndPrefix(t *testing.T) {
	empty := Empty()
	assert.True(t, empty.IsEmpty())

	withAPI := empty.Append("Api", MustName("echo-api"))
	withOp := withAPI.Append("ApiOperation", MustName("get-items"))

	assert.Equal(t, 2, withOp.Len())
	last, ok := withOp.Last()
	assert.True(t, ok)
	assert.Equal(t, "ApiOperation", last.Kind)

	assert.True(t, withOp.HasPrefix(withAPI))
	assert.False(t, withAPI.HasPrefix(withOp))

	prefixed := withOp.Prefix(1)
	assert.True(t, prefixed.Equal(withAPI))

	prepended := empty.Append("Api", MustName("a")).Prepend("Workspace", MustName("ws1"))
	segs := prepended.Segments()
	assert.Equal(t, "Workspace", segs[0].Kind)
	assert.Equal(t, "Api", segs[1].Kind)
}

func TestParentChain_EqualIsCaseInsensitiveOnNames(t *testing.T) {
	a := Empty().Append("Product", MustName("Prod-1"))
	b := Empty().Append("Product", MustName("prod-1"))
	assert.True(t, a.Equal(b))
}
