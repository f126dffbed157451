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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

func mustRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(Default())
	require.NoError(t, err)
	return r
}

func TestNew_RejectsChildAndCompositeOnSameKind(t *testing.T) {
	_, err := New([]Definition{
		{Kind: "Weird", Child: &ChildFacet{Parent: "Weird"}, Composite: &CompositeFacet{Primary: "Weird", Secondary: "Weird"}},
	})
	require.Error(t, err)
}

func TestNew_RejectsPolicyKindWithoutNamedValue(t *testing.T) {
	_, err := New([]Definition{
		{Kind: "LonelyPolicy", Policy: &PolicyFacet{Style: ServicePolicyStyle}},
	})
	require.Error(t, err)
}

func TestDefault_BuildsWithoutError(t *testing.T) {
	r := mustRegistry(t)
	assert.NotEmpty(t, r.AllKinds())
}

func TestPredecessorAndSuccessors(t *testing.T) {
	r := mustRegistry(t)

	pred, ok := r.PredecessorOf(ApiOperation)
	require.True(t, ok)
	assert.Equal(t, Api, pred)

	_, ok = r.PredecessorOf(Api)
	assert.False(t, ok, "Api is a root kind")

	succs := r.SuccessorsOf(Api)
	assert.Contains(t, succs, ApiOperation)
	assert.Contains(t, succs, ApiRelease)
	assert.Contains(t, succs, ApiPolicy)
}

func TestCompositePredecessorIsPrimary(t *testing.T) {
	r := mustRegistry(t)
	pred, ok := r.PredecessorOf(ProductApi)
	require.True(t, ok)
	assert.Equal(t, Product, pred)
}

func TestDependenciesOf_PolicyKindsDependOnGlobalNamedValue(t *testing.T) {
	r := mustRegistry(t)

	deps := r.DependenciesOf(WorkspaceApiPolicy)
	assert.Contains(t, deps, Kind(NamedValueKind))
	assert.Contains(t, deps, WorkspaceApi)
}

func TestDependenciesOf_ReferenceKindsDependOnReferencedKinds(t *testing.T) {
	r := mustRegistry(t)
	deps := r.DependenciesOf(Api)
	assert.Contains(t, deps, ApiVersionSet)
	assert.Contains(t, deps, AuthorizationServer)
}

func TestLinkCollectionDirNameUsesSecondarySingularLinks(t *testing.T) {
	r := mustRegistry(t)
	assert.Equal(t, "apiLinks", r.CollectionDirName(ProductApi))
	assert.Equal(t, "groupLinks", r.CollectionDirName(ProductGroup))
	assert.Equal(t, "tagLinks", r.CollectionDirName(ApiTag))
}

func TestRootKinds_ExcludesChildrenAndComposites(t *testing.T) {
	r := mustRegistry(t)
	roots := r.RootKinds()
	assert.Contains(t, roots, Product)
	assert.Contains(t, roots, Api)
	assert.NotContains(t, roots, ApiOperation)
	assert.NotContains(t, roots, ProductApi)
}

func TestTopologicalOrder_RespectsDependencies(t *testing.T) {
	r := mustRegistry(t)
	order, err := r.TopologicalOrder()
	require.NoError(t, err)

	pos := make(map[Kind]int, len(order))
	for i, k := range order {
		pos[k] = i
	}

	for _, k := range r.AllKinds() {
		for _, dep := range r.DependenciesOf(k) {
			assert.Lessf(t, pos[dep], pos[k], "%s must come after its dependency %s", k, dep)
		}
	}
}

func TestReservedNames(t *testing.T) {
	r := mustRegistry(t)
	group := r.MustGet(Group)
	require.NotNil(t, group.Reserved)
	assert.True(t, group.Reserved(resourcekey.MustName("Administrators")))
	assert.True(t, group.Reserved(resourcekey.MustName("developers")))
	assert.False(t, group.Reserved(resourcekey.MustName("custom-group")))

	sub := r.MustGet(Subscription)
	require.NotNil(t, sub.Reserved)
	assert.True(t, sub.Reserved(resourcekey.MustName("master")))
}
