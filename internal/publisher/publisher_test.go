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

package publisher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimclient"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimconfig"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/fileops"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/layout"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/relationships"
)

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	defs := []registry.Definition{
		{
			Kind: registry.NamedValue, Singular: "namedValue", Plural: "namedValues",
			CollectionDirName: "named values", CollectionURIPath: "namedValues",
			HasDirectory: true, HasInformationFile: true, FileName: "namedValueInformation.json", HasDto: true,
		},
		{
			Kind: registry.Api, Singular: "api", Plural: "apis",
			CollectionDirName: "apis", CollectionURIPath: "apis",
			HasDirectory: true, HasInformationFile: true, FileName: "apiInformation.json", HasDto: true,
			IsAPIRevisioned: true,
		},
		{
			Kind: registry.ApiOperation, Singular: "operation", Plural: "operations",
			CollectionDirName: "operations", CollectionURIPath: "operations",
			HasDirectory: true, HasInformationFile: true, FileName: "apiOperationInformation.json", HasDto: true,
			Child: &registry.ChildFacet{Parent: registry.Api},
		},
		{
			Kind: registry.ApiPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &registry.ChildFacet{Parent: registry.Api},
			Policy:            &registry.PolicyFacet{Style: registry.PerParentPolicyStyle},
		},
		{
			Kind: registry.ApiOperationPolicy, Singular: "policy", Plural: "policies",
			CollectionURIPath: "policies",
			Child:             &registry.ChildFacet{Parent: registry.ApiOperation},
			Policy:            &registry.PolicyFacet{Style: registry.PerParentPolicyStyle},
		},
	}
	reg, err := registry.New(defs)
	require.NoError(t, err)
	return reg
}

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) record(method, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, method+" "+path)
}

func (r *recorder) indexOf(t *testing.T, call string) int {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.seen {
		if s == call {
			return i
		}
	}
	t.Fatalf("call %q was never made; saw %v", call, r.seen)
	return -1
}

func (r *recorder) never(t *testing.T, call string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seen {
		assert.NotEqual(t, call, s)
	}
}

func writeTree(t *testing.T, root string) {
	t.Helper()
	mustWrite := func(rel, content string) {
		abs := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	}

	mustWrite("apis/orders-api/apiInformation.json", `{"name":"orders-api","properties":{"type":"http","apiRevision":"1","isCurrent":true}}`)
	mustWrite("apis/orders-api/policy.xml", `<policies><inbound /></policies>`)
	mustWrite("apis/orders-api/operations/get-order/apiOperationInformation.json", `{"name":"get-order","properties":{"method":"GET"}}`)
	mustWrite("apis/orders-api/operations/get-order/policy.xml", `<policies><inbound /></policies>`)
}

func newTestPublisher(t *testing.T, root string, handler http.HandlerFunc) *Publisher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	reg := testRegistry(t)
	lay := layout.NewService(reg, root, srv.URL)
	client := apimclient.New(srv.Client(), "2022-09-01-preview", nil)
	cfg := apimconfig.NewMatcher(reg, func() ([]byte, error) { return []byte(""), nil })

	return &Publisher{
		Reg:            reg,
		Layout:         lay,
		Client:         client,
		Config:         cfg,
		Source:         fileops.NewLiveFS(root),
		BaseResourceID: "/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.ApiManagement/service/contoso",
	}
}

func TestPublisher_Put_RespectsPredecessorOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)

	rec := &recorder{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		rec.record(r.Method, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}

	p := newTestPublisher(t, root, handler)
	rel, err := p.BuildTarget(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Put(context.Background(), rel))

	apiIdx := rec.indexOf(t, "PUT /apis/orders-api")
	policyIdx := rec.indexOf(t, "PUT /apis/orders-api/policies/policy")
	opIdx := rec.indexOf(t, "PUT /apis/orders-api/operations/get-order")
	opPolicyIdx := rec.indexOf(t, "PUT /apis/orders-api/operations/get-order/policies/policy")

	assert.Less(t, apiIdx, policyIdx, "api must be put before its policy")
	assert.Less(t, apiIdx, opIdx, "api must be put before its operation")
	assert.Less(t, opIdx, opPolicyIdx, "operation must be put before its policy")
}

func TestPublisher_Delete_RespectsSuccessorOrder(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)

	rec := &recorder{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		rec.record(r.Method, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}

	p := newTestPublisher(t, root, handler)
	rel, err := p.BuildTarget(context.Background())
	require.NoError(t, err)

	removed := rel.Keys()
	require.NoError(t, p.Delete(context.Background(), rel, removed))

	apiIdx := rec.indexOf(t, "DELETE /apis/orders-api")
	opIdx := rec.indexOf(t, "DELETE /apis/orders-api/operations/get-order")
	assert.Less(t, opIdx, apiIdx, "operation must be deleted before its parent api")
}

func TestPublisher_Put_SkipsSecretNamedValueWithoutStoredValue(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "named values", "db-password", "namedValueInformation.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(`{"name":"db-password","properties":{"secret":true,"displayName":"db-password"}}`), 0o644))

	rec := &recorder{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		rec.record(r.Method, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}

	p := newTestPublisher(t, root, handler)
	rel, err := p.BuildTarget(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Put(context.Background(), rel))
	rec.never(t, "PUT /namedValues/db-password")
}

func TestComputeRemoved(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root)
	reg := testRegistry(t)

	builder := relationships.NewBuilder(reg)
	oldRel, err := builder.Build(context.Background(), fileops.NewLiveFS(root))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(root, "apis", "orders-api", "operations")))
	newRel, err := builder.Build(context.Background(), fileops.NewLiveFS(root))
	require.NoError(t, err)

	removed := ComputeRemoved(oldRel, newRel)
	require.Len(t, removed, 2) // the operation and its policy
}
