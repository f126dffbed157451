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

package relationships

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/fileops"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

func mustReg(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(registry.Default())
	require.NoError(t, err)
	return r
}

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(contents), 0o644))
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "apis/orders-api/apiInformation.json", `{"name":"orders-api","properties":{"type":"http"}}`)
	writeFile(t, root, "apis/orders-api/operations/get-order/apiOperationInformation.json", `{"name":"get-order","properties":{}}`)
	writeFile(t, root, "apis/orders-api/policy.xml", `<policies/>`)
	writeFile(t, root, "products/gold/productInformation.json", `{"name":"gold","properties":{}}`)
	writeFile(t, root, "products/gold/apiLinks/orders-api/productApiInformation.json", `{"name":"orders-api","properties":{"apiId":"/apis/orders-api"}}`)
	writeFile(t, root, "global.xml", `<policies/>`)
	return root
}

func TestBuild_DiscoversAndLinksResources(t *testing.T) {
	root := buildTree(t)
	fo := fileops.NewLiveFS(root)
	b := NewBuilder(mustReg(t))

	r, err := b.Build(context.Background(), fo)
	require.NoError(t, err)

	apiKey := resourcekey.New(string(registry.Api), resourcekey.MustName("orders-api"), resourcekey.Empty())
	assert.True(t, r.Has(apiKey))

	opParents := resourcekey.NewParentChain(resourcekey.Segment{Kind: string(registry.Api), Name: resourcekey.MustName("orders-api")})
	opKey := resourcekey.New(string(registry.ApiOperation), resourcekey.MustName("get-order"), opParents)
	assert.True(t, r.Has(opKey))
	assert.Contains(t, keyStrings(r.Predecessors(opKey)), apiKey.String())

	policyKey := resourcekey.New(string(registry.ApiPolicy), resourcekey.MustName("policy"), opParents)
	assert.True(t, r.Has(policyKey))
	assert.Contains(t, keyStrings(r.Predecessors(policyKey)), apiKey.String())

	productKey := resourcekey.New(string(registry.Product), resourcekey.MustName("gold"), resourcekey.Empty())
	prodParents := resourcekey.NewParentChain(resourcekey.Segment{Kind: string(registry.Product), Name: resourcekey.MustName("gold")})
	productApiKey := resourcekey.New(string(registry.ProductApi), resourcekey.MustName("orders-api"), prodParents)
	assert.True(t, r.Has(productApiKey))
	preds := keyStrings(r.Predecessors(productApiKey))
	assert.Contains(t, preds, productKey.String())
	assert.Contains(t, preds, apiKey.String())

	servicePolicyKey := resourcekey.New(string(registry.ServicePolicy), resourcekey.MustName("global"), resourcekey.Empty())
	assert.True(t, r.Has(servicePolicyKey))
}

func TestBuild_EdgesAreMutual(t *testing.T) {
	root := buildTree(t)
	fo := fileops.NewLiveFS(root)
	b := NewBuilder(mustReg(t))

	r, err := b.Build(context.Background(), fo)
	require.NoError(t, err)

	for _, k := range r.Keys() {
		for _, succ := range r.Successors(k) {
			assert.Contains(t, keyStrings(r.Predecessors(succ)), k.String())
		}
	}
}

func keyStrings(keys []resourcekey.Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
