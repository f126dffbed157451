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

package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apispec"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

func mustReg(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(registry.Default())
	require.NoError(t, err)
	return r
}

func TestInstanceDirectory_RootKind(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	dir := svc.InstanceDirectory(registry.Api, resourcekey.Empty(), resourcekey.MustName("orders-api"))
	assert.Equal(t, "/out/apis/orders-api", dir)
}

func TestInstanceDirectory_NestedChild(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	parents := resourcekey.NewParentChain(resourcekey.Segment{Kind: string(registry.Api), Name: resourcekey.MustName("orders-api")})
	dir := svc.InstanceDirectory(registry.ApiOperation, parents, resourcekey.MustName("get-order"))
	assert.Equal(t, "/out/apis/orders-api/operations/get-order", dir)
}

func TestInformationFilePath(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	p, err := svc.InformationFilePath(registry.Api, resourcekey.Empty(), resourcekey.MustName("orders-api"))
	require.NoError(t, err)
	assert.Equal(t, "/out/apis/orders-api/apiInformation.json", p)
}

func TestPolicyFilePath_Fragment(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	p, err := svc.PolicyFilePath(registry.PolicyFragment, resourcekey.MustName("rate-limit"), resourcekey.Empty())
	require.NoError(t, err)
	assert.Equal(t, "/out/policy fragments/rate-limit/policy.xml", p)
}

func TestPolicyFilePath_Service(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	p, err := svc.PolicyFilePath(registry.ServicePolicy, resourcekey.MustName("global"), resourcekey.Empty())
	require.NoError(t, err)
	assert.Equal(t, "/out/global.xml", p)
}

func TestPolicyFilePath_PerParent(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	parents := resourcekey.NewParentChain(resourcekey.Segment{Kind: string(registry.Api), Name: resourcekey.MustName("orders-api")})
	p, err := svc.PolicyFilePath(registry.ApiPolicy, resourcekey.MustName("policy"), parents)
	require.NoError(t, err)
	assert.Equal(t, "/out/apis/orders-api/policy.xml", p)
}

func TestSpecificationFilePath(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	p := svc.SpecificationFilePath(registry.Api, resourcekey.Empty(), resourcekey.MustName("orders-api"),
		apispec.Specification{Kind: apispec.OpenApi, Format: apispec.Yaml, Version: apispec.V3})
	assert.Equal(t, "/out/apis/orders-api/specification.yaml", p)
}

func TestElementURI(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	parents := resourcekey.NewParentChain(resourcekey.Segment{Kind: string(registry.Api), Name: resourcekey.MustName("orders-api")})
	uri := svc.ElementURI(registry.ApiOperation, resourcekey.MustName("get-order"), parents)
	assert.Equal(t, "https://mgmt.example.com/apis/orders-api/operations/get-order", uri)
}

func TestRootCollectionURI(t *testing.T) {
	svc := NewService(mustReg(t), "/out", "https://mgmt.example.com")
	assert.Equal(t, "https://mgmt.example.com/backends", svc.RootCollectionURI(registry.Backend))
}
