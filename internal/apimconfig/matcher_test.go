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

package apimconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

const testDoc = `
apis:
  - orders-api:
      operations:
        - get-order
        - delete-order:
            description: "override text"
  - legacy-api
products:
  - gold
`

func mustReg(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(registry.Default())
	require.NoError(t, err)
	return r
}

func apiKey(name string) resourcekey.Key {
	return resourcekey.New(string(registry.Api), resourcekey.MustName(name), resourcekey.Empty())
}

func operationKey(apiName, opName string) resourcekey.Key {
	parents := resourcekey.NewParentChain(resourcekey.Segment{Kind: string(registry.Api), Name: resourcekey.MustName(apiName)})
	return resourcekey.New(string(registry.ApiOperation), resourcekey.MustName(opName), parents)
}

func TestIsInConfiguration_RootLevelMembership(t *testing.T) {
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(testDoc), nil })
	got, err := m.IsInConfiguration(apiKey("orders-api"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)
}

func TestIsInConfiguration_NotAMember(t *testing.T) {
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(testDoc), nil })
	got, err := m.IsInConfiguration(apiKey("unmentioned-api"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, *got)
}

func TestIsInConfiguration_ApiRevisionedNameMatchesByRoot(t *testing.T) {
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(testDoc), nil })
	got, err := m.IsInConfiguration(apiKey("orders-api;rev=3"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)
}

func TestIsInConfiguration_NestedScope(t *testing.T) {
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(testDoc), nil })
	got, err := m.IsInConfiguration(operationKey("orders-api", "get-order"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, *got)
}

func TestIsInConfiguration_NoEntryAtScopeIsNone(t *testing.T) {
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(testDoc), nil })
	got, err := m.IsInConfiguration(operationKey("legacy-api", "anything"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetOverride_ReturnsMappingPayload(t *testing.T) {
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(testDoc), nil })
	override, ok, err := m.GetOverride(operationKey("orders-api", "delete-order"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "override text", override["description"])
}

func TestGetOverride_StripsApiRevisionAndIsCurrent(t *testing.T) {
	doc := `
apis:
  - pinned-api:
      properties:
        apiRevision: "9"
        isCurrent: true
        displayName: "Pinned"
`
	m := NewMatcher(mustReg(t), func() ([]byte, error) { return []byte(doc), nil })
	override, ok, err := m.GetOverride(apiKey("pinned-api"))
	require.NoError(t, err)
	require.True(t, ok)
	props := override["properties"].(map[string]interface{})
	_, hasRevision := props["apiRevision"]
	_, hasCurrent := props["isCurrent"]
	assert.False(t, hasRevision)
	assert.False(t, hasCurrent)
	assert.Equal(t, "Pinned", props["displayName"])
}

func TestMatcher_LoadsDocumentOnlyOnce(t *testing.T) {
	calls := 0
	m := NewMatcher(mustReg(t), func() ([]byte, error) {
		calls++
		return []byte(testDoc), nil
	})
	_, _ = m.IsInConfiguration(apiKey("orders-api"))
	_, _ = m.IsInConfiguration(apiKey("legacy-api"))
	_, _ = m.IsInConfiguration(operationKey("orders-api", "get-order"))
	assert.Equal(t, 1, calls)
}
