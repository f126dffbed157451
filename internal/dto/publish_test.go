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

package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
)

func TestToAbsoluteId(t *testing.T) {
	base := "/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.ApiManagement/service/contoso"
	assert.Equal(t, base+"/loggers/logger1", ToAbsoluteId(base, "/loggers/logger1"))
	assert.Equal(t, "", ToAbsoluteId(base, ""))
}

func TestFormatForPublish_RewritesLinkIdToAbsolute(t *testing.T) {
	reg := mustReg(t)
	base := "/subscriptions/sub1/resourceGroups/rg1/providers/Microsoft.ApiManagement/service/contoso"
	raw := []byte(`{"name":"gold-orders-api","properties":{"apiId":"/apis/orders-api"}}`)

	out, err := FormatForPublish(reg, registry.ProductApi, base, raw)
	require.NoError(t, err)
	assert.Contains(t, string(out), base+"/apis/orders-api")
}

func TestMergeOverride_OverrideWinsOnConflict(t *testing.T) {
	raw := []byte(`{"name":"orders-api","properties":{"displayName":"Orders","subscriptionRequired":true}}`)
	override := map[string]interface{}{
		"properties": map[string]interface{}{
			"displayName": "Orders API (Prod)",
		},
	}
	out, err := MergeOverride(raw, override)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"displayName":"Orders API (Prod)"`)
	assert.Contains(t, string(out), `"subscriptionRequired":true`)
}

func TestMergeOverride_EmptyOverrideIsNoop(t *testing.T) {
	raw := []byte(`{"name":"orders-api"}`)
	out, err := MergeOverride(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}
