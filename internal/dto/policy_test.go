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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPolicyBody(t *testing.T) {
	raw := []byte(`{"properties":{"format":"rawxml","value":"<policies><inbound/></policies>"}}`)
	xml, err := ExtractPolicyBody(raw)
	require.NoError(t, err)
	assert.Equal(t, "<policies><inbound/></policies>", xml)
}

func TestExtractPolicyBody_MissingValueFails(t *testing.T) {
	raw := []byte(`{"properties":{"format":"rawxml"}}`)
	_, err := ExtractPolicyBody(raw)
	require.Error(t, err)
}

func TestInjectPolicyBody_NoInformationFile(t *testing.T) {
	out, err := InjectPolicyBody("<policies/>", nil)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(out, &env))
	assert.Equal(t, "rawxml", env.Properties["format"])
	assert.Equal(t, "<policies/>", env.Properties["value"])
}

func TestInjectPolicyBody_InformationFileWinsOnOverlap(t *testing.T) {
	info := []byte(`{"name":"f1","properties":{"format":"xml","description":"kept"}}`)
	out, err := InjectPolicyBody("<policies/>", info)
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(out, &env))
	assert.Equal(t, "f1", env.Name)
	assert.Equal(t, "xml", env.Properties["format"])
	assert.Equal(t, "kept", env.Properties["description"])
	assert.Equal(t, "<policies/>", env.Properties["value"])
}
