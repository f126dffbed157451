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
	"fmt"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
)

// ExtractPolicyBody returns the exact XML body of a policy DTO's
// properties.value (spec.md §4.4: "the on-disk XML is the exact content
// of properties.value"). Fails if the DTO is not a JSON object or the
// property is absent or not a string.
func ExtractPolicyBody(policyDtoJSON []byte) (string, error) {
	env, err := decodeEnvelope(policyDtoJSON)
	if err != nil {
		return "", err
	}
	v, ok := lookupProperty(env.Properties, "value")
	if !ok {
		return "", fmt.Errorf("dto: policy dto: %w", &apimerrors.MissingPropertyError{Path: "properties.value"})
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("dto: policy dto: %w: properties.value is not a string", apimerrors.ErrSchema)
	}
	return s, nil
}

// InjectPolicyBody reconstitutes the publish-time policy DTO envelope
// from an XML body, merging in whatever else the information file (if
// present) carries; the information file's values win on any property
// overlap with the synthesized envelope (spec.md §4.4). infoJSON may be
// nil when the policy kind has no information file (PerParent/Service
// styles).
func InjectPolicyBody(xmlBody string, infoJSON []byte) ([]byte, error) {
	env := Envelope{
		Properties: map[string]interface{}{
			"format": "rawxml",
			"value":  xmlBody,
		},
	}
	if infoJSON == nil {
		return encodeEnvelope(env)
	}
	infoEnv, err := decodeEnvelope(infoJSON)
	if err != nil {
		return nil, err
	}
	if infoEnv.Name != "" {
		env.Name = infoEnv.Name
	}
	if infoEnv.ID != "" {
		env.ID = infoEnv.ID
	}
	if infoEnv.Type != "" {
		env.Type = infoEnv.Type
	}
	for k, v := range infoEnv.Properties {
		env.Properties[k] = v
	}
	return encodeEnvelope(env)
}
