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
	"fmt"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
)

// ToAbsoluteId reconstitutes the absolute ARM-style resource id a relative
// id (as stored on disk, see ToRelativeId) once had, by prefixing it with
// baseResourceID (the full "/subscriptions/.../Microsoft.ApiManagement/service/<name>"
// path of the target service). The subscription/resource-group prefix is
// not recoverable from the relative string alone, which is why publish
// needs this to be supplied out of band rather than stored per-resource
// (spec.md §4.4, §4.11).
func ToAbsoluteId(baseResourceID, relativeID string) string {
	if relativeID == "" {
		return ""
	}
	return strings.TrimRight(baseResourceID, "/") + relativeID
}

// FormatForPublish is FormatForWrite's inverse direction: it rewrites a DTO
// read off disk back into the shape the service expects a PUT body in
// (spec.md §4.11):
//   - Link kinds: rewrite properties.<LinkedIDProperty> back to an absolute
//     id via ToAbsoluteId.
//   - HasReference kinds: rewrite every present reference property back to
//     an absolute id.
//
// It does not reintroduce properties.format/value for policy-fragment
// kinds (those are reconstituted separately by InjectPolicyBody) or
// properties.serviceUrl (the publisher's Api/WorkspaceApi path merges that
// in from the configuration override, if any; this engine carries no other
// source of truth for a non-streaming API's backend url).
func FormatForPublish(reg *registry.Registry, kind registry.Kind, baseResourceID string, raw []byte) ([]byte, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	def := reg.MustGet(kind)

	if def.IsLink() && env.Properties != nil {
		rewriteAbsolute(env.Properties, strings.TrimPrefix(def.Composite.Link.LinkedIDProperty, "properties."), baseResourceID)
	}
	if def.HasReference() {
		for _, path := range def.Reference.Mandatory {
			rewriteAbsolute(env.Properties, strings.TrimPrefix(path, "properties."), baseResourceID)
		}
		for _, path := range def.Reference.Optional {
			rewriteAbsolute(env.Properties, strings.TrimPrefix(path, "properties."), baseResourceID)
		}
	}

	return encodeEnvelope(env)
}

func rewriteAbsolute(props map[string]interface{}, dottedPath, baseResourceID string) {
	parts := strings.Split(dottedPath, ".")
	cur := props
	for i, part := range parts {
		if i == len(parts)-1 {
			v, ok := cur[part]
			if !ok {
				return
			}
			s, ok := v.(string)
			if !ok {
				return
			}
			cur[part] = ToAbsoluteId(baseResourceID, s)
			return
		}
		next, ok := cur[part].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
}

// MergeOverride deep-merges a configuration override object into a
// decoded DTO, with override values winning on any key conflict
// (spec.md §4.5: "the override is merged into the extracted DTO, the
// override's values taking precedence"). Nested maps merge recursively;
// any other value type in override simply replaces the base value.
func MergeOverride(raw []byte, override map[string]interface{}) ([]byte, error) {
	if len(override) == 0 {
		return raw, nil
	}
	base, err := DecodeGenericObject(raw)
	if err != nil {
		return nil, err
	}
	merged := mergeMaps(base, override)
	mergedJSON, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("dto: %w: %v", apimerrors.ErrSchema, err)
	}
	env, err := decodeEnvelope(mergedJSON)
	if err != nil {
		return nil, err
	}
	return encodeEnvelope(env)
}

func mergeMaps(base, override map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, ov := range override {
		if baseNested, ok := out[k].(map[string]interface{}); ok {
			if overrideNested, ok := ov.(map[string]interface{}); ok {
				out[k] = mergeMaps(baseNested, overrideNested)
				continue
			}
		}
		out[k] = ov
	}
	return out
}
