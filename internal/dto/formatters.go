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
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
)

// FormatForWrite applies the per-kind on-write reshape rules (spec.md
// §4.4) to a normalized DTO just before the extractor writes it to the
// information file (the publisher reshapes with FormatForPublish instead):
//
//   - Link kinds: rewrite properties.<LinkedIDProperty> via ToRelativeId,
//     and stamp top-level name to linkName (the link's own name, as
//     opposed to the on-disk directory name which is the secondary's).
//   - HasReference kinds: rewrite every present reference property via
//     ToRelativeId.
//   - PolicyFragment / WorkspacePolicyFragment: drop properties.format and
//     properties.value (the body lives in the side XML file).
//   - Api / WorkspaceApi: drop properties.serviceUrl unless properties.type
//     is "websocket" or "graphql" (case-insensitive).
//
// The extractor calls FormatForWrite on the output of Normalize and
// surfaces normalization and reshape errors, except that for
// Api/WorkspaceApi/ApiRelease/WorkspaceApiRelease either failure makes it
// write the raw, un-formatted DTO instead (spec.md §4.11).
func FormatForWrite(reg *registry.Registry, kind registry.Kind, raw []byte, linkName string) ([]byte, error) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		return nil, err
	}
	def := reg.MustGet(kind)

	if def.IsLink() {
		if env.Properties != nil {
			rewriteProperty(env.Properties, strings.TrimPrefix(def.Composite.Link.LinkedIDProperty, "properties."))
		}
		env.Name = linkName
	}

	if def.HasReference() {
		for _, path := range def.Reference.Mandatory {
			rewriteProperty(env.Properties, strings.TrimPrefix(path, "properties."))
		}
		for _, path := range def.Reference.Optional {
			rewriteProperty(env.Properties, strings.TrimPrefix(path, "properties."))
		}
	}

	if kind == registry.PolicyFragment || kind == registry.WorkspacePolicyFragment {
		deleteProperty(env.Properties, "format")
		deleteProperty(env.Properties, "value")
	}

	if kind == registry.Api || kind == registry.WorkspaceApi {
		if !isStreamingApiType(stringProperty(env.Properties, "type")) {
			deleteProperty(env.Properties, "serviceUrl")
		}
	}

	return encodeEnvelope(env)
}

func isStreamingApiType(apiType string) bool {
	switch strings.ToLower(apiType) {
	case "websocket", "graphql":
		return true
	default:
		return false
	}
}

// rewriteProperty rewrites a dotted properties.* path in place via
// ToRelativeId, leaving absent paths untouched.
func rewriteProperty(props map[string]interface{}, dottedPath string) {
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
			cur[part] = ToRelativeId(s)
			return
		}
		next, ok := cur[part].(map[string]interface{})
		if !ok {
			return
		}
		cur = next
	}
}

func deleteProperty(props map[string]interface{}, key string) {
	if props == nil {
		return
	}
	delete(props, key)
}

func stringProperty(props map[string]interface{}, key string) string {
	if props == nil {
		return ""
	}
	s, _ := props[key].(string)
	return s
}

// ValidateReferenceProperties returns an error if any mandatory reference
// property declared for kind is absent from the DTO (used by relationship
// construction to fail fast on a malformed extracted tree, spec.md §4.7).
func ValidateReferenceProperties(reg *registry.Registry, kind registry.Kind, raw []byte) error {
	def := reg.MustGet(kind)
	if !def.HasReference() {
		return nil
	}
	env, err := decodeEnvelope(raw)
	if err != nil {
		return err
	}
	for refKind, path := range def.Reference.Mandatory {
		if _, ok := lookupProperty(env.Properties, strings.TrimPrefix(path, "properties.")); !ok {
			return fmt.Errorf("dto: %s missing mandatory reference to %s at %s", kind, refKind, path)
		}
	}
	return nil
}
