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

package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apispec"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

// writeSpecification downloads and writes an Api/WorkspaceApi's
// specification document (spec.md §4.9). The document's format follows
// the API's own protocol type where that dictates a fixed format
// (GraphQL, SOAP/WSDL); otherwise the process-wide configured default
// format applies.
func (o *Orchestrator) writeSpecification(ctx context.Context, kind registry.Kind, parents resourcekey.ParentChain, name resourcekey.Name, raw []byte) error {
	var probe struct {
		Properties struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return fmt.Errorf("extractor: decoding %s type for specification export: %w", kind, err)
	}

	spec := o.resolveSpecification(probe.Properties.Type)

	exportURI := fmt.Sprintf("%s?format=%s&export=true", o.Layout.ElementURI(kind, name, parents), spec.String())
	body, found, err := o.Client.GetOptional(ctx, exportURI)
	if err != nil {
		return fmt.Errorf("extractor: exporting %s specification: %w", kind, err)
	}
	if !found {
		return nil
	}

	path := o.Layout.SpecificationFilePath(kind, parents, name, spec)
	return o.Writer.WriteFile(ctx, path, body)
}

// resolveSpecification maps an API's protocol type to its fixed
// specification format, falling back to the process-wide configured
// default (OpenAPI, unless overridden) for HTTP/REST APIs.
func (o *Orchestrator) resolveSpecification(apiType string) apispec.Specification {
	switch strings.ToLower(apiType) {
	case "graphql":
		return apispec.Specification{Kind: apispec.GraphQl}
	case "soap", "soapapi", "wsdl":
		return apispec.Specification{Kind: apispec.Wsdl}
	default:
		if o.SpecFormat.Kind == 0 {
			return apispec.Specification{Kind: apispec.OpenApi, Format: apispec.Yaml, Version: apispec.V3}
		}
		return o.SpecFormat
	}
}
