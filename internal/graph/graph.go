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

package graph

import "github.com/wso2/api-platform/gateway/apim-sync/internal/registry"

// Graph pairs the registry with the SKU oracle, the shape the extractor's
// recursive walk consumes: RootKinds() to seed the top-level fan-out,
// ListSuccessors() to recurse, IsSupported() to gate each level.
type Graph struct {
	Registry *registry.Registry
	SKU      *SKUOracle
}

// New builds a Graph over reg, probing SKU support via sku.
func New(reg *registry.Registry, sku *SKUOracle) *Graph {
	return &Graph{Registry: reg, SKU: sku}
}

// RootKinds returns the traversal forest's roots.
func (g *Graph) RootKinds() []registry.Kind { return g.Registry.RootKinds() }

// ListSuccessors returns kind's traversal successors (its children in the
// extractor's top-down walk).
func (g *Graph) ListSuccessors(kind registry.Kind) []registry.Kind {
	return g.Registry.SuccessorsOf(kind)
}
