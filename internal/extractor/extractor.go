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
	"log/slog"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimclient"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimconfig"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apispec"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/dto"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/graph"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/layout"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
	"golang.org/x/sync/errgroup"
)

// policyResourceName is the fixed name APIM gives the singleton policy
// resource nested under a parent (the "policy" element of a PerParent- or
// Service-style policy kind's collection).
var policyResourceName = resourcekey.MustName("policy")

// Orchestrator implements the top-down extraction walk (spec.md §4.6):
// for every kind the live service's SKU supports, list its instances,
// consult the inclusion configuration, and write whatever artifacts the
// kind's facets call for, recursing into its traversal successors.
type Orchestrator struct {
	Graph      *graph.Graph
	Layout     *layout.Service
	Client     *apimclient.Client
	Config     *apimconfig.Matcher
	Writer     Writer
	SpecFormat apispec.Specification
	Logger     *slog.Logger
}

// Run extracts the entire resource tree rooted at every kind the registry
// declares as a traversal root, fanning the roots out concurrently and
// cancelling all of them on the first hard error.
func (o *Orchestrator) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, kind := range o.Graph.RootKinds() {
		kind := kind
		eg.Go(func() error {
			return o.processKind(ctx, kind, resourcekey.Empty())
		})
	}
	return eg.Wait()
}

// processKind extracts every instance of kind nested under parents, then
// recurses into its traversal successors for each instance extracted.
func (o *Orchestrator) processKind(ctx context.Context, kind registry.Kind, parents resourcekey.ParentChain) error {
	supported, err := o.Graph.SKU.IsSupported(ctx, kind)
	if err != nil {
		return fmt.Errorf("extractor: checking sku support for %s: %w", kind, err)
	}
	if !supported {
		o.log().Debug("skipping unsupported kind", "kind", string(kind))
		return nil
	}

	def := o.Graph.Registry.MustGet(kind)

	if def.HasDto {
		return o.processListedKind(ctx, kind, def, parents)
	}
	if def.IsPolicy() {
		return o.processSingletonPolicy(ctx, kind, def, parents)
	}
	// A kind with neither a DTO nor a policy body (none currently
	// catalogued) has nothing of its own to extract; still recurse so a
	// hypothetical pass-through kind's successors are reached.
	return o.recurseInto(ctx, kind, parents, nil)
}

func (o *Orchestrator) processListedKind(ctx context.Context, kind registry.Kind, def registry.Definition, parents resourcekey.ParentChain) error {
	items, err := o.Client.ListAll(ctx, o.Layout.CollectionURI(kind, parents))
	if err != nil {
		return fmt.Errorf("extractor: listing %s: %w", kind, err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, raw := range items {
		raw := raw
		eg.Go(func() error {
			key, diskName, err := o.resolveIdentity(kind, def, parents, raw)
			if err != nil {
				return err
			}

			shouldExtract, err := o.shouldExtract(key)
			if err != nil {
				return err
			}
			if !shouldExtract {
				o.log().Debug("skipping resource excluded by configuration", "key", key.String())
				return nil
			}

			itemRaw := raw
			if def.IsPolicy() {
				itemRaw, err = o.fetchPolicyBody(ctx, kind, key.Name, parents)
				if err != nil {
					return fmt.Errorf("extractor: fetching policy body for %s: %w", key.String(), err)
				}
			}

			if err := o.writeArtifacts(ctx, kind, key, parents, diskName, itemRaw); err != nil {
				return fmt.Errorf("extractor: writing artifacts for %s: %w", key.String(), err)
			}

			if (kind == registry.Api || kind == registry.WorkspaceApi) && registry.IsRootName(key.Name) {
				if err := o.writeSpecification(ctx, kind, parents, key.Name, raw); err != nil {
					return fmt.Errorf("extractor: writing specification for %s: %w", key.String(), err)
				}
			}

			return o.recurseInto(ctx, kind, parents, &key)
		})
	}
	return eg.Wait()
}

func (o *Orchestrator) processSingletonPolicy(ctx context.Context, kind registry.Kind, def registry.Definition, parents resourcekey.ParentChain) error {
	raw, found, err := o.Client.GetOptional(ctx, rawXMLQuery(o.Layout.ElementURI(kind, policyResourceName, parents)))
	if err != nil {
		return fmt.Errorf("extractor: fetching policy %s: %w", kind, err)
	}
	if !found {
		return nil
	}

	key := resourcekey.New(string(kind), policyResourceName, parents)
	shouldExtract, err := o.shouldExtract(key)
	if err != nil {
		return err
	}
	if !shouldExtract {
		return nil
	}

	if err := o.writeArtifacts(ctx, kind, key, parents, policyResourceName, raw); err != nil {
		return fmt.Errorf("extractor: writing policy artifact for %s: %w", key.String(), err)
	}
	return nil
}

// resolveIdentity derives a resource's Key and on-disk name from its raw
// DTO. Link kinds are named on disk after the secondary resource (spec.md
// §4.3): diskName comes from the DTO's LinkedIDProperty, not the DTO's own
// "name" field.
func (o *Orchestrator) resolveIdentity(kind registry.Kind, def registry.Definition, parents resourcekey.ParentChain, raw []byte) (resourcekey.Key, resourcekey.Name, error) {
	var probe struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return resourcekey.Key{}, resourcekey.Name{}, fmt.Errorf("extractor: decoding %s name: %w", kind, err)
	}

	if def.IsLink() {
		obj, err := dto.DecodeGenericObject(raw)
		if err != nil {
			return resourcekey.Key{}, resourcekey.Name{}, err
		}
		id := lookupDottedString(obj, def.Composite.Link.LinkedIDProperty)
		diskName, err := resourcekey.NewName(dto.LastSegment(dto.ToRelativeId(id)))
		if err != nil {
			return resourcekey.Key{}, resourcekey.Name{}, fmt.Errorf("extractor: %s link id %q: %w", kind, id, err)
		}
		key := resourcekey.New(string(kind), diskName, parents)
		return key, diskName, nil
	}

	name, err := resourcekey.NewName(probe.Name)
	if err != nil {
		return resourcekey.Key{}, resourcekey.Name{}, fmt.Errorf("extractor: %s: %w", kind, err)
	}
	return resourcekey.New(string(kind), name, parents), name, nil
}

func (o *Orchestrator) shouldExtract(key resourcekey.Key) (bool, error) {
	in, err := o.Config.IsInConfiguration(key)
	if err != nil {
		return false, fmt.Errorf("extractor: evaluating configuration for %s: %w", key.String(), err)
	}
	if in == nil {
		return true, nil // None: extract by default.
	}
	return *in, nil
}

// writeArtifacts writes whatever the kind's facets call for: the
// information file (FormatForWrite applied first) and, for IsPolicy
// kinds, the side XML body.
func (o *Orchestrator) writeArtifacts(ctx context.Context, kind registry.Kind, key resourcekey.Key, parents resourcekey.ParentChain, diskName resourcekey.Name, raw []byte) error {
	def := o.Graph.Registry.MustGet(kind)

	if def.HasInformationFile {
		linkName := key.Name.String()
		if def.IsLink() {
			var own struct {
				Name string `json:"name"`
			}
			if json.Unmarshal(raw, &own) == nil && own.Name != "" {
				linkName = own.Name
			}
		}
		formatted, err := dto.Normalize(raw, kind)
		if err == nil {
			formatted, err = dto.FormatForWrite(o.Graph.Registry, kind, formatted, linkName)
		}
		if err != nil {
			if isRevisionedApiKind(kind) {
				o.log().Warn("falling back to raw dto after format failure", "key", key.String(), "error", err)
				formatted = raw
			} else {
				return err
			}
		}
		path, err := o.Layout.InformationFilePath(kind, parents, diskName)
		if err != nil {
			return err
		}
		if err := o.Writer.WriteFile(ctx, path, formatted); err != nil {
			return err
		}
	}

	if def.IsPolicy() {
		body, err := dto.ExtractPolicyBody(raw)
		if err != nil {
			return err
		}
		path, err := o.Layout.PolicyFilePath(kind, diskName, parents)
		if err != nil {
			return err
		}
		if err := o.Writer.WriteFile(ctx, path, []byte(body)); err != nil {
			return err
		}
	}

	return nil
}

// fetchPolicyBody issues the per-item GET the list response can't satisfy
// for policy kinds: APIM's list endpoint omits properties.value, so every
// IsPolicy∧HasDto item needs its own fetch with ?format=rawxml to get the
// inline XML back instead of a link-style reference (spec.md §4.6, §4.4).
func (o *Orchestrator) fetchPolicyBody(ctx context.Context, kind registry.Kind, name resourcekey.Name, parents resourcekey.ParentChain) ([]byte, error) {
	uri := rawXMLQuery(o.Layout.ElementURI(kind, name, parents))
	raw, found, err := o.Client.GetOptional(ctx, uri)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("extractor: policy %s %s vanished between list and get", kind, name.String())
	}
	return raw, nil
}

// rawXMLQuery appends the format=rawxml query parameter spec.md §4.4 (and
// §4.6) requires on every policy GET so APIM returns the inline XML body
// rather than its default link-style representation.
func rawXMLQuery(elementURI string) string {
	sep := "?"
	if strings.ContainsRune(elementURI, '?') {
		sep = "&"
	}
	return elementURI + sep + "format=rawxml"
}

// isRevisionedApiKind reports whether kind's FormatForWrite failure must
// never block extraction (spec.md §4.11): Api/WorkspaceApi and their
// releases.
func isRevisionedApiKind(kind registry.Kind) bool {
	switch kind {
	case registry.Api, registry.WorkspaceApi, registry.ApiRelease, registry.WorkspaceApiRelease:
		return true
	default:
		return false
	}
}

// recurseInto fans out into kind's traversal successors. key is nil for
// pass-through kinds with no DTO of their own.
func (o *Orchestrator) recurseInto(ctx context.Context, kind registry.Kind, parents resourcekey.ParentChain, key *resourcekey.Key) error {
	name := resourcekey.Name{}
	if key != nil {
		name = key.Name
	}
	childParents := parents
	if key != nil {
		childParents = parents.Append(string(kind), name)
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, succ := range o.Graph.ListSuccessors(kind) {
		succ := succ
		// ApiRelease/WorkspaceApiRelease only exist under an Api's current
		// (root-name) revision; revisioned snapshots never get their own
		// release history (spec.md §4.6).
		if (kind == registry.Api && succ == registry.ApiRelease) ||
			(kind == registry.WorkspaceApi && succ == registry.WorkspaceApiRelease) {
			if key == nil || !registry.IsRootName(key.Name) {
				continue
			}
		}
		eg.Go(func() error {
			return o.processKind(ctx, succ, childParents)
		})
	}
	return eg.Wait()
}

func (o *Orchestrator) log() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func lookupDottedString(obj map[string]interface{}, dottedPath string) string {
	parts := splitDotted(dottedPath)
	cur := interface{}(obj)
	for _, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		v, ok := m[part]
		if !ok {
			return ""
		}
		cur = v
	}
	s, _ := cur.(string)
	return s
}

func splitDotted(path string) []string {
	var out []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			out = append(out, path[start:i])
			start = i + 1
		}
	}
	out = append(out, path[start:])
	return out
}
