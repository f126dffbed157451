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

// Package publisher implements the dependency-ordered publish walk
// (spec.md §4.8): every resource in the target tree is put only after
// everything it depends on (relationships.Relationships predecessors),
// and every resource removed from the tree is deleted only after
// everything that depends on it (successors). Concurrent callers for the
// same key are deduplicated with singleflight, mirroring graph.SKUOracle.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimclient"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimconfig"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/dto"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/fileops"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/layout"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/relationships"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Publisher pushes a resource tree read through Source to the service
// addressed by Client, and removes resources the tree no longer carries.
type Publisher struct {
	Reg            *registry.Registry
	Layout         *layout.Service
	Client         *apimclient.Client
	Config         *apimconfig.Matcher
	Source         fileops.FileOperations
	BaseResourceID string
	Logger         *slog.Logger

	putGroup    singleflight.Group
	deleteGroup singleflight.Group
}

// BuildTarget scans Source into the dependency DAG a Put/Delete call
// needs (spec.md §4.7).
func (p *Publisher) BuildTarget(ctx context.Context) (*relationships.Relationships, error) {
	return relationships.NewBuilder(p.Reg).Build(ctx, p.Source)
}

// ComputeRemoved returns every key present in oldRel but absent from
// newRel: the set Delete must process to bring the service in line with a
// tree that no longer carries them (spec.md §4.8, "S_target is scoped to
// a git diff").
func ComputeRemoved(oldRel, newRel *relationships.Relationships) []resourcekey.Key {
	var removed []resourcekey.Key
	for _, k := range oldRel.Keys() {
		if !newRel.Has(k) {
			removed = append(removed, k)
		}
	}
	return removed
}

// Put pushes every resource in rel to the service, each one only after
// every resource it depends on (rel.Predecessors) has been put
// successfully.
func (p *Publisher) Put(ctx context.Context, rel *relationships.Relationships) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, k := range rel.Keys() {
		k := k
		eg.Go(func() error { return p.ensurePut(ctx, rel, k) })
	}
	return eg.Wait()
}

func (p *Publisher) ensurePut(ctx context.Context, rel *relationships.Relationships, key resourcekey.Key) error {
	_, err, _ := p.putGroup.Do(key.MapKey(), func() (interface{}, error) {
		preds := rel.Predecessors(key)
		peg, pctx := errgroup.WithContext(ctx)
		for _, pk := range preds {
			pk := pk
			peg.Go(func() error { return p.ensurePut(pctx, rel, pk) })
		}
		if err := peg.Wait(); err != nil {
			return nil, err
		}
		return nil, p.putOne(ctx, key)
	})
	return err
}

// Delete removes every key in removed from the service, each one only
// after every one of its successors in oldRel (that is itself in removed)
// has been deleted successfully.
func (p *Publisher) Delete(ctx context.Context, oldRel *relationships.Relationships, removed []resourcekey.Key) error {
	removedSet := make(map[string]struct{}, len(removed))
	for _, k := range removed {
		removedSet[k.MapKey()] = struct{}{}
	}

	eg, ctx := errgroup.WithContext(ctx)
	for _, k := range removed {
		k := k
		eg.Go(func() error { return p.ensureDelete(ctx, oldRel, removedSet, k) })
	}
	return eg.Wait()
}

func (p *Publisher) ensureDelete(ctx context.Context, oldRel *relationships.Relationships, removedSet map[string]struct{}, key resourcekey.Key) error {
	_, err, _ := p.deleteGroup.Do(key.MapKey(), func() (interface{}, error) {
		succs := oldRel.Successors(key)
		seg, sctx := errgroup.WithContext(ctx)
		for _, sk := range succs {
			if _, ok := removedSet[sk.MapKey()]; !ok {
				continue // still present in the target tree; not ours to delete
			}
			sk := sk
			seg.Go(func() error { return p.ensureDelete(sctx, oldRel, removedSet, sk) })
		}
		if err := seg.Wait(); err != nil {
			return nil, err
		}
		return nil, p.deleteOne(ctx, key)
	})
	return err
}

func (p *Publisher) putOne(ctx context.Context, key resourcekey.Key) error {
	kind := registry.Kind(key.Kind)
	def := p.Reg.MustGet(kind)
	if def.Reserved != nil && def.Reserved(key.Name) {
		p.log().Debug("skipping reserved resource", "key", key.String())
		return nil
	}

	raw, err := p.readDTO(ctx, key, kind, def)
	if err != nil {
		return fmt.Errorf("publisher: reading %s: %w", key.String(), err)
	}
	if raw == nil {
		return nil
	}

	if skipSecretNamedValue(kind, raw) {
		p.log().Warn("skipping secret named value with no stored value: create it once out of band", "key", key.String())
		return nil
	}

	if override, found, err := p.Config.GetOverride(key); err != nil {
		return fmt.Errorf("publisher: resolving override for %s: %w", key.String(), err)
	} else if found {
		raw, err = dto.MergeOverride(raw, override)
		if err != nil {
			return fmt.Errorf("publisher: merging override for %s: %w", key.String(), err)
		}
	}

	formatted, err := dto.FormatForPublish(p.Reg, kind, p.BaseResourceID, raw)
	if err != nil {
		if isRevisionedApiKind(kind) {
			p.log().Warn("publishing raw dto after format failure", "key", key.String(), "error", err)
			formatted = raw
		} else {
			return fmt.Errorf("publisher: formatting %s: %w", key.String(), err)
		}
	}

	if (kind == registry.Api || kind == registry.WorkspaceApi) && registry.IsRootName(key.Name) {
		if err := p.ensureCurrentRevision(ctx, kind, key.Name, key.Parents, formatted); err != nil {
			return fmt.Errorf("publisher: making %s current: %w", key.String(), err)
		}
	}

	uri := p.Layout.ElementURI(kind, key.Name, key.Parents)
	if err := p.Client.Put(ctx, uri, formatted); err != nil {
		return fmt.Errorf("publisher: putting %s: %w", key.String(), err)
	}
	return nil
}

// ensureCurrentRevision runs the make-current dance (spec.md §4.9) before
// the main DTO is put, when a root-named Api/WorkspaceApi already exists on
// the service at a different revision than the tree carries. It is a
// no-op when the API doesn't exist yet (plain create) or when either side's
// apiRevision can't be read (formatting already warned; let the PUT fail or
// succeed on its own).
func (p *Publisher) ensureCurrentRevision(ctx context.Context, kind registry.Kind, rootName resourcekey.Name, parents resourcekey.ParentChain, formatted json.RawMessage) error {
	currentAbsID, liveRevision, found, liveOK, err := p.currentRevision(ctx, kind, rootName, parents)
	if err != nil {
		return err
	}
	if !found || !liveOK {
		return nil
	}
	newRevision, ok := newRevisionOf(formatted)
	if !ok || newRevision == liveRevision {
		return nil
	}
	return p.makeCurrent(ctx, kind, rootName, parents, currentAbsID, newRevision)
}

func (p *Publisher) deleteOne(ctx context.Context, key resourcekey.Key) error {
	kind := registry.Kind(key.Kind)
	def := p.Reg.MustGet(kind)
	if def.Reserved != nil && def.Reserved(key.Name) {
		p.log().Debug("skipping deletion of reserved resource", "key", key.String())
		return nil
	}

	uri := p.Layout.ElementURI(kind, key.Name, key.Parents)
	opts := apimclient.DeleteOptions{IgnoreNotFound: true, WaitForCompletion: isAsyncDeleteKind(kind)}
	if err := p.Client.Delete(ctx, uri, opts); err != nil {
		return fmt.Errorf("publisher: deleting %s: %w", key.String(), err)
	}
	return nil
}

// readDTO reads the on-disk representation of key: the information file
// for a HasDto kind, or the reconstituted policy envelope (xml body plus,
// for Fragment-style kinds, the sibling information file) for an IsPolicy
// kind. Returns (nil, nil) for a kind with neither - a key that exists
// only to anchor its own successors in the dependency graph.
func (p *Publisher) readDTO(ctx context.Context, key resourcekey.Key, kind registry.Kind, def registry.Definition) ([]byte, error) {
	if def.IsPolicy() {
		xmlPath, err := p.Layout.PolicyFilePath(kind, key.Name, key.Parents)
		if err != nil {
			return nil, err
		}
		xmlBytes, err := p.Source.ReadFile(ctx, xmlPath)
		if err != nil {
			return nil, err
		}
		var infoBytes []byte
		if def.HasInformationFile {
			infoPath, err := p.Layout.InformationFilePath(kind, key.Parents, key.Name)
			if err != nil {
				return nil, err
			}
			infoBytes, err = p.Source.ReadFile(ctx, infoPath)
			if err != nil {
				return nil, err
			}
		}
		var info []byte
		if len(infoBytes) > 0 {
			info = infoBytes
		}
		return dto.InjectPolicyBody(string(xmlBytes), info)
	}

	if def.HasInformationFile {
		infoPath, err := p.Layout.InformationFilePath(kind, key.Parents, key.Name)
		if err != nil {
			return nil, err
		}
		return p.Source.ReadFile(ctx, infoPath)
	}

	return nil, nil
}

// isRevisionedApiKind mirrors extractor.isRevisionedApiKind: these kinds'
// FormatForPublish failures must never block a publish (spec.md §4.11).
func isRevisionedApiKind(kind registry.Kind) bool {
	switch kind {
	case registry.Api, registry.WorkspaceApi, registry.ApiRelease, registry.WorkspaceApiRelease:
		return true
	default:
		return false
	}
}

// isAsyncDeleteKind reports whether kind's deletion should be polled to
// completion before the dependency walk proceeds to its predecessors: the
// handful of kinds APIM deletes out of band rather than synchronously.
func isAsyncDeleteKind(kind registry.Kind) bool {
	switch kind {
	case registry.Api, registry.WorkspaceApi, registry.Product, registry.WorkspaceProduct:
		return true
	default:
		return false
	}
}

// skipSecretNamedValue reports whether raw is a NamedValue/WorkspaceNamedValue
// marked secret with no stored value: the extractor never writes a secret's
// value to disk (spec.md §4.1), so the publisher must never overwrite a
// live secret with an empty one. Once created out of band, such a named
// value's value is left entirely alone by this engine.
func skipSecretNamedValue(kind registry.Kind, raw []byte) bool {
	if kind != registry.NamedValue && kind != registry.WorkspaceNamedValue {
		return false
	}
	env, err := dto.DecodeGenericObject(raw)
	if err != nil {
		return false
	}
	props, _ := env["properties"].(map[string]interface{})
	if props == nil {
		return false
	}
	secret, _ := props["secret"].(bool)
	if !secret {
		return false
	}
	_, hasValue := props["value"]
	return !hasValue
}

func (p *Publisher) log() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.Default()
}
