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

// Package graph wraps the registry with the two things a traversal needs
// that the static catalogue does not provide on its own: which kinds are
// roots of the extractor's traversal forest, and whether the live
// service's SKU actually supports a given kind (spec.md §4.2).
package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"golang.org/x/sync/singleflight"
)

// CollectionProber issues the probe GET used to decide whether a root
// kind's collection is supported by the service's current SKU/pricing
// tier. A nil return means supported; errors.Is(err, apimerrors.ErrUnsupported)
// means unsupported; any other error is fatal and must propagate.
type CollectionProber interface {
	ProbeCollection(ctx context.Context, collectionURI string) error
}

// URIBuilder resolves a root kind to the collection URI to probe. Kept as
// an interface so graph does not need to depend on the layout package's
// concrete Service type.
type URIBuilder interface {
	RootCollectionURI(kind registry.Kind) string
}

// SKUOracle memoises resource-kind support indefinitely under a concurrent
// map, deduplicating concurrent probes for the same kind via singleflight
// (spec.md §4.2, §5: "concurrent callers for the same kind see at most one
// probe").
type SKUOracle struct {
	reg    *registry.Registry
	prober CollectionProber
	uris   URIBuilder

	group singleflight.Group
	mu    sync.RWMutex
	cache map[registry.Kind]bool
}

// NewSKUOracle builds an oracle over reg, using prober to probe root
// kinds' collections and uris to resolve their URIs.
func NewSKUOracle(reg *registry.Registry, prober CollectionProber, uris URIBuilder) *SKUOracle {
	return &SKUOracle{
		reg:    reg,
		prober: prober,
		uris:   uris,
		cache:  make(map[registry.Kind]bool),
	}
}

// IsSupported reports whether kind is supported by the live service's SKU.
// Root kinds are probed directly; non-root kinds are supported iff every
// one of their registry.DependenciesOf entries is (recursively) supported.
func (o *SKUOracle) IsSupported(ctx context.Context, kind registry.Kind) (bool, error) {
	if v, ok := o.lookup(kind); ok {
		return v, nil
	}

	if _, hasPredecessor := o.reg.PredecessorOf(kind); hasPredecessor {
		return o.isSupportedNonRoot(ctx, kind)
	}
	return o.isSupportedRoot(ctx, kind)
}

func (o *SKUOracle) lookup(kind registry.Kind) (bool, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.cache[kind]
	return v, ok
}

func (o *SKUOracle) store(kind registry.Kind, supported bool) {
	o.mu.Lock()
	o.cache[kind] = supported
	o.mu.Unlock()
}

func (o *SKUOracle) isSupportedRoot(ctx context.Context, kind registry.Kind) (bool, error) {
	res, err, _ := o.group.Do(string(kind), func() (interface{}, error) {
		if v, ok := o.lookup(kind); ok {
			return v, nil
		}
		uri := o.uris.RootCollectionURI(kind)
		probeErr := o.prober.ProbeCollection(ctx, uri)
		switch {
		case probeErr == nil:
			o.store(kind, true)
			return true, nil
		case errors.Is(probeErr, apimerrors.ErrUnsupported):
			o.store(kind, false)
			return false, nil
		default:
			return false, probeErr
		}
	})
	if err != nil {
		return false, err
	}
	return res.(bool), nil
}

func (o *SKUOracle) isSupportedNonRoot(ctx context.Context, kind registry.Kind) (bool, error) {
	for _, dep := range o.reg.DependenciesOf(kind) {
		supported, err := o.IsSupported(ctx, dep)
		if err != nil {
			return false, fmt.Errorf("sku check for %s via dependency %s: %w", kind, dep, err)
		}
		if !supported {
			o.store(kind, false)
			return false, nil
		}
	}
	o.store(kind, true)
	return true, nil
}
