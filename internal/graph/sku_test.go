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

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
)

type fakeProber struct {
	calls      int32
	unsupported map[string]bool
	fatal      map[string]error
}

func (f *fakeProber) ProbeCollection(ctx context.Context, uri string) error {
	atomic.AddInt32(&f.calls, 1)
	if f.unsupported[uri] {
		return apimerrors.ErrUnsupported
	}
	if err, ok := f.fatal[uri]; ok {
		return err
	}
	return nil
}

type fakeURIs struct{}

func (fakeURIs) RootCollectionURI(kind registry.Kind) string { return string(kind) }

func mustReg(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New(registry.Default())
	require.NoError(t, err)
	return r
}

func TestSKUOracle_RootKindSupportedWhenProbeSucceeds(t *testing.T) {
	reg := mustReg(t)
	prober := &fakeProber{unsupported: map[string]bool{}}
	oracle := NewSKUOracle(reg, prober, fakeURIs{})

	ok, err := oracle.IsSupported(context.Background(), registry.Product)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSKUOracle_RootKindUnsupportedIsNotFatal(t *testing.T) {
	reg := mustReg(t)
	prober := &fakeProber{unsupported: map[string]bool{string(registry.Backend): true}}
	oracle := NewSKUOracle(reg, prober, fakeURIs{})

	ok, err := oracle.IsSupported(context.Background(), registry.Backend)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSKUOracle_NonRootDependsOnAllDependencies(t *testing.T) {
	reg := mustReg(t)
	// ApiOperationPolicy depends on ApiOperation (parent) and NamedValue
	// (policy). Make NamedValue unsupported; ApiOperationPolicy must
	// follow.
	prober := &fakeProber{unsupported: map[string]bool{string(registry.NamedValue): true}}
	oracle := NewSKUOracle(reg, prober, fakeURIs{})

	ok, err := oracle.IsSupported(context.Background(), registry.ApiOperationPolicy)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSKUOracle_MemoisesAcrossCalls(t *testing.T) {
	reg := mustReg(t)
	prober := &fakeProber{unsupported: map[string]bool{}}
	oracle := NewSKUOracle(reg, prober, fakeURIs{})

	_, err := oracle.IsSupported(context.Background(), registry.Product)
	require.NoError(t, err)
	_, err = oracle.IsSupported(context.Background(), registry.Product)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&prober.calls))
}

func TestSKUOracle_FatalErrorPropagates(t *testing.T) {
	reg := mustReg(t)
	boom := errors.New("connection reset")
	prober := &fakeProber{fatal: map[string]error{string(registry.Product): boom}}
	oracle := NewSKUOracle(reg, prober, fakeURIs{})

	_, err := oracle.IsSupported(context.Background(), registry.Product)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}
