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

package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimclient"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

// makeCurrentReleasePrefix names the one-shot release the make-current
// dance creates and immediately deletes (spec.md §4.9).
const makeCurrentReleasePrefix = "apiops-set-current-"

// revisionSuffixSeparator mirrors registry's unexported ";rev=" infix: a
// revisioned API's absolute id is its root id with this suffix appended,
// the same way the on-disk/element name is (registry.Combine).
const revisionSuffixSeparator = ";rev="

// newMakeCurrentReleaseName returns a release name unlikely to collide with
// anything a caller might be publishing concurrently: the fixed prefix plus
// eight hex characters taken from a fresh UUID.
func newMakeCurrentReleaseName() resourcekey.Name {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return resourcekey.MustName(makeCurrentReleasePrefix + suffix)
}

// releaseKindFor returns the ApiRelease kind nested under api.
func releaseKindFor(api registry.Kind) registry.Kind {
	if api == registry.WorkspaceApi {
		return registry.WorkspaceApiRelease
	}
	return registry.ApiRelease
}

// currentRevision fetches the live Api/WorkspaceApi DTO at its root name
// and returns its absolute resource id and apiRevision. found is false when
// no API exists yet at that name (a plain create, no dance needed). ok is
// false when the live DTO carries no parseable apiRevision, which the
// caller treats the same as "no dance" rather than fail the publish.
func (p *Publisher) currentRevision(ctx context.Context, kind registry.Kind, rootName resourcekey.Name, parents resourcekey.ParentChain) (absID string, revision int, found bool, ok bool, err error) {
	uri := p.Layout.ElementURI(kind, rootName, parents)
	raw, found, err := p.Client.GetOptional(ctx, uri)
	if err != nil || !found {
		return "", 0, found, false, err
	}
	var env struct {
		ID         string `json:"id"`
		Properties struct {
			ApiRevision json.Number `json:"apiRevision"`
		} `json:"properties"`
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return "", 0, true, false, nil
	}
	if env.Properties.ApiRevision == "" {
		return "", 0, true, false, nil
	}
	rev, err := strconv.Atoi(string(env.Properties.ApiRevision))
	if err != nil {
		return "", 0, true, false, nil
	}
	return env.ID, rev, true, true, nil
}

// newRevisionOf extracts properties.apiRevision from the DTO about to be
// published. ok is false when the property is absent or unparsable, in
// which case the caller skips the dance and lets the plain PUT proceed.
func newRevisionOf(formatted []byte) (revision int, ok bool) {
	var env struct {
		Properties struct {
			ApiRevision json.Number `json:"apiRevision"`
		} `json:"properties"`
	}
	dec := json.NewDecoder(strings.NewReader(string(formatted)))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil || env.Properties.ApiRevision == "" {
		return 0, false
	}
	rev, err := strconv.Atoi(string(env.Properties.ApiRevision))
	if err != nil {
		return 0, false
	}
	return rev, true
}

// makeCurrent runs the three-step dance spec.md §4.9 requires before
// publishing an Api/WorkspaceApi whose on-service revision differs from the
// tree's: create the source revision, flip it current with a one-shot
// ApiRelease, then delete that release.
func (p *Publisher) makeCurrent(ctx context.Context, kind registry.Kind, rootName resourcekey.Name, parents resourcekey.ParentChain, currentAbsID string, newRevision int) error {
	revisionedName, err := registry.Combine(rootName, newRevision)
	if err != nil {
		return fmt.Errorf("publisher: revision name for %s: %w", rootName.String(), err)
	}
	revisionDTO, err := json.Marshal(map[string]interface{}{
		"properties": map[string]interface{}{
			"apiRevision": newRevision,
			"sourceApiId": currentAbsID,
		},
	})
	if err != nil {
		return fmt.Errorf("publisher: encoding revision dto: %w", err)
	}
	revisionURI := p.Layout.ElementURI(kind, revisionedName, parents)
	if err := p.Client.Put(ctx, revisionURI, revisionDTO); err != nil {
		return fmt.Errorf("publisher: creating revision %s: %w", revisionedName.String(), err)
	}

	releaseKind := releaseKindFor(kind)
	releaseParents := parents.Append(string(kind), rootName)
	releaseName := newMakeCurrentReleaseName()
	releaseDTO, err := json.Marshal(map[string]interface{}{
		"properties": map[string]interface{}{
			"apiId": currentAbsID + revisionSuffixSeparator + strconv.Itoa(newRevision),
		},
	})
	if err != nil {
		return fmt.Errorf("publisher: encoding release dto: %w", err)
	}
	releaseURI := p.Layout.ElementURI(releaseKind, releaseName, releaseParents)
	if err := p.Client.Put(ctx, releaseURI, releaseDTO); err != nil {
		return fmt.Errorf("publisher: creating make-current release for %s: %w", rootName.String(), err)
	}

	opts := apimclient.DeleteOptions{IgnoreNotFound: true, WaitForCompletion: true}
	if err := p.Client.Delete(ctx, releaseURI, opts); err != nil {
		return fmt.Errorf("publisher: deleting make-current release for %s: %w", rootName.String(), err)
	}
	return nil
}
