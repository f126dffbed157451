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

// Package layout is the canonical mapping between a resource's
// (kind, name, parents) identity and its on-disk path / service URI
// (spec.md §4.3, "Canonical layout"). Every other component that needs a
// path or URI goes through a Service rather than re-deriving the mapping,
// so the three policy-file styles and the Link "named after the
// secondary" rule each have exactly one implementation.
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apispec"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/registry"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/resourcekey"
)

// Service resolves paths under rootDir and URIs under serviceURI for every
// kind in reg. It holds no mutable state and is safe for concurrent use.
type Service struct {
	reg        *registry.Registry
	rootDir    string
	serviceURI string
}

// NewService builds a Service rooted at rootDir on disk and serviceURI on
// the wire (the APIM service's base management API URL, no trailing
// slash).
func NewService(reg *registry.Registry, rootDir, serviceURI string) *Service {
	return &Service{reg: reg, rootDir: rootDir, serviceURI: serviceURI}
}

// RootCollectionURI implements graph.URIBuilder for root kinds.
func (s *Service) RootCollectionURI(kind registry.Kind) string {
	return s.serviceURI + "/" + s.reg.CollectionURIPath(kind)
}

// CollectionDirectory returns the on-disk directory holding every instance
// of kind nested under parents, e.g. ".../apis/<api>/operations".
func (s *Service) CollectionDirectory(kind registry.Kind, parents resourcekey.ParentChain) string {
	return filepath.Join(s.chainDir(parents), s.reg.CollectionDirName(kind))
}

// InstanceDirectory returns the per-instance directory for a HasDirectory
// kind. diskName is the name used for the final path segment: for every
// kind except IsLink composites this is the resource's own Name; Link
// kinds are named on disk after the secondary resource (spec.md §4.3), so
// callers resolve that name first (typically from the DTO's
// LinkedIDProperty) and pass it here rather than key.Name.
func (s *Service) InstanceDirectory(kind registry.Kind, parents resourcekey.ParentChain, diskName resourcekey.Name) string {
	return filepath.Join(s.CollectionDirectory(kind, parents), diskName.String())
}

// InformationFilePath returns the information-file path for a
// HasInformationFile kind, nested under its per-instance directory.
func (s *Service) InformationFilePath(kind registry.Kind, parents resourcekey.ParentChain, diskName resourcekey.Name) (string, error) {
	d := s.reg.MustGet(kind)
	if !d.HasInformationFile {
		return "", fmt.Errorf("layout: kind %q has no information file", kind)
	}
	return filepath.Join(s.InstanceDirectory(kind, parents, diskName), d.FileName), nil
}

// SpecificationFilePath returns the API specification document path for an
// Api/WorkspaceApi instance, "<apiDir>/specification.<ext>" (spec.md §4.3,
// §4.9).
func (s *Service) SpecificationFilePath(apiKind registry.Kind, parents resourcekey.ParentChain, apiName resourcekey.Name, spec apispec.Specification) string {
	dir := s.InstanceDirectory(apiKind, parents, apiName)
	return filepath.Join(dir, "specification."+spec.FileExtension())
}

// PolicyFilePath returns the on-disk path of an IsPolicy kind's XML body,
// dispatching on its PolicyFileStyle (spec.md §4.3):
//
//   - Fragment: "<collection>/<name>/policy.xml"
//   - PerParent: "<parentInstanceDir>/<name>.xml"
//   - Service: "<serviceRoot>/<name>.xml"
func (s *Service) PolicyFilePath(kind registry.Kind, name resourcekey.Name, parents resourcekey.ParentChain) (string, error) {
	d := s.reg.MustGet(kind)
	if d.Policy == nil {
		return "", fmt.Errorf("layout: kind %q is not a policy kind", kind)
	}
	switch d.Policy.Style {
	case registry.FragmentPolicyStyle:
		return filepath.Join(s.InstanceDirectory(kind, parents, name), "policy.xml"), nil
	case registry.ServicePolicyStyle:
		return filepath.Join(s.rootDir, name.String()+".xml"), nil
	case registry.PerParentPolicyStyle:
		parentSeg, ok := parents.Last()
		if !ok {
			return "", fmt.Errorf("layout: kind %q uses PerParentPolicyStyle but has no parent segment", kind)
		}
		grandparents := parents.Prefix(parents.Len() - 1)
		parentDir := s.InstanceDirectory(registry.Kind(parentSeg.Kind), grandparents, parentSeg.Name)
		return filepath.Join(parentDir, name.String()+".xml"), nil
	default:
		return "", fmt.Errorf("layout: kind %q has unknown policy style %d", kind, d.Policy.Style)
	}
}

// CollectionURI returns the service URI of kind's collection, nested under
// parents.
func (s *Service) CollectionURI(kind registry.Kind, parents resourcekey.ParentChain) string {
	return joinURI(s.chainURI(parents), s.reg.CollectionURIPath(kind))
}

// ElementURI returns the service URI addressing one instance of kind.
func (s *Service) ElementURI(kind registry.Kind, name resourcekey.Name, parents resourcekey.ParentChain) string {
	return joinURI(s.CollectionURI(kind, parents), name.String())
}

func (s *Service) chainDir(parents resourcekey.ParentChain) string {
	dir := s.rootDir
	for _, seg := range parents.Segments() {
		dir = filepath.Join(dir, s.reg.CollectionDirName(registry.Kind(seg.Kind)), seg.Name.String())
	}
	return dir
}

func (s *Service) chainURI(parents resourcekey.ParentChain) string {
	uri := s.serviceURI
	for _, seg := range parents.Segments() {
		uri = joinURI(uri, s.reg.CollectionURIPath(registry.Kind(seg.Kind)), seg.Name.String())
	}
	return uri
}

// joinURI concatenates URI segments with a single slash between them,
// without running them through path.Clean: unlike path.Join, it never
// collapses the "//" that follows a "scheme://" prefix (spec.md §4.3
// URIs always carry one). Each part's leading/trailing slashes are
// trimmed before joining so repeated calls don't accumulate doubles.
func joinURI(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(p)
	}
	return b.String()
}
