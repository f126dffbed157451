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

// Package apimerrors holds the error taxonomy shared by every core package:
// InputError, SchemaError, NetworkError, NotFoundError, UnsupportedError,
// ConsistencyError. Cancellation has no sentinel here: context errors are
// returned as they are. Callers use errors.Is/errors.As against the
// sentinels below; per-resource context is added with fmt.Errorf("%w").
package apimerrors

import (
	"errors"
	"strings"
)

// Sentinel kinds. Wrap these with fmt.Errorf("%w: ...", Err...) to add
// resource-specific context while keeping errors.Is classification intact.
var (
	// ErrInvalidName marks a malformed resource name or revision suffix.
	ErrInvalidName = errors.New("input: invalid resource name")

	// ErrInvalidConfiguration marks a malformed inclusion/override
	// configuration document.
	ErrInvalidConfiguration = errors.New("input: invalid configuration")

	// ErrAmbiguousFile marks a filesystem path that more than one resource
	// kind's parsing strategy claims.
	ErrAmbiguousFile = errors.New("input: ambiguous file parse")

	// ErrSchema marks a DTO that failed to deserialize/reserialize through
	// its typed schema.
	ErrSchema = errors.New("schema: dto round-trip failed")

	// ErrMissingProperty marks a DTO missing a required property.
	ErrMissingProperty = errors.New("schema: missing required property")

	// ErrNotJSONObject marks a DTO payload that is not a JSON object.
	ErrNotJSONObject = errors.New("schema: not a json object")

	// ErrNetwork marks a transport failure not otherwise classified.
	ErrNetwork = errors.New("network: request failed")

	// ErrNotFound marks a classified 404. Read paths convert this to "absent";
	// it must never surface past the classification boundary.
	ErrNotFound = errors.New("not found")

	// ErrUnsupported marks a classified SKU-unsupported collection probe.
	ErrUnsupported = errors.New("unsupported: sku does not support resource")

	// ErrConsistency marks a relationship-validation failure: missing
	// mutuality, a cycle, a secondary missing from a composite, or a
	// mismatch between a file's parent directory and its declared parent.
	ErrConsistency = errors.New("consistency: relationship validation failed")
)

// MissingPropertyError names the JSON path of a missing required property.
type MissingPropertyError struct {
	Path string
}

func (e *MissingPropertyError) Error() string {
	return "schema: missing required property at " + e.Path
}

func (e *MissingPropertyError) Unwrap() error { return ErrMissingProperty }

// RelationshipValidationError aggregates every message produced by the
// relationship builder's three validators (spec.md §4.7): unregistered
// endpoints, non-mutual edges, and cycles.
type RelationshipValidationError struct {
	Messages []string
}

func (e *RelationshipValidationError) Error() string {
	return "consistency: relationship validation failed: " + strings.Join(e.Messages, "; ")
}

func (e *RelationshipValidationError) Unwrap() error { return ErrConsistency }
