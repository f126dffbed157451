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

package apimclient

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
)

const (
	methodNotAllowedFingerprint = "methodnotallowedinpricingtier"
	internalErrorFingerprint    = "Request processing failed due to internal error"
)

// classify turns an HTTP status/body pair into the error taxonomy from
// spec.md §4.2/§4.10/§7. A nil return means the call succeeded.
func classify(status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return apimerrors.ErrNotFound
	case status == http.StatusBadRequest && strings.Contains(strings.ToLower(string(body)), methodNotAllowedFingerprint):
		return apimerrors.ErrUnsupported
	case status == http.StatusInternalServerError && strings.Contains(string(body), internalErrorFingerprint):
		return apimerrors.ErrUnsupported
	default:
		return fmt.Errorf("%w: unexpected status %d: %s", apimerrors.ErrNetwork, status, truncate(body, 512))
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "...(truncated)"
}
