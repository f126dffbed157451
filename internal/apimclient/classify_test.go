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
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
)

func TestClassify_Success(t *testing.T) {
	assert.NoError(t, classify(http.StatusOK, nil))
	assert.NoError(t, classify(http.StatusCreated, nil))
}

func TestClassify_NotFound(t *testing.T) {
	err := classify(http.StatusNotFound, []byte(`{"error":"missing"}`))
	assert.True(t, errors.Is(err, apimerrors.ErrNotFound))
}

func TestClassify_SKUUnsupported(t *testing.T) {
	err := classify(http.StatusBadRequest, []byte(`{"error":{"message":"MethodNotAllowedInPricingTier: nope"}}`))
	assert.True(t, errors.Is(err, apimerrors.ErrUnsupported))

	err = classify(http.StatusBadRequest, []byte(`methodnotallowedinpricingtier`))
	assert.True(t, errors.Is(err, apimerrors.ErrUnsupported))

	err = classify(http.StatusInternalServerError, []byte("Request processing failed due to internal error"))
	assert.True(t, errors.Is(err, apimerrors.ErrUnsupported))
}

func TestClassify_OtherErrorsAreNetworkErrors(t *testing.T) {
	err := classify(http.StatusBadRequest, []byte("something else entirely"))
	assert.True(t, errors.Is(err, apimerrors.ErrNetwork))

	err = classify(http.StatusInternalServerError, []byte("boom"))
	assert.True(t, errors.Is(err, apimerrors.ErrNetwork))

	err = classify(http.StatusForbidden, nil)
	assert.True(t, errors.Is(err, apimerrors.ErrNetwork))
}
