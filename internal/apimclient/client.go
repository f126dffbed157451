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

// Package apimclient is the thin HTTP capability the core consumes (spec.md
// §1: "the core consumes four capabilities: HTTP, file I/O, git file I/O
// over a commit, and hierarchical configuration lookup"). It never
// constructs URIs itself — callers pass fully-formed collection/element
// URIs built by the layout package — and every response is run through
// classify() so the rest of the system only ever sees the spec's error
// taxonomy, never a raw status code.
package apimclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/wso2/api-platform/gateway/apim-sync/internal/apimerrors"
)

// Doer is the minimal surface this package needs from an *http.Client,
// kept narrow so tests can substitute a fake transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps an HTTP Doer with the APIM wire protocol conventions: an
// api-version query parameter appended to every request, and response
// classification per spec.md §4.10.
type Client struct {
	doer       Doer
	apiVersion string
	headers    map[string]string
	logger     *slog.Logger
	pollDelay  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHeader sets a header sent on every request (e.g. Authorization).
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithPollInterval overrides the delay between async-completion polls used
// by Delete's waitForCompletion path. Tests set this to near-zero.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollDelay = d }
}

// New builds a Client. apiVersion is appended as "api-version=<v>" to every
// request URI.
func New(doer Doer, apiVersion string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		doer:       doer,
		apiVersion: apiVersion,
		headers:    map[string]string{},
		logger:     logger,
		pollDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) withVersion(uri string) string {
	sep := "?"
	if strings.ContainsRune(uri, '?') {
		sep = "&"
	}
	return fmt.Sprintf("%s%sapi-version=%s", uri, sep, c.apiVersion)
}

func (c *Client) do(ctx context.Context, method, uri string, body []byte) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, uri, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: building %s %s: %v", apimerrors.ErrNetwork, method, uri, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
		return 0, nil, fmt.Errorf("%w: %s %s: %v", apimerrors.ErrNetwork, method, uri, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("%w: reading response body for %s %s: %v", apimerrors.ErrNetwork, method, uri, err)
	}
	return resp.StatusCode, respBody, nil
}

// GetOptional issues a GET with "optional" read semantics: a 404 is
// reported as (nil, false, nil); any other error propagates; success
// returns (body, true, nil).
func (c *Client) GetOptional(ctx context.Context, uri string) (json.RawMessage, bool, error) {
	status, body, err := c.do(ctx, http.MethodGet, c.withVersion(uri), nil)
	if err != nil {
		return nil, false, err
	}
	if clsErr := classify(status, body); clsErr != nil {
		if errors.Is(clsErr, apimerrors.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, clsErr
	}
	return json.RawMessage(body), true, nil
}

// Exists issues a HEAD request; 404 is reported as false with no error.
func (c *Client) Exists(ctx context.Context, uri string) (bool, error) {
	status, body, err := c.do(ctx, http.MethodHead, c.withVersion(uri), nil)
	if err != nil {
		return false, err
	}
	if clsErr := classify(status, body); clsErr != nil {
		if errors.Is(clsErr, apimerrors.ErrNotFound) {
			return false, nil
		}
		return false, clsErr
	}
	return true, nil
}

// ProbeCollection issues an unclassified-404 GET used by the SKU oracle
// (spec.md §4.2): success is nil, a classified SKU-unsupported response is
// apimerrors.ErrUnsupported, anything else is fatal.
func (c *Client) ProbeCollection(ctx context.Context, collectionURI string) error {
	status, body, err := c.do(ctx, http.MethodGet, c.withVersion(collectionURI), nil)
	if err != nil {
		return err
	}
	return classify(status, body)
}

// Page is one page of a paginated APIM list response.
type Page struct {
	Value    []json.RawMessage `json:"value"`
	NextLink string            `json:"nextLink"`
}

// ListAll follows nextLink until exhausted and returns every item.
func (c *Client) ListAll(ctx context.Context, collectionURI string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	uri := c.withVersion(collectionURI)
	for uri != "" {
		status, body, err := c.do(ctx, http.MethodGet, uri, nil)
		if err != nil {
			return nil, err
		}
		if clsErr := classify(status, body); clsErr != nil {
			if errors.Is(clsErr, apimerrors.ErrNotFound) {
				return out, nil
			}
			return nil, clsErr
		}
		var page Page
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("%w: decoding list page from %s: %v", apimerrors.ErrSchema, collectionURI, err)
		}
		out = append(out, page.Value...)
		uri = page.NextLink
	}
	return out, nil
}

// Put writes body (already-marshalled JSON) to the element URI.
func (c *Client) Put(ctx context.Context, elementURI string, body json.RawMessage) error {
	status, respBody, err := c.do(ctx, http.MethodPut, c.withVersion(elementURI), body)
	if err != nil {
		return err
	}
	return classify(status, respBody)
}

// DeleteOptions controls Delete's tolerance and completion semantics.
type DeleteOptions struct {
	IgnoreNotFound    bool
	WaitForCompletion bool
}

// Delete issues a DELETE, optionally tolerating 404 and optionally polling
// the element URI until it disappears (APIM deletes several resource kinds
// asynchronously).
func (c *Client) Delete(ctx context.Context, elementURI string, opts DeleteOptions) error {
	status, body, err := c.do(ctx, http.MethodDelete, c.withVersion(elementURI), nil)
	if err != nil {
		return err
	}
	if clsErr := classify(status, body); clsErr != nil {
		if errors.Is(clsErr, apimerrors.ErrNotFound) && opts.IgnoreNotFound {
			return nil
		}
		return clsErr
	}
	if !opts.WaitForCompletion {
		return nil
	}
	return c.waitUntilGone(ctx, elementURI)
}

func (c *Client) waitUntilGone(ctx context.Context, elementURI string) error {
	for {
		exists, err := c.Exists(ctx, elementURI)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollDelay):
		}
	}
}
