// Copyright (C) 2021-2025 Chronicle Labs, Inc.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package transport

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/chronicleprotocol/go-streamio/errutil"
)

// DefaultUserAgent is sent with every HTTP request unless overridden.
const DefaultUserAgent = "streamio"

type HTTPOption func(*HTTP)

// WithHTTPClient sets the HTTP client. By default, a client using
// EnsureDefaultTransport is used.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(h *HTTP) {
		h.client = client
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPOption {
	return func(h *HTTP) {
		h.headers.Add(key, value)
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers http.Header) HTTPOption {
	return func(h *HTTP) {
		for k, vs := range headers {
			for _, v := range vs {
				h.headers.Add(k, v)
			}
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(h *HTTP) {
		h.userAgent = ua
	}
}

// WithTimeout sets the timeout of the default client. It has no effect
// if a client is provided with WithHTTPClient.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTP) {
		h.timeout = d
	}
}

// HTTP is the protocol for "http" and "https" locations.
type HTTP struct {
	client    *http.Client
	headers   http.Header
	userAgent string
	timeout   time.Duration
}

// NewHTTP creates a new HTTP protocol.
func NewHTTP(opts ...HTTPOption) *HTTP {
	h := &HTTP{
		headers:   make(http.Header),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.client == nil {
		h.client = &http.Client{
			Transport: EnsureDefaultTransport(),
			Timeout:   h.timeout,
		}
	}
	return h
}

// Open implements the Protocol interface. Any non-2xx response is a
// network error carrying the status code.
func (h *HTTP) Open(ctx context.Context, loc Location) (io.ReadCloser, error) {
	res, err := h.do(ctx, http.MethodGet, loc)
	if err != nil {
		return nil, errutil.NetworkError("get", loc.Raw, err)
	}
	if !isSuccess(res.StatusCode) {
		_ = res.Body.Close()
		return nil, errutil.NetworkError("get", loc.Raw, &errutil.StatusError{Code: res.StatusCode})
	}
	return res.Body, nil
}

// Size implements the Protocol interface. It returns -1 if the response
// has no Content-Length header.
func (h *HTTP) Size(ctx context.Context, loc Location) (int64, error) {
	res, err := h.do(ctx, http.MethodHead, loc)
	if err != nil {
		return -1, errutil.NetworkError("head", loc.Raw, err)
	}
	_ = res.Body.Close()
	if !isSuccess(res.StatusCode) {
		return -1, errutil.NetworkError("head", loc.Raw, &errutil.StatusError{Code: res.StatusCode})
	}
	return res.ContentLength, nil
}

// Exists implements the Protocol interface. Any non-2xx response yields
// false, only transport failures are returned as errors.
func (h *HTTP) Exists(ctx context.Context, loc Location) (bool, error) {
	res, err := h.do(ctx, http.MethodHead, loc)
	if err != nil {
		return false, errutil.NetworkError("head", loc.Raw, err)
	}
	_ = res.Body.Close()
	return isSuccess(res.StatusCode), nil
}

func (h *HTTP) do(ctx context.Context, method string, loc Location) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, loc.Raw, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range h.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	return h.client.Do(req)
}

func isSuccess(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}
