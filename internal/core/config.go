// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"time"

	"github.com/wesleyorama2/relay/internal/merge"
	"github.com/wesleyorama2/relay/internal/urlbuild"
)

// Params is an insertion-ordered set of query parameters.
type Params = urlbuild.Params

// Param is a single query parameter.
type Param = urlbuild.Param

// RequestConfig describes one request. Zero-valued fields are "unset" and
// inherit from earlier sources when merged.
type RequestConfig struct {
	// BaseURL is prepended to URL unless URL is absolute
	BaseURL string

	// URL is the request path or an absolute URL
	URL string

	// Method is the HTTP method; empty means GET
	Method string

	// Params are encoded into the query string in insertion order
	Params Params

	// Headers are sent with the request; keys are matched case-insensitively
	Headers map[string]string

	// Body is JSON-encoded unless it is a string or []byte
	Body any

	// Timeout bounds the transport call. Zero inherits; negative disables.
	Timeout time.Duration
}

// Clone returns a deep copy of c. Clone of nil is nil.
func (c *RequestConfig) Clone() *RequestConfig {
	if c == nil {
		return nil
	}
	out := *c
	out.Params = c.Params.Clone()
	out.Headers = merge.Headers(nil, c.Headers)
	out.Body = merge.Clone(c.Body)
	return &out
}

// Header returns the value of key, matched case-insensitively.
func (c *RequestConfig) Header(key string) string {
	if c == nil {
		return ""
	}
	return lookupFold(c.Headers, key)
}

// SetHeader sets key, replacing any existing key that differs only by case.
func (c *RequestConfig) SetHeader(key, value string) {
	c.Headers = merge.Headers(c.Headers, map[string]string{key: value})
}

// Merge combines sources left to right into a new config. Later sources
// win; nested maps merge recursively; slices are replaced, never
// concatenated. Inputs are not modified.
func Merge(sources ...*RequestConfig) *RequestConfig {
	out := &RequestConfig{}
	for _, src := range sources {
		if src == nil {
			continue
		}
		if src.BaseURL != "" {
			out.BaseURL = src.BaseURL
		}
		if src.URL != "" {
			out.URL = src.URL
		}
		if src.Method != "" {
			out.Method = src.Method
		}
		if src.Timeout != 0 {
			out.Timeout = src.Timeout
		}
		out.Headers = merge.Headers(out.Headers, src.Headers)
		if src.Params != nil {
			out.Params = out.Params.Merge(src.Params)
		}
		if src.Body != nil {
			out.Body = merge.Deep(out.Body, src.Body)
		}
	}
	return out
}
