// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package requestid tags every request with a unique id.
package requestid

import (
	"context"

	"github.com/google/uuid"

	relay "github.com/wesleyorama2/relay/http"
)

// DefaultHeader is the header the id is written to.
const DefaultHeader = "X-Request-ID"

// Plugin sets header to a new UUID on every request that does not already
// carry one. An empty header means DefaultHeader.
func Plugin(header string) relay.Plugin {
	if header == "" {
		header = DefaultHeader
	}
	return relay.Plugin{
		Request: func(_ context.Context, cfg *relay.RequestConfig) (*relay.RequestConfig, error) {
			if cfg.Header(header) == "" {
				cfg.SetHeader(header, uuid.NewString())
			}
			return cfg, nil
		},
	}
}

// FromResponse returns the id the response's request was sent with.
func FromResponse(resp *relay.Response, header string) string {
	if resp == nil || resp.Config == nil {
		return ""
	}
	if header == "" {
		header = DefaultHeader
	}
	return resp.Config.Header(header)
}
