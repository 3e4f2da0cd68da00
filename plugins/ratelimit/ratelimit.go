// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ratelimit throttles outgoing requests on the client side.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	relay "github.com/wesleyorama2/relay/http"
)

// Plugin returns a request interceptor that waits on limiter before each
// request. Waiting honors the call context; a canceled wait fails the
// call before anything is sent.
func Plugin(limiter *rate.Limiter) relay.Plugin {
	return relay.Plugin{
		Request: func(ctx context.Context, cfg *relay.RequestConfig) (*relay.RequestConfig, error) {
			if err := limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("rate limit: %w", err)
			}
			return cfg, nil
		},
	}
}

// New creates a limiter allowing rps requests per second with the given
// burst. A burst below 1 is raised to 1.
func New(rps float64, burst int) *rate.Limiter {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	return rate.NewLimiter(limit, burst)
}
