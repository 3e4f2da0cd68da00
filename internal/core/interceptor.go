// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"context"
	"sync"
	"sync/atomic"
)

// RequestInterceptor transforms the effective config before dispatch.
// It may mutate and return cfg; it must not return (nil, nil).
type RequestInterceptor func(ctx context.Context, cfg *RequestConfig) (*RequestConfig, error)

// ResponseInterceptor transforms a successful response.
// It must not return (nil, nil).
type ResponseInterceptor func(ctx context.Context, resp *Response) (*Response, error)

// Plugin bundles an optional request and response interceptor registered
// together.
type Plugin struct {
	Request  RequestInterceptor
	Response ResponseInterceptor
}

type entry[T any] struct {
	id uint64
	fn T
}

// registry is a copy-on-write list: snapshots handed out are never
// modified afterwards.
type registry[T any] struct {
	mu      sync.Mutex
	entries []entry[T]
}

func (r *registry[T]) add(id uint64, fn T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]entry[T], len(r.entries), len(r.entries)+1)
	copy(next, r.entries)
	r.entries = append(next, entry[T]{id: id, fn: fn})
}

func (r *registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]entry[T], 0, len(r.entries))
	for _, e := range r.entries {
		if e.id != id {
			next = append(next, e)
		}
	}
	r.entries = next
}

func (r *registry[T]) snapshot() []T {
	r.mu.Lock()
	entries := r.entries
	r.mu.Unlock()

	fns := make([]T, len(entries))
	for i, e := range entries {
		fns[i] = e.fn
	}
	return fns
}

func (r *registry[T]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Manager holds the ordered request and response interceptor lists.
// Registration returns a remover bound to that one registration; the same
// function registered twice runs twice and is removed independently.
type Manager struct {
	nextID   atomic.Uint64
	request  registry[RequestInterceptor]
	response registry[ResponseInterceptor]
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{}
}

// UseRequest appends fn to the request list. A nil fn is ignored.
func (m *Manager) UseRequest(fn RequestInterceptor) (remove func()) {
	if fn == nil {
		return func() {}
	}
	id := m.nextID.Add(1)
	m.request.add(id, fn)
	return func() { m.request.remove(id) }
}

// UseResponse appends fn to the response list. A nil fn is ignored.
func (m *Manager) UseResponse(fn ResponseInterceptor) (remove func()) {
	if fn == nil {
		return func() {}
	}
	id := m.nextID.Add(1)
	m.response.add(id, fn)
	return func() { m.response.remove(id) }
}

// Use registers both halves of p and returns one remover for both.
func (m *Manager) Use(p Plugin) (remove func()) {
	removeReq := m.UseRequest(p.Request)
	removeResp := m.UseResponse(p.Response)
	return func() {
		removeReq()
		removeResp()
	}
}

// RequestChain returns a snapshot of the request interceptors in
// registration order.
func (m *Manager) RequestChain() []RequestInterceptor {
	return m.request.snapshot()
}

// ResponseChain returns a snapshot of the response interceptors in
// registration order.
func (m *Manager) ResponseChain() []ResponseInterceptor {
	return m.response.snapshot()
}

// Len returns the number of registered request and response interceptors.
func (m *Manager) Len() (requests, responses int) {
	return m.request.len(), m.response.len()
}
