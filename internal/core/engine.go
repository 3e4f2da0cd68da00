// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wesleyorama2/relay/internal/timeout"
	"github.com/wesleyorama2/relay/internal/urlbuild"
)

// AfterHook observes the final outcome of every call. cfg is the effective
// config after request interceptors (or the merged config if they failed).
type AfterHook func(cfg *RequestConfig, resp *Response, err error, dur time.Duration)

// Engine executes requests against defaults, interceptors and a transport.
// Engine is safe for concurrent use.
type Engine struct {
	defaults     *RequestConfig
	interceptors *Manager
	adapter      *Adapter
	logger       zerolog.Logger
	after        []AfterHook
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransport sets the transport. The default is NewHTTPTransport().
func WithTransport(t Transport) Option {
	return func(e *Engine) {
		if t != nil {
			e.adapter = NewAdapter(t)
		}
	}
}

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithAfterHook adds a hook run once per call after the outcome is known.
func WithAfterHook(hook AfterHook) Option {
	return func(e *Engine) {
		if hook != nil {
			e.after = append(e.after, hook)
		}
	}
}

// NewEngine creates an Engine. defaults is copied.
func NewEngine(defaults *RequestConfig, options ...Option) *Engine {
	e := &Engine{
		defaults:     defaults.Clone(),
		interceptors: NewManager(),
		logger:       zerolog.Nop(),
	}
	if e.defaults == nil {
		e.defaults = &RequestConfig{}
	}
	for _, option := range options {
		option(e)
	}
	if e.adapter == nil {
		e.adapter = NewAdapter(NewHTTPTransport())
	}
	return e
}

// Defaults returns a copy of the engine defaults.
func (e *Engine) Defaults() *RequestConfig {
	return e.defaults.Clone()
}

// Interceptors returns the engine's interceptor manager.
func (e *Engine) Interceptors() *Manager {
	return e.interceptors
}

// Request runs one call through the pipeline. On failure the returned
// error is always an *Error.
func (e *Engine) Request(ctx context.Context, cfg *RequestConfig) (*Response, error) {
	start := time.Now()
	effective, resp, err := e.execute(ctx, Merge(e.defaults, cfg))
	dur := time.Since(start)

	for _, hook := range e.after {
		hook(effective, resp, err, dur)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *Engine) execute(ctx context.Context, merged *RequestConfig) (*RequestConfig, *Response, error) {
	req, err := e.runRequestChain(ctx, merged)
	if err != nil {
		e.logFailure(err)
		return merged, nil, err
	}

	url := urlbuild.BuildFullURL(req.BaseURL, req.URL, req.Params)
	e.logger.Debug().
		Str("method", methodOf(req)).
		Str("url", url).
		Dur("timeout", req.Timeout).
		Msg("dispatching request")

	resp, err := e.dispatch(ctx, url, req)
	if err != nil {
		e.logFailure(err)
		return req, nil, err
	}

	resp, err = e.runResponseChain(ctx, resp)
	if err != nil {
		e.logFailure(err)
		return req, nil, err
	}
	return req, resp, nil
}

func (e *Engine) runRequestChain(ctx context.Context, cfg *RequestConfig) (*RequestConfig, error) {
	for i, fn := range e.interceptors.RequestChain() {
		next, err := fn(ctx, cfg)
		if err != nil {
			return nil, newInterceptorError(cfg, err)
		}
		if next == nil {
			return nil, newInterceptorError(cfg, fmt.Errorf("request interceptor %d returned nil config", i))
		}
		cfg = next
	}
	return cfg, nil
}

func (e *Engine) runResponseChain(ctx context.Context, resp *Response) (*Response, error) {
	cfg := resp.Config
	for i, fn := range e.interceptors.ResponseChain() {
		next, err := fn(ctx, resp)
		if err != nil {
			return nil, newInterceptorError(cfg, err)
		}
		if next == nil {
			return nil, newInterceptorError(cfg, fmt.Errorf("response interceptor %d returned nil response", i))
		}
		resp = next
	}
	return resp, nil
}

// newController is replaced in tests to observe the controller lifecycle.
var newController = timeout.New

type dispatchResult struct {
	resp *Response
	err  error
}

// dispatch races the transport against the timeout controller. The
// controller is released on every path; a result arriving after the
// timeout is discarded.
func (e *Engine) dispatch(ctx context.Context, url string, cfg *RequestConfig) (*Response, error) {
	ctrl := newController(ctx, cfg.Timeout)
	defer ctrl.Release()

	done := make(chan dispatchResult, 1)
	go func() {
		resp, err := e.adapter.Dispatch(ctrl.Context(), url, cfg)
		done <- dispatchResult{resp: resp, err: err}
	}()

	select {
	case r := <-done:
		return e.settle(ctx, ctrl, cfg, r)
	case <-ctrl.Done():
		// prefer a result that completed in the same instant
		select {
		case r := <-done:
			if r.err == nil {
				return r.resp, nil
			}
		default:
		}
		if ctrl.Fired() {
			return nil, newTimeoutError(cfg, ctrl.Duration())
		}
		return nil, newCanceledError(cfg, context.Cause(ctx))
	}
}

func (e *Engine) settle(ctx context.Context, ctrl *timeout.Controller, cfg *RequestConfig, r dispatchResult) (*Response, error) {
	if r.err == nil {
		return r.resp, nil
	}
	if pe, ok := r.err.(*Error); ok && pe.Kind == KindProtocol {
		return nil, pe
	}
	if ctrl.Fired() {
		return nil, newTimeoutError(cfg, ctrl.Duration())
	}
	if ctx.Err() != nil {
		return nil, newCanceledError(cfg, r.err)
	}
	return nil, newNetworkError(cfg, r.err)
}

func (e *Engine) logFailure(err error) {
	event := e.logger.Debug().Err(err)
	if ae, ok := AsError(err); ok {
		event = event.Str("kind", string(ae.Kind)).Str("code", ae.Code)
	}
	event.Msg("request failed")
}

func methodOf(cfg *RequestConfig) string {
	if cfg.Method == "" {
		return "GET"
	}
	return cfg.Method
}
