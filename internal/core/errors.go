// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"
)

// Kind discriminates the failure classes surfaced by the engine.
type Kind string

const (
	// KindTimeout means the timeout fired before the transport completed.
	KindTimeout Kind = "timeout"
	// KindProtocol means the exchange completed with a non-2xx status.
	KindProtocol Kind = "protocol"
	// KindNetwork means the transport failed for any other reason.
	KindNetwork Kind = "network"
	// KindInterceptor means a request or response interceptor failed.
	KindInterceptor Kind = "interceptor"
)

// Machine-readable codes carried by Error.Code.
const (
	CodeTimeout     = "ETIMEDOUT"
	CodeBadResponse = "ERR_BAD_RESPONSE"
	CodeBadRequest  = "ERR_BAD_REQUEST"
	CodeCanceled    = "ERR_CANCELED"
	CodeNetwork     = "ERR_NETWORK"
	CodeConnRefused = "ECONNREFUSED"
	CodeConnReset   = "ECONNRESET"
	CodeNotFound    = "ENOTFOUND"
)

// Sentinels for errors.Is; they match any *Error of the same Kind.
var (
	ErrTimeout     = &Error{Kind: KindTimeout}
	ErrProtocol    = &Error{Kind: KindProtocol}
	ErrNetwork     = &Error{Kind: KindNetwork}
	ErrInterceptor = &Error{Kind: KindInterceptor}
)

// Error is the single failure type returned by Engine.Request.
type Error struct {
	Kind    Kind
	Message string

	// Code is a machine-readable code; empty when none applies
	Code string

	// Config is the effective config of the failed call
	Config *RequestConfig

	// Response is set only for KindProtocol
	Response *Response

	// Timeout is the configured duration for KindTimeout
	Timeout time.Duration

	// Cause is the underlying failure, if any
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind) + " error"
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error of the same Kind, which makes the package
// sentinels usable with errors.Is.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Status returns the response status for protocol errors and 0 otherwise.
func (e *Error) Status() int {
	if e == nil || e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// IsError reports whether err is, or wraps, an *Error.
func IsError(err error) bool {
	_, ok := AsError(err)
	return ok
}

// AsError extracts *Error.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newTimeoutError(cfg *RequestConfig, d time.Duration) *Error {
	return &Error{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("timeout of %dms exceeded", d.Milliseconds()),
		Code:    CodeTimeout,
		Config:  cfg,
		Timeout: d,
		Cause:   context.DeadlineExceeded,
	}
}

func newProtocolError(cfg *RequestConfig, resp *Response) *Error {
	return &Error{
		Kind:     KindProtocol,
		Message:  fmt.Sprintf("Request failed with status %d", resp.Status),
		Code:     CodeBadResponse,
		Config:   cfg,
		Response: resp,
	}
}

func newCanceledError(cfg *RequestConfig, cause error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: "request canceled",
		Code:    CodeCanceled,
		Config:  cfg,
		Cause:   cause,
	}
}

func newNetworkError(cfg *RequestConfig, cause error) *Error {
	msg := "Network Error"
	if cause != nil && cause.Error() != "" {
		msg = cause.Error()
	}
	return &Error{
		Kind:    KindNetwork,
		Message: msg,
		Code:    networkCode(cause),
		Config:  cfg,
		Cause:   cause,
	}
}

// newInterceptorError keeps an interceptor's failure intact: an *Error is
// returned as-is, anything else is wrapped with its own message.
func newInterceptorError(cfg *RequestConfig, cause error) *Error {
	if e, ok := cause.(*Error); ok {
		return e
	}
	e := &Error{
		Kind:    KindInterceptor,
		Message: cause.Error(),
		Config:  cfg,
		Cause:   cause,
	}
	var coded interface{ Code() string }
	if errors.As(cause, &coded) {
		e.Code = coded.Code()
	}
	return e
}

func networkCode(err error) string {
	if err == nil {
		return CodeNetwork
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		return CodeNotFound
	case errors.Is(err, syscall.ECONNREFUSED):
		return CodeConnRefused
	case errors.Is(err, syscall.ECONNRESET):
		return CodeConnReset
	}
	return CodeNetwork
}

// codedError attaches a code to an internal failure so networkCode can
// report it.
type codedError struct {
	code string
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }
func (e *codedError) Code() string  { return e.code }
