// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timeout provides a deadline-armed cancellation signal for a single
// request.
package timeout

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrExpired is the cancellation cause recorded when the timer fires.
var ErrExpired = errors.New("timeout expired")

// State is the lifecycle position of a Controller.
type State int

const (
	// Unarmed means no timer was created (duration absent or non-positive).
	Unarmed State = iota
	// Armed means a timer is pending.
	Armed
	// Fired means the timer expired and the context was cancelled.
	Fired
	// Released means the controller was released; the signal is no longer meaningful.
	Released
)

func (s State) String() string {
	switch s {
	case Unarmed:
		return "unarmed"
	case Armed:
		return "armed"
	case Fired:
		return "fired"
	case Released:
		return "released"
	}
	return "unknown"
}

// Controller owns one cancellation context and at most one timer.
// Controller is safe for concurrent use.
type Controller struct {
	ctx      context.Context
	cancel   context.CancelCauseFunc
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
	state State
}

// New creates a Controller whose context derives from parent. When d is
// positive a timer is armed that cancels the context with ErrExpired.
func New(parent context.Context, d time.Duration) *Controller {
	ctx, cancel := context.WithCancelCause(parent)
	c := &Controller{
		ctx:      ctx,
		cancel:   cancel,
		duration: d,
	}
	if d > 0 {
		c.state = Armed
		c.timer = time.AfterFunc(d, c.expire)
	}
	return c
}

func (c *Controller) expire() {
	c.mu.Lock()
	if c.state != Armed {
		c.mu.Unlock()
		return
	}
	c.state = Fired
	c.mu.Unlock()
	c.cancel(ErrExpired)
}

// Context returns the cancellation token observed by the transport.
func (c *Controller) Context() context.Context { return c.ctx }

// Done is shorthand for Context().Done().
func (c *Controller) Done() <-chan struct{} { return c.ctx.Done() }

// Duration returns the configured duration.
func (c *Controller) Duration() time.Duration { return c.duration }

// Fired reports whether the timer expired before Release.
func (c *Controller) Fired() bool {
	return context.Cause(c.ctx) == ErrExpired
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Release disarms the timer and frees the context. Calling it more than
// once is a no-op.
func (c *Controller) Release() {
	c.mu.Lock()
	if c.state == Released {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.state = Released
	c.mu.Unlock()
	c.cancel(context.Canceled)
}
