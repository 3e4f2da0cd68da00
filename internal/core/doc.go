// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package core is the request-execution engine behind the public http
// package.
//
// A call moves through a fixed pipeline:
//
//	merge defaults + overrides
//	  -> request interceptors (registration order, sequential)
//	  -> build URL
//	  -> transport under a timeout controller
//	  -> response interceptors (registration order, sequential)
//
// Every failure reaches the caller as a single *Error carrying a Kind
// (timeout, protocol, network, interceptor) and the effective config.
//
// Thread Safety:
//
// Engine and Manager are safe for concurrent use. Each call snapshots the
// interceptor lists at the start of each phase, so registering or removing
// interceptors never affects a call already iterating.
package core
