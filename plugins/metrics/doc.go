// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metrics observes client calls through after-hooks.
//
// Collector exports Prometheus counters and histograms labeled by method,
// status and outcome. Recorder keeps an HDR latency histogram in process
// for percentile summaries, as used by the CLI's --repeat mode.
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(reg, "relay")
//	recorder := metrics.NewRecorder()
//	client := http.Create(defaults,
//	    http.WithAfterHook(collector.Hook()),
//	    http.WithAfterHook(recorder.Hook()),
//	)
//
// # Thread Safety
//
// Collector and Recorder are safe for concurrent use.
package metrics
