// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	relay "github.com/wesleyorama2/relay/http"
)

const (
	histogramMin     = 1
	histogramMax     = 3600000000 // 1 hour in microseconds
	histogramSigFigs = 3
)

// LatencyStats is a point-in-time latency summary.
type LatencyStats struct {
	Count  int64
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
	P50    time.Duration
	P90    time.Duration
	P95    time.Duration
	P99    time.Duration
}

// Summary aggregates everything a Recorder has seen.
type Summary struct {
	Total     int64
	Succeeded int64
	Failed    int64
	Bytes     int64
	Elapsed   time.Duration
	Latency   LatencyStats

	// ByKind counts failures per error kind
	ByKind map[string]int64
}

// SuccessRate returns the fraction of successful calls in [0, 1].
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}

// Throughput returns calls per second over the recording window.
func (s Summary) Throughput() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Total) / s.Elapsed.Seconds()
}

// Recorder collects call latencies in an HDR histogram.
type Recorder struct {
	// histMu also guards startTime
	hist   *hdrhistogram.Histogram
	histMu sync.Mutex

	total     atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	bytes     atomic.Int64

	kindsMu sync.Mutex
	kinds   map[string]int64

	startTime time.Time
}

// NewRecorder creates an empty Recorder. Latencies are kept between 1µs
// and 1h with 3 significant figures.
func NewRecorder() *Recorder {
	return &Recorder{
		hist:      hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs),
		kinds:     make(map[string]int64),
		startTime: time.Now(),
	}
}

// Record records one call outcome.
func (r *Recorder) Record(_ *relay.RequestConfig, resp *relay.Response, err error, dur time.Duration) {
	micros := dur.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	r.histMu.Lock()
	r.hist.RecordValue(micros)
	r.histMu.Unlock()

	r.total.Add(1)
	if err != nil {
		r.failed.Add(1)
		kind := "unknown"
		if e, ok := relay.AsError(err); ok {
			kind = string(e.Kind)
		}
		r.kindsMu.Lock()
		r.kinds[kind]++
		r.kindsMu.Unlock()
		return
	}
	r.succeeded.Add(1)
	if resp != nil {
		r.bytes.Add(int64(len(resp.Raw)))
	}
}

// Hook returns Record as an after-hook.
func (r *Recorder) Hook() relay.AfterHook {
	return r.Record
}

// Summary returns a snapshot of the recorded calls.
func (r *Recorder) Summary() Summary {
	r.histMu.Lock()
	latency := LatencyStats{
		Count:  r.hist.TotalCount(),
		Min:    time.Duration(r.hist.Min()) * time.Microsecond,
		Max:    time.Duration(r.hist.Max()) * time.Microsecond,
		Mean:   time.Duration(r.hist.Mean()) * time.Microsecond,
		StdDev: time.Duration(r.hist.StdDev()) * time.Microsecond,
		P50:    time.Duration(r.hist.ValueAtQuantile(50)) * time.Microsecond,
		P90:    time.Duration(r.hist.ValueAtQuantile(90)) * time.Microsecond,
		P95:    time.Duration(r.hist.ValueAtQuantile(95)) * time.Microsecond,
		P99:    time.Duration(r.hist.ValueAtQuantile(99)) * time.Microsecond,
	}
	elapsed := time.Since(r.startTime)
	r.histMu.Unlock()

	r.kindsMu.Lock()
	kinds := make(map[string]int64, len(r.kinds))
	for k, v := range r.kinds {
		kinds[k] = v
	}
	r.kindsMu.Unlock()

	return Summary{
		Total:     r.total.Load(),
		Succeeded: r.succeeded.Load(),
		Failed:    r.failed.Load(),
		Bytes:     r.bytes.Load(),
		Elapsed:   elapsed,
		Latency:   latency,
		ByKind:    kinds,
	}
}

// Reset clears all recorded values and restarts the window.
func (r *Recorder) Reset() {
	r.histMu.Lock()
	r.hist.Reset()
	r.startTime = time.Now()
	r.histMu.Unlock()

	r.kindsMu.Lock()
	r.kinds = make(map[string]int64)
	r.kindsMu.Unlock()

	r.total.Store(0)
	r.succeeded.Store(0)
	r.failed.Store(0)
	r.bytes.Store(0)
}
