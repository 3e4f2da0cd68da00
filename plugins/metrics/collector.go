// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	relay "github.com/wesleyorama2/relay/http"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
)

// Collector provides Prometheus metrics for client calls.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
}

// NewCollector registers the client metrics on registry. namespace
// prefixes every metric name and may be empty.
func NewCollector(registry prometheus.Registerer, namespace string) *Collector {
	return &Collector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests by outcome",
			},
			[]string{"method", "status_code", "outcome"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of requests in seconds, interceptors included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed requests by kind and code",
			},
			[]string{"kind", "code"},
		),
	}
}

// Observe records one call outcome.
func (c *Collector) Observe(cfg *relay.RequestConfig, resp *relay.Response, err error, dur time.Duration) {
	if c == nil {
		return
	}

	method := methodOf(cfg)
	outcome, status := OutcomeSuccess, 0
	if resp != nil {
		status = resp.Status
	}
	if err != nil {
		kind, code := "unknown", ""
		if e, ok := relay.AsError(err); ok {
			kind, code = string(e.Kind), e.Code
			status = e.Status()
		}
		outcome = kind
		c.errorsTotal.WithLabelValues(kind, code).Inc()
	}

	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status), outcome).Inc()
	c.requestDuration.WithLabelValues(method, outcome).Observe(dur.Seconds())
}

// Hook returns Observe as an after-hook.
func (c *Collector) Hook() relay.AfterHook {
	return c.Observe
}

func methodOf(cfg *relay.RequestConfig) string {
	if cfg == nil || cfg.Method == "" {
		return "GET"
	}
	return cfg.Method
}
