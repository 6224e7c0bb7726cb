// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package metrics provides Prometheus metrics for the icon cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the cache metrics. It implements icon.Observer.
type Metrics struct {
	// Lookup metrics
	Hits     prometheus.Counter
	Misses   prometheus.Counter
	Failures *prometheus.CounterVec

	// Fetch metrics
	FetchDuration prometheus.Histogram
	IconBytes     prometheus.Histogram
	Cached        prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics registers the cache metrics under namespace on a private
// registry, so several instances can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_hits_total",
			Help:      "Lookups served from the cache without I/O",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_misses_total",
			Help:      "Lookups that required a fetch",
		}),
		Failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_fetch_failures_total",
			Help:      "Failed lookups by reason, counted per caller even when callers share one fetch",
		}, []string{"reason"}),

		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "icon_fetch_duration_seconds",
			Help:      "Duration of successful icon fetches in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		IconBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "icon_bytes",
			Help:      "Size of fetched icons in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 8),
		}),
		Cached: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "icons_cached",
			Help:      "Number of icons held in the cache",
		}),

		registry: reg,
	}
}

// Registry returns the registry the metrics were registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Hit implements icon.Observer.
func (m *Metrics) Hit(string) {
	m.Hits.Inc()
}

// Miss implements icon.Observer.
func (m *Metrics) Miss(string) {
	m.Misses.Inc()
}

// Fetched implements icon.Observer.
func (m *Metrics) Fetched(_ string, took time.Duration, size int) {
	m.FetchDuration.Observe(took.Seconds())
	m.IconBytes.Observe(float64(size))
}

// Failed implements icon.Observer.
func (m *Metrics) Failed(_ string, err error) {
	m.Failures.WithLabelValues(Reason(err)).Inc()
}
