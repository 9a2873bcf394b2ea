// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics provides Prometheus metrics for hlsforge.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels stay low-cardinality: no job IDs, paths or rendition titles.

var (
	// TranscodeJobsTotal counts finished transcode jobs by result
	// (succeeded, failed, canceled).
	TranscodeJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsforge_transcode_jobs_total",
		Help: "Total number of finished transcode jobs, by result.",
	}, []string{"result"})

	// TranscodeDuration observes wall time of a transcode job by result.
	TranscodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hlsforge_transcode_duration_seconds",
		Help:    "Wall time of transcode jobs, by result.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200, 3600, 7200},
	}, []string{"result"})

	// ProbeDuration observes how long duration probing takes.
	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hlsforge_probe_duration_seconds",
		Help:    "Time spent probing input duration.",
		Buckets: prometheus.DefBuckets,
	})

	// JobsActive tracks transcode jobs currently encoding.
	JobsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "hlsforge_jobs_active",
		Help: "Current number of transcode jobs in flight.",
	})
)

// RecordJob counts a finished job and its wall time.
func RecordJob(result string, seconds float64) {
	TranscodeJobsTotal.WithLabelValues(result).Inc()
	TranscodeDuration.WithLabelValues(result).Observe(seconds)
}

// ObserveProbe records a probe duration.
func ObserveProbe(seconds float64) {
	ProbeDuration.Observe(seconds)
}
