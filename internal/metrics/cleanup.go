// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CleanupFilesRemoved counts files removed from failed job outputs.
	CleanupFilesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsforge_cleanup_files_removed_total",
		Help: "Total number of files removed while purging failed job outputs.",
	})

	// CleanupFailures counts removals that failed. They are logged, never returned.
	CleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsforge_cleanup_failures_total",
		Help: "Total number of failed removals while purging job outputs.",
	})
)

// RecordCleanup adds one purge's outcome.
func RecordCleanup(removed, failed int) {
	CleanupFilesRemoved.Add(float64(removed))
	CleanupFailures.Add(float64(failed))
}
