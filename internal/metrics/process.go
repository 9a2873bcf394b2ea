// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ffmpegStartTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsforge_ffmpeg_start_total",
		Help: "Total number of ffmpeg process starts, by result.",
	}, []string{"result"})

	ffmpegExitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsforge_ffmpeg_exit_total",
		Help: "Total number of ffmpeg process exits, by reason (success, error, canceled).",
	}, []string{"reason"})

	progressEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hlsforge_progress_events_total",
		Help: "Total number of progress events derived from encoder output.",
	})

	processTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hlsforge_process_terminate_total",
		Help: "Signals sent to encoder process groups, by signal and result.",
	}, []string{"signal", "result"})
)

func IncFFmpegStart(result string) {
	ffmpegStartTotal.WithLabelValues(result).Inc()
}

func IncFFmpegExit(reason string) {
	ffmpegExitTotal.WithLabelValues(reason).Inc()
}

func IncProgressEvent() {
	progressEventsTotal.Inc()
}

func IncProcessTerminate(signal, result string) {
	processTerminateTotal.WithLabelValues(signal, result).Inc()
}
