// Package metrics holds the Prometheus instruments for the kiosk loop.
// Everything is registered on the default registry and exposed by the
// hosting feature under /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Orchestration loop metrics
var (
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_cycles_total",
			Help: "Total number of orchestration cycles run",
		},
	)

	CycleErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_cycle_errors_total",
			Help: "Total number of orchestration cycles that failed and were retried",
		},
	)

	ButtonPressesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_button_presses_total",
			Help: "Total number of button presses that started playback",
		},
	)
)

// Import metrics
var (
	ImportRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_import_runs_total",
			Help: "Total number of removable media import runs",
		},
	)

	FilesCopiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_files_copied_total",
			Help: "Total number of files copied from removable media into the store",
		},
	)

	StoreFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pressplay_store_files",
			Help: "Number of playable files currently in the media store",
		},
	)
)

// Player session metrics
var (
	SessionsStartedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_sessions_started_total",
			Help: "Total number of player sessions started",
		},
	)

	PlayerCrashesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pressplay_player_crashes_total",
			Help: "Total number of player processes that died mid-playback",
		},
	)

	PlaybacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pressplay_playbacks_total",
			Help: "Total number of completed playbacks by end reason",
		},
		[]string{"reason"},
	)
)
