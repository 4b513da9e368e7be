package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	reloadCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "av",
		Subsystem: "server",
		Name:      "reloads_total",
		Help:      "Page reloads by outcome (changed, unchanged, error).",
	}, []string{"result"})

	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "av",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "HTTP requests served per route.",
	}, []string{"route"})

	blocksGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "av",
		Subsystem: "summary",
		Name:      "blocks",
		Help:      "Activity blocks found on the page at the last reload.",
	})

	groupsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "av",
		Subsystem: "summary",
		Name:      "groups",
		Help:      "Minute groups in the current summary.",
	})

	skippedGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "av",
		Subsystem: "summary",
		Name:      "skipped_blocks",
		Help:      "Blocks left out of the summary for lack of a timestamp.",
	})

	lastReloadGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "av",
		Subsystem: "server",
		Name:      "last_reload_timestamp_seconds",
		Help:      "Unix timestamp of the last successful reload.",
	})
)

func init() {
	prometheus.MustRegister(reloadCounter, requestCounter, blocksGauge, groupsGauge, skippedGauge, lastReloadGauge)
}

func recordReload(result string) {
	reloadCounter.WithLabelValues(result).Inc()
}

func recordSnapshot(s *Snapshot) {
	blocksGauge.Set(float64(s.Summary.TotalBlocks))
	groupsGauge.Set(float64(s.Summary.GroupCount()))
	skippedGauge.Set(float64(s.Summary.SkippedBlocks))
	lastReloadGauge.Set(float64(s.LoadedAt.Unix()))
}

func recordRequest(route string) {
	requestCounter.WithLabelValues(route).Inc()
}

// reloadResult labels for reloadCounter.
const (
	reloadChanged   = "changed"
	reloadUnchanged = "unchanged"
	reloadError     = "error"
)
