package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Exit outcome labels.
const (
	OutcomeExit   = "exit"
	OutcomeSignal = "signal"
)

var (
	registry = prometheus.NewRegistry()

	spawns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "runnel",
		Name:      "spawns_total",
		Help:      "Total number of child processes spawned.",
	})

	exits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "runnel",
		Name:      "exits_total",
		Help:      "Total number of reaped children by outcome.",
	}, []string{"outcome"})

	childRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "runnel",
		Name:      "child_running",
		Help:      "Whether a supervised child is currently running (1 or 0).",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "runnel",
		Name:      "build_info",
		Help:      "Build metadata for the running runnel binary.",
	}, []string{"go_version", "vcs_revision", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(spawns, exits, childRunning, buildInfo)
}

// Registry returns the Prometheus registry containing all runnel metrics.
func Registry() *prometheus.Registry {
	return registry
}

// IncSpawns records a successful spawn and marks the child as running.
func IncSpawns() {
	spawns.Inc()
	childRunning.Set(1)
}

// ObserveExit records a reaped child and marks it as no longer running.
func ObserveExit(outcome string) {
	if outcome == "" {
		outcome = OutcomeExit
	}
	exits.WithLabelValues(outcome).Inc()
	childRunning.Set(0)
}

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs_revision": "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
