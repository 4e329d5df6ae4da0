package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "netbash"
)

// Dispatch outcomes
const (
	OutcomeAsset    = "asset"
	OutcomeCommand  = "command"
	OutcomeNotFound = "not_found"
)

var (
	// RequestsTotal counts dispatched requests by outcome
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of dispatched requests by outcome",
		},
		[]string{"outcome"},
	)

	// CommandsTotal counts processed commands by result
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Total number of processed commands by success",
		},
		[]string{"success"},
	)

	// CommandDuration observes command processing latency
	CommandDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent processing a command",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// AssetCacheLookups counts resource cache lookups by result
	AssetCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_cache_lookups_total",
			Help:      "Total number of resource cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)
)

func init() {
	// Register metrics with Prometheus default registry
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(AssetCacheLookups)
}

// ObserveRequest records a dispatched request
func ObserveRequest(outcome string) {
	RequestsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCommand records a processed command and how long it took
func ObserveCommand(success bool, seconds float64) {
	label := "false"
	if success {
		label = "true"
	}
	CommandsTotal.WithLabelValues(label).Inc()
	CommandDuration.Observe(seconds)
}

// ObserveCacheLookup records a resource cache hit or miss
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	AssetCacheLookups.WithLabelValues(result).Inc()
}
