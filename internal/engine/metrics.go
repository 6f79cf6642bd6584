package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	FetchRequests       atomic.Int64
	FetchSuccesses      atomic.Int64
	FetchFailures       atomic.Int64
	EdgeAttempts        atomic.Int64
	RotatingAttempts    atomic.Int64
	ResidentialAttempts atomic.Int64
	OverlayAttempts     atomic.Int64
	RelayAttempts       atomic.Int64
	MetadataAttempts    atomic.Int64
	CircuitRotations    atomic.Int64
}

func IncrFetchRequests()  { metrics.FetchRequests.Add(1) }
func IncrFetchSuccesses() { metrics.FetchSuccesses.Add(1) }
func IncrFetchFailures()  { metrics.FetchFailures.Add(1) }

// IncrStrategyAttempt bumps the counter for the named strategy.
func IncrStrategyAttempt(name string) {
	switch name {
	case "edge":
		metrics.EdgeAttempts.Add(1)
	case "rotating":
		metrics.RotatingAttempts.Add(1)
	case "residential":
		metrics.ResidentialAttempts.Add(1)
	case "overlay":
		metrics.OverlayAttempts.Add(1)
	case "relay":
		metrics.RelayAttempts.Add(1)
	case "metadata":
		metrics.MetadataAttempts.Add(1)
	}
}

func IncrCircuitRotations() { metrics.CircuitRotations.Add(1) }

// GetMetrics returns a snapshot of all counters including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := Cfg.Cache.Stats()
	return map[string]int64{
		"fetch_requests":       metrics.FetchRequests.Load(),
		"fetch_successes":      metrics.FetchSuccesses.Load(),
		"fetch_failures":       metrics.FetchFailures.Load(),
		"edge_attempts":        metrics.EdgeAttempts.Load(),
		"rotating_attempts":    metrics.RotatingAttempts.Load(),
		"residential_attempts": metrics.ResidentialAttempts.Load(),
		"overlay_attempts":     metrics.OverlayAttempts.Load(),
		"relay_attempts":       metrics.RelayAttempts.Load(),
		"metadata_attempts":    metrics.MetadataAttempts.Load(),
		"circuit_rotations":    metrics.CircuitRotations.Load(),
		"cache_hits":           hits,
		"cache_misses":         misses,
	}
}

// FormatMetrics returns metrics as a simple text format for the HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"fetch_requests", "fetch_successes", "fetch_failures",
		"edge_attempts", "rotating_attempts", "residential_attempts",
		"overlay_attempts", "relay_attempts", "metadata_attempts",
		"circuit_rotations",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
