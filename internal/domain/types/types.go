// Package types contains read-only shapes shared by the service and the API.
package types

import "time"

// ModelInfo describes the model loaded at startup.
type ModelInfo struct {
	Kind     string    `json:"kind"`
	Features []string  `json:"features"`
	Classes  []int     `json:"classes"`
	Source   string    `json:"source"`
	Digest   string    `json:"digest"`
	Bytes    int       `json:"bytes"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Stats is a snapshot of the prediction counters.
type Stats struct {
	Started         bool           `json:"started"`
	ModelKind       string         `json:"model_kind,omitempty"`
	Predictions     int64          `json:"predictions"`
	ByLabel         map[string]int `json:"by_label"`
	InferenceErrors int64          `json:"inference_errors"`
	CacheEnabled    bool           `json:"cache_enabled"`
	CacheHits       int64          `json:"cache_hits"`
	CacheMisses     int64          `json:"cache_misses"`
	CacheEntries    int            `json:"cache_entries"`
	UptimeSeconds   float64        `json:"uptime_seconds"`
}

