// Package probe verifies a running prediction service from the outside.
package probe

import (
	"time"

	"github.com/okian/sugarsignal/internal/domain/model"
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Path       string        // Prediction endpoint path
	Requests   int           // Number of distinct inputs to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Generator seed; equal seeds yield equal inputs
	OutputFile string        // Optional JSON dump of cases and results
}

// Case is one generated input and what the service answered for it.
type Case struct {
	ID     string          `json:"id"`
	Input  model.InputData `json:"input"`
	First  int             `json:"first"`
	Second int             `json:"second"`
	Err    string          `json:"error,omitempty"`
}

// Report holds probe statistics.
type Report struct {
	Requests        int           `json:"requests"`
	Submitted       int64         `json:"submitted"`
	Succeeded       int64         `json:"succeeded"`
	Failed          int64         `json:"failed"`
	Mismatched      int           `json:"mismatched"`
	OutOfDomain     int           `json:"out_of_domain"`
	ByLabel         map[int]int   `json:"by_label"`
	InvalidRejected bool          `json:"invalid_rejected"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"duration"`
}

// OK reports whether every check passed.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Mismatched == 0 && r.OutOfDomain == 0 && r.InvalidRejected
}
