// Package worker provides background job processing for OpsDeck.
package worker

import (
	"time"
)

// SweepConfig holds configuration for the landscape health sweep job.
type SweepConfig struct {
	// Landscapes restricts the sweep to the named landscapes.
	// If empty, every landscape in the catalog is swept.
	Landscapes []string

	// Concurrency is the number of landscapes swept in parallel. Probes
	// within a landscape already fan out per component.
	// Default: 2
	Concurrency int

	// Timeout is the timeout for sweeping a single landscape.
	// Default: 60 seconds
	Timeout time.Duration
}

// DefaultSweepConfig returns the default sweep configuration.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		Concurrency: 2,
		Timeout:     60 * time.Second,
	}
}
