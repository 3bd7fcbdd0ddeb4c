package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/health"
)

// SweepJob probes every catalog component against every landscape and
// records the results. It backs both the scheduled sweeps and on-demand
// Pub/Sub triggers.
type SweepJob struct {
	config  SweepConfig
	logger  zerolog.Logger
	catalog *catalog.Service
	health  *health.Service

	metrics *SweepMetrics
}

// SweepMetrics tracks sweep job statistics.
type SweepMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalSweeps      int64
	ComponentsProbed int64
	ComponentsUp     int64
	ComponentsDown   int64

	// Timings
	LastSweepAt       time.Time
	LastSweepDuration time.Duration
	TotalDuration     time.Duration
}

// SweepJobConfig holds configuration for creating a SweepJob.
type SweepJobConfig struct {
	Config         SweepConfig
	Logger         zerolog.Logger
	CatalogService *catalog.Service
	HealthService  *health.Service
}

// NewSweepJob creates a new sweep job processor.
func NewSweepJob(cfg SweepJobConfig) *SweepJob {
	config := cfg.Config
	if config.Concurrency == 0 {
		config.Concurrency = DefaultSweepConfig().Concurrency
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultSweepConfig().Timeout
	}

	return &SweepJob{
		config:  config,
		logger:  cfg.Logger,
		catalog: cfg.CatalogService,
		health:  cfg.HealthService,
		metrics: &SweepMetrics{},
	}
}

// SweepResult contains the result of a sweep across all landscapes.
type SweepResult struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	Landscapes int
	Probed     int
	Up         int
	Down       int
	Errors     []SweepError
}

// SweepError represents a failed component probe during a sweep.
type SweepError struct {
	Landscape string
	Component string
	Error     string
}

// Run executes the sweep for all configured landscapes.
func (j *SweepJob) Run(ctx context.Context) (*SweepResult, error) {
	startTime := time.Now()
	result := &SweepResult{StartTime: startTime}

	landscapes, err := j.resolveLandscapes(ctx)
	if err != nil {
		return nil, err
	}
	components, err := j.catalog.ListComponents(ctx)
	if err != nil {
		return nil, err
	}

	result.Landscapes = len(landscapes)

	j.logger.Info().
		Int("landscapes", len(landscapes)).
		Int("components", len(components)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting health sweep")

	landscapesChan := make(chan *catalog.Landscape, len(landscapes))
	resultsChan := make(chan landscapeResult, len(landscapes))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.sweepWorker(ctx, components, landscapesChan, resultsChan)
		}()
	}

	for _, landscape := range landscapes {
		landscapesChan <- landscape
	}
	close(landscapesChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for lr := range resultsChan {
		result.Probed += len(lr.checks)
		for _, check := range lr.checks {
			if check.Status == health.StatusError {
				result.Down++
				result.Errors = append(result.Errors, SweepError{
					Landscape: lr.landscape,
					Component: check.ComponentName,
					Error:     check.Error,
				})
			} else {
				result.Up++
			}
		}
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("probed", result.Probed).
		Int("up", result.Up).
		Int("down", result.Down).
		Msg("health sweep completed")

	return result, nil
}

type landscapeResult struct {
	landscape string
	checks    []health.ComponentCheck
}

func (j *SweepJob) sweepWorker(ctx context.Context, components []*catalog.Component, landscapes <-chan *catalog.Landscape, results chan<- landscapeResult) {
	for landscape := range landscapes {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.sweepLandscape(ctx, components, landscape)
		}
	}
}

func (j *SweepJob) sweepLandscape(ctx context.Context, components []*catalog.Component, landscape *catalog.Landscape) landscapeResult {
	sweepCtx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	logger := j.logger.With().Str("landscape", landscape.Name).Logger()

	onProgress := func(completed, total int) {
		logger.Debug().
			Int("completed", completed).
			Int("total", total).
			Msg("sweep progress")
	}

	checks := j.health.FetchAllHealthStatuses(sweepCtx, components, landscape, onProgress)

	return landscapeResult{
		landscape: landscape.Name,
		checks:    checks,
	}
}

// resolveLandscapes returns the landscapes to sweep, honoring the configured
// name filter.
func (j *SweepJob) resolveLandscapes(ctx context.Context) ([]*catalog.Landscape, error) {
	landscapes, err := j.catalog.ListLandscapes(ctx)
	if err != nil {
		return nil, err
	}

	if len(j.config.Landscapes) == 0 {
		return landscapes, nil
	}

	wanted := make(map[string]bool, len(j.config.Landscapes))
	for _, name := range j.config.Landscapes {
		wanted[name] = true
	}

	filtered := make([]*catalog.Landscape, 0, len(landscapes))
	for _, landscape := range landscapes {
		if wanted[landscape.Name] {
			filtered = append(filtered, landscape)
		}
	}
	return filtered, nil
}

func (j *SweepJob) updateMetrics(result *SweepResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalSweeps++
	j.metrics.ComponentsProbed += int64(result.Probed)
	j.metrics.ComponentsUp += int64(result.Up)
	j.metrics.ComponentsDown += int64(result.Down)
	j.metrics.LastSweepAt = result.EndTime
	j.metrics.LastSweepDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *SweepJob) GetMetrics() SweepMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return SweepMetrics{
		TotalSweeps:       j.metrics.TotalSweeps,
		ComponentsProbed:  j.metrics.ComponentsProbed,
		ComponentsUp:      j.metrics.ComponentsUp,
		ComponentsDown:    j.metrics.ComponentsDown,
		LastSweepAt:       j.metrics.LastSweepAt,
		LastSweepDuration: j.metrics.LastSweepDuration,
		TotalDuration:     j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *SweepJob) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_sweeps":        m.TotalSweeps,
		"components_probed":   m.ComponentsProbed,
		"components_up":       m.ComponentsUp,
		"components_down":     m.ComponentsDown,
		"last_sweep_at":       m.LastSweepAt,
		"last_sweep_duration": m.LastSweepDuration.String(),
		"total_duration":      m.TotalDuration.String(),
	}
}
