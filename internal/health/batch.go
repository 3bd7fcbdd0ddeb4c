package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/opsdeck/opsdeck/internal/catalog"
)

// FetchAllHealthStatuses probes every component against one landscape
// concurrently and returns exactly one check record per component, in input
// order, regardless of how many probes fail. A failing or panicking component
// never taints its siblings: its record becomes an ERROR and the batch keeps
// going. onProgress, if non-nil, is invoked once per component as it settles.
func (s *Service) FetchAllHealthStatuses(ctx context.Context, components []*catalog.Component, landscape *catalog.Landscape, onProgress ProgressFunc) []ComponentCheck {
	total := len(components)
	results := make([]ComponentCheck, total)

	var wg sync.WaitGroup
	var progressMu sync.Mutex
	completed := 0

	for i, component := range components {
		wg.Add(1)
		go func(i int, component *catalog.Component) {
			defer wg.Done()

			results[i] = s.checkComponent(ctx, component, landscape)

			if onProgress != nil {
				// The callback runs under the lock so observers see
				// strictly increasing counts.
				progressMu.Lock()
				completed++
				onProgress(completed, total)
				progressMu.Unlock()
			}
		}(i, component)
	}

	wg.Wait()
	return results
}

// checkComponent runs the probe sequence for one component: primary health
// URL first, then one subdomain-qualified retry when the component carries
// the older naming convention in its metadata. Unexpected panics are
// converted into the same ERROR record shape as classified failures.
func (s *Service) checkComponent(ctx context.Context, component *catalog.Component, landscape *catalog.Landscape) (check ComponentCheck) {
	url := ProbeURL(component, landscape, PathHealth)
	check = ComponentCheck{
		ComponentID:   component.ID,
		ComponentName: component.Name,
		Landscape:     landscape.Name,
		HealthURL:     url,
		Status:        StatusLoading,
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("component", component.Name).
				Interface("panic", r).
				Msg("component check panicked")
			check.Status = StatusError
			check.Error = fmt.Sprintf("unexpected error: %v", r)
			check.LastChecked = time.Now()
		}
	}()

	outcome := s.FetchHealthStatus(ctx, url)

	if outcome.Status != OutcomeSuccess && component.Metadata.Subdomain != "" && !outcome.Aborted() {
		fallbackURL := ProbeURLWithSubdomain(component, landscape, component.Metadata.Subdomain, PathHealth)
		fallback := s.FetchHealthStatus(ctx, fallbackURL)
		if fallback.Status == OutcomeSuccess {
			url = fallbackURL
			check.HealthURL = fallbackURL
		}
		// On failure the record reflects the last attempt.
		outcome = fallback
	}

	elapsed := outcome.ResponseTimeMs
	check.ResponseTimeMs = &elapsed
	check.LastChecked = time.Now()

	if outcome.Status == OutcomeSuccess {
		check.Status = upstreamStatus(outcome.Data)
		check.Response = outcome.Data
	} else {
		check.Status = StatusError
		check.Error = outcome.Err.Error()
	}

	return check
}

// upstreamStatus extracts the status string the component reported in its
// health body. A 2xx body without a status field still counts as up.
func upstreamStatus(body map[string]interface{}) string {
	if status, ok := body["status"].(string); ok && status != "" {
		return status
	}
	return "UP"
}
