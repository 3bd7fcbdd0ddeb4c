package health

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// FetchHealthStatus performs one proxied GET against the given URL and
// classifies the outcome. Elapsed wall-clock time is recorded on success and
// failure alike. This layer never retries; fallback across URLs belongs to
// the orchestrator and the system-info resolver.
func (s *Service) FetchHealthStatus(ctx context.Context, url string) Outcome {
	start := time.Now()
	result, err := s.gateway.Fetch(ctx, url)
	elapsed := time.Since(start).Milliseconds()

	outcome := Outcome{ResponseTimeMs: elapsed}

	switch {
	case err != nil && errors.Is(err, context.Canceled):
		outcome.Status = OutcomeError
		outcome.Err = ErrAborted

	case err != nil:
		outcome.Status = OutcomeError
		if err.Error() == "" {
			err = errors.New("health request failed")
		}
		outcome.Err = err

	case result.ComponentSuccess != nil && !*result.ComponentSuccess:
		outcome.Status = OutcomeError
		outcome.Err = fmt.Errorf("component responded with status %d", result.StatusCode)

	default:
		outcome.Status = OutcomeSuccess
		outcome.Data = result.Body
	}

	s.metrics.recordProbe(ctx, outcome)

	if outcome.Status == OutcomeError && !outcome.Aborted() {
		s.logger.Debug().
			Str("url", url).
			Int64("response_time_ms", elapsed).
			Err(outcome.Err).
			Msg("probe failed")
	}

	return outcome
}
