package health

import (
	"context"

	"github.com/opsdeck/opsdeck/internal/catalog"
)

// endpointVariant is one candidate system-info endpoint: a path, optionally
// qualified by the component's subdomain.
type endpointVariant struct {
	path      string
	subdomain string
}

// FetchSystemInfo resolves build/version metadata for a component by probing
// up to four endpoint variants sequentially, stopping at the first success.
// Different service generations expose the metadata under different
// conventions; each attempt's failure is swallowed and only full exhaustion
// surfaces as an error. An aborted attempt short-circuits the chain instead.
func (s *Service) FetchSystemInfo(ctx context.Context, component *catalog.Component, landscape *catalog.Landscape) SystemInfoResult {
	subdomain := component.Metadata.Subdomain

	variants := make([]endpointVariant, 0, 4)
	variants = append(variants, endpointVariant{path: PathSystemInfo})
	if subdomain != "" {
		variants = append(variants, endpointVariant{path: PathSystemInfo, subdomain: subdomain})
	}
	variants = append(variants, endpointVariant{path: PathVersion})
	if subdomain != "" {
		variants = append(variants, endpointVariant{path: PathVersion, subdomain: subdomain})
	}

	for _, variant := range variants {
		url := ProbeURL(component, landscape, variant.path)
		if variant.subdomain != "" {
			url = ProbeURLWithSubdomain(component, landscape, variant.subdomain, variant.path)
		}

		outcome := s.FetchHealthStatus(ctx, url)
		if outcome.Status == OutcomeSuccess {
			return SystemInfoResult{
				Status: OutcomeSuccess,
				Data:   outcome.Data,
				URL:    url,
			}
		}
		if outcome.Aborted() {
			return SystemInfoResult{Status: OutcomeError, Err: ErrAborted}
		}

		s.logger.Debug().
			Str("component", component.Name).
			Str("url", url).
			Err(outcome.Err).
			Msg("system info variant failed, trying next")
	}

	return SystemInfoResult{Status: OutcomeError, Err: ErrAllEndpointsFailed}
}
