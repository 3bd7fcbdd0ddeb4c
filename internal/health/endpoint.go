package health

import (
	"fmt"
	"strings"

	"github.com/opsdeck/opsdeck/internal/catalog"
)

// Probe endpoint paths. Components expose build metadata under two
// historically accumulated conventions, probed in order by FetchSystemInfo.
const (
	// PathHealth is the liveness endpoint.
	PathHealth = "/health"
	// PathSystemInfo is the current build/version metadata endpoint.
	PathSystemInfo = "/systemInformation/public"
	// PathVersion is the legacy build metadata endpoint.
	PathVersion = "/version"
)

// ProbeURL computes the standard probe URL for a component in a landscape.
func ProbeURL(component *catalog.Component, landscape *catalog.Landscape, path string) string {
	return fmt.Sprintf("https://%s.cfapps.%s%s",
		strings.ToLower(component.Name), landscape.Route, path)
}

// ProbeURLWithSubdomain computes the subdomain-qualified probe URL used by
// components that follow the older naming convention.
func ProbeURLWithSubdomain(component *catalog.Component, landscape *catalog.Landscape, subdomain, path string) string {
	return fmt.Sprintf("https://%s.%s.cfapps.%s%s",
		subdomain, strings.ToLower(component.Name), landscape.Route, path)
}
