// Package catalog provides the component and landscape registry for OpsDeck.
package catalog

import (
	"errors"
	"time"
)

// Sentinel errors for catalog operations.
var (
	// ErrComponentNotFound indicates the requested component does not exist.
	ErrComponentNotFound = errors.New("component not found")
	// ErrLandscapeNotFound indicates the requested landscape does not exist.
	ErrLandscapeNotFound = errors.New("landscape not found")
	// ErrDuplicateName indicates an entity with the same name already exists.
	ErrDuplicateName = errors.New("name already in use")
)

// Component is one independently deployable service tracked by the portal.
type Component struct {
	// ID is the stable identifier (cmp_ prefix).
	ID string

	// Name is the service name, lower-cased when used as a URL subject.
	Name string

	// Team is the owning team, for roster views.
	Team string

	// Metadata holds optional per-component settings.
	Metadata Metadata

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Metadata holds optional per-component settings persisted as JSON.
type Metadata struct {
	// Subdomain is an alternate URL naming convention used by a subset of
	// older components. Empty when the component follows the standard scheme.
	Subdomain string `json:"subdomain,omitempty"`

	// JenkinsJob is the self-service build job for this component, if any.
	JenkinsJob string `json:"jenkinsJob,omitempty"`

	// RepositoryURL links to the component's source repository.
	RepositoryURL string `json:"repositoryUrl,omitempty"`
}

// Landscape is one deployment environment a component may run in.
type Landscape struct {
	// Name is the display identifier (e.g. "eu10").
	Name string

	// Route is the DNS suffix appended when building probe URLs.
	Route string

	CreatedAt time.Time
	UpdatedAt time.Time
}
