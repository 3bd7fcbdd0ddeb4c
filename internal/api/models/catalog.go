package models

// ComponentRequest is the payload for creating or updating a component.
type ComponentRequest struct {
	Name     string                   `json:"name"`
	Team     string                   `json:"team,omitempty"`
	Metadata ComponentMetadataRequest `json:"metadata"`
}

// ComponentMetadataRequest carries the optional per-component settings.
type ComponentMetadataRequest struct {
	Subdomain     string `json:"subdomain,omitempty"`
	JenkinsJob    string `json:"jenkinsJob,omitempty"`
	RepositoryURL string `json:"repositoryUrl,omitempty"`
}

// Component is the API view of a catalog component.
type Component struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Team      string                   `json:"team,omitempty"`
	Metadata  ComponentMetadataRequest `json:"metadata"`
	CreatedAt Timestamp                `json:"createdAt"`
	UpdatedAt Timestamp                `json:"updatedAt"`
}

// LandscapeRequest is the payload for creating or updating a landscape.
type LandscapeRequest struct {
	Name  string `json:"name"`
	Route string `json:"route"`
}

// Landscape is the API view of a landscape.
type Landscape struct {
	Name      string    `json:"name"`
	Route     string    `json:"route"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}
