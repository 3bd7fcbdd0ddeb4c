package models

import "github.com/opsdeck/opsdeck/internal/health"

// LandscapeHealth is the response for a full-landscape health sweep.
type LandscapeHealth struct {
	Landscape string                  `json:"landscape"`
	Total     int                     `json:"total"`
	Checked   Timestamp               `json:"checked"`
	Results   []health.ComponentCheck `json:"results"`
}

// SystemInfo is the response for a component system information lookup.
type SystemInfo struct {
	ComponentID string                 `json:"componentId"`
	Landscape   string                 `json:"landscape"`
	URL         string                 `json:"url,omitempty"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Error       string                 `json:"error,omitempty"`
}

// BuildTrigger is the response for a queued component build.
type BuildTrigger struct {
	ComponentID string    `json:"componentId"`
	JobName     string    `json:"jobName"`
	QueueURL    string    `json:"queueUrl,omitempty"`
	TriggeredAt Timestamp `json:"triggeredAt"`
}

// LastBuild is the response for a component's most recent build.
type LastBuild struct {
	ComponentID string `json:"componentId"`
	JobName     string `json:"jobName"`
	Number      int    `json:"number"`
	Result      string `json:"result,omitempty"`
	Building    bool   `json:"building"`
	URL         string `json:"url,omitempty"`
	DurationMs  int64  `json:"durationMs"`
}
