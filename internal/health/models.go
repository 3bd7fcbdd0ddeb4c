// Package health implements the health and system-information aggregation
// engine: it probes component instances across landscapes through the proxy
// gateway and collects one result per component regardless of individual
// failures.
package health

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdeck/opsdeck/internal/proxy"
)

// Sentinel errors for probe outcomes.
var (
	// ErrAborted is returned when a probe was cancelled by the caller.
	// Not a genuine failure; callers suppress it in user-facing reporting.
	ErrAborted = errors.New("Request aborted")

	// ErrAllEndpointsFailed is returned when every system-info endpoint
	// variant was attempted and none succeeded.
	ErrAllEndpointsFailed = errors.New("All system info endpoints failed")
)

// Gateway relays probe requests through the proxy gateway.
type Gateway interface {
	Fetch(ctx context.Context, target string) (*proxy.Result, error)
}

// OutcomeStatus classifies a single probe attempt.
type OutcomeStatus string

const (
	// OutcomeSuccess means the upstream component answered with a 2xx.
	OutcomeSuccess OutcomeStatus = "success"
	// OutcomeError covers transport errors, upstream errors and aborts.
	OutcomeError OutcomeStatus = "error"
)

// Component check statuses beyond what the upstream body reports.
const (
	// StatusLoading is the initial state of a check record before its
	// probe settles.
	StatusLoading = "LOADING"
	// StatusError marks a check whose every attempt failed.
	StatusError = "ERROR"
)

// Outcome is the result of one HTTP probe attempt.
type Outcome struct {
	// Status is success or error.
	Status OutcomeStatus

	// Data is the parsed response body on success.
	Data map[string]interface{}

	// Err is nil on success. An aborted probe carries ErrAborted so
	// callers can distinguish it from genuine failures.
	Err error

	// ResponseTimeMs is the wall-clock time of this attempt, recorded on
	// success and failure alike.
	ResponseTimeMs int64
}

// Aborted reports whether the probe was cancelled rather than failed.
func (o Outcome) Aborted() bool {
	return errors.Is(o.Err, ErrAborted)
}

// ComponentCheck is the batch-level health record for one component.
// Each batch produces a fresh record per component; only the orchestrator
// mutates it, and only until the component's probe settles.
type ComponentCheck struct {
	ComponentID    string                 `json:"componentId"`
	ComponentName  string                 `json:"componentName"`
	Landscape      string                 `json:"landscape"`
	HealthURL      string                 `json:"healthUrl"`
	Status         string                 `json:"status"`
	Response       map[string]interface{} `json:"response,omitempty"`
	ResponseTimeMs *int64                 `json:"responseTimeMs,omitempty"`
	Error          string                 `json:"error,omitempty"`
	LastChecked    time.Time              `json:"lastChecked"`
}

// SystemInfoResult is the outcome of system-info resolution for one component.
type SystemInfoResult struct {
	// Status is success or error.
	Status OutcomeStatus

	// Data is the build/version metadata body of the winning variant,
	// upstream-defined and passed through opaquely.
	Data map[string]interface{}

	// URL is the endpoint variant that produced the data.
	URL string

	// Err is set when every attempted variant failed.
	Err error
}

// ProgressFunc is invoked once per component as its check settles,
// with the number of settled components and the batch total.
// Invocations follow completion order, not input order.
type ProgressFunc func(completed, total int)

// ServiceConfig holds configuration for the health service.
type ServiceConfig struct {
	// Gateway is the proxy gateway client (required).
	Gateway Gateway

	// Logger for probe operations.
	Logger zerolog.Logger

	// Metrics records probe statistics (optional).
	Metrics *Metrics
}

// Service probes component health and system information.
type Service struct {
	gateway Gateway
	logger  zerolog.Logger
	metrics *Metrics
}

// NewService creates a new health service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		gateway: cfg.Gateway,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}
}
