// Package jenkins provides a client for triggering and inspecting component
// build jobs on a Jenkins controller.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/opsdeck/opsdeck/internal/resilience"
)

// UpstreamName identifies the Jenkins controller in the upstream registry.
const UpstreamName = "jenkins"

// ClientConfig holds configuration for the Jenkins client.
type ClientConfig struct {
	// BaseURL is the Jenkins controller URL (required).
	BaseURL string

	// Username for API token authentication.
	Username string

	// APIToken is the Jenkins API token paired with Username.
	APIToken string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Jenkins API client.
type Client struct {
	baseURL    string
	username   string
	apiToken   string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new Jenkins client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(UpstreamName))
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		username:   cfg.Username,
		apiToken:   cfg.APIToken,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the upstream name.
func (c *Client) Name() string {
	return UpstreamName
}

// QueueRef points at the queue item Jenkins created for a triggered build.
type QueueRef struct {
	// JobName is the job the build was queued for.
	JobName string `json:"jobName"`

	// QueueURL is the queue item URL from the Location header.
	QueueURL string `json:"queueUrl"`

	// TriggeredAt is when the trigger request was accepted.
	TriggeredAt time.Time `json:"triggeredAt"`
}

// BuildInfo describes the most recent build of a job.
type BuildInfo struct {
	// Number is the build number.
	Number int `json:"number"`

	// Result is SUCCESS, FAILURE, UNSTABLE, ABORTED, or empty while building.
	Result string `json:"result"`

	// Building reports whether the build is still in progress.
	Building bool `json:"building"`

	// URL is the build's page on the controller.
	URL string `json:"url"`

	// DurationMs is the build duration in milliseconds.
	DurationMs int64 `json:"durationMs"`
}

// TriggerBuild queues a build of the named job. Jenkins answers 201 with a
// Location header pointing at the queue item.
func (c *Client) TriggerBuild(ctx context.Context, jobName string) (*QueueRef, error) {
	endpoint := fmt.Sprintf("%s/job/%s/build", c.baseURL, url.PathEscape(jobName))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	ref := &QueueRef{
		JobName:     jobName,
		QueueURL:    resp.Header.Get("Location"),
		TriggeredAt: time.Now(),
	}

	c.logger.Info().
		Str("job", jobName).
		Str("queue_url", ref.QueueURL).
		Msg("build triggered")

	return ref, nil
}

// GetLastBuild fetches the most recent build of the named job.
func (c *Client) GetLastBuild(ctx context.Context, jobName string) (*BuildInfo, error) {
	endpoint := fmt.Sprintf("%s/job/%s/lastBuild/api/json", c.baseURL, url.PathEscape(jobName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var jenkinsResp lastBuildResponse
	if err := json.NewDecoder(resp.Body).Decode(&jenkinsResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &BuildInfo{
		Number:     jenkinsResp.Number,
		Result:     jenkinsResp.Result,
		Building:   jenkinsResp.Building,
		URL:        jenkinsResp.URL,
		DurationMs: jenkinsResp.Duration,
	}, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.username != "" && c.apiToken != "" {
		req.SetBasicAuth(c.username, c.apiToken)
	}
}

// Jenkins API response structures.

type lastBuildResponse struct {
	Number   int    `json:"number"`
	Result   string `json:"result"`
	Building bool   `json:"building"`
	URL      string `json:"url"`
	Duration int64  `json:"duration"`
}
