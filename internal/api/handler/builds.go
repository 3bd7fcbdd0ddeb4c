package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/api/middleware"
	"github.com/opsdeck/opsdeck/internal/api/models"
	"github.com/opsdeck/opsdeck/internal/api/response"
	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/jenkins"
)

// BuildsHandler handles component build endpoints backed by Jenkins.
type BuildsHandler struct {
	catalog *catalog.Service
	jenkins *jenkins.Client
	metrics *middleware.UpstreamMetrics
}

// NewBuildsHandler creates a new BuildsHandler. metrics is optional.
func NewBuildsHandler(catalogService *catalog.Service, jenkinsClient *jenkins.Client, metrics *middleware.UpstreamMetrics) *BuildsHandler {
	return &BuildsHandler{
		catalog: catalogService,
		jenkins: jenkinsClient,
		metrics: metrics,
	}
}

// TriggerBuild handles POST /v1/components/{componentId}/builds.
func (h *BuildsHandler) TriggerBuild(w http.ResponseWriter, r *http.Request) {
	component, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}

	if component.Metadata.JenkinsJob == "" {
		response.BadRequest(w, r, "component has no Jenkins job configured", nil)
		return
	}

	start := time.Now()
	ref, err := h.jenkins.TriggerBuild(r.Context(), component.Metadata.JenkinsJob)
	h.recordRequest("trigger-build", time.Since(start), err)
	if err != nil {
		response.ServiceUnavailable(w, r, "triggering build failed")
		return
	}

	response.Accepted(w, r, ref.QueueURL, models.BuildTrigger{
		ComponentID: component.ID,
		JobName:     ref.JobName,
		QueueURL:    ref.QueueURL,
		TriggeredAt: models.Timestamp(ref.TriggeredAt),
	})
}

// LastBuild handles GET /v1/components/{componentId}/builds/last.
func (h *BuildsHandler) LastBuild(w http.ResponseWriter, r *http.Request) {
	component, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}

	if component.Metadata.JenkinsJob == "" {
		response.BadRequest(w, r, "component has no Jenkins job configured", nil)
		return
	}

	start := time.Now()
	build, err := h.jenkins.GetLastBuild(r.Context(), component.Metadata.JenkinsJob)
	h.recordRequest("last-build", time.Since(start), err)
	if err != nil {
		response.ServiceUnavailable(w, r, "fetching build failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.LastBuild{
		ComponentID: component.ID,
		JobName:     component.Metadata.JenkinsJob,
		Number:      build.Number,
		Result:      build.Result,
		Building:    build.Building,
		URL:         build.URL,
		DurationMs:  build.DurationMs,
	})
}

func (h *BuildsHandler) resolveComponent(w http.ResponseWriter, r *http.Request) (*catalog.Component, bool) {
	componentID := chi.URLParam(r, "componentId")

	component, err := h.catalog.GetComponent(r.Context(), componentID)
	if err != nil {
		if errors.Is(err, catalog.ErrComponentNotFound) {
			response.NotFound(w, r, "component not found")
			return nil, false
		}
		response.InternalError(w, r, "fetching component failed")
		return nil, false
	}
	return component, true
}

func (h *BuildsHandler) recordRequest(operation string, duration time.Duration, err error) {
	if h.metrics != nil {
		h.metrics.RecordRequest(jenkins.UpstreamName, operation, duration, err)
	}
}
