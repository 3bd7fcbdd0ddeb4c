package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/api/models"
	"github.com/opsdeck/opsdeck/internal/api/response"
	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/health"
)

// HealthHandler handles component health and system information endpoints.
type HealthHandler struct {
	catalog *catalog.Service
	health  *health.Service
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(catalogService *catalog.Service, healthService *health.Service) *HealthHandler {
	return &HealthHandler{
		catalog: catalogService,
		health:  healthService,
	}
}

// LandscapeHealth handles GET /v1/landscapes/{landscapeName}/health - probe
// every catalog component against the landscape.
func (h *HealthHandler) LandscapeHealth(w http.ResponseWriter, r *http.Request) {
	landscape, ok := h.resolveLandscape(w, r)
	if !ok {
		return
	}

	components, err := h.catalog.ListComponents(r.Context())
	if err != nil {
		response.InternalError(w, r, "listing components failed")
		return
	}

	results := h.health.FetchAllHealthStatuses(r.Context(), components, landscape, nil)

	response.JSON(w, r, http.StatusOK, models.LandscapeHealth{
		Landscape: landscape.Name,
		Total:     len(results),
		Checked:   models.Timestamp(time.Now()),
		Results:   results,
	})
}

// ComponentHealth handles GET /v1/landscapes/{landscapeName}/components/{componentId}/health.
func (h *HealthHandler) ComponentHealth(w http.ResponseWriter, r *http.Request) {
	landscape, ok := h.resolveLandscape(w, r)
	if !ok {
		return
	}

	component, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}

	// A single-element batch keeps the same probe semantics, including the
	// subdomain fallback.
	results := h.health.FetchAllHealthStatuses(r.Context(), []*catalog.Component{component}, landscape, nil)
	response.JSON(w, r, http.StatusOK, results[0])
}

// SystemInfo handles GET /v1/landscapes/{landscapeName}/components/{componentId}/system-info.
func (h *HealthHandler) SystemInfo(w http.ResponseWriter, r *http.Request) {
	landscape, ok := h.resolveLandscape(w, r)
	if !ok {
		return
	}

	component, ok := h.resolveComponent(w, r)
	if !ok {
		return
	}

	result := h.health.FetchSystemInfo(r.Context(), component, landscape)

	info := models.SystemInfo{
		ComponentID: component.ID,
		Landscape:   landscape.Name,
		URL:         result.URL,
		Data:        result.Data,
	}
	if result.Err != nil {
		info.Error = result.Err.Error()
	}

	response.JSON(w, r, http.StatusOK, info)
}

func (h *HealthHandler) resolveLandscape(w http.ResponseWriter, r *http.Request) (*catalog.Landscape, bool) {
	name := chi.URLParam(r, "landscapeName")

	landscape, err := h.catalog.GetLandscape(r.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrLandscapeNotFound) {
			response.NotFound(w, r, "landscape not found")
			return nil, false
		}
		response.InternalError(w, r, "fetching landscape failed")
		return nil, false
	}
	return landscape, true
}

func (h *HealthHandler) resolveComponent(w http.ResponseWriter, r *http.Request) (*catalog.Component, bool) {
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
