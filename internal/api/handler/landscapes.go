package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/opsdeck/opsdeck/internal/api/models"
	"github.com/opsdeck/opsdeck/internal/api/response"
	"github.com/opsdeck/opsdeck/internal/catalog"
)

// LandscapesHandler handles landscape catalog endpoints.
type LandscapesHandler struct {
	catalog *catalog.Service
}

// NewLandscapesHandler creates a new LandscapesHandler.
func NewLandscapesHandler(catalogService *catalog.Service) *LandscapesHandler {
	return &LandscapesHandler{catalog: catalogService}
}

// ListLandscapes handles GET /v1/landscapes.
func (h *LandscapesHandler) ListLandscapes(w http.ResponseWriter, r *http.Request) {
	landscapes, err := h.catalog.ListLandscapes(r.Context())
	if err != nil {
		response.InternalError(w, r, "listing landscapes failed")
		return
	}

	views := make([]models.Landscape, 0, len(landscapes))
	for _, landscape := range landscapes {
		views = append(views, toLandscapeView(landscape))
	}
	response.JSON(w, r, http.StatusOK, views)
}

// GetLandscape handles GET /v1/landscapes/{landscapeName}.
func (h *LandscapesHandler) GetLandscape(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "landscapeName")

	landscape, err := h.catalog.GetLandscape(r.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrLandscapeNotFound) {
			response.NotFound(w, r, "landscape not found")
			return
		}
		response.InternalError(w, r, "fetching landscape failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toLandscapeView(landscape))
}

// UpsertLandscape handles PUT /v1/landscapes/{landscapeName}.
func (h *LandscapesHandler) UpsertLandscape(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "landscapeName")

	var input models.LandscapeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if strings.TrimSpace(input.Route) == "" {
		response.BadRequest(w, r, "invalid landscape", []models.FieldError{
			{Field: "route", Message: "must not be empty", Code: "REQUIRED"},
		})
		return
	}

	landscape := &catalog.Landscape{
		Name:  name,
		Route: input.Route,
	}

	if err := h.catalog.UpsertLandscape(r.Context(), landscape); err != nil {
		response.InternalError(w, r, "saving landscape failed")
		return
	}

	location := fmt.Sprintf("/v1/landscapes/%s", landscape.Name)
	response.Created(w, r, location, toLandscapeView(landscape))
}

// DeleteLandscape handles DELETE /v1/landscapes/{landscapeName}.
func (h *LandscapesHandler) DeleteLandscape(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "landscapeName")

	if err := h.catalog.DeleteLandscape(r.Context(), name); err != nil {
		if errors.Is(err, catalog.ErrLandscapeNotFound) {
			response.NotFound(w, r, "landscape not found")
			return
		}
		response.InternalError(w, r, "deleting landscape failed")
		return
	}

	response.NoContent(w, r)
}

func toLandscapeView(landscape *catalog.Landscape) models.Landscape {
	return models.Landscape{
		Name:      landscape.Name,
		Route:     landscape.Route,
		CreatedAt: models.Timestamp(landscape.CreatedAt),
		UpdatedAt: models.Timestamp(landscape.UpdatedAt),
	}
}
