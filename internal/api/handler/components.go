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

// ComponentsHandler handles component catalog endpoints.
type ComponentsHandler struct {
	catalog *catalog.Service
}

// NewComponentsHandler creates a new ComponentsHandler.
func NewComponentsHandler(catalogService *catalog.Service) *ComponentsHandler {
	return &ComponentsHandler{catalog: catalogService}
}

// ListComponents handles GET /v1/components.
func (h *ComponentsHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := h.catalog.ListComponents(r.Context())
	if err != nil {
		response.InternalError(w, r, "listing components failed")
		return
	}

	views := make([]models.Component, 0, len(components))
	for _, component := range components {
		views = append(views, toComponentView(component))
	}
	response.JSON(w, r, http.StatusOK, views)
}

// GetComponent handles GET /v1/components/{componentId}.
func (h *ComponentsHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentId")

	component, err := h.catalog.GetComponent(r.Context(), componentID)
	if err != nil {
		if errors.Is(err, catalog.ErrComponentNotFound) {
			response.NotFound(w, r, "component not found")
			return
		}
		response.InternalError(w, r, "fetching component failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toComponentView(component))
}

// CreateComponent handles POST /v1/components.
func (h *ComponentsHandler) CreateComponent(w http.ResponseWriter, r *http.Request) {
	var input models.ComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateComponentRequest(&input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid component", fieldErrors)
		return
	}

	component := &catalog.Component{
		Name: input.Name,
		Team: input.Team,
		Metadata: catalog.Metadata{
			Subdomain:     input.Metadata.Subdomain,
			JenkinsJob:    input.Metadata.JenkinsJob,
			RepositoryURL: input.Metadata.RepositoryURL,
		},
	}

	if err := h.catalog.CreateComponent(r.Context(), component); err != nil {
		if errors.Is(err, catalog.ErrDuplicateName) {
			response.Conflict(w, r, "component name already in use")
			return
		}
		response.InternalError(w, r, "creating component failed")
		return
	}

	location := fmt.Sprintf("/v1/components/%s", component.ID)
	response.Created(w, r, location, toComponentView(component))
}

// UpdateComponent handles PUT /v1/components/{componentId}.
func (h *ComponentsHandler) UpdateComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentId")

	var input models.ComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if fieldErrors := validateComponentRequest(&input); len(fieldErrors) > 0 {
		response.BadRequest(w, r, "invalid component", fieldErrors)
		return
	}

	existing, err := h.catalog.GetComponent(r.Context(), componentID)
	if err != nil {
		if errors.Is(err, catalog.ErrComponentNotFound) {
			response.NotFound(w, r, "component not found")
			return
		}
		response.InternalError(w, r, "fetching component failed")
		return
	}

	existing.Name = input.Name
	existing.Team = input.Team
	existing.Metadata = catalog.Metadata{
		Subdomain:     input.Metadata.Subdomain,
		JenkinsJob:    input.Metadata.JenkinsJob,
		RepositoryURL: input.Metadata.RepositoryURL,
	}

	if err := h.catalog.UpdateComponent(r.Context(), existing); err != nil {
		if errors.Is(err, catalog.ErrComponentNotFound) {
			response.NotFound(w, r, "component not found")
			return
		}
		if errors.Is(err, catalog.ErrDuplicateName) {
			response.Conflict(w, r, "component name already in use")
			return
		}
		response.InternalError(w, r, "updating component failed")
		return
	}

	response.JSON(w, r, http.StatusOK, toComponentView(existing))
}

// DeleteComponent handles DELETE /v1/components/{componentId}.
func (h *ComponentsHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentId")

	if err := h.catalog.DeleteComponent(r.Context(), componentID); err != nil {
		if errors.Is(err, catalog.ErrComponentNotFound) {
			response.NotFound(w, r, "component not found")
			return
		}
		response.InternalError(w, r, "deleting component failed")
		return
	}

	response.NoContent(w, r)
}

func validateComponentRequest(input *models.ComponentRequest) []models.FieldError {
	var fieldErrors []models.FieldError
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors = append(fieldErrors, models.FieldError{
			Field:   "name",
			Message: "must not be empty",
			Code:    "REQUIRED",
		})
	}
	return fieldErrors
}

func toComponentView(component *catalog.Component) models.Component {
	return models.Component{
		ID:   component.ID,
		Name: component.Name,
		Team: component.Team,
		Metadata: models.ComponentMetadataRequest{
			Subdomain:     component.Metadata.Subdomain,
			JenkinsJob:    component.Metadata.JenkinsJob,
			RepositoryURL: component.Metadata.RepositoryURL,
		},
		CreatedAt: models.Timestamp(component.CreatedAt),
		UpdatedAt: models.Timestamp(component.UpdatedAt),
	}
}
