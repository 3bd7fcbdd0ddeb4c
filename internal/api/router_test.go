package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/api"
	"github.com/opsdeck/opsdeck/internal/api/models"
	"github.com/opsdeck/opsdeck/internal/catalog"
	"github.com/opsdeck/opsdeck/internal/health"
	"github.com/opsdeck/opsdeck/internal/proxy"
)

// stubGateway reports every probed URL as UP.
type stubGateway struct{}

func (stubGateway) Fetch(ctx context.Context, _ string) (*proxy.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	success := true
	return &proxy.Result{
		ComponentSuccess: &success,
		StatusCode:       200,
		Body:             map[string]interface{}{"status": "UP"},
	}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *catalog.Service) {
	t.Helper()
	logger := zerolog.New(io.Discard)

	catalogService := catalog.NewService(catalog.ServiceConfig{
		Repository: catalog.NewMemoryRepository(),
		Logger:     logger,
	})
	healthService := health.NewService(health.ServiceConfig{
		Gateway: stubGateway{},
		Logger:  logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:        "test",
		BuildTime:      "2026-01-01T00:00:00Z",
		Logger:         logger,
		CatalogService: catalogService,
		HealthService:  healthService,
	})
	return router, catalogService
}

func seedCatalog(t *testing.T, catalogService *catalog.Service) (*catalog.Component, *catalog.Landscape) {
	t.Helper()
	ctx := context.Background()

	component := &catalog.Component{
		Name:     "Billing",
		Team:     "payments",
		Metadata: catalog.Metadata{Subdomain: "sap-x"},
	}
	require.NoError(t, catalogService.CreateComponent(ctx, component))

	landscape := &catalog.Landscape{Name: "eu10", Route: "example.com"}
	require.NoError(t, catalogService.UpsertLandscape(ctx, landscape))

	return component, landscape
}

func TestRouter_HealthCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var healthResp models.Health
	err := json.Unmarshal(w.Body.Bytes(), &healthResp)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, healthResp.Status)
	assert.Equal(t, "test", healthResp.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/ready", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var healthResp models.Health
	err := json.Unmarshal(w.Body.Bytes(), &healthResp)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, healthResp.Status)
}

func TestRouter_SystemStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/status", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var status models.SystemStatus
	err := json.Unmarshal(w.Body.Bytes(), &status)
	require.NoError(t, err)

	assert.Equal(t, models.HealthStatusOK, status.Status)
}

func TestRouter_CreateComponent(t *testing.T) {
	router, _ := newTestRouter(t)

	input := models.ComponentRequest{
		Name: "Accounts",
		Team: "identity",
		Metadata: models.ComponentMetadataRequest{
			JenkinsJob: "accounts-deploy",
		},
	}
	body, _ := json.Marshal(input)

	req := httptest.NewRequest(http.MethodPost, "/v1/components", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var component models.Component
	err := json.Unmarshal(w.Body.Bytes(), &component)
	require.NoError(t, err)

	assert.Equal(t, "Accounts", component.Name)
	assert.True(t, strings.HasPrefix(component.ID, "cmp_"))
	assert.Equal(t, "accounts-deploy", component.Metadata.JenkinsJob)
}

func TestRouter_CreateComponent_ValidationError(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(models.ComponentRequest{Name: "  "})

	req := httptest.NewRequest(http.MethodPost, "/v1/components", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	err := json.Unmarshal(w.Body.Bytes(), &problem)
	require.NoError(t, err)

	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "name", problem.Errors[0].Field)
}

func TestRouter_CreateComponent_DuplicateName(t *testing.T) {
	router, catalogService := newTestRouter(t)
	seedCatalog(t, catalogService)

	body, _ := json.Marshal(models.ComponentRequest{Name: "Billing"})

	req := httptest.NewRequest(http.MethodPost, "/v1/components", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRouter_GetComponent(t *testing.T) {
	router, catalogService := newTestRouter(t)
	component, _ := seedCatalog(t, catalogService)

	req := httptest.NewRequest(http.MethodGet, "/v1/components/"+component.ID, http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var view models.Component
	err := json.Unmarshal(w.Body.Bytes(), &view)
	require.NoError(t, err)

	assert.Equal(t, component.ID, view.ID)
	assert.Equal(t, "Billing", view.Name)
	assert.Equal(t, "sap-x", view.Metadata.Subdomain)
}

func TestRouter_GetComponent_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/components/cmp_missing", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_DeleteComponent(t *testing.T) {
	router, catalogService := newTestRouter(t)
	component, _ := seedCatalog(t, catalogService)

	req := httptest.NewRequest(http.MethodDelete, "/v1/components/"+component.ID, http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/components/"+component.ID, http.NoBody)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_UpsertLandscape(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(models.LandscapeRequest{Route: "example.com"})

	req := httptest.NewRequest(http.MethodPut, "/v1/landscapes/eu10", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var landscape models.Landscape
	err := json.Unmarshal(w.Body.Bytes(), &landscape)
	require.NoError(t, err)

	assert.Equal(t, "eu10", landscape.Name)
	assert.Equal(t, "example.com", landscape.Route)
}

func TestRouter_ListLandscapes(t *testing.T) {
	router, catalogService := newTestRouter(t)
	seedCatalog(t, catalogService)

	req := httptest.NewRequest(http.MethodGet, "/v1/landscapes", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var landscapes []models.Landscape
	err := json.Unmarshal(w.Body.Bytes(), &landscapes)
	require.NoError(t, err)

	require.Len(t, landscapes, 1)
	assert.Equal(t, "eu10", landscapes[0].Name)
}

func TestRouter_LandscapeHealth(t *testing.T) {
	router, catalogService := newTestRouter(t)
	component, _ := seedCatalog(t, catalogService)

	req := httptest.NewRequest(http.MethodGet, "/v1/landscapes/eu10/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var sweep models.LandscapeHealth
	err := json.Unmarshal(w.Body.Bytes(), &sweep)
	require.NoError(t, err)

	assert.Equal(t, "eu10", sweep.Landscape)
	assert.Equal(t, 1, sweep.Total)
	require.Len(t, sweep.Results, 1)
	assert.Equal(t, component.ID, sweep.Results[0].ComponentID)
	assert.Equal(t, "UP", sweep.Results[0].Status)
}

func TestRouter_LandscapeHealth_UnknownLandscape(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/landscapes/xx99/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_ComponentHealth(t *testing.T) {
	router, catalogService := newTestRouter(t)
	component, _ := seedCatalog(t, catalogService)

	path := "/v1/landscapes/eu10/components/" + component.ID + "/health"
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var check health.ComponentCheck
	err := json.Unmarshal(w.Body.Bytes(), &check)
	require.NoError(t, err)

	assert.Equal(t, component.ID, check.ComponentID)
	assert.Equal(t, "UP", check.Status)
	assert.Contains(t, check.HealthURL, "billing.cfapps.example.com/health")
}

func TestRouter_SystemInfo(t *testing.T) {
	router, catalogService := newTestRouter(t)
	component, _ := seedCatalog(t, catalogService)

	path := "/v1/landscapes/eu10/components/" + component.ID + "/system-info"
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var info models.SystemInfo
	err := json.Unmarshal(w.Body.Bytes(), &info)
	require.NoError(t, err)

	assert.Equal(t, component.ID, info.ComponentID)
	assert.Empty(t, info.Error)
	assert.Contains(t, info.URL, "/systemInformation/public")
}

func TestRouter_RequestID_Generated(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-Id")
	assert.NotEmpty(t, requestID)
	assert.Contains(t, requestID, "req_")
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/nonexistent", http.NoBody)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
