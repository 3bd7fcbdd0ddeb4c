package jenkins_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdeck/opsdeck/internal/jenkins"
)

func TestClient_TriggerBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/job/billing-deploy/build", r.URL.Path)

		user, token, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "deploy-bot", user)
		assert.Equal(t, "secret-token", token)

		w.Header().Set("Location", "https://jenkins.example.com/queue/item/42/")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := jenkins.NewClient(jenkins.ClientConfig{
		BaseURL:  server.URL,
		Username: "deploy-bot",
		APIToken: "secret-token",
		Logger:   zerolog.Nop(),
	})

	ref, err := client.TriggerBuild(context.Background(), "billing-deploy")
	require.NoError(t, err)

	assert.Equal(t, "billing-deploy", ref.JobName)
	assert.Equal(t, "https://jenkins.example.com/queue/item/42/", ref.QueueURL)
	assert.False(t, ref.TriggeredAt.IsZero())
}

func TestClient_TriggerBuild_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := jenkins.NewClient(jenkins.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.TriggerBuild(context.Background(), "billing-deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestClient_GetLastBuild(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/billing-deploy/lastBuild/api/json", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"number": 128,
			"result": "SUCCESS",
			"building": false,
			"url": "https://jenkins.example.com/job/billing-deploy/128/",
			"duration": 83000
		}`))
	}))
	defer server.Close()

	client := jenkins.NewClient(jenkins.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	build, err := client.GetLastBuild(context.Background(), "billing-deploy")
	require.NoError(t, err)

	assert.Equal(t, 128, build.Number)
	assert.Equal(t, "SUCCESS", build.Result)
	assert.False(t, build.Building)
	assert.Equal(t, int64(83000), build.DurationMs)
}

func TestClient_GetLastBuild_JobNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := jenkins.NewClient(jenkins.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.GetLastBuild(context.Background(), "no-such-job")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestClient_JobNameEscaping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/job/team%20x%2Fdeploy/build", r.URL.EscapedPath())
		w.Header().Set("Location", "https://jenkins.example.com/queue/item/7/")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := jenkins.NewClient(jenkins.ClientConfig{
		BaseURL: server.URL,
		Logger:  zerolog.Nop(),
	})

	_, err := client.TriggerBuild(context.Background(), "team x/deploy")
	require.NoError(t, err)
}
