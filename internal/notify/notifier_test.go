package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGotifySendDeliversPayload(t *testing.T) {
	var received gotifyMessage
	var gotKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/message", r.URL.Path)
		gotKey = r.Header.Get("X-Gotify-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewGotifyNotifier(server.URL+"/", "secret-token", 5)
	err := n.Send(context.Background(), "1 Docker update available", "body text")

	require.NoError(t, err)
	assert.Equal(t, "secret-token", gotKey)
	assert.Equal(t, "1 Docker update available", received.Title)
	assert.Equal(t, "body text", received.Message)
	assert.Equal(t, 5, received.Priority)
}

func TestGotifySendServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer server.Close()

	n := NewGotifyNotifier(server.URL, "wrong", 5)
	err := n.Send(context.Background(), "title", "body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestFormatTitle(t *testing.T) {
	assert.Equal(t, "1 Docker update available", FormatTitle("", 1))
	assert.Equal(t, "3 Docker updates available", FormatTitle("", 3))
	assert.Equal(t, "homelab: 2 Docker updates available", FormatTitle("homelab", 2))
}

func TestFormatBatchGroupsByRepository(t *testing.T) {
	now := time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

	body := FormatBatch([]Update{
		{Repository: "postgres", CurrentTag: "14.1", LatestVersion: "14.2", ContainerName: "db-primary"},
		{Repository: "postgres", CurrentTag: "14.0", LatestVersion: "14.2", ContainerName: "db-replica"},
		{Repository: "nginx", CurrentTag: "1.25.2", LatestVersion: "1.25.3", ContainerName: "web"},
	}, now)

	assert.Contains(t, body, "Docker updates detected on 2024-04-02 at 09:30")
	assert.Contains(t, body, "📦 **nginx**")
	assert.Contains(t, body, "📦 **postgres**")
	assert.Contains(t, body, "Current versions: 14.0, 14.1")
	assert.Contains(t, body, "Current version: 1.25.2")
	assert.Contains(t, body, "New version available: 14.2")
	assert.Contains(t, body, "Affected containers: db-primary, db-replica")
	assert.Contains(t, body, "docker pull")

	// nginx sorts before postgres in the rendered body
	assert.Less(t, strings.Index(body, "nginx"), strings.Index(body, "postgres"))
}
