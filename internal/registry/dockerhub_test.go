package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagsPage builds a Docker Hub tags response body for the given tag names.
func tagsPage(next string, names ...string) string {
	results := ""
	for i, name := range names {
		if i > 0 {
			results += ","
		}
		results += fmt.Sprintf(`{"name":%q,"full_size":1024,"last_updated":"2024-01-%02dT00:00:00.000000Z","digest":"sha256:%02d"}`,
			name, len(names)-i, i)
	}
	nextJSON := "null"
	if next != "" {
		nextJSON = fmt.Sprintf("%q", next)
	}
	return fmt.Sprintf(`{"count":%d,"next":%s,"previous":null,"results":[%s]}`, len(names), nextJSON, results)
}

func collectTags(t *testing.T, client *DockerHubClient, repository string) ([]Tag, int) {
	t.Helper()
	var tags []Tag
	seen, err := client.FetchRecentTags(context.Background(), repository, func(tag Tag) bool {
		tags = append(tags, tag)
		return true
	})
	require.NoError(t, err)
	return tags, seen
}

func TestNormalizeRepository(t *testing.T) {
	assert.Equal(t, "library/nginx", NormalizeRepository("nginx"))
	assert.Equal(t, "linuxserver/plex", NormalizeRepository("linuxserver/plex"))
	assert.Equal(t, "", NormalizeRepository(""))
}

func TestFetchRecentTagsSinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repositories/library/nginx/tags", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("page_size"))
		assert.Equal(t, "last_updated", r.URL.Query().Get("ordering"))
		fmt.Fprint(w, tagsPage("", "latest", "1.25.3", "1.25"))
	}))
	defer server.Close()

	client := NewDockerHubClientWithBaseURL(server.URL)
	tags, seen := collectTags(t, client, "nginx")

	assert.Equal(t, 3, seen)
	require.Len(t, tags, 3)
	assert.Equal(t, "latest", tags[0].Name)
	assert.Equal(t, "1.25.3", tags[1].Name)
	assert.Equal(t, int64(1024), tags[0].FullSize)
	assert.False(t, tags[0].LastUpdated.IsZero())
}

func TestFetchRecentTagsFollowsPagination(t *testing.T) {
	var server *httptest.Server
	requests := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		page := r.URL.Query().Get("page")
		if page == "2" {
			fmt.Fprint(w, tagsPage("", "1.20"))
			return
		}
		next := server.URL + "/repositories/library/nginx/tags?page=2&page_size=10&ordering=last_updated"
		fmt.Fprint(w, tagsPage(next,
			"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7", "a8", "a9"))
	}))
	defer server.Close()

	client := NewDockerHubClientWithBaseURL(server.URL)
	tags, seen := collectTags(t, client, "nginx")

	assert.Equal(t, 2, requests)
	assert.Equal(t, 11, seen)
	assert.Equal(t, "1.20", tags[10].Name)
}

func TestFetchRecentTagsStopsWhenVisitorReturnsFalse(t *testing.T) {
	requests := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		next := server.URL + "/repositories/library/nginx/tags?page=2"
		fmt.Fprint(w, tagsPage(next,
			"b0", "b1", "b2", "b3", "b4", "b5", "b6", "b7", "b8", "b9"))
	}))
	defer server.Close()

	client := NewDockerHubClientWithBaseURL(server.URL)
	seen, err := client.FetchRecentTags(context.Background(), "nginx", func(tag Tag) bool {
		return tag.Name != "b2"
	})

	require.NoError(t, err)
	assert.Equal(t, 3, seen, "walk should stop at the third tag")
	assert.Equal(t, 1, requests, "no further pages should be fetched after the visitor stops")
}

func TestFetchRecentTagsMaxPagesEnforced(t *testing.T) {
	requests := 0
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		// Always advertise a next page; the client must give up on its own
		next := server.URL + fmt.Sprintf("/repositories/library/nginx/tags?page=%d", requests+1)
		fmt.Fprint(w, tagsPage(next,
			"c0", "c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8", "c9"))
	}))
	defer server.Close()

	client := NewDockerHubClientWithBaseURL(server.URL)
	_, seen := collectTags(t, client, "nginx")

	assert.Equal(t, MaxPages, requests)
	assert.Equal(t, MaxPages*PageSize, seen)
}

func TestFetchRecentTagsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewDockerHubClientWithBaseURL(server.URL)
	seen, err := client.FetchRecentTags(context.Background(), "nginx", func(Tag) bool { return true })

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Zero(t, seen)
}

func TestFetchRecentTagsContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewDockerHubClient()
	// The rate limiter ticks at 100ms, so the cancelled context wins first
	start := time.Now()
	_, err := client.FetchRecentTags(ctx, "nginx", func(Tag) bool { return true })

	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
