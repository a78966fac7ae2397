package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DockerHubClient implements the Client interface for Docker Hub.
type DockerHubClient struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *time.Ticker
}

// NewDockerHubClient creates a new Docker Hub client.
func NewDockerHubClient() *DockerHubClient {
	return NewDockerHubClientWithBaseURL(DefaultBaseURL)
}

// NewDockerHubClientWithBaseURL creates a client against a custom API
// endpoint. Tests point this at an httptest server.
func NewDockerHubClientWithBaseURL(baseURL string) *DockerHubClient {
	return &DockerHubClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultHTTPTimeout,
		},
		rateLimiter: time.NewTicker(DefaultRateLimitInterval),
	}
}

// dockerHubTagsResponse represents Docker Hub's paginated tags response.
type dockerHubTagsResponse struct {
	Count    int            `json:"count"`
	Next     string         `json:"next"`
	Previous string         `json:"previous"`
	Results  []dockerHubTag `json:"results"`
}

type dockerHubTag struct {
	Name        string `json:"name"`
	FullSize    int64  `json:"full_size"`
	LastUpdated string `json:"last_updated"`
	Digest      string `json:"digest"`
}

// NormalizeRepository adds the implicit "library/" namespace for official
// images, so "nginx" becomes "library/nginx" while "linuxserver/plex" is
// left alone.
func NormalizeRepository(repository string) string {
	if repository != "" && !strings.Contains(repository, "/") {
		return "library/" + repository
	}
	return repository
}

// FetchRecentTags streams tags for repository in most-recently-updated order,
// ten per page across at most five pages. Any page failure aborts the fetch
// for this repository and surfaces the error to the caller; failures are
// isolated per image, never process-fatal.
func (c *DockerHubClient) FetchRecentTags(ctx context.Context, repository string, visit func(Tag) bool) (int, error) {
	repository = NormalizeRepository(repository)

	url := fmt.Sprintf("%s/repositories/%s/tags?page_size=%d&ordering=last_updated",
		c.baseURL, repository, PageSize)

	seen := 0
	pageCount := 0

	for url != "" && pageCount < MaxPages {
		// Rate limiting
		select {
		case <-c.rateLimiter.C:
		case <-ctx.Done():
			return seen, ctx.Err()
		}

		tagsResp, err := c.fetchPage(ctx, url)
		if err != nil {
			return seen, err
		}

		for _, raw := range tagsResp.Results {
			seen++
			if !visit(c.convertTag(raw)) {
				return seen, nil
			}
		}

		url = tagsResp.Next
		pageCount++

		// A short page means there is nothing further to fetch
		if len(tagsResp.Results) < PageSize {
			break
		}
	}

	return seen, nil
}

// fetchPage requests and decodes a single tags page.
func (c *DockerHubClient) fetchPage(ctx context.Context, url string) (*dockerHubTagsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, handleHTTPError(resp, "docker hub tags request")
	}

	var tagsResp dockerHubTagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tagsResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &tagsResp, nil
}

// convertTag transforms the Docker Hub wire type into our domain model.
func (c *DockerHubClient) convertTag(raw dockerHubTag) Tag {
	tag := Tag{
		Name:     raw.Name,
		FullSize: raw.FullSize,
		Digest:   raw.Digest,
	}
	if raw.LastUpdated != "" {
		if t, err := time.Parse(time.RFC3339, raw.LastUpdated); err == nil {
			tag.LastUpdated = t
		}
	}
	return tag
}
