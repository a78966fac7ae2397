package docker

import (
	"context"
	"strings"
)

// Client defines the interface for container inventory operations.
// This interface allows for easy mocking in tests and follows
// the dependency injection pattern.
type Client interface {
	// ListRunningContainers returns the currently running containers
	ListRunningContainers(ctx context.Context) ([]Container, error)

	// Close releases resources held by the client
	Close() error
}

// Container represents a running container with the fields the update
// orchestrator needs. It is recomputed every check cycle and never persisted.
type Container struct {
	ID         string
	Name       string
	Names      []string
	Repository string
	Tag        string
	State      string
	Status     string
}

// Image returns the full image reference ("repo:tag").
func (c Container) Image() string {
	return c.Repository + ":" + c.Tag
}

// SplitImageRef splits an image reference into repository and tag. A
// reference without a tag defaults to "latest". The split is on the last
// colon so registry ports ("host:5000/app") stay in the repository part.
func SplitImageRef(ref string) (repository, tag string) {
	idx := strings.LastIndex(ref, ":")
	if idx < 0 || strings.Contains(ref[idx:], "/") {
		return ref, "latest"
	}
	return ref[:idx], ref[idx+1:]
}

// IsHubRepository reports whether a repository can be looked up on Docker
// Hub. A first path segment containing a dot or colon names a registry host
// ("ghcr.io/owner/app", "registry.local:5000/app"), so the image lives
// elsewhere.
func IsHubRepository(repository string) bool {
	first, _, found := strings.Cut(repository, "/")
	if !found {
		return true
	}
	return !strings.Contains(first, ".") && !strings.Contains(first, ":")
}
