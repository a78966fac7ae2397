// Package testutil provides shared testing utilities for the tagwatch test
// suite: fixtures, test data factories, and common mock errors.
package testutil

import (
	"errors"
	"time"

	"github.com/chis/tagwatch/internal/docker"
	"github.com/chis/tagwatch/internal/storage"
)

// Common test errors for use in mocks
var (
	ErrMockUnavailable = errors.New("service unavailable")
	ErrMockTimeout     = errors.New("operation timed out")
	ErrMockDatabase    = errors.New("database error")
	ErrMockDelivery    = errors.New("delivery failed")
)

// TestContainer holds common test container names
var TestContainer = struct {
	Nginx    string
	Redis    string
	Postgres string
}{
	Nginx:    "test-nginx",
	Redis:    "test-redis",
	Postgres: "test-postgres",
}

// RunningContainer creates a running docker.Container for testing.
func RunningContainer(name, repository, tag string) docker.Container {
	return docker.Container{
		ID:         "id-" + name,
		Name:       name,
		Names:      []string{name},
		Repository: repository,
		Tag:        tag,
		State:      "running",
	}
}

// NewCheckHistoryEntry creates a CheckHistoryEntry for testing
func NewCheckHistoryEntry(containerName, status string) storage.CheckHistoryEntry {
	return storage.CheckHistoryEntry{
		ContainerName: containerName,
		Image:         containerName + ":1.0.0",
		CurrentTag:    "1.0.0",
		LatestVersion: "1.1.0",
		Status:        status,
		CheckTime:     time.Now(),
	}
}
