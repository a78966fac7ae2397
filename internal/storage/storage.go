// Package storage keeps an append-only history of check cycles in SQLite.
// The history is diagnostic only: the notification dedup state lives in the
// JSON state file, and tagwatch runs fine with storage disabled entirely.
package storage

import (
	"context"
	"time"
)

// Storage defines the persistence interface for check history.
type Storage interface {
	// LogCheckBatch records one cycle's per-container outcomes atomically
	LogCheckBatch(ctx context.Context, checks []CheckHistoryEntry) error

	// GetRecentChecks returns the most recent history entries, newest first.
	// A limit of 0 means no limit.
	GetRecentChecks(ctx context.Context, limit int) ([]CheckHistoryEntry, error)

	// Close releases the database connection
	Close() error
}

// CheckHistoryEntry represents one container's outcome in one check cycle.
type CheckHistoryEntry struct {
	ID            int64     `json:"id"`
	ContainerName string    `json:"container_name"`
	Image         string    `json:"image"`
	CurrentTag    string    `json:"current_tag,omitempty"`
	LatestVersion string    `json:"latest_version,omitempty"`
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	CheckTime     time.Time `json:"check_time"`
}

// Check outcome statuses recorded in history.
const (
	StatusUpdateAvailable = "update_available"
	StatusUpToDate        = "up_to_date"
	StatusSkipped         = "skipped"
	StatusFailed          = "failed"
	StatusNotified        = "notified"
)
