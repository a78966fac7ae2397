package registry

import (
	"context"
	"time"
)

// Tag is one registry tag with the metadata the update resolver cares about.
type Tag struct {
	// Name is the tag name (e.g. "1.21.3", "latest")
	Name string

	// LastUpdated is when the tag was last pushed to the registry
	LastUpdated time.Time

	// FullSize is the compressed image size in bytes
	FullSize int64

	// Digest is the manifest digest (sha256:...), when the registry reports one
	Digest string
}

// Client defines the interface for fetching recent tags from a registry.
type Client interface {
	// FetchRecentTags streams tags for repository in most-recently-updated
	// order, calling visit for each one. Returning false from visit stops the
	// fetch without error; no further pages are requested. The returned count
	// is the number of tags seen, including the one that stopped the walk.
	FetchRecentTags(ctx context.Context, repository string, visit func(Tag) bool) (int, error)
}
