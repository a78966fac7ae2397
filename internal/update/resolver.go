package update

import (
	"context"
	"fmt"
	"strings"

	"github.com/chis/tagwatch/internal/registry"
	"github.com/chis/tagwatch/internal/version"
)

// windowsTagMarkers identify Windows-flavoured tags which are never offered
// as candidates on a Linux host.
var windowsTagMarkers = []string{"windows", "nanoserver", "windowsservercore", "ltsc"}

// Resolver finds the best candidate replacement tag for an image by
// combining the registry client with the tag classifier.
type Resolver struct {
	registry registry.Client
}

// NewResolver creates a new update resolver.
func NewResolver(registryClient registry.Client) *Resolver {
	return &Resolver{registry: registryClient}
}

// ResolveUpdate streams tags for repository in most-recently-updated order
// and returns the first one that is a version tag in the same naming family
// as currentTag. This is a greedy nearest-recency search, not a
// maximum-version search: the registry's publish ordering approximates
// freshness better than numeric comparison across heterogeneous tagging
// schemes. Once a candidate is found no further pages are fetched.
func (r *Resolver) ResolveUpdate(ctx context.Context, repository, currentTag string) (*Resolution, error) {
	var candidate *registry.Tag

	seen, err := r.registry.FetchRecentTags(ctx, repository, func(tag registry.Tag) bool {
		if isWindowsTag(tag.Name) {
			return true
		}
		if version.IsVersionTag(tag.Name) && version.SameFamily(tag.Name, currentTag) {
			t := tag
			candidate = &t
			return false
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve update for %s: %w", repository, err)
	}

	return &Resolution{Candidate: candidate, TotalSeen: seen}, nil
}

// isWindowsTag reports whether the tag names a Windows image variant.
func isWindowsTag(tag string) bool {
	lower := strings.ToLower(tag)
	for _, marker := range windowsTagMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
