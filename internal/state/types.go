package state

import "time"

// ImageState is the per-repository record the store keeps between cycles.
// It exists only while the image is in use by a running container; the
// garbage-collection pass removes stale entries every cycle.
type ImageState struct {
	// LatestVersion is the candidate tag we last notified about
	LatestVersion string `json:"latestVersion"`

	// CurrentTag is a snapshot of the tag the container ran at notification time
	CurrentTag string `json:"currentTag"`

	// ContainerName is the primary container using this image
	ContainerName string `json:"containerName"`

	// LastCheck is when this record was last written
	LastCheck time.Time `json:"lastCheck"`

	// LastNotification is when we last notified about this image
	LastNotification time.Time `json:"lastNotification"`

	// LastUpdated is the registry's publish timestamp for LatestVersion
	LastUpdated time.Time `json:"lastUpdated"`
}

// GlobalState is the whole persisted document. It is always read and written
// as a unit; there are no partial updates.
type GlobalState struct {
	Images    map[string]ImageState `json:"images"`
	LastCheck time.Time             `json:"lastCheck"`
}

// newGlobalState returns an empty state with an initialized image map.
func newGlobalState() *GlobalState {
	return &GlobalState{
		Images: make(map[string]ImageState),
	}
}
