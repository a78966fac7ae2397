package update

import (
	"time"

	"github.com/chis/tagwatch/internal/registry"
	"github.com/chis/tagwatch/internal/state"
)

// Resolution is the outcome of resolving one image against the registry.
type Resolution struct {
	// Candidate is the most recently published compatible version tag, or
	// nil when no page yielded one within the page budget
	Candidate *registry.Tag

	// TotalSeen is how many tags were inspected before the walk ended
	TotalSeen int
}

// HasUpdate reports whether the resolution proposes a tag different from the
// current one. This is pure string inequality; no version ordering is
// consulted to decide whether an update exists.
func (r *Resolution) HasUpdate(currentTag string) bool {
	return r.Candidate != nil && r.Candidate.Name != currentTag
}

// Candidate is one detected update, held in memory for a single cycle.
// It is either discarded (no notification due) or committed to state and
// handed to the notifier.
type Candidate struct {
	ContainerName string    `json:"container_name"`
	Repository    string    `json:"repository"`
	CurrentTag    string    `json:"current_tag"`
	LatestVersion string    `json:"latest_version"`
	LastUpdated   time.Time `json:"last_updated"`
}

// CycleResult summarizes one full check cycle.
type CycleResult struct {
	// Checked is the number of containers examined
	Checked int `json:"checked"`

	// Skipped counts containers excluded before resolution (self, floating tags)
	Skipped int `json:"skipped"`

	// Failed counts containers whose registry resolution errored
	Failed int `json:"failed"`

	// UpdatesFound counts detected updates, whether or not notified
	UpdatesFound int `json:"updates_found"`

	// Notified counts updates included in this cycle's notification batch
	Notified int `json:"notified"`

	// Updates lists every detected update, including ones suppressed by
	// the notification cadence
	Updates []Candidate `json:"updates,omitempty"`
}

// StateStore is the notification dedup gate the orchestrator consults.
type StateStore interface {
	ShouldNotify(repo, currentTag, latestVersion string) bool
	CommitUpdate(repo string, record state.ImageState) error
	GarbageCollect(running map[string]bool) error
	Checkpoint() error
}
