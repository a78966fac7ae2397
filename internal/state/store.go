// Package state persists the per-image notification records that make
// update notifications idempotent across restarts. The whole state is one
// JSON document, loaded fully before each decision and rewritten fully after
// each mutation. That bounds the usable image-set size but keeps the file
// trivially inspectable and crash recovery simple: the worst case after a
// lost write is redoing one cycle's notifications.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chis/tagwatch/internal/logging"
)

// StateFileName is the file created under the configured data directory.
const StateFileName = "state.json"

// Store owns the persisted GlobalState. Writes are serialized behind a
// mutex; the load-modify-store-whole-file pattern is not safe for
// concurrent writers.
type Store struct {
	path          string
	frequencyDays int
	logger        *logging.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a store rooted at dataDir, creating the directory and an
// empty state file if they do not exist yet. frequencyDays governs how often
// an unchanged update is re-notified.
func NewStore(dataDir string, frequencyDays int, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataDir, err)
	}

	s := &Store{
		path:          filepath.Join(dataDir, StateFileName),
		frequencyDays: frequencyDays,
		logger:        logger,
		now:           time.Now,
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		if err := s.write(newGlobalState()); err != nil {
			return nil, fmt.Errorf("failed to initialize state file: %w", err)
		}
		logger.Info("Initialized empty state file at %s", s.path)
	}

	return s, nil
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.path
}

// Load reads the whole state document from disk. A missing or corrupt file
// is treated as empty state: losing dedup history means at most a duplicate
// notification, which is a lesser failure than refusing to run.
func (s *Store) Load() *GlobalState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() *GlobalState {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read state file %s, starting from empty state: %v", s.path, err)
		}
		return newGlobalState()
	}

	var st GlobalState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("State file %s is corrupt, starting from empty state: %v", s.path, err)
		return newGlobalState()
	}
	if st.Images == nil {
		st.Images = make(map[string]ImageState)
	}
	return &st
}

func (s *Store) write(st *GlobalState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// ShouldNotify decides whether an update for repo is due for notification.
// It always evaluates against freshly loaded state:
//
//  1. an unseen repo always notifies,
//  2. a changed candidate resets the cadence and notifies immediately,
//  3. otherwise the elapsed full days since the last notification must reach
//     the configured frequency.
func (s *Store) ShouldNotify(repo, currentTag, latestVersion string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	record, ok := st.Images[repo]
	if !ok {
		s.logger.Debug("First sighting of %s, notification due", repo)
		return true
	}

	if record.LatestVersion != latestVersion {
		s.logger.Debug("Candidate for %s changed %s -> %s, notification due",
			repo, record.LatestVersion, latestVersion)
		return true
	}

	elapsedDays := int(s.now().Sub(record.LastNotification).Hours() / 24)
	return elapsedDays >= s.frequencyDays
}

// CommitUpdate upserts the record for repo, stamping both LastCheck and
// LastNotification to now, and rewrites the whole state document.
func (s *Store) CommitUpdate(repo string, record ImageState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	now := s.now()
	record.LastCheck = now
	record.LastNotification = now
	st.Images[repo] = record

	if err := s.write(st); err != nil {
		return fmt.Errorf("failed to commit update for %s: %w", repo, err)
	}
	return nil
}

// GarbageCollect removes every record whose repository is absent from the
// running set. State tracks currently relevant images only, not history.
// The document is rewritten once, and only if anything was removed.
func (s *Store) GarbageCollect(running map[string]bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	removed := 0
	for repo := range st.Images {
		if !running[repo] {
			delete(st.Images, repo)
			removed++
		}
	}

	if removed == 0 {
		return nil
	}

	s.logger.Info("Garbage collected %d stale state entr%s", removed, plural(removed, "y", "ies"))
	if err := s.write(st); err != nil {
		return fmt.Errorf("failed to persist garbage collection: %w", err)
	}
	return nil
}

// Checkpoint stamps the global LastCheck timestamp and rewrites the
// document. Called once at the end of every cycle.
func (s *Store) Checkpoint() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.load()
	st.LastCheck = s.now()
	if err := s.write(st); err != nil {
		return fmt.Errorf("failed to checkpoint state: %w", err)
	}
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
