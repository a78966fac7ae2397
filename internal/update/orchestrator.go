// Package update contains the update-detection core: the resolver that asks
// the registry for the best replacement tag, and the orchestrator that runs
// one full check cycle across all running containers.
package update

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chis/tagwatch/internal/docker"
	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/notify"
	"github.com/chis/tagwatch/internal/state"
	"github.com/chis/tagwatch/internal/storage"
)

// Orchestrator runs check cycles. It owns no state itself: containers come
// from the inventory, dedup decisions from the state store, and delivery
// goes through the notifier. Constructed once at process start; per-cycle
// dependencies are injected explicitly rather than reached through globals.
type Orchestrator struct {
	dockerClient docker.Client
	resolver     *Resolver
	stateStore   StateStore
	notifier     notify.Notifier
	history      storage.Storage // optional, may be nil
	logger       *logging.Logger

	selfID string
	title  string
	now    func() time.Time
}

// NewOrchestrator creates an orchestrator. history may be nil to run without
// a check-history log. The process's own container id is resolved once here
// and cached for the orchestrator's lifetime.
func NewOrchestrator(
	dockerClient docker.Client,
	resolver *Resolver,
	stateStore StateStore,
	notifier notify.Notifier,
	history storage.Storage,
	logger *logging.Logger,
	title string,
) *Orchestrator {
	return &Orchestrator{
		dockerClient: dockerClient,
		resolver:     resolver,
		stateStore:   stateStore,
		notifier:     notifier,
		history:      history,
		logger:       logger,
		selfID:       docker.SelfID(),
		title:        title,
		now:          time.Now,
	}
}

// RunCycle performs one full check cycle: inventory, per-container
// resolution, dedup gating, one batched notification, state commit, history
// log, garbage collection, checkpoint. Per-image failures are logged and
// skipped; only an inventory failure aborts the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) (*CycleResult, error) {
	ctx = logging.WithCorrelationID(ctx, uuid.NewString())

	containers, err := o.dockerClient.ListRunningContainers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list running containers: %w", err)
	}

	o.logger.InfoContext(ctx, "Starting check cycle with %d running containers", len(containers))

	result := &CycleResult{}
	var batch []Candidate
	var checks []storage.CheckHistoryEntry
	running := make(map[string]bool)

	for _, container := range containers {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		running[container.Repository] = true

		if docker.IsSelf(container, o.selfID) {
			o.logger.DebugContext(ctx, "Skipping own container %s", container.Name)
			result.Skipped++
			continue
		}

		if container.Tag == "latest" {
			o.logger.DebugContext(ctx, "Skipping %s: floating tag %q is not checked", container.Name, container.Tag)
			result.Skipped++
			checks = append(checks, o.historyEntry(container, "", storage.StatusSkipped, nil))
			continue
		}

		if !docker.IsHubRepository(container.Repository) {
			o.logger.DebugContext(ctx, "Skipping %s: %s is not a Docker Hub repository", container.Name, container.Repository)
			result.Skipped++
			checks = append(checks, o.historyEntry(container, "", storage.StatusSkipped, nil))
			continue
		}

		result.Checked++

		resolution, err := o.resolver.ResolveUpdate(ctx, container.Repository, container.Tag)
		if err != nil {
			// One bad image must not abort the cycle
			o.logger.WarnContext(ctx, "Update check failed for %s (%s): %v", container.Name, container.Image(), err)
			result.Failed++
			checks = append(checks, o.historyEntry(container, "", storage.StatusFailed, err))
			continue
		}

		if !resolution.HasUpdate(container.Tag) {
			o.logger.DebugContext(ctx, "%s is up to date (%s, %d tags inspected)",
				container.Name, container.Image(), resolution.TotalSeen)
			checks = append(checks, o.historyEntry(container, "", storage.StatusUpToDate, nil))
			continue
		}

		candidate := resolution.Candidate
		result.UpdatesFound++
		result.Updates = append(result.Updates, Candidate{
			ContainerName: container.Name,
			Repository:    container.Repository,
			CurrentTag:    container.Tag,
			LatestVersion: candidate.Name,
			LastUpdated:   candidate.LastUpdated,
		})
		o.logger.InfoContext(ctx, "Update available for %s: %s -> %s",
			container.Name, container.Image(), candidate.Name)

		if !o.stateStore.ShouldNotify(container.Repository, container.Tag, candidate.Name) {
			o.logger.DebugContext(ctx, "Notification for %s suppressed by cadence", container.Repository)
			checks = append(checks, o.historyEntry(container, candidate.Name, storage.StatusUpdateAvailable, nil))
			continue
		}

		batch = append(batch, Candidate{
			ContainerName: container.Name,
			Repository:    container.Repository,
			CurrentTag:    container.Tag,
			LatestVersion: candidate.Name,
			LastUpdated:   candidate.LastUpdated,
		})
		checks = append(checks, o.historyEntry(container, candidate.Name, storage.StatusNotified, nil))
	}

	if len(batch) > 0 {
		o.sendAndCommit(ctx, batch)
		result.Notified = len(batch)
	}

	o.logHistory(ctx, checks)

	// GC runs every cycle, whether or not anything was found
	if err := o.stateStore.GarbageCollect(running); err != nil {
		o.logger.WarnContext(ctx, "State garbage collection failed: %v", err)
	}
	if err := o.stateStore.Checkpoint(); err != nil {
		o.logger.WarnContext(ctx, "State checkpoint failed: %v", err)
	}

	o.logger.InfoContext(ctx, "Check cycle complete: %d checked, %d updates, %d notified, %d skipped, %d failed",
		result.Checked, result.UpdatesFound, result.Notified, result.Skipped, result.Failed)

	return result, nil
}

// sendAndCommit delivers the batch as one message and commits every batched
// update to state. Delivery failure does not block the commit: retrying an
// identical payload every cycle is worse than an operator fixing the
// notifier config and waiting out the cadence.
func (o *Orchestrator) sendAndCommit(ctx context.Context, batch []Candidate) {
	updates := make([]notify.Update, 0, len(batch))
	for _, c := range batch {
		updates = append(updates, notify.Update{
			Repository:    c.Repository,
			CurrentTag:    c.CurrentTag,
			LatestVersion: c.LatestVersion,
			ContainerName: c.ContainerName,
		})
	}

	title := notify.FormatTitle(o.title, len(updates))
	body := notify.FormatBatch(updates, o.now())

	if err := o.notifier.Send(ctx, title, body); err != nil {
		o.logger.ErrorContext(ctx, "Notification delivery failed: %v", err)
	} else {
		o.logger.InfoContext(ctx, "Sent notification batch with %d update(s)", len(updates))
	}

	for _, c := range batch {
		record := state.ImageState{
			LatestVersion: c.LatestVersion,
			CurrentTag:    c.CurrentTag,
			ContainerName: c.ContainerName,
			LastUpdated:   c.LastUpdated,
		}
		if err := o.stateStore.CommitUpdate(c.Repository, record); err != nil {
			o.logger.WarnContext(ctx, "Failed to persist state for %s: %v", c.Repository, err)
		}
	}
}

// logHistory appends this cycle's outcomes to the history database, when one
// is configured.
func (o *Orchestrator) logHistory(ctx context.Context, checks []storage.CheckHistoryEntry) {
	if o.history == nil || len(checks) == 0 {
		return
	}
	if err := o.history.LogCheckBatch(ctx, checks); err != nil {
		o.logger.WarnContext(ctx, "Failed to log check history: %v", err)
	}
}

func (o *Orchestrator) historyEntry(c docker.Container, latestVersion, status string, checkErr error) storage.CheckHistoryEntry {
	entry := storage.CheckHistoryEntry{
		ContainerName: c.Name,
		Image:         c.Image(),
		CurrentTag:    c.Tag,
		LatestVersion: latestVersion,
		Status:        status,
		CheckTime:     o.now(),
	}
	if checkErr != nil {
		entry.Error = checkErr.Error()
	}
	return entry
}
