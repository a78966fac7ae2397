// Package scheduler drives check cycles from a cron expression. The cron
// library fires jobs on their own goroutines, so the runner carries an
// explicit re-entrancy guard: cycles never overlap, a tick arriving while
// the previous cycle still runs is skipped and logged.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/chis/tagwatch/internal/logging"
)

// Cycle is the unit of work the scheduler fires.
type Cycle func(ctx context.Context)

// Runner schedules one recurring cycle.
type Runner struct {
	cron   *cron.Cron
	spec   string
	cycle  Cycle
	logger *logging.Logger

	mu         sync.Mutex
	active     bool
	started    bool
	registered bool
}

// NewRunner creates a runner for the given cron spec. Descriptors like
// "@daily" and "@every 6h" are accepted alongside standard five-field specs.
func NewRunner(spec string, cycle Cycle, logger *logging.Logger) *Runner {
	return &Runner{
		cron:   cron.New(),
		spec:   spec,
		cycle:  cycle,
		logger: logger,
	}
}

// Start validates the spec and begins firing cycles. An invalid spec is a
// startup error; after a successful Start the runner only logs.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return nil
	}

	// Register once: Stop leaves the entry in place, so a restart only
	// needs to resume the cron runner.
	if !r.registered {
		if _, err := r.cron.AddFunc(r.spec, r.tick); err != nil {
			return fmt.Errorf("invalid check interval %q: %w", r.spec, err)
		}
		r.registered = true
	}

	r.cron.Start()
	r.started = true
	r.logger.Info("Scheduler started with interval %q", r.spec)
	return nil
}

// Stop halts scheduling. A cycle already in flight runs to completion.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.started {
		return
	}
	r.cron.Stop()
	r.started = false
	r.logger.Info("Scheduler stopped")
}

// RunNow fires a cycle immediately, subject to the same overlap guard.
// Used for the initial check at startup.
func (r *Runner) RunNow() {
	r.tick()
}

// tick runs one cycle unless one is already in flight.
func (r *Runner) tick() {
	r.mu.Lock()
	if r.active {
		r.mu.Unlock()
		r.logger.Warn("Previous check cycle still running, skipping this tick")
		return
	}
	r.active = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.active = false
		r.mu.Unlock()
	}()

	r.cycle(context.Background())
}
