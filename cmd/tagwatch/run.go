package main

import (
	"context"
	"flag"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/chis/tagwatch/internal/bootstrap"
	"github.com/chis/tagwatch/internal/scheduler"
)

// cycleTimeout bounds one full check cycle. Docker Hub pagination is capped
// per image, so a cycle that runs this long is stuck, not busy.
const cycleTimeout = 10 * time.Minute

// runRunCommand starts the daemon: an immediate check cycle, then cycles on
// the configured cron schedule until SIGINT or SIGTERM.
func runRunCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, cleanup, err := bootstrap.InitializeServices(bootstrap.InitOptions{
		ConfigPath: *configPath,
	})
	if err != nil {
		return err
	}
	defer cleanup()

	logger := deps.Logger
	logger.Info("tagwatch starting, state in %s", deps.StateStore.Path())

	cycle := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, cycleTimeout)
		defer cancel()
		if _, err := deps.Orchestrator.RunCycle(ctx); err != nil {
			logger.Error("Check cycle failed: %v", err)
		}
	}

	runner := scheduler.NewRunner(deps.Config.CheckInterval, cycle, logger)
	if err := runner.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer runner.Stop()

	// Initial check at startup so a fresh deployment reports immediately
	// instead of waiting out the first interval.
	runner.RunNow()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info("Shutdown signal received, stopping")
	return nil
}
