package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chis/tagwatch/internal/config"
	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/output"
	"github.com/chis/tagwatch/internal/state"
	"github.com/chis/tagwatch/internal/storage"
)

// runStateCommand prints the persisted notification state, or with -history
// the recent check history. It never touches Docker or the registry.
func runStateCommand(args []string) error {
	fs := flag.NewFlagSet("state", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to YAML config file (optional)")
	historyLimit := fs.Int("history", 0, "Show the N most recent check history entries instead of state")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := logging.New()

	if *historyLimit > 0 {
		return printHistory(cfg, logger, *historyLimit)
	}

	store, err := state.NewStore(cfg.DataDir, cfg.NotificationFrequencyDays, logger)
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	return output.WriteJSONData(os.Stdout, store.Load())
}

func printHistory(cfg *config.Config, logger *logging.Logger, limit int) error {
	if !cfg.HistoryEnabled() {
		return fmt.Errorf("check history is disabled")
	}
	dbPath := cfg.HistoryDBPath
	if dbPath == "" {
		dbPath = filepath.Join(cfg.DataDir, "history.db")
	}

	history, err := storage.NewSQLiteStorage(dbPath, logger)
	if err != nil {
		return fmt.Errorf("failed to open check history: %w", err)
	}
	defer history.Close()

	entries, err := history.GetRecentChecks(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("failed to read check history: %w", err)
	}
	return output.WriteJSONData(os.Stdout, entries)
}
