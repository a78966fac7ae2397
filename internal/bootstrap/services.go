// Package bootstrap wires the application services together. Commands call
// InitializeServices once and get back a fully constructed dependency set
// plus a cleanup function, so construction order and graceful degradation
// live in exactly one place.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/chis/tagwatch/internal/config"
	"github.com/chis/tagwatch/internal/docker"
	"github.com/chis/tagwatch/internal/logging"
	"github.com/chis/tagwatch/internal/notify"
	"github.com/chis/tagwatch/internal/registry"
	"github.com/chis/tagwatch/internal/state"
	"github.com/chis/tagwatch/internal/storage"
	"github.com/chis/tagwatch/internal/update"
)

// ServiceDependencies holds all initialized service dependencies for CLI commands.
type ServiceDependencies struct {
	Config       *config.Config
	Logger       *logging.Logger
	Docker       *docker.Service
	Registry     *registry.DockerHubClient
	StateStore   *state.Store
	Notifier     notify.Notifier
	History      storage.Storage // nil when history is disabled or unavailable
	Orchestrator *update.Orchestrator
}

// InitOptions configures service initialization behavior.
type InitOptions struct {
	// ConfigPath is an optional YAML config file; environment variables
	// overlay whatever it contains.
	ConfigPath string
	// RequireNotifier makes a missing Gotify configuration a startup error
	// instead of falling back to log-only delivery.
	RequireNotifier bool
}

// logNotifier is the fallback delivery path when no Gotify server is
// configured: updates still show up in the logs, nothing is pushed.
type logNotifier struct {
	logger *logging.Logger
}

func (n *logNotifier) Send(ctx context.Context, title, body string) error {
	n.logger.InfoContext(ctx, "Notification (no Gotify configured): %s\n%s", title, body)
	return nil
}

// InitializeServices initializes all service dependencies with consistent
// error handling. Returns ServiceDependencies and a cleanup function that
// should be deferred.
func InitializeServices(opts InitOptions) (*ServiceDependencies, func(), error) {
	deps := &ServiceDependencies{}
	var cleanups []func()

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	deps.Config = cfg

	logger := logging.New()
	deps.Logger = logger

	dockerService, err := docker.NewService()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create Docker service: %w", err)
	}
	deps.Docker = dockerService
	cleanups = append(cleanups, func() { dockerService.Close() })
	logger.Debug("Docker client connected")

	deps.Registry = registry.NewDockerHubClient()

	stateStore, err := state.NewStore(cfg.DataDir, cfg.NotificationFrequencyDays, logger)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to initialize state store: %w", err)
	}
	deps.StateStore = stateStore

	if cfg.NotifierConfigured() {
		deps.Notifier = notify.NewGotifyNotifier(cfg.GotifyURL, cfg.GotifyToken, cfg.GotifyPriority)
	} else if opts.RequireNotifier {
		cleanup()
		return nil, nil, fmt.Errorf("gotify is not configured: set GOTIFY_URL and GOTIFY_TOKEN")
	} else {
		logger.Warn("Gotify not configured, notifications will only be logged")
		deps.Notifier = &logNotifier{logger: logger}
	}

	// History is optional, a broken database never blocks update checks.
	if cfg.HistoryEnabled() {
		dbPath := cfg.HistoryDBPath
		if dbPath == "" {
			dbPath = filepath.Join(cfg.DataDir, "history.db")
		}
		historyService, err := storage.NewSQLiteStorage(dbPath, logger)
		if err != nil {
			logger.Warn("Failed to initialize check history (continuing without it): %v", err)
		} else {
			deps.History = historyService
			cleanups = append(cleanups, func() { historyService.Close() })
			logger.Debug("Check history initialized at %s", dbPath)
		}
	}

	deps.Orchestrator = update.NewOrchestrator(
		dockerService,
		update.NewResolver(deps.Registry),
		stateStore,
		deps.Notifier,
		deps.History,
		logger,
		cfg.GotifyTitle,
	)

	return deps, cleanup, nil
}
