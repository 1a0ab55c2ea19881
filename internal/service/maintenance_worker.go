package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// TokenPurger deletes used and expired verification tokens
type TokenPurger interface {
	PurgeTokens() (int64, error)
}

// CooldownPruner drops cooldown entries older than window. Stores with
// native expiry (Redis) do not need one.
type CooldownPruner interface {
	Prune(now time.Time, window time.Duration) int
}

// MaintenanceWorker is a background worker that periodically purges stale tokens and cooldowns
type MaintenanceWorker struct {
	tokens    TokenPurger
	cooldowns CooldownPruner
	logger    zerolog.Logger
	interval  time.Duration
	window    time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// MaintenanceWorkerConfig holds configuration for the maintenance worker
type MaintenanceWorkerConfig struct {
	Interval       time.Duration // How often to sweep
	CooldownWindow time.Duration // Cooldown entries older than this are dropped
	Clock          func() time.Time
}

// DefaultMaintenanceWorkerConfig returns an hourly sweep with the 24h cooldown window
func DefaultMaintenanceWorkerConfig() MaintenanceWorkerConfig {
	return MaintenanceWorkerConfig{
		Interval:       1 * time.Hour,
		CooldownWindow: 24 * time.Hour,
		Clock:          time.Now,
	}
}

// MaintenanceResult summarises one sweep
type MaintenanceResult struct {
	TokensPurged    int64
	CooldownsPruned int
}

// NewMaintenanceWorker creates a new maintenance worker. Either dependency may be nil.
func NewMaintenanceWorker(
	tokens TokenPurger,
	cooldowns CooldownPruner,
	logger zerolog.Logger,
	config MaintenanceWorkerConfig,
) *MaintenanceWorker {
	defaults := DefaultMaintenanceWorkerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.CooldownWindow <= 0 {
		config.CooldownWindow = defaults.CooldownWindow
	}
	if config.Clock == nil {
		config.Clock = defaults.Clock
	}

	return &MaintenanceWorker{
		tokens:    tokens,
		cooldowns: cooldowns,
		logger:    logger.With().Str("component", "maintenance_worker").Logger(),
		interval:  config.Interval,
		window:    config.CooldownWindow,
		now:       config.Clock,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (w *MaintenanceWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Dur("cooldown_window", w.window).
		Msg("Starting maintenance worker")

	go w.run(ctx)
}

// Stop gracefully stops the worker
func (w *MaintenanceWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping maintenance worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Maintenance worker stopped")
}

func (w *MaintenanceWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	w.Sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.setStopped()
			return
		case <-w.stopCh:
			w.setStopped()
			return
		case <-ticker.C:
			w.Sweep()
		}
	}
}

func (w *MaintenanceWorker) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// Sweep runs one purge pass. Errors are logged and the pass continues.
func (w *MaintenanceWorker) Sweep() MaintenanceResult {
	var result MaintenanceResult
	startTime := time.Now()

	if w.tokens != nil {
		purged, err := w.tokens.PurgeTokens()
		if err != nil {
			w.logger.Error().Err(err).Msg("Failed to purge verification tokens")
		}
		result.TokensPurged = purged
	}
	if w.cooldowns != nil {
		result.CooldownsPruned = w.cooldowns.Prune(w.now(), w.window)
	}

	w.logger.Debug().
		Int64("tokens_purged", result.TokensPurged).
		Int("cooldowns_pruned", result.CooldownsPruned).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed maintenance sweep")
	return result
}

// IsRunning returns whether the worker is currently running
func (w *MaintenanceWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
