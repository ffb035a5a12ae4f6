package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/growlify/growlify-api/internal/domain"
)

// ResetTokenPurgeWorker is a background worker that periodically deletes
// expired and used password reset tokens
type ResetTokenPurgeWorker struct {
	resetTokenRepo domain.ResetTokenRepository
	logger         zerolog.Logger
	interval       time.Duration
	retention      time.Duration
	now            func() time.Time
	stopCh         chan struct{}
	doneCh         chan struct{}
	mu             sync.Mutex
	running        bool
}

// ResetTokenPurgeConfig holds configuration for the purge worker
type ResetTokenPurgeConfig struct {
	Interval  time.Duration // How often to purge
	Retention time.Duration // How long stale tokens are kept
}

// DefaultResetTokenPurgeConfig returns sensible defaults
func DefaultResetTokenPurgeConfig() ResetTokenPurgeConfig {
	return ResetTokenPurgeConfig{
		Interval:  time.Hour,
		Retention: 24 * time.Hour,
	}
}

// NewResetTokenPurgeWorker creates a new purge worker
func NewResetTokenPurgeWorker(
	resetTokenRepo domain.ResetTokenRepository,
	logger zerolog.Logger,
	config ResetTokenPurgeConfig,
) *ResetTokenPurgeWorker {
	defaults := DefaultResetTokenPurgeConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Retention <= 0 {
		config.Retention = defaults.Retention
	}

	return &ResetTokenPurgeWorker{
		resetTokenRepo: resetTokenRepo,
		logger:         logger.With().Str("component", "reset_token_purge_worker").Logger(),
		interval:       config.Interval,
		retention:      config.Retention,
		now:            time.Now,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start begins the background purge
func (w *ResetTokenPurgeWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Dur("retention", w.retention).
		Msg("Starting reset token purge worker")

	go w.run(ctx)
}

// Stop gracefully stops the worker
func (w *ResetTokenPurgeWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping reset token purge worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Reset token purge worker stopped")
}

func (w *ResetTokenPurgeWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	// Run immediately on startup
	w.purge(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *ResetTokenPurgeWorker) purge(ctx context.Context) {
	if _, err := w.PurgeNow(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Failed to purge reset tokens")
	}
}

// PurgeNow deletes tokens that expired or were used before now minus the
// retention period
func (w *ResetTokenPurgeWorker) PurgeNow(ctx context.Context) (int64, error) {
	startTime := time.Now()
	cutoff := w.now().Add(-w.retention)

	deleted, err := w.resetTokenRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	w.logger.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed reset token purge")
	return deleted, nil
}

// IsRunning returns whether the worker is currently running
func (w *ResetTokenPurgeWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
