package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// RenewalWorker is a background worker that periodically renews expired
// auto-renewing budgets and publishes threshold and expiry alerts
type RenewalWorker struct {
	budgetService *BudgetService
	budgetRepo    domain.BudgetRepository
	notifier      Notifier
	logger        zerolog.Logger
	interval      time.Duration
	expiryWindow  int
	stopCh        chan struct{}
	doneCh        chan struct{}
	mu            sync.Mutex
	running       bool
}

// RenewalWorkerConfig holds configuration for the renewal worker
type RenewalWorkerConfig struct {
	Interval     time.Duration // How often to run the sweep
	ExpiryWindow int           // Days ahead to flag budgets as near expiry
}

// DefaultRenewalWorkerConfig returns sensible defaults
func DefaultRenewalWorkerConfig() RenewalWorkerConfig {
	return RenewalWorkerConfig{
		Interval:     1 * time.Hour,
		ExpiryWindow: 7,
	}
}

// NewRenewalWorker creates a new renewal worker
func NewRenewalWorker(
	budgetService *BudgetService,
	budgetRepo domain.BudgetRepository,
	notifier Notifier,
	logger zerolog.Logger,
	config RenewalWorkerConfig,
) *RenewalWorker {
	if config.Interval <= 0 {
		config.Interval = 1 * time.Hour
	}
	if config.ExpiryWindow <= 0 {
		config.ExpiryWindow = 7
	}

	return &RenewalWorker{
		budgetService: budgetService,
		budgetRepo:    budgetRepo,
		notifier:      notifier,
		logger:        logger.With().Str("component", "renewal_worker").Logger(),
		interval:      config.Interval,
		expiryWindow:  config.ExpiryWindow,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins the background sweep
func (w *RenewalWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Int("expiry_window_days", w.expiryWindow).
		Msg("Starting renewal worker")

	go w.run(ctx)
}

// Stop gracefully stops the renewal worker
func (w *RenewalWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping renewal worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Renewal worker stopped")
}

// run is the main loop for the renewal worker
func (w *RenewalWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run immediately on startup
	w.Sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-w.stopCh:
			w.mu.Lock()
			w.running = false
			w.mu.Unlock()
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: renew ended auto-renewing budgets, then publish
// near-expiry and threshold alerts. Failures on one budget never stop the
// pass for the others.
func (w *RenewalWorker) Sweep(ctx context.Context) {
	startTime := time.Now()
	renewed := 0
	failures := 0

	budgets, err := w.budgetRepo.GetNearExpiry(w.expiryWindow)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to get budgets near expiry")
		return
	}

	today := domain.Today()
	for _, budget := range budgets {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping sweep")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("Stop signal received, stopping sweep")
			return
		default:
		}

		// Budgets still running their period only get the expiry warning;
		// renewal happens once the period actually ends.
		if budget.EndDate.After(today) || budget.EndDate.Equal(today) {
			if w.notifier != nil {
				w.notifier.BudgetNearExpiry(budget)
			}
			continue
		}

		if !budget.AutoRenew {
			continue
		}

		successor, err := w.budgetService.Renew(budget.ID)
		if err != nil {
			// A concurrent manual renewal already closed it; nothing to do.
			if errors.Is(err, domain.ErrInvalidState) {
				continue
			}
			w.logger.Error().
				Err(err).
				Int32("budget_id", budget.ID).
				Msg("Failed to renew budget")
			failures++
			continue
		}

		renewed++
		w.logger.Info().
			Int32("budget_id", budget.ID).
			Int32("successor_id", successor.ID).
			Str("period", string(successor.Period)).
			Msg("Renewed budget")
	}

	w.sweepThresholdAlerts()

	w.logger.Info().
		Int("candidates", len(budgets)).
		Int("renewed", renewed).
		Int("failures", failures).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed renewal sweep")
}

// sweepThresholdAlerts publishes an alert for every active budget whose
// consumption reached its threshold
func (w *RenewalWorker) sweepThresholdAlerts() {
	if w.notifier == nil {
		return
	}
	budgets, err := w.budgetRepo.GetOverThreshold()
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to get budgets over threshold")
		return
	}
	for _, budget := range budgets {
		w.notifier.BudgetThresholdExceeded(budget)
	}
}

// IsRunning returns whether the worker is currently running
func (w *RenewalWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
