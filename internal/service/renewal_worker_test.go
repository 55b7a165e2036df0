package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/testutil"
)

// recordingNotifier collects notifications for assertions
type recordingNotifier struct {
	mu         sync.Mutex
	thresholds []int32
	nearExpiry []int32
	renewals   [][2]int32
}

func (n *recordingNotifier) BudgetThresholdExceeded(b *domain.Budget) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.thresholds = append(n.thresholds, b.ID)
}

func (n *recordingNotifier) BudgetNearExpiry(b *domain.Budget) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nearExpiry = append(n.nearExpiry, b.ID)
}

func (n *recordingNotifier) BudgetRenewed(previous, successor *domain.Budget) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.renewals = append(n.renewals, [2]int32{previous.ID, successor.ID})
}

func (n *recordingNotifier) TransactionValidated(*domain.Transaction) {}

func (n *recordingNotifier) TransactionCancelled(*domain.Transaction) {}

func setupRenewalWorker() (*RenewalWorker, *testutil.MockBudgetRepository, *recordingNotifier) {
	budgetRepo := testutil.NewMockBudgetRepository()
	notifier := &recordingNotifier{}
	budgetService := NewBudgetService(budgetRepo, notifier)

	config := RenewalWorkerConfig{
		Interval:     100 * time.Millisecond, // Fast interval for testing
		ExpiryWindow: 7,
	}

	worker := NewRenewalWorker(budgetService, budgetRepo, notifier, zerolog.Nop(), config)
	return worker, budgetRepo, notifier
}

func expiredAutoRenewBudget(id int32) *domain.Budget {
	total := decimal.NewFromInt(1000)
	end := domain.Today().AddDate(0, 0, -1)
	return &domain.Budget{
		ID:              id,
		Name:            "Budget mensuel",
		TotalAmount:     total,
		UsedAmount:      decimal.NewFromInt(400),
		RemainingAmount: decimal.NewFromInt(600),
		Period:          domain.PeriodMonthly,
		StartDate:       end.AddDate(0, -1, 1),
		EndDate:         end,
		Status:          domain.BudgetStatusActive,
		AlertThreshold:  domain.DefaultAlertThreshold,
		AlertEnabled:    true,
		AutoRenew:       true,
	}
}

func TestRenewalWorker_DefaultConfig(t *testing.T) {
	config := DefaultRenewalWorkerConfig()

	assert.Equal(t, 1*time.Hour, config.Interval)
	assert.Equal(t, 7, config.ExpiryWindow)
}

func TestRenewalWorker_StartStop(t *testing.T) {
	worker, _, _ := setupRenewalWorker()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	assert.True(t, worker.IsRunning())

	worker.Stop()
	assert.False(t, worker.IsRunning())
}

func TestRenewalWorker_SweepRenewsEndedBudgets(t *testing.T) {
	worker, budgetRepo, notifier := setupRenewalWorker()
	budgetRepo.AddBudget(expiredAutoRenewBudget(1))

	worker.Sweep(context.Background())

	previous, err := budgetRepo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, domain.BudgetStatusClosed, previous.Status)

	budgets, err := budgetRepo.GetAll(nil)
	require.NoError(t, err)
	require.Len(t, budgets, 2)

	successor := budgets[1]
	assert.Equal(t, domain.BudgetStatusActive, successor.Status)
	assert.True(t, successor.UsedAmount.IsZero())
	assert.True(t, successor.RemainingAmount.Equal(previous.TotalAmount))
	assert.True(t, successor.StartDate.Equal(previous.EndDate.AddDate(0, 0, 1)))

	require.Len(t, notifier.renewals, 1)
	assert.Equal(t, [2]int32{1, successor.ID}, notifier.renewals[0])
}

func TestRenewalWorker_SweepSkipsManualBudgets(t *testing.T) {
	worker, budgetRepo, notifier := setupRenewalWorker()
	manual := expiredAutoRenewBudget(1)
	manual.AutoRenew = false
	budgetRepo.AddBudget(manual)

	worker.Sweep(context.Background())

	budgets, err := budgetRepo.GetAll(nil)
	require.NoError(t, err)
	assert.Len(t, budgets, 1)
	assert.Empty(t, notifier.renewals)
}

func TestRenewalWorker_SweepWarnsNearExpiry(t *testing.T) {
	worker, budgetRepo, notifier := setupRenewalWorker()
	soon := expiredAutoRenewBudget(1)
	soon.EndDate = domain.Today().AddDate(0, 0, 3)
	budgetRepo.AddBudget(soon)

	worker.Sweep(context.Background())

	// Still inside its period: warned, not renewed
	assert.Equal(t, []int32{1}, notifier.nearExpiry)
	assert.Empty(t, notifier.renewals)

	current, err := budgetRepo.GetByID(1)
	require.NoError(t, err)
	assert.Equal(t, domain.BudgetStatusActive, current.Status)
}

func TestRenewalWorker_SweepPublishesThresholdAlerts(t *testing.T) {
	worker, budgetRepo, notifier := setupRenewalWorker()

	hot := expiredAutoRenewBudget(1)
	hot.AutoRenew = false
	hot.EndDate = domain.Today().AddDate(0, 6, 0)
	hot.UsedAmount = decimal.NewFromInt(850)
	hot.RemainingAmount = decimal.NewFromInt(150)
	budgetRepo.AddBudget(hot)

	quiet := expiredAutoRenewBudget(2)
	quiet.AutoRenew = false
	quiet.EndDate = domain.Today().AddDate(0, 6, 0)
	quiet.UsedAmount = decimal.NewFromInt(100)
	quiet.RemainingAmount = decimal.NewFromInt(900)
	budgetRepo.AddBudget(quiet)

	worker.Sweep(context.Background())

	assert.Equal(t, []int32{1}, notifier.thresholds)
}

func TestRenewalWorker_SweepContinuesAfterFailure(t *testing.T) {
	worker, budgetRepo, notifier := setupRenewalWorker()

	// Closed concurrently: Renew reports ErrInvalidState and the sweep moves on
	raced := expiredAutoRenewBudget(1)
	budgetRepo.AddBudget(raced)
	healthy := expiredAutoRenewBudget(2)
	healthy.StartDate = raced.StartDate.AddDate(0, -2, 0)
	healthy.EndDate = raced.EndDate.AddDate(0, 0, -1)
	budgetRepo.AddBudget(healthy)

	_, err := budgetRepo.UpdateStatus(1, domain.BudgetStatusClosed)
	require.NoError(t, err)

	worker.Sweep(context.Background())

	assert.Len(t, notifier.renewals, 1)
	assert.Equal(t, int32(2), notifier.renewals[0][0])
}
