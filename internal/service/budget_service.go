package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// Notifier receives ledger lifecycle events. Implementations must not block;
// the websocket publisher fans out on its own goroutines.
type Notifier interface {
	BudgetThresholdExceeded(budget *domain.Budget)
	BudgetNearExpiry(budget *domain.Budget)
	BudgetRenewed(previous, successor *domain.Budget)
	TransactionValidated(transaction *domain.Transaction)
	TransactionCancelled(transaction *domain.Transaction)
}

// BudgetService handles budget business logic
type BudgetService struct {
	budgetRepo domain.BudgetRepository
	notifier   Notifier
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, notifier Notifier) *BudgetService {
	return &BudgetService{
		budgetRepo: budgetRepo,
		notifier:   notifier,
	}
}

// CreateBudgetData contains the input for creating a budget
type CreateBudgetData struct {
	Name           string
	Description    *string
	TotalAmount    decimal.Decimal
	Period         domain.BudgetPeriod
	StartDate      time.Time
	EndDate        *time.Time
	AlertThreshold *decimal.Decimal
	AlertEnabled   bool
	AutoRenew      bool
	OwnerID        string
}

// Create validates and creates a new budget. The end date defaults to the
// last day of the period starting at the start date.
func (s *BudgetService) Create(data CreateBudgetData) (*domain.Budget, error) {
	if err := validateName(data.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(data.Description); err != nil {
		return nil, err
	}
	if data.TotalAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if !data.Period.Valid() {
		return nil, domain.ErrInvalidPeriod
	}

	start := data.StartDate.UTC().Truncate(24 * time.Hour)
	end := domain.NextPeriodEnd(start, data.Period)
	if data.EndDate != nil {
		end = data.EndDate.UTC().Truncate(24 * time.Hour)
	}
	if end.Before(start) {
		return nil, domain.ErrDateRange
	}

	threshold := domain.DefaultAlertThreshold
	if data.AlertThreshold != nil {
		threshold = *data.AlertThreshold
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}

	overlap, err := s.budgetRepo.HasActiveOverlap(start, end, nil)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, domain.ErrBudgetOverlap
	}

	budget := &domain.Budget{
		Name:            data.Name,
		Description:     data.Description,
		TotalAmount:     domain.RoundAmount(data.TotalAmount),
		UsedAmount:      decimal.Zero,
		RemainingAmount: domain.RoundAmount(data.TotalAmount),
		Period:          data.Period,
		StartDate:       start,
		EndDate:         end,
		Status:          domain.BudgetStatusActive,
		AlertThreshold:  threshold,
		AlertEnabled:    data.AlertEnabled,
		AutoRenew:       data.AutoRenew,
		OwnerID:         data.OwnerID,
	}

	return s.budgetRepo.Create(budget)
}

// Get retrieves a budget by ID
func (s *BudgetService) Get(id int32) (*domain.Budget, error) {
	return s.budgetRepo.GetByID(id)
}

// GetAll retrieves budgets matching the filters
func (s *BudgetService) GetAll(filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	return s.budgetRepo.GetAll(filters)
}

// Update changes the administrative fields of a budget. Balances, dates and
// period are not editable; money only moves through transactions.
func (s *BudgetService) Update(id int32, update *domain.BudgetUpdate) (*domain.Budget, error) {
	if err := validateName(update.Name); err != nil {
		return nil, err
	}
	if err := validateDescription(update.Description); err != nil {
		return nil, err
	}
	if err := validateThreshold(update.AlertThreshold); err != nil {
		return nil, err
	}
	if _, err := s.budgetRepo.GetByID(id); err != nil {
		return nil, err
	}
	return s.budgetRepo.Update(id, update)
}

// Close terminally closes a budget
func (s *BudgetService) Close(id int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if budget.Status == domain.BudgetStatusClosed {
		return nil, domain.ErrInvalidState
	}
	return s.budgetRepo.UpdateStatus(id, domain.BudgetStatusClosed)
}

// Suspend temporarily blocks applications against a budget
func (s *BudgetService) Suspend(id int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := budget.Suspend(); err != nil {
		return nil, err
	}
	return s.budgetRepo.UpdateStatus(id, domain.BudgetStatusSuspended)
}

// Reactivate lifts a suspension
func (s *BudgetService) Reactivate(id int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := budget.Reactivate(); err != nil {
		return nil, err
	}
	return s.budgetRepo.UpdateStatus(id, domain.BudgetStatusActive)
}

// Renew closes a budget and opens its successor for the next period. The
// successor starts the day after the current end date with fresh balances.
func (s *BudgetService) Renew(id int32) (*domain.Budget, error) {
	budget, err := s.budgetRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	successor, err := budget.Renew()
	if err != nil {
		return nil, err
	}
	created, err := s.budgetRepo.Renew(id, successor)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.BudgetRenewed(budget, created)
	}
	return created, nil
}

// GetActive retrieves all budgets currently accepting transactions
func (s *BudgetService) GetActive() ([]*domain.Budget, error) {
	return s.budgetRepo.GetActive()
}

// GetNearExpiry retrieves active budgets ending within the given window
func (s *BudgetService) GetNearExpiry(withinDays int) ([]*domain.Budget, error) {
	return s.budgetRepo.GetNearExpiry(withinDays)
}

// GetOverThreshold retrieves active budgets whose consumption reached their
// alert threshold
func (s *BudgetService) GetOverThreshold() ([]*domain.Budget, error) {
	return s.budgetRepo.GetOverThreshold()
}

func validateName(name string) error {
	if name == "" {
		return domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return domain.ErrNameTooLong
	}
	return nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	return nil
}

func validateThreshold(threshold decimal.Decimal) error {
	if threshold.LessThanOrEqual(decimal.Zero) || threshold.GreaterThan(decimal.NewFromInt(1)) {
		return domain.ErrInvalidThreshold
	}
	return nil
}
