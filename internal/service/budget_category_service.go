package service

import (
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// BudgetCategoryService handles budget category business logic
type BudgetCategoryService struct {
	categoryRepo domain.BudgetCategoryRepository
	budgetRepo   domain.BudgetRepository
}

// NewBudgetCategoryService creates a new BudgetCategoryService
func NewBudgetCategoryService(
	categoryRepo domain.BudgetCategoryRepository,
	budgetRepo domain.BudgetRepository,
) *BudgetCategoryService {
	return &BudgetCategoryService{
		categoryRepo: categoryRepo,
		budgetRepo:   budgetRepo,
	}
}

// CreateBudgetCategoryData contains the input for creating a budget category
type CreateBudgetCategoryData struct {
	BudgetID        int32
	Name            string
	Type            domain.BudgetCategoryType
	Priority        int
	AllocatedAmount decimal.Decimal
	AlertThreshold  *decimal.Decimal
}

// Create validates and creates a category under a budget. The sum of all
// allocations of a budget may never exceed its total.
func (s *BudgetCategoryService) Create(data CreateBudgetCategoryData) (*domain.BudgetCategory, error) {
	if err := validateName(data.Name); err != nil {
		return nil, err
	}
	if !data.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	if data.AllocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	threshold := domain.DefaultAlertThreshold
	if data.AlertThreshold != nil {
		threshold = *data.AlertThreshold
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByID(data.BudgetID)
	if err != nil {
		return nil, err
	}

	allocated, err := s.categoryRepo.SumAllocatedByBudget(data.BudgetID, nil)
	if err != nil {
		return nil, err
	}
	if allocated.Add(data.AllocatedAmount).GreaterThan(budget.TotalAmount) {
		return nil, domain.ErrAllocationExceedsBudget
	}

	category := &domain.BudgetCategory{
		BudgetID:        data.BudgetID,
		Name:            data.Name,
		Type:            data.Type,
		Priority:        data.Priority,
		AllocatedAmount: domain.RoundAmount(data.AllocatedAmount),
		UsedAmount:      decimal.Zero,
		RemainingAmount: domain.RoundAmount(data.AllocatedAmount),
		AlertThreshold:  threshold,
		Active:          true,
	}

	return s.categoryRepo.Create(category)
}

// Get retrieves a category by ID
func (s *BudgetCategoryService) Get(id int32) (*domain.BudgetCategory, error) {
	return s.categoryRepo.GetByID(id)
}

// GetByBudget retrieves all categories of a budget
func (s *BudgetCategoryService) GetByBudget(budgetID int32) ([]*domain.BudgetCategory, error) {
	if _, err := s.budgetRepo.GetByID(budgetID); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByBudget(budgetID)
}

// Update changes a category. Shrinking the allocation below the amount
// already consumed is refused, and the allocation cap of the owning budget
// still applies.
func (s *BudgetCategoryService) Update(id int32, update *domain.BudgetCategoryUpdate) (*domain.BudgetCategory, error) {
	if err := validateName(update.Name); err != nil {
		return nil, err
	}
	if !update.Type.Valid() {
		return nil, domain.ErrInvalidType
	}
	if update.AllocatedAmount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if err := validateThreshold(update.AlertThreshold); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if update.AllocatedAmount.LessThan(category.UsedAmount) {
		return nil, domain.ErrInvalidAmount
	}

	budget, err := s.budgetRepo.GetByID(category.BudgetID)
	if err != nil {
		return nil, err
	}
	allocated, err := s.categoryRepo.SumAllocatedByBudget(category.BudgetID, &id)
	if err != nil {
		return nil, err
	}
	if allocated.Add(update.AllocatedAmount).GreaterThan(budget.TotalAmount) {
		return nil, domain.ErrAllocationExceedsBudget
	}

	return s.categoryRepo.Update(id, update)
}

// Delete removes a category. A category referenced by validated transactions
// is part of the accounting trail and cannot be removed.
func (s *BudgetCategoryService) Delete(id int32) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return err
	}
	inUse, err := s.categoryRepo.HasValidatedTransactions(id)
	if err != nil {
		return err
	}
	if inUse {
		return domain.ErrCategoryInUse
	}
	return s.categoryRepo.Delete(id)
}
