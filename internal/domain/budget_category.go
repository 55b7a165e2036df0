package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetCategoryType string

const (
	CategoryTypeEquipment      BudgetCategoryType = "EQUIPEMENT"
	CategoryTypeTravel         BudgetCategoryType = "DEPLACEMENT"
	CategoryTypeTraining       BudgetCategoryType = "FORMATION"
	CategoryTypeMedical        BudgetCategoryType = "MEDICAL"
	CategoryTypeAdministrative BudgetCategoryType = "ADMINISTRATIF"
	CategoryTypeOther          BudgetCategoryType = "AUTRE"
)

// Valid reports whether t is a known category type.
func (t BudgetCategoryType) Valid() bool {
	switch t {
	case CategoryTypeEquipment, CategoryTypeTravel, CategoryTypeTraining,
		CategoryTypeMedical, CategoryTypeAdministrative, CategoryTypeOther:
		return true
	default:
		return false
	}
}

// BudgetCategory is a named sub-allocation of a budget. It follows the same
// reconciliation law as the budget itself, scoped to montantAlloue.
type BudgetCategory struct {
	ID              int32              `json:"id"`
	BudgetID        int32              `json:"budgetId"`
	Name            string             `json:"name"`
	Type            BudgetCategoryType `json:"type"`
	Priority        int                `json:"priorite"`
	AllocatedAmount decimal.Decimal    `json:"montantAlloue"`
	UsedAmount      decimal.Decimal    `json:"montantUtilise"`
	RemainingAmount decimal.Decimal    `json:"montantRestant"`
	AlertThreshold  decimal.Decimal    `json:"seuilAlerte"`
	Active          bool               `json:"actif"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// ApplyAmount consumes amount from the category's remaining allocation.
func (c *BudgetCategory) ApplyAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(c.RemainingAmount) {
		return ErrInsufficientFunds
	}
	c.UsedAmount = RoundAmount(c.UsedAmount.Add(amount))
	c.RemainingAmount = RoundAmount(c.AllocatedAmount.Sub(c.UsedAmount))
	return nil
}

// ReleaseAmount reverses a previous ApplyAmount.
func (c *BudgetCategory) ReleaseAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(c.UsedAmount) {
		return ErrOverRelease
	}
	c.UsedAmount = RoundAmount(c.UsedAmount.Sub(amount))
	c.RemainingAmount = RoundAmount(c.AllocatedAmount.Sub(c.UsedAmount))
	return nil
}

// PercentageUsed returns the consumed share of the allocation in percent.
func (c *BudgetCategory) PercentageUsed() decimal.Decimal {
	return PercentOf(c.UsedAmount, c.AllocatedAmount)
}

// IsAlertThresholdExceeded reports whether consumption reached the alert
// threshold.
func (c *BudgetCategory) IsAlertThresholdExceeded() bool {
	return c.PercentageUsed().GreaterThanOrEqual(c.AlertThreshold.Mul(oneHundred))
}

// IsExhausted reports whether nothing remains to spend.
func (c *BudgetCategory) IsExhausted() bool {
	return c.RemainingAmount.LessThanOrEqual(decimal.Zero)
}

// CanAccept is a read-only pre-flight check. It does not reserve anything;
// a concurrent validation can still win the remaining balance.
func (c *BudgetCategory) CanAccept(amount decimal.Decimal) bool {
	return c.RemainingAmount.GreaterThanOrEqual(amount)
}

// BudgetCategoryUpdate carries the mutable fields of a category.
type BudgetCategoryUpdate struct {
	Name            string
	Type            BudgetCategoryType
	Priority        int
	AllocatedAmount decimal.Decimal
	AlertThreshold  decimal.Decimal
	Active          bool
}

type BudgetCategoryRepository interface {
	Create(category *BudgetCategory) (*BudgetCategory, error)
	GetByID(id int32) (*BudgetCategory, error)
	GetByBudget(budgetID int32) ([]*BudgetCategory, error)
	Update(id int32, update *BudgetCategoryUpdate) (*BudgetCategory, error)
	Delete(id int32) error
	// SumAllocatedByBudget returns the sum of montantAlloue over the budget's
	// categories, optionally excluding one category (for update checks).
	SumAllocatedByBudget(budgetID int32, excludeID *int32) (decimal.Decimal, error)
	HasValidatedTransactions(id int32) (bool, error)
	// Same conditional-update contract as BudgetRepository.
	ApplyAmount(id int32, amount decimal.Decimal) error
	ReleaseAmount(id int32, amount decimal.Decimal) error
}
