package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BudgetPeriod string

const (
	PeriodMonthly   BudgetPeriod = "MENSUEL"
	PeriodQuarterly BudgetPeriod = "TRIMESTRIEL"
	PeriodHalfYear  BudgetPeriod = "SEMESTRIEL"
	PeriodAnnual    BudgetPeriod = "ANNUEL"
)

// Months returns the length of the period in months, or 0 for an unknown
// period.
func (p BudgetPeriod) Months() int {
	switch p {
	case PeriodMonthly:
		return 1
	case PeriodQuarterly:
		return 3
	case PeriodHalfYear:
		return 6
	case PeriodAnnual:
		return 12
	default:
		return 0
	}
}

// Valid reports whether p is a known period kind.
func (p BudgetPeriod) Valid() bool {
	return p.Months() > 0
}

type BudgetStatus string

const (
	BudgetStatusActive    BudgetStatus = "ACTIF"
	BudgetStatusClosed    BudgetStatus = "CLOTURE"
	BudgetStatusSuspended BudgetStatus = "SUSPENDU"
	BudgetStatusExpired   BudgetStatus = "EXPIRE"
)

// DefaultAlertThreshold is the fraction of the total at which a budget is
// flagged for notification when no explicit threshold is configured.
var DefaultAlertThreshold = decimal.New(80, -2) // 0.80

// Budget is a time-boxed monetary pool. montantTotal == montantUtilise +
// montantRestant holds after every mutation, and both sides stay
// non-negative; balances are only ever touched through ApplyAmount and
// ReleaseAmount.
type Budget struct {
	ID              int32           `json:"id"`
	Name            string          `json:"name"`
	Description     *string         `json:"description,omitempty"`
	TotalAmount     decimal.Decimal `json:"montantTotal"`
	UsedAmount      decimal.Decimal `json:"montantUtilise"`
	RemainingAmount decimal.Decimal `json:"montantRestant"`
	Period          BudgetPeriod    `json:"periodicite"`
	StartDate       time.Time       `json:"dateDebut"`
	EndDate         time.Time       `json:"dateFin"`
	Status          BudgetStatus    `json:"statut"`
	AlertThreshold  decimal.Decimal `json:"seuilAlerte"`
	AlertEnabled    bool            `json:"alerteActivee"`
	AutoRenew       bool            `json:"autoRenouvellement"`
	OwnerID         string          `json:"ownerId"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// ApplyAmount consumes amount from the remaining balance.
func (b *Budget) ApplyAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(b.RemainingAmount) {
		return ErrInsufficientFunds
	}
	b.UsedAmount = RoundAmount(b.UsedAmount.Add(amount))
	b.RemainingAmount = RoundAmount(b.TotalAmount.Sub(b.UsedAmount))
	return nil
}

// ReleaseAmount reverses a previous ApplyAmount.
func (b *Budget) ReleaseAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(b.UsedAmount) {
		return ErrOverRelease
	}
	b.UsedAmount = RoundAmount(b.UsedAmount.Sub(amount))
	b.RemainingAmount = RoundAmount(b.TotalAmount.Sub(b.UsedAmount))
	return nil
}

// PercentageUsed returns the consumed share of the total in percent, 0 for a
// zero-total budget.
func (b *Budget) PercentageUsed() decimal.Decimal {
	return PercentOf(b.UsedAmount, b.TotalAmount)
}

// IsAlertThresholdExceeded reports whether consumption reached the alert
// threshold.
func (b *Budget) IsAlertThresholdExceeded() bool {
	return b.PercentageUsed().GreaterThanOrEqual(b.AlertThreshold.Mul(oneHundred))
}

// IsExpired reports whether the budget period has ended.
func (b *Budget) IsExpired() bool {
	return Today().After(b.EndDate)
}

// IsActive reports whether the budget accepts new applications.
func (b *Budget) IsActive() bool {
	return b.Status == BudgetStatusActive && !b.IsExpired()
}

// Close marks the budget as terminally closed.
func (b *Budget) Close() {
	b.Status = BudgetStatusClosed
}

// Suspend temporarily blocks new applications against the budget.
func (b *Budget) Suspend() error {
	if b.Status != BudgetStatusActive {
		return ErrInvalidState
	}
	b.Status = BudgetStatusSuspended
	return nil
}

// Reactivate lifts a suspension. A budget whose period already ended cannot
// come back.
func (b *Budget) Reactivate() error {
	if b.Status != BudgetStatusSuspended {
		return ErrInvalidState
	}
	if b.IsExpired() {
		return ErrInvalidState
	}
	b.Status = BudgetStatusActive
	return nil
}

// Renew closes the budget and returns its successor: same total, threshold
// and renewal settings, zeroed balances, covering the next period.
func (b *Budget) Renew() (*Budget, error) {
	if !b.AutoRenew {
		return nil, ErrRenewalDisabled
	}
	if b.Status == BudgetStatusClosed {
		return nil, ErrInvalidState
	}
	start := b.EndDate.AddDate(0, 0, 1)
	b.Status = BudgetStatusClosed
	return &Budget{
		Name:            b.Name,
		Description:     b.Description,
		TotalAmount:     b.TotalAmount,
		UsedAmount:      decimal.Zero,
		RemainingAmount: b.TotalAmount,
		Period:          b.Period,
		StartDate:       start,
		EndDate:         NextPeriodEnd(start, b.Period),
		Status:          BudgetStatusActive,
		AlertThreshold:  b.AlertThreshold,
		AlertEnabled:    b.AlertEnabled,
		AutoRenew:       b.AutoRenew,
		OwnerID:         b.OwnerID,
	}, nil
}

// NextPeriodEnd returns the last day of the period starting at start.
// Month-end overflow is clamped by date normalization, so a monthly period
// starting Feb 1 ends Feb 29 on leap years.
func NextPeriodEnd(start time.Time, period BudgetPeriod) time.Time {
	return start.AddDate(0, period.Months(), -1)
}

// Today returns the current UTC date truncated to midnight. Expiry and
// posting dates compare against whole days, not clock times.
func Today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

// BudgetFilters narrows budget listings.
type BudgetFilters struct {
	Status *BudgetStatus
	Period *BudgetPeriod
}

// BudgetUpdate carries the administrative fields an existing budget may
// change. Balances and dates are deliberately absent.
type BudgetUpdate struct {
	Name           string
	Description    *string
	AlertThreshold decimal.Decimal
	AlertEnabled   bool
	AutoRenew      bool
}

type BudgetRepository interface {
	Create(budget *Budget) (*Budget, error)
	GetByID(id int32) (*Budget, error)
	GetAll(filters *BudgetFilters) ([]*Budget, error)
	Update(id int32, update *BudgetUpdate) (*Budget, error)
	UpdateStatus(id int32, status BudgetStatus) (*Budget, error)
	// Renew closes current and creates its successor as one unit of work.
	Renew(currentID int32, successor *Budget) (*Budget, error)
	// ApplyAmount and ReleaseAmount are atomic conditional updates: they
	// mutate both balance columns only when the guard (enough remaining,
	// resp. enough used, and an active status for ApplyAmount) holds, and
	// fail with ErrInsufficientFunds / ErrOverRelease / ErrBudgetNotActive
	// otherwise.
	ApplyAmount(id int32, amount decimal.Decimal) error
	ReleaseAmount(id int32, amount decimal.Decimal) error
	GetActive() ([]*Budget, error)
	HasActiveOverlap(start, end time.Time, excludeID *int32) (bool, error)
	GetNearExpiry(withinDays int) ([]*Budget, error)
	GetOverThreshold() ([]*Budget, error)
}
