package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/testutil"
)

func activeBudget(id int32, total string) *domain.Budget {
	amount := decimal.RequireFromString(total)
	return &domain.Budget{
		ID:              id,
		Name:            "Budget saison",
		TotalAmount:     amount,
		UsedAmount:      decimal.Zero,
		RemainingAmount: amount,
		Period:          domain.PeriodAnnual,
		StartDate:       domain.Today().AddDate(0, -1, 0),
		EndDate:         domain.Today().AddDate(0, 11, 0),
		Status:          domain.BudgetStatusActive,
		AlertThreshold:  domain.DefaultAlertThreshold,
		AlertEnabled:    true,
	}
}

func TestBudgetServiceCreate(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	budget, err := service.Create(CreateBudgetData{
		Name:        "Budget annuel 2024",
		TotalAmount: decimal.NewFromInt(15000),
		Period:      domain.PeriodAnnual,
		StartDate:   start,
		OwnerID:     "auth0|tresorier",
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if budget.ID == 0 {
		t.Error("expected an assigned id")
	}
	if budget.Status != domain.BudgetStatusActive {
		t.Errorf("status = %s, want ACTIF", budget.Status)
	}
	// End date defaults to the last day of the period
	wantEnd := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	if !budget.EndDate.Equal(wantEnd) {
		t.Errorf("end date = %s, want %s", budget.EndDate, wantEnd)
	}
	if !budget.AlertThreshold.Equal(domain.DefaultAlertThreshold) {
		t.Errorf("threshold = %s, want default 0.80", budget.AlertThreshold)
	}
	if !budget.RemainingAmount.Equal(budget.TotalAmount) {
		t.Errorf("remaining = %s, want total %s", budget.RemainingAmount, budget.TotalAmount)
	}
}

func TestBudgetServiceCreate_Validation(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	badEnd := start.AddDate(0, 0, -10)
	badThreshold := decimal.RequireFromString("1.5")

	tests := []struct {
		name string
		data CreateBudgetData
		want error
	}{
		{"empty name", CreateBudgetData{Name: "", TotalAmount: decimal.NewFromInt(100), Period: domain.PeriodAnnual, StartDate: start}, domain.ErrNameRequired},
		{"zero amount", CreateBudgetData{Name: "B", TotalAmount: decimal.Zero, Period: domain.PeriodAnnual, StartDate: start}, domain.ErrInvalidAmount},
		{"negative amount", CreateBudgetData{Name: "B", TotalAmount: decimal.NewFromInt(-5), Period: domain.PeriodAnnual, StartDate: start}, domain.ErrInvalidAmount},
		{"unknown period", CreateBudgetData{Name: "B", TotalAmount: decimal.NewFromInt(100), Period: "HEBDO", StartDate: start}, domain.ErrInvalidPeriod},
		{"end before start", CreateBudgetData{Name: "B", TotalAmount: decimal.NewFromInt(100), Period: domain.PeriodAnnual, StartDate: start, EndDate: &badEnd}, domain.ErrDateRange},
		{"threshold above one", CreateBudgetData{Name: "B", TotalAmount: decimal.NewFromInt(100), Period: domain.PeriodAnnual, StartDate: start, AlertThreshold: &badThreshold}, domain.ErrInvalidThreshold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := service.Create(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got: %v", tt.want, err)
			}
		})
	}
}

func TestBudgetServiceCreate_Overlap(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	repo.AddBudget(activeBudget(1, "1000.00"))

	_, err := service.Create(CreateBudgetData{
		Name:        "Budget chevauchant",
		TotalAmount: decimal.NewFromInt(500),
		Period:      domain.PeriodMonthly,
		StartDate:   domain.Today(),
	})
	if !errors.Is(err, domain.ErrBudgetOverlap) {
		t.Fatalf("expected ErrBudgetOverlap, got: %v", err)
	}
}

func TestBudgetServiceCreate_NoOverlapWithClosed(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	closed := activeBudget(1, "1000.00")
	closed.Status = domain.BudgetStatusClosed
	repo.AddBudget(closed)

	if _, err := service.Create(CreateBudgetData{
		Name:        "Nouveau budget",
		TotalAmount: decimal.NewFromInt(500),
		Period:      domain.PeriodMonthly,
		StartDate:   domain.Today(),
	}); err != nil {
		t.Fatalf("closed budgets must not block new periods, got: %v", err)
	}
}

func TestBudgetServiceSuspendReactivate(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	repo.AddBudget(activeBudget(1, "1000.00"))

	suspended, err := service.Suspend(1)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if suspended.Status != domain.BudgetStatusSuspended {
		t.Errorf("status = %s, want SUSPENDU", suspended.Status)
	}

	if _, err := service.Suspend(1); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("double suspend: expected ErrInvalidState, got: %v", err)
	}

	reactivated, err := service.Reactivate(1)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if reactivated.Status != domain.BudgetStatusActive {
		t.Errorf("status = %s, want ACTIF", reactivated.Status)
	}
}

func TestBudgetServiceClose(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	repo.AddBudget(activeBudget(1, "1000.00"))

	closed, err := service.Close(1)
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if closed.Status != domain.BudgetStatusClosed {
		t.Errorf("status = %s, want CLOTURE", closed.Status)
	}
	if _, err := service.Close(1); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("double close: expected ErrInvalidState, got: %v", err)
	}
}

func TestBudgetServiceRenew(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)

	budget := activeBudget(1, "1000.00")
	budget.Period = domain.PeriodMonthly
	budget.AutoRenew = true
	budget.EndDate = domain.Today().AddDate(0, 0, -1)
	budget.UsedAmount = decimal.NewFromInt(400)
	budget.RemainingAmount = decimal.NewFromInt(600)
	repo.AddBudget(budget)

	successor, err := service.Renew(1)
	if err != nil {
		t.Fatalf("renew: %v", err)
	}

	previous, _ := repo.GetByID(1)
	if previous.Status != domain.BudgetStatusClosed {
		t.Errorf("previous status = %s, want CLOTURE", previous.Status)
	}
	if successor.ID == 1 {
		t.Error("successor must be a new budget")
	}
	if !successor.StartDate.Equal(budget.EndDate.AddDate(0, 0, 1)) {
		t.Errorf("successor starts %s, want day after %s", successor.StartDate, budget.EndDate)
	}
	if !successor.UsedAmount.IsZero() || !successor.RemainingAmount.Equal(budget.TotalAmount) {
		t.Error("successor balances must be reset")
	}
}

func TestBudgetServiceRenew_Disabled(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	repo.AddBudget(activeBudget(1, "1000.00"))

	if _, err := service.Renew(1); !errors.Is(err, domain.ErrRenewalDisabled) {
		t.Fatalf("expected ErrRenewalDisabled, got: %v", err)
	}
}

func TestBudgetServiceUpdate(t *testing.T) {
	repo := testutil.NewMockBudgetRepository()
	service := NewBudgetService(repo, nil)
	repo.AddBudget(activeBudget(1, "1000.00"))

	threshold := decimal.RequireFromString("0.90")
	updated, err := service.Update(1, &domain.BudgetUpdate{
		Name:           "Budget renommé",
		AlertThreshold: threshold,
		AlertEnabled:   false,
		AutoRenew:      true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Budget renommé" {
		t.Errorf("name = %s", updated.Name)
	}
	if !updated.AlertThreshold.Equal(threshold) {
		t.Errorf("threshold = %s, want 0.90", updated.AlertThreshold)
	}
	if !updated.TotalAmount.Equal(decimal.RequireFromString("1000.00")) {
		t.Error("update must not touch balances")
	}
}

func TestBudgetServiceGet_NotFound(t *testing.T) {
	service := NewBudgetService(testutil.NewMockBudgetRepository(), nil)
	if _, err := service.Get(42); !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got: %v", err)
	}
}
