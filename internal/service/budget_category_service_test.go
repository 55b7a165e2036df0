package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/testutil"
)

func newCategoryService() (*BudgetCategoryService, *testutil.MockBudgetRepository, *testutil.MockBudgetCategoryRepository) {
	budgetRepo := testutil.NewMockBudgetRepository()
	categoryRepo := testutil.NewMockBudgetCategoryRepository()
	return NewBudgetCategoryService(categoryRepo, budgetRepo), budgetRepo, categoryRepo
}

func TestBudgetCategoryServiceCreate(t *testing.T) {
	service, budgetRepo, _ := newCategoryService()
	budgetRepo.AddBudget(activeBudget(1, "1000.00"))

	category, err := service.Create(CreateBudgetCategoryData{
		BudgetID:        1,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(600),
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !category.RemainingAmount.Equal(category.AllocatedAmount) {
		t.Errorf("remaining = %s, want allocated %s", category.RemainingAmount, category.AllocatedAmount)
	}
	if !category.Active {
		t.Error("new category should be active")
	}
}

func TestBudgetCategoryServiceCreate_AllocationCap(t *testing.T) {
	service, budgetRepo, categoryRepo := newCategoryService()
	budgetRepo.AddBudget(activeBudget(1, "1000.00"))
	categoryRepo.AddCategory(&domain.BudgetCategory{
		ID:              1,
		BudgetID:        1,
		Name:            "Deplacements",
		Type:            domain.CategoryTypeTravel,
		AllocatedAmount: decimal.NewFromInt(700),
		RemainingAmount: decimal.NewFromInt(700),
		AlertThreshold:  domain.DefaultAlertThreshold,
		Active:          true,
	})

	// 700 + 400 > 1000
	_, err := service.Create(CreateBudgetCategoryData{
		BudgetID:        1,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(400),
	})
	if !errors.Is(err, domain.ErrAllocationExceedsBudget) {
		t.Fatalf("expected ErrAllocationExceedsBudget, got: %v", err)
	}

	// 700 + 300 == 1000 is allowed
	if _, err := service.Create(CreateBudgetCategoryData{
		BudgetID:        1,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(300),
	}); err != nil {
		t.Fatalf("exact fit should pass, got: %v", err)
	}
}

func TestBudgetCategoryServiceCreate_UnknownBudget(t *testing.T) {
	service, _, _ := newCategoryService()
	_, err := service.Create(CreateBudgetCategoryData{
		BudgetID:        42,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrBudgetNotFound) {
		t.Fatalf("expected ErrBudgetNotFound, got: %v", err)
	}
}

func TestBudgetCategoryServiceCreate_InvalidType(t *testing.T) {
	service, budgetRepo, _ := newCategoryService()
	budgetRepo.AddBudget(activeBudget(1, "1000.00"))

	_, err := service.Create(CreateBudgetCategoryData{
		BudgetID:        1,
		Name:            "Loisirs",
		Type:            "LOISIRS",
		AllocatedAmount: decimal.NewFromInt(100),
	})
	if !errors.Is(err, domain.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got: %v", err)
	}
}

func TestBudgetCategoryServiceUpdate_ShrinkBelowUsed(t *testing.T) {
	service, budgetRepo, categoryRepo := newCategoryService()
	budgetRepo.AddBudget(activeBudget(1, "1000.00"))
	categoryRepo.AddCategory(&domain.BudgetCategory{
		ID:              1,
		BudgetID:        1,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(500),
		UsedAmount:      decimal.NewFromInt(300),
		RemainingAmount: decimal.NewFromInt(200),
		AlertThreshold:  domain.DefaultAlertThreshold,
		Active:          true,
	})

	_, err := service.Update(1, &domain.BudgetCategoryUpdate{
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(200),
		AlertThreshold:  domain.DefaultAlertThreshold,
		Active:          true,
	})
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("shrinking below consumed amount must fail, got: %v", err)
	}

	// Shrinking to exactly the consumed amount is allowed
	updated, err := service.Update(1, &domain.BudgetCategoryUpdate{
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(300),
		AlertThreshold:  domain.DefaultAlertThreshold,
		Active:          true,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.RemainingAmount.IsZero() {
		t.Errorf("remaining = %s, want 0 after shrink to used", updated.RemainingAmount)
	}
}

func TestBudgetCategoryServiceDelete(t *testing.T) {
	service, budgetRepo, categoryRepo := newCategoryService()
	budgetRepo.AddBudget(activeBudget(1, "1000.00"))
	categoryRepo.AddCategory(&domain.BudgetCategory{
		ID:              1,
		BudgetID:        1,
		Name:            "Equipement",
		Type:            domain.CategoryTypeEquipment,
		AllocatedAmount: decimal.NewFromInt(500),
		RemainingAmount: decimal.NewFromInt(500),
		AlertThreshold:  domain.DefaultAlertThreshold,
		Active:          true,
	})

	categoryRepo.SetValidatedTransactionCount(1, 2)
	if err := service.Delete(1); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("expected ErrCategoryInUse, got: %v", err)
	}

	categoryRepo.SetValidatedTransactionCount(1, 0)
	if err := service.Delete(1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := service.Get(1); !errors.Is(err, domain.ErrBudgetCategoryNotFound) {
		t.Errorf("category should be gone, got: %v", err)
	}
}
