package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func newTestCategory(allocated string) *BudgetCategory {
	amount := decimal.RequireFromString(allocated)
	return &BudgetCategory{
		ID:              1,
		BudgetID:        1,
		Name:            "Equipement",
		Type:            CategoryTypeEquipment,
		AllocatedAmount: amount,
		UsedAmount:      decimal.Zero,
		RemainingAmount: amount,
		AlertThreshold:  DefaultAlertThreshold,
		Active:          true,
	}
}

func TestCategoryApplyRelease(t *testing.T) {
	c := newTestCategory("500.00")

	if err := c.ApplyAmount(decimal.NewFromInt(200)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !c.AllocatedAmount.Equal(c.UsedAmount.Add(c.RemainingAmount)) {
		t.Fatalf("invariant broken: %s != %s + %s", c.AllocatedAmount, c.UsedAmount, c.RemainingAmount)
	}

	if err := c.ApplyAmount(decimal.NewFromInt(400)); err != ErrInsufficientFunds {
		t.Errorf("expected ErrInsufficientFunds, got: %v", err)
	}

	if err := c.ReleaseAmount(decimal.NewFromInt(200)); err != nil {
		t.Fatalf("release: %v", err)
	}
	if !c.UsedAmount.IsZero() {
		t.Errorf("used = %s, want 0", c.UsedAmount)
	}
	if err := c.ReleaseAmount(decimal.NewFromInt(1)); err != ErrOverRelease {
		t.Errorf("expected ErrOverRelease, got: %v", err)
	}
}

func TestCategoryIsExhausted(t *testing.T) {
	c := newTestCategory("100.00")
	if c.IsExhausted() {
		t.Error("fresh category should not be exhausted")
	}

	if err := c.ApplyAmount(decimal.NewFromInt(100)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !c.IsExhausted() {
		t.Error("fully consumed category should be exhausted")
	}
}

func TestCategoryCanAccept(t *testing.T) {
	c := newTestCategory("100.00")

	if !c.CanAccept(decimal.NewFromInt(100)) {
		t.Error("category should accept exactly its remaining amount")
	}
	if c.CanAccept(decimal.RequireFromString("100.01")) {
		t.Error("category should refuse more than its remaining amount")
	}
}

func TestCategoryAlertThreshold(t *testing.T) {
	c := newTestCategory("200.00")
	if err := c.ApplyAmount(decimal.NewFromInt(170)); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !c.IsAlertThresholdExceeded() {
		t.Errorf("85%% used should exceed the 0.80 threshold, percentage = %s", c.PercentageUsed())
	}
}

func TestCategoryTypeValid(t *testing.T) {
	valid := []BudgetCategoryType{
		CategoryTypeEquipment, CategoryTypeTravel, CategoryTypeTraining,
		CategoryTypeMedical, CategoryTypeAdministrative, CategoryTypeOther,
	}
	for _, ct := range valid {
		if !ct.Valid() {
			t.Errorf("type %s should be valid", ct)
		}
	}
	if BudgetCategoryType("LOISIRS").Valid() {
		t.Error("unknown type should not be valid")
	}
}
