package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func newPendingTransaction(txType TransactionType) *Transaction {
	return &Transaction{
		ID:              1,
		Reference:       "TRX-20240115-A1B2C3D4",
		Amount:          decimal.NewFromInt(300),
		Type:            txType,
		Description:     "Achat maillots",
		TransactionDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:          TransactionStatusPending,
		UserID:          "auth0|tresorier",
		CategoryID:      1,
	}
}

func TestTransactionMarkValidated(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeExpense)
	now := time.Date(2024, 1, 16, 14, 30, 0, 0, time.UTC)

	if err := tx.MarkValidated("auth0|president", now); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if tx.Status != TransactionStatusValidated {
		t.Errorf("status = %s, want VALIDEE", tx.Status)
	}
	if tx.ValidatorID == nil || *tx.ValidatorID != "auth0|president" {
		t.Errorf("validator not recorded")
	}
	if tx.ValidatedAt == nil || !tx.ValidatedAt.Equal(now) {
		t.Errorf("validation timestamp not recorded")
	}
	wantPosting := time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC)
	if tx.PostingDate == nil || !tx.PostingDate.Equal(wantPosting) {
		t.Errorf("posting date = %v, want %s", tx.PostingDate, wantPosting)
	}
}

func TestTransactionTerminalStates(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name   string
		status TransactionStatus
	}{
		{"validated cannot be re-validated", TransactionStatusValidated},
		{"rejected is terminal", TransactionStatusRejected},
		{"cancelled is terminal", TransactionStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newPendingTransaction(TransactionTypeExpense)
			tx.Status = tt.status

			if err := tx.MarkValidated("v", now); err != ErrInvalidState {
				t.Errorf("MarkValidated: expected ErrInvalidState, got: %v", err)
			}
			if err := tx.MarkRejected("v", "doublon"); err != ErrInvalidState {
				t.Errorf("MarkRejected: expected ErrInvalidState, got: %v", err)
			}
		})
	}
}

func TestTransactionMarkCancelled(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeExpense)

	// Pending cannot be cancelled, only rejected
	if err := tx.MarkCancelled("erreur"); err != ErrInvalidState {
		t.Fatalf("cancel pending: expected ErrInvalidState, got: %v", err)
	}

	if err := tx.MarkValidated("v", time.Now().UTC()); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := tx.MarkCancelled("erreur de saisie"); err != nil {
		t.Fatalf("cancel validated: %v", err)
	}
	if tx.Status != TransactionStatusCancelled {
		t.Errorf("status = %s, want ANNULEE", tx.Status)
	}
	if tx.Notes == nil || *tx.Notes != "erreur de saisie" {
		t.Errorf("cancel motif not appended to notes")
	}

	// ANNULEE is terminal
	if err := tx.MarkCancelled("encore"); err != ErrInvalidState {
		t.Errorf("double cancel: expected ErrInvalidState, got: %v", err)
	}
}

func TestTransactionMarkRejected_AppendsMotif(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeExpense)
	existing := "note initiale"
	tx.Notes = &existing

	if err := tx.MarkRejected("v", "justificatif manquant"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if tx.Status != TransactionStatusRejected {
		t.Errorf("status = %s, want REJETEE", tx.Status)
	}
	if *tx.Notes != "note initiale\njustificatif manquant" {
		t.Errorf("notes = %q", *tx.Notes)
	}
}

func TestTransactionIsMutable(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeExpense)
	if !tx.IsMutable() {
		t.Error("pending transaction should be mutable")
	}

	tx.Status = TransactionStatusValidated
	if tx.IsMutable() {
		t.Error("validated transaction must be immutable")
	}

	tx.Status = TransactionStatusRejected
	if !tx.IsMutable() {
		t.Error("rejected transaction stays editable")
	}
}

func TestTransactionEffect_Expense(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeExpense)
	budgetID := int32(10)
	categoryID := int32(20)
	tx.BudgetID = &budgetID
	tx.BudgetCategoryID = &categoryID

	effect := tx.Effect()
	if effect.BudgetID == nil || *effect.BudgetID != budgetID {
		t.Fatal("expense effect should target the budget")
	}
	if !effect.BudgetDelta.Equal(tx.Amount) {
		t.Errorf("budget delta = %s, want %s", effect.BudgetDelta, tx.Amount)
	}
	if effect.CategoryID == nil || !effect.CategoryDelta.Equal(tx.Amount) {
		t.Errorf("category delta = %s, want %s", effect.CategoryDelta, tx.Amount)
	}
}

func TestTransactionEffect_Income(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeIncome)
	budgetID := int32(10)
	categoryID := int32(20)
	tx.BudgetID = &budgetID
	tx.BudgetCategoryID = &categoryID

	effect := tx.Effect()
	// Budgets only track expenditure; a recette never touches the budget.
	if effect.BudgetID != nil {
		t.Error("income effect must leave the budget untouched")
	}
	if effect.CategoryID == nil || !effect.CategoryDelta.Equal(tx.Amount.Neg()) {
		t.Errorf("income should release on the category, delta = %s", effect.CategoryDelta)
	}
}

func TestTransactionEffect_NoReferences(t *testing.T) {
	tx := newPendingTransaction(TransactionTypeExpense)
	if !tx.Effect().IsZero() {
		t.Error("transaction without budget or category should have a zero effect")
	}
}

func TestLedgerEffectReversed(t *testing.T) {
	budgetID := int32(10)
	categoryID := int32(20)
	effect := LedgerEffect{
		BudgetID:      &budgetID,
		BudgetDelta:   decimal.NewFromInt(300),
		CategoryID:    &categoryID,
		CategoryDelta: decimal.NewFromInt(300),
	}

	reversed := effect.Reversed()
	if !reversed.BudgetDelta.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("reversed budget delta = %s, want -300", reversed.BudgetDelta)
	}
	if !reversed.CategoryDelta.Equal(decimal.NewFromInt(-300)) {
		t.Errorf("reversed category delta = %s, want -300", reversed.CategoryDelta)
	}
	if !reversed.Reversed().BudgetDelta.Equal(effect.BudgetDelta) {
		t.Error("double reversal should restore the original effect")
	}
}

func TestTransactionStatusConstants(t *testing.T) {
	// Values must match the CHECK constraint on transactions.statut
	tests := []struct {
		status   TransactionStatus
		expected string
	}{
		{TransactionStatusPending, "EN_ATTENTE"},
		{TransactionStatusValidated, "VALIDEE"},
		{TransactionStatusRejected, "REJETEE"},
		{TransactionStatusCancelled, "ANNULEE"},
	}
	for _, tt := range tests {
		if string(tt.status) != tt.expected {
			t.Errorf("status %s, want %s", tt.status, tt.expected)
		}
	}
}
