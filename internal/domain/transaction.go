package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "RECETTE"
	TransactionTypeExpense TransactionType = "DEPENSE"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "EN_ATTENTE"
	TransactionStatusValidated TransactionStatus = "VALIDEE"
	TransactionStatusRejected  TransactionStatus = "REJETEE"
	TransactionStatusCancelled TransactionStatus = "ANNULEE"
)

type RecurrenceFrequency string

const (
	RecurrenceWeekly    RecurrenceFrequency = "HEBDOMADAIRE"
	RecurrenceMonthly   RecurrenceFrequency = "MENSUELLE"
	RecurrenceQuarterly RecurrenceFrequency = "TRIMESTRIELLE"
	RecurrenceAnnual    RecurrenceFrequency = "ANNUELLE"
)

// Transaction is a recorded recette or dépense. Its amount touches budget
// and category balances exactly once over its lifetime: applied when it is
// validated, reversed if it is later cancelled.
type Transaction struct {
	ID               int32                `json:"id"`
	Reference        string               `json:"reference"`
	Amount           decimal.Decimal      `json:"montant"`
	Type             TransactionType      `json:"type"`
	Description      string               `json:"description"`
	TransactionDate  time.Time            `json:"dateTransaction"`
	PostingDate      *time.Time           `json:"dateComptabilisation,omitempty"`
	Status           TransactionStatus    `json:"statut"`
	UserID           string               `json:"userId"`
	ValidatorID      *string              `json:"validateurId,omitempty"`
	ValidatedAt      *time.Time           `json:"dateValidation,omitempty"`
	Notes            *string              `json:"notes,omitempty"`
	VATRate          *decimal.Decimal     `json:"tauxTVA,omitempty"`
	NetAmount        *decimal.Decimal     `json:"montantHT,omitempty"`
	VATAmount        *decimal.Decimal     `json:"montantTVA,omitempty"`
	Recurrence       *RecurrenceFrequency `json:"frequenceRecurrence,omitempty"`
	NextOccurrence   *time.Time           `json:"prochaineOccurrence,omitempty"`
	BudgetID         *int32               `json:"budgetId,omitempty"`
	BudgetCategoryID *int32               `json:"categorieBudgetId,omitempty"`
	CategoryID       int32                `json:"categorieTransactionId"`
	ReceiptKey       *string              `json:"-"`
	CreatedAt        time.Time            `json:"createdAt"`
	UpdatedAt        time.Time            `json:"updatedAt"`
}

// IsMutable reports whether the transaction may still be edited or deleted.
// A validated transaction is immutable and can only be cancelled.
func (t *Transaction) IsMutable() bool {
	return t.Status != TransactionStatusValidated
}

// MarkValidated moves EN_ATTENTE to VALIDEE and stamps the validation
// metadata. Only the pending state can be validated.
func (t *Transaction) MarkValidated(validatorID string, now time.Time) error {
	if t.Status != TransactionStatusPending {
		return ErrInvalidState
	}
	t.Status = TransactionStatusValidated
	t.ValidatorID = &validatorID
	t.ValidatedAt = &now
	posting := now.UTC().Truncate(24 * time.Hour)
	t.PostingDate = &posting
	return nil
}

// MarkRejected moves EN_ATTENTE to the terminal REJETEE state. No balance is
// ever touched by a rejection.
func (t *Transaction) MarkRejected(validatorID, motif string) error {
	if t.Status != TransactionStatusPending {
		return ErrInvalidState
	}
	t.Status = TransactionStatusRejected
	t.ValidatorID = &validatorID
	t.appendNote(motif)
	return nil
}

// MarkCancelled moves VALIDEE to the terminal ANNULEE state. The caller is
// responsible for reversing the applied balances in the same unit of work.
func (t *Transaction) MarkCancelled(motif string) error {
	if t.Status != TransactionStatusValidated {
		return ErrInvalidState
	}
	t.Status = TransactionStatusCancelled
	t.appendNote(motif)
	return nil
}

func (t *Transaction) appendNote(motif string) {
	if motif == "" {
		return
	}
	if t.Notes == nil || *t.Notes == "" {
		t.Notes = &motif
		return
	}
	combined := *t.Notes + "\n" + motif
	t.Notes = &combined
}

// LedgerEffect describes the balance deltas a transaction carries. Positive
// deltas consume remaining balance, negative deltas release used balance.
type LedgerEffect struct {
	BudgetID      *int32
	BudgetDelta   decimal.Decimal
	CategoryID    *int32
	CategoryDelta decimal.Decimal
}

// IsZero reports whether the effect touches no balance at all.
func (e LedgerEffect) IsZero() bool {
	return e.BudgetID == nil && e.CategoryID == nil
}

// Reversed returns the mirror effect used at cancellation.
func (e LedgerEffect) Reversed() LedgerEffect {
	return LedgerEffect{
		BudgetID:      e.BudgetID,
		BudgetDelta:   e.BudgetDelta.Neg(),
		CategoryID:    e.CategoryID,
		CategoryDelta: e.CategoryDelta.Neg(),
	}
}

// Effect returns the deltas validating this transaction applies. A dépense
// consumes from both the budget and the category; a recette leaves the
// budget untouched (budgets only track expenditure) and releases spend
// previously tracked against the category.
func (t *Transaction) Effect() LedgerEffect {
	effect := LedgerEffect{}
	switch t.Type {
	case TransactionTypeExpense:
		if t.BudgetID != nil {
			effect.BudgetID = t.BudgetID
			effect.BudgetDelta = t.Amount
		}
		if t.BudgetCategoryID != nil {
			effect.CategoryID = t.BudgetCategoryID
			effect.CategoryDelta = t.Amount
		}
	case TransactionTypeIncome:
		if t.BudgetCategoryID != nil {
			effect.CategoryID = t.BudgetCategoryID
			effect.CategoryDelta = t.Amount.Neg()
		}
	}
	return effect
}

// UpdateTransactionData carries the fields a pending transaction may change.
type UpdateTransactionData struct {
	Amount           decimal.Decimal
	Type             TransactionType
	Description      string
	TransactionDate  time.Time
	Notes            *string
	VATRate          *decimal.Decimal
	NetAmount        *decimal.Decimal
	VATAmount        *decimal.Decimal
	BudgetID         *int32
	BudgetCategoryID *int32
	CategoryID       int32
}

// TransactionFilters narrows transaction listings.
type TransactionFilters struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Type       *TransactionType
	Status     *TransactionStatus
	BudgetID   *int32
	CategoryID *int32
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// PeriodSummary aggregates validated transactions over a date range.
// Solde is recettes minus dépenses.
type PeriodSummary struct {
	StartDate time.Time       `json:"dateDebut"`
	EndDate   time.Time       `json:"dateFin"`
	Income    decimal.Decimal `json:"totalRecettes"`
	Expenses  decimal.Decimal `json:"totalDepenses"`
	Balance   decimal.Decimal `json:"solde"`
}

type TransactionRepository interface {
	Create(transaction *Transaction) (*Transaction, error)
	GetByID(id int32) (*Transaction, error)
	GetByReference(reference string) (*Transaction, error)
	List(filters *TransactionFilters) (*PaginatedTransactions, error)
	GetPending() ([]*Transaction, error)
	Update(id int32, data *UpdateTransactionData) (*Transaction, error)
	Delete(id int32) error
	SetReceiptKey(id int32, key *string) (*Transaction, error)
	SumByTypeAndDateRange(start, end time.Time, txType TransactionType, status TransactionStatus) (decimal.Decimal, error)
	CountByTransactionCategory(categoryID int32) (int64, error)

	// Validate, Reject and Cancel are the ledger's unit-of-work operations:
	// the status transition and the balance deltas of the effect commit
	// together or not at all. The status transition itself is conditional on
	// the expected prior state, so concurrent validators of the same
	// transaction cannot both win.
	Validate(id int32, validatorID string, effect LedgerEffect) (*Transaction, error)
	Reject(id int32, validatorID, motif string) (*Transaction, error)
	Cancel(id int32, motif string, effect LedgerEffect) (*Transaction, error)
}
