package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// validationRetries bounds how often a validation or cancellation is retried
// after losing a concurrent conditional update.
const validationRetries = 3

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	budgetRepo      domain.BudgetRepository
	categoryRepo    domain.BudgetCategoryRepository
	txCategoryRepo  domain.TransactionCategoryRepository
	notifier        Notifier
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo domain.TransactionRepository,
	budgetRepo domain.BudgetRepository,
	categoryRepo domain.BudgetCategoryRepository,
	txCategoryRepo domain.TransactionCategoryRepository,
	notifier Notifier,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		budgetRepo:      budgetRepo,
		categoryRepo:    categoryRepo,
		txCategoryRepo:  txCategoryRepo,
		notifier:        notifier,
	}
}

// CreateTransactionData contains the input for recording a transaction
type CreateTransactionData struct {
	Amount           decimal.Decimal
	Type             domain.TransactionType
	Description      string
	TransactionDate  time.Time
	Notes            *string
	VATRate          *decimal.Decimal
	Recurrence       *domain.RecurrenceFrequency
	BudgetID         *int32
	BudgetCategoryID *int32
	CategoryID       int32
	UserID           string
}

// Create records a new transaction in the EN_ATTENTE state. No balance moves
// until a validator accepts it.
func (s *TransactionService) Create(data CreateTransactionData) (*domain.Transaction, error) {
	if err := s.validateTransactionData(data.Amount, data.Type, data.Description, data.Notes, data.BudgetID, data.BudgetCategoryID, data.CategoryID); err != nil {
		return nil, err
	}

	transaction := &domain.Transaction{
		Reference:        generateReference(data.TransactionDate),
		Amount:           domain.RoundAmount(data.Amount),
		Type:             data.Type,
		Description:      data.Description,
		TransactionDate:  data.TransactionDate.UTC().Truncate(24 * time.Hour),
		Status:           domain.TransactionStatusPending,
		UserID:           data.UserID,
		Notes:            data.Notes,
		Recurrence:       data.Recurrence,
		BudgetID:         data.BudgetID,
		BudgetCategoryID: data.BudgetCategoryID,
		CategoryID:       data.CategoryID,
	}

	if data.VATRate != nil {
		if data.VATRate.IsNegative() || data.VATRate.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return nil, domain.ErrInvalidInput
		}
		net, vat := domain.SplitGrossVAT(transaction.Amount, *data.VATRate)
		transaction.VATRate = data.VATRate
		transaction.NetAmount = &net
		transaction.VATAmount = &vat
	}

	if data.Recurrence != nil {
		next := nextOccurrence(transaction.TransactionDate, *data.Recurrence)
		transaction.NextOccurrence = &next
	}

	return s.transactionRepo.Create(transaction)
}

// Get retrieves a transaction by ID
func (s *TransactionService) Get(id int32) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(id)
}

// GetByReference retrieves a transaction by its unique reference
func (s *TransactionService) GetByReference(reference string) (*domain.Transaction, error) {
	return s.transactionRepo.GetByReference(reference)
}

// List retrieves transactions matching the filters with pagination
func (s *TransactionService) List(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	return s.transactionRepo.List(filters)
}

// GetPending retrieves all transactions awaiting validation
func (s *TransactionService) GetPending() ([]*domain.Transaction, error) {
	return s.transactionRepo.GetPending()
}

// Update edits a transaction. Only mutable states accept edits; a validated
// transaction must be cancelled instead.
func (s *TransactionService) Update(id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !transaction.IsMutable() {
		return nil, domain.ErrInvalidState
	}
	if err := s.validateTransactionData(data.Amount, data.Type, data.Description, data.Notes, data.BudgetID, data.BudgetCategoryID, data.CategoryID); err != nil {
		return nil, err
	}

	data.Amount = domain.RoundAmount(data.Amount)
	if data.VATRate != nil {
		net, vat := domain.SplitGrossVAT(data.Amount, *data.VATRate)
		data.NetAmount = &net
		data.VATAmount = &vat
	} else {
		data.NetAmount = nil
		data.VATAmount = nil
	}

	return s.transactionRepo.Update(id, data)
}

// Delete removes a transaction. Validated transactions are immutable.
func (s *TransactionService) Delete(id int32) error {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return err
	}
	if !transaction.IsMutable() {
		return domain.ErrInvalidState
	}
	return s.transactionRepo.Delete(id)
}

// Validate moves a pending transaction to VALIDEE and applies its amount to
// the referenced budget and category in one unit of work. Losing a
// concurrent conditional update is retried; running out of funds is not.
func (s *TransactionService) Validate(id int32, validatorID string) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if transaction.Status != domain.TransactionStatusPending {
		return nil, domain.ErrInvalidState
	}

	// Pre-flight checks give the caller a precise error before the
	// conditional updates run. The updates themselves remain the authority.
	if transaction.BudgetID != nil {
		budget, err := s.budgetRepo.GetByID(*transaction.BudgetID)
		if err != nil {
			return nil, err
		}
		if !budget.IsActive() {
			return nil, domain.ErrBudgetNotActive
		}
	}
	if transaction.BudgetCategoryID != nil {
		category, err := s.categoryRepo.GetByID(*transaction.BudgetCategoryID)
		if err != nil {
			return nil, err
		}
		if transaction.BudgetID != nil && category.BudgetID != *transaction.BudgetID {
			return nil, domain.ErrCategoryBudgetMismatch
		}
	}

	effect := transaction.Effect()
	var validated *domain.Transaction
	for attempt := 0; ; attempt++ {
		validated, err = s.transactionRepo.Validate(id, validatorID, effect)
		if !errors.Is(err, domain.ErrConflict) || attempt >= validationRetries {
			break
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.TransactionValidated(validated)
	}
	return validated, nil
}

// Reject moves a pending transaction to the terminal REJETEE state. Balances
// are never touched.
func (s *TransactionService) Reject(id int32, validatorID, motif string) (*domain.Transaction, error) {
	return s.transactionRepo.Reject(id, validatorID, motif)
}

// Cancel reverses a validated transaction: the terminal ANNULEE state and
// the mirror balance deltas commit together.
func (s *TransactionService) Cancel(id int32, motif string) (*domain.Transaction, error) {
	transaction, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if transaction.Status != domain.TransactionStatusValidated {
		return nil, domain.ErrInvalidState
	}

	effect := transaction.Effect().Reversed()
	var cancelled *domain.Transaction
	for attempt := 0; ; attempt++ {
		cancelled, err = s.transactionRepo.Cancel(id, motif, effect)
		if !errors.Is(err, domain.ErrConflict) || attempt >= validationRetries {
			break
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.TransactionCancelled(cancelled)
	}
	return cancelled, nil
}

// GetSummary aggregates validated transactions over a date range. Solde is
// recettes minus dépenses; pending, rejected and cancelled transactions
// never count.
func (s *TransactionService) GetSummary(start, end time.Time) (*domain.PeriodSummary, error) {
	if end.Before(start) {
		return nil, domain.ErrDateRange
	}

	income, err := s.transactionRepo.SumByTypeAndDateRange(start, end, domain.TransactionTypeIncome, domain.TransactionStatusValidated)
	if err != nil {
		return nil, err
	}
	expenses, err := s.transactionRepo.SumByTypeAndDateRange(start, end, domain.TransactionTypeExpense, domain.TransactionStatusValidated)
	if err != nil {
		return nil, err
	}

	return &domain.PeriodSummary{
		StartDate: start,
		EndDate:   end,
		Income:    income,
		Expenses:  expenses,
		Balance:   income.Sub(expenses),
	}, nil
}

func (s *TransactionService) validateTransactionData(
	amount decimal.Decimal,
	txType domain.TransactionType,
	description string,
	notes *string,
	budgetID, budgetCategoryID *int32,
	categoryID int32,
) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
		return domain.ErrInvalidType
	}
	if err := validateName(description); err != nil {
		return err
	}
	if notes != nil && len(*notes) > domain.MaxNotesLength {
		return domain.ErrDescriptionTooLong
	}

	if _, err := s.txCategoryRepo.GetByID(categoryID); err != nil {
		return err
	}
	if budgetID != nil {
		if _, err := s.budgetRepo.GetByID(*budgetID); err != nil {
			return err
		}
	}
	if budgetCategoryID != nil {
		category, err := s.categoryRepo.GetByID(*budgetCategoryID)
		if err != nil {
			return err
		}
		if budgetID != nil && category.BudgetID != *budgetID {
			return domain.ErrCategoryBudgetMismatch
		}
	}
	return nil
}

// generateReference builds a unique, human-sortable transaction reference,
// e.g. TRX-20240115-A1B2C3D4.
func generateReference(date time.Time) string {
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return fmt.Sprintf("TRX-%s-%s", date.UTC().Format("20060102"), suffix)
}

// nextOccurrence returns the date the next recurring instance falls due.
func nextOccurrence(from time.Time, frequency domain.RecurrenceFrequency) time.Time {
	switch frequency {
	case domain.RecurrenceWeekly:
		return from.AddDate(0, 0, 7)
	case domain.RecurrenceMonthly:
		return from.AddDate(0, 1, 0)
	case domain.RecurrenceQuarterly:
		return from.AddDate(0, 3, 0)
	case domain.RecurrenceAnnual:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}
