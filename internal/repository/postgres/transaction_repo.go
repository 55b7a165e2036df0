package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

const transactionColumns = `id, reference, montant, type, description, date_transaction,
	date_comptabilisation, statut, user_id, validateur_id, date_validation, notes,
	taux_tva, montant_ht, montant_tva, frequence_recurrence, prochaine_occurrence,
	budget_id, categorie_budget_id, categorie_transaction_id, justificatif_key,
	created_at, updated_at`

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount pgtype.Numeric
	var transactionDate, postingDate, nextOccurrence pgtype.Date
	var validatorID, notes, recurrence, receiptKey pgtype.Text
	var validatedAt pgtype.Timestamptz
	var vatRate, netAmount, vatAmount pgtype.Numeric
	var budgetID, budgetCategoryID pgtype.Int4
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&t.ID, &t.Reference, &amount, &t.Type, &t.Description,
		&transactionDate, &postingDate, &t.Status, &t.UserID, &validatorID,
		&validatedAt, &notes, &vatRate, &netAmount, &vatAmount, &recurrence,
		&nextOccurrence, &budgetID, &budgetCategoryID, &t.CategoryID,
		&receiptKey, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	t.Amount = pgNumericToDecimal(amount)
	t.TransactionDate = pgDateToTime(transactionDate)
	t.PostingDate = pgDateToTimePtr(postingDate)
	t.ValidatorID = pgTextToStringPtr(validatorID)
	t.ValidatedAt = pgTimestamptzToTimePtr(validatedAt)
	t.Notes = pgTextToStringPtr(notes)
	t.VATRate = pgNumericToDecimalPtr(vatRate)
	t.NetAmount = pgNumericToDecimalPtr(netAmount)
	t.VATAmount = pgNumericToDecimalPtr(vatAmount)
	if recurrence.Valid {
		freq := domain.RecurrenceFrequency(recurrence.String)
		t.Recurrence = &freq
	}
	t.NextOccurrence = pgDateToTimePtr(nextOccurrence)
	t.BudgetID = pgInt4ToInt32Ptr(budgetID)
	t.BudgetCategoryID = pgInt4ToInt32Ptr(budgetCategoryID)
	t.ReceiptKey = pgTextToStringPtr(receiptKey)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return &t, nil
}

// Create records a new transaction
func (r *TransactionRepository) Create(transaction *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	vatRate, err := decimalPtrToPgNumeric(transaction.VATRate)
	if err != nil {
		return nil, fmt.Errorf("invalid VAT rate: %w", err)
	}
	netAmount, err := decimalPtrToPgNumeric(transaction.NetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid net amount: %w", err)
	}
	vatAmount, err := decimalPtrToPgNumeric(transaction.VATAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid VAT amount: %w", err)
	}

	var recurrence pgtype.Text
	if transaction.Recurrence != nil {
		recurrence = pgtype.Text{String: string(*transaction.Recurrence), Valid: true}
	}

	created, err := scanTransaction(r.pool.QueryRow(ctx, `
		INSERT INTO transactions (reference, montant, type, description, date_transaction,
			statut, user_id, notes, taux_tva, montant_ht, montant_tva,
			frequence_recurrence, prochaine_occurrence, budget_id, categorie_budget_id,
			categorie_transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+transactionColumns,
		transaction.Reference, amount, string(transaction.Type), transaction.Description,
		timeToPgDate(transaction.TransactionDate), string(transaction.Status),
		transaction.UserID, stringPtrToPgText(transaction.Notes), vatRate, netAmount,
		vatAmount, recurrence, timePtrToPgDate(transaction.NextOccurrence),
		int32PtrToPgInt4(transaction.BudgetID), int32PtrToPgInt4(transaction.BudgetCategoryID),
		transaction.CategoryID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateReference
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(id int32) (*domain.Transaction, error) {
	ctx := context.Background()
	transaction, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// GetByReference retrieves a transaction by its unique reference
func (r *TransactionRepository) GetByReference(reference string) (*domain.Transaction, error) {
	ctx := context.Background()
	transaction, err := scanTransaction(r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE reference = $1`, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// List retrieves transactions matching the filters with pagination
func (r *TransactionRepository) List(filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()
	where := ""
	var args []any

	appendCondition := func(condition string, value any) {
		args = append(args, value)
		if where == "" {
			where = fmt.Sprintf(" WHERE %s $%d", condition, len(args))
		} else {
			where += fmt.Sprintf(" AND %s $%d", condition, len(args))
		}
	}

	if filters != nil {
		if filters.StartDate != nil {
			appendCondition("date_transaction >=", timeToPgDate(*filters.StartDate))
		}
		if filters.EndDate != nil {
			appendCondition("date_transaction <=", timeToPgDate(*filters.EndDate))
		}
		if filters.Type != nil {
			appendCondition("type =", string(*filters.Type))
		}
		if filters.Status != nil {
			appendCondition("statut =", string(*filters.Status))
		}
		if filters.BudgetID != nil {
			appendCondition("budget_id =", *filters.BudgetID)
		}
		if filters.CategoryID != nil {
			appendCondition("categorie_transaction_id =", *filters.CategoryID)
		}
	}

	var totalItems int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&totalItems); err != nil {
		return nil, err
	}

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM transactions%s ORDER BY date_transaction DESC, id DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// GetPending retrieves all transactions awaiting validation, oldest first
func (r *TransactionRepository) GetPending() ([]*domain.Transaction, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE statut = 'EN_ATTENTE'
		ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

// Update updates a transaction's editable fields
func (r *TransactionRepository) Update(id int32, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	ctx := context.Background()
	amount, err := decimalToPgNumeric(data.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	vatRate, err := decimalPtrToPgNumeric(data.VATRate)
	if err != nil {
		return nil, fmt.Errorf("invalid VAT rate: %w", err)
	}
	netAmount, err := decimalPtrToPgNumeric(data.NetAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid net amount: %w", err)
	}
	vatAmount, err := decimalPtrToPgNumeric(data.VATAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid VAT amount: %w", err)
	}

	transaction, err := scanTransaction(r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET montant = $2, type = $3, description = $4, date_transaction = $5,
		    notes = $6, taux_tva = $7, montant_ht = $8, montant_tva = $9,
		    budget_id = $10, categorie_budget_id = $11, categorie_transaction_id = $12,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+transactionColumns,
		id, amount, string(data.Type), data.Description, timeToPgDate(data.TransactionDate),
		stringPtrToPgText(data.Notes), vatRate, netAmount, vatAmount,
		int32PtrToPgInt4(data.BudgetID), int32PtrToPgInt4(data.BudgetCategoryID),
		data.CategoryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// Delete removes a transaction
func (r *TransactionRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// SetReceiptKey attaches or clears the stored receipt object key
func (r *TransactionRepository) SetReceiptKey(id int32, key *string) (*domain.Transaction, error) {
	ctx := context.Background()
	transaction, err := scanTransaction(r.pool.QueryRow(ctx, `
		UPDATE transactions SET justificatif_key = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+transactionColumns, id, stringPtrToPgText(key)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// SumByTypeAndDateRange sums amounts by type and status over a date range
func (r *TransactionRepository) SumByTypeAndDateRange(start, end time.Time, txType domain.TransactionType, status domain.TransactionStatus) (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(montant), 0) FROM transactions
		WHERE type = $1 AND statut = $2
		  AND date_transaction >= $3 AND date_transaction <= $4`,
		string(txType), string(status), timeToPgDate(start), timeToPgDate(end)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// CountByTransactionCategory counts transactions referencing a
// classification category
func (r *TransactionRepository) CountByTransactionCategory(categoryID int32) (int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE categorie_transaction_id = $1`,
		categoryID).Scan(&count)
	return count, err
}

// Validate flips EN_ATTENTE to VALIDEE and applies the ledger effect in one
// transaction. The conditional status flip guarantees only one concurrent
// validator wins; the conditional balance updates guarantee the pool never
// goes negative. Either everything commits or nothing does.
func (r *TransactionRepository) Validate(id int32, validatorID string, effect domain.LedgerEffect) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	validated, err := scanTransaction(tx.QueryRow(ctx, `
		UPDATE transactions
		SET statut = 'VALIDEE', validateur_id = $2, date_validation = now(),
		    date_comptabilisation = CURRENT_DATE, updated_at = now()
		WHERE id = $1 AND statut = 'EN_ATTENTE'
		RETURNING `+transactionColumns, id, validatorID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.diagnoseTransition(ctx, id)
		}
		return nil, err
	}

	if err := applyLedgerEffect(ctx, tx, effect); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return validated, nil
}

// Reject flips EN_ATTENTE to REJETEE, appending the motif to the notes. No
// balance is touched.
func (r *TransactionRepository) Reject(id int32, validatorID, motif string) (*domain.Transaction, error) {
	ctx := context.Background()
	rejected, err := scanTransaction(r.pool.QueryRow(ctx, `
		UPDATE transactions
		SET statut = 'REJETEE', validateur_id = $2,
		    notes = CASE
		        WHEN $3 = '' THEN notes
		        WHEN notes IS NULL OR notes = '' THEN $3
		        ELSE notes || E'\n' || $3
		    END,
		    updated_at = now()
		WHERE id = $1 AND statut = 'EN_ATTENTE'
		RETURNING `+transactionColumns, id, validatorID, motif))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.diagnoseTransition(ctx, id)
		}
		return nil, err
	}
	return rejected, nil
}

// Cancel flips VALIDEE to ANNULEE and applies the reversal effect in one
// transaction
func (r *TransactionRepository) Cancel(id int32, motif string, effect domain.LedgerEffect) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cancelled, err := scanTransaction(tx.QueryRow(ctx, `
		UPDATE transactions
		SET statut = 'ANNULEE',
		    notes = CASE
		        WHEN $2 = '' THEN notes
		        WHEN notes IS NULL OR notes = '' THEN $2
		        ELSE notes || E'\n' || $2
		    END,
		    updated_at = now()
		WHERE id = $1 AND statut = 'VALIDEE'
		RETURNING `+transactionColumns, id, motif))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.diagnoseTransition(ctx, id)
		}
		return nil, err
	}

	if err := applyLedgerEffect(ctx, tx, effect); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return cancelled, nil
}

// diagnoseTransition distinguishes a missing transaction from one in the
// wrong state after a conditional transition matched no row
func (r *TransactionRepository) diagnoseTransition(ctx context.Context, id int32) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM transactions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return domain.ErrTransactionNotFound
	}
	return domain.ErrInvalidState
}
