package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

const categoryColumns = `id, budget_id, name, type, priorite, montant_alloue, montant_utilise,
	montant_restant, seuil_alerte, actif, created_at, updated_at`

// BudgetCategoryRepository implements domain.BudgetCategoryRepository using
// PostgreSQL
type BudgetCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetCategoryRepository creates a new BudgetCategoryRepository
func NewBudgetCategoryRepository(pool *pgxpool.Pool) *BudgetCategoryRepository {
	return &BudgetCategoryRepository{pool: pool}
}

func scanCategory(row pgx.Row) (*domain.BudgetCategory, error) {
	var c domain.BudgetCategory
	var allocated, used, remaining, threshold pgtype.Numeric
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&c.ID, &c.BudgetID, &c.Name, &c.Type, &c.Priority,
		&allocated, &used, &remaining, &threshold, &c.Active, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.AllocatedAmount = pgNumericToDecimal(allocated)
	c.UsedAmount = pgNumericToDecimal(used)
	c.RemainingAmount = pgNumericToDecimal(remaining)
	c.AlertThreshold = pgNumericToDecimal(threshold)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

// Create creates a new budget category
func (r *BudgetCategoryRepository) Create(category *domain.BudgetCategory) (*domain.BudgetCategory, error) {
	ctx := context.Background()
	allocated, err := decimalToPgNumeric(category.AllocatedAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid allocated amount: %w", err)
	}
	threshold, err := decimalToPgNumeric(category.AlertThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid alert threshold: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO categories_budget (budget_id, name, type, priorite, montant_alloue,
			montant_utilise, montant_restant, seuil_alerte, actif)
		VALUES ($1, $2, $3, $4, $5, 0, $5, $6, $7)
		RETURNING `+categoryColumns,
		category.BudgetID, category.Name, string(category.Type), category.Priority,
		allocated, threshold, category.Active)
	return scanCategory(row)
}

// GetByID retrieves a category by its ID
func (r *BudgetCategoryRepository) GetByID(id int32) (*domain.BudgetCategory, error) {
	ctx := context.Background()
	category, err := scanCategory(r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+` FROM categories_budget WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetByBudget retrieves all categories of a budget ordered by priority
func (r *BudgetCategoryRepository) GetByBudget(budgetID int32) ([]*domain.BudgetCategory, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+categoryColumns+` FROM categories_budget
		WHERE budget_id = $1
		ORDER BY priorite, id`, budgetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.BudgetCategory
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update updates a category, rebasing montant_restant on the new allocation
func (r *BudgetCategoryRepository) Update(id int32, update *domain.BudgetCategoryUpdate) (*domain.BudgetCategory, error) {
	ctx := context.Background()
	allocated, err := decimalToPgNumeric(update.AllocatedAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid allocated amount: %w", err)
	}
	threshold, err := decimalToPgNumeric(update.AlertThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid alert threshold: %w", err)
	}

	category, err := scanCategory(r.pool.QueryRow(ctx, `
		UPDATE categories_budget
		SET name = $2, type = $3, priorite = $4, montant_alloue = $5,
		    montant_restant = $5 - montant_utilise, seuil_alerte = $6, actif = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+categoryColumns,
		id, update.Name, string(update.Type), update.Priority, allocated,
		threshold, update.Active))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Delete removes a category
func (r *BudgetCategoryRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories_budget WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetCategoryNotFound
	}
	return nil
}

// SumAllocatedByBudget sums montant_alloue over a budget's categories,
// optionally excluding one category
func (r *BudgetCategoryRepository) SumAllocatedByBudget(budgetID int32, excludeID *int32) (decimal.Decimal, error) {
	ctx := context.Background()
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(montant_alloue), 0) FROM categories_budget
		WHERE budget_id = $1
		  AND ($2::int IS NULL OR id <> $2)`, budgetID, int32PtrToPgInt4(excludeID)).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// HasValidatedTransactions reports whether validated transactions reference
// the category
func (r *BudgetCategoryRepository) HasValidatedTransactions(id int32) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM transactions
			WHERE categorie_budget_id = $1 AND statut = 'VALIDEE'
		)`, id).Scan(&exists)
	return exists, err
}

// ApplyAmount atomically consumes remaining allocation
func (r *BudgetCategoryRepository) ApplyAmount(id int32, amount decimal.Decimal) error {
	return applyCategoryAmount(context.Background(), r.pool, id, amount)
}

// ReleaseAmount atomically reverses a previous apply
func (r *BudgetCategoryRepository) ReleaseAmount(id int32, amount decimal.Decimal) error {
	return releaseCategoryAmount(context.Background(), r.pool, id, amount)
}
