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

const budgetColumns = `id, name, description, montant_total, montant_utilise, montant_restant,
	periodicite, date_debut, date_fin, statut, seuil_alerte, alerte_activee,
	auto_renouvellement, owner_id, created_at, updated_at`

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var description pgtype.Text
	var total, used, remaining, threshold pgtype.Numeric
	var startDate, endDate pgtype.Date
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(&b.ID, &b.Name, &description, &total, &used, &remaining,
		&b.Period, &startDate, &endDate, &b.Status, &threshold, &b.AlertEnabled,
		&b.AutoRenew, &b.OwnerID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	b.Description = pgTextToStringPtr(description)
	b.TotalAmount = pgNumericToDecimal(total)
	b.UsedAmount = pgNumericToDecimal(used)
	b.RemainingAmount = pgNumericToDecimal(remaining)
	b.StartDate = pgDateToTime(startDate)
	b.EndDate = pgDateToTime(endDate)
	b.AlertThreshold = pgNumericToDecimal(threshold)
	b.CreatedAt = createdAt.Time
	b.UpdatedAt = updatedAt.Time
	return &b, nil
}

// Create creates a new budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()
	total, err := decimalToPgNumeric(budget.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total amount: %w", err)
	}
	threshold, err := decimalToPgNumeric(budget.AlertThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid alert threshold: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO budgets (name, description, montant_total, montant_utilise, montant_restant,
			periodicite, date_debut, date_fin, statut, seuil_alerte, alerte_activee,
			auto_renouvellement, owner_id)
		VALUES ($1, $2, $3, 0, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+budgetColumns,
		budget.Name, stringPtrToPgText(budget.Description), total,
		string(budget.Period), timeToPgDate(budget.StartDate), timeToPgDate(budget.EndDate),
		string(budget.Status), threshold, budget.AlertEnabled, budget.AutoRenew, budget.OwnerID)
	return scanBudget(row)
}

// GetByID retrieves a budget by its ID
func (r *BudgetRepository) GetByID(id int32) (*domain.Budget, error) {
	ctx := context.Background()
	budget, err := scanBudget(r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetAll retrieves budgets matching the filters
func (r *BudgetRepository) GetAll(filters *domain.BudgetFilters) ([]*domain.Budget, error) {
	ctx := context.Background()
	query := `SELECT ` + budgetColumns + ` FROM budgets`
	var conditions []string
	var args []any

	if filters != nil {
		if filters.Status != nil {
			args = append(args, string(*filters.Status))
			conditions = append(conditions, fmt.Sprintf("statut = $%d", len(args)))
		}
		if filters.Period != nil {
			args = append(args, string(*filters.Period))
			conditions = append(conditions, fmt.Sprintf("periodicite = $%d", len(args)))
		}
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY date_debut DESC, id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

func collectBudgets(rows pgx.Rows) ([]*domain.Budget, error) {
	var budgets []*domain.Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

// Update updates a budget's administrative fields
func (r *BudgetRepository) Update(id int32, update *domain.BudgetUpdate) (*domain.Budget, error) {
	ctx := context.Background()
	threshold, err := decimalToPgNumeric(update.AlertThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid alert threshold: %w", err)
	}

	budget, err := scanBudget(r.pool.QueryRow(ctx, `
		UPDATE budgets
		SET name = $2, description = $3, seuil_alerte = $4, alerte_activee = $5,
		    auto_renouvellement = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+budgetColumns,
		id, update.Name, stringPtrToPgText(update.Description), threshold,
		update.AlertEnabled, update.AutoRenew))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// UpdateStatus sets a budget's status
func (r *BudgetRepository) UpdateStatus(id int32, status domain.BudgetStatus) (*domain.Budget, error) {
	ctx := context.Background()
	budget, err := scanBudget(r.pool.QueryRow(ctx, `
		UPDATE budgets SET statut = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+budgetColumns, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return budget, nil
}

// Renew closes the current budget and inserts its successor in one
// transaction. The close is conditional so two concurrent renewals cannot
// both spawn a successor.
func (r *BudgetRepository) Renew(currentID int32, successor *domain.Budget) (*domain.Budget, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE budgets SET statut = 'CLOTURE', updated_at = now()
		WHERE id = $1 AND statut <> 'CLOTURE'`, currentID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1)`, currentID).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, domain.ErrInvalidState
	}

	total, err := decimalToPgNumeric(successor.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("invalid total amount: %w", err)
	}
	threshold, err := decimalToPgNumeric(successor.AlertThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid alert threshold: %w", err)
	}

	created, err := scanBudget(tx.QueryRow(ctx, `
		INSERT INTO budgets (name, description, montant_total, montant_utilise, montant_restant,
			periodicite, date_debut, date_fin, statut, seuil_alerte, alerte_activee,
			auto_renouvellement, owner_id)
		VALUES ($1, $2, $3, 0, $3, $4, $5, $6, 'ACTIF', $7, $8, $9, $10)
		RETURNING `+budgetColumns,
		successor.Name, stringPtrToPgText(successor.Description), total,
		string(successor.Period), timeToPgDate(successor.StartDate), timeToPgDate(successor.EndDate),
		threshold, successor.AlertEnabled, successor.AutoRenew, successor.OwnerID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// ApplyAmount atomically consumes remaining balance
func (r *BudgetRepository) ApplyAmount(id int32, amount decimal.Decimal) error {
	return applyBudgetAmount(context.Background(), r.pool, id, amount)
}

// ReleaseAmount atomically reverses a previous apply
func (r *BudgetRepository) ReleaseAmount(id int32, amount decimal.Decimal) error {
	return releaseBudgetAmount(context.Background(), r.pool, id, amount)
}

// GetActive retrieves all budgets in usable ACTIF state
func (r *BudgetRepository) GetActive() ([]*domain.Budget, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE statut = 'ACTIF' AND date_fin >= CURRENT_DATE
		ORDER BY date_debut, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// HasActiveOverlap reports whether an active budget overlaps [start, end]
func (r *BudgetRepository) HasActiveOverlap(start, end time.Time, excludeID *int32) (bool, error) {
	ctx := context.Background()
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM budgets
			WHERE statut = 'ACTIF'
			  AND date_debut <= $2
			  AND date_fin >= $1
			  AND ($3::int IS NULL OR id <> $3)
		)`, timeToPgDate(start), timeToPgDate(end), int32PtrToPgInt4(excludeID)).Scan(&exists)
	return exists, err
}

// GetNearExpiry retrieves ACTIF budgets ending within the given number of
// days, including budgets whose period already ended
func (r *BudgetRepository) GetNearExpiry(withinDays int) ([]*domain.Budget, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE statut = 'ACTIF'
		  AND date_fin <= CURRENT_DATE + $1::int
		ORDER BY date_fin, id`, withinDays)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}

// GetOverThreshold retrieves active budgets with alerting enabled whose
// consumption reached their threshold
func (r *BudgetRepository) GetOverThreshold() ([]*domain.Budget, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets
		WHERE statut = 'ACTIF'
		  AND alerte_activee
		  AND montant_total > 0
		  AND montant_utilise >= montant_total * seuil_alerte
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBudgets(rows)
}
