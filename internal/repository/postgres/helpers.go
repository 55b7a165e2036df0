package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx, so the conditional
// balance updates can run standalone or inside a unit of work.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func decimalToPgNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var num pgtype.Numeric
	if err := num.Scan(d.String()); err != nil {
		return pgtype.Numeric{}, err
	}
	return num, nil
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func pgNumericToDecimalPtr(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return nil
	}
	d := decimal.NewFromBigInt(n.Int, n.Exp)
	return &d
}

func decimalPtrToPgNumeric(d *decimal.Decimal) (pgtype.Numeric, error) {
	if d == nil {
		return pgtype.Numeric{Valid: false}, nil
	}
	return decimalToPgNumeric(*d)
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{
		Time:  t,
		Valid: true,
	}
}

func pgDateToTime(d pgtype.Date) time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return d.Time
}

func pgDateToTimePtr(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	return &d.Time
}

func timePtrToPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func pgInt4ToInt32Ptr(i pgtype.Int4) *int32 {
	if !i.Valid {
		return nil
	}
	return &i.Int32
}

func int32PtrToPgInt4(i *int32) pgtype.Int4 {
	if i == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: *i, Valid: true}
}

func pgTimestamptzToTimePtr(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

// isUniqueViolation reports whether err is a PostgreSQL unique violation.
// PostgreSQL unique violation error code is 23505.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// applyBudgetAmount consumes remaining budget balance with a single
// conditional UPDATE. The guard makes concurrent over-consumption
// impossible regardless of what the caller read beforehand.
func applyBudgetAmount(ctx context.Context, db dbtx, id int32, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `
		UPDATE budgets
		SET montant_utilise = montant_utilise + $2,
		    montant_restant = montant_restant - $2,
		    updated_at = now()
		WHERE id = $1
		  AND statut = 'ACTIF'
		  AND date_fin >= CURRENT_DATE
		  AND montant_restant >= $2`, id, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return diagnoseBudgetApply(ctx, db, id, amount)
	}
	return nil
}

// diagnoseBudgetApply turns a rejected conditional update into the precise
// domain error
func diagnoseBudgetApply(ctx context.Context, db dbtx, id int32, amount decimal.Decimal) error {
	var status string
	var endDate pgtype.Date
	var remaining pgtype.Numeric
	err := db.QueryRow(ctx,
		`SELECT statut, date_fin, montant_restant FROM budgets WHERE id = $1`, id).
		Scan(&status, &endDate, &remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrBudgetNotFound
		}
		return err
	}
	if status != string(domain.BudgetStatusActive) || endDate.Time.Before(time.Now().UTC().Truncate(24*time.Hour)) {
		return domain.ErrBudgetNotActive
	}
	if pgNumericToDecimal(remaining).LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	return domain.ErrConflict
}

// releaseBudgetAmount reverses a previous apply. No status guard: a
// cancellation must reverse balances even on a suspended or closed budget.
func releaseBudgetAmount(ctx context.Context, db dbtx, id int32, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `
		UPDATE budgets
		SET montant_utilise = montant_utilise - $2,
		    montant_restant = montant_restant + $2,
		    updated_at = now()
		WHERE id = $1
		  AND montant_utilise >= $2`, id, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM budgets WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrBudgetNotFound
		}
		return domain.ErrOverRelease
	}
	return nil
}

// applyCategoryAmount consumes remaining category allocation with a single
// conditional UPDATE
func applyCategoryAmount(ctx context.Context, db dbtx, id int32, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `
		UPDATE categories_budget
		SET montant_utilise = montant_utilise + $2,
		    montant_restant = montant_restant - $2,
		    updated_at = now()
		WHERE id = $1
		  AND montant_restant >= $2`, id, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories_budget WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrBudgetCategoryNotFound
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// releaseCategoryAmount reverses a previous category apply
func releaseCategoryAmount(ctx context.Context, db dbtx, id int32, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	num, err := decimalToPgNumeric(amount)
	if err != nil {
		return err
	}
	tag, err := db.Exec(ctx, `
		UPDATE categories_budget
		SET montant_utilise = montant_utilise - $2,
		    montant_restant = montant_restant + $2,
		    updated_at = now()
		WHERE id = $1
		  AND montant_utilise >= $2`, id, num)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM categories_budget WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrBudgetCategoryNotFound
		}
		return domain.ErrOverRelease
	}
	return nil
}

// applyLedgerEffect routes the signed deltas of an effect to the conditional
// balance updates. Positive deltas consume, negative deltas release.
func applyLedgerEffect(ctx context.Context, db dbtx, effect domain.LedgerEffect) error {
	if effect.BudgetID != nil {
		var err error
		switch {
		case effect.BudgetDelta.IsPositive():
			err = applyBudgetAmount(ctx, db, *effect.BudgetID, effect.BudgetDelta)
		case effect.BudgetDelta.IsNegative():
			err = releaseBudgetAmount(ctx, db, *effect.BudgetID, effect.BudgetDelta.Neg())
		}
		if err != nil {
			return err
		}
	}
	if effect.CategoryID != nil {
		var err error
		switch {
		case effect.CategoryDelta.IsPositive():
			err = applyCategoryAmount(ctx, db, *effect.CategoryID, effect.CategoryDelta)
		case effect.CategoryDelta.IsNegative():
			err = releaseCategoryAmount(ctx, db, *effect.CategoryID, effect.CategoryDelta.Neg())
		}
		if err != nil {
			return err
		}
	}
	return nil
}
