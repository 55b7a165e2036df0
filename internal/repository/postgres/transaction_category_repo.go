package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tresoro/tresoro-backend/internal/domain"
)

const transactionCategoryColumns = `id, name, type, description, created_at, updated_at`

// TransactionCategoryRepository implements
// domain.TransactionCategoryRepository using PostgreSQL
type TransactionCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionCategoryRepository creates a new TransactionCategoryRepository
func NewTransactionCategoryRepository(pool *pgxpool.Pool) *TransactionCategoryRepository {
	return &TransactionCategoryRepository{pool: pool}
}

func scanTransactionCategory(row pgx.Row) (*domain.TransactionCategory, error) {
	var c domain.TransactionCategory
	var description pgtype.Text
	var createdAt, updatedAt pgtype.Timestamptz

	if err := row.Scan(&c.ID, &c.Name, &c.Type, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	c.Description = pgTextToStringPtr(description)
	c.CreatedAt = createdAt.Time
	c.UpdatedAt = updatedAt.Time
	return &c, nil
}

// Create creates a new classification category
func (r *TransactionCategoryRepository) Create(category *domain.TransactionCategory) (*domain.TransactionCategory, error) {
	ctx := context.Background()
	return scanTransactionCategory(r.pool.QueryRow(ctx, `
		INSERT INTO categories_transaction (name, type, description)
		VALUES ($1, $2, $3)
		RETURNING `+transactionCategoryColumns,
		category.Name, string(category.Type), stringPtrToPgText(category.Description)))
}

// GetByID retrieves a classification category by its ID
func (r *TransactionCategoryRepository) GetByID(id int32) (*domain.TransactionCategory, error) {
	ctx := context.Background()
	category, err := scanTransactionCategory(r.pool.QueryRow(ctx,
		`SELECT `+transactionCategoryColumns+` FROM categories_transaction WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// GetAll retrieves all classification categories
func (r *TransactionCategoryRepository) GetAll() ([]*domain.TransactionCategory, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+transactionCategoryColumns+` FROM categories_transaction ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.TransactionCategory
	for rows.Next() {
		category, err := scanTransactionCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update renames a classification category
func (r *TransactionCategoryRepository) Update(id int32, name string, description *string) (*domain.TransactionCategory, error) {
	ctx := context.Background()
	category, err := scanTransactionCategory(r.pool.QueryRow(ctx, `
		UPDATE categories_transaction
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+transactionCategoryColumns, id, name, stringPtrToPgText(description)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

// Delete removes a classification category
func (r *TransactionCategoryRepository) Delete(id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories_transaction WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionCategoryNotFound
	}
	return nil
}
