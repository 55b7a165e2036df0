package domain

import "time"

// TransactionCategory classifies transactions (cotisations, subventions,
// salaires, ...). It carries no balance; budgets and budget categories do.
type TransactionCategory struct {
	ID          int32           `json:"id"`
	Name        string          `json:"name"`
	Type        TransactionType `json:"type"`
	Description *string         `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type TransactionCategoryRepository interface {
	Create(category *TransactionCategory) (*TransactionCategory, error)
	GetByID(id int32) (*TransactionCategory, error)
	GetAll() ([]*TransactionCategory, error)
	Update(id int32, name string, description *string) (*TransactionCategory, error)
	Delete(id int32) error
}
