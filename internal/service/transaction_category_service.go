package service

import (
	"github.com/tresoro/tresoro-backend/internal/domain"
)

// TransactionCategoryService handles transaction classification categories
type TransactionCategoryService struct {
	categoryRepo    domain.TransactionCategoryRepository
	transactionRepo domain.TransactionRepository
}

// NewTransactionCategoryService creates a new TransactionCategoryService
func NewTransactionCategoryService(
	categoryRepo domain.TransactionCategoryRepository,
	transactionRepo domain.TransactionRepository,
) *TransactionCategoryService {
	return &TransactionCategoryService{
		categoryRepo:    categoryRepo,
		transactionRepo: transactionRepo,
	}
}

// Create creates a new classification category
func (s *TransactionCategoryService) Create(name string, txType domain.TransactionType, description *string) (*domain.TransactionCategory, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidType
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	return s.categoryRepo.Create(&domain.TransactionCategory{
		Name:        name,
		Type:        txType,
		Description: description,
	})
}

// Get retrieves a classification category by ID
func (s *TransactionCategoryService) Get(id int32) (*domain.TransactionCategory, error) {
	return s.categoryRepo.GetByID(id)
}

// GetAll retrieves all classification categories
func (s *TransactionCategoryService) GetAll() ([]*domain.TransactionCategory, error) {
	return s.categoryRepo.GetAll()
}

// Update renames a classification category
func (s *TransactionCategoryService) Update(id int32, name string, description *string) (*domain.TransactionCategory, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return nil, err
	}
	return s.categoryRepo.Update(id, name, description)
}

// Delete removes a classification category unless transactions reference it
func (s *TransactionCategoryService) Delete(id int32) error {
	if _, err := s.categoryRepo.GetByID(id); err != nil {
		return err
	}
	count, err := s.transactionRepo.CountByTransactionCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCategoryInUse
	}
	return s.categoryRepo.Delete(id)
}
