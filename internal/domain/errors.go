package domain

import "errors"

// Domain errors
var (
	ErrBudgetNotFound              = errors.New("budget not found")
	ErrBudgetCategoryNotFound      = errors.New("budget category not found")
	ErrTransactionNotFound         = errors.New("transaction not found")
	ErrTransactionCategoryNotFound = errors.New("transaction category not found")
	ErrReceiptNotFound             = errors.New("receipt not found")

	ErrNameRequired            = errors.New("name is required")
	ErrNameTooLong             = errors.New("name exceeds maximum length")
	ErrDescriptionTooLong      = errors.New("description exceeds maximum length")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidType             = errors.New("invalid transaction type")
	ErrInvalidPeriod           = errors.New("invalid budget period")
	ErrInvalidThreshold        = errors.New("alert threshold must be between 0 and 1")
	ErrDateRange               = errors.New("end date is before start date")
	ErrBudgetOverlap           = errors.New("an active budget overlaps the requested period")
	ErrAllocationExceedsBudget = errors.New("category allocations exceed budget total")
	ErrCategoryBudgetMismatch  = errors.New("category does not belong to the referenced budget")

	ErrInsufficientFunds  = errors.New("amount exceeds remaining balance")
	ErrOverRelease        = errors.New("amount exceeds used balance")
	ErrInvalidState       = errors.New("operation not allowed in current state")
	ErrBudgetNotActive    = errors.New("budget is not active")
	ErrDuplicateReference = errors.New("transaction reference already exists")
	ErrRenewalDisabled    = errors.New("auto renewal is disabled for this budget")
	ErrCategoryInUse      = errors.New("category is referenced by transactions")
	ErrConflict           = errors.New("concurrent update conflict")
	ErrInvalidInput       = errors.New("invalid input")
)

// Validation constants
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 1000
	MaxNotesLength       = 2000
)
