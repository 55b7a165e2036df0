package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/service"
)

// TransactionCategoryHandler handles classification category HTTP requests
type TransactionCategoryHandler struct {
	categoryService *service.TransactionCategoryService
}

// NewTransactionCategoryHandler creates a new TransactionCategoryHandler
func NewTransactionCategoryHandler(categoryService *service.TransactionCategoryService) *TransactionCategoryHandler {
	return &TransactionCategoryHandler{categoryService: categoryService}
}

// CreateTransactionCategoryRequest represents the create request body
type CreateTransactionCategoryRequest struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
}

// UpdateTransactionCategoryRequest represents the update request body
type UpdateTransactionCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// TransactionCategoryResponse represents a classification category
type TransactionCategoryResponse struct {
	ID          int32   `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// CreateCategory handles POST /api/v1/transaction-categories
func (h *TransactionCategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateTransactionCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.Create(req.Name, domain.TransactionType(req.Type), req.Description)
	if err != nil {
		if resp := transactionCategoryErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create transaction category")
		return NewInternalError(c, "Failed to create transaction category")
	}

	log.Info().Int32("category_id", category.ID).Str("name", category.Name).Msg("Transaction category created")

	return c.JSON(http.StatusCreated, toTransactionCategoryResponse(category))
}

// GetCategories handles GET /api/v1/transaction-categories
func (h *TransactionCategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetAll()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transaction categories")
		return NewInternalError(c, "Failed to list transaction categories")
	}

	responses := make([]TransactionCategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = toTransactionCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetCategory handles GET /api/v1/transaction-categories/:id
func (h *TransactionCategoryHandler) GetCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to get transaction category")
		return NewInternalError(c, "Failed to get transaction category")
	}

	return c.JSON(http.StatusOK, toTransactionCategoryResponse(category))
}

// UpdateCategory handles PUT /api/v1/transaction-categories/:id
func (h *TransactionCategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateTransactionCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.Update(id, req.Name, req.Description)
	if err != nil {
		if resp := transactionCategoryErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to update transaction category")
		return NewInternalError(c, "Failed to update transaction category")
	}

	return c.JSON(http.StatusOK, toTransactionCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/transaction-categories/:id
func (h *TransactionCategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.Delete(id); err != nil {
		if errors.Is(err, domain.ErrTransactionCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrCategoryInUse) {
			return NewConflictError(c, "Category is referenced by transactions")
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to delete transaction category")
		return NewInternalError(c, "Failed to delete transaction category")
	}

	log.Info().Int32("category_id", id).Msg("Transaction category deleted")

	return c.NoContent(http.StatusNoContent)
}

func transactionCategoryErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 1000 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be one of: RECETTE, DEPENSE"},
		})
	case errors.Is(err, domain.ErrTransactionCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	default:
		return nil
	}
}

func toTransactionCategoryResponse(category *domain.TransactionCategory) TransactionCategoryResponse {
	return TransactionCategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Type:        string(category.Type),
		Description: category.Description,
		CreatedAt:   category.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   category.UpdatedAt.Format(time.RFC3339),
	}
}
