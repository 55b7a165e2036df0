package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/service"
)

// BudgetCategoryHandler handles budget category HTTP requests
type BudgetCategoryHandler struct {
	categoryService *service.BudgetCategoryService
}

// NewBudgetCategoryHandler creates a new BudgetCategoryHandler
func NewBudgetCategoryHandler(categoryService *service.BudgetCategoryService) *BudgetCategoryHandler {
	return &BudgetCategoryHandler{categoryService: categoryService}
}

// CreateBudgetCategoryRequest represents the create category request body
type CreateBudgetCategoryRequest struct {
	BudgetID        int32   `json:"budgetId"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Priority        int     `json:"priorite"`
	AllocatedAmount string  `json:"montantAlloue"`
	AlertThreshold  *string `json:"seuilAlerte,omitempty"`
}

// UpdateBudgetCategoryRequest represents the update category request body
type UpdateBudgetCategoryRequest struct {
	Name            string `json:"name"`
	Type            string `json:"type"`
	Priority        int    `json:"priorite"`
	AllocatedAmount string `json:"montantAlloue"`
	AlertThreshold  string `json:"seuilAlerte"`
	Active          bool   `json:"actif"`
}

// BudgetCategoryResponse represents a budget category in API responses
type BudgetCategoryResponse struct {
	ID              int32  `json:"id"`
	BudgetID        int32  `json:"budgetId"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Priority        int    `json:"priorite"`
	AllocatedAmount string `json:"montantAlloue"`
	UsedAmount      string `json:"montantUtilise"`
	RemainingAmount string `json:"montantRestant"`
	PercentageUsed  string `json:"pourcentageUtilise"`
	AlertThreshold  string `json:"seuilAlerte"`
	Active          bool   `json:"actif"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// CreateCategory handles POST /api/v1/budget-categories
func (h *BudgetCategoryHandler) CreateCategory(c echo.Context) error {
	var req CreateBudgetCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	if req.BudgetID <= 0 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "budgetId", Message: "Budget ID is required"},
		})
	}

	amount, err := decimal.NewFromString(req.AllocatedAmount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "montantAlloue", Message: "Must be a valid decimal number"},
		})
	}

	var threshold *decimal.Decimal
	if req.AlertThreshold != nil && *req.AlertThreshold != "" {
		parsed, err := decimal.NewFromString(*req.AlertThreshold)
		if err != nil {
			return NewValidationError(c, "Invalid threshold", []ValidationError{
				{Field: "seuilAlerte", Message: "Must be a valid decimal number"},
			})
		}
		threshold = &parsed
	}

	category, err := h.categoryService.Create(service.CreateBudgetCategoryData{
		BudgetID:        req.BudgetID,
		Name:            req.Name,
		Type:            domain.BudgetCategoryType(req.Type),
		Priority:        req.Priority,
		AllocatedAmount: amount,
		AlertThreshold:  threshold,
	})
	if err != nil {
		if resp := categoryErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("budget_id", req.BudgetID).Msg("Failed to create budget category")
		return NewInternalError(c, "Failed to create budget category")
	}

	log.Info().Int32("category_id", category.ID).Int32("budget_id", category.BudgetID).Str("name", category.Name).Msg("Budget category created")

	return c.JSON(http.StatusCreated, toBudgetCategoryResponse(category))
}

// GetCategory handles GET /api/v1/budget-categories/:id
func (h *BudgetCategoryHandler) GetCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to get budget category")
		return NewInternalError(c, "Failed to get budget category")
	}

	return c.JSON(http.StatusOK, toBudgetCategoryResponse(category))
}

// GetCategoriesByBudget handles GET /api/v1/budgets/:id/categories
func (h *BudgetCategoryHandler) GetCategoriesByBudget(c echo.Context) error {
	budgetID, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	categories, err := h.categoryService.GetByBudget(budgetID)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", budgetID).Msg("Failed to list budget categories")
		return NewInternalError(c, "Failed to list budget categories")
	}

	responses := make([]BudgetCategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = toBudgetCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, responses)
}

// UpdateCategory handles PUT /api/v1/budget-categories/:id
func (h *BudgetCategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req UpdateBudgetCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.AllocatedAmount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "montantAlloue", Message: "Must be a valid decimal number"},
		})
	}

	threshold, err := decimal.NewFromString(req.AlertThreshold)
	if err != nil {
		return NewValidationError(c, "Invalid threshold", []ValidationError{
			{Field: "seuilAlerte", Message: "Must be a valid decimal number"},
		})
	}

	category, err := h.categoryService.Update(id, &domain.BudgetCategoryUpdate{
		Name:            req.Name,
		Type:            domain.BudgetCategoryType(req.Type),
		Priority:        req.Priority,
		AllocatedAmount: amount,
		AlertThreshold:  threshold,
		Active:          req.Active,
	})
	if err != nil {
		if resp := categoryErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to update budget category")
		return NewInternalError(c, "Failed to update budget category")
	}

	return c.JSON(http.StatusOK, toBudgetCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/budget-categories/:id
func (h *BudgetCategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.Delete(id); err != nil {
		if errors.Is(err, domain.ErrBudgetCategoryNotFound) {
			return NewNotFoundError(c, "Category not found")
		}
		if errors.Is(err, domain.ErrCategoryInUse) {
			return NewConflictError(c, "Category is referenced by validated transactions")
		}
		log.Error().Err(err).Int32("category_id", id).Msg("Failed to delete budget category")
		return NewInternalError(c, "Failed to delete budget category")
	}

	log.Info().Int32("category_id", id).Msg("Budget category deleted")

	return c.NoContent(http.StatusNoContent)
}

// categoryErrorResponse maps shared category errors, or returns nil when err
// is not one of them
func categoryErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be one of: EQUIPEMENT, DEPLACEMENT, FORMATION, MEDICAL, ADMINISTRATIF, AUTRE"},
		})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "montantAlloue", Message: "Amount must be positive and not below the amount already used"},
		})
	case errors.Is(err, domain.ErrInvalidThreshold):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "seuilAlerte", Message: "Must be greater than 0 and at most 1"},
		})
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "budgetId", Message: "Budget not found"},
		})
	case errors.Is(err, domain.ErrBudgetCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrAllocationExceedsBudget):
		return NewUnprocessableError(c, "Category allocations would exceed the budget total")
	default:
		return nil
	}
}

func toBudgetCategoryResponse(category *domain.BudgetCategory) BudgetCategoryResponse {
	return BudgetCategoryResponse{
		ID:              category.ID,
		BudgetID:        category.BudgetID,
		Name:            category.Name,
		Type:            string(category.Type),
		Priority:        category.Priority,
		AllocatedAmount: category.AllocatedAmount.StringFixed(2),
		UsedAmount:      category.UsedAmount.StringFixed(2),
		RemainingAmount: category.RemainingAmount.StringFixed(2),
		PercentageUsed:  category.PercentageUsed().StringFixed(2),
		AlertThreshold:  category.AlertThreshold.String(),
		Active:          category.Active,
		CreatedAt:       category.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       category.UpdatedAt.Format(time.RFC3339),
	}
}
