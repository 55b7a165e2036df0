package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/middleware"
	"github.com/tresoro/tresoro-backend/internal/service"
)

const dateLayout = "2006-01-02"

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest represents the create budget request body
type CreateBudgetRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	TotalAmount    string  `json:"montantTotal"`
	Period         string  `json:"periodicite"`
	StartDate      string  `json:"dateDebut"`
	EndDate        *string `json:"dateFin,omitempty"`
	AlertThreshold *string `json:"seuilAlerte,omitempty"`
	AlertEnabled   bool    `json:"alerteActivee"`
	AutoRenew      bool    `json:"autoRenouvellement"`
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	AlertThreshold string  `json:"seuilAlerte"`
	AlertEnabled   bool    `json:"alerteActivee"`
	AutoRenew      bool    `json:"autoRenouvellement"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID              int32   `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	TotalAmount     string  `json:"montantTotal"`
	UsedAmount      string  `json:"montantUtilise"`
	RemainingAmount string  `json:"montantRestant"`
	PercentageUsed  string  `json:"pourcentageUtilise"`
	Period          string  `json:"periodicite"`
	StartDate       string  `json:"dateDebut"`
	EndDate         string  `json:"dateFin"`
	Status          string  `json:"statut"`
	AlertThreshold  string  `json:"seuilAlerte"`
	AlertEnabled    bool    `json:"alerteActivee"`
	AutoRenew       bool    `json:"autoRenouvellement"`
	OwnerID         string  `json:"ownerId"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// RenewBudgetResponse carries both sides of a renewal
type RenewBudgetResponse struct {
	Previous  BudgetResponse `json:"previous"`
	Successor BudgetResponse `json:"successor"`
}

// CreateBudget handles POST /api/v1/budgets
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.TotalAmount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "montantTotal", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "dateDebut", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "dateFin", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		endDate = &parsed
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

	budget, err := h.budgetService.Create(service.CreateBudgetData{
		Name:           req.Name,
		Description:    req.Description,
		TotalAmount:    amount,
		Period:         domain.BudgetPeriod(req.Period),
		StartDate:      startDate,
		EndDate:        endDate,
		AlertThreshold: threshold,
		AlertEnabled:   req.AlertEnabled,
		AutoRenew:      req.AutoRenew,
		OwnerID:        userID,
	})
	if err != nil {
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrBudgetOverlap) {
			return NewConflictError(c, "An active budget already covers part of this period")
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create budget")
		return NewInternalError(c, "Failed to create budget")
	}

	log.Info().Int32("budget_id", budget.ID).Str("name", budget.Name).Str("user_id", userID).Msg("Budget created")

	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	filters := &domain.BudgetFilters{}

	if statusStr := c.QueryParam("statut"); statusStr != "" {
		status := domain.BudgetStatus(statusStr)
		filters.Status = &status
	}
	if periodStr := c.QueryParam("periodicite"); periodStr != "" {
		period := domain.BudgetPeriod(periodStr)
		filters.Period = &period
	}

	budgets, err := h.budgetService.GetAll(filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list budgets")
		return NewInternalError(c, "Failed to list budgets")
	}

	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetBudget handles GET /api/v1/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateBudget handles PUT /api/v1/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	threshold, err := decimal.NewFromString(req.AlertThreshold)
	if err != nil {
		return NewValidationError(c, "Invalid threshold", []ValidationError{
			{Field: "seuilAlerte", Message: "Must be a valid decimal number"},
		})
	}

	budget, err := h.budgetService.Update(id, &domain.BudgetUpdate{
		Name:           req.Name,
		Description:    req.Description,
		AlertThreshold: threshold,
		AlertEnabled:   req.AlertEnabled,
		AutoRenew:      req.AutoRenew,
	})
	if err != nil {
		if resp := budgetValidationResponse(c, err); resp != nil {
			return resp
		}
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// CloseBudget handles POST /api/v1/budgets/:id/close
func (h *BudgetHandler) CloseBudget(c echo.Context) error {
	return h.transition(c, "close", h.budgetService.Close)
}

// SuspendBudget handles POST /api/v1/budgets/:id/suspend
func (h *BudgetHandler) SuspendBudget(c echo.Context) error {
	return h.transition(c, "suspend", h.budgetService.Suspend)
}

// ReactivateBudget handles POST /api/v1/budgets/:id/reactivate
func (h *BudgetHandler) ReactivateBudget(c echo.Context) error {
	return h.transition(c, "reactivate", h.budgetService.Reactivate)
}

// transition runs a status change and maps its errors uniformly
func (h *BudgetHandler) transition(c echo.Context, action string, fn func(int32) (*domain.Budget, error)) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := fn(id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		if errors.Is(err, domain.ErrInvalidState) {
			return NewConflictError(c, "Budget status does not allow this operation")
		}
		log.Error().Err(err).Int32("budget_id", id).Str("action", action).Msg("Budget status change failed")
		return NewInternalError(c, "Failed to change budget status")
	}

	log.Info().Int32("budget_id", id).Str("action", action).Str("statut", string(budget.Status)).Msg("Budget status changed")

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// RenewBudget handles POST /api/v1/budgets/:id/renew
func (h *BudgetHandler) RenewBudget(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	previous, err := h.budgetService.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return NewNotFoundError(c, "Budget not found")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to get budget")
		return NewInternalError(c, "Failed to renew budget")
	}

	successor, err := h.budgetService.Renew(id)
	if err != nil {
		if errors.Is(err, domain.ErrRenewalDisabled) {
			return NewUnprocessableError(c, "Auto renewal is disabled for this budget")
		}
		if errors.Is(err, domain.ErrInvalidState) {
			return NewConflictError(c, "Budget is already closed")
		}
		log.Error().Err(err).Int32("budget_id", id).Msg("Failed to renew budget")
		return NewInternalError(c, "Failed to renew budget")
	}

	previous.Close()
	log.Info().Int32("budget_id", id).Int32("successor_id", successor.ID).Msg("Budget renewed")

	return c.JSON(http.StatusCreated, RenewBudgetResponse{
		Previous:  toBudgetResponse(previous),
		Successor: toBudgetResponse(successor),
	})
}

// GetActiveBudgets handles GET /api/v1/budgets/active
func (h *BudgetHandler) GetActiveBudgets(c echo.Context) error {
	budgets, err := h.budgetService.GetActive()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list active budgets")
		return NewInternalError(c, "Failed to list active budgets")
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetNearExpiryBudgets handles GET /api/v1/budgets/near-expiry
func (h *BudgetHandler) GetNearExpiryBudgets(c echo.Context) error {
	days := 7
	if daysStr := c.QueryParam("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed < 1 || parsed > 365 {
			return NewValidationError(c, "Invalid days", []ValidationError{
				{Field: "days", Message: "Must be an integer between 1 and 365"},
			})
		}
		days = parsed
	}

	budgets, err := h.budgetService.GetNearExpiry(days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list near-expiry budgets")
		return NewInternalError(c, "Failed to list near-expiry budgets")
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// GetOverThresholdBudgets handles GET /api/v1/budgets/over-threshold
func (h *BudgetHandler) GetOverThresholdBudgets(c echo.Context) error {
	budgets, err := h.budgetService.GetOverThreshold()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list over-threshold budgets")
		return NewInternalError(c, "Failed to list over-threshold budgets")
	}
	return c.JSON(http.StatusOK, toBudgetResponses(budgets))
}

// budgetValidationResponse maps shared budget validation errors, or returns
// nil when err is not one of them
func budgetValidationResponse(c echo.Context, err error) error {
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
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "montantTotal", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidPeriod):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "periodicite", Message: "Must be one of: MENSUEL, TRIMESTRIEL, SEMESTRIEL, ANNUEL"},
		})
	case errors.Is(err, domain.ErrInvalidThreshold):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "seuilAlerte", Message: "Must be greater than 0 and at most 1"},
		})
	case errors.Is(err, domain.ErrDateRange):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "dateFin", Message: "End date must not be before start date"},
		})
	default:
		return nil
	}
}

func parseIDParam(c echo.Context) (int32, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidInput
	}
	return int32(id), nil
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:              budget.ID,
		Name:            budget.Name,
		Description:     budget.Description,
		TotalAmount:     budget.TotalAmount.StringFixed(2),
		UsedAmount:      budget.UsedAmount.StringFixed(2),
		RemainingAmount: budget.RemainingAmount.StringFixed(2),
		PercentageUsed:  budget.PercentageUsed().StringFixed(2),
		Period:          string(budget.Period),
		StartDate:       budget.StartDate.Format(dateLayout),
		EndDate:         budget.EndDate.Format(dateLayout),
		Status:          string(budget.Status),
		AlertThreshold:  budget.AlertThreshold.String(),
		AlertEnabled:    budget.AlertEnabled,
		AutoRenew:       budget.AutoRenew,
		OwnerID:         budget.OwnerID,
		CreatedAt:       budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       budget.UpdatedAt.Format(time.RFC3339),
	}
}

func toBudgetResponses(budgets []*domain.Budget) []BudgetResponse {
	responses := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		responses[i] = toBudgetResponse(budget)
	}
	return responses
}
