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

// TransactionHandler handles transaction HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Amount           string  `json:"montant"`
	Type             string  `json:"type"`
	Description      string  `json:"description"`
	TransactionDate  string  `json:"dateTransaction"`
	Notes            *string `json:"notes,omitempty"`
	VATRate          *string `json:"tauxTVA,omitempty"`
	Recurrence       *string `json:"frequenceRecurrence,omitempty"`
	BudgetID         *int32  `json:"budgetId,omitempty"`
	BudgetCategoryID *int32  `json:"categorieBudgetId,omitempty"`
	CategoryID       int32   `json:"categorieTransactionId"`
}

// UpdateTransactionRequest represents the update transaction request body
type UpdateTransactionRequest struct {
	Amount           string  `json:"montant"`
	Type             string  `json:"type"`
	Description      string  `json:"description"`
	TransactionDate  string  `json:"dateTransaction"`
	Notes            *string `json:"notes,omitempty"`
	VATRate          *string `json:"tauxTVA,omitempty"`
	BudgetID         *int32  `json:"budgetId,omitempty"`
	BudgetCategoryID *int32  `json:"categorieBudgetId,omitempty"`
	CategoryID       int32   `json:"categorieTransactionId"`
}

// MotifRequest carries the reason for a rejection or cancellation
type MotifRequest struct {
	Motif string `json:"motif"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID               int32   `json:"id"`
	Reference        string  `json:"reference"`
	Amount           string  `json:"montant"`
	Type             string  `json:"type"`
	Description      string  `json:"description"`
	TransactionDate  string  `json:"dateTransaction"`
	PostingDate      *string `json:"dateComptabilisation,omitempty"`
	Status           string  `json:"statut"`
	UserID           string  `json:"userId"`
	ValidatorID      *string `json:"validateurId,omitempty"`
	ValidatedAt      *string `json:"dateValidation,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	VATRate          *string `json:"tauxTVA,omitempty"`
	NetAmount        *string `json:"montantHT,omitempty"`
	VATAmount        *string `json:"montantTVA,omitempty"`
	Recurrence       *string `json:"frequenceRecurrence,omitempty"`
	NextOccurrence   *string `json:"prochaineOccurrence,omitempty"`
	BudgetID         *int32  `json:"budgetId,omitempty"`
	BudgetCategoryID *int32  `json:"categorieBudgetId,omitempty"`
	CategoryID       int32   `json:"categorieTransactionId"`
	HasReceipt       bool    `json:"hasJustificatif"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents paginated transactions
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// PeriodSummaryResponse aggregates validated transactions over a date range
type PeriodSummaryResponse struct {
	StartDate string `json:"dateDebut"`
	EndDate   string `json:"dateFin"`
	Income    string `json:"totalRecettes"`
	Expenses  string `json:"totalDepenses"`
	Balance   string `json:"solde"`
}

// CreateTransaction handles POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "montant", Message: "Must be a valid decimal number"},
		})
	}

	transactionDate, err := time.Parse(dateLayout, req.TransactionDate)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "dateTransaction", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var vatRate *decimal.Decimal
	if req.VATRate != nil && *req.VATRate != "" {
		parsed, err := decimal.NewFromString(*req.VATRate)
		if err != nil {
			return NewValidationError(c, "Invalid VAT rate", []ValidationError{
				{Field: "tauxTVA", Message: "Must be a valid decimal number"},
			})
		}
		vatRate = &parsed
	}

	var recurrence *domain.RecurrenceFrequency
	if req.Recurrence != nil && *req.Recurrence != "" {
		freq := domain.RecurrenceFrequency(*req.Recurrence)
		switch freq {
		case domain.RecurrenceWeekly, domain.RecurrenceMonthly, domain.RecurrenceQuarterly, domain.RecurrenceAnnual:
			recurrence = &freq
		default:
			return NewValidationError(c, "Invalid recurrence", []ValidationError{
				{Field: "frequenceRecurrence", Message: "Must be one of: HEBDOMADAIRE, MENSUELLE, TRIMESTRIELLE, ANNUELLE"},
			})
		}
	}

	transaction, err := h.transactionService.Create(service.CreateTransactionData{
		Amount:           amount,
		Type:             domain.TransactionType(req.Type),
		Description:      req.Description,
		TransactionDate:  transactionDate,
		Notes:            req.Notes,
		VATRate:          vatRate,
		Recurrence:       recurrence,
		BudgetID:         req.BudgetID,
		BudgetCategoryID: req.BudgetCategoryID,
		CategoryID:       req.CategoryID,
		UserID:           userID,
	})
	if err != nil {
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().Int32("transaction_id", transaction.ID).Str("reference", transaction.Reference).Str("user_id", userID).Msg("Transaction recorded")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions handles GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	filters := &domain.TransactionFilters{
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	if startStr := c.QueryParam("dateDebut"); startStr != "" {
		parsed, err := time.Parse(dateLayout, startStr)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "dateDebut", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.StartDate = &parsed
	}
	if endStr := c.QueryParam("dateFin"); endStr != "" {
		parsed, err := time.Parse(dateLayout, endStr)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "dateFin", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		filters.EndDate = &parsed
	}
	if typeStr := c.QueryParam("type"); typeStr != "" {
		txType := domain.TransactionType(typeStr)
		if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
			return NewValidationError(c, "Invalid type", []ValidationError{
				{Field: "type", Message: "Must be one of: RECETTE, DEPENSE"},
			})
		}
		filters.Type = &txType
	}
	if statusStr := c.QueryParam("statut"); statusStr != "" {
		status := domain.TransactionStatus(statusStr)
		filters.Status = &status
	}
	if budgetStr := c.QueryParam("budgetId"); budgetStr != "" {
		budgetID, err := strconv.ParseInt(budgetStr, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid budget ID", nil)
		}
		id := int32(budgetID)
		filters.BudgetID = &id
	}
	if categoryStr := c.QueryParam("categorieTransactionId"); categoryStr != "" {
		categoryID, err := strconv.ParseInt(categoryStr, 10, 32)
		if err != nil {
			return NewValidationError(c, "Invalid category ID", nil)
		}
		id := int32(categoryID)
		filters.CategoryID = &id
	}
	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.ParseInt(pageStr, 10, 32)
		if err != nil || page < 1 {
			return NewValidationError(c, "Invalid page", nil)
		}
		filters.Page = int32(page)
	}
	if sizeStr := c.QueryParam("pageSize"); sizeStr != "" {
		size, err := strconv.ParseInt(sizeStr, 10, 32)
		if err != nil || size < 1 {
			return NewValidationError(c, "Invalid page size", nil)
		}
		filters.PageSize = int32(size)
	}

	result, err := h.transactionService.List(filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list transactions")
		return NewInternalError(c, "Failed to list transactions")
	}

	responses := make([]TransactionResponse, len(result.Data))
	for i, transaction := range result.Data {
		responses[i] = toTransactionResponse(transaction)
	}

	return c.JSON(http.StatusOK, PaginatedTransactionsResponse{
		Data:       responses,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetPendingTransactions handles GET /api/v1/transactions/pending
func (h *TransactionHandler) GetPendingTransactions(c echo.Context) error {
	transactions, err := h.transactionService.GetPending()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list pending transactions")
		return NewInternalError(c, "Failed to list pending transactions")
	}

	responses := make([]TransactionResponse, len(transactions))
	for i, transaction := range transactions {
		responses[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, responses)
}

// GetSummary handles GET /api/v1/transactions/summary
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	start, err := time.Parse(dateLayout, c.QueryParam("dateDebut"))
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "dateDebut", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	end, err := time.Parse(dateLayout, c.QueryParam("dateFin"))
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "dateFin", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	summary, err := h.transactionService.GetSummary(start, end)
	if err != nil {
		if errors.Is(err, domain.ErrDateRange) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "dateFin", Message: "End date must not be before start date"},
			})
		}
		log.Error().Err(err).Msg("Failed to compute period summary")
		return NewInternalError(c, "Failed to compute period summary")
	}

	return c.JSON(http.StatusOK, PeriodSummaryResponse{
		StartDate: summary.StartDate.Format(dateLayout),
		EndDate:   summary.EndDate.Format(dateLayout),
		Income:    summary.Income.StringFixed(2),
		Expenses:  summary.Expenses.StringFixed(2),
		Balance:   summary.Balance.StringFixed(2),
	})
}

// GetTransactionByReference handles GET /api/v1/transactions/reference/:reference
func (h *TransactionHandler) GetTransactionByReference(c echo.Context) error {
	reference := c.Param("reference")
	if reference == "" {
		return NewValidationError(c, "Invalid reference", nil)
	}

	transaction, err := h.transactionService.GetByReference(reference)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("reference", reference).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// GetTransaction handles GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.Get(id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/transactions/:id
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "montant", Message: "Must be a valid decimal number"},
		})
	}

	transactionDate, err := time.Parse(dateLayout, req.TransactionDate)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "dateTransaction", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	var vatRate *decimal.Decimal
	if req.VATRate != nil && *req.VATRate != "" {
		parsed, err := decimal.NewFromString(*req.VATRate)
		if err != nil {
			return NewValidationError(c, "Invalid VAT rate", []ValidationError{
				{Field: "tauxTVA", Message: "Must be a valid decimal number"},
			})
		}
		vatRate = &parsed
	}

	transaction, err := h.transactionService.Update(id, &domain.UpdateTransactionData{
		Amount:           amount,
		Type:             domain.TransactionType(req.Type),
		Description:      req.Description,
		TransactionDate:  transactionDate.UTC().Truncate(24 * time.Hour),
		Notes:            req.Notes,
		VATRate:          vatRate,
		BudgetID:         req.BudgetID,
		BudgetCategoryID: req.BudgetCategoryID,
		CategoryID:       req.CategoryID,
	})
	if err != nil {
		if resp := transactionErrorResponse(c, err); resp != nil {
			return resp
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to update transaction")
		return NewInternalError(c, "Failed to update transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /api/v1/transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.Delete(id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrInvalidState) {
			return NewConflictError(c, "A validated transaction cannot be deleted, only cancelled")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	log.Info().Int32("transaction_id", id).Msg("Transaction deleted")

	return c.NoContent(http.StatusNoContent)
}

// ValidateTransaction handles POST /api/v1/transactions/:id/validate
func (h *TransactionHandler) ValidateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.Validate(id, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
			return NewNotFoundError(c, "Transaction not found")
		case errors.Is(err, domain.ErrInvalidState):
			return NewConflictError(c, "Only pending transactions can be validated")
		case errors.Is(err, domain.ErrConflict):
			return NewConflictError(c, "Concurrent update conflict, please retry")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return NewUnprocessableError(c, "Amount exceeds the remaining balance")
		case errors.Is(err, domain.ErrOverRelease):
			return NewUnprocessableError(c, "Amount exceeds the balance previously applied")
		case errors.Is(err, domain.ErrBudgetNotActive):
			return NewUnprocessableError(c, "Budget is not active")
		case errors.Is(err, domain.ErrBudgetNotFound):
			return NewUnprocessableError(c, "Referenced budget no longer exists")
		case errors.Is(err, domain.ErrBudgetCategoryNotFound):
			return NewUnprocessableError(c, "Referenced category no longer exists")
		case errors.Is(err, domain.ErrCategoryBudgetMismatch):
			return NewUnprocessableError(c, "Category does not belong to the referenced budget")
		}
		log.Error().Err(err).Int32("transaction_id", id).Str("validator_id", userID).Msg("Failed to validate transaction")
		return NewInternalError(c, "Failed to validate transaction")
	}

	log.Info().Int32("transaction_id", id).Str("reference", transaction.Reference).Str("validator_id", userID).Msg("Transaction validated")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// RejectTransaction handles POST /api/v1/transactions/:id/reject
func (h *TransactionHandler) RejectTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req MotifRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.Reject(id, userID, req.Motif)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrInvalidState) {
			return NewConflictError(c, "Only pending transactions can be rejected")
		}
		log.Error().Err(err).Int32("transaction_id", id).Str("validator_id", userID).Msg("Failed to reject transaction")
		return NewInternalError(c, "Failed to reject transaction")
	}

	log.Info().Int32("transaction_id", id).Str("validator_id", userID).Msg("Transaction rejected")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// CancelTransaction handles POST /api/v1/transactions/:id/cancel
func (h *TransactionHandler) CancelTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	var req MotifRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	transaction, err := h.transactionService.Cancel(id, req.Motif)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
			return NewNotFoundError(c, "Transaction not found")
		case errors.Is(err, domain.ErrInvalidState):
			return NewConflictError(c, "Only validated transactions can be cancelled")
		case errors.Is(err, domain.ErrConflict):
			return NewConflictError(c, "Concurrent update conflict, please retry")
		case errors.Is(err, domain.ErrInsufficientFunds):
			return NewUnprocessableError(c, "Reversal would exceed the remaining balance")
		case errors.Is(err, domain.ErrOverRelease):
			return NewUnprocessableError(c, "Reversal would exceed the used balance")
		}
		log.Error().Err(err).Int32("transaction_id", id).Str("user_id", userID).Msg("Failed to cancel transaction")
		return NewInternalError(c, "Failed to cancel transaction")
	}

	log.Info().Int32("transaction_id", id).Str("reference", transaction.Reference).Str("user_id", userID).Msg("Transaction cancelled")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// transactionErrorResponse maps shared create/update errors, or returns nil
// when err is not one of them
func transactionErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "montant", Message: "Amount must be positive"},
		})
	case errors.Is(err, domain.ErrInvalidType):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be one of: RECETTE, DEPENSE"},
		})
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrDescriptionTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "notes", Message: "Notes must be 2000 characters or less"},
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "tauxTVA", Message: "VAT rate must be at least 0 and below 100"},
		})
	case errors.Is(err, domain.ErrTransactionCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categorieTransactionId", Message: "Classification category not found"},
		})
	case errors.Is(err, domain.ErrBudgetNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "budgetId", Message: "Budget not found"},
		})
	case errors.Is(err, domain.ErrBudgetCategoryNotFound):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categorieBudgetId", Message: "Budget category not found"},
		})
	case errors.Is(err, domain.ErrCategoryBudgetMismatch):
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categorieBudgetId", Message: "Category does not belong to the referenced budget"},
		})
	case errors.Is(err, domain.ErrInvalidState):
		return NewConflictError(c, "A validated transaction cannot be edited, only cancelled")
	case errors.Is(err, domain.ErrDuplicateReference):
		return NewConflictError(c, "Transaction reference already exists")
	default:
		return nil
	}
}

func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:               transaction.ID,
		Reference:        transaction.Reference,
		Amount:           transaction.Amount.StringFixed(2),
		Type:             string(transaction.Type),
		Description:      transaction.Description,
		TransactionDate:  transaction.TransactionDate.Format(dateLayout),
		Status:           string(transaction.Status),
		UserID:           transaction.UserID,
		ValidatorID:      transaction.ValidatorID,
		Notes:            transaction.Notes,
		BudgetID:         transaction.BudgetID,
		BudgetCategoryID: transaction.BudgetCategoryID,
		CategoryID:       transaction.CategoryID,
		HasReceipt:       transaction.ReceiptKey != nil,
		CreatedAt:        transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        transaction.UpdatedAt.Format(time.RFC3339),
	}
	if transaction.PostingDate != nil {
		posting := transaction.PostingDate.Format(dateLayout)
		resp.PostingDate = &posting
	}
	if transaction.ValidatedAt != nil {
		validated := transaction.ValidatedAt.Format(time.RFC3339)
		resp.ValidatedAt = &validated
	}
	if transaction.VATRate != nil {
		rate := transaction.VATRate.String()
		resp.VATRate = &rate
	}
	if transaction.NetAmount != nil {
		net := transaction.NetAmount.StringFixed(2)
		resp.NetAmount = &net
	}
	if transaction.VATAmount != nil {
		vat := transaction.VATAmount.StringFixed(2)
		resp.VATAmount = &vat
	}
	if transaction.Recurrence != nil {
		freq := string(*transaction.Recurrence)
		resp.Recurrence = &freq
	}
	if transaction.NextOccurrence != nil {
		next := transaction.NextOccurrence.Format(dateLayout)
		resp.NextOccurrence = &next
	}
	return resp
}
