package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/service"
)

// ReceiptHandler handles receipt (justificatif) HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// UploadReceipt handles POST /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) UploadReceipt(c echo.Context) error {
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt uploads are disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	transaction, err := h.receiptService.Upload(c.Request().Context(), id, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTransactionNotFound):
			return NewNotFoundError(c, "Transaction not found")
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 10MB"},
			})
		case errors.Is(err, service.ErrInvalidReceiptFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: PDF, JPEG, PNG"},
			})
		case errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid file data"},
			})
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to upload receipt")
		return NewInternalError(c, "Failed to upload receipt")
	}

	log.Info().Int32("transaction_id", id).Str("filename", file.Filename).Msg("Receipt uploaded")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetReceipt handles GET /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt downloads are disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	metadata, err := h.receiptService.GetURL(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Transaction has no receipt")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to resolve receipt URL")
		return NewInternalError(c, "Failed to resolve receipt URL")
	}

	return c.JSON(http.StatusOK, metadata)
}

// DeleteReceipt handles DELETE /api/v1/transactions/:id/receipt
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	if !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt deletion is disabled (storage not configured)")
	}

	id, err := parseIDParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.receiptService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		if errors.Is(err, domain.ErrReceiptNotFound) {
			return NewNotFoundError(c, "Transaction has no receipt")
		}
		if errors.Is(err, domain.ErrInvalidState) {
			return NewConflictError(c, "The receipt of a validated transaction cannot be removed")
		}
		log.Error().Err(err).Int32("transaction_id", id).Msg("Failed to delete receipt")
		return NewInternalError(c, "Failed to delete receipt")
	}

	log.Info().Int32("transaction_id", id).Msg("Receipt deleted")

	return c.NoContent(http.StatusNoContent)
}
