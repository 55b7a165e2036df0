package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/tresoro/tresoro-backend/internal/domain"
	"github.com/tresoro/tresoro-backend/internal/repository/storage"
)

const (
	MaxReceiptSize    = 10 * 1024 * 1024 // 10MB
	ThumbnailWidth    = 200
	JPEGQuality       = 85
	PresignedURLValid = 15 * time.Minute
)

var (
	ErrReceiptTooLarge             = errors.New("file too large. Maximum size is 10MB")
	ErrInvalidReceiptFormat        = errors.New("invalid format. Supported: PDF, JPEG, PNG")
	ErrInvalidReceiptData          = errors.New("invalid file data")
	ErrReceiptStorageNotConfigured = errors.New("receipt storage not configured")
)

// allowedReceiptExtensions maps extensions to content types
var allowedReceiptExtensions = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ReceiptMetadata contains presigned URLs for a stored receipt
type ReceiptMetadata struct {
	Key          string  `json:"key"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}

// ReceiptService handles receipt (justificatif) storage for transactions.
// Image receipts get a thumbnail variant; PDFs are stored as-is.
type ReceiptService struct {
	storage         storage.ReceiptRepository
	transactionRepo domain.TransactionRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(storage storage.ReceiptRepository, transactionRepo domain.TransactionRepository) *ReceiptService {
	return &ReceiptService{
		storage:         storage,
		transactionRepo: transactionRepo,
	}
}

// IsEnabled indicates whether uploads/deletes are supported (storage configured)
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Upload validates and stores a receipt for a transaction, replacing any
// previous one
func (s *ReceiptService) Upload(ctx context.Context, transactionID int32, data []byte, filename string) (*domain.Transaction, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedReceiptExtensions[ext]
	if !ok {
		return nil, ErrInvalidReceiptFormat
	}

	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("receipts/%d/%s%s", transactionID, uuid.New().String(), ext)
	if _, err := s.storage.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data))); err != nil {
		return nil, err
	}

	if strings.HasPrefix(contentType, "image/") {
		if err := s.uploadThumbnail(ctx, key, data); err != nil {
			_ = s.storage.Delete(ctx, key)
			return nil, err
		}
	}

	// Replace any previous receipt once the new one is safely stored
	if transaction.ReceiptKey != nil {
		s.deleteObjects(ctx, *transaction.ReceiptKey)
	}

	return s.transactionRepo.SetReceiptKey(transactionID, &key)
}

// uploadThumbnail decodes an image receipt and stores a reduced variant
func (s *ReceiptService) uploadThumbnail(ctx context.Context, key string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ErrInvalidReceiptData
	}

	if img.Bounds().Dx() > ThumbnailWidth {
		img = imaging.Resize(img, ThumbnailWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	_, err = s.storage.Upload(ctx, thumbnailKey(key), bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len()))
	return err
}

// GetURL returns presigned URLs for a transaction's receipt
func (s *ReceiptService) GetURL(ctx context.Context, transactionID int32) (*ReceiptMetadata, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptStorageNotConfigured
	}

	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.ReceiptKey == nil {
		return nil, domain.ErrReceiptNotFound
	}

	key := *transaction.ReceiptKey
	url, err := s.storage.GeneratePresignedURL(ctx, key, PresignedURLValid)
	if err != nil {
		return nil, err
	}

	metadata := &ReceiptMetadata{Key: key, URL: url}
	if isImageKey(key) {
		thumbURL, err := s.storage.GeneratePresignedURL(ctx, thumbnailKey(key), PresignedURLValid)
		if err == nil {
			metadata.ThumbnailURL = &thumbURL
		}
	}
	return metadata, nil
}

// Delete removes a transaction's receipt. The receipt of a validated
// transaction is part of the accounting trail and cannot be removed.
func (s *ReceiptService) Delete(ctx context.Context, transactionID int32) error {
	if !s.IsEnabled() {
		return ErrReceiptStorageNotConfigured
	}

	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return err
	}
	if transaction.ReceiptKey == nil {
		return domain.ErrReceiptNotFound
	}
	if transaction.Status == domain.TransactionStatusValidated {
		return domain.ErrInvalidState
	}

	s.deleteObjects(ctx, *transaction.ReceiptKey)
	_, err = s.transactionRepo.SetReceiptKey(transactionID, nil)
	return err
}

// deleteObjects removes the receipt and its thumbnail, best effort
func (s *ReceiptService) deleteObjects(ctx context.Context, key string) {
	_ = s.storage.Delete(ctx, key)
	if isImageKey(key) {
		_ = s.storage.Delete(ctx, thumbnailKey(key))
	}
}

func thumbnailKey(key string) string {
	ext := filepath.Ext(key)
	return strings.TrimSuffix(key, ext) + "_thumb.jpg"
}

func isImageKey(key string) bool {
	ct, ok := allowedReceiptExtensions[strings.ToLower(filepath.Ext(key))]
	return ok && strings.HasPrefix(ct, "image/")
}
