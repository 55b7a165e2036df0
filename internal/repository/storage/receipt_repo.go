package storage

import (
	"context"
	"io"
	"time"
)

// ReceiptRepository abstracts object storage for transaction receipts.
// Upload returns the object key; presigned URLs are generated on demand so
// the bucket stays private.
type ReceiptRepository interface {
	Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) (string, error)
	Delete(ctx context.Context, objectKey string) error
	GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}
