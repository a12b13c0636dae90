package ports

import (
	"context"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// DocumentClassificationService is the inbound contract for single-file and
// batch classification.
type DocumentClassificationService interface {
	ClassifyFile(ctx context.Context, upload domain.Upload) (domain.ClassifiedDocument, error)
	ClassifyBatch(ctx context.Context, uploads []domain.Upload) domain.BatchResult
	Categories() domain.CategoryInfo
}
