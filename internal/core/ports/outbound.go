package ports

import (
	"context"
	"time"
)

// PDFPage exposes the text layer of one decoded page. ok is false when the
// page carries no text.
type PDFPage interface {
	ExtractText() (text string, ok bool, err error)
}

// PDFDecoder opens a PDF byte stream. Structural failures are reported with
// domain.ErrMalformedPDF.
type PDFDecoder interface {
	Open(data []byte) ([]PDFPage, error)
}

// OCREngine recognizes text in an encoded image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Embedder maps text into a fixed-dimension vector space.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
	EmbedQuery(ctx context.Context, text string) ([]float64, error)
}

// ClassificationRecorder observes pipeline outcomes for metrics.
type ClassificationRecorder interface {
	ObserveClassification(label string, confidence float64, duration time.Duration)
	ObserveBatchItem(failed bool)
}
