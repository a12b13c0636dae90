package httpadapter

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type serviceFake struct {
	err      error
	uploads  []domain.Upload
	contents []string
}

func (f *serviceFake) ClassifyFile(_ context.Context, upload domain.Upload) (domain.ClassifiedDocument, error) {
	f.record(upload)
	if f.err != nil {
		return domain.ClassifiedDocument{}, f.err
	}
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return domain.ClassifiedDocument{
		SourceName:   upload.Filename,
		Label:        "invoice",
		Confidence:   0.71,
		ExtractedAt:  now,
		Text:         "invoice total due",
		ClassifiedAt: now,
	}, nil
}

func (f *serviceFake) ClassifyBatch(_ context.Context, uploads []domain.Upload) domain.BatchResult {
	result := domain.BatchResult{Processed: len(uploads)}
	for _, upload := range uploads {
		f.record(upload)
		result.Results = append(result.Results, domain.BatchItem{SourceName: upload.Filename, Error: "invalid type"})
	}
	return result
}

func (f *serviceFake) Categories() domain.CategoryInfo {
	return domain.CategoryInfo{Labels: []string{"invoice", "bank_statement", "drivers_license"}, Threshold: 0.3}
}

func (f *serviceFake) record(upload domain.Upload) {
	f.uploads = append(f.uploads, upload)
	rc, err := upload.Open()
	if err != nil {
		f.contents = append(f.contents, "")
		return
	}
	defer rc.Close()
	raw, _ := io.ReadAll(rc)
	f.contents = append(f.contents, string(raw))
}

func testConfig() config.Config {
	return config.Config{MaxUploadBytes: 16 << 20}
}

type formFile struct {
	field, name, content string
}

func multipartRequest(t *testing.T, path string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		if _, err := part.Write([]byte(f.content)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
