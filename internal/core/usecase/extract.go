package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/core/textclean"
)

// minPDFWordRunes drops OCR/PDF noise: tokens shorter than this are discarded
// from page text.
const minPDFWordRunes = 3

type Extractor struct {
	pdf    ports.PDFDecoder
	ocr    ports.OCREngine
	now    func() time.Time
	logger *slog.Logger
}

func NewExtractor(pdf ports.PDFDecoder, ocr ports.OCREngine, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		pdf:    pdf,
		ocr:    ocr,
		now:    time.Now,
		logger: logger,
	}
}

// ProcessDocument never fails: any extraction error is logged and degrades to
// a document with empty text.
func (e *Extractor) ProcessDocument(ctx context.Context, upload domain.Upload) domain.ExtractedDocument {
	e.logger.Info("document_processing_started", "file_name", upload.Filename)

	text, err := e.extract(ctx, upload)
	if err != nil {
		e.logger.Error("document_processing_failed", "file_name", upload.Filename, "error", err)
		return domain.ExtractedDocument{
			SourceName:  upload.Filename,
			Text:        "",
			ExtractedAt: e.now(),
		}
	}

	doc := domain.ExtractedDocument{
		SourceName:  upload.Filename,
		Text:        textclean.Clean(text),
		ExtractedAt: e.now(),
	}
	e.logger.Info("document_extracted", "file_name", doc.SourceName, "chars", utf8.RuneCountInString(doc.Text))
	return doc
}

func (e *Extractor) extract(ctx context.Context, upload domain.Upload) (string, error) {
	data, err := readUpload(upload)
	if err != nil {
		return "", err
	}
	if isPDF(upload.Filename) {
		return e.ExtractPDF(upload.Filename, data)
	}
	return e.ExtractImage(ctx, upload.Filename, data)
}

// ExtractPDF returns the filtered page text of a PDF. A malformed structure
// yields empty text without error; other decoder failures are returned.
func (e *Extractor) ExtractPDF(name string, data []byte) (string, error) {
	e.logger.Info("processing_pdf", "file_name", name)
	if e.pdf == nil {
		return "", errors.New("pdf decoder is not configured")
	}

	pages, err := e.pdf.Open(data)
	if err != nil {
		if domain.IsKind(err, domain.ErrMalformedPDF) {
			e.logger.Error("invalid_pdf_structure", "file_name", name, "error", err)
			return "", nil
		}
		e.logger.Error("pdf_extraction_failed", "file_name", name, "error", err)
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i, page := range pages {
		pageText, ok, err := page.ExtractText()
		if err != nil {
			e.logger.Error("pdf_extraction_failed", "file_name", name, "page", i+1, "error", err)
			return "", fmt.Errorf("extract text from page %d: %w", i+1, err)
		}
		if !ok || pageText == "" {
			continue
		}
		b.WriteString(strings.Join(filterShortWords(pageText), " "))
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

func (e *Extractor) ExtractImage(ctx context.Context, name string, data []byte) (string, error) {
	e.logger.Info("processing_image", "file_name", name)
	if e.ocr == nil {
		return "", errors.New("ocr engine is not configured")
	}

	text, err := e.ocr.Recognize(ctx, data)
	if err != nil {
		e.logger.Error("image_extraction_failed", "file_name", name, "error", err)
		return "", fmt.Errorf("recognize image: %w", err)
	}
	return text, nil
}

func filterShortWords(text string) []string {
	words := strings.Fields(text)
	out := words[:0]
	for _, word := range words {
		if utf8.RuneCountInString(word) >= minPDFWordRunes {
			out = append(out, word)
		}
	}
	return out
}

func isPDF(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".pdf")
}

func readUpload(upload domain.Upload) ([]byte, error) {
	if upload.Open == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open upload", errors.New("no content"))
	}
	reader, err := upload.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}
