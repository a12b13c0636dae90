package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const batchInvalidTypeMessage = "invalid type"

type ClassificationService struct {
	extractor  *Extractor
	classifier *Classifier
	allowList  AllowList
	recorder   ports.ClassificationRecorder
	logger     *slog.Logger
}

func NewClassificationService(
	extractor *Extractor,
	classifier *Classifier,
	allowList AllowList,
	logger *slog.Logger,
) *ClassificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClassificationService{
		extractor:  extractor,
		classifier: classifier,
		allowList:  allowList,
		logger:     logger,
	}
}

// WithRecorder attaches a metrics recorder; nil disables recording.
func (s *ClassificationService) WithRecorder(recorder ports.ClassificationRecorder) *ClassificationService {
	s.recorder = recorder
	return s
}

func (s *ClassificationService) ClassifyFile(ctx context.Context, upload domain.Upload) (domain.ClassifiedDocument, error) {
	if upload.Filename == "" {
		return domain.ClassifiedDocument{}, domain.WrapError(domain.ErrInvalidInput, "classify file", errors.New("no selected file"))
	}
	if !s.allowList.IsAllowed(upload.Filename) {
		return domain.ClassifiedDocument{}, domain.WrapError(domain.ErrUnsupportedType, "classify file", fmt.Errorf("file type not allowed: %s", upload.Filename))
	}
	return s.run(ctx, upload)
}

// ClassifyBatch processes uploads sequentially in input order. A failing item
// becomes an error record and never aborts the batch.
func (s *ClassificationService) ClassifyBatch(ctx context.Context, uploads []domain.Upload) domain.BatchResult {
	result := domain.BatchResult{
		Processed: len(uploads),
		Results:   make([]domain.BatchItem, 0, len(uploads)),
	}

	for _, upload := range uploads {
		if upload.Filename == "" || !s.allowList.IsAllowed(upload.Filename) {
			s.logger.Warn("batch_item_rejected", "file_name", upload.Filename)
			s.observeBatchItem(true)
			result.Results = append(result.Results, domain.BatchItem{
				SourceName: upload.Filename,
				Error:      batchInvalidTypeMessage,
			})
			continue
		}

		doc, err := s.runIsolated(ctx, upload)
		if err != nil {
			s.logger.Error("batch_item_failed", "file_name", upload.Filename, "error", err)
			s.observeBatchItem(true)
			result.Results = append(result.Results, domain.BatchItem{
				SourceName: upload.Filename,
				Error:      err.Error(),
			})
			continue
		}
		s.observeBatchItem(false)
		result.Results = append(result.Results, domain.BatchItem{
			SourceName: upload.Filename,
			Document:   &doc,
		})
	}

	s.logger.Info("batch_processed", "processed", result.Processed, "failed", result.Failures())
	return result
}

func (s *ClassificationService) Categories() domain.CategoryInfo {
	return domain.CategoryInfo{
		Labels:    s.classifier.Labels(),
		Threshold: s.classifier.Threshold(),
	}
}

func (s *ClassificationService) run(ctx context.Context, upload domain.Upload) (domain.ClassifiedDocument, error) {
	start := time.Now()
	extracted := s.extractor.ProcessDocument(ctx, upload)
	doc, err := s.classifier.Classify(ctx, extracted)
	if err != nil {
		return domain.ClassifiedDocument{}, fmt.Errorf("classify %s: %w", upload.Filename, err)
	}
	if s.recorder != nil {
		s.recorder.ObserveClassification(doc.Label, doc.Confidence, time.Since(start))
	}
	return doc, nil
}

func (s *ClassificationService) observeBatchItem(failed bool) {
	if s.recorder != nil {
		s.recorder.ObserveBatchItem(failed)
	}
}

// runIsolated turns a panic in one item into that item's error.
func (s *ClassificationService) runIsolated(ctx context.Context, upload domain.Upload) (doc domain.ClassifiedDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", upload.Filename, r)
		}
	}()
	return s.run(ctx, upload)
}
