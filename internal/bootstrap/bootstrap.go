package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
	"github.com/kirillkom/document-classifier/internal/core/usecase"
	"github.com/kirillkom/document-classifier/internal/infrastructure/corpus/yamlfile"
	"github.com/kirillkom/document-classifier/internal/infrastructure/embedding/hashing"
	"github.com/kirillkom/document-classifier/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/document-classifier/internal/infrastructure/ocr/tesseract"
	"github.com/kirillkom/document-classifier/internal/infrastructure/pdf/ledongthuc"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
	"github.com/kirillkom/document-classifier/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Service     ports.DocumentClassificationService
	HTTPMetrics *metrics.HTTPServerMetrics
}

// New builds the classification pipeline once. Reference embeddings are
// computed here, so a misconfigured embedder fails startup.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	corpus, err := loadCorpus(cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(cfg, logger)
	if err != nil {
		return nil, err
	}

	classifier, err := usecase.NewClassifier(ctx, embedder, corpus, cfg.ConfidenceThreshold, logger)
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}

	ocr := tesseract.New(tesseract.Config{
		Binary:   cfg.TesseractPath,
		Language: cfg.TesseractLang,
		PSM:      cfg.TesseractPSM,
		Timeout:  time.Duration(cfg.OCRTimeoutSeconds) * time.Second,
	}, logger)
	extractor := usecase.NewExtractor(ledongthuc.NewDecoder(), ocr, logger)

	service := usecase.NewClassificationService(extractor, classifier, usecase.NewAllowList(cfg.AllowedExtensions), logger)

	app := &App{Config: cfg, Service: service}
	if cfg.MetricsEnabled {
		app.HTTPMetrics = metrics.NewHTTPServerMetrics("api")
		service.WithRecorder(metrics.NewClassificationMetrics("api", app.HTTPMetrics.Registerer()))
	}
	return app, nil
}

func loadCorpus(cfg config.Config) (domain.ReferenceCorpus, error) {
	if cfg.ReferenceCorpusPath == "" {
		return domain.DefaultReferenceCorpus(), nil
	}
	corpus, err := yamlfile.Load(cfg.ReferenceCorpusPath)
	if err != nil {
		return domain.ReferenceCorpus{}, fmt.Errorf("init reference corpus: %w", err)
	}
	return corpus, nil
}

func newEmbedder(cfg config.Config, logger *slog.Logger) (ports.Embedder, error) {
	switch cfg.EmbedProvider {
	case "hashing":
		return hashing.New(cfg.HashingDimensions), nil
	case "ollama":
		res := resilience.DefaultConfig()
		res.MaxAttempts = cfg.EmbedRetryMaxAttempts
		res.BreakerEnabled = cfg.EmbedBreakerEnabled
		client := ollama.New(ollama.Config{
			BaseURL:    cfg.OllamaURL,
			Model:      cfg.OllamaEmbedModel,
			Timeout:    time.Duration(cfg.EmbedTimeoutSeconds) * time.Second,
			Resilience: res,
		}, logger)
		return ollama.NewEmbedder(client), nil
	default:
		return nil, fmt.Errorf("unknown embed provider %q", cfg.EmbedProvider)
	}
}
