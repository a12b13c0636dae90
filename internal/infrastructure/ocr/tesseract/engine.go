// Package tesseract recognizes text in images with the tesseract CLI.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

type Config struct {
	Binary   string // binary name or absolute path; empty -> "tesseract"
	Language string // default "eng"
	PSM      int    // page segmentation mode; 0 keeps the tesseract default
	Timeout  time.Duration
}

type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return NewWithRunner(cfg, execRunner{logger: logger}, logger)
}

func NewWithRunner(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize rejects payloads that are not images before invoking tesseract.
func (e *Engine) Recognize(ctx context.Context, image []byte) (string, error) {
	detected := mimetype.Detect(image)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", domain.WrapError(domain.ErrUnsupportedImage, "recognize image", fmt.Errorf("detected %s", detected.String()))
	}

	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	// tesseract stdin stdout -l <lang> [--psm N]
	args := []string{"stdin", "stdout", "-l", e.cfg.Language}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}

	out, errb, err := e.runner.Run(ctx, bytes.NewReader(image), e.cfg.Binary, args...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg == "" {
			return "", fmt.Errorf("tesseract: %w", err)
		}
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(msg, 512))
	}

	e.logger.Debug("ocr_completed", "mime_type", detected.String(), "chars", len(out))
	return string(out), nil
}
