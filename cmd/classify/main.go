// Command classify runs the batch pipeline over local files and prints the
// batch result as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kirillkom/document-classifier/internal/bootstrap"
	"github.com/kirillkom/document-classifier/internal/config"
	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/observability/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	flags := flag.NewFlagSet("classify", flag.ContinueOnError)
	flags.SetOutput(stderr)
	indent := flags.Bool("pretty", false, "indent JSON output")
	corpusPath := flags.String("corpus", "", "reference corpus YAML (overrides REFERENCE_CORPUS_PATH)")
	provider := flags.String("embedder", "", "ollama or hashing (overrides EMBED_PROVIDER)")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: classify [flags] file...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return 2
	}

	cfg := config.Load()
	cfg.MetricsEnabled = false
	if *corpusPath != "" {
		cfg.ReferenceCorpusPath = *corpusPath
	}
	if *provider != "" {
		cfg.EmbedProvider = *provider
	}
	logger := logging.New(stderr, "classify", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap_failed", "error", err)
		return 1
	}

	result := app.Service.ClassifyBatch(ctx, fileUploads(flags.Args()))

	enc := json.NewEncoder(stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		logger.Error("write_result_failed", "error", err)
		return 1
	}
	if result.Failures() > 0 {
		return 1
	}
	return 0
}

// fileUploads names each upload by its base name, as a browser would.
func fileUploads(paths []string) []domain.Upload {
	uploads := make([]domain.Upload, 0, len(paths))
	for _, path := range paths {
		uploads = append(uploads, domain.Upload{
			Filename: filepath.Base(path),
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}
	return uploads
}
