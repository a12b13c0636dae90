// Package ollama embeds text through a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/infrastructure/resilience"
)

type Config struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Resilience resilience.Config
}

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   resilience.NewExecutor(cfg.Resilience, logger),
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

// Embed returns one vector per input, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": e.client.model,
		"input": texts,
	}

	var response struct {
		Embeddings [][]float64 `json:"embeddings"`
	}
	err := e.client.executor.Execute(ctx, "ollama.embed", func(callCtx context.Context) error {
		return e.client.postJSON(callCtx, "/api/embed", request, &response, "embed")
	}, classifyOllamaError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("ollama embed", err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama embed: got %d embeddings for %d inputs", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrTemporary, "ollama embed", fmt.Errorf("empty embedding result"))
	}
	return vectors[0], nil
}
