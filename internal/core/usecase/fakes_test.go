package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func memUpload(name string, data []byte) domain.Upload {
	return domain.Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

type pageFake struct {
	text string
	ok   bool
	err  error
}

func (p pageFake) ExtractText() (string, bool, error) {
	return p.text, p.ok, p.err
}

type pdfDecoderFake struct {
	pages []ports.PDFPage
	err   error
	calls int
}

func (f *pdfDecoderFake) Open(data []byte) ([]ports.PDFPage, error) {
	f.calls++
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedPDF, "open pdf", errors.New("empty input"))
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type ocrFake struct {
	text  string
	err   error
	calls int
}

func (f *ocrFake) Recognize(context.Context, []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// keywordEmbedder maps text onto one axis per keyword, counting occurrences.
type keywordEmbedder struct {
	keywords []string
	err      error
	queries  int
}

func (e *keywordEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		out = append(out, e.vector(text))
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	e.queries++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector(text), nil
}

func (e *keywordEmbedder) vector(text string) []float64 {
	lower := strings.ToLower(text)
	v := make([]float64, len(e.keywords))
	for i, kw := range e.keywords {
		v[i] = float64(strings.Count(lower, kw))
	}
	return v
}

// fixedEmbedder returns queryVector for every query and refs for the corpus.
type fixedEmbedder struct {
	refs        [][]float64
	queryVector []float64
}

func (e *fixedEmbedder) Embed(context.Context, []string) ([][]float64, error) {
	return e.refs, nil
}

func (e *fixedEmbedder) EmbedQuery(context.Context, string) ([]float64, error) {
	return e.queryVector, nil
}

type panicEmbedder struct {
	keywordEmbedder
	trigger string
}

func (e *panicEmbedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if strings.Contains(text, e.trigger) {
		panic("embedding backend crashed")
	}
	return e.keywordEmbedder.EmbedQuery(ctx, text)
}

func testCorpus() domain.ReferenceCorpus {
	corpus, err := domain.NewReferenceCorpus(
		domain.ReferenceCategory{Label: "invoice", Text: "invoice"},
		domain.ReferenceCategory{Label: "bank_statement", Text: "statement"},
		domain.ReferenceCategory{Label: "drivers_license", Text: "license"},
	)
	if err != nil {
		panic(err)
	}
	return corpus
}

func failingUpload(name string) domain.Upload {
	return domain.Upload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return nil, fs.ErrPermission
		},
	}
}

type recorderFake struct {
	labels      []string
	batchOK     int
	batchFailed int
}

func (r *recorderFake) ObserveClassification(label string, _ float64, _ time.Duration) {
	r.labels = append(r.labels, label)
}

func (r *recorderFake) ObserveBatchItem(failed bool) {
	if failed {
		r.batchFailed++
		return
	}
	r.batchOK++
}
