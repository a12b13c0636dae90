package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

const DefaultConfidenceThreshold = 0.3

type referenceEmbedding struct {
	label  string
	vector []float64
}

// Classifier scores documents against reference embeddings computed once at
// construction. It is immutable afterwards and safe to share across requests.
type Classifier struct {
	embedder   ports.Embedder
	references []referenceEmbedding
	threshold  float64
	now        func() time.Time
	logger     *slog.Logger
}

func NewClassifier(
	ctx context.Context,
	embedder ports.Embedder,
	corpus domain.ReferenceCorpus,
	threshold float64,
	logger *slog.Logger,
) (*Classifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if embedder == nil {
		return nil, errors.New("classifier: embedder is nil")
	}
	if corpus.Len() == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "create classifier", errors.New("empty reference corpus"))
	}

	logger.Info("classifier_starting", "categories", corpus.Labels(), "threshold", threshold)

	categories := corpus.Categories()
	texts := make([]string, 0, len(categories))
	for _, category := range categories {
		texts = append(texts, category.Text)
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed reference corpus: %w", err)
	}
	if len(vectors) != len(categories) {
		return nil, fmt.Errorf("embed reference corpus: vectors/categories mismatch: %d/%d", len(vectors), len(categories))
	}

	references := make([]referenceEmbedding, 0, len(categories))
	for i, category := range categories {
		references = append(references, referenceEmbedding{label: category.Label, vector: vectors[i]})
	}
	logger.Info("reference_embeddings_created", "count", len(references))

	return &Classifier{
		embedder:   embedder,
		references: references,
		threshold:  threshold,
		now:        time.Now,
		logger:     logger,
	}, nil
}

func (c *Classifier) Threshold() float64 {
	return c.threshold
}

func (c *Classifier) Labels() []string {
	out := make([]string, 0, len(c.references))
	for _, ref := range c.references {
		out = append(out, ref.label)
	}
	return out
}

func (c *Classifier) Classify(ctx context.Context, doc domain.ExtractedDocument) (domain.ClassifiedDocument, error) {
	c.logger.Info("classifying_document", "file_name", doc.SourceName)

	vector, err := c.embedder.EmbedQuery(ctx, doc.Text)
	if err != nil {
		return domain.ClassifiedDocument{}, fmt.Errorf("embed document: %w", err)
	}

	scores := c.Scores(vector)
	c.logger.Debug("classification_scores", "file_name", doc.SourceName, "scores", scores)

	label, confidence := c.pick(scores)
	c.logger.Info("document_classified", "file_name", doc.SourceName, "label", label, "confidence", confidence)

	classifiedAt := c.now()
	if classifiedAt.Before(doc.ExtractedAt) {
		classifiedAt = doc.ExtractedAt
	}

	return domain.ClassifiedDocument{
		SourceName:   doc.SourceName,
		Label:        label,
		Confidence:   confidence,
		ExtractedAt:  doc.ExtractedAt,
		Text:         doc.Text,
		ClassifiedAt: classifiedAt,
	}, nil
}

// Scores returns the similarity of vector to every reference in corpus order.
func (c *Classifier) Scores(vector []float64) []float64 {
	scores := make([]float64, len(c.references))
	for i, ref := range c.references {
		scores[i] = CosineSimilarity(vector, ref.vector)
	}
	return scores
}

// pick takes the first maximum in corpus order. NaN scores never win; when
// nothing is comparable the result is unknown with zero confidence.
func (c *Classifier) pick(scores []float64) (string, float64) {
	best := -1
	for i, score := range scores {
		if math.IsNaN(score) {
			continue
		}
		if best < 0 || score > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return domain.LabelUnknown, 0
	}

	confidence := scores[best]
	if confidence < c.threshold {
		return domain.LabelUnknown, confidence
	}
	return c.references[best].label, confidence
}

// CosineSimilarity returns dot(a,b)/(|a|*|b|). Vectors of different length or
// with zero norm yield NaN.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.NaN()
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return math.NaN()
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
