// Package hashing is an offline embedder: tokens are hashed into a fixed
// number of buckets and weighted with BM25-style term saturation.
package hashing

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	DefaultDimensions = 1024
	saturationK       = 1.2
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "to": {}, "for": {}, "with": {},
	"by": {}, "from": {}, "in": {}, "on": {}, "at": {}, "or": {}, "is": {}, "be": {},
}

type Embedder struct {
	dims int
}

func New(dimensions int) *Embedder {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Embedder{dims: dimensions}
}

func (e *Embedder) Dimensions() int {
	return e.dims
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, 0, len(texts))
	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, e.encode(text))
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.encode(text), nil
}

// encode returns an L2-normalized vector. Text without tokens maps to the
// zero vector.
func (e *Embedder) encode(text string) []float64 {
	termFreq := make(map[int]float64, 64)
	for _, token := range tokenize(text) {
		termFreq[e.bucket(token)]++
	}

	vec := make([]float64, e.dims)
	var norm float64
	for idx, tf := range termFreq {
		weight := (tf * (saturationK + 1.0)) / (tf + saturationK)
		vec[idx] = weight
		norm += weight * weight
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func (e *Embedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dims))
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 32)
	var b strings.Builder
	flush := func() {
		if b.Len() == 0 {
			return
		}
		token := b.String()
		b.Reset()
		if _, stop := stopWords[token]; !stop {
			out = append(out, token)
		}
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return out
}
