package domain

import (
	"encoding/json"
	"io"
	"time"
)

// LabelUnknown is reported when no category clears the confidence threshold.
const LabelUnknown = "unknown"

// Upload is a named input whose bytes are opened on demand.
type Upload struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// ExtractedDocument is the cleaned text of one upload. Text is empty, never
// absent, when extraction failed.
type ExtractedDocument struct {
	SourceName  string    `json:"file_path"`
	Text        string    `json:"extracted_text"`
	ExtractedAt time.Time `json:"processed_at"`
}

// ClassifiedDocument carries the winning label and its cosine similarity.
// Label is LabelUnknown when Confidence is below the threshold, and also when
// no score was computable (empty text, zero vector), in which case Confidence
// is 0.
type ClassifiedDocument struct {
	SourceName   string    `json:"file_name"`
	Label        string    `json:"file_type"`
	Confidence   float64   `json:"confidence"`
	ExtractedAt  time.Time `json:"processed_at"`
	Text         string    `json:"text_content"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// BatchItem holds either a classification or a per-item error.
type BatchItem struct {
	SourceName string
	Document   *ClassifiedDocument
	Error      string
}

func (i BatchItem) Failed() bool {
	return i.Document == nil
}

func (i BatchItem) MarshalJSON() ([]byte, error) {
	if i.Document != nil {
		return json.Marshal(i.Document)
	}
	return json.Marshal(struct {
		FileName string `json:"file_name"`
		Error    string `json:"error"`
	}{
		FileName: i.SourceName,
		Error:    i.Error,
	})
}

type BatchResult struct {
	Processed int         `json:"processed"`
	Results   []BatchItem `json:"results"`
}

// Failures counts items that carry an error instead of a classification.
func (r BatchResult) Failures() int {
	n := 0
	for _, item := range r.Results {
		if item.Failed() {
			n++
		}
	}
	return n
}

type CategoryInfo struct {
	Labels    []string `json:"labels"`
	Threshold float64  `json:"confidence_threshold"`
}
