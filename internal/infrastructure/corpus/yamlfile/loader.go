// Package yamlfile loads a reference corpus from YAML. Categories keep the
// order in which they are declared:
//
//	categories:
//	  invoice: "Invoice number, bill to, total amount due ..."
//	  bank_statement: "Account number, opening balance ..."
package yamlfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

func Load(path string) (domain.ReferenceCorpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ReferenceCorpus{}, fmt.Errorf("open corpus file: %w", err)
	}
	defer f.Close()

	corpus, err := Decode(f)
	if err != nil {
		return domain.ReferenceCorpus{}, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return corpus, nil
}

// Decode accepts either a mapping of label to text, or a sequence of
// {label, text} entries, under the top-level "categories" key.
func Decode(r io.Reader) (domain.ReferenceCorpus, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return domain.ReferenceCorpus{}, fmt.Errorf("read corpus: %w", err)
	}

	var doc struct {
		Categories yaml.Node `yaml:"categories"`
	}
	if err := yaml.NewDecoder(bytes.NewReader(raw)).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.ReferenceCorpus{}, domain.WrapError(domain.ErrInvalidInput, "decode corpus", errors.New("empty document"))
		}
		return domain.ReferenceCorpus{}, domain.WrapError(domain.ErrInvalidInput, "decode corpus", err)
	}

	var categories []domain.ReferenceCategory
	node := &doc.Categories
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				return domain.ReferenceCorpus{}, domain.WrapError(domain.ErrInvalidInput, "decode corpus",
					fmt.Errorf("line %d: text for %q must be a string", value.Line, key.Value))
			}
			categories = append(categories, domain.ReferenceCategory{Label: key.Value, Text: value.Value})
		}
	case yaml.SequenceNode:
		if err := node.Decode(&categories); err != nil {
			return domain.ReferenceCorpus{}, domain.WrapError(domain.ErrInvalidInput, "decode corpus", err)
		}
	case 0:
		return domain.ReferenceCorpus{}, domain.WrapError(domain.ErrInvalidInput, "decode corpus", errors.New(`missing "categories"`))
	default:
		return domain.ReferenceCorpus{}, domain.WrapError(domain.ErrInvalidInput, "decode corpus",
			fmt.Errorf("line %d: \"categories\" must be a mapping or a list", node.Line))
	}

	return domain.NewReferenceCorpus(categories...)
}
