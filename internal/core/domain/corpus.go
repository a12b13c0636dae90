package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ReferenceCategory anchors one label in embedding space.
type ReferenceCategory struct {
	Label string `json:"label" yaml:"label"`
	Text  string `json:"text" yaml:"text"`
}

// ReferenceCorpus is an ordered, immutable label -> reference text mapping.
// Iteration order is declaration order and decides ties during classification.
type ReferenceCorpus struct {
	categories []ReferenceCategory
}

func NewReferenceCorpus(categories ...ReferenceCategory) (ReferenceCorpus, error) {
	if len(categories) == 0 {
		return ReferenceCorpus{}, WrapError(ErrInvalidInput, "build reference corpus", errors.New("no categories"))
	}

	seen := make(map[string]struct{}, len(categories))
	out := make([]ReferenceCategory, 0, len(categories))
	for i, category := range categories {
		label := strings.TrimSpace(category.Label)
		text := strings.TrimSpace(category.Text)
		switch {
		case label == "":
			return ReferenceCorpus{}, WrapError(ErrInvalidInput, "build reference corpus", fmt.Errorf("category %d has empty label", i))
		case label == LabelUnknown:
			return ReferenceCorpus{}, WrapError(ErrInvalidInput, "build reference corpus", fmt.Errorf("label %q is reserved", LabelUnknown))
		case text == "":
			return ReferenceCorpus{}, WrapError(ErrInvalidInput, "build reference corpus", fmt.Errorf("category %q has empty text", label))
		}
		if _, dup := seen[label]; dup {
			return ReferenceCorpus{}, WrapError(ErrInvalidInput, "build reference corpus", fmt.Errorf("duplicate label %q", label))
		}
		seen[label] = struct{}{}
		out = append(out, ReferenceCategory{Label: label, Text: text})
	}
	return ReferenceCorpus{categories: out}, nil
}

// Categories returns a copy in declaration order.
func (c ReferenceCorpus) Categories() []ReferenceCategory {
	out := make([]ReferenceCategory, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c ReferenceCorpus) Labels() []string {
	out := make([]string, 0, len(c.categories))
	for _, category := range c.categories {
		out = append(out, category.Label)
	}
	return out
}

func (c ReferenceCorpus) Len() int {
	return len(c.categories)
}

// DefaultReferenceCorpus is used when no corpus file is configured.
func DefaultReferenceCorpus() ReferenceCorpus {
	corpus, err := NewReferenceCorpus(
		ReferenceCategory{
			Label: "invoice",
			Text: "Invoice from a company to a customer. Invoice number, issue date, due date, bill to customer " +
				"company name, address, phone, email, website. Item description, quantity, unit price, subtotal, " +
				"tax, total amount due, payment terms.",
		},
		ReferenceCategory{
			Label: "bank_statement",
			Text: "Bank statement for an account holder. Bank name, account number, statement period, opening " +
				"balance, closing balance. Transactions with date, description, debit, credit: direct deposit, " +
				"ACH payment, check deposit, card purchase, online transfer, withdrawal, loan repayment.",
		},
		ReferenceCategory{
			Label: "drivers_license",
			Text: "Driver license identification card issued by a state department of motor vehicles. License " +
				"number, class, date of birth, issue date, expiration date, sex, height, weight, eyes, hair, " +
				"restrictions, endorsements, holder name and home address, signature.",
		},
	)
	if err != nil {
		panic(err)
	}
	return corpus
}
