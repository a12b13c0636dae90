package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrPayloadTooLarge  = errors.New("payload too large")
	ErrMalformedPDF     = errors.New("malformed pdf structure")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
