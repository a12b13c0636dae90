package httpadapter

import (
	"net/http"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// mapError returns the status and the public message for err. Causes stay in
// the logs.
func mapError(err error) (int, string) {
	switch {
	case domain.IsKind(err, domain.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "File exceeds size limit"
	case domain.IsKind(err, domain.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType, "File type not allowed"
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "No file provided"
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable, "Embedding service unavailable"
	default:
		return http.StatusInternalServerError, "Error processing document"
	}
}
