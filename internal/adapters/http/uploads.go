package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

const defaultMultipartMemory = 32 << 20

var errNoFile = domain.WrapError(domain.ErrInvalidInput, "read upload", errors.New("no file provided"))

type uploadForm struct {
	form *multipart.Form
}

func limitBody(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	if maxBytes <= 0 {
		return nil
	}
	if r.ContentLength > maxBytes {
		return domain.WrapError(domain.ErrPayloadTooLarge, "read upload", fmt.Errorf("content length %d exceeds %d", r.ContentLength, maxBytes))
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	return nil
}

func classifyReadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.WrapError(domain.ErrPayloadTooLarge, "read upload", err)
	}
	return domain.WrapError(domain.ErrInvalidInput, "read upload", err)
}

// parseUploadForm caps the body at maxBytes. Requests that are not multipart
// behave like a form without files.
func parseUploadForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (*uploadForm, error) {
	if err := limitBody(w, r, maxBytes); err != nil {
		return nil, err
	}
	memory := int64(defaultMultipartMemory)
	if maxBytes > 0 {
		memory = min(memory, maxBytes)
	}

	err := r.ParseMultipartForm(memory)
	switch {
	case err == nil:
		return &uploadForm{form: r.MultipartForm}, nil
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		return &uploadForm{}, nil
	default:
		return nil, classifyReadError(err)
	}
}

// readBatchUploads streams the multipart body and returns, in body order, every
// file part whose form name is one of fields. ParseMultipartForm files parts
// with an empty filename as plain values; here they stay uploads so the batch
// can report them.
func readBatchUploads(w http.ResponseWriter, r *http.Request, maxBytes int64, fields ...string) ([]domain.Upload, error) {
	if err := limitBody(w, r, maxBytes); err != nil {
		return nil, err
	}

	mr, err := r.MultipartReader()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return nil, nil
		}
		return nil, classifyReadError(err)
	}

	var uploads []domain.Upload
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return uploads, nil
		}
		if err != nil {
			return nil, classifyReadError(err)
		}
		if !slices.Contains(fields, part.FormName()) || !isFilePart(part) {
			continue
		}

		data, err := io.ReadAll(part)
		if err != nil {
			return nil, classifyReadError(err)
		}
		uploads = append(uploads, domain.Upload{
			Filename: part.FileName(),
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(data)), nil
			},
		})
	}
}

// isFilePart reports whether the part declares a filename parameter, even an
// empty one.
func isFilePart(part *multipart.Part) bool {
	_, params, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	if err != nil {
		return false
	}
	_, ok := params["filename"]
	return ok
}

func (f *uploadForm) first(field string) (domain.Upload, bool) {
	if f.form == nil {
		return domain.Upload{}, false
	}
	headers := f.form.File[field]
	if len(headers) == 0 {
		return domain.Upload{}, false
	}
	return toUpload(headers[0]), true
}

func (f *uploadForm) close() {
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

func toUpload(header *multipart.FileHeader) domain.Upload {
	return domain.Upload{
		Filename: header.Filename,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}
