package ledongthuc

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/document-classifier/internal/core/domain"
	"github.com/kirillkom/document-classifier/internal/core/ports"
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Open parses the document structure. Header, xref and trailer failures are
// reported as domain.ErrMalformedPDF.
func (d *Decoder) Open(data []byte) (pages []ports.PDFPage, err error) {
	if len(data) == 0 {
		return nil, domain.WrapError(domain.ErrMalformedPDF, "open pdf", errors.New("empty input"))
	}

	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = domain.WrapError(domain.ErrMalformedPDF, "open pdf", fmt.Errorf("%v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrMalformedPDF, "open pdf", err)
	}

	total := reader.NumPage()
	pages = make([]ports.PDFPage, 0, total)
	for i := 1; i <= total; i++ {
		pages = append(pages, page{num: i, page: reader.Page(i)})
	}
	return pages, nil
}

type page struct {
	num  int
	page pdf.Page
}

func (p page) ExtractText() (text string, ok bool, err error) {
	if p.page.V.IsNull() {
		return "", false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
			err = fmt.Errorf("page %d: %v", p.num, r)
		}
	}()

	text, err = p.page.GetPlainText(nil)
	if err != nil {
		return "", false, fmt.Errorf("page %d: %w", p.num, err)
	}
	return text, text != "", nil
}
