package processor

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LedongthucExtractor implements PageExtractor using github.com/ledongthuc/pdf
type LedongthucExtractor struct{}

// NewLedongthucExtractor creates a new instance of LedongthucExtractor
func NewLedongthucExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

// ExtractPages extracts the text of each page of a PDF file
func (e *LedongthucExtractor) ExtractPages(filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer f.Close()

	return e.extractPages(r)
}

// ExtractPagesFromReader extracts the text of each page of a PDF read from r
func (e *LedongthucExtractor) ExtractPagesFromReader(ra io.ReaderAt, size int64) ([]string, error) {
	r, err := pdf.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF: %w", err)
	}
	return e.extractPages(r)
}

// extractPages walks the document in page order. Each text row of a page
// becomes one line, so callers see the page's line structure as "\n".
// Pages without content yield an empty string to keep page numbering intact.
func (e *LedongthucExtractor) extractPages(r *pdf.Reader) (pages []string, err error) {
	// the parser panics on some malformed streams
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("failed to parse PDF: %v", rec)
		}
	}()

	numPages := r.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}

		lines := make([]string, 0, len(rows))
		for _, row := range rows {
			var sb strings.Builder
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			lines = append(lines, sb.String())
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}

	return pages, nil
}
