package processor

import "io"

// PageExtractor defines the interface for page-level PDF text extraction
type PageExtractor interface {
	// ExtractPages returns the raw text of every page of a PDF file, in page order
	ExtractPages(filePath string) ([]string, error)

	// ExtractPagesFromReader returns the raw text of every page read from r
	ExtractPagesFromReader(r io.ReaderAt, size int64) ([]string, error)
}

// Client wraps the PageExtractor interface for easy swapping of implementations
type Client struct {
	extractor PageExtractor
}

// NewClient creates a new PDF processor client with the given extractor implementation
func NewClient(extractor PageExtractor) *Client {
	return &Client{
		extractor: extractor,
	}
}

// ExtractPages extracts per-page text from a PDF file
func (c *Client) ExtractPages(filePath string) ([]string, error) {
	return c.extractor.ExtractPages(filePath)
}
