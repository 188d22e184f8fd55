package file

import (
	"go.uber.org/zap"
)

// PageSource yields the raw text of each page of a PDF.
type PageSource interface {
	ExtractPages(filePath string) ([]string, error)
}

type PDFExtractor struct {
	pages  PageSource
	logger *zap.Logger
}

func NewPDFExtractor(pages PageSource, logger *zap.Logger) *PDFExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExtractor{
		pages:  pages,
		logger: logger,
	}
}

// ExtractText reads every page of doc and applies policy to it.
func (p *PDFExtractor) ExtractText(doc Document, policy Policy) (string, error) {
	pages, err := p.pages.ExtractPages(doc.Path)
	if err != nil {
		p.logger.Error("Failed to read PDF", zap.String("file", doc.Path), zap.Error(err))
		return "", &ExtractionError{Path: doc.Path, Err: err}
	}

	text, skipped, err := ApplyPolicy(doc.Path, pages, policy)
	if err != nil {
		return "", err
	}
	for _, page := range skipped {
		p.logger.Debug("No line break on page, trim skipped",
			zap.String("file", doc.Path),
			zap.Int("page", page))
	}

	p.logger.Info("PDF text extracted",
		zap.String("file", doc.Path),
		zap.Int("pages", len(pages)),
		zap.Int("chars", len(text)))

	return text, nil
}
