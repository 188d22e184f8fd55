package file

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// HTMLExtractor returns HTML files as they are. The PDF policy is never
// applied here. With readable set, only the readability article body is kept.
type HTMLExtractor struct {
	readable bool
	logger   *zap.Logger
}

func NewHTMLExtractor(readable bool, logger *zap.Logger) *HTMLExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLExtractor{
		readable: readable,
		logger:   logger,
	}
}

func (h *HTMLExtractor) ExtractText(doc Document, _ Policy) (string, error) {
	data, err := os.ReadFile(doc.Path)
	if err != nil {
		return "", &ExtractionError{Path: doc.Path, Err: err}
	}
	if !h.readable {
		return string(data), nil
	}

	abs, err := filepath.Abs(doc.Path)
	if err != nil {
		abs = doc.Path
	}
	pageURL := &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		h.logger.Error("readability extraction failed", zap.String("file", doc.Path), zap.Error(err))
		return "", &ExtractionError{Path: doc.Path, Err: fmt.Errorf("readability: %w", err)}
	}

	h.logger.Debug("readability_extraction_result",
		zap.String("file", doc.Path),
		zap.String("title", article.Title),
		zap.Int("length", article.Length))

	return article.Content, nil
}
