package file

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Format tags the kind of source document.
type Format int

const (
	FormatUnknown Format = iota
	FormatPDF
	FormatHTML
)

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatHTML:
		return "html"
	default:
		return "unknown"
	}
}

// Document is a read-only handle to a source file.
type Document struct {
	Path   string
	Format Format
}

// Name returns the base file name with its extension stripped.
func (d Document) Name() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FormatFromExt maps a file extension (with or without the dot) to a Format.
func FormatFromExt(ext string) Format {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "pdf":
		return FormatPDF
	case "htm", "html":
		return FormatHTML
	default:
		return FormatUnknown
	}
}

// DocumentFromPath builds a Document, deriving the format from the extension.
func DocumentFromPath(path string) (Document, error) {
	format := FormatFromExt(filepath.Ext(path))
	if format == FormatUnknown {
		return Document{}, &ExtractionError{
			Path: path,
			Err:  fmt.Errorf("unsupported file type %q", filepath.Ext(path)),
		}
	}
	return Document{Path: path, Format: format}, nil
}

// TextExtractor turns one document into one text blob.
type TextExtractor interface {
	ExtractText(doc Document, policy Policy) (string, error)
}

// Core dispatches extraction to the extractor registered for the document format.
type Core struct {
	pdfExtractor  TextExtractor
	htmlExtractor TextExtractor
	logger        *zap.Logger
}

// NewCore creates a new Core instance with the required dependencies
func NewCore(pdfExtractor, htmlExtractor TextExtractor, logger *zap.Logger) *Core {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Core{
		pdfExtractor:  pdfExtractor,
		htmlExtractor: htmlExtractor,
		logger:        logger,
	}
}

// ExtractText implements TextExtractor.
func (c *Core) ExtractText(doc Document, policy Policy) (string, error) {
	return c.Extract(doc, policy)
}

// Extract produces the text of doc. The policy applies to PDFs only.
func (c *Core) Extract(doc Document, policy Policy) (string, error) {
	var extractor TextExtractor
	switch doc.Format {
	case FormatPDF:
		extractor = c.pdfExtractor
	case FormatHTML:
		extractor = c.htmlExtractor
	}
	if extractor == nil {
		return "", &ExtractionError{
			Path: doc.Path,
			Err:  errors.New("no extractor for format " + doc.Format.String()),
		}
	}

	c.logger.Info("Extracting text",
		zap.String("file", doc.Path),
		zap.Stringer("format", doc.Format))

	return extractor.ExtractText(doc, policy)
}
