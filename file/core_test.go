package file

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

type fakePages struct {
	pages map[string][]string
}

func (f *fakePages) ExtractPages(filePath string) ([]string, error) {
	pages, ok := f.pages[filePath]
	if !ok {
		return nil, errors.New("not a PDF file")
	}
	return pages, nil
}

func TestDocumentFromPath(t *testing.T) {
	testCases := []struct {
		path    string
		format  Format
		name    string
		wantErr bool
	}{
		{"books/A_BIO.pdf", FormatPDF, "A_BIO", false},
		{"books/Chapter.PDF", FormatPDF, "Chapter", false},
		{"site/page.htm", FormatHTML, "page", false},
		{"site/page.html", FormatHTML, "page", false},
		{"readme.txt", FormatUnknown, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			doc, err := DocumentFromPath(tc.path)
			if tc.wantErr {
				var extErr *ExtractionError
				if !errors.As(err, &extErr) {
					t.Fatalf("expected ExtractionError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Format != tc.format {
				t.Errorf("expected format %v, got %v", tc.format, doc.Format)
			}
			if doc.Name() != tc.name {
				t.Errorf("expected name %q, got %q", tc.name, doc.Name())
			}
		})
	}
}

func TestCore_ExtractPDF(t *testing.T) {
	logger := zaptest.NewLogger(t)
	pages := &fakePages{pages: map[string][]string{
		"talk.pdf": {"Oral History\nintro\n1", "Oral History\nrest\n2"},
	}}
	core := NewCore(NewPDFExtractor(pages, logger), NewHTMLExtractor(false, logger), logger)

	text, err := core.Extract(Document{Path: "talk.pdf", Format: FormatPDF},
		Policy{LineBreaks: true, TrimHeader: true, TrimFooter: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Oral History<br/>introrest" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestCore_ExtractPDFFailure(t *testing.T) {
	logger := zaptest.NewLogger(t)
	core := NewCore(NewPDFExtractor(&fakePages{}, logger), nil, logger)

	_, err := core.Extract(Document{Path: "broken.pdf", Format: FormatPDF}, Policy{})
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if extErr.Path != "broken.pdf" {
		t.Errorf("expected path broken.pdf, got %q", extErr.Path)
	}
}

func TestCore_ExtractHTMLIgnoresPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter.htm")
	raw := "<html><body><p>line one\nline two</p></body></html>"
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	logger := zaptest.NewLogger(t)
	core := NewCore(nil, NewHTMLExtractor(false, logger), logger)

	text, err := core.Extract(Document{Path: path, Format: FormatHTML},
		Policy{LineBreaks: true, TrimHeader: true, TrimFooter: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != raw {
		t.Errorf("expected raw content, got %q", text)
	}
}

func TestCore_MissingHTML(t *testing.T) {
	core := NewCore(nil, NewHTMLExtractor(false, nil), nil)

	_, err := core.Extract(Document{Path: filepath.Join(t.TempDir(), "nope.htm"), Format: FormatHTML}, Policy{})
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}

func TestCore_UnregisteredFormat(t *testing.T) {
	core := NewCore(nil, nil, nil)

	_, err := core.Extract(Document{Path: "x.pdf", Format: FormatPDF}, Policy{})
	var extErr *ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
}
