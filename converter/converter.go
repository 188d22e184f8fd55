package converter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"epubs/book"
	"epubs/file"

	"go.uber.org/zap"
)

// BookMeta is the part of the configuration the book builder needs.
type BookMeta struct {
	Title      string
	Author     string
	Language   string
	CoverImage string
	Stylesheet string
}

// Driver runs the conversion modes. Every mode fails fast on the first
// error and commits no output file in that case.
type Driver struct {
	extractor file.TextExtractor
	policy    file.Policy
	logger    *zap.Logger
	bookOpts  []book.Option
}

func NewDriver(extractor file.TextExtractor, policy file.Policy, logger *zap.Logger, bookOpts ...book.Option) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		extractor: extractor,
		policy:    policy,
		logger:    logger,
		bookOpts:  append([]book.Option{book.WithLogger(logger)}, bookOpts...),
	}
}

// ListDocuments returns the files in dir whose extension matches format and
// whose name contains filter, case-insensitively. An empty filter matches
// everything. Results are sorted by name.
func ListDocuments(dir string, format file.Format, filter string) ([]file.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	filter = strings.ToLower(filter)
	var docs []file.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if file.FormatFromExt(filepath.Ext(name)) != format {
			continue
		}
		if !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		docs = append(docs, file.Document{Path: filepath.Join(dir, name), Format: format})
	}

	sort.Slice(docs, func(i, j int) bool {
		return filepath.Base(docs[i].Path) < filepath.Base(docs[j].Path)
	})
	return docs, nil
}

// ConvertFile builds a one-chapter book from a single document of the given
// format. The chapter is titled after the file name.
func (d *Driver) ConvertFile(input string, format file.Format, output string, meta BookMeta) error {
	doc, err := documentOf(input, format)
	if err != nil {
		return err
	}
	return d.convert([]file.Document{doc}, output, meta)
}

// documentOf rejects an input whose extension does not match format.
func documentOf(input string, format file.Format) (file.Document, error) {
	doc, err := file.DocumentFromPath(input)
	if err != nil {
		return file.Document{}, err
	}
	if doc.Format != format {
		return file.Document{}, &file.ExtractionError{
			Path: input,
			Err:  fmt.Errorf("expected a %s document, got %s", format, doc.Format),
		}
	}
	return doc, nil
}

// ConvertDirectory appends every matching document of dir as a chapter of one
// book and saves it once at the end.
func (d *Driver) ConvertDirectory(dir string, format file.Format, filter, output string, meta BookMeta) error {
	docs, err := ListDocuments(dir, format, filter)
	if err != nil {
		return err
	}
	d.logger.Info("Documents selected",
		zap.String("directory", dir),
		zap.Stringer("format", format),
		zap.String("filter", filter),
		zap.Int("count", len(docs)))

	return d.convert(docs, output, meta)
}

func (d *Driver) convert(docs []file.Document, output string, meta BookMeta) error {
	b, err := book.New(meta.Title, meta.Author, meta.CoverImage, meta.Language, d.bookOpts...)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		text, err := d.extractor.ExtractText(doc, d.policy)
		if err != nil {
			return err
		}
		if err := b.AddChapter(doc.Name(), text, illustrationFor(doc)); err != nil {
			return err
		}
	}

	return b.Save(output, meta.Stylesheet)
}

// illustrationFor returns the same-name .jpg next to an HTML document, if any.
func illustrationFor(doc file.Document) string {
	if doc.Format != file.FormatHTML {
		return ""
	}
	jpg := strings.TrimSuffix(doc.Path, filepath.Ext(doc.Path)) + ".jpg"
	if info, err := os.Stat(jpg); err == nil && !info.IsDir() {
		return jpg
	}
	return ""
}

// FileToText writes one PDF as a name/text record to output.
func (d *Driver) FileToText(input, output string) error {
	doc, err := documentOf(input, file.FormatPDF)
	if err != nil {
		return err
	}
	return d.writeText([]file.Document{doc}, output)
}

// DirectoryToText writes every matching PDF of dir to one text file, each as
// its name, a newline, then its text. No delimiter separates records, so
// chapter boundaries cannot be recovered reliably when names recur.
func (d *Driver) DirectoryToText(dir, filter, output string) error {
	docs, err := ListDocuments(dir, file.FormatPDF, filter)
	if err != nil {
		return err
	}
	d.logger.Info("Documents selected",
		zap.String("directory", dir),
		zap.String("filter", filter),
		zap.Int("count", len(docs)))

	return d.writeText(docs, output)
}

func (d *Driver) writeText(docs []file.Document, output string) error {
	// extract everything first so a failure leaves no output behind
	records := make([]string, 0, len(docs))
	for _, doc := range docs {
		text, err := d.extractor.ExtractText(doc, d.policy)
		if err != nil {
			return err
		}
		records = append(records, doc.Name()+"\n"+text)
	}

	err := file.WriteAtomic(output, func(w io.Writer) error {
		for _, record := range records {
			if _, err := io.WriteString(w, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &book.SerializationError{Path: output, Err: err}
	}

	d.logger.Info("Text written",
		zap.String("output", output),
		zap.Int("documents", len(docs)))
	return nil
}
