package book

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"time"

	"epubs/file"

	"go.uber.org/zap"
)

type packageEntry struct {
	name string
	data []byte
}

// Save finalizes the table of contents and writes the package to outputPath.
// stylesheetPath, when set, replaces DefaultStyle as the single CSS resource.
// The file is written to a temp name and renamed, so a failed save leaves no
// output behind. With a fixed clock, saving the same state twice yields
// identical bytes.
func (b *Book) Save(outputPath, stylesheetPath string) error {
	style := []byte(DefaultStyle)
	if stylesheetPath != "" {
		data, err := os.ReadFile(stylesheetPath)
		if err != nil {
			return &AssetError{Kind: "stylesheet", Path: stylesheetPath, Err: err}
		}
		style = data
	}

	modified := b.now().UTC().Truncate(time.Second)
	entries, err := b.packageEntries(style, modified)
	if err != nil {
		return &SerializationError{Path: outputPath, Err: err}
	}

	err = file.WriteAtomic(outputPath, func(w io.Writer) error {
		return writePackage(w, entries, modified)
	})
	if err != nil {
		b.logger.Error("Failed to write book", zap.String("output", outputPath), zap.Error(err))
		return &SerializationError{Path: outputPath, Err: err}
	}
	b.saved = true

	b.logger.Info("Book saved",
		zap.String("output", outputPath),
		zap.Int("chapters", len(b.chapters)),
		zap.Int("spine_items", len(b.spine)))

	return nil
}

func (b *Book) packageEntries(style []byte, modified time.Time) ([]packageEntry, error) {
	container, err := b.buildContainer()
	if err != nil {
		return nil, fmt.Errorf("container: %w", err)
	}
	opf, err := b.buildOPF(modified)
	if err != nil {
		return nil, fmt.Errorf("opf: %w", err)
	}

	data := documentData{
		Title:      b.title,
		Language:   b.language,
		Identifier: b.identifier,
		TOC:        b.navEntries(),
	}
	nav, err := render(navTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("nav: %w", err)
	}
	ncx, err := render(ncxTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("ncx: %w", err)
	}

	entries := []packageEntry{
		{"META-INF/container.xml", container},
		{packageDir + "/" + opfFile, opf},
		{packageDir + "/" + navFile, nav},
		{packageDir + "/" + ncxFile, ncx},
		{packageDir + "/" + styleFile, style},
	}

	if b.cover != nil {
		coverData := data
		coverData.Cover = b.cover.FileName
		page, err := render(coverTemplate, coverData)
		if err != nil {
			return nil, fmt.Errorf("cover: %w", err)
		}
		entries = append(entries,
			packageEntry{packageDir + "/" + b.cover.FileName, b.cover.Data},
			packageEntry{packageDir + "/" + coverFile, page},
		)
	}

	for _, c := range b.chapters {
		chapterData := data
		chapterData.Title = c.Title
		chapterData.Markup = c.Markup
		page, err := render(chapterTemplate, chapterData)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.ID, err)
		}
		entries = append(entries, packageEntry{packageDir + "/" + c.FileName, page})
		if c.Illustration != nil {
			entries = append(entries, packageEntry{packageDir + "/" + c.Illustration.FileName, c.Illustration.Data})
		}
	}

	return entries, nil
}

// writePackage writes the zip container. The mimetype entry goes first,
// uncompressed and without extra fields.
func writePackage(w io.Writer, entries []packageEntry, modified time.Time) error {
	zw := zip.NewWriter(w)

	mw, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return fmt.Errorf("mimetype: %w", err)
	}
	if _, err := io.WriteString(mw, epubMime); err != nil {
		return fmt.Errorf("mimetype: %w", err)
	}

	for _, e := range entries {
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
	}

	return zw.Close()
}

// navEntries is the TOC as written to nav.xhtml and toc.ncx. Both documents
// need at least one entry, so a book without chapters points at its cover
// page, or at the nav document itself.
func (b *Book) navEntries() []TOCEntry {
	if len(b.toc) > 0 {
		return b.toc
	}
	if b.cover != nil {
		return []TOCEntry{{Title: "Cover", Href: coverFile}}
	}
	return []TOCEntry{{Title: b.title, Href: navFile}}
}
