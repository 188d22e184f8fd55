package book

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const (
	DefaultLanguage = "en"

	// DefaultStyle is used when Save is given no stylesheet.
	DefaultStyle = "BODY {color: white;}"

	navID       = "nav"
	coverPageID = "cover"
	styleFile   = "style/nav.css"
)

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// Option configures a Book.
type Option func(*Book)

// WithClock sets the clock used for dcterms:modified and zip entry times.
func WithClock(now func() time.Time) Option {
	return func(b *Book) {
		b.now = now
	}
}

// WithIdentifier overrides the derived urn:uuid identifier.
func WithIdentifier(id string) Option {
	return func(b *Book) {
		b.identifier = id
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(b *Book) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Book accumulates chapters for one output e-book. It is not safe for
// concurrent use.
type Book struct {
	title      string
	author     string
	language   string
	identifier string

	cover    *Asset
	chapters []Chapter
	toc      []TOCEntry
	spine    []string

	now    func() time.Time
	logger *zap.Logger
	saved  bool
}

// New creates an empty book. A non-empty coverImagePath is loaded eagerly
// and adds a cover page ahead of the navigation page in the spine.
func New(title, author, coverImagePath, language string, opts ...Option) (*Book, error) {
	if language == "" {
		language = DefaultLanguage
	}

	b := &Book{
		title:    title,
		author:   author,
		language: language,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.identifier == "" {
		b.identifier = "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(title+"\x00"+author)).String()
	}

	if coverImagePath != "" {
		cover, err := loadImage("cover", coverImagePath, "cover-image", "images/cover")
		if err != nil {
			return nil, err
		}
		b.cover = cover
		b.spine = append(b.spine, coverPageID)
	}
	b.spine = append(b.spine, navID)

	b.logger.Info("Book created",
		zap.String("title", title),
		zap.String("author", author),
		zap.Bool("cover", b.cover != nil))

	return b, nil
}

// AddChapter appends a chapter. body is inserted verbatim, so callers must
// escape it themselves. An empty illustrationPath renders no image block.
func (b *Book) AddChapter(title, body, illustrationPath string) error {
	if b.saved {
		return ErrSaved
	}

	id := fmt.Sprintf("chapter_%d", len(b.spine))
	chapter := Chapter{
		ID:       id,
		Title:    title,
		FileName: id + ".xhtml",
	}

	if illustrationPath != "" {
		img, err := loadImage("illustration", illustrationPath, id+"_image", "images/"+id)
		if err != nil {
			return err
		}
		chapter.Illustration = img
	}

	chapter.Markup = renderChapter(chapter, body)

	b.chapters = append(b.chapters, chapter)
	b.toc = append(b.toc, TOCEntry{Title: title, Href: chapter.FileName})
	b.spine = append(b.spine, id)

	b.logger.Debug("Chapter added",
		zap.String("id", id),
		zap.String("title", title),
		zap.Int("body_length", len(body)))

	return nil
}

func renderChapter(c Chapter, body string) string {
	var sb strings.Builder
	if c.Illustration != nil {
		fmt.Fprintf(&sb, `<div class="illustration"><img src="%s" alt="%s" style="max-width: 100%%; width: 600px;"/></div>`,
			html.EscapeString(c.Illustration.FileName), html.EscapeString(c.Title))
		sb.WriteString("\n")
	}
	sb.WriteString("<h1>" + html.EscapeString(c.Title) + "</h1>\n")
	sb.WriteString("<p>" + body + "</p>")
	return sb.String()
}

// Title returns the book title.
func (b *Book) Title() string { return b.title }

// Identifier returns the package unique identifier.
func (b *Book) Identifier() string { return b.identifier }

// Chapters returns the chapters in reading order.
func (b *Book) Chapters() []Chapter {
	return append([]Chapter(nil), b.chapters...)
}

// TOC returns the table of contents in reading order.
func (b *Book) TOC() []TOCEntry {
	return append([]TOCEntry(nil), b.toc...)
}

// Spine returns the spine item ids: optional cover page, nav, then chapters.
func (b *Book) Spine() []string {
	return append([]string(nil), b.spine...)
}

func loadImage(kind, path, id, baseName string) (*Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AssetError{Kind: kind, Path: path, Err: err}
	}

	ext := strings.ToLower(filepath.Ext(path))
	mediaType, ok := imageTypes[ext]
	if !ok {
		mediaType = http.DetectContentType(data)
		if !strings.HasPrefix(mediaType, "image/") {
			return nil, &AssetError{Kind: kind, Path: path, Err: fmt.Errorf("not an image (%s)", mediaType)}
		}
	}
	if ext == "" {
		ext = ".img"
	}

	return &Asset{
		ID:        id,
		FileName:  baseName + ext,
		MediaType: mediaType,
		Data:      data,
	}, nil
}
