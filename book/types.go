package book

// Chapter is one titled unit of book content.
type Chapter struct {
	// ID is the manifest and spine id, e.g. "chapter_1".
	ID string

	// Title is the heading and table-of-contents label.
	Title string

	// FileName is the chapter document path inside the package directory.
	FileName string

	// Markup is the rendered body content: optional image block, heading, paragraph.
	Markup string

	// Illustration is the embedded image, nil when the chapter has none.
	Illustration *Asset
}

// TOCEntry is a table-of-contents link. Entries mirror the chapters 1:1.
type TOCEntry struct {
	Title string
	Href  string
}

// Asset is a binary resource embedded in the package.
type Asset struct {
	ID        string
	FileName  string
	MediaType string
	Data      []byte
}
