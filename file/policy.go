package file

import (
	"strings"

	"golang.org/x/net/html"
)

// Marker replaces line breaks when Policy.LineBreaks is set. Chapter
// documents are XHTML, so the self-closing form is used.
const Marker = "<br/>"

// Policy holds the text cleanup switches for PDF extraction. The zero value
// returns raw page text concatenated without modification.
type Policy struct {
	// LineBreaks replaces "\n" with Marker.
	LineBreaks bool
	// TrimHeader drops the first line of every page after the first.
	TrimHeader bool
	// TrimFooter drops the last line of every page.
	TrimFooter bool
	// Strict fails with MalformedPageError when a trim finds no line break.
	// Otherwise the page is kept whole for that trim.
	Strict bool
	// EscapeText HTML-escapes raw page text before any substitution.
	EscapeText bool
}

// Delimiter is the line boundary the trims cut at.
func (p Policy) Delimiter() string {
	if p.LineBreaks {
		return Marker
	}
	return "\n"
}

// ApplyPolicy cleans and joins page texts. Pages are concatenated with no
// separator. skipped lists the 1-based pages where a trim found no delimiter
// and was skipped under the tolerant mode.
func ApplyPolicy(path string, pages []string, policy Policy) (text string, skipped []int, err error) {
	delim := policy.Delimiter()

	var sb strings.Builder
	for i, page := range pages {
		num := i + 1

		if policy.EscapeText {
			page = html.EscapeString(page)
		}
		if policy.LineBreaks {
			page = strings.ReplaceAll(page, "\n", Marker)
		}

		malformed := false
		if policy.TrimHeader && num > 1 {
			if _, body, ok := strings.Cut(page, delim); ok {
				page = body
			} else {
				malformed = true
			}
		}
		if policy.TrimFooter {
			if idx := strings.LastIndex(page, delim); idx >= 0 {
				page = page[:idx]
			} else {
				malformed = true
			}
		}

		if malformed {
			if policy.Strict {
				return "", nil, &MalformedPageError{Path: path, Page: num}
			}
			skipped = append(skipped, num)
		}

		sb.WriteString(page)
	}

	return sb.String(), skipped, nil
}
