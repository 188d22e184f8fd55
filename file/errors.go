package file

import (
	"errors"
	"fmt"
)

// ErrMalformedPage is matched by every MalformedPageError.
var ErrMalformedPage = errors.New("page has no line-break marker")

// ExtractionError reports a source document that could not be opened or parsed.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract text from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// MalformedPageError reports a page that a header or footer trim was requested
// for, but that holds no line-break marker. Only raised under Policy.Strict.
type MalformedPageError struct {
	Path string
	Page int
}

func (e *MalformedPageError) Error() string {
	return fmt.Sprintf("%s page %d: %v", e.Path, e.Page, ErrMalformedPage)
}

func (e *MalformedPageError) Unwrap() error {
	return ErrMalformedPage
}
