package book

import (
	"errors"
	"fmt"
)

// ErrSaved is returned when a chapter is added to a book that was already saved.
var ErrSaved = errors.New("book: already saved")

// AssetError reports a cover, illustration or stylesheet that could not be read.
type AssetError struct {
	// Kind is "cover", "illustration" or "stylesheet".
	Kind string
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("book: failed to load %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// SerializationError reports a failure writing the output package.
type SerializationError struct {
	Path string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("book: failed to write %s: %v", e.Path, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}
