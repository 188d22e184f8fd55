package config

import (
	"errors"
	"fmt"
)

// ErrParameter matches every ParameterError.
var ErrParameter = errors.New("invalid parameter")

// ParameterError reports a malformed or missing command line setting.
type ParameterError struct {
	Field  string
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid parameters: %s", e.Reason)
	}
	return fmt.Sprintf("invalid parameter --%s: %s", e.Field, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return ErrParameter
}
