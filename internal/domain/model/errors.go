package model

import (
	"errors"
	"strings"
)

// Sentinel error kinds for this package.
var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotReady      = errors.New("model not loaded")
	ErrInference     = errors.New("inference failed")
)

// Issue describes one rejected field.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field problem found in a request, in canonical
// feature order. It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, is := range e.Issues {
		parts[i] = is.Field + ": " + is.Message
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Is reports ErrInvalidInput as the kind.
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// Field returns the first offending field.
func (e *ValidationError) Field() string {
	if len(e.Issues) == 0 {
		return ""
	}
	return e.Issues[0].Field
}
