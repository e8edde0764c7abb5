package util

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrSessionNotFound       = errors.New("session not found")
	ErrStaleSubmission       = errors.New("submission does not match the current page")
	ErrConsentRequired       = errors.New("consent must be given before continuing")
	ErrSessionComplete       = errors.New("session is already complete")
	ErrUnsupportedLocale     = errors.New("unsupported locale")
	ErrIncompleteResponseSet = errors.New("incomplete response set")
	ErrMalformedItemBank     = errors.New("malformed item bank")
	ErrDanglingReference     = errors.New("page plan references unknown id")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// ValidationError names every missing or out-of-range field of one
// submission so the client can re-render the page with inline messages.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}
