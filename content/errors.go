package content

import (
	"fmt"
	"strings"
)

// FieldError describes a single front-matter field that failed validation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a post's front-matter does not match the
// expected schema. It is not retried; callers surface it as a server error.
type ValidationError struct {
	Slug   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	if e.Slug == "" {
		return "content: invalid front-matter: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("content: invalid front-matter in %q: %s", e.Slug, strings.Join(parts, "; "))
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

// StatusError is returned when the content host answers with a status other
// than 2xx or 404.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content: GET %s: unexpected status %d", e.URL, e.Code)
}
