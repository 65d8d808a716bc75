// Package content parses, validates, normalizes and serializes the Content Document.
package content

import (
	"fmt"

	"github.com/jonathan/portfolio-admin/internal/schemas"
)

// InvalidDocumentError is returned when bytes from any load source do not hold a
// valid Content Document. Fields is set when the JSON parsed but failed the schema.
type InvalidDocumentError struct {
	Source  Source
	Message string
	Fields  []schemas.FieldError
	Cause   error
}

func (e *InvalidDocumentError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid document from %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid document from %s: %s", e.Source, e.Message)
}

func (e *InvalidDocumentError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message shown to the editor. Imports and loads use the
// same wording the admin page always used.
func (e *InvalidDocumentError) UserMessage() string {
	switch e.Source {
	case SourceImport:
		return "Invalid JSON file."
	case SourceDefault:
		return "Failed to load default content.json"
	default:
		return "Invalid JSON. Please fix errors before saving."
	}
}
