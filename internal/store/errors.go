package store

import (
	"fmt"

	"github.com/jonathan/portfolio-admin/internal/content"
)

// LoadError is returned when a load source could not be read at all, as
// opposed to returning bytes that fail to parse (see content.InvalidDocumentError).
type LoadError struct {
	Source  string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// UserMessage returns the message shown to the editor.
func (e *LoadError) UserMessage() string {
	if e.Source == string(content.SourceDefault) {
		return "Failed to load default content.json"
	}
	return e.Message
}

// SaveError is returned when a save target rejects the document.
type SaveError struct {
	Target string
	Cause  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("save to %s: %v", e.Target, e.Cause)
}

func (e *SaveError) Unwrap() error {
	return e.Cause
}
