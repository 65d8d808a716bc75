package assets

import "fmt"

// RejectionError is returned when an upload is not accepted. Message is the
// text shown to the editor.
type RejectionError struct {
	Asset   string
	Message string
	Cause   error
}

func (e *RejectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s rejected: %s: %v", e.Asset, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s rejected: %s", e.Asset, e.Message)
}

func (e *RejectionError) Unwrap() error {
	return e.Cause
}
