package form

import (
	"errors"

	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/types"
)

// RawStatus describes the last edit of the raw JSON view. An invalid edit is
// reported here instead of failing the request, so the editor can keep typing.
type RawStatus struct {
	Valid   bool                          `json:"valid"`
	Error   string                        `json:"error,omitempty"`
	Details []string                      `json:"details,omitempty"`
	Cause   *content.InvalidDocumentError `json:"-"`
}

// ApplyRaw parses text as a whole document. If it parses, the new document
// replaces doc. Otherwise doc is returned as-is along with the parse status.
func ApplyRaw(doc *types.Document, text string) (*types.Document, RawStatus) {
	next, err := content.ParseString(text)
	if err != nil {
		status := RawStatus{Valid: false, Error: err.Error()}
		var invalid *content.InvalidDocumentError
		if errors.As(err, &invalid) {
			status.Error = invalid.UserMessage()
			status.Cause = invalid
			for _, f := range invalid.Fields {
				status.Details = append(status.Details, f.Field+": "+f.Message)
			}
			if len(status.Details) == 0 {
				status.Details = []string{invalid.Error()}
			}
		}
		return doc, status
	}
	return next, RawStatus{Valid: true}
}
