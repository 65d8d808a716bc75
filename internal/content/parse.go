package content

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/portfolio-admin/internal/schemas"
	"github.com/jonathan/portfolio-admin/internal/types"
	rootschemas "github.com/jonathan/portfolio-admin/schemas"
)

// Source names where document bytes came from.
type Source string

// Load sources.
const (
	SourceCache   Source = "cache"
	SourceDefault Source = "default"
	SourceImport  Source = "import"
	SourceText    Source = "text"
	SourcePublish Source = "publish"
)

// Parse decodes, validates and normalizes a Content Document. Shape validation
// happens here, once, so that everything downstream can assume a fully
// populated document.
func Parse(data []byte, source Source) (*types.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, &InvalidDocumentError{Source: source, Message: "document is empty"}
	}

	if !json.Valid(trimmed) {
		var probe any
		err := json.Unmarshal(trimmed, &probe)
		return nil, &InvalidDocumentError{Source: source, Message: "malformed JSON", Cause: err}
	}

	if err := schemas.ValidateBytes(rootschemas.Content, trimmed); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, &InvalidDocumentError{
				Source:  source,
				Message: verr.Summary(),
				Fields:  verr.Errors,
			}
		}
		return nil, &InvalidDocumentError{Source: source, Message: "schema check failed", Cause: err}
	}

	var doc types.Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, &InvalidDocumentError{Source: source, Message: "failed to decode document", Cause: err}
	}

	Normalize(&doc)
	return &doc, nil
}

// ParseString is Parse for text typed into the raw JSON view.
func ParseString(text string) (*types.Document, error) {
	return Parse([]byte(text), SourceText)
}

// Serialize renders the document the way the raw JSON view shows it: two-space
// indentation, no HTML escaping, no trailing newline.
func Serialize(doc *types.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
