package types

import "encoding/json"

// PublishRequest is the body sent to the publish endpoint.
type PublishRequest struct {
	Content *Document `json:"content"`
}

// PublishResponse is the publish endpoint reply. Content is the document as the
// publisher stored it, which may differ from what was sent (for example a data
// URL photo rewritten to a file path).
type PublishResponse struct {
	OK          bool            `json:"ok"`
	Content     json.RawMessage `json:"content,omitempty"`
	ContentPath string          `json:"content_path,omitempty"`
	PhotoPath   string          `json:"photo_path,omitempty"`
	Error       string          `json:"error,omitempty"`
}
