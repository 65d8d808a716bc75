package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/store"
)

// sseKeepAlive is how often an idle event stream gets a comment line.
const sseKeepAlive = 25 * time.Second

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event. An empty id is omitted.
func (s *SSEWriter) WriteEvent(id, event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if id != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteSnapshot sends a document event carrying the raw view.
func (s *SSEWriter) WriteSnapshot(snap store.Snapshot) error {
	return s.WriteEvent(strconv.FormatUint(snap.Version, 10), "document", snap)
}

// WriteComment sends a comment line, which clients ignore.
func (s *SSEWriter) WriteComment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("", "error", map[string]string{"error": message}) //nolint:errcheck
}

// handleEvents streams the raw view: the current one first, then one event
// per document change. A slow client only gets the latest version.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	updates, cancel := s.store.Subscribe()
	defer cancel()

	snap, err := s.store.Raw()
	if err != nil {
		sse.WriteError("failed to read document")
		return
	}
	if err := sse.WriteSnapshot(snap); err != nil {
		return
	}
	last := snap.Version

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case snap := <-updates:
			if snap.Version <= last {
				continue
			}
			last = snap.Version
			if err := sse.WriteSnapshot(snap); err != nil {
				s.logger.Debug("event stream closed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := sse.WriteComment("keep-alive"); err != nil {
				return
			}
		}
	}
}
