package server

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/jonathan/portfolio-admin/internal/fetch"
	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/store"
)

// maxJSONBody bounds request bodies that carry a whole document.
const maxJSONBody = fetch.MaxBodyBytes

// rawRequest is the body of a raw JSON view edit.
type rawRequest struct {
	Text string `json:"text"`
}

// rawResponse pairs the edit status with the view the editor should now show.
type rawResponse struct {
	Status   form.RawStatus `json:"status"`
	Snapshot store.Snapshot `json:"snapshot"`
}

func (s *Server) handleGetDocument(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Document())
}

func (s *Server) handleGetRaw(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.Raw()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, snap)
}

// handlePutRaw applies an edit of the raw JSON view. An edit that does not
// parse leaves the document alone and comes back as 422 with the status, so
// the editor keeps the text and shows the error inline.
func (s *Server) handlePutRaw(w http.ResponseWriter, r *http.Request) {
	var req rawRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	status := s.store.EditRaw(req.Text)
	snap, err := s.store.Raw()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	code := http.StatusOK
	if !status.Valid {
		code = http.StatusUnprocessableEntity
	}
	s.jsonResponse(w, code, rawResponse{Status: status, Snapshot: snap})
}

func (s *Server) handleLoadDefault(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context(), store.FromDefault())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleImport loads a document from an uploaded file (multipart field
// "file") or from the request body.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := readImport(w, r)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	doc, err := s.store.Load(r.Context(), store.FromImport(data))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

func readImport(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return io.ReadAll(r.Body)
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &ErrValidation{Field: "file", Message: "missing file"}
	}
	defer file.Close()
	return io.ReadAll(file)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := s.store.Save(r.Context(), store.ToWriter(&buf)); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+store.ExportFilename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Save(r.Context(), store.ToCache())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.Save(r.Context(), store.ToPublisher())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Reset(r.Context())
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, doc)
}

// handleContentJSON serves the current document the way the public page
// fetches it.
func (s *Server) handleContentJSON(w http.ResponseWriter, _ *http.Request) {
	snap, err := s.store.Raw()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = io.WriteString(w, snap.Raw)
}

func (s *Server) handleSite(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, s.store.Document()); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
