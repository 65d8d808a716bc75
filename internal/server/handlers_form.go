package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/types"
)

type setFieldRequest struct {
	Path  string `json:"path" validate:"required"`
	Value string `json:"value"`
}

type addItemRequest struct {
	Collection string `json:"collection" validate:"required,oneof=experience projects education certifications"`
}

type setRowsRequest struct {
	Path string     `json:"path" validate:"required"`
	Rows []form.Row `json:"rows"`
}

// formResponse returns the rebuilt form and the document it was built from.
type formResponse struct {
	Form     form.Form       `json:"form"`
	Document *types.Document `json:"document"`
}

func newFormResponse(doc *types.Document) formResponse {
	return formResponse{Form: form.Build(doc), Document: doc}
}

func (s *Server) handleGetForm(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, newFormResponse(s.store.Document()))
}

func (s *Server) applyUpdate(w http.ResponseWriter, u form.Update) {
	doc, err := s.store.Apply(u)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newFormResponse(doc))
}

func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.applyUpdate(w, form.Set(req.Path, req.Value))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.applyUpdate(w, form.Add(req.Collection))
}

// handleRemoveItem takes the collection and index as query parameters.
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	collection := r.URL.Query().Get("collection")
	if collection == "" {
		s.errorResponse(w, &ErrValidation{Field: "collection", Message: "required"})
		return
	}
	index, err := strconv.Atoi(r.URL.Query().Get("index"))
	if err != nil {
		s.errorResponse(w, &ErrValidation{Field: "index", Message: "must be an integer"})
		return
	}
	s.applyUpdate(w, form.Remove(collection, index))
}

func (s *Server) handleSetRows(w http.ResponseWriter, r *http.Request) {
	var req setRowsRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err)
		return
	}
	s.applyUpdate(w, form.SetRows(req.Path, req.Rows))
}
