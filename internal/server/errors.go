// Package server provides the HTTP admin API and public page for the portfolio.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/portfolio-admin/internal/assets"
	"github.com/jonathan/portfolio-admin/internal/auth"
	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/publish"
	"github.com/jonathan/portfolio-admin/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// userMessager is implemented by errors that carry text meant for the editor.
type userMessager interface {
	UserMessage() string
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		invalidDoc *content.InvalidDocumentError
		rejected   *assets.RejectionError
		pathErr    *form.PathError
		updateErr  *form.UpdateError
		validation *ErrValidation
		sessionErr *auth.SessionError
		adminList  *auth.AdminListError
		publishErr *publish.Error
		loadErr    *store.LoadError
		tooLarge   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &pathErr), errors.As(err, &updateErr):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNoSession), errors.As(err, &sessionErr):
		return http.StatusUnauthorized
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &invalidDoc), errors.As(err, &rejected):
		return http.StatusUnprocessableEntity
	case errors.As(err, &publishErr):
		return http.StatusBadGateway
	case errors.As(err, &adminList):
		return http.StatusServiceUnavailable
	case errors.As(err, &loadErr):
		if loadErr.Source == string(content.SourceDefault) {
			return http.StatusServiceUnavailable
		}
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// newErrorBody builds the response body for err, preferring the message the
// admin page shows to editors.
func newErrorBody(err error) errorBody {
	body := errorBody{Error: err.Error()}

	var um userMessager
	if errors.As(err, &um) {
		body.Error = um.UserMessage()
	}
	var invalidDoc *content.InvalidDocumentError
	if errors.As(err, &invalidDoc) {
		for _, f := range invalidDoc.Fields {
			body.Details = append(body.Details, f.Field+": "+f.Message)
		}
	}
	var rejected *assets.RejectionError
	if errors.As(err, &rejected) {
		body.Error = rejected.Message
	}
	if HTTPStatus(err) == http.StatusInternalServerError {
		body.Error = "internal server error"
	}
	return body
}
