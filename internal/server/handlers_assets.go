package server

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/assets"
	"github.com/jonathan/portfolio-admin/internal/form"
)

const (
	pathPhoto  = "profile.photo"
	pathResume = "profile.resume"

	// multipartSlack is allowed on top of a file's size limit for the
	// multipart envelope, so an oversized file is reported by size.
	multipartSlack = 1 << 20
)

// readUpload reads the file from multipart field "file", or the request body
// when the request is not multipart. At most limit+1 bytes are kept.
func readUpload(w http.ResponseWriter, r *http.Request, limit int64) (assets.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return assets.ReadUpload(r.Body, r.Header.Get("Content-Type"), limit)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return assets.Upload{}, &ErrValidation{Field: "file", Message: "invalid multipart body"}
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return assets.Upload{}, &ErrValidation{Field: "file", Message: "missing file"}
		}
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return assets.Upload{}, err
			}
			return assets.Upload{}, &ErrValidation{Field: "file", Message: "invalid multipart body"}
		}
		if part.FormName() != "file" {
			_ = part.Close()
			continue
		}
		up, err := assets.ReadUpload(part, part.Header.Get("Content-Type"), limit)
		_ = part.Close()
		return up, err
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, path string, limit int64, process func(assets.Upload) (string, error)) {
	up, err := readUpload(w, r, limit)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	url, err := process(up)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	doc, err := s.store.Apply(form.Set(path, url))
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	s.logger.Info("asset stored", zap.String("path", path), zap.Int("bytes", len(up.Data)))
	s.jsonResponse(w, http.StatusOK, newFormResponse(doc))
}

func (s *Server) handleUploadPhoto(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, pathPhoto, assets.PhotoMaxBytes, assets.ProcessPhoto)
}

func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, pathResume, assets.ResumeMaxBytes, assets.ProcessResume)
}

func (s *Server) handleClearPhoto(w http.ResponseWriter, _ *http.Request) {
	s.applyUpdate(w, form.Set(pathPhoto, ""))
}

func (s *Server) handleClearResume(w http.ResponseWriter, _ *http.Request) {
	s.applyUpdate(w, form.Set(pathResume, ""))
}
