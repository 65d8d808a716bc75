// Package assets validates uploaded profile photos and resumes and turns them
// into data URLs stored in the document.
package assets

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/gif" // register decoders
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// PhotoMaxBytes is the largest accepted photo upload (1.5 MiB).
	PhotoMaxBytes = 1536 * 1024
	// ResumeMaxBytes is the largest accepted resume upload (5 MiB).
	ResumeMaxBytes = 5 * 1024 * 1024
	// PhotoSize is the edge of the square the photo is cropped to.
	PhotoSize = 512
	// PhotoQuality is the JPEG quality of the stored photo.
	PhotoQuality = 90
)

const (
	assetPhoto  = "photo"
	assetResume = "resume"
	pdfMIME     = "application/pdf"
)

// Upload is a file received from the editor.
type Upload struct {
	// ContentType is the type the client declared. Empty means unknown, in
	// which case the type is sniffed from the content.
	ContentType string
	Data        []byte
}

// ReadUpload reads at most limit+1 bytes from r, enough to tell an oversized
// file from one that fits without reading all of it.
func ReadUpload(r io.Reader, contentType string, limit int64) (Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Upload{}, err
	}
	return Upload{ContentType: contentType, Data: data}, nil
}

func (u Upload) mime() string {
	if ct := strings.TrimSpace(u.ContentType); ct != "" && ct != "application/octet-stream" {
		if i := strings.IndexByte(ct, ';'); i >= 0 {
			ct = ct[:i]
		}
		return strings.ToLower(strings.TrimSpace(ct))
	}
	return mimetype.Detect(u.Data).String()
}

func tooLarge(what string, limit int) string {
	return what + " too large. Max " + humanize.IBytes(uint64(limit))
}

// ProcessPhoto checks an image upload and returns it cover-fit into a
// PhotoSize square, JPEG encoded, as a data URL.
func ProcessPhoto(u Upload) (string, error) {
	if !strings.HasPrefix(u.mime(), "image/") {
		return "", &RejectionError{Asset: assetPhoto, Message: "Please select an image file."}
	}
	if len(u.Data) > PhotoMaxBytes {
		return "", &RejectionError{Asset: assetPhoto, Message: tooLarge("Image", PhotoMaxBytes)}
	}

	src, _, err := image.Decode(bytes.NewReader(u.Data))
	if err != nil {
		return "", &RejectionError{Asset: assetPhoto, Message: "Invalid image.", Cause: err}
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return "", &RejectionError{Asset: assetPhoto, Message: "Invalid image."}
	}

	dst := image.NewRGBA(image.Rect(0, 0, PhotoSize, PhotoSize))
	draw.CatmullRom.Scale(dst, coverRect(b.Dx(), b.Dy(), PhotoSize), src, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: PhotoQuality}); err != nil {
		return "", &RejectionError{Asset: assetPhoto, Message: "Invalid image.", Cause: err}
	}
	return dataURL("image/jpeg", buf.Bytes()), nil
}

// coverRect scales a w×h image so it covers a size×size square and centers
// it. The result may extend past the square; the overflow is cropped.
func coverRect(w, h, size int) image.Rectangle {
	scale := max(float64(size)/float64(w), float64(size)/float64(h))
	sw := int(float64(w)*scale + 0.5)
	sh := int(float64(h)*scale + 0.5)
	x := (size - sw) / 2
	y := (size - sh) / 2
	return image.Rect(x, y, x+sw, y+sh)
}

// ProcessResume checks a PDF upload and returns it as a data URL.
func ProcessResume(u Upload) (string, error) {
	if u.mime() != pdfMIME || !mimetype.Detect(u.Data).Is(pdfMIME) {
		return "", &RejectionError{Asset: assetResume, Message: "Please select a PDF file."}
	}
	if len(u.Data) > ResumeMaxBytes {
		return "", &RejectionError{Asset: assetResume, Message: tooLarge("PDF", ResumeMaxBytes)}
	}
	return dataURL(pdfMIME, u.Data), nil
}

func dataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether s is a data URL of the given MIME type prefix.
func IsDataURL(s, mimePrefix string) bool {
	return strings.HasPrefix(s, "data:"+mimePrefix)
}
