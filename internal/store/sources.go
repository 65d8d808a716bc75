package store

import (
	"context"
	"io"

	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/fetch"
	"github.com/jonathan/portfolio-admin/internal/types"
)

// OverrideKey is the cache key holding the locally saved document.
const OverrideKey = "portfolio_content_override"

// ExportFilename is the suggested name for exported documents.
const ExportFilename = "portfolio_content_export.json"

// Cache is the subset of db.KV the store needs.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Publisher sends a document to the publish endpoint.
type Publisher interface {
	Publish(ctx context.Context, doc *types.Document) (*types.PublishResponse, error)
}

// DefaultSource returns the bytes of the bundled default document.
type DefaultSource func(ctx context.Context) ([]byte, error)

// FileDefault reads the bundled default from a file path or an http(s) URL.
func FileDefault(location string) DefaultSource {
	return func(ctx context.Context) ([]byte, error) {
		return fetch.Read(ctx, location, fetch.DefaultTimeout)
	}
}

// Source is where Load reads a document from.
type Source struct {
	kind content.Source
	data []byte
}

// FromCache loads the locally saved override.
func FromCache() Source { return Source{kind: content.SourceCache} }

// FromDefault loads the bundled default document.
func FromDefault() Source { return Source{kind: content.SourceDefault} }

// FromImport loads an uploaded file.
func FromImport(data []byte) Source { return Source{kind: content.SourceImport, data: data} }

// FromText loads text typed into the raw JSON view.
func FromText(text string) Source { return Source{kind: content.SourceText, data: []byte(text)} }

// Kind names the source.
func (s Source) Kind() content.Source { return s.kind }

type targetKind string

const (
	targetCache     targetKind = "cache"
	targetWriter    targetKind = "export"
	targetPublisher targetKind = "publish"
)

// Target is where Save writes a document to.
type Target struct {
	kind targetKind
	w    io.Writer
}

// ToCache saves the document as the local override.
func ToCache() Target { return Target{kind: targetCache} }

// ToWriter writes the serialized document to w, used for exports.
func ToWriter(w io.Writer) Target { return Target{kind: targetWriter, w: w} }

// ToPublisher sends the document to the publish endpoint.
func ToPublisher() Target { return Target{kind: targetPublisher} }

// SaveResult describes a completed save.
type SaveResult struct {
	Target  string                 `json:"target"`
	Bytes   int                    `json:"bytes"`
	Publish *types.PublishResponse `json:"publish,omitempty"`
}
