// Package store owns the Content Document being edited and moves it between
// its load sources and save targets.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/content"
	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/types"
)

// Snapshot is the raw JSON view at one version of the document.
type Snapshot struct {
	Version uint64 `json:"version"`
	Raw     string `json:"raw"`
}

// Store holds one document at a time. All methods are safe for concurrent use;
// updates are serialized.
type Store struct {
	mu       sync.RWMutex
	doc      *types.Document
	version  uint64
	cache    Cache
	defaults DefaultSource
	pub      Publisher
	logger   *zap.Logger

	subsMu sync.Mutex
	subs   map[chan Snapshot]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithPublisher sets the publish endpoint client used by ToPublisher.
func WithPublisher(p Publisher) Option {
	return func(s *Store) { s.pub = p }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New returns a store holding an empty document.
func New(cache Cache, defaults DefaultSource, opts ...Option) *Store {
	s := &Store{
		doc:      content.Empty(),
		cache:    cache,
		defaults: defaults,
		logger:   zap.NewNop(),
		subs:     make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns a copy of the current document.
func (s *Store) Document() *types.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Raw returns the current raw JSON view.
func (s *Store) Raw() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() (Snapshot, error) {
	raw, err := content.Serialize(s.doc)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Version: s.version, Raw: string(raw)}, nil
}

// Load replaces the document with the one read from src. On any failure the
// current document is kept.
func (s *Store) Load(ctx context.Context, src Source) (*types.Document, error) {
	data, err := s.read(ctx, src)
	if err != nil {
		return nil, err
	}
	doc, err := content.Parse(data, src.kind)
	if err != nil {
		return nil, err
	}
	s.replace(doc)
	s.logger.Debug("document loaded", zap.String("source", string(src.kind)))
	return doc.Clone(), nil
}

func (s *Store) read(ctx context.Context, src Source) ([]byte, error) {
	switch src.kind {
	case content.SourceCache:
		if s.cache == nil {
			return nil, &LoadError{Source: string(src.kind), Message: "no cache configured"}
		}
		raw, ok, err := s.cache.Get(ctx, OverrideKey)
		if err != nil {
			return nil, &LoadError{Source: string(src.kind), Message: "failed to read cache", Cause: err}
		}
		if !ok {
			return nil, &LoadError{Source: string(src.kind), Message: "no saved override"}
		}
		return []byte(raw), nil
	case content.SourceDefault:
		if s.defaults == nil {
			return nil, &LoadError{Source: string(src.kind), Message: "no default document configured"}
		}
		data, err := s.defaults(ctx)
		if err != nil {
			return nil, &LoadError{Source: string(src.kind), Message: "failed to read default document", Cause: err}
		}
		return data, nil
	case content.SourceImport, content.SourceText:
		return src.data, nil
	default:
		return nil, &LoadError{Source: string(src.kind), Message: "unknown source"}
	}
}

// LoadCurrent loads the saved override if there is a valid one, otherwise the
// bundled default.
func (s *Store) LoadCurrent(ctx context.Context) (*types.Document, error) {
	doc, err := s.Load(ctx, FromCache())
	if err == nil {
		return doc, nil
	}
	var invalid *content.InvalidDocumentError
	if errors.As(err, &invalid) {
		s.logger.Warn("invalid saved override, loading default", zap.Error(err))
	} else {
		s.logger.Debug("no saved override, loading default", zap.Error(err))
	}
	return s.Load(ctx, FromDefault())
}

// Reset deletes the saved override and reloads the bundled default.
func (s *Store) Reset(ctx context.Context) (*types.Document, error) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, OverrideKey); err != nil {
			return nil, &SaveError{Target: string(targetCache), Cause: err}
		}
	}
	return s.Load(ctx, FromDefault())
}

// Save writes a snapshot of the current document to target.
func (s *Store) Save(ctx context.Context, target Target) (SaveResult, error) {
	s.mu.RLock()
	doc, version := s.doc.Clone(), s.version
	s.mu.RUnlock()
	raw, err := content.Serialize(doc)
	if err != nil {
		return SaveResult{}, err
	}
	res := SaveResult{Target: string(target.kind), Bytes: len(raw)}

	switch target.kind {
	case targetCache:
		if err := s.saveToCache(ctx, raw); err != nil {
			return SaveResult{}, err
		}
	case targetWriter:
		if _, err := target.w.Write(raw); err != nil {
			return SaveResult{}, &SaveError{Target: string(target.kind), Cause: err}
		}
	case targetPublisher:
		resp, err := s.publish(ctx, doc, version)
		if err != nil {
			return SaveResult{}, err
		}
		res.Publish = resp
	default:
		return SaveResult{}, &SaveError{Target: string(target.kind), Cause: errors.New("unknown target")}
	}

	s.logger.Info("document saved", zap.String("target", res.Target), zap.Int("bytes", res.Bytes))
	return res, nil
}

func (s *Store) saveToCache(ctx context.Context, raw []byte) error {
	if s.cache == nil {
		return &SaveError{Target: string(targetCache), Cause: errors.New("no cache configured")}
	}
	if err := s.cache.Set(ctx, OverrideKey, string(raw)); err != nil {
		return &SaveError{Target: string(targetCache), Cause: err}
	}
	return nil
}

// publish sends doc and, on success, adopts the publisher's copy of the
// document and saves it as the local override. On failure nothing changes.
// Edits made while the request was in flight win over the publisher's copy.
func (s *Store) publish(ctx context.Context, doc *types.Document, version uint64) (*types.PublishResponse, error) {
	if s.pub == nil {
		return nil, &SaveError{Target: string(targetPublisher), Cause: errors.New("no publisher configured")}
	}
	resp, err := s.pub.Publish(ctx, doc)
	if err != nil {
		return nil, err
	}

	published := doc
	if len(resp.Content) > 0 && string(resp.Content) != "null" {
		returned, err := content.Parse(resp.Content, content.SourcePublish)
		if err != nil {
			s.logger.Warn("publisher returned an invalid document, keeping the sent one", zap.Error(err))
		} else {
			published = returned
		}
	}
	if resp.ContentPath != "" {
		s.logger.Info("publisher wrote content", zap.String("path", resp.ContentPath))
	}
	if resp.PhotoPath != "" {
		s.logger.Info("publisher saved photo", zap.String("path", resp.PhotoPath))
	}

	raw, err := content.Serialize(published)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.version != version {
		s.mu.Unlock()
		s.logger.Warn("document edited during publish, keeping the local edits",
			zap.Uint64("published_version", version))
		return resp, nil
	}
	if s.cache != nil {
		if err := s.saveToCache(ctx, raw); err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("published but could not update the local override: %w", err)
		}
	}
	s.setLocked(published)
	s.mu.Unlock()
	return resp, nil
}

// Update applies fn to a copy of the document and stores the result. fn must
// not keep the document it is given.
func (s *Store) Update(fn func(*types.Document) (*types.Document, error)) (*types.Document, error) {
	s.mu.Lock()
	next, err := fn(s.doc.Clone())
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	content.Normalize(next)
	s.setLocked(next)
	out := next.Clone()
	s.mu.Unlock()
	return out, nil
}

// Apply runs one form update against the document.
func (s *Store) Apply(u form.Update) (*types.Document, error) {
	return s.Update(func(d *types.Document) (*types.Document, error) {
		return form.Apply(d, u)
	})
}

// EditRaw replaces the document with text typed into the raw JSON view. An
// unparsable edit leaves the document as it was and is reported in the status.
func (s *Store) EditRaw(text string) form.RawStatus {
	var status form.RawStatus
	_, _ = s.Update(func(d *types.Document) (*types.Document, error) {
		next, st := form.ApplyRaw(d, text)
		status = st
		if !st.Valid {
			return nil, errRawInvalid
		}
		return next, nil
	})
	return status
}

var errRawInvalid = errors.New("raw edit did not parse")

func (s *Store) replace(doc *types.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(doc)
}

// setLocked installs doc and notifies subscribers while the write lock is
// held, so snapshots reach them in version order.
func (s *Store) setLocked(doc *types.Document) {
	s.doc = doc
	s.version++
	snap, err := s.snapshotLocked()
	if err != nil {
		s.logger.Error("failed to serialize document", zap.Error(err))
		return
	}
	s.notify(snap)
}

// Subscribe returns a channel that receives the raw view after every change,
// and a function that ends the subscription. A slow reader only ever sees the
// latest snapshot.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) notify(snap Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		// Drop the stale snapshot so the newest one fits.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
