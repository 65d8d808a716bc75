package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonathan/portfolio-admin/internal/db"
	"github.com/jonathan/portfolio-admin/internal/store"
)

var bundledPath = filepath.Join("..", "..", "assets", "content.json")

func newStore(t *testing.T) (*store.Store, db.KV) {
	t.Helper()
	kv, err := db.OpenMemory()
	require.NoError(t, err)
	st := store.New(kv, store.FileDefault(bundledPath))
	_, err = st.LoadCurrent(context.Background())
	require.NoError(t, err)
	return st, kv
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// waitFor returns the first result matching match. Editors and os.WriteFile
// may produce several events per save, so earlier results are skipped.
func waitFor(t *testing.T, ch <-chan Result, match func(Result) bool) Result {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-ch:
			if match(r) {
				return r
			}
		case <-deadline:
			t.Fatal("timed out waiting for sync")
			return Result{}
		}
	}
}

func TestWatcher_SyncsFileIntoStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	st, kv := newStore(t)
	defer kv.Close()

	path := filepath.Join(t.TempDir(), "content.json")
	writeFile(t, path, `{"profile":{"name":"Start"}}`)

	results := make(chan Result, 8)
	w, err := New(path, st, 20*time.Millisecond, OnSync(func(r Result) {
		select {
		case results <- r:
		default:
		}
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeFile(t, path, `{"profile":{"name":"From Disk"}}`)
	res := waitFor(t, results, func(r Result) bool { return r.Saved })
	require.NoError(t, res.Err)
	assert.True(t, res.Status.Valid)
	assert.True(t, res.Saved)
	assert.Equal(t, "From Disk", st.Document().Profile.Name)

	saved, ok, err := kv.Get(ctx, store.OverrideKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, saved, "From Disk")

	writeFile(t, path, `{"profile": `)
	res = waitFor(t, results, func(r Result) bool { return !r.Status.Valid })
	assert.False(t, res.Status.Valid)
	assert.False(t, res.Saved)
	assert.Equal(t, "From Disk", st.Document().Profile.Name)

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Applied, 1)
	assert.GreaterOrEqual(t, stats.Invalid, 1)

	w.Stop()
	cancel()
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	st, kv := newStore(t)
	defer kv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "content.json")
	writeFile(t, path, `{}`)

	results := make(chan Result, 8)
	w, err := New(path, st, 10*time.Millisecond, OnSync(func(r Result) {
		select {
		case results <- r:
		default:
		}
	}))
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	writeFile(t, filepath.Join(dir, "other.json"), `{"profile":{"name":"Other"}}`)
	select {
	case r := <-results:
		t.Fatalf("unexpected sync: %+v", r)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Equal(t, "Your Name", st.Document().Profile.Name)
	w.Stop()
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	st, kv := newStore(t)
	defer kv.Close()

	path := filepath.Join(t.TempDir(), "content.json")
	writeFile(t, path, `{}`)
	w, err := New(path, st, 0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestSync_MissingFile(t *testing.T) {
	st, kv := newStore(t)
	defer kv.Close()

	w, err := New(filepath.Join(t.TempDir(), "missing.json"), st, 0)
	require.NoError(t, err)
	defer w.Stop()

	res := w.Sync(context.Background())
	require.Error(t, res.Err)
	assert.Equal(t, 1, w.Stats().Errors)
	assert.Equal(t, "Your Name", st.Document().Profile.Name)
}
