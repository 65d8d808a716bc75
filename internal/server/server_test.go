package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/portfolio-admin/internal/auth"
	"github.com/jonathan/portfolio-admin/internal/config"
	"github.com/jonathan/portfolio-admin/internal/db"
	"github.com/jonathan/portfolio-admin/internal/form"
	"github.com/jonathan/portfolio-admin/internal/publish"
	"github.com/jonathan/portfolio-admin/internal/site"
	"github.com/jonathan/portfolio-admin/internal/store"
	"github.com/jonathan/portfolio-admin/internal/types"
)

var bundledPath = filepath.Join("..", "..", "assets", "content.json")

type testEnv struct {
	handler http.Handler
	store   *store.Store
	kv      db.KV
}

type envOptions struct {
	publish     http.HandlerFunc
	rateLimit   bool
	defaultPath string
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	ctx := context.Background()

	kv, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	if opts.publish == nil {
		opts.publish = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}
	pubSrv := httptest.NewServer(opts.publish)
	t.Cleanup(pubSrv.Close)

	admins := filepath.Join(t.TempDir(), "admins.json")
	require.NoError(t, os.WriteFile(admins, []byte(`{"users":[{"username":"x","password":"y"}]}`), 0o644))

	if opts.defaultPath == "" {
		opts.defaultPath = bundledPath
	}
	st := store.New(kv, store.FileDefault(opts.defaultPath),
		store.WithPublisher(publish.NewClient(pubSrv.URL, 5*time.Second)))
	gate := auth.NewGate(admins, nil)
	require.NoError(t, Prepare(ctx, st, gate, zap.NewNop()))

	renderer, err := site.New("")
	require.NoError(t, err)

	srv, err := New(Config{
		Addr:           "127.0.0.1:0",
		AllowedOrigins: []string{"http://127.0.0.1:8080"},
		RateLimit:      opts.rateLimit,
	}, Deps{
		Store:    st,
		Gate:     gate,
		Sessions: auth.NewSessions(&config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", Hours: 1}, kv),
		Renderer: renderer,
	})
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testEnv{handler: srv.Handler(), store: st, kv: kv}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	switch b := body.(type) {
	case nil:
		r = httptest.NewRequest(method, path, nil)
	case []byte:
		r = httptest.NewRequest(method, path, bytes.NewReader(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = httptest.NewRequest(method, path, bytes.NewReader(data))
		r.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func (e *testEnv) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/login", types.LoginRequest{Username: "x", Password: "y"}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	w := env.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestAPI_RequiresSession(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	for _, path := range []string{"/api/document", "/api/form", "/api/document/raw", "/api/events"} {
		w := env.do(t, http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
	w := env.do(t, http.MethodPost, "/api/document/save", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Flow(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/api/session", nil, nil)
	assert.False(t, decode[types.SessionResponse](t, w).Authenticated)

	cookie := env.login(t)
	assert.True(t, cookie.HttpOnly)
	assert.Zero(t, cookie.MaxAge)

	w = env.do(t, http.MethodGet, "/api/session", nil, cookie)
	sess := decode[types.SessionResponse](t, w)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "x", sess.Username)

	w = env.do(t, http.MethodGet, "/api/document", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your Name", decode[types.Document](t, w).Profile.Name)

	w = env.do(t, http.MethodPost, "/api/logout", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/document", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_Rejected(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/login", types.LoginRequest{Username: "x", Password: "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, w.Result().Cookies())

	w = env.do(t, http.MethodPost, "/api/login", map[string]string{"username": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/login", []byte("{"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForm_SetField(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	w := env.do(t, http.MethodPost, "/api/form/fields", map[string]string{"path": "profile.name", "value": "Ada"}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Ada", env.store.Document().Profile.Name)

	resp := decode[formResponse](t, w)
	f, ok := resp.Form.Field("profile.name")
	require.True(t, ok)
	assert.Equal(t, "Ada", f.Value)

	w = env.do(t, http.MethodPost, "/api/form/fields", map[string]string{"path": "skills.languages", "value": " Go, ,Rust "}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Go", "Rust"}, env.store.Document().Skills.Languages)

	w = env.do(t, http.MethodPost, "/api/form/fields", map[string]string{"path": "profile.nope", "value": "x"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ada", env.store.Document().Profile.Name)
}

func TestForm_AddRemoveItems(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)
	before := len(env.store.Document().Projects)

	w := env.do(t, http.MethodPost, "/api/form/items", map[string]string{"collection": "projects"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	doc := env.store.Document()
	require.Len(t, doc.Projects, before+1)
	assert.Equal(t, types.DefaultProjectIcon, doc.Projects[before].Icon)

	w = env.do(t, http.MethodDelete, "/api/form/items?collection=projects&index=0", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, env.store.Document().Projects, before)

	w = env.do(t, http.MethodDelete, "/api/form/items?collection=projects&index=99", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/form/items?collection=projects", nil, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/form/items", map[string]string{"collection": "profile"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForm_KeyValueRows(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	w := env.do(t, http.MethodPut, "/api/form/kv", setRowsRequest{
		Path: "insights.tech_frequency",
		Rows: []form.Row{{Key: "a", Value: "1"}, {Key: "b", Value: "2"}, {Key: "", Value: "5"}},
	}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := types.CountPairs(env.store.Document().Insights.TechFrequency)
	assert.Equal(t, []types.Count{{Key: "a", Value: 1}, {Key: "b", Value: 2}}, got)
}

func TestRaw_MalformedChangesNothing(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)
	before, err := env.store.Raw()
	require.NoError(t, err)

	w := env.do(t, http.MethodPut, "/api/document/raw", rawRequest{Text: `{"profile": `}, cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[rawResponse](t, w)
	assert.False(t, resp.Status.Valid)
	assert.Equal(t, before, resp.Snapshot)

	after, err := env.store.Raw()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRaw_ValidEditReplacesDocument(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	w := env.do(t, http.MethodPut, "/api/document/raw", rawRequest{Text: `{"profile":{"name":"Raw"}}`}, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[rawResponse](t, w)
	assert.True(t, resp.Status.Valid)
	assert.Contains(t, resp.Snapshot.Raw, `"name": "Raw"`)
	assert.Equal(t, "Raw", env.store.Document().Profile.Name)

	w = env.do(t, http.MethodGet, "/api/document/raw", nil, cookie)
	assert.Equal(t, resp.Snapshot, decode[store.Snapshot](t, w))
}

func TestImport(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	w := env.do(t, http.MethodPost, "/api/document/import", []byte("not json"), cookie)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Invalid JSON file.", decode[errorBody](t, w).Error)
	assert.Equal(t, "Your Name", env.store.Document().Profile.Name)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "content.json")
	require.NoError(t, err)
	_, _ = fw.Write([]byte(`{"profile":{"name":"Imported"}}`))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/document/import", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Imported", env.store.Document().Profile.Name)
}

func TestExport(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	w := env.do(t, http.MethodGet, "/api/document/export", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="portfolio_content_export.json"`, w.Header().Get("Content-Disposition"))
	raw, err := env.store.Raw()
	require.NoError(t, err)
	assert.Equal(t, raw.Raw, w.Body.String())
}

func TestSaveAndReset(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)
	ctx := context.Background()

	env.do(t, http.MethodPost, "/api/form/fields", map[string]string{"path": "profile.name", "value": "Saved"}, cookie)
	w := env.do(t, http.MethodPost, "/api/document/save", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cache", decode[store.SaveResult](t, w).Target)

	v, ok, err := env.kv.Get(ctx, store.OverrideKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, v, "Saved")

	w = env.do(t, http.MethodPost, "/api/document/reset", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your Name", env.store.Document().Profile.Name)
	_, ok, err = env.kv.Get(ctx, store.OverrideKey)
	require.NoError(t, err)
	assert.False(t, ok)

	env.do(t, http.MethodPost, "/api/form/fields", map[string]string{"path": "profile.name", "value": "Temp"}, cookie)
	w = env.do(t, http.MethodPost, "/api/document/load-default", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your Name", env.store.Document().Profile.Name)
}

func TestDefaultUnavailable_ServerKeepsRunning(t *testing.T) {
	defaultPath := filepath.Join(t.TempDir(), "content.json")
	env := newTestEnv(t, envOptions{defaultPath: defaultPath})
	assert.Equal(t, "", env.store.Document().Profile.Name)

	w := env.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	cookie := env.login(t)
	w = env.do(t, http.MethodPost, "/api/document/load-default", nil, cookie)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Failed to load default content.json", decode[errorBody](t, w).Error)

	data, err := os.ReadFile(bundledPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(defaultPath, data, 0o644))

	w = env.do(t, http.MethodPost, "/api/document/load-default", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your Name", env.store.Document().Profile.Name)
}

func TestPublish_FailureLeavesCache(t *testing.T) {
	env := newTestEnv(t, envOptions{publish: func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"disk full"}`))
	}})
	cookie := env.login(t)

	w := env.do(t, http.MethodPost, "/api/document/publish", nil, cookie)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[errorBody](t, w).Error, "disk full")

	_, ok, err := env.kv.Get(context.Background(), store.OverrideKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPublish_Success(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	w := env.do(t, http.MethodPost, "/api/document/publish", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[store.SaveResult](t, w)
	require.NotNil(t, res.Publish)
	assert.True(t, res.Publish.OK)

	_, ok, err := env.kv.Get(context.Background(), store.OverrideKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestPhoto_UploadAndClear(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="me.png"`)
	h.Set("Content-Type", "image/png")
	fw, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, _ = fw.Write(pngBytes(t, 40, 20))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/assets/photo", &body)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(env.store.Document().Profile.Photo, "data:image/jpeg;base64,"))

	w := env.do(t, http.MethodDelete, "/api/assets/photo", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.store.Document().Profile.Photo)
}

func TestPhoto_OversizedRejected(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)
	before := env.store.Document().Profile.Photo

	r := httptest.NewRequest(http.MethodPost, "/api/assets/photo", bytes.NewReader(bytes.Repeat([]byte{0}, 2<<20)))
	r.Header.Set("Content-Type", "image/png")
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Image too large. Max 1.5 MiB", decode[errorBody](t, rec).Error)
	assert.Equal(t, before, env.store.Document().Profile.Photo)
}

func TestResume_RejectsNonPDF(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)

	r := httptest.NewRequest(http.MethodPost, "/api/assets/resume", strings.NewReader("hello"))
	r.Header.Set("Content-Type", "application/pdf")
	r.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Please select a PDF file.", decode[errorBody](t, rec).Error)

	w := env.do(t, http.MethodDelete, "/api/assets/resume", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, env.store.Document().Profile.Resume)
}

func TestPublicPage(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Your Name")

	w = env.do(t, http.MethodGet, "/content.json", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Your Name", decode[types.Document](t, w).Profile.Name)
}

func TestRateLimit_Publish(t *testing.T) {
	env := newTestEnv(t, envOptions{rateLimit: true})
	cookie := env.login(t)

	for i := 0; i < 5; i++ {
		w := env.do(t, http.MethodPost, "/api/document/publish", nil, cookie)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := env.do(t, http.MethodPost, "/api/document/publish", nil, cookie)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Login is never limited.
	for i := 0; i < 50; i++ {
		env.login(t)
	}
}

func TestEvents_StreamsSnapshots(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	cookie := env.login(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/api/events", nil)
	require.NoError(t, err)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	next := func() store.Snapshot {
		t.Helper()
		var event string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				event = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: ") && event == "document":
				var snap store.Snapshot
				require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap))
				return snap
			}
		}
	}

	first := next()
	assert.Contains(t, first.Raw, "Your Name")

	_, err = env.store.Apply(form.Set("profile.name", "Streamed"))
	require.NoError(t, err)
	second := next()
	assert.Greater(t, second.Version, first.Version)
	assert.Contains(t, second.Raw, "Streamed")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(auth.ErrInvalidCredentials))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(&ErrValidation{Field: "f", Message: "m"}))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(&publish.Error{Endpoint: "e", Message: "m"}))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(&auth.AdminListError{Message: "m"}))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(&store.LoadError{Source: "cache", Message: "m"}))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(&store.LoadError{Source: "default", Message: "m"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(assert.AnError))
	assert.Equal(t, "internal server error", newErrorBody(assert.AnError).Error)
}
