package main

import (
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/portfolio-admin/internal/config"
	"github.com/jonathan/portfolio-admin/internal/content"
)

var bundledPath, _ = filepath.Abs(filepath.Join("..", "..", "assets", "content.json"))

// testEnv points the CLI at a private cache and config in a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PORTFOLIO_CONTENT_PATH", bundledPath)
	t.Setenv("PORTFOLIO_CACHE_DRIVER", "sqlite")
	t.Setenv("PORTFOLIO_CACHE_DSN", filepath.Join(dir, "cache.db"))
	t.Setenv("PORTFOLIO_TEMPLATE_PATH", "")
	return dir
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the CLI in-process and returns its output.
func run(t *testing.T, dir string, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(dir, "portfolio.yml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func writeJSON(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidate(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, dir, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed")

	bad := writeJSON(t, dir, "bad.json", `{"projects":"nope"}`)
	out, err = run(t, dir, "", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "projects")
}

func TestValidate_Verbose(t *testing.T) {
	dir := testEnv(t)

	out, err := run(t, dir, "", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "CONTENT DOCUMENT")

	bad := writeJSON(t, dir, "bad.json", `{"projects":"nope"}`)
	out, err = run(t, dir, "", "validate", "-v", bad)
	require.Error(t, err)
	assert.Contains(t, out, "INVALID DOCUMENT")
}

func TestNormalize(t *testing.T) {
	dir := testEnv(t)
	in := writeJSON(t, dir, "in.json", `{"profile":{"name":"N"},"projects":[{"title":"P"}]}`)
	outPath := filepath.Join(dir, "out", "norm.json")

	_, err := run(t, dir, "", "normalize", "--in", in, "--out", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	doc, err := content.Parse(data, content.SourceImport)
	require.NoError(t, err)
	assert.Equal(t, "fa-diagram-project", doc.Projects[0].Icon)
	assert.True(t, strings.HasPrefix(string(data), "{\n  \"profile\""))

	_, err = run(t, dir, "", "normalize")
	require.Error(t, err)
}

func TestImportExportReset(t *testing.T) {
	dir := testEnv(t)
	in := writeJSON(t, dir, "in.json", `{"profile":{"name":"Imported"}}`)

	out, err := run(t, dir, "", "import", in)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	exported := filepath.Join(dir, "export.json")
	_, err = run(t, dir, "", "export", "--out", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Imported"`)

	out, err = run(t, dir, "", "export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Imported"`)

	_, err = run(t, dir, "", "reset")
	require.NoError(t, err)
	out, err = run(t, dir, "", "export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Your Name"`)
}

func TestImport_InvalidKeepsOverride(t *testing.T) {
	dir := testEnv(t)
	good := writeJSON(t, dir, "good.json", `{"profile":{"name":"Good"}}`)
	bad := writeJSON(t, dir, "bad.json", `{not json`)

	_, err := run(t, dir, "", "import", good)
	require.NoError(t, err)

	_, err = run(t, dir, "", "import", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid JSON file.")

	out, err := run(t, dir, "", "export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Good"`)
}

func TestPublish(t *testing.T) {
	dir := testEnv(t)
	pub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"disk full"}`))
	}))
	defer pub.Close()
	t.Setenv("PORTFOLIO_PUBLISH_URL", pub.URL)

	_, err := run(t, dir, "", "publish")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, err.Error(), pub.URL)
}

func TestRender(t *testing.T) {
	dir := testEnv(t)
	outPath := filepath.Join(dir, "index.html")

	_, err := run(t, dir, "", "render", "--out", outPath)
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Your Name")
	assert.Contains(t, string(data), `id="insightsData"`)
}

func TestSetPhotoAndResume(t *testing.T) {
	dir := testEnv(t)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 30, 60))))
	photo := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(photo, buf.Bytes(), 0o644))

	_, err := run(t, dir, "", "set-photo", photo)
	require.NoError(t, err)
	out, err := run(t, dir, "", "export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"photo": "data:image/jpeg;base64,`)

	_, err = run(t, dir, "", "set-photo", "--clear")
	require.NoError(t, err)
	out, err = run(t, dir, "", "export", "--out", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"photo": ""`)

	_, err = run(t, dir, "", "set-photo")
	require.Error(t, err)

	notPDF := writeJSON(t, dir, "resume.pdf", "plain text")
	_, err = run(t, dir, "", "set-resume", notPDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Please select a PDF file.")
}

func TestHashPassword(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("BCRYPT_COST", "10")

	out, err := run(t, dir, "", "hash-password", "hunter2")
	require.NoError(t, err)
	assert.True(t, config.VerifyPassword("hunter2", strings.TrimSpace(out)))

	out, err = run(t, dir, "s3cret\n", "hash-password")
	require.NoError(t, err)
	assert.True(t, config.VerifyPassword("s3cret", strings.TrimSpace(out)))
}

func TestInitConfig(t *testing.T) {
	dir := testEnv(t)

	_, err := run(t, dir, "", "init-config")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "portfolio.yml"))
	require.NoError(t, err)

	_, err = run(t, dir, "", "init-config")
	require.ErrorIs(t, err, config.ErrConfigExists)

	_, err = run(t, dir, "", "init-config", "--force")
	require.NoError(t, err)
}

func TestInvalidConfigRejected(t *testing.T) {
	dir := testEnv(t)
	t.Setenv("PORTFOLIO_CACHE_DRIVER", "redis")

	_, err := run(t, dir, "", "export", "--out", "-")
	require.Error(t, err)
}
