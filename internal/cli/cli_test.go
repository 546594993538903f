package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qrcatalog/internal/catalog"
	"github.com/JonMunkholm/qrcatalog/internal/config"
	"github.com/JonMunkholm/qrcatalog/internal/qrcode"
)

func run(t *testing.T, environ map[string]string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{version: "1.2.3", stdout: &stdout, stderr: &stderr, environ: environ}

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, map[string]string{"LOG_LEVEL": "nonsense"}, "version")
	require.NoError(t, err)
	assert.Equal(t, "qrcatalog 1.2.3\n", out)
}

func TestBuild(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"),
		[]byte("Product Name,Product label (3-5 Characters)\nRed Mitten,\nScarf,SCF\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.csv"),
		[]byte("Product Name\nRed Mitten\n"), 0o644))

	stdout, err := run(t, map[string]string{"QR_SIZE": "64"},
		"build", "--source", src, "--out", out, "--base-url", "https://catalog.example.org")
	require.NoError(t, err)

	docPath := filepath.Join(out, "data", "products.json")
	assert.Equal(t, "wrote 3 products -> "+docPath+"\n", stdout)

	data, err := os.ReadFile(docPath)
	require.NoError(t, err)
	entries, err := catalog.DecodeDocument(data)
	require.NoError(t, err)
	var slugs []string
	for _, e := range entries {
		slugs = append(slugs, e.Slug)
	}
	assert.Equal(t, []string{"red-mitten", "scf", "red-mitten-2"}, slugs)

	for _, slug := range slugs {
		_, err := os.Stat(filepath.Join(out, "qrcodes", slug+".png"))
		assert.NoError(t, err, slug)
	}
}

func TestBuild_NoCodes(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"), []byte("Product Name\nScarf\n"), 0o644))

	stdout, err := run(t, map[string]string{"CATALOG_SOURCE_DIR": src, "CATALOG_OUTPUT_DIR": out}, "build", "--no-codes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "wrote 1 products -> "))

	_, err = os.Stat(filepath.Join(out, "qrcodes"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_EmptySource(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	stdout, err := run(t, nil, "build", "--source", src, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "nothing written")

	_, err = os.Stat(filepath.Join(out, "data", "products.json"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuild_InvalidConfiguration(t *testing.T) {
	_, err := run(t, map[string]string{"QR_FORMAT": "gif"}, "build")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QR_FORMAT")
}

func TestBuild_InvalidBaseURLFlag(t *testing.T) {
	_, err := run(t, nil, "build", "--source", t.TempDir(), "--out", t.TempDir(), "--base-url", "example.com")
	assert.Error(t, err)
}

func TestBuild_DocumentWriteFailureExitsNonZero(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.csv"), []byte("Product Name\nScarf\n"), 0o644))

	// A regular file where the output directory should be.
	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.WriteFile(out, []byte("not a dir"), 0o644))

	_, err := run(t, nil, "build", "--source", src, "--out", out, "--no-codes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed")
}

func TestCodeEncoder(t *testing.T) {
	enc, err := codeEncoder(config.CodesConfig{Enabled: false})
	require.NoError(t, err)
	assert.False(t, qrcode.Available(enc))

	enc, err = codeEncoder(config.CodesConfig{Enabled: true, Format: "svg", Level: "medium"})
	require.NoError(t, err)
	assert.Equal(t, "svg", enc.Ext())
}

func TestOutputStore_PublishConfigured(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{
		"CATALOG_OUTPUT_DIR":    t.TempDir(),
		"PUBLISH_S3_ENDPOINT":   "localhost:9000",
		"PUBLISH_S3_BUCKET":     "catalog",
		"PUBLISH_S3_ACCESS_KEY": "minioadmin",
		"PUBLISH_S3_SECRET_KEY": "minioadmin",
	})
	require.NoError(t, err)

	st, err := outputStore(cfg)
	require.NoError(t, err)
	assert.NotNil(t, st)
}

func TestLANIP(t *testing.T) {
	assert.NotEmpty(t, lanIP())
}
