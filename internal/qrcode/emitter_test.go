package qrcode

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/qrcatalog/internal/logging"
	"github.com/JonMunkholm/qrcatalog/internal/store"
)

func TestPageURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		pagePath string
		id       string
		want     string
	}{
		{"default page", "https://example.com", "", "red-mitten", "https://example.com/product.html?p=red-mitten"},
		{"trailing slash on base", "https://example.com/", "product.html", "scarf-2", "https://example.com/product.html?p=scarf-2"},
		{"base with path", "https://shop.example.org/catalog/", "/detail.html", "item", "https://shop.example.org/catalog/detail.html?p=item"},
		{"plain http", "http://192.168.1.20:8080", "product.html", "a-b", "http://192.168.1.20:8080/product.html?p=a-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageURL(tt.base, tt.pagePath, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPageURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		base string
		id   string
	}{
		{"no scheme", "example.com", "x"},
		{"ftp scheme", "ftp://example.com", "x"},
		{"no host", "https://", "x"},
		{"query on base", "https://example.com/?a=1", "x"},
		{"empty identifier", "https://example.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PageURL(tt.base, "", tt.id)
			assert.Error(t, err)
		})
	}
}

func TestNewEmitter_Validation(t *testing.T) {
	_, err := NewEmitter(EmitterOptions{BaseURL: "https://example.com"})
	assert.Error(t, err, "missing store")

	_, err = NewEmitter(EmitterOptions{Store: store.NewDirStore(t.TempDir()), BaseURL: "not a url"})
	assert.Error(t, err, "invalid base url")
}

func TestEmitAll_WritesOneArtifactPerIdentifier(t *testing.T) {
	ctx := context.Background()
	st := store.NewDirStore(t.TempDir())
	enc, err := NewEncoder(FormatPNG, 64, "low")
	require.NoError(t, err)

	em, err := NewEmitter(EmitterOptions{
		Encoder: enc,
		Store:   st,
		BaseURL: "https://example.com",
		Workers: 2,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)
	require.True(t, em.Available())

	ids := []string{"red-mitten", "red-mitten-2", "scarf", "item"}
	report := em.EmitAll(ctx, ids)
	assert.Equal(t, EmitReport{Written: 4}, report)

	paths, err := st.List(ctx, "qrcodes")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"qrcodes/item.png",
		"qrcodes/red-mitten-2.png",
		"qrcodes/red-mitten.png",
		"qrcodes/scarf.png",
	}, paths)

	// Re-emitting yields identical bytes.
	first, err := st.Get(ctx, "qrcodes/scarf.png")
	require.NoError(t, err)
	em.EmitAll(ctx, []string{"scarf"})
	second, err := st.Get(ctx, "qrcodes/scarf.png")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEmitAll_DisabledWarnsOnce(t *testing.T) {
	var buf bytes.Buffer
	st := &recordingStore{}

	em, err := NewEmitter(EmitterOptions{
		Encoder: Disabled("no encoder"),
		Store:   st,
		BaseURL: "https://example.com",
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	})
	require.NoError(t, err)
	assert.False(t, em.Available())

	report := em.EmitAll(context.Background(), []string{"a", "b", "c"})
	assert.Equal(t, EmitReport{Skipped: 3}, report)
	assert.Empty(t, st.paths())
	assert.Equal(t, 1, strings.Count(buf.String(), "qr encoding unavailable"))
}

func TestEmitAll_FailureIsIsolated(t *testing.T) {
	var buf bytes.Buffer
	st := &recordingStore{failOn: "qrcodes/bad.svg"}
	enc, err := NewEncoder(FormatSVG, 0, "")
	require.NoError(t, err)

	em, err := NewEmitter(EmitterOptions{
		Encoder: enc,
		Store:   st,
		BaseURL: "https://example.com",
		Logger:  slog.New(slog.NewTextHandler(&buf, nil)),
	})
	require.NoError(t, err)

	report := em.EmitAll(context.Background(), []string{"good", "bad", "also-good"})
	assert.Equal(t, 2, report.Written)
	assert.Equal(t, 1, report.Failed)
	assert.ElementsMatch(t, []string{"qrcodes/good.svg", "qrcodes/also-good.svg"}, st.paths())
	assert.Contains(t, buf.String(), "slug=bad")
}

func TestEmitAll_FailureDoesNotStopLaterWork(t *testing.T) {
	st := &recordingStore{failOn: "qrcodes/first.svg"}
	enc, err := NewEncoder(FormatSVG, 0, "")
	require.NoError(t, err)

	em, err := NewEmitter(EmitterOptions{
		Encoder: enc,
		Store:   st,
		BaseURL: "https://example.com",
		Workers: 1,
		Logger:  discardLogger(),
	})
	require.NoError(t, err)

	report := em.EmitAll(context.Background(), []string{"first", "second", "third", "fourth"})
	assert.Equal(t, EmitReport{Written: 3, Failed: 1, Skipped: 0}, report)
	assert.ElementsMatch(t, []string{"qrcodes/second.svg", "qrcodes/third.svg", "qrcodes/fourth.svg"}, st.paths())
}

func TestEmitAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enc, err := NewEncoder(FormatPNG, 64, "")
	require.NoError(t, err)
	em, err := NewEmitter(EmitterOptions{
		Encoder: enc,
		Store:   store.NewDirStore(t.TempDir()),
		BaseURL: "https://example.com",
		Logger:  discardLogger(),
	})
	require.NoError(t, err)

	report := em.EmitAll(ctx, []string{"a", "b"})
	assert.Equal(t, 0, report.Written)
	assert.Equal(t, 2, report.Failed+report.Skipped)
}

func TestArtifactPath(t *testing.T) {
	enc, err := NewEncoder(FormatSVG, 0, "")
	require.NoError(t, err)
	em, err := NewEmitter(EmitterOptions{
		Encoder: enc,
		Store:   &recordingStore{},
		BaseURL: "https://example.com",
		Dir:     "/codes/",
	})
	require.NoError(t, err)
	assert.Equal(t, "codes/red-mitten.svg", em.ArtifactPath("red-mitten"))
}

// recordingStore keeps writes in memory and fails on one path.
type recordingStore struct {
	mu     sync.Mutex
	failOn string
	data   map[string][]byte
}

func (s *recordingStore) Put(_ context.Context, p string, content []byte) error {
	if p == s.failOn {
		return errors.New("disk full")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.data[p] = content
	return nil
}

func (s *recordingStore) Get(_ context.Context, p string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data[p]
	if !ok {
		return nil, store.ErrNotFound
	}
	return d, nil
}

func (s *recordingStore) List(context.Context, string) ([]string, error) {
	return s.paths(), nil
}

func (s *recordingStore) paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.data))
	for p := range s.data {
		out = append(out, p)
	}
	return out
}

func discardLogger() *slog.Logger {
	return logging.Discard()
}
