// Package store persists build outputs: the catalog document and the code
// artifacts. Paths are slash-separated and relative to the store root, e.g.
// "data/products.json" or "qrcodes/red-mitten.png".
package store

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"path"
	"strings"
)

// ErrNotFound is returned by Get when no artifact exists at the path.
var ErrNotFound = errors.New("artifact not found")

// ErrInvalidPath is returned for empty paths and paths escaping the root.
var ErrInvalidPath = errors.New("invalid artifact path")

// Store defines operations for persisting build artifacts.
//
// Put replaces any existing content at the path. Readers never observe a
// partially written artifact.
type Store interface {
	Put(ctx context.Context, path string, content []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// cleanPath normalizes p and rejects anything that would leave the root.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
	if p == "" {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" || strings.Contains(p, "..") {
		return "", ErrInvalidPath
	}
	return strings.TrimPrefix(cleaned, "/"), nil
}

// contentType picks a MIME type from the path extension.
func contentType(p string) string {
	if ct := mime.TypeByExtension(path.Ext(p)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// mirror writes to a primary store and copies every successful write to a
// secondary one. Reads are served by the primary.
type mirror struct {
	primary   Store
	secondary Store
	logger    *slog.Logger
}

// Mirror returns a Store that publishes each Put to secondary after it
// succeeds on primary. A secondary failure is logged and does not fail the
// Put: the primary copy is authoritative.
func Mirror(primary, secondary Store, logger *slog.Logger) Store {
	if secondary == nil {
		return primary
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &mirror{primary: primary, secondary: secondary, logger: logger}
}

func (m *mirror) Put(ctx context.Context, path string, content []byte) error {
	if err := m.primary.Put(ctx, path, content); err != nil {
		return err
	}
	if err := m.secondary.Put(ctx, path, content); err != nil {
		m.logger.Warn("publish failed", "path", path, "error", err)
	}
	return nil
}

func (m *mirror) Get(ctx context.Context, path string) ([]byte, error) {
	return m.primary.Get(ctx, path)
}

func (m *mirror) List(ctx context.Context, prefix string) ([]string, error) {
	return m.primary.List(ctx, prefix)
}
