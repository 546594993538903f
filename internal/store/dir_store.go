package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirStore keeps artifacts as files under a root directory, the tree the
// static file server exposes.
type DirStore struct {
	root string
}

// NewDirStore returns a DirStore rooted at root. The directory is created on
// first write.
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root returns the store's root directory.
func (s *DirStore) Root() string {
	return s.root
}

// Path returns the filesystem path of an artifact.
func (s *DirStore) Path(p string) (string, error) {
	rel, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

// Put writes content to a temporary file next to the target, then renames it
// into place so the target is either the old or the new content, never a
// partial write.
func (s *DirStore) Put(ctx context.Context, p string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.Path(p)
	if err != nil {
		return fmt.Errorf("%w: %q", err, p)
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", p, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", p, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return fmt.Errorf("rename into %s: %w", p, err)
	}
	committed = true
	return nil
}

// Get reads an artifact.
func (s *DirStore) Get(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.Path(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, p)
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// List returns the sorted paths of all artifacts under prefix. Temporary
// files from in-flight writes are not listed.
func (s *DirStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := s.root
	if strings.TrimSpace(prefix) != "" {
		var err error
		if base, err = s.Path(prefix); err != nil {
			return nil, fmt.Errorf("%w: %q", err, prefix)
		}
	}

	var paths []string
	err := filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || isTempName(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}
