package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/JonMunkholm/qrcatalog/internal/catalog"
)

// ErrProductNotFound is returned by Lookup for an unknown identifier.
var ErrProductNotFound = errors.New("product not found")

// ErrCatalogMissing is returned by Lookup before the first build has written
// the catalog document.
var ErrCatalogMissing = errors.New("catalog document not found")

// CatalogIndex answers identifier lookups against the catalog document on
// disk. Recently requested entries are kept in an LRU cache, which is purged
// whenever a rebuild replaces the document.
type CatalogIndex struct {
	path  string
	cache *lru.Cache[string, catalog.CatalogEntry]

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

// NewCatalogIndex returns an index over the document at path, caching up to
// size entries.
func NewCatalogIndex(path string, size int) (*CatalogIndex, error) {
	cache, err := lru.New[string, catalog.CatalogEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create entry cache: %w", err)
	}
	return &CatalogIndex{path: path, cache: cache}, nil
}

// Path returns the document path.
func (c *CatalogIndex) Path() string {
	return c.path
}

// Lookup returns the entry whose slug is id.
func (c *CatalogIndex) Lookup(id string) (catalog.CatalogEntry, error) {
	if err := c.refresh(); err != nil {
		return catalog.CatalogEntry{}, err
	}
	if entry, ok := c.cache.Get(id); ok {
		return entry, nil
	}

	entry, err := c.scan(id)
	if err != nil {
		return catalog.CatalogEntry{}, err
	}
	c.cache.Add(id, entry)
	return entry, nil
}

// refresh purges the cache when the document changed since the last lookup.
func (c *CatalogIndex) refresh() error {
	info, err := os.Stat(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		c.cache.Purge()
		return ErrCatalogMissing
	}
	if err != nil {
		return fmt.Errorf("stat catalog document: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if info.ModTime().Equal(c.modTime) && info.Size() == c.size {
		return nil
	}
	c.cache.Purge()
	c.modTime = info.ModTime()
	c.size = info.Size()
	return nil
}

// scan streams the document array until it finds id, without decoding the
// entries after it.
func (c *CatalogIndex) scan(id string) (catalog.CatalogEntry, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return catalog.CatalogEntry{}, ErrCatalogMissing
	}
	if err != nil {
		return catalog.CatalogEntry{}, fmt.Errorf("open catalog document: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	tok, err := dec.Token()
	if err != nil {
		return catalog.CatalogEntry{}, fmt.Errorf("read catalog document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return catalog.CatalogEntry{}, errors.New("read catalog document: expected array")
	}

	for dec.More() {
		var entry catalog.CatalogEntry
		if err := dec.Decode(&entry); err != nil {
			return catalog.CatalogEntry{}, fmt.Errorf("read catalog document: %w", err)
		}
		if entry.Slug == id {
			return entry, nil
		}
	}
	return catalog.CatalogEntry{}, ErrProductNotFound
}
