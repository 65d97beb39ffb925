// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists the mirrored article collection as a single JSON
// document. The cache is replaced wholesale; it is never patched.
package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/mendeley-mirror/pkg/types"
)

// FileName is the cache document inside the cache directory.
const FileName = "articles.json"

// ErrCorrupt is returned by Load when the cache exists but does not parse.
var ErrCorrupt = errors.New("article cache is corrupt")

// Store reads and writes the article cache under a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily by
// Replace.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the cache document path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Exists reports whether a cache document is present.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.Path())
	return err == nil && !info.IsDir()
}

// Load decodes the cached collection in stored order. A missing cache
// returns an error wrapping os.ErrNotExist; unparseable content returns one
// wrapping ErrCorrupt.
func (s *Store) Load() ([]types.Article, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, fmt.Errorf("reading article cache: %w", err)
	}

	var articles []types.Article
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCorrupt, s.Path())
	}
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return articles, nil
}

// Replace overwrites the cache with articles. The document is written to a
// temporary file and renamed into place, so readers see either the old or
// the new collection.
func (s *Store) Replace(articles []types.Article) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if articles == nil {
		articles = []types.Article{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(articles); err != nil {
		return fmt.Errorf("encoding article cache: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temporary cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temporary cache file: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("committing article cache: %w", err)
	}
	return nil
}

// Clear removes the cache document. Clearing an absent cache is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing article cache: %w", err)
	}
	return nil
}

// LastModified returns the time the cache was last written.
func (s *Store) LastModified() (time.Time, bool) {
	info, err := os.Stat(s.Path())
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// NeedsRefresh reports whether the cache is missing or older than interval.
// A non-positive interval never asks for a refresh of an existing cache.
func (s *Store) NeedsRefresh(now time.Time, interval time.Duration) bool {
	mod, ok := s.LastModified()
	if !ok {
		return true
	}
	if interval <= 0 {
		return false
	}
	return now.Sub(mod) >= interval
}
