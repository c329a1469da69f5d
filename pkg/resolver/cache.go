package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zeromicro/go-zero/core/logx"
)

// cacheVersion bumps whenever normalization or scoring changes in a way
// that invalidates previously persisted resolutions. Old files are
// ignored, not migrated.
const cacheVersion = 3

type cacheFile struct {
	Version int               `msgpack:"version"`
	Entries map[string]string `msgpack:"entries"`
}

// SymbolStore is the durable resolution cache: simplified input name to
// accepted symbol. Reads are served from memory; every write persists
// the whole map atomically.
type SymbolStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]string
}

// NewSymbolStore opens the cache at path, loading any compatible
// previous contents. An empty path yields a memory-only store. Load
// failures are logged and start the store empty; the cache is an
// optimization, never a source of truth.
func NewSymbolStore(path string) *SymbolStore {
	s := &SymbolStore{
		path:    versionedPath(path),
		entries: make(map[string]string),
	}
	if s.path == "" {
		return s
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logx.Errorf("resolver: read symbol cache %s: %v", s.path, err)
		}
		return s
	}
	var f cacheFile
	if err := msgpack.Unmarshal(raw, &f); err != nil {
		logx.Errorf("resolver: decode symbol cache %s: %v", s.path, err)
		return s
	}
	if f.Version != cacheVersion {
		logx.Infof("resolver: symbol cache %s is version %d, want %d, starting fresh", s.path, f.Version, cacheVersion)
		return s
	}
	if f.Entries != nil {
		s.entries = f.Entries
	}
	return s
}

// versionedPath inserts the cache version before the extension so that
// incompatible generations never clobber each other.
func versionedPath(path string) string {
	if path == "" {
		return ""
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + fmt.Sprintf(".v%d", cacheVersion) + ext
}

// Get returns the cached symbol for a simplified name.
func (s *SymbolStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sym, ok := s.entries[key]
	return sym, ok
}

// Put records a resolution and persists the store. Persistence errors
// are logged, not returned; the in-memory entry stays either way.
func (s *SymbolStore) Put(key, symbol string) {
	if key == "" || symbol == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[key]; ok && cur == symbol {
		return
	}
	s.entries[key] = symbol
	if err := s.persistLocked(); err != nil {
		logx.Errorf("resolver: persist symbol cache: %v", err)
	}
}

// Len reports the number of cached resolutions.
func (s *SymbolStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persistLocked writes the full map to a sibling temp file and renames
// it into place, so readers never observe a torn file.
func (s *SymbolStore) persistLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := msgpack.Marshal(cacheFile{Version: cacheVersion, Entries: s.entries})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
