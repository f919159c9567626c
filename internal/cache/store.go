package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const (
	cacheFileExtension = ".json"
	bytesPerMB         = 1024 * 1024
)

// Common cache errors.
var (
	ErrCacheNotFound = errors.New("cache entry not found")
	ErrCacheExpired  = errors.New("cache entry expired")
	ErrInvalidURL    = errors.New("cache URL cannot be empty")
	ErrCacheDisabled = errors.New("cache is disabled")
)

// FileStore keeps one JSON file per cached URL. Safe for concurrent use.
type FileStore struct {
	directory  string
	enabled    bool
	ttlSeconds int
	maxSizeMB  int

	mu sync.RWMutex
}

// Stats summarises the store contents.
type Stats struct {
	Directory  string
	Entries    int
	Expired    int
	SizeBytes  int64
	TTLSeconds int
	Oldest     time.Time
}

// NewFileStore opens (creating if needed) a store rooted at directory.
// A disabled store accepts every call and reports ErrCacheDisabled.
func NewFileStore(directory string, enabled bool, ttlSeconds, maxSizeMB int) (*FileStore, error) {
	if !enabled {
		return &FileStore{enabled: false}, nil
	}
	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &FileStore{
		directory:  directory,
		enabled:    true,
		ttlSeconds: ttlSeconds,
		maxSizeMB:  maxSizeMB,
	}, nil
}

// Get returns the cached body for url.
func (s *FileStore) Get(url string) (*Entry, error) {
	if !s.enabled {
		return nil, ErrCacheDisabled
	}
	if url == "" {
		return nil, ErrInvalidURL
	}

	path := s.pathFor(url)
	s.mu.RLock()
	data, err := os.ReadFile(path)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(path)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}
	return &entry, nil
}

// Set stores body for url, replacing any previous entry. A zero TTL store
// skips writing.
func (s *FileStore) Set(url string, body json.RawMessage) error {
	if !s.enabled {
		return ErrCacheDisabled
	}
	if url == "" {
		return ErrInvalidURL
	}
	if s.ttlSeconds <= 0 {
		return nil
	}

	entryData, err := json.MarshalIndent(NewEntry(url, body, s.ttlSeconds), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pathFor(url)
	tempPath := path + ".tmp"
	if err = os.WriteFile(tempPath, entryData, 0o600); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", err)
	}

	return s.enforceLimitLocked()
}

// Clear removes every entry and returns how many were deleted.
func (s *FileStore) Clear() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	for i, f := range files {
		if err = os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return i, fmt.Errorf("failed to remove cache file %s: %w", filepath.Base(f.path), err)
		}
	}
	return len(files), nil
}

// CleanupExpired deletes expired entries and returns how many were removed.
func (s *FileStore) CleanupExpired() (int, error) {
	if !s.enabled {
		return 0, ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.listLocked()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, f := range files {
		entry, readErr := readEntry(f.path)
		if readErr != nil {
			continue
		}
		if entry.IsExpired() {
			_ = os.Remove(f.path)
			removed++
		}
	}
	return removed, nil
}

// Stats reports entry counts and disk usage.
func (s *FileStore) Stats() (Stats, error) {
	if !s.enabled {
		return Stats{}, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	files, err := s.listLocked()
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Directory: s.directory, TTLSeconds: s.ttlSeconds, Entries: len(files)}
	for _, f := range files {
		st.SizeBytes += f.size
		entry, readErr := readEntry(f.path)
		if readErr != nil {
			continue
		}
		if entry.IsExpired() {
			st.Expired++
		}
		if st.Oldest.IsZero() || entry.CreatedAt.Before(st.Oldest) {
			st.Oldest = entry.CreatedAt
		}
	}
	return st, nil
}

// IsEnabled reports whether the store reads and writes entries.
func (s *FileStore) IsEnabled() bool { return s.enabled }

// Directory returns the store root.
func (s *FileStore) Directory() string { return s.directory }

// TTL returns the entry lifetime in seconds.
func (s *FileStore) TTL() int { return s.ttlSeconds }

type cacheFile struct {
	path    string
	size    int64
	modTime time.Time
}

func (s *FileStore) listLocked() ([]cacheFile, error) {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	files := make([]cacheFile, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != cacheFileExtension {
			continue
		}
		info, infoErr := de.Info()
		if infoErr != nil {
			continue
		}
		files = append(files, cacheFile{
			path:    filepath.Join(s.directory, de.Name()),
			size:    info.Size(),
			modTime: info.ModTime(),
		})
	}
	return files, nil
}

// enforceLimitLocked evicts the oldest files until the store fits maxSizeMB.
func (s *FileStore) enforceLimitLocked() error {
	if s.maxSizeMB <= 0 {
		return nil
	}
	files, err := s.listLocked()
	if err != nil {
		return err
	}
	limit := int64(s.maxSizeMB) * bytesPerMB
	var total int64
	for _, f := range files {
		total += f.size
	}
	if total <= limit {
		return nil
	}
	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, f := range files {
		if total <= limit {
			break
		}
		if rmErr := os.Remove(f.path); rmErr == nil {
			total -= f.size
		}
	}
	return nil
}

func (s *FileStore) pathFor(url string) string {
	return filepath.Join(s.directory, KeyForURL(url)+cacheFileExtension)
}

func readEntry(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err = json.Unmarshal(data, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
