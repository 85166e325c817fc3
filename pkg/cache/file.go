package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entrySuffix marks files this cache owns; Clear removes nothing else.
const entrySuffix = ".entry"

// FileCache stores entries on disk, one file per key, fanned out over
// subdirectories derived from the key hash. An entry file is a single JSON
// header line followed by the raw payload, so the geometry maps and scenes
// the pipeline caches (already JSON) stay inspectable with a text editor
// instead of being base64-wrapped inside another document.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating it if
// needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// entryHeader is the first line of every entry file.
type entryHeader struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value. A malformed or expired entry is removed and
// reported as a miss, never as an error.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	nl := bytes.IndexByte(raw, '\n')
	if nl < 0 {
		_ = os.Remove(path)
		return nil, false, nil
	}
	var hdr entryHeader
	if err := json.Unmarshal(raw[:nl], &hdr); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !hdr.ExpiresAt.IsZero() && time.Now().After(hdr.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return raw[nl+1:], true, nil
}

// Set stores a value. A non-positive ttl stores it without expiry.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	var hdr entryHeader
	if ttl > 0 {
		hdr.ExpiresAt = time.Now().Add(ttl)
	}
	head, err := json.Marshal(hdr)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	body := make([]byte, 0, len(head)+1+len(data))
	body = append(body, head...)
	body = append(body, '\n')
	body = append(body, data...)
	return os.WriteFile(path, body, 0644)
}

// Delete removes a value. Deleting an absent key is a no-op.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Clear removes every entry under the cache directory and prunes emptied
// fan-out subdirectories. Returns the number of entries removed. Files the
// cache does not own are left in place.
func (c *FileCache) Clear() (int, error) {
	subs, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, sub := range subs {
		if !sub.IsDir() {
			continue
		}
		subPath := filepath.Join(c.dir, sub.Name())
		files, err := os.ReadDir(subPath)
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), entrySuffix) {
				continue
			}
			if os.Remove(filepath.Join(subPath, f.Name())) == nil {
				removed++
			}
		}
		_ = os.Remove(subPath) // succeeds only when emptied
	}
	return removed, nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// path fans entry files out by key hash so no directory grows unbounded.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+entrySuffix)
}

var _ Cache = (*FileCache)(nil)
