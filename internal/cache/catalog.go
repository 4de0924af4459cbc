package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Catalog is a file-based TTL cache for slow-changing course catalog
// data (universities, branches, semesters, subjects). Chat data is
// never cached: history and messages must always reflect the backend.
type Catalog struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// NewCatalog creates a catalog cache rooted at dir. A zero ttl or
// disabled cache turns every Get into a miss.
func NewCatalog(dir string, ttl time.Duration, enabled bool) *Catalog {
	return &Catalog{dir: dir, ttl: ttl, enabled: enabled && ttl > 0}
}

func (c *Catalog) key(listing string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s_%x.json", listing, hash)
}

// Get loads a cached listing into result. Returns false on any miss:
// disabled cache, missing file, expired entry, or unreadable content.
func (c *Catalog) Get(listing string, params interface{}, result interface{}) bool {
	if !c.enabled {
		return false
	}

	path := filepath.Join(c.dir, c.key(listing, params))
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if time.Since(info.ModTime()) > c.ttl {
		os.Remove(path)
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, result) == nil
}

// Set stores a listing. Write failures are returned but callers may
// ignore them; the cache is advisory.
func (c *Catalog) Set(listing string, params interface{}, data interface{}) error {
	if !c.enabled {
		return nil
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, c.key(listing, params)), payload, 0o644)
}

// Clear removes every cached listing.
func (c *Catalog) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}
	return nil
}
