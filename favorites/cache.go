package favorites

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

// ErrCacheMiss is returned by Cache.Load when nothing was stored under the key.
var ErrCacheMiss = errors.New("favorites cache miss")

// Cache is the local best-effort copy of a user's favorite ids.
type Cache interface {
	Load(key string) ([]string, error)
	Store(key string, ids []string) error
}

// Key is the cache key for a user's favorites.
func Key(userID string) string {
	return "favorites_" + userID
}

// decodeIDs reads a JSON array whose items may be strings or numbers.
func decodeIDs(raw []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var items []interface{}
	if err := dec.Decode(&items); err != nil {
		return nil, errors.Wrap(err, "decoding cached favorites")
	}

	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		id := models.NormalizeID(item)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func encodeIDs(ids []string) ([]byte, error) {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)
	return json.Marshal(out)
}

// MemoryCache keeps serialized entries in a map.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string][]byte)}
}

func (c *MemoryCache) Load(key string) ([]string, error) {
	c.mu.RLock()
	raw, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrCacheMiss
	}
	return decodeIDs(raw)
}

func (c *MemoryCache) Store(key string, ids []string) error {
	raw, err := encodeIDs(ids)
	if err != nil {
		return errors.Wrap(err, "encoding favorites")
	}
	c.Put(key, raw)
	return nil
}

// Put stores a raw serialized value, e.g. data written by an older client.
func (c *MemoryCache) Put(key string, raw []byte) {
	c.mu.Lock()
	c.entries[key] = append([]byte(nil), raw...)
	c.mu.Unlock()
}

// FileCache stores one JSON file per key under Dir.
type FileCache struct {
	Dir string
	mu  sync.Mutex
}

func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache dir %s", dir)
	}
	return &FileCache{Dir: dir}, nil
}

func (c *FileCache) path(key string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)
	return filepath.Join(c.Dir, safe+".json")
}

func (c *FileCache) Load(key string) ([]string, error) {
	c.mu.Lock()
	raw, err := os.ReadFile(c.path(key))
	c.mu.Unlock()
	if os.IsNotExist(err) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading cached favorites")
	}
	return decodeIDs(raw)
}

func (c *FileCache) Store(key string, ids []string) error {
	raw, err := encodeIDs(ids)
	if err != nil {
		return errors.Wrap(err, "encoding favorites")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	target := c.path(key)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(err, "writing cached favorites")
	}
	return errors.Wrap(os.Rename(tmp, target), "replacing cached favorites")
}
