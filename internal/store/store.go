package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/popcorn/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketResponses = []byte("responses")
	bucketHistory   = []byte("history")
)

const (
	historyKey = "queries"

	// MaxHistory bounds the number of remembered search queries.
	MaxHistory = 50
)

// cachedResponse is the persisted form of a catalog response.
type cachedResponse struct {
	StoredAt time.Time               `json:"stored_at"`
	Response *domain.CatalogResponse `json:"response"`
}

// CatalogStore implements domain.ResponseStore using BoltDB.
type CatalogStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// NewCatalogStore opens the store under baseCacheDir, in a subdirectory
// derived from the catalog URL so different catalogs never share entries.
// An empty baseCacheDir keeps everything in memory.
func NewCatalogStore(baseCacheDir, catalogURL string) (*CatalogStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &CatalogStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if catalogURL != "" {
		dir = filepath.Join(baseCacheDir, HashKey(normalizeURL(catalogURL)))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "popcorn.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketResponses, bucketHistory} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db, cache: make(map[string][]byte)}, nil
}

// HashKey returns a short stable hex digest of s, used for directory names
// and cache keys so credentials in request targets are never stored.
func HashKey(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:12])
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.ToLower(u), "/")
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CatalogStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CatalogStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *CatalogStore) clearBucket(bucket []byte) {
	s.mu.Lock()
	prefix := string(bucket) + ":"
	for k := range s.cache {
		if strings.HasPrefix(k, prefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Responses ===

// GetResponse returns a cached response and when it was stored.
func (s *CatalogStore) GetResponse(key string) (*domain.CatalogResponse, time.Time, bool) {
	var entry cachedResponse
	if !s.get(bucketResponses, key, &entry) || entry.Response == nil {
		return nil, time.Time{}, false
	}
	return entry.Response, entry.StoredAt, true
}

// SaveResponse caches resp under key, stamped with the current time.
func (s *CatalogStore) SaveResponse(key string, resp *domain.CatalogResponse) error {
	return s.set(bucketResponses, key, cachedResponse{StoredAt: time.Now(), Response: resp})
}

// ResponseCount returns the number of persisted responses.
func (s *CatalogStore) ResponseCount() int {
	if s.db == nil {
		s.mu.RLock()
		defer s.mu.RUnlock()
		n := 0
		for k := range s.cache {
			if strings.HasPrefix(k, string(bucketResponses)+":") {
				n++
			}
		}
		return n
	}

	n := 0
	s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketResponses); b != nil {
			n = b.Stats().KeyN
		}
		return nil
	})
	return n
}

// InvalidateAll drops every cached response. Search history is kept.
func (s *CatalogStore) InvalidateAll() {
	s.clearBucket(bucketResponses)
}

// === Search history ===

// RecordQuery moves query to the front of the history, dropping duplicates
// (case-insensitive) and the oldest entries beyond MaxHistory.
func (s *CatalogStore) RecordQuery(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	history := s.RecentQueries()
	updated := make([]string, 0, len(history)+1)
	updated = append(updated, query)
	for _, q := range history {
		if !strings.EqualFold(q, query) {
			updated = append(updated, q)
		}
	}
	if len(updated) > MaxHistory {
		updated = updated[:MaxHistory]
	}
	return s.set(bucketHistory, historyKey, updated)
}

// RecentQueries returns remembered queries, most recent first.
func (s *CatalogStore) RecentQueries() []string {
	var history []string
	s.get(bucketHistory, historyKey, &history)
	return history
}

// ClearHistory forgets all search queries.
func (s *CatalogStore) ClearHistory() {
	s.clearBucket(bucketHistory)
}
