package webgrep

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/webgrep/webgrep/internal/filecache"
)

// Cache is a persistent URL -> FetchOutcome mapping. Get never blocks
// meaningfully and never fails observably; Set is best-effort and must
// never propagate an error.
type Cache interface {
	Get(url string) (FetchOutcome, bool)
	Set(url string, outcome FetchOutcome)
}

// fileCache is the reference Cache: an in-memory LRU front backed by the
// on-disk filecache.Store, so a run that revisits many links to the same
// popular page doesn't pay a disk read every time. Values persisted here
// are immutable for the lifetime of the key, so there is no TTL/eviction
// coherency concern with fronting it in an LRU.
type fileCache struct {
	hot   *lru.Cache
	store *filecache.Store
}

// OpenCache opens (creating if necessary) a file-backed Cache rooted at
// dir, fronted by an in-memory LRU of hotSize entries. A failure to create
// the directory is a fatal cache-initialization error.
func OpenCache(dir string, hotSize int) (Cache, error) {
	store, err := filecache.Open(dir)
	if err != nil {
		return nil, err
	}
	if hotSize <= 0 {
		hotSize = 1
	}
	hot, err := lru.New(hotSize)
	if err != nil {
		return nil, err
	}
	return &fileCache{hot: hot, store: store}, nil
}

func (c *fileCache) Get(url string) (FetchOutcome, bool) {
	if v, ok := c.hot.Get(url); ok {
		return v.(FetchOutcome), true
	}
	var outcome FetchOutcome
	if !c.store.Get(url, &outcome) {
		return FetchOutcome{}, false
	}
	c.hot.Add(url, outcome)
	return outcome, true
}

func (c *fileCache) Set(url string, outcome FetchOutcome) {
	c.hot.Add(url, outcome)
	c.store.Set(url, outcome)
}

// memCache is a process-local Cache with no persistence, used in tests and
// by callers who don't want an on-disk footprint. Request and page tasks
// call into it from many goroutines at once, so access is mutex-guarded.
type memCache struct {
	mu      sync.Mutex
	entries map[string]FetchOutcome
}

// NewMemCache returns an in-memory-only Cache satisfying the same contract
// as the file-backed one, minus durability.
func NewMemCache() Cache {
	return &memCache{entries: make(map[string]FetchOutcome)}
}

func (c *memCache) Get(url string) (FetchOutcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	o, ok := c.entries[url]
	return o, ok
}

func (c *memCache) Set(url string, outcome FetchOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = outcome
}
