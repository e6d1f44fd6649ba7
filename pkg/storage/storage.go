package storage

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
	"github.com/adfharrison1/go-entitystore/pkg/indexing"
)

// DefaultCacheSize is the read-cache capacity used when no explicit
// size is configured.
const DefaultCacheSize = 1024

var _ domain.StoreEngine = (*StorageEngine)(nil)

// collectionLock provides per-collection concurrency control.
type collectionLock struct {
	mu sync.RWMutex
}

// StorageEngine is the in-memory entity store: named collections of
// entities with secondary-field indexes, an equality/scan query path
// and a bounded read cache. All state is process-local and transient.
type StorageEngine struct {
	mu          sync.RWMutex // guards the collections registry
	collections map[string]*domain.Collection
	indexEngine *indexing.IndexEngine

	// Per-collection locks; writes hold the collection's exclusive
	// lock across the whole remove-indices/mutate/reindex sequence.
	collectionLocks map[string]*collectionLock
	locksMu         sync.RWMutex

	cacheEnabled bool
	cacheSize    int
	cache        *entityCache

	hits   atomic.Int64
	misses atomic.Int64
}

// StorageOption configures a StorageEngine.
type StorageOption func(*StorageEngine)

// WithCache enables or disables the entity read cache (default: enabled).
func WithCache(enabled bool) StorageOption {
	return func(engine *StorageEngine) {
		engine.cacheEnabled = enabled
	}
}

// WithCacheSize sets the read cache capacity in entities. A size of
// zero or less disables the cache.
func WithCacheSize(size int) StorageOption {
	return func(engine *StorageEngine) {
		engine.cacheSize = size
	}
}

// NewStorageEngine creates a new storage engine.
func NewStorageEngine(options ...StorageOption) *StorageEngine {
	engine := &StorageEngine{
		collections:     make(map[string]*domain.Collection),
		indexEngine:     indexing.NewIndexEngine(),
		collectionLocks: make(map[string]*collectionLock),
		cacheEnabled:    true,
		cacheSize:       DefaultCacheSize,
	}

	for _, option := range options {
		option(engine)
	}

	if engine.cacheSize <= 0 {
		engine.cacheEnabled = false
		engine.cacheSize = 0
	}
	engine.cache = newEntityCache(engine.cacheSize)

	return engine
}

// IndexEngine returns the engine's index manager.
func (se *StorageEngine) IndexEngine() *indexing.IndexEngine {
	return se.indexEngine
}

// getOrCreateCollectionLock gets or creates a lock for a collection.
func (se *StorageEngine) getOrCreateCollectionLock(collName string) *collectionLock {
	se.locksMu.RLock()
	if lock, exists := se.collectionLocks[collName]; exists {
		se.locksMu.RUnlock()
		return lock
	}
	se.locksMu.RUnlock()

	se.locksMu.Lock()
	defer se.locksMu.Unlock()

	// Double-check in case another goroutine created it
	if lock, exists := se.collectionLocks[collName]; exists {
		return lock
	}

	lock := &collectionLock{}
	se.collectionLocks[collName] = lock
	return lock
}

// withCollectionReadLock executes fn with a read lock on the collection.
func (se *StorageEngine) withCollectionReadLock(collName string, fn func()) {
	lock := se.getOrCreateCollectionLock(collName)
	lock.mu.RLock()
	defer lock.mu.RUnlock()
	fn()
}

// withCollectionWriteLock executes fn with a write lock on the collection.
func (se *StorageEngine) withCollectionWriteLock(collName string, fn func()) {
	lock := se.getOrCreateCollectionLock(collName)
	lock.mu.Lock()
	defer lock.mu.Unlock()
	fn()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
