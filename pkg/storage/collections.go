package storage

import (
	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

// InitCollection registers a collection together with its indexed
// field set. The field set is fixed at the first explicit
// initialization; calling InitCollection again afterwards is a no-op.
// A collection created lazily by Create stays unindexed until it is
// explicitly initialized, at which point existing entities are
// backfilled into the new indexes.
func (se *StorageEngine) InitCollection(name string, indexedFields []string) {
	se.mu.Lock()
	collection, exists := se.collections[name]
	if !exists {
		collection = domain.NewCollection(name)
		se.collections[name] = collection
	}
	se.mu.Unlock()

	se.withCollectionWriteLock(name, func() {
		if !se.indexEngine.InitCollection(name, indexedFields) {
			return
		}
		for _, entity := range collection.Entities {
			se.indexEngine.UpdateIndices(name, entity)
		}
	})
}

// getOrCreateCollection returns the named collection, creating it
// lazily on first access. Lazy creation leaves the indexed-field set
// unconfigured so a later explicit InitCollection still applies.
func (se *StorageEngine) getOrCreateCollection(name string) *domain.Collection {
	se.mu.RLock()
	if collection, exists := se.collections[name]; exists {
		se.mu.RUnlock()
		return collection
	}
	se.mu.RUnlock()

	se.mu.Lock()
	defer se.mu.Unlock()

	if collection, exists := se.collections[name]; exists {
		return collection
	}

	collection := domain.NewCollection(name)
	se.collections[name] = collection
	return collection
}

// getCollection returns the named collection when it exists.
func (se *StorageEngine) getCollection(name string) (*domain.Collection, bool) {
	se.mu.RLock()
	defer se.mu.RUnlock()
	collection, exists := se.collections[name]
	return collection, exists
}

// GetAll returns every entity in a collection. Unknown collections
// yield an empty slice.
func (se *StorageEngine) GetAll(name string) []domain.Entity {
	collection, exists := se.getCollection(name)
	if !exists {
		return []domain.Entity{}
	}

	results := []domain.Entity{}
	se.withCollectionReadLock(name, func() {
		for _, entity := range collection.Entities {
			results = append(results, entity)
		}
	})
	return results
}

// Count returns the number of entities in a collection.
func (se *StorageEngine) Count(name string) int {
	collection, exists := se.getCollection(name)
	if !exists {
		return 0
	}

	var count int
	se.withCollectionReadLock(name, func() {
		count = len(collection.Entities)
	})
	return count
}

// ClearCollection removes every entity and index entry of a collection
// while keeping its indexed-field configuration. Clearing an unknown
// collection is a no-op.
func (se *StorageEngine) ClearCollection(name string) {
	collection, exists := se.getCollection(name)
	if !exists {
		return
	}

	se.withCollectionWriteLock(name, func() {
		collection.Entities = make(map[string]domain.Entity)
		se.indexEngine.Clear(name)
		se.cache.RemoveCollection(name)
	})
}

// DropCollection removes a collection's entities, indexes and
// configuration entirely. Dropping an unknown collection is a no-op.
func (se *StorageEngine) DropCollection(name string) {
	se.withCollectionWriteLock(name, func() {
		se.mu.Lock()
		delete(se.collections, name)
		se.mu.Unlock()
		se.indexEngine.Drop(name)
		se.cache.RemoveCollection(name)
	})
}
