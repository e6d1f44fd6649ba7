package storage

import (
	"github.com/google/uuid"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

// Create stores an entity in a collection, creating the collection
// lazily if needed. An entity whose id matches an existing one
// overwrites it silently (last write wins); entities without an id are
// assigned a generated one. Returns the stored entity.
func (se *StorageEngine) Create(name string, entity domain.Entity) domain.Entity {
	collection := se.getOrCreateCollection(name)
	se.withCollectionWriteLock(name, func() {
		se.createLocked(collection, name, entity)
	})
	return entity
}

// CreateMany stores a batch of entities under a single collection
// write lock, with the same semantics as Create per entity.
func (se *StorageEngine) CreateMany(name string, entities []domain.Entity) []domain.Entity {
	collection := se.getOrCreateCollection(name)
	se.withCollectionWriteLock(name, func() {
		for _, entity := range entities {
			se.createLocked(collection, name, entity)
		}
	})
	return entities
}

func (se *StorageEngine) createLocked(collection *domain.Collection, name string, entity domain.Entity) {
	id := entity.ID()
	if id == "" {
		id = uuid.NewString()
		entity[domain.FieldID] = id
	}

	// Drop the old entity's index entries first so an overwrite
	// leaves no stale ids behind.
	if existing, exists := collection.Entities[id]; exists {
		se.indexEngine.RemoveIndices(name, existing)
		se.cache.Remove(cacheKey(name, id))
	}

	collection.Entities[id] = entity
	se.indexEngine.UpdateIndices(name, entity)
}

// Read returns the entity with the given id, or nil when the
// collection or the id is unknown.
func (se *StorageEngine) Read(name, id string) domain.Entity {
	key := cacheKey(name, id)
	if se.cacheEnabled {
		if entity, found := se.cache.Get(key); found {
			se.hits.Add(1)
			return entity
		}
		se.misses.Add(1)
	}

	// Populate the cache inside the read lock: a Put after the lock is
	// released could race a concurrent Update/Delete and re-insert the
	// pre-mutation entity after its invalidation already ran.
	var result domain.Entity
	if collection, exists := se.getCollection(name); exists {
		se.withCollectionReadLock(name, func() {
			if entity, exists := collection.Entities[id]; exists {
				result = entity
				if se.cacheEnabled {
					se.cache.Put(key, result)
				}
			}
		})
	}
	return result
}

// ReadMany returns the entities for the given ids, silently dropping
// ids that don't exist.
func (se *StorageEngine) ReadMany(name string, ids []string) []domain.Entity {
	results := []domain.Entity{}
	for _, id := range ids {
		if entity := se.Read(name, id); entity != nil {
			results = append(results, entity)
		}
	}
	return results
}

// Update merges patch into the entity with the given id: the id field
// is preserved, updatedAt is refreshed and the affected index entries
// are rebuilt, all inside the collection's write lock. Returns the
// merged entity, or (nil, false) when no entity has that id.
func (se *StorageEngine) Update(name, id string, patch domain.Entity) (domain.Entity, bool) {
	collection, exists := se.getCollection(name)
	if !exists {
		return nil, false
	}

	var merged domain.Entity
	se.withCollectionWriteLock(name, func() {
		existing, exists := collection.Entities[id]
		if !exists {
			return
		}

		se.indexEngine.RemoveIndices(name, existing)

		merged = existing.Clone()
		for field, value := range patch {
			if field == domain.FieldID {
				continue
			}
			merged[field] = value
		}
		merged[domain.FieldUpdatedAt] = nowMillis()

		collection.Entities[id] = merged
		se.indexEngine.UpdateIndices(name, merged)
		se.cache.Remove(cacheKey(name, id))
	})

	if merged == nil {
		return nil, false
	}
	return merged, true
}

// Delete removes the entity with the given id from the collection and
// from every index entry it participated in. Returns false when the
// collection or the id is unknown.
func (se *StorageEngine) Delete(name, id string) bool {
	collection, exists := se.getCollection(name)
	if !exists {
		return false
	}

	var deleted bool
	se.withCollectionWriteLock(name, func() {
		entity, exists := collection.Entities[id]
		if !exists {
			return
		}
		se.indexEngine.RemoveIndices(name, entity)
		delete(collection.Entities, id)
		se.cache.Remove(cacheKey(name, id))
		deleted = true
	})
	return deleted
}
