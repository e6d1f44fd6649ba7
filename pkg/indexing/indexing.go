package indexing

import (
	"sync"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

// IndexEngine maintains the secondary indexes of every collection that
// configured indexed fields. The engine guards its own collection
// registry; mutation of one collection's index content must be
// serialized by the caller (the store holds a per-collection write
// lock across every index update).
type IndexEngine struct {
	mu      sync.RWMutex
	indexes map[string]map[string]*Index // collection name -> field name -> index
	fields  map[string][]string          // collection name -> configured field set
}

// NewIndexEngine creates a new index engine.
func NewIndexEngine() *IndexEngine {
	return &IndexEngine{
		indexes: make(map[string]map[string]*Index),
		fields:  make(map[string][]string),
	}
}

// Index stores a mapping from a field's canonical index key to the set
// of entity ids sharing that encoded value.
type Index struct {
	Field   string
	Buckets map[string]map[string]struct{}
}

// NewIndex creates an index on a specific field.
func NewIndex(field string) *Index {
	return &Index{
		Field:   field,
		Buckets: make(map[string]map[string]struct{}),
	}
}

// Add inserts an entity id into the bucket for the given key.
func (idx *Index) Add(key, id string) {
	bucket, ok := idx.Buckets[key]
	if !ok {
		bucket = make(map[string]struct{})
		idx.Buckets[key] = bucket
	}
	bucket[id] = struct{}{}
}

// Remove deletes an entity id from the bucket for the given key.
// Empty buckets are dropped so stale keys don't accumulate.
func (idx *Index) Remove(key, id string) {
	bucket, ok := idx.Buckets[key]
	if !ok {
		return
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(idx.Buckets, key)
	}
}

// Lookup returns the entity ids bucketed under the given key.
func (idx *Index) Lookup(key string) []string {
	bucket, ok := idx.Buckets[key]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	return ids
}

// InitCollection configures the indexed field set for a collection and
// creates an empty index per field. The field set is fixed at first
// initialization; calling again for a configured collection is a
// no-op. Reports whether this call did the configuring, so callers
// know when a backfill of existing entities is needed.
func (ie *IndexEngine) InitCollection(collName string, indexedFields []string) bool {
	ie.mu.Lock()
	defer ie.mu.Unlock()

	if _, exists := ie.fields[collName]; exists {
		return false
	}
	fields := make([]string, len(indexedFields))
	copy(fields, indexedFields)
	ie.fields[collName] = fields

	ie.indexes[collName] = make(map[string]*Index, len(fields))
	for _, field := range fields {
		ie.indexes[collName][field] = NewIndex(field)
	}
	return true
}

// collectionIndexes fetches a collection's index map under the
// registry lock.
func (ie *IndexEngine) collectionIndexes(collName string) map[string]*Index {
	ie.mu.RLock()
	defer ie.mu.RUnlock()
	return ie.indexes[collName]
}

// Fields returns the configured indexed field set for a collection.
func (ie *IndexEngine) Fields(collName string) []string {
	ie.mu.RLock()
	defer ie.mu.RUnlock()
	return ie.fields[collName]
}

// IsIndexed reports whether a field is indexed for a collection.
func (ie *IndexEngine) IsIndexed(collName, field string) bool {
	_, ok := ie.collectionIndexes(collName)[field]
	return ok
}

// UpdateIndices adds the entity's id to the bucket of every configured
// field whose value is present on the entity. Fields the entity does
// not carry are not indexed.
func (ie *IndexEngine) UpdateIndices(collName string, entity domain.Entity) {
	id := entity.ID()
	for field, idx := range ie.collectionIndexes(collName) {
		if value, ok := entity.ResolvePath(field); ok {
			idx.Add(Key(value), id)
		}
	}
}

// RemoveIndices is the mirror of UpdateIndices: it removes the
// entity's id using the entity's current (pre-mutation) field values.
func (ie *IndexEngine) RemoveIndices(collName string, entity domain.Entity) {
	id := entity.ID()
	for field, idx := range ie.collectionIndexes(collName) {
		if value, ok := entity.ResolvePath(field); ok {
			idx.Remove(Key(value), id)
		}
	}
}

// Lookup returns the entity ids indexed under the given key for a
// field, or nil when the field is not indexed.
func (ie *IndexEngine) Lookup(collName, field, key string) []string {
	idx, ok := ie.collectionIndexes(collName)[field]
	if !ok {
		return nil
	}
	return idx.Lookup(key)
}

// Clear empties every index of a collection while keeping the
// configured field set.
func (ie *IndexEngine) Clear(collName string) {
	indexes := ie.collectionIndexes(collName)
	for field := range indexes {
		indexes[field] = NewIndex(field)
	}
}

// Drop removes a collection's indexes and configuration entirely.
func (ie *IndexEngine) Drop(collName string) {
	ie.mu.Lock()
	defer ie.mu.Unlock()
	delete(ie.indexes, collName)
	delete(ie.fields, collName)
}

// Entries exports a field's index as key -> ids, for diagnostics and
// consistency checks.
func (ie *IndexEngine) Entries(collName, field string) map[string][]string {
	idx, ok := ie.collectionIndexes(collName)[field]
	if !ok {
		return nil
	}
	out := make(map[string][]string, len(idx.Buckets))
	for key, bucket := range idx.Buckets {
		ids := make([]string, 0, len(bucket))
		for id := range bucket {
			ids = append(ids, id)
		}
		out[key] = ids
	}
	return out
}
