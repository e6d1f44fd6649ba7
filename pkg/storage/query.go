package storage

import (
	"github.com/adfharrison1/go-entitystore/pkg/domain"
	"github.com/adfharrison1/go-entitystore/pkg/indexing"
)

// FindByField returns every entity whose field (a dot-path) equals
// value. When the field is indexed for the collection the lookup is a
// single bucket read; otherwise the engine falls back to a full scan.
// Both paths return the same result set for the same logical query.
// Unknown collections yield an empty slice.
func (se *StorageEngine) FindByField(name, field string, value interface{}) []domain.Entity {
	collection, exists := se.getCollection(name)
	if !exists {
		return []domain.Entity{}
	}

	results := []domain.Entity{}
	se.withCollectionReadLock(name, func() {
		if se.indexEngine.IsIndexed(name, field) {
			ids := se.indexEngine.Lookup(name, field, indexing.Key(value))
			for _, id := range ids {
				// Filter ids defensively; the index should never
				// hold an id the collection doesn't.
				if entity, exists := collection.Entities[id]; exists {
					results = append(results, entity)
				}
			}
			return
		}

		for _, entity := range collection.Entities {
			fieldValue, present := entity.ResolvePath(field)
			if present && valuesEqual(fieldValue, value) {
				results = append(results, entity)
			}
		}
	})
	return results
}

// Query scans a collection applying predicate over live entity values.
// A positive limit truncates the result to the first limit matches in
// map iteration order, which is unspecified. Predicate panics are not
// recovered; the engine does not own the caller's logic. Unknown
// collections yield an empty slice.
func (se *StorageEngine) Query(name string, predicate func(domain.Entity) bool, limit int) []domain.Entity {
	collection, exists := se.getCollection(name)
	if !exists {
		return []domain.Entity{}
	}

	results := []domain.Entity{}
	se.withCollectionReadLock(name, func() {
		for _, entity := range collection.Entities {
			if !predicate(entity) {
				continue
			}
			results = append(results, entity)
			if limit > 0 && len(results) >= limit {
				return
			}
		}
	})
	return results
}

// valuesEqual compares two field values under the same canonical
// encoding the indexes use, so the scan path and the indexed path
// agree on every query (notably across numeric kinds: an int 30 and a
// float64 30 compare equal on both paths).
func valuesEqual(actual, expected interface{}) bool {
	return indexing.Key(actual) == indexing.Key(expected)
}
