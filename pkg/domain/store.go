package domain

// CacheStats reports read-cache effectiveness since the last reset.
// The counters are advisory diagnostics; they never gate behavior.
type CacheStats struct {
	Hits   int64   `json:"hits"`
	Misses int64   `json:"misses"`
	Ratio  float64 `json:"ratio"`
}

// StoreEngine defines the interface for the in-memory entity store.
// Missing records are reported through nil/false returns, never errors;
// all operations run to completion in memory.
type StoreEngine interface {
	InitCollection(name string, indexedFields []string)
	Create(name string, entity Entity) Entity
	CreateMany(name string, entities []Entity) []Entity
	Read(name, id string) Entity
	ReadMany(name string, ids []string) []Entity
	GetAll(name string) []Entity
	Count(name string) int
	ClearCollection(name string)
	DropCollection(name string)
	FindByField(name, field string, value interface{}) []Entity
	Query(name string, predicate func(Entity) bool, limit int) []Entity
	Update(name, id string, patch Entity) (Entity, bool)
	Delete(name, id string) bool
	CacheStats() CacheStats
	ResetCacheStats()
}
