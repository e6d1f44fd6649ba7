package storage

import (
	"runtime"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

// CacheStats returns the read-cache hit/miss counters accumulated
// since construction or the last reset. The counters are diagnostics
// only; they never alter read or write behavior. With the cache
// disabled both counters stay at zero.
func (se *StorageEngine) CacheStats() domain.CacheStats {
	hits := se.hits.Load()
	misses := se.misses.Load()

	stats := domain.CacheStats{Hits: hits, Misses: misses}
	if total := hits + misses; total > 0 {
		stats.Ratio = float64(hits) / float64(total)
	}
	return stats
}

// ResetCacheStats zeroes the hit/miss counters.
func (se *StorageEngine) ResetCacheStats() {
	se.hits.Store(0)
	se.misses.Store(0)
}

// MemoryStats returns process memory diagnostics alongside store sizing.
func (se *StorageEngine) MemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	se.mu.RLock()
	collections := len(se.collections)
	se.mu.RUnlock()

	return map[string]interface{}{
		"alloc_mb":        m.Alloc / 1024 / 1024,
		"total_alloc_mb":  m.TotalAlloc / 1024 / 1024,
		"sys_mb":          m.Sys / 1024 / 1024,
		"num_goroutines":  runtime.NumGoroutine(),
		"cached_entities": se.cache.Len(),
		"collections":     collections,
	}
}
