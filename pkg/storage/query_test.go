package storage_test

import (
	"fmt"
	"testing"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
	"github.com/adfharrison1/go-entitystore/pkg/indexing"
	"github.com/adfharrison1/go-entitystore/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByFieldIndexed(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.InitCollection("players", []string{"name"})

	engine.Create("players", domain.Entity{"id": "p1", "name": "Anna"})
	engine.Create("players", domain.Entity{"id": "p2", "name": "Bob"})

	results := engine.FindByField("players", "name", "Anna")
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID())

	assert.Empty(t, engine.FindByField("players", "name", "Zoe"))
	assert.Empty(t, engine.FindByField("ghosts", "name", "Anna"))
}

func TestFindByFieldScanFallback(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.InitCollection("players", []string{"name"})

	engine.Create("players", domain.Entity{"id": "p1", "name": "Anna", "age": 25})
	engine.Create("players", domain.Entity{"id": "p2", "name": "Bob", "age": 25})
	engine.Create("players", domain.Entity{"id": "p3", "name": "Carol", "age": 40})

	// "age" is not indexed; the engine must scan
	results := engine.FindByField("players", "age", 25)
	ids := entityIDs(results)
	assert.ElementsMatch(t, []string{"p1", "p2"}, ids)
}

func TestFindByFieldDotPath(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.InitCollection("players", []string{"profile.level"})

	engine.Create("players", domain.Entity{
		"id": "p1", "profile": map[string]interface{}{"level": 5},
	})
	engine.Create("players", domain.Entity{
		"id": "p2", "profile": map[string]interface{}{"level": 9},
	})
	engine.Create("players", domain.Entity{"id": "p3"})

	// Indexed dot-path lookup
	results := engine.FindByField("players", "profile.level", 5)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID())

	// Non-indexed dot-path scan; missing paths are non-matches
	results = engine.FindByField("players", "profile.xp", 0)
	assert.Empty(t, results)
}

func TestUpdateMovesIndexEntry(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.InitCollection("players", []string{"name"})

	engine.Create("players", domain.Entity{"id": "p1", "name": "Bob"})
	_, ok := engine.Update("players", "p1", domain.Entity{"name": "Bobby"})
	require.True(t, ok)

	assert.Empty(t, engine.FindByField("players", "name", "Bob"))
	results := engine.FindByField("players", "name", "Bobby")
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID())
	assert.Equal(t, "Bobby", results[0]["name"])
}

func TestDeleteRemovesIndexEntry(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.InitCollection("players", []string{"name"})

	engine.Create("players", domain.Entity{"id": "p1", "name": "Eve"})
	engine.Create("players", domain.Entity{"id": "p2", "name": "Eve"})

	require.True(t, engine.Delete("players", "p1"))

	results := engine.FindByField("players", "name", "Eve")
	require.Len(t, results, 1)
	assert.Equal(t, "p2", results[0].ID())
}

// TestIndexScanEquivalence runs the same logical queries against an
// engine with the field indexed and one without; the result sets must
// be identical as unordered id sets.
func TestIndexScanEquivalence(t *testing.T) {
	indexed := storage.NewStorageEngine()
	indexed.InitCollection("players", []string{"tag"})
	scanned := storage.NewStorageEngine()
	scanned.InitCollection("players", nil)

	entities := []domain.Entity{
		{"id": "p1", "tag": "Bob"},
		{"id": "p2", "tag": "bob"},
		{"id": "p3", "tag": 30},
		{"id": "p4", "tag": 30.0},
		{"id": "p5", "tag": nil},
		{"id": "p6", "tag": []interface{}{1, 2}},
		{"id": "p7", "tag": map[string]interface{}{"a": 1, "b": 2}},
		{"id": "p8"},
	}
	for _, e := range entities {
		indexed.Create("players", e.Clone())
		scanned.Create("players", e.Clone())
	}

	queries := []interface{}{
		"Bob", "bob", "Zoe",
		30, 30.0, int64(30),
		nil,
		[]interface{}{1, 2},
		map[string]interface{}{"b": 2, "a": 1},
	}
	for _, value := range queries {
		want := entityIDs(scanned.FindByField("players", "tag", value))
		got := entityIDs(indexed.FindByField("players", "tag", value))
		assert.ElementsMatch(t, want, got, "query value %v", value)
	}
}

func TestQueryPredicateWithLimit(t *testing.T) {
	engine := storage.NewStorageEngine()
	for i, age := range []int{25, 32, 38, 44, 29} {
		engine.Create("players", domain.Entity{
			"id":  fmt.Sprintf("p%d", i+1),
			"age": age,
		})
	}

	over30 := func(e domain.Entity) bool {
		age, _ := e["age"].(int)
		return age > 30
	}

	results := engine.Query("players", over30, 2)
	assert.Len(t, results, 2)
	for _, e := range results {
		assert.Greater(t, e["age"].(int), 30)
	}

	// No limit returns every match
	assert.Len(t, engine.Query("players", over30, 0), 3)
}

func TestQueryUnknownCollection(t *testing.T) {
	engine := storage.NewStorageEngine()
	results := engine.Query("ghosts", func(domain.Entity) bool { return true }, 0)
	assert.Empty(t, results)
}

func TestQueryPredicatePanicPropagates(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.Create("players", domain.Entity{"id": "p1"})

	assert.Panics(t, func() {
		engine.Query("players", func(domain.Entity) bool {
			panic("caller bug")
		}, 0)
	})
}

// TestIndexConsistencyAfterInterleaving checks the bidirectional index
// invariant after a mix of creates, overwrites, updates and deletes.
func TestIndexConsistencyAfterInterleaving(t *testing.T) {
	engine := storage.NewStorageEngine()
	engine.InitCollection("players", []string{"guild"})

	guilds := []string{"red", "blue", "green"}
	for i := 0; i < 30; i++ {
		engine.Create("players", domain.Entity{
			"id":    fmt.Sprintf("p%d", i),
			"guild": guilds[i%len(guilds)],
		})
	}
	for i := 0; i < 30; i += 3 {
		engine.Update("players", fmt.Sprintf("p%d", i), domain.Entity{
			"guild": guilds[(i+1)%len(guilds)],
		})
	}
	for i := 0; i < 30; i += 5 {
		engine.Delete("players", fmt.Sprintf("p%d", i))
	}
	// Overwrites via Create on existing ids
	engine.Create("players", domain.Entity{"id": "p1", "guild": "gold"})
	engine.Create("players", domain.Entity{"id": "p2", "guild": "gold"})

	verifyIndexConsistency(t, engine, "players", "guild")
}

// verifyIndexConsistency asserts both directions of the index
// invariant: every entity is reachable through its field's bucket, and
// every bucketed id belongs to a live entity with a matching key.
func verifyIndexConsistency(t *testing.T, engine *storage.StorageEngine, collName, field string) {
	t.Helper()

	byID := make(map[string]domain.Entity)
	for _, entity := range engine.GetAll(collName) {
		byID[entity.ID()] = entity
	}
	entries := engine.IndexEngine().Entries(collName, field)

	for id, entity := range byID {
		value, present := entity.ResolvePath(field)
		if !present {
			continue
		}
		assert.Contains(t, entries[indexing.Key(value)], id,
			"entity %s missing from its bucket", id)
	}

	for key, ids := range entries {
		for _, id := range ids {
			entity, exists := byID[id]
			require.True(t, exists, "stale index entry %s under %q", id, key)
			value, present := entity.ResolvePath(field)
			require.True(t, present)
			assert.Equal(t, key, indexing.Key(value))
		}
	}
}

func entityIDs(entities []domain.Entity) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.ID())
	}
	return ids
}
