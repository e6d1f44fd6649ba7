package storage

import (
	"container/list"
	"strings"
	"sync"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

// entityCache is a bounded LRU of recently read entities, keyed by
// "<collection>/<id>". A zero capacity cache stores nothing.
type entityCache struct {
	mu       sync.Mutex
	capacity int
	list     *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key    string
	entity domain.Entity
}

func cacheKey(collName, id string) string {
	return collName + "/" + id
}

func newEntityCache(capacity int) *entityCache {
	return &entityCache{
		capacity: capacity,
		list:     list.New(),
		items:    make(map[string]*list.Element),
	}
}

func (c *entityCache) Get(key string) (domain.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		c.list.MoveToFront(element)
		return element.Value.(*cacheEntry).entity, true
	}
	return nil, false
}

func (c *entityCache) Put(key string, entity domain.Entity) {
	if c.capacity <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		element.Value.(*cacheEntry).entity = entity
		c.list.MoveToFront(element)
		return
	}

	element := c.list.PushFront(&cacheEntry{key: key, entity: entity})
	c.items[key] = element

	if c.list.Len() > c.capacity {
		c.evictOldest()
	}
}

func (c *entityCache) evictOldest() {
	element := c.list.Back()
	if element != nil {
		entry := element.Value.(*cacheEntry)
		delete(c.items, entry.key)
		c.list.Remove(element)
	}
}

func (c *entityCache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		delete(c.items, key)
		c.list.Remove(element)
	}
}

// RemoveCollection drops every cached entity of a collection.
func (c *entityCache) RemoveCollection(collName string) {
	prefix := collName + "/"

	c.mu.Lock()
	defer c.mu.Unlock()

	for key, element := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
			c.list.Remove(element)
		}
	}
}

func (c *entityCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.list.Init()
	c.items = make(map[string]*list.Element)
}

func (c *entityCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list.Len()
}
