package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/adfharrison1/go-entitystore/pkg/domain"
)

// Entity is the contract typed records must satisfy. Embedding
// domain.BaseEntity in a struct provides it.
type Entity interface {
	GetBase() *domain.BaseEntity
}

// Repository is a typed façade bound to one collection of a store. It
// centralizes id and timestamp generation and delegates every read and
// write to the store; it never caches or batches on its own.
//
// T is the entity struct type; repositories operate on *T throughout.
type Repository[T any, PT interface {
	Entity
	*T
}] struct {
	store      domain.StoreEngine
	collection string
}

// New creates a repository bound to a collection, initializing the
// collection and its indexed field set on the given store.
func New[T any, PT interface {
	Entity
	*T
}](store domain.StoreEngine, collection string, indexedFields []string) *Repository[T, PT] {
	store.InitCollection(collection, indexedFields)
	return &Repository[T, PT]{store: store, collection: collection}
}

// Collection returns the collection name the repository is bound to.
func (r *Repository[T, PT]) Collection() string {
	return r.collection
}

// Create assigns a fresh id and creation timestamps to data and stores
// it. The id has the form "<collection>_<millis>_<random>"; createdAt
// and updatedAt are set to the same instant.
func (r *Repository[T, PT]) Create(data PT) (PT, error) {
	now := time.Now().UnixMilli()
	base := data.GetBase()
	base.ID = fmt.Sprintf("%s_%d_%s", r.collection, now, uuid.NewString()[:8])
	base.CreatedAt = now
	base.UpdatedAt = now

	entity, err := toEntity[T, PT](data)
	if err != nil {
		return nil, err
	}
	r.store.Create(r.collection, entity)
	return data, nil
}

// FindByID returns the entity with the given id, or nil when it
// doesn't exist.
func (r *Repository[T, PT]) FindByID(id string) (PT, error) {
	entity := r.store.Read(r.collection, id)
	if entity == nil {
		return nil, nil
	}
	return fromEntity[T, PT](entity)
}

// FindByIDs returns the entities for the given ids, silently dropping
// ids that don't exist.
func (r *Repository[T, PT]) FindByIDs(ids []string) ([]PT, error) {
	return decodeAll[T, PT](r.store.ReadMany(r.collection, ids))
}

// FindAll returns every entity in the collection.
func (r *Repository[T, PT]) FindAll() ([]PT, error) {
	return decodeAll[T, PT](r.store.GetAll(r.collection))
}

// FindBy returns every entity whose field (a dot-path) equals value.
func (r *Repository[T, PT]) FindBy(field string, value interface{}) ([]PT, error) {
	return decodeAll[T, PT](r.store.FindByField(r.collection, field, value))
}

// Query returns entities satisfying predicate, at most limit of them
// when limit is positive. Iteration order is unspecified.
func (r *Repository[T, PT]) Query(predicate func(PT) bool, limit int) ([]PT, error) {
	records := []PT{}
	var decodeErr error
	r.store.Query(r.collection, func(entity domain.Entity) bool {
		if decodeErr != nil {
			return false
		}
		record, err := fromEntity[T, PT](entity)
		if err != nil {
			decodeErr = err
			return false
		}
		if !predicate(record) {
			return false
		}
		records = append(records, record)
		return true
	}, limit)
	if decodeErr != nil {
		return nil, decodeErr
	}
	return records, nil
}

// Count returns the number of entities in the collection.
func (r *Repository[T, PT]) Count() int {
	return r.store.Count(r.collection)
}

// Update merges patch into the stored entity. The id cannot be
// changed; updatedAt is refreshed by the store. Returns nil when no
// entity has that id.
func (r *Repository[T, PT]) Update(id string, patch map[string]interface{}) (PT, error) {
	merged, ok := r.store.Update(r.collection, id, domain.Entity(patch))
	if !ok {
		return nil, nil
	}
	return fromEntity[T, PT](merged)
}

// Delete removes the entity with the given id. Returns false when it
// doesn't exist.
func (r *Repository[T, PT]) Delete(id string) bool {
	return r.store.Delete(r.collection, id)
}

// toEntity converts a typed record into the store's map shape via a
// msgpack round trip, so nested structs become nested maps and dot-path
// indexing applies to them.
func toEntity[T any, PT interface {
	Entity
	*T
}](data PT) (domain.Entity, error) {
	raw, err := msgpack.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	var entity domain.Entity
	if err := msgpack.Unmarshal(raw, &entity); err != nil {
		return nil, fmt.Errorf("failed to decode entity fields: %w", err)
	}
	return entity, nil
}

// fromEntity is the inverse of toEntity.
func fromEntity[T any, PT interface {
	Entity
	*T
}](entity domain.Entity) (PT, error) {
	raw, err := msgpack.Marshal(map[string]interface{}(entity))
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity fields: %w", err)
	}
	record := PT(new(T))
	if err := msgpack.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("failed to decode entity: %w", err)
	}
	return record, nil
}

func decodeAll[T any, PT interface {
	Entity
	*T
}](entities []domain.Entity) ([]PT, error) {
	records := make([]PT, 0, len(entities))
	for _, entity := range entities {
		record, err := fromEntity[T, PT](entity)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
