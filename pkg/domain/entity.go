package domain

import "strings"

// Reserved field names every stored entity carries.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Entity represents a schema-free record in a collection. Beyond the
// reserved id/createdAt/updatedAt fields the field set is open.
type Entity map[string]interface{}

// BaseEntity is the minimal shape required of typed records stored
// through a repository. Embed it (anonymously) in an entity struct to
// satisfy the repository's entity contract.
type BaseEntity struct {
	ID        string `msgpack:"id" json:"id"`
	CreatedAt int64  `msgpack:"createdAt" json:"createdAt"`
	UpdatedAt int64  `msgpack:"updatedAt" json:"updatedAt"`
}

// GetBase returns the embedded base so generic code can reach the
// id and timestamp fields of any entity struct.
func (b *BaseEntity) GetBase() *BaseEntity { return b }

// ID returns the entity's identifier, or "" when unset.
func (e Entity) ID() string {
	id, _ := e[FieldID].(string)
	return id
}

// Clone returns a shallow copy of the entity. Top-level fields can be
// reassigned on the copy without affecting the original.
func (e Entity) Clone() Entity {
	clone := make(Entity, len(e))
	for k, v := range e {
		clone[k] = v
	}
	return clone
}

// ResolvePath resolves a dot-path field name ("profile.level") against
// the entity. The boolean reports whether the full path exists.
func (e Entity) ResolvePath(path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = map[string]interface{}(e)
	for _, part := range parts {
		var m map[string]interface{}
		switch v := current.(type) {
		case map[string]interface{}:
			m = v
		case Entity:
			m = v
		default:
			return nil, false
		}
		next, ok := m[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}
