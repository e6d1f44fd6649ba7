package domain

// Collection represents a named grouping of entities of one shape,
// backed by a map from entity id to entity.
type Collection struct {
	Name     string            `json:"name"`
	Entities map[string]Entity `json:"entities"`
}

// NewCollection creates an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		Name:     name,
		Entities: make(map[string]Entity),
	}
}
