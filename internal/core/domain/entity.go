package domain

import "github.com/google/uuid"

// Entity gives a domain object a stable identity.
type Entity struct {
	id string
}

func NewEntity(id string) Entity {
	return Entity{id: id}
}

func (e Entity) ID() string { return e.id }

// NewID returns a fresh identifier for aggregates, entities and documents.
func NewID() string {
	return uuid.NewString()
}
