package models

// componentStore is the type-erased view of a Store used by the Registry.
type componentStore interface {
	has(Entity) bool
	remove(Entity)
	get(Entity) (any, bool)
	entities() []Entity
}

// Store is a sparse container for one component type.
type Store[T any] struct {
	components map[Entity]*T
	dense      []Entity
}

func newStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[Entity]*T),
		dense:      make([]Entity, 0, 16),
	}
}

func (s *Store[T]) set(e Entity, val T) *T {
	if ptr, ok := s.components[e]; ok {
		*ptr = val
		return ptr
	}
	ptr := new(T)
	*ptr = val
	s.components[e] = ptr
	s.dense = append(s.dense, e)
	return ptr
}

func (s *Store[T]) find(e Entity) *T {
	return s.components[e]
}

func (s *Store[T]) has(e Entity) bool {
	_, ok := s.components[e]
	return ok
}

func (s *Store[T]) get(e Entity) (any, bool) {
	ptr, ok := s.components[e]
	if !ok {
		return nil, false
	}
	return ptr, true
}

func (s *Store[T]) remove(e Entity) {
	if _, ok := s.components[e]; !ok {
		return
	}
	delete(s.components, e)
	for i, entity := range s.dense {
		if entity == e {
			copy(s.dense[i:], s.dense[i+1:])
			s.dense = s.dense[:len(s.dense)-1]
			break
		}
	}
}

func (s *Store[T]) entities() []Entity {
	out := make([]Entity, len(s.dense))
	copy(out, s.dense)
	return out
}
