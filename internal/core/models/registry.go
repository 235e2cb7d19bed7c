package models

import (
	"fmt"
	"reflect"
	"sort"
)

// Registry is an in-memory entity-component store. It is not safe for concurrent
// use; callers drive it from a single goroutine.
type Registry struct {
	next   Entity
	alive  map[Entity]Signature
	names  map[Entity]string
	stores []componentStore
	types  map[reflect.Type]ComponentID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		next:  NullEntity,
		alive: make(map[Entity]Signature),
		names: make(map[Entity]string),
		types: make(map[reflect.Type]ComponentID),
	}
}

// CreateEntity allocates a fresh entity handle.
func (r *Registry) CreateEntity() Entity {
	for {
		r.next++
		if r.next == NullEntity {
			continue
		}
		if _, taken := r.alive[r.next]; !taken {
			break
		}
	}
	r.alive[r.next] = 0
	return r.next
}

// CreateEntityWithID allocates the given handle; it fails when the handle is in use.
func (r *Registry) CreateEntityWithID(e Entity) (Entity, error) {
	if e == NullEntity {
		return NullEntity, ErrInvalidEntity
	}
	if _, taken := r.alive[e]; taken {
		return NullEntity, fmt.Errorf("%w: %d", ErrEntityExists, e)
	}
	r.alive[e] = 0
	return e, nil
}

// DestroyEntity removes the entity and every component it carries.
func (r *Registry) DestroyEntity(e Entity) error {
	sig, ok := r.alive[e]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, e)
	}
	for id, store := range r.stores {
		if sig.Has(ComponentID(id)) {
			store.remove(e)
		}
	}
	delete(r.alive, e)
	delete(r.names, e)
	return nil
}

func (r *Registry) Exists(e Entity) bool {
	_, ok := r.alive[e]
	return ok
}

// Signature returns the component bitset of e, zero when e does not exist.
func (r *Registry) Signature(e Entity) Signature {
	return r.alive[e]
}

func (r *Registry) EntityCount() int {
	return len(r.alive)
}

// Entities returns every live entity in ascending handle order.
func (r *Registry) Entities() []Entity {
	out := make([]Entity, 0, len(r.alive))
	for e := range r.alive {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) SetName(e Entity, name string) {
	if !r.Exists(e) {
		return
	}
	if name == "" {
		delete(r.names, e)
		return
	}
	r.names[e] = name
}

func (r *Registry) Name(e Entity) string {
	return r.names[e]
}

// HasComponentID tests the signature bit of id on e.
func (r *Registry) HasComponentID(e Entity, id ComponentID) bool {
	return r.alive[e].Has(id)
}

// ComponentByID returns a pointer to the component with the given id.
func (r *Registry) ComponentByID(e Entity, id ComponentID) (any, bool) {
	if int(id) >= len(r.stores) || !r.HasComponentID(e, id) {
		return nil, false
	}
	return r.stores[id].get(e)
}

// RemoveComponentByID strips a component; it reports whether anything was removed.
func (r *Registry) RemoveComponentByID(e Entity, id ComponentID) bool {
	if !r.HasComponentID(e, id) {
		return false
	}
	r.stores[id].remove(e)
	r.alive[e] = r.alive[e].Without(id)
	return true
}

// EntitiesWith lists the entities carrying component id.
func (r *Registry) EntitiesWith(id ComponentID) []Entity {
	if int(id) >= len(r.stores) {
		return nil
	}
	return r.stores[id].entities()
}

// RegisterComponent returns the id of T in r, assigning the next free id on first use.
func RegisterComponent[T any](r *Registry) (ComponentID, error) {
	typ := reflect.TypeFor[T]()
	if id, ok := r.types[typ]; ok {
		return id, nil
	}
	if len(r.stores) >= MaxComponents {
		return 0, fmt.Errorf("%w: %s", ErrTooManyComponents, typ)
	}
	id := ComponentID(len(r.stores))
	r.stores = append(r.stores, newStore[T]())
	r.types[typ] = id
	return id, nil
}

// ComponentIDOf returns the id of T without registering it.
func ComponentIDOf[T any](r *Registry) (ComponentID, bool) {
	id, ok := r.types[reflect.TypeFor[T]()]
	return id, ok
}

func storeOf[T any](r *Registry) (*Store[T], ComponentID, error) {
	id, err := RegisterComponent[T](r)
	if err != nil {
		return nil, 0, err
	}
	return r.stores[id].(*Store[T]), id, nil
}

// AddComponent attaches (or replaces) a T on e and returns a pointer to the stored value.
func AddComponent[T any](r *Registry, e Entity, val T) (*T, error) {
	if !r.Exists(e) {
		return nil, fmt.Errorf("%w: %d", ErrEntityNotFound, e)
	}
	store, id, err := storeOf[T](r)
	if err != nil {
		return nil, err
	}
	ptr := store.set(e, val)
	r.alive[e] = r.alive[e].With(id)
	return ptr, nil
}

// FindComponent returns a pointer to e's T, or nil.
func FindComponent[T any](r *Registry, e Entity) *T {
	id, ok := ComponentIDOf[T](r)
	if !ok || !r.HasComponentID(e, id) {
		return nil
	}
	return r.stores[id].(*Store[T]).find(e)
}

// GetComponent returns a copy of e's T, the zero value when absent.
func GetComponent[T any](r *Registry, e Entity) T {
	if ptr := FindComponent[T](r, e); ptr != nil {
		return *ptr
	}
	var zero T
	return zero
}

func HasComponent[T any](r *Registry, e Entity) bool {
	return FindComponent[T](r, e) != nil
}

// RemoveComponent strips T from e; it reports whether anything was removed.
func RemoveComponent[T any](r *Registry, e Entity) bool {
	id, ok := ComponentIDOf[T](r)
	if !ok {
		return false
	}
	return r.RemoveComponentByID(e, id)
}
