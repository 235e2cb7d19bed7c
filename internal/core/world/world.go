// Package world wraps a models.Registry with an ordered entity hierarchy.
// Scenes and shared group definitions are both Worlds.
package world

import (
	"fmt"

	"github.com/zeusync/sharedgroups/internal/core/components"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

// InsertType positions an entity relative to a target.
type InsertType uint8

const (
	Before InsertType = iota
	After
	Into
)

func (t InsertType) String() string {
	switch t {
	case Before:
		return "before"
	case After:
		return "after"
	case Into:
		return "into"
	default:
		return fmt.Sprintf("insert(%d)", uint8(t))
	}
}

type World struct {
	id       models.SceneID
	name     string
	registry *models.Registry
	roots    []models.Entity
}

func New(id models.SceneID, name string) *World {
	return &World{
		id:       id,
		name:     name,
		registry: models.NewRegistry(),
	}
}

func (w *World) ID() models.SceneID {
	return w.id
}

func (w *World) Name() string {
	return w.name
}

func (w *World) Registry() *models.Registry {
	return w.registry
}

func (w *World) Exists(e models.Entity) bool {
	return w.registry.Exists(e)
}

func (w *World) EntityName(e models.Entity) string {
	return w.registry.Name(e)
}

func (w *World) SetEntityName(e models.Entity, name string) {
	w.registry.SetName(e, name)
}

// CreateEntity creates a root-level entity appended after the existing roots.
func (w *World) CreateEntity(name string) models.Entity {
	e := w.registry.CreateEntity()
	w.registry.SetName(e, name)
	w.roots = append(w.roots, e)
	return e
}

// CreateEntityWithID is CreateEntity with a caller-chosen handle.
func (w *World) CreateEntityWithID(e models.Entity, name string) (models.Entity, error) {
	e, err := w.registry.CreateEntityWithID(e)
	if err != nil {
		return models.NullEntity, err
	}
	w.registry.SetName(e, name)
	w.roots = append(w.roots, e)
	return e, nil
}

// DestroyEntity destroys e and its whole subtree.
func (w *World) DestroyEntity(e models.Entity) error {
	if !w.Exists(e) {
		return fmt.Errorf("%w: %d", ErrEntityNotFound, e)
	}
	w.detach(e)
	subtree := w.Descendants(e)
	for i := len(subtree) - 1; i >= 0; i-- {
		if err := w.registry.DestroyEntity(subtree[i]); err != nil {
			return err
		}
	}
	return nil
}

// Roots returns a copy of the top-level entity order.
func (w *World) Roots() []models.Entity {
	out := make([]models.Entity, len(w.roots))
	copy(out, w.roots)
	return out
}

func (w *World) Transform(e models.Entity) *components.Transform {
	return models.FindComponent[components.Transform](w.registry, e)
}

// Parent returns the parent of e, NullEntity for roots and unknown entities.
func (w *World) Parent(e models.Entity) models.Entity {
	if tr := w.Transform(e); tr != nil {
		return tr.Parent
	}
	return models.NullEntity
}

// Children returns the ordered children of parent; NullEntity yields the roots.
func (w *World) Children(parent models.Entity) []models.Entity {
	siblings := w.siblings(parent)
	out := make([]models.Entity, len(siblings))
	copy(out, siblings)
	return out
}

// IndexOf returns the position of e among its siblings, -1 when e is not placed.
func (w *World) IndexOf(e models.Entity) int {
	for i, s := range w.siblings(w.Parent(e)) {
		if s == e {
			return i
		}
	}
	return -1
}

// Descendants returns e followed by its subtree in depth-first order.
func (w *World) Descendants(e models.Entity) []models.Entity {
	if !w.Exists(e) {
		return nil
	}
	out := []models.Entity{e}
	if tr := w.Transform(e); tr != nil {
		for _, child := range tr.Children {
			out = append(out, w.Descendants(child)...)
		}
	}
	return out
}

// Entities returns every placed entity in depth-first order across all roots.
func (w *World) Entities() []models.Entity {
	var out []models.Entity
	for _, root := range w.roots {
		out = append(out, w.Descendants(root)...)
	}
	return out
}

// IsAncestor reports whether ancestor is a strict ancestor of e.
func (w *World) IsAncestor(ancestor, e models.Entity) bool {
	for p := w.Parent(e); p != models.NullEntity; p = w.Parent(p) {
		if p == ancestor {
			return true
		}
	}
	return false
}

// ResolveInsert computes the parent and sibling index e would land on when moved
// relative to target, without touching the hierarchy. The index is expressed in the
// sibling list with e already removed.
func (w *World) ResolveInsert(e, target models.Entity, typ InsertType) (models.Entity, int, error) {
	if !w.Exists(e) || !w.Exists(target) {
		return models.NullEntity, 0, ErrEntityNotFound
	}
	if e == target {
		return models.NullEntity, 0, ErrInvalidTarget
	}
	if w.IsAncestor(e, target) {
		return models.NullEntity, 0, ErrCyclicHierarchy
	}

	var parent models.Entity
	switch typ {
	case Into:
		if w.Transform(target) == nil {
			return models.NullEntity, 0, ErrParentNoTransform
		}
		parent = target
		siblings := without(w.siblings(parent), e)
		return parent, len(siblings), nil
	case Before, After:
		parent = w.Parent(target)
		siblings := without(w.siblings(parent), e)
		idx := indexIn(siblings, target)
		if typ == After {
			idx++
		}
		return parent, idx, nil
	default:
		return models.NullEntity, 0, fmt.Errorf("%w: %s", ErrInvalidTarget, typ)
	}
}

// Move relocates e relative to target and reports whether a Transform had to be added.
func (w *World) Move(e, target models.Entity, typ InsertType) (bool, error) {
	parent, idx, err := w.ResolveInsert(e, target, typ)
	if err != nil {
		return false, err
	}
	return w.AddChild(parent, e, idx)
}

// AddChild places e under parent at index (clamped; negative appends). A default
// Transform is attached to e when it needs one and lacks it; the result reports that.
func (w *World) AddChild(parent, e models.Entity, index int) (bool, error) {
	if !w.Exists(e) {
		return false, fmt.Errorf("%w: %d", ErrEntityNotFound, e)
	}
	if parent != models.NullEntity {
		if !w.Exists(parent) {
			return false, fmt.Errorf("%w: %d", ErrEntityNotFound, parent)
		}
		if parent == e || w.IsAncestor(e, parent) {
			return false, ErrCyclicHierarchy
		}
		if w.Transform(parent) == nil {
			return false, ErrParentNoTransform
		}
	}

	w.detach(e)

	added := false
	if parent != models.NullEntity && w.Transform(e) == nil {
		if _, err := models.AddComponent(w.registry, e, components.DefaultTransform()); err != nil {
			return false, err
		}
		added = true
	}

	if parent == models.NullEntity {
		w.roots = insertAt(w.roots, e, index)
	} else {
		ptr := w.Transform(parent)
		ptr.Children = insertAt(ptr.Children, e, index)
	}
	if tr := w.Transform(e); tr != nil {
		tr.Parent = parent
		tr.NeedUpdate = true
	}
	return added, nil
}

// RemoveTransform strips the Transform of a root entity without children.
func (w *World) RemoveTransform(e models.Entity) bool {
	tr := w.Transform(e)
	if tr == nil || tr.Parent != models.NullEntity || len(tr.Children) > 0 {
		return false
	}
	return models.RemoveComponent[components.Transform](w.registry, e)
}

func (w *World) siblings(parent models.Entity) []models.Entity {
	if parent == models.NullEntity {
		return w.roots
	}
	if tr := w.Transform(parent); tr != nil {
		return tr.Children
	}
	return nil
}

// detach unlinks e from its sibling list and clears its parent.
func (w *World) detach(e models.Entity) {
	parent := w.Parent(e)
	if parent == models.NullEntity {
		w.roots = without(w.roots, e)
	} else if ptr := w.Transform(parent); ptr != nil {
		ptr.Children = without(ptr.Children, e)
	}
	if tr := w.Transform(e); tr != nil {
		tr.Parent = models.NullEntity
	}
}

func without(list []models.Entity, e models.Entity) []models.Entity {
	out := make([]models.Entity, 0, len(list))
	for _, item := range list {
		if item != e {
			out = append(out, item)
		}
	}
	return out
}

func indexIn(list []models.Entity, e models.Entity) int {
	for i, item := range list {
		if item == e {
			return i
		}
	}
	return len(list)
}

func insertAt(list []models.Entity, e models.Entity, index int) []models.Entity {
	if index < 0 || index > len(list) {
		index = len(list)
	}
	list = append(list, models.NullEntity)
	copy(list[index+1:], list[index:])
	list[index] = e
	return list
}
