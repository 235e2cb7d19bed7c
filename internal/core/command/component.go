package command

import (
	"fmt"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/sharedgroup"
)

// AddComponentCmd adds a component. On shared entities Shared selects a write
// through the definition instead of a local override.
type AddComponentCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	typ     catalog.ComponentType
	Shared  bool

	rec   *sharedgroup.ComponentRecovery
	plain bool
}

func NewAddComponentCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, typ catalog.ComponentType) *AddComponentCmd {
	return &AddComponentCmd{m: m, sceneID: sceneID, entity: entity, typ: typ}
}

func (c *AddComponentCmd) Execute() (bool, error) {
	c.rec, c.plain = nil, false
	if c.m.IsEntityShared(c.sceneID, c.entity) {
		rec, ok := c.m.AddComponentToSharedGroup(c.sceneID, c.entity, c.typ, c.Shared)
		if !ok {
			return false, nil
		}
		c.rec = &rec
		return true, nil
	}
	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return false, err
	}
	if catalog.HasComponent(w.Registry(), c.entity, c.typ) {
		return false, nil
	}
	if _, err := catalog.AddComponent(w.Registry(), c.entity, c.typ); err != nil {
		return false, err
	}
	c.plain = true
	return true, nil
}

func (c *AddComponentCmd) Undo() error {
	switch {
	case c.rec != nil:
		if !c.m.UndoAddComponentToSharedGroup(*c.rec) {
			return ErrUndoFailed
		}
	case c.plain:
		w, err := scene(c.m, c.sceneID)
		if err != nil {
			return err
		}
		catalog.RemoveComponent(w.Registry(), c.entity, c.typ)
	default:
		return ErrNotExecuted
	}
	return nil
}

func (c *AddComponentCmd) MergeWith(Command) bool {
	return false
}

// RemoveComponentCmd removes a component. On shared entities Shared also removes
// it from the definition and every instance.
type RemoveComponentCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	typ     catalog.ComponentType
	Shared  bool

	rec      *sharedgroup.ComponentRecovery
	snapshot document.ComponentNode
}

func NewRemoveComponentCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, typ catalog.ComponentType) *RemoveComponentCmd {
	return &RemoveComponentCmd{m: m, sceneID: sceneID, entity: entity, typ: typ}
}

func (c *RemoveComponentCmd) Execute() (bool, error) {
	c.rec, c.snapshot = nil, nil
	if c.m.IsEntityShared(c.sceneID, c.entity) {
		rec, ok := c.m.RemoveComponentToSharedGroup(c.sceneID, c.entity, c.typ, c.Shared)
		if !ok {
			return false, nil
		}
		c.rec = &rec
		return true, nil
	}
	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return false, err
	}
	if c.typ == catalog.TransformComponent {
		if len(w.Children(c.entity)) > 0 || w.Parent(c.entity) != models.NullEntity {
			return false, nil
		}
	}
	node, ok := document.EncodeComponent(w.Registry(), c.entity, c.typ)
	if !ok {
		return false, nil
	}
	catalog.RemoveComponent(w.Registry(), c.entity, c.typ)
	c.snapshot = node
	return true, nil
}

func (c *RemoveComponentCmd) Undo() error {
	switch {
	case c.rec != nil:
		if !c.m.UndoRemoveComponentToSharedGroup(*c.rec) {
			return ErrUndoFailed
		}
	case c.snapshot != nil:
		w, err := scene(c.m, c.sceneID)
		if err != nil {
			return err
		}
		if err := document.DecodeComponent(w.Registry(), c.entity, c.typ, c.snapshot); err != nil {
			return fmt.Errorf("restore %s: %w", c.typ, err)
		}
	default:
		return ErrNotExecuted
	}
	return nil
}

func (c *RemoveComponentCmd) MergeWith(Command) bool {
	return false
}

// ComponentToSharedCmd reverts a component of a shared entity to the
// definition values.
type ComponentToSharedCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	typ     catalog.ComponentType
	rec     *sharedgroup.ComponentRecovery
}

func NewComponentToSharedCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, typ catalog.ComponentType) *ComponentToSharedCmd {
	return &ComponentToSharedCmd{m: m, sceneID: sceneID, entity: entity, typ: typ}
}

func (c *ComponentToSharedCmd) Execute() (bool, error) {
	rec, ok := c.m.ComponentToShared(c.sceneID, c.entity, c.typ)
	if !ok {
		return false, nil
	}
	c.rec = &rec
	return true, nil
}

func (c *ComponentToSharedCmd) Undo() error {
	if c.rec == nil {
		return ErrNotExecuted
	}
	if !c.m.UndoComponentToShared(*c.rec) {
		return ErrUndoFailed
	}
	return nil
}

func (c *ComponentToSharedCmd) MergeWith(Command) bool {
	return false
}

// ComponentToLocalCmd flags a component of a shared entity as overridden.
type ComponentToLocalCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	typ     catalog.ComponentType
	done    bool
}

func NewComponentToLocalCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, typ catalog.ComponentType) *ComponentToLocalCmd {
	return &ComponentToLocalCmd{m: m, sceneID: sceneID, entity: entity, typ: typ}
}

func (c *ComponentToLocalCmd) Execute() (bool, error) {
	c.done = c.m.ComponentToLocal(c.sceneID, c.entity, c.typ)
	return c.done, nil
}

func (c *ComponentToLocalCmd) Undo() error {
	if !c.done {
		return ErrNotExecuted
	}
	g := c.m.FindGroup(c.sceneID, c.entity)
	if g == nil || !g.ClearComponentOverride(c.sceneID, c.entity, c.typ) {
		return ErrUndoFailed
	}
	c.done = false
	return nil
}

func (c *ComponentToLocalCmd) MergeWith(Command) bool {
	return false
}
