package command

import (
	"fmt"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/sharedgroup"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

func scene(m *sharedgroup.Manager, id models.SceneID) (*world.World, error) {
	w := m.Scene(id)
	if w == nil {
		return nil, fmt.Errorf("%w: %d", sharedgroup.ErrSceneNotFound, id)
	}
	return w, nil
}

// PropertyCmd edits one component property and propagates it through the
// entity's shared group.
type PropertyCmd struct {
	m        *sharedgroup.Manager
	sceneID  models.SceneID
	entity   models.Entity
	typ      catalog.ComponentType
	property string
	value    any

	// ChangeOverride flags the component as overridden after the edit.
	ChangeOverride bool

	before     any
	overridden bool
	captured   bool
}

func NewPropertyCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, typ catalog.ComponentType, property string, value any) *PropertyCmd {
	return &PropertyCmd{m: m, sceneID: sceneID, entity: entity, typ: typ, property: property, value: value}
}

func (c *PropertyCmd) Execute() (bool, error) {
	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return false, err
	}
	r := w.Registry()
	if !c.captured {
		if c.before, err = catalog.GetPropertyValue(r, c.entity, c.typ, c.property); err != nil {
			return false, err
		}
		if g := c.m.FindGroup(c.sceneID, c.entity); g != nil {
			c.overridden = g.HasComponentOverride(c.sceneID, c.entity, c.typ)
		}
		c.captured = true
	}
	if err := c.apply(r, c.value); err != nil {
		return false, err
	}
	c.m.SharedGroupPropertyChanged(c.sceneID, c.entity, c.typ, []string{c.property}, c.ChangeOverride)
	return true, nil
}

func (c *PropertyCmd) Undo() error {
	if !c.captured {
		return ErrNotExecuted
	}
	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return err
	}
	if g := c.m.FindGroup(c.sceneID, c.entity); g != nil && c.ChangeOverride && !c.overridden {
		g.ClearComponentOverride(c.sceneID, c.entity, c.typ)
	}
	if err := c.apply(w.Registry(), c.before); err != nil {
		return err
	}
	c.m.SharedGroupPropertyChanged(c.sceneID, c.entity, c.typ, []string{c.property}, false)
	return nil
}

func (c *PropertyCmd) apply(r *models.Registry, value any) error {
	if err := catalog.SetPropertyValue(r, c.entity, c.typ, c.property, value); err != nil {
		return err
	}
	catalog.UpdateEntity(r, c.entity, catalog.UpdateFlagsOf(c.typ, c.property))
	return nil
}

// MergeWith keeps the value captured by older so one undo reverts a whole drag.
func (c *PropertyCmd) MergeWith(older Command) bool {
	o, ok := older.(*PropertyCmd)
	if !ok || o.m != c.m || o.sceneID != c.sceneID || o.entity != c.entity ||
		o.typ != c.typ || o.property != c.property || o.ChangeOverride != c.ChangeOverride {
		return false
	}
	c.before = o.before
	c.overridden = o.overridden
	return true
}

// EntityNameCmd renames an entity and propagates the name through its group.
type EntityNameCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	name    string

	before   string
	captured bool
}

func NewEntityNameCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, name string) *EntityNameCmd {
	return &EntityNameCmd{m: m, sceneID: sceneID, entity: entity, name: name}
}

func (c *EntityNameCmd) Execute() (bool, error) {
	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return false, err
	}
	if !w.Exists(c.entity) {
		return false, fmt.Errorf("%w: %d", sharedgroup.ErrEntityNotFound, c.entity)
	}
	if !c.captured {
		c.before = w.EntityName(c.entity)
		c.captured = true
	}
	c.rename(w, c.name)
	return true, nil
}

func (c *EntityNameCmd) Undo() error {
	if !c.captured {
		return ErrNotExecuted
	}
	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return err
	}
	c.rename(w, c.before)
	return nil
}

func (c *EntityNameCmd) rename(w *world.World, name string) {
	w.SetEntityName(c.entity, name)
	c.m.SharedGroupNameChanged(c.sceneID, c.entity)
}

func (c *EntityNameCmd) MergeWith(older Command) bool {
	o, ok := older.(*EntityNameCmd)
	if !ok || o.m != c.m || o.sceneID != c.sceneID || o.entity != c.entity {
		return false
	}
	c.before = o.before
	return true
}
