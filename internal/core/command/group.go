package command

import (
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/sharedgroup"
)

// ImportSharedEntityCmd instantiates a shared group document into a scene.
// Redo restores the very same entities instead of importing again.
type ImportSharedEntityCmd struct {
	m        *sharedgroup.Manager
	sceneID  models.SceneID
	doc      *document.Document
	parent   models.Entity
	extend   *document.EntityNode
	entities []models.Entity
	rec      *sharedgroup.NodeRecovery
}

func NewImportSharedEntityCmd(m *sharedgroup.Manager, sceneID models.SceneID, doc *document.Document, parent models.Entity, extend *document.EntityNode) *ImportSharedEntityCmd {
	return &ImportSharedEntityCmd{m: m, sceneID: sceneID, doc: doc, parent: parent, extend: extend}
}

// Entities returns the imported entities, root first.
func (c *ImportSharedEntityCmd) Entities() []models.Entity {
	return c.entities
}

func (c *ImportSharedEntityCmd) Execute() (bool, error) {
	if c.rec != nil {
		if err := c.m.RestoreEntityToSharedGroup(*c.rec); err != nil {
			return false, err
		}
		c.rec = nil
		return true, nil
	}
	entities, err := c.m.ImportSharedEntity(c.sceneID, c.doc, c.parent, c.extend)
	if err != nil {
		return false, err
	}
	c.entities = entities
	return true, nil
}

func (c *ImportSharedEntityCmd) Undo() error {
	if len(c.entities) == 0 {
		return ErrNotExecuted
	}
	rec, ok := c.m.RemoveEntityFromSharedGroup(c.sceneID, c.entities[0], true)
	if !ok {
		return ErrUndoFailed
	}
	c.rec = &rec
	return nil
}

func (c *ImportSharedEntityCmd) MergeWith(Command) bool {
	return false
}

// MarkEntitySharedCmd turns a plain entity into a shared group instance.
type MarkEntitySharedCmd struct {
	m        *sharedgroup.Manager
	sceneID  models.SceneID
	entity   models.Entity
	path     string
	instance sharedgroup.InstanceID
	rec      *sharedgroup.NodeRecovery
}

func NewMarkEntitySharedCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, path string) *MarkEntitySharedCmd {
	return &MarkEntitySharedCmd{m: m, sceneID: sceneID, entity: entity, path: path}
}

// Instance returns the id of the created instance.
func (c *MarkEntitySharedCmd) Instance() sharedgroup.InstanceID {
	return c.instance
}

func (c *MarkEntitySharedCmd) Execute() (bool, error) {
	if c.rec != nil {
		if err := c.m.RestoreEntityToSharedGroup(*c.rec); err != nil {
			return false, err
		}
		c.rec = nil
		return true, nil
	}
	id, err := c.m.MarkEntityShared(c.sceneID, c.entity, c.path)
	if err != nil {
		return false, err
	}
	c.instance = id
	return true, nil
}

func (c *MarkEntitySharedCmd) Undo() error {
	rec, ok := c.m.RemoveEntityFromSharedGroup(c.sceneID, c.entity, false)
	if !ok {
		return ErrUndoFailed
	}
	c.rec = &rec
	return nil
}

func (c *MarkEntitySharedCmd) MergeWith(Command) bool {
	return false
}

// AddEntityToSharedGroupCmd adopts a plain child of a shared entity into the group.
type AddEntityToSharedGroupCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	parent  models.Entity
	rec     *sharedgroup.NodeRecovery
}

func NewAddEntityToSharedGroupCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity, parent models.Entity) *AddEntityToSharedGroupCmd {
	return &AddEntityToSharedGroupCmd{m: m, sceneID: sceneID, entity: entity, parent: parent}
}

func (c *AddEntityToSharedGroupCmd) Execute() (bool, error) {
	if c.rec != nil {
		if err := c.m.RestoreEntityToSharedGroup(*c.rec); err != nil {
			return false, err
		}
		c.rec = nil
		return true, nil
	}
	return c.m.AddEntityToSharedGroup(c.sceneID, c.entity, c.parent)
}

func (c *AddEntityToSharedGroupCmd) Undo() error {
	rec, ok := c.m.RemoveEntityFromSharedGroup(c.sceneID, c.entity, false)
	if !ok {
		return ErrUndoFailed
	}
	c.rec = &rec
	return nil
}

func (c *AddEntityToSharedGroupCmd) MergeWith(Command) bool {
	return false
}

// RemoveEntityFromSharedGroupCmd makes a shared entity local, optionally
// destroying it.
type RemoveEntityFromSharedGroupCmd struct {
	m             *sharedgroup.Manager
	sceneID       models.SceneID
	entity        models.Entity
	destroyItself bool
	rec           *sharedgroup.NodeRecovery
}

func NewRemoveEntityFromSharedGroupCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity models.Entity, destroyItself bool) *RemoveEntityFromSharedGroupCmd {
	return &RemoveEntityFromSharedGroupCmd{m: m, sceneID: sceneID, entity: entity, destroyItself: destroyItself}
}

func (c *RemoveEntityFromSharedGroupCmd) Execute() (bool, error) {
	rec, ok := c.m.RemoveEntityFromSharedGroup(c.sceneID, c.entity, c.destroyItself)
	if !ok {
		return false, nil
	}
	c.rec = &rec
	return true, nil
}

func (c *RemoveEntityFromSharedGroupCmd) Undo() error {
	if c.rec == nil {
		return ErrNotExecuted
	}
	if err := c.m.RestoreEntityToSharedGroup(*c.rec); err != nil {
		return err
	}
	c.rec = nil
	return nil
}

func (c *RemoveEntityFromSharedGroupCmd) MergeWith(Command) bool {
	return false
}
