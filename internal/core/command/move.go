package command

import (
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/sharedgroup"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// MoveEntityOrderCmd moves an entity relative to a target. Shared entities go
// through their group so the move is mirrored; plain entities move in the
// scene only.
type MoveEntityOrderCmd struct {
	m       *sharedgroup.Manager
	sceneID models.SceneID
	entity  models.Entity
	target  models.Entity
	typ     world.InsertType

	shared *sharedgroup.SharedMoveRecovery
	local  *sharedgroup.SharedMoveRecovery
}

func NewMoveEntityOrderCmd(m *sharedgroup.Manager, sceneID models.SceneID, entity, target models.Entity, typ world.InsertType) *MoveEntityOrderCmd {
	return &MoveEntityOrderCmd{m: m, sceneID: sceneID, entity: entity, target: target, typ: typ}
}

func (c *MoveEntityOrderCmd) Execute() (bool, error) {
	c.shared, c.local = nil, nil
	if c.m.IsEntityShared(c.sceneID, c.entity) {
		rec, ok := c.m.MoveEntityFromSharedGroup(c.sceneID, c.entity, c.target, c.typ)
		if !ok {
			return false, nil
		}
		c.shared = &rec
		return true, nil
	}

	w, err := scene(c.m, c.sceneID)
	if err != nil {
		return false, err
	}
	rec := sharedgroup.SharedMoveRecovery{
		SceneID:      c.sceneID,
		Entity:       c.entity,
		OldParent:    w.Parent(c.entity),
		OldIndex:     w.IndexOf(c.entity),
		HadTransform: w.Transform(c.entity) != nil,
	}
	if _, err := w.Move(c.entity, c.target, c.typ); err != nil {
		return false, err
	}
	c.local = &rec
	return true, nil
}

func (c *MoveEntityOrderCmd) Undo() error {
	switch {
	case c.shared != nil:
		if !c.m.UndoMoveEntityInSharedGroup(*c.shared) {
			return ErrUndoFailed
		}
	case c.local != nil:
		w, err := scene(c.m, c.sceneID)
		if err != nil {
			return err
		}
		if _, err := w.AddChild(c.local.OldParent, c.entity, c.local.OldIndex); err != nil {
			return err
		}
		if !c.local.HadTransform {
			w.RemoveTransform(c.entity)
		}
	default:
		return ErrNotExecuted
	}
	return nil
}

func (c *MoveEntityOrderCmd) MergeWith(Command) bool {
	return false
}
