package sharedgroup

import (
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// MoveEntityFromSharedGroup moves a shared entity relative to target. Moving an
// instance root only changes the scene. Moving any other member is mirrored in
// the definition and in every other instance; the new parent must belong to the
// same instance. Targets in another instance or group are rejected.
func (m *Manager) MoveEntityFromSharedGroup(sceneID models.SceneID, entity, target models.Entity, typ world.InsertType) (SharedMoveRecovery, bool) {
	g, inst := m.find(sceneID, entity)
	if g == nil {
		return SharedMoveRecovery{}, false
	}
	w := m.scenes[sceneID]
	parent, index, err := w.ResolveInsert(entity, target, typ)
	if err != nil {
		m.log.Warn("Shared entity move rejected",
			log.Uint32("entity", uint32(entity)), log.Uint32("target", uint32(target)), log.Error(err))
		return SharedMoveRecovery{}, false
	}

	rec := SharedMoveRecovery{
		Path:         g.path,
		SceneID:      sceneID,
		Entity:       entity,
		OldParent:    w.Parent(entity),
		OldIndex:     w.IndexOf(entity),
		HadTransform: w.Transform(entity) != nil,
	}
	if !m.moveTo(g, inst, sceneID, entity, parent, index) {
		return SharedMoveRecovery{}, false
	}
	m.log.Debug("Shared entity moved",
		log.String("path", g.path),
		log.Uint32("entity", uint32(entity)),
		log.Uint32("target", uint32(target)),
		log.String("insert", typ.String()))
	return rec, true
}

// UndoMoveEntityInSharedGroup puts the moved entity back where rec recorded it
// and strips the Transform the move attached.
func (m *Manager) UndoMoveEntityInSharedGroup(rec SharedMoveRecovery) bool {
	g, inst := m.find(rec.SceneID, rec.Entity)
	if g == nil || g.path != rec.Path {
		return false
	}
	if !m.moveTo(g, inst, rec.SceneID, rec.Entity, rec.OldParent, rec.OldIndex) {
		return false
	}
	if !rec.HadTransform {
		m.scenes[rec.SceneID].RemoveTransform(rec.Entity)
	}
	return true
}

// moveTo places entity at index under parent, mirroring member moves into the
// definition and the other instances.
func (m *Manager) moveTo(g *Group, inst *Instance, sceneID models.SceneID, entity, parent models.Entity, index int) bool {
	w := m.scenes[sceneID]
	if entity == inst.Root() {
		if m.sharedLineage(sceneID, parent) {
			m.log.Warn("Shared instance cannot be nested", log.Uint32("entity", uint32(entity)))
			return false
		}
		if _, err := w.AddChild(parent, entity, index); err != nil {
			m.log.Warn("Shared entity move failed", log.Uint32("entity", uint32(entity)), log.Error(err))
			return false
		}
		m.publish(EventMemberMoved, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
		return true
	}

	newParent, ok := inst.member(parent)
	if !ok {
		m.log.Warn("Shared entity cannot leave its instance",
			log.Uint32("entity", uint32(entity)), log.Uint32("parent", uint32(parent)))
		return false
	}
	member, _ := inst.member(entity)
	memberIdx := 0
	for i, child := range removeEntity(w.Children(parent), entity) {
		if i >= index {
			break
		}
		if inst.has(child) {
			memberIdx++
		}
	}

	if _, err := w.AddChild(parent, entity, index); err != nil {
		m.log.Warn("Shared entity move failed", log.Uint32("entity", uint32(entity)), log.Error(err))
		return false
	}
	if _, err := g.registry.AddChild(newParent.Registry, member.Registry, memberIdx); err != nil {
		m.log.Error("Failed to mirror move into definition", log.String("path", g.path), log.Error(err))
	}
	inst.reorder(w)

	g.forEachInstance(func(s models.SceneID, other *Instance) {
		if other == inst {
			return
		}
		ow := m.scenes[s]
		local, p := other.localFor(member.Registry), other.localFor(newParent.Registry)
		if ow == nil || local == models.NullEntity || p == models.NullEntity {
			return
		}
		if _, err := ow.AddChild(p, local, siblingIndex(ow, other, p, memberIdx, local)); err != nil {
			m.log.Error("Failed to mirror move into instance", log.String("path", g.path), log.Error(err))
			return
		}
		other.reorder(ow)
	})
	g.refreshRegistryEntities()
	g.modified = true
	m.publish(EventMemberMoved, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
	return true
}

func removeEntity(list []models.Entity, e models.Entity) []models.Entity {
	out := list[:0]
	for _, item := range list {
		if item != e {
			out = append(out, item)
		}
	}
	return out
}
