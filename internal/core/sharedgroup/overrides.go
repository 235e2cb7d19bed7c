package sharedgroup

import (
	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

// HasComponentOverride reports whether entity keeps its own values for t.
func (g *Group) HasComponentOverride(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType) bool {
	return maskable(t) && g.EntityOverrides(sceneID, entity)&t.Bit() != 0
}

// EntityOverrides returns the raw override mask of entity, zero when it has none.
func (g *Group) EntityOverrides(sceneID models.SceneID, entity models.Entity) uint64 {
	inst := g.Instance(sceneID, entity)
	if inst == nil {
		return 0
	}
	return inst.Overrides[entity]
}

// OverriddenComponents expands the override mask of entity in ascending order.
func (g *Group) OverriddenComponents(sceneID models.SceneID, entity models.Entity) []catalog.ComponentType {
	mask := g.EntityOverrides(sceneID, entity)
	var out []catalog.ComponentType
	for t := catalog.ComponentType(0); maskable(t); t++ {
		if mask&t.Bit() != 0 {
			out = append(out, t)
		}
	}
	return out
}

func (g *Group) HasAnyOverrides(sceneID models.SceneID, entity models.Entity) bool {
	return g.EntityOverrides(sceneID, entity) != 0
}

// SetComponentOverride sets the bit of t on entity. Callers ensure the entity
// possesses the component.
func (g *Group) SetComponentOverride(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType) bool {
	inst := g.Instance(sceneID, entity)
	if inst == nil || !maskable(t) {
		return false
	}
	if inst.Overrides == nil {
		inst.Overrides = make(map[models.Entity]uint64)
	}
	inst.Overrides[entity] |= t.Bit()
	return true
}

// ClearComponentOverride clears the bit of t and drops the entry once empty.
func (g *Group) ClearComponentOverride(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType) bool {
	inst := g.Instance(sceneID, entity)
	if inst == nil || !maskable(t) {
		return false
	}
	mask, ok := inst.Overrides[entity]
	if !ok || mask&t.Bit() == 0 {
		return false
	}
	setMask(inst, entity, mask&^t.Bit())
	return true
}

// ClearAllOverrides drops every override of entity.
func (g *Group) ClearAllOverrides(sceneID models.SceneID, entity models.Entity) bool {
	inst := g.Instance(sceneID, entity)
	if inst == nil {
		return false
	}
	if _, ok := inst.Overrides[entity]; !ok {
		return false
	}
	delete(inst.Overrides, entity)
	return true
}

// ClearAllInstanceOverrides drops the overrides of every member of one instance.
func (g *Group) ClearAllInstanceOverrides(sceneID models.SceneID, id InstanceID) bool {
	inst := g.InstanceByID(sceneID, id)
	if inst == nil || len(inst.Overrides) == 0 {
		return false
	}
	inst.Overrides = nil
	return true
}

// ClearAllSceneOverrides drops the overrides of every instance in sceneID.
func (g *Group) ClearAllSceneOverrides(sceneID models.SceneID) bool {
	cleared := false
	for _, inst := range g.instances[sceneID] {
		if len(inst.Overrides) > 0 {
			inst.Overrides = nil
			cleared = true
		}
	}
	return cleared
}

// overrideMasks lists the masks of inst members in member order.
func overrideMasks(inst *Instance, members []EntityMember) []uint64 {
	out := make([]uint64, len(members))
	for i, m := range members {
		out[i] = inst.Overrides[m.Local]
	}
	return out
}

func setMask(inst *Instance, entity models.Entity, mask uint64) {
	if mask == 0 {
		delete(inst.Overrides, entity)
		return
	}
	if inst.Overrides == nil {
		inst.Overrides = make(map[models.Entity]uint64)
	}
	inst.Overrides[entity] = mask
}

// maskable reports whether t has a bit in a uint64 mask. The bitmask layer
// accepts any such type; component possession is checked by callers.
func maskable(t catalog.ComponentType) bool {
	return t < 64
}
