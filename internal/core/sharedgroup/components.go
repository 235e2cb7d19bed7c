package sharedgroup

import (
	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// AddComponentToSharedGroup adds component t to a shared entity. With
// addToItself the component is written through: the definition receives the
// entity's values and every instance lacking the component gets a copy. A
// component the definition already holds is re-added with the definition
// values. Without addToItself the component stays local and is flagged as an
// override.
func (m *Manager) AddComponentToSharedGroup(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType, addToItself bool) (ComponentRecovery, bool) {
	g, inst := m.find(sceneID, entity)
	if g == nil || !t.Valid() || t == catalog.TransformComponent {
		return ComponentRecovery{}, false
	}
	w := m.scenes[sceneID]
	r := w.Registry()
	rec := ComponentRecovery{Path: g.path, SceneID: sceneID, Entity: entity, Type: t, Shared: addToItself}

	if !addToItself {
		if catalog.HasComponent(r, entity, t) {
			return ComponentRecovery{}, false
		}
		if _, err := catalog.AddComponent(r, entity, t); err != nil {
			m.log.Warn("Failed to add component", log.String("component", t.String()), log.Error(err))
			return ComponentRecovery{}, false
		}
		rec.Targets = append(rec.Targets, ComponentTarget{
			SceneID:    sceneID,
			Entity:     entity,
			Overridden: g.HasComponentOverride(sceneID, entity, t),
		})
		g.SetComponentOverride(sceneID, entity, t)
		m.componentChanged(EventComponentAdded, g, inst, sceneID, entity, t)
		return rec, true
	}

	member, _ := inst.member(entity)
	reg := g.registry.Registry()
	defHas := catalog.HasComponent(reg, member.Registry, t)
	if !catalog.HasComponent(r, entity, t) {
		if _, err := catalog.AddComponent(r, entity, t); err != nil {
			m.log.Warn("Failed to add component", log.String("component", t.String()), log.Error(err))
			return ComponentRecovery{}, false
		}
		rec.Targets = append(rec.Targets, ComponentTarget{
			SceneID:    sceneID,
			Entity:     entity,
			Overridden: g.HasComponentOverride(sceneID, entity, t),
		})
		if defHas {
			flags, _ := catalog.CopyComponent(reg, member.Registry, r, entity, t)
			catalog.UpdateEntity(r, entity, flags)
			g.ClearComponentOverride(sceneID, entity, t)
		}
	}
	if !defHas {
		if _, err := catalog.AddComponent(reg, member.Registry, t); err != nil {
			m.log.Error("Failed to add component to definition", log.String("path", g.path), log.Error(err))
		} else {
			catalog.CopyComponent(r, entity, reg, member.Registry, t)
			rec.DefinitionAdded = true
		}
	}
	if rec.DefinitionAdded {
		g.forEachInstance(func(s models.SceneID, other *Instance) {
			ow := m.scenes[s]
			local := other.localFor(member.Registry)
			if ow == nil || local == models.NullEntity || catalog.HasComponent(ow.Registry(), local, t) {
				return
			}
			if _, err := catalog.AddComponent(ow.Registry(), local, t); err != nil {
				m.log.Error("Failed to replicate component", log.String("path", g.path), log.Error(err))
				return
			}
			flags, _ := catalog.CopyComponent(reg, member.Registry, ow.Registry(), local, t)
			catalog.UpdateEntity(ow.Registry(), local, flags)
			rec.Targets = append(rec.Targets, ComponentTarget{SceneID: s, Entity: local})
		})
		g.modified = true
	}
	if len(rec.Targets) == 0 && !rec.DefinitionAdded {
		return ComponentRecovery{}, false
	}
	m.componentChanged(EventComponentAdded, g, inst, sceneID, entity, t)
	return rec, true
}

// UndoAddComponentToSharedGroup removes the components rec added.
func (m *Manager) UndoAddComponentToSharedGroup(rec ComponentRecovery) bool {
	g := m.groups[rec.Path]
	if g == nil {
		return false
	}
	if rec.DefinitionAdded {
		if reg := g.RegistryEntity(rec.SceneID, rec.Entity); reg != models.NullEntity {
			catalog.RemoveComponent(g.registry.Registry(), reg, rec.Type)
			g.modified = true
		}
	}
	for _, target := range rec.Targets {
		w := m.scenes[target.SceneID]
		if w == nil {
			continue
		}
		catalog.RemoveComponent(w.Registry(), target.Entity, rec.Type)
		restoreBit(g, target, rec.Type)
	}
	m.log.Debug("Component addition reverted",
		log.String("path", rec.Path),
		log.String("component", rec.Type.String()),
		log.Int("targets", len(rec.Targets)))
	return true
}

// RemoveComponentToSharedGroup removes component t from a shared entity. With
// removeFromShared the component also leaves the definition and every instance.
// Otherwise the removal is local: when the definition holds t the override bit
// stays set on the entity, which now lacks the component, and marks the removal.
// The values of every touched entity are snapshotted along with its override bit.
func (m *Manager) RemoveComponentToSharedGroup(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType, removeFromShared bool) (ComponentRecovery, bool) {
	g, inst := m.find(sceneID, entity)
	if g == nil || !t.Valid() || t == catalog.TransformComponent {
		return ComponentRecovery{}, false
	}
	w := m.scenes[sceneID]
	if !catalog.HasComponent(w.Registry(), entity, t) {
		return ComponentRecovery{}, false
	}
	rec := ComponentRecovery{Path: g.path, SceneID: sceneID, Entity: entity, Type: t, Shared: removeFromShared}

	m.snapshotAndRemove(g, &rec, sceneID, w, entity)
	if !removeFromShared {
		member, _ := inst.member(entity)
		if catalog.HasComponent(g.registry.Registry(), member.Registry, t) {
			g.SetComponentOverride(sceneID, entity, t)
		}
	} else {
		member, _ := inst.member(entity)
		reg := g.registry.Registry()
		if node, ok := document.EncodeComponent(reg, member.Registry, t); ok {
			rec.Definition = node
			catalog.RemoveComponent(reg, member.Registry, t)
		}
		g.forEachInstance(func(s models.SceneID, other *Instance) {
			ow := m.scenes[s]
			local := other.localFor(member.Registry)
			if ow == nil || local == models.NullEntity || (s == sceneID && local == entity) {
				return
			}
			m.snapshotAndRemove(g, &rec, s, ow, local)
		})
		g.modified = true
	}
	m.componentChanged(EventComponentRemoved, g, inst, sceneID, entity, t)
	return rec, true
}

func (m *Manager) snapshotAndRemove(g *Group, rec *ComponentRecovery, sceneID models.SceneID, w *world.World, entity models.Entity) {
	node, ok := document.EncodeComponent(w.Registry(), entity, rec.Type)
	if !ok {
		// a removal marker loses its meaning with the definition component
		if g.HasComponentOverride(sceneID, entity, rec.Type) {
			rec.Targets = append(rec.Targets, ComponentTarget{SceneID: sceneID, Entity: entity, Overridden: true})
			g.ClearComponentOverride(sceneID, entity, rec.Type)
		}
		return
	}
	rec.Targets = append(rec.Targets, ComponentTarget{
		SceneID:    sceneID,
		Entity:     entity,
		Node:       node,
		Overridden: g.HasComponentOverride(sceneID, entity, rec.Type),
	})
	g.ClearComponentOverride(sceneID, entity, rec.Type)
	catalog.RemoveComponent(w.Registry(), entity, rec.Type)
}

// UndoRemoveComponentToSharedGroup puts back every snapshotted component with
// its exact values and override bit.
func (m *Manager) UndoRemoveComponentToSharedGroup(rec ComponentRecovery) bool {
	g := m.groups[rec.Path]
	if g == nil {
		return false
	}
	if rec.Definition != nil {
		if reg := g.RegistryEntity(rec.SceneID, rec.Entity); reg != models.NullEntity {
			if err := document.DecodeComponent(g.registry.Registry(), reg, rec.Type, rec.Definition); err != nil {
				m.log.Error("Failed to restore definition component", log.String("path", g.path), log.Error(err))
				return false
			}
			g.modified = true
		}
	}
	for _, target := range rec.Targets {
		w := m.scenes[target.SceneID]
		if w == nil {
			continue
		}
		if target.Node != nil {
			if err := document.DecodeComponent(w.Registry(), target.Entity, rec.Type, target.Node); err != nil {
				m.log.Error("Failed to restore component", log.Uint32("entity", uint32(target.Entity)), log.Error(err))
				continue
			}
			catalog.UpdateEntity(w.Registry(), target.Entity, catalog.UpdateFlagsOf(rec.Type))
		}
		restoreBit(g, target, rec.Type)
	}
	m.log.Debug("Component removal reverted",
		log.String("path", rec.Path),
		log.String("component", rec.Type.String()),
		log.Int("targets", len(rec.Targets)))
	return true
}

// ComponentToShared drops the local values of t on entity: the definition values
// are copied back and the override bit is cleared. A component removed locally
// is added back. The returned recovery holds the previous values, or a nil node
// when the entity lacked the component.
func (m *Manager) ComponentToShared(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType) (ComponentRecovery, bool) {
	g, inst := m.find(sceneID, entity)
	if g == nil || !t.Valid() {
		return ComponentRecovery{}, false
	}
	w := m.scenes[sceneID]
	member, _ := inst.member(entity)
	reg := g.registry.Registry()
	if !catalog.HasComponent(reg, member.Registry, t) {
		return ComponentRecovery{}, false
	}
	node, ok := document.EncodeComponent(w.Registry(), entity, t)
	if !ok {
		if _, err := catalog.AddComponent(w.Registry(), entity, t); err != nil {
			m.log.Warn("Failed to add component", log.String("component", t.String()), log.Error(err))
			return ComponentRecovery{}, false
		}
	}
	rec := ComponentRecovery{Path: g.path, SceneID: sceneID, Entity: entity, Type: t, Shared: true}
	rec.Targets = append(rec.Targets, ComponentTarget{
		SceneID:    sceneID,
		Entity:     entity,
		Node:       node,
		Overridden: g.HasComponentOverride(sceneID, entity, t),
	})
	g.ClearComponentOverride(sceneID, entity, t)
	flags, _ := catalog.CopyComponent(reg, member.Registry, w.Registry(), entity, t)
	catalog.UpdateEntity(w.Registry(), entity, flags)

	m.log.Debug("Component reverted to shared values",
		log.String("path", g.path), log.Uint32("entity", uint32(entity)), log.String("component", t.String()))
	return rec, true
}

// UndoComponentToShared writes the previous local values back.
func (m *Manager) UndoComponentToShared(rec ComponentRecovery) bool {
	g := m.groups[rec.Path]
	if g == nil || len(rec.Targets) == 0 {
		return false
	}
	target := rec.Targets[0]
	w := m.scenes[target.SceneID]
	if w == nil {
		return false
	}
	if target.Node == nil {
		catalog.RemoveComponent(w.Registry(), target.Entity, rec.Type)
	} else {
		if err := document.DecodeComponent(w.Registry(), target.Entity, rec.Type, target.Node); err != nil {
			m.log.Error("Failed to restore local values", log.Uint32("entity", uint32(target.Entity)), log.Error(err))
			return false
		}
		catalog.UpdateEntity(w.Registry(), target.Entity, catalog.UpdateFlagsOf(rec.Type))
	}
	restoreBit(g, target, rec.Type)
	return true
}

// restoreBit puts the override bit of target back to its recorded state.
func restoreBit(g *Group, target ComponentTarget, t catalog.ComponentType) {
	if target.Overridden {
		g.SetComponentOverride(target.SceneID, target.Entity, t)
	} else {
		g.ClearComponentOverride(target.SceneID, target.Entity, t)
	}
}

// ComponentToLocal flags t as overridden on entity without touching its values.
// It reports whether the bit was newly set.
func (m *Manager) ComponentToLocal(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType) bool {
	g, _ := m.find(sceneID, entity)
	if g == nil || !t.Valid() {
		return false
	}
	if !catalog.HasComponent(m.scenes[sceneID].Registry(), entity, t) || g.HasComponentOverride(sceneID, entity, t) {
		return false
	}
	return g.SetComponentOverride(sceneID, entity, t)
}

func (m *Manager) componentChanged(typ string, g *Group, inst *Instance, sceneID models.SceneID, entity models.Entity, t catalog.ComponentType) {
	m.log.Debug("Shared component changed",
		log.String("event", typ),
		log.String("path", g.path),
		log.Uint32("entity", uint32(entity)),
		log.String("component", t.String()))
	m.publish(typ, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity, Component: t})
}
