package sharedgroup

import (
	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
)

// SharedGroupPropertyChanged pushes the listed properties of entity's component t
// into the definition and every instance that does not override t. Nothing is
// propagated from an entity that overrides t. With changeOverride the entity is
// flagged as overriding t afterwards. It reports whether values were propagated.
func (m *Manager) SharedGroupPropertyChanged(sceneID models.SceneID, entity models.Entity, t catalog.ComponentType, properties []string, changeOverride bool) bool {
	g, inst := m.find(sceneID, entity)
	if g == nil || !t.Valid() {
		return false
	}
	w := m.scenes[sceneID]
	if g.HasComponentOverride(sceneID, entity, t) || !catalog.HasComponent(w.Registry(), entity, t) {
		return false
	}
	member, _ := inst.member(entity)
	reg := g.registry.Registry()
	if !catalog.HasComponent(reg, member.Registry, t) {
		if changeOverride {
			g.SetComponentOverride(sceneID, entity, t)
		}
		return false
	}

	flags := catalog.UpdateFlagsOf(t, properties...)
	for _, name := range properties {
		catalog.CopyPropertyValue(w.Registry(), entity, reg, member.Registry, t, name)
	}
	catalog.UpdateEntity(reg, member.Registry, flags)

	updated := 0
	g.forEachInstance(func(s models.SceneID, other *Instance) {
		if other == inst {
			return
		}
		ow := m.scenes[s]
		local := other.localFor(member.Registry)
		if ow == nil || local == models.NullEntity || g.HasComponentOverride(s, local, t) {
			return
		}
		copied := false
		for _, name := range properties {
			if catalog.CopyPropertyValue(reg, member.Registry, ow.Registry(), local, t, name) {
				copied = true
			}
		}
		if copied {
			catalog.UpdateEntity(ow.Registry(), local, flags)
			updated++
		}
	})
	if changeOverride {
		g.SetComponentOverride(sceneID, entity, t)
	}
	g.modified = true

	m.log.Debug("Shared property propagated",
		log.String("path", g.path),
		log.Uint32("entity", uint32(entity)),
		log.String("component", t.String()),
		log.Strings("properties", properties),
		log.Int("instances", updated))
	m.publish(EventPropertyPropagated, Change{
		Path:       g.path,
		SceneID:    sceneID,
		InstanceID: inst.ID,
		Entity:     entity,
		Component:  t,
		Properties: properties,
	})
	return true
}

// SharedGroupNameChanged copies the name of entity into the definition and every
// other instance.
func (m *Manager) SharedGroupNameChanged(sceneID models.SceneID, entity models.Entity) bool {
	g, inst := m.find(sceneID, entity)
	if g == nil {
		return false
	}
	name := m.scenes[sceneID].EntityName(entity)
	member, _ := inst.member(entity)
	g.registry.SetEntityName(member.Registry, name)
	g.forEachInstance(func(s models.SceneID, other *Instance) {
		if other == inst {
			return
		}
		if ow, local := m.scenes[s], other.localFor(member.Registry); ow != nil && local != models.NullEntity {
			ow.SetEntityName(local, name)
		}
	})
	g.modified = true

	m.log.Debug("Shared name propagated", log.String("path", g.path), log.String("name", name))
	m.publish(EventNamePropagated, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
	return true
}
