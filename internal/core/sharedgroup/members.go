package sharedgroup

import (
	"fmt"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// AddEntityToSharedGroup adopts entity, a plain child of the shared entity
// parent, into the parent's instance. Its subtree is cloned into the definition
// and replicated into every other instance. It reports false when parent is not
// shared or entity is not a direct child of parent.
func (m *Manager) AddEntityToSharedGroup(sceneID models.SceneID, entity, parent models.Entity) (bool, error) {
	w, err := m.scene(sceneID)
	if err != nil {
		return false, err
	}
	g, inst := m.find(sceneID, parent)
	if g == nil {
		return false, nil
	}
	if !w.Exists(entity) || w.Parent(entity) != parent {
		m.log.Warn("Entity is not a child of the shared parent",
			log.Uint32("entity", uint32(entity)), log.Uint32("parent", uint32(parent)))
		return false, nil
	}
	subtree := w.Descendants(entity)
	for _, e := range subtree {
		if m.IsEntityShared(sceneID, e) {
			return false, fmt.Errorf("%w: %d", ErrAlreadyShared, e)
		}
	}

	node := document.EncodeEntity(w, entity)
	node.ClearEntityIDs()
	if err := document.Validate(node); err != nil {
		return false, fmt.Errorf("add to %s: %w", g.path, err)
	}
	regParent := g.RegistryEntity(sceneID, parent)
	idx := memberIndex(w, inst, parent, entity)

	regs, err := document.DecodeEntity(g.registry, node, document.DecodeOptions{Parent: regParent, Index: idx})
	if err != nil {
		return false, fmt.Errorf("add to %s: %w", g.path, err)
	}
	for i, local := range subtree {
		inst.Members = append(inst.Members, EntityMember{Local: local, Registry: regs[i]})
	}
	inst.reorder(w)

	g.forEachInstance(func(s models.SceneID, other *Instance) {
		if other == inst {
			return
		}
		ow := m.scenes[s]
		p := other.localFor(regParent)
		if ow == nil || p == models.NullEntity {
			return
		}
		locals, err := document.DecodeEntity(ow, node, document.DecodeOptions{
			Parent: p,
			Index:  siblingIndex(ow, other, p, idx, models.NullEntity),
		})
		if err != nil {
			m.log.Error("Failed to replicate shared entity", log.String("path", g.path), log.Error(err))
			return
		}
		for i, local := range locals {
			other.Members = append(other.Members, EntityMember{Local: local, Registry: regs[i]})
		}
		other.reorder(ow)
	})
	g.refreshRegistryEntities()
	g.modified = true

	m.log.Debug("Entity added to shared group",
		log.String("path", g.path),
		log.Uint32("scene", uint32(sceneID)),
		log.Uint32("entity", uint32(entity)),
		log.Int("entities", len(regs)))
	m.publish(EventMemberAdded, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
	return true, nil
}

// RemoveEntityFromSharedGroup makes entity local. Detaching an instance root
// detaches the whole instance, and the group is destroyed along with its last
// instance. Detaching any other member removes it from the definition and
// destroys its counterparts in the other instances. entity itself stays in the
// scene unless destroyItself is set.
func (m *Manager) RemoveEntityFromSharedGroup(sceneID models.SceneID, entity models.Entity, destroyItself bool) (NodeRecovery, bool) {
	g, inst := m.find(sceneID, entity)
	if g == nil {
		return NodeRecovery{}, false
	}
	w := m.scenes[sceneID]
	member, _ := inst.member(entity)

	rec := NodeRecovery{
		Path:       g.path,
		SceneID:    sceneID,
		InstanceID: inst.ID,
		Destroyed:  destroyItself,
		Node:       document.EncodeEntity(w, entity),
		Overrides:  memberResults(inst, w.Descendants(entity)),
		Parent:     w.Parent(entity),
		Index:      w.IndexOf(entity),
	}

	if entity == inst.Root() {
		rec.Root = true
		rec.InstanceIndex = g.removeInstance(sceneID, inst)
		if g.InstanceCount() == 0 {
			rec.Definition = document.EncodeEntity(g.registry, g.Root())
			rec.NextInstanceID = g.nextInstanceID
			rec.Modified = g.modified
			rec.Fingerprint = g.fingerprint
			m.destroyGroup(g)
		}
		m.log.Debug("Shared instance detached",
			log.String("path", g.path),
			log.Uint32("scene", uint32(sceneID)),
			log.Uint32("instance", uint32(inst.ID)),
			log.Bool("group_destroyed", rec.Definition != nil))
		m.publish(EventInstanceRemoved, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
	} else {
		rec.Definition = document.EncodeEntity(g.registry, member.Registry)
		rec.RegistryParent = g.registry.Parent(member.Registry)
		rec.RegistryIndex = g.registry.IndexOf(member.Registry)

		removed := make(map[models.Entity]bool)
		for _, reg := range g.registry.Descendants(member.Registry) {
			removed[reg] = true
		}
		g.forEachInstance(func(s models.SceneID, other *Instance) {
			if other == inst {
				return
			}
			ow := m.scenes[s]
			local := other.localFor(member.Registry)
			if ow == nil || local == models.NullEntity {
				return
			}
			rec.Others = append(rec.Others, InstanceRecovery{
				SceneID:    s,
				InstanceID: other.ID,
				Node:       document.EncodeEntity(ow, local),
				Overrides:  memberResults(other, ow.Descendants(local)),
				Parent:     ow.Parent(local),
				Index:      ow.IndexOf(local),
			})
			other.dropMembers(removed)
			if err := ow.DestroyEntity(local); err != nil {
				m.log.Error("Failed to destroy shared counterpart", log.String("path", g.path), log.Error(err))
			}
		})
		inst.dropMembers(removed)
		if err := g.registry.DestroyEntity(member.Registry); err != nil {
			m.log.Error("Failed to destroy definition entity", log.String("path", g.path), log.Error(err))
		}
		g.refreshRegistryEntities()
		g.modified = true

		m.log.Debug("Entity removed from shared group",
			log.String("path", g.path),
			log.Uint32("scene", uint32(sceneID)),
			log.Uint32("entity", uint32(entity)),
			log.Int("counterparts", len(rec.Others)))
		m.publish(EventMemberRemoved, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
	}

	if destroyItself {
		if err := w.DestroyEntity(entity); err != nil {
			m.log.Error("Failed to destroy detached entity", log.Uint32("entity", uint32(entity)), log.Error(err))
		}
	}
	return rec, true
}

// RestoreEntityToSharedGroup reverts RemoveEntityFromSharedGroup: entity
// handles, component values, override masks and positions come back as recorded.
// Nothing is written when the record does not fit the current state.
func (m *Manager) RestoreEntityToSharedGroup(rec NodeRecovery) error {
	w, err := m.scene(rec.SceneID)
	if err != nil {
		return err
	}
	if err := checkPlacement(w, rec.Node, rec.Destroyed); err != nil {
		return err
	}
	if !rec.Destroyed {
		for _, n := range rec.Node.Flatten() {
			if m.IsEntityShared(rec.SceneID, n.Entity) {
				return fmt.Errorf("%w: %d", ErrAlreadyShared, n.Entity)
			}
		}
	}
	if rec.Root {
		return m.restoreInstance(w, rec)
	}
	return m.restoreMember(w, rec)
}

func (m *Manager) restoreInstance(w *world.World, rec NodeRecovery) error {
	g := m.groups[rec.Path]
	count := 0
	if g != nil {
		count = len(g.registryEntities)
	} else {
		if rec.Definition == nil {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, rec.Path)
		}
		if err := document.Validate(rec.Definition); err != nil {
			return fmt.Errorf("restore %s: %w", rec.Path, err)
		}
		count = rec.Definition.Count()
	}
	if sharedCount(rec.Overrides) != count {
		return fmt.Errorf("%w: %s", ErrStructureMismatch, rec.Path)
	}

	if g == nil {
		g = newGroup(rec.Path)
		regs, err := document.DecodeEntity(g.registry, rec.Definition, document.DecodeOptions{Index: -1, PreserveIDs: true})
		if err != nil {
			return fmt.Errorf("restore %s: %w", rec.Path, err)
		}
		g.registryEntities = regs
		g.nextInstanceID = rec.NextInstanceID
		g.modified = rec.Modified
		g.fingerprint = rec.Fingerprint
		m.registerGroup(g)
	}

	locals, err := placeNode(w, rec.Node, rec.Destroyed, rec.Parent, rec.Index)
	if err != nil {
		return fmt.Errorf("restore %s: %w", rec.Path, err)
	}
	inst := &Instance{ID: rec.InstanceID}
	if inst.ID == 0 || g.InstanceByID(rec.SceneID, inst.ID) != nil {
		inst.ID = g.allocateInstanceID()
	}
	link(g, inst, w, locals, rec.Overrides, g.registryEntities)
	g.addInstance(rec.SceneID, inst, rec.InstanceIndex)

	m.log.Debug("Shared instance restored",
		log.String("path", g.path),
		log.Uint32("scene", uint32(rec.SceneID)),
		log.Uint32("instance", uint32(inst.ID)))
	m.publish(EventInstanceCreated, Change{Path: g.path, SceneID: rec.SceneID, InstanceID: inst.ID, Entity: inst.Root()})
	return nil
}

func (m *Manager) restoreMember(w *world.World, rec NodeRecovery) error {
	g := m.groups[rec.Path]
	if g == nil {
		return fmt.Errorf("%w: %s", ErrGroupNotFound, rec.Path)
	}
	inst := g.InstanceByID(rec.SceneID, rec.InstanceID)
	if inst == nil {
		return fmt.Errorf("%w: %d", ErrInstanceNotFound, rec.InstanceID)
	}
	if err := document.Validate(rec.Definition); err != nil {
		return fmt.Errorf("restore %s: %w", rec.Path, err)
	}
	if !g.registry.Exists(rec.RegistryParent) || g.registry.Transform(rec.RegistryParent) == nil {
		return fmt.Errorf("%w: %s", ErrStructureMismatch, rec.Path)
	}
	count := rec.Definition.Count()
	if sharedCount(rec.Overrides) != count {
		return fmt.Errorf("%w: %s", ErrStructureMismatch, rec.Path)
	}
	for _, o := range rec.Others {
		ow := m.scenes[o.SceneID]
		if ow == nil || g.InstanceByID(o.SceneID, o.InstanceID) == nil {
			return fmt.Errorf("%w: %d", ErrInstanceNotFound, o.InstanceID)
		}
		if err := checkPlacement(ow, o.Node, true); err != nil {
			return err
		}
		if sharedCount(o.Overrides) != count {
			return fmt.Errorf("%w: %s", ErrStructureMismatch, rec.Path)
		}
	}

	regs, err := document.DecodeEntity(g.registry, rec.Definition, document.DecodeOptions{
		Parent:      rec.RegistryParent,
		Index:       rec.RegistryIndex,
		PreserveIDs: true,
	})
	if err != nil {
		return fmt.Errorf("restore %s: %w", rec.Path, err)
	}
	g.refreshRegistryEntities()

	locals, err := placeNode(w, rec.Node, rec.Destroyed, rec.Parent, rec.Index)
	if err != nil {
		return fmt.Errorf("restore %s: %w", rec.Path, err)
	}
	link(g, inst, w, locals, rec.Overrides, regs)

	for _, o := range rec.Others {
		ow := m.scenes[o.SceneID]
		other := g.InstanceByID(o.SceneID, o.InstanceID)
		locals, err := placeNode(ow, o.Node, true, o.Parent, o.Index)
		if err != nil {
			m.log.Error("Failed to restore shared counterpart", log.String("path", g.path), log.Error(err))
			continue
		}
		link(g, other, ow, locals, o.Overrides, regs)
	}
	g.modified = true

	m.log.Debug("Entity restored to shared group",
		log.String("path", g.path),
		log.Uint32("scene", uint32(rec.SceneID)),
		log.Uint32("entity", uint32(rec.Node.Entity)),
		log.Int("counterparts", len(rec.Others)))
	m.publish(EventMemberAdded, Change{Path: g.path, SceneID: rec.SceneID, InstanceID: inst.ID, Entity: rec.Node.Entity})
	return nil
}

// checkPlacement verifies that node can be put back into w.
func checkPlacement(w *world.World, node *document.EntityNode, destroyed bool) error {
	if node == nil {
		return document.ErrEmptyDocument
	}
	if destroyed {
		return document.Validate(node)
	}
	for _, n := range node.Flatten() {
		if !w.Exists(n.Entity) {
			return fmt.Errorf("%w: %d", ErrEntityNotFound, n.Entity)
		}
	}
	return nil
}

// placeNode recreates a destroyed subtree at its recorded position, or rewrites
// the recorded values onto the entities that stayed. It returns the entities in
// the depth-first order of node.
func placeNode(w *world.World, node *document.EntityNode, destroyed bool, parent models.Entity, index int) ([]models.Entity, error) {
	if destroyed {
		return document.DecodeEntity(w, node, document.DecodeOptions{Parent: parent, Index: index, PreserveIDs: true})
	}
	r := w.Registry()
	var locals []models.Entity
	for _, n := range node.Flatten() {
		for _, name := range n.ComponentNames() {
			t, _ := catalog.TypeByName(name)
			if err := document.DecodeComponent(r, n.Entity, t, n.Components[name]); err != nil {
				return nil, err
			}
		}
		locals = append(locals, n.Entity)
	}
	return locals, nil
}

// link pairs the locals flagged shared in results with regs, in order, and
// restores their override masks.
func link(g *Group, inst *Instance, w *world.World, locals []models.Entity, results []document.MergeResult, regs []models.Entity) {
	j := 0
	for i, local := range locals {
		if i >= len(results) || !results[i].IsShared || j >= len(regs) {
			continue
		}
		reg := regs[j]
		inst.Members = append(inst.Members, EntityMember{Local: local, Registry: reg})
		j++
		allowed := catalog.ComponentMask(w.Registry(), local) | catalog.ComponentMask(g.registry.Registry(), reg)
		setMask(inst, local, results[i].Overrides&allowed)
	}
	inst.reorder(w)
}

// memberResults snapshots membership and override masks of locals.
func memberResults(inst *Instance, locals []models.Entity) []document.MergeResult {
	out := make([]document.MergeResult, len(locals))
	for i, local := range locals {
		out[i] = document.MergeResult{IsShared: inst.has(local), Overrides: inst.Overrides[local]}
	}
	return out
}

func sharedCount(results []document.MergeResult) int {
	n := 0
	for _, r := range results {
		if r.IsShared {
			n++
		}
	}
	return n
}

// memberIndex counts the members of inst placed before entity under parent.
func memberIndex(w *world.World, inst *Instance, parent, entity models.Entity) int {
	n := 0
	for _, child := range w.Children(parent) {
		if child == entity {
			break
		}
		if inst.has(child) {
			n++
		}
	}
	return n
}

// siblingIndex translates a position among the members under parent into a
// position in the full child list, ignoring exclude.
func siblingIndex(w *world.World, inst *Instance, parent models.Entity, memberIdx int, exclude models.Entity) int {
	pos, n := 0, 0
	for _, child := range w.Children(parent) {
		if child == exclude {
			continue
		}
		if inst.has(child) {
			if n == memberIdx {
				return pos
			}
			n++
		}
		pos++
	}
	return pos
}
