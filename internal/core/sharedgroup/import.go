package sharedgroup

import (
	"fmt"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// ImportSharedEntity instantiates the group of doc.Path under parent in sceneID.
// The first import creates the group from doc; later imports instantiate the
// current definition. A non-nil extend document carries the instance's entity
// handles and overridden components. It returns the created entities, root first.
func (m *Manager) ImportSharedEntity(sceneID models.SceneID, doc *document.Document, parent models.Entity, extend *document.EntityNode) ([]models.Entity, error) {
	w, err := m.scene(sceneID)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Root == nil {
		return nil, document.ErrEmptyDocument
	}
	if doc.Path == "" {
		return nil, ErrInvalidPath
	}
	if parent != models.NullEntity {
		if !w.Exists(parent) {
			return nil, fmt.Errorf("%w: parent %d", ErrEntityNotFound, parent)
		}
		if w.Transform(parent) == nil {
			return nil, fmt.Errorf("%w: parent %d", world.ErrParentNoTransform, parent)
		}
		if m.sharedLineage(sceneID, parent) {
			return nil, fmt.Errorf("%w: parent %d", ErrNestedSharedGroup, parent)
		}
	}

	g := m.groups[doc.Path]
	var base *document.EntityNode
	if g == nil {
		if err := document.Validate(doc.Root); err != nil {
			return nil, fmt.Errorf("import %s: %w", doc.Path, err)
		}
		base = doc.Root.Clone()
	} else {
		base = document.EncodeEntity(g.registry, g.Root())
		if fp, err := document.Fingerprint(doc); err == nil && fp != g.fingerprint {
			m.log.Debug("Document differs from loaded definition, keeping definition",
				log.String("path", doc.Path))
		}
	}
	base.ClearEntityIDs()
	results := document.MergeEntityNodes(extend, base)
	if err := document.Validate(base); err != nil {
		return nil, fmt.Errorf("import %s: %w", doc.Path, err)
	}

	created := g == nil
	if created {
		if g, err = buildGroup(doc); err != nil {
			return nil, err
		}
	}

	locals, err := document.DecodeEntity(w, base, document.DecodeOptions{
		Parent:      parent,
		Index:       -1,
		PreserveIDs: extend != nil,
	})
	if err != nil {
		if len(locals) > 0 {
			_ = w.DestroyEntity(locals[0])
		}
		return nil, fmt.Errorf("import %s: %w", doc.Path, err)
	}
	if created {
		m.registerGroup(g)
	}

	defReg := g.registry.Registry()
	inst := &Instance{ID: g.allocateInstanceID()}
	for i, local := range locals {
		reg := g.registryEntities[i]
		inst.Members = append(inst.Members, EntityMember{Local: local, Registry: reg})
		// a bit on a component the local lacks records a local removal
		allowed := catalog.ComponentMask(w.Registry(), local) | catalog.ComponentMask(defReg, reg)
		if mask := results[i].Overrides & allowed; mask != 0 {
			setMask(inst, local, mask)
		}
	}
	g.addInstance(sceneID, inst, -1)

	m.log.Debug("Shared group instantiated",
		log.String("path", g.path),
		log.Uint32("scene", uint32(sceneID)),
		log.Uint32("instance", uint32(inst.ID)),
		log.Int("entities", len(locals)))
	m.publish(EventInstanceCreated, Change{Path: g.path, SceneID: sceneID, InstanceID: inst.ID, Entity: inst.Root()})
	return locals, nil
}

// buildGroup decodes doc into a fresh group definition that is not yet known to
// the manager. doc must be validated.
func buildGroup(doc *document.Document) (*Group, error) {
	g := newGroup(doc.Path)
	root := doc.Root.Clone()
	root.ClearEntityIDs()
	regs, err := document.DecodeEntity(g.registry, root, document.DecodeOptions{Index: -1})
	if err != nil {
		return nil, fmt.Errorf("create group %s: %w", doc.Path, err)
	}
	g.registryEntities = regs
	if fp, err := document.Fingerprint(doc); err == nil {
		g.fingerprint = fp
	}
	return g, nil
}

func (m *Manager) registerGroup(g *Group) {
	m.groups[g.path] = g
	m.log.Debug("Shared group created", log.String("path", g.path), log.Int("entities", len(g.registryEntities)))
	m.publish(EventGroupCreated, Change{Path: g.path})
}

// MarkEntityShared turns entity and its subtree into an instance of path. When
// the group does not exist yet the subtree becomes its definition. Otherwise the
// subtree must mirror the definition hierarchy and every component that differs
// from the definition is recorded as an override.
func (m *Manager) MarkEntityShared(sceneID models.SceneID, entity models.Entity, path string) (InstanceID, error) {
	w, err := m.scene(sceneID)
	if err != nil {
		return 0, err
	}
	if path == "" {
		return 0, ErrInvalidPath
	}
	if !w.Exists(entity) {
		return 0, fmt.Errorf("%w: %d", ErrEntityNotFound, entity)
	}
	locals := w.Descendants(entity)
	for _, e := range locals {
		if m.IsEntityShared(sceneID, e) {
			return 0, fmt.Errorf("%w: %d", ErrAlreadyShared, e)
		}
	}
	if m.sharedLineage(sceneID, w.Parent(entity)) {
		return 0, fmt.Errorf("%w: %d", ErrNestedSharedGroup, entity)
	}

	node := document.EncodeEntity(w, entity)
	g := m.groups[path]
	if g == nil {
		node.ClearEntityIDs()
		doc := &document.Document{Path: path, Version: document.CurrentVersion, Root: node}
		if err := document.Validate(node); err != nil {
			return 0, fmt.Errorf("mark shared %s: %w", path, err)
		}
		if g, err = buildGroup(doc); err != nil {
			return 0, err
		}
		g.modified = true
		m.registerGroup(g)
	} else if !sameShape(node, document.EncodeEntity(g.registry, g.Root())) {
		m.log.Warn("Entity hierarchy does not match shared group",
			log.String("path", path), log.Uint32("entity", uint32(entity)))
		return 0, fmt.Errorf("%w: %s", ErrStructureMismatch, path)
	}

	inst := &Instance{ID: g.allocateInstanceID()}
	for i, local := range locals {
		reg := g.registryEntities[i]
		inst.Members = append(inst.Members, EntityMember{Local: local, Registry: reg})
		var mask uint64
		for _, t := range catalog.ComponentTypes(w.Registry(), local) {
			if !catalog.HasComponent(g.registry.Registry(), reg, t) ||
				!catalog.ComponentEqual(w.Registry(), local, g.registry.Registry(), reg, t) {
				mask |= t.Bit()
			}
		}
		for _, t := range catalog.ComponentTypes(g.registry.Registry(), reg) {
			if t != catalog.TransformComponent && !catalog.HasComponent(w.Registry(), local, t) {
				mask |= t.Bit()
			}
		}
		setMask(inst, local, mask)
	}
	g.addInstance(sceneID, inst, -1)

	m.log.Debug("Entity marked shared",
		log.String("path", path),
		log.Uint32("scene", uint32(sceneID)),
		log.Uint32("entity", uint32(entity)),
		log.Uint32("instance", uint32(inst.ID)))
	m.publish(EventInstanceCreated, Change{Path: path, SceneID: sceneID, InstanceID: inst.ID, Entity: entity})
	return inst.ID, nil
}

func (m *Manager) scene(id models.SceneID) (*world.World, error) {
	w, ok := m.scenes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrSceneNotFound, id)
	}
	return w, nil
}

// sharedLineage reports whether e or one of its ancestors belongs to a group.
func (m *Manager) sharedLineage(sceneID models.SceneID, e models.Entity) bool {
	w := m.scenes[sceneID]
	if w == nil {
		return false
	}
	for ; e != models.NullEntity; e = w.Parent(e) {
		if m.IsEntityShared(sceneID, e) {
			return true
		}
	}
	return false
}

// sameShape compares the child counts of two trees node by node.
func sameShape(a, b *document.EntityNode) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !sameShape(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}
