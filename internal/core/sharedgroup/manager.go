// Package sharedgroup keeps reusable entity hierarchies ("shared groups") whose
// instances stay synchronized with one canonical definition, except for the
// components an instance overrides.
package sharedgroup

import (
	"fmt"
	"sort"

	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/events/bus"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/observability/log"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// Manager owns every shared group, keyed by path, and the scenes their
// instances live in. It is not safe for concurrent use.
type Manager struct {
	groups map[string]*Group
	scenes map[models.SceneID]*world.World
	log    log.Log
	bus    bus.EventBus
}

type Option func(*Manager)

func WithLogger(l log.Log) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithEventBus publishes group lifecycle and propagation events on b.
func WithEventBus(b bus.EventBus) Option {
	return func(m *Manager) {
		m.bus = b
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		groups: make(map[string]*Group),
		scenes: make(map[models.SceneID]*world.World),
		log:    log.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(log.String("component", "sharedgroup"))
	return m
}

// AddScene registers a scene so instances can be created in it.
func (m *Manager) AddScene(w *world.World) error {
	if w == nil {
		return ErrSceneNotFound
	}
	if _, ok := m.scenes[w.ID()]; ok {
		return fmt.Errorf("%w: %d", ErrSceneExists, w.ID())
	}
	m.scenes[w.ID()] = w
	return nil
}

func (m *Manager) Scene(id models.SceneID) *world.World {
	return m.scenes[id]
}

// RemoveScene detaches every instance living in the scene and forgets it. Groups
// left without instances are destroyed. It must run before the scene is torn down.
func (m *Manager) RemoveScene(id models.SceneID) {
	for _, path := range m.Paths() {
		g := m.groups[path]
		if _, ok := g.instances[id]; !ok {
			continue
		}
		delete(g.instances, id)
		m.log.Debug("Scene instances removed", log.String("path", path), log.Uint32("scene", uint32(id)))
		if g.InstanceCount() == 0 {
			m.destroyGroup(g)
		}
	}
	delete(m.scenes, id)
}

// Group returns the group stored under path, or nil.
func (m *Manager) Group(path string) *Group {
	return m.groups[path]
}

// Paths lists the group paths in ascending order.
func (m *Manager) Paths() []string {
	out := make([]string, 0, len(m.groups))
	for path := range m.groups {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// FindGroup returns the group whose instance in sceneID contains entity, or nil.
func (m *Manager) FindGroup(sceneID models.SceneID, entity models.Entity) *Group {
	g, _ := m.find(sceneID, entity)
	return g
}

func (m *Manager) IsEntityShared(sceneID models.SceneID, entity models.Entity) bool {
	g, _ := m.find(sceneID, entity)
	return g != nil
}

func (m *Manager) find(sceneID models.SceneID, entity models.Entity) (*Group, *Instance) {
	if entity == models.NullEntity {
		return nil, nil
	}
	for _, g := range m.groups {
		if inst := g.Instance(sceneID, entity); inst != nil {
			return g, inst
		}
	}
	return nil, nil
}

// RemoveGroup forgets a group. The instance entities stay in their scenes as
// plain entities.
func (m *Manager) RemoveGroup(path string) bool {
	g, ok := m.groups[path]
	if !ok {
		return false
	}
	m.destroyGroup(g)
	return true
}

func (m *Manager) destroyGroup(g *Group) {
	delete(m.groups, g.path)
	m.log.Debug("Shared group destroyed", log.String("path", g.path))
	m.publish(EventGroupRemoved, Change{Path: g.path})
}

// SaveDocument snapshots the definition of path into a document and clears the
// modified flag.
func (m *Manager) SaveDocument(path string) (*document.Document, error) {
	g, ok := m.groups[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, path)
	}
	root := document.EncodeEntity(g.registry, g.Root())
	if root == nil {
		return nil, fmt.Errorf("%w: %s", document.ErrEmptyDocument, path)
	}
	root.ClearEntityIDs()
	doc := &document.Document{Path: path, Version: document.CurrentVersion, Root: root}
	fp, err := document.Fingerprint(doc)
	if err != nil {
		return nil, fmt.Errorf("fingerprint %s: %w", path, err)
	}
	g.fingerprint = fp
	g.modified = false
	m.publish(EventGroupSaved, Change{Path: path})
	return doc, nil
}

// InstanceDocument builds the extend document persisting the instance that
// contains entity: entity handles plus the overridden components only, laid out
// like the definition. Plain children placed under members are left out.
// Importing the group with it reproduces the instance.
func (m *Manager) InstanceDocument(sceneID models.SceneID, entity models.Entity) *document.EntityNode {
	g, inst := m.find(sceneID, entity)
	if g == nil {
		return nil
	}
	w := m.scenes[sceneID]
	masks := make([]uint64, 0, len(inst.Members))
	var build func(reg models.Entity) *document.EntityNode
	build = func(reg models.Entity) *document.EntityNode {
		local := inst.localFor(reg)
		node := document.EncodeNode(w, local)
		if node == nil {
			node = &document.EntityNode{}
		}
		masks = append(masks, inst.Overrides[local])
		for _, child := range g.registry.Children(reg) {
			node.Children = append(node.Children, build(child))
		}
		return node
	}
	return document.Diff(build(inst.Members[0].Registry), masks)
}
