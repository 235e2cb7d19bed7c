package sharedgroup

import (
	"sort"

	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// InstanceID identifies an instance within one scene. Zero is never assigned.
type InstanceID uint32

// EntityMember pairs a scene entity with its definition entity.
type EntityMember struct {
	Local    models.Entity
	Registry models.Entity
}

// Instance is one placement of a group into a scene. Members[0] is the root and
// the members follow the depth-first order of the local hierarchy.
type Instance struct {
	ID        InstanceID
	Members   []EntityMember
	Overrides map[models.Entity]uint64
}

// Root returns the local root entity.
func (i *Instance) Root() models.Entity {
	if len(i.Members) == 0 {
		return models.NullEntity
	}
	return i.Members[0].Local
}

func (i *Instance) member(local models.Entity) (EntityMember, bool) {
	for _, m := range i.Members {
		if m.Local == local {
			return m, true
		}
	}
	return EntityMember{}, false
}

func (i *Instance) has(local models.Entity) bool {
	_, ok := i.member(local)
	return ok
}

func (i *Instance) localFor(registry models.Entity) models.Entity {
	for _, m := range i.Members {
		if m.Registry == registry {
			return m.Local
		}
	}
	return models.NullEntity
}

// dropMembers removes the members whose registry entity is in regs, along with
// their override entries.
func (i *Instance) dropMembers(regs map[models.Entity]bool) {
	kept := i.Members[:0]
	for _, m := range i.Members {
		if regs[m.Registry] {
			delete(i.Overrides, m.Local)
			continue
		}
		kept = append(kept, m)
	}
	i.Members = kept
}

// reorder re-sorts the members along the depth-first order of w.
func (i *Instance) reorder(w *world.World) {
	if len(i.Members) == 0 {
		return
	}
	index := make(map[models.Entity]models.Entity, len(i.Members))
	for _, m := range i.Members {
		index[m.Local] = m.Registry
	}
	out := make([]EntityMember, 0, len(i.Members))
	for _, local := range w.Descendants(i.Members[0].Local) {
		if reg, ok := index[local]; ok {
			out = append(out, EntityMember{Local: local, Registry: reg})
		}
	}
	i.Members = out
}

// Group is a canonical entity hierarchy plus its live instances. The group owns
// its private registry; instance members reference entities of other worlds
// without owning them.
type Group struct {
	path             string
	registry         *world.World
	registryEntities []models.Entity
	instances        map[models.SceneID][]*Instance
	nextInstanceID   InstanceID
	modified         bool
	fingerprint      uint64
}

func newGroup(path string) *Group {
	return &Group{
		path:           path,
		registry:       world.New(0, path),
		instances:      make(map[models.SceneID][]*Instance),
		nextInstanceID: 1,
	}
}

func (g *Group) Path() string {
	return g.path
}

// Registry returns the private world holding the definition.
func (g *Group) Registry() *world.World {
	return g.registry
}

// RegistryEntities returns the definition entities, root first.
func (g *Group) RegistryEntities() []models.Entity {
	out := make([]models.Entity, len(g.registryEntities))
	copy(out, g.registryEntities)
	return out
}

// Root returns the definition root entity.
func (g *Group) Root() models.Entity {
	if len(g.registryEntities) == 0 {
		return models.NullEntity
	}
	return g.registryEntities[0]
}

func (g *Group) IsModified() bool {
	return g.modified
}

func (g *Group) SetModified(modified bool) {
	g.modified = modified
}

// Fingerprint returns the hash of the document the group was last loaded from or saved to.
func (g *Group) Fingerprint() uint64 {
	return g.fingerprint
}

// Instances returns the instances of the group in sceneID.
func (g *Group) Instances(sceneID models.SceneID) []*Instance {
	return g.instances[sceneID]
}

// Scenes lists the scenes holding at least one instance, ascending.
func (g *Group) Scenes() []models.SceneID {
	out := make([]models.SceneID, 0, len(g.instances))
	for id := range g.instances {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InstanceCount counts instances across all scenes.
func (g *Group) InstanceCount() int {
	count := 0
	for _, list := range g.instances {
		count += len(list)
	}
	return count
}

// Instance returns the instance of sceneID containing entity, or nil.
func (g *Group) Instance(sceneID models.SceneID, entity models.Entity) *Instance {
	for _, inst := range g.instances[sceneID] {
		if inst.has(entity) {
			return inst
		}
	}
	return nil
}

// InstanceByID returns the instance of sceneID with the given id, or nil.
func (g *Group) InstanceByID(sceneID models.SceneID, id InstanceID) *Instance {
	for _, inst := range g.instances[sceneID] {
		if inst.ID == id {
			return inst
		}
	}
	return nil
}

// RegistryEntity maps a scene entity onto its definition entity.
func (g *Group) RegistryEntity(sceneID models.SceneID, entity models.Entity) models.Entity {
	inst := g.Instance(sceneID, entity)
	if inst == nil {
		return models.NullEntity
	}
	m, _ := inst.member(entity)
	return m.Registry
}

// LocalEntity maps a definition entity onto its counterpart in one instance.
func (g *Group) LocalEntity(sceneID models.SceneID, id InstanceID, registry models.Entity) models.Entity {
	inst := g.InstanceByID(sceneID, id)
	if inst == nil {
		return models.NullEntity
	}
	return inst.localFor(registry)
}

// AllEntities returns the local members of an instance, root first.
func (g *Group) AllEntities(sceneID models.SceneID, id InstanceID) []models.Entity {
	inst := g.InstanceByID(sceneID, id)
	if inst == nil {
		return nil
	}
	out := make([]models.Entity, len(inst.Members))
	for i, m := range inst.Members {
		out[i] = m.Local
	}
	return out
}

// forEachInstance visits every instance in ascending scene order.
func (g *Group) forEachInstance(fn func(models.SceneID, *Instance)) {
	for _, sceneID := range g.Scenes() {
		for _, inst := range g.instances[sceneID] {
			fn(sceneID, inst)
		}
	}
}

func (g *Group) addInstance(sceneID models.SceneID, inst *Instance, at int) {
	list := g.instances[sceneID]
	if at < 0 || at > len(list) {
		at = len(list)
	}
	list = append(list, nil)
	copy(list[at+1:], list[at:])
	list[at] = inst
	g.instances[sceneID] = list
	if inst.ID >= g.nextInstanceID {
		g.nextInstanceID = inst.ID + 1
	}
}

// removeInstance unlinks inst and returns its former position, -1 when absent.
// An emptied scene list is pruned.
func (g *Group) removeInstance(sceneID models.SceneID, inst *Instance) int {
	list := g.instances[sceneID]
	for i, candidate := range list {
		if candidate != inst {
			continue
		}
		list = append(list[:i:i], list[i+1:]...)
		if len(list) == 0 {
			delete(g.instances, sceneID)
		} else {
			g.instances[sceneID] = list
		}
		return i
	}
	return -1
}

func (g *Group) allocateInstanceID() InstanceID {
	id := g.nextInstanceID
	g.nextInstanceID++
	return id
}

// refreshRegistryEntities recomputes the depth-first definition order.
func (g *Group) refreshRegistryEntities() {
	if len(g.registryEntities) == 0 {
		return
	}
	g.registryEntities = g.registry.Descendants(g.registryEntities[0])
}
