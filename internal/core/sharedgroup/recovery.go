package sharedgroup

import (
	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/document"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

// Recovery is the undo record of a structural mutation. It is implemented by
// NodeRecovery, SharedMoveRecovery and ComponentRecovery only.
type Recovery interface {
	recovery()
}

// NodeRecovery restores an entity detached from its group.
type NodeRecovery struct {
	Path          string
	SceneID       models.SceneID
	InstanceID    InstanceID
	InstanceIndex int

	// Root is set when the whole instance was detached.
	Root      bool
	Destroyed bool

	// Node is the local subtree with its entity handles; Overrides follow its
	// depth-first order.
	Node      *document.EntityNode
	Overrides []document.MergeResult
	Parent    models.Entity
	Index     int

	// Definition holds the removed definition subtree, or the whole definition
	// when the group was destroyed along with its last instance.
	Definition     *document.EntityNode
	RegistryParent models.Entity
	RegistryIndex  int
	NextInstanceID InstanceID
	Modified       bool
	Fingerprint    uint64

	// Others holds the counterparts destroyed in the remaining instances.
	Others []InstanceRecovery
}

// InstanceRecovery is the snapshot of one destroyed counterpart.
type InstanceRecovery struct {
	SceneID    models.SceneID
	InstanceID InstanceID
	Node       *document.EntityNode
	Overrides  []document.MergeResult
	Parent     models.Entity
	Index      int
}

// GroupDestroyed reports whether the mutation removed the group itself.
func (r NodeRecovery) GroupDestroyed() bool {
	return r.Root && r.Definition != nil
}

// SharedMoveRecovery restores the previous position of a moved member.
type SharedMoveRecovery struct {
	Path         string
	SceneID      models.SceneID
	Entity       models.Entity
	OldParent    models.Entity
	OldIndex     int
	HadTransform bool
}

// ComponentTarget is one entity touched by a component mutation.
type ComponentTarget struct {
	SceneID    models.SceneID
	Entity     models.Entity
	Node       document.ComponentNode
	Overridden bool
}

// ComponentRecovery restores the component state changed by a mutation.
type ComponentRecovery struct {
	Path    string
	SceneID models.SceneID
	Entity  models.Entity
	Type    catalog.ComponentType
	Shared  bool

	// Targets lists the instance entities in the order they were touched.
	Targets []ComponentTarget

	// Definition is the removed definition component; DefinitionAdded marks a
	// definition component created by the mutation.
	Definition      document.ComponentNode
	DefinitionAdded bool
}

func (NodeRecovery) recovery()       {}
func (SharedMoveRecovery) recovery() {}
func (ComponentRecovery) recovery()  {}
