// Package document converts entity state to and from a hierarchical document
// and merges per-instance "extend" documents into a base definition.
package document

import (
	"reflect"
	"sort"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

// CurrentVersion is written into every document produced by this package.
const CurrentVersion = 1

// ComponentNode maps property names onto scalar or sequence values.
type ComponentNode map[string]any

// EntityNode is one entity of a document tree.
type EntityNode struct {
	Entity     models.Entity            `yaml:"entity,omitempty"`
	Name       string                   `yaml:"name,omitempty"`
	Components map[string]ComponentNode `yaml:"components,omitempty"`
	// Removed lists definition components an instance entity dropped locally.
	// Only extend documents carry it.
	Removed  []string      `yaml:"removed,omitempty"`
	Children []*EntityNode `yaml:"children,omitempty"`
}

// Document is a shared group definition keyed by its path.
type Document struct {
	Path    string      `yaml:"-"`
	Version int         `yaml:"version"`
	Root    *EntityNode `yaml:"root"`
}

// MergeResult describes one base entity after a merge, in depth-first order.
// IsShared is set when the extend document carried a counterpart for the entity;
// Overrides holds the ComponentType bits whose values differ from the base.
type MergeResult struct {
	IsShared  bool
	Overrides uint64
}

// Clone deep-copies a component node.
func (c ComponentNode) Clone() ComponentNode {
	if c == nil {
		return nil
	}
	out := make(ComponentNode, len(c))
	for k, v := range c {
		out[k] = cloneValue(v)
	}
	return out
}

// Clone deep-copies the subtree rooted at n.
func (n *EntityNode) Clone() *EntityNode {
	if n == nil {
		return nil
	}
	out := &EntityNode{Entity: n.Entity, Name: n.Name}
	if n.Components != nil {
		out.Components = make(map[string]ComponentNode, len(n.Components))
		for name, comp := range n.Components {
			out.Components[name] = comp.Clone()
		}
	}
	if n.Removed != nil {
		out.Removed = append([]string(nil), n.Removed...)
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.Clone())
	}
	return out
}

// Walk visits n and its subtree depth-first.
func (n *EntityNode) Walk(fn func(*EntityNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Flatten returns the subtree rooted at n in depth-first order.
func (n *EntityNode) Flatten() []*EntityNode {
	var out []*EntityNode
	n.Walk(func(node *EntityNode) { out = append(out, node) })
	return out
}

// Count returns the number of entities in the subtree.
func (n *EntityNode) Count() int {
	count := 0
	n.Walk(func(*EntityNode) { count++ })
	return count
}

// ClearEntityIDs zeroes every entity handle of the subtree.
func (n *EntityNode) ClearEntityIDs() {
	n.Walk(func(node *EntityNode) { node.Entity = models.NullEntity })
}

// ComponentNames returns the component keys in a stable order.
func (n *EntityNode) ComponentNames() []string {
	names := make([]string, 0, len(n.Components))
	for name := range n.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Mask returns the ComponentType bits of the components present on n.
func (n *EntityNode) Mask() uint64 {
	var mask uint64
	for name := range n.Components {
		if t, ok := catalog.TypeByName(name); ok {
			mask |= t.Bit()
		}
	}
	return mask
}

func cloneValue(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return v
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = cloneValue(rv.Index(i).Interface())
	}
	return out
}

// normalize brings YAML-decoded and in-memory values to a comparable shape.
// Numbers compare at float32 precision, which is the widest property storage.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return float64(float32(rv.Float()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(float32(rv.Int()))
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	default:
		return v
	}
}

// ValuesEqual compares two property values regardless of their numeric encoding.
func ValuesEqual(a, b any) bool {
	return reflect.DeepEqual(normalize(a), normalize(b))
}
