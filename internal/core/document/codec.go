package document

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

// EncodeComponent snapshots every property of e's component t.
func EncodeComponent(r *models.Registry, e models.Entity, t catalog.ComponentType) (ComponentNode, bool) {
	comp := catalog.Component(r, e, t)
	if comp == nil {
		return nil, false
	}
	props := catalog.Properties(t, comp)
	node := make(ComponentNode, len(props))
	for _, p := range props {
		node[p.Name] = reflect.ValueOf(p.Ref).Elem().Interface()
	}
	return node, true
}

// ValidateComponent decodes node into a scratch component and reports any failure.
func ValidateComponent(t catalog.ComponentType, node ComponentNode) error {
	scratch, err := catalog.NewComponent(t)
	if err != nil {
		return err
	}
	return applyComponent(t, scratch, node)
}

// DecodeComponent writes node into e's component t, attaching the component when
// missing. The node is validated before anything is written.
func DecodeComponent(r *models.Registry, e models.Entity, t catalog.ComponentType, node ComponentNode) error {
	if err := ValidateComponent(t, node); err != nil {
		return err
	}
	if comp := catalog.Component(r, e, t); comp != nil {
		return applyComponent(t, comp, node)
	}
	scratch, _ := catalog.NewComponent(t)
	if err := applyComponent(t, scratch, node); err != nil {
		return err
	}
	_, err := catalog.AttachComponent(r, e, t, scratch)
	return err
}

func applyComponent(t catalog.ComponentType, comp any, node ComponentNode) error {
	for _, name := range sortedKeys(node) {
		if err := catalog.SetComponentValue(t, comp, name, node[name]); err != nil {
			return fmt.Errorf("%w: %w", ErrDecodeFailed, err)
		}
	}
	return nil
}

// EncodeEntity snapshots e and its subtree from w.
func EncodeEntity(w *world.World, e models.Entity) *EntityNode {
	node := EncodeNode(w, e)
	if node == nil {
		return nil
	}
	for _, child := range w.Children(e) {
		node.Children = append(node.Children, EncodeEntity(w, child))
	}
	return node
}

// EncodeNode snapshots e alone, without its children.
func EncodeNode(w *world.World, e models.Entity) *EntityNode {
	if !w.Exists(e) {
		return nil
	}
	r := w.Registry()
	node := &EntityNode{Entity: e, Name: w.EntityName(e)}
	for _, t := range catalog.ComponentTypes(r, e) {
		comp, _ := EncodeComponent(r, e, t)
		if node.Components == nil {
			node.Components = make(map[string]ComponentNode)
		}
		node.Components[t.String()] = comp
	}
	return node
}

// Validate dry-runs the decoding of a whole subtree.
func Validate(node *EntityNode) error {
	if node == nil {
		return ErrEmptyDocument
	}
	var err error
	node.Walk(func(n *EntityNode) {
		if err != nil {
			return
		}
		for _, name := range n.ComponentNames() {
			t, ok := catalog.TypeByName(name)
			if !ok {
				err = fmt.Errorf("%w: %q", ErrUnknownComponent, name)
				return
			}
			if verr := ValidateComponent(t, n.Components[name]); verr != nil {
				err = verr
				return
			}
		}
		if len(n.Children) > 0 {
			if _, ok := n.Components[catalog.TransformComponent.String()]; !ok {
				err = fmt.Errorf("%w: %q", ErrChildrenNeedTransform, n.Name)
			}
		}
	})
	return err
}

// DecodeOptions tune DecodeEntity.
type DecodeOptions struct {
	// Parent receives the decoded root; NullEntity keeps it at the top level.
	Parent models.Entity
	// Index is the sibling position of the root, negative to append.
	Index int
	// PreserveIDs recreates the node entity handles when they are free in the target.
	PreserveIDs bool
}

// DecodeEntity materializes the subtree into w and returns the created entities in
// depth-first order. The subtree is validated first so a malformed document leaves w
// untouched.
func DecodeEntity(w *world.World, node *EntityNode, opts DecodeOptions) ([]models.Entity, error) {
	if err := Validate(node); err != nil {
		return nil, err
	}
	if opts.Parent != models.NullEntity && (!w.Exists(opts.Parent) || w.Transform(opts.Parent) == nil) {
		return nil, fmt.Errorf("%w: parent %d", ErrDecodeFailed, opts.Parent)
	}
	var created []models.Entity
	if err := decodeEntity(w, node, opts.Parent, opts.Index, opts.PreserveIDs, &created); err != nil {
		return created, err
	}
	return created, nil
}

func decodeEntity(w *world.World, node *EntityNode, parent models.Entity, index int, preserve bool, created *[]models.Entity) error {
	var e models.Entity
	if preserve && node.Entity != models.NullEntity && !w.Exists(node.Entity) {
		var err error
		if e, err = w.CreateEntityWithID(node.Entity, node.Name); err != nil {
			return err
		}
	} else {
		e = w.CreateEntity(node.Name)
	}
	*created = append(*created, e)

	r := w.Registry()
	for _, name := range node.ComponentNames() {
		t, _ := catalog.TypeByName(name)
		if err := DecodeComponent(r, e, t, node.Components[name]); err != nil {
			return err
		}
	}
	if parent != models.NullEntity || index >= 0 {
		if _, err := w.AddChild(parent, e, index); err != nil {
			return err
		}
	}
	for _, child := range node.Children {
		if err := decodeEntity(w, child, e, -1, preserve, created); err != nil {
			return err
		}
	}
	return nil
}

// MergeEntityNodes folds extend into base. Nodes are matched by position: the
// roots, then children by index, recursively. Every component value carried by
// extend overwrites the base value; components that end up different from the
// base mark their type in the result. Components named in an extend node's
// Removed list are dropped from base and marked as well; Transform is never
// dropped. Entity handles of matched extend nodes replace the base handles so
// callers can reuse them. The results follow the depth-first order of base.
func MergeEntityNodes(extend *EntityNode, base *EntityNode) []MergeResult {
	var results []MergeResult
	mergeNode(extend, base, &results)
	return results
}

func mergeNode(ext, base *EntityNode, results *[]MergeResult) {
	if base == nil {
		return
	}
	res := MergeResult{}
	if ext != nil {
		res.IsShared = true
		base.Entity = ext.Entity
		for _, name := range ext.ComponentNames() {
			extComp := ext.Components[name]
			if base.Components == nil {
				base.Components = make(map[string]ComponentNode)
			}
			baseComp, has := base.Components[name]
			changed := !has
			if !has {
				baseComp = make(ComponentNode, len(extComp))
				base.Components[name] = baseComp
			}
			for prop, v := range extComp {
				if old, ok := baseComp[prop]; !ok || !ValuesEqual(old, v) {
					changed = true
				}
				baseComp[prop] = cloneValue(v)
			}
			if t, ok := catalog.TypeByName(name); ok && changed {
				res.Overrides |= t.Bit()
			}
		}
		for _, name := range ext.Removed {
			t, ok := catalog.TypeByName(name)
			if !ok || t == catalog.TransformComponent {
				continue
			}
			if _, has := base.Components[name]; has {
				delete(base.Components, name)
				res.Overrides |= t.Bit()
			}
		}
	}
	*results = append(*results, res)
	for i, child := range base.Children {
		var extChild *EntityNode
		if ext != nil && i < len(ext.Children) {
			extChild = ext.Children[i]
		}
		mergeNode(extChild, child, results)
	}
}

// Diff builds the extend node that turns base into current: only components whose
// bit is set in masks[i] (depth-first order of current) are kept. A masked type
// that current lacks is listed in Removed. Entity handles come from current.
func Diff(current *EntityNode, masks []uint64) *EntityNode {
	i := 0
	var build func(n *EntityNode) *EntityNode
	build = func(n *EntityNode) *EntityNode {
		var mask uint64
		if i < len(masks) {
			mask = masks[i]
		}
		i++
		out := &EntityNode{Entity: n.Entity}
		for _, name := range n.ComponentNames() {
			t, ok := catalog.TypeByName(name)
			if !ok || mask&t.Bit() == 0 {
				continue
			}
			if out.Components == nil {
				out.Components = make(map[string]ComponentNode)
			}
			out.Components[name] = n.Components[name].Clone()
		}
		for _, t := range catalog.TypesOf(mask &^ n.Mask()) {
			out.Removed = append(out.Removed, t.String())
		}
		for _, child := range n.Children {
			out.Children = append(out.Children, build(child))
		}
		return out
	}
	return build(current)
}

func sortedKeys(node ComponentNode) []string {
	keys := make([]string, 0, len(node))
	for k := range node {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
