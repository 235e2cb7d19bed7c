// Package catalog maps component types onto registry component ids and exposes
// per-component property tables, so callers can copy, compare and write
// individual properties without knowing concrete component layouts.
package catalog

import (
	"fmt"
	"reflect"

	"github.com/zeusync/sharedgroups/internal/core/components"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

func lookup(t ComponentType) (descriptor, error) {
	if !t.Valid() {
		return descriptor{}, fmt.Errorf("%w: %d", ErrUnknownComponent, uint8(t))
	}
	return descriptors[t], nil
}

// ComponentID returns the id of t in r, registering the type on first use.
func ComponentID(r *models.Registry, t ComponentType) (models.ComponentID, error) {
	d, err := lookup(t)
	if err != nil {
		return 0, err
	}
	return d.register(r)
}

// HasComponent tests e's signature for t.
func HasComponent(r *models.Registry, e models.Entity, t ComponentType) bool {
	if !t.Valid() {
		return false
	}
	id, ok := descriptors[t].id(r)
	return ok && r.HasComponentID(e, id)
}

// Component returns a pointer to e's component of type t, or nil.
func Component(r *models.Registry, e models.Entity, t ComponentType) any {
	if !t.Valid() {
		return nil
	}
	id, ok := descriptors[t].id(r)
	if !ok {
		return nil
	}
	comp, ok := r.ComponentByID(e, id)
	if !ok {
		return nil
	}
	return comp
}

// ComponentTypes lists the catalogued components e carries, in enum order.
func ComponentTypes(r *models.Registry, e models.Entity) []ComponentType {
	var out []ComponentType
	for t := ComponentType(0); t < ComponentTypeCount; t++ {
		if HasComponent(r, e, t) {
			out = append(out, t)
		}
	}
	return out
}

// ComponentMask returns the ComponentType bits of every component e carries.
func ComponentMask(r *models.Registry, e models.Entity) uint64 {
	var mask uint64
	for _, t := range ComponentTypes(r, e) {
		mask |= t.Bit()
	}
	return mask
}

// NewComponent returns a detached component of type t holding default values.
func NewComponent(t ComponentType) (any, error) {
	d, err := lookup(t)
	if err != nil {
		return nil, err
	}
	return d.newDefault(), nil
}

// AttachComponent stores a copy of value (as produced by NewComponent) on e.
func AttachComponent(r *models.Registry, e models.Entity, t ComponentType, value any) (any, error) {
	d, err := lookup(t)
	if err != nil {
		return nil, err
	}
	return d.attach(r, e, value)
}

// AddComponent attaches a default component of type t, returning the stored pointer.
// An existing component is returned untouched.
func AddComponent(r *models.Registry, e models.Entity, t ComponentType) (any, error) {
	if comp := Component(r, e, t); comp != nil {
		return comp, nil
	}
	value, err := NewComponent(t)
	if err != nil {
		return nil, err
	}
	return AttachComponent(r, e, t, value)
}

// RemoveComponent strips t from e and reports whether it was present.
func RemoveComponent(r *models.Registry, e models.Entity, t ComponentType) bool {
	if !t.Valid() {
		return false
	}
	id, ok := descriptors[t].id(r)
	if !ok {
		return false
	}
	return r.RemoveComponentByID(e, id)
}

// Properties returns the ordered property table of t. When comp is a live
// component pointer every Ref points into it; otherwise Refs are nil.
func Properties(t ComponentType, comp any) []Property {
	if !t.Valid() {
		return nil
	}
	return descriptors[t].properties(comp)
}

// PropertyNames lists the property names of t in table order.
func PropertyNames(t ComponentType) []string {
	props := Properties(t, nil)
	names := make([]string, len(props))
	for i, p := range props {
		names[i] = p.Name
	}
	return names
}

// FindProperty returns the named entry of comp's property table.
func FindProperty(t ComponentType, comp any, name string) (Property, bool) {
	for _, p := range Properties(t, comp) {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// UpdateFlagsOf returns the union of the update flags of the named properties.
func UpdateFlagsOf(t ComponentType, names ...string) UpdateFlags {
	var flags UpdateFlags
	for _, p := range Properties(t, nil) {
		if len(names) == 0 {
			flags |= p.Update
			continue
		}
		for _, n := range names {
			if n == p.Name {
				flags |= p.Update
			}
		}
	}
	return flags
}

// GetPropertyValue returns a copy of a property value of e.
func GetPropertyValue(r *models.Registry, e models.Entity, t ComponentType, name string) (any, error) {
	comp := Component(r, e, t)
	if comp == nil {
		return nil, fmt.Errorf("%w: %s on %d", ErrMissingComponent, t, e)
	}
	p, ok := FindProperty(t, comp, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownProperty, t, name)
	}
	return reflect.ValueOf(p.Ref).Elem().Interface(), nil
}

// SetPropertyValue writes value into a property of e, converting numeric kinds
// and sequences where needed. It does not raise update flags; see UpdateEntity.
func SetPropertyValue(r *models.Registry, e models.Entity, t ComponentType, name string, value any) error {
	comp := Component(r, e, t)
	if comp == nil {
		return fmt.Errorf("%w: %s on %d", ErrMissingComponent, t, e)
	}
	return SetComponentValue(t, comp, name, value)
}

// SetComponentValue is SetPropertyValue on a component pointer.
func SetComponentValue(t ComponentType, comp any, name string, value any) error {
	p, ok := FindProperty(t, comp, name)
	if !ok || p.Ref == nil {
		return fmt.Errorf("%w: %s.%s", ErrUnknownProperty, t, name)
	}
	if err := assign(reflect.ValueOf(p.Ref).Elem(), value); err != nil {
		return fmt.Errorf("%s.%s: %w", t, name, err)
	}
	return nil
}

// CopyPropertyValue copies one property between two entities that may live in
// different registries. It reports false when either side lacks the component or
// the property is unknown.
func CopyPropertyValue(src *models.Registry, srcEntity models.Entity, dst *models.Registry, dstEntity models.Entity, t ComponentType, name string) bool {
	from, to := Component(src, srcEntity, t), Component(dst, dstEntity, t)
	if from == nil || to == nil {
		return false
	}
	fp, ok := FindProperty(t, from, name)
	if !ok {
		return false
	}
	tp, _ := FindProperty(t, to, name)
	reflect.ValueOf(tp.Ref).Elem().Set(reflect.ValueOf(fp.Ref).Elem())
	return true
}

// CopyComponent copies every property of t and returns the update flags raised.
func CopyComponent(src *models.Registry, srcEntity models.Entity, dst *models.Registry, dstEntity models.Entity, t ComponentType) (UpdateFlags, bool) {
	var flags UpdateFlags
	for _, p := range Properties(t, nil) {
		if !CopyPropertyValue(src, srcEntity, dst, dstEntity, t, p.Name) {
			return 0, false
		}
		flags |= p.Update
	}
	return flags, true
}

// PropertyEqual compares one property across two entities.
func PropertyEqual(a *models.Registry, ae models.Entity, b *models.Registry, be models.Entity, t ComponentType, name string) bool {
	ca, cb := Component(a, ae, t), Component(b, be, t)
	if ca == nil || cb == nil {
		return ca == nil && cb == nil
	}
	pa, ok := FindProperty(t, ca, name)
	if !ok {
		return false
	}
	pb, _ := FindProperty(t, cb, name)
	return reflect.DeepEqual(reflect.ValueOf(pa.Ref).Elem().Interface(), reflect.ValueOf(pb.Ref).Elem().Interface())
}

// ComponentEqual compares every property of t across two entities.
func ComponentEqual(a *models.Registry, ae models.Entity, b *models.Registry, be models.Entity, t ComponentType) bool {
	for _, p := range Properties(t, nil) {
		if !PropertyEqual(a, ae, b, be, t, p.Name) {
			return false
		}
	}
	return true
}

// UpdateEntity raises the dirty markers selected by flags on e.
func UpdateEntity(r *models.Registry, e models.Entity, flags UpdateFlags) {
	if flags&UpdateTransform != 0 {
		if tr := models.FindComponent[components.Transform](r, e); tr != nil {
			tr.NeedUpdate = true
		}
	}
	if flags&UpdateMesh != 0 {
		if mesh := models.FindComponent[components.Mesh](r, e); mesh != nil {
			mesh.NeedReload = true
		}
	}
	if flags&(UpdateShadows|UpdateLight) != 0 {
		if light := models.FindComponent[components.Light](r, e); light != nil {
			light.NeedUpdateShadow = true
		}
	}
	if flags&UpdateCamera != 0 {
		if cam := models.FindComponent[components.Camera](r, e); cam != nil {
			cam.NeedUpdate = true
		}
	}
}
