package catalog

import "fmt"

// ComponentType is the closed set of component kinds. Its value is also the bit
// position used by override masks, so the set must stay within 64 members.
type ComponentType uint8

const (
	TransformComponent ComponentType = iota
	MeshComponent
	LightComponent
	CameraComponent
	ScriptComponent

	ComponentTypeCount
)

// Fails to compile once ComponentTypeCount exceeds 64.
var _ [64 - ComponentTypeCount]struct{}

func (t ComponentType) Valid() bool {
	return t < ComponentTypeCount
}

// Bit returns the mask bit of t.
func (t ComponentType) Bit() uint64 {
	return 1 << uint64(t)
}

func (t ComponentType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("component(%d)", uint8(t))
	}
	return descriptors[t].name
}

// TypeByName resolves the document name of a component type.
func TypeByName(name string) (ComponentType, bool) {
	for t := ComponentType(0); t < ComponentTypeCount; t++ {
		if descriptors[t].name == name {
			return t, true
		}
	}
	return 0, false
}

// Types lists every component type in enum order.
func Types() []ComponentType {
	out := make([]ComponentType, 0, ComponentTypeCount)
	for t := ComponentType(0); t < ComponentTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// TypesOf expands a mask into component types in enum order.
func TypesOf(mask uint64) []ComponentType {
	var out []ComponentType
	for t := ComponentType(0); t < ComponentTypeCount; t++ {
		if mask&t.Bit() != 0 {
			out = append(out, t)
		}
	}
	return out
}

// PropertyType describes the value kind behind a property reference.
type PropertyType uint8

const (
	PropertyBool PropertyType = iota
	PropertyInt
	PropertyFloat
	PropertyString
	PropertyVector3
	PropertyQuaternion
	PropertyColor
	PropertyEnum
)

// UpdateFlags name the derived state that must be recomputed after a write.
type UpdateFlags uint8

const (
	UpdateTransform UpdateFlags = 1 << iota
	UpdateMesh
	UpdateShadows
	UpdateLight
	UpdateCamera
)

// Property is one entry of a component property table. Ref points into a live
// component, or is nil when the table was requested without one.
type Property struct {
	Name    string
	Type    PropertyType
	Ref     any
	Default any
	Update  UpdateFlags
}
