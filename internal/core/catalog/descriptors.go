package catalog

import (
	"reflect"

	"github.com/zeusync/sharedgroups/internal/core/components"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

type descriptor struct {
	name       string
	register   func(*models.Registry) (models.ComponentID, error)
	id         func(*models.Registry) (models.ComponentID, bool)
	newDefault func() any
	attach     func(*models.Registry, models.Entity, any) (any, error)
	properties func(comp any) []Property
}

var descriptors = [ComponentTypeCount]descriptor{
	TransformComponent: describe("transform", components.DefaultTransform, func(c *components.Transform) []Property {
		return []Property{
			{Name: "position", Type: PropertyVector3, Ref: &c.Position, Update: UpdateTransform},
			{Name: "rotation", Type: PropertyQuaternion, Ref: &c.Rotation, Update: UpdateTransform},
			{Name: "scale", Type: PropertyVector3, Ref: &c.Scale, Update: UpdateTransform},
			{Name: "visible", Type: PropertyBool, Ref: &c.Visible, Update: UpdateTransform},
		}
	}),
	MeshComponent: describe("mesh", components.DefaultMesh, func(c *components.Mesh) []Property {
		return []Property{
			{Name: "color", Type: PropertyColor, Ref: &c.Color},
			{Name: "texture", Type: PropertyString, Ref: &c.Texture, Update: UpdateMesh},
			{Name: "cast_shadows", Type: PropertyBool, Ref: &c.CastShadows, Update: UpdateShadows},
			{Name: "receive_shadows", Type: PropertyBool, Ref: &c.Receive, Update: UpdateShadows},
			{Name: "submeshes", Type: PropertyInt, Ref: &c.Submeshes, Update: UpdateMesh},
		}
	}),
	LightComponent: describe("light", components.DefaultLight, func(c *components.Light) []Property {
		return []Property{
			{Name: "type", Type: PropertyEnum, Ref: &c.Type, Update: UpdateLight | UpdateShadows},
			{Name: "color", Type: PropertyVector3, Ref: &c.Color},
			{Name: "intensity", Type: PropertyFloat, Ref: &c.Intensity},
			{Name: "range", Type: PropertyFloat, Ref: &c.Range, Update: UpdateLight},
			{Name: "inner_cone", Type: PropertyFloat, Ref: &c.InnerCone, Update: UpdateLight},
			{Name: "outer_cone", Type: PropertyFloat, Ref: &c.OuterCone, Update: UpdateLight},
			{Name: "shadows", Type: PropertyBool, Ref: &c.Shadows, Update: UpdateShadows},
			{Name: "shadow_bias", Type: PropertyFloat, Ref: &c.ShadowBias, Update: UpdateShadows},
		}
	}),
	CameraComponent: describe("camera", components.DefaultCamera, func(c *components.Camera) []Property {
		return []Property{
			{Name: "perspective", Type: PropertyBool, Ref: &c.Perspective, Update: UpdateCamera},
			{Name: "fov", Type: PropertyFloat, Ref: &c.FieldOfView, Update: UpdateCamera},
			{Name: "near", Type: PropertyFloat, Ref: &c.Near, Update: UpdateCamera},
			{Name: "far", Type: PropertyFloat, Ref: &c.Far, Update: UpdateCamera},
		}
	}),
	ScriptComponent: describe("script", components.DefaultScript, func(c *components.Script) []Property {
		return []Property{
			{Name: "path", Type: PropertyString, Ref: &c.Path},
			{Name: "class", Type: PropertyString, Ref: &c.Class},
			{Name: "enabled", Type: PropertyBool, Ref: &c.Enabled},
		}
	}),
}

func describe[T any](name string, def func() T, table func(*T) []Property) descriptor {
	return descriptor{
		name: name,
		register: func(r *models.Registry) (models.ComponentID, error) {
			return models.RegisterComponent[T](r)
		},
		id: func(r *models.Registry) (models.ComponentID, bool) {
			return models.ComponentIDOf[T](r)
		},
		newDefault: func() any {
			v := def()
			return &v
		},
		attach: func(r *models.Registry, e models.Entity, value any) (any, error) {
			ptr, ok := value.(*T)
			if !ok || ptr == nil {
				return nil, ErrTypeMismatch
			}
			return models.AddComponent(r, e, *ptr)
		},
		properties: func(comp any) []Property {
			defaults := def()
			props := table(&defaults)
			for i := range props {
				props[i].Default = reflect.ValueOf(props[i].Ref).Elem().Interface()
				props[i].Ref = nil
			}
			if ptr, ok := comp.(*T); ok && ptr != nil {
				live := table(ptr)
				for i := range props {
					props[i].Ref = live[i].Ref
				}
			}
			return props
		},
	}
}
