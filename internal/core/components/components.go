// Package components holds the concrete component records an entity can carry.
package components

import "github.com/zeusync/sharedgroups/internal/core/models"

type Vector3 [3]float32

type Quaternion [4]float32

// Color is linear RGBA.
type Color [4]float32

var (
	IdentityRotation = Quaternion{0, 0, 0, 1}
	UnitScale        = Vector3{1, 1, 1}
	White            = Color{1, 1, 1, 1}
)

// Transform places an entity in the hierarchy. Parent and Children are registry-scoped
// handles maintained by the world package and are never copied between registries.
type Transform struct {
	Position Vector3
	Rotation Quaternion
	Scale    Vector3
	Visible  bool

	Parent   models.Entity
	Children []models.Entity

	NeedUpdate bool
}

func DefaultTransform() Transform {
	return Transform{
		Rotation:   IdentityRotation,
		Scale:      UnitScale,
		Visible:    true,
		NeedUpdate: true,
	}
}

type Mesh struct {
	Color       Color
	Texture     string
	CastShadows bool
	Receive     bool
	Submeshes   int32

	NeedReload bool
}

func DefaultMesh() Mesh {
	return Mesh{Color: White, CastShadows: true, Receive: true, Submeshes: 1}
}

type LightType int32

const (
	DirectionalLight LightType = iota
	PointLight
	SpotLight
)

type Light struct {
	Type       LightType
	Color      Vector3
	Intensity  float32
	Range      float32
	InnerCone  float32
	OuterCone  float32
	Shadows    bool
	ShadowBias float32

	NeedUpdateShadow bool
}

func DefaultLight() Light {
	return Light{
		Type:       PointLight,
		Color:      Vector3{1, 1, 1},
		Intensity:  1,
		InnerCone:  0.5235988,
		OuterCone:  0.7853982,
		ShadowBias: 0.001,
	}
}

type Camera struct {
	Perspective bool
	FieldOfView float32
	Near        float32
	Far         float32

	NeedUpdate bool
}

func DefaultCamera() Camera {
	return Camera{Perspective: true, FieldOfView: 0.7853982, Near: 0.1, Far: 1000}
}

// Script references a behavior file. Execution lives outside this module.
type Script struct {
	Path    string
	Class   string
	Enabled bool
}

func DefaultScript() Script {
	return Script{Enabled: true}
}
