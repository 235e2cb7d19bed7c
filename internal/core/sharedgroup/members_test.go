package sharedgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/components"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

func lightIntensity(t *testing.T, r *models.Registry, e models.Entity) float32 {
	t.Helper()
	light := models.FindComponent[components.Light](r, e)
	require.NotNil(t, light)
	return light.Intensity
}

func TestAddEntityToSharedGroup(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	b := f.importLamp(t, f.s2)
	g := f.m.Group(lampPath)

	sw := f.s1.CreateEntity("Switch")
	_, err := f.s1.AddChild(a[0], sw, 1)
	require.NoError(t, err)
	_, err = catalog.AddComponent(f.s1.Registry(), sw, catalog.ScriptComponent)
	require.NoError(t, err)
	knob := f.s1.CreateEntity("Knob")
	_, err = f.s1.AddChild(sw, knob, -1)
	require.NoError(t, err)

	ok, err := f.m.AddEntityToSharedGroup(1, sw, a[0])
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, g.IsModified())

	regs := g.RegistryEntities()
	require.Len(t, regs, 5)
	names := make([]string, len(regs))
	for i, reg := range regs {
		names[i] = g.Registry().EntityName(reg)
	}
	assert.Equal(t, []string{"Lamp", "Bulb", "Switch", "Knob", "Shade"}, names)
	assert.Equal(t, []models.Entity{a[0], a[1], sw, knob, a[2]}, g.AllEntities(1, 1))
	assert.Equal(t, regs[2], g.RegistryEntity(1, sw))

	children := f.s2.Children(b[0])
	require.Len(t, children, 3)
	copied := children[1]
	assert.Equal(t, "Switch", f.s2.EntityName(copied))
	assert.True(t, catalog.HasComponent(f.s2.Registry(), copied, catalog.ScriptComponent))
	require.Len(t, f.s2.Children(copied), 1)
	assert.Equal(t, "Knob", f.s2.EntityName(f.s2.Children(copied)[0]))
	assert.Equal(t, copied, g.LocalEntity(2, 2, regs[2]))
	assert.Len(t, g.AllEntities(2, 2), 5)
}

func TestAddEntityToSharedGroupRejects(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)

	loose := f.s1.CreateEntity("Loose")
	ok, err := f.m.AddEntityToSharedGroup(1, loose, a[0])
	require.NoError(t, err)
	assert.False(t, ok)

	holder := f.s1.CreateEntity("Holder")
	_, err = catalog.AddComponent(f.s1.Registry(), holder, catalog.TransformComponent)
	require.NoError(t, err)
	_, err = f.s1.AddChild(holder, loose, -1)
	require.NoError(t, err)
	ok, err = f.m.AddEntityToSharedGroup(1, loose, holder)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, f.m.Group(lampPath).RegistryEntities(), 3)
}

func TestRemoveMemberAndRestore(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	b := f.importLamp(t, f.s2)
	g := f.m.Group(lampPath)
	regBulb := g.RegistryEntities()[1]

	require.NoError(t, catalog.SetPropertyValue(f.s1.Registry(), a[1], catalog.LightComponent, "intensity", float32(3.3)))
	require.True(t, f.m.ComponentToLocal(1, a[1], catalog.LightComponent))
	require.NoError(t, catalog.SetPropertyValue(f.s2.Registry(), b[1], catalog.LightComponent, "intensity", float32(0.7)))
	require.True(t, f.m.ComponentToLocal(2, b[1], catalog.LightComponent))

	rec, ok := f.m.RemoveEntityFromSharedGroup(1, a[1], false)
	require.True(t, ok)
	assert.False(t, rec.Root)
	require.Len(t, rec.Others, 1)

	assert.True(t, f.s1.Exists(a[1]))
	assert.False(t, f.m.IsEntityShared(1, a[1]))
	assert.False(t, f.s2.Exists(b[1]))
	assert.Len(t, g.RegistryEntities(), 2)
	assert.Equal(t, []models.Entity{b[0], b[2]}, g.AllEntities(2, 2))
	assert.False(t, g.HasAnyOverrides(1, a[1]))

	require.NoError(t, f.m.RestoreEntityToSharedGroup(rec))

	assert.Equal(t, regBulb, g.RegistryEntities()[1])
	assert.Equal(t, a, g.AllEntities(1, 1))
	assert.Equal(t, b, g.AllEntities(2, 2))
	assert.Equal(t, 0, f.s2.IndexOf(b[1]))
	assert.Equal(t, "Bulb", f.s2.EntityName(b[1]))
	assert.True(t, g.HasComponentOverride(1, a[1], catalog.LightComponent))
	assert.True(t, g.HasComponentOverride(2, b[1], catalog.LightComponent))
	assert.Equal(t, float32(3.3), lightIntensity(t, f.s1.Registry(), a[1]))
	assert.Equal(t, float32(0.7), lightIntensity(t, f.s2.Registry(), b[1]))
	assert.Equal(t, float32(0.1), lightIntensity(t, g.Registry().Registry(), regBulb))

	err := f.m.RestoreEntityToSharedGroup(rec)
	assert.ErrorIs(t, err, ErrAlreadyShared)
}

func TestRemoveMemberDestroyingItself(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	g := f.m.Group(lampPath)

	rec, ok := f.m.RemoveEntityFromSharedGroup(1, a[2], true)
	require.True(t, ok)
	assert.False(t, f.s1.Exists(a[2]))
	assert.Equal(t, []models.Entity{a[1]}, f.s1.Children(a[0]))

	require.NoError(t, f.m.RestoreEntityToSharedGroup(rec))
	assert.Equal(t, []models.Entity{a[1], a[2]}, f.s1.Children(a[0]))
	assert.Equal(t, components.Color{0.2, 0.3, 0.4, 1}, meshColor(f.s1, a[2]))
	assert.Equal(t, a, g.AllEntities(1, 1))
}

func TestRemoveLastRootDestroysGroup(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	g := f.m.Group(lampPath)
	regs := g.RegistryEntities()

	editColor(t, f.s1, a[2], red)
	require.True(t, f.m.ComponentToLocal(1, a[2], catalog.MeshComponent))

	rec, ok := f.m.RemoveEntityFromSharedGroup(1, a[0], true)
	require.True(t, ok)
	assert.True(t, rec.Root)
	assert.True(t, rec.GroupDestroyed())
	assert.Nil(t, f.m.Group(lampPath))
	assert.Empty(t, f.s1.Entities())

	require.NoError(t, f.m.RestoreEntityToSharedGroup(rec))
	g = f.m.Group(lampPath)
	require.NotNil(t, g)
	assert.Equal(t, regs, g.RegistryEntities())
	assert.Equal(t, []models.Entity{a[0]}, f.s1.Roots())
	assert.Equal(t, a, g.AllEntities(1, 1))
	assert.Equal(t, red, meshColor(f.s1, a[2]))
	assert.Equal(t, catalog.MeshComponent.Bit(), g.EntityOverrides(1, a[2]))

	next := f.importLamp(t, f.s2)
	assert.Equal(t, InstanceID(2), g.Instance(2, next[0]).ID)
}

func TestRemoveRootKeepsInstanceOrderOnRestore(t *testing.T) {
	f := newFixture(t)
	x := f.importLamp(t, f.s1)
	y := f.importLamp(t, f.s1)
	g := f.m.Group(lampPath)

	rec, ok := f.m.RemoveEntityFromSharedGroup(1, x[0], false)
	require.True(t, ok)
	assert.False(t, rec.GroupDestroyed())
	assert.True(t, f.s1.Exists(x[0]))
	require.Len(t, g.Instances(1), 1)

	require.NoError(t, f.m.RestoreEntityToSharedGroup(rec))
	require.Len(t, g.Instances(1), 2)
	assert.Equal(t, x[0], g.Instances(1)[0].Root())
	assert.Equal(t, InstanceID(1), g.Instances(1)[0].ID)
	assert.Equal(t, y[0], g.Instances(1)[1].Root())
}
