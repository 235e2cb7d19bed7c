package sharedgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
)

func TestOverrideBitmask(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	g := f.m.Group(lampPath)
	e := a[1]

	for bit := catalog.ComponentType(0); bit < 64; bit++ {
		require.True(t, g.SetComponentOverride(1, e, bit))
		for other := catalog.ComponentType(0); other < 64; other++ {
			assert.Equal(t, other == bit, g.HasComponentOverride(1, e, other), "set %d, probe %d", bit, other)
		}
		require.True(t, g.ClearComponentOverride(1, e, bit))
		assert.Zero(t, g.EntityOverrides(1, e))
		assert.NotContains(t, g.Instance(1, e).Overrides, e)
	}
	assert.False(t, g.SetComponentOverride(1, e, 64))
	assert.False(t, g.HasComponentOverride(1, e, 64))
}

func TestOverrideQueries(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	g := f.m.Group(lampPath)

	g.SetComponentOverride(1, a[0], catalog.ScriptComponent)
	g.SetComponentOverride(1, a[0], catalog.MeshComponent)
	assert.Equal(t, []catalog.ComponentType{catalog.MeshComponent, catalog.ScriptComponent}, g.OverriddenComponents(1, a[0]))
	assert.Equal(t, catalog.MeshComponent.Bit()|catalog.ScriptComponent.Bit(), g.EntityOverrides(1, a[0]))
	assert.True(t, g.HasAnyOverrides(1, a[0]))

	assert.False(t, g.ClearComponentOverride(1, a[0], catalog.CameraComponent))
	assert.True(t, g.ClearAllOverrides(1, a[0]))
	assert.False(t, g.ClearAllOverrides(1, a[0]))
	assert.False(t, g.HasAnyOverrides(1, a[0]))
}

func TestClearInstanceAndSceneOverrides(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	b := f.importLamp(t, f.s1)
	c := f.importLamp(t, f.s2)
	g := f.m.Group(lampPath)

	g.SetComponentOverride(1, a[0], catalog.MeshComponent)
	g.SetComponentOverride(1, b[0], catalog.MeshComponent)
	g.SetComponentOverride(2, c[0], catalog.MeshComponent)

	assert.True(t, g.ClearAllInstanceOverrides(1, g.Instance(1, a[0]).ID))
	assert.False(t, g.HasAnyOverrides(1, a[0]))
	assert.True(t, g.HasAnyOverrides(1, b[0]))

	assert.True(t, g.ClearAllSceneOverrides(1))
	assert.False(t, g.HasAnyOverrides(1, b[0]))
	assert.False(t, g.ClearAllSceneOverrides(1))
	assert.True(t, g.HasAnyOverrides(2, c[0]))
}

func TestQueriesDegradeOnAbsence(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	g := f.m.Group(lampPath)

	assert.Nil(t, g.Instance(9, a[0]))
	assert.Nil(t, g.InstanceByID(1, 42))
	assert.Equal(t, models.NullEntity, g.RegistryEntity(2, a[0]))
	assert.Equal(t, models.NullEntity, g.LocalEntity(1, 42, g.Root()))
	assert.Nil(t, g.AllEntities(2, 1))
	assert.Zero(t, g.EntityOverrides(2, a[0]))
	assert.Empty(t, g.OverriddenComponents(2, a[0]))
	assert.False(t, g.SetComponentOverride(2, a[0], catalog.MeshComponent))
	assert.False(t, g.ClearComponentOverride(2, a[0], catalog.MeshComponent))
	assert.False(t, g.ClearAllInstanceOverrides(1, 42))
	assert.False(t, g.ClearAllSceneOverrides(2))
}

func TestLastInstanceOfScenePrunesEntry(t *testing.T) {
	f := newFixture(t)
	f.importLamp(t, f.s1)
	b := f.importLamp(t, f.s2)
	g := f.m.Group(lampPath)

	_, ok := f.m.RemoveEntityFromSharedGroup(2, b[0], false)
	require.True(t, ok)
	assert.Nil(t, g.Instances(2))
	assert.Equal(t, []models.SceneID{1}, g.Scenes())
	assert.Equal(t, 1, g.InstanceCount())
	assert.False(t, f.m.IsEntityShared(2, b[1]))
}
