package sharedgroup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/sharedgroups/internal/core/catalog"
	"github.com/zeusync/sharedgroups/internal/core/models"
	"github.com/zeusync/sharedgroups/internal/core/world"
)

func TestMoveMemberAndUndo(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	b := f.importLamp(t, f.s2)
	g := f.m.Group(lampPath)
	regs := g.RegistryEntities()

	rec, ok := f.m.MoveEntityFromSharedGroup(1, a[2], a[1], world.Into)
	require.True(t, ok)
	assert.Equal(t, a[0], rec.OldParent)
	assert.Equal(t, 1, rec.OldIndex)
	assert.True(t, rec.HadTransform)

	assert.Equal(t, a[1], f.s1.Parent(a[2]))
	assert.Equal(t, regs[1], g.Registry().Parent(regs[2]))
	assert.Equal(t, b[1], f.s2.Parent(b[2]))
	assert.True(t, g.IsModified())

	require.True(t, f.m.UndoMoveEntityInSharedGroup(rec))
	assert.Equal(t, a[0], f.s1.Parent(a[2]))
	assert.Equal(t, 1, f.s1.IndexOf(a[2]))
	assert.NotNil(t, f.s1.Transform(a[2]))
	assert.Equal(t, []models.Entity{regs[1], regs[2]}, g.Registry().Children(regs[0]))
	assert.Equal(t, []models.Entity{b[1], b[2]}, f.s2.Children(b[0]))
}

func TestReorderMemberIsMirrored(t *testing.T) {
	f := newFixture(t)
	a := f.importLamp(t, f.s1)
	b := f.importLamp(t, f.s2)
	g := f.m.Group(lampPath)

	rec, ok := f.m.MoveEntityFromSharedGroup(1, a[2], a[1], world.Before)
	require.True(t, ok)
	assert.Equal(t, []models.Entity{a[2], a[1]}, f.s1.Children(a[0]))
	assert.Equal(t, []models.Entity{b[2], b[1]}, f.s2.Children(b[0]))
	assert.Equal(t, []models.Entity{a[0], a[2], a[1]}, g.AllEntities(1, 1))
	assert.Equal(t, g.RegistryEntity(2, b[2]), g.RegistryEntities()[1])

	require.True(t, f.m.UndoMoveEntityInSharedGroup(rec))
	assert.Equal(t, []models.Entity{a[1], a[2]}, f.s1.Children(a[0]))
	assert.Equal(t, []models.Entity{b[1], b[2]}, f.s2.Children(b[0]))
	assert.Equal(t, a, g.AllEntities(1, 1))
}

func TestMoveRejectsLeavingInstance(t *testing.T) {
	f := newFixture(t)
	x := f.importLamp(t, f.s1)
	y := f.importLamp(t, f.s1)

	_, ok := f.m.MoveEntityFromSharedGroup(1, x[2], y[1], world.Into)
	assert.False(t, ok)
	_, ok = f.m.MoveEntityFromSharedGroup(1, x[2], x[0], world.Before)
	assert.False(t, ok)
	_, ok = f.m.MoveEntityFromSharedGroup(1, x[0], y[1], world.Into)
	assert.False(t, ok)
	_, ok = f.m.MoveEntityFromSharedGroup(1, x[1], x[1], world.Into)
	assert.False(t, ok)

	assert.Equal(t, x[0], f.s1.Parent(x[2]))
	assert.Equal(t, models.NullEntity, f.s1.Parent(x[0]))
}

func TestMoveRootIsSceneLocal(t *testing.T) {
	f := newFixture(t)
	r := f.s1.Registry()
	first := f.s1.CreateEntity("First")
	marker := f.s1.CreateEntity("Marker")
	_, err := catalog.AddComponent(r, marker, catalog.ScriptComponent)
	require.NoError(t, err)
	_, err = f.m.MarkEntityShared(1, marker, "prefabs/marker.yaml")
	require.NoError(t, err)
	g := f.m.Group("prefabs/marker.yaml")

	holder := f.s1.CreateEntity("Holder")
	_, err = catalog.AddComponent(r, holder, catalog.TransformComponent)
	require.NoError(t, err)

	rec, ok := f.m.MoveEntityFromSharedGroup(1, marker, holder, world.Into)
	require.True(t, ok)
	assert.False(t, rec.HadTransform)
	assert.Equal(t, holder, f.s1.Parent(marker))
	assert.NotNil(t, f.s1.Transform(marker))
	assert.Nil(t, g.Registry().Transform(g.Root()))

	require.True(t, f.m.UndoMoveEntityInSharedGroup(rec))
	assert.Equal(t, []models.Entity{first, marker, holder}, f.s1.Roots())
	assert.Nil(t, f.s1.Transform(marker))
	assert.True(t, f.m.IsEntityShared(1, marker))
}
