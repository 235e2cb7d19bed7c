package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float32 }
type label struct{ Text string }

func TestRegistryEntityLifecycle(t *testing.T) {
	r := NewRegistry()
	a := r.CreateEntity()
	b := r.CreateEntity()
	assert.NotEqual(t, NullEntity, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, r.EntityCount())

	require.NoError(t, r.DestroyEntity(a))
	assert.False(t, r.Exists(a))
	assert.ErrorIs(t, r.DestroyEntity(a), ErrEntityNotFound)
}

func TestCreateEntityWithID(t *testing.T) {
	r := NewRegistry()
	e, err := r.CreateEntityWithID(5)
	require.NoError(t, err)
	assert.Equal(t, Entity(5), e)

	_, err = r.CreateEntityWithID(5)
	assert.ErrorIs(t, err, ErrEntityExists)
	_, err = r.CreateEntityWithID(NullEntity)
	assert.ErrorIs(t, err, ErrInvalidEntity)

	for i := 0; i < 6; i++ {
		assert.NotEqual(t, Entity(5), r.CreateEntity())
	}
}

func TestComponentsAndSignature(t *testing.T) {
	r := NewRegistry()
	e := r.CreateEntity()

	_, err := AddComponent(r, e, position{X: 1, Y: 2})
	require.NoError(t, err)
	_, err = AddComponent(r, e, label{Text: "hi"})
	require.NoError(t, err)

	posID, ok := ComponentIDOf[position](r)
	require.True(t, ok)
	labelID, _ := ComponentIDOf[label](r)
	assert.NotEqual(t, posID, labelID)

	sig := r.Signature(e)
	assert.True(t, sig.Has(posID))
	assert.True(t, sig.Has(labelID))
	assert.Equal(t, 2, sig.Count())

	FindComponent[position](r, e).X = 10
	assert.Equal(t, float32(10), GetComponent[position](r, e).X)

	assert.True(t, RemoveComponent[position](r, e))
	assert.False(t, RemoveComponent[position](r, e))
	assert.Nil(t, FindComponent[position](r, e))
	assert.False(t, r.Signature(e).Has(posID))
	assert.Equal(t, position{}, GetComponent[position](r, e))
}

func TestComponentIDsArePerRegistry(t *testing.T) {
	r1, r2 := NewRegistry(), NewRegistry()
	_, _ = RegisterComponent[label](r1)
	_, _ = RegisterComponent[position](r1)
	_, _ = RegisterComponent[position](r2)

	id1, _ := ComponentIDOf[position](r1)
	id2, _ := ComponentIDOf[position](r2)
	assert.Equal(t, ComponentID(1), id1)
	assert.Equal(t, ComponentID(0), id2)
}

func TestDestroyRemovesComponents(t *testing.T) {
	r := NewRegistry()
	e := r.CreateEntity()
	_, _ = AddComponent(r, e, label{Text: "x"})
	r.SetName(e, "node")
	require.NoError(t, r.DestroyEntity(e))

	id, _ := ComponentIDOf[label](r)
	assert.Empty(t, r.EntitiesWith(id))
	assert.Empty(t, r.Name(e))
}

func TestSignatureContains(t *testing.T) {
	s := Signature(0).With(1).With(3)
	assert.True(t, s.Contains(Signature(0).With(3)))
	assert.False(t, s.Contains(Signature(0).With(2)))
	assert.Equal(t, Signature(0).With(1), s.Without(3))
}
