package models

import "math/bits"

// Entity is an opaque handle scoped to the Registry that created it.
type Entity uint32

// NullEntity means "no entity".
const NullEntity Entity = 0

// ComponentID is the per-registry numeric id of a component type.
type ComponentID uint8

// MaxComponents is the width of a Signature.
const MaxComponents = 64

// Signature records which component ids an entity carries.
type Signature uint64

func (s Signature) Has(id ComponentID) bool {
	return s&(1<<id) != 0
}

func (s Signature) With(id ComponentID) Signature {
	return s | 1<<id
}

func (s Signature) Without(id ComponentID) Signature {
	return s &^ (1 << id)
}

// Contains reports whether every bit of sub is set in s.
func (s Signature) Contains(sub Signature) bool {
	return s&sub == sub
}

func (s Signature) Count() int {
	return bits.OnesCount64(uint64(s))
}

// SceneID identifies a consuming scene.
type SceneID uint32
