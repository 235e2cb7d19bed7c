package world

import "errors"

var (
	ErrEntityNotFound    = errors.New("entity not found in world")
	ErrInvalidTarget     = errors.New("invalid hierarchy target")
	ErrCyclicHierarchy   = errors.New("entity cannot be moved into its own subtree")
	ErrParentNoTransform = errors.New("parent entity has no transform")
)
