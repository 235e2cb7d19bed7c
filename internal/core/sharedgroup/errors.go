package sharedgroup

import "errors"

var (
	ErrSceneNotFound     = errors.New("scene not registered")
	ErrSceneExists       = errors.New("scene already registered")
	ErrGroupNotFound     = errors.New("shared group not found")
	ErrEntityNotFound    = errors.New("entity not found")
	ErrAlreadyShared     = errors.New("entity is already shared")
	ErrNestedSharedGroup = errors.New("shared groups cannot be nested")
	ErrStructureMismatch = errors.New("entity hierarchy does not match the shared group")
	ErrInstanceNotFound  = errors.New("shared group instance not found")
	ErrInvalidPath       = errors.New("invalid shared group path")
)
