package catalog

import "errors"

var (
	ErrUnknownComponent = errors.New("unknown component type")
	ErrUnknownProperty  = errors.New("unknown property")
	ErrTypeMismatch     = errors.New("property value type mismatch")
	ErrMissingComponent = errors.New("entity does not have component")
)
