package document

import "errors"

var (
	ErrEmptyDocument         = errors.New("document has no root entity")
	ErrUnknownComponent      = errors.New("document references unknown component")
	ErrDecodeFailed          = errors.New("document decode failed")
	ErrChildrenNeedTransform = errors.New("entity with children has no transform")
)
