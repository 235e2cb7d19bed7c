package models

import "errors"

var (
	ErrEntityNotFound      = errors.New("entity not found")
	ErrEntityExists        = errors.New("entity already exists")
	ErrInvalidEntity       = errors.New("invalid entity")
	ErrTooManyComponents   = errors.New("component id space exhausted")
	ErrComponentTypeExists = errors.New("component type already registered")
)
