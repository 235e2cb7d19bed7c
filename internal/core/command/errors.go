package command

import "errors"

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	ErrNotExecuted   = errors.New("command was not executed")
	ErrUndoFailed    = errors.New("command could not be undone")
)
