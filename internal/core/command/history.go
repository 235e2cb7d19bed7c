// Package command wraps every shared group mutation into a reversible command
// and keeps them on an explicit undo history.
package command

import (
	"fmt"

	"github.com/zeusync/sharedgroups/internal/core/observability/log"
)

// Command is one reversible editor action.
type Command interface {
	// Execute applies the action and reports whether it changed anything. It is
	// called again on redo.
	Execute() (bool, error)
	// Undo reverts the last Execute.
	Undo() error
	// MergeWith folds older, the previous command on the history, into the
	// receiver. It reports false when the two cannot be merged.
	MergeWith(older Command) bool
}

const DefaultHistoryLimit = 100

// History is the undo/redo stack of one scene. It is not safe for concurrent use.
type History struct {
	undo  []Command
	redo  []Command
	limit int
	open  bool
	log   log.Log
}

func NewHistory(limit int, logger log.Log) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &History{limit: limit, log: logger.With(log.String("component", "history"))}
}

// Add executes cmd and records it when it had an effect. While the history is
// open the command may absorb the previous one.
func (h *History) Add(cmd Command) (bool, error) {
	ok, err := cmd.Execute()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	h.redo = nil

	if h.open && len(h.undo) > 0 && cmd.MergeWith(h.undo[len(h.undo)-1]) {
		h.undo[len(h.undo)-1] = cmd
		h.log.Debug("Command merged", log.String("command", fmt.Sprintf("%T", cmd)))
		return true, nil
	}
	h.undo = append(h.undo, cmd)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = append(h.undo[:0:0], h.undo[over:]...)
	}
	h.open = true
	return true, nil
}

// Finish closes the current edit so the next command is never merged into it.
func (h *History) Finish() {
	h.open = false
}

func (h *History) Undo() error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}
	cmd := h.undo[len(h.undo)-1]
	if err := cmd.Undo(); err != nil {
		return fmt.Errorf("undo %T: %w", cmd, err)
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, cmd)
	h.open = false
	return nil
}

func (h *History) Redo() error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	cmd := h.redo[len(h.redo)-1]
	if _, err := cmd.Execute(); err != nil {
		return fmt.Errorf("redo %T: %w", cmd, err)
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, cmd)
	h.open = false
	return nil
}

func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// Len returns the number of undoable commands.
func (h *History) Len() int {
	return len(h.undo)
}

func (h *History) Clear() {
	h.undo, h.redo = nil, nil
	h.open = false
}
