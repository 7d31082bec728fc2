package history

import "errors"

// Navigation errors.
var (
	// ErrNothingToUndo is returned by Undo on an empty undo stack.
	ErrNothingToUndo = errors.New("history: nothing to undo")
	// ErrNothingToRedo is returned by Redo on an empty redo stack.
	ErrNothingToRedo = errors.New("history: nothing to redo")
	// ErrIndexOutOfRange is returned by Goto for an unreachable index.
	ErrIndexOutOfRange = errors.New("history: target index out of range")
)

// DefaultMaxHistory bounds the undo stack when no limit is configured.
const DefaultMaxHistory = 100

// History holds linear undo/redo stacks of operations plus saved-state
// tracking. It is purely in-memory: navigation is O(distance) and never
// performs I/O.
//
// History is not safe for concurrent use; the owning document
// serializes access.
type History struct {
	undoStack []Operation
	redoStack []Operation

	maxHistory int

	// savedIndex is the undo-stack length at the last save,
	// or nil if never saved.
	savedIndex *int
}

// New creates a history bounded to maxHistory entries. Non-positive
// values fall back to DefaultMaxHistory.
func New(maxHistory int) *History {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &History{maxHistory: maxHistory}
}

// Push records a newly applied operation. The redo stack is cleared:
// a new edit discards the abandoned future. If the undo stack is full,
// the oldest entry is evicted and the saved index shifts with it
// (or becomes "never saved" if it pointed at the evicted entry).
func (h *History) Push(op Operation) {
	h.redoStack = h.redoStack[:0]

	if len(h.undoStack) >= h.maxHistory {
		h.undoStack = h.undoStack[1:]
		if h.savedIndex != nil {
			if *h.savedIndex == 0 {
				h.savedIndex = nil
			} else {
				idx := *h.savedIndex - 1
				h.savedIndex = &idx
			}
		}
	}

	h.undoStack = append(h.undoStack, op)
}

// Undo pops the most recent operation, pushes the original onto the
// redo stack, and returns its inverse for the caller to apply.
func (h *History) Undo() (Operation, error) {
	if len(h.undoStack) == 0 {
		return Operation{}, ErrNothingToUndo
	}
	op := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, op)
	return op.Inverse(), nil
}

// Redo pops the most recently undone operation, re-pushes it onto the
// undo stack, and returns it unmodified for the caller to re-apply.
func (h *History) Redo() (Operation, error) {
	if len(h.redoStack) == 0 {
		return Operation{}, ErrNothingToRedo
	}
	op := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, op)
	return op, nil
}

// Goto navigates to the given undo-stack length by undoing or redoing
// repeatedly. It returns the operations the caller must apply, in order.
func (h *History) Goto(target int) ([]Operation, error) {
	if target < 0 || target > len(h.undoStack)+len(h.redoStack) {
		return nil, ErrIndexOutOfRange
	}

	var toApply []Operation
	for len(h.undoStack) > target {
		op, err := h.Undo()
		if err != nil {
			return toApply, err
		}
		toApply = append(toApply, op)
	}
	for len(h.undoStack) < target {
		op, err := h.Redo()
		if err != nil {
			return toApply, err
		}
		toApply = append(toApply, op)
	}
	return toApply, nil
}

// CanUndo reports whether an operation can be undone.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo reports whether an operation can be redone.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// CurrentIndex is the number of operations currently applied,
// always equal to the undo-stack length.
func (h *History) CurrentIndex() int {
	return len(h.undoStack)
}

// TotalOperations is the combined size of both stacks.
func (h *History) TotalOperations() int {
	return len(h.undoStack) + len(h.redoStack)
}

// MarkSaved records the current position as the saved state.
func (h *History) MarkSaved() {
	idx := len(h.undoStack)
	h.savedIndex = &idx
}

// HasUnsavedChanges reports whether the current position differs from
// the last saved one. A never-saved history is dirty as soon as either
// stack is non-empty.
func (h *History) HasUnsavedChanges() bool {
	if h.savedIndex == nil {
		return len(h.undoStack) > 0 || len(h.redoStack) > 0
	}
	return *h.savedIndex != len(h.undoStack)
}

// IsAtSavedState reports whether the current position is the saved one.
func (h *History) IsAtSavedState() bool {
	return h.savedIndex != nil && *h.savedIndex == len(h.undoStack)
}

// UndoDescription returns the name of the operation Undo would revert.
func (h *History) UndoDescription() string {
	if len(h.undoStack) == 0 {
		return ""
	}
	return h.undoStack[len(h.undoStack)-1].Name
}

// RedoDescription returns the name of the operation Redo would re-apply.
func (h *History) RedoDescription() string {
	if len(h.redoStack) == 0 {
		return ""
	}
	return h.redoStack[len(h.redoStack)-1].Name
}

// Operations returns a copy of the undo stack, oldest first.
func (h *History) Operations() []Operation {
	out := make([]Operation, len(h.undoStack))
	copy(out, h.undoStack)
	return out
}

// State is the wire shape describing history for UIs.
type State struct {
	CurrentIndex     int    `json:"current_index"`
	TotalOperations  int    `json:"total_operations"`
	CanUndo          bool   `json:"can_undo"`
	CanRedo          bool   `json:"can_redo"`
	UndoDescription  string `json:"undo_description,omitempty"`
	RedoDescription  string `json:"redo_description,omitempty"`
	IsAtSavedState   bool   `json:"is_at_saved_state"`
	HasUnsavedChange bool   `json:"has_unsaved_changes"`
}

// State returns the current history state snapshot.
func (h *History) State() State {
	return State{
		CurrentIndex:     h.CurrentIndex(),
		TotalOperations:  h.TotalOperations(),
		CanUndo:          h.CanUndo(),
		CanRedo:          h.CanRedo(),
		UndoDescription:  h.UndoDescription(),
		RedoDescription:  h.RedoDescription(),
		IsAtSavedState:   h.IsAtSavedState(),
		HasUnsavedChange: h.HasUnsavedChanges(),
	}
}
