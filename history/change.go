// Package history tracks edits to a profile document as reversible
// change groups on linear undo/redo stacks.
package history

import (
	"time"

	"github.com/gofhir/profiler/ir"
)

// ChangeKind classifies a field-level delta.
type ChangeKind string

// Change kinds.
const (
	ChangeSet    ChangeKind = "set"
	ChangeClear  ChangeKind = "clear"
	ChangeAdd    ChangeKind = "add"
	ChangeRemove ChangeKind = "remove"
	ChangeMove   ChangeKind = "move"
	ChangeBatch  ChangeKind = "batch"
)

// Change is a single field-level delta against the tree.
type Change struct {
	// Kind classifies the delta.
	Kind ChangeKind `json:"kind"`

	// TargetID is the node the change applies to.
	TargetID ir.NodeID `json:"target_id"`

	// FieldPath names the changed field (e.g., "constraints.cardinality").
	FieldPath string `json:"field_path"`

	// OldValue is the value before the change.
	OldValue any `json:"old_value,omitempty"`

	// NewValue is the value after the change.
	NewValue any `json:"new_value,omitempty"`

	// Timestamp records when the change was made.
	Timestamp time.Time `json:"timestamp"`
}

// Inverse returns the change that undoes this one: old and new values
// swap, Add maps to Remove and vice versa, Clear maps to Set. Set, Move
// and Batch keep their kind.
func (c Change) Inverse() Change {
	inv := Change{
		Kind:      c.Kind,
		TargetID:  c.TargetID,
		FieldPath: c.FieldPath,
		OldValue:  c.NewValue,
		NewValue:  c.OldValue,
		Timestamp: c.Timestamp,
	}
	switch c.Kind {
	case ChangeAdd:
		inv.Kind = ChangeRemove
	case ChangeRemove:
		inv.Kind = ChangeAdd
	case ChangeClear:
		inv.Kind = ChangeSet
	}
	return inv
}

// Operation is a named, timestamped group of one or more changes,
// recorded as one undoable unit.
type Operation struct {
	// Name is the human-readable description shown in history UIs.
	Name string `json:"name"`

	// Timestamp records when the operation was applied.
	Timestamp time.Time `json:"timestamp"`

	// Changes are the field-level deltas, in application order.
	Changes []Change `json:"changes"`
}

// NewOperation creates an operation from one or more changes.
func NewOperation(name string, changes ...Change) Operation {
	return Operation{
		Name:      name,
		Timestamp: time.Now().UTC(),
		Changes:   changes,
	}
}

// Inverse returns the operation that undoes this one: changes are
// reversed in order and each is inverted.
func (o Operation) Inverse() Operation {
	inv := Operation{
		Name:      o.Name,
		Timestamp: o.Timestamp,
		Changes:   make([]Change, 0, len(o.Changes)),
	}
	for i := len(o.Changes) - 1; i >= 0; i-- {
		inv.Changes = append(inv.Changes, o.Changes[i].Inverse())
	}
	return inv
}
