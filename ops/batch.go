package ops

import (
	"time"

	"github.com/gofhir/profiler/history"
)

// Batch groups several operations into one atomic, undoable unit.
// Every member is validated before any is applied; on a mid-apply
// failure the already-applied prefix is rolled back, so either all
// members take effect or none do.
type Batch struct {
	Name       string
	Operations []Operation
}

// NewBatch creates a batch edit.
func NewBatch(name string, operations ...Operation) *Batch {
	return &Batch{Name: name, Operations: operations}
}

// Validate validates every member; the first failure rejects the batch.
func (o *Batch) Validate(t Target) error {
	if len(o.Operations) == 0 {
		return Errorf(ErrInternal, "", "batch contains no operations")
	}
	for _, op := range o.Operations {
		if err := op.Validate(t); err != nil {
			return err
		}
	}
	return nil
}

// Apply applies every member in order. If one fails, the applied
// prefix is undone in reverse order before the error is returned.
func (o *Batch) Apply(t Target) error {
	for i, op := range o.Operations {
		if err := op.Apply(t); err != nil {
			for j := i - 1; j >= 0; j-- {
				// Rollback failures leave the tree corrupt; there is
				// nothing better to do than continue unwinding.
				_ = o.Operations[j].Undo(t)
			}
			return err
		}
	}
	return nil
}

// Undo reverts every member in reverse order.
func (o *Batch) Undo(t Target) error {
	for i := len(o.Operations) - 1; i >= 0; i-- {
		if err := o.Operations[i].Undo(t); err != nil {
			return err
		}
	}
	return nil
}

// Description returns the history label.
func (o *Batch) Description() string {
	if o.Name != "" {
		return o.Name
	}
	return "Batch edit"
}

// AsChange converts the batch to a single batched change.
func (o *Batch) AsChange() history.Change {
	changes := make([]history.Change, len(o.Operations))
	for i, op := range o.Operations {
		changes[i] = op.AsChange()
	}
	return history.Change{
		Kind:      history.ChangeBatch,
		FieldPath: "batch",
		NewValue:  changes,
		Timestamp: time.Now().UTC(),
	}
}

// Changes returns the member changes individually, for callers that
// record batches as multi-change history operations.
func (o *Batch) Changes() []history.Change {
	changes := make([]history.Change, len(o.Operations))
	for i, op := range o.Operations {
		changes[i] = op.AsChange()
	}
	return changes
}
