package ops

import (
	"fmt"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// Max wraps a bounded max cardinality for operation constructors.
func Max(v uint32) *uint32 {
	return &v
}

// SetCardinality constrains an element's cardinality.
type SetCardinality struct {
	Path        string
	Cardinality ir.Cardinality

	// captured by Apply for Undo/AsChange
	targetID   ir.NodeID
	prev       *ir.Cardinality
	prevSource ir.Source
}

// NewSetCardinality creates a cardinality edit. Pass a nil max for
// unbounded.
func NewSetCardinality(path string, min uint32, max *uint32) *SetCardinality {
	return &SetCardinality{
		Path:        path,
		Cardinality: ir.Cardinality{Min: min, Max: max},
	}
}

// Validate checks the target exists, the cardinality is internally
// valid, and the refinement does not loosen the base.
func (o *SetCardinality) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if !o.Cardinality.IsValid() {
		return Errorf(ErrInvalidCardinality, o.Path,
			"min %d exceeds max %d", o.Cardinality.Min, *o.Cardinality.Max)
	}
	if node.Base != nil && !o.Cardinality.SatisfiesBase(node.Base.Cardinality) {
		return Errorf(ErrCardinalityExceedsBase, o.Path,
			"cardinality %s loosens base %s", o.Cardinality.String(), node.Base.Cardinality.String())
	}
	return nil
}

// Apply sets the new cardinality, flipping the node to modified.
func (o *SetCardinality) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.Cardinality
	o.prevSource = node.Source

	card := o.Cardinality
	node.Constraints.Cardinality = &card
	node.MarkModified()
	return nil
}

// Undo restores the previous cardinality and source tag.
func (o *SetCardinality) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.Cardinality = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetCardinality) Description() string {
	return fmt.Sprintf("Set cardinality of %s to %s", o.Path, o.Cardinality.String())
}

// AsChange converts the edit to a trackable change.
func (o *SetCardinality) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeSet,
		TargetID:  o.targetID,
		FieldPath: "constraints.cardinality",
		OldValue:  o.prev,
		NewValue:  o.Cardinality.Clone(),
		Timestamp: time.Now().UTC(),
	}
}
