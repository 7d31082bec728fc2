package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// ExpressionChecker reports whether a FHIRPath expression is
// syntactically valid. The service package provides the adapter over
// the real parser.
type ExpressionChecker interface {
	ValidateExpression(expression string) error
}

// AddInvariant attaches a FHIRPath invariant to an element.
type AddInvariant struct {
	Path      string
	Invariant ir.Invariant

	// Checker optionally parses the expression during Validate.
	// When nil, only local checks run.
	Checker ExpressionChecker

	targetID   ir.NodeID
	prevSource ir.Source
	hadMap     bool
}

// NewAddInvariant creates an invariant-addition edit.
func NewAddInvariant(path string, inv ir.Invariant) *AddInvariant {
	return &AddInvariant{Path: path, Invariant: inv}
}

// WithChecker wires a FHIRPath syntax checker into validation.
func (o *AddInvariant) WithChecker(c ExpressionChecker) *AddInvariant {
	o.Checker = c
	return o
}

// Validate checks the target exists, the key and expression are
// non-empty, the key is unique across the whole tree, and the
// expression parses.
func (o *AddInvariant) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(o.Invariant.Key) == "" {
		return Errorf(ErrInvalidFHIRPath, o.Path, "invariant key is empty")
	}
	if strings.TrimSpace(o.Invariant.Expression) == "" {
		return Errorf(ErrInvalidFHIRPath, o.Path, "invariant expression is empty")
	}
	if _, ok := node.Constraints.Invariants[o.Invariant.Key]; ok {
		return Errorf(ErrDuplicateInvariantKey, o.Path,
			"invariant key %q already exists on this element", o.Invariant.Key)
	}
	// Keys must be unique across the whole tree, not just locally.
	duplicate := false
	t.Resource().Root.Walk(func(n *ir.ElementNode) bool {
		if _, ok := n.Constraints.Invariants[o.Invariant.Key]; ok {
			duplicate = true
			return false
		}
		return true
	})
	if duplicate {
		return Errorf(ErrDuplicateInvariantKey, o.Path,
			"invariant key %q already exists elsewhere in the profile", o.Invariant.Key)
	}
	if o.Checker != nil {
		if parseErr := o.Checker.ValidateExpression(o.Invariant.Expression); parseErr != nil {
			return Errorf(ErrInvalidFHIRPath, o.Path,
				"invariant expression does not parse: %v", parseErr)
		}
	}
	return nil
}

// Apply adds the invariant.
func (o *AddInvariant) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prevSource = node.Source
	o.hadMap = node.Constraints.Invariants != nil

	if node.Constraints.Invariants == nil {
		node.Constraints.Invariants = make(map[string]ir.Invariant)
	}
	node.Constraints.Invariants[o.Invariant.Key] = o.Invariant
	node.MarkModified()
	return nil
}

// Undo removes the invariant and restores the source tag.
func (o *AddInvariant) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	delete(node.Constraints.Invariants, o.Invariant.Key)
	if !o.hadMap && len(node.Constraints.Invariants) == 0 {
		node.Constraints.Invariants = nil
	}
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *AddInvariant) Description() string {
	return fmt.Sprintf("Add invariant %q to %s", o.Invariant.Key, o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *AddInvariant) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeAdd,
		TargetID:  o.targetID,
		FieldPath: "constraints.invariants." + o.Invariant.Key,
		OldValue:  nil,
		NewValue:  o.Invariant,
		Timestamp: time.Now().UTC(),
	}
}

// RemoveInvariant removes a FHIRPath invariant from an element.
type RemoveInvariant struct {
	Path string
	Key  string

	targetID   ir.NodeID
	prev       ir.Invariant
	prevSource ir.Source
}

// NewRemoveInvariant creates an invariant-removal edit.
func NewRemoveInvariant(path, key string) *RemoveInvariant {
	return &RemoveInvariant{Path: path, Key: key}
}

// Validate checks the target exists and carries the invariant.
func (o *RemoveInvariant) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if _, ok := node.Constraints.Invariants[o.Key]; !ok {
		return Errorf(ErrInvariantNotFound, o.Path, "invariant %q not found", o.Key)
	}
	return nil
}

// Apply removes the invariant.
func (o *RemoveInvariant) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prevSource = node.Source

	inv, ok := node.Constraints.Invariants[o.Key]
	if !ok {
		return Errorf(ErrInvariantNotFound, o.Path, "invariant %q not found", o.Key)
	}
	o.prev = inv
	delete(node.Constraints.Invariants, o.Key)
	node.MarkModified()
	return nil
}

// Undo restores the invariant and the source tag.
func (o *RemoveInvariant) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	if node.Constraints.Invariants == nil {
		node.Constraints.Invariants = make(map[string]ir.Invariant)
	}
	node.Constraints.Invariants[o.Key] = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *RemoveInvariant) Description() string {
	return fmt.Sprintf("Remove invariant %q from %s", o.Key, o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *RemoveInvariant) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeRemove,
		TargetID:  o.targetID,
		FieldPath: "constraints.invariants." + o.Key,
		OldValue:  o.prev,
		NewValue:  nil,
		Timestamp: time.Now().UTC(),
	}
}
