package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// SetTypes replaces an element's type-constraint list.
type SetTypes struct {
	Path  string
	Types []ir.TypeConstraint

	targetID   ir.NodeID
	prev       []ir.TypeConstraint
	prevSource ir.Source
}

// NewSetTypes creates a type-constraint edit.
func NewSetTypes(path string, types []ir.TypeConstraint) *SetTypes {
	return &SetTypes{Path: path, Types: types}
}

// Validate checks the target exists, every type has a code, no code
// repeats, and each new type was already allowed by the current set
// (profiling narrows, never widens).
func (o *SetTypes) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(o.Types))
	for _, tc := range o.Types {
		if tc.Code == "" {
			return Errorf(ErrInvalidTypeConstraint, o.Path, "type constraint has empty code")
		}
		if seen[tc.Code] {
			return Errorf(ErrInvalidTypeConstraint, o.Path, "duplicate type code %q", tc.Code)
		}
		seen[tc.Code] = true
	}
	if len(node.Constraints.Types) > 0 {
		allowed := make(map[string]bool, len(node.Constraints.Types))
		for _, tc := range node.Constraints.Types {
			allowed[tc.Code] = true
		}
		for _, tc := range o.Types {
			if !allowed[tc.Code] {
				return Errorf(ErrTypeNotAllowed, o.Path,
					"type %q is not in the allowed set", tc.Code)
			}
		}
	}
	return nil
}

// Apply replaces the type list.
func (o *SetTypes) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.Types
	o.prevSource = node.Source

	node.Constraints.Types = o.Types
	node.MarkModified()
	return nil
}

// Undo restores the previous type list and source tag.
func (o *SetTypes) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.Types = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetTypes) Description() string {
	codes := make([]string, len(o.Types))
	for i, tc := range o.Types {
		codes[i] = tc.Code
	}
	return fmt.Sprintf("Restrict types of %s to [%s]", o.Path, strings.Join(codes, ", "))
}

// AsChange converts the edit to a trackable change.
func (o *SetTypes) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeSet,
		TargetID:  o.targetID,
		FieldPath: "constraints.types",
		OldValue:  o.prev,
		NewValue:  o.Types,
		Timestamp: time.Now().UTC(),
	}
}
