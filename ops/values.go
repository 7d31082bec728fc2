package ops

import (
	"fmt"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// valueMatchesTypes reports whether a fixed/pattern value's Go shape is
// plausible for the element's declared types. Primitive constraint
// types map to Go scalars; complex types carry map values.
func valueMatchesTypes(node *ir.ElementNode, value any) bool {
	if len(node.Constraints.Types) == 0 || value == nil {
		return true
	}
	for _, tc := range node.Constraints.Types {
		switch tc.Code {
		case "boolean":
			if _, ok := value.(bool); ok {
				return true
			}
		case "integer", "positiveInt", "unsignedInt":
			switch value.(type) {
			case int, int32, int64, uint32, float64:
				return true
			}
		case "decimal":
			switch value.(type) {
			case float64, float32, int:
				return true
			}
		case "string", "code", "uri", "url", "canonical", "id", "markdown",
			"date", "dateTime", "time", "instant", "oid", "uuid", "base64Binary":
			if _, ok := value.(string); ok {
				return true
			}
		default:
			// complex type: accept a map shape
			if _, ok := value.(map[string]any); ok {
				return true
			}
		}
	}
	return false
}

// SetFixedValue fixes an element to an exact value.
type SetFixedValue struct {
	Path  string
	Value any

	targetID   ir.NodeID
	prev       any
	prevSource ir.Source
}

// NewSetFixedValue creates a fixed-value edit. A nil value clears the
// fixed value.
func NewSetFixedValue(path string, value any) *SetFixedValue {
	return &SetFixedValue{Path: path, Value: value}
}

// Validate checks the target exists and the value shape matches the
// element's declared types.
func (o *SetFixedValue) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if !valueMatchesTypes(node, o.Value) {
		return Errorf(ErrValueTypeMismatch, o.Path,
			"fixed value of type %T does not match the element's declared types", o.Value)
	}
	return nil
}

// Apply sets the fixed value.
func (o *SetFixedValue) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.FixedValue
	o.prevSource = node.Source

	node.Constraints.FixedValue = o.Value
	node.MarkModified()
	return nil
}

// Undo restores the previous fixed value and source tag.
func (o *SetFixedValue) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.FixedValue = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetFixedValue) Description() string {
	if o.Value == nil {
		return fmt.Sprintf("Clear fixed value of %s", o.Path)
	}
	return fmt.Sprintf("Fix value of %s to %v", o.Path, o.Value)
}

// AsChange converts the edit to a trackable change.
func (o *SetFixedValue) AsChange() history.Change {
	kind := history.ChangeSet
	if o.Value == nil {
		kind = history.ChangeClear
	}
	return history.Change{
		Kind:      kind,
		TargetID:  o.targetID,
		FieldPath: "constraints.fixed_value",
		OldValue:  o.prev,
		NewValue:  o.Value,
		Timestamp: time.Now().UTC(),
	}
}

// SetPatternValue constrains an element to match a partial value.
type SetPatternValue struct {
	Path  string
	Value any

	targetID   ir.NodeID
	prev       any
	prevSource ir.Source
}

// NewSetPatternValue creates a pattern-value edit. A nil value clears
// the pattern.
func NewSetPatternValue(path string, value any) *SetPatternValue {
	return &SetPatternValue{Path: path, Value: value}
}

// Validate checks the target exists and the value shape matches the
// element's declared types.
func (o *SetPatternValue) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if !valueMatchesTypes(node, o.Value) {
		return Errorf(ErrValueTypeMismatch, o.Path,
			"pattern value of type %T does not match the element's declared types", o.Value)
	}
	return nil
}

// Apply sets the pattern value.
func (o *SetPatternValue) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.PatternValue
	o.prevSource = node.Source

	node.Constraints.PatternValue = o.Value
	node.MarkModified()
	return nil
}

// Undo restores the previous pattern value and source tag.
func (o *SetPatternValue) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.PatternValue = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetPatternValue) Description() string {
	if o.Value == nil {
		return fmt.Sprintf("Clear pattern of %s", o.Path)
	}
	return fmt.Sprintf("Set pattern of %s", o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *SetPatternValue) AsChange() history.Change {
	kind := history.ChangeSet
	if o.Value == nil {
		kind = history.ChangeClear
	}
	return history.Change{
		Kind:      kind,
		TargetID:  o.targetID,
		FieldPath: "constraints.pattern_value",
		OldValue:  o.prev,
		NewValue:  o.Value,
		Timestamp: time.Now().UTC(),
	}
}
