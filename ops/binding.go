package ops

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// SetBinding sets or replaces an element's terminology binding.
type SetBinding struct {
	Path    string
	Binding ir.Binding

	targetID   ir.NodeID
	prev       *ir.Binding
	prevSource ir.Source
}

// NewSetBinding creates a binding edit.
func NewSetBinding(path string, strength ir.BindingStrength, valueSet string) *SetBinding {
	return &SetBinding{
		Path:    path,
		Binding: ir.Binding{Strength: strength, ValueSet: valueSet},
	}
}

// Validate checks the target exists, the value-set URL is usable, the
// strength is known, and the binding is not weaker than the base.
func (o *SetBinding) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if strings.TrimSpace(o.Binding.ValueSet) == "" {
		return Errorf(ErrInvalidValueSetURL, o.Path, "value-set URL is empty")
	}
	if u, parseErr := url.Parse(o.Binding.ValueSet); parseErr != nil || u.Scheme == "" {
		return Errorf(ErrInvalidValueSetURL, o.Path,
			"value-set URL %q is not a valid absolute URL", o.Binding.ValueSet)
	}
	if !o.Binding.Strength.IsValid() {
		return Errorf(ErrInvalidValueSetURL, o.Path,
			"unknown binding strength %q", o.Binding.Strength)
	}
	base := baseBindingStrength(node)
	if base != "" && base.IsStrongerThan(o.Binding.Strength) {
		return Errorf(ErrBindingStrengthWeakened, o.Path,
			"binding strength %q is weaker than base %q", o.Binding.Strength, base)
	}
	return nil
}

// Apply sets the binding.
func (o *SetBinding) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.Binding
	o.prevSource = node.Source

	b := o.Binding
	node.Constraints.Binding = &b
	node.MarkModified()
	return nil
}

// Undo restores the previous binding and source tag.
func (o *SetBinding) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.Binding = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetBinding) Description() string {
	return fmt.Sprintf("Bind %s to %s (%s)", o.Path, o.Binding.ValueSet, o.Binding.Strength)
}

// AsChange converts the edit to a trackable change.
func (o *SetBinding) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeSet,
		TargetID:  o.targetID,
		FieldPath: "constraints.binding",
		OldValue:  o.prev,
		NewValue:  o.Binding.Clone(),
		Timestamp: time.Now().UTC(),
	}
}

// baseBindingStrength returns the strength refinements must not weaken.
func baseBindingStrength(node *ir.ElementNode) ir.BindingStrength {
	if node.Base != nil && node.Base.BindingStrength != "" {
		return node.Base.BindingStrength
	}
	return ""
}

// RemoveBinding clears an element's terminology binding.
type RemoveBinding struct {
	Path string

	targetID   ir.NodeID
	prev       *ir.Binding
	prevSource ir.Source
}

// NewRemoveBinding creates a binding-removal edit.
func NewRemoveBinding(path string) *RemoveBinding {
	return &RemoveBinding{Path: path}
}

// Validate checks the target exists and has a binding, and that the
// base does not require one.
func (o *RemoveBinding) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if node.Constraints.Binding == nil {
		return Errorf(ErrElementNotFound, o.Path, "element has no binding to remove")
	}
	if base := baseBindingStrength(node); base == ir.BindingRequired {
		return Errorf(ErrBindingStrengthWeakened, o.Path,
			"base requires a binding; it cannot be removed")
	}
	return nil
}

// Apply clears the binding.
func (o *RemoveBinding) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.Binding
	o.prevSource = node.Source

	node.Constraints.Binding = nil
	node.MarkModified()
	return nil
}

// Undo restores the previous binding and source tag.
func (o *RemoveBinding) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.Binding = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *RemoveBinding) Description() string {
	return fmt.Sprintf("Remove binding from %s", o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *RemoveBinding) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeClear,
		TargetID:  o.targetID,
		FieldPath: "constraints.binding",
		OldValue:  o.prev,
		NewValue:  nil,
		Timestamp: time.Now().UTC(),
	}
}
