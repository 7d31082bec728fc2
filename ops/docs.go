package ops

import (
	"fmt"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// Documentation carries the narrative fields of an element.
type Documentation struct {
	Short      string `json:"short,omitempty"`
	Definition string `json:"definition,omitempty"`
	Comment    string `json:"comment,omitempty"`
}

// SetDocumentation replaces an element's narrative fields.
type SetDocumentation struct {
	Path string
	Docs Documentation

	targetID   ir.NodeID
	prev       Documentation
	prevSource ir.Source
}

// NewSetDocumentation creates a documentation edit.
func NewSetDocumentation(path string, docs Documentation) *SetDocumentation {
	return &SetDocumentation{Path: path, Docs: docs}
}

// Validate checks the target exists.
func (o *SetDocumentation) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	_, err := findElement(t, o.Path)
	return err
}

// Apply replaces the narrative fields.
func (o *SetDocumentation) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = Documentation{
		Short:      node.Constraints.Short,
		Definition: node.Constraints.Definition,
		Comment:    node.Constraints.Comment,
	}
	o.prevSource = node.Source

	node.Constraints.Short = o.Docs.Short
	node.Constraints.Definition = o.Docs.Definition
	node.Constraints.Comment = o.Docs.Comment
	node.MarkModified()
	return nil
}

// Undo restores the previous narrative fields and source tag.
func (o *SetDocumentation) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.Short = o.prev.Short
	node.Constraints.Definition = o.prev.Definition
	node.Constraints.Comment = o.prev.Comment
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetDocumentation) Description() string {
	return fmt.Sprintf("Edit documentation of %s", o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *SetDocumentation) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeSet,
		TargetID:  o.targetID,
		FieldPath: "constraints.documentation",
		OldValue:  o.prev,
		NewValue:  o.Docs,
		Timestamp: time.Now().UTC(),
	}
}

// SetFlags replaces an element's flags.
type SetFlags struct {
	Path  string
	Flags ir.Flags

	targetID   ir.NodeID
	prev       ir.Flags
	prevSource ir.Source
}

// NewSetFlags creates a flags edit.
func NewSetFlags(path string, flags ir.Flags) *SetFlags {
	return &SetFlags{Path: path, Flags: flags}
}

// Validate checks the target exists.
func (o *SetFlags) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	_, err := findElement(t, o.Path)
	return err
}

// Apply replaces the flags.
func (o *SetFlags) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prev = node.Constraints.Flags
	o.prevSource = node.Source

	node.Constraints.Flags = o.Flags
	node.MarkModified()
	return nil
}

// Undo restores the previous flags and source tag.
func (o *SetFlags) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Constraints.Flags = o.prev
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *SetFlags) Description() string {
	return fmt.Sprintf("Set flags of %s", o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *SetFlags) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeSet,
		TargetID:  o.targetID,
		FieldPath: "constraints.flags",
		OldValue:  o.prev,
		NewValue:  o.Flags,
		Timestamp: time.Now().UTC(),
	}
}
