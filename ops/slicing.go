package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// AddSlicing declares slicing on a repeating element.
type AddSlicing struct {
	Path    string
	Slicing ir.SlicingDefinition

	targetID   ir.NodeID
	prevSource ir.Source
}

// NewAddSlicing creates a slicing-declaration edit.
func NewAddSlicing(path string, slicing ir.SlicingDefinition) *AddSlicing {
	return &AddSlicing{Path: path, Slicing: slicing}
}

// Validate checks the target exists, carries no slicing yet, and the
// definition's discriminators and rules are legal.
func (o *AddSlicing) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if node.Slicing != nil {
		return Errorf(ErrSlicingAlreadyDefined, o.Path, "element already declares slicing")
	}
	if len(o.Slicing.Discriminators) == 0 {
		return Errorf(ErrInvalidDiscriminator, o.Path, "slicing requires at least one discriminator")
	}
	for _, d := range o.Slicing.Discriminators {
		if !d.Type.IsValid() {
			return Errorf(ErrInvalidDiscriminator, o.Path, "unknown discriminator type %q", d.Type)
		}
		if strings.TrimSpace(d.Path) == "" {
			return Errorf(ErrInvalidDiscriminator, o.Path, "discriminator path is empty")
		}
	}
	if !o.Slicing.Rules.IsValid() {
		return Errorf(ErrInvalidDiscriminator, o.Path, "unknown slicing rules %q", o.Slicing.Rules)
	}
	return nil
}

// Apply sets the slicing definition.
func (o *AddSlicing) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prevSource = node.Source

	node.Slicing = o.Slicing.Clone()
	node.MarkModified()
	return nil
}

// Undo removes the slicing definition and restores the source tag.
func (o *AddSlicing) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Slicing = nil
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *AddSlicing) Description() string {
	return fmt.Sprintf("Declare slicing on %s (%s)", o.Path, o.Slicing.Rules)
}

// AsChange converts the edit to a trackable change.
func (o *AddSlicing) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeAdd,
		TargetID:  o.targetID,
		FieldPath: "slicing",
		OldValue:  nil,
		NewValue:  o.Slicing.Clone(),
		Timestamp: time.Now().UTC(),
	}
}

// RemoveSlicing removes a slicing declaration and all of its slices.
type RemoveSlicing struct {
	Path string

	targetID    ir.NodeID
	prevSlicing *ir.SlicingDefinition
	prevSlices  []*ir.SliceNode
	prevSource  ir.Source
}

// NewRemoveSlicing creates a slicing-removal edit.
func NewRemoveSlicing(path string) *RemoveSlicing {
	return &RemoveSlicing{Path: path}
}

// Validate checks the target exists and declares slicing.
func (o *RemoveSlicing) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if node.Slicing == nil {
		return Errorf(ErrSlicingNotDefined, o.Path, "element declares no slicing")
	}
	return nil
}

// Apply clears the slicing definition and its slices.
func (o *RemoveSlicing) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prevSlicing = node.Slicing
	o.prevSlices = node.Slices
	o.prevSource = node.Source

	node.Slicing = nil
	node.Slices = nil
	node.MarkModified()
	return nil
}

// Undo restores the slicing definition, its slices, and the source tag.
func (o *RemoveSlicing) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	node.Slicing = o.prevSlicing
	node.Slices = o.prevSlices
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *RemoveSlicing) Description() string {
	return fmt.Sprintf("Remove slicing from %s", o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *RemoveSlicing) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeRemove,
		TargetID:  o.targetID,
		FieldPath: "slicing",
		OldValue:  o.prevSlicing,
		NewValue:  nil,
		Timestamp: time.Now().UTC(),
	}
}

// AddSlice adds a named slice to an element that declares slicing.
type AddSlice struct {
	Path string
	Name string

	// Cardinality optionally constrains the new slice.
	Cardinality *ir.Cardinality

	targetID   ir.NodeID
	sliceID    ir.NodeID
	prevSource ir.Source
}

// NewAddSlice creates a slice-addition edit.
func NewAddSlice(path, name string) *AddSlice {
	return &AddSlice{Path: path, Name: name}
}

// WithCardinality constrains the new slice's cardinality.
func (o *AddSlice) WithCardinality(min uint32, max *uint32) *AddSlice {
	o.Cardinality = &ir.Cardinality{Min: min, Max: max}
	return o
}

// Validate checks the target exists, declares slicing, the name is
// legal, and no slice with that name exists.
func (o *AddSlice) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if node.Slicing == nil {
		return Errorf(ErrSlicingNotDefined, o.Path,
			"cannot add slice %q: element declares no slicing", o.Name)
	}
	if !ir.IsValidSliceName(o.Name) {
		return Errorf(ErrInvalidSliceName, o.Path,
			"slice name %q is invalid: first character must be alphabetic, rest alphanumeric, underscore or hyphen", o.Name)
	}
	if node.FindSlice(o.Name) != nil {
		return Errorf(ErrDuplicateSlice, o.Path, "slice %q already exists", o.Name)
	}
	if o.Cardinality != nil && !o.Cardinality.IsValid() {
		return Errorf(ErrInvalidCardinality, o.Path,
			"slice cardinality %s is invalid", o.Cardinality.String())
	}
	return nil
}

// Apply adds the slice.
func (o *AddSlice) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prevSource = node.Source

	slice := ir.NewSliceNode(o.Name, o.Path)
	if o.Cardinality != nil {
		slice.Element.Constraints.Cardinality = o.Cardinality.Clone()
	}
	if err := node.AddSlice(slice); err != nil {
		return Errorf(ErrInternal, o.Path, "adding slice: %v", err)
	}
	o.sliceID = slice.ID
	node.MarkModified()
	return nil
}

// Undo removes the added slice and restores the source tag.
func (o *AddSlice) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	if node.RemoveSlice(o.Name) == nil {
		return Errorf(ErrSliceNotFound, o.Path, "slice %q not found", o.Name)
	}
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *AddSlice) Description() string {
	return fmt.Sprintf("Add slice %q to %s", o.Name, o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *AddSlice) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeAdd,
		TargetID:  o.targetID,
		FieldPath: "slices." + o.Name,
		OldValue:  nil,
		NewValue:  o.Name,
		Timestamp: time.Now().UTC(),
	}
}

// RemoveSlice removes a named slice.
type RemoveSlice struct {
	Path string
	Name string

	targetID   ir.NodeID
	prevSlice  *ir.SliceNode
	prevIndex  int
	prevSource ir.Source
}

// NewRemoveSlice creates a slice-removal edit.
func NewRemoveSlice(path, name string) *RemoveSlice {
	return &RemoveSlice{Path: path, Name: name}
}

// Validate checks the target exists and owns a slice with that name.
func (o *RemoveSlice) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if node.FindSlice(o.Name) == nil {
		return Errorf(ErrSliceNotFound, o.Path, "slice %q not found", o.Name)
	}
	return nil
}

// Apply removes the slice, remembering its position for undo.
func (o *RemoveSlice) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID
	o.prevSource = node.Source

	for i, s := range node.Slices {
		if s.Name == o.Name {
			o.prevIndex = i
			break
		}
	}
	o.prevSlice = node.RemoveSlice(o.Name)
	if o.prevSlice == nil {
		return Errorf(ErrSliceNotFound, o.Path, "slice %q not found", o.Name)
	}
	node.MarkModified()
	return nil
}

// Undo re-inserts the slice at its former position.
func (o *RemoveSlice) Undo(t Target) error {
	node := t.Resource().FindByID(o.targetID)
	if node == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	if o.prevIndex >= len(node.Slices) {
		node.Slices = append(node.Slices, o.prevSlice)
	} else {
		node.Slices = append(node.Slices[:o.prevIndex],
			append([]*ir.SliceNode{o.prevSlice}, node.Slices[o.prevIndex:]...)...)
	}
	node.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *RemoveSlice) Description() string {
	return fmt.Sprintf("Remove slice %q from %s", o.Name, o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *RemoveSlice) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeRemove,
		TargetID:  o.targetID,
		FieldPath: "slices." + o.Name,
		OldValue:  o.Name,
		NewValue:  nil,
		Timestamp: time.Now().UTC(),
	}
}
