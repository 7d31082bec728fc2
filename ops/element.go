package ops

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// AddElement introduces a new child element under an existing parent.
type AddElement struct {
	ParentPath string
	Name       string
	Types      []ir.TypeConstraint

	parentID   ir.NodeID
	childID    ir.NodeID
	prevSource ir.Source
}

// NewAddElement creates an element-addition edit.
func NewAddElement(parentPath, name string, types []ir.TypeConstraint) *AddElement {
	return &AddElement{ParentPath: parentPath, Name: name, Types: types}
}

// Validate checks the parent exists, the name is a legal path segment,
// and no direct child already has it.
func (o *AddElement) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	parent, err := findElement(t, o.ParentPath)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(o.Name)
	if name == "" || strings.ContainsAny(name, ". :") {
		return Errorf(ErrInvalidTypeConstraint, o.ParentPath,
			"element name %q is not a valid path segment", o.Name)
	}
	if parent.FindChild(name) != nil {
		return Errorf(ErrInvalidTypeConstraint, o.ParentPath,
			"element %q already exists under %s", name, o.ParentPath)
	}
	return nil
}

// Apply adds the child element, tagged as added by this profile.
func (o *AddElement) Apply(t Target) error {
	parent, err := findElement(t, o.ParentPath)
	if err != nil {
		return err
	}
	o.parentID = parent.ID
	o.prevSource = parent.Source

	child := ir.NewElementNode(o.ParentPath + "." + o.Name)
	child.Source = ir.SourceAdded
	child.Constraints.Types = o.Types
	parent.AddChild(child)
	o.childID = child.ID
	parent.MarkModified()
	return nil
}

// Undo removes the added element and restores the parent's source tag.
func (o *AddElement) Undo(t Target) error {
	parent := t.Resource().FindByID(o.parentID)
	if parent == nil {
		return Errorf(ErrElementNotFound, o.ParentPath, "element %q not found", o.ParentPath)
	}
	if parent.RemoveChild(o.childID) == nil {
		return Errorf(ErrElementNotFound, o.ParentPath,
			"added element %q not found", o.Name)
	}
	parent.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *AddElement) Description() string {
	return fmt.Sprintf("Add element %s.%s", o.ParentPath, o.Name)
}

// AsChange converts the edit to a trackable change.
func (o *AddElement) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeAdd,
		TargetID:  o.parentID,
		FieldPath: "children." + o.Name,
		OldValue:  nil,
		NewValue:  o.Name,
		Timestamp: time.Now().UTC(),
	}
}

// RemoveElement removes an element added by this profile. Inherited
// elements cannot be removed, only constrained.
type RemoveElement struct {
	Path string

	parentID   ir.NodeID
	prevChild  *ir.ElementNode
	prevIndex  int
	prevSource ir.Source
}

// NewRemoveElement creates an element-removal edit.
func NewRemoveElement(path string) *RemoveElement {
	return &RemoveElement{Path: path}
}

// Validate checks the element exists and was added by this profile.
func (o *RemoveElement) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	if node.Source != ir.SourceAdded {
		return Errorf(ErrElementNotFound, o.Path,
			"only elements added by this profile can be removed")
	}
	if node.ParentID == "" {
		return Errorf(ErrElementNotFound, o.Path, "cannot remove the root element")
	}
	return nil
}

// Apply removes the element, remembering its position for undo.
func (o *RemoveElement) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	parent := t.Resource().FindByID(node.ParentID)
	if parent == nil {
		return Errorf(ErrElementNotFound, o.Path, "parent of %q not found", o.Path)
	}
	o.parentID = parent.ID
	o.prevSource = parent.Source

	for i, c := range parent.Children {
		if c.ID == node.ID {
			o.prevIndex = i
			break
		}
	}
	o.prevChild = parent.RemoveChild(node.ID)
	if o.prevChild == nil {
		return Errorf(ErrElementNotFound, o.Path, "element %q not found", o.Path)
	}
	parent.MarkModified()
	return nil
}

// Undo re-inserts the element at its former position.
func (o *RemoveElement) Undo(t Target) error {
	parent := t.Resource().FindByID(o.parentID)
	if parent == nil {
		return Errorf(ErrElementNotFound, o.Path, "parent not found")
	}
	if o.prevIndex >= len(parent.Children) {
		parent.Children = append(parent.Children, o.prevChild)
	} else {
		parent.Children = append(parent.Children[:o.prevIndex],
			append([]*ir.ElementNode{o.prevChild}, parent.Children[o.prevIndex:]...)...)
	}
	parent.Source = o.prevSource
	return nil
}

// Description returns the history label.
func (o *RemoveElement) Description() string {
	return fmt.Sprintf("Remove element %s", o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *RemoveElement) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeRemove,
		TargetID:  o.parentID,
		FieldPath: "children",
		OldValue:  o.Path,
		NewValue:  nil,
		Timestamp: time.Now().UTC(),
	}
}
