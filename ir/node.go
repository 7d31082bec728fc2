// Package ir defines the intermediate representation of a constrained
// FHIR profile: an element tree with per-element constraints, slicing
// definitions, and named slices.
//
// The tree is owned top-down: every ElementNode exclusively owns its
// children and slices. Parent references are id-only back-references
// used for lookups, never for traversal or ownership.
package ir

import (
	"errors"

	"github.com/google/uuid"
)

// ErrSlicingNotDefined is returned by AddSlice when the element has no
// slicing definition. Declaring slicing first is a contract of the tree:
// a node may only own slices if its Slicing field is set.
var ErrSlicingNotDefined = errors.New("ir: element has no slicing definition")

// ErrDuplicateSlice is returned by AddSlice when a slice with the same
// name already exists on the element.
var ErrDuplicateSlice = errors.New("ir: slice name already exists")

// NodeID is a process-unique, opaque identifier that is stable for a
// node's lifetime. It addresses nodes from the outside (history targets,
// UI selections) and never carries ownership semantics.
type NodeID string

// NewNodeID generates a fresh NodeID.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Source tags where a node's definition came from relative to the base.
type Source string

const (
	// SourceInherited marks a node taken unchanged from the base definition.
	SourceInherited Source = "inherited"
	// SourceModified marks a node whose constraints were edited.
	SourceModified Source = "modified"
	// SourceAdded marks a node introduced by this profile.
	SourceAdded Source = "added"
)

// ElementNode is one node of the constrained element tree.
type ElementNode struct {
	// ID is the stable identity of this node.
	ID NodeID `json:"id"`

	// Path is the dotted element path (e.g., "Patient.name").
	Path string `json:"path"`

	// ParentID is a non-owning back-reference to the owning node.
	// It is lookup-only: traversal always goes downward through
	// Children and Slices.
	ParentID NodeID `json:"parent_id,omitempty"`

	// Constraints holds the element's constraint set.
	Constraints ElementConstraints `json:"constraints"`

	// Base captures the constraints inherited from the base definition
	// at load time. Refinements are checked against it and it never
	// changes afterwards.
	Base *BaseConstraints `json:"base,omitempty"`

	// Slicing, when set, allows this element to own Slices.
	Slicing *SlicingDefinition `json:"slicing,omitempty"`

	// Children are owned sub-elements, in declared order.
	Children []*ElementNode `json:"children,omitempty"`

	// Slices are owned named variants, in insertion order.
	Slices []*SliceNode `json:"slices,omitempty"`

	// Source tags the node's provenance relative to the base.
	Source Source `json:"source"`
}

// NewElementNode creates an inherited element node for the given path.
func NewElementNode(path string) *ElementNode {
	return &ElementNode{
		ID:     NewNodeID(),
		Path:   path,
		Source: SourceInherited,
	}
}

// Name returns the last path segment (e.g., "name" for "Patient.name").
func (n *ElementNode) Name() string {
	for i := len(n.Path) - 1; i >= 0; i-- {
		if n.Path[i] == '.' {
			return n.Path[i+1:]
		}
	}
	return n.Path
}

// AddChild takes ownership of child, stamping its ParentID, and appends
// it to the ordered child list.
func (n *ElementNode) AddChild(child *ElementNode) {
	child.ParentID = n.ID
	n.Children = append(n.Children, child)
}

// RemoveChild removes the child with the given id. It returns the
// removed node, or nil if no direct child has that id.
func (n *ElementNode) RemoveChild(id NodeID) *ElementNode {
	for i, c := range n.Children {
		if c.ID == id {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return c
		}
	}
	return nil
}

// AddSlice adds a named slice. The element must already carry a slicing
// definition; attempting to slice an unsliced element is a contract
// violation reported as ErrSlicingNotDefined.
func (n *ElementNode) AddSlice(slice *SliceNode) error {
	if n.Slicing == nil {
		return ErrSlicingNotDefined
	}
	if n.FindSlice(slice.Name) != nil {
		return ErrDuplicateSlice
	}
	if slice.Element != nil {
		slice.Element.ParentID = n.ID
	}
	n.Slices = append(n.Slices, slice)
	return nil
}

// RemoveSlice removes the slice with the given name. It returns the
// removed slice, or nil if no slice has that name.
func (n *ElementNode) RemoveSlice(name string) *SliceNode {
	for i, s := range n.Slices {
		if s.Name == name {
			n.Slices = append(n.Slices[:i], n.Slices[i+1:]...)
			return s
		}
	}
	return nil
}

// FindSlice returns the slice with the given name, or nil.
func (n *ElementNode) FindSlice(name string) *SliceNode {
	for _, s := range n.Slices {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// FindChild returns the direct child with the given last path segment,
// or nil.
func (n *ElementNode) FindChild(name string) *ElementNode {
	for _, c := range n.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// FindDescendant returns the first node in depth-first order (children
// before slices) whose Path equals path. The receiver itself is
// considered first.
func (n *ElementNode) FindDescendant(path string) *ElementNode {
	if n.Path == path {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindDescendant(path); found != nil {
			return found
		}
	}
	for _, s := range n.Slices {
		if s.Element != nil {
			if found := s.Element.FindDescendant(path); found != nil {
				return found
			}
		}
	}
	return nil
}

// FindByID locates a node by id: the receiver first, then children,
// then slice elements, returning the first match.
func (n *ElementNode) FindByID(id NodeID) *ElementNode {
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.FindByID(id); found != nil {
			return found
		}
	}
	for _, s := range n.Slices {
		if s.Element != nil {
			if found := s.Element.FindByID(id); found != nil {
				return found
			}
		}
	}
	return nil
}

// Descendants returns all nodes below the receiver in depth-first
// order, children fully before slices, each in declared order. Every
// call performs a fresh traversal; the returned slice is finite and
// independent of later tree mutation.
func (n *ElementNode) Descendants() []*ElementNode {
	var out []*ElementNode
	n.walkBelow(func(node *ElementNode) bool {
		out = append(out, node)
		return true
	})
	return out
}

// Walk visits the receiver and every descendant in depth-first order,
// children before slices. Returning false from fn stops the walk.
func (n *ElementNode) Walk(fn func(*ElementNode) bool) {
	if !fn(n) {
		return
	}
	n.walkBelow(fn)
}

// walkBelow visits descendants only. Returns false if the walk was cut.
func (n *ElementNode) walkBelow(fn func(*ElementNode) bool) bool {
	for _, c := range n.Children {
		if !fn(c) {
			return false
		}
		if !c.walkBelow(fn) {
			return false
		}
	}
	for _, s := range n.Slices {
		if s.Element == nil {
			continue
		}
		if !fn(s.Element) {
			return false
		}
		if !s.Element.walkBelow(fn) {
			return false
		}
	}
	return true
}

// SetConstraints replaces the element's constraints. Mutating the
// constraint set always flips an inherited node to SourceModified.
func (n *ElementNode) SetConstraints(c ElementConstraints) {
	n.Constraints = c
	n.MarkModified()
}

// MarkModified flips an inherited node to SourceModified. Added nodes
// stay SourceAdded.
func (n *ElementNode) MarkModified() {
	if n.Source == SourceInherited {
		n.Source = SourceModified
	}
}

// Clone returns a deep copy of the subtree. Node identities are
// preserved: clones are used for snapshotting, not for inserting a
// second copy into the same tree.
func (n *ElementNode) Clone() *ElementNode {
	if n == nil {
		return nil
	}
	out := &ElementNode{
		ID:          n.ID,
		Path:        n.Path,
		ParentID:    n.ParentID,
		Constraints: n.Constraints.Clone(),
		Base:        n.Base.Clone(),
		Slicing:     n.Slicing.Clone(),
		Source:      n.Source,
	}
	if len(n.Children) > 0 {
		out.Children = make([]*ElementNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	if len(n.Slices) > 0 {
		out.Slices = make([]*SliceNode, len(n.Slices))
		for i, s := range n.Slices {
			out.Slices[i] = s.Clone()
		}
	}
	return out
}

// Equal reports structural equality of two subtrees: paths, sources,
// constraints, slicing, children and slices in order. Node identities
// are ignored.
func (n *ElementNode) Equal(other *ElementNode) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Path != other.Path || n.Source != other.Source {
		return false
	}
	if !n.Constraints.Equal(&other.Constraints) {
		return false
	}
	if !n.Base.Equal(other.Base) {
		return false
	}
	if !n.Slicing.Equal(other.Slicing) {
		return false
	}
	if len(n.Children) != len(other.Children) || len(n.Slices) != len(other.Slices) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	for i := range n.Slices {
		if !n.Slices[i].Equal(other.Slices[i]) {
			return false
		}
	}
	return true
}

// SliceNode is a named variant of a sliced element. It owns exactly one
// element subtree carrying the variant's constraints.
type SliceNode struct {
	// ID is the stable identity of the slice itself.
	ID NodeID `json:"id"`

	// Name is the slice name, unique within the parent element.
	Name string `json:"name"`

	// Element is the owned constrained element for this variant.
	Element *ElementNode `json:"element"`

	// Source tags the slice's provenance.
	Source Source `json:"source"`
}

// NewSliceNode creates an added slice with an owned element whose path
// is parentPath:name, the conventional sliced-element path form.
func NewSliceNode(name, parentPath string) *SliceNode {
	el := NewElementNode(parentPath + ":" + name)
	el.Source = SourceAdded
	return &SliceNode{
		ID:      NewNodeID(),
		Name:    name,
		Element: el,
		Source:  SourceAdded,
	}
}

// Clone returns a deep copy of the slice.
func (s *SliceNode) Clone() *SliceNode {
	if s == nil {
		return nil
	}
	return &SliceNode{
		ID:      s.ID,
		Name:    s.Name,
		Element: s.Element.Clone(),
		Source:  s.Source,
	}
}

// Equal reports structural equality of two slices, ignoring identities.
func (s *SliceNode) Equal(other *SliceNode) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name &&
		s.Source == other.Source &&
		s.Element.Equal(other.Element)
}
