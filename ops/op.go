// Package ops defines the operation protocol for editing profile
// documents: every edit validates, applies, undoes, describes itself,
// and converts to a trackable change.
//
// The contract is validate-then-apply: Validate is pure and must reject
// every illegal edit; Apply mutates the tree and may assume Validate
// passed. An operation is atomic — either all of its internal edits
// succeed or none take effect.
package ops

import (
	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// Target is the document surface operations edit. The document package
// implements it; ops never depends on the aggregate itself.
type Target interface {
	// Resource returns the profiled resource tree being edited.
	Resource() *ir.ProfiledResource

	// IsEditable reports whether edits are allowed (draft status).
	IsEditable() bool
}

// Operation is one reversible edit against a profile document.
//
// Implementations must keep Validate free of mutation, make Apply
// all-or-nothing, and guarantee that Undo after Apply restores a tree
// structurally equal to the pre-apply tree.
type Operation interface {
	// Validate checks the edit is legal: the target exists, the
	// document is editable, and base constraints are respected.
	// It never mutates the document.
	Validate(t Target) error

	// Apply performs the edit. Callers invoke Validate first; Apply is
	// not required to re-validate.
	Apply(t Target) error

	// Undo reverts a previously applied edit.
	Undo(t Target) error

	// Description is the human-readable label for history UIs.
	Description() string

	// AsChange converts the applied edit into a trackable change.
	AsChange() history.Change
}

// requireEditable rejects edits against non-draft documents.
func requireEditable(t Target) error {
	if !t.IsEditable() {
		return Errorf(ErrDocumentReadOnly, "", "document is not in draft status")
	}
	return nil
}

// findElement locates an element by path or reports ErrElementNotFound.
func findElement(t Target, path string) (*ir.ElementNode, error) {
	node := t.Resource().FindByPath(path)
	if node == nil {
		return nil, Errorf(ErrElementNotFound, path, "element %q not found", path)
	}
	return node, nil
}
