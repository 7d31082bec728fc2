package ops

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
)

// AddExtension wires an extension definition into the profile at a path.
type AddExtension struct {
	URL         string
	Path        string
	Cardinality *ir.Cardinality

	targetID ir.NodeID
}

// NewAddExtension creates an extension-addition edit.
func NewAddExtension(extensionURL, path string) *AddExtension {
	return &AddExtension{URL: extensionURL, Path: path}
}

// WithCardinality constrains the extension occurrence.
func (o *AddExtension) WithCardinality(min uint32, max *uint32) *AddExtension {
	o.Cardinality = &ir.Cardinality{Min: min, Max: max}
	return o
}

// Validate checks the anchor element exists, the URL is a canonical
// URL, and the extension is not already present at that path.
func (o *AddExtension) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	if _, err := findElement(t, o.Path); err != nil {
		return err
	}
	if strings.TrimSpace(o.URL) == "" {
		return Errorf(ErrInvalidCanonicalURL, o.Path, "extension URL is empty")
	}
	if u, parseErr := url.Parse(o.URL); parseErr != nil || u.Scheme == "" || u.Host == "" {
		return Errorf(ErrInvalidCanonicalURL, o.Path,
			"extension URL %q is not a valid canonical URL", o.URL)
	}
	if t.Resource().FindExtension(o.URL, o.Path) != nil {
		return Errorf(ErrDuplicateExtension, o.Path,
			"extension %q is already present at this path", o.URL)
	}
	if o.Cardinality != nil && !o.Cardinality.IsValid() {
		return Errorf(ErrInvalidCardinality, o.Path,
			"extension cardinality %s is invalid", o.Cardinality.String())
	}
	return nil
}

// Apply records the extension use.
func (o *AddExtension) Apply(t Target) error {
	node, err := findElement(t, o.Path)
	if err != nil {
		return err
	}
	o.targetID = node.ID

	t.Resource().AddExtension(ir.ExtensionUse{
		URL:         o.URL,
		Path:        o.Path,
		Cardinality: o.Cardinality.Clone(),
	})
	return nil
}

// Undo removes the extension use.
func (o *AddExtension) Undo(t Target) error {
	if !t.Resource().RemoveExtension(o.URL, o.Path) {
		return Errorf(ErrExtensionNotFound, o.Path, "extension %q not found", o.URL)
	}
	return nil
}

// Description returns the history label.
func (o *AddExtension) Description() string {
	return fmt.Sprintf("Add extension %s at %s", o.URL, o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *AddExtension) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeAdd,
		TargetID:  o.targetID,
		FieldPath: "extensions",
		OldValue:  nil,
		NewValue:  o.URL,
		Timestamp: time.Now().UTC(),
	}
}

// RemoveExtension unwires an extension from the profile.
type RemoveExtension struct {
	URL  string
	Path string

	targetID ir.NodeID
	prev     *ir.ExtensionUse
}

// NewRemoveExtension creates an extension-removal edit.
func NewRemoveExtension(extensionURL, path string) *RemoveExtension {
	return &RemoveExtension{URL: extensionURL, Path: path}
}

// Validate checks the extension is present.
func (o *RemoveExtension) Validate(t Target) error {
	if err := requireEditable(t); err != nil {
		return err
	}
	if t.Resource().FindExtension(o.URL, o.Path) == nil {
		return Errorf(ErrExtensionNotFound, o.Path, "extension %q not found", o.URL)
	}
	return nil
}

// Apply removes the extension use.
func (o *RemoveExtension) Apply(t Target) error {
	found := t.Resource().FindExtension(o.URL, o.Path)
	if found == nil {
		return Errorf(ErrExtensionNotFound, o.Path, "extension %q not found", o.URL)
	}
	prev := *found
	prev.Cardinality = found.Cardinality.Clone()
	o.prev = &prev

	if node := t.Resource().FindByPath(o.Path); node != nil {
		o.targetID = node.ID
	}
	t.Resource().RemoveExtension(o.URL, o.Path)
	return nil
}

// Undo restores the extension use.
func (o *RemoveExtension) Undo(t Target) error {
	if o.prev == nil {
		return Errorf(ErrInternal, o.Path, "no captured extension to restore")
	}
	t.Resource().AddExtension(*o.prev)
	return nil
}

// Description returns the history label.
func (o *RemoveExtension) Description() string {
	return fmt.Sprintf("Remove extension %s from %s", o.URL, o.Path)
}

// AsChange converts the edit to a trackable change.
func (o *RemoveExtension) AsChange() history.Change {
	return history.Change{
		Kind:      history.ChangeRemove,
		TargetID:  o.targetID,
		FieldPath: "extensions",
		OldValue:  o.URL,
		NewValue:  nil,
		Timestamp: time.Now().UTC(),
	}
}
