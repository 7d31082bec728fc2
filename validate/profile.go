// Package validate implements layered validation of profile documents:
// a synchronous structural layer over the element tree, followed by
// optional asynchronous reference and terminology layers, and an
// optional external full validator. Every layer produces diagnostics,
// never errors: a finding is data, not a failure of the engine.
package validate

import (
	"github.com/gofhir/profiler/ir"
)

// Profile is the validation subject: the constrained element tree plus
// the profile-level metadata the structural rules inspect.
type Profile struct {
	// URL is the profile's canonical URL.
	URL string

	// Name is the profile's computable name.
	Name string

	// Status is the publication status (draft, active, retired, unknown).
	Status string

	// Resource is the constrained element tree.
	Resource *ir.ProfiledResource

	// scope, when non-nil, restricts node-level rules to these subtree
	// roots. A nil scope means the whole tree.
	scope []*ir.ElementNode
}

// NewProfile creates a whole-tree validation subject.
func NewProfile(url, name, status string, resource *ir.ProfiledResource) *Profile {
	return &Profile{URL: url, Name: name, Status: status, Resource: resource}
}

// ScopedTo returns a view of the profile restricted to the subtrees
// rooted at the given paths. Paths that do not resolve are dropped; if
// none resolve, or a path names the tree root, the whole tree is kept.
func (p *Profile) ScopedTo(paths []string) *Profile {
	if p.Resource == nil || p.Resource.Root == nil {
		return p
	}
	var roots []*ir.ElementNode
	for _, path := range paths {
		if path == p.Resource.Root.Path {
			return p
		}
		if node := p.Resource.FindByPath(path); node != nil {
			roots = append(roots, node)
		}
	}
	if len(roots) == 0 {
		return p
	}
	scoped := *p
	scoped.scope = roots
	return &scoped
}

// IsPartial reports whether this subject is scoped to subtrees. Global
// rules (metadata, tree-wide uniqueness) skip partial subjects.
func (p *Profile) IsPartial() bool {
	return p.scope != nil
}

// Nodes returns every node the node-level rules should inspect, in
// depth-first order.
func (p *Profile) Nodes() []*ir.ElementNode {
	if p.Resource == nil || p.Resource.Root == nil {
		return nil
	}
	if p.scope == nil {
		out := []*ir.ElementNode{p.Resource.Root}
		return append(out, p.Resource.Root.Descendants()...)
	}
	var out []*ir.ElementNode
	for _, root := range p.scope {
		out = append(out, root)
		out = append(out, root.Descendants()...)
	}
	return out
}

// Parent returns the owning element of node, or nil for the root.
func (p *Profile) Parent(node *ir.ElementNode) *ir.ElementNode {
	if node == nil || node.ParentID == "" || p.Resource == nil {
		return nil
	}
	return p.Resource.FindByID(node.ParentID)
}
