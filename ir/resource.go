package ir

// BaseReference identifies the definition a profile constrains.
type BaseReference struct {
	// URL is the canonical URL of the base definition.
	URL string `json:"url"`

	// Version optionally pins a specific base version.
	Version string `json:"version,omitempty"`

	// Name is the computable name of the base, if known.
	Name string `json:"name,omitempty"`
}

// ResourceKind mirrors StructureDefinition.kind.
type ResourceKind string

// Resource kinds.
const (
	KindResource      ResourceKind = "resource"
	KindComplexType   ResourceKind = "complex-type"
	KindPrimitiveType ResourceKind = "primitive-type"
	KindLogical       ResourceKind = "logical"
)

// ExtensionUse records an extension wired into the profile.
type ExtensionUse struct {
	// URL is the canonical URL of the extension definition.
	URL string `json:"url"`

	// Path is the element path the extension is attached to.
	Path string `json:"path"`

	// Cardinality optionally constrains the extension occurrence.
	Cardinality *Cardinality `json:"cardinality,omitempty"`
}

// ProfiledResource is the constrained resource: the root of the element
// tree plus the identity of the base being constrained. It owns the
// whole tree through Root.
type ProfiledResource struct {
	Root        *ElementNode   `json:"root"`
	Base        BaseReference  `json:"base"`
	FHIRVersion string         `json:"fhir_version,omitempty"`
	Kind        ResourceKind   `json:"kind"`
	Extensions  []ExtensionUse `json:"extensions,omitempty"`
}

// NewProfiledResource creates a profiled resource around a root node.
func NewProfiledResource(root *ElementNode, base BaseReference, kind ResourceKind) *ProfiledResource {
	return &ProfiledResource{
		Root: root,
		Base: base,
		Kind: kind,
	}
}

// Type returns the constrained resource type, taken from the root path.
func (r *ProfiledResource) Type() string {
	if r.Root == nil {
		return ""
	}
	return r.Root.Path
}

// FindByPath locates an element anywhere in the tree by dotted path.
func (r *ProfiledResource) FindByPath(path string) *ElementNode {
	if r.Root == nil {
		return nil
	}
	return r.Root.FindDescendant(path)
}

// FindByID locates an element anywhere in the tree by node id.
func (r *ProfiledResource) FindByID(id NodeID) *ElementNode {
	if r.Root == nil {
		return nil
	}
	return r.Root.FindByID(id)
}

// Clone returns a deep copy of the profiled resource.
func (r *ProfiledResource) Clone() *ProfiledResource {
	if r == nil {
		return nil
	}
	out := &ProfiledResource{
		Root:        r.Root.Clone(),
		Base:        r.Base,
		FHIRVersion: r.FHIRVersion,
		Kind:        r.Kind,
	}
	if len(r.Extensions) > 0 {
		out.Extensions = make([]ExtensionUse, len(r.Extensions))
		for i, e := range r.Extensions {
			out.Extensions[i] = ExtensionUse{
				URL:         e.URL,
				Path:        e.Path,
				Cardinality: e.Cardinality.Clone(),
			}
		}
	}
	return out
}

// Equal reports structural equality, ignoring node identities.
func (r *ProfiledResource) Equal(other *ProfiledResource) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Base != other.Base || r.FHIRVersion != other.FHIRVersion || r.Kind != other.Kind {
		return false
	}
	if len(r.Extensions) != len(other.Extensions) {
		return false
	}
	for i := range r.Extensions {
		a, b := r.Extensions[i], other.Extensions[i]
		if a.URL != b.URL || a.Path != b.Path || !a.Cardinality.Equal(b.Cardinality) {
			return false
		}
	}
	return r.Root.Equal(other.Root)
}

// FindExtension returns the extension with the given URL at the given
// path, or nil.
func (r *ProfiledResource) FindExtension(url, path string) *ExtensionUse {
	for i := range r.Extensions {
		if r.Extensions[i].URL == url && r.Extensions[i].Path == path {
			return &r.Extensions[i]
		}
	}
	return nil
}

// AddExtension appends an extension use.
func (r *ProfiledResource) AddExtension(e ExtensionUse) {
	r.Extensions = append(r.Extensions, e)
}

// RemoveExtension removes the extension with the given URL at the given
// path, returning true if one was removed.
func (r *ProfiledResource) RemoveExtension(url, path string) bool {
	for i := range r.Extensions {
		if r.Extensions[i].URL == url && r.Extensions[i].Path == path {
			r.Extensions = append(r.Extensions[:i], r.Extensions[i+1:]...)
			return true
		}
	}
	return false
}
