package ir

import (
	"fmt"
	"reflect"
	"sort"
)

// Cardinality constrains how many times an element may occur.
// A nil Max means unbounded ("*").
type Cardinality struct {
	Min uint32  `json:"min"`
	Max *uint32 `json:"max,omitempty"`
}

// NewCardinality creates a bounded cardinality.
func NewCardinality(min, max uint32) *Cardinality {
	return &Cardinality{Min: min, Max: &max}
}

// NewUnboundedCardinality creates a cardinality with no upper bound.
func NewUnboundedCardinality(min uint32) *Cardinality {
	return &Cardinality{Min: min}
}

// IsValid reports whether Min does not exceed a bounded Max.
func (c *Cardinality) IsValid() bool {
	return c.Max == nil || c.Min <= *c.Max
}

// IsMoreRestrictiveThan reports whether c allows no occurrence counts
// that other forbids. Unbounded-vs-bounded max is never more
// restrictive; bounded-vs-unbounded always is.
func (c *Cardinality) IsMoreRestrictiveThan(other *Cardinality) bool {
	if c.Min < other.Min {
		return false
	}
	switch {
	case c.Max == nil && other.Max == nil:
		return true
	case c.Max == nil:
		// unbounded vs bounded
		return false
	case other.Max == nil:
		// bounded vs unbounded
		return true
	default:
		return *c.Max <= *other.Max
	}
}

// SatisfiesBase reports whether c is a legal refinement of base:
// the minimum may only rise, and a bounded base max may only shrink.
func (c *Cardinality) SatisfiesBase(base *Cardinality) bool {
	if base == nil {
		return true
	}
	if c.Min < base.Min {
		return false
	}
	if base.Max == nil {
		return true
	}
	return c.Max != nil && *c.Max <= *base.Max
}

// String renders the FHIR "min..max" form, with "*" for unbounded.
func (c *Cardinality) String() string {
	if c.Max == nil {
		return fmt.Sprintf("%d..*", c.Min)
	}
	return fmt.Sprintf("%d..%d", c.Min, *c.Max)
}

// Clone returns a copy of the cardinality.
func (c *Cardinality) Clone() *Cardinality {
	if c == nil {
		return nil
	}
	out := &Cardinality{Min: c.Min}
	if c.Max != nil {
		m := *c.Max
		out.Max = &m
	}
	return out
}

// Equal reports value equality.
func (c *Cardinality) Equal(other *Cardinality) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.Min != other.Min {
		return false
	}
	if (c.Max == nil) != (other.Max == nil) {
		return false
	}
	return c.Max == nil || *c.Max == *other.Max
}

// TypeConstraint restricts an element to a FHIR type, optionally
// narrowed to specific profiles and, for references, target profiles.
type TypeConstraint struct {
	Code           string   `json:"code"`
	Profiles       []string `json:"profiles,omitempty"`
	TargetProfiles []string `json:"target_profiles,omitempty"`
}

// Clone returns a copy of the type constraint.
func (t TypeConstraint) Clone() TypeConstraint {
	out := TypeConstraint{Code: t.Code}
	if len(t.Profiles) > 0 {
		out.Profiles = append([]string(nil), t.Profiles...)
	}
	if len(t.TargetProfiles) > 0 {
		out.TargetProfiles = append([]string(nil), t.TargetProfiles...)
	}
	return out
}

// Equal reports value equality.
func (t TypeConstraint) Equal(other TypeConstraint) bool {
	return t.Code == other.Code &&
		stringSlicesEqual(t.Profiles, other.Profiles) &&
		stringSlicesEqual(t.TargetProfiles, other.TargetProfiles)
}

// BindingStrength is the conformance weight of a terminology binding.
type BindingStrength string

// Binding strengths, strongest first.
const (
	BindingRequired   BindingStrength = "required"
	BindingExtensible BindingStrength = "extensible"
	BindingPreferred  BindingStrength = "preferred"
	BindingExample    BindingStrength = "example"
)

// strengthRank orders strengths; lower is stronger.
func (s BindingStrength) strengthRank() int {
	switch s {
	case BindingRequired:
		return 0
	case BindingExtensible:
		return 1
	case BindingPreferred:
		return 2
	case BindingExample:
		return 3
	}
	return 4
}

// IsValid reports whether the strength is one of the known strengths.
func (s BindingStrength) IsValid() bool {
	return s.strengthRank() < 4
}

// IsStrongerThan reports whether s binds more tightly than other.
func (s BindingStrength) IsStrongerThan(other BindingStrength) bool {
	return s.strengthRank() < other.strengthRank()
}

// Binding associates a coded element with a terminology value set.
type Binding struct {
	Strength    BindingStrength `json:"strength"`
	ValueSet    string          `json:"value_set"`
	Description string          `json:"description,omitempty"`
}

// Clone returns a copy of the binding.
func (b *Binding) Clone() *Binding {
	if b == nil {
		return nil
	}
	out := *b
	return &out
}

// Equal reports value equality.
func (b *Binding) Equal(other *Binding) bool {
	if b == nil || other == nil {
		return b == other
	}
	return *b == *other
}

// Invariant is a boolean FHIRPath expression instance data must satisfy.
type Invariant struct {
	Key        string `json:"key"`
	Severity   string `json:"severity,omitempty"`
	Human      string `json:"human,omitempty"`
	Expression string `json:"expression"`
	Source     string `json:"source,omitempty"`
}

// Flags carry element-level markers from ElementDefinition.
type Flags struct {
	MustSupport bool `json:"must_support,omitempty"`
	IsModifier  bool `json:"is_modifier,omitempty"`
	IsSummary   bool `json:"is_summary,omitempty"`
}

// Mapping relates an element to an external specification.
type Mapping struct {
	Identity string `json:"identity"`
	Map      string `json:"map"`
	Comment  string `json:"comment,omitempty"`
}

// Example is a labelled example value for an element.
type Example struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// BaseConstraints captures the parts of the base definition that
// refinements must respect: the base cardinality and the base binding
// strength. Set at load time, never mutated by operations.
type BaseConstraints struct {
	Cardinality     *Cardinality    `json:"cardinality,omitempty"`
	BindingStrength BindingStrength `json:"binding_strength,omitempty"`
}

// Clone returns a copy of the base constraints.
func (b *BaseConstraints) Clone() *BaseConstraints {
	if b == nil {
		return nil
	}
	return &BaseConstraints{
		Cardinality:     b.Cardinality.Clone(),
		BindingStrength: b.BindingStrength,
	}
}

// Equal reports value equality.
func (b *BaseConstraints) Equal(other *BaseConstraints) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.BindingStrength == other.BindingStrength &&
		b.Cardinality.Equal(other.Cardinality)
}

// ElementConstraints is the full constraint set an element carries.
// All fields are optional; a zero value means "unconstrained".
type ElementConstraints struct {
	Cardinality *Cardinality     `json:"cardinality,omitempty"`
	Types       []TypeConstraint `json:"types,omitempty"`

	Short      string `json:"short,omitempty"`
	Definition string `json:"definition,omitempty"`
	Comment    string `json:"comment,omitempty"`

	FixedValue   any `json:"fixed_value,omitempty"`
	PatternValue any `json:"pattern_value,omitempty"`

	Binding *Binding `json:"binding,omitempty"`
	Flags   Flags    `json:"flags,omitempty"`

	// Invariants keyed by invariant key; keys are unique per element.
	Invariants map[string]Invariant `json:"invariants,omitempty"`

	Mappings []Mapping `json:"mappings,omitempty"`
	Examples []Example `json:"examples,omitempty"`
}

// InvariantKeys returns the invariant keys in sorted order.
func (c *ElementConstraints) InvariantKeys() []string {
	if len(c.Invariants) == 0 {
		return nil
	}
	keys := make([]string, 0, len(c.Invariants))
	for k := range c.Invariants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the constraint set.
func (c ElementConstraints) Clone() ElementConstraints {
	out := ElementConstraints{
		Cardinality:  c.Cardinality.Clone(),
		Short:        c.Short,
		Definition:   c.Definition,
		Comment:      c.Comment,
		FixedValue:   c.FixedValue,
		PatternValue: c.PatternValue,
		Binding:      c.Binding.Clone(),
		Flags:        c.Flags,
	}
	if len(c.Types) > 0 {
		out.Types = make([]TypeConstraint, len(c.Types))
		for i, t := range c.Types {
			out.Types[i] = t.Clone()
		}
	}
	if len(c.Invariants) > 0 {
		out.Invariants = make(map[string]Invariant, len(c.Invariants))
		for k, v := range c.Invariants {
			out.Invariants[k] = v
		}
	}
	if len(c.Mappings) > 0 {
		out.Mappings = append([]Mapping(nil), c.Mappings...)
	}
	if len(c.Examples) > 0 {
		out.Examples = append([]Example(nil), c.Examples...)
	}
	return out
}

// Equal reports deep value equality of two constraint sets.
func (c *ElementConstraints) Equal(other *ElementConstraints) bool {
	if c == nil || other == nil {
		return c == other
	}
	if !c.Cardinality.Equal(other.Cardinality) {
		return false
	}
	if len(c.Types) != len(other.Types) {
		return false
	}
	for i := range c.Types {
		if !c.Types[i].Equal(other.Types[i]) {
			return false
		}
	}
	if c.Short != other.Short || c.Definition != other.Definition || c.Comment != other.Comment {
		return false
	}
	if !reflect.DeepEqual(c.FixedValue, other.FixedValue) {
		return false
	}
	if !reflect.DeepEqual(c.PatternValue, other.PatternValue) {
		return false
	}
	if !c.Binding.Equal(other.Binding) {
		return false
	}
	if c.Flags != other.Flags {
		return false
	}
	if !reflect.DeepEqual(normalizeInvariants(c.Invariants), normalizeInvariants(other.Invariants)) {
		return false
	}
	return reflect.DeepEqual(c.Mappings, other.Mappings) &&
		reflect.DeepEqual(c.Examples, other.Examples)
}

// normalizeInvariants maps empty to nil so zero values compare equal.
func normalizeInvariants(m map[string]Invariant) map[string]Invariant {
	if len(m) == 0 {
		return nil
	}
	return m
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
