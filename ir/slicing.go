package ir

// DiscriminatorType is the rule kind used to tell slices apart.
type DiscriminatorType string

// Discriminator types from ElementDefinition.slicing.discriminator.type.
const (
	DiscriminatorValue    DiscriminatorType = "value"
	DiscriminatorExists   DiscriminatorType = "exists"
	DiscriminatorPattern  DiscriminatorType = "pattern"
	DiscriminatorTypeKind DiscriminatorType = "type"
	DiscriminatorProfile  DiscriminatorType = "profile"
	DiscriminatorPosition DiscriminatorType = "position"
)

// IsValid reports whether the discriminator type is known.
func (t DiscriminatorType) IsValid() bool {
	switch t {
	case DiscriminatorValue, DiscriminatorExists, DiscriminatorPattern,
		DiscriminatorTypeKind, DiscriminatorProfile, DiscriminatorPosition:
		return true
	}
	return false
}

// Discriminator decides which slice an instance value belongs to.
type Discriminator struct {
	Type DiscriminatorType `json:"type"`
	Path string            `json:"path"`
}

// SlicingRules governs whether instances may fall outside declared slices.
type SlicingRules string

const (
	// RulesClosed forbids content beyond the declared slices.
	RulesClosed SlicingRules = "closed"
	// RulesOpen allows additional content anywhere.
	RulesOpen SlicingRules = "open"
	// RulesOpenAtEnd allows additional content only after the declared slices.
	RulesOpenAtEnd SlicingRules = "openAtEnd"
)

// IsValid reports whether the rules value is known.
func (r SlicingRules) IsValid() bool {
	switch r {
	case RulesClosed, RulesOpen, RulesOpenAtEnd:
		return true
	}
	return false
}

// SlicingDefinition constrains how a repeating element branches into
// named variants.
type SlicingDefinition struct {
	// Discriminators, in declared order.
	Discriminators []Discriminator `json:"discriminators,omitempty"`

	// Description of the slicing intent.
	Description string `json:"description,omitempty"`

	// Ordered requires slice instances to appear in declared order.
	Ordered bool `json:"ordered,omitempty"`

	// Rules governs content beyond the declared slices.
	Rules SlicingRules `json:"rules"`
}

// Clone returns a deep copy of the definition.
func (s *SlicingDefinition) Clone() *SlicingDefinition {
	if s == nil {
		return nil
	}
	out := &SlicingDefinition{
		Description: s.Description,
		Ordered:     s.Ordered,
		Rules:       s.Rules,
	}
	if len(s.Discriminators) > 0 {
		out.Discriminators = append([]Discriminator(nil), s.Discriminators...)
	}
	return out
}

// Equal reports deep value equality.
func (s *SlicingDefinition) Equal(other *SlicingDefinition) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Description != other.Description || s.Ordered != other.Ordered || s.Rules != other.Rules {
		return false
	}
	if len(s.Discriminators) != len(other.Discriminators) {
		return false
	}
	for i := range s.Discriminators {
		if s.Discriminators[i] != other.Discriminators[i] {
			return false
		}
	}
	return true
}

// IsValidSliceName reports whether name satisfies the slice naming
// rules: non-empty, first character alphabetic, remaining characters
// alphanumeric, underscore, or hyphen.
func IsValidSliceName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if i == 0 {
			if !isAlpha(r) {
				return false
			}
			continue
		}
		if !isAlpha(r) && !isDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
