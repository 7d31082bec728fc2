// Package loader builds the editable element tree from FHIR
// StructureDefinitions. It bridges the full r4 models to the internal
// representation: snapshot elements become the tree, and the loaded
// constraints double as the base constraints refinements are checked
// against.
package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofhir/fhir/r4"

	"github.com/gofhir/profiler/document"
	"github.com/gofhir/profiler/ir"
)

// FromR4StructureDefinition builds a profiled resource tree from an R4
// StructureDefinition snapshot. Every node is tagged SourceInherited
// and carries its snapshot constraints as the base.
func FromR4StructureDefinition(sd *r4.StructureDefinition) (*ir.ProfiledResource, error) {
	if sd == nil {
		return nil, fmt.Errorf("loader: structure definition is nil")
	}
	if sd.Snapshot == nil || len(sd.Snapshot.Element) == 0 {
		return nil, fmt.Errorf("loader: structure definition %q has no snapshot", derefString(sd.Url))
	}

	elements := sd.Snapshot.Element
	byID := make(map[string]*ir.ElementNode, len(elements))
	var root *ir.ElementNode

	for i := range elements {
		ed := &elements[i]
		path := derefString(ed.Path)
		if path == "" {
			continue
		}
		id := derefString(ed.Id)
		if id == "" {
			id = path
		}

		node := buildNode(ed)
		if root == nil {
			root = node
			byID[id] = node
			continue
		}

		if sliceName := derefString(ed.SliceName); sliceName != "" && strings.HasSuffix(id, ":"+sliceName) {
			parentID := strings.TrimSuffix(id, ":"+sliceName)
			parent := byID[parentID]
			if parent == nil {
				return nil, fmt.Errorf("loader: slice %q has no parent element %q", id, parentID)
			}
			// Some published profiles declare slices without repeating
			// the slicing definition; default to open slicing so the
			// tree invariant holds.
			if parent.Slicing == nil {
				parent.Slicing = &ir.SlicingDefinition{Rules: ir.RulesOpen}
			}
			node.Path = parent.Path + ":" + sliceName
			slice := &ir.SliceNode{
				ID:      ir.NewNodeID(),
				Name:    sliceName,
				Element: node,
				Source:  ir.SourceInherited,
			}
			if err := parent.AddSlice(slice); err != nil {
				return nil, fmt.Errorf("loader: adding slice %q: %w", id, err)
			}
			byID[id] = node
			continue
		}

		parentID := parentOf(id)
		parent := byID[parentID]
		if parent == nil {
			return nil, fmt.Errorf("loader: element %q has no parent element %q", id, parentID)
		}
		parent.AddChild(node)
		byID[id] = node
	}

	if root == nil {
		return nil, fmt.Errorf("loader: snapshot of %q contains no root element", derefString(sd.Url))
	}

	resource := ir.NewProfiledResource(root,
		ir.BaseReference{URL: derefString(sd.BaseDefinition)},
		kindOf(sd.Kind))
	if sd.FhirVersion != nil {
		resource.FHIRVersion = string(*sd.FhirVersion)
	}
	return resource, nil
}

// MetadataFromR4 extracts the document header from a StructureDefinition.
func MetadataFromR4(sd *r4.StructureDefinition) document.Metadata {
	meta := document.Metadata{
		URL:         derefString(sd.Url),
		Name:        derefString(sd.Name),
		Title:       derefString(sd.Title),
		Version:     derefString(sd.Version),
		Description: derefString(sd.Description),
		Publisher:   derefString(sd.Publisher),
		Status:      document.StatusUnknown,
	}
	if sd.Status != nil {
		meta.Status = document.Status(string(*sd.Status))
	}
	return meta
}

// parentOf derives the parent element id by stripping the last dotted
// segment. Colons bind tighter than dots, so a slice child such as
// "Patient.identifier:mrn.system" resolves to "Patient.identifier:mrn".
func parentOf(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[:i]
	}
	return ""
}

func buildNode(ed *r4.ElementDefinition) *ir.ElementNode {
	node := ir.NewElementNode(derefString(ed.Path))

	card := cardinalityOf(ed.Min, ed.Max)
	node.Constraints.Cardinality = card
	node.Base = &ir.BaseConstraints{Cardinality: card.Clone()}

	node.Constraints.Types = typesOf(ed.Type)
	node.Constraints.Short = derefString(ed.Short)
	node.Constraints.Definition = derefString(ed.Definition)
	node.Constraints.Comment = derefString(ed.Comment)
	node.Constraints.Flags = ir.Flags{
		MustSupport: derefBool(ed.MustSupport),
		IsModifier:  derefBool(ed.IsModifier),
		IsSummary:   derefBool(ed.IsSummary),
	}
	node.Constraints.FixedValue = fixedValueOf(ed)
	node.Constraints.PatternValue = patternValueOf(ed)

	if ed.Binding != nil {
		binding := &ir.Binding{
			ValueSet:    derefString(ed.Binding.ValueSet),
			Description: derefString(ed.Binding.Description),
		}
		if ed.Binding.Strength != nil {
			binding.Strength = ir.BindingStrength(string(*ed.Binding.Strength))
		}
		node.Constraints.Binding = binding
		node.Base.BindingStrength = binding.Strength
	}

	if len(ed.Constraint) > 0 {
		node.Constraints.Invariants = make(map[string]ir.Invariant, len(ed.Constraint))
		for i := range ed.Constraint {
			con := &ed.Constraint[i]
			inv := ir.Invariant{
				Key:        derefString(con.Key),
				Human:      derefString(con.Human),
				Expression: derefString(con.Expression),
				Source:     derefString(con.Source),
			}
			if con.Severity != nil {
				inv.Severity = string(*con.Severity)
			}
			if inv.Key != "" {
				node.Constraints.Invariants[inv.Key] = inv
			}
		}
	}

	if ed.Slicing != nil {
		node.Slicing = slicingOf(ed.Slicing)
	}
	return node
}

// cardinalityOf converts the min/max pair. Max "*" or absent means
// unbounded.
func cardinalityOf(min *uint32, max *string) *ir.Cardinality {
	if min == nil && max == nil {
		return nil
	}
	card := &ir.Cardinality{}
	if min != nil {
		card.Min = *min
	}
	if max != nil && *max != "" && *max != "*" {
		if n, err := strconv.ParseUint(*max, 10, 32); err == nil {
			m := uint32(n)
			card.Max = &m
		}
	}
	return card
}

func typesOf(types []r4.ElementDefinitionType) []ir.TypeConstraint {
	if len(types) == 0 {
		return nil
	}
	out := make([]ir.TypeConstraint, 0, len(types))
	for i := range types {
		t := &types[i]
		tc := ir.TypeConstraint{Code: derefString(t.Code)}
		if len(t.Profile) > 0 {
			tc.Profiles = append([]string(nil), t.Profile...)
		}
		if len(t.TargetProfile) > 0 {
			tc.TargetProfiles = append([]string(nil), t.TargetProfile...)
		}
		out = append(out, tc)
	}
	return out
}

func slicingOf(slicing *r4.ElementDefinitionSlicing) *ir.SlicingDefinition {
	def := &ir.SlicingDefinition{
		Description: derefString(slicing.Description),
		Ordered:     derefBool(slicing.Ordered),
		Rules:       ir.RulesOpen,
	}
	if slicing.Rules != nil {
		def.Rules = ir.SlicingRules(string(*slicing.Rules))
	}
	for i := range slicing.Discriminator {
		d := &slicing.Discriminator[i]
		disc := ir.Discriminator{Path: derefString(d.Path)}
		if d.Type != nil {
			disc.Type = ir.DiscriminatorType(string(*d.Type))
		}
		def.Discriminators = append(def.Discriminators, disc)
	}
	return def
}

func kindOf(kind *r4.StructureDefinitionKind) ir.ResourceKind {
	if kind == nil {
		return ir.KindResource
	}
	return ir.ResourceKind(string(*kind))
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefBool(b *bool) bool {
	if b == nil {
		return false
	}
	return *b
}
