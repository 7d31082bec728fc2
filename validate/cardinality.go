package validate

import (
	"fmt"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/ir"
)

// cardinalityRule checks occurrence constraints: internal consistency,
// legality against the base, parent/child coherence, and slice sums.
type cardinalityRule struct{}

func (cardinalityRule) Name() string { return "cardinality" }

func (cardinalityRule) Check(p *Profile) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic
	for _, node := range p.Nodes() {
		ds = append(ds, checkNodeCardinality(p, node)...)
	}
	return ds
}

func checkNodeCardinality(p *Profile, node *ir.ElementNode) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic
	card := node.Constraints.Cardinality

	if card != nil && !card.IsValid() {
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeCardMinGreaterThanMax).
			Message(fmt.Sprintf("minimum %d exceeds maximum %d", card.Min, *card.Max)).
			At(node.Path).
			Fix(&fhirprofiler.QuickFix{
				Kind:        fhirprofiler.FixSetCardinality,
				Title:       fmt.Sprintf("Set cardinality to %d..%d", card.Min, card.Min),
				ElementPath: node.Path,
				Params:      map[string]any{"min": card.Min, "max": card.Min},
			}).
			Build())
	}

	if card != nil && node.Base != nil && node.Base.Cardinality != nil &&
		!card.SatisfiesBase(node.Base.Cardinality) {
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeCardExceedsBase).
			Message(fmt.Sprintf("cardinality %s loosens the base cardinality %s",
				card.String(), node.Base.Cardinality.String())).
			At(node.Path).
			Detail("base", node.Base.Cardinality.String()).
			Build())
	}

	if card != nil && card.Min >= 1 {
		if parent := p.Parent(node); parent != nil {
			pc := parent.Constraints.Cardinality
			if pc != nil && pc.Min == 0 {
				ds = append(ds, fhirprofiler.Warning(fhirprofiler.CodeCardRequiredUnderOptional).
					Message(fmt.Sprintf("required element under optional parent %s; the requirement only applies when the parent is present", parent.Path)).
					At(node.Path).
					Build())
			}
		}
	}

	ds = append(ds, checkSliceCardinality(node)...)
	return ds
}

// checkSliceCardinality verifies slice minimums fit under the parent's
// maximum, and that slicing is not declared on a singleton.
func checkSliceCardinality(node *ir.ElementNode) []fhirprofiler.Diagnostic {
	if node.Slicing == nil {
		return nil
	}
	var ds []fhirprofiler.Diagnostic
	card := node.Constraints.Cardinality

	if card != nil && card.Max != nil && *card.Max == 1 {
		ds = append(ds, fhirprofiler.Warning(fhirprofiler.CodeCardSlicingOnSingleton).
			Message("slicing declared on an element with maximum cardinality 1").
			At(node.Path).
			Build())
	}

	if card == nil || card.Max == nil || len(node.Slices) == 0 {
		return ds
	}
	var minSum uint32
	for _, s := range node.Slices {
		if s.Element == nil {
			continue
		}
		if sc := s.Element.Constraints.Cardinality; sc != nil {
			minSum += sc.Min
		}
	}
	if minSum > *card.Max {
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeCardSliceSumExceedsMax).
			Message(fmt.Sprintf("slice minimums sum to %d, exceeding the element maximum %d", minSum, *card.Max)).
			At(node.Path).
			Detail("min_sum", minSum).
			Detail("max", *card.Max).
			Build())
	}
	return ds
}
