package validate

import (
	"fmt"
	"strings"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/ir"
	"github.com/gofhir/profiler/service"
)

// invariantRule checks element invariants: non-empty keys and
// expressions, tree-wide key uniqueness, and expression syntax. When a
// FHIRPath validator is wired, expressions are parsed; without one, a
// delimiter-balance check stands in.
type invariantRule struct {
	fhirpath service.FHIRPathValidator
}

func (invariantRule) Name() string { return "invariants" }

func (r invariantRule) Check(p *Profile) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic

	for _, node := range p.Nodes() {
		for _, key := range node.Constraints.InvariantKeys() {
			inv := node.Constraints.Invariants[key]

			if strings.TrimSpace(inv.Key) == "" {
				ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeInvariantEmptyKey).
					Message("invariant has an empty key").
					From(fhirprofiler.SourceFHIRPath).
					At(node.Path).
					Build())
			}
			if strings.TrimSpace(inv.Expression) == "" {
				ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeInvariantEmptyExpression).
					Message(fmt.Sprintf("invariant %q has an empty expression", inv.Key)).
					From(fhirprofiler.SourceFHIRPath).
					At(node.Path).
					Fix(&fhirprofiler.QuickFix{
						Kind:        fhirprofiler.FixRemoveInvariant,
						Title:       fmt.Sprintf("Remove invariant %q", inv.Key),
						ElementPath: node.Path,
						Params:      map[string]any{"key": inv.Key},
					}).
					Build())
				continue
			}
			ds = append(ds, r.checkExpression(node.Path, inv.Key, inv.Expression)...)
		}
	}

	// Key uniqueness is a whole-tree property; scoped runs skip it.
	if !p.IsPartial() {
		ds = append(ds, checkDuplicateKeys(p)...)
	}
	return ds
}

func (r invariantRule) checkExpression(path, key, expression string) []fhirprofiler.Diagnostic {
	if r.fhirpath != nil {
		if err := r.fhirpath.ValidateExpression(expression); err != nil {
			return []fhirprofiler.Diagnostic{
				fhirprofiler.Error(fhirprofiler.CodeInvariantInvalidExpression).
					Message(fmt.Sprintf("invariant %q does not parse: %v", key, err)).
					From(fhirprofiler.SourceFHIRPath).
					At(path).
					Detail("expression", expression).
					Build(),
			}
		}
		return nil
	}
	if err := service.CheckBalancedDelimiters(expression); err != nil {
		return []fhirprofiler.Diagnostic{
			fhirprofiler.Error(fhirprofiler.CodeInvariantUnbalancedDelimiters).
				Message(fmt.Sprintf("invariant %q has unbalanced delimiters: %v", key, err)).
				From(fhirprofiler.SourceFHIRPath).
				At(path).
				Detail("expression", expression).
				Build(),
		}
	}
	return nil
}

func checkDuplicateKeys(p *Profile) []fhirprofiler.Diagnostic {
	if p.Resource == nil || p.Resource.Root == nil {
		return nil
	}
	var ds []fhirprofiler.Diagnostic
	firstSeen := make(map[string]string)

	p.Resource.Root.Walk(func(node *ir.ElementNode) bool {
		for _, key := range node.Constraints.InvariantKeys() {
			if prev, dup := firstSeen[key]; dup {
				ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeInvariantDuplicateKey).
					Message(fmt.Sprintf("invariant key %q already used at %s", key, prev)).
					From(fhirprofiler.SourceFHIRPath).
					At(node.Path).
					Build())
				continue
			}
			firstSeen[key] = node.Path
		}
		return true
	})
	return ds
}
