package validate

import (
	"context"
	"fmt"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/service"
)

// checkTerminology verifies every bound value set resolves. Unresolvable
// value sets are warnings: offline editing against private terminology
// is a normal workflow.
func checkTerminology(ctx context.Context, p *Profile, resolver service.TerminologyResolver) []fhirprofiler.Diagnostic {
	if resolver == nil {
		return nil
	}
	var ds []fhirprofiler.Diagnostic
	resolved := make(map[string]bool)

	for _, node := range p.Nodes() {
		binding := node.Constraints.Binding
		if binding == nil || binding.ValueSet == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			ds = append(ds, timeoutDiagnostic("terminology", err))
			return ds
		}
		ok, seen := resolved[binding.ValueSet]
		if !seen {
			info, err := resolver.ResolveValueSet(ctx, binding.ValueSet)
			if err != nil {
				ds = append(ds, timeoutDiagnostic("terminology", err))
				return ds
			}
			ok = info != nil
			resolved[binding.ValueSet] = ok
		}
		if !ok {
			ds = append(ds, fhirprofiler.Warning(fhirprofiler.CodeTermUnresolvableValueSet).
				Message(fmt.Sprintf("value set %q cannot be resolved", binding.ValueSet)).
				From(fhirprofiler.SourceTerminology).
				At(node.Path).
				Detail("value_set", binding.ValueSet).
				Build())
		}
	}
	return ds
}
