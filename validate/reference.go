package validate

import (
	"context"
	"fmt"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/service"
)

// referenceCheck is one canonical URL to resolve, with the diagnostic
// to emit if it does not.
type referenceCheck struct {
	url  string
	path string
	code fhirprofiler.Code
	what string
}

// collectReferences gathers every canonical URL the profile depends on:
// the base definition, type profiles, and reference target profiles.
func collectReferences(p *Profile) []referenceCheck {
	var checks []referenceCheck
	if p.Resource == nil {
		return nil
	}
	if p.Resource.Base.URL != "" {
		checks = append(checks, referenceCheck{
			url:  p.Resource.Base.URL,
			path: p.Resource.Type(),
			code: fhirprofiler.CodeRefUnresolvableBase,
			what: "base definition",
		})
	}
	for _, node := range p.Nodes() {
		for _, tc := range node.Constraints.Types {
			for _, profile := range tc.Profiles {
				checks = append(checks, referenceCheck{
					url:  profile,
					path: node.Path,
					code: fhirprofiler.CodeRefUnresolvableProfile,
					what: "type profile",
				})
			}
			for _, target := range tc.TargetProfiles {
				checks = append(checks, referenceCheck{
					url:  target,
					path: node.Path,
					code: fhirprofiler.CodeRefUnresolvableTarget,
					what: "reference target profile",
				})
			}
		}
	}
	return checks
}

// checkReferences resolves every collected URL through the resolver.
// Duplicate URLs are resolved once.
func checkReferences(ctx context.Context, p *Profile, resolver service.URLResolver) []fhirprofiler.Diagnostic {
	if resolver == nil {
		return nil
	}
	var ds []fhirprofiler.Diagnostic
	resolved := make(map[string]bool)

	for _, check := range collectReferences(p) {
		if err := ctx.Err(); err != nil {
			ds = append(ds, timeoutDiagnostic("reference", err))
			return ds
		}
		ok, seen := resolved[check.url]
		if !seen {
			var err error
			ok, err = resolver.Resolve(ctx, check.url)
			if err != nil {
				ds = append(ds, timeoutDiagnostic("reference", err))
				return ds
			}
			resolved[check.url] = ok
		}
		if !ok {
			ds = append(ds, fhirprofiler.Error(check.code).
				Message(fmt.Sprintf("%s %q cannot be resolved", check.what, check.url)).
				From(fhirprofiler.SourceReference).
				At(check.path).
				Detail("url", check.url).
				Build())
		}
	}
	return ds
}

// timeoutDiagnostic reports an aborted async layer as a warning rather
// than failing the run: the structural result is still useful.
func timeoutDiagnostic(layer string, err error) fhirprofiler.Diagnostic {
	return fhirprofiler.Warning(fhirprofiler.CodeValidationTimeout).
		Message(fmt.Sprintf("%s validation did not complete: %v", layer, err)).
		From(fhirprofiler.SourceReference).
		Build()
}
