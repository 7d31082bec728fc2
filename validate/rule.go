package validate

import (
	fhirprofiler "github.com/gofhir/profiler"
)

// Rule is one structural validation rule. Rules inspect the subject and
// report findings; they never mutate the tree and never fail.
type Rule interface {
	// Name identifies the rule for metrics and debugging.
	Name() string

	// Check returns the rule's findings on the subject.
	Check(p *Profile) []fhirprofiler.Diagnostic
}
