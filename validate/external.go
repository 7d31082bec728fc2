package validate

import (
	"context"

	fhirprofiler "github.com/gofhir/profiler"
)

// ExternalValidator runs a full conformance validation outside the
// editor core, typically by shelling out to a reference validator or
// calling a validation service.
type ExternalValidator interface {
	// Validate returns the external validator's findings. The error is
	// non-nil only when the validator itself could not run.
	Validate(ctx context.Context, p *Profile) ([]fhirprofiler.Diagnostic, error)
}

// ExternalValidatorFunc adapts a function to ExternalValidator.
type ExternalValidatorFunc func(ctx context.Context, p *Profile) ([]fhirprofiler.Diagnostic, error)

// Validate calls f.
func (f ExternalValidatorFunc) Validate(ctx context.Context, p *Profile) ([]fhirprofiler.Diagnostic, error) {
	return f(ctx, p)
}
