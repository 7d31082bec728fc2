package validate

import (
	"fmt"
	"net/url"
	"strings"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/ir"
)

// bindableTypes are the type codes a terminology binding may attach to.
var bindableTypes = map[string]bool{
	"code":            true,
	"Coding":          true,
	"CodeableConcept": true,
	"Quantity":        true,
	"string":          true,
	"uri":             true,
	"url":             true,
	"canonical":       true,
}

// bindingRule checks terminology bindings: value-set URL presence and
// shape, binding strength, and bindability of the element's types.
type bindingRule struct{}

func (bindingRule) Name() string { return "binding" }

func (bindingRule) Check(p *Profile) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic
	for _, node := range p.Nodes() {
		ds = append(ds, checkNodeBinding(node)...)
	}
	return ds
}

func checkNodeBinding(node *ir.ElementNode) []fhirprofiler.Diagnostic {
	binding := node.Constraints.Binding
	if binding == nil {
		return nil
	}
	var ds []fhirprofiler.Diagnostic

	switch {
	case strings.TrimSpace(binding.ValueSet) == "":
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeBindingEmptyValueSet).
			Message("binding has an empty value-set URL").
			At(node.Path).
			Fix(&fhirprofiler.QuickFix{
				Kind:        fhirprofiler.FixRemoveBinding,
				Title:       "Remove the binding",
				ElementPath: node.Path,
			}).
			Build())
	case !isValueSetURL(binding.ValueSet):
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeBindingInvalidValueSet).
			Message(fmt.Sprintf("value-set URL %q is not a well-formed canonical URL", binding.ValueSet)).
			At(node.Path).
			Build())
	}

	if !binding.Strength.IsValid() {
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeBindingUnknownStrength).
			Message(fmt.Sprintf("binding strength %q is not a known strength", binding.Strength)).
			At(node.Path).
			Build())
	}

	if len(node.Constraints.Types) > 0 && !hasBindableType(node.Constraints.Types) {
		ds = append(ds, fhirprofiler.Warning(fhirprofiler.CodeBindingNonBindableType).
			Message("binding attached to an element with no bindable type").
			At(node.Path).
			Build())
	}
	return ds
}

func hasBindableType(types []ir.TypeConstraint) bool {
	for _, t := range types {
		if bindableTypes[t.Code] {
			return true
		}
	}
	return false
}

// isValueSetURL accepts a canonical URL with an optional |version suffix.
func isValueSetURL(raw string) bool {
	if i := strings.Index(raw, "|"); i >= 0 {
		raw = raw[:i]
	}
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
