package validate

import (
	"fmt"
	"strings"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/ir"
)

// knownTypes lists the FHIR R4 data type codes an element may be
// constrained to: primitives, general-purpose complex types, and the
// special types.
var knownTypes = map[string]bool{
	// Primitives
	"base64Binary": true, "boolean": true, "canonical": true,
	"code": true, "date": true, "dateTime": true, "decimal": true,
	"id": true, "instant": true, "integer": true, "markdown": true,
	"oid": true, "positiveInt": true, "string": true, "time": true,
	"unsignedInt": true, "uri": true, "url": true, "uuid": true,
	"xhtml": true,

	// Complex
	"Address": true, "Age": true, "Annotation": true, "Attachment": true,
	"CodeableConcept": true, "Coding": true, "ContactDetail": true,
	"ContactPoint": true, "Contributor": true, "Count": true,
	"DataRequirement": true, "Distance": true, "Dosage": true,
	"Duration": true, "Expression": true, "Extension": true,
	"HumanName": true, "Identifier": true, "Money": true,
	"ParameterDefinition": true, "Period": true, "Quantity": true,
	"Range": true, "Ratio": true, "RelatedArtifact": true,
	"SampledData": true, "Signature": true, "Timing": true,
	"TriggerDefinition": true, "UsageContext": true,

	// Special
	"BackboneElement": true, "Element": true, "Meta": true,
	"Narrative": true, "Reference": true, "Resource": true,
}

// typeRule checks type constraints: every code is a known FHIR type,
// no code repeats, and Reference target profiles are well formed.
type typeRule struct{}

func (typeRule) Name() string { return "types" }

func (typeRule) Check(p *Profile) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic
	for _, node := range p.Nodes() {
		ds = append(ds, checkNodeTypes(node)...)
	}
	return ds
}

func checkNodeTypes(node *ir.ElementNode) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic
	seen := make(map[string]bool, len(node.Constraints.Types))

	for _, tc := range node.Constraints.Types {
		if !knownTypes[tc.Code] {
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeTypeUnknown).
				Message(fmt.Sprintf("type code %q is not a known FHIR type", tc.Code)).
				At(node.Path).
				Build())
		}
		if seen[tc.Code] {
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeTypeDuplicate).
				Message(fmt.Sprintf("type code %q appears more than once", tc.Code)).
				At(node.Path).
				Build())
		}
		seen[tc.Code] = true

		if tc.Code == "Reference" {
			for _, target := range tc.TargetProfiles {
				if !isCanonicalShape(target) {
					ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeTypeInvalidTargetProfile).
						Message(fmt.Sprintf("reference target profile %q is not a canonical URL", target)).
						At(node.Path).
						Build())
				}
			}
		}
	}
	return ds
}

func isCanonicalShape(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
