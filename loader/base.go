package loader

import (
	"fmt"

	"github.com/gofhir/profiler/ir"
)

// BaseTree returns a minimal built-in element tree for a core resource
// type, for offline editing without loaded definition packages. Only
// the commonly profiled elements are present; loading the real base
// StructureDefinition gives the full tree.
func BaseTree(resourceType string) (*ir.ProfiledResource, error) {
	switch resourceType {
	case "Patient":
		return patientBase(), nil
	case "Observation":
		return observationBase(), nil
	}
	return nil, fmt.Errorf("loader: no built-in base tree for %q", resourceType)
}

// baseElement creates an inherited element whose current constraints
// match its base constraints.
func baseElement(path string, min uint32, max *uint32, typeCodes ...string) *ir.ElementNode {
	node := ir.NewElementNode(path)
	card := &ir.Cardinality{Min: min, Max: max}
	node.Constraints.Cardinality = card
	node.Base = &ir.BaseConstraints{Cardinality: card.Clone()}
	for _, code := range typeCodes {
		node.Constraints.Types = append(node.Constraints.Types, ir.TypeConstraint{Code: code})
	}
	return node
}

func bound(n uint32) *uint32 { return &n }

func patientBase() *ir.ProfiledResource {
	root := baseElement("Patient", 0, nil)

	identifier := baseElement("Patient.identifier", 0, nil, "Identifier")
	active := baseElement("Patient.active", 0, bound(1), "boolean")
	name := baseElement("Patient.name", 0, nil, "HumanName")
	telecom := baseElement("Patient.telecom", 0, nil, "ContactPoint")

	gender := baseElement("Patient.gender", 0, bound(1), "code")
	gender.Constraints.Binding = &ir.Binding{
		Strength: ir.BindingRequired,
		ValueSet: "http://hl7.org/fhir/ValueSet/administrative-gender",
	}
	gender.Base.BindingStrength = ir.BindingRequired

	birthDate := baseElement("Patient.birthDate", 0, bound(1), "date")
	address := baseElement("Patient.address", 0, nil, "Address")

	maritalStatus := baseElement("Patient.maritalStatus", 0, bound(1), "CodeableConcept")
	maritalStatus.Constraints.Binding = &ir.Binding{
		Strength: ir.BindingExtensible,
		ValueSet: "http://hl7.org/fhir/ValueSet/marital-status",
	}
	maritalStatus.Base.BindingStrength = ir.BindingExtensible

	contact := baseElement("Patient.contact", 0, nil, "BackboneElement")
	contact.AddChild(baseElement("Patient.contact.relationship", 0, nil, "CodeableConcept"))
	contact.AddChild(baseElement("Patient.contact.name", 0, bound(1), "HumanName"))
	contact.AddChild(baseElement("Patient.contact.telecom", 0, nil, "ContactPoint"))

	for _, c := range []*ir.ElementNode{
		identifier, active, name, telecom, gender, birthDate, address, maritalStatus, contact,
	} {
		root.AddChild(c)
	}

	return ir.NewProfiledResource(root, ir.BaseReference{
		URL:  "http://hl7.org/fhir/StructureDefinition/Patient",
		Name: "Patient",
	}, ir.KindResource)
}

func observationBase() *ir.ProfiledResource {
	root := baseElement("Observation", 0, nil)

	identifier := baseElement("Observation.identifier", 0, nil, "Identifier")

	status := baseElement("Observation.status", 1, bound(1), "code")
	status.Constraints.Binding = &ir.Binding{
		Strength: ir.BindingRequired,
		ValueSet: "http://hl7.org/fhir/ValueSet/observation-status",
	}
	status.Base.BindingStrength = ir.BindingRequired

	category := baseElement("Observation.category", 0, nil, "CodeableConcept")

	code := baseElement("Observation.code", 1, bound(1), "CodeableConcept")
	code.Constraints.Binding = &ir.Binding{
		Strength: ir.BindingExample,
		ValueSet: "http://hl7.org/fhir/ValueSet/observation-codes",
	}
	code.Base.BindingStrength = ir.BindingExample

	subject := baseElement("Observation.subject", 0, bound(1), "Reference")
	subject.Constraints.Types[0].TargetProfiles = []string{
		"http://hl7.org/fhir/StructureDefinition/Patient",
		"http://hl7.org/fhir/StructureDefinition/Group",
	}

	effective := baseElement("Observation.effective[x]", 0, bound(1), "dateTime", "Period")
	value := baseElement("Observation.value[x]", 0, bound(1),
		"Quantity", "CodeableConcept", "string", "boolean")
	component := baseElement("Observation.component", 0, nil, "BackboneElement")
	component.AddChild(baseElement("Observation.component.code", 1, bound(1), "CodeableConcept"))
	component.AddChild(baseElement("Observation.component.value[x]", 0, bound(1), "Quantity", "string"))

	for _, c := range []*ir.ElementNode{
		identifier, status, category, code, subject, effective, value, component,
	} {
		root.AddChild(c)
	}

	return ir.NewProfiledResource(root, ir.BaseReference{
		URL:  "http://hl7.org/fhir/StructureDefinition/Observation",
		Name: "Observation",
	}, ir.KindResource)
}
