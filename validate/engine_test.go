package validate

import (
	"context"
	"testing"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/ir"
)

func newTestProfile(t *testing.T) *Profile {
	t.Helper()

	root := ir.NewElementNode("Patient")

	name := ir.NewElementNode("Patient.name")
	name.Constraints.Cardinality = ir.NewUnboundedCardinality(0)
	name.Constraints.Types = []ir.TypeConstraint{{Code: "HumanName"}}
	name.Base = &ir.BaseConstraints{Cardinality: ir.NewUnboundedCardinality(0)}

	gender := ir.NewElementNode("Patient.gender")
	gender.Constraints.Cardinality = ir.NewCardinality(0, 1)
	gender.Constraints.Types = []ir.TypeConstraint{{Code: "code"}}
	gender.Constraints.Binding = &ir.Binding{
		Strength: ir.BindingRequired,
		ValueSet: "http://hl7.org/fhir/ValueSet/administrative-gender",
	}

	identifier := ir.NewElementNode("Patient.identifier")
	identifier.Constraints.Cardinality = ir.NewUnboundedCardinality(0)
	identifier.Constraints.Types = []ir.TypeConstraint{{Code: "Identifier"}}

	root.AddChild(name)
	root.AddChild(gender)
	root.AddChild(identifier)

	resource := ir.NewProfiledResource(root, ir.BaseReference{
		URL: "http://hl7.org/fhir/StructureDefinition/Patient",
	}, ir.KindResource)

	return NewProfile("http://example.org/fhir/StructureDefinition/my-patient",
		"MyPatient", "draft", resource)
}

func findDiagnostic(ds []fhirprofiler.Diagnostic, code fhirprofiler.Code) *fhirprofiler.Diagnostic {
	for i := range ds {
		if ds[i].Code == code {
			return &ds[i]
		}
	}
	return nil
}

func TestValidateCleanProfile(t *testing.T) {
	engine := NewEngine()
	result := engine.Validate(context.Background(), newTestProfile(t))

	if !result.Valid {
		t.Fatalf("expected valid profile, got diagnostics: %v", result.Diagnostics)
	}
	if result.Level != fhirprofiler.LevelStructural {
		t.Errorf("Level = %v, want structural", result.Level)
	}
	if result.Incremental {
		t.Error("full run should not be marked incremental")
	}
}

func TestCardinalityMinGreaterThanMax(t *testing.T) {
	p := newTestProfile(t)
	node := p.Resource.FindByPath("Patient.name")
	node.Constraints.Cardinality = &ir.Cardinality{Min: 2, Max: uptr(1)}

	result := NewEngine().Validate(context.Background(), p)
	d := findDiagnostic(result.Diagnostics, fhirprofiler.CodeCardMinGreaterThanMax)
	if d == nil {
		t.Fatalf("expected CARD_001, got %v", result.Diagnostics)
	}
	if d.Severity != fhirprofiler.SeverityError {
		t.Errorf("severity = %q, want error", d.Severity)
	}
	if d.ElementPath != "Patient.name" {
		t.Errorf("path = %q, want Patient.name", d.ElementPath)
	}
	if d.QuickFix == nil || d.QuickFix.Kind != fhirprofiler.FixSetCardinality {
		t.Fatal("expected a set-cardinality quick fix")
	}
	if d.QuickFix.Params["min"] != uint32(2) || d.QuickFix.Params["max"] != uint32(2) {
		t.Errorf("quick fix params = %v, want min..min", d.QuickFix.Params)
	}
	if result.Valid {
		t.Error("result should be invalid")
	}
}

func TestCardinalityExceedsBase(t *testing.T) {
	p := newTestProfile(t)
	node := p.Resource.FindByPath("Patient.gender")
	node.Base = &ir.BaseConstraints{Cardinality: ir.NewCardinality(0, 1)}
	node.Constraints.Cardinality = ir.NewUnboundedCardinality(0)

	result := NewEngine().Validate(context.Background(), p)
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeCardExceedsBase) == nil {
		t.Fatalf("expected CARD_002, got %v", result.Diagnostics)
	}
}

func TestRequiredUnderOptionalIsWarning(t *testing.T) {
	p := newTestProfile(t)
	name := p.Resource.FindByPath("Patient.name")
	name.Constraints.Cardinality = ir.NewCardinality(0, 1)
	family := ir.NewElementNode("Patient.name.family")
	family.Constraints.Cardinality = ir.NewCardinality(1, 1)
	name.AddChild(family)

	result := NewEngine().Validate(context.Background(), p)
	d := findDiagnostic(result.Diagnostics, fhirprofiler.CodeCardRequiredUnderOptional)
	if d == nil {
		t.Fatalf("expected CARD_003, got %v", result.Diagnostics)
	}
	if d.Severity != fhirprofiler.SeverityWarning {
		t.Errorf("severity = %q, want warning", d.Severity)
	}
	if !result.Valid {
		t.Error("warnings alone should leave the profile valid")
	}
}

func TestSliceMinSumExceedsMax(t *testing.T) {
	p := newTestProfile(t)
	identifier := p.Resource.FindByPath("Patient.identifier")
	identifier.Constraints.Cardinality = ir.NewCardinality(0, 2)
	identifier.Slicing = &ir.SlicingDefinition{
		Discriminators: []ir.Discriminator{{Type: ir.DiscriminatorValue, Path: "system"}},
		Rules:          ir.RulesOpen,
	}
	for _, name := range []string{"mrn", "ssn", "dl"} {
		slice := ir.NewSliceNode(name, identifier.Path)
		slice.Element.Constraints.Cardinality = ir.NewCardinality(1, 1)
		if err := identifier.AddSlice(slice); err != nil {
			t.Fatal(err)
		}
	}

	result := NewEngine().Validate(context.Background(), p)
	d := findDiagnostic(result.Diagnostics, fhirprofiler.CodeCardSliceSumExceedsMax)
	if d == nil {
		t.Fatalf("expected CARD_004, got %v", result.Diagnostics)
	}
	if d.Details["min_sum"] != uint32(3) {
		t.Errorf("min_sum detail = %v, want 3", d.Details["min_sum"])
	}
}

func TestEmptyValueSetGetsRemoveBindingFix(t *testing.T) {
	p := newTestProfile(t)
	gender := p.Resource.FindByPath("Patient.gender")
	gender.Constraints.Binding = &ir.Binding{Strength: ir.BindingRequired, ValueSet: ""}

	result := NewEngine().Validate(context.Background(), p)
	d := findDiagnostic(result.Diagnostics, fhirprofiler.CodeBindingEmptyValueSet)
	if d == nil {
		t.Fatalf("expected BIND_001, got %v", result.Diagnostics)
	}
	if d.QuickFix == nil || d.QuickFix.Kind != fhirprofiler.FixRemoveBinding {
		t.Error("expected a remove-binding quick fix")
	}
}

func TestDiscriminatorPathCodes(t *testing.T) {
	tests := []struct {
		name string
		path string
		want fhirprofiler.Code
	}{
		{"empty path", "", fhirprofiler.CodeSliceEmptyDiscriminatorPath},
		{"malformed path", "system..code", fhirprofiler.CodeSliceInvalidDiscriminatorPath},
		{"leading digit", "1system", fhirprofiler.CodeSliceInvalidDiscriminatorPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile(t)
			identifier := p.Resource.FindByPath("Patient.identifier")
			identifier.Slicing = &ir.SlicingDefinition{
				Discriminators: []ir.Discriminator{{Type: ir.DiscriminatorValue, Path: tt.path}},
				Rules:          ir.RulesOpen,
			}

			result := NewEngine().Validate(context.Background(), p)
			if findDiagnostic(result.Diagnostics, tt.want) == nil {
				t.Errorf("expected %s for path %q, got %v", tt.want, tt.path, result.Diagnostics)
			}
		})
	}
}

func TestValidDiscriminatorPaths(t *testing.T) {
	for _, path := range []string{"system", "code.coding.system", "$this", "resolve().identifier", "value[x]", "ofType(Quantity)"} {
		if !isValidDiscriminatorPath(path) {
			t.Errorf("isValidDiscriminatorPath(%q) = false, want true", path)
		}
	}
}

func TestDuplicateInvariantKeys(t *testing.T) {
	p := newTestProfile(t)
	name := p.Resource.FindByPath("Patient.name")
	gender := p.Resource.FindByPath("Patient.gender")
	name.Constraints.Invariants = map[string]ir.Invariant{
		"inv-1": {Key: "inv-1", Expression: "family.exists()"},
	}
	gender.Constraints.Invariants = map[string]ir.Invariant{
		"inv-1": {Key: "inv-1", Expression: "exists()"},
	}

	result := NewEngine().Validate(context.Background(), p)
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeInvariantDuplicateKey) == nil {
		t.Fatalf("expected INV_003, got %v", result.Diagnostics)
	}
}

func TestUnknownTypeCode(t *testing.T) {
	p := newTestProfile(t)
	name := p.Resource.FindByPath("Patient.name")
	name.Constraints.Types = []ir.TypeConstraint{{Code: "HumanNameX"}}

	result := NewEngine().Validate(context.Background(), p)
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeTypeUnknown) == nil {
		t.Fatalf("expected TYPE_001, got %v", result.Diagnostics)
	}
}

func TestMetadataRules(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *Profile)
		want    fhirprofiler.Code
		isError bool
	}{
		{"missing url", func(p *Profile) { p.URL = "" }, fhirprofiler.CodeMetaMissingURL, true},
		{"malformed url", func(p *Profile) { p.URL = "not a url" }, fhirprofiler.CodeMetaInvalidURL, true},
		{"missing name", func(p *Profile) { p.Name = "" }, fhirprofiler.CodeMetaMissingName, true},
		{"lowercase name", func(p *Profile) { p.Name = "myPatient" }, fhirprofiler.CodeMetaInvalidName, false},
		{"bad status", func(p *Profile) { p.Status = "published" }, fhirprofiler.CodeMetaInvalidStatus, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProfile(t)
			tt.mutate(p)
			result := NewEngine().Validate(context.Background(), p)
			d := findDiagnostic(result.Diagnostics, tt.want)
			if d == nil {
				t.Fatalf("expected %s, got %v", tt.want, result.Diagnostics)
			}
			if d.IsError() != tt.isError {
				t.Errorf("IsError() = %v, want %v", d.IsError(), tt.isError)
			}
		})
	}
}

func TestReferenceLayer(t *testing.T) {
	p := newTestProfile(t)
	name := p.Resource.FindByPath("Patient.name")
	name.Constraints.Types = []ir.TypeConstraint{{
		Code:     "HumanName",
		Profiles: []string{"urn:oid:1.2.3"},
	}}

	engine := NewEngine(WithOptions(fhirprofiler.WithReferences(true)))
	result := engine.Validate(context.Background(), p)

	if result.Level != fhirprofiler.LevelReferences {
		t.Errorf("Level = %v, want references", result.Level)
	}
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeRefUnresolvableProfile) == nil {
		t.Fatalf("expected REF_002 for urn:oid profile, got %v", result.Diagnostics)
	}
}

func TestTerminologyLayer(t *testing.T) {
	p := newTestProfile(t)
	gender := p.Resource.FindByPath("Patient.gender")
	gender.Constraints.Binding.ValueSet = "http://example.org/fhir/ValueSet/private"

	engine := NewEngine(WithOptions(fhirprofiler.WithTerminology(true)))
	result := engine.Validate(context.Background(), p)

	if result.Level != fhirprofiler.LevelTerminology {
		t.Errorf("Level = %v, want terminology", result.Level)
	}
	d := findDiagnostic(result.Diagnostics, fhirprofiler.CodeTermUnresolvableValueSet)
	if d == nil {
		t.Fatalf("expected TERM_001, got %v", result.Diagnostics)
	}
	if d.Severity != fhirprofiler.SeverityWarning {
		t.Errorf("severity = %q, want warning", d.Severity)
	}
}

func TestFailFastSkipsAsyncLayers(t *testing.T) {
	p := newTestProfile(t)
	p.URL = "" // structural error

	engine := NewEngine(WithOptions(
		fhirprofiler.WithReferences(true),
		fhirprofiler.WithFailFast(true),
	))
	result := engine.Validate(context.Background(), p)

	if result.Level != fhirprofiler.LevelStructural {
		t.Errorf("Level = %v, want structural (async layers skipped)", result.Level)
	}
}

func TestFailFastStopsAtFirstFailingLayer(t *testing.T) {
	p := newTestProfile(t)
	name := p.Resource.FindByPath("Patient.name")
	name.Constraints.Types = []ir.TypeConstraint{{
		Code:     "HumanName",
		Profiles: []string{"urn:oid:1.2.3"}, // reference error
	}}
	gender := p.Resource.FindByPath("Patient.gender")
	gender.Constraints.Binding.ValueSet = "http://example.org/fhir/ValueSet/private" // terminology warning

	externalRan := false
	engine := NewEngine(
		WithOptions(
			fhirprofiler.WithReferences(true),
			fhirprofiler.WithTerminology(true),
			fhirprofiler.WithExternalValidation(true),
			fhirprofiler.WithFailFast(true),
		),
		WithExternalValidator(ExternalValidatorFunc(func(context.Context, *Profile) ([]fhirprofiler.Diagnostic, error) {
			externalRan = true
			return nil, nil
		})),
	)
	result := engine.Validate(context.Background(), p)

	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeRefUnresolvableProfile) == nil {
		t.Fatalf("expected REF_002, got %v", result.Diagnostics)
	}
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeTermUnresolvableValueSet) != nil {
		t.Error("terminology findings should not be merged after reference errors")
	}
	if result.Level != fhirprofiler.LevelReferences {
		t.Errorf("Level = %v, want references", result.Level)
	}
	if externalRan {
		t.Error("external validator should not run after reference errors")
	}
}

func TestIncrementalScopesToSubtree(t *testing.T) {
	p := newTestProfile(t)
	p.URL = "" // metadata error, but metadata is out of scope for partial runs
	gender := p.Resource.FindByPath("Patient.gender")
	gender.Constraints.Cardinality = &ir.Cardinality{Min: 2, Max: uptr(1)}

	engine := NewEngine()
	result := engine.ValidateIncremental(context.Background(), p, []string{"Patient.gender"})

	if !result.Incremental {
		t.Fatal("expected an incremental result")
	}
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeCardMinGreaterThanMax) == nil {
		t.Error("expected CARD_001 from the scoped subtree")
	}
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeMetaMissingURL) != nil {
		t.Error("metadata rules should not run on scoped subjects")
	}
}

func TestIncrementalFallsBackToFull(t *testing.T) {
	p := newTestProfile(t)
	p.URL = ""

	engine := NewEngine()

	// Root path forces a full run.
	result := engine.ValidateIncremental(context.Background(), p, []string{"Patient"})
	if result.Incremental {
		t.Error("root-scoped run should fall back to full")
	}
	if findDiagnostic(result.Diagnostics, fhirprofiler.CodeMetaMissingURL) == nil {
		t.Error("full run should include metadata diagnostics")
	}

	// No paths also force a full run.
	result = engine.ValidateIncremental(context.Background(), p, nil)
	if result.Incremental {
		t.Error("empty change set should fall back to full")
	}
}

func TestMergeLevels(t *testing.T) {
	if got := fhirprofiler.MergeLevels(fhirprofiler.LevelStructural, fhirprofiler.LevelTerminology); got != fhirprofiler.LevelTerminology {
		t.Errorf("MergeLevels = %v, want terminology", got)
	}
	if got := fhirprofiler.MergeLevels(fhirprofiler.LevelFull, fhirprofiler.LevelNone); got != fhirprofiler.LevelFull {
		t.Errorf("MergeLevels = %v, want full", got)
	}
}

func TestExternalValidatorFindings(t *testing.T) {
	p := newTestProfile(t)
	external := ExternalValidatorFunc(func(context.Context, *Profile) ([]fhirprofiler.Diagnostic, error) {
		return []fhirprofiler.Diagnostic{
			fhirprofiler.Error(fhirprofiler.CodeExternalValidator).
				Message("constraint failure").
				From(fhirprofiler.SourceExternal).
				Build(),
		}, nil
	})

	engine := NewEngine(
		WithOptions(fhirprofiler.WithExternalValidation(true)),
		WithExternalValidator(external),
	)
	result := engine.Validate(context.Background(), p)

	if result.Level != fhirprofiler.LevelFull {
		t.Errorf("Level = %v, want full", result.Level)
	}
	if result.Valid {
		t.Error("external error should invalidate the result")
	}
}

func uptr(v uint32) *uint32 { return &v }
