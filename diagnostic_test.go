package fhirprofiler

import "testing"

func TestDiagnosticBuilder(t *testing.T) {
	d := Error(CodeCardMinGreaterThanMax).
		Message("min 2 exceeds max 1").
		At("Patient.name").
		From(SourceIR).
		Detail("min", uint32(2)).
		Detail("max", uint32(1)).
		Fix(&QuickFix{
			Kind:        FixSetCardinality,
			Title:       "Set cardinality to 2..2",
			ElementPath: "Patient.name",
			Params:      map[string]any{"min": uint32(2), "max": uint32(2)},
		}).
		Build()

	if d.Severity != SeverityError || d.Code != CodeCardMinGreaterThanMax {
		t.Errorf("severity/code = %q/%q", d.Severity, d.Code)
	}
	if d.ElementPath != "Patient.name" {
		t.Errorf("ElementPath = %q", d.ElementPath)
	}
	if d.Details["min"] != uint32(2) || d.Details["max"] != uint32(1) {
		t.Errorf("Details = %v", d.Details)
	}
	if d.QuickFix == nil || d.QuickFix.Kind != FixSetCardinality {
		t.Error("quick fix missing or wrong kind")
	}
	if !d.IsError() || d.IsWarning() {
		t.Error("severity predicates disagree")
	}
}

func TestDiagnosticDefaults(t *testing.T) {
	d := Warning(CodeMetaInvalidName).Message("w").Build()
	if d.Source != SourceIR {
		t.Errorf("default Source = %q, want ir", d.Source)
	}
	if d.QuickFix != nil || d.Details != nil {
		t.Error("quick fix and details should default to nil")
	}
	if !d.IsWarning() {
		t.Error("IsWarning() should be true")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Error(CodeMetaMissingURL).Message("profile has no canonical URL").At("Patient").Build()
	want := "error [META_001]: profile has no canonical URL at Patient"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	noPath := Info(CodeSliceWithoutSlicing).Message("m").Build()
	if got := noPath.String(); got != "information [SLICE_007]: m" {
		t.Errorf("String() = %q", got)
	}
}

func TestSeverityRank(t *testing.T) {
	if SeverityError.rank() >= SeverityWarning.rank() {
		t.Error("errors should rank before warnings")
	}
	if SeverityWarning.rank() >= SeverityInfo.rank() {
		t.Error("warnings should rank before info")
	}
	if Severity("bogus").rank() <= SeverityInfo.rank() {
		t.Error("unknown severities should rank last")
	}
}
