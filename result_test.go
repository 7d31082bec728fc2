package fhirprofiler

import (
	"testing"
	"time"
)

func TestResultAddTracksValidity(t *testing.T) {
	r := NewResult()
	if !r.Valid || r.Level != LevelNone {
		t.Fatal("fresh result should be valid at level none")
	}

	r.Add(Warning(CodeCardRequiredUnderOptional).Message("w").Build())
	if !r.Valid {
		t.Error("warnings must not invalidate the result")
	}

	r.Add(Error(CodeCardMinGreaterThanMax).Message("e").Build())
	if r.Valid {
		t.Error("errors must invalidate the result")
	}
	if !r.HasErrors() {
		t.Error("HasErrors() should be true")
	}
}

func TestResultCounts(t *testing.T) {
	r := NewResult()
	r.AddAll([]Diagnostic{
		Error(CodeMetaMissingURL).Message("e1").Build(),
		Error(CodeMetaMissingName).Message("e2").Build(),
		Warning(CodeMetaInvalidName).Message("w1").Build(),
		Info(CodeSliceWithoutSlicing).Message("i1").Build(),
	})

	if r.ErrorCount() != 2 || r.WarningCount() != 1 || r.InfoCount() != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1",
			r.ErrorCount(), r.WarningCount(), r.InfoCount())
	}

	s := r.Summary()
	if s.Valid || s.Errors != 2 || s.Warnings != 1 || s.Info != 1 {
		t.Errorf("Summary() = %+v", s)
	}
}

func TestResultMerge(t *testing.T) {
	a := NewResult()
	a.Level = LevelStructural
	a.Add(Warning(CodeMetaInvalidName).Message("w").Build())

	b := NewResult()
	b.Level = LevelTerminology
	b.Add(Error(CodeTermUnresolvableValueSet).Message("e").Build())

	a.Merge(b)
	if a.Valid {
		t.Error("merging an invalid result should invalidate")
	}
	if a.Level != LevelTerminology {
		t.Errorf("Level = %v, want terminology", a.Level)
	}
	if len(a.Diagnostics) != 2 {
		t.Errorf("len(Diagnostics) = %d, want 2", len(a.Diagnostics))
	}

	a.Merge(nil) // no-op
	if len(a.Diagnostics) != 2 {
		t.Error("merging nil should not change the result")
	}
}

func TestSortedBySeverity(t *testing.T) {
	r := NewResult()
	r.AddAll([]Diagnostic{
		Info(CodeSliceWithoutSlicing).Message("first info").Build(),
		Error(CodeMetaMissingURL).Message("first error").Build(),
		Warning(CodeMetaInvalidName).Message("warning").Build(),
		Error(CodeMetaMissingName).Message("second error").Build(),
	})

	sorted := r.SortedBySeverity()
	wantSeverities := []Severity{SeverityError, SeverityError, SeverityWarning, SeverityInfo}
	for i, want := range wantSeverities {
		if sorted[i].Severity != want {
			t.Errorf("sorted[%d].Severity = %q, want %q", i, sorted[i].Severity, want)
		}
	}

	// Stable: equal severities keep discovery order.
	if sorted[0].Message != "first error" || sorted[1].Message != "second error" {
		t.Error("sort should be stable within a severity")
	}

	// The receiver's order is untouched.
	if r.Diagnostics[0].Severity != SeverityInfo {
		t.Error("SortedBySeverity must not reorder the receiver")
	}
}

func TestLevelString(t *testing.T) {
	tests := []struct {
		level ValidationLevel
		want  string
	}{
		{LevelNone, "none"},
		{LevelStructural, "structural"},
		{LevelReferences, "references"},
		{LevelTerminology, "terminology"},
		{LevelFull, "full"},
		{ValidationLevel(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestMergeLevelsOrder(t *testing.T) {
	if MergeLevels(LevelStructural, LevelFull) != LevelFull {
		t.Error("MergeLevels should return the deeper level")
	}
	if MergeLevels(LevelReferences, LevelNone) != LevelReferences {
		t.Error("MergeLevels should be commutative")
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.RecordValidation(10*time.Millisecond, true)
	m.RecordValidation(30*time.Millisecond, false)
	if m.Validations() != 2 {
		t.Errorf("Validations() = %d, want 2", m.Validations())
	}
	if m.InvalidRuns() != 1 {
		t.Errorf("InvalidRuns() = %d, want 1", m.InvalidRuns())
	}
	if m.AverageDuration() != 20*time.Millisecond {
		t.Errorf("AverageDuration() = %v, want 20ms", m.AverageDuration())
	}

	m.RecordRule("cardinality", 5*time.Millisecond, 2)
	m.RecordRule("cardinality", 5*time.Millisecond, 1)
	rules := m.Rules()
	if rm := rules["cardinality"]; rm.Runs != 2 || rm.Diagnostics != 3 {
		t.Errorf("rule metrics = %+v, want 2 runs / 3 diagnostics", rm)
	}

	m.RecordOperation("apply")
	m.RecordOperation("apply")
	m.RecordOperation("undo")
	if m.OperationsApplied() != 2 {
		t.Errorf("OperationsApplied() = %d, want 2", m.OperationsApplied())
	}

	m.Reset()
	if m.Validations() != 0 || m.OperationsApplied() != 0 || len(m.Rules()) != 0 {
		t.Error("Reset should clear all counters")
	}
}
