package document

import (
	"testing"

	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
	"github.com/gofhir/profiler/ops"
)

func newPatientResource(t *testing.T) *ir.ProfiledResource {
	t.Helper()

	root := ir.NewElementNode("Patient")

	name := ir.NewElementNode("Patient.name")
	name.Constraints.Cardinality = ir.NewUnboundedCardinality(0)
	name.Constraints.Types = []ir.TypeConstraint{{Code: "HumanName"}}
	name.Base = &ir.BaseConstraints{Cardinality: ir.NewUnboundedCardinality(0)}

	gender := ir.NewElementNode("Patient.gender")
	gender.Constraints.Cardinality = ir.NewCardinality(0, 1)
	gender.Constraints.Types = []ir.TypeConstraint{{Code: "code"}}
	gender.Base = &ir.BaseConstraints{Cardinality: ir.NewCardinality(0, 1)}

	root.AddChild(name)
	root.AddChild(gender)

	return ir.NewProfiledResource(root, ir.BaseReference{
		URL: "http://hl7.org/fhir/StructureDefinition/Patient",
	}, ir.KindResource)
}

func newPatientDocument(t *testing.T) *Document {
	t.Helper()
	meta := Metadata{
		URL:    "http://example.org/fhir/StructureDefinition/my-patient",
		Name:   "MyPatient",
		Status: StatusDraft,
	}
	return New(meta, newPatientResource(t))
}

func TestApplyUndoRedo(t *testing.T) {
	doc := newPatientDocument(t)
	before := doc.Resource().Clone()

	max := uint32(1)
	if err := doc.Apply(ops.NewSetCardinality("Patient.name", 1, &max)); err != nil {
		t.Fatal(err)
	}
	if doc.Resource().Equal(before) {
		t.Fatal("apply should change the tree")
	}
	if !doc.IsDirty() {
		t.Error("applied operation should dirty the document")
	}
	if !doc.CanUndo() || doc.CanRedo() {
		t.Error("expected undo available, redo unavailable")
	}

	desc, err := doc.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if desc == "" {
		t.Error("undo should return the operation description")
	}
	if !doc.Resource().Equal(before) {
		t.Error("undo should restore the original tree")
	}
	if !doc.CanRedo() {
		t.Error("expected redo available after undo")
	}

	if _, err := doc.Redo(); err != nil {
		t.Fatal(err)
	}
	if doc.Resource().Equal(before) {
		t.Error("redo should re-apply the change")
	}
}

func TestApplyRejectedLeavesTreeUnchanged(t *testing.T) {
	doc := newPatientDocument(t)
	before := doc.Resource().Clone()

	// min > max fails operation validation.
	max := uint32(1)
	err := doc.Apply(ops.NewSetCardinality("Patient.name", 2, &max))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if !doc.Resource().Equal(before) {
		t.Error("rejected operation must not change the tree")
	}
	if doc.IsDirty() {
		t.Error("rejected operation must not dirty the document")
	}
	if doc.CanUndo() {
		t.Error("rejected operation must not enter the history")
	}
}

func TestReadOnlyDocumentRejectsEdits(t *testing.T) {
	for _, status := range []Status{StatusActive, StatusRetired, StatusUnknown} {
		t.Run(string(status), func(t *testing.T) {
			meta := Metadata{
				URL:    "http://example.org/fhir/StructureDefinition/frozen",
				Name:   "Frozen",
				Status: status,
			}
			doc := New(meta, newPatientResource(t))

			max := uint32(1)
			err := doc.Apply(ops.NewSetCardinality("Patient.name", 1, &max))
			if ops.CodeOf(err) != ops.ErrDocumentReadOnly {
				t.Fatalf("Apply on %s document = %v, want %q", status, err, ops.ErrDocumentReadOnly)
			}
			if doc.CanUndo() {
				t.Error("rejected edit must not enter the history")
			}
		})
	}
}

func TestGotoNavigatesHistory(t *testing.T) {
	doc := newPatientDocument(t)
	initial := doc.Resource().Clone()

	one, two := uint32(1), uint32(2)
	steps := []ops.Operation{
		ops.NewSetCardinality("Patient.name", 1, &one),
		ops.NewSetCardinality("Patient.name", 1, &two),
		ops.NewSetCardinality("Patient.name", 0, nil),
	}
	snapshots := []*ir.ProfiledResource{initial}
	for _, op := range steps {
		if err := doc.Apply(op); err != nil {
			t.Fatal(err)
		}
		snapshots = append(snapshots, doc.Resource().Clone())
	}

	for target := len(snapshots) - 1; target >= 0; target-- {
		if err := doc.Goto(target); err != nil {
			t.Fatalf("Goto(%d): %v", target, err)
		}
		if !doc.Resource().Equal(snapshots[target]) {
			t.Errorf("Goto(%d) did not restore the matching snapshot", target)
		}
	}

	// Forward again to the latest state.
	if err := doc.Goto(len(steps)); err != nil {
		t.Fatal(err)
	}
	if !doc.Resource().Equal(snapshots[len(steps)]) {
		t.Error("Goto forward did not reach the latest state")
	}

	if err := doc.Goto(99); err != history.ErrIndexOutOfRange {
		t.Errorf("Goto(99) = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDirtyTracksSavedPosition(t *testing.T) {
	doc := newPatientDocument(t)
	if doc.IsDirty() {
		t.Fatal("fresh document should be clean")
	}

	max := uint32(1)
	if err := doc.Apply(ops.NewSetCardinality("Patient.name", 1, &max)); err != nil {
		t.Fatal(err)
	}
	doc.MarkSaved()
	if doc.IsDirty() {
		t.Error("saved document should be clean")
	}

	if _, err := doc.Undo(); err != nil {
		t.Fatal(err)
	}
	if !doc.IsDirty() {
		t.Error("undoing past the saved point should dirty the document")
	}

	if _, err := doc.Redo(); err != nil {
		t.Fatal(err)
	}
	if doc.IsDirty() {
		t.Error("redoing back to the saved point should clean the document")
	}
}

func TestTakeChangedPaths(t *testing.T) {
	doc := newPatientDocument(t)
	if got := doc.TakeChangedPaths(); got != nil {
		t.Fatalf("fresh document changed paths = %v, want nil", got)
	}

	max := uint32(1)
	if err := doc.Apply(ops.NewSetCardinality("Patient.gender", 1, &max)); err != nil {
		t.Fatal(err)
	}

	paths := doc.TakeChangedPaths()
	if len(paths) != 1 || paths[0] != "Patient.gender" {
		t.Errorf("changed paths = %v, want [Patient.gender]", paths)
	}
	if got := doc.TakeChangedPaths(); got != nil {
		t.Errorf("second take = %v, want nil", got)
	}
}

func TestRemoveElementMarksParent(t *testing.T) {
	doc := newPatientDocument(t)

	if err := doc.Apply(ops.NewAddElement("Patient", "note", []ir.TypeConstraint{{Code: "string"}})); err != nil {
		t.Fatal(err)
	}
	doc.TakeChangedPaths()

	// Structural changes are tracked against the parent, so the whole
	// subtree is re-validated.
	if err := doc.Apply(ops.NewRemoveElement("Patient.note")); err != nil {
		t.Fatal(err)
	}
	paths := doc.TakeChangedPaths()
	found := false
	for _, p := range paths {
		if p == "Patient" {
			found = true
		}
	}
	if !found {
		t.Errorf("changed paths = %v, want parent path included", paths)
	}
}

func TestHistoryState(t *testing.T) {
	doc := newPatientDocument(t)
	max := uint32(1)
	if err := doc.Apply(ops.NewSetCardinality("Patient.name", 1, &max)); err != nil {
		t.Fatal(err)
	}

	s := doc.HistoryState()
	if s.TotalOperations != 1 || s.CurrentIndex != 1 {
		t.Errorf("history state = %d/%d, want 1/1", s.CurrentIndex, s.TotalOperations)
	}
	if !s.CanUndo || s.CanRedo {
		t.Error("expected undo available, redo unavailable")
	}
}

func TestMetadataEditable(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusDraft, true},
		{StatusActive, false},
		{StatusRetired, false},
		{StatusUnknown, false},
	}
	for _, tt := range tests {
		m := Metadata{Status: tt.status}
		if got := m.IsEditable(); got != tt.want {
			t.Errorf("IsEditable(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
