// Package fhirprofiler provides the core engine for editing FHIR profiles:
// a constrained element tree with slicing, a reversible command history,
// and a layered validation engine producing diagnostics with quick fixes.
//
// # Quick Start
//
//	import (
//	    fp "github.com/gofhir/profiler"
//	    "github.com/gofhir/profiler/document"
//	    "github.com/gofhir/profiler/loader"
//	    "github.com/gofhir/profiler/ops"
//	    "github.com/gofhir/profiler/validate"
//	)
//
//	resource, err := loader.BaseTree("Patient")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc := document.New(document.Metadata{
//	    URL:    "http://example.org/StructureDefinition/my-patient",
//	    Name:   "MyPatient",
//	    Status: document.StatusDraft,
//	}, resource)
//
//	op := ops.NewSetCardinality("Patient.name", 1, ops.Max(1))
//	if err := doc.Apply(op); err != nil {
//	    log.Fatal(err)
//	}
//
//	engine := validate.NewEngine()
//	result := engine.Validate(context.Background(), doc.Profile())
//	for _, d := range result.SortedBySeverity() {
//	    fmt.Println(d)
//	}
//
// # Architecture
//
// Editing follows a strict validate-then-apply-then-record protocol:
// every edit is an ops.Operation that is validated (pure), applied
// (mutating the tree), and recorded into the document's history as a
// reversible change group. Undo and redo replay inverse operations and
// never perform I/O.
//
// Validation is layered, ordered by ValidationLevel:
//
//   - Structural: metadata, cardinality, types, slicing, bindings,
//     FHIRPath invariants. Synchronous, no I/O.
//   - References: base-definition and profile URL resolvability. Async.
//   - Terminology: value-set URL resolvability for bindings. Async.
//   - Full: reserved for external validator integration.
//
// Diagnostics are values, never errors: validation always returns a
// (possibly empty) collection, and a document stays open and editable
// while invalid. Quick fixes attached to diagnostics describe corrective
// operations; they are never applied automatically.
package fhirprofiler
