package document

import (
	"time"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/history"
)

// EventKind tags a document lifecycle or editing event.
type EventKind string

// Event kinds.
const (
	EventOpened   EventKind = "document-opened"
	EventModified EventKind = "document-modified"
	EventSaved    EventKind = "document-saved"
	EventClosed   EventKind = "document-closed"

	EventOperationApplied EventKind = "operation-applied"
	EventOperationUndone  EventKind = "operation-undone"
	EventOperationRedone  EventKind = "operation-redone"

	EventValidationCompleted EventKind = "validation-completed"
	EventError               EventKind = "error"
)

// ValidationPayload describes a completed validation run.
type ValidationPayload struct {
	Summary     fhirprofiler.Summary `json:"summary"`
	Incremental bool                 `json:"incremental"`
	DurationMS  int64                `json:"duration_ms"`
}

// Event is one notification from the manager.
type Event struct {
	// Kind of event.
	Kind EventKind `json:"kind"`

	// DocumentID identifies the document concerned.
	DocumentID string `json:"document_id"`

	// Timestamp of the event.
	Timestamp time.Time `json:"timestamp"`

	// Name and URL identify the profile, for opened events.
	Name string `json:"name,omitempty"`
	URL  string `json:"url,omitempty"`

	// Operation is the operation description, for operation events.
	Operation string `json:"operation,omitempty"`

	// History is the edit history snapshot after an operation, for
	// operation and modified events.
	History *history.State `json:"history_state,omitempty"`

	// ChangedPaths and IsDirty describe the edit, for modified events.
	ChangedPaths []string `json:"changed_paths,omitempty"`
	IsDirty      bool     `json:"is_dirty,omitempty"`

	// Formats lists the serialization formats written, for saved events.
	Formats []string `json:"formats,omitempty"`

	// Saved reports whether the document had no unsaved changes, for
	// closed events.
	Saved bool `json:"saved,omitempty"`

	// Validation is set for validation-completed events.
	Validation *ValidationPayload `json:"validation,omitempty"`

	// Error is set for error events.
	Error string `json:"error,omitempty"`
}

// Listener receives manager events. Listeners are called synchronously
// in registration order and must not block.
type Listener func(Event)
