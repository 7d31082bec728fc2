package document

import (
	"context"
	"errors"
	"sync"
	"time"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/cache"
	"github.com/gofhir/profiler/ir"
	"github.com/gofhir/profiler/ops"
	"github.com/gofhir/profiler/validate"
)

// ErrDocumentNotFound is returned for an unknown document id.
var ErrDocumentNotFound = errors.New("document: not found")

// Manager tracks the open document set, runs validation through a
// shared engine, caches results per document, and fans events out to
// listeners.
//
// A Manager is safe for concurrent use.
type Manager struct {
	mu        sync.RWMutex
	docs      map[string]*Document
	listeners []Listener

	engine  *validate.Engine
	results *cache.ResultCache
	metrics *fhirprofiler.Metrics
}

// NewManager creates a manager around a validation engine.
func NewManager(engine *validate.Engine) *Manager {
	if engine == nil {
		engine = validate.NewEngine()
	}
	return &Manager{
		docs:    make(map[string]*Document),
		engine:  engine,
		results: cache.NewResultCache(),
		metrics: engine.Metrics(),
	}
}

// Subscribe registers a listener for manager events.
func (m *Manager) Subscribe(l Listener) {
	m.mu.Lock()
	m.listeners = append(m.listeners, l)
	m.mu.Unlock()
}

// emit notifies every listener in registration order.
func (m *Manager) emit(ev Event) {
	ev.Timestamp = time.Now().UTC()
	m.mu.RLock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, l := range listeners {
		l(ev)
	}
}

// Open creates a document around a resource and registers it.
func (m *Manager) Open(meta Metadata, resource *ir.ProfiledResource, options ...fhirprofiler.Option) *Document {
	doc := New(meta, resource, options...)
	m.mu.Lock()
	m.docs[doc.ID()] = doc
	m.mu.Unlock()

	m.emit(Event{Kind: EventOpened, DocumentID: doc.ID(), Name: meta.Name, URL: meta.URL})
	return doc
}

// Get returns the open document with the given id.
func (m *Manager) Get(id string) (*Document, error) {
	m.mu.RLock()
	doc, ok := m.docs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// Documents returns the ids of all open documents.
func (m *Manager) Documents() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.docs))
	for id := range m.docs {
		out = append(out, id)
	}
	return out
}

// Close removes a document from the open set and drops its cached
// result. Unsaved changes are discarded.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	doc, ok := m.docs[id]
	delete(m.docs, id)
	m.mu.Unlock()
	if !ok {
		return ErrDocumentNotFound
	}
	m.results.Invalidate(id)
	m.emit(Event{Kind: EventClosed, DocumentID: id, Saved: !doc.IsDirty()})
	return nil
}

// Apply applies an operation to a document, invalidating its cached
// validation result.
func (m *Manager) Apply(id string, op ops.Operation) error {
	doc, err := m.Get(id)
	if err != nil {
		return err
	}
	if err := doc.Apply(op); err != nil {
		m.emit(Event{Kind: EventError, DocumentID: id, Operation: op.Description(), Error: err.Error()})
		return err
	}
	m.metrics.RecordOperation("apply")
	m.results.Invalidate(id)
	m.emitOperation(EventOperationApplied, doc, op.Description())
	return nil
}

// Undo reverts a document's most recent operation.
func (m *Manager) Undo(id string) error {
	doc, err := m.Get(id)
	if err != nil {
		return err
	}
	desc, err := doc.Undo()
	if err != nil {
		return err
	}
	m.metrics.RecordOperation("undo")
	m.results.Invalidate(id)
	m.emitOperation(EventOperationUndone, doc, desc)
	return nil
}

// Redo re-applies a document's most recently undone operation.
func (m *Manager) Redo(id string) error {
	doc, err := m.Get(id)
	if err != nil {
		return err
	}
	desc, err := doc.Redo()
	if err != nil {
		return err
	}
	m.metrics.RecordOperation("redo")
	m.results.Invalidate(id)
	m.emitOperation(EventOperationRedone, doc, desc)
	return nil
}

// emitOperation emits the operation event followed by the modified
// event, both carrying the post-operation history snapshot.
func (m *Manager) emitOperation(kind EventKind, doc *Document, desc string) {
	state := doc.HistoryState()
	m.emit(Event{Kind: kind, DocumentID: doc.ID(), Operation: desc, History: &state})

	modState := state
	m.emit(Event{
		Kind:         EventModified,
		DocumentID:   doc.ID(),
		ChangedPaths: doc.LastChangedPaths(),
		IsDirty:      doc.IsDirty(),
		History:      &modState,
	})
}

// Validate validates a document, serving from the result cache when the
// document has not changed since the last run.
func (m *Manager) Validate(ctx context.Context, id string) (*fhirprofiler.ValidationResult, error) {
	doc, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if cached := m.results.Get(id); cached != nil {
		return cached, nil
	}

	profile := doc.Profile()
	changed := doc.TakeChangedPaths()

	var result *fhirprofiler.ValidationResult
	if len(changed) > 0 {
		result = m.engine.ValidateIncremental(ctx, profile, changed)
	} else {
		result = m.engine.Validate(ctx, profile)
	}
	m.results.Put(id, result)

	m.emit(Event{
		Kind:       EventValidationCompleted,
		DocumentID: id,
		Validation: &ValidationPayload{
			Summary:     result.Summary(),
			Incremental: result.Incremental,
			DurationMS:  result.Duration.Milliseconds(),
		},
	})
	return result, nil
}

// Save marks a document's current state as saved. Persistence itself is
// the caller's concern; the manager only tracks the saved position and
// reports the formats the caller wrote.
func (m *Manager) Save(id string, formats ...string) error {
	doc, err := m.Get(id)
	if err != nil {
		return err
	}
	doc.MarkSaved()
	m.emit(Event{Kind: EventSaved, DocumentID: id, Formats: formats})
	return nil
}

// CacheStats returns the validation result cache counters.
func (m *Manager) CacheStats() cache.ResultStats {
	return m.results.Stats()
}
