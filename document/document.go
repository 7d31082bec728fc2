package document

import (
	"sync"
	"time"

	"github.com/google/uuid"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/history"
	"github.com/gofhir/profiler/ir"
	"github.com/gofhir/profiler/ops"
	"github.com/gofhir/profiler/validate"
)

// Document is one open profile under edit: metadata, the constrained
// element tree, and the edit history. All mutation goes through Apply,
// Undo, Redo and Goto; the history is the single source of truth for
// unsaved changes.
//
// A Document is safe for concurrent use.
type Document struct {
	id   string
	mu   sync.Mutex
	meta Metadata

	resource *ir.ProfiledResource
	hist     *history.History

	// undoOps and redoOps mirror the history stacks, holding the live
	// operations whose Undo/Apply perform the actual tree mutation.
	undoOps    []ops.Operation
	redoOps    []ops.Operation
	maxHistory int

	// changed accumulates element paths touched since the last
	// validation, for incremental re-validation. lastChanged holds the
	// paths of the most recent apply, undo or redo, for event payloads.
	changed     map[string]struct{}
	lastChanged []string
}

// New opens a document around a profiled resource.
func New(meta Metadata, resource *ir.ProfiledResource, options ...fhirprofiler.Option) *Document {
	opts := fhirprofiler.DefaultOptions()
	for _, opt := range options {
		opt(opts)
	}
	return &Document{
		id:         uuid.NewString(),
		meta:       meta,
		resource:   resource,
		hist:       history.New(opts.MaxHistory),
		maxHistory: opts.MaxHistory,
		changed:    make(map[string]struct{}),
	}
}

// ID returns the document's unique identifier.
func (d *Document) ID() string { return d.id }

// Meta returns the document metadata.
func (d *Document) Meta() Metadata {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.meta
}

// Resource returns the constrained resource tree.
func (d *Document) Resource() *ir.ProfiledResource { return d.resource }

// IsEditable reports whether the document accepts edits. Metadata is
// fixed at open time, so no locking is needed; operations call this
// while the document lock is already held.
func (d *Document) IsEditable() bool {
	return d.meta.IsEditable()
}

// Apply validates and applies an operation, recording it in the edit
// history. On a validation or application error the tree is unchanged.
func (d *Document) Apply(op ops.Operation) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := op.Validate(d); err != nil {
		return err
	}
	if err := op.Apply(d); err != nil {
		return err
	}

	d.hist.Push(toHistoryOp(op))
	d.redoOps = d.redoOps[:0]
	if len(d.undoOps) >= d.maxHistory {
		d.undoOps = d.undoOps[1:]
	}
	d.undoOps = append(d.undoOps, op)

	d.recordChanges(op)
	return nil
}

// Undo reverts the most recent operation. It returns the description of
// the reverted operation.
func (d *Document) Undo() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.undoLocked()
}

func (d *Document) undoLocked() (string, error) {
	if _, err := d.hist.Undo(); err != nil {
		return "", err
	}
	op := d.undoOps[len(d.undoOps)-1]
	d.undoOps = d.undoOps[:len(d.undoOps)-1]

	if err := op.Undo(d); err != nil {
		// Keep the mirrors aligned with the history even on failure.
		d.redoOps = append(d.redoOps, op)
		return "", err
	}
	d.redoOps = append(d.redoOps, op)
	d.recordChanges(op)
	return op.Description(), nil
}

// Redo re-applies the most recently undone operation. It returns the
// description of the re-applied operation.
func (d *Document) Redo() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.redoLocked()
}

func (d *Document) redoLocked() (string, error) {
	if _, err := d.hist.Redo(); err != nil {
		return "", err
	}
	op := d.redoOps[len(d.redoOps)-1]
	d.redoOps = d.redoOps[:len(d.redoOps)-1]

	if err := op.Apply(d); err != nil {
		d.undoOps = append(d.undoOps, op)
		return "", err
	}
	d.undoOps = append(d.undoOps, op)
	d.recordChanges(op)
	return op.Description(), nil
}

// Goto navigates to the given history position by undoing or redoing
// repeatedly.
func (d *Document) Goto(target int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if target < 0 || target > d.hist.TotalOperations() {
		return history.ErrIndexOutOfRange
	}
	for d.hist.CurrentIndex() > target {
		if _, err := d.undoLocked(); err != nil {
			return err
		}
	}
	for d.hist.CurrentIndex() < target {
		if _, err := d.redoLocked(); err != nil {
			return err
		}
	}
	return nil
}

// CanUndo reports whether an operation can be undone.
func (d *Document) CanUndo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.CanUndo()
}

// CanRedo reports whether an operation can be redone.
func (d *Document) CanRedo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.CanRedo()
}

// HistoryState returns a snapshot of the edit history for UIs.
func (d *Document) HistoryState() history.State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.State()
}

// IsDirty reports whether the document has unsaved changes.
func (d *Document) IsDirty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hist.HasUnsavedChanges()
}

// MarkSaved records the current history position as the saved state and
// stamps the metadata date.
func (d *Document) MarkSaved() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hist.MarkSaved()
	d.meta.Date = time.Now().UTC()
}

// Profile returns the validation subject for the document's current state.
func (d *Document) Profile() *validate.Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return validate.NewProfile(d.meta.URL, d.meta.Name, string(d.meta.Status), d.resource)
}

// TakeChangedPaths returns the element paths touched since the last
// call and resets the accumulator. An empty result means nothing
// changed; a result containing the root path means scoping is unsafe
// and a full run is needed.
func (d *Document) TakeChangedPaths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(d.changed))
	for p := range d.changed {
		out = append(out, p)
	}
	d.changed = make(map[string]struct{})
	return out
}

// LastChangedPaths returns the element paths touched by the most
// recent apply, undo or redo.
func (d *Document) LastChangedPaths() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.lastChanged))
	copy(out, d.lastChanged)
	return out
}

// recordChanges notes the paths an operation touched. A change whose
// target no longer resolves marks the root, forcing a full run.
func (d *Document) recordChanges(op ops.Operation) {
	changes := []history.Change{op.AsChange()}
	if b, ok := op.(*ops.Batch); ok {
		changes = b.Changes()
	}
	d.lastChanged = d.lastChanged[:0]
	for _, ch := range changes {
		path := ""
		if node := d.resource.FindByID(ch.TargetID); node != nil {
			path = node.Path
		} else if d.resource.Root != nil {
			path = d.resource.Root.Path
		}
		if path == "" {
			continue
		}
		d.changed[path] = struct{}{}
		d.lastChanged = append(d.lastChanged, path)
	}
}

// toHistoryOp converts an operation to its history record. Batches
// record every member change.
func toHistoryOp(op ops.Operation) history.Operation {
	if b, ok := op.(*ops.Batch); ok {
		return history.NewOperation(op.Description(), b.Changes()...)
	}
	return history.NewOperation(op.Description(), op.AsChange())
}

// Verify interface compliance
var _ ops.Target = (*Document)(nil)
