package fhirprofiler

// Severity represents the severity of a validation diagnostic.
type Severity string

const (
	// SeverityError indicates a defect that makes the profile invalid.
	SeverityError Severity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed.
	SeverityWarning Severity = "warning"
	// SeverityInfo indicates informational feedback.
	SeverityInfo Severity = "information"
)

// rank orders severities for display sorting (most severe first).
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	}
	return 3
}

// DiagnosticSource identifies which subsystem produced a diagnostic.
type DiagnosticSource string

const (
	// SourceIR indicates a diagnostic from structural tree validation.
	SourceIR DiagnosticSource = "ir"
	// SourceFHIRPath indicates a diagnostic from FHIRPath expression checking.
	SourceFHIRPath DiagnosticSource = "fhirpath"
	// SourceTerminology indicates a diagnostic from terminology resolution.
	SourceTerminology DiagnosticSource = "terminology"
	// SourceReference indicates a diagnostic from reference resolution.
	SourceReference DiagnosticSource = "reference"
	// SourceExternal indicates a diagnostic from an external validator.
	SourceExternal DiagnosticSource = "external"
)

// Diagnostic represents a single validation finding.
// Diagnostics are values, not errors: validation always returns a
// (possibly empty) collection and never aborts on finding one.
type Diagnostic struct {
	// Severity of the finding
	Severity Severity `json:"severity"`

	// Code is the stable diagnostic code (e.g., CARD_001)
	Code Code `json:"code"`

	// Message contains human-readable details
	Message string `json:"message"`

	// ElementPath locates the element in error (e.g., "Patient.name")
	ElementPath string `json:"element_path,omitempty"`

	// Source is the subsystem that produced the diagnostic
	Source DiagnosticSource `json:"source"`

	// QuickFix optionally describes a corrective operation
	QuickFix *QuickFix `json:"quick_fix,omitempty"`

	// Details carries structured context for tooling
	Details map[string]any `json:"details,omitempty"`
}

// IsError returns true if this diagnostic has error severity.
func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// IsWarning returns true if this diagnostic has warning severity.
func (d Diagnostic) IsWarning() bool {
	return d.Severity == SeverityWarning
}

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	s := string(d.Severity) + " [" + string(d.Code) + "]: " + d.Message
	if d.ElementPath != "" {
		s += " at " + d.ElementPath
	}
	return s
}

// QuickFixKind tags the corrective action a QuickFix describes.
type QuickFixKind string

// Quick fix kinds. Each maps to a concrete ops.Operation the caller may
// construct; the validation engine never applies a fix itself.
const (
	FixSetCardinality          QuickFixKind = "set-cardinality"
	FixRemoveBinding           QuickFixKind = "remove-binding"
	FixRenameDiscriminatorPath QuickFixKind = "rename-discriminator-path"
	FixRemoveSlice             QuickFixKind = "remove-slice"
	FixRemoveInvariant         QuickFixKind = "remove-invariant"
	FixRemoveTypeConstraint    QuickFixKind = "remove-type-constraint"
	FixRenameSlice             QuickFixKind = "rename-slice"
)

// QuickFix is a tagged description of a corrective operation.
// It is a suggestion only: callers turn it into a real operation and
// apply it through the normal editing pathway on explicit user action.
type QuickFix struct {
	// Kind identifies the corrective action
	Kind QuickFixKind `json:"kind"`

	// Title is a short human-readable label ("Set cardinality to 1..1")
	Title string `json:"title"`

	// ElementPath is the element the fix targets
	ElementPath string `json:"element_path,omitempty"`

	// Params carries the operation parameters (e.g., min/max)
	Params map[string]any `json:"params,omitempty"`
}

// DiagnosticBuilder provides a fluent API for building diagnostics.
type DiagnosticBuilder struct {
	d Diagnostic
}

// NewDiagnostic creates a new DiagnosticBuilder.
func NewDiagnostic(severity Severity, code Code) *DiagnosticBuilder {
	return &DiagnosticBuilder{d: Diagnostic{
		Severity: severity,
		Code:     code,
		Source:   SourceIR,
	}}
}

// Error creates an error diagnostic builder.
func Error(code Code) *DiagnosticBuilder {
	return NewDiagnostic(SeverityError, code)
}

// Warning creates a warning diagnostic builder.
func Warning(code Code) *DiagnosticBuilder {
	return NewDiagnostic(SeverityWarning, code)
}

// Info creates an informational diagnostic builder.
func Info(code Code) *DiagnosticBuilder {
	return NewDiagnostic(SeverityInfo, code)
}

// Message sets the diagnostic message.
func (b *DiagnosticBuilder) Message(msg string) *DiagnosticBuilder {
	b.d.Message = msg
	return b
}

// At sets the element path.
func (b *DiagnosticBuilder) At(path string) *DiagnosticBuilder {
	b.d.ElementPath = path
	return b
}

// From sets the diagnostic source.
func (b *DiagnosticBuilder) From(source DiagnosticSource) *DiagnosticBuilder {
	b.d.Source = source
	return b
}

// Fix attaches a quick fix.
func (b *DiagnosticBuilder) Fix(fix *QuickFix) *DiagnosticBuilder {
	b.d.QuickFix = fix
	return b
}

// Detail adds a structured detail entry.
func (b *DiagnosticBuilder) Detail(key string, value any) *DiagnosticBuilder {
	if b.d.Details == nil {
		b.d.Details = make(map[string]any)
	}
	b.d.Details[key] = value
	return b
}

// Build returns the constructed diagnostic.
func (b *DiagnosticBuilder) Build() Diagnostic {
	return b.d
}
