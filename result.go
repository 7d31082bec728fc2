package fhirprofiler

import (
	"sort"
	"time"
)

// ValidationLevel identifies how deep a validation run went.
// Levels form a total order: None < Structural < References <
// Terminology < Full.
type ValidationLevel int

const (
	// LevelNone means no validation has run.
	LevelNone ValidationLevel = iota
	// LevelStructural covers metadata, cardinality, types, slicing,
	// bindings and invariants. Synchronous, no I/O.
	LevelStructural
	// LevelReferences additionally checks URL resolvability of base
	// definitions and type profiles.
	LevelReferences
	// LevelTerminology additionally checks value-set resolvability.
	LevelTerminology
	// LevelFull additionally runs the external validator.
	LevelFull
)

// String returns the level name.
func (l ValidationLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelStructural:
		return "structural"
	case LevelReferences:
		return "references"
	case LevelTerminology:
		return "terminology"
	case LevelFull:
		return "full"
	}
	return "unknown"
}

// MergeLevels returns the maximum of two levels. The operation is
// associative and commutative.
func MergeLevels(a, b ValidationLevel) ValidationLevel {
	if a > b {
		return a
	}
	return b
}

// ValidationResult holds the outcome of validating a profile document.
type ValidationResult struct {
	// Valid is true if no error diagnostics were found
	Valid bool `json:"valid"`

	// Level is the deepest validation level that ran
	Level ValidationLevel `json:"level"`

	// Diagnostics contains all findings, in discovery order
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`

	// Duration is how long validation took
	Duration time.Duration `json:"duration"`

	// Incremental is true if only changed subtrees were re-validated
	Incremental bool `json:"incremental"`
}

// NewResult creates an empty, valid result at LevelNone.
func NewResult() *ValidationResult {
	return &ValidationResult{Valid: true, Level: LevelNone}
}

// Add appends a diagnostic, updating validity.
func (r *ValidationResult) Add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
	if d.IsError() {
		r.Valid = false
	}
}

// AddAll appends multiple diagnostics.
func (r *ValidationResult) AddAll(ds []Diagnostic) {
	for _, d := range ds {
		r.Add(d)
	}
}

// Merge combines another result into this one: validity is the
// conjunction, level is the maximum, diagnostics are concatenated.
func (r *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	r.Valid = r.Valid && other.Valid
	r.Level = MergeLevels(r.Level, other.Level)
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// HasErrors returns true if any error diagnostics are present.
func (r *ValidationResult) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.IsError() {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of error diagnostics.
func (r *ValidationResult) ErrorCount() int {
	return r.countBySeverity(SeverityError)
}

// WarningCount returns the number of warning diagnostics.
func (r *ValidationResult) WarningCount() int {
	return r.countBySeverity(SeverityWarning)
}

// InfoCount returns the number of informational diagnostics.
func (r *ValidationResult) InfoCount() int {
	return r.countBySeverity(SeverityInfo)
}

func (r *ValidationResult) countBySeverity(s Severity) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// SortedBySeverity returns the diagnostics sorted most-severe first.
// The sort is stable, so diagnostics of equal severity keep discovery
// order. The receiver's slice is not modified.
func (r *ValidationResult) SortedBySeverity() []Diagnostic {
	out := make([]Diagnostic, len(r.Diagnostics))
	copy(out, r.Diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.rank() < out[j].Severity.rank()
	})
	return out
}

// Summary is a compact result description for event payloads.
type Summary struct {
	Valid    bool `json:"is_valid"`
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Info     int  `json:"info"`
}

// Summary returns the compact summary of this result.
func (r *ValidationResult) Summary() Summary {
	return Summary{
		Valid:    r.Valid,
		Errors:   r.ErrorCount(),
		Warnings: r.WarningCount(),
		Info:     r.InfoCount(),
	}
}
