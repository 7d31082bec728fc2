package fhirprofiler

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects validation and editing statistics.
// All methods are safe for concurrent use.
type Metrics struct {
	// Lock-free counters
	validations   atomic.Uint64
	invalidRuns   atomic.Uint64
	opsApplied    atomic.Uint64
	opsUndone     atomic.Uint64
	opsRedone     atomic.Uint64
	totalDuration atomic.Int64 // nanoseconds

	// Per-rule timing
	mu    sync.Mutex
	rules map[string]*RuleMetrics
}

// RuleMetrics holds statistics for a single validation rule.
type RuleMetrics struct {
	Runs        uint64        `json:"runs"`
	Diagnostics uint64        `json:"diagnostics"`
	Total       time.Duration `json:"total"`
}

// NewMetrics creates an empty metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		rules: make(map[string]*RuleMetrics),
	}
}

// RecordValidation records a completed validation run.
func (m *Metrics) RecordValidation(duration time.Duration, valid bool) {
	m.validations.Add(1)
	if !valid {
		m.invalidRuns.Add(1)
	}
	m.totalDuration.Add(int64(duration))
}

// RecordRule records a single rule execution.
func (m *Metrics) RecordRule(name string, duration time.Duration, diagnostics int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rm, ok := m.rules[name]
	if !ok {
		rm = &RuleMetrics{}
		m.rules[name] = rm
	}
	rm.Runs++
	rm.Diagnostics += uint64(diagnostics)
	rm.Total += duration
}

// RecordOperation records an applied, undone, or redone operation.
func (m *Metrics) RecordOperation(kind string) {
	switch kind {
	case "apply":
		m.opsApplied.Add(1)
	case "undo":
		m.opsUndone.Add(1)
	case "redo":
		m.opsRedone.Add(1)
	}
}

// Validations returns the number of validation runs.
func (m *Metrics) Validations() uint64 {
	return m.validations.Load()
}

// InvalidRuns returns the number of runs that found errors.
func (m *Metrics) InvalidRuns() uint64 {
	return m.invalidRuns.Load()
}

// OperationsApplied returns the number of applied operations.
func (m *Metrics) OperationsApplied() uint64 {
	return m.opsApplied.Load()
}

// AverageDuration returns the mean validation duration.
func (m *Metrics) AverageDuration() time.Duration {
	n := m.validations.Load()
	if n == 0 {
		return 0
	}
	return time.Duration(uint64(m.totalDuration.Load()) / n)
}

// Rules returns a copy of the per-rule statistics.
func (m *Metrics) Rules() map[string]RuleMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]RuleMetrics, len(m.rules))
	for name, rm := range m.rules {
		out[name] = *rm
	}
	return out
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.validations.Store(0)
	m.invalidRuns.Store(0)
	m.opsApplied.Store(0)
	m.opsUndone.Store(0)
	m.opsRedone.Store(0)
	m.totalDuration.Store(0)

	m.mu.Lock()
	m.rules = make(map[string]*RuleMetrics)
	m.mu.Unlock()
}
