package fhirprofiler

import (
	"time"
)

// Option configures validation and editing behavior.
type Option func(*Options)

// Options holds all configuration for the profiler core.
type Options struct {
	// Validation flags
	ValidateReferences  bool
	ValidateTerminology bool
	ValidateExternal    bool

	// FailFast stops after the first layer that produces an error
	FailFast bool

	// IncrementalValidation re-validates only changed subtrees
	IncrementalValidation bool

	// ResolveTimeout bounds async reference/terminology resolution
	ResolveTimeout time.Duration

	// MaxHistory bounds the undo stack (oldest entries are evicted)
	MaxHistory int

	// MaxDiagnostics stops validation after this many errors (0 = unlimited)
	MaxDiagnostics int

	// CollectMetrics enables per-rule timing collection
	CollectMetrics bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		// Structural validation always runs; async layers are opt-in
		// since they depend on external resolvers.
		ValidateReferences:  false,
		ValidateTerminology: false,
		ValidateExternal:    false,

		FailFast:              false,
		IncrementalValidation: true,
		ResolveTimeout:        5 * time.Second,
		MaxHistory:            100,
		MaxDiagnostics:        0,
		CollectMetrics:        true,
	}
}

// WithReferences enables the reference resolvability layer.
func WithReferences(enable bool) Option {
	return func(o *Options) {
		o.ValidateReferences = enable
	}
}

// WithTerminology enables the terminology resolvability layer.
func WithTerminology(enable bool) Option {
	return func(o *Options) {
		o.ValidateTerminology = enable
	}
}

// WithExternalValidation enables the full external-validator layer.
func WithExternalValidation(enable bool) Option {
	return func(o *Options) {
		o.ValidateExternal = enable
	}
}

// WithFailFast stops validation after the first layer producing an error.
func WithFailFast(enable bool) Option {
	return func(o *Options) {
		o.FailFast = enable
	}
}

// WithIncrementalValidation enables subtree-scoped re-validation after
// edits. This is an optimization: global invariants are only re-checked
// when metadata validation is also triggered.
func WithIncrementalValidation(enable bool) Option {
	return func(o *Options) {
		o.IncrementalValidation = enable
	}
}

// WithResolveTimeout bounds each async resolution layer.
// Use 0 for no timeout.
func WithResolveTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.ResolveTimeout = timeout
	}
}

// WithMaxHistory bounds the undo stack. When full, the oldest entry is
// evicted. Must be positive.
func WithMaxHistory(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxHistory = n
		}
	}
}

// WithMaxDiagnostics stops validation after this many errors.
// Use 0 for unlimited.
func WithMaxDiagnostics(n int) Option {
	return func(o *Options) {
		o.MaxDiagnostics = n
	}
}

// WithMetrics enables or disables per-rule timing collection.
func WithMetrics(enable bool) Option {
	return func(o *Options) {
		o.CollectMetrics = enable
	}
}

// StrictOptions returns options enabling every validation layer.
func StrictOptions() []Option {
	return []Option{
		WithReferences(true),
		WithTerminology(true),
		WithExternalValidation(true),
	}
}

// FastOptions returns options optimized for editor feedback loops:
// structural-only validation, incremental, fail-fast.
func FastOptions() []Option {
	return []Option{
		WithReferences(false),
		WithTerminology(false),
		WithFailFast(true),
		WithIncrementalValidation(true),
	}
}
