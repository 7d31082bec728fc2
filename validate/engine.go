package validate

import (
	"context"
	"fmt"
	"time"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/service"
)

// Engine runs the validation layers over a profile. The structural
// layer always runs, synchronously; the reference, terminology and
// external layers are opt-in and bounded by the resolve timeout.
//
// An Engine is safe for concurrent use once constructed.
type Engine struct {
	opts        *fhirprofiler.Options
	rules       []Rule
	fhirpath    service.FHIRPathValidator
	resolver    service.URLResolver
	terminology service.TerminologyResolver
	external    ExternalValidator
	metrics     *fhirprofiler.Metrics
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithOptions applies core configuration options to the engine.
func WithOptions(options ...fhirprofiler.Option) EngineOption {
	return func(e *Engine) {
		for _, opt := range options {
			opt(e.opts)
		}
	}
}

// WithFHIRPath sets the FHIRPath expression validator.
func WithFHIRPath(v service.FHIRPathValidator) EngineOption {
	return func(e *Engine) { e.fhirpath = v }
}

// WithResolver sets the canonical-URL resolver used by the reference layer.
func WithResolver(r service.URLResolver) EngineOption {
	return func(e *Engine) { e.resolver = r }
}

// WithTerminologyResolver sets the value-set resolver used by the
// terminology layer.
func WithTerminologyResolver(t service.TerminologyResolver) EngineOption {
	return func(e *Engine) { e.terminology = t }
}

// WithExternalValidator sets the full external validator.
func WithExternalValidator(v ExternalValidator) EngineOption {
	return func(e *Engine) { e.external = v }
}

// WithMetricsCollector sets the metrics sink shared with the caller.
func WithMetricsCollector(m *fhirprofiler.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine creates a validation engine. Without options it validates
// structurally with the offline heuristic resolvers.
func NewEngine(options ...EngineOption) *Engine {
	e := &Engine{
		opts:        fhirprofiler.DefaultOptions(),
		fhirpath:    service.NewFHIRPathAdapter(),
		resolver:    service.NewHeuristicResolver(),
		terminology: service.NewInMemoryTerminology(),
		metrics:     fhirprofiler.NewMetrics(),
	}
	for _, opt := range options {
		opt(e)
	}
	e.rules = []Rule{
		metadataRule{},
		cardinalityRule{},
		typeRule{},
		slicingRule{},
		bindingRule{},
		invariantRule{fhirpath: e.fhirpath},
	}
	return e
}

// Options returns the engine's configuration.
func (e *Engine) Options() *fhirprofiler.Options { return e.opts }

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *fhirprofiler.Metrics { return e.metrics }

// Validate runs every enabled layer over the whole profile.
func (e *Engine) Validate(ctx context.Context, p *Profile) *fhirprofiler.ValidationResult {
	return e.run(ctx, p, false)
}

// ValidateIncremental re-validates only the subtrees rooted at the
// changed paths. When incremental validation is disabled, no paths are
// given, or a path names the tree root, it falls back to a full run.
func (e *Engine) ValidateIncremental(ctx context.Context, p *Profile, changedPaths []string) *fhirprofiler.ValidationResult {
	if !e.opts.IncrementalValidation || len(changedPaths) == 0 {
		return e.run(ctx, p, false)
	}
	scoped := p.ScopedTo(changedPaths)
	if !scoped.IsPartial() {
		return e.run(ctx, p, false)
	}
	return e.run(ctx, scoped, true)
}

func (e *Engine) run(ctx context.Context, p *Profile, incremental bool) *fhirprofiler.ValidationResult {
	start := time.Now()
	result := fhirprofiler.NewResult()
	result.Incremental = incremental

	e.runStructural(p, result)
	result.Level = fhirprofiler.LevelStructural

	if e.opts.FailFast && result.HasErrors() {
		return e.finish(result, start)
	}

	e.runAsyncLayers(ctx, p, result)
	if e.opts.FailFast && result.HasErrors() {
		return e.finish(result, start)
	}

	if e.opts.ValidateExternal && e.external != nil {
		e.runExternal(ctx, p, result)
	}
	return e.finish(result, start)
}

func (e *Engine) runStructural(p *Profile, result *fhirprofiler.ValidationResult) {
	for _, rule := range e.rules {
		ruleStart := time.Now()
		ds := rule.Check(p)
		if e.opts.CollectMetrics {
			e.metrics.RecordRule(rule.Name(), time.Since(ruleStart), len(ds))
		}
		result.AddAll(ds)
		if e.opts.MaxDiagnostics > 0 && result.ErrorCount() >= e.opts.MaxDiagnostics {
			return
		}
	}
}

// runAsyncLayers resolves references and terminology concurrently,
// each bounded by the resolve timeout. Findings are merged in layer
// order so diagnostic order stays deterministic; under fail-fast,
// reference errors stop the merge before the terminology findings.
func (e *Engine) runAsyncLayers(ctx context.Context, p *Profile, result *fhirprofiler.ValidationResult) {
	runRefs := e.opts.ValidateReferences && e.resolver != nil
	runTerm := e.opts.ValidateTerminology && e.terminology != nil
	if !runRefs && !runTerm {
		return
	}

	if e.opts.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.ResolveTimeout)
		defer cancel()
	}

	var refCh, termCh chan []fhirprofiler.Diagnostic
	if runRefs {
		refCh = make(chan []fhirprofiler.Diagnostic, 1)
		go func() {
			refCh <- checkReferences(ctx, p, e.resolver)
		}()
	}
	if runTerm {
		termCh = make(chan []fhirprofiler.Diagnostic, 1)
		go func() {
			termCh <- checkTerminology(ctx, p, e.terminology)
		}()
	}

	if refCh != nil {
		result.AddAll(<-refCh)
		result.Level = fhirprofiler.MergeLevels(result.Level, fhirprofiler.LevelReferences)
		if e.opts.FailFast && result.HasErrors() {
			// The terminology goroutine finishes into its buffered
			// channel; its findings are dropped.
			return
		}
	}
	if termCh != nil {
		result.AddAll(<-termCh)
		result.Level = fhirprofiler.MergeLevels(result.Level, fhirprofiler.LevelTerminology)
	}
}

func (e *Engine) runExternal(ctx context.Context, p *Profile, result *fhirprofiler.ValidationResult) {
	if e.opts.ResolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.ResolveTimeout)
		defer cancel()
	}
	ds, err := e.external.Validate(ctx, p)
	if err != nil {
		result.Add(fhirprofiler.Warning(fhirprofiler.CodeExternalValidator).
			Message(fmt.Sprintf("external validation did not complete: %v", err)).
			From(fhirprofiler.SourceExternal).
			Build())
	} else {
		result.AddAll(ds)
	}
	result.Level = fhirprofiler.MergeLevels(result.Level, fhirprofiler.LevelFull)
}

func (e *Engine) finish(result *fhirprofiler.ValidationResult, start time.Time) *fhirprofiler.ValidationResult {
	result.Duration = time.Since(start)
	if e.opts.CollectMetrics {
		e.metrics.RecordValidation(result.Duration, result.Valid)
	}
	return result
}
