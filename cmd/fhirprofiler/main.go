// Package main implements the fhirprofiler CLI: it loads FHIR profile
// StructureDefinitions and reports validation diagnostics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofhir/fhir/r4"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/loader"
	"github.com/gofhir/profiler/validate"
	"github.com/gofhir/profiler/worker"
)

const usage = `fhirprofiler - FHIR profile validation

Usage:
  fhirprofiler [options] <file>...
  fhirprofiler [options] -              (read from stdin)
  cat profile.json | fhirprofiler -

Examples:
  fhirprofiler my-patient-profile.json
  fhirprofiler -refs -tx profiles/*.json
  fhirprofiler -output json profile.json

Options:
`

// outputFormat selects how diagnostics are rendered.
type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
)

type config struct {
	output      outputFormat
	refs        bool
	terminology bool
	failFast    bool
	timeout     time.Duration
	workers     int
	quiet       bool
	showVersion bool
	files       []string
}

// fileReport is the JSON output shape for one profile.
type fileReport struct {
	Profile     string                    `json:"profile"`
	Valid       bool                      `json:"valid"`
	Level       string                    `json:"level"`
	Errors      int                       `json:"errors"`
	Warnings    int                       `json:"warnings"`
	Info        int                       `json:"info"`
	Diagnostics []fhirprofiler.Diagnostic `json:"diagnostics,omitempty"`
	Duration    string                    `json:"duration"`
}

func main() {
	cfg := parseFlags()

	if cfg.showVersion {
		fmt.Printf("fhirprofiler v%s\n", fhirprofiler.Version)
		os.Exit(0)
	}
	if len(cfg.files) == 0 {
		flag.Usage()
		os.Exit(0)
	}
	os.Exit(run(cfg))
}

func parseFlags() *config {
	cfg := &config{}
	var output string

	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&cfg.refs, "refs", false, "Check canonical URL resolvability")
	flag.BoolVar(&cfg.terminology, "tx", false, "Check value-set resolvability")
	flag.BoolVar(&cfg.failFast, "fail-fast", false, "Stop after the first layer with errors")
	flag.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "Timeout for resolution layers")
	flag.IntVar(&cfg.workers, "workers", 0, "Concurrent validations (0 = number of CPUs)")
	flag.BoolVar(&cfg.quiet, "quiet", false, "Only print errors and warnings")
	flag.BoolVar(&cfg.showVersion, "v", false, "Show version")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.EqualFold(output, "json") {
		cfg.output = outputJSON
	} else {
		cfg.output = outputText
	}
	cfg.files = flag.Args()
	return cfg
}

func run(cfg *config) int {
	engine := validate.NewEngine(validate.WithOptions(
		fhirprofiler.WithReferences(cfg.refs),
		fhirprofiler.WithTerminology(cfg.terminology),
		fhirprofiler.WithFailFast(cfg.failFast),
		fhirprofiler.WithResolveTimeout(cfg.timeout),
	))

	jobs, readErrors := collectJobs(cfg.files)

	batch := worker.NewBatch(func(ctx context.Context, job worker.Job) (*fhirprofiler.ValidationResult, error) {
		return validateData(ctx, engine, job.Data, job.Name)
	}, cfg.workers)
	out := batch.Run(context.Background(), jobs)

	reports := make([]fileReport, 0, len(out.Items))
	for _, item := range out.Items {
		if item.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", item.Name, item.Err)
			reports = append(reports, fileReport{Profile: item.Name, Valid: false, Errors: 1})
			continue
		}
		reports = append(reports, makeReport(item.Name, item.Result))
		if cfg.output == outputText {
			printText(cfg, item.Name, item.Result)
		}
	}

	if cfg.output == outputJSON {
		enc, _ := json.MarshalIndent(reports, "", "  ")
		fmt.Println(string(enc))
	}
	if readErrors || out.HasErrors() {
		return 1
	}
	return 0
}

// collectJobs expands file arguments into validation jobs, reading
// every source upfront. "-" reads from stdin.
func collectJobs(args []string) ([]worker.Job, bool) {
	jobs := make([]worker.Job, 0, len(args))
	hadErrors := false

	for _, arg := range args {
		if arg == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error reading stdin: %v\n", err)
				hadErrors = true
				continue
			}
			jobs = append(jobs, worker.Job{Name: "stdin", Data: data})
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "no files match %q\n", arg)
			hadErrors = true
			continue
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "error reading %s: %v\n", path, err)
				hadErrors = true
				continue
			}
			jobs = append(jobs, worker.Job{Name: path, Data: data})
		}
	}
	return jobs, hadErrors
}

func validateData(ctx context.Context, engine *validate.Engine, data []byte, name string) (*fhirprofiler.ValidationResult, error) {
	var sd r4.StructureDefinition
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("not a StructureDefinition: %w", err)
	}

	resource, err := loader.FromR4StructureDefinition(&sd)
	if err != nil {
		return nil, err
	}
	meta := loader.MetadataFromR4(&sd)

	profile := validate.NewProfile(meta.URL, meta.Name, string(meta.Status), resource)
	return engine.Validate(ctx, profile), nil
}

func makeReport(name string, result *fhirprofiler.ValidationResult) fileReport {
	return fileReport{
		Profile:     name,
		Valid:       result.Valid,
		Level:       result.Level.String(),
		Errors:      result.ErrorCount(),
		Warnings:    result.WarningCount(),
		Info:        result.InfoCount(),
		Diagnostics: result.SortedBySeverity(),
		Duration:    result.Duration.String(),
	}
}

func printText(cfg *config, name string, result *fhirprofiler.ValidationResult) {
	status := "VALID"
	if !result.Valid {
		status = "INVALID"
	}
	fmt.Printf("%s: %s (%d errors, %d warnings, %d info) [%s, %s]\n",
		name, status,
		result.ErrorCount(), result.WarningCount(), result.InfoCount(),
		result.Level, result.Duration.Round(time.Microsecond))

	for _, d := range result.SortedBySeverity() {
		if cfg.quiet && d.Severity == fhirprofiler.SeverityInfo {
			continue
		}
		fmt.Printf("  %s\n", d.String())
		if d.QuickFix != nil {
			fmt.Printf("    fix: %s\n", d.QuickFix.Title)
		}
	}
}
