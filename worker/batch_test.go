package worker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	fhirprofiler "github.com/gofhir/profiler"
)

func jobs(n int) []Job {
	out := make([]Job, n)
	for i := range out {
		out[i] = Job{Name: fmt.Sprintf("profile-%d.json", i)}
	}
	return out
}

// countingValidator fails jobs whose name contains "bad" and attaches
// an error diagnostic to names containing "invalid".
func countingValidator(_ context.Context, job Job) (*fhirprofiler.ValidationResult, error) {
	if strings.Contains(job.Name, "bad") {
		return nil, errors.New("unreadable")
	}
	r := fhirprofiler.NewResult()
	if strings.Contains(job.Name, "invalid") {
		r.Add(fhirprofiler.Error(fhirprofiler.CodeMetaMissingURL).Message("no url").Build())
	}
	return r, nil
}

func TestBatchPreservesOrder(t *testing.T) {
	b := NewBatch(countingValidator, 4)
	in := jobs(16)

	out := b.Run(context.Background(), in)
	if out.Completed != 16 {
		t.Fatalf("Completed = %d, want 16", out.Completed)
	}
	for i, item := range out.Items {
		if item.Name != in[i].Name {
			t.Errorf("Items[%d].Name = %q, want %q", i, item.Name, in[i].Name)
		}
		if item.Err != nil || item.Result == nil {
			t.Errorf("Items[%d] unexpected outcome: %v", i, item.Err)
		}
	}
	if out.HasErrors() {
		t.Error("clean batch should have no errors")
	}
}

func TestBatchSequentialForSmallInputs(t *testing.T) {
	b := NewBatch(countingValidator, 8)
	out := b.Run(context.Background(), jobs(2))
	if out.Completed != 2 || len(out.Items) != 2 {
		t.Errorf("Completed = %d, Items = %d; want 2, 2", out.Completed, len(out.Items))
	}
}

func TestBatchCountsFailures(t *testing.T) {
	b := NewBatch(countingValidator, 2)
	in := []Job{
		{Name: "ok.json"},
		{Name: "bad.json"},
		{Name: "invalid.json"},
		{Name: "also-ok.json"},
	}

	out := b.Run(context.Background(), in)
	if out.Failed != 1 {
		t.Errorf("Failed = %d, want 1", out.Failed)
	}
	if !out.HasErrors() {
		t.Error("batch with a failed job should report errors")
	}
	// One load failure plus one error diagnostic.
	if out.ErrorCount() != 2 {
		t.Errorf("ErrorCount() = %d, want 2", out.ErrorCount())
	}
}

func TestBatchEmptyInput(t *testing.T) {
	b := NewBatch(countingValidator, 0)
	out := b.Run(context.Background(), nil)
	if out.Completed != 0 || out.HasErrors() {
		t.Errorf("empty batch = %+v", out)
	}
}

func TestBatchStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatch(countingValidator, 1)
	out := b.Run(ctx, jobs(2))
	if out.Completed != 0 {
		t.Errorf("Completed = %d, want 0 after cancellation", out.Completed)
	}
}
