package validate

import (
	"fmt"
	"strings"

	fhirprofiler "github.com/gofhir/profiler"
	"github.com/gofhir/profiler/ir"
)

// slicingRule checks slicing definitions and slice sets: discriminators
// present and well formed, slice names legal and unique, closed slicings
// non-empty, and no slices without a slicing definition.
type slicingRule struct{}

func (slicingRule) Name() string { return "slicing" }

func (slicingRule) Check(p *Profile) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic
	for _, node := range p.Nodes() {
		ds = append(ds, checkNodeSlicing(node)...)
	}
	return ds
}

func checkNodeSlicing(node *ir.ElementNode) []fhirprofiler.Diagnostic {
	var ds []fhirprofiler.Diagnostic

	if node.Slicing == nil {
		if len(node.Slices) > 0 {
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeSliceWithoutSlicing).
				Message(fmt.Sprintf("%d slice(s) present without a slicing definition", len(node.Slices))).
				At(node.Path).
				Build())
		}
		return ds
	}

	if len(node.Slicing.Discriminators) == 0 {
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeSliceNoDiscriminator).
			Message("slicing is defined without discriminators").
			At(node.Path).
			Build())
	}

	for _, d := range node.Slicing.Discriminators {
		switch {
		case strings.TrimSpace(d.Path) == "":
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeSliceEmptyDiscriminatorPath).
				Message("discriminator path is empty").
				At(node.Path).
				Build())
		case !isValidDiscriminatorPath(d.Path):
			b := fhirprofiler.Error(fhirprofiler.CodeSliceInvalidDiscriminatorPath).
				Message(fmt.Sprintf("discriminator path %q is malformed", d.Path)).
				At(node.Path)
			if trimmed := strings.TrimSpace(d.Path); trimmed != d.Path && isValidDiscriminatorPath(trimmed) {
				b.Fix(&fhirprofiler.QuickFix{
					Kind:        fhirprofiler.FixRenameDiscriminatorPath,
					Title:       fmt.Sprintf("Change discriminator path to %q", trimmed),
					ElementPath: node.Path,
					Params:      map[string]any{"old_path": d.Path, "new_path": trimmed},
				})
			}
			ds = append(ds, b.Build())
		}
		if !d.Type.IsValid() {
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeSliceInvalidDiscriminatorPath).
				Message(fmt.Sprintf("discriminator type %q is not a known discriminator type", d.Type)).
				At(node.Path).
				Build())
		}
	}

	if node.Slicing.Rules == ir.RulesClosed && len(node.Slices) == 0 {
		ds = append(ds, fhirprofiler.Warning(fhirprofiler.CodeSliceClosedEmpty).
			Message("closed slicing declares no slices; no instance data can match").
			At(node.Path).
			Build())
	}

	seen := make(map[string]bool, len(node.Slices))
	for _, s := range node.Slices {
		if !ir.IsValidSliceName(s.Name) {
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeSliceInvalidName).
				Message(fmt.Sprintf("slice name %q must start with a letter and contain only letters, digits, hyphens and underscores", s.Name)).
				At(node.Path).
				Build())
		}
		if seen[s.Name] {
			ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeSliceDuplicateName).
				Message(fmt.Sprintf("slice name %q is used more than once", s.Name)).
				At(node.Path).
				Fix(&fhirprofiler.QuickFix{
					Kind:        fhirprofiler.FixRemoveSlice,
					Title:       fmt.Sprintf("Remove duplicate slice %q", s.Name),
					ElementPath: node.Path,
					Params:      map[string]any{"name": s.Name},
				}).
				Build())
		}
		seen[s.Name] = true
	}
	return ds
}

// isValidDiscriminatorPath accepts restricted FHIRPath discriminator
// paths: dot-separated identifiers, $this, and the resolve() and
// extension('url') functions.
func isValidDiscriminatorPath(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, ".") {
		if seg == "$this" || seg == "resolve()" {
			continue
		}
		if strings.HasPrefix(seg, "extension(") && strings.HasSuffix(seg, ")") {
			continue
		}
		if strings.HasPrefix(seg, "ofType(") && strings.HasSuffix(seg, ")") {
			continue
		}
		if !isIdentifierSegment(seg) {
			return false
		}
	}
	return true
}

func isIdentifierSegment(seg string) bool {
	if seg == "" {
		return false
	}
	for i, r := range seg {
		alpha := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		digit := r >= '0' && r <= '9'
		if i == 0 && !alpha {
			return false
		}
		if !alpha && !digit && r != '[' && r != ']' && r != 'x' {
			return false
		}
	}
	return true
}
