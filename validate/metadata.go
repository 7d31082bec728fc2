package validate

import (
	"fmt"
	"net/url"
	"strings"

	fhirprofiler "github.com/gofhir/profiler"
)

// publicationStatuses are the legal values of a profile's status.
var publicationStatuses = map[string]bool{
	"draft":   true,
	"active":  true,
	"retired": true,
	"unknown": true,
}

// metadataRule checks profile-level metadata: canonical URL, computable
// name, and publication status. It is a global rule and skips scoped
// (partial) subjects.
type metadataRule struct{}

func (metadataRule) Name() string { return "metadata" }

func (metadataRule) Check(p *Profile) []fhirprofiler.Diagnostic {
	if p.IsPartial() {
		return nil
	}
	var ds []fhirprofiler.Diagnostic

	switch {
	case strings.TrimSpace(p.URL) == "":
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeMetaMissingURL).
			Message("profile has no canonical URL").
			Build())
	case !isWellFormedURL(p.URL):
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeMetaInvalidURL).
			Message(fmt.Sprintf("canonical URL %q is not a well-formed URL", p.URL)).
			Build())
	}

	switch {
	case strings.TrimSpace(p.Name) == "":
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeMetaMissingName).
			Message("profile has no computable name").
			Build())
	case !isComputableName(p.Name):
		ds = append(ds, fhirprofiler.Warning(fhirprofiler.CodeMetaInvalidName).
			Message(fmt.Sprintf("name %q should start with an uppercase letter and contain only letters, digits and underscores", p.Name)).
			Build())
	}

	if p.Status != "" && !publicationStatuses[p.Status] {
		ds = append(ds, fhirprofiler.Error(fhirprofiler.CodeMetaInvalidStatus).
			Message(fmt.Sprintf("status %q is not a publication status (draft, active, retired, unknown)", p.Status)).
			Build())
	}
	return ds
}

func isWellFormedURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// isComputableName enforces the conventional computable-name shape:
// uppercase first letter, then letters, digits or underscores.
func isComputableName(name string) bool {
	for i, r := range name {
		if i == 0 {
			if r < 'A' || r > 'Z' {
				return false
			}
			continue
		}
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') ||
			(r >= '0' && r <= '9') || r == '_' {
			continue
		}
		return false
	}
	return name != ""
}
