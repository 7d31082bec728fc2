package fhirprofiler

// Version is the current version of the profiler library.
const Version = "0.1.0"

// FHIRVersion identifies a FHIR specification release.
type FHIRVersion string

// Supported FHIR versions.
const (
	// R4 is FHIR 4.0.1, the primary supported version.
	R4 FHIRVersion = "4.0.1"
	// R4B is FHIR 4.3.0.
	R4B FHIRVersion = "4.3.0"
	// R5 is FHIR 5.0.0.
	R5 FHIRVersion = "5.0.0"
)

// String returns the version string.
func (v FHIRVersion) String() string {
	return string(v)
}

// IsValid reports whether the version is one of the supported releases.
func (v FHIRVersion) IsValid() bool {
	switch v {
	case R4, R4B, R5:
		return true
	}
	return false
}
