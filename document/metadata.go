// Package document ties the pieces together: a Document owns one
// profiled resource, applies operations through its edit history, and
// exposes the state a profile editor needs. The Manager tracks the open
// document set, caches validation results, and fans events out to
// listeners.
package document

import (
	"strings"
	"time"
)

// Status is a profile's publication status.
type Status string

// Publication statuses from the FHIR publication-status value set.
const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusRetired Status = "retired"
	StatusUnknown Status = "unknown"
)

// IsValid reports whether the status is a known publication status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusRetired, StatusUnknown:
		return true
	}
	return false
}

// Metadata is the profile-level header of a document.
type Metadata struct {
	// URL is the profile's canonical URL.
	URL string `json:"url"`

	// Name is the computable name.
	Name string `json:"name"`

	// Title is the human-readable title.
	Title string `json:"title,omitempty"`

	// Version is the business version of the profile.
	Version string `json:"version,omitempty"`

	// Status is the publication status.
	Status Status `json:"status"`

	// Description explains the profile's purpose.
	Description string `json:"description,omitempty"`

	// Publisher names the publishing organization.
	Publisher string `json:"publisher,omitempty"`

	// Contacts lists publisher contact details.
	Contacts []string `json:"contacts,omitempty"`

	// Date is when the profile was last changed, updated on save.
	Date time.Time `json:"date,omitempty"`
}

// IsEditable reports whether a document with this metadata accepts
// edits. Only draft profiles accept edits; published, retired and
// unknown-status profiles are frozen.
func (m Metadata) IsEditable() bool {
	return m.Status == StatusDraft
}

// DisplayName returns the title when set, otherwise the name.
func (m Metadata) DisplayName() string {
	if strings.TrimSpace(m.Title) != "" {
		return m.Title
	}
	return m.Name
}
