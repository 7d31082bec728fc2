package service

import (
	"context"
	"strings"
	"sync"
)

// ValueSetInfo describes a resolved value set.
type ValueSetInfo struct {
	URL    string
	Name   string
	Status string
}

// TerminologyResolver answers whether value-set URLs resolve to real
// value sets. Implementations may consult a terminology server or a
// local package cache.
type TerminologyResolver interface {
	// ResolveValueSet reports whether the value-set URL is known.
	// The info is non-nil only when found.
	ResolveValueSet(ctx context.Context, valueSetURL string) (*ValueSetInfo, error)
}

// InMemoryTerminology is a TerminologyResolver backed by a map,
// pre-seeded with the core FHIR value sets. Editors use it offline;
// tests use it for deterministic answers.
type InMemoryTerminology struct {
	mu        sync.RWMutex
	valueSets map[string]*ValueSetInfo
}

// NewInMemoryTerminology creates a resolver seeded with the core value sets.
func NewInMemoryTerminology() *InMemoryTerminology {
	t := &InMemoryTerminology{valueSets: make(map[string]*ValueSetInfo)}
	for _, vs := range coreValueSets {
		t.valueSets[vs.URL] = vs
	}
	return t
}

// coreValueSets are the bindings base resource definitions reference
// most often. Enough for offline editing of common profiles.
var coreValueSets = []*ValueSetInfo{
	{URL: "http://hl7.org/fhir/ValueSet/administrative-gender", Name: "AdministrativeGender", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/observation-status", Name: "ObservationStatus", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/name-use", Name: "NameUse", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/identifier-use", Name: "IdentifierUse", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/contact-point-system", Name: "ContactPointSystem", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/observation-codes", Name: "LOINCCodes", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/marital-status", Name: "MaritalStatus", Status: "active"},
	{URL: "http://hl7.org/fhir/ValueSet/languages", Name: "CommonLanguages", Status: "active"},
}

// AddValueSet registers a value set, replacing any previous entry.
func (t *InMemoryTerminology) AddValueSet(info ValueSetInfo) {
	t.mu.Lock()
	t.valueSets[info.URL] = &info
	t.mu.Unlock()
}

// ResolveValueSet looks the URL up, ignoring any version suffix.
func (t *InMemoryTerminology) ResolveValueSet(_ context.Context, valueSetURL string) (*ValueSetInfo, error) {
	u := valueSetURL
	if i := strings.Index(u, "|"); i >= 0 {
		u = u[:i]
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if info, ok := t.valueSets[u]; ok {
		return info, nil
	}
	return nil, nil
}

// Verify interface compliance
var _ TerminologyResolver = (*InMemoryTerminology)(nil)
