package service

import (
	"context"
	"errors"
	"testing"
)

func TestFHIRPathAdapterCachesCompilations(t *testing.T) {
	a := NewFHIRPathAdapter()

	if err := a.ValidateExpression("name.exists()"); err != nil {
		t.Fatalf("valid expression rejected: %v", err)
	}
	if a.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", a.CacheSize())
	}

	// Second validation is served from the cache.
	if err := a.ValidateExpression("name.exists()"); err != nil {
		t.Fatal(err)
	}
	if a.CacheSize() != 1 {
		t.Errorf("CacheSize() = %d, want 1", a.CacheSize())
	}

	if err := a.ValidateExpression("name.(("); err == nil {
		t.Error("malformed expression should be rejected")
	}
	if a.CacheSize() != 1 {
		t.Error("failed compilations must not be cached")
	}

	a.ClearCache()
	if a.CacheSize() != 0 {
		t.Errorf("CacheSize() after clear = %d, want 0", a.CacheSize())
	}
}

func TestCheckBalancedDelimiters(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{"simple", "name.exists()", false},
		{"nested", "where(system = 'official').first()", false},
		{"brackets", "value[x].ofType(Quantity)", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"unclosed paren", "name.exists(", true},
		{"unmatched close", "name.exists())", true},
		{"mismatched pair", "name.exists(]", true},
		{"unterminated string", "system = 'official", true},
		{"paren inside string", "system = '(not a paren'", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckBalancedDelimiters(tt.expression)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckBalancedDelimiters(%q) = %v, wantErr %v", tt.expression, err, tt.wantErr)
			}
		})
	}
}

func TestHeuristicResolver(t *testing.T) {
	r := NewHeuristicResolver()
	ctx := context.Background()

	tests := []struct {
		url  string
		want bool
	}{
		{"http://hl7.org/fhir/StructureDefinition/Patient", true},
		{"http://hl7.org/fhir/ValueSet/administrative-gender", true},
		{"http://terminology.hl7.org/CodeSystem/v2-0203", true},
		{"http://example.org/fhir/StructureDefinition/my-patient", true},
		{"https://example.org/anything", true},
		{"urn:oid:2.16.840.1.113883", false},
		{"", false},
		{"not-a-url", false},
	}
	for _, tt := range tests {
		ok, err := r.Resolve(ctx, tt.url)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tt.url, err)
		}
		if ok != tt.want {
			t.Errorf("Resolve(%q) = %v, want %v", tt.url, ok, tt.want)
		}
	}
}

func TestRegistryResolver(t *testing.T) {
	r := NewRegistryResolver()
	r.Register("http://example.org/fhir/StructureDefinition/known")
	ctx := context.Background()

	ok, err := r.Resolve(ctx, "http://example.org/fhir/StructureDefinition/known")
	if err != nil || !ok {
		t.Errorf("Resolve(known) = %v, %v; want true, nil", ok, err)
	}

	// Unknown URLs defer to the next resolver in a chain.
	if _, err := r.Resolve(ctx, "http://example.org/unknown"); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Resolve(unknown) error = %v, want ErrNotSupported", err)
	}
}

func TestResolverChainFallsThrough(t *testing.T) {
	registry := NewRegistryResolver()
	registry.Register("http://example.org/fhir/StructureDefinition/local")
	chain := NewResolverChain(registry, NewHeuristicResolver())
	ctx := context.Background()

	ok, err := chain.Resolve(ctx, "http://example.org/fhir/StructureDefinition/local")
	if err != nil || !ok {
		t.Errorf("chain should answer from the registry: %v, %v", ok, err)
	}

	// The registry defers, the heuristic answers.
	ok, err = chain.Resolve(ctx, "http://hl7.org/fhir/StructureDefinition/Patient")
	if err != nil || !ok {
		t.Errorf("chain should fall through to the heuristic: %v, %v", ok, err)
	}

	ok, err = chain.Resolve(ctx, "urn:oid:1.2.3")
	if err != nil || ok {
		t.Errorf("chain = %v, %v; want false, nil", ok, err)
	}
}

func TestResolverChainEmpty(t *testing.T) {
	chain := NewResolverChain()
	if _, err := chain.Resolve(context.Background(), "http://example.org"); err == nil {
		t.Error("empty chain should error")
	}
}

func TestInMemoryTerminology(t *testing.T) {
	tx := NewInMemoryTerminology()
	ctx := context.Background()

	info, err := tx.ResolveValueSet(ctx, "http://hl7.org/fhir/ValueSet/administrative-gender")
	if err != nil {
		t.Fatal(err)
	}
	if info == nil || info.Name != "AdministrativeGender" {
		t.Errorf("info = %+v, want AdministrativeGender", info)
	}

	// Version suffixes are ignored on lookup.
	info, err = tx.ResolveValueSet(ctx, "http://hl7.org/fhir/ValueSet/administrative-gender|4.0.1")
	if err != nil || info == nil {
		t.Error("versioned URL should resolve to the unversioned entry")
	}

	info, err = tx.ResolveValueSet(ctx, "http://example.org/fhir/ValueSet/private")
	if err != nil {
		t.Fatal(err)
	}
	if info != nil {
		t.Error("unknown value set should resolve to nil")
	}

	tx.AddValueSet(ValueSetInfo{URL: "http://example.org/fhir/ValueSet/private", Name: "Private", Status: "draft"})
	info, _ = tx.ResolveValueSet(ctx, "http://example.org/fhir/ValueSet/private")
	if info == nil || info.Name != "Private" {
		t.Errorf("info = %+v, want Private after AddValueSet", info)
	}
}
