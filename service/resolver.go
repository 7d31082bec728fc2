package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotSupported signals that a resolver cannot answer for the given
// URL and the next resolver in the chain should be tried.
var ErrNotSupported = errors.New("resolver does not support this URL")

// URLResolver decides whether a canonical URL points at a definition
// that can be resolved.
type URLResolver interface {
	// Resolve reports whether the canonical URL is resolvable. The
	// error is non-nil only when the resolver itself failed; an
	// unknown URL is (false, nil).
	Resolve(ctx context.Context, canonicalURL string) (bool, error)
}

// ResolverChain tries a sequence of resolvers in order. The first one
// that answers (does not return ErrNotSupported) wins.
type ResolverChain struct {
	resolvers []URLResolver
}

// NewResolverChain creates a chain of resolvers, consulted in order.
func NewResolverChain(resolvers ...URLResolver) *ResolverChain {
	return &ResolverChain{resolvers: resolvers}
}

// Add appends a resolver to the end of the chain.
func (c *ResolverChain) Add(r URLResolver) {
	c.resolvers = append(c.resolvers, r)
}

// Resolve consults each resolver in order until one answers.
func (c *ResolverChain) Resolve(ctx context.Context, canonicalURL string) (bool, error) {
	if len(c.resolvers) == 0 {
		return false, fmt.Errorf("no resolvers configured")
	}
	for _, r := range c.resolvers {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		ok, err := r.Resolve(ctx, canonicalURL)
		if errors.Is(err, ErrNotSupported) {
			continue
		}
		if err != nil {
			return false, err
		}
		return ok, nil
	}
	return false, ErrNotSupported
}

// HeuristicResolver answers resolvability from URL shape alone, with no
// network access. It accepts core FHIR canonical URLs, anything that
// looks like a StructureDefinition reference, and well-formed http(s)
// URLs. It is the default resolver for offline editing.
type HeuristicResolver struct{}

// NewHeuristicResolver creates the offline shape-based resolver.
func NewHeuristicResolver() *HeuristicResolver {
	return &HeuristicResolver{}
}

// corePrefixes are the canonical URL roots published by HL7 itself.
var corePrefixes = []string{
	"http://hl7.org/fhir/StructureDefinition/",
	"http://hl7.org/fhir/ValueSet/",
	"http://hl7.org/fhir/CodeSystem/",
	"http://terminology.hl7.org/",
}

// Resolve reports whether the URL matches a recognized shape.
func (r *HeuristicResolver) Resolve(_ context.Context, canonicalURL string) (bool, error) {
	u := strings.TrimSpace(canonicalURL)
	if u == "" {
		return false, nil
	}
	for _, p := range corePrefixes {
		if strings.HasPrefix(u, p) {
			return true, nil
		}
	}
	if strings.Contains(u, "/StructureDefinition/") {
		return true, nil
	}
	if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
		return true, nil
	}
	return false, nil
}

// RegistryResolver answers from an explicit set of known canonical
// URLs, typically loaded from an implementation guide package. URLs it
// has never seen are deferred to the rest of the chain.
type RegistryResolver struct {
	mu    sync.RWMutex
	known map[string]struct{}
}

// NewRegistryResolver creates an empty registry resolver.
func NewRegistryResolver() *RegistryResolver {
	return &RegistryResolver{known: make(map[string]struct{})}
}

// Register marks a canonical URL as resolvable.
func (r *RegistryResolver) Register(canonicalURL string) {
	r.mu.Lock()
	r.known[canonicalURL] = struct{}{}
	r.mu.Unlock()
}

// Resolve answers positively for registered URLs and defers otherwise.
func (r *RegistryResolver) Resolve(_ context.Context, canonicalURL string) (bool, error) {
	r.mu.RLock()
	_, ok := r.known[canonicalURL]
	r.mu.RUnlock()
	if ok {
		return true, nil
	}
	return false, ErrNotSupported
}

// Verify interface compliance
var (
	_ URLResolver = (*ResolverChain)(nil)
	_ URLResolver = (*HeuristicResolver)(nil)
	_ URLResolver = (*RegistryResolver)(nil)
)
