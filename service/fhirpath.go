// Package service holds the external collaborators the profiler core
// consumes: the FHIRPath parser, canonical-URL resolution, and
// terminology resolution. Implementations here adapt real services;
// the core depends only on the small interfaces.
package service

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gofhir/fhirpath"
)

// FHIRPathValidator answers "is this expression syntactically valid".
type FHIRPathValidator interface {
	ValidateExpression(expression string) error
}

// FHIRPathAdapter adapts the fhirpath package to FHIRPathValidator.
// Compiled expressions are cached: profiles re-validate the same
// invariants on every edit.
type FHIRPathAdapter struct {
	mu    sync.RWMutex
	cache map[string]*fhirpath.Expression
}

// NewFHIRPathAdapter creates a new FHIRPath adapter.
func NewFHIRPathAdapter() *FHIRPathAdapter {
	return &FHIRPathAdapter{
		cache: make(map[string]*fhirpath.Expression),
	}
}

// ValidateExpression compiles the expression, reporting any syntax
// error. Successful compilations are cached.
func (a *FHIRPathAdapter) ValidateExpression(expression string) error {
	a.mu.RLock()
	_, ok := a.cache[expression]
	a.mu.RUnlock()
	if ok {
		return nil
	}

	compiled, err := fhirpath.Compile(expression)
	if err != nil {
		return fmt.Errorf("compiling FHIRPath expression: %w", err)
	}

	a.mu.Lock()
	a.cache[expression] = compiled
	a.mu.Unlock()
	return nil
}

// CacheSize returns the number of cached expressions.
func (a *FHIRPathAdapter) CacheSize() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.cache)
}

// ClearCache drops all cached expressions.
func (a *FHIRPathAdapter) ClearCache() {
	a.mu.Lock()
	a.cache = make(map[string]*fhirpath.Expression)
	a.mu.Unlock()
}

// Verify interface compliance
var _ FHIRPathValidator = (*FHIRPathAdapter)(nil)

// CheckBalancedDelimiters is the local fallback used when the parser
// gives no structured detail: it verifies parentheses, brackets and
// quotes pair up. It is far weaker than a real parse and only catches
// gross mistakes.
func CheckBalancedDelimiters(expression string) error {
	var stack []rune
	inString := false
	var quote rune

	for _, r := range expression {
		if inString {
			if r == quote {
				inString = false
			}
			continue
		}
		switch r {
		case '\'', '"', '`':
			inString = true
			quote = r
		case '(', '[', '{':
			stack = append(stack, r)
		case ')', ']', '}':
			if len(stack) == 0 {
				return fmt.Errorf("unmatched %q", string(r))
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !delimitersMatch(open, r) {
				return fmt.Errorf("mismatched %q and %q", string(open), string(r))
			}
		}
	}
	if inString {
		return fmt.Errorf("unterminated string literal")
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q", string(stack[len(stack)-1]))
	}
	if strings.TrimSpace(expression) == "" {
		return fmt.Errorf("expression is empty")
	}
	return nil
}

func delimitersMatch(open, close rune) bool {
	switch open {
	case '(':
		return close == ')'
	case '[':
		return close == ']'
	case '{':
		return close == '}'
	}
	return false
}
