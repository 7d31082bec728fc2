package loader

import "github.com/gofhir/fhir/r4"

// fixedValueOf extracts the fixed[x] value, primitives first, then the
// complex types rendered as maps.
func fixedValueOf(ed *r4.ElementDefinition) any {
	if v := primitiveValue(ed.FixedString, ed.FixedBoolean, ed.FixedInteger,
		ed.FixedDecimal, ed.FixedCode, ed.FixedUri, ed.FixedUrl, ed.FixedCanonical); v != nil {
		return v
	}
	return complexValue(ed.FixedCoding, ed.FixedCodeableConcept, ed.FixedIdentifier)
}

// patternValueOf extracts the pattern[x] value.
func patternValueOf(ed *r4.ElementDefinition) any {
	if v := primitiveValue(ed.PatternString, ed.PatternBoolean, ed.PatternInteger,
		ed.PatternDecimal, ed.PatternCode, ed.PatternUri, ed.PatternUrl, ed.PatternCanonical); v != nil {
		return v
	}
	return complexValue(ed.PatternCoding, ed.PatternCodeableConcept, ed.PatternIdentifier)
}

func primitiveValue(s *string, b *bool, i *int, d *float64, code, uri, url, canonical *string) any {
	switch {
	case s != nil:
		return *s
	case b != nil:
		return *b
	case i != nil:
		return *i
	case d != nil:
		return *d
	case code != nil:
		return *code
	case uri != nil:
		return *uri
	case url != nil:
		return *url
	case canonical != nil:
		return *canonical
	}
	return nil
}

func complexValue(coding *r4.Coding, concept *r4.CodeableConcept, identifier *r4.Identifier) any {
	switch {
	case coding != nil:
		return codingMap(coding)
	case concept != nil:
		m := map[string]any{}
		if len(concept.Coding) > 0 {
			codings := make([]any, 0, len(concept.Coding))
			for i := range concept.Coding {
				codings = append(codings, codingMap(&concept.Coding[i]))
			}
			m["coding"] = codings
		}
		if concept.Text != nil {
			m["text"] = *concept.Text
		}
		return m
	case identifier != nil:
		m := map[string]any{}
		if identifier.System != nil {
			m["system"] = *identifier.System
		}
		if identifier.Value != nil {
			m["value"] = *identifier.Value
		}
		return m
	}
	return nil
}

func codingMap(coding *r4.Coding) map[string]any {
	m := map[string]any{}
	if coding.System != nil {
		m["system"] = *coding.System
	}
	if coding.Code != nil {
		m["code"] = *coding.Code
	}
	if coding.Display != nil {
		m["display"] = *coding.Display
	}
	return m
}
