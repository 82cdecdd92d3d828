// Package selection models the per-order configuration state: the three
// product-detail dimensions, the chosen guideline set and the transition
// rules between them. Mutations are reducer-style methods on State so every
// re-synchronization rule lives in exactly one place.
package selection

import "slices"

// GuidelineSelection is the single source of truth for the chosen guideline
// codes. The business rule is "the same guideline set applies regardless of
// which detail section is active", so the per-section views are read-only
// projections of one master set instead of three containers kept in sync by
// convention.
type GuidelineSelection struct {
	codes []string
}

// Toggle adds the code when absent and removes it when present. Returns true
// when the code ended up selected.
func (s *GuidelineSelection) Toggle(code string) bool {
	for i, c := range s.codes {
		if c == code {
			s.codes = slices.Delete(s.codes, i, i+1)
			return false
		}
	}
	s.codes = append(s.codes, code)
	return true
}

// SetAll replaces the selection with exactly the given codes, deduplicated,
// preserving their order.
func (s *GuidelineSelection) SetAll(codes []string) {
	s.codes = s.codes[:0]
	for _, code := range codes {
		if !slices.Contains(s.codes, code) {
			s.codes = append(s.codes, code)
		}
	}
}

// Remove drops a single code if present.
func (s *GuidelineSelection) Remove(code string) {
	for i, c := range s.codes {
		if c == code {
			s.codes = slices.Delete(s.codes, i, i+1)
			return
		}
	}
}

// Clear empties the selection.
func (s *GuidelineSelection) Clear() {
	s.codes = s.codes[:0]
}

// Contains reports whether the code is selected.
func (s *GuidelineSelection) Contains(code string) bool {
	return slices.Contains(s.codes, code)
}

// Codes returns the selection in insertion order.
func (s *GuidelineSelection) Codes() []string {
	return slices.Clone(s.codes)
}

// Len returns the number of selected codes.
func (s *GuidelineSelection) Len() int {
	return len(s.codes)
}

// The three detail sections display the same selection. These projections
// exist because downstream order composition unions them defensively.

// SampleFormCodes returns the selection as seen from the sample-form section.
func (s *GuidelineSelection) SampleFormCodes() []string { return s.Codes() }

// SampleSolventCodes returns the selection as seen from the solvent section.
func (s *GuidelineSelection) SampleSolventCodes() []string { return s.Codes() }

// ApplicationCodes returns the selection as seen from the application section.
func (s *GuidelineSelection) ApplicationCodes() []string { return s.Codes() }
