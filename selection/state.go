package selection

import (
	"fmt"
	"strings"

	"github.com/biocule/quotation-api/rules"
)

// Phase is the position of a selection on its lifecycle chain. Editing is an
// orthogonal flag, not a phase.
type Phase string

const (
	PhaseEmpty             Phase = "empty"
	PhasePartiallySelected Phase = "partially_selected"
	PhaseFullySpecified    Phase = "fully_specified"
	PhaseGuidelinesChosen  Phase = "guidelines_chosen"
	PhaseCommitted         Phase = "committed"
)

// State is the mutable per-order configuration aggregate.
type State struct {
	Category string

	SampleForm    string
	SampleSolvent string
	Application   string

	CustomSampleForm    string
	CustomSampleSolvent string
	CustomApplication   string

	NumSamples int

	Selection GuidelineSelection

	// EditMode retargets the next commit at an existing cart item instead of
	// creating a new one.
	EditMode   bool
	EditItemID string

	committed bool
}

// NewState begins configuring a category.
func NewState(category string) *State {
	return &State{
		Category:   category,
		NumSamples: 1,
	}
}

// EditSeed carries the fields needed to pre-populate a selection from an
// existing cart item.
type EditSeed struct {
	ItemID        string
	Category      string
	SampleForm    string
	SampleSolvent string
	Application   string
	NumSamples    int
	Guidelines    []string
}

// BeginEdit pre-populates the chain from an existing cart item and raises
// the edit flag. The seeded values land at GuidelinesChosen, or
// FullySpecified when the item carried no guidelines.
func BeginEdit(seed EditSeed) *State {
	st := &State{
		Category:      seed.Category,
		SampleForm:    seed.SampleForm,
		SampleSolvent: seed.SampleSolvent,
		Application:   seed.Application,
		NumSamples:    seed.NumSamples,
		EditMode:      true,
		EditItemID:    seed.ItemID,
	}
	if st.NumSamples < 1 {
		st.NumSamples = 1
	}
	st.Selection.SetAll(seed.Guidelines)
	return st
}

// SetCategory switches the category. Outside edit mode this resets the whole
// machine; an edit session survives category display changes until saved or
// cancelled.
func (s *State) SetCategory(category string) {
	if s.EditMode {
		s.Category = category
		return
	}
	*s = *NewState(category)
}

// SetSampleForm records a sample-form choice. Chosen guidelines persist; the
// current application is pruned when the new form no longer allows it.
func (s *State) SetSampleForm(value, customText string) {
	s.SampleForm = value
	s.CustomSampleForm = customText
	s.committed = false

	if !rules.ApplicationAllowed(value, s.Application) {
		s.Application = ""
		s.CustomApplication = ""
	}
}

// SetSampleSolvent records a solvent choice without touching guidelines.
func (s *State) SetSampleSolvent(value, customText string) {
	s.SampleSolvent = value
	s.CustomSampleSolvent = customText
	s.committed = false
}

// SetApplication records an application choice without touching guidelines.
func (s *State) SetApplication(value, customText string) {
	s.Application = value
	s.CustomApplication = customText
	s.committed = false
}

// SetNumSamples records the sample count. Values below one are clamped.
func (s *State) SetNumSamples(n int) {
	if n < 1 {
		n = 1
	}
	s.NumSamples = n
	s.committed = false
}

// ResolvedGuidelines returns the currently applicable guideline codes for
// the state's detail combination.
func (s *State) ResolvedGuidelines() []string {
	return rules.Resolve(s.Category, s.SampleForm, s.SampleSolvent, s.Application)
}

// ToggleGuideline flips one guideline in the master set (and therefore in
// all three section projections at once).
func (s *State) ToggleGuideline(code string) bool {
	s.committed = false
	return s.Selection.Toggle(code)
}

// SelectAll sets the selection to exactly the resolver's current full list,
// or clears it when selected is false.
func (s *State) SelectAll(selected bool) {
	s.committed = false
	if !selected {
		s.Selection.Clear()
		return
	}
	s.Selection.SetAll(s.ResolvedGuidelines())
}

// ClearDetails resets the product details and guideline selections back to
// the empty phase, keeping the category.
func (s *State) ClearDetails() {
	category := s.Category
	editMode := s.EditMode
	editItemID := s.EditItemID
	*s = *NewState(category)
	s.EditMode = editMode
	s.EditItemID = editItemID
}

// MarkCommitted records that this state has been converted to a cart item.
func (s *State) MarkCommitted() {
	s.committed = true
}

// Phase reports the state's position on the lifecycle chain.
func (s *State) Phase() Phase {
	switch {
	case s.committed:
		return PhaseCommitted
	case s.Selection.Len() > 0:
		return PhaseGuidelinesChosen
	case s.SampleForm != "" && s.SampleSolvent != "" && s.Application != "":
		return PhaseFullySpecified
	case s.SampleForm != "" || s.SampleSolvent != "" || s.Application != "":
		return PhasePartiallySelected
	default:
		return PhaseEmpty
	}
}

// FieldError is a recoverable validation failure on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field failures for one blocked transition.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// Validate checks commit preconditions. A non-nil result blocks the commit
// locally; nothing downstream is mutated.
func (s *State) Validate() *ValidationError {
	var fields []FieldError

	if s.Category == "" {
		fields = append(fields, FieldError{Field: "category", Message: "category is required"})
	}

	if s.Category != rules.MedicalDevices {
		if s.SampleForm == "" {
			fields = append(fields, FieldError{Field: "sampleForm", Message: "sample form is required"})
		}
		if s.SampleSolvent == "" {
			fields = append(fields, FieldError{Field: "sampleSolvent", Message: "sample solvent is required"})
		}
		if s.Application == "" {
			fields = append(fields, FieldError{Field: "application", Message: "application is required"})
		}
	}

	if s.SampleForm == rules.SentinelOthers && strings.TrimSpace(s.CustomSampleForm) == "" {
		fields = append(fields, FieldError{Field: "customSampleForm", Message: "describe the sample form when choosing Others"})
	}
	if s.SampleSolvent == rules.SentinelOthers && strings.TrimSpace(s.CustomSampleSolvent) == "" {
		fields = append(fields, FieldError{Field: "customSampleSolvent", Message: "describe the sample solvent when choosing Others"})
	}
	if s.Application == rules.SentinelAnyOther && strings.TrimSpace(s.CustomApplication) == "" {
		fields = append(fields, FieldError{Field: "customApplication", Message: "describe the application when choosing Any other"})
	}

	if s.NumSamples < 1 {
		fields = append(fields, FieldError{Field: "numSamples", Message: "at least one sample is required"})
	}

	if s.Selection.Len() == 0 {
		fields = append(fields, FieldError{Field: "guidelines", Message: "select at least one guideline"})
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// DisplaySampleForm resolves the display string for the sample form,
// substituting the custom text when the sentinel value was chosen.
func (s *State) DisplaySampleForm() string {
	return displayValue(s.SampleForm, s.CustomSampleForm, rules.SentinelOthers)
}

// DisplaySampleSolvent resolves the display string for the solvent.
func (s *State) DisplaySampleSolvent() string {
	return displayValue(s.SampleSolvent, s.CustomSampleSolvent, rules.SentinelOthers)
}

// DisplayApplication resolves the display string for the application.
func (s *State) DisplayApplication() string {
	return displayValue(s.Application, s.CustomApplication, rules.SentinelAnyOther)
}

func displayValue(value, customText, sentinel string) string {
	if value == sentinel && strings.TrimSpace(customText) != "" {
		return fmt.Sprintf("%s (%s)", sentinel, strings.TrimSpace(customText))
	}
	return value
}
