package selection

import (
	"reflect"
	"testing"
)

func TestPhaseChain(t *testing.T) {
	st := NewState("Pharmaceuticals")
	if got := st.Phase(); got != PhaseEmpty {
		t.Fatalf("new state phase = %v, want %v", got, PhaseEmpty)
	}

	st.SetSampleForm("Tablets", "")
	if got := st.Phase(); got != PhasePartiallySelected {
		t.Errorf("after one dimension phase = %v, want %v", got, PhasePartiallySelected)
	}

	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Oral", "")
	if got := st.Phase(); got != PhaseFullySpecified {
		t.Errorf("after three dimensions phase = %v, want %v", got, PhaseFullySpecified)
	}

	st.ToggleGuideline("OECD 423")
	if got := st.Phase(); got != PhaseGuidelinesChosen {
		t.Errorf("after toggle phase = %v, want %v", got, PhaseGuidelinesChosen)
	}

	st.MarkCommitted()
	if got := st.Phase(); got != PhaseCommitted {
		t.Errorf("after commit phase = %v, want %v", got, PhaseCommitted)
	}
}

func TestShadowSetLockstep(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Tablets", "")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Oral", "")

	st.ToggleGuideline("OECD 423")
	st.ToggleGuideline("OECD 407")
	st.ToggleGuideline("OECD 423") // toggles back off

	master := st.Selection.Codes()
	views := map[string][]string{
		"sampleForm":    st.Selection.SampleFormCodes(),
		"sampleSolvent": st.Selection.SampleSolventCodes(),
		"application":   st.Selection.ApplicationCodes(),
	}
	for name, view := range views {
		if !reflect.DeepEqual(view, master) {
			t.Errorf("%s projection = %v, want master set %v", name, view, master)
		}
	}
	if want := []string{"OECD 407"}; !reflect.DeepEqual(master, want) {
		t.Errorf("master set = %v, want %v", master, want)
	}
}

func TestDimensionChangeKeepsGuidelines(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Tablets", "")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Oral", "")
	st.ToggleGuideline("OECD 423")

	st.SetSampleSolvent("Ethanol", "")

	if !st.Selection.Contains("OECD 423") {
		t.Error("changing a dimension cleared the chosen guidelines")
	}
}

func TestSampleFormPrunesApplication(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Tablets", "")
	st.SetApplication("Oral", "")

	st.SetSampleForm("Cream", "")

	if st.Application != "" {
		t.Errorf("application = %q after selecting Cream, want it pruned", st.Application)
	}

	// Topical stays valid for Cream.
	st.SetApplication("Topical", "")
	st.SetSampleForm("gel", "")
	if st.Application != "Topical" {
		t.Errorf("application = %q after switching Cream to gel, want Topical kept", st.Application)
	}
}

func TestSelectAll(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Cream", "")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Topical", "")

	st.SelectAll(true)
	want := []string{"OECD 405", "OECD 404", "OECD 406", "OECD 410"}
	if got := st.Selection.Codes(); !reflect.DeepEqual(got, want) {
		t.Errorf("SelectAll(true) selected %v, want %v", got, want)
	}

	st.SelectAll(false)
	if st.Selection.Len() != 0 {
		t.Errorf("SelectAll(false) left %d codes selected", st.Selection.Len())
	}
}

func TestClearDetails(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Others", "paste")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Topical", "")
	st.SetNumSamples(4)
	st.SelectAll(true)

	st.ClearDetails()

	if st.Phase() != PhaseEmpty {
		t.Errorf("phase after clear = %v, want %v", st.Phase(), PhaseEmpty)
	}
	if st.Category != "Pharmaceuticals" {
		t.Errorf("category after clear = %q, want kept", st.Category)
	}
	if st.NumSamples != 1 {
		t.Errorf("numSamples after clear = %d, want 1", st.NumSamples)
	}
	if st.CustomSampleForm != "" {
		t.Error("custom text survived clear")
	}
}

func TestSetCategoryResetsUnlessEditing(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Tablets", "")
	st.SetCategory("Nutraceuticals")
	if st.SampleForm != "" || st.Phase() != PhaseEmpty {
		t.Error("category change outside edit mode did not reset the machine")
	}

	edit := BeginEdit(EditSeed{
		ItemID:        "item-1",
		Category:      "Pharmaceuticals",
		SampleForm:    "Tablets",
		SampleSolvent: "Distilled Water",
		Application:   "Oral",
		NumSamples:    2,
		Guidelines:    []string{"OECD 423"},
	})
	edit.SetCategory("Nutraceuticals")
	if edit.SampleForm != "Tablets" || edit.EditItemID != "item-1" {
		t.Error("category change during edit mode reset the edit session")
	}
}

func TestBeginEditPhase(t *testing.T) {
	withGuidelines := BeginEdit(EditSeed{
		ItemID: "a", Category: "Pharmaceuticals",
		SampleForm: "Tablets", SampleSolvent: "Distilled Water", Application: "Oral",
		NumSamples: 1, Guidelines: []string{"OECD 423"},
	})
	if got := withGuidelines.Phase(); got != PhaseGuidelinesChosen {
		t.Errorf("edit seed with guidelines phase = %v, want %v", got, PhaseGuidelinesChosen)
	}

	withoutGuidelines := BeginEdit(EditSeed{
		ItemID: "b", Category: "Pharmaceuticals",
		SampleForm: "Tablets", SampleSolvent: "Distilled Water", Application: "Oral",
		NumSamples: 1,
	})
	if got := withoutGuidelines.Phase(); got != PhaseFullySpecified {
		t.Errorf("edit seed without guidelines phase = %v, want %v", got, PhaseFullySpecified)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		build      func() *State
		wantFields []string
	}{
		{
			name: "complete state passes",
			build: func() *State {
				st := NewState("Pharmaceuticals")
				st.SetSampleForm("Tablets", "")
				st.SetSampleSolvent("Distilled Water", "")
				st.SetApplication("Oral", "")
				st.ToggleGuideline("OECD 423")
				return st
			},
		},
		{
			name: "missing dimensions reported per field",
			build: func() *State {
				st := NewState("Pharmaceuticals")
				st.ToggleGuideline("OECD 423")
				return st
			},
			wantFields: []string{"sampleForm", "sampleSolvent", "application"},
		},
		{
			name: "sentinel without custom text is rejected",
			build: func() *State {
				st := NewState("Pharmaceuticals")
				st.SetSampleForm("Others", "")
				st.SetSampleSolvent("Others", " ")
				st.SetApplication("Any other", "")
				st.ToggleGuideline("OECD 423")
				return st
			},
			wantFields: []string{"customSampleForm", "customSampleSolvent", "customApplication"},
		},
		{
			name: "no guidelines selected",
			build: func() *State {
				st := NewState("Pharmaceuticals")
				st.SetSampleForm("Tablets", "")
				st.SetSampleSolvent("Distilled Water", "")
				st.SetApplication("Oral", "")
				return st
			},
			wantFields: []string{"guidelines"},
		},
		{
			name: "medical devices skips dimension checks",
			build: func() *State {
				st := NewState("Medical Devices")
				st.ToggleGuideline("ISO 10993-5")
				return st
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build().Validate()
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want failure on %v", tt.wantFields)
			}
			var got []string
			for _, f := range err.Fields {
				got = append(got, f.Field)
			}
			if !reflect.DeepEqual(got, tt.wantFields) {
				t.Errorf("failed fields = %v, want %v", got, tt.wantFields)
			}
		})
	}
}

func TestDisplayValues(t *testing.T) {
	st := NewState("Pharmaceuticals")
	st.SetSampleForm("Others", "herbal paste")
	st.SetSampleSolvent("Distilled Water", "")
	st.SetApplication("Any other", "sublingual")

	if got, want := st.DisplaySampleForm(), "Others (herbal paste)"; got != want {
		t.Errorf("DisplaySampleForm() = %q, want %q", got, want)
	}
	if got, want := st.DisplaySampleSolvent(), "Distilled Water"; got != want {
		t.Errorf("DisplaySampleSolvent() = %q, want %q", got, want)
	}
	if got, want := st.DisplayApplication(), "Any other (sublingual)"; got != want {
		t.Errorf("DisplayApplication() = %q, want %q", got, want)
	}
}
