package rules

import "fmt"

// Explain describes why Resolve returned an empty list for the given
// combination, so the UI can tell the user what is missing instead of
// showing a bare empty state. It returns "" when the combination does
// resolve to at least one guideline.
func Explain(category, sampleForm, sampleSolvent, application string) string {
	if len(Resolve(category, sampleForm, sampleSolvent, application)) > 0 {
		return ""
	}

	var missing []string
	if sampleForm == "" {
		missing = append(missing, "sample form")
	}
	if sampleSolvent == "" {
		missing = append(missing, "sample solvent")
	}
	if application == "" {
		missing = append(missing, "application")
	}

	switch len(missing) {
	case 0:
		return fmt.Sprintf("no applicable guidelines for sample form %q with application %q", sampleForm, application)
	case 1:
		return fmt.Sprintf("select a %s to see applicable guidelines", missing[0])
	default:
		return "select sample form, sample solvent and application to see applicable guidelines"
	}
}
