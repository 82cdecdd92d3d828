// Package rules implements the combination resolver: the hard-coded mapping
// from a (category, sample form, sample solvent, application) tuple to the
// ordered set of applicable regulatory guidelines. All functions are pure;
// callers re-invoke Resolve whenever any detail dimension changes.
package rules

import "slices"

// MedicalDevices is the one category whose guideline set does not depend on
// the product-detail dimensions.
const MedicalDevices = "Medical Devices"

// Sentinel values a user can pick instead of a concrete option. Choosing one
// requires accompanying free text before the selection can be committed.
const (
	SentinelOthers   = "Others"
	SentinelAnyOther = "Any other"
)

// medicalDeviceSet is the full ISO 10993 battery, returned for Medical
// Devices regardless of the other arguments.
var medicalDeviceSet = []string{
	"ISO 10993-5",
	"ISO 10993-10",
	"ISO 10993-11",
	"ISO 10993-6",
	"ISO 10993-3",
	"ISO 10993-4",
}

// topicalSet applies to cream/gel formulations intended for topical use.
var topicalSet = []string{
	"OECD 405",
	"OECD 404",
	"OECD 406",
	"OECD 410",
}

// systemicSet applies to oral/solid/liquid dosage forms with a systemic
// route of administration.
var systemicSet = []string{
	"OECD 423",
	"OECD 407",
	"OECD 408",
	"OECD 452",
	"OECD 421",
	"OECD 414",
	"OECD 471",
	"OECD 474",
	"OECD 490",
	"OECD 473",
	"OECD 425",
}

// Spellings are case-sensitive as authored in the product catalog ("gel" is
// lowercase there and the rule table must match it exactly).
var topicalForms = []string{"Cream", "gel"}

var systemicForms = []string{
	"Tablets",
	"Capsules",
	"Syrup",
	"Suspensions",
	"Powders",
	"Granules",
	"Oral Strips",
	"Drops",
	SentinelOthers,
}

var systemicApplications = []string{
	"Oral",
	"Injectable",
	"Ophthalmic",
	"Nasal",
	"Rectal/Vaginal",
	SentinelAnyOther,
}

// allowedApplications restricts which applications remain selectable once a
// sample form is chosen. Selecting a form prunes an application that is no
// longer in its list.
var allowedApplications = map[string][]string{
	"Tablets":     {"Oral", SentinelAnyOther},
	"Capsules":    {"Oral", SentinelAnyOther},
	"Syrup":       {"Oral", SentinelAnyOther},
	"Suspensions": {"Oral", "Injectable", SentinelAnyOther},
	"Powders":     {"Oral", "Topical", SentinelAnyOther},
	"Granules":    {"Oral", SentinelAnyOther},
	"Oral Strips": {"Oral"},
	"Drops":       {"Oral", "Ophthalmic", "Nasal", SentinelAnyOther},
	"Cream":       {"Topical"},
	"gel":         {"Topical"},
	SentinelOthers: {
		"Oral", "Injectable", "Ophthalmic", "Nasal",
		"Rectal/Vaginal", "Topical", SentinelAnyOther,
	},
}

// Resolve maps a detail combination to its applicable guideline codes.
// The returned slice is freshly allocated, ordered for stable display and
// free of duplicates. An empty result is a legitimate outcome, either
// because a mandatory dimension is missing or because no rule matches.
func Resolve(category, sampleForm, sampleSolvent, application string) []string {
	if category == MedicalDevices {
		return slices.Clone(medicalDeviceSet)
	}

	// All three dimensions are mandatory for OECD-style categories.
	if sampleForm == "" || sampleSolvent == "" || application == "" {
		return nil
	}

	switch {
	case slices.Contains(topicalForms, sampleForm) && application == "Topical":
		return slices.Clone(topicalSet)
	case sampleForm == SentinelOthers && application == "Topical":
		return slices.Clone(topicalSet)
	case slices.Contains(systemicForms, sampleForm) && slices.Contains(systemicApplications, application):
		return slices.Clone(systemicSet)
	}

	// No rule matches. Combinations outside the authored branches yield no
	// guidelines on purpose; widening the table is a product decision.
	return nil
}

// AllowedApplications returns the applications selectable for a sample form.
// Unknown forms place no restriction.
func AllowedApplications(sampleForm string) []string {
	apps, ok := allowedApplications[sampleForm]
	if !ok {
		return nil
	}
	return slices.Clone(apps)
}

// ApplicationAllowed reports whether an application remains valid for the
// given sample form. The empty application is always allowed (nothing to
// prune).
func ApplicationAllowed(sampleForm, application string) bool {
	if application == "" {
		return true
	}
	apps, ok := allowedApplications[sampleForm]
	if !ok {
		return true
	}
	return slices.Contains(apps, application)
}
