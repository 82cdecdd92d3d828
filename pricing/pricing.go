// Package pricing derives study durations and prices from catalog records.
package pricing

import (
	"fmt"
	"math"

	"github.com/biocule/quotation-api/catalog"
)

// TotalDuration returns the study duration in days after applying the
// deviation percentage to the base duration. The product is rounded half up.
func TotalDuration(baseDurationDays, deviationPercent int) int {
	deviation := math.Round(float64(baseDurationDays) * float64(deviationPercent) / 100.0)
	return baseDurationDays + int(deviation)
}

// FormatDuration renders a day count as a human-readable duration. Years get
// a remainder-days clause when the remainder is non-zero; months, weeks and
// days render as a single unit. Unit labels pluralize above one.
func FormatDuration(days int) string {
	switch {
	case days >= 365:
		years := days / 365
		remainder := days % 365
		s := fmt.Sprintf("%d %s", years, pluralize("year", years))
		if remainder > 0 {
			s += fmt.Sprintf(" %d %s", remainder, pluralize("day", remainder))
		}
		return s
	case days >= 30:
		months := days / 30
		return fmt.Sprintf("%d %s", months, pluralize("month", months))
	case days >= 7:
		weeks := days / 7
		return fmt.Sprintf("%d %s", weeks, pluralize("week", weeks))
	case days == 0:
		return "0 days"
	default:
		return fmt.Sprintf("%d %s", days, pluralize("day", days))
	}
}

func pluralize(unit string, n int) string {
	if n > 1 {
		return unit + "s"
	}
	return unit
}

// PriceFor sums the catalog unit prices of the given guideline codes for a
// category. Codes absent from the catalog contribute nothing; a stale or
// unknown code must never fail the whole quotation.
func PriceFor(cat *catalog.Catalog, category string, codes []string) int {
	total := 0
	for _, code := range codes {
		if g, ok := cat.GuidelineData(category, code); ok {
			total += g.UnitPrice
		}
	}
	return total
}
