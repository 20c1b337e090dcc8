package report

import (
	"strings"

	"kpiauditor/internal/domain"
)

// FormatValue renders a KPI value as its canonical display string. The
// switch is exhaustive over the union's kinds and total: it never fails.
//
//	absent          -> "N/A"
//	boolean         -> "Yes" / "No"
//	sequence        -> elements joined with ", "
//	structured map  -> "key: value" entries joined with " | "
//	scalar          -> the text verbatim
//
// Parameters:
//   - v: the KPI value to render.
// Returns:
//   - string: the display form.
func FormatValue(v domain.KPIValue) string {
	switch v.Kind() {
	case domain.ValueAbsent:
		return "N/A"
	case domain.ValueBool:
		if v.Bool() {
			return "Yes"
		}
		return "No"
	case domain.ValueList:
		return strings.Join(v.List(), ", ")
	case domain.ValueMap:
		parts := make([]string, 0, len(v.Entries()))
		for _, e := range v.Entries() {
			parts = append(parts, e.Key+": "+formatMapValue(e.Value))
		}
		return strings.Join(parts, " | ")
	default:
		return v.Scalar()
	}
}

// formatMapValue renders a nested map entry value: sequences join with ", ",
// everything else is stringified flat. Structured formatting does not recurse
// past one level.
func formatMapValue(v domain.KPIValue) string {
	switch v.Kind() {
	case domain.ValueList:
		return strings.Join(v.List(), ", ")
	case domain.ValueAbsent:
		return ""
	case domain.ValueBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case domain.ValueScalar:
		return v.Scalar()
	default:
		return FormatValue(v)
	}
}
