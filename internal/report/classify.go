// Package report holds the pure derived-data pipeline over audit results:
// found/not-found classification, per-category aggregation, and value
// formatting for display and export.
package report

import (
	"strings"

	"kpiauditor/internal/domain"
)

// notFoundSentinels is the closed vocabulary the engine uses to signal "no
// data". It is a wire contract: membership is exact, never approximated by
// emptiness or prefix checks.
var notFoundSentinels = map[string]struct{}{
	"data not found":   {},
	"error":            {},
	"processing error": {},
	"not available":    {},
}

// IsFound reports whether a KPI value counts as found. A value is not found
// iff its lower-cased sentinel text is exactly one of the sentinel strings;
// everything else, including the empty string, is found.
// Parameters:
//   - v: the KPI value to classify.
// Returns:
//   - bool: true when the value carries real data.
func IsFound(v domain.KPIValue) bool {
	_, sentinel := notFoundSentinels[strings.ToLower(v.SentinelText())]
	return !sentinel
}
