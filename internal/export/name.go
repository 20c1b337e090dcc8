package export

import (
	"regexp"
	"strings"
	"time"
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName builds the export file name from the college name and the audit
// date: unsafe characters collapse to underscores, the date is ISO-formatted.
// Parameters:
//   - collegeName: the audit subject.
//   - when: the export timestamp.
//   - ext: extension including the dot, e.g. ".csv".
// Returns:
//   - string: e.g. "IIT_Bombay_2026-08-28.csv".
func FileName(collegeName string, when time.Time, ext string) string {
	safe := unsafeFileChars.ReplaceAllString(strings.TrimSpace(collegeName), "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		safe = "audit"
	}
	return safe + "_" + when.Format("2006-01-02") + ext
}
