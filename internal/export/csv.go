// Package export turns an audit snapshot into its two file formats: a
// tabular CSV report for spreadsheets and a structured JSON document for
// downstream ingestion. Both encoders are pure; writing the bytes somewhere
// is the Sink's job.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"kpiauditor/internal/domain"
	"kpiauditor/internal/report"
)

// csvColumns is the fixed column set of the KPI details table.
var csvColumns = []string{
	"KPI Name", "Category", "Value", "Evidence", "Source URL",
	"System Confidence", "LLM Confidence", "Source Priority", "Data Year", "Recency",
}

// EncodeCSV renders the audit as the tabular report: a college header, an
// overview block, the category breakdown table, and the per-result table.
// Lossy by design; the JSON encoder is the lossless one.
// Parameters:
//   - job: the audit snapshot to render.
//   - auditDate: timestamp stamped into the overview block.
// Returns:
//   - []byte: the CSV payload.
func EncodeCSV(job *domain.AuditJob, auditDate time.Time) []byte {
	summary := effectiveSummary(job)
	breakdown := report.Aggregate(job.Results)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "College Name,%s\n", csvQuote(job.CollegeName))
	buf.WriteByte('\n')

	buf.WriteString("=== AUDIT OVERVIEW ===\n")
	fmt.Fprintf(&buf, "Audit Date,%s\n", csvQuote(auditDate.Format("2006-01-02 15:04:05")))
	fmt.Fprintf(&buf, "Time Taken,%s\n", csvQuote(FormatTimeTaken(job.TimeTakenSeconds)))
	fmt.Fprintf(&buf, "Total KPIs,%d\n", summary.TotalKPIs)
	fmt.Fprintf(&buf, "Data Found,%d\n", summary.DataFound)
	fmt.Fprintf(&buf, "Data Not Found,%d\n", summary.DataNotFound)
	fmt.Fprintf(&buf, "High Confidence,%d\n", summary.HighConfidence)
	fmt.Fprintf(&buf, "Coverage Percentage,%v%%\n", summary.CoveragePercentage)
	buf.WriteByte('\n')

	buf.WriteString("=== CATEGORY BREAKDOWN ===\n")
	buf.WriteString("Category,Found,Total,Percentage\n")
	for _, b := range breakdown.Buckets() {
		fmt.Fprintf(&buf, "%s,%d,%d,%d%%\n", csvQuote(b.Category), b.Found, b.Total, b.Percentage())
	}
	buf.WriteByte('\n')

	buf.WriteString("=== KPI DETAILS ===\n")
	buf.WriteString(strings.Join(csvColumns, ",") + "\n")
	for i := range job.Results {
		r := &job.Results[i]
		fields := []string{
			r.KPIName,
			r.Category,
			report.FormatValue(r.Value),
			r.EvidenceQuote,
			r.SourceURL,
			string(r.EffectiveSystemConfidence()),
			string(r.LLMConfidence),
			string(r.SourcePriority),
			r.DataYear,
			string(r.Recency),
		}
		for j, f := range fields {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteString(csvQuote(f))
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// csvQuote wraps a field in double quotes, doubling embedded quotes. Every
// field is quoted unconditionally so the report survives commas and newlines
// in evidence text.
func csvQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatTimeTaken renders an audit duration: minutes and seconds at or above
// one minute, bare seconds below it, "N/A" when unknown.
// Parameters:
//   - seconds: elapsed seconds, nil when the audit never finished.
// Returns:
//   - string: e.g. "2m 5s", "45s", or "N/A".
func FormatTimeTaken(seconds *float64) string {
	if seconds == nil {
		return "N/A"
	}
	total := int(*seconds)
	if total >= 60 {
		return fmt.Sprintf("%dm %ds", total/60, total%60)
	}
	return fmt.Sprintf("%ds", total)
}

// effectiveSummary prefers the engine's summary and recomputes one from the
// results otherwise, so partially populated audits still export.
func effectiveSummary(job *domain.AuditJob) *domain.AuditSummary {
	if job.Summary != nil {
		return job.Summary
	}
	return report.Summarize(job.Results)
}
