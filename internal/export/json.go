package export

import (
	"encoding/json"
	"time"

	"kpiauditor/internal/domain"
	"kpiauditor/internal/report"
)

// Document is the structured export payload. Field names are part of the
// ingestion contract downstream; results round-trip exactly.
type Document struct {
	CollegeName      string          `json:"college_name"`
	AuditDate        string          `json:"audit_date"`
	TimeTakenSeconds *float64        `json:"time_taken_seconds"`
	TimeTaken        string          `json:"time_taken"`
	Summary          *SummarySection `json:"summary"`
	Results          []ResultRecord  `json:"results"`
}

// SummarySection mirrors domain.AuditSummary with the category mapping kept
// in first-appearance order.
type SummarySection struct {
	TotalKPIs               int                       `json:"total_kpis"`
	DataFound               int                       `json:"data_found"`
	DataNotFound            int                       `json:"data_not_found"`
	HighConfidence          int                       `json:"high_confidence"`
	MediumConfidence        int                       `json:"medium_confidence"`
	CoveragePercentage      float64                   `json:"coverage_percentage"`
	SourcePriorityBreakdown map[string]int            `json:"source_priority_breakdown,omitempty"`
	Categories              *report.CategoryBreakdown `json:"categories"`
}

// ResultRecord is one exported KPI result. The system_confidence key always
// carries a value: audits stored before the confidence split fall back to
// their legacy single confidence field.
type ResultRecord struct {
	KPIName             string          `json:"kpi_name"`
	Category            string          `json:"category"`
	Value               domain.KPIValue `json:"value"`
	EvidenceQuote       string          `json:"evidence_quote"`
	SourceURL           string          `json:"source_url"`
	SourceType          string          `json:"source_type,omitempty"`
	SystemConfidence    string          `json:"system_confidence"`
	LLMConfidence       string          `json:"llm_confidence,omitempty"`
	LLMConfidenceReason string          `json:"llm_confidence_reason,omitempty"`
	SourcePriority      string          `json:"source_priority,omitempty"`
	DataYear            string          `json:"data_year,omitempty"`
	Recency             string          `json:"recency,omitempty"`
}

// EncodeJSON renders the audit as the structured export document.
// Parameters:
//   - job: the audit snapshot to render.
//   - auditDate: timestamp stamped into the document.
// Returns:
//   - []byte: indented JSON payload.
//   - error: non-nil only if a value fails to marshal.
func EncodeJSON(job *domain.AuditJob, auditDate time.Time) ([]byte, error) {
	summary := effectiveSummary(job)

	doc := Document{
		CollegeName:      job.CollegeName,
		AuditDate:        auditDate.Format(time.RFC3339),
		TimeTakenSeconds: job.TimeTakenSeconds,
		TimeTaken:        FormatTimeTaken(job.TimeTakenSeconds),
		Summary: &SummarySection{
			TotalKPIs:               summary.TotalKPIs,
			DataFound:               summary.DataFound,
			DataNotFound:            summary.DataNotFound,
			HighConfidence:          summary.HighConfidence,
			MediumConfidence:        summary.MediumConfidence,
			CoveragePercentage:      summary.CoveragePercentage,
			SourcePriorityBreakdown: summary.SourcePriorityBreakdown,
			Categories:              report.Aggregate(job.Results),
		},
		Results: make([]ResultRecord, 0, len(job.Results)),
	}

	for i := range job.Results {
		r := &job.Results[i]
		doc.Results = append(doc.Results, ResultRecord{
			KPIName:             r.KPIName,
			Category:            r.Category,
			Value:               r.Value,
			EvidenceQuote:       r.EvidenceQuote,
			SourceURL:           r.SourceURL,
			SourceType:          r.SourceType,
			SystemConfidence:    string(r.EffectiveSystemConfidence()),
			LLMConfidence:       string(r.LLMConfidence),
			LLMConfidenceReason: r.LLMConfidenceReason,
			SourcePriority:      string(r.SourcePriority),
			DataYear:            r.DataYear,
			Recency:             string(r.Recency),
		})
	}

	return json.MarshalIndent(doc, "", "  ")
}
