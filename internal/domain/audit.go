package domain

import "time"

// AuditStatus represents the lifecycle state of an audit job.
// Values include StatusProcessing, StatusCompleted, StatusCancelled, and StatusFailed.
type AuditStatus string

const (
	StatusProcessing AuditStatus = "processing"
	StatusCompleted  AuditStatus = "completed"
	StatusCancelled  AuditStatus = "cancelled"
	StatusFailed     AuditStatus = "failed"
)

// Terminal reports whether the status admits no further lifecycle transitions.
// Parameters: none.
// Returns:
//   - bool: true for completed, cancelled, and failed.
func (s AuditStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// AuditJob represents one tracked execution of the remote KPI extraction
// engine for one college. The remote engine is the source of truth for every
// field after submission; the client only replaces whole snapshots.
type AuditJob struct {
	ID               string        `json:"id"`
	CollegeName      string        `json:"college_name"`
	Status           AuditStatus   `json:"status"`
	Progress         int           `json:"progress"`
	ProgressMessage  string        `json:"progress_message"`
	Results          []KPIResult   `json:"results"`
	Summary          *AuditSummary `json:"summary,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	TimeTakenSeconds *float64      `json:"time_taken_seconds,omitempty"`
}

// AuditSummary holds aggregate statistics for a finished audit. It may be
// supplied by the engine or recomputed client-side; it is derived data, never
// authoritative.
type AuditSummary struct {
	TotalKPIs               int                      `json:"total_kpis"`
	DataFound               int                      `json:"data_found"`
	DataNotFound            int                      `json:"data_not_found"`
	HighConfidence          int                      `json:"high_confidence"`
	MediumConfidence        int                      `json:"medium_confidence"`
	CoveragePercentage      float64                  `json:"coverage_percentage"`
	SourcePriorityBreakdown map[string]int           `json:"source_priority_breakdown,omitempty"`
	Categories              map[string]CategoryCount `json:"categories,omitempty"`
}

// CategoryCount is the per-category found/total pair of an AuditSummary.
type CategoryCount struct {
	Found int `json:"found"`
	Total int `json:"total"`
}

// Percentage returns the rounded coverage percentage for the category.
// Parameters: none.
// Returns:
//   - int: round(found/total*100), or 0 when total is 0.
func (c CategoryCount) Percentage() int {
	if c.Total == 0 {
		return 0
	}
	return int(float64(c.Found)/float64(c.Total)*100 + 0.5)
}

// AuditListEntry is the lightweight projection of an AuditJob used by the
// audit history list.
type AuditListEntry struct {
	ID                 string      `json:"id"`
	CollegeName        string      `json:"college_name"`
	Status             AuditStatus `json:"status"`
	CreatedAt          time.Time   `json:"created_at"`
	CoveragePercentage *float64    `json:"coverage_percentage,omitempty"`
}
