package domain

// Confidence is a coarse reliability signal attached to a KPI result. The
// engine emits two independent signals: a rule-based system confidence and an
// LLM self-reported confidence.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// SourcePriority ranks the provenance of a KPI value.
type SourcePriority string

const (
	PriorityHigh    SourcePriority = "high"
	PriorityMedium  SourcePriority = "medium"
	PriorityLow     SourcePriority = "low"
	PriorityUnknown SourcePriority = "unknown"
)

// Recency describes how current the underlying data is.
type Recency string

const (
	RecencyHigh    Recency = "high"
	RecencyMedium  Recency = "medium"
	RecencyLow     Recency = "low"
	RecencyUnknown Recency = "unknown"
)

// KPIResult is one measured indicator extracted by the engine. Results are
// immutable once received: the client never mutates a result in place, only
// replaces the whole Results slice on reload.
//
// SystemConfidence supersedes the legacy single Confidence field; older
// stored audits carry only the latter.
type KPIResult struct {
	KPIName             string         `json:"kpi_name"`
	Category            string         `json:"category"`
	Value               KPIValue       `json:"value"`
	EvidenceQuote       string         `json:"evidence_quote,omitempty"`
	SourceURL           string         `json:"source_url,omitempty"`
	SourceType          string         `json:"source_type,omitempty"`
	SourcePriority      SourcePriority `json:"source_priority,omitempty"`
	SystemConfidence    Confidence     `json:"system_confidence,omitempty"`
	Confidence          Confidence     `json:"confidence,omitempty"`
	LLMConfidence       Confidence     `json:"llm_confidence,omitempty"`
	LLMConfidenceReason string         `json:"llm_confidence_reason,omitempty"`
	DataYear            string         `json:"data_year,omitempty"`
	Recency             Recency        `json:"recency,omitempty"`
}

// EffectiveSystemConfidence returns SystemConfidence, falling back to the
// legacy Confidence field for audits stored before the split.
// Parameters: none.
// Returns:
//   - Confidence: the confidence value to display and export.
func (r *KPIResult) EffectiveSystemConfidence() Confidence {
	if r.SystemConfidence != "" {
		return r.SystemConfidence
	}
	return r.Confidence
}

// HasSourceURL reports whether the result carries a real source URL. The
// engine uses the sentinel strings "N/A" and "Not Available" to mean absent.
// Parameters: none.
// Returns:
//   - bool: true when SourceURL points at an actual source.
func (r *KPIResult) HasSourceURL() bool {
	switch r.SourceURL {
	case "", "N/A", "Not Available":
		return false
	}
	return true
}
