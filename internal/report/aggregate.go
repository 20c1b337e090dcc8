package report

import (
	"bytes"
	"encoding/json"

	"kpiauditor/internal/domain"
)

// CategoryBucket is one aggregated category with its found/total counts.
type CategoryBucket struct {
	Category string
	Found    int
	Total    int
}

// Percentage returns the rounded found percentage for the bucket.
func (b CategoryBucket) Percentage() int {
	return domain.CategoryCount{Found: b.Found, Total: b.Total}.Percentage()
}

// CategoryBreakdown is an ordered mapping from category name to counts.
// Bucket order follows the first appearance of each category in the result
// sequence.
type CategoryBreakdown struct {
	buckets []CategoryBucket
	index   map[string]int
}

// Aggregate groups a flat result sequence into per-category buckets and
// derives found/total counts via the classifier. Categories are keyed
// verbatim; nothing is normalized or dropped.
// Parameters:
//   - results: the audit's result sequence.
// Returns:
//   - *CategoryBreakdown: ordered per-category counts.
func Aggregate(results []domain.KPIResult) *CategoryBreakdown {
	br := &CategoryBreakdown{index: make(map[string]int)}
	for i := range results {
		r := &results[i]
		pos, ok := br.index[r.Category]
		if !ok {
			pos = len(br.buckets)
			br.index[r.Category] = pos
			br.buckets = append(br.buckets, CategoryBucket{Category: r.Category})
		}
		br.buckets[pos].Total++
		if IsFound(r.Value) {
			br.buckets[pos].Found++
		}
	}
	return br
}

// Buckets returns the buckets in first-appearance order.
func (br *CategoryBreakdown) Buckets() []CategoryBucket {
	return br.buckets
}

// Lookup returns the bucket for a category, if present.
func (br *CategoryBreakdown) Lookup(category string) (CategoryBucket, bool) {
	pos, ok := br.index[category]
	if !ok {
		return CategoryBucket{}, false
	}
	return br.buckets[pos], true
}

// Counts returns the breakdown as a plain map for summary interchange.
func (br *CategoryBreakdown) Counts() map[string]domain.CategoryCount {
	out := make(map[string]domain.CategoryCount, len(br.buckets))
	for _, b := range br.buckets {
		out[b.Category] = domain.CategoryCount{Found: b.Found, Total: b.Total}
	}
	return out
}

// MarshalJSON encodes the breakdown as a JSON object whose keys keep the
// first-appearance order of the categories.
func (br *CategoryBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, b := range br.buckets {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(b.Category)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(domain.CategoryCount{Found: b.Found, Total: b.Total})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DisplayCategory returns the category label used by the category-tab
// grouping: a missing or empty category is shown as the literal "Other".
// This coercion happens only at display time; Aggregate keys verbatim.
// Parameters:
//   - r: the result to label.
// Returns:
//   - string: the display category.
func DisplayCategory(r *domain.KPIResult) string {
	if r.Category == "" {
		return "Other"
	}
	return r.Category
}

// Summarize recomputes an AuditSummary from a result sequence, mirroring the
// statistics the engine attaches to completed audits. Used when an audit
// snapshot arrives without a summary or when exporting a partially populated
// run.
// Parameters:
//   - results: the audit's result sequence.
// Returns:
//   - *domain.AuditSummary: derived statistics.
func Summarize(results []domain.KPIResult) *domain.AuditSummary {
	br := Aggregate(results)

	s := &domain.AuditSummary{
		TotalKPIs:  len(results),
		Categories: br.Counts(),
		SourcePriorityBreakdown: map[string]int{
			"high": 0, "medium": 0, "low": 0,
		},
	}
	for i := range results {
		r := &results[i]
		if IsFound(r.Value) {
			s.DataFound++
		}
		switch r.EffectiveSystemConfidence() {
		case domain.ConfidenceHigh:
			s.HighConfidence++
		case domain.ConfidenceMedium:
			s.MediumConfidence++
		}
		if p := string(r.SourcePriority); p != "" {
			if _, ok := s.SourcePriorityBreakdown[p]; ok {
				s.SourcePriorityBreakdown[p]++
			}
		}
	}
	s.DataNotFound = s.TotalKPIs - s.DataFound
	if s.TotalKPIs > 0 {
		// One decimal place, matching the engine's coverage figure.
		s.CoveragePercentage = float64(int(float64(s.DataFound)/float64(s.TotalKPIs)*1000+0.5)) / 10
	}
	return s
}
