package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"kpiauditor/internal/domain"
)

func TestAggregate_BucketsAndOrder(t *testing.T) {
	results := []domain.KPIResult{
		{Category: "A", Value: domain.ScalarValue("42")},
		{Category: "A", Value: domain.ScalarValue("data not found")},
		{Category: "B", Value: domain.ScalarValue("5")},
	}

	br := Aggregate(results)

	want := []CategoryBucket{
		{Category: "A", Found: 1, Total: 2},
		{Category: "B", Found: 1, Total: 1},
	}
	if diff := cmp.Diff(want, br.Buckets()); diff != "" {
		t.Errorf("bucket mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_VerbatimCategories(t *testing.T) {
	results := []domain.KPIResult{
		{Category: "", Value: domain.ScalarValue("x")},
		{Category: "  Weird  ", Value: domain.ScalarValue("y")},
	}

	br := Aggregate(results)

	if _, ok := br.Lookup(""); !ok {
		t.Error("empty category must be retained verbatim, not coerced to Other")
	}
	if _, ok := br.Lookup("  Weird  "); !ok {
		t.Error("categories must not be trimmed or normalized")
	}
	if got := len(br.Buckets()); got != 2 {
		t.Errorf("expected 2 buckets, got %d", got)
	}
}

func TestDisplayCategory(t *testing.T) {
	r := domain.KPIResult{Category: ""}
	if got := DisplayCategory(&r); got != "Other" {
		t.Errorf("DisplayCategory(empty) = %q, want Other", got)
	}
	r.Category = "Academic"
	if got := DisplayCategory(&r); got != "Academic" {
		t.Errorf("DisplayCategory = %q, want Academic", got)
	}
}

func TestCategoryBucket_Percentage(t *testing.T) {
	tests := []struct {
		found, total, want int
	}{
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 0},
		{3, 3, 100},
	}
	for _, tt := range tests {
		b := CategoryBucket{Found: tt.found, Total: tt.total}
		if got := b.Percentage(); got != tt.want {
			t.Errorf("Percentage(%d/%d) = %d, want %d", tt.found, tt.total, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	results := []domain.KPIResult{
		{Category: "A", Value: domain.ScalarValue("42"), SystemConfidence: domain.ConfidenceHigh, SourcePriority: domain.PriorityHigh},
		{Category: "A", Value: domain.ScalarValue("data not found"), Confidence: domain.ConfidenceMedium},
		{Category: "B", Value: domain.ScalarValue("5"), Confidence: domain.ConfidenceHigh, SourcePriority: domain.PriorityLow},
		{Category: "B", Value: domain.ScalarValue("ok"), SystemConfidence: domain.ConfidenceLow, SourcePriority: domain.PriorityUnknown},
	}

	s := Summarize(results)

	if s.TotalKPIs != 4 || s.DataFound != 3 || s.DataNotFound != 1 {
		t.Errorf("counts = %d/%d/%d, want 4/3/1", s.TotalKPIs, s.DataFound, s.DataNotFound)
	}
	// One legacy-confidence result counts toward high via the fallback.
	if s.HighConfidence != 2 {
		t.Errorf("high confidence = %d, want 2", s.HighConfidence)
	}
	if s.MediumConfidence != 1 {
		t.Errorf("medium confidence = %d, want 1", s.MediumConfidence)
	}
	if s.CoveragePercentage != 75.0 {
		t.Errorf("coverage = %v, want 75.0", s.CoveragePercentage)
	}
	if s.SourcePriorityBreakdown["high"] != 1 || s.SourcePriorityBreakdown["low"] != 1 {
		t.Errorf("priority breakdown = %v", s.SourcePriorityBreakdown)
	}
	want := map[string]domain.CategoryCount{
		"A": {Found: 1, Total: 2},
		"B": {Found: 2, Total: 2},
	}
	if diff := cmp.Diff(want, s.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}
