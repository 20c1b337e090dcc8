package export

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"kpiauditor/internal/domain"
)

func TestEncodeJSON_LegacyConfidenceFallback(t *testing.T) {
	job := sampleJob()
	job.Results[0].SystemConfidence = ""
	job.Results[0].Confidence = domain.ConfidenceHigh

	data, err := EncodeJSON(job, exportDate)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	var doc struct {
		Results []map[string]interface{} `json:"results"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if got := doc.Results[0]["system_confidence"]; got != "high" {
		t.Errorf("system_confidence = %v, want legacy value high", got)
	}
	if _, present := doc.Results[0]["confidence"]; present {
		t.Error("legacy confidence key must not leak into the export")
	}
}

func TestEncodeJSON_ResultsRoundTrip(t *testing.T) {
	job := sampleJob()

	// Values of every shape, decoded off the wire like real results.
	var mapVal, listVal domain.KPIValue
	if err := json.Unmarshal([]byte(`{"facilities":["Lab","Library"],"achievements":[]}`), &mapVal); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(`["NBA","NAAC A++"]`), &listVal); err != nil {
		t.Fatal(err)
	}
	job.Results = append(job.Results,
		domain.KPIResult{KPIName: "Facilities", Category: "Infrastructure", Value: mapVal},
		domain.KPIResult{KPIName: "Accreditations", Category: "Accreditation", Value: listVal},
		domain.KPIResult{KPIName: "Has Incubator", Category: "Research", Value: domain.BoolValue(true)},
	)

	data, err := EncodeJSON(job, exportDate)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("reparse: %v", err)
	}

	if doc.CollegeName != job.CollegeName {
		t.Errorf("college_name = %q, want %q", doc.CollegeName, job.CollegeName)
	}
	if doc.TimeTakenSeconds == nil || *doc.TimeTakenSeconds != 125.0 {
		t.Error("time_taken_seconds did not round-trip")
	}
	if doc.TimeTaken != "2m 5s" {
		t.Errorf("time_taken = %q, want 2m 5s", doc.TimeTaken)
	}

	if len(doc.Results) != len(job.Results) {
		t.Fatalf("results = %d, want %d", len(doc.Results), len(job.Results))
	}
	for i := range job.Results {
		src := &job.Results[i]
		got := &doc.Results[i]
		if got.KPIName != src.KPIName || got.Category != src.Category {
			t.Errorf("result %d identity mismatch: %s/%s", i, got.KPIName, got.Category)
		}
		srcVal, err := json.Marshal(src.Value)
		if err != nil {
			t.Fatal(err)
		}
		gotVal, err := json.Marshal(got.Value)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(string(srcVal), string(gotVal)); diff != "" {
			t.Errorf("result %d value did not round-trip (-want +got):\n%s", i, diff)
		}
		if got.EvidenceQuote != src.EvidenceQuote || got.SourceURL != src.SourceURL {
			t.Errorf("result %d provenance mismatch", i)
		}
	}
}

func TestEncodeJSON_CategoryOrderPreserved(t *testing.T) {
	job := sampleJob()
	data, err := EncodeJSON(job, exportDate)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	// Rankings appears before Infrastructure in the result sequence and must
	// appear first in the summary categories object.
	s := string(data)
	rankings := indexOf(t, s, `"Rankings"`)
	infra := indexOf(t, s, `"Infrastructure"`)
	if rankings > infra {
		t.Error("summary categories lost first-appearance order")
	}
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	t.Fatalf("%q not found in output", sub)
	return -1
}
