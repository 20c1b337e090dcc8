package report

import (
	"testing"

	"kpiauditor/internal/domain"
)

func TestIsFound_SentinelVocabulary(t *testing.T) {
	tests := []struct {
		name  string
		value domain.KPIValue
		found bool
	}{
		{"exact sentinel", domain.ScalarValue("data not found"), false},
		{"case insensitive", domain.ScalarValue("Data Not Found"), false},
		{"error sentinel", domain.ScalarValue("Error"), false},
		{"processing error sentinel", domain.ScalarValue("Processing Error"), false},
		{"not available sentinel", domain.ScalarValue("Not Available"), false},
		{"real value", domain.ScalarValue("42%"), true},
		{"empty string is found", domain.ScalarValue(""), true},
		{"sentinel with padding is found", domain.ScalarValue(" data not found "), true},
		{"sentinel prefix is found", domain.ScalarValue("data not found yet"), true},
		{"numeric scalar", domain.ScalarValue("125"), true},
		{"boolean false", domain.BoolValue(false), true},
		{"list value", domain.ListValue("Lab", "Library"), true},
		{"list whose element is a sentinel", domain.ListValue("Error"), true},
		{"list joining to a sentinel", domain.ListValue("data", "not found"), true},
		{"map value", domain.MapValue(domain.MapEntry{Key: "rank", Value: domain.ScalarValue("error")}), true},
		{"absent value", domain.AbsentValue(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFound(tt.value); got != tt.found {
				t.Errorf("IsFound(%v) = %v, want %v", tt.value, got, tt.found)
			}
		})
	}
}

func TestIsFound_WireDecodedValues(t *testing.T) {
	var v domain.KPIValue
	if err := v.UnmarshalJSON([]byte(`"Data Not Found"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if IsFound(v) {
		t.Error("expected wire-decoded sentinel to classify as not found")
	}
}
