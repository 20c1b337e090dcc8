package report

import (
	"testing"

	"kpiauditor/internal/domain"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name  string
		value domain.KPIValue
		want  string
	}{
		{"absent", domain.AbsentValue(), "N/A"},
		{"bool true", domain.BoolValue(true), "Yes"},
		{"bool false", domain.BoolValue(false), "No"},
		{"scalar", domain.ScalarValue("85%"), "85%"},
		{"empty scalar", domain.ScalarValue(""), ""},
		{"list", domain.ListValue("Lab", "Library"), "Lab, Library"},
		{"empty list", domain.ListValue(), ""},
		{
			"map with list and empty list",
			domain.MapValue(
				domain.MapEntry{Key: "facilities", Value: domain.ListValue("Lab", "Library")},
				domain.MapEntry{Key: "achievements", Value: domain.ListValue()},
			),
			"facilities: Lab, Library | achievements: ",
		},
		{
			"map with scalars",
			domain.MapValue(
				domain.MapEntry{Key: "rank", Value: domain.ScalarValue("3")},
				domain.MapEntry{Key: "year", Value: domain.ScalarValue("2024")},
			),
			"rank: 3 | year: 2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.value); got != tt.want {
				t.Errorf("FormatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Map entry order must survive a wire round trip; the formatter's output is
// part of the export contract.
func TestFormatValue_WireOrderPreserved(t *testing.T) {
	var v domain.KPIValue
	err := v.UnmarshalJSON([]byte(`{"facilities":["Lab","Library"],"achievements":[]}`))
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := "facilities: Lab, Library | achievements: "
	if got := FormatValue(v); got != want {
		t.Errorf("FormatValue() = %q, want %q", got, want)
	}
}

func TestFormatValue_WireNumbers(t *testing.T) {
	var v domain.KPIValue
	if err := v.UnmarshalJSON([]byte(`125`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := FormatValue(v); got != "125" {
		t.Errorf("FormatValue(125) = %q, want 125", got)
	}
}
