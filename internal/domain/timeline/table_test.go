package timeline

import (
	"reflect"
	"testing"
)

func TestSplitRow(t *testing.T) {
	tests := []struct {
		row  string
		want []string
	}{
		{"| a | b | c |", []string{"a", "b", "c"}},
		{"a | b", []string{"a", "b"}},
		{"| a |  | c |", []string{"a", "", "c"}},
		{"| `x|y` | z |", []string{"`x|y`", "z"}},
		{"|", nil},
	}

	for _, tt := range tests {
		t.Run(tt.row, func(t *testing.T) {
			got := splitRow(tt.row)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitRow(%q) = %q, want %q", tt.row, got, tt.want)
			}
		})
	}
}

func TestIsSeparatorRow(t *testing.T) {
	tests := []struct {
		row  string
		want bool
	}{
		{"|---|---|", true},
		{"| :--- | ---: |", true},
		{"|  -  |", true},
		{"| a |", false},
		{"| |", false},
	}
	for _, tt := range tests {
		if got := isSeparatorRow(tt.row); got != tt.want {
			t.Errorf("isSeparatorRow(%q) = %v, want %v", tt.row, got, tt.want)
		}
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"Milestone":              "milestone",
		"Effort (hrs)":           "effort_(hrs)",
		" Acceptance  Criteria ": "acceptance_criteria",
		"Key Deliverables":       "key_deliverables",
	}
	for in, want := range tests {
		if got := normalizeHeader(in); got != want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFindTable(t *testing.T) {
	lines := []string{
		"intro",
		"| h1 | h2 |",
		"|----|----|",
		"| a | b |",
		"",
		"| other | table |",
	}
	got := findTable(lines)
	want := []string{"| h1 | h2 |", "| a | b |"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("findTable = %q, want %q", got, want)
	}
}
