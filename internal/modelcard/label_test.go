package modelcard

import (
	"slices"
	"testing"
)

func TestInferLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"phi3.5-mini-instruct-q4k-0", "Q4K"},
		{"phi3.5-mini-instruct-q4k", "Q4K"},
		{"modelx-q8_0", "Q8_0"},
		{"llama3.2-1b-instruct-hqq8-12", "HQQ8"},
		{"f8e4m3", "F8E4M3"},
		{"7", "7"},
	}
	for _, tc := range tests {
		if got := InferLabel(tc.input); got != tc.expected {
			t.Errorf("InferLabel(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestParseLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected []string
		multi    bool
	}{
		{"q4k, q5k", []string{"Q4K", "Q5K"}, true},
		{"Q4K", []string{"Q4K"}, false},
		{" hqq4 ,hqq8,hqq4", []string{"HQQ4", "HQQ8"}, true},
		{"q8_0,", []string{"Q8_0"}, true},
	}
	for _, tc := range tests {
		got := ParseLabels(tc.input)
		if !slices.Equal(got, tc.expected) {
			t.Errorf("ParseLabels(%q): expected %v, got %v", tc.input, tc.expected, got)
		}
		if IsMultiScheme(tc.input) != tc.multi {
			t.Errorf("IsMultiScheme(%q): expected %v", tc.input, tc.multi)
		}
	}
}
