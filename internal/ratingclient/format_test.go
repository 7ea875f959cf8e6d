package ratingclient

import "testing"

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"zero", 0, "0.00"},
		{"integer", 4, "4.00"},
		{"one decimal", 4.5, "4.50"},
		{"two decimals", 3.25, "3.25"},
		{"rounds up", 3.666666, "3.67"},
		{"rounds down", 2.333333, "2.33"},
		{"max", 5, "5.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAverage(tt.value); got != tt.want {
				t.Fatalf("FormatAverage(%v) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestFormatCount(t *testing.T) {
	if got := FormatCount(10); got != "10" {
		t.Fatalf("FormatCount(10) = %q, want \"10\"", got)
	}
	if got := FormatCount(0); got != "0" {
		t.Fatalf("FormatCount(0) = %q, want \"0\"", got)
	}
}
