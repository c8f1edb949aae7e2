package entity

import "testing"

func TestConfidence(t *testing.T) {
	tests := []struct {
		name           string
		latencySeconds float64
		want           float64
	}{
		{"instant reply", 60, 1.0},
		{"one hour", 3600, 1.0},
		{"just under a day", 86399, 1.0},
		{"exactly a day", 86400, 0.8},
		{"between one and two days", 100000, 0.8},
		{"just under two days", 172799, 0.8},
		{"between two and three days", 200000, 0.6},
		{"three days", 259200, 0.4},
		{"far beyond the window", 300000, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Confidence(tt.latencySeconds); got != tt.want {
				t.Errorf("Confidence(%v) = %v, want %v", tt.latencySeconds, got, tt.want)
			}
		})
	}
}
