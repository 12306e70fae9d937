package ui

import "testing"

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"rising", []float64{0, 1, 2, 3, 4, 5, 6, 7}, 10, "▁▂▃▄▅▆▇█"},
		{"flat", []float64{3, 3, 3}, 10, "▄▄▄"},
		{"keeps tail", []float64{9, 0, 1}, 2, "▁█"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("Sparkline(%v, %d) = %q, want %q", tt.values, tt.width, got, tt.want)
			}
		})
	}
}

func TestHexColor(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#3B82F6", "#3b82f6"},
		{"hsl(0, 100%, 50%)", "#ff0000"},
		{"hsl(120,100%,50%)", "#00ff00"},
		{"tomato", ColorMuted},
	}
	for _, tt := range tests {
		if got := hexColor(tt.in); got != tt.want {
			t.Errorf("hexColor(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
