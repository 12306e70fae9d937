package textutil

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"ResNet-50", 20, "ResNet-50"},
		{"ResNet-50", 9, "ResNet-50"},
		{"Vision Transformer", 8, "Vision …"},
		{"日本語テキスト", 5, "日本…"},
		{"abc", 1, "…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPad(t *testing.T) {
	if got := PadRight("ab", 4); got != "ab  " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadLeft("0.857", 7); got != "  0.857" {
		t.Errorf("PadLeft = %q", got)
	}
	if got := PadRight("日本", 5); got != "日本 " {
		t.Errorf("PadRight wide = %q", got)
	}
}

func TestRow(t *testing.T) {
	cols := []Column{{Width: 6}, {Width: 5, Align: AlignRight}, {Width: 3}}
	got := Row(cols, []string{"LSTM", "0.62"}, 1)
	if want := "LSTM    0.62"; got != want {
		t.Errorf("Row = %q, want %q", got, want)
	}
}

func TestFitWidths(t *testing.T) {
	widths := FitWidths(
		[]string{"Model", "Accuracy"},
		[][]string{{"Vision Transformer", "0.930"}, {"GRU"}},
		12,
	)
	if widths[0] != 12 || widths[1] != 8 {
		t.Errorf("FitWidths = %v, want [12 8]", widths)
	}
}
