package quiz

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		selected string
		correct  string
		want     bool
	}{
		{"B", "B) Madrid", true},
		{"b) madrid", "B) Madrid", true},
		{"  B) Madrid ", "B) Madrid", true},
		{"C", "B) Madrid", false},
		{"c) Madrid", "B) Madrid", false},
		{"b", "B", true},
		{"", "B) Madrid", false},
		{"B", "", false},
		{"Madrid", "madrid", true},
	}
	for _, tt := range tests {
		if got := Matches(tt.selected, tt.correct); got != tt.want {
			t.Errorf("Matches(%q, %q) = %v, want %v", tt.selected, tt.correct, got, tt.want)
		}
	}
}

func TestParseMode(t *testing.T) {
	if ParseMode("quick") != ModeQuick {
		t.Error("quick should parse as quick")
	}
	for _, s := range []string{"", "comprehensive", "QUICK", "fast"} {
		if ParseMode(s) != ModeComprehensive {
			t.Errorf("ParseMode(%q) should be comprehensive", s)
		}
	}
	if PassThreshold(ModeQuick) != 66 || PassThreshold(ModeComprehensive) != 80 {
		t.Error("unexpected pass thresholds")
	}
}
