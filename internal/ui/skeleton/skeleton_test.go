package skeleton

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestWidths(t *testing.T) {
	w := Widths(5, 85)
	if len(w) != 5 {
		t.Fatalf("len = %d", len(w))
	}
	sum := 0
	for _, n := range w {
		sum += n
	}
	if sum != 80 {
		t.Errorf("sum = %d, want 80", sum)
	}
	if w[2] >= w[1] || w[2] >= w[3] {
		t.Errorf("third column should be narrower: %v", w)
	}
	if Widths(0, 80) != nil {
		t.Error("no columns should give nil")
	}
}

func TestTable(t *testing.T) {
	out := Table(DefaultRows, DefaultCols, 85)
	lines := strings.Split(out, "\n")
	if len(lines) != DefaultRows {
		t.Fatalf("lines = %d, want %d", len(lines), DefaultRows)
	}
	for _, l := range lines {
		if lipgloss.Width(l) != 85 {
			t.Errorf("width = %d, want 85", lipgloss.Width(l))
		}
		if strings.Count(l, dot) != 2 {
			t.Errorf("want two action circles in %q", l)
		}
	}
	if Table(0, 5, 85) != "" {
		t.Error("zero rows should render nothing")
	}
}
