package utils

import (
	"strings"
	"testing"
)

func TestRenderChartBasics(t *testing.T) {
	points := []ChartPoint{
		{Time: 1, Value: 100},
		{Time: 2, Value: 200},
		{Time: 3, Value: 300},
	}
	chart := RenderChartSized(points, "MB", 20, 5)

	lines := strings.Split(chart, "\n")
	if len(lines) != 7 { // 5 grid rows + axis + labels
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), chart)
	}
	for i := 0; i < 5; i++ {
		if !strings.HasPrefix(lines[i], "|") {
			t.Errorf("grid row %d missing left axis: %q", i, lines[i])
		}
	}
	if !strings.HasPrefix(lines[5], "+") || !strings.Contains(lines[5], "-") {
		t.Errorf("bottom axis malformed: %q", lines[5])
	}
	if !strings.Contains(lines[6], "1.0..3.0") || !strings.Contains(lines[6], "100.0..300.0 MB") {
		t.Errorf("extreme labels malformed: %q", lines[6])
	}
	if strings.Count(chart, "*") == 0 {
		t.Error("chart has no plotted points")
	}
}

func TestRenderChartZeroRange(t *testing.T) {
	flat := []ChartPoint{{Time: 5, Value: 42}, {Time: 5, Value: 42}}
	chart := RenderChartSized(flat, "MB", 10, 4)
	if !strings.Contains(chart, "*") {
		t.Errorf("degenerate input should still plot a point:\n%s", chart)
	}
}

func TestRenderChartLastWriteWinsPerColumn(t *testing.T) {
	// two points land in the same column; the later one must win
	points := []ChartPoint{
		{Time: 1, Value: 0},
		{Time: 1.01, Value: 100},
		{Time: 10, Value: 50},
	}
	chart := RenderChartSized(points, "MB", 10, 10)
	rows := strings.Split(chart, "\n")
	// column 0 of the top row (value 100) must hold the later point
	if rows[0][1] != '*' {
		t.Errorf("expected the most recent colliding point at the top of column 0:\n%s", chart)
	}
	if rows[9][1] == '*' {
		t.Errorf("earlier colliding point should have been overwritten:\n%s", chart)
	}
}

func TestRenderChartEmpty(t *testing.T) {
	if got := RenderChart(nil, "MB"); !strings.Contains(got, "no data") {
		t.Errorf("empty input should say so, got %q", got)
	}
}
