package utils

import (
	"fmt"
	"strings"
)

const (
	ChartWidth  = 60
	ChartHeight = 12
)

// ChartPoint is a single time/value pair to plot.
type ChartPoint struct {
	Time  float64 // minutes since JVM start
	Value float64
}

// RenderChart draws time/value pairs onto a fixed character grid with a
// left and bottom axis, labelling the four extremes under the grid. When
// several points land in the same column, the most recent one wins. Output
// is pure ASCII so it can be embedded in report files.
func RenderChart(points []ChartPoint, valueUnit string) string {
	return RenderChartSized(points, valueUnit, ChartWidth, ChartHeight)
}

func RenderChartSized(points []ChartPoint, valueUnit string, width, height int) string {
	if len(points) == 0 {
		return "(no data to chart)"
	}

	minT, maxT := points[0].Time, points[0].Time
	minV, maxV := points[0].Value, points[0].Value
	for _, p := range points {
		minT = min(minT, p.Time)
		maxT = max(maxT, p.Time)
		minV = min(minV, p.Value)
		maxV = max(maxV, p.Value)
	}

	// A flat series or a single point still has to render; a zero range
	// would divide by zero, so treat it as a range of one.
	rangeT := maxT - minT
	if rangeT == 0 {
		rangeT = 1
	}
	rangeV := maxV - minV
	if rangeV == 0 {
		rangeV = 1
	}

	// One plotted point per column: scanning in order lets the most
	// recent point claim a contested column.
	columns := make(map[int]float64, width)
	for _, p := range points {
		x := int((p.Time - minT) / rangeT * float64(width-1))
		if x >= 0 && x < width {
			columns[x] = p.Value
		}
	}

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", width))
	}
	for x, v := range columns {
		y := int((v - minV) / rangeV * float64(height-1))
		row := height - 1 - y // row 0 is the top of the grid
		if row >= 0 && row < height {
			grid[row][x] = '*'
		}
	}

	var b strings.Builder
	for _, row := range grid {
		b.WriteString("|")
		b.Write(row)
		b.WriteString("\n")
	}
	b.WriteString("+")
	b.WriteString(strings.Repeat("-", width))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf(" time: %.1f..%.1f min   value: %.1f..%.1f %s",
		minT, maxT, minV, maxV, valueUnit))

	return b.String()
}
