package gc

import (
	"fmt"
	"strings"
	"time"

	"github.com/rguichard/jtriage/utils"
)

type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	default:
		return "OK"
	}
}

func (s Severity) Emoji() string {
	switch s {
	case SeverityCritical:
		return "🔴"
	case SeverityWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

// FindingSeverity classifies a single finding for the report. Legacy
// collectors and high-confidence retention or allocation findings are the
// ones that end in an outage, so they go straight to critical.
func FindingSeverity(f Finding) Severity {
	if !f.Detected {
		return SeverityOK
	}
	switch f.Type {
	case FindingCollectorChoice:
		return SeverityCritical
	case FindingRetentionGrowth:
		if f.Confidence == ConfidenceHigh || f.OccupancyPct > 90 {
			return SeverityCritical
		}
	case FindingAllocationPressure:
		if f.Confidence == ConfidenceHigh {
			return SeverityCritical
		}
	}
	return SeverityWarning
}

// OverallSeverity is the maximum finding severity, independent of how
// many detectors fired.
func OverallSeverity(fs *Findings) Severity {
	overall := SeverityOK
	for _, f := range fs.Suspects {
		if sev := FindingSeverity(f); sev > overall {
			overall = sev
		}
	}
	return overall
}

// ExitCode maps the findings to the three-tier process exit contract:
// 0 healthy, 1 warning, 2 critical. Any high-confidence detection or a
// legacy collector is critical regardless of report severity.
func ExitCode(fs *Findings) int {
	code := 0
	for _, f := range fs.Suspects {
		if !f.Detected {
			continue
		}
		if f.Confidence == ConfidenceHigh || f.Type == FindingCollectorChoice {
			return 2
		}
		code = 1
	}
	return code
}

var findingTitles = map[FindingType]string{
	FindingRetentionGrowth:    "RETENTION GROWTH",
	FindingLongPauses:         "LONG STW PAUSES",
	FindingAllocationPressure: "ALLOCATION PRESSURE",
	FindingHumongousPressure:  "HUMONGOUS OBJECT PRESSURE",
	FindingGCStarvation:       "GC STARVATION",
	FindingMetaspaceLeak:      "METASPACE LEAK",
	FindingTLABExhaustion:     "TLAB EXHAUSTION",
	FindingCollectorChoice:    "COLLECTOR CHOICE",
}

// TitleFor returns the display heading for a finding type.
func TitleFor(t FindingType) string {
	return findingTitles[t]
}

// SlackSummary is the condensed one-line summary for incident channels.
func SlackSummary(fs *Findings) string {
	overall := OverallSeverity(fs)

	var parts []string
	for _, f := range fs.Suspects {
		if !f.Detected {
			continue
		}
		switch f.Type {
		case FindingRetentionGrowth:
			parts = append(parts, fmt.Sprintf("old-gen growing %.1f regions/min", f.TrendRegionsPerMin))
		case FindingLongPauses:
			parts = append(parts, fmt.Sprintf("%d slow pauses (max %.0fms)", f.SlowPauseCount, f.MaxPauseMS))
		case FindingAllocationPressure:
			parts = append(parts, fmt.Sprintf("%d evacuation failures", f.EvacFailureCount))
		case FindingHumongousPressure:
			parts = append(parts, fmt.Sprintf("humongous regions in %.0f%% of cycles (peak %d)", f.HumongousFreqPct, f.HumongousPeak))
		case FindingGCStarvation:
			parts = append(parts, fmt.Sprintf("%d long GC gaps (max %.0fs)", f.LongGapCount, f.MaxGapSeconds))
		case FindingMetaspaceLeak:
			parts = append(parts, fmt.Sprintf("metaspace +%.0f KB/min", f.MetaspaceKBPerMin))
		case FindingTLABExhaustion:
			parts = append(parts, fmt.Sprintf("TLAB slow-alloc ratio %.0f%%", f.SlowRefillRatioPct))
		case FindingCollectorChoice:
			parts = append(parts, fmt.Sprintf("legacy %s collector", f.Collector))
		}
	}

	line := fmt.Sprintf("%s GC triage: %s", overall.Emoji(), overall)
	if len(parts) > 0 {
		line += " - " + strings.Join(parts, ", ")
	}

	if ret := fs.ByType(FindingRetentionGrowth); ret != nil && ret.Detected {
		if ret.OccupancyPct >= 0 {
			line += fmt.Sprintf(" | heap %.0f%% full", ret.OccupancyPct)
		}
		if eta, ok := oomETA(fs, ret); ok {
			line += " | ~" + eta + " to heap exhaustion at current rate"
		}
	}
	return line
}

// oomETA estimates time until old gen reaches 90% of max heap at the
// observed growth rate.
func oomETA(fs *Findings, ret *Finding) (string, bool) {
	meta := fs.Metadata
	if ret.TrendRegionsPerMin <= 0 || !meta.HasHeapMax() || !meta.HasRegionSize() {
		return "", false
	}
	if len(fs.StableEvents) == 0 {
		return "", false
	}
	currentMB := fs.StableEvents[len(fs.StableEvents)-1].OldAfter * meta.RegionSizeMB
	headroomMB := 0.9*float64(meta.HeapMaxMB) - float64(currentMB)
	if headroomMB <= 0 {
		return "0 minutes", true
	}
	minutes := headroomMB / (ret.TrendRegionsPerMin * float64(meta.RegionSizeMB))
	if minutes < 60 {
		return fmt.Sprintf("%.0f minutes", minutes), true
	}
	return fmt.Sprintf("%.1f hours", minutes/60), true
}

// GenerateReport renders the full report. Supported formats are "txt"
// and "md"; both carry identical information and differ only in
// decoration. Debug mode appends raw parse/filter counts, the stable
// time-memory series, and the chart for every run.
func GenerateReport(fs *Findings, format string, debug bool) (string, error) {
	md := false
	switch format {
	case "txt":
	case "md":
		md = true
	default:
		return "", &ValidationError{Param: "format", Msg: fmt.Sprintf("%q is not one of txt, md", format)}
	}

	var b strings.Builder
	writeTitle(&b, md)
	writeRunSummary(&b, fs, md)

	for _, f := range fs.Suspects {
		writeFinding(&b, fs, f, md)
	}

	if debug {
		writeDebug(&b, fs, md)
	}

	b.WriteString("\n")
	b.WriteString(SlackSummary(fs))
	b.WriteString("\n")
	return b.String(), nil
}

func writeTitle(b *strings.Builder, md bool) {
	if md {
		b.WriteString("# JVM GC Triage Report\n\n")
	} else {
		b.WriteString("JVM GC TRIAGE REPORT\n")
		b.WriteString(strings.Repeat("=", 60) + "\n")
	}
}

func writeRunSummary(b *strings.Builder, fs *Findings, md bool) {
	line := fmt.Sprintf("Analyzed %d GC events", len(fs.Events))
	if fs.RawEventCount != len(fs.Events) {
		line += fmt.Sprintf(" (of %d parsed; tail window applied)", fs.RawEventCount)
	}
	if n := len(fs.Events); n > 1 {
		span := time.Duration((fs.Events[n-1].Uptime - fs.Events[0].Uptime) * float64(time.Second))
		line += fmt.Sprintf(" over %s", utils.FormatDuration(span))
	}
	if fs.Metadata.Collector != "" {
		line += fmt.Sprintf(", collector %s", fs.Metadata.Collector)
	}
	if fs.Metadata.HasHeapMax() {
		line += fmt.Sprintf(", max heap %d MB", fs.Metadata.HeapMaxMB)
	}
	if md {
		fmt.Fprintf(b, "%s.\n\n**%s** (severity: %s)\n", line, fs.Summary, OverallSeverity(fs))
	} else {
		fmt.Fprintf(b, "%s.\n\n%s (severity: %s)\n", line, fs.Summary, OverallSeverity(fs))
	}
}

func writeFinding(b *strings.Builder, fs *Findings, f Finding, md bool) {
	title := findingTitles[f.Type]
	status := "not detected"
	if f.Detected {
		status = "DETECTED"
	}

	if md {
		fmt.Fprintf(b, "\n## %s %s - %s\n\n", FindingSeverity(f).Emoji(), title, status)
		fmt.Fprintf(b, "Confidence: **%s**\n", f.Confidence)
	} else {
		fmt.Fprintf(b, "\n--- %s - %s ---\n", title, status)
		fmt.Fprintf(b, "Confidence: %s\n", f.Confidence)
	}

	if f.Type == FindingRetentionGrowth {
		writeRetentionDetail(b, fs, f, md)
	}

	if len(f.Evidence) > 0 {
		b.WriteString("Evidence:\n")
		for _, line := range f.Evidence {
			fmt.Fprintf(b, "  - %s\n", line)
		}
	}
	if f.BusinessImpact != "" {
		if md {
			fmt.Fprintf(b, "\n> %s\n", f.BusinessImpact)
		} else {
			fmt.Fprintf(b, "Note: %s\n", f.BusinessImpact)
		}
	}
	if len(f.NextSteps) > 0 {
		b.WriteString("Next steps:\n")
		for i, step := range f.NextSteps {
			fmt.Fprintf(b, "  %d. %s\n", i+1, step)
		}
	}
}

// The retention block always shows the trend, detected or not; the chart
// and projections only when there is something to look at.
func writeRetentionDetail(b *strings.Builder, fs *Findings, f Finding, md bool) {
	fmt.Fprintf(b, "Trend: %+.1f regions/min over %.1f min (delta %+d regions",
		f.TrendRegionsPerMin, f.DurationMinutes, f.DeltaRegions)
	if f.DeltaMB != 0 {
		fmt.Fprintf(b, ", %+d MB", f.DeltaMB)
	}
	b.WriteString(")\n")

	if f.Detected {
		if f.OccupancyPct >= 0 {
			fmt.Fprintf(b, "Old-generation occupancy: %.1f%% of max heap\n", f.OccupancyPct)
		}
		if eta, ok := oomETA(fs, &f); ok {
			fmt.Fprintf(b, "Estimated time to heap exhaustion at current rate: %s\n", eta)
		}
	}

	if len(fs.StableEvents) > 0 {
		writeChart(b, fs, md)
	}
}

func writeChart(b *strings.Builder, fs *Findings, md bool) {
	points, unit := ChartSeries(fs)
	chart := utils.RenderChart(points, unit)
	if md {
		fmt.Fprintf(b, "\n```\n%s\n```\n", chart)
	} else {
		fmt.Fprintf(b, "\n%s\n", chart)
	}
}

// ChartSeries is the old-generation occupancy series used by the report
// chart, in MB when the region size is known.
func ChartSeries(fs *Findings) ([]utils.ChartPoint, string) {
	points := make([]utils.ChartPoint, 0, len(fs.StableEvents))
	unit := "regions"
	regionMB := 1
	if fs.Metadata.HasRegionSize() {
		unit = "MB"
		regionMB = fs.Metadata.RegionSizeMB
	}
	for _, ev := range fs.StableEvents {
		points = append(points, utils.ChartPoint{
			Time:  ev.UptimeMin(),
			Value: float64(ev.OldAfter * regionMB),
		})
	}
	return points, unit
}

func writeDebug(b *strings.Builder, fs *Findings, md bool) {
	if md {
		b.WriteString("\n## Debug\n\n```\n")
	} else {
		b.WriteString("\n--- DEBUG ---\n")
	}
	fmt.Fprintf(b, "events parsed: %d, after tail filter: %d, stable: %d\n",
		fs.RawEventCount, len(fs.Events), len(fs.StableEvents))
	regionMB := 1
	if fs.Metadata.HasRegionSize() {
		regionMB = fs.Metadata.RegionSizeMB
	}
	for _, ev := range fs.StableEvents {
		fmt.Fprintf(b, "t=%.2fmin GC(%d) old=%d regions (%d MB)\n",
			ev.UptimeMin(), ev.ID, ev.OldAfter, ev.OldAfter*regionMB)
	}
	if len(fs.StableEvents) > 0 {
		points, unit := ChartSeries(fs)
		b.WriteString(utils.RenderChart(points, unit))
		b.WriteString("\n")
	}
	if md {
		b.WriteString("```\n")
	}
}
