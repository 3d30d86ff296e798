package gc

import (
	"errors"
	"strings"
	"testing"
)

// oldSeries builds one event per old-region count, spaced stepSeconds
// apart starting at startUptime.
func oldSeries(startUptime, stepSeconds float64, oldAfter ...int) []GCEvent {
	events := make([]GCEvent, len(oldAfter))
	for i, old := range oldAfter {
		ev := newGCEvent(i)
		ev.Uptime = startUptime + float64(i)*stepSeconds
		ev.OldAfter = old
		events[i] = *ev
	}
	return events
}

func ptr(v float64) *float64 { return &v }

func TestFilterTailWindow(t *testing.T) {
	events := oldSeries(60, 60, 10, 20, 30, 40, 50) // uptimes 60..300

	kept, err := FilterTailWindow(events, ptr(2))
	if err != nil {
		t.Fatalf("FilterTailWindow failed: %v", err)
	}
	if len(kept) != 3 {
		t.Fatalf("kept %d events, want 3", len(kept))
	}
	for i, want := range []float64{180, 240, 300} {
		if kept[i].Uptime != want {
			t.Errorf("kept[%d].Uptime = %v, want %v", i, kept[i].Uptime, want)
		}
	}

	all, err := FilterTailWindow(events, nil)
	if err != nil || len(all) != len(events) {
		t.Errorf("nil window should keep everything, got %d events, err %v", len(all), err)
	}

	var validationErr *ValidationError
	if _, err := FilterTailWindow(events, ptr(0)); !errors.As(err, &validationErr) {
		t.Errorf("zero window: expected ValidationError, got %v", err)
	}
	if _, err := FilterTailWindow(events, ptr(-5)); !errors.As(err, &validationErr) {
		t.Errorf("negative window: expected ValidationError, got %v", err)
	}
}

func TestRetentionGrowthTrend(t *testing.T) {
	// 100 -> 350 regions across 4 minutes
	events := oldSeries(60, 60, 100, 150, 220, 280, 350)
	thr := DefaultThresholds()
	thr.GrowthRegionsPerMin = 40

	f := detectRetentionGrowth(events, thr, UnknownMetadata())
	if !f.Detected {
		t.Fatal("expected detection")
	}
	if f.TrendRegionsPerMin < 62 || f.TrendRegionsPerMin > 63 {
		t.Errorf("trend = %v regions/min, want ~62.5", f.TrendRegionsPerMin)
	}
	if f.Confidence != ConfidenceHigh && f.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want high or medium", f.Confidence)
	}
	if !f.DetectedByTrend {
		t.Error("expected the trend signal to fire")
	}
}

func TestRetentionGrowthLinearFitConfidence(t *testing.T) {
	// One cycle reclaims a few regions but the least-squares fit stays a
	// near-perfect climb; the dip must not demote a two-signal detection.
	events := oldSeries(60, 60, 100, 160, 220, 210, 280, 340, 400)

	f := detectRetentionGrowth(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected || !f.DetectedByTrend || !f.DetectedByDelta {
		t.Fatalf("expected trend+delta detection, got %+v", f)
	}
	if f.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high for a tight linear fit", f.Confidence)
	}

	fitSeen := false
	for _, ev := range f.Evidence {
		if strings.Contains(ev, "least-squares fit") {
			fitSeen = true
		}
	}
	if !fitSeen {
		t.Errorf("evidence missing the regression fit: %v", f.Evidence)
	}
}

func TestRetentionGrowthOOMArtifactFiltered(t *testing.T) {
	events := oldSeries(60, 60, 100, 200, 400, 800, 10)

	f := detectRetentionGrowth(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected {
		t.Fatal("expected detection despite the restart artifact")
	}
	if !f.OOMFiltered {
		t.Error("expected the terminal >90% drop to be flagged as an OOM artifact")
	}
	if f.DeltaRegions != 700 {
		t.Errorf("delta = %d, want 700 (terminal value must be 800, not 10)", f.DeltaRegions)
	}
	if f.DurationMinutes != 3 {
		t.Errorf("duration = %v min, want 3 (artifact excluded)", f.DurationMinutes)
	}
}

func TestRetentionGrowthStableSeries(t *testing.T) {
	events := oldSeries(60, 60, 100, 102, 101, 103, 100)
	thr := DefaultThresholds()
	thr.GrowthRegionsPerMin = 5

	f := detectRetentionGrowth(events, thr, UnknownMetadata())
	if f.Detected {
		t.Errorf("stable series should not detect, got %+v", f)
	}
}

func TestRetentionGrowthOccupationSignal(t *testing.T) {
	// barely-moving old gen that already fills most of the heap
	events := oldSeries(60, 60, 210, 211, 211, 212)
	meta := LogMetadata{HeapMaxMB: 256, RegionSizeMB: 1, Collector: "G1"}

	f := detectRetentionGrowth(events, DefaultThresholds(), meta)
	if !f.Detected || !f.DetectedByOccupation {
		t.Fatalf("expected occupation signal at %.1f%%, got %+v", f.OccupancyPct, f)
	}
	if f.OccupancyPct < 82 || f.OccupancyPct > 84 {
		t.Errorf("occupancy = %v%%, want ~82.8", f.OccupancyPct)
	}
}

func TestRetentionGrowthNeedsThreeEvents(t *testing.T) {
	f := detectRetentionGrowth(oldSeries(60, 60, 100, 400), DefaultThresholds(), UnknownMetadata())
	if f.Detected || f.Confidence != ConfidenceLow {
		t.Errorf("two events must not be enough: %+v", f)
	}
}

func TestLongPauses(t *testing.T) {
	events := oldSeries(60, 60, 100, 101, 102, 103)
	events[1].PauseMS = 1800
	events[2].PauseMS = 40
	events[3].PauseMS = 2500
	events[3].Type = "Full"

	f := detectLongPauses(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected || f.SlowPauseCount != 2 {
		t.Fatalf("expected 2 slow pauses, got %+v", f)
	}
	if f.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want medium for 1-2 slow pauses", f.Confidence)
	}
	if f.MaxPauseMS != 2500 {
		t.Errorf("max pause = %v, want 2500", f.MaxPauseMS)
	}

	events[2].PauseMS = 1100
	f = detectLongPauses(events, DefaultThresholds(), UnknownMetadata())
	if f.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high for 3 slow pauses", f.Confidence)
	}
}

func TestLongPausesNoData(t *testing.T) {
	f := detectLongPauses(oldSeries(60, 60, 100, 101, 102), DefaultThresholds(), UnknownMetadata())
	if f.Detected {
		t.Error("no pause data must not detect")
	}
	if len(f.Evidence) == 0 || !strings.Contains(f.Evidence[0], "no pause") {
		t.Errorf("expected a no-pause-data explanation, got %v", f.Evidence)
	}
}

func TestAllocationPressure(t *testing.T) {
	events := oldSeries(60, 10, make([]int, 60)...)
	for i := 0; i < 25; i++ {
		events[i].EvacuationFailure = true
		events[i].PauseMS = float64(100 + i)
	}

	f := detectAllocationPressure(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected || f.EvacFailureCount != 25 {
		t.Fatalf("expected detection with 25 failures, got %+v", f)
	}
	if f.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want medium for >20 failures", f.Confidence)
	}

	// at the threshold is not over it
	few := oldSeries(60, 10, make([]int, 10)...)
	for i := 0; i < 5; i++ {
		few[i].EvacuationFailure = true
	}
	if f := detectAllocationPressure(few, DefaultThresholds(), UnknownMetadata()); f.Detected {
		t.Errorf("5 failures at threshold 5 must not detect, got %+v", f)
	}
}

func TestHumongousFrequencyHighConfidence(t *testing.T) {
	events := oldSeries(60, 30, make([]int, 10)...)
	for i := 0; i < 6; i++ {
		events[i].HumongousAfter = 5
	}

	f := detectHumongousPressure(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected || !f.DetectedByFrequency {
		t.Fatalf("expected frequency detection at 60%%, got %+v", f)
	}
	if f.HumongousFreqPct != 60 {
		t.Errorf("frequency = %v%%, want 60", f.HumongousFreqPct)
	}
	if f.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high at >=50%% frequency", f.Confidence)
	}
}

func TestHumongousPeakOnlyLowConfidence(t *testing.T) {
	events := oldSeries(60, 30, make([]int, 10)...)
	events[4].HumongousAfter = 35

	f := detectHumongousPressure(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected {
		t.Fatal("expected peak-only detection")
	}
	if !f.DetectedByPeak || f.DetectedByFrequency {
		t.Errorf("expected peak-only signal, got peak=%v freq=%v", f.DetectedByPeak, f.DetectedByFrequency)
	}
	if f.Confidence != ConfidenceLow {
		t.Errorf("confidence = %v, want low for isolated peak", f.Confidence)
	}
	if f.HumongousPeak != 35 {
		t.Errorf("peak = %d, want 35", f.HumongousPeak)
	}
}

func starvationEvents(heap []int, old []int) []GCEvent {
	events := make([]GCEvent, len(heap))
	for i := range heap {
		ev := newGCEvent(i)
		ev.Uptime = 60 + float64(i)*60 // repeated 60s gaps
		ev.OldAfter = old[i]
		ev.HeapAfterMB = heap[i]
		ev.HeapTotalMB = 1024
		events[i] = *ev
	}
	return events
}

func TestStarvationPlateauNotDetected(t *testing.T) {
	events := starvationEvents(
		[]int{600, 600, 600, 600, 600},
		[]int{600, 600, 600, 600, 600},
	)
	f := detectGCStarvation(events, DefaultThresholds(), UnknownMetadata())
	if f.Detected {
		t.Errorf("a stable plateau with long gaps must not detect, got %+v", f)
	}
}

func TestStarvationGrowthDetected(t *testing.T) {
	events := starvationEvents(
		[]int{500, 590, 680, 770, 850},
		[]int{500, 590, 680, 770, 850},
	)
	f := detectGCStarvation(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected {
		t.Fatalf("growing heap with long gaps should detect, got %+v", f)
	}
	if f.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high with %d long gaps", f.Confidence, f.LongGapCount)
	}
	if f.MaxGapSeconds != 60 {
		t.Errorf("max gap = %v, want 60", f.MaxGapSeconds)
	}
}

func TestMetaspaceLeakGrowth(t *testing.T) {
	events := oldSeries(60, 60, 100, 101, 102, 103)
	for i := range events {
		events[i].MetaspaceUsedKB = int64(10000 + i*1000) // 1000 KB/min
	}

	f := detectMetaspaceLeak(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected {
		t.Fatalf("expected growth detection, got %+v", f)
	}
	if f.MetaspaceKBPerMin != 1000 {
		t.Errorf("growth = %v KB/min, want 1000", f.MetaspaceKBPerMin)
	}
	if f.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want medium for growth alone", f.Confidence)
	}
}

func TestMetaspaceLeakBothSignalsHigh(t *testing.T) {
	events := oldSeries(60, 60, 100, 101, 102, 103)
	for i := range events {
		events[i].MetaspaceUsedKB = int64(10000 + i*1000)
		events[i].MetadataThreshold = true
	}
	f := detectMetaspaceLeak(events, DefaultThresholds(), UnknownMetadata())
	if f.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %v, want high when both signals fire", f.Confidence)
	}
}

func TestMetaspaceInsufficientData(t *testing.T) {
	events := oldSeries(60, 60, 100, 101, 102)
	events[0].MetaspaceUsedKB = 10000
	f := detectMetaspaceLeak(events, DefaultThresholds(), UnknownMetadata())
	if f.Detected || f.Confidence != ConfidenceLow {
		t.Errorf("a single metaspace sample must not detect: %+v", f)
	}
}

func TestTLABExhaustionRatio(t *testing.T) {
	events := oldSeries(60, 60, 100, 101, 102)
	for i := range events {
		events[i].TLABRefills = 100
		events[i].TLABSlowAllocs = 40
		events[i].TLABWastePct = 1
	}

	f := detectTLABExhaustion(events, DefaultThresholds(), UnknownMetadata())
	if !f.Detected {
		t.Fatalf("40%% slow ratio should detect, got %+v", f)
	}
	if f.SlowRefillRatioPct != 40 {
		t.Errorf("ratio = %v%%, want 40", f.SlowRefillRatioPct)
	}
	if f.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %v, want medium for ratio alone", f.Confidence)
	}
}

func TestTLABMissingDataAsksForLogging(t *testing.T) {
	f := detectTLABExhaustion(oldSeries(60, 60, 100, 101, 102), DefaultThresholds(), UnknownMetadata())
	if f.Detected {
		t.Error("no TLAB data must not detect")
	}
	found := false
	for _, step := range f.NextSteps {
		if strings.Contains(step, "tlab") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a pointer to TLAB logging, got %v", f.NextSteps)
	}
}

func TestCollectorChoice(t *testing.T) {
	events := oldSeries(60, 60, 100)
	thr := DefaultThresholds()

	for _, name := range []string{"G1", "ZGC", "Shenandoah"} {
		f := detectCollectorChoice(events, thr, LogMetadata{Collector: name, HeapMaxMB: -1, RegionSizeMB: -1})
		if f.Detected {
			t.Errorf("%s must never be flagged", name)
		}
	}

	serial := detectCollectorChoice(events, thr, LogMetadata{Collector: "Serial", HeapMaxMB: -1, RegionSizeMB: -1})
	if !serial.Detected || serial.Confidence != ConfidenceHigh {
		t.Errorf("Serial: want detected with high confidence, got %+v", serial)
	}
	if FindingSeverity(serial) != SeverityCritical {
		t.Errorf("Serial severity = %v, want CRITICAL", FindingSeverity(serial))
	}

	parallel := detectCollectorChoice(events, thr, LogMetadata{Collector: "Parallel", HeapMaxMB: -1, RegionSizeMB: -1})
	if !parallel.Detected || parallel.Confidence != ConfidenceMedium {
		t.Errorf("Parallel: want detected with medium confidence, got %+v", parallel)
	}
	if FindingSeverity(parallel) != SeverityCritical {
		t.Errorf("Parallel severity = %v, want CRITICAL", FindingSeverity(parallel))
	}

	unknown := detectCollectorChoice(events, thr, UnknownMetadata())
	if unknown.Detected {
		t.Errorf("unknown collector must stay informational, got %+v", unknown)
	}
}

func TestAnalyzeStableLogNoStrongSignal(t *testing.T) {
	events := oldSeries(60, 60, 100, 102, 101, 103, 100)
	thr := DefaultThresholds()
	thr.GrowthRegionsPerMin = 5

	result, err := Analyze(events, nil, thr, LogMetadata{Collector: "G1", HeapMaxMB: 1024, RegionSizeMB: 1})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !strings.Contains(result.Summary, "NO STRONG SIGNAL") {
		t.Errorf("summary = %q, want NO STRONG SIGNAL", result.Summary)
	}
	for _, f := range result.Suspects {
		if f.Detected {
			t.Errorf("detector %s fired on a stable log", f.Type)
		}
	}
}

func TestAnalyzeGrowthEndToEnd(t *testing.T) {
	events := oldSeries(60, 60, 0, 50, 100, 150, 200)
	thr := DefaultThresholds()
	thr.GrowthRegionsPerMin = 30

	result, err := Analyze(events, nil, thr, LogMetadata{Collector: "G1", HeapMaxMB: -1, RegionSizeMB: -1})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	ret := result.ByType(FindingRetentionGrowth)
	if ret == nil || !ret.Detected {
		t.Fatal("expected retention growth to detect")
	}
	if ret.TrendRegionsPerMin <= 30 {
		t.Errorf("trend = %v, want > 30", ret.TrendRegionsPerMin)
	}

	report, err := GenerateReport(result, "txt", false)
	if err != nil {
		t.Fatalf("GenerateReport failed: %v", err)
	}
	detectedLine := false
	for _, line := range strings.Split(report, "\n") {
		if strings.Contains(line, "RETENTION GROWTH") && strings.Contains(line, "DETECTED") {
			detectedLine = true
		}
	}
	if !detectedLine {
		t.Error("plain-text report is missing the RETENTION GROWTH ... DETECTED line")
	}
}

func TestAnalyzeEmptyAfterFilter(t *testing.T) {
	result, err := Analyze(nil, nil, DefaultThresholds(), UnknownMetadata())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(result.Suspects) != 0 {
		t.Errorf("expected no findings for an empty event set, got %d", len(result.Suspects))
	}
	if !strings.Contains(result.Summary, "NO STRONG SIGNAL") {
		t.Errorf("summary = %q", result.Summary)
	}
}

func TestAnalyzeSummaryWording(t *testing.T) {
	if s := summarize(0); !strings.Contains(s, "NO STRONG SIGNAL") {
		t.Errorf("summarize(0) = %q", s)
	}
	if s := summarize(1); !strings.Contains(s, "1 ISSUE DETECTED") {
		t.Errorf("summarize(1) = %q", s)
	}
	if s := summarize(3); !strings.Contains(s, "3 ISSUES DETECTED") {
		t.Errorf("summarize(3) = %q", s)
	}
}
