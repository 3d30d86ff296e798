package gc

import (
	"fmt"
)

// Thresholds are the heuristic knobs for the detector suite. They are
// tuning aids, not calibrated diagnostic criteria.
type Thresholds struct {
	GrowthRegionsPerMin float64 // retention growth trend signal
	DeltaRegions        int     // retention growth absolute-delta signal
	OccupancyPct        float64 // retention growth occupation signal

	PauseMS float64 // long STW pause cutoff

	EvacFailures int // allocation pressure: cycles with evacuation failure

	HumongousFreqPct float64 // humongous: share of cycles with humongous regions
	HumongousPeak    int     // humongous: single-cycle region count

	GapSeconds float64 // starvation: inter-cycle gap considered "long"

	MetaspaceKBPerMin   float64 // metaspace growth rate
	MetaspaceTriggerPct float64 // share of cycles caused by metaspace pressure

	TLABSlowRatioPct float64 // slow allocations as share of refills
	TLABWastePct     float64 // average TLAB waste
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		GrowthRegionsPerMin: 30,
		DeltaRegions:        200,
		OccupancyPct:        80,
		PauseMS:             1000,
		EvacFailures:        5,
		HumongousFreqPct:    20,
		HumongousPeak:       30,
		GapSeconds:          30,
		MetaspaceKBPerMin:   500,
		MetaspaceTriggerPct: 30,
		TLABSlowRatioPct:    30,
		TLABWastePct:        5,
	}
}

const detectorCount = 8

// FilterTailWindow keeps only events whose uptime falls within the last
// tailMinutes of the log. A nil window means no filtering. A non-positive
// window is a caller error, never clamped.
func FilterTailWindow(events []GCEvent, tailMinutes *float64) ([]GCEvent, error) {
	if tailMinutes == nil {
		return events, nil
	}
	if *tailMinutes <= 0 {
		return nil, &ValidationError{Param: "tail window", Msg: "must be a positive number of minutes"}
	}
	if len(events) == 0 {
		return events, nil
	}

	maxUptime := events[len(events)-1].Uptime
	for _, ev := range events {
		if ev.Uptime > maxUptime {
			maxUptime = ev.Uptime
		}
	}
	cutoff := maxUptime - *tailMinutes*60

	var kept []GCEvent
	for _, ev := range events {
		if ev.Uptime >= cutoff {
			kept = append(kept, ev)
		}
	}
	return kept, nil
}

type detector func(events []GCEvent, thr Thresholds, meta LogMetadata) Finding

// Analyze runs the full detector suite over the (optionally tail-filtered)
// event sequence. Detectors are independent pure functions; each decides
// on its own whether it has enough data to judge.
func Analyze(events []GCEvent, tailMinutes *float64, thr Thresholds, meta LogMetadata) (*Findings, error) {
	filtered, err := FilterTailWindow(events, tailMinutes)
	if err != nil {
		return nil, err
	}

	result := &Findings{
		Events:        filtered,
		RawEventCount: len(events),
		Metadata:      meta,
	}

	if len(filtered) == 0 {
		result.Summary = "NO STRONG SIGNAL (no GC events to analyze)"
		result.StableEvents = filtered
		return result, nil
	}

	result.StableEvents = stableWindow(filtered)

	detectors := []detector{
		detectRetentionGrowth,
		detectLongPauses,
		detectAllocationPressure,
		detectHumongousPressure,
		detectGCStarvation,
		detectMetaspaceLeak,
		detectTLABExhaustion,
		detectCollectorChoice,
	}
	for _, run := range detectors {
		result.Suspects = append(result.Suspects, run(filtered, thr, meta))
	}

	result.Summary = summarize(result.DetectedCount())
	return result, nil
}

func summarize(detected int) string {
	switch detected {
	case 0:
		return fmt.Sprintf("NO STRONG SIGNAL (0 of %d detectors triggered)", detectorCount)
	case 1:
		return fmt.Sprintf("1 ISSUE DETECTED (1 of %d detectors triggered)", detectorCount)
	default:
		return fmt.Sprintf("%d ISSUES DETECTED (%d of %d detectors triggered)", detected, detected, detectorCount)
	}
}

// stableWindow drops a terminal event that looks like a restart or OOM
// artifact: the old-region count collapsing more than 90% versus the
// previous cycle is the JVM coming back up, not the application freeing
// memory.
func stableWindow(events []GCEvent) []GCEvent {
	if len(events) < 2 {
		return events
	}
	last := events[len(events)-1]
	prev := events[len(events)-2]
	if prev.OldAfter > 0 && float64(prev.OldAfter-last.OldAfter)/float64(prev.OldAfter) > 0.9 {
		return events[:len(events)-1]
	}
	return events
}
