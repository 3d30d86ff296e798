package gc

import (
	"fmt"
	"sort"

	"github.com/rguichard/jtriage/utils"
)

// ==== Retention growth ====

// detectRetentionGrowth looks for sustained old-generation growth. Three
// independent signals: regions-per-minute trend, absolute region delta
// across the window, and current occupancy versus max heap. Any one of
// them triggers detection.
func detectRetentionGrowth(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingRetentionGrowth, Confidence: ConfidenceLow, OccupancyPct: -1}

	if len(events) < 3 {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("only %d GC event(s); need at least 3 for a trend", len(events)))
		return f
	}

	stable := stableWindow(events)
	f.OOMFiltered = len(stable) < len(events)
	if f.OOMFiltered {
		f.Evidence = append(f.Evidence,
			"final event excluded from trend: old-region count collapsed >90%, likely a restart or OOM kill")
	}
	if len(stable) < 2 {
		f.Evidence = append(f.Evidence, "not enough stable events after excluding the restart artifact")
		return f
	}

	first := stable[0]
	last := stable[len(stable)-1]
	f.DurationMinutes = last.UptimeMin() - first.UptimeMin()
	f.DeltaRegions = last.OldAfter - first.OldAfter
	if f.DurationMinutes > 0 {
		f.TrendRegionsPerMin = float64(f.DeltaRegions) / f.DurationMinutes
	}
	if meta.HasRegionSize() {
		f.DeltaMB = f.DeltaRegions * meta.RegionSizeMB
	}
	if meta.HasRegionSize() && meta.HasHeapMax() {
		currentMB := last.OldAfter * meta.RegionSizeMB
		f.OccupancyPct = float64(currentMB) / float64(meta.HeapMaxMB) * 100
	}

	f.DetectedByTrend = f.TrendRegionsPerMin > thr.GrowthRegionsPerMin
	f.DetectedByDelta = f.DeltaRegions > thr.DeltaRegions
	f.DetectedByOccupation = f.OccupancyPct > thr.OccupancyPct
	f.Detected = f.DetectedByTrend || f.DetectedByDelta || f.DetectedByOccupation

	monotonic := true
	for i := 1; i < len(stable); i++ {
		if stable[i].OldAfter < stable[i-1].OldAfter {
			monotonic = false
			break
		}
	}

	// A tight linear fit counts as steady growth even when single cycles
	// dip: collections reclaim a little, the line keeps climbing.
	times := make([]float64, len(stable))
	olds := make([]float64, len(stable))
	for i, ev := range stable {
		times[i] = ev.UptimeMin()
		olds[i] = float64(ev.OldAfter)
	}
	fitSlope, fitCorr := utils.LinearRegression(times, olds)
	steady := monotonic || fitCorr >= 0.95

	if f.Detected {
		signals := 0
		for _, hit := range []bool{f.DetectedByTrend, f.DetectedByDelta, f.DetectedByOccupation} {
			if hit {
				signals++
			}
		}
		switch {
		case signals >= 2 && steady:
			f.Confidence = ConfidenceHigh
		case f.DetectedByTrend && steady && len(stable) >= 5:
			f.Confidence = ConfidenceHigh
		case f.DetectedByTrend || f.DeltaRegions > 2*thr.DeltaRegions || f.OccupancyPct > 90:
			f.Confidence = ConfidenceMedium
		}
	}

	mid := stable[len(stable)/2]
	f.Evidence = append(f.Evidence,
		fmt.Sprintf("start: GC(%d) old=%d regions at %.1f min", first.ID, first.OldAfter, first.UptimeMin()),
		fmt.Sprintf("mid:   GC(%d) old=%d regions at %.1f min", mid.ID, mid.OldAfter, mid.UptimeMin()),
		fmt.Sprintf("end:   GC(%d) old=%d regions at %.1f min", last.ID, last.OldAfter, last.UptimeMin()),
		fmt.Sprintf("signals: trend=%v delta=%v occupation=%v", f.DetectedByTrend, f.DetectedByDelta, f.DetectedByOccupation),
		fmt.Sprintf("least-squares fit: %.1f regions/min (r=%.2f)", fitSlope, fitCorr),
	)

	f.BusinessImpact = retentionNote(&f)

	if f.Detected {
		f.NextSteps = append(f.NextSteps,
			"capture two heap dumps 10+ minutes apart and diff the dominator trees (jmap -dump + Eclipse MAT)",
			"compare jmap -histo:live snapshots for the fastest-growing classes",
		)
		if frontLoadedGrowth(stable) {
			f.NextSteps = append(f.NextSteps,
				"growth is concentrated early in the log; re-run with a tail window to exclude warmup")
		}
	}
	return f
}

func retentionNote(f *Finding) string {
	switch {
	case f.OccupancyPct >= 95:
		return fmt.Sprintf("old generation is at %.0f%% of max heap; OutOfMemoryError is imminent", f.OccupancyPct)
	case f.DetectedByOccupation:
		return fmt.Sprintf("old generation occupies %.0f%% of max heap; headroom for traffic spikes is gone", f.OccupancyPct)
	case f.DetectedByTrend:
		return fmt.Sprintf("old generation is growing at %.1f regions/min and not coming back down; this is the signature of an active memory leak", f.TrendRegionsPerMin)
	case f.DetectedByDelta && f.DurationMinutes > 60:
		return fmt.Sprintf("old generation grew by %d regions over %.0f minutes; slow accumulation like this is either cache warmup or a slow leak and needs a longer observation window to tell apart", f.DeltaRegions, f.DurationMinutes)
	case f.Detected:
		return fmt.Sprintf("old generation grew by %d regions across the analyzed window", f.DeltaRegions)
	default:
		return "old-generation usage is stable; no retention problem visible in this window"
	}
}

// frontLoadedGrowth reports whether most of the observed growth happened
// in the first half of the window, the shape cache warmup produces.
func frontLoadedGrowth(stable []GCEvent) bool {
	if len(stable) < 4 {
		return false
	}
	mid := stable[len(stable)/2]
	firstHalf := mid.OldAfter - stable[0].OldAfter
	secondHalf := stable[len(stable)-1].OldAfter - mid.OldAfter
	return firstHalf > 2*secondHalf && firstHalf > 0
}

// ==== Long stop-the-world pauses ====

func detectLongPauses(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingLongPauses, Confidence: ConfidenceLow}

	var withPause, slow []GCEvent
	for _, ev := range events {
		if !ev.HasPause() {
			continue
		}
		withPause = append(withPause, ev)
		if ev.PauseMS > thr.PauseMS {
			slow = append(slow, ev)
		}
	}

	if len(withPause) == 0 {
		f.Evidence = append(f.Evidence, "no pause durations recorded in this log")
		f.BusinessImpact = "cannot judge pause behavior without pause data"
		return f
	}

	f.SlowPauseCount = len(slow)
	if len(slow) == 0 {
		f.BusinessImpact = fmt.Sprintf("all %d recorded pauses stayed under %.0fms", len(withPause), thr.PauseMS)
		return f
	}

	f.Detected = true
	if len(slow) >= 3 {
		f.Confidence = ConfidenceHigh
	} else {
		f.Confidence = ConfidenceMedium
	}

	pauses := make([]float64, len(slow))
	for i, ev := range slow {
		pauses[i] = ev.PauseMS
		if ev.PauseMS > f.MaxPauseMS {
			f.MaxPauseMS = ev.PauseMS
		}
	}
	f.AvgPauseMS = utils.CalculateMean(pauses)

	if len(slow) > 1 {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%d pauses over %.0fms: max %.0fms, avg %.0fms", len(slow), thr.PauseMS, f.MaxPauseMS, f.AvgPauseMS))
	}
	for _, ev := range slow {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("GC(%d) %s pause %.1fms at %.1f min", ev.ID, ev.Type, ev.PauseMS, ev.UptimeMin()))
	}

	if len(slow) >= 3 {
		f.BusinessImpact = fmt.Sprintf("frequent stop-the-world pauses (%d over %.0fms); every request in flight stalls for up to %.1fs each time", len(slow), thr.PauseMS, f.MaxPauseMS/1000)
	} else {
		f.BusinessImpact = fmt.Sprintf("a stop-the-world pause of %.0fms froze all application threads; one-off, but worth explaining", f.MaxPauseMS)
	}
	f.NextSteps = append(f.NextSteps,
		"check whether the slow pauses are Full GCs; explicit System.gc() calls or humongous allocation spikes are the usual triggers",
		"correlate pause timestamps with request-latency percentiles to size the user impact",
	)
	return f
}

// ==== Allocation pressure (evacuation failure) ====

func detectAllocationPressure(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingAllocationPressure, Confidence: ConfidenceLow}

	var failed []GCEvent
	for _, ev := range events {
		if ev.EvacuationFailure {
			failed = append(failed, ev)
		}
	}
	f.EvacFailureCount = len(failed)

	if len(failed) == 0 {
		f.BusinessImpact = "no evacuation failures; the collector is keeping up with the allocation rate"
		return f
	}
	if len(failed) <= thr.EvacFailures {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%d evacuation failure(s), at or below the threshold of %d", len(failed), thr.EvacFailures))
		f.BusinessImpact = "occasional evacuation failures; tolerable, but watch the count"
		return f
	}

	f.Detected = true
	switch {
	case len(failed) > 50:
		f.Confidence = ConfidenceHigh
	case len(failed) > 20:
		f.Confidence = ConfidenceMedium
	}

	// worst cycles first, capped sample
	sort.SliceStable(failed, func(i, j int) bool { return failed[i].PauseMS > failed[j].PauseMS })
	sample := failed
	if len(sample) > 5 {
		sample = sample[:5]
	}
	f.Evidence = append(f.Evidence,
		fmt.Sprintf("%d cycles hit evacuation failure (threshold %d)", len(failed), thr.EvacFailures))
	for _, ev := range sample {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("GC(%d) %s evacuation failure, pause %.1fms at %.1f min", ev.ID, ev.Type, ev.PauseMS, ev.UptimeMin()))
	}

	switch {
	case len(failed) > 50:
		f.BusinessImpact = fmt.Sprintf("%d evacuation failures: the heap has no room to move surviving objects; full GCs and an eventual OutOfMemoryError are close behind", len(failed))
	case len(failed) > 20:
		f.BusinessImpact = fmt.Sprintf("%d evacuation failures point at sustained allocation pressure outrunning the collector", len(failed))
	default:
		f.BusinessImpact = fmt.Sprintf("%d evacuation failures; allocation bursts are exceeding free heap reserve", len(failed))
	}
	f.NextSteps = append(f.NextSteps,
		"increase -XX:G1ReservePercent to give evacuation more headroom",
		"profile allocation hot spots (async-profiler alloc mode) and reduce burst allocation",
		"if the heap runs habitually full, increase -Xmx",
	)
	return f
}

// ==== Humongous object pressure ====

func detectHumongousPressure(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingHumongousPressure, Confidence: ConfidenceLow}

	type cycle struct {
		ev    GCEvent
		count int
	}
	var withHumongous []cycle
	for _, ev := range events {
		if !ev.HasHumongous() {
			continue
		}
		n := max(ev.HumongousBefore, ev.HumongousAfter)
		if n > 0 {
			withHumongous = append(withHumongous, cycle{ev, n})
			if n > f.HumongousPeak {
				f.HumongousPeak = n
			}
		}
	}

	f.HumongousFreqPct = float64(len(withHumongous)) / float64(len(events)) * 100
	f.DetectedByFrequency = f.HumongousFreqPct >= thr.HumongousFreqPct
	f.DetectedByPeak = f.HumongousPeak >= thr.HumongousPeak
	f.Detected = f.DetectedByFrequency || f.DetectedByPeak

	if !f.Detected {
		f.BusinessImpact = "humongous allocations are rare; no fragmentation pressure visible"
		return f
	}

	switch {
	case f.HumongousFreqPct >= 50:
		f.Confidence = ConfidenceHigh
	case f.DetectedByFrequency:
		f.Confidence = ConfidenceMedium
	}

	f.Evidence = append(f.Evidence,
		fmt.Sprintf("%d of %d cycles (%.0f%%) carried humongous regions; peak %d regions in one cycle",
			len(withHumongous), len(events), f.HumongousFreqPct, f.HumongousPeak))
	if meta.HasHeapMax() && meta.HasRegionSize() {
		totalRegions := meta.HeapMaxMB / meta.RegionSizeMB
		if totalRegions > 0 {
			f.Evidence = append(f.Evidence,
				fmt.Sprintf("peak humongous footprint is %.1f%% of the %d-region heap",
					float64(f.HumongousPeak)/float64(totalRegions)*100, totalRegions))
		}
	}

	sort.SliceStable(withHumongous, func(i, j int) bool { return withHumongous[i].count > withHumongous[j].count })
	top := withHumongous
	if len(top) > 3 {
		top = top[:3]
	}
	for _, c := range top {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("GC(%d) %d humongous regions at %.1f min", c.ev.ID, c.count, c.ev.UptimeMin()))
	}

	f.BusinessImpact = "objects larger than half a region bypass normal allocation and fragment the heap; sustained humongous traffic forces early full GCs"
	f.NextSteps = append(f.NextSteps,
		"find the oversized allocations (commonly large byte[] buffers or unbounded collections) and chunk or pool them",
		"consider a larger -XX:G1HeapRegionSize so the same objects fit normal regions",
	)
	return f
}

// ==== GC starvation ====

// detectGCStarvation looks for the finalizer-backlog shape: long gaps
// between GC cycles while the heap sits full and keeps growing. Long gaps
// alone are what an idle service looks like, so detection requires the
// full conjunction of gap, occupancy, and growth-or-critical.
func detectGCStarvation(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingGCStarvation, Confidence: ConfidenceLow}

	if len(events) < 3 {
		f.Evidence = append(f.Evidence, "need at least 3 GC events to measure inter-cycle gaps")
		return f
	}
	durationMin := events[len(events)-1].UptimeMin() - events[0].UptimeMin()
	if durationMin < 1 {
		f.Evidence = append(f.Evidence, "log covers under a minute; gap analysis would be noise")
		return f
	}

	type gap struct {
		before  GCEvent
		after   GCEvent
		seconds float64
	}
	var gaps, longGaps []gap
	for i := 1; i < len(events); i++ {
		g := gap{events[i-1], events[i], events[i].Uptime - events[i-1].Uptime}
		gaps = append(gaps, g)
		if g.seconds > f.MaxGapSeconds {
			f.MaxGapSeconds = g.seconds
		}
		if g.seconds > thr.GapSeconds {
			longGaps = append(longGaps, g)
		}
	}
	f.LongGapCount = len(longGaps)

	// occupancy entering each long gap, from whichever heap view we have
	var occSum float64
	occKnown := 0
	for _, g := range longGaps {
		if pct, ok := occupancyPct(g.before, meta); ok {
			occSum += pct
			occKnown++
		}
	}
	avgOcc := 0.0
	if occKnown > 0 {
		avgOcc = occSum / float64(occKnown)
	}

	growthPerMin := float64(events[len(events)-1].OldAfter-events[0].OldAfter) / durationMin
	growing := growthPerMin > 10
	critical := false
	if pct, ok := occupancyPct(events[len(events)-1], meta); ok {
		critical = pct > 75
	}

	f.Detected = len(longGaps) > 0 && avgOcc > 50 && (growing || critical)

	if !f.Detected {
		if len(longGaps) > 0 {
			f.BusinessImpact = fmt.Sprintf("%d long gap(s) between GC cycles but the heap is stable; this looks like an idle or steady-state service, not starvation", len(longGaps))
		} else {
			f.BusinessImpact = "GC cycles run regularly; nothing is blocking collection"
		}
		return f
	}

	if len(longGaps) >= 3 {
		f.Confidence = ConfidenceHigh
	} else {
		f.Confidence = ConfidenceMedium
	}

	sort.SliceStable(longGaps, func(i, j int) bool { return longGaps[i].seconds > longGaps[j].seconds })
	top := longGaps
	if len(top) > 3 {
		top = top[:3]
	}
	for _, g := range top {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%.0fs gap between GC(%d) and GC(%d), heap ~%.0f%% full entering it",
				g.seconds, g.before.ID, g.after.ID, mustOccupancy(g.before, meta)))
	}
	f.Evidence = append(f.Evidence,
		fmt.Sprintf("overall GC rate %.1f cycles/min across %.0f minutes", float64(len(events))/durationMin, durationMin))

	f.BusinessImpact = "the collector is being held off while the heap fills; a finalizer or reference-processing backlog is the classic cause, and the end state is an OutOfMemoryError with plenty of nominally reclaimable memory"
	f.NextSteps = append(f.NextSteps,
		"take a thread dump and look at the Finalizer and Reference Handler threads",
		"check for finalize() implementations or Cleaner misuse on hot types",
	)
	return f
}

func occupancyPct(ev GCEvent, meta LogMetadata) (float64, bool) {
	if ev.HasHeap() {
		return float64(ev.HeapAfterMB) / float64(ev.HeapTotalMB) * 100, true
	}
	if ev.HasOldAfter() && meta.HasRegionSize() && meta.HasHeapMax() {
		return float64(ev.OldAfter*meta.RegionSizeMB) / float64(meta.HeapMaxMB) * 100, true
	}
	return 0, false
}

func mustOccupancy(ev GCEvent, meta LogMetadata) float64 {
	pct, _ := occupancyPct(ev, meta)
	return pct
}

// ==== Metaspace leak ====

func detectMetaspaceLeak(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingMetaspaceLeak, Confidence: ConfidenceLow}

	var withMeta []GCEvent
	triggered := 0
	for _, ev := range events {
		if ev.HasMetaspace() {
			withMeta = append(withMeta, ev)
		}
		if ev.MetadataThreshold {
			triggered++
		}
	}
	f.TriggerPct = float64(triggered) / float64(len(events)) * 100

	if len(withMeta) < 2 {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("only %d event(s) carry metaspace data; need at least 2", len(withMeta)))
		f.BusinessImpact = "not enough metaspace samples to judge"
		return f
	}
	first := withMeta[0]
	last := withMeta[len(withMeta)-1]
	spanSec := last.Uptime - first.Uptime
	if spanSec < 6 {
		f.Evidence = append(f.Evidence, "metaspace samples span under 6 seconds; growth rate would be noise")
		f.BusinessImpact = "not enough metaspace history to judge"
		return f
	}

	deltaKB := last.MetaspaceUsedKB - first.MetaspaceUsedKB
	f.MetaspaceKBPerMin = float64(deltaKB) / (spanSec / 60)

	growthHit := deltaKB > 0 && f.MetaspaceKBPerMin > thr.MetaspaceKBPerMin
	triggerHit := f.TriggerPct >= thr.MetaspaceTriggerPct
	f.Detected = growthHit || triggerHit

	switch {
	case !f.Detected:
	case growthHit && triggerHit, f.MetaspaceKBPerMin > 3*thr.MetaspaceKBPerMin:
		f.Confidence = ConfidenceHigh
	case growthHit:
		f.Confidence = ConfidenceMedium
	}

	mid := withMeta[len(withMeta)/2]
	f.Evidence = append(f.Evidence,
		fmt.Sprintf("metaspace %.1f MB -> %.1f MB (%+.1f MB) over %.1f min",
			float64(first.MetaspaceUsedKB)/1024, float64(last.MetaspaceUsedKB)/1024,
			float64(deltaKB)/1024, spanSec/60),
		fmt.Sprintf("progression: GC(%d) %dK, GC(%d) %dK, GC(%d) %dK",
			first.ID, first.MetaspaceUsedKB, mid.ID, mid.MetaspaceUsedKB, last.ID, last.MetaspaceUsedKB),
		fmt.Sprintf("%.0f%% of cycles were triggered by metaspace pressure", f.TriggerPct),
	)

	if !f.Detected {
		f.BusinessImpact = "metaspace usage is flat; classloading looks healthy"
		return f
	}

	f.BusinessImpact = fmt.Sprintf("metaspace is growing at %.0f KB/min with no ceiling in sight; classloader leaks end in OutOfMemoryError: Metaspace regardless of heap size", f.MetaspaceKBPerMin)
	f.NextSteps = append(f.NextSteps,
		"enable -Xlog:class+load,class+unload and look for loaders that never unload",
		"common culprits: redeploy-without-restart cycles, dynamic proxy or bytecode generation in a loop",
	)
	return f
}

// ==== TLAB exhaustion ====

func detectTLABExhaustion(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingTLABExhaustion, Confidence: ConfidenceLow}

	var withTLAB []GCEvent
	for _, ev := range events {
		if ev.HasTLAB() {
			withTLAB = append(withTLAB, ev)
		}
	}
	if len(withTLAB) < 2 {
		f.Evidence = append(f.Evidence, "no TLAB statistics in this log")
		f.BusinessImpact = "cannot judge TLAB behavior without per-thread allocation counters"
		f.NextSteps = append(f.NextSteps, "re-run the JVM with -Xlog:gc+tlab=trace to record TLAB statistics")
		return f
	}

	var totalSlow, totalRefills int
	var maxWaste float64
	wastes := make([]float64, 0, len(withTLAB))
	for _, ev := range withTLAB {
		totalSlow += ev.TLABSlowAllocs
		totalRefills += ev.TLABRefills
		wastes = append(wastes, ev.TLABWastePct)
		if ev.TLABWastePct > maxWaste {
			maxWaste = ev.TLABWastePct
		}
	}
	if totalRefills > 0 {
		f.SlowRefillRatioPct = float64(totalSlow) / float64(totalRefills) * 100
	}
	f.AvgWastePct = utils.CalculateMean(wastes)

	ratioHit := f.SlowRefillRatioPct >= thr.TLABSlowRatioPct
	wasteHit := f.AvgWastePct >= thr.TLABWastePct
	f.Detected = ratioHit || wasteHit

	switch {
	case !f.Detected:
	case (ratioHit && wasteHit) || f.SlowRefillRatioPct >= 1.5*thr.TLABSlowRatioPct:
		f.Confidence = ConfidenceHigh
	case ratioHit:
		f.Confidence = ConfidenceMedium
	}

	spanSec := withTLAB[len(withTLAB)-1].Uptime - withTLAB[0].Uptime
	f.Evidence = append(f.Evidence,
		fmt.Sprintf("%d slow allocations against %d refills (%.1f%%); avg waste %.1f%%, max %.1f%%",
			totalSlow, totalRefills, f.SlowRefillRatioPct, f.AvgWastePct, maxWaste))
	if spanSec > 0 {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%.1f slow allocations/sec over the window", float64(totalSlow)/spanSec))
	}

	sort.SliceStable(withTLAB, func(i, j int) bool { return withTLAB[i].TLABSlowAllocs > withTLAB[j].TLABSlowAllocs })
	top := withTLAB
	if len(top) > 3 {
		top = top[:3]
	}
	for _, ev := range top {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("GC(%d) %d slow allocs, %d refills, waste %.1f%% at %.1f min",
				ev.ID, ev.TLABSlowAllocs, ev.TLABRefills, ev.TLABWastePct, ev.UptimeMin()))
	}

	if !f.Detected {
		f.BusinessImpact = "threads are allocating inside their local buffers; no contention visible"
		return f
	}

	f.BusinessImpact = fmt.Sprintf("%.0f%% of allocations are falling off the thread-local fast path onto the shared, contended one; allocation-heavy threads are paying for each other", f.SlowRefillRatioPct)
	f.NextSteps = append(f.NextSteps,
		"profile the threads doing slow allocations; oversized single allocations are the usual cause",
		"consider tuning -XX:TLABSize / -XX:MinTLABSize if allocation sizes are bimodal",
	)
	return f
}

// ==== Collector choice ====

// detectCollectorChoice is a pure lookup on the startup banner. Modern
// collectors are never flagged; legacy ones always are.
func detectCollectorChoice(events []GCEvent, thr Thresholds, meta LogMetadata) Finding {
	f := Finding{Type: FindingCollectorChoice, Confidence: ConfidenceLow, Collector: meta.Collector}

	suggested := "G1"
	if meta.HasHeapMax() && meta.HeapMaxMB >= 8*1024 {
		suggested = "ZGC (heap is 8G+; pause times scale badly on older collectors)"
	}

	switch meta.Collector {
	case "G1", "ZGC", "Shenandoah":
		f.BusinessImpact = fmt.Sprintf("%s is a modern low-pause collector; no action needed", meta.Collector)
		return f
	case "Serial":
		f.Detected = true
		f.Confidence = ConfidenceHigh
		f.Evidence = append(f.Evidence, "startup banner: Using Serial")
		f.BusinessImpact = "the Serial collector stops every application thread and collects on a single core; on any multi-core server this multiplies pause times for no benefit"
	case "Parallel", "Concurrent Mark Sweep":
		f.Detected = true
		f.Confidence = ConfidenceMedium
		f.Evidence = append(f.Evidence, fmt.Sprintf("startup banner: Using %s", meta.Collector))
		f.BusinessImpact = fmt.Sprintf("%s trades pause time for throughput; latency-sensitive services get long stop-the-world pauses that a modern collector avoids", meta.Collector)
	default:
		f.BusinessImpact = "collector could not be identified from the log; G1 is the sensible default on current JVMs"
		return f
	}

	f.NextSteps = append(f.NextSteps,
		fmt.Sprintf("switch to %s (-XX:+UseG1GC or -XX:+UseZGC) and compare pause percentiles", suggested))
	return f
}
