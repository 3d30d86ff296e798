package gc

import "fmt"

// GCEvent is one garbage-collection cycle, assembled incrementally from
// several log lines that share a GC(n) number. Numeric fields use -1 as
// "never seen"; a later line never overwrites a field an earlier line set.
type GCEvent struct {
	ID        int
	Timestamp string  // wall-clock portion of the log prefix, verbatim
	Uptime    float64 // seconds since JVM start

	Type string // "Young (Normal)", "Full", ...

	OldBefore int
	OldAfter  int

	HumongousBefore int
	HumongousAfter  int

	HeapBeforeMB int
	HeapAfterMB  int
	HeapTotalMB  int

	MetaspaceUsedKB      int64
	MetaspaceCommittedKB int64

	TLABThreads    int
	TLABRefills    int
	TLABSlowAllocs int
	TLABWastePct   float64

	PauseMS float64

	EvacuationFailure bool
	MetadataThreshold bool
}

func newGCEvent(id int) *GCEvent {
	return &GCEvent{
		ID:                   id,
		OldBefore:            -1,
		OldAfter:             -1,
		HumongousBefore:      -1,
		HumongousAfter:       -1,
		HeapBeforeMB:         -1,
		HeapAfterMB:          -1,
		HeapTotalMB:          -1,
		MetaspaceUsedKB:      -1,
		MetaspaceCommittedKB: -1,
		TLABThreads:          -1,
		TLABRefills:          -1,
		TLABSlowAllocs:       -1,
		TLABWastePct:         -1,
		PauseMS:              -1,
	}
}

func (e *GCEvent) HasOldAfter() bool { return e.OldAfter >= 0 }
func (e *GCEvent) HasHumongous() bool {
	return e.HumongousBefore >= 0 || e.HumongousAfter >= 0
}
func (e *GCEvent) HasHeap() bool      { return e.HeapAfterMB >= 0 && e.HeapTotalMB > 0 }
func (e *GCEvent) HasMetaspace() bool { return e.MetaspaceUsedKB >= 0 }
func (e *GCEvent) HasTLAB() bool      { return e.TLABRefills >= 0 }
func (e *GCEvent) HasPause() bool     { return e.PauseMS >= 0 }
func (e *GCEvent) UptimeMin() float64 { return e.Uptime / 60 }

// LogMetadata holds JVM startup banner values scanned from the head of the
// log. Each field is independently optional: -1 (or "") means the banner
// line was not found, and derived metrics needing it are simply skipped.
type LogMetadata struct {
	HeapMaxMB    int
	RegionSizeMB int
	Collector    string
}

func UnknownMetadata() LogMetadata {
	return LogMetadata{HeapMaxMB: -1, RegionSizeMB: -1}
}

func (m LogMetadata) HasHeapMax() bool    { return m.HeapMaxMB > 0 }
func (m LogMetadata) HasRegionSize() bool { return m.RegionSizeMB > 0 }

type FindingType string

const (
	FindingRetentionGrowth    FindingType = "retention_growth"
	FindingLongPauses         FindingType = "long_stw_pauses"
	FindingAllocationPressure FindingType = "allocation_pressure"
	FindingHumongousPressure  FindingType = "humongous_pressure"
	FindingGCStarvation       FindingType = "gc_starvation"
	FindingMetaspaceLeak      FindingType = "metaspace_leak"
	FindingTLABExhaustion     FindingType = "tlab_exhaustion"
	FindingCollectorChoice    FindingType = "collector_choice"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Finding is one detector's verdict. Detector-specific numeric fields are
// only meaningful for the detector type that fills them; everything else
// stays at its zero value.
type Finding struct {
	Type       FindingType
	Detected   bool
	Confidence Confidence

	Evidence       []string
	NextSteps      []string
	BusinessImpact string

	// Retention growth
	TrendRegionsPerMin   float64
	DeltaRegions         int
	DeltaMB              int
	DurationMinutes      float64
	OccupancyPct         float64
	OOMFiltered          bool
	DetectedByTrend      bool
	DetectedByDelta      bool
	DetectedByOccupation bool

	// Long pauses
	SlowPauseCount int
	MaxPauseMS     float64
	AvgPauseMS     float64

	// Allocation pressure
	EvacFailureCount int

	// Humongous pressure
	HumongousFreqPct    float64
	HumongousPeak       int
	DetectedByFrequency bool
	DetectedByPeak      bool

	// GC starvation
	LongGapCount  int
	MaxGapSeconds float64

	// Metaspace leak
	MetaspaceKBPerMin float64
	TriggerPct        float64

	// TLAB exhaustion
	SlowRefillRatioPct float64
	AvgWastePct        float64

	// Collector choice
	Collector string
}

// Findings is the aggregate analysis result consumed read-only by the
// reporter and the TUI.
type Findings struct {
	Summary       string
	Suspects      []Finding
	Events        []GCEvent // after the tail-window filter
	StableEvents  []GCEvent // with a suspected restart/OOM tail trimmed
	RawEventCount int       // before the tail-window filter

	Metadata LogMetadata
}

func (f *Findings) DetectedCount() int {
	n := 0
	for _, s := range f.Suspects {
		if s.Detected {
			n++
		}
	}
	return n
}

func (f *Findings) ByType(t FindingType) *Finding {
	for i := range f.Suspects {
		if f.Suspects[i].Type == t {
			return &f.Suspects[i]
		}
	}
	return nil
}

// FormatError means the input does not structurally resemble a unified
// JVM GC log. Always fatal, surfaced verbatim.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized log format: %s", e.Reason)
}

// ValidationError means a caller-supplied parameter is out of domain.
// Parameters are never silently clamped.
type ValidationError struct {
	Param string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Msg)
}
