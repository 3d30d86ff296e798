package gc

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rguichard/jtriage/utils"
)

// Lines scanned for startup banner values (collector, heap geometry).
const metadataScanLines = 20

var (
	// [2026-02-05T05:47:54.265+0200][264.303s][info][gc,heap     ]
	linePrefix = `^\[([^\]]+)\]\[(\d+(?:\.\d+)?)s\]\[info\]\[[^\]]*\]\s*`

	// GC(0) Pause Young (Normal) (G1 Evacuation Pause) 22M->19M(256M) 8.657ms
	// GC(12) Pause Full (G1 Compaction Pause) 240M->198M(256M) 312.4ms
	pausePattern = regexp.MustCompile(linePrefix +
		`GC\((\d+)\)\s+Pause\s+(.+?)\s+(\d+)([KMG]?)->(\d+)([KMG]?)\((\d+)([KMG]?)\)\s+([\d.]+)ms`)

	// GC(10) Old regions: 214->227
	oldRegionsPattern = regexp.MustCompile(linePrefix + `GC\((\d+)\)\s+Old regions:\s+(\d+)->(\d+)`)

	// GC(10) Humongous regions: 5->3
	humongousPattern = regexp.MustCompile(linePrefix + `GC\((\d+)\)\s+Humongous regions:\s+(\d+)->(\d+)`)

	// GC(5) Metaspace: 4096K(4352K)->4168K(4480K)
	metaspacePattern = regexp.MustCompile(linePrefix + `GC\((\d+)\)\s+Metaspace:\s+(\d+)K\((\d+)K\)->(\d+)K\((\d+)K\)`)

	// GC(3) TLAB totals: thrds: 10  refills: 250 max: 30 slow allocs: 12 max 5 waste:  2.5%
	tlabPattern = regexp.MustCompile(linePrefix +
		`GC\((\d+)\)\s+TLAB totals:\s+thrds:\s+(\d+)\s+refills:\s+(\d+)\s+max:\s+\d+\s+slow allocs:\s+(\d+)\s+max\s+\d+\s+waste:\s+([\d.]+)%`)

	// ==== Startup banner patterns (first ~20 lines only) ====

	// Using G1
	collectorPattern = regexp.MustCompile(`\bUsing (G1|ZGC|Shenandoah|Serial|Parallel|Concurrent Mark Sweep)\b`)

	// Heap Max Capacity: 256M
	heapMaxPattern = regexp.MustCompile(`Heap Max Capacity:\s+(\d+)([KMG]?)`)

	// Heap Region Size: 1M
	regionSizePattern = regexp.MustCompile(`Heap Region Size:\s+(\d+)([KMG]?)`)

	// Markers attached to the pause label rather than part of the GC type.
	causeMarkers = []string{
		"G1 Evacuation Pause", "G1 Compaction Pause", "G1 Humongous Allocation",
		"G1 Preventive Collection", "GCLocker Initiated GC", "System.gc()",
		"Evacuation Failure", "Metadata GC Threshold", "Allocation Failure",
	}
)

// LineParser recognizes one shape of GC log line and folds its data into
// the event keyed by the line's GC number. Shapes are mutually exclusive:
// the first parser that claims a line consumes it.
type LineParser interface {
	CanParse(line string) bool
	Parse(line string, ctx *ParseContext) error
}

// ParseContext accumulates events during the single scan pass. The same
// GC number may appear on many lines; Event looks up or creates the slot.
type ParseContext struct {
	events map[int]*GCEvent
	order  []int
}

func NewParseContext() *ParseContext {
	return &ParseContext{events: make(map[int]*GCEvent)}
}

// Event returns the accumulating record for a GC number, creating it on
// first sight. The creating line stamps the time axis; later lines never
// touch it.
func (ctx *ParseContext) Event(id int, timestamp string, uptime float64) *GCEvent {
	ev, ok := ctx.events[id]
	if !ok {
		ev = newGCEvent(id)
		ev.Timestamp = timestamp
		ev.Uptime = uptime
		ctx.events[id] = ev
		ctx.order = append(ctx.order, id)
	}
	return ev
}

type PauseParser struct{}

func (PauseParser) CanParse(line string) bool { return pausePattern.MatchString(line) }

func (PauseParser) Parse(line string, ctx *ParseContext) error {
	m := pausePattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	id, err := strconv.Atoi(m[3])
	if err != nil {
		return fmt.Errorf("invalid GC number %q: %w", m[3], err)
	}
	uptime, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return fmt.Errorf("invalid uptime %q: %w", m[2], err)
	}

	ev := ctx.Event(id, m[1], uptime)
	if ev.Type == "" {
		ev.Type = gcTypeLabel(m[4])
	}
	if ev.HeapBeforeMB < 0 {
		before, _ := strconv.ParseInt(m[5], 10, 64)
		after, _ := strconv.ParseInt(m[7], 10, 64)
		total, _ := strconv.ParseInt(m[9], 10, 64)
		ev.HeapBeforeMB = utils.ToMB(before, m[6])
		ev.HeapAfterMB = utils.ToMB(after, m[8])
		ev.HeapTotalMB = utils.ToMB(total, m[10])
	}
	if ev.PauseMS < 0 {
		pause, err := strconv.ParseFloat(m[11], 64)
		if err != nil {
			return fmt.Errorf("invalid pause duration %q: %w", m[11], err)
		}
		ev.PauseMS = pause
	}
	if strings.Contains(line, "(Evacuation Failure)") {
		ev.EvacuationFailure = true
	}
	if strings.Contains(line, "(Metadata GC Threshold)") {
		ev.MetadataThreshold = true
	}
	return nil
}

// gcTypeLabel strips collection-cause parentheticals from the raw pause
// label, keeping subtype markers like "(Normal)" or "(Concurrent Start)".
// "Young (Normal) (G1 Evacuation Pause)" becomes "Young (Normal)".
func gcTypeLabel(raw string) string {
	label := raw
	for _, cause := range causeMarkers {
		label = strings.ReplaceAll(label, "("+cause+")", "")
	}
	return strings.Join(strings.Fields(label), " ")
}

type regionParser struct {
	pattern *regexp.Regexp
	apply   func(ev *GCEvent, before, after int)
}

func (p regionParser) CanParse(line string) bool { return p.pattern.MatchString(line) }

func (p regionParser) Parse(line string, ctx *ParseContext) error {
	m := p.pattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	id, err := strconv.Atoi(m[3])
	if err != nil {
		return fmt.Errorf("invalid GC number %q: %w", m[3], err)
	}
	uptime, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return fmt.Errorf("invalid uptime %q: %w", m[2], err)
	}
	before, _ := strconv.Atoi(m[4])
	after, _ := strconv.Atoi(m[5])

	p.apply(ctx.Event(id, m[1], uptime), before, after)
	return nil
}

func NewOldRegionsParser() LineParser {
	return regionParser{pattern: oldRegionsPattern, apply: func(ev *GCEvent, before, after int) {
		if ev.OldBefore < 0 {
			ev.OldBefore = before
		}
		if ev.OldAfter < 0 {
			ev.OldAfter = after
		}
	}}
}

func NewHumongousParser() LineParser {
	return regionParser{pattern: humongousPattern, apply: func(ev *GCEvent, before, after int) {
		if ev.HumongousBefore < 0 {
			ev.HumongousBefore = before
		}
		if ev.HumongousAfter < 0 {
			ev.HumongousAfter = after
		}
	}}
}

type MetaspaceParser struct{}

func (MetaspaceParser) CanParse(line string) bool { return metaspacePattern.MatchString(line) }

func (MetaspaceParser) Parse(line string, ctx *ParseContext) error {
	m := metaspacePattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	id, err := strconv.Atoi(m[3])
	if err != nil {
		return fmt.Errorf("invalid GC number %q: %w", m[3], err)
	}
	uptime, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return fmt.Errorf("invalid uptime %q: %w", m[2], err)
	}

	ev := ctx.Event(id, m[1], uptime)
	if ev.MetaspaceUsedKB < 0 {
		// after-GC values are the diagnostically interesting ones
		used, _ := strconv.ParseInt(m[6], 10, 64)
		committed, _ := strconv.ParseInt(m[7], 10, 64)
		ev.MetaspaceUsedKB = used
		ev.MetaspaceCommittedKB = committed
	}
	return nil
}

type TLABParser struct{}

func (TLABParser) CanParse(line string) bool { return tlabPattern.MatchString(line) }

func (TLABParser) Parse(line string, ctx *ParseContext) error {
	m := tlabPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}

	id, err := strconv.Atoi(m[3])
	if err != nil {
		return fmt.Errorf("invalid GC number %q: %w", m[3], err)
	}
	uptime, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return fmt.Errorf("invalid uptime %q: %w", m[2], err)
	}

	ev := ctx.Event(id, m[1], uptime)
	if ev.TLABRefills < 0 {
		ev.TLABThreads, _ = strconv.Atoi(m[4])
		ev.TLABRefills, _ = strconv.Atoi(m[5])
		ev.TLABSlowAllocs, _ = strconv.Atoi(m[6])
		ev.TLABWastePct, _ = strconv.ParseFloat(m[7], 64)
	}
	return nil
}

// ScanMetadata reads the JVM startup banner values from the head of the
// log. Each value is independently optional: a missing banner line yields
// the unknown sentinel, never an error.
func ScanMetadata(lines []string) LogMetadata {
	meta := UnknownMetadata()

	limit := min(metadataScanLines, len(lines))
	for _, line := range lines[:limit] {
		if meta.Collector == "" {
			if m := collectorPattern.FindStringSubmatch(line); m != nil {
				meta.Collector = m[1]
			}
		}
		if meta.HeapMaxMB < 0 {
			if m := heapMaxPattern.FindStringSubmatch(line); m != nil {
				meta.HeapMaxMB = parseBannerMB(m[1], m[2])
			}
		}
		if meta.RegionSizeMB < 0 {
			if m := regionSizePattern.FindStringSubmatch(line); m != nil {
				meta.RegionSizeMB = parseBannerMB(m[1], m[2])
			}
		}
	}
	return meta
}

// parseBannerMB reads a banner magnitude like "2048M" or "2G" into whole
// megabytes. A bare number means megabytes.
func parseBannerMB(value, suffix string) int {
	if suffix == "" {
		suffix = "M"
	}
	size, err := utils.ParseMemorySize(value + suffix)
	if err != nil {
		return -1
	}
	return int(size.MB())
}

// Parse scans the log once and returns the analyzable event sequence:
// events with a resolved old-region "after" count, sorted by uptime.
// Events that only contributed partial data are dropped.
func Parse(lines []string) ([]GCEvent, error) {
	if len(lines) == 0 {
		return nil, &FormatError{Reason: "empty input"}
	}

	if !hasCollectorBanner(lines) {
		return nil, &FormatError{Reason: "no collector banner found in the first " +
			strconv.Itoa(metadataScanLines) + " lines; expected a unified JVM GC log (-Xlog:gc*)"}
	}

	parsers := []LineParser{
		PauseParser{},
		NewOldRegionsParser(),
		NewHumongousParser(),
		MetaspaceParser{},
		TLABParser{},
	}

	ctx := NewParseContext()
	for i, line := range lines {
		for _, p := range parsers {
			if !p.CanParse(line) {
				continue
			}
			if err := p.Parse(line, ctx); err != nil {
				return nil, fmt.Errorf("line %d: %w", i+1, err)
			}
			break
		}
	}

	events := make([]GCEvent, 0, len(ctx.order))
	for _, id := range ctx.order {
		if ev := ctx.events[id]; ev.HasOldAfter() {
			events = append(events, *ev)
		}
	}
	if len(events) == 0 {
		return nil, &FormatError{Reason: "no usable GC-cycle records found (no old-region change lines)"}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Uptime < events[j].Uptime
	})
	return events, nil
}

func hasCollectorBanner(lines []string) bool {
	limit := min(metadataScanLines, len(lines))
	for _, line := range lines[:limit] {
		if collectorPattern.MatchString(line) {
			return true
		}
	}
	return false
}
