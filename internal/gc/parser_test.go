package gc

import (
	"errors"
	"reflect"
	"testing"
)

func sampleLog() []string {
	return []string{
		"[2026-02-05T05:43:30.012+0200][0.012s][info][gc          ] Using G1",
		"[2026-02-05T05:43:30.015+0200][0.015s][info][gc,init     ] Heap Region Size: 1M",
		"[2026-02-05T05:43:30.015+0200][0.015s][info][gc,init     ] Heap Max Capacity: 256M",
		"[2026-02-05T05:43:35.100+0200][5.100s][info][gc,start    ] GC(0) Pause Young (Normal) (G1 Evacuation Pause)",
		"[2026-02-05T05:43:35.120+0200][5.120s][info][gc,heap     ] GC(0) Old regions: 10->14",
		"[2026-02-05T05:43:35.121+0200][5.121s][info][gc,heap     ] GC(0) Humongous regions: 2->2",
		"[2026-02-05T05:43:35.122+0200][5.122s][info][gc,metaspace] GC(0) Metaspace: 4096K(4352K)->4168K(4480K)",
		"[2026-02-05T05:43:35.123+0200][5.123s][info][gc,tlab     ] GC(0) TLAB totals: thrds: 10  refills: 250 max: 30 slow allocs: 12 max 5 waste:  2.5%",
		"[2026-02-05T05:43:35.130+0200][5.130s][info][gc          ] GC(0) Pause Young (Normal) (G1 Evacuation Pause) 22M->19M(256M) 8.657ms",
		"[2026-02-05T05:44:54.303+0200][84.303s][info][gc,heap     ] GC(1) Old regions: 14->30",
		"[2026-02-05T05:44:54.310+0200][84.310s][info][gc          ] GC(1) Pause Young (Concurrent Start) (Metadata GC Threshold) 60M->41M(256M) 12.100ms",
		"[2026-02-05T05:46:12.000+0200][162.000s][info][gc,heap     ] GC(2) Old regions: 30->55",
		"[2026-02-05T05:46:12.008+0200][162.008s][info][gc          ] GC(2) Pause Young (Normal) (G1 Evacuation Pause) (Evacuation Failure) 200M->180M(256M) 1530.000ms",
		"some unrelated application output",
	}
}

func TestParseCorrelatesLinesByGCNumber(t *testing.T) {
	events, err := Parse(sampleLog())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}

	ev := events[0]
	if ev.ID != 0 {
		t.Fatalf("expected GC(0) first, got GC(%d)", ev.ID)
	}
	if ev.OldBefore != 10 || ev.OldAfter != 14 {
		t.Errorf("old regions = %d->%d, want 10->14", ev.OldBefore, ev.OldAfter)
	}
	if ev.HumongousBefore != 2 || ev.HumongousAfter != 2 {
		t.Errorf("humongous regions = %d->%d, want 2->2", ev.HumongousBefore, ev.HumongousAfter)
	}
	if ev.MetaspaceUsedKB != 4168 || ev.MetaspaceCommittedKB != 4480 {
		t.Errorf("metaspace = %dK(%dK), want 4168K(4480K)", ev.MetaspaceUsedKB, ev.MetaspaceCommittedKB)
	}
	if ev.TLABThreads != 10 || ev.TLABRefills != 250 || ev.TLABSlowAllocs != 12 || ev.TLABWastePct != 2.5 {
		t.Errorf("unexpected TLAB stats: %+v", ev)
	}
	if ev.HeapBeforeMB != 22 || ev.HeapAfterMB != 19 || ev.HeapTotalMB != 256 {
		t.Errorf("heap = %d->%d(%d), want 22->19(256)", ev.HeapBeforeMB, ev.HeapAfterMB, ev.HeapTotalMB)
	}
	if ev.PauseMS != 8.657 {
		t.Errorf("pause = %v, want 8.657", ev.PauseMS)
	}
	if ev.Type != "Young (Normal)" {
		t.Errorf("type = %q, want %q", ev.Type, "Young (Normal)")
	}
	if ev.Uptime != 5.120 {
		t.Errorf("uptime = %v, want 5.120 (stamped by the first line mentioning the event)", ev.Uptime)
	}
}

func TestParseFlags(t *testing.T) {
	events, err := Parse(sampleLog())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !events[1].MetadataThreshold {
		t.Error("GC(1) should carry the metadata-threshold flag")
	}
	if events[1].EvacuationFailure {
		t.Error("GC(1) should not carry the evacuation-failure flag")
	}
	if !events[2].EvacuationFailure {
		t.Error("GC(2) should carry the evacuation-failure flag")
	}
}

func TestParseSortedByUptimeAndComplete(t *testing.T) {
	events, err := Parse(sampleLog())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	for i, ev := range events {
		if !ev.HasOldAfter() {
			t.Errorf("event %d has no old-region after count", i)
		}
		if i > 0 && ev.Uptime < events[i-1].Uptime {
			t.Errorf("events out of order at %d: %v after %v", i, ev.Uptime, events[i-1].Uptime)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	first, err := Parse(sampleLog())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	second, err := Parse(sampleLog())
	if err != nil {
		t.Fatalf("second Parse failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("re-parsing the same input produced a different event sequence")
	}
}

func TestParseNeverOverwritesSetFields(t *testing.T) {
	lines := []string{
		"[2026-02-05T05:43:30.012+0200][0.012s][info][gc          ] Using G1",
		"[2026-02-05T05:43:35.120+0200][5.120s][info][gc,heap     ] GC(0) Old regions: 10->14",
		"[2026-02-05T05:43:36.000+0200][6.000s][info][gc,heap     ] GC(0) Old regions: 99->99",
	}
	events, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if events[0].OldBefore != 10 || events[0].OldAfter != 14 {
		t.Errorf("duplicate line overwrote old regions: %d->%d", events[0].OldBefore, events[0].OldAfter)
	}
}

func TestParseDropsEventsWithoutOldAfter(t *testing.T) {
	lines := []string{
		"[2026-02-05T05:43:30.012+0200][0.012s][info][gc          ] Using G1",
		"[2026-02-05T05:43:35.130+0200][5.130s][info][gc          ] GC(0) Pause Young (Normal) (G1 Evacuation Pause) 22M->19M(256M) 8.657ms",
		"[2026-02-05T05:44:54.303+0200][84.303s][info][gc,heap     ] GC(1) Old regions: 14->30",
	}
	events, err := Parse(lines)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(events) != 1 || events[0].ID != 1 {
		t.Fatalf("expected only GC(1) to survive, got %+v", events)
	}
}

func TestParseFormatErrors(t *testing.T) {
	var formatErr *FormatError

	if _, err := Parse(nil); !errors.As(err, &formatErr) {
		t.Errorf("empty input: expected FormatError, got %v", err)
	}
	if _, err := Parse([]string{"just some text", "more text"}); !errors.As(err, &formatErr) {
		t.Errorf("no banner: expected FormatError, got %v", err)
	}

	bannerOnly := []string{"[2026-02-05T05:43:30.012+0200][0.012s][info][gc          ] Using G1"}
	if _, err := Parse(bannerOnly); !errors.As(err, &formatErr) {
		t.Errorf("no cycle records: expected FormatError, got %v", err)
	}
}

func TestScanMetadata(t *testing.T) {
	meta := ScanMetadata(sampleLog())
	if meta.Collector != "G1" {
		t.Errorf("collector = %q, want G1", meta.Collector)
	}
	if meta.RegionSizeMB != 1 {
		t.Errorf("region size = %d MB, want 1", meta.RegionSizeMB)
	}
	if meta.HeapMaxMB != 256 {
		t.Errorf("heap max = %d MB, want 256", meta.HeapMaxMB)
	}
}

func TestScanMetadataMissingBanners(t *testing.T) {
	meta := ScanMetadata([]string{"nothing useful here"})
	if meta.Collector != "" || meta.HasHeapMax() || meta.HasRegionSize() {
		t.Errorf("expected all-unknown metadata, got %+v", meta)
	}
}

func TestScanMetadataIgnoresLateBanners(t *testing.T) {
	lines := make([]string, 25)
	for i := range lines {
		lines[i] = "filler"
	}
	lines[24] = "[2026-02-05T05:43:30.012+0200][0.012s][info][gc          ] Using G1"
	if meta := ScanMetadata(lines); meta.Collector != "" {
		t.Errorf("banner past the scan prefix should be ignored, got %q", meta.Collector)
	}
}

func TestGCTypeLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Young (Normal) (G1 Evacuation Pause)", "Young (Normal)"},
		{"Young (Concurrent Start) (Metadata GC Threshold)", "Young (Concurrent Start)"},
		{"Full (G1 Compaction Pause)", "Full"},
		{"Young (Normal) (G1 Evacuation Pause) (Evacuation Failure)", "Young (Normal)"},
	}
	for _, c := range cases {
		if got := gcTypeLabel(c.in); got != c.want {
			t.Errorf("gcTypeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
