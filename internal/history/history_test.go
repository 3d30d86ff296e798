package history

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	first, err := store.Record(Run{
		Tool: "gc", InputPath: "/var/log/app/gc.log",
		Summary: "NO STRONG SIGNAL (0 of 8 detectors triggered)", Severity: "OK",
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Errorf("Record should assign id and timestamp: %+v", first)
	}

	if _, err := store.Record(Run{
		Tool: "thread", InputPath: "/tmp/dump.txt",
		Summary: "1 ISSUE DETECTED (1 of 4 detectors triggered)", Severity: "CRITICAL", ExitCode: 2,
	}); err != nil {
		t.Fatalf("second Record failed: %v", err)
	}

	runs, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Tool != "thread" {
		t.Errorf("expected newest first, got %+v", runs[0])
	}
	if runs[0].ExitCode != 2 || runs[0].Severity != "CRITICAL" {
		t.Errorf("run fields not preserved: %+v", runs[0])
	}
}

func TestRecentOrderStableOnTimestampTies(t *testing.T) {
	store := openTestStore(t)

	// Back-to-back records land on identical timestamps at the database's
	// resolution; insertion order must still win.
	var ids []string
	for i := 0; i < 5; i++ {
		run, err := store.Record(Run{Tool: "gc", InputPath: "/a/gc.log", Summary: "s", Severity: "OK"})
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != len(ids) {
		t.Fatalf("expected %d runs, got %d", len(ids), len(runs))
	}
	for i, r := range runs {
		want := ids[len(ids)-1-i]
		if r.ID != want {
			t.Fatalf("runs[%d].ID = %s, want %s (newest insertion first)", i, r.ID, want)
		}
	}

	byInput, err := store.ForInput("/a/gc.log", 10)
	if err != nil {
		t.Fatalf("ForInput failed: %v", err)
	}
	if byInput[0].ID != ids[len(ids)-1] {
		t.Errorf("ForInput[0].ID = %s, want last recorded %s", byInput[0].ID, ids[len(ids)-1])
	}
}

func TestForInput(t *testing.T) {
	store := openTestStore(t)

	for range 3 {
		if _, err := store.Record(Run{Tool: "gc", InputPath: "/a/gc.log", Summary: "s", Severity: "OK"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	if _, err := store.Record(Run{Tool: "gc", InputPath: "/b/gc.log", Summary: "s", Severity: "OK"}); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	runs, err := store.ForInput("/a/gc.log", 10)
	if err != nil {
		t.Fatalf("ForInput failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs for /a/gc.log, got %d", len(runs))
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.Record(Run{Tool: "gc", InputPath: "gc.log", Summary: "ok", Severity: "OK"}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	n, err := store.Clear()
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 cleared runs, got %d", n)
	}

	runs, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty history after Clear, got %d runs", len(runs))
	}
}
