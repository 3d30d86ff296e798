package thread

import "fmt"

// ThreadInfo is one thread's entry in a jstack-style dump.
type ThreadInfo struct {
	Name     string
	ID       int
	Daemon   bool
	Priority int
	TID      string
	NID      string

	State     string // RUNNABLE, BLOCKED, WAITING, TIMED_WAITING, NEW, TERMINATED
	Frames    []string
	LocksHeld []string // monitor addresses this thread holds
	WaitingOn string   // monitor address this thread is blocked or parked on, "" if none
}

func (t *ThreadInfo) TopFrames(n int) []string {
	if len(t.Frames) < n {
		return t.Frames
	}
	return t.Frames[:n]
}

// ThreadDump is the parsed dump plus per-state counts.
type ThreadDump struct {
	Threads     []ThreadInfo
	StateCounts map[string]int

	// ReportedDeadlocks is the count from jstack's own "Found N deadlock"
	// footer, 0 when absent.
	ReportedDeadlocks int
}

func (d *ThreadDump) CountIn(states ...string) int {
	n := 0
	for _, s := range states {
		n += d.StateCounts[s]
	}
	return n
}

type FindingType string

const (
	FindingDeadlock       FindingType = "deadlock"
	FindingLockContention FindingType = "lock_contention"
	FindingPoolSaturation FindingType = "pool_saturation"
	FindingStuckThreads   FindingType = "stuck_threads"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

type Finding struct {
	Type       FindingType
	Detected   bool
	Confidence Confidence

	Evidence       []string
	NextSteps      []string
	BusinessImpact string

	DeadlockCycle []string // thread names forming the wait cycle
	WaiterCount   int      // worst contended lock
	ContendedLock string
	PoolName      string
	PoolSize      int
	WaitingPct    float64
	StuckCount    int
}

type Findings struct {
	Summary  string
	Suspects []Finding
	Dump     *ThreadDump
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

// FormatError means the input does not look like a jstack thread dump.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unrecognized thread dump format: %s", e.Reason)
}
