package thread

import (
	"fmt"
	"sort"
	"strings"
)

// Thresholds for the thread-dump detector suite.
type Thresholds struct {
	ContentionWaiters int     // waiters on one monitor
	PoolMinThreads    int     // minimum pool size worth judging
	PoolWaitingPct    float64 // share of a pool parked or blocked
	StuckGroupSize    int     // threads sharing the same top frames
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		ContentionWaiters: 3,
		PoolMinThreads:    4,
		PoolWaitingPct:    80,
		StuckGroupSize:    3,
	}
}

// Escalation points to high confidence. Absolute, not scaled from the
// configured detection thresholds.
const (
	contentionHighWaiters = 10
	poolHighWaitingPct    = 90
	stuckHighCount        = 10
)

type detector func(dump *ThreadDump, thr Thresholds) Finding

// Analyze runs the thread-dump detector suite. Detectors are independent
// pure functions over the same dump.
func Analyze(dump *ThreadDump, thr Thresholds) *Findings {
	result := &Findings{Dump: dump}

	detectors := []detector{
		detectDeadlock,
		detectLockContention,
		detectPoolSaturation,
		detectStuckThreads,
	}
	for _, run := range detectors {
		result.Suspects = append(result.Suspects, run(dump, thr))
	}

	switch n := result.DetectedCount(); n {
	case 0:
		result.Summary = fmt.Sprintf("NO STRONG SIGNAL (0 of %d detectors triggered)", len(detectors))
	case 1:
		result.Summary = fmt.Sprintf("1 ISSUE DETECTED (1 of %d detectors triggered)", len(detectors))
	default:
		result.Summary = fmt.Sprintf("%d ISSUES DETECTED (%d of %d detectors triggered)", n, n, len(detectors))
	}
	return result
}

// ==== Deadlock ====

// detectDeadlock builds the wait-for graph (thread -> holder of the
// monitor it waits on) and runs cycle detection over it. Cycles of any
// length count, not just the two-thread case. The JVM's own "Found N
// deadlock" footer is an independent detection signal: jstack sees
// ownable synchronizers that the stack-line regexes cannot.
func detectDeadlock(dump *ThreadDump, thr Thresholds) Finding {
	f := Finding{Type: FindingDeadlock, Confidence: ConfidenceLow}

	holder := make(map[string]int) // monitor address -> thread index
	for i, t := range dump.Threads {
		for _, lock := range t.LocksHeld {
			holder[lock] = i
		}
	}

	waitsFor := make(map[int]int) // thread index -> thread index it waits on
	for i, t := range dump.Threads {
		if t.WaitingOn == "" {
			continue
		}
		if j, ok := holder[t.WaitingOn]; ok && j != i {
			waitsFor[i] = j
		}
	}

	cycle := findCycle(waitsFor)
	if cycle == nil && dump.ReportedDeadlocks == 0 {
		f.BusinessImpact = "no circular waits between monitor holders"
		return f
	}

	f.Detected = true
	f.Confidence = ConfidenceHigh

	if dump.ReportedDeadlocks > 0 {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("JVM reported %d deadlock(s) in the dump footer", dump.ReportedDeadlocks))
	}

	for _, idx := range cycle {
		f.DeadlockCycle = append(f.DeadlockCycle, dump.Threads[idx].Name)
	}
	for k, idx := range cycle {
		t := dump.Threads[idx]
		next := dump.Threads[cycle[(k+1)%len(cycle)]]
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%q waits on <%s> held by %q", t.Name, t.WaitingOn, next.Name))
		if len(t.Frames) > 0 {
			f.Evidence = append(f.Evidence, fmt.Sprintf("  at %s", t.Frames[0]))
		}
	}

	if cycle != nil {
		f.BusinessImpact = fmt.Sprintf("%d threads are deadlocked in a circular wait; they will never make progress and anything queued behind them is stuck until restart", len(cycle))
	} else {
		f.BusinessImpact = "the JVM's own detector found a deadlock; the involved monitors are in the dump footer even though no wait edges were extractable here"
	}
	f.NextSteps = append(f.NextSteps,
		"restart the process to clear the deadlock, then fix the lock ordering",
		"acquire the monitors named above in one global order, or replace nested synchronized blocks with a single lock",
	)
	return f
}

// findCycle returns one cycle in a functional graph (each node has at
// most one outgoing edge), or nil.
func findCycle(next map[int]int) []int {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[int]int)

	for start := range next {
		if state[start] != unvisited {
			continue
		}
		var path []int
		node := start
		for {
			state[node] = inStack
			path = append(path, node)
			succ, ok := next[node]
			if !ok || state[succ] == done {
				break
			}
			if state[succ] == inStack {
				// unwind to where the cycle closes
				for i, n := range path {
					if n == succ {
						return path[i:]
					}
				}
			}
			node = succ
		}
		for _, n := range path {
			state[n] = done
		}
	}
	return nil
}

// ==== Lock contention ====

func detectLockContention(dump *ThreadDump, thr Thresholds) Finding {
	f := Finding{Type: FindingLockContention, Confidence: ConfidenceLow}

	waiters := make(map[string][]ThreadInfo)
	for _, t := range dump.Threads {
		if t.State == "BLOCKED" && t.WaitingOn != "" {
			waiters[t.WaitingOn] = append(waiters[t.WaitingOn], t)
		}
	}

	holderName := func(lock string) string {
		for _, t := range dump.Threads {
			for _, held := range t.LocksHeld {
				if held == lock {
					return t.Name
				}
			}
		}
		return "unknown"
	}

	type contended struct {
		lock  string
		count int
	}
	var hot []contended
	for lock, ts := range waiters {
		if len(ts) >= thr.ContentionWaiters {
			hot = append(hot, contended{lock, len(ts)})
		}
	}
	if len(hot) == 0 {
		f.BusinessImpact = "no monitor has a meaningful queue of blocked threads"
		return f
	}
	sort.Slice(hot, func(i, j int) bool { return hot[i].count > hot[j].count })

	f.Detected = true
	f.ContendedLock = hot[0].lock
	f.WaiterCount = hot[0].count
	if f.WaiterCount >= contentionHighWaiters {
		f.Confidence = ConfidenceHigh
	} else {
		f.Confidence = ConfidenceMedium
	}

	for _, c := range hot {
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%d threads blocked on <%s> held by %q", c.count, c.lock, holderName(c.lock)))
	}
	sample := waiters[hot[0].lock]
	if len(sample) > 3 {
		sample = sample[:3]
	}
	for _, t := range sample {
		if len(t.Frames) > 0 {
			f.Evidence = append(f.Evidence, fmt.Sprintf("%q at %s", t.Name, t.Frames[0]))
		}
	}

	f.BusinessImpact = fmt.Sprintf("%d threads are serialized behind one monitor; throughput is capped at whatever the holder can do alone", f.WaiterCount)
	f.NextSteps = append(f.NextSteps,
		"shrink the critical section guarded by the contended monitor",
		"replace the shared monitor with a finer-grained or lock-free structure (ConcurrentHashMap, LongAdder)",
	)
	return f
}

// ==== Pool saturation ====

func detectPoolSaturation(dump *ThreadDump, thr Thresholds) Finding {
	f := Finding{Type: FindingPoolSaturation, Confidence: ConfidenceLow}

	pools := make(map[string][]ThreadInfo)
	for _, t := range dump.Threads {
		pools[PoolBaseName(t.Name)] = append(pools[PoolBaseName(t.Name)], t)
	}

	type saturated struct {
		name       string
		size       int
		waitingPct float64
	}
	var worst *saturated
	for name, ts := range pools {
		if len(ts) < thr.PoolMinThreads {
			continue
		}
		idle := 0
		for _, t := range ts {
			switch t.State {
			case "WAITING", "TIMED_WAITING", "BLOCKED":
				idle++
			}
		}
		pct := float64(idle) / float64(len(ts)) * 100
		if pct >= thr.PoolWaitingPct {
			if worst == nil || pct > worst.waitingPct || (pct == worst.waitingPct && len(ts) > worst.size) {
				worst = &saturated{name, len(ts), pct}
			}
			f.Evidence = append(f.Evidence,
				fmt.Sprintf("pool %q: %d of %d threads waiting or blocked (%.0f%%)", name, idle, len(ts), pct))
		}
	}

	if worst == nil {
		f.BusinessImpact = "no thread pool is pinned at its capacity"
		return f
	}

	f.Detected = true
	f.PoolName = worst.name
	f.PoolSize = worst.size
	f.WaitingPct = worst.waitingPct
	if worst.waitingPct >= poolHighWaitingPct {
		f.Confidence = ConfidenceHigh
	} else {
		f.Confidence = ConfidenceMedium
	}

	f.BusinessImpact = fmt.Sprintf("pool %q has %.0f%% of its %d threads not running; either the pool is starved for work upstream or every thread is parked on the same slow dependency", worst.name, worst.waitingPct, worst.size)
	f.NextSteps = append(f.NextSteps,
		"check what the waiting threads are parked on; a shared slow downstream call is the usual cause",
		"size the pool against the downstream latency, or add a bulkhead so one dependency cannot absorb every worker",
	)
	return f
}

// ==== Stuck threads ====

// detectStuckThreads groups runnable and blocked threads by their top two
// stack frames; several threads pinned at exactly the same place usually
// means a hot spin or a stuck external call.
func detectStuckThreads(dump *ThreadDump, thr Thresholds) Finding {
	f := Finding{Type: FindingStuckThreads, Confidence: ConfidenceLow}

	groups := make(map[string][]ThreadInfo)
	for _, t := range dump.Threads {
		if t.State != "RUNNABLE" && t.State != "BLOCKED" {
			continue
		}
		if len(t.Frames) == 0 {
			continue
		}
		key := strings.Join(t.TopFrames(2), " | ")
		groups[key] = append(groups[key], t)
	}

	type stuck struct {
		key string
		ts  []ThreadInfo
	}
	var found []stuck
	for key, ts := range groups {
		if len(ts) >= thr.StuckGroupSize {
			found = append(found, stuck{key, ts})
		}
	}
	if len(found) == 0 {
		f.BusinessImpact = "no group of threads is pinned at the same stack location"
		return f
	}
	sort.Slice(found, func(i, j int) bool { return len(found[i].ts) > len(found[j].ts) })

	f.Detected = true
	f.StuckCount = len(found[0].ts)
	if f.StuckCount >= stuckHighCount {
		f.Confidence = ConfidenceHigh
	} else {
		f.Confidence = ConfidenceMedium
	}

	for _, g := range found {
		names := make([]string, 0, 3)
		for _, t := range g.ts[:min(3, len(g.ts))] {
			names = append(names, t.Name)
		}
		f.Evidence = append(f.Evidence,
			fmt.Sprintf("%d threads at %s (%s)", len(g.ts), g.key, strings.Join(names, ", ")))
	}

	f.BusinessImpact = fmt.Sprintf("%d threads are executing the identical code path at dump time; repeated dumps showing the same frames mean they are stuck there, not passing through", f.StuckCount)
	f.NextSteps = append(f.NextSteps,
		"take two or three more dumps 10s apart; threads at the same frames across dumps are genuinely stuck",
		"if the shared frame is an external call, add a timeout to it",
	)
	return f
}
