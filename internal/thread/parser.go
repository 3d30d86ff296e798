package thread

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// "pool-1-thread-3" #15 daemon prio=5 os_prio=0 tid=0x00007f1a2c01b800 nid=0x4e2a waiting on condition [0x00007f1a1bffe000]
	threadHeaderPattern = regexp.MustCompile(
		`^"([^"]+)"\s+#(\d+)\s+(daemon\s+)?prio=(\d+)\s+os_prio=\d+\s+(?:cpu=[\d.,]+ms\s+elapsed=[\d.,]+s\s+)?tid=(0x[0-9a-f]+)\s+nid=(0x[0-9a-f]+)`)

	//    java.lang.Thread.State: WAITING (parking)
	statePattern = regexp.MustCompile(`^\s+java\.lang\.Thread\.State:\s+([A-Z_]+)`)

	//	at com.example.OrderService.process(OrderService.java:42)
	framePattern = regexp.MustCompile(`^\s+at\s+(\S.*)`)

	//	- locked <0x000000076ab62208> (a java.lang.Object)
	lockedPattern = regexp.MustCompile(`-\s+locked\s+<(0x[0-9a-f]+)>`)

	//	- waiting to lock <0x000000076ab62208> (a java.lang.Object)
	//	- parking to wait for  <0x000000076ab62208>
	waitingPattern = regexp.MustCompile(`-\s+(?:waiting to lock|waiting on|parking to wait for)\s+<(0x[0-9a-f]+)>`)

	// Found 1 deadlock.
	deadlockBannerPattern = regexp.MustCompile(`^Found (\d+) deadlock`)
)

// Parse reads a jstack-style dump into structured thread records. Content
// between thread headers belongs to the preceding header; anything before
// the first header is ignored.
func Parse(lines []string) (*ThreadDump, error) {
	if len(lines) == 0 {
		return nil, &FormatError{Reason: "empty input"}
	}

	dump := &ThreadDump{StateCounts: make(map[string]int)}
	var current *ThreadInfo

	flush := func() {
		if current != nil {
			dump.Threads = append(dump.Threads, *current)
			dump.StateCounts[current.State]++
			current = nil
		}
	}

	for _, line := range lines {
		if m := deadlockBannerPattern.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			dump.ReportedDeadlocks += n
			flush()
			continue
		}
		if m := threadHeaderPattern.FindStringSubmatch(line); m != nil {
			flush()
			id, _ := strconv.Atoi(m[2])
			prio, _ := strconv.Atoi(m[4])
			current = &ThreadInfo{
				Name:     m[1],
				ID:       id,
				Daemon:   m[3] != "",
				Priority: prio,
				TID:      m[5],
				NID:      m[6],
				State:    "RUNNABLE", // header without a state line, e.g. VM threads
			}
			continue
		}
		if current == nil {
			continue
		}

		switch {
		case statePattern.MatchString(line):
			current.State = statePattern.FindStringSubmatch(line)[1]
		case framePattern.MatchString(line):
			current.Frames = append(current.Frames, framePattern.FindStringSubmatch(line)[1])
		case lockedPattern.MatchString(line):
			current.LocksHeld = append(current.LocksHeld, lockedPattern.FindStringSubmatch(line)[1])
		case waitingPattern.MatchString(line):
			if current.WaitingOn == "" {
				current.WaitingOn = waitingPattern.FindStringSubmatch(line)[1]
			}
		}
	}
	flush()

	if len(dump.Threads) == 0 {
		return nil, &FormatError{Reason: "no thread headers found; expected jstack output"}
	}
	return dump, nil
}

// PoolBaseName strips the per-thread numeric suffix so siblings of the
// same executor group together: "pool-1-thread-3" -> "pool-1-thread".
func PoolBaseName(name string) string {
	trimmed := strings.TrimRight(name, "0123456789")
	trimmed = strings.TrimRight(trimmed, "-_ ")
	if trimmed == "" {
		return name
	}
	return trimmed
}
