package thread

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityOK Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "CRITICAL"
	case SeverityWarning:
		return "WARNING"
	default:
		return "OK"
	}
}

func (s Severity) Emoji() string {
	switch s {
	case SeverityCritical:
		return "🔴"
	case SeverityWarning:
		return "🟡"
	default:
		return "🟢"
	}
}

// FindingSeverity: a deadlock is critical by definition; so is any
// high-confidence detection.
func FindingSeverity(f Finding) Severity {
	if !f.Detected {
		return SeverityOK
	}
	if f.Type == FindingDeadlock || f.Confidence == ConfidenceHigh {
		return SeverityCritical
	}
	return SeverityWarning
}

func OverallSeverity(fs *Findings) Severity {
	overall := SeverityOK
	for _, f := range fs.Suspects {
		if sev := FindingSeverity(f); sev > overall {
			overall = sev
		}
	}
	return overall
}

// ExitCode mirrors the GC tool's three-tier contract: 0 healthy,
// 1 warning, 2 critical.
func ExitCode(fs *Findings) int {
	code := 0
	for _, f := range fs.Suspects {
		if !f.Detected {
			continue
		}
		if f.Confidence == ConfidenceHigh || f.Type == FindingDeadlock {
			return 2
		}
		code = 1
	}
	return code
}

var findingTitles = map[FindingType]string{
	FindingDeadlock:       "DEADLOCK",
	FindingLockContention: "LOCK CONTENTION",
	FindingPoolSaturation: "POOL SATURATION",
	FindingStuckThreads:   "STUCK THREADS",
}

// SlackSummary is the condensed one-line summary for incident channels.
func SlackSummary(fs *Findings) string {
	overall := OverallSeverity(fs)

	var parts []string
	for _, f := range fs.Suspects {
		if !f.Detected {
			continue
		}
		switch f.Type {
		case FindingDeadlock:
			parts = append(parts, fmt.Sprintf("deadlock between %d threads", len(f.DeadlockCycle)))
		case FindingLockContention:
			parts = append(parts, fmt.Sprintf("%d threads blocked on one monitor", f.WaiterCount))
		case FindingPoolSaturation:
			parts = append(parts, fmt.Sprintf("pool %q %.0f%% saturated", f.PoolName, f.WaitingPct))
		case FindingStuckThreads:
			parts = append(parts, fmt.Sprintf("%d threads stuck at the same frames", f.StuckCount))
		}
	}

	line := fmt.Sprintf("%s thread triage: %s", overall.Emoji(), overall)
	if len(parts) > 0 {
		line += " - " + strings.Join(parts, ", ")
	}
	line += fmt.Sprintf(" | %d threads (%d blocked)", len(fs.Dump.Threads), fs.Dump.StateCounts["BLOCKED"])
	return line
}

// GenerateReport renders the full report in "txt" or "md"; both carry
// identical information.
func GenerateReport(fs *Findings, format string) (string, error) {
	md := false
	switch format {
	case "txt":
	case "md":
		md = true
	default:
		return "", fmt.Errorf("invalid format: %q is not one of txt, md", format)
	}

	var b strings.Builder
	if md {
		b.WriteString("# JVM Thread Triage Report\n\n")
	} else {
		b.WriteString("JVM THREAD TRIAGE REPORT\n")
		b.WriteString(strings.Repeat("=", 60) + "\n")
	}

	d := fs.Dump
	fmt.Fprintf(&b, "Analyzed %d threads: %d RUNNABLE, %d BLOCKED, %d WAITING, %d TIMED_WAITING.\n\n",
		len(d.Threads), d.StateCounts["RUNNABLE"], d.StateCounts["BLOCKED"],
		d.StateCounts["WAITING"], d.StateCounts["TIMED_WAITING"])
	if md {
		fmt.Fprintf(&b, "**%s** (severity: %s)\n", fs.Summary, OverallSeverity(fs))
	} else {
		fmt.Fprintf(&b, "%s (severity: %s)\n", fs.Summary, OverallSeverity(fs))
	}

	for _, f := range fs.Suspects {
		title := findingTitles[f.Type]
		status := "not detected"
		if f.Detected {
			status = "DETECTED"
		}
		if md {
			fmt.Fprintf(&b, "\n## %s %s - %s\n\n", FindingSeverity(f).Emoji(), title, status)
			fmt.Fprintf(&b, "Confidence: **%s**\n", f.Confidence)
		} else {
			fmt.Fprintf(&b, "\n--- %s - %s ---\n", title, status)
			fmt.Fprintf(&b, "Confidence: %s\n", f.Confidence)
		}
		if len(f.Evidence) > 0 {
			b.WriteString("Evidence:\n")
			for _, line := range f.Evidence {
				fmt.Fprintf(&b, "  - %s\n", line)
			}
		}
		if f.BusinessImpact != "" {
			if md {
				fmt.Fprintf(&b, "\n> %s\n", f.BusinessImpact)
			} else {
				fmt.Fprintf(&b, "Note: %s\n", f.BusinessImpact)
			}
		}
		if len(f.NextSteps) > 0 {
			b.WriteString("Next steps:\n")
			for i, step := range f.NextSteps {
				fmt.Fprintf(&b, "  %d. %s\n", i+1, step)
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(SlackSummary(fs))
	b.WriteString("\n")
	return b.String(), nil
}
