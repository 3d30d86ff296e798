package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rguichard/jtriage/internal/gc"
	"github.com/rguichard/jtriage/utils"
)

func (m *Model) renderFindings(width, height int) string {
	fs := m.findings

	summaryStyle := utils.GetSeverityStyle(gc.OverallSeverity(fs).String())
	summary := summaryStyle.Render(fs.Summary)

	listWidth := width / 3
	detailWidth := width - listWidth - 3

	list := m.renderFindingList(listWidth)
	detail := m.renderFindingDetail(detailWidth)

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, "   ", detail)

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.TitleStyle.Render("GC Triage"),
		summary,
		"",
		body,
	)
}

func (m *Model) renderFindingList(width int) string {
	var lines []string
	for i, f := range m.findings.Suspects {
		sev := gc.FindingSeverity(f)
		icon := utils.GetSeverityIcon(sev.String())
		label := fmt.Sprintf("%s %s", icon, gc.TitleFor(f.Type))

		style := utils.MutedStyle
		if f.Detected {
			style = utils.GetSeverityStyle(sev.String())
		}
		if i == m.selectedFinding {
			label = "▸ " + label
			style = style.Bold(true)
		} else {
			label = "  " + label
		}
		lines = append(lines, style.Render(utils.TruncateString(label, width)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFindingDetail(width int) string {
	fs := m.findings
	if m.selectedFinding >= len(fs.Suspects) {
		return ""
	}
	f := fs.Suspects[m.selectedFinding]
	sev := gc.FindingSeverity(f)

	var lines []string

	status := "not detected"
	if f.Detected {
		status = fmt.Sprintf("DETECTED (%s confidence)", f.Confidence)
	}
	header := fmt.Sprintf("%s - %s", gc.TitleFor(f.Type), status)
	lines = append(lines, utils.GetSeverityStyle(sev.String()).Render(header))

	if f.BusinessImpact != "" {
		lines = append(lines, "")
		for _, wrapped := range utils.WrapText(f.BusinessImpact, width) {
			lines = append(lines, utils.TextStyle.Render(wrapped))
		}
	}

	if len(f.Evidence) > 0 {
		lines = append(lines, "", utils.InfoStyle.Render("Evidence"))
		for _, ev := range f.Evidence {
			lines = append(lines, utils.TextStyle.Render("  • "+utils.TruncateString(ev, width-4)))
		}
	}

	if len(f.NextSteps) > 0 {
		lines = append(lines, "", utils.InfoStyle.Render("Next steps"))
		for _, step := range f.NextSteps {
			lines = append(lines, utils.TextStyle.Render("  → "+utils.TruncateString(step, width-4)))
		}
	}

	return utils.BoxStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderChart(width, height int) string {
	fs := m.findings

	points, unit := gc.ChartSeries(fs)
	chart := utils.RenderChart(points, unit)

	meta := fmt.Sprintf("%d events parsed, %d usable, %d in stable window",
		fs.RawEventCount, len(fs.Events), len(fs.StableEvents))

	return lipgloss.JoinVertical(lipgloss.Left,
		utils.TitleStyle.Render("Old-Generation Occupancy"),
		utils.MutedStyle.Render(meta),
		"",
		chart,
	)
}
