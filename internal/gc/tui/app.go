package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rguichard/jtriage/internal/gc"
	"github.com/rguichard/jtriage/utils"
)

func initialModel(findings *gc.Findings) *Model {
	return &Model{
		findings:        findings,
		currentTab:      FindingsTab,
		keys:            DefaultKeyMap(),
		selectedFinding: firstDetectedIndex(findings),
	}
}

func firstDetectedIndex(findings *gc.Findings) int {
	for i, f := range findings.Suspects {
		if f.Detected {
			return i
		}
	}
	return 0
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab1):
			m.currentTab = FindingsTab
		case key.Matches(msg, m.keys.Tab2):
			m.currentTab = ChartTab

		case key.Matches(msg, m.keys.Left):
			utils.CycleEnumPtr(&m.currentTab, -1, tabCount)
		case key.Matches(msg, m.keys.Right):
			utils.CycleEnumPtr(&m.currentTab, 1, tabCount)

		case key.Matches(msg, m.keys.Up):
			if m.currentTab == FindingsTab && m.selectedFinding > 0 {
				m.selectedFinding--
			}
		case key.Matches(msg, m.keys.Down):
			if m.currentTab == FindingsTab && m.selectedFinding < len(m.findings.Suspects)-1 {
				m.selectedFinding++
			}
		}
	}

	return m, nil
}

func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string
	switch m.currentTab {
	case FindingsTab:
		content = m.renderFindings(m.width, m.height-5)
	case ChartTab:
		content = m.renderChart(m.width, m.height-5)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		content,
		m.renderHelpBar(),
	)
}

func (m *Model) renderHeader() string {
	tabNames := []string{"Findings", "Chart"}

	var tabs []string
	for i, name := range tabNames {
		style := utils.TabInactiveStyle
		indicator := " "
		if TabType(i) == m.currentTab {
			style = utils.TabActiveStyle
			indicator = "●"
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%s %s [%d]", indicator, name, i+1)))
	}

	tabLine := strings.Join(tabs, "  ")
	border := strings.Repeat("─", m.width)

	return lipgloss.JoinVertical(lipgloss.Left, tabLine, border)
}

func (m *Model) renderHelpBar() string {
	help := "←/→ switch tab  ↑/↓ select finding  q quit"
	return utils.HelpBarStyle.Width(m.width).Render(help)
}

// StartTUI runs the interactive findings browser until the user quits.
func StartTUI(findings *gc.Findings) error {
	program := tea.NewProgram(
		initialModel(findings),
		tea.WithAltScreen(),
	)

	_, err := program.Run()
	return err
}
