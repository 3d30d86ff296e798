package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/rguichard/jtriage/internal/gc"
)

type Model struct {
	findings *gc.Findings

	currentTab      TabType
	width           int
	height          int
	selectedFinding int

	keys KeyMap
}

type TabType int

const (
	FindingsTab TabType = iota
	ChartTab
)

const tabCount = ChartTab

type KeyMap struct {
	Tab1  key.Binding
	Tab2  key.Binding
	Left  key.Binding
	Right key.Binding
	Up    key.Binding
	Down  key.Binding
	Quit  key.Binding
}

func k(keys []string, help, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(help, desc),
	)
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab1:  k([]string{"1"}, "1", "findings"),
		Tab2:  k([]string{"2"}, "2", "chart"),
		Left:  k([]string{"left", "h"}, "←/h", "prev tab"),
		Right: k([]string{"right", "l"}, "→/l", "next tab"),
		Up:    k([]string{"up", "k"}, "↑/k", "up"),
		Down:  k([]string{"down", "j"}, "↓/j", "down"),
		Quit:  k([]string{"q", "ctrl+c"}, "q", "quit"),
	}
}
