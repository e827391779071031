package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg advances a countdown by one second.
type TickMsg struct{}

// CountdownModel counts down whole seconds and can be aborted.
type CountdownModel struct {
	label     string
	remaining int
	aborted   bool
	done      bool
	tick      time.Duration
}

// NewCountdown creates a countdown of d, rounded up to whole seconds.
func NewCountdown(label string, d time.Duration) CountdownModel {
	seconds := int((d + time.Second - 1) / time.Second)
	return CountdownModel{
		label:     label,
		remaining: seconds,
		tick:      time.Second,
	}
}

func (m CountdownModel) next() tea.Cmd {
	return tea.Tick(m.tick, func(time.Time) tea.Msg { return TickMsg{} })
}

// Init initializes the component
func (m CountdownModel) Init() tea.Cmd {
	if m.remaining <= 0 {
		return tea.Quit
	}
	return m.next()
}

// Update handles messages
func (m CountdownModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		if m.done {
			return m, nil
		}
		m.remaining--
		if m.remaining <= 0 {
			m.done = true
			return m, tea.Quit
		}
		return m, m.next()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "n", "q":
			m.aborted = true
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the component
func (m CountdownModel) View() string {
	if m.done {
		return ""
	}
	unit := "seconds"
	if m.remaining == 1 {
		unit = "second"
	}
	return fmt.Sprintf("%s in %s...\n%s\n",
		m.label,
		ErrorStyle.Render(fmt.Sprintf("%d %s", m.remaining, unit)),
		HelpStyle.Render("esc cancel"))
}

// IsAborted returns whether the user stopped the countdown
func (m CountdownModel) IsAborted() bool {
	return m.aborted
}

// Remaining returns the seconds left
func (m CountdownModel) Remaining() int {
	return m.remaining
}
