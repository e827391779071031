package tui

import "github.com/charmbracelet/lipgloss"

const (
	accent = lipgloss.Color("#7D56F4")
	green  = lipgloss.Color("#04B575")
	red    = lipgloss.Color("#FF0000")
	amber  = lipgloss.Color("#FFB000")
	grey   = lipgloss.Color("#888888")
	dim    = lipgloss.Color("#666666")
)

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	// Build step headers, e.g. "[2/6] Inspecting project"
	StepStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Padding(0, 1)

	// Field labels in info output
	LabelStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Width(13)

	// Help text styling
	HelpStyle = lipgloss.NewStyle().
			Foreground(grey)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(red).
			Bold(true)

	WarnStyle = lipgloss.NewStyle().
			Foreground(amber)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	// Crash reports
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(red).
			Padding(0, 1)

	// Subtle text styling
	SubtleStyle = lipgloss.NewStyle().
			Foreground(dim)
)
