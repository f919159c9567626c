// Package tui holds the Bubble Tea models behind the interactive regdash
// views: the agency/chapter/rule accordion, the searchable agency list and
// the dashboard.
package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader   = lipgloss.Color("63")
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("252")
	ColorSubtle   = lipgloss.Color("240")
	ColorError    = lipgloss.Color("196")
	ColorInfo     = lipgloss.Color("39")
	ColorAccent   = lipgloss.Color("112")
	ColorSelected = lipgloss.Color("57")
	ColorBorder   = lipgloss.Color("238")
)

//nolint:gochecknoglobals // shared lipgloss styles
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle  = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle  = lipgloss.NewStyle().Foreground(ColorValue)
	SubtleStyle = lipgloss.NewStyle().Foreground(ColorSubtle)
	InfoStyle   = lipgloss.NewStyle().Foreground(ColorInfo)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)

	// ErrorStyle renders fetch failures inline, in place of the content.
	ErrorStyle = lipgloss.NewStyle().Foreground(ColorError)

	SelectedRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(ColorSelected)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorHeader).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(ColorBorder)
	TableSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(ColorSelected)

	SpinnerStyle = lipgloss.NewStyle().Foreground(ColorInfo)
)

// Layout.
const (
	defaultWidth  = 100
	defaultHeight = 30
	minHeight     = 5
	borderPadding = 2
	chromeHeight  = 4 // title, status bar, filter line, spacing
)

// Key bindings shared by the models.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keySpace = " "
	keyEsc   = "esc"
	keySlash = "/"
	keyS     = "s"
)
