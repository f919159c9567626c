package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingState drives the spinner shown for views and nodes that are
// waiting on a fetch. The spinner only ticks while Active is true.
type LoadingState struct {
	spinner spinner.Model
	active  int
}

// NewLoadingState returns an idle spinner.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle
	return &LoadingState{spinner: s}
}

// Start registers one pending fetch. It returns the tick command when the
// spinner was idle.
func (l *LoadingState) Start() tea.Cmd {
	l.active++
	if l.active == 1 {
		return l.spinner.Tick
	}
	return nil
}

// Done unregisters one pending fetch.
func (l *LoadingState) Done() {
	if l.active > 0 {
		l.active--
	}
}

// Active reports whether any fetch is pending.
func (l *LoadingState) Active() bool { return l.active > 0 }

// Pending returns the number of outstanding fetches.
func (l *LoadingState) Pending() int { return l.active }

// Update advances the spinner. Ticks arriving while idle are dropped so the
// spinner stops scheduling itself.
func (l *LoadingState) Update(msg spinner.TickMsg) tea.Cmd {
	if !l.Active() {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the current spinner frame.
func (l *LoadingState) View() string {
	return l.spinner.View()
}
