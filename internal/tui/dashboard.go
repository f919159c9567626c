package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/regdash/internal/engine"
)

const (
	chartBarWidth    = 30
	maxTimelineNames = 3
)

// DashboardLoader fetches the dashboard.
type DashboardLoader func(ctx context.Context) (*engine.Dashboard, error)

type dashboardLoadedMsg struct {
	dashboard *engine.Dashboard
	err       error
}

// DashboardModel shows the home dashboard in a scrollable viewport.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type DashboardModel struct {
	state        ViewState
	ctx          context.Context
	loader       DashboardLoader
	dashboard    *engine.Dashboard
	viewport     viewport.Model
	loadingState *LoadingState
	width        int
	height       int
	err          error
}

// NewDashboardModel returns a model that calls loader on Init.
func NewDashboardModel(ctx context.Context, loader DashboardLoader) DashboardModel {
	return DashboardModel{
		state:        ViewStateLoading,
		ctx:          ctx,
		loader:       loader,
		viewport:     viewport.New(defaultWidth, defaultHeight-1),
		loadingState: NewLoadingState(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
}

// Init starts loading the dashboard.
func (m DashboardModel) Init() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return tea.Batch(func() tea.Msg {
		d, err := loader(ctx)
		return dashboardLoadedMsg{dashboard: d, err: err}
	}, m.loadingState.Start())
}

// Update handles messages (Bubble Tea interface).
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(minHeight, msg.Height-1)
		if m.dashboard != nil {
			m.viewport.SetContent(RenderDashboardView(m.dashboard, m.width))
		}
		return m, nil
	case spinner.TickMsg:
		return m, m.loadingState.Update(msg)
	case dashboardLoadedMsg:
		m.loadingState.Done()
		if msg.err != nil {
			m.state = ViewStateError
			m.err = msg.err
			return m, nil
		}
		m.state = ViewStateList
		m.dashboard = msg.dashboard
		m.viewport.SetContent(RenderDashboardView(m.dashboard, m.width))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case keyQuit, keyCtrlC:
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the current view (Bubble Tea interface).
func (m DashboardModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return m.loadingState.View() + " Loading dashboard..."
	case ViewStateError:
		return ErrorStyle.Render(m.err.Error()) + "\n" + SubtleStyle.Render("q quit")
	case ViewStateList, ViewStateDetail:
	}
	footer := SubtleStyle.Render(fmt.Sprintf("%3.f%%  ↑/↓ scroll · q quit", m.viewport.ScrollPercent()*100)) //nolint:mnd // percent
	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

// RenderDashboardView renders d with lipgloss styling. Failed sections show
// their error in red in place of the section body.
func RenderDashboardView(d *engine.Dashboard, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	box := BoxStyle.Width(max(40, width-borderPadding)) //nolint:mnd // minimum box width

	index := lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render(fmt.Sprintf("Bureaucracy Index (%d)", d.IndexYear)),
		HeaderStyle.Render(d.Index),
		SubtleStyle.Render("Agency rules created for each law passed."),
	)
	sections := []string{box.Render(index)}

	section := func(title, key string, body func() []string) {
		lines := []string{HeaderStyle.Render(title)}
		if msg := d.SectionErr(key); msg != "" {
			lines = append(lines, ErrorStyle.Render(msg))
		} else {
			lines = append(lines, body()...)
		}
		sections = append(sections, box.Render(strings.Join(lines, "\n")))
	}

	section("Rules over time", engine.SectionNewRules, func() []string {
		maxRules := 0.0
		for _, p := range d.RulesOverTime {
			maxRules = max(maxRules, float64(p.Rules))
		}
		var lines []string
		for _, p := range d.RulesOverTime {
			lines = append(lines, fmt.Sprintf("%d %-6s %s  %s",
				p.Year,
				engine.FormatCompact(float64(p.Rules)),
				AccentStyle.Render(fmt.Sprintf("%-*s", chartBarWidth, engine.Bar(float64(p.Rules), maxRules, chartBarWidth))),
				SubtleStyle.Render(p.Caption())))
		}
		return lines
	})

	section("Agency timeline", engine.SectionTimeline, func() []string {
		var lines []string
		for _, e := range d.Timeline {
			names := e.Agencies
			more := ""
			if len(names) > maxTimelineNames {
				more = fmt.Sprintf(" +%d more", len(names)-maxTimelineNames)
				names = names[:maxTimelineNames]
			}
			value := AccentStyle.Render(fmt.Sprintf("%+d", e.Value))
			if e.Removed() {
				value = ErrorStyle.Render(fmt.Sprintf("%+d", e.Value))
			}
			lines = append(lines, fmt.Sprintf("%d %s %s%s", e.Year, value,
				strings.Join(names, ", "), SubtleStyle.Render(more)))
		}
		return lines
	})

	section("Total rule volume", engine.SectionVolume, func() []string {
		maxWords := 0.0
		for _, v := range d.Volume {
			maxWords = max(maxWords, float64(v.TotalWordCount))
		}
		var lines []string
		for _, v := range d.Volume {
			lines = append(lines, fmt.Sprintf("%d %-6s %s  %s rules",
				v.Year,
				engine.FormatWordsAxis(float64(v.TotalWordCount)),
				InfoStyle.Render(fmt.Sprintf("%-*s", chartBarWidth, engine.Bar(float64(v.TotalWordCount), maxWords, chartBarWidth))),
				engine.FormatThousands(int64(v.TotalRules))))
		}
		return lines
	})

	section("Agencies", engine.SectionAgencies, func() []string {
		var lines []string
		for _, c := range d.Cards {
			lines = append(lines, fmt.Sprintf("%-40s %8s words %6s rules  complexity %s  %s",
				truncateName(c.Name, 40), //nolint:mnd // name column
				c.WordsLabel, engine.FormatThousands(int64(c.Rules)), c.Score,
				AccentStyle.Render(c.Sparkline())))
		}
		return lines
	})

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func truncateName(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
