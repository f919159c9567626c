package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/overlay"
)

// CardLoader fetches the agency cards shown by AgencyListModel.
type CardLoader func(ctx context.Context) ([]engine.AgencyCard, error)

type cardsLoadedMsg struct {
	cards []engine.AgencyCard
	err   error
}

// AgencyListModel is the searchable, sortable agency stats table.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type AgencyListModel struct {
	state  ViewState
	ctx    context.Context
	loader CardLoader

	allCards []engine.AgencyCard
	cards    []engine.AgencyCard // filtered and sorted
	selected int

	table      table.Model
	textInput  textinput.Model
	showFilter bool
	query      string
	searchSeq  int
	sortBy     overlay.SortKey

	loadingState *LoadingState
	width        int
	height       int
	err          error
}

// NewAgencyListModel returns a model that calls loader on Init.
func NewAgencyListModel(ctx context.Context, loader CardLoader, query string, sortBy overlay.SortKey) AgencyListModel {
	m := AgencyListModel{
		state:        ViewStateLoading,
		ctx:          ctx,
		loader:       loader,
		query:        query,
		sortBy:       sortBy,
		textInput:    newTextInput(),
		loadingState: NewLoadingState(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
	m.textInput.SetValue(query)
	m.table = m.buildTable()
	return m
}

// Init starts loading the cards.
func (m AgencyListModel) Init() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	return tea.Batch(func() tea.Msg {
		cards, err := loader(ctx)
		return cardsLoadedMsg{cards: cards, err: err}
	}, m.loadingState.Start())
}

// Update handles messages (Bubble Tea interface).
func (m AgencyListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.buildTable()
		return m, nil
	case spinner.TickMsg:
		return m, m.loadingState.Update(msg)
	case cardsLoadedMsg:
		m.loadingState.Done()
		if msg.err != nil {
			m.state = ViewStateError
			m.err = msg.err
			return m, nil
		}
		m.state = ViewStateList
		m.allCards = msg.cards
		m.refreshTable()
		return m, nil
	case searchDebounceMsg:
		if msg.seq == m.searchSeq {
			m.query = m.textInput.Value()
			m.refreshTable()
		}
		return m, nil
	case tea.KeyMsg:
		if msg.String() == keyCtrlC {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		switch m.state {
		case ViewStateList:
			if m.showFilter {
				return m.handleFilterInput(msg)
			}
			return m.handleListKeypress(msg)
		case ViewStateDetail:
			return m.handleDetailKeypress(msg)
		case ViewStateLoading, ViewStateError, ViewStateQuitting:
			if msg.String() == keyQuit {
				m.state = ViewStateQuitting
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m AgencyListModel) handleListKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch keyMsg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEnter:
		m.selected = m.table.Cursor()
		if m.selected >= 0 && m.selected < len(m.cards) {
			m.state = ViewStateDetail
		}
		return m, nil
	case keySlash:
		m.showFilter = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keyS:
		m.sortBy = m.sortBy.Next()
		m.refreshTable()
		return m, nil
	case keyEsc:
		if m.query != "" {
			m.textInput.SetValue("")
			m.query = ""
			m.refreshTable()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
}

func (m AgencyListModel) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.showFilter = false
		m.textInput.Blur()
		m.query = m.textInput.Value()
		m.refreshTable()
		return m, nil
	case keyEsc:
		m.showFilter = false
		m.textInput.Blur()
		m.textInput.SetValue("")
		m.query = ""
		m.refreshTable()
		return m, nil
	}

	before := m.textInput.Value()
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	if m.textInput.Value() == before {
		return m, cmd
	}
	m.searchSeq++
	return m, tea.Batch(cmd, debounce(m.searchSeq))
}

func (m AgencyListModel) handleDetailKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc, keyEnter:
		m.state = ViewStateList
		m.table.Focus()
	}
	return m, nil
}

// refreshTable re-applies search and sort and rebuilds the table.
func (m *AgencyListModel) refreshTable() {
	m.cards = overlay.Apply(m.allCards, engine.CardFields, m.query, m.sortBy)
	m.table = m.buildTable()
}

func (m *AgencyListModel) buildTable() table.Model {
	nameWidth := max(20, m.width-52) //nolint:mnd // remaining width after fixed columns
	columns := []table.Column{
		{Title: "Agency", Width: nameWidth},
		{Title: "Words", Width: 10},      //nolint:mnd // Column width.
		{Title: "Rules", Width: 8},       //nolint:mnd // Column width.
		{Title: "Complexity", Width: 10}, //nolint:mnd // Column width.
		{Title: "Trend", Width: 16},      //nolint:mnd // Column width.
	}

	rows := make([]table.Row, len(m.cards))
	for i, c := range m.cards {
		rows[i] = table.Row{
			c.Name,
			c.WordsLabel,
			engine.FormatThousands(int64(c.Rules)),
			c.Score,
			c.Sparkline(),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(minHeight, m.height-chromeHeight)),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

// View renders the current view (Bubble Tea interface).
func (m AgencyListModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return m.loadingState.View() + " Loading agencies..."
	case ViewStateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render("Agencies"),
			ErrorStyle.Render(m.err.Error()),
			SubtleStyle.Render("q quit"),
		)
	case ViewStateDetail:
		return m.renderDetailView()
	case ViewStateList:
	}

	sections := []string{HeaderStyle.Render("Agencies"), m.table.View()}
	status := []string{
		fmt.Sprintf("%d of %d agencies", len(m.cards), len(m.allCards)),
		"sort: " + m.sortBy.String(),
	}
	if m.query != "" {
		status = append(status, fmt.Sprintf("search: %q", m.query))
	}
	sections = append(sections, SubtleStyle.Render(strings.Join(status, " · ")+
		"  |  enter details · / search · s sort · q quit"))
	if m.showFilter {
		sections = append(sections, LabelStyle.Render("Search: ")+m.textInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AgencyListModel) renderDetailView() string {
	c := m.cards[m.selected]
	field := func(label, value string) string {
		return LabelStyle.Render(fmt.Sprintf("%-18s", label)) + ValueStyle.Render(value)
	}
	lines := []string{
		HeaderStyle.Render(c.Name),
		"",
		field("Agency ID", strconv.Itoa(c.ID)),
		field("Recent words", c.WordsLabel+" ("+engine.FormatThousands(c.Words)+")"),
		field("Recent rules", engine.FormatThousands(int64(c.Rules))),
		field("Complexity score", c.Score),
	}
	if len(c.Years) > 0 {
		lines = append(lines,
			field("Word count trend", AccentStyle.Render(c.Sparkline())),
			field("", fmt.Sprintf("%d - %d", c.Years[0], c.Years[len(c.Years)-1])),
		)
	}
	lines = append(lines, "", SubtleStyle.Render("esc back · q quit"))
	return BoxStyle.Width(max(40, m.width-borderPadding)).Render(strings.Join(lines, "\n")) //nolint:mnd // minimum box width
}

// Cards returns the currently displayed cards, in display order.
func (m AgencyListModel) Cards() []engine.AgencyCard {
	return m.cards
}
