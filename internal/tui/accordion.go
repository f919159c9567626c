package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/logging"
	"github.com/rshade/regdash/internal/overlay"
	"github.com/rshade/regdash/internal/tree"
	listview "github.com/rshade/regdash/internal/tui/list"
)

// SearchDebounce is the delay between the last keystroke in a search box
// and the filter being applied.
const SearchDebounce = 300 * time.Millisecond

const (
	indentUnit = "  "
	noMatches  = "No matches."
)

// AccordionData is what a loader hands the accordion once the roots are known.
type AccordionData struct {
	Header []string // lines shown above the tree
	Roots  []tree.Expandable
}

// AccordionLoader fetches the roots of the accordion.
type AccordionLoader func(ctx context.Context) (AccordionData, error)

// AccordionOptions configures an AccordionModel.
type AccordionOptions struct {
	Title string
	// FilterDepth is the depth whose sibling set search and sort apply to:
	// 0 for the agency roots, 1 for the chapters of a single agency.
	FilterDepth int
	// OpenRoots opens every root as soon as it is loaded.
	OpenRoots bool
	Query     string
	Sort      overlay.SortKey
	// Noun names the filtered items in the status bar ("agencies").
	Noun string
}

type rowKind int

const (
	rowNode rowKind = iota
	rowBody
	rowLoading
	rowError
	rowPlaceholder
)

// row is one rendered line of the flattened tree. Every row belongs to the
// node it was produced by.
type row struct {
	node  tree.Expandable
	kind  rowKind
	depth int
	text  string
}

type accordionLoadedMsg struct {
	data AccordionData
	err  error
}

// nodeResultMsg carries a finished child fetch back to Update.
type nodeResultMsg struct {
	req    tree.Request
	result tree.Result
}

type searchDebounceMsg struct {
	seq int
}

// AccordionModel is the interactive Agency -> Chapter -> Rule tree. Fetches
// run as commands; their results are applied in Update, the only place node
// state is written.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type AccordionModel struct {
	state  ViewState
	ctx    context.Context
	cancel context.CancelFunc
	logger zerolog.Logger
	loader AccordionLoader
	opts   AccordionOptions

	header  []string
	roots   []tree.Expandable
	matched int
	list    listview.Model[row]

	textInput  textinput.Model
	showFilter bool
	query      string
	searchSeq  int
	sortBy     overlay.SortKey

	loadingState *LoadingState
	rowStyle     *rowRenderer
	width        int
	height       int
	err          error
}

// rowRenderer is shared by every copy of the model so the list's render
// function sees the current width.
type rowRenderer struct {
	width   int
	loading *LoadingState
}

// NewAccordionModel returns a model that calls loader on Init.
func NewAccordionModel(ctx context.Context, loader AccordionLoader, opts AccordionOptions) AccordionModel {
	ctx, cancel := context.WithCancel(ctx)
	if opts.Noun == "" {
		opts.Noun = "agencies"
	}
	m := AccordionModel{
		state:        ViewStateLoading,
		ctx:          ctx,
		cancel:       cancel,
		logger:       logging.ComponentLogger(*logging.FromContext(ctx), "tui"),
		loader:       loader,
		opts:         opts,
		query:        opts.Query,
		sortBy:       opts.Sort,
		textInput:    newTextInput(),
		loadingState: NewLoadingState(),
		width:        defaultWidth,
		height:       defaultHeight,
	}
	m.textInput.SetValue(opts.Query)
	m.rowStyle = &rowRenderer{width: m.width, loading: m.loadingState}
	m.list = listview.New(m.rowStyle.render, m.listHeight())
	return m
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

// Init starts loading the roots.
func (m AccordionModel) Init() tea.Cmd {
	loader, ctx := m.loader, m.ctx
	load := func() tea.Msg {
		data, err := loader(ctx)
		return accordionLoadedMsg{data: data, err: err}
	}
	return tea.Batch(load, m.loadingState.Start())
}

// Update handles messages (Bubble Tea interface).
func (m AccordionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rowStyle.width = msg.Width
		m.list.SetHeight(m.listHeight())
		return m, nil
	case spinner.TickMsg:
		return m, m.loadingState.Update(msg)
	case accordionLoadedMsg:
		return m.handleLoaded(msg)
	case nodeResultMsg:
		return m.handleNodeResult(msg)
	case searchDebounceMsg:
		if msg.seq == m.searchSeq {
			m.query = m.textInput.Value()
			m.rebuild()
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m AccordionModel) handleLoaded(msg accordionLoadedMsg) (tea.Model, tea.Cmd) {
	m.loadingState.Done()
	if msg.err != nil {
		m.state = ViewStateError
		m.err = msg.err
		m.logger.Warn().Err(msg.err).Msg("loading accordion roots failed")
		return m, nil
	}
	m.state = ViewStateList
	m.header = msg.data.Header
	m.roots = msg.data.Roots

	var cmds []tea.Cmd
	if m.opts.OpenRoots {
		for _, n := range m.roots {
			if req, ok := n.Open(); ok {
				cmds = append(cmds, m.fetch(req)...)
			}
		}
	}
	m.rebuild()
	return m, tea.Batch(cmds...)
}

func (m AccordionModel) handleNodeResult(msg nodeResultMsg) (tea.Model, tea.Cmd) {
	m.loadingState.Done()
	if !msg.result.Apply() {
		m.logger.Debug().
			Str("level", msg.req.Level).
			Str("key", msg.req.Key).
			Uint64("token", msg.req.Token).
			Msg("dropped stale fetch result")
		return m, nil
	}
	m.rebuild()
	return m, nil
}

// fetch turns a node request into commands: the fetch itself and, when the
// spinner was idle, its first tick.
func (m AccordionModel) fetch(req tree.Request) []tea.Cmd {
	ctx := m.ctx
	m.logger.Debug().Str("level", req.Level).Str("key", req.Key).Msg("fetching children")
	cmds := []tea.Cmd{func() tea.Msg {
		return nodeResultMsg{req: req, result: req.Do(ctx)}
	}}
	if tick := m.loadingState.Start(); tick != nil {
		cmds = append(cmds, tick)
	}
	return cmds
}

func (m AccordionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == keyCtrlC {
		return m.quit()
	}
	if m.showFilter {
		return m.handleFilterInput(msg)
	}
	if m.state != ViewStateList {
		if msg.String() == keyQuit || msg.String() == keyEsc {
			return m.quit()
		}
		return m, nil
	}

	switch msg.String() {
	case keyQuit:
		return m.quit()
	case keyEnter, keySpace:
		return m.toggleSelected()
	case "right", "l":
		if r, ok := m.list.SelectedItem(); ok && !r.node.IsOpen() {
			return m.toggleSelected()
		}
		return m, nil
	case "left", "h":
		if r, ok := m.list.SelectedItem(); ok && r.node.IsOpen() && r.kind == rowNode {
			return m.toggleSelected()
		}
		return m, nil
	case keySlash:
		m.showFilter = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keyS:
		m.sortBy = m.sortBy.Next()
		m.rebuild()
		return m, nil
	case keyEsc:
		if m.query != "" {
			m.textInput.SetValue("")
			m.query = ""
			m.rebuild()
		}
		return m, nil
	}
	m.list.HandleKey(msg)
	return m, nil
}

func (m AccordionModel) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyEnter:
		m.showFilter = false
		m.textInput.Blur()
		m.query = m.textInput.Value()
		m.rebuild()
		return m, nil
	case keyEsc:
		m.showFilter = false
		m.textInput.Blur()
		m.textInput.SetValue("")
		m.query = ""
		m.rebuild()
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

func debounce(seq int) tea.Cmd {
	return tea.Tick(SearchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{seq: seq}
	})
}

// toggleSelected toggles the node owning the cursor row. Toggling from a
// body, error or placeholder row collapses its node.
func (m AccordionModel) toggleSelected() (tea.Model, tea.Cmd) {
	r, ok := m.list.SelectedItem()
	if !ok {
		return m, nil
	}
	req, needsFetch := r.node.Toggle()
	if r.kind != rowNode {
		m.selectNode(r.node)
	}
	var cmds []tea.Cmd
	if needsFetch {
		cmds = m.fetch(req)
	}
	m.rebuild()
	return m, tea.Batch(cmds...)
}

// selectNode moves the cursor to n's header row.
func (m *AccordionModel) selectNode(n tree.Expandable) {
	for i := m.list.Selected(); i >= 0; i-- {
		if r := m.list.Items()[i]; r.node == n && r.kind == rowNode {
			m.list.SetSelected(i)
			return
		}
	}
}

func (m AccordionModel) quit() (tea.Model, tea.Cmd) {
	m.state = ViewStateQuitting
	m.Close()
	return m, tea.Quit
}

// Close cancels in-flight fetches and discards every node so late results
// are dropped. It is safe to call more than once.
func (m AccordionModel) Close() {
	m.cancel()
	for _, n := range m.roots {
		n.Discard()
	}
}

// rebuild re-flattens the tree with the current search and sort.
func (m *AccordionModel) rebuild() {
	roots := m.roots
	if m.opts.FilterDepth == 0 {
		roots = m.apply(roots)
		m.matched = len(roots)
	}
	var rows []row
	for _, n := range roots {
		rows = m.appendNode(rows, n, 0)
	}
	m.list.SetItems(rows)
}

func (m *AccordionModel) apply(nodes []tree.Expandable) []tree.Expandable {
	return overlay.Apply(nodes, tree.Expandable.Fields, m.query, m.sortBy)
}

func (m *AccordionModel) appendNode(rows []row, n tree.Expandable, depth int) []row {
	rows = append(rows, row{node: n, kind: rowNode, depth: depth, text: n.Label()})
	if !n.IsOpen() {
		return rows
	}
	inner := depth + 1
	for _, line := range n.Body() {
		rows = append(rows, row{node: n, kind: rowBody, depth: inner, text: line})
	}

	switch n.State() {
	case tree.StateLoading:
		rows = append(rows, row{node: n, kind: rowLoading, depth: inner, text: engine.LoadingText})
	case tree.StateError:
		rows = append(rows, row{node: n, kind: rowError, depth: inner, text: n.Err().Error()})
	case tree.StateLoaded:
		kids := n.Children()
		if len(kids) == 0 {
			if p := n.Placeholder(); p != "" {
				rows = append(rows, row{node: n, kind: rowPlaceholder, depth: inner, text: p})
			}
			return rows
		}
		if inner == m.opts.FilterDepth {
			kids = m.apply(kids)
			m.matched = len(kids)
			if len(kids) == 0 {
				rows = append(rows, row{node: n, kind: rowPlaceholder, depth: inner, text: noMatches})
			}
		}
		for _, c := range kids {
			rows = m.appendNode(rows, c, inner)
		}
	case tree.StateIdle:
	}
	return rows
}

func (m AccordionModel) listHeight() int {
	return max(minHeight, m.height-chromeHeight-len(m.header))
}

func (rr *rowRenderer) render(r row, selected bool) string {
	indent := strings.Repeat(indentUnit, r.depth)
	var line string
	switch r.kind {
	case rowNode:
		glyph := engine.GlyphClosed
		switch {
		case r.node.State() == tree.StateLoaded && len(r.node.Children()) == 0 && r.node.Placeholder() == "":
			glyph = engine.GlyphLeaf
		case r.node.IsOpen():
			glyph = engine.GlyphOpen
		}
		line = indent + glyph + " " + r.text
		if selected {
			line = SelectedRowStyle.Render(line)
		} else {
			line = ValueStyle.Render(line)
		}
	case rowBody:
		line = indent + r.text
	case rowLoading:
		line = indent + rr.loading.View() + " " + r.text
	case rowError:
		line = indent + ErrorStyle.Render(r.text)
	case rowPlaceholder:
		line = indent + SubtleStyle.Render(r.text)
	}
	if r.kind != rowNode && selected {
		line = AccentStyle.Render(">") + line
	}
	return lipgloss.NewStyle().MaxWidth(rr.width).Render(line)
}

// View renders the current view (Bubble Tea interface).
func (m AccordionModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateLoading:
		return m.loadingState.View() + " Loading " + m.opts.Noun + "..."
	case ViewStateError:
		return lipgloss.JoinVertical(lipgloss.Left,
			HeaderStyle.Render(m.opts.Title),
			ErrorStyle.Render(m.err.Error()),
			SubtleStyle.Render("q quit"),
		)
	case ViewStateList, ViewStateDetail:
	}

	sections := []string{HeaderStyle.Render(m.opts.Title)}
	sections = append(sections, m.header...)
	if len(m.roots) == 0 {
		sections = append(sections, SubtleStyle.Render("No "+m.opts.Noun+" found."))
	} else {
		sections = append(sections, m.list.View())
	}
	sections = append(sections, m.renderStatusBar())
	if m.showFilter {
		sections = append(sections, LabelStyle.Render("Search: ")+m.textInput.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m AccordionModel) renderStatusBar() string {
	parts := []string{
		fmt.Sprintf("%d %s", m.matched, m.opts.Noun),
		"sort: " + m.sortBy.String(),
	}
	if m.query != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.query))
	}
	if n := m.loadingState.Pending(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d loading", n))
	}
	help := "enter toggle · / search · s sort · q quit"
	return SubtleStyle.Render(strings.Join(parts, " · ") + "  |  " + help)
}
