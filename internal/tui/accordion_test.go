package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/regdash/internal/api"
	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/overlay"
	"github.com/rshade/regdash/internal/tree"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    map[string]int
	chapters map[string][]model.Chapter
	rules    map[string][]model.Rule
	fail     map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: map[string]int{},
		chapters: map[string][]model.Chapter{
			"42": {
				{ID: 1, Number: "1", Title: "General Provisions", TotalWordCount: 1200},
				{ID: 2, Number: "2", Title: "Reserved"},
			},
		},
		rules: map[string][]model.Rule{
			"1": {{Citation: "761-1.1", Title: "Definitions"}},
		},
		fail: map[string]error{},
	}
}

func (f *fakeSource) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[call]++
	return f.fail[call]
}

func (f *fakeSource) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeSource) Chapters(_ context.Context, agencyID string) ([]model.Chapter, error) {
	if err := f.record("chapters:" + agencyID); err != nil {
		return nil, err
	}
	return f.chapters[agencyID], nil
}

func (f *fakeSource) Rules(_ context.Context, chapterID string) ([]model.Rule, error) {
	if err := f.record("rules:" + chapterID); err != nil {
		return nil, err
	}
	return f.rules[chapterID], nil
}

func (f *fakeSource) RuleText(_ context.Context, citation string) (*model.RuleText, error) {
	if err := f.record("text:" + citation); err != nil {
		return nil, err
	}
	return nil, nil
}

func testAgencies() []model.Agency {
	score := 2.3
	return []model.Agency{
		{ID: 7, Name: "Board of Nursing", Number: "333", TotalWordCount: 500, ComplexityScore: &score},
		{ID: 42, Name: "Department of Transportation", Number: "761", TotalWordCount: 18248},
	}
}

// loadedAccordion returns an accordion whose roots are already loaded.
func loadedAccordion(t *testing.T, src *fakeSource, opts AccordionOptions) AccordionModel {
	t.Helper()
	h := engine.NewHierarchy(src, nil)
	roots := h.AgencyNodes(testAgencies())
	m := NewAccordionModel(context.Background(), func(context.Context) (AccordionData, error) {
		return AccordionData{Roots: roots}, nil
	}, opts)
	m, _ = updateAccordion(t, m, accordionLoadedMsg{data: AccordionData{Roots: roots}})
	require.Equal(t, ViewStateList, m.state)
	return m
}

func updateAccordion(t *testing.T, m AccordionModel, msg tea.Msg) (AccordionModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	am, ok := next.(AccordionModel)
	require.True(t, ok)
	return am, cmd
}

// collect runs cmd and any batched commands, returning the messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func nodeResults(cmd tea.Cmd) []nodeResultMsg {
	var out []nodeResultMsg
	for _, msg := range collect(cmd) {
		if r, ok := msg.(nodeResultMsg); ok {
			out = append(out, r)
		}
	}
	return out
}

var (
	keyEnterMsg = tea.KeyMsg{Type: tea.KeyEnter}
	keyDownMsg  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAccordion_Loading(t *testing.T) {
	m := NewAccordionModel(context.Background(), func(context.Context) (AccordionData, error) {
		return AccordionData{}, nil
	}, AccordionOptions{Title: "Explore"})

	assert.Equal(t, ViewStateLoading, m.state)
	assert.Contains(t, m.View(), "Loading agencies...")
	assert.NotNil(t, m.Init())
}

func TestAccordion_InitialOrderIsWordsDescending(t *testing.T) {
	m := loadedAccordion(t, newFakeSource(), AccordionOptions{Title: "Explore"})

	items := m.list.Items()
	require.Len(t, items, 2)
	assert.Contains(t, items[0].text, "Department of Transportation")
	assert.Contains(t, items[0].text, "18,248 words")
	assert.Contains(t, items[1].text, "Board of Nursing")
	assert.Contains(t, m.View(), "2 agencies")
}

func TestAccordion_ToggleFetchesOnce(t *testing.T) {
	src := newFakeSource()
	m := loadedAccordion(t, src, AccordionOptions{})

	m, cmd := updateAccordion(t, m, keyEnterMsg)
	results := nodeResults(cmd)
	require.Len(t, results, 1)
	assert.Equal(t, "chapters", results[0].req.Level)
	assert.Equal(t, "42", results[0].req.Key)
	assert.Contains(t, m.View(), engine.LoadingText)

	m, _ = updateAccordion(t, m, results[0])
	view := m.View()
	assert.Contains(t, view, "Chapter 1: General Provisions")
	assert.Contains(t, view, "Chapter 2: Reserved")
	assert.NotContains(t, view, engine.LoadingText)

	// close, reopen: cached
	m, _ = updateAccordion(t, m, keyEnterMsg)
	assert.NotContains(t, m.View(), "General Provisions")
	m, cmd = updateAccordion(t, m, keyEnterMsg)
	assert.Empty(t, nodeResults(cmd))
	assert.Contains(t, m.View(), "General Provisions")
	assert.Equal(t, 1, src.count("chapters:42"))
}

func TestAccordion_ReopenWhileInFlightDoesNotRefetch(t *testing.T) {
	src := newFakeSource()
	m := loadedAccordion(t, src, AccordionOptions{})

	m, first := updateAccordion(t, m, keyEnterMsg)
	m, _ = updateAccordion(t, m, keyEnterMsg)
	m, second := updateAccordion(t, m, keyEnterMsg)
	assert.Nil(t, second)

	results := nodeResults(first)
	require.Len(t, results, 1)
	m, _ = updateAccordion(t, m, results[0])
	assert.Equal(t, 1, src.count("chapters:42"))
	assert.Contains(t, m.View(), "General Provisions")
}

func TestAccordion_FetchErrorRendersInlineAndRefetches(t *testing.T) {
	src := newFakeSource()
	src.fail["chapters:42"] = &api.FetchError{Op: api.OpChapters, URL: "http://x", StatusCode: 500}
	m := loadedAccordion(t, src, AccordionOptions{Title: "Explore"})

	m, cmd := updateAccordion(t, m, keyEnterMsg)
	for _, r := range nodeResults(cmd) {
		m, _ = updateAccordion(t, m, r)
	}

	view := m.View()
	assert.Contains(t, view, "Failed to fetch chapters: HTTP 500 Internal Server Error")
	assert.Contains(t, view, "Board of Nursing", "the rest of the view is intact")
	assert.Equal(t, ViewStateList, m.state)

	delete(src.fail, "chapters:42")
	m, _ = updateAccordion(t, m, keyEnterMsg)
	m, cmd = updateAccordion(t, m, keyEnterMsg)
	results := nodeResults(cmd)
	require.Len(t, results, 1)
	m, _ = updateAccordion(t, m, results[0])
	assert.Equal(t, 2, src.count("chapters:42"))
	assert.Contains(t, m.View(), "General Provisions")
	assert.NotContains(t, m.View(), "Failed to fetch")
}

func TestAccordion_EmptyChapterPlaceholder(t *testing.T) {
	src := newFakeSource()
	m := loadedAccordion(t, src, AccordionOptions{})

	m, cmd := updateAccordion(t, m, keyEnterMsg)
	m, _ = updateAccordion(t, m, nodeResults(cmd)[0])

	// rows: agency, last updated, chapter 1, chapter 2, nursing
	for range 3 {
		m, _ = updateAccordion(t, m, keyDownMsg)
	}
	r, ok := m.list.SelectedItem()
	require.True(t, ok)
	require.Contains(t, r.text, "Reserved")

	m, cmd = updateAccordion(t, m, keyEnterMsg)
	m, _ = updateAccordion(t, m, nodeResults(cmd)[0])
	assert.Contains(t, m.View(), engine.NoRules)
}

func TestAccordion_QuitDropsLateResults(t *testing.T) {
	m := loadedAccordion(t, newFakeSource(), AccordionOptions{})

	m, cmd := updateAccordion(t, m, keyEnterMsg)
	m, quitCmd := updateAccordion(t, m, runes("q"))
	assert.Equal(t, ViewStateQuitting, m.state)
	assert.IsType(t, tea.QuitMsg{}, quitCmd())
	assert.ErrorIs(t, m.ctx.Err(), context.Canceled)

	results := nodeResults(cmd)
	require.Len(t, results, 1)
	assert.False(t, results[0].result.Apply())
	assert.Equal(t, tree.StateIdle, m.roots[1].State())
	assert.Empty(t, m.View())
}

func TestAccordion_SearchIsDebounced(t *testing.T) {
	m := loadedAccordion(t, newFakeSource(), AccordionOptions{})

	m, _ = updateAccordion(t, m, runes("/"))
	require.True(t, m.showFilter)
	m, cmd := updateAccordion(t, m, runes("TRANSPÓRT"))
	assert.NotNil(t, cmd)
	assert.Len(t, m.list.Items(), 2, "filter waits for the debounce")

	m, _ = updateAccordion(t, m, searchDebounceMsg{seq: m.searchSeq - 1})
	assert.Len(t, m.list.Items(), 2, "stale debounce ticks are ignored")

	m, _ = updateAccordion(t, m, searchDebounceMsg{seq: m.searchSeq})
	require.Len(t, m.list.Items(), 1)
	assert.Contains(t, m.list.Items()[0].text, "Department of Transportation")
	assert.Contains(t, m.View(), "1 agencies")

	m, _ = updateAccordion(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showFilter)
	assert.Len(t, m.list.Items(), 2)
}

func TestAccordion_SortCycles(t *testing.T) {
	m := loadedAccordion(t, newFakeSource(), AccordionOptions{})
	assert.Equal(t, overlay.SortWords, m.sortBy)

	m, _ = updateAccordion(t, m, runes("s"))
	m, _ = updateAccordion(t, m, runes("s"))
	assert.Equal(t, overlay.SortComplexity, m.sortBy)
	assert.Contains(t, m.list.Items()[0].text, "Board of Nursing", "scored agency before missing score")
	assert.Contains(t, m.View(), "sort: complexity")

	m, _ = updateAccordion(t, m, runes("s"))
	assert.Equal(t, overlay.SortName, m.sortBy)
	assert.Contains(t, m.list.Items()[0].text, "Board of Nursing")
}

func TestAccordion_LoadError(t *testing.T) {
	m := NewAccordionModel(context.Background(), nil, AccordionOptions{Title: "Explore"})
	m, _ = updateAccordion(t, m, accordionLoadedMsg{err: errors.New("Failed to fetch agencies: HTTP 502 Bad Gateway")})

	assert.Equal(t, ViewStateError, m.state)
	assert.Contains(t, m.View(), "Failed to fetch agencies: HTTP 502 Bad Gateway")

	m, cmd := updateAccordion(t, m, runes("q"))
	assert.Equal(t, ViewStateQuitting, m.state)
	assert.NotNil(t, cmd)
}

func TestAccordion_OpenRootsFiltersChildren(t *testing.T) {
	src := newFakeSource()
	h := engine.NewHierarchy(src, nil)
	root := h.Agency(testAgencies()[1])
	data := AccordionData{Header: []string{"Complexity Score: 2.30"}, Roots: []tree.Expandable{root}}

	m := NewAccordionModel(context.Background(), nil, AccordionOptions{
		Title: "Department of Transportation", FilterDepth: 1, OpenRoots: true, Noun: "chapters",
	})
	m, cmd := updateAccordion(t, m, accordionLoadedMsg{data: data})
	results := nodeResults(cmd)
	require.Len(t, results, 1)
	m, _ = updateAccordion(t, m, results[0])
	assert.Contains(t, m.View(), "2 chapters")
	assert.Contains(t, m.View(), "Complexity Score: 2.30")

	m.query = "general"
	m.rebuild()
	assert.Contains(t, m.View(), "1 chapters")
	assert.NotContains(t, m.View(), "Reserved")

	m.query = "nothing matches this"
	m.rebuild()
	assert.Contains(t, m.View(), noMatches)
}

func TestAccordion_WindowResize(t *testing.T) {
	m := loadedAccordion(t, newFakeSource(), AccordionOptions{})
	m, _ = updateAccordion(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})

	assert.Equal(t, 60, m.rowStyle.width)
	assert.Equal(t, 20-chromeHeight, m.list.Height())
}
