package engine_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/regdash/internal/api"
	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/tree"
)

// fakeSource serves canned hierarchy data and records every fetch.
type fakeSource struct {
	mu       sync.Mutex
	calls    []string
	chapters map[string][]model.Chapter
	rules    map[string][]model.Rule
	texts    map[string]*model.RuleText
	fail     map[string]error
}

func (f *fakeSource) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.fail[call]
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
	return f.texts[citation], nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		chapters: map[string][]model.Chapter{
			"42": {
				{ID: 1, Number: "1", Title: "General Provisions", TotalWordCount: 1200},
				{ID: 2, Number: "2", Title: "Reserved", TotalWordCount: 0},
			},
		},
		rules: map[string][]model.Rule{
			"1": {{Citation: "761-1.1", Title: "Definitions", Text: "Terms used.", Subrules: []model.Subrule{{Number: "a", Text: "Motor carrier."}}}},
		},
		texts: map[string]*model.RuleText{
			"761-1.1": {Citation: "761-1.1", Content: "# Definitions\nTerms used."},
		},
		fail: map[string]error{},
	}
}

func run(t *testing.T, n tree.Expandable) {
	t.Helper()
	req, ok := n.Toggle()
	require.True(t, ok)
	require.True(t, req.Do(context.Background()).Apply())
}

func TestAgencyToggleFetchesOnceScopedToAgency(t *testing.T) {
	src := newFakeSource()
	h := engine.NewHierarchy(src, nil)
	node := h.Agency(model.Agency{ID: 42, Name: "Transportation", Number: "761"})

	req, ok := node.Toggle()
	require.True(t, ok)
	assert.Equal(t, "42", req.Key)
	require.True(t, req.Do(context.Background()).Apply())

	node.Toggle()
	_, ok = node.Toggle()
	assert.False(t, ok)

	assert.Equal(t, []string{"chapters:42"}, src.calls)
	assert.Len(t, node.Items(), 2)
}

func TestChapterWithNoRulesShowsPlaceholder(t *testing.T) {
	src := newFakeSource()
	h := engine.NewHierarchy(src, nil)
	agency := h.Agency(model.Agency{ID: 42, Name: "Transportation"})
	run(t, agency)

	empty := agency.Children()[1]
	run(t, empty)

	lines := strings.Join(engine.TreeLines(empty, 0), "\n")
	assert.Contains(t, lines, engine.NoRules)
	assert.Equal(t, "No rules found for this chapter.", engine.NoRules)
}

func TestAgencyWithNoChaptersShowsPlaceholder(t *testing.T) {
	h := engine.NewHierarchy(newFakeSource(), nil)
	agency := h.Agency(model.Agency{ID: 99, Name: "Dormant"})
	run(t, agency)

	assert.Contains(t, engine.TreeLines(agency, 0), "    "+engine.NoChapters)
}

func TestRuleTextLevel(t *testing.T) {
	src := newFakeSource()
	src.texts["761-1.2"] = &model.RuleText{Content: "   "}
	h := engine.NewHierarchy(src, func(md string) []string { return []string{"rendered:" + md} })

	rule := tree.NewNode(h.Rules, model.Rule{Citation: "761-1.1", Title: "Definitions"})
	run(t, rule)
	require.Len(t, rule.Children(), 1)
	assert.Equal(t, []string{"rendered:# Definitions\nTerms used."}, rule.Children()[0].Body())

	blank := tree.NewNode(h.Rules, model.Rule{Citation: "761-1.2"})
	run(t, blank)
	assert.Empty(t, blank.Children())
	assert.Equal(t, engine.NoText, blank.Placeholder())

	missing := tree.NewNode(h.Rules, model.Rule{Citation: "761-9.9"})
	run(t, missing)
	assert.Empty(t, missing.Children())
}

func TestChapterSearchIncludesLoadedRules(t *testing.T) {
	src := newFakeSource()
	h := engine.NewHierarchy(src, nil)
	chapter := tree.NewNode(h.Chapters, model.Chapter{ID: 1, Number: "1", Title: "General Provisions"})

	assert.False(t, strings.Contains(strings.Join(chapter.Fields().Keywords, " "), "761-1.1"))
	run(t, chapter)

	f := chapter.Fields()
	assert.Contains(t, f.Keywords, "761-1.1")
	assert.Contains(t, f.Keywords, "Definitions")
	assert.Equal(t, 1, f.Rules)
}

func TestRuleBodyIncludesSubrules(t *testing.T) {
	h := engine.NewHierarchy(newFakeSource(), nil)
	rule := tree.NewNode(h.Rules, model.Rule{
		Citation:    "761-1.1",
		Title:       "Definitions",
		Description: "Scope of terms",
		Text:        "Line one\nLine two",
		Subrules:    []model.Subrule{{Number: "a", Text: "First", Description: "note"}, {Text: "Bare"}},
	})

	assert.Equal(t, []string{"Scope of terms", "Line one", "Line two", "  a) First", "    note", "  Bare"}, rule.Body())
	assert.Equal(t, "761-1.1  Definitions", rule.Label())
}

func TestAgencyFetchHTTP500RendersInline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	client, err := api.New(api.Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	defer client.Close()

	h := engine.NewHierarchy(client, nil)
	agency := h.Agency(model.Agency{ID: 42, Name: "Transportation"})

	assert.NotPanics(t, func() { run(t, agency) })
	assert.Equal(t, tree.StateError, agency.State())
	require.ErrorIs(t, agency.Err(), api.ErrFetchFailed)

	lines := engine.TreeLines(agency, 0)
	assert.Contains(t, lines, "    Failed to fetch chapters: HTTP 500 Internal Server Error")
}

func TestExpandAll(t *testing.T) {
	src := newFakeSource()
	h := engine.NewHierarchy(src, nil)
	roots := h.AgencyNodes([]model.Agency{{ID: 42, Name: "Transportation"}, {ID: 7, Name: "Revenue"}})

	require.NoError(t, engine.ExpandAll(context.Background(), roots, 3, 2))

	assert.ElementsMatch(t, []string{
		"chapters:42", "chapters:7",
		"rules:1", "rules:2",
		"text:761-1.1",
	}, src.calls)
	assert.True(t, roots[0].IsOpen())
	chapter := roots[0].Children()[0]
	assert.True(t, chapter.IsOpen())
	assert.True(t, chapter.Children()[0].IsOpen())
}

func TestExpandAllZeroDepthFetchesNothing(t *testing.T) {
	src := newFakeSource()
	roots := engine.NewHierarchy(src, nil).AgencyNodes([]model.Agency{{ID: 42}})

	require.NoError(t, engine.ExpandAll(context.Background(), roots, 0, 0))
	assert.Empty(t, src.calls)
	assert.False(t, roots[0].IsOpen())
}

func TestExpandAllSkipsFailedSubtrees(t *testing.T) {
	src := newFakeSource()
	src.fail["chapters:42"] = errors.New("Failed to fetch chapters")
	roots := engine.NewHierarchy(src, nil).AgencyNodes([]model.Agency{{ID: 42}})

	require.NoError(t, engine.ExpandAll(context.Background(), roots, 3, 1))
	assert.Equal(t, []string{"chapters:42"}, src.calls)
	assert.Equal(t, tree.StateError, roots[0].State())
}

func TestExpandAllCanceled(t *testing.T) {
	src := newFakeSource()
	roots := engine.NewHierarchy(src, nil).AgencyNodes([]model.Agency{{ID: 42}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, engine.ExpandAll(ctx, roots, 2, 1), context.Canceled)
}

func TestTreeLinesClosedAndLoading(t *testing.T) {
	h := engine.NewHierarchy(newFakeSource(), nil)
	agency := h.Agency(model.Agency{ID: 42, Name: "Transportation", Number: "761", TotalWordCount: 18248})

	closed := engine.TreeLines(agency, 0)
	require.Len(t, closed, 1)
	assert.Equal(t, engine.GlyphClosed+" Transportation  ·  Agency 761  ·  18,248 words", closed[0])

	agency.Toggle()
	loading := engine.TreeLines(agency, 0)
	assert.Equal(t, "    "+engine.LoadingText, loading[len(loading)-1])
	assert.True(t, strings.HasPrefix(loading[0], engine.GlyphOpen))
}
