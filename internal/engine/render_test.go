package engine_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/tree"
)

func TestParseOutputFormat(t *testing.T) {
	for _, s := range []string{"table", "JSON", " ndjson "} {
		_, err := engine.ParseOutputFormat(s)
		require.NoError(t, err, s)
	}
	_, err := engine.ParseOutputFormat("xml")
	require.Error(t, err)
}

func TestRenderCards(t *testing.T) {
	cards := engine.AgencyCards([]model.AgencyStat{
		{AgencyID: 1, Agency: strings.Repeat("Very Long Agency Name ", 4), RecentTotalWordCount: 12340, RecentRulesCount: 3},
	})

	var buf bytes.Buffer
	require.NoError(t, engine.RenderCards(&buf, engine.OutputTable, cards))
	out := buf.String()
	assert.Contains(t, out, "AGENCY")
	assert.Contains(t, out, "...")
	assert.Contains(t, out, "1 agencies")

	buf.Reset()
	require.NoError(t, engine.RenderCards(&buf, engine.OutputJSON, nil))
	assert.JSONEq(t, `[]`, buf.String())

	buf.Reset()
	require.NoError(t, engine.RenderCards(&buf, engine.OutputNDJSON, cards))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestRenderTree(t *testing.T) {
	h := engine.NewHierarchy(newFakeSource(), nil)
	roots := h.AgencyNodes([]model.Agency{{ID: 42, Name: "Transportation"}, {ID: 7, Name: "Revenue"}})
	require.NoError(t, engine.ExpandAll(context.Background(), roots[:1], 2, 1))

	var buf bytes.Buffer
	require.NoError(t, engine.RenderTree(&buf, engine.OutputTable, roots))
	out := buf.String()
	assert.Contains(t, out, engine.GlyphOpen+" Transportation")
	assert.Contains(t, out, engine.GlyphClosed+" Revenue")
	assert.Contains(t, out, "        "+engine.GlyphClosed+" 761-1.1  Definitions")
	assert.Contains(t, out, engine.NoRules)
	assert.Contains(t, out, "2 agencies")

	buf.Reset()
	require.NoError(t, engine.RenderTree(&buf, engine.OutputJSON, roots))
	var snaps []engine.TreeSnapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &snaps))
	require.Len(t, snaps, 2)
	assert.Equal(t, "loaded", snaps[0].State)
	require.Len(t, snaps[0].Children, 2)
	assert.Equal(t, engine.NoRules, snaps[0].Children[1].Placeholder)
	assert.Empty(t, snaps[1].Children)
	assert.False(t, snaps[1].Open)
}

func TestRenderAgency(t *testing.T) {
	score := 3.14159
	details := &model.AgencyDetails{Agency: model.Agency{ID: 42, Name: "Transportation", ComplexityScore: &score}, Year: 2024}
	root := engine.NewHierarchy(newFakeSource(), nil).Agency(details.Agency)
	require.NoError(t, engine.ExpandAll(context.Background(), []tree.Expandable{root}, 1, 1))

	var buf bytes.Buffer
	require.NoError(t, engine.RenderAgency(&buf, engine.OutputTable, details, root))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Transportation\nComplexity Score: 3.14\n"))
	assert.Contains(t, out, "Chapter 1: General Provisions")

	buf.Reset()
	require.NoError(t, engine.RenderAgency(&buf, engine.OutputJSON, details, root))
	var page engine.AgencyPage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &page))
	assert.Equal(t, 42, page.Agency.ID)
	assert.Len(t, page.Tree.Children, 2)
	if diff := cmp.Diff(engine.Snapshot(root), page.Tree); diff != "" {
		t.Errorf("JSON tree differs from Snapshot (-want +got):\n%s", diff)
	}
}

func TestAgencyHeaderOmitsMissingScore(t *testing.T) {
	lines := engine.AgencyHeader(&model.AgencyDetails{Agency: model.Agency{Name: "Revenue"}})
	assert.Equal(t, []string{"Revenue"}, lines)
}
