package overlay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/regdash/internal/overlay"
)

func ptr(f float64) *float64 { return &f }

func names(fs []overlay.Fields) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Name
	}
	return out
}

func identity(f overlay.Fields) overlay.Fields { return f }

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Transport", "transport"},
		{"TRÁNSPORT", "transport"},
		{"Dépârtement de l'Économie", "departement de leconomie"},
		{"Chapter 12-A: Fees!", "chapter 12a fees"},
		{"naïve café", "naive cafe"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, overlay.Normalize(tt.in))
		})
	}
}

func TestFilterTransport(t *testing.T) {
	items := []overlay.Fields{
		{Name: "Department of Transportation"},
		{Name: "Revenue Department"},
		{Name: "TRANSPORT Safety Board"},
		{Name: "Trânsport Authority"},
		{Name: "Trans-port Office"},
	}

	got := overlay.Apply(items, identity, "transport", overlay.SortName)

	assert.Equal(t, []string{
		"Department of Transportation",
		"Trans-port Office",
		"TRANSPORT Safety Board",
		"Trânsport Authority",
	}, names(got))
}

func TestMatchesKeywords(t *testing.T) {
	chapter := overlay.Fields{Name: "Chapter 5", Keywords: []string{"Motor Carriers", "761-5.1"}}

	assert.True(t, overlay.Matches(chapter, "carriers"))
	assert.True(t, overlay.Matches(chapter, "7615"))
	assert.True(t, overlay.Matches(chapter, ""))
	assert.True(t, overlay.Matches(chapter, "!!!"))
	assert.False(t, overlay.Matches(chapter, "aviation"))
}

func TestComplexityNullSortsLast(t *testing.T) {
	orders := [][]overlay.Fields{
		{{Name: "null", Complexity: nil}, {Name: "scored", Complexity: ptr(2.3)}},
		{{Name: "scored", Complexity: ptr(2.3)}, {Name: "null", Complexity: nil}},
	}
	for _, items := range orders {
		got := overlay.Apply(items, identity, "", overlay.SortComplexity)
		assert.Equal(t, []string{"scored", "null"}, names(got))
	}
}

func TestSortKeys(t *testing.T) {
	items := []overlay.Fields{
		{Name: "bravo", Words: 10, Rules: 3, Complexity: ptr(1)},
		{Name: "Alpha", Words: 30, Rules: 1, Complexity: ptr(0)},
		{Name: "charlie", Words: 20, Rules: 2},
	}

	assert.Equal(t, []string{"Alpha", "charlie", "bravo"}, names(overlay.Apply(items, identity, "", overlay.SortWords)))
	assert.Equal(t, []string{"bravo", "charlie", "Alpha"}, names(overlay.Apply(items, identity, "", overlay.SortRules)))
	assert.Equal(t, []string{"bravo", "Alpha", "charlie"}, names(overlay.Apply(items, identity, "", overlay.SortComplexity)))
	assert.Equal(t, []string{"Alpha", "bravo", "charlie"}, names(overlay.Apply(items, identity, "", overlay.SortName)))
}

func TestSortIsStable(t *testing.T) {
	items := []overlay.Fields{
		{Name: "first", Words: 5},
		{Name: "second", Words: 5},
		{Name: "third", Words: 5},
		{Name: "top", Words: 9},
	}

	got := overlay.Apply(items, identity, "", overlay.SortWords)
	assert.Equal(t, []string{"top", "first", "second", "third"}, names(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := []overlay.Fields{{Name: "b", Words: 1}, {Name: "a", Words: 2}}
	_ = overlay.Apply(items, identity, "", overlay.SortWords)
	assert.Equal(t, "b", items[0].Name)
}

func TestParseSortKey(t *testing.T) {
	for _, k := range overlay.SortKeys() {
		got, err := overlay.ParseSortKey(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}

	got, err := overlay.ParseSortKey("Agency")
	require.NoError(t, err)
	assert.Equal(t, overlay.SortName, got)

	_, err = overlay.ParseSortKey("size")
	require.Error(t, err)
}

func TestSortKeyNextCycles(t *testing.T) {
	assert.Equal(t, overlay.SortRules, overlay.SortWords.Next())
	assert.Equal(t, overlay.SortWords, overlay.SortName.Next())
}
