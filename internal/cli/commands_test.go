package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/regdash/internal/cli"
	"github.com/rshade/regdash/internal/config"
)

// fakeAPI serves a small, fixed data set. Paths missing from routes return 404.
type fakeAPI struct {
	srv      *httptest.Server
	requests atomic.Int32
}

//nolint:gochecknoglobals // fixture table
var routes = map[string]string{
	"/api/v1/agencies/by-year/2024": `[
		{"id":7,"agency_name":"Board of Nursing","agency_number":"655","total_word_count":500,"complexity_score":2.3},
		{"id":42,"agency_name":"Department of Transportation","agency_number":"761","total_word_count":18248,"complexity_score":null}
	]`,
	"/api/v1/agencies/year/7/chapters":        `[{"id":70,"chapter_number":"1","chapter_title":"Definitions","total_word_count":120}]`,
	"/api/v1/agencies/chapters/70/rules":      `[{"id":1,"citation":"655-1.1","rule_title":"Scope"}]`,
	"/api/v1/openlaws/rule/655-1.1":           `{"citation":"655-1.1","title":"Scope","content":"# Scope\n\nApplies to nurses."}`,
	"/api/v1/openlaws/rule/655-9.9":           `{"citation":"655-9.9","content":"  "}`,
	"/api/v1/agencies/agency/7/2024/details":  `{"id":7,"agency_name":"Board of Nursing","agency_number":"655","total_word_count":500,"complexity_score":2.3}`,
	"/api/v1/agencies/agency/42/2024/details": `{"agency_name":"Department of Transportation","agency_number":"761","total_word_count":18248}`,
	"/api/v1/agencies/rules/new":              `[{"year":2023,"new_rules_count":900,"total_laws":100},{"year":2024,"new_rules_count":1500,"total_laws":150}]`,
	"/api/v1/agencies/total_rule_volume":      `[{"year":2023,"total_rules":4200,"total_word_count":2500000}]`,
	"/api/v1/agencies/stats/agency": `[
		{"agency_id":7,"agency":"Board of Nursing","recent_total_word_count":500,"recent_rules_count":3,"complexity_score":2.3,
		 "yearly_stats":[{"year":2022,"total_word_count":400,"rules_count":2},{"year":2023,"total_word_count":500,"rules_count":3}]},
		{"agency_id":42,"agency":"Department of Transportation","recent_total_word_count":18248,"recent_rules_count":40,"complexity_score":null,
		 "yearly_stats":[]}
	]`,
}

// failing paths answer HTTP 500.
//
//nolint:gochecknoglobals // fixture table
var failing = map[string]bool{
	"/api/v1/agencies/year/42/chapters": true,
	"/api/v1/agencies/timeline":         true,
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if failing[r.URL.Path] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

// setupCLITest isolates config and logging from the developer's machine.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv(config.EnvHome, home)
	t.Setenv(config.EnvAPIURL, "")
	t.Setenv(config.EnvCacheTTL, "")
	t.Setenv(config.EnvProjectDir, "")
	t.Setenv(config.EnvLogLevel, "error")
	t.Cleanup(func() {
		config.ResetGlobalConfigForTest()
		config.SetResolvedProjectDir("")
	})
	return home
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func executeAPI(t *testing.T, f *fakeAPI, args ...string) (string, error) {
	t.Helper()
	return execute(t, append(args, "--api-url", f.srv.URL, "--no-cache")...)
}

func TestDashboard_Plain(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "dashboard", "--plain")
	require.NoError(t, err)

	assert.Contains(t, out, "Bureaucracy Index (2024): 10.0")
	assert.Contains(t, out, "error: Failed to fetch timeline data: HTTP 500 Internal Server Error",
		"a failed section reports inline")
	assert.Contains(t, out, "4,200")
	assert.Contains(t, out, "Board of Nursing")
}

func TestDashboard_JSONWithYear(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "dashboard", "--year", "2023", "--output", "json")
	require.NoError(t, err)

	var got struct {
		IndexYear int    `json:"index_year"`
		Index     string `json:"bureaucracy_index"`
		Errors    []struct {
			Section string `json:"section"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2023, got.IndexYear)
	assert.Equal(t, "9.0", got.Index)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, "timeline", got.Errors[0].Section)
}

func TestAgencies_SearchAndSort(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "agencies", "--search", "TRANSPÓRT", "--output", "json")
	require.NoError(t, err)

	var cards []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Department of Transportation", cards[0]["agency"])

	out, err = executeAPI(t, f, "agencies", "--sort", "complexity", "--plain")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Board of Nursing")),
		bytes.Index([]byte(out), []byte("Department of Transportation")),
		"a missing score sorts after 2.3")
	assert.Contains(t, out, "2 agencies")
}

func TestAgencies_BadSortKey(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	_, err := executeAPI(t, f, "agencies", "--sort", "size")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown sort key")
}

func TestExplore_PlainExpandsToDepth(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "explore", "--search", "nursing", "--depth", "3", "--plain")
	require.NoError(t, err)

	assert.Contains(t, out, "▾ Board of Nursing")
	assert.Contains(t, out, "Chapter 1: Definitions")
	assert.Contains(t, out, "655-1.1  Scope")
	assert.Contains(t, out, "Applies to nurses.")
	assert.NotContains(t, out, "Department of Transportation")
	assert.Contains(t, out, "1 agencies")
}

func TestExplore_ChapterErrorIsInline(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "explore", "--depth", "1", "--plain")
	require.NoError(t, err, "a failed node does not fail the command")
	assert.Contains(t, out, "Failed to fetch chapters: HTTP 500 Internal Server Error")
	assert.Contains(t, out, "Chapter 1: Definitions")
}

func TestExplore_JSONDefaultsToWordsDesc(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "explore", "--output", "json")
	require.NoError(t, err)

	var snaps []struct {
		Label string `json:"label"`
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snaps))
	require.Len(t, snaps, 2)
	assert.Contains(t, snaps[0].Label, "Department of Transportation")
	assert.Equal(t, "idle", snaps[0].State, "depth 0 fetches nothing below the agencies")
}

func TestExplore_RejectsDepth(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	_, err := executeAPI(t, f, "explore", "--depth", "4")
	require.Error(t, err)
	assert.Equal(t, int32(0), f.requests.Load())
}

func TestAgency_Plain(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "agency", "7", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Board of Nursing\nComplexity Score: 2.30\n")
	assert.Contains(t, out, "Chapter 1: Definitions")
}

func TestAgency_MissingScoreAndIDFallback(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "agency", "42", "--output", "json")
	require.NoError(t, err)

	var page struct {
		Agency struct {
			ID    int      `json:"id"`
			Score *float64 `json:"complexity_score"`
		} `json:"agency"`
		Tree struct {
			Error string `json:"error"`
		} `json:"tree"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &page))
	assert.Equal(t, 42, page.Agency.ID)
	assert.Nil(t, page.Agency.Score)
	assert.Equal(t, "Failed to fetch chapters: HTTP 500 Internal Server Error", page.Tree.Error)
}

func TestAgency_InvalidID(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	_, err := executeAPI(t, f, "agency", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive integer")
}

func TestRule(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "rule", "655-1.1", "--raw")
	require.NoError(t, err)
	assert.Equal(t, "# Scope\n\nApplies to nurses.\n", out)

	out, err = executeAPI(t, f, "rule", "655-1.1")
	require.NoError(t, err)
	assert.Contains(t, out, "Applies to nurses.")

	out, err = executeAPI(t, f, "rule", "655-9.9")
	require.NoError(t, err)
	assert.Equal(t, "No text available for this rule.\n", out)

	_, err = executeAPI(t, f, "rule", "000-0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to fetch rule text: HTTP 404 Not Found")
}

func TestConfigCommands(t *testing.T) {
	home := setupCLITest(t)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(home, "config.yaml"))

	_, err = execute(t, "config", "init")
	require.Error(t, err, "init refuses to overwrite")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)

	_, err = execute(t, "config", "set", "api.base_url", "https://stats.example.org")
	require.NoError(t, err)

	out, err = execute(t, "config", "get", "api.base_url")
	require.NoError(t, err)
	assert.Equal(t, "https://stats.example.org\n", out)

	_, err = execute(t, "config", "set", "output.default_format", "xml")
	require.Error(t, err)

	_, err = execute(t, "config", "get", "api.nope")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	out, err = execute(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "dashboard.index_year")
	assert.Contains(t, out, "https://stats.example.org")

	out, err = execute(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "API: https://stats.example.org")
}

func TestConfigSet_DoesNotPersistEnvironment(t *testing.T) {
	home := setupCLITest(t)
	t.Setenv(config.EnvAPIURL, "https://env.example.gov")

	_, err := execute(t, "config", "set", "dashboard.index_year", "2020")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "env.example.gov")
	assert.Contains(t, string(data), "index_year: 2020")
}

func TestConfigValidate_Invalid(t *testing.T) {
	home := setupCLITest(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"),
		[]byte("config_version: 9.0.0\n"), 0o600))

	_, err := execute(t, "config", "validate")
	require.ErrorIs(t, err, config.ErrUnsupportedVersion)
}

func TestCacheCommands(t *testing.T) {
	home := setupCLITest(t)
	f := newFakeAPI(t)

	// Populate the cache with one response.
	_, err := execute(t, "agencies", "--output", "json", "--api-url", f.srv.URL)
	require.NoError(t, err)
	entries, err := os.ReadDir(filepath.Join(home, "cache"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	before := f.requests.Load()
	_, err = execute(t, "agencies", "--output", "json", "--api-url", f.srv.URL)
	require.NoError(t, err)
	assert.Equal(t, before, f.requests.Load(), "second run is served from the cache")

	out, err := execute(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Entries:   1 (0 expired)")
	assert.Contains(t, out, "TTL:       1h")

	out, err = execute(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 expired responses")

	out, err = execute(t, "cache", "clear", "--no-cache")
	require.NoError(t, err, "clear works on a disabled cache")
	assert.Contains(t, out, "Removed 1 cached responses")
}

func TestCacheTTLFlag(t *testing.T) {
	setupCLITest(t)

	_, err := execute(t, "cache", "stats", "--cache-ttl", "soon")
	require.Error(t, err)

	out, err := execute(t, "cache", "stats", "--cache-ttl", "30m")
	require.NoError(t, err)
	assert.Contains(t, out, "TTL:       30m")
}

func TestPaginationFlags(t *testing.T) {
	setupCLITest(t)
	f := newFakeAPI(t)

	out, err := executeAPI(t, f, "agencies", "--limit", "1", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Department of Transportation")
	assert.NotContains(t, out, "Board of Nursing")
	assert.Contains(t, out, "Showing 1-1 of 2")

	out, err = executeAPI(t, f, "explore", "--page", "2", "--page-size", "1", "--depth", "1", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "Chapter 1: Definitions")
	assert.NotContains(t, out, "Failed to fetch chapters", "agencies outside the page are not expanded")
	assert.Contains(t, out, "Showing 2-2 of 2 (page 2 of 2)")

	_, err = executeAPI(t, f, "agencies", "--page", "1", "--offset", "3")
	require.Error(t, err)
}
