package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/tree"
)

// OutputFormat selects how non-interactive commands print results.
type OutputFormat string

// Supported output formats.
const (
	OutputTable  OutputFormat = "table"
	OutputJSON   OutputFormat = "json"
	OutputNDJSON OutputFormat = "ndjson"
)

// ParseOutputFormat validates s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputTable, OutputJSON, OutputNDJSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format %q (want table, json or ndjson)", s)
}

const (
	tabwriterPadding = 2
	nameColWidth     = 48
	barWidth         = 30
	truncateMinLen   = 3
)

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= truncateMinLen {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func writeNDJSON[T any](w io.Writer, items []T) error {
	for _, it := range items {
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("marshaling row: %w", err)
		}
		if _, err = fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("writing NDJSON line: %w", err)
		}
	}
	return nil
}

// RenderCards writes agency cards in format.
func RenderCards(w io.Writer, format OutputFormat, cards []AgencyCard) error {
	switch format {
	case OutputJSON:
		if cards == nil {
			cards = []AgencyCard{}
		}
		return writeJSON(w, cards)
	case OutputNDJSON:
		return writeNDJSON(w, cards)
	case OutputTable:
	}

	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	fmt.Fprintln(tw, "AGENCY\tWORDS\tRULES\tCOMPLEXITY\tTREND")
	fmt.Fprintln(tw, "------\t-----\t-----\t----------\t-----")
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			truncate(c.Name, nameColWidth), c.WordsLabel, c.Rules, c.Score, c.Sparkline())
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	_, err := fmt.Fprintf(w, "\n%d agencies\n", len(cards))
	return err
}

// ndjsonRecord tags each dashboard line with its section.
type ndjsonRecord struct {
	Section string `json:"section"`
	Data    any    `json:"data"`
}

// RenderDashboard writes the dashboard in format.
func RenderDashboard(w io.Writer, format OutputFormat, d *Dashboard) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, d)
	case OutputNDJSON:
		recs := []ndjsonRecord{{Section: "bureaucracy_index", Data: map[string]any{"year": d.IndexYear, "value": d.Index}}}
		for _, p := range d.RulesOverTime {
			recs = append(recs, ndjsonRecord{Section: SectionNewRules, Data: p})
		}
		for _, e := range d.Timeline {
			recs = append(recs, ndjsonRecord{Section: SectionTimeline, Data: e})
		}
		for _, v := range d.Volume {
			recs = append(recs, ndjsonRecord{Section: SectionVolume, Data: v})
		}
		for _, c := range d.Cards {
			recs = append(recs, ndjsonRecord{Section: SectionAgencies, Data: c})
		}
		for _, e := range d.Errors {
			recs = append(recs, ndjsonRecord{Section: "error", Data: e})
		}
		return writeNDJSON(w, recs)
	case OutputTable:
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Bureaucracy Index (%d): %s\n", d.IndexYear, d.Index)
	b.WriteString("Agency rules created for each law passed.\n")

	section := func(title, key string, body func(tw *tabwriter.Writer)) {
		fmt.Fprintf(&b, "\n%s\n", title)
		if msg := d.SectionErr(key); msg != "" {
			fmt.Fprintf(&b, "  error: %s\n", msg)
			return
		}
		tw := tabwriter.NewWriter(&b, 0, 0, tabwriterPadding, ' ', 0)
		body(tw)
		_ = tw.Flush()
	}

	section("Rules over time", SectionNewRules, func(tw *tabwriter.Writer) {
		maxRules := 0.0
		for _, p := range d.RulesOverTime {
			maxRules = max(maxRules, float64(p.Rules))
		}
		fmt.Fprintln(tw, "YEAR\tRULES\tLAWS\tPER LAW\t")
		for _, p := range d.RulesOverTime {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", p.Year,
				FormatCompact(float64(p.Rules)), FormatCompact(float64(p.Laws)), p.Ratio,
				Bar(float64(p.Rules), maxRules, barWidth))
		}
	})

	section("Agency timeline", SectionTimeline, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "YEAR\tCHANGE\tAGENCIES")
		for _, e := range d.Timeline {
			fmt.Fprintf(tw, "%d\t%+d\t%s\n", e.Year, e.Value, strings.Join(e.Agencies, ", "))
		}
	})

	section("Total rule volume", SectionVolume, func(tw *tabwriter.Writer) {
		maxWords := 0.0
		for _, v := range d.Volume {
			maxWords = max(maxWords, float64(v.TotalWordCount))
		}
		fmt.Fprintln(tw, "YEAR\tRULES\tWORDS\t")
		for _, v := range d.Volume {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", v.Year,
				FormatThousands(int64(v.TotalRules)), FormatWordsAxis(float64(v.TotalWordCount)),
				Bar(float64(v.TotalWordCount), maxWords, barWidth))
		}
	})

	fmt.Fprintf(&b, "\nAgencies\n")
	if msg := d.SectionErr(SectionAgencies); msg != "" {
		fmt.Fprintf(&b, "  error: %s\n", msg)
		_, err := io.WriteString(w, b.String())
		return err
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return RenderCards(w, OutputTable, d.Cards)
}

// TreeSnapshot is the serializable state of one node and its visible subtree.
type TreeSnapshot struct {
	Label       string         `json:"label"`
	State       string         `json:"state"`
	Open        bool           `json:"open"`
	Error       string         `json:"error,omitempty"`
	Body        []string       `json:"body,omitempty"`
	Placeholder string         `json:"placeholder,omitempty"`
	Children    []TreeSnapshot `json:"children,omitempty"`
}

// Snapshot captures n. Children are included only for open, loaded nodes.
func Snapshot(n tree.Expandable) TreeSnapshot {
	s := TreeSnapshot{Label: n.Label(), State: n.State().String(), Open: n.IsOpen()}
	if err := n.Err(); err != nil {
		s.Error = err.Error()
	}
	if !n.IsOpen() {
		return s
	}
	s.Body = n.Body()
	if n.State() == tree.StateLoaded {
		kids := n.Children()
		if len(kids) == 0 {
			s.Placeholder = n.Placeholder()
		}
		for _, c := range kids {
			s.Children = append(s.Children, Snapshot(c))
		}
	}
	return s
}

// Tree glyphs.
const (
	GlyphClosed  = "▸"
	GlyphOpen    = "▾"
	GlyphLeaf    = "•"
	LoadingText  = "Loading..."
	indentString = "    "
)

// TreeLines renders n as indented plain text, the same shape the interactive
// accordion shows.
func TreeLines(n tree.Expandable, depth int) []string {
	indent := strings.Repeat(indentString, depth)
	glyph := GlyphClosed
	switch {
	case isLeaf(n):
		glyph = GlyphLeaf
	case n.IsOpen():
		glyph = GlyphOpen
	}
	lines := []string{indent + glyph + " " + n.Label()}
	if !n.IsOpen() {
		return lines
	}

	inner := indent + indentString
	for _, l := range n.Body() {
		lines = append(lines, inner+l)
	}
	switch n.State() {
	case tree.StateLoading:
		lines = append(lines, inner+LoadingText)
	case tree.StateError:
		lines = append(lines, inner+n.Err().Error())
	case tree.StateLoaded:
		if len(n.Children()) == 0 && n.Placeholder() != "" {
			lines = append(lines, inner+n.Placeholder())
		}
		for _, c := range n.Children() {
			lines = append(lines, TreeLines(c, depth+1)...)
		}
	case tree.StateIdle:
	}
	return lines
}

func isLeaf(n tree.Expandable) bool {
	_, ok := n.(*tree.Leaf)
	return ok
}

// RenderTree writes roots in format.
func RenderTree(w io.Writer, format OutputFormat, roots []tree.Expandable) error {
	snaps := make([]TreeSnapshot, len(roots))
	for i, r := range roots {
		snaps[i] = Snapshot(r)
	}
	switch format {
	case OutputJSON:
		return writeJSON(w, snaps)
	case OutputNDJSON:
		return writeNDJSON(w, snaps)
	case OutputTable:
	}
	for _, r := range roots {
		for _, l := range TreeLines(r, 0) {
			if _, err := fmt.Fprintln(w, l); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(w, strconv.Itoa(len(roots))+" agencies")
	return err
}

// AgencyPage is the serializable agency details view.
type AgencyPage struct {
	Agency model.AgencyDetails `json:"agency"`
	Tree   TreeSnapshot        `json:"tree"`
}

// AgencyHeader returns the lines shown above an agency's tree: its name and,
// when present, its complexity score.
func AgencyHeader(d *model.AgencyDetails) []string {
	lines := []string{d.Name}
	if d.ComplexityScore != nil {
		lines = append(lines, "Complexity Score: "+FormatScore(d.ComplexityScore))
	}
	return lines
}

// RenderAgency writes the agency details page in format.
func RenderAgency(w io.Writer, format OutputFormat, d *model.AgencyDetails, root tree.Expandable) error {
	page := AgencyPage{Agency: *d, Tree: Snapshot(root)}
	switch format {
	case OutputJSON:
		return writeJSON(w, page)
	case OutputNDJSON:
		return writeNDJSON(w, []AgencyPage{page})
	case OutputTable:
	}
	lines := append(AgencyHeader(d), "")
	lines = append(lines, TreeLines(root, 0)...)
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
