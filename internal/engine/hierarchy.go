package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/overlay"
	"github.com/rshade/regdash/internal/tree"
)

// Placeholders shown when a level loads with no children.
const (
	NoChapters = "No chapters found for this agency."
	NoRules    = "No rules found for this chapter."
	NoText     = "No text available for this rule."
)

// Source fetches the children of each hierarchy level. *api.Client satisfies it.
type Source interface {
	Chapters(ctx context.Context, agencyID string) ([]model.Chapter, error)
	Rules(ctx context.Context, chapterID string) ([]model.Rule, error)
	RuleText(ctx context.Context, citation string) (*model.RuleText, error)
}

// MarkdownFunc turns rule markdown into display lines.
type MarkdownFunc func(markdown string) []string

// PlainMarkdown splits markdown into lines unchanged.
func PlainMarkdown(md string) []string {
	return strings.Split(strings.TrimRight(md, "\n"), "\n")
}

// AgencyNode is the root node type of the hierarchy.
type AgencyNode = tree.Node[model.Agency, model.Chapter]

// Hierarchy holds the three levels Agency -> Chapter -> Rule -> rule text.
type Hierarchy struct {
	Agencies *tree.Level[model.Agency, model.Chapter]
	Chapters *tree.Level[model.Chapter, model.Rule]
	Rules    *tree.Level[model.Rule, model.RuleText]
}

// NewHierarchy wires the levels to src. render formats rule markdown and
// defaults to PlainMarkdown.
func NewHierarchy(src Source, render MarkdownFunc) *Hierarchy {
	if render == nil {
		render = PlainMarkdown
	}
	h := &Hierarchy{}

	h.Rules = &tree.Level[model.Rule, model.RuleText]{
		Name: "rule text",
		Key:  func(r model.Rule) string { return r.Citation },
		Fetch: func(ctx context.Context, r model.Rule) ([]model.RuleText, error) {
			text, err := src.RuleText(ctx, r.Citation)
			if err != nil {
				return nil, err
			}
			if text == nil || text.Empty() {
				return nil, nil
			}
			return []model.RuleText{*text}, nil
		},
		Child: func(t model.RuleText) tree.Expandable {
			title := t.Title
			if title == "" {
				title = "Full text"
			}
			return &tree.Leaf{Title: title, Lines: render(t.Content)}
		},
		Label:  ruleLabel,
		Body:   ruleBody,
		Fields: ruleFields,
		Empty:  NoText,
	}

	h.Chapters = &tree.Level[model.Chapter, model.Rule]{
		Name: "rules",
		Key:  model.Chapter.Key,
		Fetch: func(ctx context.Context, c model.Chapter) ([]model.Rule, error) {
			return src.Rules(ctx, c.Key())
		},
		Child:          func(r model.Rule) tree.Expandable { return tree.NewNode(h.Rules, r) },
		Label:          chapterLabel,
		Body:           chapterBody,
		Fields:         chapterFields,
		Empty:          NoRules,
		SearchChildren: true,
	}

	h.Agencies = &tree.Level[model.Agency, model.Chapter]{
		Name: "chapters",
		Key:  model.Agency.Key,
		Fetch: func(ctx context.Context, a model.Agency) ([]model.Chapter, error) {
			return src.Chapters(ctx, a.Key())
		},
		Child:  func(c model.Chapter) tree.Expandable { return tree.NewNode(h.Chapters, c) },
		Label:  agencyLabel,
		Body:   agencyBody,
		Fields: AgencyFields,
		Empty:  NoChapters,
	}

	return h
}

// Agency returns a root node for a.
func (h *Hierarchy) Agency(a model.Agency) *AgencyNode {
	return tree.NewNode(h.Agencies, a)
}

// AgencyNodes wraps each agency as a root node, preserving order.
func (h *Hierarchy) AgencyNodes(agencies []model.Agency) []tree.Expandable {
	out := make([]tree.Expandable, len(agencies))
	for i, a := range agencies {
		out[i] = h.Agency(a)
	}
	return out
}

// AgencyFields projects an agency for search and sort.
func AgencyFields(a model.Agency) overlay.Fields {
	return overlay.Fields{
		Name:       a.Name,
		Keywords:   []string{a.Number},
		Words:      a.TotalWordCount,
		Complexity: a.ComplexityScore,
	}
}

func agencyLabel(a model.Agency) string {
	return fmt.Sprintf("%s  ·  Agency %s  ·  %s words", a.Name, a.Number, FormatThousands(a.TotalWordCount))
}

func agencyBody(a model.Agency) []string {
	lines := []string{"Last Updated: " + a.LastModifiedDate.Display()}
	if a.ComplexityScore != nil {
		lines = append(lines, "Complexity Score: "+FormatScore(a.ComplexityScore))
	}
	return lines
}

func chapterLabel(c model.Chapter) string {
	return fmt.Sprintf("Chapter %s: %s  ·  %s words", c.Number, c.Title, FormatThousands(c.TotalWordCount))
}

func chapterBody(c model.Chapter) []string {
	return []string{"Last Updated: " + c.LastModifiedDate.Display()}
}

func chapterFields(c model.Chapter) overlay.Fields {
	return overlay.Fields{
		Name:     c.Title,
		Keywords: []string{c.Number, "Chapter " + c.Number},
		Words:    c.TotalWordCount,
	}
}

func ruleLabel(r model.Rule) string {
	if r.Title == "" {
		return r.Citation
	}
	return r.Citation + "  " + r.Title
}

func ruleBody(r model.Rule) []string {
	var lines []string
	if r.Description != "" {
		lines = append(lines, r.Description)
	}
	if r.Text != "" {
		lines = append(lines, strings.Split(r.Text, "\n")...)
	}
	for _, s := range r.Subrules {
		line := s.Text
		if l := s.Label(); l != "" {
			line = l + " " + line
		}
		lines = append(lines, "  "+line)
		if s.Description != "" {
			lines = append(lines, "    "+s.Description)
		}
	}
	return lines
}

func ruleFields(r model.Rule) overlay.Fields {
	return overlay.Fields{Name: r.Title, Keywords: []string{r.Citation}}
}
