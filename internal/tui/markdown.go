package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/rshade/regdash/internal/engine"
)

const defaultWrap = 80

// NewMarkdownRenderer returns a glamour renderer wrapping at width columns.
// styled=false selects the "notty" style for piped output.
func NewMarkdownRenderer(width int, styled bool) (*glamour.TermRenderer, error) {
	if width <= 0 {
		width = defaultWrap
	}
	style := glamour.WithStylePath("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	return glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
}

// MarkdownLines adapts r to the hierarchy's rule text renderer. A render
// failure falls back to the raw markdown.
func MarkdownLines(r *glamour.TermRenderer) engine.MarkdownFunc {
	if r == nil {
		return engine.PlainMarkdown
	}
	return func(md string) []string {
		out, err := r.Render(md)
		if err != nil {
			return engine.PlainMarkdown(md)
		}
		return strings.Split(strings.Trim(out, "\n"), "\n")
	}
}
