package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// RenderFunc renders one item. selected is true for the cursor row.
type RenderFunc[T any] func(item T, selected bool) string

// Model is a cursor over a list of items that renders only the rows inside
// its viewport. The owner replaces the items whenever the underlying data
// changes; the cursor index is clamped but otherwise kept.
type Model[T any] struct {
	items    []T
	render   RenderFunc[T]
	selected int
	offset   int // first visible index
	height   int
}

// New returns an empty list with a viewport of height rows.
func New[T any](render RenderFunc[T], height int) Model[T] {
	return Model[T]{render: render, height: max(1, height)}
}

// SetItems replaces the items and clamps the cursor.
func (m *Model[T]) SetItems(items []T) {
	m.items = items
	m.SetSelected(m.selected)
}

// Items returns the current items.
func (m *Model[T]) Items() []T { return m.items }

// Len returns the number of items.
func (m *Model[T]) Len() int { return len(m.items) }

// SetHeight resizes the viewport.
func (m *Model[T]) SetHeight(h int) {
	m.height = max(1, h)
	m.scrollToSelected()
}

// Height returns the viewport height.
func (m *Model[T]) Height() int { return m.height }

// Selected returns the cursor index.
func (m *Model[T]) Selected() int { return m.selected }

// Offset returns the index of the first visible row.
func (m *Model[T]) Offset() int { return m.offset }

// SetSelected moves the cursor to index, clamped to the item range.
func (m *Model[T]) SetSelected(index int) {
	switch {
	case len(m.items) == 0:
		m.selected = 0
	case index < 0:
		m.selected = 0
	case index >= len(m.items):
		m.selected = len(m.items) - 1
	default:
		m.selected = index
	}
	m.scrollToSelected()
}

// SelectedItem returns the item under the cursor.
func (m *Model[T]) SelectedItem() (T, bool) {
	var zero T
	if m.selected < 0 || m.selected >= len(m.items) {
		return zero, false
	}
	return m.items[m.selected], true
}

// HandleKey applies navigation keys. It reports whether msg was consumed.
//
//nolint:exhaustive // only navigation keys are handled
func (m *Model[T]) HandleKey(msg tea.KeyMsg) bool {
	switch msg.Type {
	case tea.KeyUp:
		m.SetSelected(m.selected - 1)
	case tea.KeyDown:
		m.SetSelected(m.selected + 1)
	case tea.KeyPgUp:
		m.SetSelected(m.selected - m.height)
	case tea.KeyPgDown:
		m.SetSelected(m.selected + m.height)
	case tea.KeyHome:
		m.SetSelected(0)
	case tea.KeyEnd:
		m.SetSelected(len(m.items) - 1)
	case tea.KeyRunes:
		switch msg.String() {
		case "j":
			m.SetSelected(m.selected + 1)
		case "k":
			m.SetSelected(m.selected - 1)
		case "g":
			m.SetSelected(0)
		case "G":
			m.SetSelected(len(m.items) - 1)
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// scrollToSelected moves the viewport the minimum distance needed to keep
// the cursor visible.
func (m *Model[T]) scrollToSelected() {
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+m.height {
		m.offset = m.selected - m.height + 1
	}
	if maxOffset := max(0, len(m.items)-m.height); m.offset > maxOffset {
		m.offset = maxOffset
	}
	m.offset = max(0, m.offset)
}

// View renders the visible rows.
func (m Model[T]) View() string {
	if len(m.items) == 0 || m.render == nil {
		return ""
	}
	end := min(len(m.items), m.offset+m.height)
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.render(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}
