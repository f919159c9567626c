package pagination

import "fmt"

// Meta describes the window Apply selected.
type Meta struct {
	Start      int  `json:"start"` // 1-based, 0 when the window is empty
	End        int  `json:"end"`   // 0 when the window is empty
	TotalItems int  `json:"total_items"`
	Page       int  `json:"page,omitempty"`
	TotalPages int  `json:"total_pages,omitempty"`
	HasNext    bool `json:"has_next"`
}

// NewMeta computes metadata for total items.
func NewMeta(p Params, total int) Meta {
	start, end := p.Window(total)
	m := Meta{TotalItems: total, HasNext: end < total}
	if end > start {
		m.Start, m.End = start+1, end
	}
	if p.IsPageBased() {
		size := p.pageSize()
		m.Page = start/size + 1
		m.TotalPages = (total + size - 1) / size
	}
	return m
}

// Footer renders "Showing 11-20 of 42" plus the page when page-based.
func (m Meta) Footer() string {
	s := fmt.Sprintf("Showing %d-%d of %d", m.Start, m.End, m.TotalItems)
	if m.TotalPages > 0 {
		s += fmt.Sprintf(" (page %d of %d)", m.Page, m.TotalPages)
	}
	return s
}
