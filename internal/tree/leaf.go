package tree

import "github.com/rshade/regdash/internal/overlay"

// Leaf is a terminal entry with fixed body text and no fetch.
type Leaf struct {
	Title string
	Lines []string
}

func (l *Leaf) Label() string           { return l.Title }
func (l *Leaf) Body() []string          { return l.Lines }
func (l *Leaf) Placeholder() string     { return "" }
func (l *Leaf) IsOpen() bool            { return true }
func (l *Leaf) State() State            { return StateLoaded }
func (l *Leaf) Err() error              { return nil }
func (l *Leaf) Children() []Expandable  { return nil }
func (l *Leaf) Fields() overlay.Fields  { return overlay.Fields{Name: l.Title} }
func (l *Leaf) Toggle() (Request, bool) { return Request{}, false }
func (l *Leaf) Open() (Request, bool)   { return Request{}, false }
func (l *Leaf) Discard()                {}
