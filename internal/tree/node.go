// Package tree implements an expand-on-demand hierarchy whose nodes fetch
// their children the first time they are opened.
//
// A Level describes one depth of the hierarchy: how to fetch the children of
// an item, how to wrap each child as a node and how to label the item. A Node
// holds the per-item state. Fetching is split so the caller controls where it
// runs: Toggle returns a Request, Request.Do performs the fetch (off the UI
// goroutine), and Result.Apply writes the outcome back (on the UI goroutine).
// Each Request carries a token; Apply is a no-op if the node has since
// issued a newer token or been discarded.
package tree

import (
	"context"
	"fmt"

	"github.com/rshade/regdash/internal/overlay"
)

// State is the load state of a node's children.
type State int

// Load states.
const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Expandable is the type-erased view of a node used by renderers, so levels
// with different item types can be nested.
type Expandable interface {
	Label() string
	Body() []string
	Placeholder() string
	IsOpen() bool
	State() State
	Err() error
	Children() []Expandable
	Fields() overlay.Fields

	// Toggle flips the open state. It returns a Request when opening needs
	// a fetch.
	Toggle() (Request, bool)
	// Open opens the node if closed and returns a Request if a fetch is needed.
	Open() (Request, bool)
	// Discard drops any in-flight response and everything below the node.
	Discard()
}

// Level parameterizes one depth of the hierarchy. T is the item held by the
// node, C the child item type returned by Fetch.
type Level[T, C any] struct {
	// Name identifies the level in fetch requests ("chapters", "rules").
	Name string
	// Key returns the identifier a fetch is scoped to.
	Key func(T) string
	// Fetch loads the children of an item.
	Fetch func(ctx context.Context, item T) ([]C, error)
	// Child wraps a fetched child item as a node.
	Child func(C) Expandable
	// Label renders the one-line header for an item.
	Label func(T) string
	// Body returns detail lines shown while the node is open, above its children.
	Body func(T) []string
	// Fields projects the item for search and sort.
	Fields func(T) overlay.Fields
	// Empty is shown when a fetch succeeds with no children.
	Empty string
	// SearchChildren adds loaded children's names and keywords to Fields.
	SearchChildren bool
}

// Node is one entry in the hierarchy.
type Node[T, C any] struct {
	level    *Level[T, C]
	item     T
	open     bool
	state    State
	items    []C
	children []Expandable
	err      error
	token    uint64
}

// NewNode returns a closed, unloaded node for item.
func NewNode[T, C any](level *Level[T, C], item T) *Node[T, C] {
	return &Node[T, C]{level: level, item: item}
}

// Item returns the item the node wraps.
func (n *Node[T, C]) Item() T { return n.item }

// Items returns the fetched child items, nil until loaded.
func (n *Node[T, C]) Items() []C { return n.items }

// Key returns the identifier fetches are scoped to.
func (n *Node[T, C]) Key() string {
	if n.level.Key == nil {
		return ""
	}
	return n.level.Key(n.item)
}

func (n *Node[T, C]) Label() string {
	if n.level.Label == nil {
		return fmt.Sprint(n.item)
	}
	return n.level.Label(n.item)
}

func (n *Node[T, C]) Body() []string {
	if n.level.Body == nil {
		return nil
	}
	return n.level.Body(n.item)
}

func (n *Node[T, C]) Placeholder() string { return n.level.Empty }
func (n *Node[T, C]) IsOpen() bool        { return n.open }
func (n *Node[T, C]) State() State        { return n.state }
func (n *Node[T, C]) Err() error          { return n.err }

// Children returns the child nodes. It is empty unless State is StateLoaded.
func (n *Node[T, C]) Children() []Expandable { return n.children }

// Fields projects the item for search and sort. With SearchChildren set,
// loaded children contribute their names and keywords, and Rules falls back
// to the loaded child count.
func (n *Node[T, C]) Fields() overlay.Fields {
	var f overlay.Fields
	if n.level.Fields != nil {
		f = n.level.Fields(n.item)
	} else {
		f.Name = n.Label()
	}
	if n.level.SearchChildren && n.state == StateLoaded {
		for _, c := range n.children {
			cf := c.Fields()
			f.Keywords = append(f.Keywords, cf.Name)
			f.Keywords = append(f.Keywords, cf.Keywords...)
		}
		if f.Rules == 0 {
			f.Rules = len(n.children)
		}
	}
	return f
}

func (n *Node[T, C]) Toggle() (Request, bool) {
	n.open = !n.open
	if !n.open {
		return Request{}, false
	}
	return n.load()
}

func (n *Node[T, C]) Open() (Request, bool) {
	n.open = true
	return n.load()
}

// Close closes the node without touching its children.
func (n *Node[T, C]) Close() { n.open = false }

func (n *Node[T, C]) Discard() {
	n.token++
	if n.state == StateLoading {
		n.state = StateIdle
	}
	for _, c := range n.children {
		c.Discard()
	}
}

// load issues a fetch unless the children are cached or one is in flight.
func (n *Node[T, C]) load() (Request, bool) {
	if n.state == StateLoaded || n.state == StateLoading {
		return Request{}, false
	}
	if n.level.Fetch == nil {
		n.resolveEmpty()
		return Request{}, false
	}

	n.token++
	token := n.token
	n.state = StateLoading
	n.err = nil

	item := n.item
	fetch := n.level.Fetch
	return Request{
		Level: n.level.Name,
		Key:   n.Key(),
		Token: token,
		fetch: func(ctx context.Context) Result {
			kids, err := fetch(ctx, item)
			return Result{apply: func() bool { return n.resolve(token, kids, err) }}
		},
	}, true
}

func (n *Node[T, C]) resolveEmpty() {
	n.state = StateLoaded
	n.items = nil
	n.children = nil
}

// resolve applies a fetch outcome if token is still current.
func (n *Node[T, C]) resolve(token uint64, kids []C, err error) bool {
	if token != n.token || n.state != StateLoading {
		return false
	}
	if err != nil {
		n.state = StateError
		n.err = err
		n.items = nil
		n.children = nil
		return true
	}
	n.state = StateLoaded
	n.err = nil
	n.items = kids
	n.children = make([]Expandable, 0, len(kids))
	if n.level.Child != nil {
		for _, k := range kids {
			n.children = append(n.children, n.level.Child(k))
		}
	}
	return true
}
