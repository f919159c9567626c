package tree

import "context"

// Request is a pending child fetch for one node.
type Request struct {
	Level string // level name, e.g. "chapters"
	Key   string // parent identifier the fetch is scoped to
	Token uint64

	fetch func(context.Context) Result
}

// Do performs the fetch. It is safe to call from any goroutine; it does not
// touch node state.
func (r Request) Do(ctx context.Context) Result {
	if r.fetch == nil {
		return Result{}
	}
	return r.fetch(ctx)
}

// Result is a completed fetch waiting to be applied.
type Result struct {
	apply func() bool
}

// Apply writes the outcome into the node. It must run on the goroutine that
// owns the tree. It reports false when the response was stale and dropped.
func (r Result) Apply() bool {
	if r.apply == nil {
		return false
	}
	return r.apply()
}
