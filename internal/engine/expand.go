package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/regdash/internal/tree"
)

// DefaultExpandConcurrency bounds concurrent fetches during ExpandAll.
const DefaultExpandConcurrency = 4

// ExpandAll opens nodes breadth-first down to depth levels (1 opens the
// roots only). Fetches at each depth run concurrently; results are applied
// sequentially on the calling goroutine. Failed nodes keep their error and
// their subtree is not descended.
func ExpandAll(ctx context.Context, roots []tree.Expandable, depth, concurrency int) error {
	if concurrency < 1 {
		concurrency = DefaultExpandConcurrency
	}
	frontier := roots
	for d := 0; d < depth && len(frontier) > 0; d++ {
		var reqs []tree.Request
		for _, n := range frontier {
			if req, ok := n.Open(); ok {
				reqs = append(reqs, req)
			}
		}

		results := make([]tree.Result, len(reqs))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for i, req := range reqs {
			g.Go(func() error {
				results[i] = req.Do(gctx)
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for _, r := range results {
			r.Apply()
		}

		var next []tree.Expandable
		for _, n := range frontier {
			if n.State() == tree.StateLoaded {
				next = append(next, n.Children()...)
			}
		}
		frontier = next
	}
	return ctx.Err()
}
