package pagination

import (
	"errors"

	"github.com/spf13/cobra"
)

// Validation limits.
const (
	MaxLimit    = 10000
	MaxPageSize = 1000
)

// Validation errors.
var (
	ErrNegative             = errors.New("pagination values cannot be negative")
	ErrLimitTooLarge        = errors.New("limit must be at most 10000")
	ErrPageSizeTooLarge     = errors.New("page-size must be at most 1000")
	ErrMixedPaginationModes = errors.New("cannot use both offset-based (--offset) and page-based (--page) pagination")
	ErrPageSizeWithoutPage  = errors.New("--page-size requires --page to be set")
)

// DefaultPageSize applies when --page is given without --page-size.
const DefaultPageSize = 50

// Params holds the pagination flags. The zero value disables pagination.
type Params struct {
	Limit    int
	Offset   int
	Page     int
	PageSize int
}

// Register adds --limit, --offset, --page and --page-size to cmd.
func (p *Params) Register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Limit, "limit", 0, "maximum number of items to print (0 = all)")
	cmd.Flags().IntVar(&p.Offset, "offset", 0, "number of items to skip")
	cmd.Flags().IntVar(&p.Page, "page", 0, "1-based page number")
	cmd.Flags().IntVar(&p.PageSize, "page-size", 0, "items per page with --page (default 50)")
}

// Validate checks bounds and that the two modes are not mixed.
func (p Params) Validate() error {
	if p.Limit < 0 || p.Offset < 0 || p.Page < 0 || p.PageSize < 0 {
		return ErrNegative
	}
	if p.Limit > MaxLimit {
		return ErrLimitTooLarge
	}
	if p.PageSize > MaxPageSize {
		return ErrPageSizeTooLarge
	}
	if p.Page > 0 && p.Offset > 0 {
		return ErrMixedPaginationModes
	}
	if p.Page == 0 && p.PageSize > 0 {
		return ErrPageSizeWithoutPage
	}
	return nil
}

// IsPageBased reports whether page-based pagination is active.
func (p Params) IsPageBased() bool { return p.Page > 0 }

// IsEnabled reports whether any pagination flag is set.
func (p Params) IsEnabled() bool {
	return p.Limit > 0 || p.Offset > 0 || p.Page > 0
}

func (p Params) pageSize() int {
	if p.PageSize > 0 {
		return p.PageSize
	}
	return DefaultPageSize
}

// Window returns the half-open range [start, end) of total items to show.
// A page past the end is capped to the last page; an offset past the end
// yields an empty window.
func (p Params) Window(total int) (int, int) {
	if !p.IsEnabled() {
		return 0, total
	}
	var start, limit int
	if p.IsPageBased() {
		size := p.pageSize()
		start = (p.Page - 1) * size
		if total > 0 && start >= total {
			start = ((total - 1) / size) * size
		}
		limit = size
	} else {
		start = p.Offset
		limit = p.Limit
	}
	if start >= total {
		return total, total
	}
	end := total
	if limit > 0 && start+limit < total {
		end = start + limit
	}
	return start, end
}

// Apply returns the window of items selected by p.
func Apply[T any](p Params, items []T) []T {
	start, end := p.Window(len(items))
	return items[start:end]
}
