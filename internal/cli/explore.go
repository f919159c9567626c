package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/cli/pagination"
	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/overlay"
	"github.com/rshade/regdash/internal/tree"
	"github.com/rshade/regdash/internal/tui"
)

// maxTreeDepth is the deepest --depth accepted: agencies, chapters, rules
// and rule text.
const maxTreeDepth = 3

type exploreParams struct {
	year   int
	depth  int
	search string
	sort   string
	page   pagination.Params
	out    outputOptions
}

// NewExploreCmd creates the explore command for the agency -> chapter -> rule
// hierarchy.
func NewExploreCmd() *cobra.Command {
	var params exploreParams

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse agencies, their chapters, rules and rule text",
		Long: `Browse the regulatory hierarchy. Each level is fetched the first time it is
opened and kept for the rest of the session.

Interactive keys: enter or space toggles a node, "/" searches agencies,
"s" cycles the sort, q quits. With --plain or a structured --output the tree
is expanded to --depth levels and printed.`,
		Example: `  # Interactive accordion
  regdash explore

  # Every agency matching "nursing" with chapters and rules expanded
  regdash explore --search nursing --depth 2 --plain

  # The 2020 agency list as JSON
  regdash explore --year 2020 --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExplore(cmd, params)
		},
	}

	cmd.Flags().IntVar(&params.year, "year", 0, "year of the agency list (default from config)")
	cmd.Flags().IntVar(&params.depth, "depth", 0, "levels to expand in plain output (0-3)")
	cmd.Flags().StringVar(&params.search, "search", "", "keep agencies whose name or number contains this text")
	cmd.Flags().StringVar(&params.sort, "sort", "words", "sort key: words, rules, complexity or name")
	params.page.Register(cmd)
	params.out.register(cmd, true)

	return cmd
}

func validateDepth(depth int) error {
	if depth < 0 || depth > maxTreeDepth {
		return fmt.Errorf("--depth must be between 0 and %d, got %d", maxTreeDepth, depth)
	}
	return nil
}

func runExplore(cmd *cobra.Command, params exploreParams) error {
	a, err := mustApp(cmd)
	if err != nil {
		return err
	}
	if err = validateDepth(params.depth); err != nil {
		return err
	}
	if err = params.page.Validate(); err != nil {
		return err
	}
	sortBy, err := overlay.ParseSortKey(params.sort)
	if err != nil {
		return err
	}
	format, mode, err := params.out.resolve()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}

	year := a.cfg.Dashboard.ExploreYear
	if params.year > 0 {
		year = params.year
	}
	h := engine.NewHierarchy(client, markdownFor(format, mode))

	if mode == tui.OutputModeInteractive {
		ctx := tuiContext(cmd)
		load := func(ctx context.Context) (tui.AccordionData, error) {
			agencies, loadErr := client.AgenciesByYear(ctx, year)
			if loadErr != nil {
				return tui.AccordionData{}, loadErr
			}
			return tui.AccordionData{Roots: h.AgencyNodes(agencies)}, nil
		}
		return runProgram(ctx, tui.NewAccordionModel(ctx, load, tui.AccordionOptions{
			Title: "Explore regulations (" + strconv.Itoa(year) + ")",
			Query: params.search,
			Sort:  sortBy,
		}))
	}

	ctx := cmd.Context()
	agencies, err := client.AgenciesByYear(ctx, year)
	if err != nil {
		return err
	}
	roots := overlay.Apply(h.AgencyNodes(agencies), tree.Expandable.Fields, params.search, sortBy)
	total := len(roots)
	// Only the printed window is expanded.
	roots = pagination.Apply(params.page, roots)
	if err = engine.ExpandAll(ctx, roots, params.depth, engine.DefaultExpandConcurrency); err != nil {
		return err
	}
	logger.Debug().Ctx(ctx).Int("year", year).Int("agencies", len(roots)).Int("depth", params.depth).
		Msg("hierarchy expanded")
	if err = engine.RenderTree(cmd.OutOrStdout(), format, roots); err != nil {
		return err
	}
	return printFooter(cmd, format, params.page, total)
}

// markdownFor picks the rule text renderer: glamour for terminal and table
// output, the raw markdown for structured formats.
func markdownFor(format engine.OutputFormat, mode tui.OutputMode) engine.MarkdownFunc {
	if format != engine.OutputTable {
		return engine.PlainMarkdown
	}
	r, err := tui.NewMarkdownRenderer(0, mode != tui.OutputModePlain)
	if err != nil {
		logger.Warn().Err(err).Msg("markdown renderer unavailable, showing raw rule text")
		return engine.PlainMarkdown
	}
	return tui.MarkdownLines(r)
}
