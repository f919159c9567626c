package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/cli/pagination"
	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/overlay"
	"github.com/rshade/regdash/internal/tui"
)

type agenciesParams struct {
	search string
	sort   string
	page   pagination.Params
	out    outputOptions
}

// NewAgenciesCmd creates the agencies command listing per-agency statistics.
func NewAgenciesCmd() *cobra.Command {
	var params agenciesParams

	cmd := &cobra.Command{
		Use:   "agencies",
		Short: "Search and sort agency word, rule and complexity statistics",
		Example: `  # Interactive table: "/" searches, "s" cycles the sort, enter shows details
  regdash agencies

  # Agencies matching "transport", fewest words last
  regdash agencies --search transport --sort words --plain

  # Stream one JSON object per agency
  regdash agencies --output ndjson

  # Second page of 20 agencies by rule count
  regdash agencies --sort rules --page 2 --page-size 20 --plain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAgencies(cmd, params)
		},
	}

	cmd.Flags().StringVar(&params.search, "search", "", "keep agencies whose name contains this text (case and accent insensitive)")
	cmd.Flags().StringVar(&params.sort, "sort", "words", "sort key: words, rules, complexity or name")
	params.page.Register(cmd)
	params.out.register(cmd, true)

	return cmd
}

func runAgencies(cmd *cobra.Command, params agenciesParams) error {
	a, err := mustApp(cmd)
	if err != nil {
		return err
	}
	sortBy, err := overlay.ParseSortKey(params.sort)
	if err != nil {
		return err
	}
	if err = params.page.Validate(); err != nil {
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

	load := func(ctx context.Context) ([]engine.AgencyCard, error) {
		stats, statsErr := client.AgencyStats(ctx)
		if statsErr != nil {
			return nil, statsErr
		}
		return engine.AgencyCards(stats), nil
	}

	if mode == tui.OutputModeInteractive {
		ctx := tuiContext(cmd)
		return runProgram(ctx, tui.NewAgencyListModel(ctx, load, params.search, sortBy))
	}

	cards, err := load(cmd.Context())
	if err != nil {
		return err
	}
	cards = overlay.Apply(cards, engine.CardFields, params.search, sortBy)
	logger.Debug().Ctx(cmd.Context()).Int("agencies", len(cards)).Str("sort", sortBy.String()).Msg("agency stats loaded")

	total := len(cards)
	if err = engine.RenderCards(cmd.OutOrStdout(), format, pagination.Apply(params.page, cards)); err != nil {
		return err
	}
	return printFooter(cmd, format, params.page, total)
}

// printFooter writes the pagination footer below table output.
func printFooter(cmd *cobra.Command, format engine.OutputFormat, p pagination.Params, total int) error {
	if format != engine.OutputTable || !p.IsEnabled() {
		return nil
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), pagination.NewMeta(p, total).Footer())
	return err
}
