package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/tui"
)

type dashboardParams struct {
	year int
	all  bool
	out  outputOptions
}

// NewDashboardCmd creates the dashboard command: bureaucracy index, the three
// aggregate series and the agency cards.
func NewDashboardCmd() *cobra.Command {
	var params dashboardParams

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the bureaucracy index, aggregate charts and agency cards",
		Long: `Fetch the new-rules, timeline, rule-volume and agency statistics series
concurrently and show them together. A section that fails to load shows its
error in place; the others still render.`,
		Example: `  # Interactive dashboard
  regdash dashboard

  # Index for another year, every year of every series
  regdash dashboard --year 2020 --all

  # Machine-readable output
  regdash dashboard --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, params)
		},
	}

	cmd.Flags().IntVar(&params.year, "year", 0, "year of the bureaucracy index (default from config)")
	cmd.Flags().BoolVar(&params.all, "all", false, "show every year instead of the configured windows")
	params.out.register(cmd, true)

	return cmd
}

func runDashboard(cmd *cobra.Command, params dashboardParams) error {
	a, err := mustApp(cmd)
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

	d := a.cfg.Dashboard
	opts := engine.DashboardOptions{
		IndexYear:   d.IndexYear,
		NewRules:    d.NewRules.ToModel(),
		RulesWindow: d.RulesWindow.ToModel(),
		Timeline:    d.Timeline.ToModel(),
		RuleVolume:  d.RuleVolume.ToModel(),
		RecentYears: d.RecentYears,
		All:         params.all,
	}
	if params.year > 0 {
		opts.IndexYear = params.year
	}

	load := func(ctx context.Context) (*engine.Dashboard, error) {
		return engine.LoadDashboard(ctx, client, opts)
	}

	if mode == tui.OutputModeInteractive {
		ctx := tuiContext(cmd)
		return runProgram(ctx, tui.NewDashboardModel(ctx, load))
	}

	dash, err := load(cmd.Context())
	if err != nil {
		return err
	}
	for _, e := range dash.Errors {
		logger.Warn().Ctx(cmd.Context()).Str("section", e.Section).Msg(e.Message)
	}
	if mode == tui.OutputModeStyled {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), tui.RenderDashboardView(dash, 0))
		return err
	}
	return engine.RenderDashboard(cmd.OutOrStdout(), format, dash)
}
