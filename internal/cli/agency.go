package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/engine"
	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/tree"
	"github.com/rshade/regdash/internal/tui"
)

type agencyParams struct {
	year  int
	depth int
	out   outputOptions
}

// NewAgencyCmd creates the agency command showing one agency's details and
// its chapters.
func NewAgencyCmd() *cobra.Command {
	var params agencyParams

	cmd := &cobra.Command{
		Use:   "agency <id>",
		Short: "Show an agency's complexity score and browse its chapters",
		Example: `  # Interactive view of agency 42
  regdash agency 42

  # Agency 42 with chapters and rules expanded
  regdash agency 42 --depth 2 --plain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgency(cmd, args[0], params)
		},
	}

	cmd.Flags().IntVar(&params.year, "year", 0, "year of the agency record (default: the index year)")
	cmd.Flags().IntVar(&params.depth, "depth", 1, "levels to expand in plain output (0-3)")
	params.out.register(cmd, true)

	return cmd
}

// fetchAgency loads the details record and fills in the id when the
// response omits it, since chapter fetches are keyed by it.
func fetchAgency(ctx context.Context, src agencySource, id int, year int) (*model.AgencyDetails, error) {
	d, err := src.AgencyDetails(ctx, strconv.Itoa(id), year)
	if err != nil {
		return nil, err
	}
	if d.ID == 0 {
		d.ID = id
	}
	return d, nil
}

type agencySource interface {
	AgencyDetails(ctx context.Context, id string, year int) (*model.AgencyDetails, error)
}

func runAgency(cmd *cobra.Command, rawID string, params agencyParams) error {
	a, err := mustApp(cmd)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil || id <= 0 {
		return fmt.Errorf("agency id must be a positive integer, got %q", rawID)
	}
	if err = validateDepth(params.depth); err != nil {
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

	year := a.cfg.Dashboard.IndexYear
	if params.year > 0 {
		year = params.year
	}
	h := engine.NewHierarchy(client, markdownFor(format, mode))

	if mode == tui.OutputModeInteractive {
		ctx := tuiContext(cmd)
		load := func(ctx context.Context) (tui.AccordionData, error) {
			d, loadErr := fetchAgency(ctx, client, id, year)
			if loadErr != nil {
				return tui.AccordionData{}, loadErr
			}
			return tui.AccordionData{
				Header: engine.AgencyHeader(d),
				Roots:  h.AgencyNodes([]model.Agency{d.Agency}),
			}, nil
		}
		return runProgram(ctx, tui.NewAccordionModel(ctx, load, tui.AccordionOptions{
			Title:       "Agency details",
			FilterDepth: 1,
			OpenRoots:   true,
			Noun:        "chapters",
		}))
	}

	ctx := cmd.Context()
	d, err := fetchAgency(ctx, client, id, year)
	if err != nil {
		return err
	}
	root := h.Agency(d.Agency)
	if err = engine.ExpandAll(ctx, []tree.Expandable{root}, params.depth, engine.DefaultExpandConcurrency); err != nil {
		return err
	}
	return engine.RenderAgency(cmd.OutOrStdout(), format, d, root)
}
