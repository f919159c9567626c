package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rshade/regdash/internal/model"
)

// DashboardSource fetches the aggregate series. *api.Client satisfies it.
type DashboardSource interface {
	NewRules(ctx context.Context, span model.YearSpan) ([]model.NewRulesYear, error)
	Timeline(ctx context.Context, span model.YearSpan) ([]model.TimelineYear, error)
	RuleVolume(ctx context.Context, span model.YearSpan) ([]model.RuleVolumeYear, error)
	AgencyStats(ctx context.Context) ([]model.AgencyStat, error)
}

// DashboardOptions selects year ranges and windowing.
type DashboardOptions struct {
	IndexYear   int
	NewRules    model.YearSpan // query span for the new-rules series
	RulesWindow model.YearSpan // displayed window of rules over time
	Timeline    model.YearSpan
	RuleVolume  model.YearSpan
	RecentYears int
	All         bool // disable RulesWindow and RecentYears trimming
}

// SectionError records a section that failed to load. Other sections are
// unaffected.
type SectionError struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// Dashboard is the home view: headline index, three series and agency cards.
type Dashboard struct {
	IndexYear     int                    `json:"index_year"`
	Index         string                 `json:"bureaucracy_index"`
	RulesOverTime []RulesLawsPoint       `json:"rules_over_time"`
	Timeline      []TimelineEvent        `json:"timeline"`
	Volume        []model.RuleVolumeYear `json:"rule_volume"`
	Cards         []AgencyCard           `json:"agencies"`
	Errors        []SectionError         `json:"errors"`
}

// Section names used in SectionError.
const (
	SectionNewRules = "new_rules"
	SectionTimeline = "timeline"
	SectionVolume   = "rule_volume"
	SectionAgencies = "agencies"
)

// LoadDashboard fetches the four series concurrently. A failed section is
// reported in Errors and left empty; LoadDashboard itself only fails when ctx
// is done.
func LoadDashboard(ctx context.Context, src DashboardSource, opts DashboardOptions) (*Dashboard, error) {
	var (
		newRules []model.NewRulesYear
		timeline []model.TimelineYear
		volume   []model.RuleVolumeYear
		stats    []model.AgencyStat
		errs     [4]error
	)

	var g errgroup.Group
	g.Go(func() error {
		newRules, errs[0] = src.NewRules(ctx, opts.NewRules)
		return nil
	})
	g.Go(func() error {
		timeline, errs[1] = src.Timeline(ctx, opts.Timeline)
		return nil
	})
	g.Go(func() error {
		volume, errs[2] = src.RuleVolume(ctx, opts.RuleVolume)
		return nil
	})
	g.Go(func() error {
		stats, errs[3] = src.AgencyStats(ctx)
		return nil
	})
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &Dashboard{
		IndexYear:     opts.IndexYear,
		Index:         BureaucracyIndex(newRules, opts.IndexYear),
		RulesOverTime: RulesOverTime(newRules, opts.RulesWindow, opts.All),
		Timeline:      TimelineEvents(timeline),
		Volume:        RecentVolume(volume, opts.RecentYears, opts.All),
		Cards:         AgencyCards(stats),
		Errors:        []SectionError{},
	}
	for i, name := range []string{SectionNewRules, SectionTimeline, SectionVolume, SectionAgencies} {
		if errs[i] != nil {
			d.Errors = append(d.Errors, SectionError{Section: name, Message: errs[i].Error()})
		}
	}
	return d, nil
}

// SectionErr returns the error message for section, or "".
func (d *Dashboard) SectionErr(section string) string {
	for _, e := range d.Errors {
		if e.Section == section {
			return e.Message
		}
	}
	return ""
}
