package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/rshade/regdash/internal/model"
)

// Operation names used in FetchError messages.
const (
	OpAgencyDetails = "agency data"
	OpAgencies      = "agencies"
	OpChapters      = "chapters"
	OpRules         = "rules"
	OpRuleText      = "rule text"
	OpNewRules      = "new rules data"
	OpTimeline      = "timeline data"
	OpRuleVolume    = "rule volume data"
	OpAgencyStats   = "agency stats"
)

// AgencyDetails fetches GET /api/v1/agencies/agency/{id}/{year}/details.
func (c *Client) AgencyDetails(ctx context.Context, id string, year int) (*model.AgencyDetails, error) {
	var out model.AgencyDetails
	target := c.endpoint(nil, "api", "v1", "agencies", "agency", id, strconv.Itoa(year), "details")
	if err := c.getJSON(ctx, OpAgencyDetails, target, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AgenciesByYear fetches GET /api/v1/agencies/by-year/{year}.
func (c *Client) AgenciesByYear(ctx context.Context, year int) ([]model.Agency, error) {
	var out []model.Agency
	target := c.endpoint(nil, "api", "v1", "agencies", "by-year", strconv.Itoa(year))
	if err := c.getJSON(ctx, OpAgencies, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Chapters fetches GET /api/v1/agencies/year/{agencyId}/chapters.
func (c *Client) Chapters(ctx context.Context, agencyID string) ([]model.Chapter, error) {
	var out []model.Chapter
	target := c.endpoint(nil, "api", "v1", "agencies", "year", agencyID, "chapters")
	if err := c.getJSON(ctx, OpChapters, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Rules fetches GET /api/v1/agencies/chapters/{chapterId}/rules.
func (c *Client) Rules(ctx context.Context, chapterID string) ([]model.Rule, error) {
	var out []model.Rule
	target := c.endpoint(nil, "api", "v1", "agencies", "chapters", chapterID, "rules")
	if err := c.getJSON(ctx, OpRules, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RuleText fetches GET /api/v1/openlaws/rule/{citation}.
func (c *Client) RuleText(ctx context.Context, citation string) (*model.RuleText, error) {
	var out model.RuleText
	target := c.endpoint(nil, "api", "v1", "openlaws", "rule", citation)
	if err := c.getJSON(ctx, OpRuleText, target, &out); err != nil {
		return nil, err
	}
	if out.Citation == "" {
		out.Citation = citation
	}
	return &out, nil
}

// NewRules fetches GET /api/v1/agencies/rules/new for span.
func (c *Client) NewRules(ctx context.Context, span model.YearSpan) ([]model.NewRulesYear, error) {
	var out []model.NewRulesYear
	target := c.endpoint(spanQuery(span), "api", "v1", "agencies", "rules", "new")
	if err := c.getJSON(ctx, OpNewRules, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Timeline fetches GET /api/v1/agencies/timeline for span.
func (c *Client) Timeline(ctx context.Context, span model.YearSpan) ([]model.TimelineYear, error) {
	var out []model.TimelineYear
	target := c.endpoint(spanQuery(span), "api", "v1", "agencies", "timeline")
	if err := c.getJSON(ctx, OpTimeline, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RuleVolume fetches GET /api/v1/agencies/total_rule_volume for span.
func (c *Client) RuleVolume(ctx context.Context, span model.YearSpan) ([]model.RuleVolumeYear, error) {
	var out []model.RuleVolumeYear
	target := c.endpoint(spanQuery(span), "api", "v1", "agencies", "total_rule_volume")
	if err := c.getJSON(ctx, OpRuleVolume, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AgencyStats fetches GET /api/v1/agencies/stats/agency.
func (c *Client) AgencyStats(ctx context.Context) ([]model.AgencyStat, error) {
	var out []model.AgencyStat
	target := c.endpoint(nil, "api", "v1", "agencies", "stats", "agency")
	if err := c.getJSON(ctx, OpAgencyStats, target, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func spanQuery(span model.YearSpan) url.Values {
	q := url.Values{}
	q.Set("start_year", strconv.Itoa(span.Start))
	q.Set("end_year", strconv.Itoa(span.End))
	return q
}
