// Package model defines the entities returned by the regulatory statistics API.
//
// Entities are transient: they are created from a response body, held by the
// view that requested them and dropped with it. Nothing is written back.
package model

import (
	"strconv"
	"strings"
)

// Agency is one government body and its aggregate regulatory output.
type Agency struct {
	ID               int      `json:"id"`
	Name             string   `json:"agency_name"`
	Number           string   `json:"agency_number"`
	TotalWordCount   int64    `json:"total_word_count"`
	ComplexityScore  *float64 `json:"complexity_score"`
	LastModifiedDate Date     `json:"last_modified_date"`
}

// Key identifies the agency in fetch requests.
func (a Agency) Key() string { return strconv.Itoa(a.ID) }

// Chapter is a titled grouping of rules under one agency.
type Chapter struct {
	ID               int    `json:"id"`
	Number           string `json:"chapter_number"`
	Title            string `json:"chapter_title"`
	TotalWordCount   int64  `json:"total_word_count"`
	LastModifiedDate Date   `json:"last_modified_date"`
}

// Key identifies the chapter in fetch requests.
func (c Chapter) Key() string { return strconv.Itoa(c.ID) }

// Rule is a single provision. Citation is the natural key.
type Rule struct {
	ID          int       `json:"id"`
	Citation    string    `json:"citation"`
	Title       string    `json:"rule_title"`
	Description string    `json:"description,omitempty"`
	Text        string    `json:"rule_text"`
	Subrules    []Subrule `json:"subrules,omitempty"`
}

// Subrule is a leaf under a rule. It is never fetched on its own.
type Subrule struct {
	ID          int    `json:"id"`
	Number      string `json:"subrule_number"`
	Text        string `json:"subrule_text"`
	Description string `json:"description,omitempty"`
}

// Label renders the designator the way the dashboard shows it, e.g. "a)".
func (s Subrule) Label() string {
	if s.Number == "" {
		return ""
	}
	return s.Number + ")"
}

// RuleText is the rendered markdown for one rule, fetched separately from
// the rule itself.
type RuleText struct {
	Citation string `json:"citation"`
	Title    string `json:"title,omitempty"`
	Content  string `json:"content"`
}

// Empty reports whether there is nothing to display.
func (r RuleText) Empty() bool { return strings.TrimSpace(r.Content) == "" }

// AgencyDetails is the detail record for one agency in one year.
type AgencyDetails struct {
	Agency
	Year int `json:"year,omitempty"`
}

// YearlyStat is one point in an agency's yearly series.
type YearlyStat struct {
	Year           int   `json:"year"`
	TotalWordCount int64 `json:"total_word_count"`
	RulesCount     int   `json:"rules_count"`
}

// AgencyStat is the per-agency rollup behind the agency cards.
type AgencyStat struct {
	AgencyID             int          `json:"agency_id"`
	Agency               string       `json:"agency"`
	RecentTotalWordCount int64        `json:"recent_total_word_count"`
	RecentRulesCount     int          `json:"recent_rules_count"`
	YearlyStats          []YearlyStat `json:"yearly_stats"`
	ComplexityScore      *float64     `json:"complexity_score"`
}

// NewRulesYear pairs new rules with laws passed in a year.
type NewRulesYear struct {
	Year          int `json:"year"`
	NewRulesCount int `json:"new_rules_count"`
	TotalLaws     int `json:"total_laws"`
}

// AgencyRef names an agency inside a timeline event.
type AgencyRef struct {
	AgencyID int    `json:"agency_id"`
	Name     string `json:"agency_name"`
}

// TimelineYear lists the agencies created and removed in a year.
type TimelineYear struct {
	Year    int         `json:"year"`
	Created []AgencyRef `json:"created"`
	Removed []AgencyRef `json:"removed"`
}

// RuleVolumeYear is the total rule and word volume for a year.
type RuleVolumeYear struct {
	Year           int   `json:"year"`
	TotalRules     int   `json:"total_rules"`
	TotalWordCount int64 `json:"total_word_count"`
}

// YearSpan is an inclusive range of years used as query parameters.
type YearSpan struct {
	Start int
	End   int
}

// Contains reports whether year lies inside the span.
func (s YearSpan) Contains(year int) bool {
	return year >= s.Start && year <= s.End
}
