package engine

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/rshade/regdash/internal/model"
	"github.com/rshade/regdash/internal/overlay"
)

// IndexPending is shown while the index year has no data.
const IndexPending = "..."

// BureaucracyIndex returns new rules per law for year, to one decimal.
func BureaucracyIndex(data []model.NewRulesYear, year int) string {
	for _, d := range data {
		if d.Year == year {
			return RulesPerLaw(d.NewRulesCount, d.TotalLaws)
		}
	}
	return IndexPending
}

// RulesLawsPoint is one year on the rules-over-time chart.
type RulesLawsPoint struct {
	Year  int    `json:"year"`
	Rules int    `json:"rules"`
	Laws  int    `json:"laws"`
	Ratio string `json:"ratio"`
}

// Caption describes the point the way the chart tooltip does.
func (p RulesLawsPoint) Caption() string {
	return fmt.Sprintf("In %d, there were %s rules per law.", p.Year, p.Ratio)
}

// RulesOverTime converts the new-rules series into chart points, keeping only
// years inside window unless all is set.
func RulesOverTime(data []model.NewRulesYear, window model.YearSpan, all bool) []RulesLawsPoint {
	out := make([]RulesLawsPoint, 0, len(data))
	for _, d := range data {
		if !all && !window.Contains(d.Year) {
			continue
		}
		out = append(out, RulesLawsPoint{
			Year:  d.Year,
			Rules: d.NewRulesCount,
			Laws:  d.TotalLaws,
			Ratio: RulesPerLaw(d.NewRulesCount, d.TotalLaws),
		})
	}
	return out
}

// TimelineEvent is a signed count of agencies created (positive) or removed
// (negative) in one year.
type TimelineEvent struct {
	Year     int      `json:"year"`
	Value    int      `json:"value"`
	Agencies []string `json:"agencies"`
}

// Removed reports whether the event counts removals.
func (e TimelineEvent) Removed() bool { return e.Value < 0 }

// TimelineEvents yields up to two events per year: creations then removals.
// Years with neither produce nothing.
func TimelineEvents(data []model.TimelineYear) []TimelineEvent {
	var out []TimelineEvent
	for _, y := range data {
		if len(y.Created) > 0 {
			out = append(out, TimelineEvent{Year: y.Year, Value: len(y.Created), Agencies: refNames(y.Created)})
		}
		if len(y.Removed) > 0 {
			out = append(out, TimelineEvent{Year: y.Year, Value: -len(y.Removed), Agencies: refNames(y.Removed)})
		}
	}
	return out
}

func refNames(refs []model.AgencyRef) []string {
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}

// RecentVolume keeps the last n years of the volume series unless all is set.
func RecentVolume(data []model.RuleVolumeYear, n int, all bool) []model.RuleVolumeYear {
	if all || n <= 0 || len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}

// AgencyCard is the display form of one agency stats rollup.
type AgencyCard struct {
	ID         int       `json:"agency_id"`
	Name       string    `json:"agency"`
	Words      int64     `json:"words"`
	WordsLabel string    `json:"words_label"`
	Rules      int       `json:"rules"`
	Complexity *float64  `json:"complexity_score"`
	Score      string    `json:"score"`
	Years      []int     `json:"years"`
	Series     []float64 `json:"word_series"`
	DomainMin  float64   `json:"domain_min"`
	DomainMax  float64   `json:"domain_max"`
}

// Sparkline renders the yearly word series against the card's padded domain.
func (c AgencyCard) Sparkline() string {
	return Sparkline(c.Series, c.DomainMin, c.DomainMax)
}

// AgencyCards converts stats into cards in input order.
func AgencyCards(stats []model.AgencyStat) []AgencyCard {
	cards := make([]AgencyCard, len(stats))
	for i, s := range stats {
		yearly := slices.Clone(s.YearlyStats)
		slices.SortStableFunc(yearly, func(a, b model.YearlyStat) int { return a.Year - b.Year })

		years := make([]int, len(yearly))
		series := make([]float64, len(yearly))
		for j, y := range yearly {
			years[j] = y.Year
			series[j] = float64(y.TotalWordCount)
		}
		lo, hi := PaddedDomain(series)
		cards[i] = AgencyCard{
			ID:         s.AgencyID,
			Name:       s.Agency,
			Words:      s.RecentTotalWordCount,
			WordsLabel: FormatWordsK(s.RecentTotalWordCount),
			Rules:      s.RecentRulesCount,
			Complexity: s.ComplexityScore,
			Score:      FormatScore(s.ComplexityScore),
			Years:      years,
			Series:     series,
			DomainMin:  lo,
			DomainMax:  hi,
		}
	}
	return cards
}

// CardFields projects a card for search and sort.
func CardFields(c AgencyCard) overlay.Fields {
	return overlay.Fields{
		Name:       c.Name,
		Words:      c.Words,
		Rules:      c.Rules,
		Complexity: c.Complexity,
	}
}

// domainPadding is the fraction of the value range added above and below.
const domainPadding = 0.1

// PaddedDomain returns [min-10%, max+10%] of the range, with the lower bound
// clamped at zero.
func PaddedDomain(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := slices.Min(values), slices.Max(values)
	pad := (hi - lo) * domainPadding
	return math.Max(0, lo-pad), hi + pad
}

var sparkLevels = []rune("▁▂▃▄▅▆▇█") //nolint:gochecknoglobals // glyph table

// Sparkline maps values onto block glyphs within [lo, hi].
func Sparkline(values []float64, lo, hi float64) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	span := hi - lo
	top := len(sparkLevels) - 1
	for _, v := range values {
		idx := top / 2
		if span > 0 {
			idx = int(math.Round((v - lo) / span * float64(top)))
		}
		idx = max(0, min(top, idx))
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}

// Bar renders a horizontal bar of width cells proportional to v/maxV.
func Bar(v, maxV float64, width int) string {
	if maxV <= 0 || v <= 0 || width <= 0 {
		return ""
	}
	n := int(math.Round(v / maxV * float64(width)))
	n = max(1, min(width, n))
	return strings.Repeat("█", n)
}
