package engine

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Thresholds for abbreviated number formats.
const (
	million  = 1_000_000
	thousand = 1_000
)

// printer formats integers with English thousands separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// FormatThousands formats n with thousands separators, e.g. 18248 -> "18,248".
func FormatThousands(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatCompact abbreviates chart tick values: 1500000 -> "1.5M",
// 12400 -> "12k", 950 -> "950".
func FormatCompact(v float64) string {
	switch {
	case v >= million:
		return fmt.Sprintf("%.1fM", v/million)
	case v >= thousand:
		return fmt.Sprintf("%.0fk", v/thousand)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatWordsAxis abbreviates only millions: 2500000 -> "2.5M", 900000 -> "900000".
func FormatWordsAxis(v float64) string {
	if v >= million {
		return fmt.Sprintf("%.1fM", v/million)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatWordsK renders a word count in thousands with two decimals, "12.34K".
func FormatWordsK(words int64) string {
	return fmt.Sprintf("%.2fK", float64(words)/thousand)
}

// FormatScore renders a complexity score with two decimals; nil renders "0.00".
func FormatScore(score *float64) string {
	if score == nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", *score)
}

// RulesPerLaw formats rules/laws to one decimal, "0.0" when laws is zero.
func RulesPerLaw(rules, laws int) string {
	if laws == 0 {
		return "0.0"
	}
	return strconv.FormatFloat(roundHalfAway(float64(rules)/float64(laws), 1), 'f', 1, 64)
}

// roundHalfAway rounds to places decimals with halves away from zero, so
// 0.25 -> 0.3 rather than the banker's 0.2.
func roundHalfAway(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
