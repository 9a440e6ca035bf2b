// Package graph maps contribution counts to the visual form of the calendar:
// intensity buckets, theme colors, cell layout and tooltip geometry.
package graph

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"contribgraph/models"
)

// MaxLevel is the highest intensity bucket
const MaxLevel = 4

// Palette holds one color per intensity level, from no activity to highest
type Palette [MaxLevel + 1]string

var (
	// LightPalette is used on light backgrounds
	LightPalette = Palette{"#f3f4f6", "#bbf7d0", "#4ade80", "#16a34a", "#166534"}
	// DarkPalette is used on dark backgrounds
	DarkPalette = Palette{"#1f2937", "#14532d", "#15803d", "#22c55e", "#4ade80"}
)

// legendSamples are representative counts for each intensity level
var legendSamples = [MaxLevel + 1]int{0, 2, 5, 8, 12}

// IntensityLevel buckets a daily count: 0, 1-3, 4-6, 7-9 and 10 or more.
// Negative counts are treated as zero.
func IntensityLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 3:
		return 1
	case count <= 6:
		return 2
	case count <= 9:
		return 3
	default:
		return MaxLevel
	}
}

// PaletteFor returns the palette of theme. Unknown themes get the default.
func PaletteFor(theme models.Theme) Palette {
	if theme == models.ThemeLight {
		return LightPalette
	}
	return DarkPalette
}

// ColorFor returns the color of a cell with count contributions
func ColorFor(count int, theme models.Theme) string {
	return PaletteFor(theme)[IntensityLevel(count)]
}

// Legend returns the colors shown between "Less" and "More"
func Legend(theme models.Theme) []string {
	colors := make([]string, len(legendSamples))
	for i, count := range legendSamples {
		colors[i] = ColorFor(count, theme)
	}
	return colors
}

const (
	isoDate     = "2006-01-02"
	displayDate = "Jan 2, 2006"
)

// FormatDate renders an ISO date as "Jan 2, 2006" for display. Input that
// does not parse is returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return iso
	}
	return t.Format(displayDate)
}

// FormatCount groups digits the en-US way, e.g. 1,234
func FormatCount(n int) string {
	return message.NewPrinter(language.AmericanEnglish).Sprintf("%d", n)
}

// ContributionLabel returns "1 contribution" or "N contributions"
func ContributionLabel(count int) string {
	if count == 1 {
		return "1 contribution"
	}
	return fmt.Sprintf("%s contributions", FormatCount(count))
}
