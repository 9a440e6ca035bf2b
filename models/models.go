// Package models defines the core data structures used throughout the application.
package models

// ContributionDay represents a single day in the contribution calendar
type ContributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
	Color             string `json:"color,omitempty"`
	Weekday           int    `json:"weekday"`
}

// ContributionWeek groups the days of one calendar week. The most recent week
// is usually partial, so callers must not assume seven days.
type ContributionWeek struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

// ContributionCalendar covers the trailing year of activity, oldest week first.
// TotalContributions is taken from the upstream source as-is.
type ContributionCalendar struct {
	TotalContributions int                `json:"totalContributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}

// ContributionsCollection is the object returned by the contributions API
type ContributionsCollection struct {
	ContributionCalendar *ContributionCalendar `json:"contributionCalendar"`
}

// Calendar returns the nested calendar, or nil when it is missing.
func (c *ContributionsCollection) Calendar() *ContributionCalendar {
	if c == nil {
		return nil
	}
	return c.ContributionCalendar
}

// Theme selects the color palette used to render a calendar
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultTheme is used when no theme, or an unknown one, is requested
const DefaultTheme = ThemeDark
