package graph

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"contribgraph/models"
)

// DaysPerWeek is the height of a full column
const DaysPerWeek = 7

// Grid geometry in pixels, measured from the graph container's border box
const (
	CellSize    = 12
	CellGap     = 4
	GridPadding = 16
)

// Cell is one rendered day
type Cell struct {
	Date        string
	Count       int
	Weekday     int
	Level       int
	Color       string
	Title       string
	Label       string
	DisplayDate string
	// TooltipAt is where the tooltip anchors when the cell is hovered,
	// relative to the graph container
	TooltipAt Point
}

// Column is one rendered week, top to bottom by weekday
type Column struct {
	Cells []Cell
}

// CellRect returns the box of the cell at col, row relative to the graph
// container
func CellRect(col, row int) Rect {
	return Rect{
		Left:   float64(GridPadding + col*(CellSize+CellGap)),
		Top:    float64(GridPadding + row*(CellSize+CellGap)),
		Width:  CellSize,
		Height: CellSize,
	}
}

// Layout arranges a calendar into columns, oldest week on the left. Each
// column holds the week's days ordered by weekday; partial weeks stay short.
// Every cell carries the tooltip it shows on hover.
func Layout(calendar *models.ContributionCalendar, theme models.Theme) []Column {
	if calendar == nil {
		return nil
	}

	palette := PaletteFor(theme)
	columns := make([]Column, 0, len(calendar.Weeks))
	var tip Tooltip
	for col, week := range calendar.Weeks {
		days := slices.Clone(week.ContributionDays)
		slices.SortStableFunc(days, func(a, b models.ContributionDay) int {
			return cmp.Compare(a.Weekday, b.Weekday)
		})

		cells := make([]Cell, 0, len(days))
		for row, day := range days {
			tip.Enter(day, CellRect(col, row))
			lines := tip.Lines()
			at, _ := tip.Position()
			tip.Leave()

			level := IntensityLevel(day.ContributionCount)
			cells = append(cells, Cell{
				Date:        day.Date,
				Count:       day.ContributionCount,
				Weekday:     day.Weekday,
				Level:       level,
				Color:       palette[level],
				Title:       lines[0] + " on " + lines[1],
				Label:       lines[0],
				DisplayDate: lines[1],
				TooltipAt:   at,
			})
		}
		columns = append(columns, Column{Cells: cells})
	}
	return columns
}

const (
	terminalCell  = "■"
	terminalEmpty = " "
)

// RenderTerminal draws the calendar as a seven-row heatmap, one character
// column per week, followed by a summary line.
func RenderTerminal(calendar *models.ContributionCalendar, theme models.Theme) string {
	columns := Layout(calendar, theme)

	styles := make(map[string]lipgloss.Style, MaxLevel+1)
	for _, color := range PaletteFor(theme) {
		styles[color] = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}

	var grid [DaysPerWeek][]string
	for _, column := range columns {
		var row [DaysPerWeek]string
		for i := range row {
			row[i] = terminalEmpty
		}
		for _, cell := range column.Cells {
			if cell.Weekday < 0 || cell.Weekday >= DaysPerWeek {
				continue
			}
			row[cell.Weekday] = styles[cell.Color].Render(terminalCell)
		}
		for i := range row {
			grid[i] = append(grid[i], row[i])
		}
	}

	lines := make([]string, 0, DaysPerWeek+1)
	for _, cells := range grid {
		lines = append(lines, strings.Join(cells, " "))
	}

	total := 0
	if calendar != nil {
		total = calendar.TotalContributions
	}
	lines = append(lines, ContributionLabel(total)+" in the last year")
	return strings.Join(lines, "\n")
}
