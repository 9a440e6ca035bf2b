package graph

import "contribgraph/models"

// TooltipOffset is the gap in pixels between a cell's top edge and the tooltip
const TooltipOffset = 8

// Rect is the bounding box of a hovered cell in pixels
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Point is a position in pixels
type Point struct {
	X float64
	Y float64
}

// TooltipPosition centers the tooltip horizontally on anchor and places it
// TooltipOffset pixels above the anchor's top edge.
func TooltipPosition(anchor Rect) Point {
	return Point{
		X: anchor.Left + anchor.Width/2,
		Y: anchor.Top - TooltipOffset,
	}
}

// Tooltip is the hover state of one rendered calendar. The latest Enter wins;
// there is no queue. Layout drives one per calendar to precompute each
// cell's tooltip. It is not safe for concurrent use.
type Tooltip struct {
	day      models.ContributionDay
	position Point
	visible  bool
}

// Enter shows the tooltip for day, anchored to the cell at rect
func (t *Tooltip) Enter(day models.ContributionDay, rect Rect) {
	t.day = day
	t.position = TooltipPosition(rect)
	t.visible = true
}

// Leave hides the tooltip
func (t *Tooltip) Leave() {
	*t = Tooltip{}
}

// Visible reports whether a cell is hovered
func (t *Tooltip) Visible() bool {
	return t.visible
}

// Position returns where the tooltip is drawn, and false when hidden
func (t *Tooltip) Position() (Point, bool) {
	return t.position, t.visible
}

// Lines returns the headline and date lines of the tooltip, or nil when hidden
func (t *Tooltip) Lines() []string {
	if !t.visible {
		return nil
	}
	return []string{ContributionLabel(t.day.ContributionCount), FormatDate(t.day.Date)}
}
