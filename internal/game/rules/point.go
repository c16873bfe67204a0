package rules

import (
	"fmt"
	"math"
)

// Point is a position on the battlefield grid, in feet.
type Point struct {
	X float64
	Y float64
}

// String formats the point as "(x, y)" with whole-foot precision.
func (p Point) String() string {
	return fmt.Sprintf("(%.0f, %.0f)", p.X, p.Y)
}

// Distance returns the straight-line distance between two points in feet.
//
// Postcondition: Returns >= 0; Distance(a, b) == Distance(b, a).
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Hypot(dx, dy)
}

// StepToward returns the point reached by moving from `from` up to `max` feet
// along the line toward `to`, never overshooting `to`.
//
// Precondition: max >= 0.
// Postcondition: Distance(from, result) <= max.
func StepToward(from, to Point, max float64) Point {
	d := Distance(from, to)
	if d == 0 || max >= d {
		return to
	}
	frac := max / d
	return Point{
		X: from.X + (to.X-from.X)*frac,
		Y: from.Y + (to.Y-from.Y)*frac,
	}
}

// StepAway returns the point reached by moving from `from` exactly `dist`
// feet directly away from `to`. When the points coincide the retreat is
// along the positive X axis.
//
// Precondition: dist >= 0.
func StepAway(from, to Point, dist float64) Point {
	d := Distance(from, to)
	if d == 0 {
		return Point{X: from.X + dist, Y: from.Y}
	}
	frac := dist / d
	return Point{
		X: from.X + (from.X-to.X)*frac,
		Y: from.Y + (from.Y-to.Y)*frac,
	}
}
