// Package grid places new dashcards on a fixed-width dashboard grid.
package grid

import "tableflip.dev/dashtab/pkg/dashboard"

// DefaultWidth is the number of grid columns of a dashboard.
const DefaultWidth = 24

// maxRows bounds the scan for a free slot.
const maxRows = 1000

// Placer scans the grid row by row, left to right, and returns the first
// position where a card of the requested size overlaps nothing.
type Placer struct {
	Width int
}

// New returns a Placer for a grid of the given width (DefaultWidth if <= 0).
func New(width int) Placer {
	if width <= 0 {
		width = DefaultWidth
	}
	return Placer{Width: width}
}

// Place implements dashboard.Placer.
func (p Placer) Place(existing []dashboard.DashCard, sizeX, sizeY int) dashboard.Position {
	width := p.Width
	if width <= 0 {
		width = DefaultWidth
	}
	if sizeX > width {
		return dashboard.Position{Row: bottom(existing), Col: 0}
	}
	for row := 0; row < maxRows; row++ {
		for col := 0; col <= width-sizeX; col++ {
			candidate := rect{row: row, col: col, sizeX: sizeX, sizeY: sizeY}
			if !overlapsAny(candidate, existing) {
				return dashboard.Position{Row: row, Col: col}
			}
		}
	}
	return dashboard.Position{Row: bottom(existing), Col: 0}
}

type rect struct {
	row, col, sizeX, sizeY int
}

func rectOf(dc dashboard.DashCard) rect {
	return rect{row: dc.Row, col: dc.Col, sizeX: dc.SizeX, sizeY: dc.SizeY}
}

// Intersects reports whether two dashcards overlap on the grid.
func Intersects(a, b dashboard.DashCard) bool {
	return rectOf(a).intersects(rectOf(b))
}

func (a rect) intersects(b rect) bool {
	return !(b.col >= a.col+a.sizeX ||
		b.col+b.sizeX <= a.col ||
		b.row >= a.row+a.sizeY ||
		b.row+b.sizeY <= a.row)
}

func overlapsAny(candidate rect, existing []dashboard.DashCard) bool {
	for _, dc := range existing {
		if candidate.intersects(rectOf(dc)) {
			return true
		}
	}
	return false
}

func bottom(existing []dashboard.DashCard) int {
	max := 0
	for _, dc := range existing {
		if b := dc.Row + dc.SizeY; b > max {
			max = b
		}
	}
	return max
}
