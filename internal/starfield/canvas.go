package starfield

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// DefaultCellWidth and DefaultCellHeight approximate a terminal cell in pixels.
	DefaultCellWidth  = 8.0
	DefaultCellHeight = 16.0

	// Grayscale ramp of the 256-color palette.
	grayFirst = 232
	grayLast  = 255
)

// Star glyphs by radius
const (
	glyphTiny   = '.'
	glyphSmall  = '·'
	glyphMedium = '∙'
	glyphLarge  = '✦'
)

// Cell is one terminal cell of the canvas. Glyph 0 means empty.
type Cell struct {
	Glyph rune
	Alpha float64
}

// Canvas maps a virtual pixel surface onto a grid of terminal cells.
type Canvas struct {
	cols  int
	rows  int
	cellW float64
	cellH float64
	cells []Cell
}

// NewCanvas creates a canvas of cols×rows cells.
func NewCanvas(cols, rows int, cellW, cellH float64) *Canvas {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	if cellW <= 0 {
		cellW = DefaultCellWidth
	}
	if cellH <= 0 {
		cellH = DefaultCellHeight
	}
	return &Canvas{
		cols:  cols,
		rows:  rows,
		cellW: cellW,
		cellH: cellH,
		cells: make([]Cell, cols*rows),
	}
}

// Cols returns the width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in cells.
func (c *Canvas) Rows() int { return c.rows }

// PixelSize returns the virtual surface size.
func (c *Canvas) PixelSize() (width, height float64) {
	return float64(c.cols) * c.cellW, float64(c.rows) * c.cellH
}

// Clear empties every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{}
	}
}

// Plot draws a dot at pixel (x, y). When two dots share a cell the
// brighter one wins.
func (c *Canvas) Plot(x, y, radius, alpha float64) {
	col := int(math.Floor(x / c.cellW))
	row := int(math.Floor(y / c.cellH))
	if row == c.rows {
		// Stars wrapped to the bottom edge sit exactly on the boundary.
		row = c.rows - 1
	}
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return
	}

	alpha = clamp(alpha, 0, 1)
	idx := row*c.cols + col
	if cur := c.cells[idx]; cur.Glyph != 0 && cur.Alpha >= alpha {
		return
	}
	c.cells[idx] = Cell{Glyph: glyphFor(radius), Alpha: alpha}
}

// At returns the cell at (col, row).
func (c *Canvas) At(col, row int) Cell {
	if col < 0 || col >= c.cols || row < 0 || row >= c.rows {
		return Cell{}
	}
	return c.cells[row*c.cols+col]
}

// Count returns the number of non-empty cells.
func (c *Canvas) Count() int {
	n := 0
	for _, cell := range c.cells {
		if cell.Glyph != 0 {
			n++
		}
	}
	return n
}

// RenderRow renders columns [from, to) of a row. Runs of equal color share
// one style so the escape overhead stays low.
func (c *Canvas) RenderRow(row, from, to int) string {
	if row < 0 || row >= c.rows {
		return ""
	}
	if from < 0 {
		from = 0
	}
	if to > c.cols {
		to = c.cols
	}
	if from >= to {
		return ""
	}

	var b strings.Builder
	var run strings.Builder
	runColor := ""

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if runColor == "" {
			b.WriteString(run.String())
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(runColor)).Render(run.String()))
		}
		run.Reset()
	}

	for col := from; col < to; col++ {
		cell := c.cells[row*c.cols+col]
		color := ""
		r := ' '
		if cell.Glyph != 0 {
			color = grayFor(cell.Alpha)
			r = cell.Glyph
		}
		if color != runColor {
			flush()
			runColor = color
		}
		run.WriteRune(r)
	}
	flush()

	return b.String()
}

// Render renders the whole canvas.
func (c *Canvas) Render() string {
	lines := make([]string, c.rows)
	for row := 0; row < c.rows; row++ {
		lines[row] = c.RenderRow(row, 0, c.cols)
	}
	return strings.Join(lines, "\n")
}

// glyphFor picks a glyph by star radius.
func glyphFor(radius float64) rune {
	switch {
	case radius < 0.4:
		return glyphTiny
	case radius < 0.8:
		return glyphSmall
	case radius < 1.2:
		return glyphMedium
	default:
		return glyphLarge
	}
}

// grayFor maps alpha onto the grayscale ramp.
func grayFor(alpha float64) string {
	alpha = clamp(alpha, 0, 1)
	idx := grayFirst + int(math.Round(alpha*float64(grayLast-grayFirst)))
	return fmt.Sprintf("%d", idx)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
