package grid

// Fixed is a 26.6 fixed-point value (the convention golang.org/x/image/font
// uses for glyph metrics), giving exact integer pixel math for column/row
// to pixel conversion without floating point drift across many small
// increments.
type Fixed int32

const fixedScale = 1 << 6

// FixedFromInt converts a whole-pixel integer to Fixed.
func FixedFromInt(n int) Fixed { return Fixed(n * fixedScale) }

// Round rounds toward zero to the nearest whole pixel, as spec.md §4.6
// requires for column/row conversions (scrollbar clamping rounds down
// instead, via FloorInt).
func (f Fixed) Round() int {
	if f >= 0 {
		return int(f) / fixedScale
	}
	return -(int(-f) / fixedScale)
}

// FloorInt rounds down (toward negative infinity), used for scrollbar
// clamping per spec.md §4.6.
func (f Fixed) FloorInt() int {
	return int(f) >> 6
}

// Metrics holds the font metrics needed to convert between grid and pixel
// space: the advance width of one column and the height of one line, both
// in fixed-point pixels.
type Metrics struct {
	AdvanceX Fixed
	LineY    Fixed
}

// PixelPoint is a pixel-space coordinate; never a grid cell coordinate.
type PixelPoint struct {
	X, Y Fixed
}

// ColToX converts a column index to the x pixel coordinate of its left
// edge.
func (m Metrics) ColToX(col int) Fixed { return Fixed(col) * m.AdvanceX }

// RowToY converts a row index to the y pixel coordinate of its top edge.
func (m Metrics) RowToY(row int) Fixed { return Fixed(row) * m.LineY }

// XToCol converts a pixel x coordinate to the column it falls within.
func (m Metrics) XToCol(x Fixed) int {
	if m.AdvanceX == 0 {
		return 0
	}
	return x.FloorInt() / (m.AdvanceX.FloorInt())
}

// YToRow converts a pixel y coordinate to the row it falls within.
func (m Metrics) YToRow(y Fixed) int {
	if m.LineY == 0 {
		return 0
	}
	return y.FloorInt() / (m.LineY.FloorInt())
}
