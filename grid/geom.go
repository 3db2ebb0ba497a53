package grid

import "fmt"

// Point is a grid-relative cell coordinate (column, row), never a pixel
// coordinate — pixel coordinates use the distinct Fixed/PixelPoint types in
// fixed.go so the two spaces cannot be mixed up by the type checker.
type Point struct {
	X, Y int
}

// Shift returns the point shifted by (dx, dy).
func (p Point) Shift(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// In reports whether p lies within rg.
func (p Point) In(rg Range) bool {
	return p.X >= rg.Min.X && p.X < rg.Max.X && p.Y >= rg.Min.Y && p.Y < rg.Max.Y
}

// Range is a half-open rectangle of grid cells: [Min, Max).
type Range struct {
	Min, Max Point
}

// NewRange returns the range with corners (x0,y0) and (x1,y1), normalized so
// that Min <= Max componentwise.
func NewRange(x0, y0, x1, y1 int) Range {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return Range{Min: Point{x0, y0}, Max: Point{x1, y1}}
}

// Size returns (width, height) as a Point.
func (rg Range) Size() Point {
	if rg.Empty() {
		return Point{}
	}
	return Point{X: rg.Max.X - rg.Min.X, Y: rg.Max.Y - rg.Min.Y}
}

// Empty reports whether the range contains no cells.
func (rg Range) Empty() bool {
	return rg.Min.X >= rg.Max.X || rg.Min.Y >= rg.Max.Y
}

// Sub returns rg translated so that its Min becomes the origin shifted by
// -p; i.e. the range expressed relative to p.
func (rg Range) Sub(p Point) Range {
	return Range{Min: rg.Min.Shift(-p.X, -p.Y), Max: rg.Max.Shift(-p.X, -p.Y)}
}

// Shift returns rg with Min shifted by (dx0,dy0) and Max shifted by
// (dx1,dy1).
func (rg Range) Shift(dx0, dy0, dx1, dy1 int) Range {
	return Range{Min: rg.Min.Shift(dx0, dy0), Max: rg.Max.Shift(dx1, dy1)}
}

// Line returns the sub-range restricted to row y.
func (rg Range) Line(y int) Range {
	return rg.Lines(y, y+1)
}

// Lines returns the sub-range restricted to rows [y0, y1).
func (rg Range) Lines(y0, y1 int) Range {
	nrg := rg
	nrg.Min.Y = rg.Min.Y + y0
	nrg.Max.Y = rg.Min.Y + y1
	if nrg.Min.Y < rg.Min.Y {
		nrg.Min.Y = rg.Min.Y
	}
	if nrg.Max.Y > rg.Max.Y {
		nrg.Max.Y = rg.Max.Y
	}
	return nrg
}

// Column returns the sub-range restricted to column x.
func (rg Range) Column(x int) Range {
	nrg := rg
	nrg.Min.X = rg.Min.X + x
	nrg.Max.X = rg.Min.X + x + 1
	if nrg.Max.X > rg.Max.X {
		nrg.Max.X = rg.Max.X
	}
	return nrg
}

// Intersect returns the overlap of rg and other; the result is Empty if they
// do not overlap.
func (rg Range) Intersect(other Range) Range {
	nrg := Range{
		Min: Point{X: max(rg.Min.X, other.Min.X), Y: max(rg.Min.Y, other.Min.Y)},
		Max: Point{X: min(rg.Max.X, other.Max.X), Y: min(rg.Max.Y, other.Max.Y)},
	}
	if nrg.Empty() {
		return Range{}
	}
	return nrg
}

// Iter calls fn for every point in rg, in row-major order.
func (rg Range) Iter(fn func(Point)) {
	for y := rg.Min.Y; y < rg.Max.Y; y++ {
		for x := rg.Min.X; x < rg.Max.X; x++ {
			fn(Point{x, y})
		}
	}
}

func (rg Range) String() string {
	return fmt.Sprintf("[(%d,%d)-(%d,%d))", rg.Min.X, rg.Min.Y, rg.Max.X, rg.Max.Y)
}
