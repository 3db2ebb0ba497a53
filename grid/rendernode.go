package grid

import "github.com/anaseto/nvim-gruid/colortable"

// RenderNodeKind discriminates the small closed set of scene-graph node
// kinds a GridBuffer flush can produce. No inheritance is used (spec.md
// §9): a tagged variant plays the same role an enum class hierarchy would
// in other languages.
type RenderNodeKind int

const (
	NodeBackground RenderNodeKind = iota
	NodeText
	NodeUnderline
	NodeUnderdouble
	NodeUndercurl
	NodeUnderdot
	NodeUnderdash
	NodeStrikethrough
	NodeViewportMask
)

// RenderNode is one piece of the scene graph produced by a flush: either a
// solid background rect, a shaped glyph run, a decoration line, or a
// viewport clip mask. Rect is in grid-relative pixel space (PixelPoint),
// sized in fixed-point pixels.
type RenderNode struct {
	Kind  RenderNodeKind
	Rect  Rect
	Color colortable.Color
	Text  string // meaningful only for NodeText
	Row   int    // originating row, for ordering/debugging
}

// Rect is an axis-aligned pixel rectangle.
type Rect struct {
	X, Y, W, H Fixed
}

// shapedRun is the output of shaping one maximal run of equal-hl,
// non-double-width-spanning cells (spec.md §4.6's flush algorithm).
type shapedRun struct {
	text  string
	hl    int
	nodes []RenderNode
}
