// Package grid implements the GridBuffer component: a rows×cols cell matrix
// with dirty tracking and a segmented render-node cache, keyed to the
// protocol's flush synchronization barrier (spec.md §4.6).
package grid

import (
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
)

// Margins are the viewport margins of spec.md §3's GridBuffer.
type Margins struct {
	Top, Bottom, Left, Right int
}

// scrollDelta is one queued entry of the viewport-shift animation history
// (spec.md §4.6's set_viewport_delta): a snapshot of the rows displaced by
// the shift, rendered at a decaying pixel offset until End.
type scrollDelta struct {
	snapshot []Row
	yOffset  Fixed
	start    time.Time
	end      time.Time
}

// Buffer is the GridBuffer component.
type Buffer struct {
	ID      int
	width   int
	height  int
	rows    []Row
	margins Margins

	scrollOffset Fixed
	deltas       []scrollDelta

	metrics Metrics
	shaper  *Shaper
}

// New creates a Buffer for id with the given size. Per spec.md §3 it starts
// with every row filled with blank cells.
func New(id, width, height int) *Buffer {
	b := &Buffer{ID: id, width: width, height: height}
	b.rows = make([]Row, height)
	for i := range b.rows {
		b.rows[i] = newRow(width)
	}
	return b
}

// SetShaper installs the glyph shaper used at flush time; also invalidates
// every cache slot, since spec.md §3 requires a font change to invalidate
// the whole grid.
func (b *Buffer) SetShaper(s *Shaper) {
	b.shaper = s
	b.metrics = s.Metrics()
	b.invalidateAll()
}

// Size returns (width, height) in cells.
func (b *Buffer) Size() (int, int) { return b.width, b.height }

// Margins returns the current viewport margins.
func (b *Buffer) Margins() Margins { return b.margins }

// SetMargins implements win_viewport_margins (spec.md's Open Question: kept
// minimal, only storage for use by the viewport mask node at flush).
func (b *Buffer) SetMargins(m Margins) { b.margins = m }

// PutLine applies decoded cells to a row starting at colStart, honoring
// per-cell repeat and double-width rules (spec.md §4.4/§4.6). cells must
// already carry resolved (text, hl, repeat) triples; EventDecoder performs
// the defaulting described in spec.md §4.4.
func (b *Buffer) PutLine(row, colStart int, cells []DecodedCell) {
	if row < 0 || row >= b.height {
		return
	}
	r := &b.rows[row]
	col := colStart
	for _, dc := range cells {
		for i := 0; i < dc.Repeat; i++ {
			if col >= b.width {
				break
			}
			r.Cells[col] = Cell{Text: dc.Text, Hl: dc.Hl}
			col++
		}
	}
	// A double-width cell's right half must be an explicit empty-text
	// cell supplied by the caller; a non-empty cell followed by an
	// empty-text cell is marked double-width.
	for i := colStart; i < col; i++ {
		if r.Cells[i].Text != "" && i+1 < b.width && r.Cells[i+1].Text == "" {
			r.Cells[i].DoubleWidth = true
		}
	}
	r.invalidateRange(colStart, col)
}

// DecodedCell is the already-defaulted form of one grid_line cell triple
// (spec.md §4.4's positional defaulting has already been applied by
// EventDecoder by the time PutLine sees it).
type DecodedCell struct {
	Text   string
	Hl     int
	Repeat int
}

// Resize reshapes the buffer, preserving in-range content (spec.md §4.6).
// New cells are blank; the last retained cell of each row is invalidated to
// avoid stale ligature segments at the new boundary.
func (b *Buffer) Resize(width, height int) {
	if width == b.width && height == b.height {
		return
	}
	newRows := make([]Row, height)
	for y := 0; y < height; y++ {
		if y < len(b.rows) {
			old := b.rows[y]
			nr := newRow(width)
			n := width
			if len(old.Cells) < n {
				n = len(old.Cells)
			}
			copy(nr.Cells, old.Cells[:n])
			if n > 0 && n <= len(nr.Cells) {
				nr.Cells[n-1].invalidate()
			}
			newRows[y] = nr
		} else {
			newRows[y] = newRow(width)
		}
	}
	b.rows = newRows
	b.width = width
	b.height = height
}

// Clear resets every cell to blank with hl 0 and invalidates all caches.
func (b *Buffer) Clear() {
	for y := range b.rows {
		for x := range b.rows[y].Cells {
			b.rows[y].Cells[x] = blank
		}
	}
}

// Scroll moves the rectangle [top,bot) x [left,right) by (rows, cols).
// cols is reserved by the protocol and must be 0 (spec.md §9's Open
// Question); any other value is a no-op guard, not a panic, since a future
// protocol version may define it.
func (b *Buffer) Scroll(top, bot, left, right, rows, cols int) {
	if cols != 0 {
		return
	}
	if rows == 0 {
		return
	}
	if rows > 0 {
		// content moves up: destination row y gets source row y+rows
		for y := top; y < bot-rows; y++ {
			src := y + rows
			if src >= bot {
				break
			}
			b.moveRowSegment(y, src, left, right)
		}
		// rows newly exposed at the bottom keep their position but must
		// reshape: spec.md §8 scenario 3.
		for y := bot - rows; y < bot; y++ {
			if y >= 0 && y < b.height {
				b.rows[y].invalidateRange(left, right)
			}
		}
	} else {
		for y := bot - 1; y >= top-rows; y-- {
			src := y + rows
			if src < top {
				break
			}
			b.moveRowSegment(y, src, left, right)
		}
		for y := top; y < top-rows; y++ {
			if y >= 0 && y < b.height {
				b.rows[y].invalidateRange(left, right)
			}
		}
	}
}

func (b *Buffer) moveRowSegment(dst, src, left, right int) {
	if dst < 0 || dst >= b.height || src < 0 || src >= b.height {
		return
	}
	if right > b.width {
		right = b.width
	}
	if left < 0 {
		left = 0
	}
	copy(b.rows[dst].Cells[left:right], b.rows[src].Cells[left:right])
	b.rows[dst].invalidateRange(left, right)
}

// SetViewportDelta begins an animation that visually shifts content by
// delta grid rows over dur, capturing a snapshot of the displaced rows so
// it can be drawn at a decaying offset while new rows render at their
// final position (spec.md §4.6). Overlapping deltas compose additively.
func (b *Buffer) SetViewportDelta(delta int, dur time.Duration, now time.Time) {
	if delta == 0 {
		return
	}
	snap := make([]Row, len(b.rows))
	for i, r := range b.rows {
		cells := make([]Cell, len(r.Cells))
		copy(cells, r.Cells)
		snap[i] = Row{Cells: cells}
	}
	yOffset := b.metrics.LineY * Fixed(delta)
	b.deltas = append(b.deltas, scrollDelta{
		snapshot: snap,
		yOffset:  yOffset,
		start:    now,
		end:      now.Add(dur),
	})
}

// pruneDeltas drops animations that have finished by now.
func (b *Buffer) pruneDeltas(now time.Time) {
	kept := b.deltas[:0]
	for _, d := range b.deltas {
		if now.Before(d.end) {
			kept = append(kept, d)
		}
	}
	b.deltas = kept
}

func (b *Buffer) invalidateAll() {
	for y := range b.rows {
		b.rows[y].invalidateRange(0, len(b.rows[y].Cells))
	}
}

// Flush composes dirty segments into maximal equal-hl runs, shapes each run
// once, and returns the render nodes for the whole grid: per-run background
// and text nodes, decoration nodes keyed by attrs, and a trailing viewport
// mask node. After Flush the grid is clean. colors resolves highlight ids
// to concrete colors/attrs (spec.md §4.6).
func (b *Buffer) Flush(colors *colortable.Table, now time.Time) []RenderNode {
	b.pruneDeltas(now)
	var nodes []RenderNode
	for y := range b.rows {
		row := &b.rows[y]
		if !row.Dirty() {
			// a clean row re-emits the nodes cached in its cells' slots,
			// once per slot
			var prev *cacheSlot
			for _, c := range row.Cells {
				if c.node != prev {
					nodes = append(nodes, c.node.nodes...)
					prev = c.node
				}
			}
			continue
		}
		runs := segmentRuns(row.Cells)
		for i, run := range runs {
			slot := &cacheSlot{nodes: b.shapeRun(run, y, colors)}
			// runs are contiguous and cover the whole row (a double-width
			// cell's zero-width right half belongs to the run that
			// precedes it), so the next run's startCol is this run's
			// exclusive end.
			end := len(row.Cells)
			if i+1 < len(runs) {
				end = runs[i+1].startCol
			}
			for col := run.startCol; col < end; col++ {
				row.Cells[col].node = slot
			}
			nodes = append(nodes, slot.nodes...)
		}
	}
	if b.width > 0 && b.height > 0 {
		nodes = append(nodes, b.viewportMaskNode())
	}
	return nodes
}

// cellRun is a maximal sequence of cells that shape together: equal hl id,
// never spanning a double-width boundary.
type cellRun struct {
	startCol int
	text     string
	hl       int
}

func segmentRuns(cells []Cell) []cellRun {
	var runs []cellRun
	var cur *cellRun
	for i, c := range cells {
		if c.Width() == 0 {
			continue // right half of double-width cell: no run of its own
		}
		brk := c.DoubleWidth
		if cur == nil || cur.hl != c.Hl || brk {
			if cur != nil {
				runs = append(runs, *cur)
			}
			cur = &cellRun{startCol: i, text: c.Text, hl: c.Hl}
			if brk {
				runs = append(runs, *cur)
				cur = nil
			}
			continue
		}
		cur.text += c.Text
	}
	if cur != nil {
		runs = append(runs, *cur)
	}
	return runs
}

func (b *Buffer) shapeRun(run cellRun, row int, colors *colortable.Table) []RenderNode {
	resolved := colors.Resolve(run.hl)
	cols := len([]rune(run.text))
	if cols == 0 {
		cols = 1
	}
	x := b.metrics.ColToX(run.startCol)
	y := b.metrics.RowToY(row)
	w := b.metrics.ColToX(run.startCol + cols)
	width := w - x
	rect := Rect{X: x, Y: y, W: width, H: b.metrics.LineY}

	nodes := []RenderNode{
		{Kind: NodeBackground, Rect: rect, Color: resolved.Bg, Row: row},
		{Kind: NodeText, Rect: rect, Color: resolved.Fg, Text: run.text, Row: row},
	}
	nodes = append(nodes, decorationNodes(resolved, rect, row)...)
	return nodes
}

func decorationNodes(r colortable.Resolved, rect Rect, row int) []RenderNode {
	var nodes []RenderNode
	add := func(kind RenderNodeKind) {
		nodes = append(nodes, RenderNode{Kind: kind, Rect: rect, Color: r.Sp, Row: row})
	}
	a := r.Attrs
	switch {
	case a.Underdouble:
		add(NodeUnderdouble)
	case a.Undercurl:
		add(NodeUndercurl)
	case a.Underdot:
		add(NodeUnderdot)
	case a.Underdash:
		add(NodeUnderdash)
	case a.Underline:
		add(NodeUnderline)
	}
	if a.Strikethrough {
		add(NodeStrikethrough)
	}
	return nodes
}

func (b *Buffer) viewportMaskNode() RenderNode {
	m := b.margins
	x := b.metrics.ColToX(m.Left)
	y := b.metrics.RowToY(m.Top)
	w := b.metrics.ColToX(b.width-m.Right) - x
	h := b.metrics.RowToY(b.height-m.Bottom) - y
	return RenderNode{Kind: NodeViewportMask, Rect: Rect{X: x, Y: y, W: w, H: h}}
}

// Row returns a copy-free view of row y for read-only inspection (tests,
// InputRouter hit-testing).
func (b *Buffer) Row(y int) Row {
	return b.rows[y]
}

// Text returns the visible text of row y: cell texts concatenated,
// skipping the empty right halves of double-width cells (spec.md §8's
// round-trip invariant).
func (b *Buffer) Text(y int) string {
	var s []byte
	for _, c := range b.rows[y].Cells {
		s = append(s, c.Text...)
	}
	return string(s)
}
