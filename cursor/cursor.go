// Package cursor implements the Cursor component: logical grid position,
// blink phase, mode-dependent shape, and the resulting render node (spec.md
// §4.7). The blink state machine and position-animation easing are adapted
// from the teacher's Animation/Schedule helpers (animation.go, schedule.go),
// generalized here into an explicit finite state machine driven by ticks
// instead of one-shot scheduled callbacks, since a cursor blinks
// indefinitely rather than running to completion.
package cursor

import (
	"fmt"
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/grid"
)

// Shape is the cursor's rendered geometry.
type Shape int

const (
	ShapeBlock Shape = iota
	ShapeHorizontal
	ShapeVertical
)

// ModeInfo is one entry of the mode_info_set list (spec.md §3).
type ModeInfo struct {
	Shape         Shape
	CellPercent   float64 // in (0,1]
	BlinkWait     time.Duration
	BlinkOff      time.Duration
	BlinkOn       time.Duration
	AttrID        int
	HasAttrID     bool
}

// blinkState is the cursor's blink phase.
type blinkState int

const (
	blinkWait blinkState = iota
	blinkOff
	blinkOn
)

// Cursor is the Cursor component.
type Cursor struct {
	col, row    int
	doubleWidth bool
	text        string
	hl          int

	modes   []ModeInfo
	modeIdx int

	state     blinkState
	stateSince time.Time
	alpha     float64

	animFrom, animTo grid.PixelPoint
	animStart, animEnd time.Time
	animating         bool
	posSet            bool

	node grid.RenderNode
	dirty bool
}

// New creates a Cursor with no position set yet.
func New() *Cursor {
	return &Cursor{alpha: 1, dirty: true}
}

// SetModes installs the mode_info_set list.
func (c *Cursor) SetModes(modes []ModeInfo) {
	c.modes = modes
	c.dirty = true
}

// SetMode implements mode_change: selects the active mode by index.
func (c *Cursor) SetMode(idx int) {
	c.modeIdx = idx
	c.dirty = true
}

func (c *Cursor) currentMode() ModeInfo {
	if c.modeIdx >= 0 && c.modeIdx < len(c.modes) {
		return c.modes[c.modeIdx]
	}
	return ModeInfo{Shape: ShapeBlock, CellPercent: 1}
}

// Goto implements grid_cursor_goto: updates logical position, resets the
// blink state machine to Wait, and begins a position animation from the
// current interpolated pixel position to the new target (spec.md §4.7). If
// no position was previously set, it snaps instead of animating.
func (c *Cursor) Goto(col, row int, doubleWidth bool, text string, hl int, m grid.Metrics, dur time.Duration, now time.Time) {
	target := grid.PixelPoint{X: m.ColToX(col), Y: m.RowToY(row)}
	if !c.posSet {
		c.animFrom = target
		c.animTo = target
		c.animating = false
		c.posSet = true
	} else {
		c.animFrom = c.interpolated(now)
		c.animTo = target
		c.animStart = now
		c.animEnd = now.Add(dur)
		c.animating = dur > 0
	}
	c.col, c.row = col, row
	c.doubleWidth = doubleWidth
	c.text = text
	c.hl = hl
	c.state = blinkWait
	c.stateSince = now
	c.dirty = true
}

// interpolated returns the current animated pixel position using
// ease-out-cubic easing.
func (c *Cursor) interpolated(now time.Time) grid.PixelPoint {
	if !c.animating {
		return c.animTo
	}
	total := c.animEnd.Sub(c.animStart)
	if total <= 0 {
		return c.animTo
	}
	elapsed := now.Sub(c.animStart)
	if elapsed >= total {
		return c.animTo
	}
	t := float64(elapsed) / float64(total)
	e := 1 - (1-t)*(1-t)*(1-t) // ease-out-cubic
	lerp := func(a, b grid.Fixed) grid.Fixed {
		return a + grid.Fixed(float64(b-a)*e)
	}
	return grid.PixelPoint{
		X: lerp(c.animFrom.X, c.animTo.X),
		Y: lerp(c.animFrom.Y, c.animTo.Y),
	}
}

// Tick advances the blink state machine and position animation to now,
// returning whether the cursor needs redrawing. If any of blinkwait,
// blinkoff, blinkon is 0, blinking is disabled and alpha stays 1 (spec.md
// §4.7).
func (c *Cursor) Tick(now time.Time) bool {
	redraw := false

	if c.animating {
		if !now.Before(c.animEnd) {
			c.animating = false
		}
		redraw = true
	}

	m := c.currentMode()
	if m.BlinkWait == 0 || m.BlinkOff == 0 || m.BlinkOn == 0 {
		if c.alpha != 1 {
			c.alpha = 1
			redraw = true
		}
		return redraw
	}

	elapsed := now.Sub(c.stateSince)
	switch c.state {
	case blinkWait:
		if c.alpha != 1 {
			c.alpha = 1
			redraw = true
		}
		if elapsed >= m.BlinkWait {
			c.state = blinkOff
			c.stateSince = now
			c.alpha = 0
			redraw = true
		}
	case blinkOff:
		if c.alpha != 0 {
			c.alpha = 0
			redraw = true
		}
		if elapsed >= m.BlinkOff {
			c.state = blinkOn
			c.stateSince = now
			c.alpha = 1
			redraw = true
		}
	case blinkOn:
		if c.alpha != 1 {
			c.alpha = 1
			redraw = true
		}
		if elapsed >= m.BlinkOn {
			c.state = blinkOff
			c.stateSince = now
			c.alpha = 0
			redraw = true
		}
	}
	if redraw {
		c.dirty = true
	}
	return redraw
}

// Render produces the cursor's render node: a background rect in the mode's
// attribute bg (falling back to the underlying cell's bg), clipped
// foreground text in the mode's attribute fg (falling back to the cell's
// fg), the whole clipped to the
// cursor's own width — a fraction of a cell per cell_percent, doubled when
// over a double-width cell (spec.md §4.7). alpha 0 yields an empty node.
func (c *Cursor) Render(colors *colortable.Table, m grid.Metrics, now time.Time) []grid.RenderNode {
	c.dirty = false
	if !c.posSet || c.alpha == 0 {
		return nil
	}
	mode := c.currentMode()
	resolved := colors.Resolve(c.hl)
	bg := resolved.Bg
	fg := resolved.Fg
	if mode.HasAttrID {
		attr := colors.Resolve(mode.AttrID)
		if attr.Bg.Set {
			bg = attr.Bg
		}
		if attr.Fg.Set {
			fg = attr.Fg
		}
	}

	pos := c.interpolated(now)
	width := m.AdvanceX
	if c.doubleWidth {
		width *= 2
	}
	h := m.LineY
	switch mode.Shape {
	case ShapeHorizontal:
		frac := mode.CellPercent
		if frac <= 0 || frac > 1 {
			frac = 1
		}
		y := pos.Y + grid.Fixed(float64(h)*(1-frac))
		pos = grid.PixelPoint{X: pos.X, Y: y}
		h = grid.Fixed(float64(h) * frac)
	case ShapeVertical:
		frac := mode.CellPercent
		if frac <= 0 || frac > 1 {
			frac = 1
		}
		width = grid.Fixed(float64(width) * frac)
	}

	rect := grid.Rect{X: pos.X, Y: pos.Y, W: width, H: h}
	bgNode := grid.RenderNode{Kind: grid.NodeBackground, Rect: rect, Color: bg, Row: c.row}
	c.node = bgNode
	if c.text == "" {
		return []grid.RenderNode{bgNode}
	}
	textNode := grid.RenderNode{Kind: grid.NodeText, Rect: rect, Color: fg, Text: c.text, Row: c.row}
	return []grid.RenderNode{bgNode, textNode}
}

// Position returns the cursor's last-set logical (col, row).
func (c *Cursor) Position() (int, int) { return c.col, c.row }

// Dirty reports whether the cursor needs redrawing since the last Render.
func (c *Cursor) Dirty() bool { return c.dirty }

// DebugLabel returns a short grid/row/col readout for an optional debug
// overlay (supplemented from the original gnvim's cursor tooltip). It has
// no effect on protocol state and is meaningful only to a driver that
// chooses to draw it.
func (c *Cursor) DebugLabel(gridID int) string {
	return fmt.Sprintf("grid=%d row=%d col=%d", gridID, c.row, c.col)
}
