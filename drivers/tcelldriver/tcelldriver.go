// Package tcelldriver implements a headless, text-mode app.Driver using the
// tcell terminal library, for debugging and for environments with no GPU
// renderer. It is adapted from the teacher's drivers/tcell/tcell.go:
// PollMsgs keeps the same event-loop shape and key/mouse translation, while
// Flush is rebuilt to interpret a grid.RenderNode scene graph instead of a
// pre-rendered gruid.Frame, since this module's GridBuffer produces the
// former (spec.md §1/§4.6).
package tcelldriver

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/anaseto/nvim-gruid/app"
	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/grid"
	"github.com/anaseto/nvim-gruid/input"
)

// CellMetrics returns the grid.Metrics for a terminal: one column is one
// cell wide, one row is one cell tall, so RenderNode pixel coordinates are
// cell coordinates without conversion.
func CellMetrics() grid.Metrics {
	return grid.Metrics{AdvanceX: grid.FixedFromInt(1), LineY: grid.FixedFromInt(1)}
}

// Config configures a Driver.
type Config struct {
	DisableMouse bool
}

// Driver implements app.Driver using tcell.
type Driver struct {
	screen     tcell.Screen
	mouse      bool
	mousedrag  bool
	dragButton input.MouseButton
	init       bool

	width, height int
	cells         []cellState
}

// cellState accumulates the node(s) contributed to one terminal cell across
// a single Flush, since RenderNode splits a cell's background, glyph and
// decorations into separate nodes (spec.md §4.6).
type cellState struct {
	bg, fg, sp   colortable.Color
	text         rune
	underline    bool
	undercurl    bool
	strikethrough bool
}

// NewDriver returns a new Driver.
func NewDriver(cfg Config) *Driver {
	return &Driver{mouse: !cfg.DisableMouse}
}

// Init implements app.Driver.
func (dr *Driver) Init() error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	dr.screen = screen
	if err := dr.screen.Init(); err != nil {
		return err
	}
	dr.screen.SetStyle(tcell.StyleDefault)
	if dr.mouse {
		dr.screen.EnableMouse()
	} else {
		dr.screen.DisableMouse()
	}
	dr.screen.HideCursor()
	w, h := dr.screen.Size()
	dr.resize(w, h)
	dr.screen.PostEvent(tcell.NewEventResize(w, h))
	dr.init = true
	return nil
}

func (dr *Driver) resize(w, h int) {
	dr.width, dr.height = w, h
	dr.cells = make([]cellState, w*h)
}

// PollMsgs implements app.Driver.
func (dr *Driver) PollMsgs(ctx context.Context, msgs chan<- app.Msg) error {
	go func() {
		<-ctx.Done()
		n := 0
		err := dr.screen.PostEvent(tcell.NewEventInterrupt(0))
		for err != nil && n < 10 {
			n++
			err = dr.screen.PostEvent(tcell.NewEventInterrupt(0))
		}
	}()
	send := func(m app.Msg) {
		select {
		case msgs <- m:
		case <-ctx.Done():
		}
	}
	for {
		ev := dr.screen.PollEvent()
		if ev == nil {
			return errors.New("tcelldriver: screen was finished")
		}
		switch tev := ev.(type) {
		case *tcell.EventInterrupt:
			return nil
		case *tcell.EventError:
			return tev
		case *tcell.EventKey:
			if msg, ok := translateKey(tev); ok {
				send(msg)
			}
		case *tcell.EventMouse:
			if msg, ok := dr.translateMouse(tev); ok {
				send(msg)
			}
		case *tcell.EventResize:
			w, h := tev.Size()
			dr.resize(w, h)
			send(app.MsgResize{Cols: w, Rows: h})
		}
	}
}

var namedKeys = map[tcell.Key]string{
	tcell.KeyDown:      "ArrowDown",
	tcell.KeyLeft:       "ArrowLeft",
	tcell.KeyRight:      "ArrowRight",
	tcell.KeyUp:         "ArrowUp",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyDelete:     "Delete",
	tcell.KeyEnd:        "End",
	tcell.KeyEscape:     "Escape",
	tcell.KeyEnter:      "Enter",
	tcell.KeyHome:       "Home",
	tcell.KeyInsert:     "Insert",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyTab:        "Tab",
}

func translateKey(tev *tcell.EventKey) (app.MsgKey, bool) {
	var mod input.Mod
	m := tev.Modifiers()
	if m&tcell.ModShift != 0 {
		mod |= input.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mod |= input.ModControl
	}
	if m&tcell.ModAlt != 0 {
		mod |= input.ModMeta
	}
	if m&tcell.ModMeta != 0 { // never reported by tcell in practice
		mod |= input.ModSuper
	}

	name, named := namedKeys[tev.Key()]
	if tev.Key() == tcell.KeyBacktab {
		name, mod = "Tab", mod|input.ModShift
		named = true
	}
	if !named {
		if r := tev.Rune(); r != 0 {
			name = string(r)
		} else {
			return app.MsgKey{}, false
		}
	}
	return app.MsgKey{Event: input.KeyEvent{Key: name, Mod: mod}, Time: tev.When()}, true
}

func (dr *Driver) translateMouse(tev *tcell.EventMouse) (app.Msg, bool) {
	x, y := tev.Position()
	var mod input.Mod
	m := tev.Modifiers()
	if m&tcell.ModShift != 0 {
		mod |= input.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mod |= input.ModControl
	}
	if m&tcell.ModAlt != 0 {
		mod |= input.ModMeta
	}

	switch tev.Buttons() {
	case tcell.Button1:
		dr.mousedrag, dr.dragButton = true, input.ButtonLeft
		return app.MsgPointer{Grid: 1, Button: input.ButtonLeft, Pressed: true, X: float64(x), Y: float64(y), Mod: mod, Time: tev.When()}, true
	case tcell.Button2:
		dr.mousedrag, dr.dragButton = true, input.ButtonMiddle
		return app.MsgPointer{Grid: 1, Button: input.ButtonMiddle, Pressed: true, X: float64(x), Y: float64(y), Mod: mod, Time: tev.When()}, true
	case tcell.Button3:
		dr.mousedrag, dr.dragButton = true, input.ButtonRight
		return app.MsgPointer{Grid: 1, Button: input.ButtonRight, Pressed: true, X: float64(x), Y: float64(y), Mod: mod, Time: tev.When()}, true
	case tcell.WheelUp:
		return app.MsgWheel{Grid: 1, Dir: input.ActionWheelUp, X: float64(x), Y: float64(y), Mod: mod, Time: tev.When()}, true
	case tcell.WheelDown:
		return app.MsgWheel{Grid: 1, Dir: input.ActionWheelDown, X: float64(x), Y: float64(y), Mod: mod, Time: tev.When()}, true
	case tcell.ButtonNone:
		// InputRouter has no hover-move notion (spec.md §4.11 scopes pointer
		// motion to button-held drag), so a plain hover is never sent; only
		// the drag-ended transition is.
		if dr.mousedrag {
			dr.mousedrag = false
			return app.MsgPointer{Grid: 1, Button: dr.dragButton, Pressed: false, X: float64(x), Y: float64(y), Mod: mod, Time: tev.When()}, true
		}
	}
	return nil, false
}

// Flush implements app.Driver. It folds the scene graph's background, glyph
// and decoration nodes into a per-cell style buffer, then paints it onto
// the terminal in one pass, since tcell.Screen.SetContent takes one style
// per cell rather than a layered stack (spec.md §4.6).
func (dr *Driver) Flush(nodes []grid.RenderNode) {
	for i := range dr.cells {
		dr.cells[i] = cellState{}
	}
	for _, n := range nodes {
		col, row := n.Rect.X.Round(), n.Rect.Y.Round()
		width := n.Rect.W.Round()
		if width < 1 {
			width = 1
		}
		switch n.Kind {
		case grid.NodeBackground:
			dr.paintRange(row, col, width, func(c *cellState) { c.bg = n.Color })
		case grid.NodeText:
			dr.paintText(row, col, n.Text, n.Color)
		case grid.NodeUnderline:
			dr.paintRange(row, col, width, func(c *cellState) { c.underline = true; c.sp = n.Color })
		case grid.NodeUndercurl, grid.NodeUnderdouble, grid.NodeUnderdot, grid.NodeUnderdash:
			dr.paintRange(row, col, width, func(c *cellState) { c.undercurl = true; c.sp = n.Color })
		case grid.NodeStrikethrough:
			dr.paintRange(row, col, width, func(c *cellState) { c.strikethrough = true; c.sp = n.Color })
		}
	}
	for row := 0; row < dr.height; row++ {
		for col := 0; col < dr.width; col++ {
			c := dr.cells[row*dr.width+col]
			st := cellStyle(c)
			r := c.text
			if r == 0 {
				r = ' '
			}
			dr.screen.SetContent(col, row, r, nil, st)
		}
	}
	dr.screen.Show()
}

func (dr *Driver) paintRange(row, col, width int, f func(*cellState)) {
	if row < 0 || row >= dr.height {
		return
	}
	for x := col; x < col+width && x < dr.width; x++ {
		if x < 0 {
			continue
		}
		f(&dr.cells[row*dr.width+x])
	}
}

func (dr *Driver) paintText(row, col int, text string, fg colortable.Color) {
	if row < 0 || row >= dr.height {
		return
	}
	x := col
	for _, r := range text {
		if x < 0 {
			x += runewidth.RuneWidth(r)
			continue
		}
		if x >= dr.width {
			break
		}
		c := &dr.cells[row*dr.width+x]
		c.text = r
		c.fg = fg
		x += runewidth.RuneWidth(r)
	}
}

func cellStyle(c cellState) tcell.Style {
	st := tcell.StyleDefault
	if c.fg.Set {
		st = st.Foreground(tcell.NewRGBColor(int32(c.fg.R), int32(c.fg.G), int32(c.fg.B)))
	}
	if c.bg.Set {
		st = st.Background(tcell.NewRGBColor(int32(c.bg.R), int32(c.bg.G), int32(c.bg.B)))
	}
	if c.underline || c.undercurl {
		st = st.Underline(true)
	}
	if c.strikethrough {
		st = st.StrikeThrough(true)
	}
	return st
}

// Close implements app.Driver.
func (dr *Driver) Close() {
	if !dr.init {
		return
	}
	dr.screen.Fini()
	dr.init = false
}
