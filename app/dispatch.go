package app

import (
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/cursor"
	"github.com/anaseto/nvim-gruid/grid"
	"github.com/anaseto/nvim-gruid/messages"
	"github.com/anaseto/nvim-gruid/popupmenu"
	"github.com/anaseto/nvim-gruid/redraw"
	"github.com/anaseto/nvim-gruid/shell"
)

// cursorMoveDur is the duration of the position-animation cursor.Goto
// starts for every grid_cursor_goto (spec.md §4.7 leaves the exact easing
// duration to the implementation).
const cursorMoveDur = 80 * time.Millisecond

// applyEvents walks one decoded redraw batch in order and mutates Shell,
// ColorTable, Cursor, Messages and Popupmenu accordingly (spec.md §4.4/§5:
// "within a single redraw notification, events are applied in order").
// Immediate resize requests produced by win_float_pos clamping are
// collected and returned for the caller to issue right away (spec.md
// §4.12: "resize requests computed for other grids... are sent
// immediately", unlike the debounced base-grid resize).
func (a *App) applyEvents(events []redraw.Event, now time.Time) (flushed bool, resizes []*shell.ResizeRequest) {
	for _, ev := range events {
		switch e := ev.(type) {
		case redraw.SetTitle:
			a.title = e.Title
		case redraw.SetIcon:
			a.icon = e.Icon
		case redraw.ModeInfoSet:
			a.cursor.SetModes(convertModes(e.Modes))
		case redraw.OptionSet:
			a.applyOption(e)
		case redraw.ModeChange:
			a.cursor.SetMode(e.ModeIdx)
		case redraw.MouseOn:
			a.mouseEnabled = true
		case redraw.MouseOff:
			a.mouseEnabled = false
		case redraw.BusyStart:
			a.shell.BusyStart()
		case redraw.BusyStop:
			a.shell.BusyStop()
		case redraw.Suspend:
		case redraw.UpdateMenu:
		case redraw.Bell, redraw.VisualBell:
		case redraw.Flush:
			flushed = true

		case redraw.GridResize:
			a.shell.Grid(e.Grid, e.Width, e.Height)
		case redraw.DefaultColorsSet:
			a.colors.SetDefaultColors(colortable.RGB(e.Fg), colortable.RGB(e.Bg), colortable.RGB(e.Sp))
		case redraw.HlAttrDefine:
			a.colors.DefineAttr(e.ID, convertHighlight(e.Attrs))
		case redraw.HlGroupSet:
			a.colors.BindGroup(e.Name, e.ID)
		case redraw.GridLine:
			if g := a.shell.Window(e.Grid); g != nil {
				g.Grid.PutLine(e.Row, e.ColStart, e.ResolveCells())
			}
		case redraw.GridClear:
			if g := a.shell.Window(e.Grid); g != nil {
				g.Grid.Clear()
			}
		case redraw.GridDestroy:
			a.shell.DestroyGrid(e.Grid)
		case redraw.GridCursorGoto:
			a.cursorGrid = e.Grid
			a.updateCursorNode(e.Grid, e.Row, e.Col, now)
		case redraw.GridScroll:
			if g := a.shell.Window(e.Grid); g != nil {
				g.Grid.Scroll(e.Top, e.Bot, e.Left, e.Right, e.Rows, e.Cols)
			}

		case redraw.WinPos:
			a.shell.WinPos(e.Grid, e.Row, e.Col, e.Width, e.Height)
		case redraw.WinFloatPos:
			anchor := shell.CornerNW
			switch e.Anchor {
			case "NE":
				anchor = shell.CornerNE
			case "SW":
				anchor = shell.CornerSW
			case "SE":
				anchor = shell.CornerSE
			}
			if req := a.shell.WinFloatPos(e.Grid, e.AnchorGrid, anchor, e.AnchorRow, e.AnchorCol, e.ZIndex, e.Focusable); req != nil {
				resizes = append(resizes, req)
			}
		case redraw.WinExternalPos:
			a.shell.WinExternalPos(e.Grid, e.Win)
		case redraw.WinHide:
			a.shell.WinHide(e.Grid)
		case redraw.WinClose:
			a.shell.WinClose(e.Grid)
		case redraw.MsgSetPos:
			a.shell.MsgSetPos(e.Grid, e.Row, e.Scrolled, e.SepChar)
		case redraw.WinViewport:
			// Topline/Botline/Curline/Curcol/LineCount are scrollbar-thumb
			// hints (spec.md §3); no widget consumes them yet.
		case redraw.WinViewportMargins:
			if g := a.shell.Window(e.Grid); g != nil {
				g.Grid.SetMargins(grid.Margins{Top: e.Top, Bottom: e.Bottom, Left: e.Left, Right: e.Right})
			}

		case redraw.PopupmenuShow:
			a.popupmenu.Show(convertItems(e.Items), e.Selected, e.Grid, e.Row, e.Col)
		case redraw.PopupmenuSelect:
			a.popupmenu.Select(e.Selected)
		case redraw.PopupmenuHide:
			a.popupmenu.Hide()

		case redraw.MsgShow:
			a.messages.Show(e.Kind, convertChunks(e.Content), e.ReplaceLast)
		case redraw.MsgClear:
			a.messages.Clear()
		case redraw.MsgHistoryShow:
			a.messages.HistoryShow(convertHistory(e.Entries))
		case redraw.MsgHistoryClear:
			a.messages.HistoryClear()
		case redraw.MsgShowmode:
			a.showmode = convertChunks(e.Content)
		case redraw.MsgShowcmd:
			a.showcmd = convertChunks(e.Content)
		case redraw.MsgRuler:
			a.ruler = convertChunks(e.Content)

		case redraw.Unknown:
			if a.logger != nil {
				a.logger.Printf("redraw: ignoring unrecognized event %q", e.Name)
			}
		}
	}
	return flushed, resizes
}

func (a *App) updateCursorNode(gridID, row, col int, now time.Time) {
	w := a.shell.Window(gridID)
	if w == nil {
		return
	}
	width, height := w.Grid.Size()
	doubleWidth := false
	text := ""
	hl := 0
	if row >= 0 && row < height && col >= 0 && col < width {
		c := w.Grid.Row(row).Cells[col]
		text, hl, doubleWidth = c.Text, c.Hl, c.DoubleWidth
	}
	a.cursor.Goto(col, row, doubleWidth, text, hl, a.metrics, cursorMoveDur, now)
}

func (a *App) applyOption(e redraw.OptionSet) {
	switch e.Name {
	case "guifont":
		spec, _ := e.Value.(string)
		a.guifont = spec
		a.reloadFont()
	case "linespace":
		n, _ := toIntOption(e.Value)
		a.linespace = n
		a.reloadFont()
	}
}

func (a *App) reloadFont() {
	if a.fontLoader == nil {
		return
	}
	shaper, err := a.fontLoader(a.guifont, a.linespace)
	if err != nil {
		if a.logger != nil {
			a.logger.Printf("option_set guifont %q: %v", a.guifont, err)
		}
		return
	}
	a.metrics = shaper.Metrics()
	a.shell.SetFont(shaper)
}

func toIntOption(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

func convertModes(modes []redraw.ModeInfoEntry) []cursor.ModeInfo {
	out := make([]cursor.ModeInfo, len(modes))
	for i, m := range modes {
		shape := cursor.ShapeBlock
		switch m.CursorShape {
		case "horizontal":
			shape = cursor.ShapeHorizontal
		case "vertical":
			shape = cursor.ShapeVertical
		}
		out[i] = cursor.ModeInfo{
			Shape:       shape,
			// m.CellPercent is already normalized to a (0,1] fraction by
			// decodeModeInfoSet; no further division here.
			CellPercent: m.CellPercent,
			BlinkWait:   time.Duration(m.BlinkWait) * time.Millisecond,
			BlinkOff:    time.Duration(m.BlinkOff) * time.Millisecond,
			BlinkOn:     time.Duration(m.BlinkOn) * time.Millisecond,
			AttrID:      m.AttrID,
			HasAttrID:   m.HasAttrID,
		}
	}
	return out
}

func convertHighlight(raw redraw.RawHighlight) colortable.HighlightAttrs {
	attrs := colortable.HighlightAttrs{
		Blend:         raw.Blend,
		HasBlend:      raw.HasBlend,
		Reverse:       raw.Reverse,
		Italic:        raw.Italic,
		Bold:          raw.Bold,
		Strikethrough: raw.Strikethrough,
		Underline:     raw.Underline,
		Underdouble:   raw.Underdouble,
		Undercurl:     raw.Undercurl,
		Underdot:      raw.Underdot,
		Underdash:     raw.Underdash,
	}
	if raw.HasForeground {
		attrs.Fg = colortable.RGB(raw.Foreground)
	}
	if raw.HasBackground {
		attrs.Bg = colortable.RGB(raw.Background)
	}
	if raw.HasSpecial {
		attrs.Sp = colortable.RGB(raw.Special)
	}
	return attrs
}

func convertItems(items []redraw.PopupmenuItemData) []popupmenu.Item {
	out := make([]popupmenu.Item, len(items))
	for i, it := range items {
		out[i] = popupmenu.Item{Word: it.Word, Kind: it.Kind, Menu: it.Menu, Info: it.Info}
	}
	return out
}

func convertChunks(chunks []redraw.MessageChunk) []messages.Chunk {
	out := make([]messages.Chunk, len(chunks))
	for i, c := range chunks {
		out[i] = messages.Chunk{Hl: c.Hl, Text: c.Text}
	}
	return out
}

func convertHistory(entries []redraw.MsgHistoryEntry) []messages.Message {
	out := make([]messages.Message, len(entries))
	for i, e := range entries {
		out[i] = messages.Message{Kind: e.Kind, Content: convertChunks(e.Content)}
	}
	return out
}
