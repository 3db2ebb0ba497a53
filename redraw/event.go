// Package redraw implements the EventDecoder component: it turns a
// `redraw` notification's batched occurrences into a flat sequence of
// typed Event values (spec.md §4.4). No inheritance is used for the event
// sum type (spec.md §9): Event is a closed interface implemented by one
// struct per recognized event name, the same tagged-variant convention
// package grid uses for RenderNodeKind.
package redraw

import "github.com/anaseto/nvim-gruid/grid"

// Event is the closed sum of redraw event occurrences the decoder
// produces.
type Event interface {
	eventName() string
}

// ModeInfoEntry is one entry of a mode_info_set event's mode list (spec.md
// §3's ModeInfo).
type ModeInfoEntry struct {
	CursorShape   string
	CellPercent   float64
	BlinkWait     int
	BlinkOff      int
	BlinkOn       int
	AttrID        int
	HasAttrID     bool
}

// CellData is one undecoded grid_line cell triple, before EventDecoder's
// positional defaulting is resolved into grid.DecodedCell (spec.md §4.4).
type CellData struct {
	Text    string
	Hl      int
	HasHl   bool
	Repeat  int
	HasRepeat bool
}

type SetTitle struct{ Title string }
type SetIcon struct{ Icon string }
type ModeInfoSet struct {
	CursorStyleEnabled bool
	Modes              []ModeInfoEntry
}
type OptionSet struct {
	Name  string
	Value interface{}
}
type ModeChange struct {
	Mode    string
	ModeIdx int
}
type MouseOn struct{}
type MouseOff struct{}
type BusyStart struct{}
type BusyStop struct{}
type Suspend struct{}
type UpdateMenu struct{}
type Bell struct{}
type VisualBell struct{}
type Flush struct{}

type GridResize struct{ Grid, Width, Height int }
type DefaultColorsSet struct {
	Fg, Bg, Sp uint32
}
type HlAttrDefine struct {
	ID    int
	Attrs RawHighlight
}

// RawHighlight is the wire-level attrs map for hl_attr_define, before
// colortable.HighlightAttrs construction.
type RawHighlight struct {
	Foreground, Background, Special             uint32
	HasForeground, HasBackground, HasSpecial    bool
	Reverse, Italic, Bold, Strikethrough         bool
	Underline, Underdouble, Undercurl            bool
	Underdot, Underdash                          bool
	Blend                                        int
	HasBlend                                     bool
}

type HlGroupSet struct {
	Name string
	ID   int
}
type GridLine struct {
	Grid, Row, ColStart int
	Cells               []CellData
}
// ResolveCells applies grid_line's positional hl-id inheritance (spec.md
// §4.4: a cell without an explicit hl id inherits the previous cell's) and
// produces the DecodedCell form GridBuffer.PutLine consumes. Decode already
// guarantees the first cell carries an explicit hl id.
func (g GridLine) ResolveCells() []grid.DecodedCell {
	out := make([]grid.DecodedCell, 0, len(g.Cells))
	hl := 0
	for _, c := range g.Cells {
		if c.HasHl {
			hl = c.Hl
		}
		out = append(out, grid.DecodedCell{Text: c.Text, Hl: hl, Repeat: c.Repeat})
	}
	return out
}

type GridClear struct{ Grid int }
type GridDestroy struct{ Grid int }
type GridCursorGoto struct{ Grid, Row, Col int }
type GridScroll struct {
	Grid, Top, Bot, Left, Right, Rows, Cols int
}

type WinPos struct {
	Grid, Win, Row, Col, Width, Height int
}
type WinFloatPos struct {
	Grid, Win                   int
	AnchorGrid                  int
	Anchor                      string
	AnchorRow, AnchorCol        float64
	ZIndex                      int
	Focusable                   bool
}
type WinExternalPos struct{ Grid, Win int }
type WinHide struct{ Grid int }
type WinClose struct{ Grid int }
type MsgSetPos struct {
	Grid, Row int
	Scrolled  bool
	SepChar   string
}
type WinViewport struct {
	Grid                                 int
	Topline, Botline, Curline, Curcol    int
	LineCount                            int
}
type WinViewportMargins struct {
	Grid, Top, Bottom, Left, Right int
}

type PopupmenuItemData struct {
	Word, Kind, Menu, Info string
}
type PopupmenuShow struct {
	Items              []PopupmenuItemData
	Selected           int
	Row, Col           int
	Grid               int
}
type PopupmenuSelect struct{ Selected int }
type PopupmenuHide struct{}

type MessageChunk struct {
	Hl   int
	Text string
}
type MsgShow struct {
	Kind        string
	Content     []MessageChunk
	ReplaceLast bool
}
type MsgClear struct{}
type MsgHistoryEntry struct {
	Kind    string
	Content []MessageChunk
}
type MsgHistoryShow struct{ Entries []MsgHistoryEntry }
type MsgHistoryClear struct{}
type MsgShowmode struct{ Content []MessageChunk }
type MsgShowcmd struct{ Content []MessageChunk }
type MsgRuler struct{ Content []MessageChunk }

// Unknown is produced for a standard event name outside the recognized set
// (spec.md §6: "any other standard event must be accepted and ignored (or
// deferred)"); it carries the raw name so a caller can log it without the
// decoder treating it as fatal.
type Unknown struct{ Name string }

func (SetTitle) eventName() string           { return "set_title" }
func (SetIcon) eventName() string            { return "set_icon" }
func (ModeInfoSet) eventName() string        { return "mode_info_set" }
func (OptionSet) eventName() string          { return "option_set" }
func (ModeChange) eventName() string         { return "mode_change" }
func (MouseOn) eventName() string            { return "mouse_on" }
func (MouseOff) eventName() string           { return "mouse_off" }
func (BusyStart) eventName() string          { return "busy_start" }
func (BusyStop) eventName() string           { return "busy_stop" }
func (Suspend) eventName() string            { return "suspend" }
func (UpdateMenu) eventName() string         { return "update_menu" }
func (Bell) eventName() string               { return "bell" }
func (VisualBell) eventName() string         { return "visual_bell" }
func (Flush) eventName() string              { return "flush" }
func (GridResize) eventName() string         { return "grid_resize" }
func (DefaultColorsSet) eventName() string   { return "default_colors_set" }
func (HlAttrDefine) eventName() string       { return "hl_attr_define" }
func (HlGroupSet) eventName() string         { return "hl_group_set" }
func (GridLine) eventName() string           { return "grid_line" }
func (GridClear) eventName() string          { return "grid_clear" }
func (GridDestroy) eventName() string        { return "grid_destroy" }
func (GridCursorGoto) eventName() string     { return "grid_cursor_goto" }
func (GridScroll) eventName() string         { return "grid_scroll" }
func (WinPos) eventName() string             { return "win_pos" }
func (WinFloatPos) eventName() string        { return "win_float_pos" }
func (WinExternalPos) eventName() string     { return "win_external_pos" }
func (WinHide) eventName() string            { return "win_hide" }
func (WinClose) eventName() string           { return "win_close" }
func (MsgSetPos) eventName() string          { return "msg_set_pos" }
func (WinViewport) eventName() string        { return "win_viewport" }
func (WinViewportMargins) eventName() string { return "win_viewport_margins" }
func (PopupmenuShow) eventName() string      { return "popupmenu_show" }
func (PopupmenuSelect) eventName() string    { return "popupmenu_select" }
func (PopupmenuHide) eventName() string      { return "popupmenu_hide" }
func (MsgShow) eventName() string            { return "msg_show" }
func (MsgClear) eventName() string           { return "msg_clear" }
func (MsgHistoryShow) eventName() string     { return "msg_history_show" }
func (MsgHistoryClear) eventName() string    { return "msg_history_clear" }
func (MsgShowmode) eventName() string        { return "msg_showmode" }
func (MsgShowcmd) eventName() string         { return "msg_showcmd" }
func (MsgRuler) eventName() string           { return "msg_ruler" }
func (Unknown) eventName() string            { return "unknown" }
