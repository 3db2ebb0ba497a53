package redraw

import (
	"fmt"

	"github.com/anaseto/nvim-gruid/rpc"
)

// Decode turns one `redraw` notification's params into a flat sequence of
// typed events, preserving each batch's internal order (spec.md §4.4).
// params is the notification's own parameter array: each element is
// `[event_name, occurrence_1, occurrence_2, ...]`.
func Decode(params []interface{}) ([]Event, error) {
	var events []Event
	for _, raw := range params {
		batch, ok := raw.([]interface{})
		if !ok || len(batch) == 0 {
			return nil, protoErr("malformed redraw batch entry: %v", raw)
		}
		name, ok := batch[0].(string)
		if !ok {
			return nil, protoErr("redraw batch entry missing event name: %v", batch[0])
		}
		occurrences := batch[1:]
		decodeFn, known := decoders[name]
		if !known {
			events = append(events, Unknown{Name: name})
			continue
		}
		if len(occurrences) == 0 {
			// Parameter-less events (flush, busy_start, ...) still get
			// exactly one occurrence per spec.md §4.4.
			occurrences = []interface{}{[]interface{}{}}
		}
		for _, occ := range occurrences {
			args, ok := occ.([]interface{})
			if !ok {
				return nil, protoErr("event %q occurrence is not an array: %v", name, occ)
			}
			ev, err := decodeFn(args)
			if err != nil {
				return nil, err
			}
			events = append(events, ev)
		}
	}
	return events, nil
}

func protoErr(format string, a ...interface{}) *rpc.ProtocolError {
	return &rpc.ProtocolError{Msg: fmt.Sprintf(format, a...)}
}

type decodeFunc func(args []interface{}) (Event, error)

var decoders map[string]decodeFunc

func init() {
	decoders = map[string]decodeFunc{
		"set_title":            decodeSetTitle,
		"set_icon":             decodeSetIcon,
		"mode_info_set":        decodeModeInfoSet,
		"option_set":           decodeOptionSet,
		"mode_change":          decodeModeChange,
		"mouse_on":             decodeMouseOn,
		"mouse_off":            decodeMouseOff,
		"busy_start":           decodeBusyStart,
		"busy_stop":            decodeBusyStop,
		"suspend":              decodeSuspend,
		"update_menu":          decodeUpdateMenu,
		"bell":                 decodeBell,
		"visual_bell":          decodeVisualBell,
		"flush":                decodeFlush,
		"grid_resize":          decodeGridResize,
		"default_colors_set":   decodeDefaultColorsSet,
		"hl_attr_define":       decodeHlAttrDefine,
		"hl_group_set":         decodeHlGroupSet,
		"grid_line":            decodeGridLine,
		"grid_clear":           decodeGridClear,
		"grid_destroy":         decodeGridDestroy,
		"grid_cursor_goto":     decodeGridCursorGoto,
		"grid_scroll":          decodeGridScroll,
		"win_pos":              decodeWinPos,
		"win_float_pos":        decodeWinFloatPos,
		"win_external_pos":     decodeWinExternalPos,
		"win_hide":             decodeWinHide,
		"win_close":            decodeWinClose,
		"msg_set_pos":          decodeMsgSetPos,
		"win_viewport":         decodeWinViewport,
		"win_viewport_margins": decodeWinViewportMargins,
		"popupmenu_show":       decodePopupmenuShow,
		"popupmenu_select":     decodePopupmenuSelect,
		"popupmenu_hide":       decodePopupmenuHide,
		"msg_show":             decodeMsgShow,
		"msg_clear":            decodeMsgClear,
		"msg_history_show":     decodeMsgHistoryShow,
		"msg_history_clear":    decodeMsgHistoryClear,
		"msg_showmode":         decodeMsgShowmode,
		"msg_showcmd":          decodeMsgShowcmd,
		"msg_ruler":            decodeMsgRuler,
	}
}

// --- scalar extraction helpers ---

func argString(args []interface{}, i int, name string) (string, error) {
	if i >= len(args) {
		return "", protoErr("%s: missing argument %d", name, i)
	}
	s, ok := args[i].(string)
	if !ok {
		return "", protoErr("%s: argument %d is not a string: %v", name, i, args[i])
	}
	return s, nil
}

func argInt(args []interface{}, i int, name string) (int, error) {
	if i >= len(args) {
		return 0, protoErr("%s: missing argument %d", name, i)
	}
	return toInt(args[i], name, i)
}

func toInt(v interface{}, name string, i int) (int, error) {
	switch n := v.(type) {
	case int64:
		return int(n), nil
	case int:
		return n, nil
	case uint64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, protoErr("%s: argument %d is not an integer: %v", name, i, v)
	}
}

func argFloat(args []interface{}, i int, name string) (float64, error) {
	if i >= len(args) {
		return 0, protoErr("%s: missing argument %d", name, i)
	}
	switch n := args[i].(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, protoErr("%s: argument %d is not a number: %v", name, i, args[i])
	}
}

func argBool(args []interface{}, i int, name string) (bool, error) {
	if i >= len(args) {
		return false, protoErr("%s: missing argument %d", name, i)
	}
	b, ok := args[i].(bool)
	if !ok {
		return false, protoErr("%s: argument %d is not a bool: %v", name, i, args[i])
	}
	return b, nil
}

func argSlice(args []interface{}, i int, name string) ([]interface{}, error) {
	if i >= len(args) {
		return nil, protoErr("%s: missing argument %d", name, i)
	}
	s, ok := args[i].([]interface{})
	if !ok {
		return nil, protoErr("%s: argument %d is not an array: %v", name, i, args[i])
	}
	return s, nil
}

func argMap(args []interface{}, i int, name string) (map[string]interface{}, error) {
	if i >= len(args) {
		return nil, protoErr("%s: missing argument %d", name, i)
	}
	m, ok := args[i].(map[string]interface{})
	if !ok {
		return nil, protoErr("%s: argument %d is not a map: %v", name, i, args[i])
	}
	return m, nil
}

func optString(m map[string]interface{}, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func optBool(m map[string]interface{}, key string) (bool, bool) {
	v, ok := m[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func optInt(m map[string]interface{}, key string) (int, bool) {
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	n, err := toInt(v, key, 0)
	return n, err == nil
}

// --- per-event decoders ---

func decodeSetTitle(args []interface{}) (Event, error) {
	s, err := argString(args, 0, "set_title")
	return SetTitle{Title: s}, err
}

func decodeSetIcon(args []interface{}) (Event, error) {
	s, err := argString(args, 0, "set_icon")
	return SetIcon{Icon: s}, err
}

func decodeModeInfoSet(args []interface{}) (Event, error) {
	enabled, err := argBool(args, 0, "mode_info_set")
	if err != nil {
		return nil, err
	}
	rawModes, err := argSlice(args, 1, "mode_info_set")
	if err != nil {
		return nil, err
	}
	modes := make([]ModeInfoEntry, 0, len(rawModes))
	for _, rm := range rawModes {
		m, ok := rm.(map[string]interface{})
		if !ok {
			return nil, protoErr("mode_info_set: mode entry is not a map: %v", rm)
		}
		entry := ModeInfoEntry{CellPercent: 1}
		if shape, ok := optString(m, "cursor_shape"); ok {
			entry.CursorShape = shape
		}
		if pct, ok := m["cell_percentage"]; ok {
			if f, err := toFloat(pct); err == nil {
				entry.CellPercent = f / 100
			}
		}
		if n, ok := optInt(m, "blinkwait"); ok {
			entry.BlinkWait = n
		}
		if n, ok := optInt(m, "blinkoff"); ok {
			entry.BlinkOff = n
		}
		if n, ok := optInt(m, "blinkon"); ok {
			entry.BlinkOn = n
		}
		if n, ok := optInt(m, "attr_id"); ok {
			entry.AttrID = n
			entry.HasAttrID = true
		}
		modes = append(modes, entry)
	}
	return ModeInfoSet{CursorStyleEnabled: enabled, Modes: modes}, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func decodeOptionSet(args []interface{}) (Event, error) {
	name, err := argString(args, 0, "option_set")
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, protoErr("option_set: missing value argument")
	}
	return OptionSet{Name: name, Value: args[1]}, nil
}

func decodeModeChange(args []interface{}) (Event, error) {
	name, err := argString(args, 0, "mode_change")
	if err != nil {
		return nil, err
	}
	idx, err := argInt(args, 1, "mode_change")
	return ModeChange{Mode: name, ModeIdx: idx}, err
}

func decodeMouseOn(args []interface{}) (Event, error)    { return MouseOn{}, nil }
func decodeMouseOff(args []interface{}) (Event, error)   { return MouseOff{}, nil }
func decodeBusyStart(args []interface{}) (Event, error)  { return BusyStart{}, nil }
func decodeBusyStop(args []interface{}) (Event, error)   { return BusyStop{}, nil }
func decodeSuspend(args []interface{}) (Event, error)    { return Suspend{}, nil }
func decodeUpdateMenu(args []interface{}) (Event, error) { return UpdateMenu{}, nil }
func decodeBell(args []interface{}) (Event, error)       { return Bell{}, nil }
func decodeVisualBell(args []interface{}) (Event, error) { return VisualBell{}, nil }
func decodeFlush(args []interface{}) (Event, error)      { return Flush{}, nil }

func decodeGridResize(args []interface{}) (Event, error) {
	grid, err := argInt(args, 0, "grid_resize")
	if err != nil {
		return nil, err
	}
	width, err := argInt(args, 1, "grid_resize")
	if err != nil {
		return nil, err
	}
	height, err := argInt(args, 2, "grid_resize")
	return GridResize{Grid: grid, Width: width, Height: height}, err
}

func decodeDefaultColorsSet(args []interface{}) (Event, error) {
	fg, err := argInt(args, 0, "default_colors_set")
	if err != nil {
		return nil, err
	}
	bg, err := argInt(args, 1, "default_colors_set")
	if err != nil {
		return nil, err
	}
	sp, err := argInt(args, 2, "default_colors_set")
	if err != nil {
		return nil, err
	}
	return DefaultColorsSet{Fg: uint32(fg), Bg: uint32(bg), Sp: uint32(sp)}, nil
}

func decodeHlAttrDefine(args []interface{}) (Event, error) {
	id, err := argInt(args, 0, "hl_attr_define")
	if err != nil {
		return nil, err
	}
	rgb, err := argMap(args, 1, "hl_attr_define")
	if err != nil {
		return nil, err
	}
	var raw RawHighlight
	if v, ok := rgb["foreground"]; ok {
		if n, err := toInt(v, "foreground", 0); err == nil {
			raw.Foreground, raw.HasForeground = uint32(n), true
		}
	}
	if v, ok := rgb["background"]; ok {
		if n, err := toInt(v, "background", 0); err == nil {
			raw.Background, raw.HasBackground = uint32(n), true
		}
	}
	if v, ok := rgb["special"]; ok {
		if n, err := toInt(v, "special", 0); err == nil {
			raw.Special, raw.HasSpecial = uint32(n), true
		}
	}
	raw.Reverse, _ = optBool(rgb, "reverse")
	raw.Italic, _ = optBool(rgb, "italic")
	raw.Bold, _ = optBool(rgb, "bold")
	raw.Strikethrough, _ = optBool(rgb, "strikethrough")
	raw.Underline, _ = optBool(rgb, "underline")
	raw.Underdouble, _ = optBool(rgb, "underdouble")
	raw.Undercurl, _ = optBool(rgb, "undercurl")
	raw.Underdot, _ = optBool(rgb, "underdot")
	raw.Underdash, _ = optBool(rgb, "underdash")
	if n, ok := optInt(rgb, "blend"); ok {
		raw.Blend, raw.HasBlend = n, true
	}
	return HlAttrDefine{ID: id, Attrs: raw}, nil
}

func decodeHlGroupSet(args []interface{}) (Event, error) {
	name, err := argString(args, 0, "hl_group_set")
	if err != nil {
		return nil, err
	}
	id, err := argInt(args, 1, "hl_group_set")
	return HlGroupSet{Name: name, ID: id}, err
}

func decodeGridLine(args []interface{}) (Event, error) {
	gridID, err := argInt(args, 0, "grid_line")
	if err != nil {
		return nil, err
	}
	row, err := argInt(args, 1, "grid_line")
	if err != nil {
		return nil, err
	}
	colStart, err := argInt(args, 2, "grid_line")
	if err != nil {
		return nil, err
	}
	rawCells, err := argSlice(args, 3, "grid_line")
	if err != nil {
		return nil, err
	}
	cells := make([]CellData, 0, len(rawCells))
	for i, rc := range rawCells {
		cell, ok := rc.([]interface{})
		if !ok || len(cell) == 0 {
			return nil, protoErr("grid_line: cell %d is malformed: %v", i, rc)
		}
		text, ok := cell[0].(string)
		if !ok {
			return nil, protoErr("grid_line: cell %d text is not a string: %v", i, cell[0])
		}
		cd := CellData{Text: text}
		if len(cell) >= 2 {
			if n, err := toInt(cell[1], "grid_line cell hl", i); err == nil {
				cd.Hl, cd.HasHl = n, true
			}
		}
		if i == 0 && !cd.HasHl {
			return nil, protoErr("grid_line: first cell must carry an hl id")
		}
		if len(cell) >= 3 {
			if n, err := toInt(cell[2], "grid_line cell repeat", i); err == nil {
				cd.Repeat, cd.HasRepeat = n, true
			}
		}
		if !cd.HasRepeat {
			cd.Repeat = 1
		}
		cells = append(cells, cd)
	}
	return GridLine{Grid: gridID, Row: row, ColStart: colStart, Cells: cells}, nil
}

func decodeGridClear(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "grid_clear")
	return GridClear{Grid: g}, err
}

func decodeGridDestroy(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "grid_destroy")
	return GridDestroy{Grid: g}, err
}

func decodeGridCursorGoto(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "grid_cursor_goto")
	if err != nil {
		return nil, err
	}
	row, err := argInt(args, 1, "grid_cursor_goto")
	if err != nil {
		return nil, err
	}
	col, err := argInt(args, 2, "grid_cursor_goto")
	return GridCursorGoto{Grid: g, Row: row, Col: col}, err
}

func decodeGridScroll(args []interface{}) (Event, error) {
	vals := make([]int, 7)
	for i := range vals {
		n, err := argInt(args, i, "grid_scroll")
		if err != nil {
			return nil, err
		}
		vals[i] = n
	}
	return GridScroll{Grid: vals[0], Top: vals[1], Bot: vals[2], Left: vals[3], Right: vals[4], Rows: vals[5], Cols: vals[6]}, nil
}

func decodeWinPos(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_pos")
	if err != nil {
		return nil, err
	}
	win, _ := argInt(args, 1, "win_pos")
	row, err := argInt(args, 2, "win_pos")
	if err != nil {
		return nil, err
	}
	col, err := argInt(args, 3, "win_pos")
	if err != nil {
		return nil, err
	}
	width, err := argInt(args, 4, "win_pos")
	if err != nil {
		return nil, err
	}
	height, err := argInt(args, 5, "win_pos")
	return WinPos{Grid: g, Win: win, Row: row, Col: col, Width: width, Height: height}, err
}

func decodeWinFloatPos(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_float_pos")
	if err != nil {
		return nil, err
	}
	win, _ := argInt(args, 1, "win_float_pos")
	anchor, err := argString(args, 2, "win_float_pos")
	if err != nil {
		return nil, err
	}
	anchorGrid, err := argInt(args, 3, "win_float_pos")
	if err != nil {
		return nil, err
	}
	row, err := argFloat(args, 4, "win_float_pos")
	if err != nil {
		return nil, err
	}
	col, err := argFloat(args, 5, "win_float_pos")
	if err != nil {
		return nil, err
	}
	focusable, err := argBool(args, 6, "win_float_pos")
	if err != nil {
		return nil, err
	}
	zindex, _ := argInt(args, 7, "win_float_pos")
	return WinFloatPos{
		Grid: g, Win: win, AnchorGrid: anchorGrid, Anchor: anchor,
		AnchorRow: row, AnchorCol: col, Focusable: focusable, ZIndex: zindex,
	}, nil
}

func decodeWinExternalPos(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_external_pos")
	if err != nil {
		return nil, err
	}
	win, _ := argInt(args, 1, "win_external_pos")
	return WinExternalPos{Grid: g, Win: win}, nil
}

func decodeWinHide(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_hide")
	return WinHide{Grid: g}, err
}

func decodeWinClose(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_close")
	return WinClose{Grid: g}, err
}

func decodeMsgSetPos(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "msg_set_pos")
	if err != nil {
		return nil, err
	}
	row, err := argInt(args, 1, "msg_set_pos")
	if err != nil {
		return nil, err
	}
	scrolled, err := argBool(args, 2, "msg_set_pos")
	if err != nil {
		return nil, err
	}
	sep, _ := argString(args, 3, "msg_set_pos")
	return MsgSetPos{Grid: g, Row: row, Scrolled: scrolled, SepChar: sep}, nil
}

func decodeWinViewport(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_viewport")
	if err != nil {
		return nil, err
	}
	top, err := argInt(args, 2, "win_viewport")
	if err != nil {
		return nil, err
	}
	bot, err := argInt(args, 3, "win_viewport")
	if err != nil {
		return nil, err
	}
	cur, err := argInt(args, 4, "win_viewport")
	if err != nil {
		return nil, err
	}
	curcol, err := argInt(args, 5, "win_viewport")
	if err != nil {
		return nil, err
	}
	lineCount, _ := argInt(args, 6, "win_viewport")
	return WinViewport{Grid: g, Topline: top, Botline: bot, Curline: cur, Curcol: curcol, LineCount: lineCount}, nil
}

func decodeWinViewportMargins(args []interface{}) (Event, error) {
	g, err := argInt(args, 0, "win_viewport_margins")
	if err != nil {
		return nil, err
	}
	top, err := argInt(args, 2, "win_viewport_margins")
	if err != nil {
		return nil, err
	}
	bottom, err := argInt(args, 3, "win_viewport_margins")
	if err != nil {
		return nil, err
	}
	left, err := argInt(args, 4, "win_viewport_margins")
	if err != nil {
		return nil, err
	}
	right, err := argInt(args, 5, "win_viewport_margins")
	return WinViewportMargins{Grid: g, Top: top, Bottom: bottom, Left: left, Right: right}, err
}

func decodePopupmenuShow(args []interface{}) (Event, error) {
	rawItems, err := argSlice(args, 0, "popupmenu_show")
	if err != nil {
		return nil, err
	}
	items := make([]PopupmenuItemData, 0, len(rawItems))
	for _, ri := range rawItems {
		fields, ok := ri.([]interface{})
		if !ok || len(fields) < 4 {
			return nil, protoErr("popupmenu_show: malformed item: %v", ri)
		}
		word, _ := fields[0].(string)
		kind, _ := fields[1].(string)
		menu, _ := fields[2].(string)
		info, _ := fields[3].(string)
		items = append(items, PopupmenuItemData{Word: word, Kind: kind, Menu: menu, Info: info})
	}
	selected, err := argInt(args, 1, "popupmenu_show")
	if err != nil {
		return nil, err
	}
	row, err := argInt(args, 2, "popupmenu_show")
	if err != nil {
		return nil, err
	}
	col, err := argInt(args, 3, "popupmenu_show")
	if err != nil {
		return nil, err
	}
	gridID, _ := argInt(args, 4, "popupmenu_show")
	return PopupmenuShow{Items: items, Selected: selected, Row: row, Col: col, Grid: gridID}, nil
}

func decodePopupmenuSelect(args []interface{}) (Event, error) {
	sel, err := argInt(args, 0, "popupmenu_select")
	return PopupmenuSelect{Selected: sel}, err
}

func decodePopupmenuHide(args []interface{}) (Event, error) { return PopupmenuHide{}, nil }

func decodeContent(args []interface{}, i int, name string) ([]MessageChunk, error) {
	raw, err := argSlice(args, i, name)
	if err != nil {
		return nil, err
	}
	chunks := make([]MessageChunk, 0, len(raw))
	for _, rc := range raw {
		pair, ok := rc.([]interface{})
		if !ok || len(pair) < 2 {
			return nil, protoErr("%s: malformed content chunk: %v", name, rc)
		}
		hl, err := toInt(pair[0], name, 0)
		if err != nil {
			return nil, err
		}
		text, ok := pair[1].(string)
		if !ok {
			return nil, protoErr("%s: chunk text is not a string: %v", name, pair[1])
		}
		chunks = append(chunks, MessageChunk{Hl: hl, Text: text})
	}
	return chunks, nil
}

func decodeMsgShow(args []interface{}) (Event, error) {
	kind, err := argString(args, 0, "msg_show")
	if err != nil {
		return nil, err
	}
	content, err := decodeContent(args, 1, "msg_show")
	if err != nil {
		return nil, err
	}
	replaceLast, err := argBool(args, 2, "msg_show")
	return MsgShow{Kind: kind, Content: content, ReplaceLast: replaceLast}, err
}

func decodeMsgClear(args []interface{}) (Event, error) { return MsgClear{}, nil }

func decodeMsgHistoryShow(args []interface{}) (Event, error) {
	raw, err := argSlice(args, 0, "msg_history_show")
	if err != nil {
		return nil, err
	}
	entries := make([]MsgHistoryEntry, 0, len(raw))
	for _, re := range raw {
		fields, ok := re.([]interface{})
		if !ok || len(fields) < 2 {
			return nil, protoErr("msg_history_show: malformed entry: %v", re)
		}
		kind, _ := fields[0].(string)
		rawContent, ok := fields[1].([]interface{})
		if !ok {
			return nil, protoErr("msg_history_show: malformed content: %v", fields[1])
		}
		content, err := decodeContent([]interface{}{rawContent}, 0, "msg_history_show")
		if err != nil {
			return nil, err
		}
		entries = append(entries, MsgHistoryEntry{Kind: kind, Content: content})
	}
	return MsgHistoryShow{Entries: entries}, nil
}

func decodeMsgHistoryClear(args []interface{}) (Event, error) { return MsgHistoryClear{}, nil }

func decodeMsgShowmode(args []interface{}) (Event, error) {
	content, err := decodeContent(args, 0, "msg_showmode")
	return MsgShowmode{Content: content}, err
}

func decodeMsgShowcmd(args []interface{}) (Event, error) {
	content, err := decodeContent(args, 0, "msg_showcmd")
	return MsgShowcmd{Content: content}, err
}

func decodeMsgRuler(args []interface{}) (Event, error) {
	content, err := decodeContent(args, 0, "msg_ruler")
	return MsgRuler{Content: content}, err
}
