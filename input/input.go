// Package input implements the InputRouter component: translation of
// keyboard and pointer events into the editor's input notation (spec.md
// §4.11). The named-key set is grounded on the teacher's Key constants
// (keys.go), extended to the fixed translation table the protocol requires
// (BS, CR, Esc, Del, PageUp/Down, Tab, F1..F12, arrows, punctuation that
// lacks ASCII printables).
package input

import (
	"strings"

	"github.com/anaseto/nvim-gruid/grid"
)

// Mod is a bitmask of held modifier keys.
type Mod uint8

const (
	ModShift Mod = 1 << iota
	ModControl
	ModMeta // Alt on most platforms
	ModSuper
)

// namedKeys is the fixed translation table from a physical key identity to
// the editor's named-key notation. Keys not present here, and not a single
// printable rune, produce no input event.
var namedKeys = map[string]string{
	"Backspace": "BS",
	"Enter":     "CR",
	"Escape":    "Esc",
	"Delete":    "Del",
	"Tab":       "Tab",
	"PageUp":    "PageUp",
	"PageDown":  "PageDown",
	"Home":      "Home",
	"End":       "End",
	"Insert":    "Insert",
	"ArrowUp":    "Up",
	"ArrowDown":  "Down",
	"ArrowLeft":  "Left",
	"ArrowRight": "Right",
	"F1": "F1", "F2": "F2", "F3": "F3", "F4": "F4",
	"F5": "F5", "F6": "F6", "F7": "F7", "F8": "F8",
	"F9": "F9", "F10": "F10", "F11": "F11", "F12": "F12",
	"<":     "lt",
	"Space": "Space",
}

// KeyEvent encodes one key-down with its held modifiers. Key is either a
// named key (see namedKeys) or a single printable rune as a string.
type KeyEvent struct {
	Key string
	Mod Mod
}

// Router is the InputRouter component.
type Router struct{}

// New returns an InputRouter.
func New() *Router { return &Router{} }

// EncodeKey composes a modifier-prefixed key notation string for
// nvim_input, or "" if the event carries no translatable key (spec.md
// §4.11).
func (r *Router) EncodeKey(e KeyEvent) string {
	name, named := namedKeys[e.Key]
	if !named {
		if len([]rune(e.Key)) != 1 {
			return ""
		}
		name = e.Key
		if name == "<" {
			name = "lt"
		}
	}

	var prefix strings.Builder
	if e.Mod&ModShift != 0 {
		prefix.WriteString("S-")
	}
	if e.Mod&ModControl != 0 {
		prefix.WriteString("C-")
	}
	if e.Mod&ModMeta != 0 {
		prefix.WriteString("M-")
	}
	if e.Mod&ModSuper != 0 {
		prefix.WriteString("D-")
	}

	if prefix.Len() == 0 && len([]rune(name)) == 1 && name != "lt" {
		return name
	}
	return "<" + prefix.String() + name + ">"
}

// EncodeComposed encodes an IME-committed string: sent verbatim, bypassing
// the named-key/modifier path, except that '<' is still escaped to '<lt>'
// (spec.md §4.11).
func (r *Router) EncodeComposed(s string) string {
	return strings.ReplaceAll(s, "<", "<lt>")
}

// MouseButton is the physical button a pointer event originates from.
type MouseButton int

const (
	ButtonLeft MouseButton = iota
	ButtonRight
	ButtonMiddle
	ButtonWheel
	ButtonMove // synthetic: no button held, used only for drag tracking
)

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonMiddle:
		return "middle"
	case ButtonWheel:
		return "wheel"
	default:
		return "move"
	}
}

// MouseAction is the pointer action kind.
type MouseAction int

const (
	ActionPress MouseAction = iota
	ActionRelease
	ActionDrag
	ActionWheelUp
	ActionWheelDown
	ActionWheelLeft
	ActionWheelRight
)

func (a MouseAction) String() string {
	switch a {
	case ActionPress:
		return "press"
	case ActionRelease:
		return "release"
	case ActionDrag:
		return "drag"
	case ActionWheelUp:
		return "up"
	case ActionWheelDown:
		return "down"
	case ActionWheelLeft:
		return "left"
	case ActionWheelRight:
		return "right"
	default:
		return ""
	}
}

// MouseEvent is one translated pointer input ready for nvim_input_mouse.
type MouseEvent struct {
	Button MouseButton
	Action string
	Mod    Mod
	Grid   int
	Row    int
	Col    int
}

// dragTracker remembers the last (row,col) reported while a button is held,
// so a drag is only emitted on an actual cell-coordinate change (spec.md
// §4.11: "drag (emitted on row/col change during a button-held drag)").
type dragTracker struct {
	active    bool
	button    MouseButton
	lastRow   int
	lastCol   int
}

// PointerState tracks button-held drag state per grid; Router itself is
// stateless, so drag suppression needs this tracker carried by the caller
// across events.
type PointerState struct {
	trackers map[int]*dragTracker
}

// NewPointerState returns pointer drag-tracking state.
func NewPointerState() *PointerState {
	return &PointerState{trackers: make(map[int]*dragTracker)}
}

// Translate converts a pixel-space pointer event on gridID to a grid-space
// MouseEvent using m, the target grid's font metrics (spec.md §4.11). For a
// held-button move it returns ok=false if the cell coordinate has not
// changed since the last reported event (drag de-duplication).
func (ps *PointerState) Translate(gridID int, button MouseButton, pressed bool, px, py grid.Fixed, mod Mod, m grid.Metrics) (MouseEvent, bool) {
	col := m.XToCol(px)
	row := m.YToRow(py)

	t, ok := ps.trackers[gridID]
	if !ok {
		t = &dragTracker{}
		ps.trackers[gridID] = t
	}

	ev := MouseEvent{Button: button, Mod: mod, Grid: gridID, Row: row, Col: col}

	switch {
	case pressed && !t.active:
		t.active = true
		t.button = button
		t.lastRow, t.lastCol = row, col
		ev.Action = ActionPress.String()
		return ev, true
	case !pressed && t.active:
		t.active = false
		ev.Action = ActionRelease.String()
		return ev, true
	case pressed && t.active:
		if row == t.lastRow && col == t.lastCol {
			return MouseEvent{}, false
		}
		t.lastRow, t.lastCol = row, col
		ev.Action = ActionDrag.String()
		return ev, true
	default:
		return MouseEvent{}, false
	}
}

// TranslateWheel builds a wheel MouseEvent; wheel events carry no
// press/release/drag state.
func (ps *PointerState) TranslateWheel(gridID int, dir MouseAction, mod Mod, px, py grid.Fixed, m grid.Metrics) MouseEvent {
	return MouseEvent{
		Button: ButtonWheel,
		Action: dir.String(),
		Mod:    mod,
		Grid:   gridID,
		Row:    m.YToRow(py),
		Col:    m.XToCol(px),
	}
}

// ModString renders a modifier mask as the editor's mouse-input modifier
// prefix (e.g. "S-C-"), matching the keyboard prefix convention.
func ModString(mod Mod) string {
	var b strings.Builder
	if mod&ModShift != 0 {
		b.WriteString("S-")
	}
	if mod&ModControl != 0 {
		b.WriteString("C-")
	}
	if mod&ModMeta != 0 {
		b.WriteString("M-")
	}
	if mod&ModSuper != 0 {
		b.WriteString("D-")
	}
	return b.String()
}
