// Package app implements the AppWindow component: subprocess lifecycle,
// UI attach, and the single select loop that ties the RpcClient, the
// decoded redraw stream, and driver input together into flush-gated
// repaint (spec.md §4.12). It is grounded on the teacher's App/AppConfig/
// Start main loop (ui.go), generalized from Cmd/Sub effects to a fixed set
// of outbound RPC calls and a resize debouncer.
package app

import (
	"time"

	"github.com/anaseto/nvim-gruid/input"
)

// Msg represents an event delivered to the main loop, analogous to the
// teacher's gruid.Msg. Nil messages are discarded.
type Msg interface{}

// MsgInit is delivered once, before any other message, mirroring the
// teacher's MsgInit convention.
type MsgInit struct{}

// MsgRedraw carries one decoded batch of redraw events from a single
// `redraw` notification (spec.md §4.4). Applying it is the only way
// Shell/ColorTable/Cursor/Messages/Popupmenu state changes.
type MsgRedraw struct {
	Notification interface{} // opaque; kept only for diagnostics/recording
	Params       []interface{}
}

// MsgKey is produced by a Driver for a physical key press (spec.md §4.11).
type MsgKey struct {
	Event input.KeyEvent
	Time  time.Time
}

// MsgComposed is produced by a Driver for an IME-committed string, which
// bypasses the named-key/modifier path (spec.md §4.11).
type MsgComposed struct {
	Text string
	Time time.Time
}

// MsgPointer is produced by a Driver for a raw pointer sample; App
// translates it through input.PointerState before issuing nvim_input_mouse.
type MsgPointer struct {
	Grid    int
	Button  input.MouseButton
	Pressed bool
	X, Y    float64 // pixel position within Grid
	Mod     input.Mod
	Time    time.Time
}

// MsgWheel is produced by a Driver for a scroll-wheel tick.
type MsgWheel struct {
	Grid      int
	Dir       input.MouseAction
	X, Y      float64
	Mod       input.Mod
	Time      time.Time
}

// MsgResize is produced by a Driver when the display widget's size (in
// cells) changes; App debounces the base-grid resize call (spec.md §4.12).
type MsgResize struct {
	Cols, Rows int
}

// MsgError lets a Driver report an error through the message channel; App
// logs it and the Start loop keeps running. Errors returned by the RPC read
// loop or by a Driver's PollMsgs end the Start loop instead.
type MsgError struct{ Err error }

// msgResizeTimeout is delivered internally when the resize debounce timer
// fires; not part of the public Driver-facing Msg surface.
type msgResizeTimeout struct{}

// msgEnd ends the Start loop cleanly, mirroring the teacher's msgEnd/End().
type msgEnd struct{}

// End returns a Msg that terminates Start's main loop on the next
// iteration, e.g. after observing the subprocess exit.
func End() Msg { return msgEnd{} }
