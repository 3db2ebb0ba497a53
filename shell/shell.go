// Package shell implements the Shell component: ownership of every
// GridBuffer, window placement bookkeeping, and flush-time propagation
// (spec.md §4.8). It is grounded on the teacher's App/Model split in
// ui.go, generalized from a single roguelike grid to a map of grids keyed
// by id.
package shell

import (
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/grid"
)

// Corner is a floating window's anchor corner.
type Corner int

const (
	CornerNW Corner = iota
	CornerNE
	CornerSW
	CornerSE
)

// PlacementKind discriminates a Window's placement variant.
type PlacementKind int

const (
	PlacementInternal PlacementKind = iota
	PlacementFloating
	PlacementExternal
)

// Placement is the closed sum of ways a grid can be positioned (spec.md §3).
type Placement struct {
	Kind PlacementKind

	// Internal
	X, Y, ZIndex int

	// Floating
	AnchorGrid int
	Anchor     Corner
	AnchorRow  float64
	AnchorCol  float64
	Focusable  bool

	// External
	HostWindow int

	Hidden bool
}

// Window associates a GridBuffer with a Placement.
type Window struct {
	Grid      *grid.Buffer
	Placement Placement
}

// ResizeRequest asks the caller to issue nvim_ui_try_resize_grid for a
// floating grid that does not fit even after origin clamping (spec.md
// §4.8's win_float_pos clamping rule).
type ResizeRequest struct {
	Grid          int
	Cols, Rows    int
}

// Shell owns every grid and its placement.
type Shell struct {
	windows map[int]*Window
	busy    bool

	pmenu        PopupmenuAnchorer
	baseWidth    int
	baseHeight   int
	metrics      grid.Metrics
}

// PopupmenuAnchorer is the subset of the Popupmenu component Shell needs to
// re-resolve the anchor at flush time (spec.md §4.8/§4.9). Kept as an
// interface here rather than importing package popupmenu directly, since
// Shell only needs anchor recomputation, not the full item list model.
type PopupmenuAnchorer interface {
	Anchor() (gridID, row, col int)
	SetPixelAnchor(x, y grid.Fixed)
}

// New creates an empty Shell. The base grid's pixel allocation, used to clamp
// floating window origins, is set afterwards with SetBaseSize.
func New() *Shell {
	return &Shell{windows: make(map[int]*Window)}
}

// SetMetrics installs the font metrics used to convert grid coordinates to
// pixels when placing windows.
func (s *Shell) SetMetrics(m grid.Metrics) { s.metrics = m }

// SetBaseSize records the base grid's pixel allocation for float clamping.
func (s *Shell) SetBaseSize(width, height int) {
	s.baseWidth, s.baseHeight = width, height
}

// SetPopupmenu wires the Popupmenu anchor re-resolver.
func (s *Shell) SetPopupmenu(p PopupmenuAnchorer) { s.pmenu = p }

// SetFont installs a new glyph shaper on every grid, per option_set's
// guifont handling: changing the font invalidates all cache slots across
// the whole shell, not just the grid the event happened to target (spec.md
// §3 GridBuffer invariant, supplemented from the original gnvim's
// src/ui/font.rs).
func (s *Shell) SetFont(shaper *grid.Shaper) {
	s.SetMetrics(shaper.Metrics())
	for _, w := range s.windows {
		w.Grid.SetShaper(shaper)
	}
}

// Grid returns grid id, creating it (per grid_resize on an unseen id,
// spec.md §3's Lifecycles) if absent. The base grid (id 1) is always
// Internal at (0,0).
func (s *Shell) Grid(id, width, height int) *grid.Buffer {
	w, ok := s.windows[id]
	if !ok {
		b := grid.New(id, width, height)
		placement := Placement{Kind: PlacementInternal}
		if id == 1 {
			placement.X, placement.Y = 0, 0
		}
		w = &Window{Grid: b, Placement: placement}
		s.windows[id] = w
		return b
	}
	w.Grid.Resize(width, height)
	return w.Grid
}

// DestroyGrid implements grid_destroy. Grid 1 is never destroyed (spec.md
// §3's Lifecycles).
func (s *Shell) DestroyGrid(id int) {
	if id == 1 {
		return
	}
	delete(s.windows, id)
}

// Window returns the window for grid id, or nil if unknown.
func (s *Shell) Window(id int) *Window { return s.windows[id] }

// WinPos implements win_pos: place grid as Internal at (col,row) on grid 1
// (spec.md §4.8).
func (s *Shell) WinPos(gridID, row, col, width, height int) {
	w, ok := s.windows[gridID]
	if !ok {
		return
	}
	w.Grid.Resize(width, height)
	w.Placement = Placement{
		Kind: PlacementInternal,
		X:    s.metrics.ColToX(col).Round(),
		Y:    s.metrics.RowToY(row).Round(),
	}
}

// WinFloatPos implements win_float_pos: computes the grid's pixel origin
// from the anchor grid's origin plus (col,row), adjusted by the anchor
// corner (NE/SE subtract width; SW/SE subtract height), clamped so the grid
// fits the base grid's allocation. If it does not fit even after clamping,
// a ResizeRequest is returned for the caller to issue
// nvim_ui_try_resize_grid on (spec.md §4.8).
func (s *Shell) WinFloatPos(gridID, anchorGrid int, anchor Corner, row, col float64, zindex int, focusable bool) *ResizeRequest {
	w, ok := s.windows[gridID]
	if !ok {
		return nil
	}
	anchorWin, ok := s.windows[anchorGrid]
	var originX, originY int
	if ok {
		originX, originY = anchorWin.Placement.X, anchorWin.Placement.Y
	}
	gw, gh := w.Grid.Size()
	pw := s.metrics.ColToX(gw).Round()
	ph := s.metrics.RowToY(gh).Round()

	x := originX + s.metrics.ColToX(int(col)).Round()
	y := originY + s.metrics.RowToY(int(row)).Round()
	switch anchor {
	case CornerNE:
		x -= pw
	case CornerSW:
		y -= ph
	case CornerSE:
		x -= pw
		y -= ph
	}

	clampedX, clampedW := clamp(x, pw, s.baseWidth)
	clampedY, clampedH := clamp(y, ph, s.baseHeight)

	w.Placement = Placement{
		Kind:       PlacementFloating,
		X:          clampedX,
		Y:          clampedY,
		ZIndex:     zindex,
		AnchorGrid: anchorGrid,
		Anchor:     anchor,
		AnchorRow:  row,
		AnchorCol:  col,
		Focusable:  focusable,
	}

	if clampedW < pw || clampedH < ph {
		newCols := s.metrics.XToCol(grid.FixedFromInt(clampedW))
		newRows := s.metrics.YToRow(grid.FixedFromInt(clampedH))
		if newCols < 1 {
			newCols = 1
		}
		if newRows < 1 {
			newRows = 1
		}
		return &ResizeRequest{Grid: gridID, Cols: newCols, Rows: newRows}
	}
	return nil
}

// clamp fits [pos, pos+size) inside [0, bound), returning the clamped
// origin and the (possibly reduced) size that fits.
func clamp(pos, size, bound int) (int, int) {
	if bound <= 0 {
		return pos, size
	}
	if pos < 0 {
		pos = 0
	}
	if pos+size > bound {
		pos = bound - size
		if pos < 0 {
			pos = 0
		}
	}
	fit := size
	if pos+fit > bound {
		fit = bound - pos
	}
	return pos, fit
}

// WinExternalPos implements win_external_pos: detaches the grid's widget
// from the internal container and reparents to a host window owned by the
// display backend (spec.md §4.8). hostWindow is an opaque handle supplied
// by the driver.
func (s *Shell) WinExternalPos(gridID, hostWindow int) {
	w, ok := s.windows[gridID]
	if !ok {
		return
	}
	w.Placement = Placement{Kind: PlacementExternal, HostWindow: hostWindow}
}

// WinHide implements win_hide: detach without destroying state.
func (s *Shell) WinHide(gridID int) {
	if w, ok := s.windows[gridID]; ok {
		w.Placement.Hidden = true
	}
}

// WinClose implements win_close: same as WinHide. The event signals the
// editor has closed the window, but Placement never stores a window
// handle to disassociate from (spec.md §4.3 compares those only by
// identity, and this module never needs to), so there is nothing further
// to do than mark it hidden.
func (s *Shell) WinClose(gridID int) {
	if w, ok := s.windows[gridID]; ok {
		w.Placement.Hidden = true
	}
}

// MsgSetPos implements msg_set_pos: move the message grid to the bottom
// band starting at row of the base grid.
func (s *Shell) MsgSetPos(gridID, row int, scrolled bool, sepChar string) {
	w, ok := s.windows[gridID]
	if !ok {
		return
	}
	w.Placement = Placement{
		Kind: PlacementInternal,
		X:    0,
		Y:    s.metrics.RowToY(row).Round(),
	}
}

// BusyStart/BusyStop implement busy_start/busy_stop: they record the busy
// state, and App leaves the cursor out of the scene while it is set
// (spec.md §4.8).
func (s *Shell) BusyStart() { s.busy = true }
func (s *Shell) BusyStop()  { s.busy = false }
func (s *Shell) Busy() bool { return s.busy }

// Flush propagates flush to every grid, re-resolves the popupmenu anchor,
// and returns the style-invalidation flag consumed from colors (spec.md
// §4.8). Callers assemble the combined scene graph from the returned
// per-grid node slices.
func (s *Shell) Flush(colors *colortable.Table, now time.Time) (map[int][]grid.RenderNode, bool) {
	nodes := make(map[int][]grid.RenderNode, len(s.windows))
	for id, w := range s.windows {
		if w.Placement.Hidden {
			continue
		}
		nodes[id] = w.Grid.Flush(colors, now)
	}
	if s.pmenu != nil {
		gridID, row, col := s.pmenu.Anchor()
		if w, ok := s.windows[gridID]; ok {
			x := w.Placement.X + s.metrics.ColToX(col).Round()
			y := w.Placement.Y + s.metrics.RowToY(row).Round()
			s.pmenu.SetPixelAnchor(grid.FixedFromInt(x), grid.FixedFromInt(y))
		}
	}
	invalidated := colors.Dirty()
	if invalidated {
		colors.ClearDirty()
	}
	return nodes, invalidated
}
