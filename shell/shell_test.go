package shell

import (
	"testing"
	"time"

	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/grid"
)

func newTestShell() *Shell {
	s := New()
	s.SetMetrics(grid.Metrics{AdvanceX: grid.FixedFromInt(8), LineY: grid.FixedFromInt(16)})
	s.SetBaseSize(640, 384) // 80x24 at 8x16
	s.Grid(1, 80, 24)
	return s
}

func TestGridCreatesOnFirstUse(t *testing.T) {
	s := newTestShell()
	g := s.Grid(2, 10, 5)
	if g == nil {
		t.Fatal("expected grid to be created")
	}
	w, h := g.Size()
	if w != 10 || h != 5 {
		t.Errorf("size = (%d,%d), want (10,5)", w, h)
	}
}

func TestGrid1NeverDestroyed(t *testing.T) {
	s := newTestShell()
	s.DestroyGrid(1)
	if s.Window(1) == nil {
		t.Error("grid 1 should never be destroyed")
	}
}

func TestWinFloatPosAnchorCorner(t *testing.T) {
	s := newTestShell()
	s.Grid(2, 10, 5)
	s.WinFloatPos(2, 1, CornerSE, 10, 10, 1, true)
	w := s.Window(2)
	wantX := 80 - 10*8
	wantY := 160 - 5*16
	if w.Placement.X != wantX || w.Placement.Y != wantY {
		t.Errorf("SE-anchored origin = (%d,%d), want (%d,%d)", w.Placement.X, w.Placement.Y, wantX, wantY)
	}
}

func TestWinFloatPosClampsAndRequestsResize(t *testing.T) {
	s := newTestShell()
	s.Grid(2, 100, 50) // larger than the 80x24 base grid
	req := s.WinFloatPos(2, 1, CornerNW, 0, 0, 1, true)
	w := s.Window(2)
	if w.Placement.X < 0 || w.Placement.Y < 0 {
		t.Errorf("clamped origin should be non-negative, got (%d,%d)", w.Placement.X, w.Placement.Y)
	}
	if req == nil {
		t.Fatal("expected a resize request since the float does not fit")
	}
	if req.Grid != 2 {
		t.Errorf("resize request grid = %d, want 2", req.Grid)
	}
}

func TestWinHideAndClose(t *testing.T) {
	s := newTestShell()
	s.Grid(2, 10, 5)
	s.WinHide(2)
	if !s.Window(2).Placement.Hidden {
		t.Error("win_hide should mark hidden")
	}
	s.WinClose(2)
	if !s.Window(2).Placement.Hidden {
		t.Error("win_close should leave the window hidden")
	}
}

func TestBusyStartStop(t *testing.T) {
	s := newTestShell()
	s.BusyStart()
	if !s.Busy() {
		t.Error("busy should be true after BusyStart")
	}
	s.BusyStop()
	if s.Busy() {
		t.Error("busy should be false after BusyStop")
	}
}

func TestFlushSkipsHiddenGrids(t *testing.T) {
	s := newTestShell()
	s.Grid(2, 5, 5)
	s.WinHide(2)
	nodes, _ := s.Flush(colortable.New(), time.Now())
	if _, ok := nodes[2]; ok {
		t.Error("hidden grid should be excluded from flush output")
	}
	if _, ok := nodes[1]; !ok {
		t.Error("base grid should be present in flush output")
	}
}
