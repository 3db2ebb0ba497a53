package app

import (
	"testing"
	"time"

	"github.com/anaseto/nvim-gruid/grid"
	"github.com/anaseto/nvim-gruid/redraw"
)

func newTestApp() *App {
	a := New(Config{
		Width:  10,
		Height: 5,
		Metrics: grid.Metrics{
			AdvanceX: grid.FixedFromInt(8),
			LineY:    grid.FixedFromInt(16),
		},
	})
	a.shell.SetMetrics(a.metrics)
	a.shell.SetBaseSize(a.metrics.ColToX(10).Round(), a.metrics.RowToY(5).Round())
	a.shell.Grid(1, 10, 5)
	return a
}

func TestApplyEventsDispatchesGridLineAndFlush(t *testing.T) {
	a := newTestApp()
	events := []redraw.Event{
		redraw.DefaultColorsSet{Fg: 0xffffff, Bg: 0x000000},
		redraw.GridLine{
			Grid: 1, Row: 0, ColStart: 0,
			Cells: []redraw.CellData{{Text: "h", Hl: 1, HasHl: true, Repeat: 1, HasRepeat: true}},
		},
		redraw.Flush{},
	}
	flushed, resizes := a.applyEvents(events, time.Now())
	if !flushed {
		t.Fatal("expected flushed=true on a batch containing Flush")
	}
	if len(resizes) != 0 {
		t.Fatalf("expected no resize requests, got %d", len(resizes))
	}
	got := a.shell.Window(1).Grid.Text(0)
	if got[:1] != "h" {
		t.Errorf("grid row 0 = %q, want to start with h", got)
	}
}

func TestApplyEventsCollectsFloatResizeRequests(t *testing.T) {
	a := newTestApp()
	a.shell.Grid(2, 100, 50) // larger than the 10x5 base
	events := []redraw.Event{
		redraw.WinFloatPos{Grid: 2, AnchorGrid: 1, Anchor: "NW", AnchorRow: 0, AnchorCol: 0, ZIndex: 1, Focusable: true},
	}
	_, resizes := a.applyEvents(events, time.Now())
	if len(resizes) != 1 || resizes[0].Grid != 2 {
		t.Fatalf("expected one resize request for grid 2, got %+v", resizes)
	}
}

func TestApplyEventsIgnoresUnknown(t *testing.T) {
	a := newTestApp()
	flushed, resizes := a.applyEvents([]redraw.Event{redraw.Unknown{Name: "future_event"}}, time.Now())
	if flushed || len(resizes) != 0 {
		t.Fatalf("unknown event should not flush or resize, got flushed=%v resizes=%v", flushed, resizes)
	}
}

func TestApplyEventsModeInfoSetPreservesCellPercent(t *testing.T) {
	a := newTestApp()
	events := []redraw.Event{
		redraw.ModeInfoSet{
			CursorStyleEnabled: true,
			Modes: []redraw.ModeInfoEntry{
				{CursorShape: "vertical", CellPercent: 0.25},
			},
		},
		redraw.ModeChange{Mode: "insert", ModeIdx: 0},
		redraw.GridCursorGoto{Grid: 1, Row: 0, Col: 0},
	}
	a.applyEvents(events, time.Now())

	nodes := a.cursor.Render(a.colors, a.metrics, time.Now())
	if len(nodes) == 0 {
		t.Fatal("expected at least one render node")
	}
	want := grid.Fixed(float64(a.metrics.AdvanceX) * 0.25)
	if got := nodes[0].Rect.W; got != want {
		t.Errorf("cursor width = %v, want %v (25%% of a cell, not 0.25%%)", got, want)
	}
}

func TestApplyEventsCursorGotoUpdatesPosition(t *testing.T) {
	a := newTestApp()
	events := []redraw.Event{
		redraw.GridLine{
			Grid: 1, Row: 1, ColStart: 0,
			Cells: []redraw.CellData{{Text: "x", Hl: 0, HasHl: true, Repeat: 1, HasRepeat: true}},
		},
		redraw.GridCursorGoto{Grid: 1, Row: 1, Col: 0},
	}
	a.applyEvents(events, time.Now())
	col, row := a.cursor.Position()
	if col != 0 || row != 1 {
		t.Errorf("cursor position = (%d,%d), want (0,1)", col, row)
	}
	if a.cursorGrid != 1 {
		t.Errorf("cursorGrid = %d, want 1", a.cursorGrid)
	}
}

func TestComposeSceneOffsetsByWindowPlacement(t *testing.T) {
	a := newTestApp()
	a.shell.Grid(2, 3, 3)
	a.shell.WinPos(2, 1, 1, 3, 3) // at col=1,row=1 -> pixel (8,16)
	nodes := map[int][]grid.RenderNode{
		1: {{Kind: grid.NodeBackground, Rect: grid.Rect{X: 0, Y: 0}}},
		2: {{Kind: grid.NodeBackground, Rect: grid.Rect{X: 0, Y: 0}}},
	}
	scene := a.composeScene(nodes)
	if len(scene) != 2 {
		t.Fatalf("got %d nodes, want 2", len(scene))
	}
	var sawOffset bool
	for _, n := range scene {
		if n.Rect.X == grid.FixedFromInt(8) && n.Rect.Y == grid.FixedFromInt(16) {
			sawOffset = true
		}
	}
	if !sawOffset {
		t.Error("expected grid 2's node translated by its window origin (8,16)")
	}
}

func TestQueueResizeDebouncesToLatest(t *testing.T) {
	a := newTestApp()
	msgs := make(chan Msg, 4)
	a.msgsCh = msgs

	a.queueResize(MsgResize{Cols: 80, Rows: 24})
	a.queueResize(MsgResize{Cols: 100, Rows: 30})

	select {
	case <-msgs:
		t.Fatal("timeout should not have fired yet")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case m := <-msgs:
		if _, ok := m.(msgResizeTimeout); !ok {
			t.Fatalf("got %T, want msgResizeTimeout", m)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("debounce timer never fired")
	}

	if a.pendingResize == nil || a.pendingResize.Cols != 100 {
		t.Fatalf("pendingResize = %+v, want the latest (100,30)", a.pendingResize)
	}
}

func TestAssertOwnerPanicsOffGoroutine(t *testing.T) {
	a := newTestApp()
	a.owner = newOwnerGuard()

	done := make(chan string, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- "panicked"
				return
			}
			done <- "no panic"
		}()
		a.AssertOwner()
	}()
	if got := <-done; got != "panicked" {
		t.Errorf("AssertOwner from a different goroutine: got %q, want panicked", got)
	}
}
