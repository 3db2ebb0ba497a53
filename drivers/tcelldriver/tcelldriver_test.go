package tcelldriver

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/anaseto/nvim-gruid/colortable"
	"github.com/anaseto/nvim-gruid/grid"
)

func newTestDriver(t *testing.T, w, h int) *Driver {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("simulation screen init: %v", err)
	}
	screen.SetSize(w, h)
	dr := &Driver{screen: screen, init: true}
	dr.resize(w, h)
	return dr
}

func TestFlushPaintsBackgroundAndText(t *testing.T) {
	dr := newTestDriver(t, 10, 3)
	nodes := []grid.RenderNode{
		{Kind: grid.NodeBackground, Rect: grid.Rect{X: grid.FixedFromInt(0), Y: grid.FixedFromInt(1), W: grid.FixedFromInt(3)}, Color: colortable.RGB(0x112233)},
		{Kind: grid.NodeText, Rect: grid.Rect{X: grid.FixedFromInt(0), Y: grid.FixedFromInt(1)}, Color: colortable.RGB(0xffffff), Text: "hi"},
	}
	dr.Flush(nodes)

	r, _, style, _ := dr.screen.(tcell.SimulationScreen).GetContent(0, 1)
	if r != 'h' {
		t.Errorf("cell (0,1) rune = %q, want 'h'", r)
	}
	fg, bg, _ := style.Decompose()
	if fg == tcell.ColorDefault {
		t.Error("expected foreground color to be set")
	}
	if bg == tcell.ColorDefault {
		t.Error("expected background color to be set")
	}

	r, _, _, _ = dr.screen.(tcell.SimulationScreen).GetContent(1, 1)
	if r != 'i' {
		t.Errorf("cell (1,1) rune = %q, want 'i'", r)
	}

	r, _, _, _ = dr.screen.(tcell.SimulationScreen).GetContent(2, 1)
	if r != ' ' {
		t.Errorf("cell (2,1) rune = %q, want blank (background only)", r)
	}
}

func TestTranslateKeyNamedAndPrintable(t *testing.T) {
	esc := tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)
	msg, ok := translateKey(esc)
	if !ok || msg.Event.Key != "Escape" {
		t.Fatalf("got %+v ok=%v, want Escape", msg, ok)
	}

	a := tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModCtrl)
	msg, ok = translateKey(a)
	if !ok || msg.Event.Key != "a" || msg.Event.Mod&(1<<1) == 0 {
		t.Fatalf("got %+v ok=%v, want rune a with ctrl mod", msg, ok)
	}
}

func TestTranslateKeyBacktabIsShiftTab(t *testing.T) {
	bt := tcell.NewEventKey(tcell.KeyBacktab, 0, tcell.ModNone)
	msg, ok := translateKey(bt)
	if !ok || msg.Event.Key != "Tab" {
		t.Fatalf("got %+v ok=%v, want Tab", msg, ok)
	}
}

func TestTranslateMouseDragEndsOnButtonRelease(t *testing.T) {
	dr := newTestDriver(t, 10, 10)

	press := tcell.NewEventMouse(1, 1, tcell.Button1, tcell.ModNone)
	msg, ok := dr.translateMouse(press)
	if !ok {
		t.Fatal("expected a press message")
	}
	if !dr.mousedrag {
		t.Error("expected mousedrag to be true after a button press")
	}
	_ = msg

	release := tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone)
	msg, ok = dr.translateMouse(release)
	if !ok {
		t.Fatal("expected a release message")
	}
	if dr.mousedrag {
		t.Error("expected mousedrag to be false after release")
	}
}

func TestTranslateMouseHoverIsIgnored(t *testing.T) {
	dr := newTestDriver(t, 10, 10)
	hover := tcell.NewEventMouse(1, 1, tcell.ButtonNone, tcell.ModNone)
	if _, ok := dr.translateMouse(hover); ok {
		t.Error("a plain hover with no prior drag should produce no message")
	}
}
