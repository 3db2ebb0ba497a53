package popupmenu

import (
	"testing"

	"github.com/anaseto/nvim-gruid/grid"
)

func TestShowSetsItemsAndAnchor(t *testing.T) {
	p := New()
	items := []Item{{Word: "foo", Kind: "function"}, {Word: "bar", Kind: "variable"}}
	p.Show(items, 0, 3, 5, 10)
	if !p.Visible() {
		t.Error("expected visible after Show")
	}
	if len(p.Items()) != 2 {
		t.Fatalf("got %d items, want 2", len(p.Items()))
	}
	g, r, c := p.Anchor()
	if g != 3 || r != 5 || c != 10 {
		t.Errorf("anchor = (%d,%d,%d), want (3,5,10)", g, r, c)
	}
}

func TestSelectOnlyChangesIndex(t *testing.T) {
	p := New()
	items := []Item{{Word: "a"}, {Word: "b"}}
	p.Show(items, -1, 1, 0, 0)
	p.Select(1)
	if p.Selected() != 1 {
		t.Errorf("selected = %d, want 1", p.Selected())
	}
	if len(p.Items()) != 2 {
		t.Error("select should not alter the item list")
	}
}

func TestHideClearsVisibility(t *testing.T) {
	p := New()
	p.Show([]Item{{Word: "x"}}, 0, 1, 0, 0)
	p.Hide()
	if p.Visible() {
		t.Error("expected hidden after Hide")
	}
}

func TestPixelAnchorRoundTrip(t *testing.T) {
	p := New()
	p.SetPixelAnchor(grid.FixedFromInt(40), grid.FixedFromInt(64))
	x, y := p.PixelAnchor()
	if x != grid.FixedFromInt(40) || y != grid.FixedFromInt(64) {
		t.Errorf("pixel anchor = (%v,%v), want (40,64) in fixed-point", x, y)
	}
}

func TestDefaultSelectedIsNone(t *testing.T) {
	p := New()
	if p.Selected() != -1 {
		t.Errorf("default selected = %d, want -1", p.Selected())
	}
}
